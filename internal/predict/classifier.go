// Package predict scores applicants with a pre-trained classifier.
package predict

import (
	"context"
	"errors"

	"github.com/loanlens/loanlens/internal/features"
)

var (
	// ErrSchemaMismatch is returned when the classifier and the feature
	// schema disagree on the number of input columns.
	ErrSchemaMismatch = errors.New("classifier does not match feature schema")

	// ErrUnsupportedModel is returned for artifacts of an unknown kind.
	ErrUnsupportedModel = errors.New("unsupported model artifact")

	// ErrInvalidProbability is returned when a classifier yields a value
	// outside [0,1].
	ErrInvalidProbability = errors.New("classifier returned invalid probability")
)

// Classifier returns the probability of the positive (good loan) class for
// an aligned feature vector.
type Classifier interface {
	PredictProba(ctx context.Context, v features.Vector) (float64, error)
}

// Sized is implemented by classifiers that know their input width.
type Sized interface {
	NumFeatures() int
}
