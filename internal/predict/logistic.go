package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/loanlens/loanlens/internal/features"
)

// KindLogistic is the artifact kind handled by Logistic.
const KindLogistic = "logistic"

// Artifact is the on-disk model format.
type Artifact struct {
	Kind         string    `json:"kind"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Logistic is a binary logistic regression model.
type Logistic struct {
	intercept float64
	coef      *mat.VecDense
}

// NewLogistic builds a model from its intercept and coefficients.
func NewLogistic(intercept float64, coef []float64) (*Logistic, error) {
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic model has no coefficients")
	}
	for i, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	data := make([]float64, len(coef))
	copy(data, coef)
	return &Logistic{intercept: intercept, coef: mat.NewVecDense(len(data), data)}, nil
}

// ParseLogistic decodes a JSON artifact.
func ParseLogistic(data []byte) (*Logistic, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding model artifact: %w", err)
	}
	if a.Kind != KindLogistic {
		return nil, fmt.Errorf("%w: kind %q", ErrUnsupportedModel, a.Kind)
	}
	return NewLogistic(a.Intercept, a.Coefficients)
}

// LoadLogistic reads a JSON artifact from path.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	m, err := ParseLogistic(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// NumFeatures returns the number of coefficients.
func (m *Logistic) NumFeatures() int {
	return m.coef.Len()
}

// PredictProba returns sigmoid(intercept + coef·v).
func (m *Logistic) PredictProba(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if v.Len() != m.coef.Len() {
		return 0, fmt.Errorf("%w: vector has %d columns, model expects %d",
			ErrSchemaMismatch, v.Len(), m.coef.Len())
	}
	x := mat.NewVecDense(v.Len(), v.Values)
	z := m.intercept + mat.Dot(m.coef, x)
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
