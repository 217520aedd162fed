package predict

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loanlens/loanlens/internal/features"
	"github.com/loanlens/loanlens/internal/model"
)

// Recorder persists predictions.
type Recorder interface {
	RecordPrediction(ctx context.Context, rec model.PredictionRecord) error
}

// Service scores applicants against a loaded classifier. It is safe for
// concurrent use; the schema and classifier are never mutated.
type Service struct {
	schema   []string
	clf      Classifier
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder records every successful prediction.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service for schema and clf.
func NewService(schema []string, clf Classifier, opts ...Option) (*Service, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("feature schema is empty")
	}
	if sz, ok := clf.(Sized); ok && sz.NumFeatures() != len(schema) {
		return nil, fmt.Errorf("%w: classifier expects %d columns, schema has %d",
			ErrSchemaMismatch, sz.NumFeatures(), len(schema))
	}
	s := &Service{
		schema: append([]string(nil), schema...),
		clf:    clf,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// FromArtifacts is NewService over loaded artifacts.
func FromArtifacts(a *Artifacts, opts ...Option) (*Service, error) {
	return NewService(a.Schema, a.Classifier, opts...)
}

// Schema returns a copy of the feature schema.
func (s *Service) Schema() []string {
	return append([]string(nil), s.schema...)
}

// Vectorize encodes a and aligns it to the service schema. Attributes outside
// the catalogue encode as zero and are logged.
func (s *Service) Vectorize(a model.Applicant) features.Vector {
	v, unknown := features.Vectorize(a, s.schema)
	for _, attr := range unknown {
		s.logger.Warn("unknown category encoded as zero", zap.String("attribute", attr))
	}
	return v
}

// Predict scores one applicant. Callers validate input first; Predict itself
// accepts any value and encodes unknown categories as zero.
func (s *Service) Predict(ctx context.Context, a model.Applicant) (model.Prediction, error) {
	v := s.Vectorize(a)
	p, err := s.clf.PredictProba(ctx, v)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("scoring applicant: %w", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return model.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	pred := Classify(p)
	s.logger.Debug("prediction",
		zap.Float64("percent", pred.Percent),
		zap.String("label", pred.Label))

	if s.recorder != nil {
		rec := model.PredictionRecord{
			ID:         uuid.NewString(),
			CreatedAt:  s.now().UTC(),
			Applicant:  a,
			Prediction: pred,
		}
		if err := s.recorder.RecordPrediction(ctx, rec); err != nil {
			s.logger.Warn("recording prediction failed", zap.Error(err))
		}
	}
	return pred, nil
}
