package predict

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/loanlens/loanlens/internal/features"
	"github.com/loanlens/loanlens/internal/model"
)

func TestClassify_Threshold(t *testing.T) {
	tests := []struct {
		p     float64
		label string
	}{
		{0, model.LabelBad},
		{0.25, model.LabelBad},
		{0.5, model.LabelBad},
		{0.5000001, model.LabelGood},
		{0.51, model.LabelGood},
		{1, model.LabelGood},
	}
	for _, tt := range tests {
		got := Classify(tt.p)
		assert.Equal(t, tt.label, got.Label, "p=%v", tt.p)
		assert.InDelta(t, tt.p*100, got.Percent, 1e-9)
	}
}

func TestGaugeColor(t *testing.T) {
	assert.Equal(t, ColorGood, GaugeColor(Classify(0.9)))
	assert.Equal(t, ColorBad, GaugeColor(Classify(0.5)))
}

func TestLogistic_PredictProba(t *testing.T) {
	m, err := NewLogistic(0, []float64{1, -1})
	require.NoError(t, err)

	p, err := m.PredictProba(context.Background(), features.Vector{Values: []float64{0, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	p, err = m.PredictProba(context.Background(), features.Vector{Values: []float64{2, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+math.Exp(-2)), p, 1e-12)

	// Large negative margins must not overflow.
	p, err = m.PredictProba(context.Background(), features.Vector{Values: []float64{-1000, 0}})
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p))
	assert.InDelta(t, 0, p, 1e-12)
}

func TestLogistic_WidthMismatch(t *testing.T) {
	m, err := NewLogistic(0, []float64{1, 2, 3})
	require.NoError(t, err)
	_, err = m.PredictProba(context.Background(), features.Vector{Values: []float64{1}})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLogistic_Canceled(t *testing.T) {
	m, err := NewLogistic(0, []float64{1})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.PredictProba(ctx, features.Vector{Values: []float64{1}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLogistic(t *testing.T) {
	m, err := ParseLogistic([]byte(`{"kind":"logistic","intercept":0.5,"coefficients":[1,2]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumFeatures())

	_, err = ParseLogistic([]byte(`{"kind":"forest","coefficients":[1]}`))
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	_, err = ParseLogistic([]byte(`{"kind":"logistic","coefficients":[]}`))
	assert.Error(t, err)

	_, err = ParseLogistic([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseSchema(t *testing.T) {
	cols, err := ParseSchema([]byte(`["a","b c","d"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c", "d"}, cols)

	cols, err = ParseSchema([]byte("# trained 2024\ngrade\n\nterm_36 months\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"grade", "term_36 months"}, cols)

	_, err = ParseSchema([]byte("a\na\n"))
	assert.Error(t, err)

	_, err = ParseSchema([]byte("   "))
	assert.Error(t, err)
}

func TestLoadArtifacts_Bundled(t *testing.T) {
	a, err := LoadArtifacts("", "")
	require.NoError(t, err)
	assert.Equal(t, "bundled", a.Source)
	assert.ElementsMatch(t, features.DefaultSchema(), a.Schema)
}

func TestLoadArtifacts_Mismatch(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	schemaPath := filepath.Join(dir, "features.txt")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{"kind":"logistic","coefficients":[1,2,3]}`), 0o600))
	require.NoError(t, os.WriteFile(schemaPath, []byte("a\nb\n"), 0o600))

	_, err := LoadArtifacts(modelPath, schemaPath)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadArtifacts_MissingFile(t *testing.T) {
	_, err := LoadArtifacts(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)
}

type fixedClassifier struct {
	p    float64
	seen features.Vector
}

func (f *fixedClassifier) PredictProba(_ context.Context, v features.Vector) (float64, error) {
	f.seen = v
	return f.p, nil
}

type memRecorder struct {
	recs []model.PredictionRecord
	err  error
}

func (m *memRecorder) RecordPrediction(_ context.Context, rec model.PredictionRecord) error {
	m.recs = append(m.recs, rec)
	return m.err
}

func TestService_Predict(t *testing.T) {
	a, err := LoadArtifacts("", "")
	require.NoError(t, err)
	rec := &memRecorder{}
	svc, err := FromArtifacts(a, WithRecorder(rec))
	require.NoError(t, err)

	good, err := svc.Predict(context.Background(), model.DefaultApplicant())
	require.NoError(t, err)
	assert.Equal(t, model.LabelGood, good.Label)
	assert.Greater(t, good.Percent, 50.0)

	risky := model.DefaultApplicant()
	risky.Grade = "G"
	risky.Term = "60 months"
	risky.DTI = 50
	risky.LoanAmount = 100000
	bad, err := svc.Predict(context.Background(), risky)
	require.NoError(t, err)
	assert.Equal(t, model.LabelBad, bad.Label)

	require.Len(t, rec.recs, 2)
	assert.NotEmpty(t, rec.recs[0].ID)
	assert.NotEqual(t, rec.recs[0].ID, rec.recs[1].ID)
	assert.Equal(t, "G", rec.recs[1].Applicant.Grade)
}

func TestService_VectorMatchesSchema(t *testing.T) {
	clf := &fixedClassifier{p: 0.7}
	schema := []string{"grade", "home_ownership_OWN", "unused"}
	svc, err := NewService(schema, clf)
	require.NoError(t, err)

	a := model.DefaultApplicant()
	a.Grade = "C"
	a.HomeOwnership = "OWN"
	_, err = svc.Predict(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, schema, clf.seen.Names)
	assert.Equal(t, []float64{2, 1, 0}, clf.seen.Values)
}

func TestService_LogsUnknownCategory(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc, err := NewService(features.DefaultSchema(), &fixedClassifier{p: 0.2}, WithLogger(zap.New(core)))
	require.NoError(t, err)

	a := model.DefaultApplicant()
	a.Purpose = "wedding"
	pred, err := svc.Predict(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, model.LabelBad, pred.Label)

	entries := logs.FilterMessage("unknown category encoded as zero").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "purpose", entries[0].ContextMap()["attribute"])
}

func TestService_RecorderFailureNotFatal(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	svc, err := NewService(features.DefaultSchema(), &fixedClassifier{p: 0.9}, WithRecorder(rec))
	require.NoError(t, err)
	pred, err := svc.Predict(context.Background(), model.DefaultApplicant())
	require.NoError(t, err)
	assert.True(t, pred.Good())
}

func TestService_InvalidProbability(t *testing.T) {
	svc, err := NewService(features.DefaultSchema(), &fixedClassifier{p: 1.5})
	require.NoError(t, err)
	_, err = svc.Predict(context.Background(), model.DefaultApplicant())
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

func TestNewService_SizeCheck(t *testing.T) {
	m, err := NewLogistic(0, []float64{1})
	require.NoError(t, err)
	_, err = NewService([]string{"a", "b"}, m)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = NewService(nil, m)
	assert.Error(t, err)
}
