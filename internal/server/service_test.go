package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/predict"
)

func day(d int) time.Time {
	return time.Date(2015, 3, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() *model.Dataset {
	loans := []model.Loan{
		{ID: "1", IssueDate: day(2), IssueWeekday: "Monday", LoanAmount: 5000, InterestRate: 10, Term: "36 months", Purpose: "credit_card", LoanCondition: "Good Loan", Grade: "A"},
		{ID: "2", IssueDate: day(2), IssueWeekday: "Monday", LoanAmount: 15000, InterestRate: 20, Term: "60 months", Purpose: "other", LoanCondition: "Bad Loan", Grade: "C"},
		{ID: "3", IssueDate: day(4), IssueWeekday: "Wednesday", LoanAmount: 10000, InterestRate: 15, Term: "36 months", Purpose: "other", LoanCondition: "Good Loan", Grade: "B"},
	}
	return model.NewDataset(loans, []string{
		model.ColID, model.ColIssueDate, model.ColIssueWeekday, model.ColLoanAmount,
		model.ColInterestRate, model.ColTerm, model.ColPurpose, model.ColLoanCondition,
		model.ColGrade,
	})
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	arts, err := predict.LoadArtifacts("", "")
	require.NoError(t, err)
	svc, err := predict.FromArtifacts(arts)
	require.NoError(t, err)
	return New(Config{EventsBuffer: 10}, testDataset(), svc, nil)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(newTestService(t).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	rec := get(newTestService(t).Handler(), "/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var got Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalLoans)
	assert.Equal(t, 30000.0, got.TotalAmount)
	assert.Equal(t, 10000.0, got.AverageAmount)
	assert.Equal(t, 15.0, got.AverageInterestRate)
	assert.Equal(t, []string{"Good Loan", "Bad Loan"}, got.Conditions)
}

func TestPredictEndpoint(t *testing.T) {
	s := newTestService(t)
	rec := postJSON(t, s.Handler(), "/v1/predict", model.DefaultApplicant())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.Prediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.LabelGood, got.Label)
	assert.Greater(t, got.Percent, 50.0)

	events := get(s.Handler(), "/v1/events")
	var evs []Event
	require.NoError(t, json.Unmarshal(events.Body.Bytes(), &evs))
	require.Len(t, evs, 1)
	assert.Equal(t, "prediction", evs[0].Type)
	assert.Equal(t, got, evs[0].Prediction)
}

func TestPredictEndpoint_ValidationFailure(t *testing.T) {
	a := model.DefaultApplicant()
	a.Grade = "Z"
	a.LoanAmount = 10

	rec := postJSON(t, newTestService(t).Handler(), "/v1/predict", a)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	var names []string
	for _, f := range body.Fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, "Grade")
	assert.Contains(t, names, "LoanAmount")
}

func TestPredictEndpoint_MalformedBody(t *testing.T) {
	h := newTestService(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/predict", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h, "/v1/predict", map[string]any{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPredictEndpoint_MethodNotAllowed(t *testing.T) {
	rec := get(newTestService(t).Handler(), "/v1/predict")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChartEndpoint(t *testing.T) {
	h := newTestService(t).Handler()

	rec := get(h, "/v1/charts/grade.png")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = get(h, "/v1/charts/amount-histogram.png?condition=Bad+Loan")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get(h, "/v1/charts/nope.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestService(t)
	h := s.Handler()
	postJSON(t, h, "/v1/predict", model.DefaultApplicant())

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `loanlens_predictions_total{label="Good Loan"} 1`)
	assert.Contains(t, text, "loanlens_dataset_loans 3")
	assert.Contains(t, text, `loanlens_http_requests_total{code="200",route="predict"} 1`)
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestService(t)
	h := s.Handler()
	postJSON(t, h, "/v1/predict", model.DefaultApplicant())

	var st Status
	require.NoError(t, json.Unmarshal(get(h, "/v1/status").Body.Bytes(), &st))
	assert.Equal(t, 3, st.Loans)
	assert.Equal(t, 20, st.Features)
	assert.Equal(t, int64(1), st.Predictions)
	assert.Equal(t, 1, st.EventCount)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(t)
	s.cfg.EventsBuffer = 2

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPublishEvent_DeliversToSubscribers(t *testing.T) {
	s := newTestService(t)
	ch := make(chan Event, 1)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	s.publishEvent(Event{ID: 7, Type: "prediction"})

	select {
	case ev := <-ch:
		assert.Equal(t, int64(7), ev.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}
}

func TestWriteSSE(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSSE(rec, Event{ID: 4, Type: "prediction", Prediction: model.Prediction{Percent: 75, Label: model.LabelGood}})
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, "id: 4\nevent: prediction\ndata: {"))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
}
