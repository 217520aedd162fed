// Package server exposes the dashboard aggregates and the prediction flow
// over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/loanlens/loanlens/internal/export"
	"github.com/loanlens/loanlens/internal/features"
	"github.com/loanlens/loanlens/internal/model"
	"github.com/loanlens/loanlens/internal/pipeline"
	"github.com/loanlens/loanlens/internal/predict"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
}

// Event is emitted for every prediction served.
type Event struct {
	ID         int64            `json:"id"`
	Type       string           `json:"type"`
	Timestamp  time.Time        `json:"timestamp"`
	Prediction model.Prediction `json:"prediction"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Loans           int       `json:"loans"`
	Features        int       `json:"features"`
	Predictions     int64     `json:"predictions"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Summary is served at /v1/summary.
type Summary struct {
	TotalLoans          int      `json:"total_loans"`
	TotalAmount         float64  `json:"total_amount"`
	AverageInterestRate float64  `json:"average_interest_rate"`
	AverageAmount       float64  `json:"average_amount"`
	Conditions          []string `json:"conditions"`
}

// Service provides the HTTP API over one loaded dataset and classifier.
// Both are read-only; only the event buffer is guarded.
type Service struct {
	cfg       Config
	data      *model.Dataset
	predictor *predict.Service
	charts    *export.Renderer
	logger    *zap.Logger
	metrics   *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	predictions int64
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a server over data and predictor.
func New(cfg Config, data *model.Dataset, predictor *predict.Service, logger *zap.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		cfg:       cfg,
		data:      data,
		predictor: predictor,
		charts:    export.New(),
		logger:    logger,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.metrics.loans.Set(float64(data.Len()))
	return s
}

// Handler returns the routed HTTP handler.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", s.instrument("healthz", s.handleHealth))
	mux.Handle("GET /v1/status", s.instrument("status", s.handleStatus))
	mux.Handle("GET /v1/summary", s.instrument("summary", s.handleSummary))
	mux.Handle("POST /v1/predict", s.instrument("predict", s.handlePredict))
	mux.Handle("GET /v1/charts/{name}", s.instrument("charts", s.handleChart))
	mux.Handle("GET /v1/events", s.instrument("events", s.handleEvents))
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves HTTP until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("serving", zap.String("addr", s.cfg.Addr), zap.Int("loans", s.data.Len()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Service) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	st := Status{
		StartedAt:       s.startedAt,
		Loans:           s.data.Len(),
		Features:        len(s.predictor.Schema()),
		Predictions:     s.predictions,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	stats, err := pipeline.Summary(s.data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	conds, err := pipeline.ConditionValues(s.data)
	if err != nil {
		conds = nil
	}
	writeJSON(w, http.StatusOK, Summary{
		TotalLoans:          stats.TotalLoans,
		TotalAmount:         stats.TotalAmount,
		AverageInterestRate: stats.AverageInterestRate,
		AverageAmount:       stats.AverageAmount,
		Conditions:          conds,
	})
}

func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var a model.Applicant
	if err := dec.Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding applicant: %w", err))
		return
	}
	if err := features.Validate(a); err != nil {
		var verr *features.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  err.Error(),
				"fields": verr.Fields,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pred, err := s.predictor.Predict(r.Context(), a)
	if err != nil {
		s.logger.Error("prediction failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.metrics.predictions.WithLabelValues(pred.Label).Inc()
	s.metrics.probability.Observe(pred.Percent)
	s.recordEvent(pred)
	writeJSON(w, http.StatusOK, pred)
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("name"), ".png")
	var buf bytes.Buffer
	if err := s.charts.Render(&buf, name, s.data, r.URL.Query().Get("condition")); err != nil {
		var missing *model.MissingColumnError
		switch {
		case errors.Is(err, export.ErrUnknownChart):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, export.ErrNoData), errors.As(err, &missing):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			s.logger.Error("chart render failed", zap.String("chart", name), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Service) recordEvent(pred model.Prediction) {
	s.mu.Lock()
	s.predictions++
	s.nextEventID++
	ev := Event{
		ID:         s.nextEventID,
		Type:       "prediction",
		Timestamp:  time.Now(),
		Prediction: pred,
	}
	s.mu.Unlock()
	s.publishEvent(ev)
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.metrics.subscribers.Set(float64(len(s.subs)))
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
	s.metrics.subscribers.Set(float64(len(s.subs)))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
