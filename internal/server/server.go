// Package server exposes the weight log over a small local HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/export"
	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/store"
)

// EventObservationLogged is the event type published after a successful POST.
const EventObservationLogged = "observation_logged"

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	Store        store.Store
	Goal         model.GoalConfig
	Input        config.InputConfig
	Logger       *logger.Logger
}

// ObservationJSON is the wire form of one observation.
type ObservationJSON struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// Event is emitted whenever an observation is logged.
type Event struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Observation ObservationJSON `json:"observation"`
	Summary     *model.Summary  `json:"summary,omitempty"`
}

// SummaryResponse is served at /v1/summary.
type SummaryResponse struct {
	Empty           bool           `json:"empty"`
	Entries         int            `json:"entries"`
	Summary         *model.Summary `json:"summary,omitempty"`
	GoalWeight      float64        `json:"goal_weight"`
	StartWeight     float64        `json:"start_weight"`
	StartDate       string         `json:"start_date"`
	WeeklyLossRate  float64        `json:"weekly_loss_rate"`
	GoalReachedDate string         `json:"goal_reached_date,omitempty"`
}

// Service provides the HTTP API.
type Service struct {
	cfg Config
	log *logger.Logger

	// writeMu serializes load-upsert-save so concurrent POSTs don't drop entries.
	writeMu sync.Mutex

	mu          sync.RWMutex
	nextEventID int64
	events      []Event
	nextSubID   int
	subs        map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Service{
		cfg:  cfg,
		log:  cfg.Logger,
		subs: make(map[int]chan Event),
	}
}

// Handler returns the routed API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/observations", s.handleObservations)
	mux.HandleFunc("POST /v1/observations", s.handleLogObservation)
	mux.HandleFunc("GET /v1/projection", s.handleProjection)
	mux.HandleFunc("GET /v1/chart.png", s.handleChart)
	mux.HandleFunc("GET /v1/export.xlsx", s.handleExport)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	return s.logRequests(mux)
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
	s.log.Info("serving", "addr", s.cfg.Addr, "store", s.cfg.Store.Path())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Service) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) summaryResponse(l model.Log) SummaryResponse {
	g := s.cfg.Goal
	resp := SummaryResponse{
		Empty:          l.IsEmpty(),
		Entries:        l.Len(),
		GoalWeight:     g.GoalWeight,
		StartWeight:    g.StartWeight,
		StartDate:      g.StartDate.Format(model.DateLayout),
		WeeklyLossRate: g.WeeklyLossRate,
	}
	if !l.IsEmpty() {
		sum := pipeline.Summarize(l, g)
		resp.Summary = &sum
	}
	if d, ok := pipeline.GoalReachedDate(g); ok {
		resp.GoalReachedDate = d.Format(model.DateLayout)
	}
	return resp
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.summaryResponse(s.cfg.Store.Load()))
}

// handleObservations serves the log, optionally limited by ?since= and
// ?until= (YYYY-MM-DD, inclusive).
func (s *Service) handleObservations(w http.ResponseWriter, r *http.Request) {
	var bounds [2]time.Time
	for i, key := range []string{"since", "until"} {
		q := r.URL.Query().Get(key)
		if q == "" {
			continue
		}
		d, err := time.Parse(model.DateLayout, q)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%s %q: want YYYY-MM-DD", key, q))
			return
		}
		bounds[i] = d
	}

	l := pipeline.FilterByTime(s.cfg.Store.Load(), bounds[0], bounds[1])
	out := make([]ObservationJSON, 0, l.Len())
	for _, o := range l {
		out = append(out, toJSON(o.Date, o.Weight))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleLogObservation(w http.ResponseWriter, r *http.Request) {
	var in ObservationJSON
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}

	date := model.Today()
	if in.Date != "" {
		d, err := time.Parse(model.DateLayout, in.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("date %q: want YYYY-MM-DD", in.Date))
			return
		}
		date = model.Day(d)
	}
	if err := pipeline.ValidateWeight(in.Weight, s.cfg.Input.MinWeight, s.cfg.Input.MaxWeight); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	l, err := s.logObservation(date, in.Weight)
	if err != nil {
		s.log.Error("saving observation", "date", date.Format(model.DateLayout), "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	obs := toJSON(date, in.Weight)
	sum := pipeline.Summarize(l, s.cfg.Goal)
	s.publishEvent(Event{
		Type:        EventObservationLogged,
		Timestamp:   time.Now(),
		Observation: obs,
		Summary:     &sum,
	})
	writeJSON(w, http.StatusCreated, obs)
}

func (s *Service) logObservation(date time.Time, weight float64) (model.Log, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	l := pipeline.Upsert(s.cfg.Store.Load(), date, weight)
	if err := s.cfg.Store.Save(l); err != nil {
		return nil, fmt.Errorf("saving log: %w", err)
	}
	return l, nil
}

// handleProjection serves the trajectory through ?through=YYYY-MM-DD,
// defaulting to the latest logged date or today.
func (s *Service) handleProjection(w http.ResponseWriter, r *http.Request) {
	through := model.Today()
	if latest, ok := s.cfg.Store.Load().Latest(); ok {
		through = latest.Date
	}
	if q := r.URL.Query().Get("through"); q != "" {
		d, err := time.Parse(model.DateLayout, q)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("through %q: want YYYY-MM-DD", q))
			return
		}
		through = model.Day(d)
	}

	out := []ObservationJSON{}
	for p := range pipeline.Project(s.cfg.Goal, through) {
		out = append(out, toJSON(p.Date, p.Weight))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleChart(w http.ResponseWriter, _ *http.Request) {
	series := pipeline.BuildSeries(s.cfg.Store.Load(), s.cfg.Goal)
	w.Header().Set("Content-Type", "image/png")
	if err := export.RenderChartPNG(w, series, export.ChartWidth, export.ChartHeight); err != nil {
		s.log.Error("rendering chart", "error", err)
	}
}

func (s *Service) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename))
	if err := export.WriteXLSX(w, s.cfg.Store.Load()); err != nil {
		s.log.Error("exporting spreadsheet", "error", err)
	}
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

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current summary immediately.
	writeSSE(w, "summary", s.summaryResponse(s.cfg.Store.Load()))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev.Type, ev)
			flusher.Flush()
		}
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	ev.ID = s.nextEventID
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
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Service) subscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func toJSON(date time.Time, weight float64) ObservationJSON {
	return ObservationJSON{Date: date.Format(model.DateLayout), Weight: weight}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeSSE(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
