package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-archive-etl/internal/adapter/ledger"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// JobQueue accepts archive work; *pipeline.Scheduler implements it.
type JobQueue interface {
	SubmitMonth(ctx context.Context, unit domain.FetchUnit) (pipeline.MonthReply, error)
	SubmitBatch(req pipeline.BatchRequest) error
}

// HistoryStore serves recorded batch history; *ledger.DB implements it.
type HistoryStore interface {
	History(ctx context.Context, station string, year int, rt domain.ReportType) (ledger.History, error)
}

// Server exposes health, readiness, metrics, and the archive API.
type Server struct {
	httpServer *http.Server
	jobs       JobQueue
	history    HistoryStore
	logger     *slog.Logger
}

// NewServer creates an HTTP server. history may be nil when no ledger is
// configured.
func NewServer(addr string, ready sharedobs.ReadinessChecker, jobs JobQueue, history HistoryStore, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		jobs:    jobs,
		history: history,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/reports/{type}/{station}/{year}/{month}", s.handleMonth)
	mux.HandleFunc("POST /api/v1/batches", s.handleSubmitBatch)
	mux.HandleFunc("GET /api/v1/batches/{type}/{station}/{year}", s.handleBatchHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// MonthResponse is the body of a month request.
type MonthResponse struct {
	Station    string            `json:"station"`
	Year       string            `json:"year"`
	ReportType domain.ReportType `json:"report_type"`
	domain.MonthResult
	ReportLines []string `json:"report_lines"`
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	rt, err := domain.ParseReportType(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("year must be numeric"))
		return
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("month must be numeric"))
		return
	}
	unit, err := domain.NewFetchUnit(r.PathValue("station"), year, month, rt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// A month can spend several archive timeouts plus retry waits.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("clear write deadline", "error", err)
	}

	reply, err := s.jobs.SubmitMonth(r.Context(), unit)
	switch {
	case errors.Is(err, pipeline.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		s.logger.Info("month request abandoned", "unit", unit.Key(), "error", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := MonthResponse{
		Station:     unit.Station,
		Year:        unit.Year,
		ReportType:  unit.ReportType,
		MonthResult: reply.Result,
		ReportLines: []string{},
	}
	if reply.Text != "" {
		resp.ReportLines = strings.Split(reply.Text, "\n")
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req pipeline.BatchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	rt, err := domain.ParseReportType(string(req.ReportType))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.ReportType = rt

	if err := s.jobs.SubmitBatch(req); err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.logger.Info("batch queued", "station", req.Station, "year", req.Year, "report_type", req.ReportType)
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]any{
		"status":      "queued",
		"station":     strings.ToUpper(req.Station),
		"year":        req.Year,
		"report_type": req.ReportType,
	})
}

func (s *Server) handleBatchHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errors.New("batch history is disabled"))
		return
	}
	rt, err := domain.ParseReportType(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("year must be numeric"))
		return
	}
	if _, err := domain.NormalizeStation(r.PathValue("station")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := domain.ValidateYear(year); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h, err := s.history.History(r.Context(), r.PathValue("station"), year, rt)
	if err != nil {
		s.logger.Error("batch history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("history unavailable"))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, h)
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
