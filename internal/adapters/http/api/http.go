// Package api exposes the analysis service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/adapters/storage/history"
	"github.com/okian/crease/internal/domain/dedupe"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

const (
	maxBodyBytes        = 1 << 20
	defaultMaxLimit     = 100
	defaultHistoryLimit = 10
)

// Analyzer scores a single request synchronously.
type Analyzer interface {
	Analyze(ctx context.Context, in scoring.Input) (scoring.Scorecard, error)
}

// FrameDependencies accept frames for asynchronous analysis.
type FrameDependencies interface {
	dedupe.Deduper

	// Submit records the frame in its session and queues it. It returns
	// queue.ErrFull on backpressure.
	Submit(ctx context.Context, f model.Frame) error

	// ResetSession forgets a session's history window.
	ResetSession(ctx context.Context, sessionID string) bool
}

// LeaderboardDependencies expose the per-mode leaderboards.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, mode scoring.Mode, n int) ([]types.Entry, error)
	Rank(ctx context.Context, mode scoring.Mode, playerID string) (types.Entry, error)
}

// HistoryDependencies expose saved analyses.
type HistoryDependencies interface {
	History(ctx context.Context, playerID string, mode scoring.Mode, limit int) ([]history.Entry, error)
}

// StatsProvider reports pipeline state.
type StatsProvider interface {
	Stats(ctx context.Context) types.Stats
}

// Dependencies bundles everything the handlers need.
type Dependencies interface {
	Analyzer
	FrameDependencies
	LeaderboardDependencies
	HistoryDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	maxLimit     int
	historyLimit int
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, maxLimit: defaultMaxLimit, historyLimit: defaultHistoryLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.HandleStats, "stats"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.HandleAnalyze, "analyze"))
	mux.HandleFunc("POST /frames", MetricsMiddleware(s.HandlePostFrame, "frames"))
	mux.HandleFunc("DELETE /sessions/{session_id}", MetricsMiddleware(s.HandleResetSession, "sessions"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{player_id}", MetricsMiddleware(s.HandleGetRank, "rank"))
	mux.HandleFunc("GET /history/{player_id}", MetricsMiddleware(s.HandleGetHistory, "history"))
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps an error from the service to a status and error code.
func fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrUnknownMode),
		errors.Is(err, repository.ErrInvalidLimit),
		errors.Is(err, history.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, scoring.ErrDegeneratePose):
		writeError(w, http.StatusUnprocessableEntity, "degenerate_pose", WrapKind(op, ErrUnprocessable, err))
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, queue.ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// modeParam reads a required ?mode= query value.
func modeParam(r *http.Request) (scoring.Mode, error) {
	return scoring.ParseMode(r.URL.Query().Get("mode"))
}

// limitParam reads ?limit=, falling back to def when absent.
func limitParam(r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > maxLimit {
		return 0, errors.New("limit exceeds maximum " + strconv.Itoa(maxLimit))
	}
	return n, nil
}
