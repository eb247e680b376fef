// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/adapters/mq/worker"
	"github.com/okian/crease/internal/adapters/repository"
	"github.com/okian/crease/internal/adapters/storage/history"
	"github.com/okian/crease/internal/domain/biomech"
	"github.com/okian/crease/internal/domain/dedupe"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/session"
	"github.com/okian/crease/internal/domain/types"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

// ErrNotStarted is returned by operations that need a running pipeline. It
// matches queue.ErrClosed so callers treat it as temporarily unavailable.
var ErrNotStarted = fmt.Errorf("service not started: %w", queue.ErrClosed)

// History is the analysis archive the service writes to and reads from.
type History interface {
	Record(ctx context.Context, card scoring.Scorecard) error
	List(ctx context.Context, playerID string, mode scoring.Mode, limit int) ([]history.Entry, error)
}

// Service implements the API dependencies for the analysis pipeline.
type Service struct {
	mu sync.RWMutex

	engine  *scoring.Engine
	deduper dedupe.Deduper
	tracker *session.Tracker
	history History

	// per run
	frames   *queue.InMemoryQueue
	boards   map[scoring.Mode]*repository.TreapStore
	pool     *worker.Pool
	accepted atomic.Int64

	workerCount     int
	queueSize       int
	dedupeSize      int
	frameDurationMs float64
	historyWindow   int
	maxSessions     int

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 4,
		queueSize:       10000,
		dedupeSize:      50000,
		frameDurationMs: biomech.DefaultFrameDurationMs,
		historyWindow:   30,
		maxSessions:     10000,
		history:         history.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = scoring.NewEngine(scoring.WithFrameDuration(s.frameDurationMs))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.tracker = session.NewTracker(
		session.WithWindow(s.historyWindow),
		session.WithMaxSessions(s.maxSessions),
	)
	return s
}

// Start builds the queue, the leaderboards and the worker pool, then starts
// the workers. Starting a running service is a no-op. Cancelling ctx does
// not stop the pipeline; only Stop does, after draining the queue.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	s.logger.Info(ctx, "starting analysis service...")

	runCtx := context.WithoutCancel(ctx)
	s.accepted.Store(0)
	s.frames = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.boards = make(map[scoring.Mode]*repository.TreapStore, len(scoring.Modes()))
	for _, m := range scoring.Modes() {
		s.boards[m] = repository.NewTreapStore(runCtx, repository.WithBoard(string(m)))
	}
	s.pool = worker.NewPool(s.workerCount, s.frames, s.engine, s,
		worker.WithRecorder(s.history),
		worker.WithLogger(s.logger),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Float64("frame_duration_ms", s.frameDurationMs),
	)
	return nil
}

// Stop rejects new frames, drains the queue, waits for the workers and
// stops the leaderboards' background updaters. The boards stay readable
// until the next Start replaces them.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool, boards := s.pool, s.boards
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping analysis service...")

	// workers still offer scores while draining, so the lock must be free
	var errs []error
	if err := pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, b := range boards {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.logger.Info(ctx, "analysis service stopped")
	return errors.Join(errs...)
}

// Running reports whether Start has been called without a matching Stop.
func (s *Service) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Analyze scores one request synchronously. It touches neither the
// leaderboards nor the sessions.
func (s *Service) Analyze(ctx context.Context, in scoring.Input) (scoring.Scorecard, error) { //nolint:gocritic // hugeParam: inputs are passed by value through the engine
	start := time.Now()
	card, err := s.engine.Score(ctx, in)
	mode := string(in.Mode)
	switch {
	case err == nil:
		metrics.RecordAnalysis(mode, "ok", time.Since(start))
	case errors.Is(err, scoring.ErrDegeneratePose):
		metrics.RecordAnalysis(mode, "degenerate", time.Since(start))
		return scoring.Scorecard{}, err
	default:
		metrics.RecordAnalysis(mode, "error", time.Since(start))
		return scoring.Scorecard{}, err
	}

	metrics.RecordHeadline(mode, card.Headline)
	for _, rec := range card.Recommendations() {
		metrics.RecordRecommendation(mode, string(rec.Kind))
	}
	return card, nil
}

// SeenAndRecord atomically checks if a frame id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordFrameDuplicate()
	}
	return seen
}

// Unrecord removes a frame id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	return s.deduper.Size()
}

// Submit adds the frame to its session window and queues it with a snapshot
// of the frames that came before it. The frame stays in the window even if
// the queue rejects it.
func (s *Service) Submit(ctx context.Context, f model.Frame) error { //nolint:gocritic // hugeParam: frames are copied onto the queue anyway
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}

	prev, window, err := s.tracker.Observe(ctx, f.SessionID, f.Skeleton)
	if err != nil {
		return fmt.Errorf("observe frame %s: %w", f.FrameID, err)
	}
	f.Previous, f.History = prev, window

	if err := s.frames.Enqueue(ctx, f); err != nil {
		s.logger.Debug(ctx, "frame rejected",
			logger.String("frame_id", f.FrameID),
			logger.Error(err),
		)
		return fmt.Errorf("enqueue frame %s: %w", f.FrameID, err)
	}
	s.accepted.Add(1)
	metrics.RecordFrameAccepted(string(f.Mode))
	return nil
}

// ResetSession forgets a session's window.
func (s *Service) ResetSession(_ context.Context, sessionID string) bool {
	return s.tracker.Reset(sessionID)
}

// UpdateBest offers a headline to the leaderboard of its mode.
func (s *Service) UpdateBest(ctx context.Context, ps model.PlayerScore) (bool, error) {
	b, err := s.board(ps.Mode)
	if err != nil {
		return false, err
	}
	return b.UpdateBest(ctx, repository.Record{
		PlayerID:  ps.PlayerID,
		Score:     ps.Score,
		FrameID:   ps.FrameID,
		SessionID: ps.SessionID,
	})
}

// TopN returns the best n entries of a mode's leaderboard.
func (s *Service) TopN(ctx context.Context, mode scoring.Mode, n int) ([]types.Entry, error) {
	b, err := s.board(mode)
	if err != nil {
		return nil, err
	}
	entries, err := b.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = toEntry(mode, e)
	}
	return out, nil
}

// Rank returns a player's standing on a mode's leaderboard.
func (s *Service) Rank(ctx context.Context, mode scoring.Mode, playerID string) (types.Entry, error) {
	b, err := s.board(mode)
	if err != nil {
		return types.Entry{}, err
	}
	e, err := b.Rank(ctx, playerID)
	if err != nil {
		return types.Entry{}, err
	}
	return toEntry(mode, e), nil
}

// History lists a player's saved analyses, newest first. An empty mode lists
// every mode.
func (s *Service) History(ctx context.Context, playerID string, mode scoring.Mode, limit int) ([]history.Entry, error) {
	if mode != "" {
		if _, err := scoring.ParseMode(string(mode)); err != nil {
			return nil, err
		}
	}
	return s.history.List(ctx, playerID, mode, limit)
}

// Stats reports the pipeline state.
func (s *Service) Stats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		DedupeSize:     s.deduper.Size(),
		ActiveSessions: s.tracker.Len(),
		Players:        make(map[string]int, len(s.boards)),
	}
	if s.frames == nil {
		return st
	}
	st.QueueLen = s.frames.Len()
	st.QueueCap = s.frames.Cap()
	st.Workers = s.pool.Size()
	st.Accepted = s.accepted.Load()
	st.Processed = s.pool.Processed()
	for m, b := range s.boards {
		st.Players[string(m)] = b.Count(ctx)
	}
	return st
}

func (s *Service) board(mode scoring.Mode) (*repository.TreapStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.boards == nil {
		return nil, ErrNotStarted
	}
	b, ok := s.boards[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", scoring.ErrUnknownMode, mode)
	}
	return b, nil
}

func toEntry(mode scoring.Mode, e repository.Entry) types.Entry {
	return types.Entry{
		Rank:      e.Rank,
		PlayerID:  e.PlayerID,
		Mode:      string(mode),
		Score:     e.Score,
		FrameID:   e.FrameID,
		SessionID: e.SessionID,
	}
}
