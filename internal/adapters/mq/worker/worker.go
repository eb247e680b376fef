// Package worker runs the asynchronous analysis of queued frames.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 4 // scoring is CPU bound
	metricsUpdateInterval   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Updater offers a headline to the leaderboard of its mode.
type Updater interface {
	UpdateBest(ctx context.Context, ps model.PlayerScore) (bool, error)
}

// Recorder persists a scorecard to the analysis history.
type Recorder interface {
	Record(ctx context.Context, card scoring.Scorecard) error
}

// Queue defines how workers receive frames.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Frame
}

// Worker processes frames until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the frame in hand.
	Shutdown(ctx context.Context) error
}

// activity is shared by the workers of a pool.
type activity struct {
	busy      atomic.Int64
	processed atomic.Int64
	workers   int
}

func (a *activity) enter() {
	n := a.busy.Add(1)
	metrics.UpdateWorkerActiveCount(int(n))
	metrics.UpdateWorkerIdleCount(a.workers - int(n))
}

func (a *activity) leave() {
	n := a.busy.Add(-1)
	a.processed.Add(1)
	metrics.UpdateWorkerActiveCount(int(n))
	metrics.UpdateWorkerIdleCount(a.workers - int(n))
}

// InMemoryWorker scores frames from a queue and publishes the results.
type InMemoryWorker struct {
	queue    Queue
	scorer   scoring.Scorer
	updater  Updater
	recorder Recorder
	name     string
	act      *activity

	shutdown chan struct{}
	stopped  atomic.Bool
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, scorer scoring.Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		act:      &activity{workers: 1},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	frames := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := w.process(ctx, f); err != nil {
				w.logger.Error(ctx, "frame analysis failed",
					logger.String("frame_id", f.FrameID),
					logger.String("mode", string(f.Mode)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	if w.stopped.CompareAndSwap(false, true) {
		close(w.shutdown)
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, scoring.ErrDegeneratePose):
		return "degenerate"
	default:
		return "error"
	}
}

// process scores one frame, records it and offers it to the leaderboard.
// History failures are logged but do not stop the ranking update.
func (w *InMemoryWorker) process(ctx context.Context, f model.Frame) error { //nolint:gocritic // hugeParam: frames arrive by value
	start := time.Now()
	w.act.enter()
	defer func() {
		w.act.leave()
		metrics.RecordWorkerProcessingLatency(time.Since(start))
	}()

	mode := string(f.Mode)
	scoreStart := time.Now()
	card, err := w.scorer.Score(ctx, f.Input())
	metrics.RecordAnalysis(mode, outcome(err), time.Since(scoreStart))
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score frame %s: %w", f.FrameID, err)
	}

	metrics.RecordHeadline(mode, card.Headline)
	for _, r := range card.Recommendations() {
		metrics.RecordRecommendation(mode, string(r.Kind))
	}

	if w.recorder != nil {
		if err := w.recorder.Record(ctx, card); err != nil {
			metrics.RecordHistoryWrite("error")
			metrics.RecordErrorByComponent("worker", "history_error")
			w.logger.Warn(ctx, "history write failed", logger.String("frame_id", f.FrameID), logger.Error(err))
		} else {
			metrics.RecordHistoryWrite("ok")
		}
	}

	if f.PlayerID == "" {
		return nil
	}
	updated, err := w.updater.UpdateBest(ctx, model.Score(card))
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "leaderboard_error")
		return fmt.Errorf("leaderboard update for frame %s: %w", f.FrameID, err)
	}
	if updated {
		w.logger.Debug(ctx, "new personal best",
			logger.String("player_id", f.PlayerID),
			logger.String("mode", mode),
			logger.Float64("score", card.Headline),
		)
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	act     *activity

	shutdown chan struct{}
	stopped  atomic.Bool
	lastTick time.Time

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Options apply to every
// worker. A count below one uses a multiple of the CPU count.
func NewPool(workerCount int, queue Queue, scorer scoring.Scorer, updater Updater, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		act:      &activity{workers: workerCount},
		shutdown: make(chan struct{}),
		lastTick: time.Now(),
		logger:   logger.Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(queue, scorer, updater, wopts...)
		w.act = p.act
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)
	metrics.UpdateWorkerThroughput(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many frames the pool has handled, including failures.
func (p *Pool) Processed() int64 { return p.act.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			cur := p.act.processed.Load()
			if secs := now.Sub(p.lastTick).Seconds(); secs > 0 {
				metrics.UpdateWorkerThroughput(float64(cur-last) / secs)
			}
			last, p.lastTick = cur, now
		}
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	close(p.shutdown)

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
