package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/crease/internal/adapters/mq/worker"
	"github.com/okian/crease/internal/domain/biomech"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	logging "github.com/okian/crease/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	frames chan model.Frame
	once   sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{frames: make(chan model.Frame, 16)}
}

func (q *mockQueue) Dequeue(context.Context) <-chan model.Frame { return q.frames }

func (q *mockQueue) Close() error {
	q.once.Do(func() { close(q.frames) })
	return nil
}

type mockScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	errs   map[string]error
}

func newMockScorer() *mockScorer {
	return &mockScorer{scores: map[string]float64{}, errs: map[string]error{}}
}

func (s *mockScorer) Score(_ context.Context, in scoring.Input) (scoring.Scorecard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[in.FrameID]; ok {
		return scoring.Scorecard{}, err
	}
	return scoring.Scorecard{
		FrameID:   in.FrameID,
		SessionID: in.SessionID,
		PlayerID:  in.PlayerID,
		Mode:      in.Mode,
		Headline:  s.scores[in.FrameID],
		Batting: &biomech.BattingAnalysis{Recommendations: []biomech.Recommendation{
			{Kind: biomech.Warning, Text: "Work on your stance"},
		}},
	}, nil
}

func (s *mockScorer) set(frameID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[frameID] = score
}

func (s *mockScorer) fail(frameID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[frameID] = err
}

type mockUpdater struct {
	mu      sync.Mutex
	offers  map[string]model.PlayerScore
	failFor string
}

func newMockUpdater() *mockUpdater { return &mockUpdater{offers: map[string]model.PlayerScore{}} }

func (u *mockUpdater) UpdateBest(_ context.Context, ps model.PlayerScore) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if ps.PlayerID == u.failFor {
		return false, errors.New("board unavailable")
	}
	u.offers[ps.PlayerID] = ps
	return true, nil
}

func (u *mockUpdater) get(player string) (model.PlayerScore, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	ps, ok := u.offers[player]
	return ps, ok
}

type mockRecorder struct {
	mu    sync.Mutex
	cards []scoring.Scorecard
	err   error
}

func (r *mockRecorder) Record(_ context.Context, card scoring.Scorecard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.cards = append(r.cards, card)
	return nil
}

func (r *mockRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cards)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func frame(id, player string) model.Frame {
	return model.Frame{FrameID: id, SessionID: "s1", PlayerID: player, Mode: scoring.Batting, TS: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker with a recorder", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		updater := newMockUpdater()
		rec := &mockRecorder{}

		w := worker.NewInMemoryWorker(q, scorer, updater, worker.WithName("test-worker"), worker.WithRecorder(rec))
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		convey.Reset(cancel)

		convey.Convey("When a frame is scored", func() {
			scorer.set("f1", 72.5)
			q.frames <- frame("f1", "p1")

			convey.Convey("Then the headline reaches the leaderboard and the history", func() {
				convey.So(eventually(func() bool { _, ok := updater.get("p1"); return ok }), convey.ShouldBeTrue)
				ps, _ := updater.get("p1")
				convey.So(ps.Score, convey.ShouldEqual, 72.5)
				convey.So(ps.Mode, convey.ShouldEqual, scoring.Batting)
				convey.So(ps.FrameID, convey.ShouldEqual, "f1")
				convey.So(eventually(func() bool { return rec.count() == 1 }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When scoring fails", func() {
			scorer.fail("f2", scoring.ErrDegeneratePose)
			q.frames <- frame("f2", "p2")
			scorer.set("f3", 10)
			q.frames <- frame("f3", "p3")

			convey.Convey("Then the frame is skipped and the worker carries on", func() {
				convey.So(eventually(func() bool { _, ok := updater.get("p3"); return ok }), convey.ShouldBeTrue)
				_, ok := updater.get("p2")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(rec.count(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the frame has no player", func() {
			q.frames <- frame("f4", "")

			convey.Convey("Then it is recorded but not ranked", func() {
				convey.So(eventually(func() bool { return rec.count() == 1 }), convey.ShouldBeTrue)
				updater.mu.Lock()
				convey.So(updater.offers, convey.ShouldBeEmpty)
				updater.mu.Unlock()
			})
		})

		convey.Convey("When shutting down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.Convey("Then it stops and a second call is harmless", func() {
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose history store fails", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		updater := newMockUpdater()
		rec := &mockRecorder{err: errors.New("disk full")}

		w := worker.NewInMemoryWorker(q, scorer, updater, worker.WithRecorder(rec))
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		convey.Reset(cancel)

		scorer.set("f1", 5)
		q.frames <- frame("f1", "p1")

		convey.Convey("Then the leaderboard is still updated", func() {
			convey.So(eventually(func() bool { _, ok := updater.get("p1"); return ok }), convey.ShouldBeTrue)
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a started pool of three workers", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		updater := newMockUpdater()
		updater.failFor = "bad"

		pool := worker.NewPool(3, q, scorer, updater)
		ctx, cancel := context.WithCancel(context.Background())
		convey.Reset(cancel)
		pool.Start(ctx)

		convey.So(pool.Size(), convey.ShouldEqual, 3)

		convey.Convey("When several frames are queued and the pool shuts down", func() {
			for i, id := range []string{"a", "b", "c", "bad"} {
				scorer.set(id, float64(10*(i+1)))
				q.frames <- frame(id, id)
			}
			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			err := pool.Shutdown(sctx)

			convey.Convey("Then every frame was handled before the workers stopped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool.Processed(), convey.ShouldEqual, int64(4))
				for _, id := range []string{"a", "b", "c"} {
					_, ok := updater.get(id)
					convey.So(ok, convey.ShouldBeTrue)
				}
				_, ok := updater.get("bad")
				convey.So(ok, convey.ShouldBeFalse)
				convey.So(pool.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a pool created with no explicit size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), newMockScorer(), newMockUpdater())

		convey.Convey("Then it sizes itself from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
