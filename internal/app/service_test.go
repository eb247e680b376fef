package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/crease/internal/adapters/mq/queue"
	service "github.com/okian/crease/internal/app"
	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func kp(x, y float64) pose.Keypoint { return pose.Keypoint{X: x, Y: y, Confidence: 0.9} }

func standing() pose.Skeleton {
	return pose.Skeleton{
		Nose:          kp(100, 50),
		LeftEye:       kp(95, 45),
		RightEye:      kp(105, 45),
		LeftEar:       kp(90, 50),
		RightEar:      kp(110, 50),
		LeftShoulder:  kp(80, 100),
		RightShoulder: kp(120, 100),
		LeftElbow:     kp(70, 150),
		RightElbow:    kp(120, 150),
		LeftWrist:     kp(60, 200),
		RightWrist:    kp(120, 200),
		LeftHip:       kp(90, 200),
		RightHip:      kp(110, 200),
		LeftKnee:      kp(90, 300),
		RightKnee:     kp(110, 300),
		LeftAnkle:     kp(110, 400),
		RightAnkle:    kp(90, 400),
	}
}

func frame(id, session, player string, mode scoring.Mode) model.Frame {
	return model.Frame{
		FrameID:   id,
		SessionID: session,
		PlayerID:  player,
		Mode:      mode,
		Skeleton:  standing(),
		TS:        time.Now(),
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be running", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Running(), ShouldBeFalse)
		})

		Convey("Then stats should report an idle pipeline", func() {
			st := svc.Stats(context.Background())
			So(st.Workers, ShouldEqual, 0)
			So(st.QueueCap, ShouldEqual, 0)
			So(st.DedupeSize, ShouldEqual, 0)
		})
	})

	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))

		Convey("Then submitting a frame should report it unavailable", func() {
			err := svc.Submit(ctx, frame("f1", "s1", "p1", scoring.Batting))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(err, queue.ErrClosed), ShouldBeTrue)
		})

		Convey("Then the leaderboards should be unavailable", func() {
			_, err := svc.TopN(ctx, scoring.Batting, 10)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Then stopping should be a no-op", func() {
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service with custom options", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(100),
			service.WithDedupeSize(1000),
		)

		Convey("When starting the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop(ctx)

			Convey("Then it should be running with the configured pipeline", func() {
				So(svc.Running(), ShouldBeTrue)
				st := svc.Stats(ctx)
				So(st.Workers, ShouldEqual, 3)
				So(st.QueueCap, ShouldEqual, 100)
				So(st.Players, ShouldContainKey, "batting")
				So(st.Players, ShouldContainKey, "shot")
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Stats(ctx).Workers, ShouldEqual, 3)
			})
		})

		Convey("When stopping a running service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Submit(ctx, frame("f1", "s1", "p1", scoring.Batting)), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then queued frames should have been drained onto the board", func() {
				top, err := svc.TopN(ctx, scoring.Batting, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 1)
			})

			Convey("Then new frames should be rejected", func() {
				err := svc.Submit(ctx, frame("f2", "s1", "p1", scoring.Batting))
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And a restart should begin with empty boards", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer svc.Stop(ctx)
				top, err := svc.TopN(ctx, scoring.Batting, 10)
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)
			})
		})
	})
}

func TestService_StopDrainsAfterStartContextEnds(t *testing.T) {
	Convey("Given a service started with a context that is later cancelled", t, func() {
		const frames = 2000
		runCtx, cancelRun := context.WithCancel(context.Background())
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(frames),
		)
		So(svc.Start(runCtx), ShouldBeNil)

		for i := 0; i < frames; i++ {
			id := fmt.Sprintf("p-%04d", i)
			So(svc.Submit(context.Background(), frame("f-"+id, "s-"+id, id, scoring.Batting)), ShouldBeNil)
		}

		Convey("When the context is cancelled before Stop", func() {
			cancelRun()
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancelStop()
			So(svc.Stop(stopCtx), ShouldBeNil)

			Convey("Then every submitted frame has been ranked", func() {
				ctx := context.Background()
				st := svc.Stats(ctx)
				So(st.QueueLen, ShouldEqual, 0)
				So(st.Accepted, ShouldEqual, int64(frames))
				So(st.Processed, ShouldEqual, int64(frames))
				So(st.Players["batting"], ShouldEqual, frames)

				top, err := svc.TopN(ctx, scoring.Batting, frames)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, frames)
			})
		})
	})
}

func TestService_Dedupe(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithDedupeSize(10))

		Convey("When a frame id is seen twice", func() {
			first := svc.SeenAndRecord(ctx, "frame-1")
			second := svc.SeenAndRecord(ctx, "frame-1")

			Convey("Then only the second sighting is a duplicate", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})
		})

		Convey("When an id is unrecorded", func() {
			svc.SeenAndRecord(ctx, "frame-2")
			svc.Unrecord(ctx, "frame-2")

			Convey("Then it can be accepted again", func() {
				So(svc.SeenAndRecord(ctx, "frame-2"), ShouldBeFalse)
			})
		})
	})
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When analyzing a batting frame", func() {
			card, err := svc.Analyze(ctx, scoring.Input{
				PlayerID: "p1",
				Mode:     scoring.Batting,
				Current:  standing(),
			})

			Convey("Then the headline should be the overall technique", func() {
				So(err, ShouldBeNil)
				So(card.Mode, ShouldEqual, scoring.Batting)
				So(card.Batting, ShouldNotBeNil)
				So(card.Headline, ShouldEqual, card.Batting.OverallTechnique)
			})

			Convey("And nothing should reach a leaderboard", func() {
				So(svc.Stats(ctx).Players, ShouldBeEmpty)
			})
		})

		Convey("When analyzing an unknown mode", func() {
			_, err := svc.Analyze(ctx, scoring.Input{Mode: "cover-drive", Current: standing()})

			Convey("Then it should fail with ErrUnknownMode", func() {
				So(errors.Is(err, scoring.ErrUnknownMode), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Analyze(cctx, scoring.Input{Mode: scoring.Batting, Current: standing()})

			Convey("Then it should return the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		svc := service.New(service.WithWorkerCount(1), service.WithHistoryWindow(5))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop(ctx)

		Convey("When frames arrive for two sessions", func() {
			So(svc.Submit(ctx, frame("a1", "alpha", "p1", scoring.Movement)), ShouldBeNil)
			So(svc.Submit(ctx, frame("a2", "alpha", "p1", scoring.Movement)), ShouldBeNil)
			So(svc.Submit(ctx, frame("b1", "beta", "p2", scoring.Movement)), ShouldBeNil)

			Convey("Then both sessions should be tracked", func() {
				So(svc.Stats(ctx).ActiveSessions, ShouldEqual, 2)
			})

			Convey("And resetting one should forget it", func() {
				So(svc.ResetSession(ctx, "alpha"), ShouldBeTrue)
				So(svc.ResetSession(ctx, "alpha"), ShouldBeFalse)
				So(svc.Stats(ctx).ActiveSessions, ShouldEqual, 1)
			})
		})

		Convey("When the submit context is already cancelled", func() {
			cctx, ccancel := context.WithCancel(ctx)
			ccancel()
			err := svc.Submit(cctx, frame("c1", "gamma", "p3", scoring.Movement))

			Convey("Then the frame should be refused", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(svc.Stats(ctx).ActiveSessions, ShouldEqual, 0)
			})
		})
	})
}
