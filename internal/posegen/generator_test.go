package posegen

import (
	"errors"
	"testing"

	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMock(t *testing.T) {
	Convey("Given a 640x480 frame", t, func() {
		s := Mock(640, 480)

		Convey("Then the skeleton should be centred and upright", func() {
			So(s.Nose.X, ShouldEqual, 320)
			So(s.Nose.Y, ShouldEqual, 140)
			So(s.LeftShoulder.X, ShouldEqual, 260)
			So(s.RightShoulder.X, ShouldEqual, 380)
			So(s.LeftAnkle.Y, ShouldEqual, 500)
			So(s.Nose.Y, ShouldBeLessThan, s.LeftHip.Y)
		})

		Convey("Then every joint should carry a usable confidence", func() {
			So(s.Finite(), ShouldBeTrue)
			for _, k := range s.Keypoints() {
				So(k.Confidence, ShouldBeGreaterThanOrEqualTo, 0.8)
			}
		})
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(1280, 720, 42)

		Convey("When building sessions for seven players over all modes", func() {
			sessions := g.Sessions(7, 4, nil)

			Convey("Then players should cycle through the modes", func() {
				So(len(sessions), ShouldEqual, 7)
				So(sessions[0].Mode, ShouldEqual, scoring.Batting)
				So(sessions[4].Mode, ShouldEqual, scoring.Shot)
				So(sessions[5].Mode, ShouldEqual, scoring.Batting)
			})

			Convey("Then every frame should be unique and belong to its session", func() {
				seen := map[string]bool{}
				for _, s := range sessions {
					So(len(s.Frames), ShouldEqual, 4)
					for _, f := range s.Frames {
						So(seen[f.FrameID], ShouldBeFalse)
						seen[f.FrameID] = true
						So(f.SessionID, ShouldEqual, s.ID)
						So(f.PlayerID, ShouldEqual, s.PlayerID)
						So(f.Mode, ShouldEqual, s.Mode)
						So(f.Skeleton.Finite(), ShouldBeTrue)
					}
				}
				So(len(seen), ShouldEqual, 28)
			})

			Convey("Then the bat arm should sweep between frames", func() {
				frames := sessions[0].Frames
				moved := pose.Distance(frames[0].Skeleton.RightWrist, frames[3].Skeleton.RightWrist)
				So(moved, ShouldBeGreaterThan, 0)
			})

			Convey("Then mode-specific fields should be filled in", func() {
				for _, f := range sessions[3].Frames {
					So(f.Mode, ShouldEqual, scoring.Fielding)
					So(f.ResponseMs, ShouldBeBetweenOrEqual, minResponseMs, minResponseMs+responseSpread)
				}
				shot := sessions[4].Frames
				So(shot[0].BatContact, ShouldBeFalse)
				So(shot[3].BatContact, ShouldBeTrue)
			})
		})

		Convey("When restricting to one mode", func() {
			sessions := g.Sessions(3, 1, []scoring.Mode{scoring.Bowling})

			Convey("Then every session should use it", func() {
				for _, s := range sessions {
					So(s.Mode, ShouldEqual, scoring.Bowling)
				}
			})
		})
	})

	Convey("Given two generators with the same seed", t, func() {
		a := NewGenerator(1280, 720, 9).Sessions(2, 3, nil)
		b := NewGenerator(1280, 720, 9).Sessions(2, 3, nil)

		Convey("Then they should produce the same poses under fresh ids", func() {
			So(a[1].Frames[2].Skeleton, ShouldResemble, b[1].Frames[2].Skeleton)
			So(a[1].Frames[2].FrameID, ShouldNotEqual, b[1].Frames[2].FrameID)
		})
	})
}

func TestCheckOrder(t *testing.T) {
	Convey("Given leaderboard prefixes", t, func() {
		Convey("Then competition ranks with ties should pass", func() {
			So(checkOrder([]Entry{
				{Rank: 1, Score: 90}, {Rank: 1, Score: 90}, {Rank: 3, Score: 70}, {Rank: 4, Score: 60},
			}), ShouldBeNil)
			So(checkOrder(nil), ShouldBeNil)
		})

		Convey("Then dense ranks should be rejected", func() {
			err := checkOrder([]Entry{{Rank: 1, Score: 90}, {Rank: 1, Score: 90}, {Rank: 2, Score: 70}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("Then an unsorted board should be rejected", func() {
			err := checkOrder([]Entry{{Rank: 1, Score: 50}, {Rank: 2, Score: 70}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})

		Convey("Then split ties should be rejected", func() {
			err := checkOrder([]Entry{{Rank: 1, Score: 50}, {Rank: 2, Score: 50}})
			So(errors.Is(err, ErrInconsistent), ShouldBeTrue)
		})
	})
}
