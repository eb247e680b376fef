package biomech_test

import (
	"testing"

	"github.com/okian/crease/internal/domain/biomech"
	"github.com/okian/crease/internal/domain/pose"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalyzeBatting(t *testing.T) {
	Convey("Given a batter standing tall with a straight right arm", t, func() {
		s := standing()

		Convey("When analysed without a previous frame", func() {
			a := biomech.AnalyzeBatting(s, pose.None())

			Convey("Then every component is at its best and the excess back-lift is flagged", func() {
				So(a.StanceScore, ShouldEqual, 100.0)
				So(a.BackLiftAngle, ShouldAlmostEqual, 180, 1e-9)
				So(a.FollowThroughScore, ShouldEqual, 100.0)
				So(a.FootworkScore, ShouldEqual, 100.0)
				So(a.HeadStability, ShouldEqual, 100.0)
				So(a.OverallTechnique, ShouldAlmostEqual, 100, 1e-9)
				So(texts(a.Recommendations), ShouldResemble, []string{
					"Reduce excessive back lift for better control",
					"Excellent technique! Maintain this form",
				})
				So(a.Recommendations[0].Kind, ShouldEqual, biomech.Warning)
				So(a.Recommendations[1].Kind, ShouldEqual, biomech.Info)
			})
		})
	})

	Convey("Given a batter with poor balance, a low back-lift and locked knees", t, func() {
		s := standing()
		s.RightShoulder.Y = 104
		s.RightHip.Y = 203
		s.RightWrist = kp(170, 140)
		s.LeftAnkle = kp(190, 300)
		s.RightKnee = kp(110, 300)
		s.RightAnkle = kp(10, 300)

		prev := s
		prev.Nose.Y = s.Nose.Y - 20

		a := biomech.AnalyzeBatting(s, pose.Some(prev))

		Convey("Then every sub-score reflects the faults", func() {
			So(a.StanceScore, ShouldEqual, 65.0)
			So(a.BackLiftAngle, ShouldAlmostEqual, 78.6901, 1e-3)
			So(a.HeadStability, ShouldEqual, 60.0)
			So(a.FootworkScore, ShouldEqual, 0.0)
			So(a.FollowThroughScore, ShouldAlmostEqual, a.BackLiftAngle*0.6, 1e-12)
			So(a.OverallTechnique, ShouldAlmostEqual, 42.62, 1e-2)
		})

		Convey("Then recommendations follow stance, back-lift, head, footwork, overall order", func() {
			So(texts(a.Recommendations), ShouldResemble, []string{
				"Keep your shoulders and hips more level for better balance",
				"Increase your back lift for more power",
				"Keep your head still and eyes level while playing",
				"Bend your knees more for better footwork and balance",
				"Focus on fundamentals - practice basic drills",
			})
			for _, r := range a.Recommendations {
				So(r.Kind, ShouldEqual, biomech.Warning)
			}
		})
	})

	Convey("Given a large stance tilt", t, func() {
		s := standing()
		s.RightShoulder.Y = 160

		Convey("Then the stance score floors at zero", func() {
			So(biomech.AnalyzeBatting(s, pose.None()).StanceScore, ShouldEqual, 0.0)
		})
	})

	Convey("Given a large head movement between frames", t, func() {
		prev := standing()
		prev.Nose.Y -= 80

		Convey("Then head stability floors at zero", func() {
			So(biomech.AnalyzeBatting(standing(), pose.Some(prev)).HeadStability, ShouldEqual, 0.0)
		})
	})
}

func TestOverallTechnique(t *testing.T) {
	Convey("The overall technique is a fixed weighting of the sub-scores", t, func() {
		got := biomech.OverallTechnique(80, 100, 60, 50, 100)
		So(got, ShouldAlmostEqual, 20+100.0/180*100*0.25+12+10+10, 1e-12)
		So(got, ShouldAlmostEqual, 65.89, 1e-2)
	})
}

func TestBattingWristSwing(t *testing.T) {
	Convey("Given two frames where only the right wrist moves from (100,100) to (130,100)", t, func() {
		prev := standing()
		prev.RightShoulder = kp(100, 100)
		prev.RightElbow = kp(100, 140)
		prev.RightWrist = kp(100, 100)
		cur := prev
		cur.RightWrist = kp(130, 100)

		a := biomech.AnalyzeBatting(cur, pose.Some(prev))

		Convey("Then the back-lift and overall scores are reproducible from the formula", func() {
			So(a.BackLiftAngle, ShouldAlmostEqual, 36.8699, 1e-3)
			So(a.HeadStability, ShouldEqual, 100.0)
			So(a.StanceScore, ShouldEqual, 100.0)
			So(a.FootworkScore, ShouldEqual, 100.0)
			So(a.OverallTechnique, ShouldEqual, biomech.OverallTechnique(
				a.StanceScore, a.BackLiftAngle, a.FollowThroughScore, a.FootworkScore, a.HeadStability))
			So(a.OverallTechnique, ShouldAlmostEqual, 64.5452, 1e-3)
			So(texts(a.Recommendations), ShouldResemble, []string{"Increase your back lift for more power"})
		})

		Convey("Then the same pair analysed as bowling yields the per-second wrist speed", func() {
			b := biomech.AnalyzeBowling(cur, pose.Some(prev), biomech.DefaultFrameDurationMs)
			So(b.ArmSpeed, ShouldAlmostEqual, 30/biomech.DefaultFrameDurationMs*1000, 1e-9)
			So(b.RunUpSpeed, ShouldEqual, 0.0)
		})
	})
}
