package biomech

import (
	"math"

	"github.com/okian/crease/internal/domain/pose"
)

// Batting thresholds.
const (
	stanceWarnBelow     = 70
	backLiftLow         = 90
	backLiftHigh        = 150
	headWarnBelow       = 70
	footworkWarnBelow   = 50
	kneeBentMin         = 140
	kneeBentMax         = 180
	techniqueExcellent  = 85
	techniqueWeakBelow  = 60
	stancePenaltyPerPx  = 5
	headPenaltyPerPx    = 2
	followThroughFactor = 0.6
)

// BattingAnalysis is the scorecard for one batting frame. BackLiftAngle is in
// degrees, the other scores are in [0,100].
type BattingAnalysis struct {
	StanceScore        float64          `json:"stanceScore"`
	BackLiftAngle      float64          `json:"backLiftAngle"`
	FollowThroughScore float64          `json:"followThroughScore"`
	FootworkScore      float64          `json:"footworkScore"`
	HeadStability      float64          `json:"headStability"`
	OverallTechnique   float64          `json:"overallTechnique"`
	Recommendations    []Recommendation `json:"recommendations"`
}

// AnalyzeBatting scores a batting stance. Without a previous frame head
// stability is assumed perfect.
func AnalyzeBatting(current pose.Skeleton, previous pose.Optional) BattingAnalysis {
	recs := make([]Recommendation, 0, 5)

	shoulderTilt := math.Abs(current.LeftShoulder.Y - current.RightShoulder.Y)
	hipTilt := math.Abs(current.LeftHip.Y - current.RightHip.Y)
	stance := math.Max(0, 100-(shoulderTilt+hipTilt)*stancePenaltyPerPx)
	if stance < stanceWarnBelow {
		recs = append(recs, warning("Keep your shoulders and hips more level for better balance"))
	}

	backLift := pose.Angle(current.RightShoulder, current.RightElbow, current.RightWrist)
	if backLift < backLiftLow {
		recs = append(recs, warning("Increase your back lift for more power"))
	} else if backLift > backLiftHigh {
		recs = append(recs, warning("Reduce excessive back lift for better control"))
	}

	head := 100.0
	if prev, ok := previous.Get(); ok {
		head = math.Max(0, 100-math.Abs(current.Nose.Y-prev.Nose.Y)*headPenaltyPerPx)
		if head < headWarnBelow {
			recs = append(recs, warning("Keep your head still and eyes level while playing"))
		}
	}

	footwork := kneeScore(pose.Angle(current.LeftHip, current.LeftKnee, current.LeftAnkle)) +
		kneeScore(pose.Angle(current.RightHip, current.RightKnee, current.RightAnkle))
	if footwork < footworkWarnBelow {
		recs = append(recs, warning("Bend your knees more for better footwork and balance"))
	}

	followThrough := math.Min(100, backLift*followThroughFactor)
	overall := OverallTechnique(stance, backLift, followThrough, footwork, head)

	if overall >= techniqueExcellent {
		recs = append(recs, info("Excellent technique! Maintain this form"))
	} else if overall < techniqueWeakBelow {
		recs = append(recs, warning("Focus on fundamentals - practice basic drills"))
	}

	return BattingAnalysis{
		StanceScore:        stance,
		BackLiftAngle:      backLift,
		FollowThroughScore: followThrough,
		FootworkScore:      footwork,
		HeadStability:      head,
		OverallTechnique:   overall,
		Recommendations:    recs,
	}
}

// OverallTechnique combines the batting sub-scores into one weighted score.
func OverallTechnique(stance, backLiftAngle, followThrough, footwork, headStability float64) float64 {
	return stance*0.25 +
		(backLiftAngle/180*100)*0.25 +
		followThrough*0.2 +
		footwork*0.2 +
		headStability*0.1
}

func kneeScore(angle float64) float64 {
	if angle > kneeBentMin && angle < kneeBentMax {
		return 50
	}
	return 0
}
