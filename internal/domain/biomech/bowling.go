package biomech

import (
	"math"

	"github.com/okian/crease/internal/domain/pose"
)

// ActionType classifies the bowling arm at release.
type ActionType string

const (
	RoundArm ActionType = "Round Arm"
	SideArm  ActionType = "Side Arm"
	HighArm  ActionType = "High Arm"
)

const (
	roundArmBelow     = 120
	sideArmBelow      = 150
	slowBallBelow     = 100
	fastBallAbove     = 140
	bowlFollowThrough = 70
	slowRunUpBelow    = 50
	baseBallSpeedKmh  = 60
	armSpeedToBallKmh = 0.15
)

// BowlingAnalysis is the scorecard for one bowling frame. Speeds are in
// pixels per second except EstimatedBallSpeed, which is km/h.
type BowlingAnalysis struct {
	RunUpSpeed         float64          `json:"runUpSpeed"`
	ReleaseAngle       float64          `json:"releaseAngle"`
	ArmSpeed           float64          `json:"armSpeed"`
	ShoulderRotation   float64          `json:"shoulderRotation"`
	FollowThroughScore float64          `json:"followThroughScore"`
	EstimatedBallSpeed float64          `json:"estimatedBallSpeed"`
	ActionType         ActionType       `json:"actionType"`
	Recommendations    []Recommendation `json:"recommendations"`
}

// ClassifyAction maps a release angle to an arm action. Each threshold is
// exclusive, so 120 is SideArm and 150 is HighArm.
func ClassifyAction(releaseAngle float64) ActionType {
	switch {
	case releaseAngle < roundArmBelow:
		return RoundArm
	case releaseAngle < sideArmBelow:
		return SideArm
	default:
		return HighArm
	}
}

// AnalyzeBowling scores a bowling frame. Motion metrics are zero when there
// is no previous frame.
func AnalyzeBowling(current pose.Skeleton, previous pose.Optional, frameDurationMs float64) BowlingAnalysis {
	recs := make([]Recommendation, 0, 4)

	release := pose.Angle(current.RightShoulder, current.RightElbow, current.RightWrist)

	var armSpeed, runUp float64
	if prev, ok := previous.Get(); ok {
		armSpeed = perSecond(pose.Distance(current.RightWrist, prev.RightWrist), frameDurationMs)
		runUp = perSecond(pose.Distance(pose.HipCenter(current), pose.HipCenter(prev)), frameDurationMs)
	}

	action := ClassifyAction(release)
	switch action {
	case RoundArm:
		recs = append(recs, warning("Round arm action detected - ensure it's legal"))
	case SideArm:
		recs = append(recs, warning("Side arm action - work on vertical alignment"))
	default:
		recs = append(recs, info("Excellent high arm action!"))
	}

	followThrough := math.Min(100, release/180*100)
	if followThrough < bowlFollowThrough {
		recs = append(recs, warning("Complete your follow-through for better control"))
	}

	ballSpeed := armSpeed*armSpeedToBallKmh*(release/180) + baseBallSpeedKmh
	if ballSpeed < slowBallBelow {
		recs = append(recs, warning("Increase arm speed through strength training"))
	} else if ballSpeed > fastBallAbove {
		recs = append(recs, info("Excellent pace! Focus on accuracy now"))
	}

	if runUp < slowRunUpBelow {
		recs = append(recs, warning("Increase run-up speed for more momentum"))
	}

	return BowlingAnalysis{
		RunUpSpeed:         runUp,
		ReleaseAngle:       release,
		ArmSpeed:           armSpeed,
		ShoulderRotation:   math.Abs(current.LeftShoulder.X - current.RightShoulder.X),
		FollowThroughScore: followThrough,
		EstimatedBallSpeed: ballSpeed,
		ActionType:         action,
		Recommendations:    recs,
	}
}
