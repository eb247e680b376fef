package biomech

import (
	"math"

	"github.com/okian/crease/internal/domain/pose"
)

// ShotType is the label for a detected batting stroke.
type ShotType string

const (
	PullShot      ShotType = "Pull Shot"
	Drive         ShotType = "Drive"
	CutShot       ShotType = "Cut Shot"
	SquareDrive   ShotType = "Square Drive"
	DefensiveShot ShotType = "Defensive Shot"
)

const (
	shotHeightBandPx = 50
	shotReachPx      = 50
	cutBackLiftAbove = 150
)

// ShotPower estimates stroke power in [0,100] from wrist travel and trunk
// rotation between two frames. Wrist travel is in pixels per frame, not per
// second. Without bat contact there is no power.
func ShotPower(current, previous pose.Skeleton, batContact bool) float64 {
	if !batContact {
		return 0
	}
	wrist := pose.Distance(current.RightWrist, previous.RightWrist)
	rotation := math.Abs(pose.ShoulderBearing(current) - pose.ShoulderBearing(previous))
	return math.Min(100, wrist*2+rotation*100)
}

// DetectShotType classifies the stroke from the current frame alone. Rules
// are checked in order and the first match wins.
func DetectShotType(current pose.Skeleton) ShotType {
	bat := current.RightWrist.Y
	body := pose.ShoulderCenterY(current)
	backLift := pose.Angle(current.RightShoulder, current.RightElbow, current.RightWrist)

	switch {
	case bat < body-shotHeightBandPx:
		return PullShot
	case bat > body+shotHeightBandPx:
		return Drive
	case backLift > cutBackLiftAbove:
		return CutShot
	case current.RightWrist.X > current.RightShoulder.X+shotReachPx:
		return SquareDrive
	default:
		return DefensiveShot
	}
}
