package biomech

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/okian/crease/internal/domain/pose"
)

// agilityLookback bounds how many history entries the direction-change scan
// visits.
const agilityLookback = 10

// Movement holds whole-body motion metrics for one frame.
type Movement struct {
	Speed        float64 `json:"speed"`
	Acceleration float64 `json:"acceleration"`
	Distance     float64 `json:"distance"`
	Agility      float64 `json:"agility"`
}

// MovementMetrics derives speed, acceleration and agility from the current
// frame and the prior frames, oldest first. Acceleration needs two history
// entries and agility needs three.
func MovementMetrics(current pose.Skeleton, history []pose.Skeleton, frameDurationMs float64) Movement {
	n := len(history)
	if n == 0 {
		return Movement{}
	}

	prevCenter := pose.HipCenter(history[n-1])
	step := pose.Distance(pose.HipCenter(current), prevCenter)
	speed := perSecond(step, frameDurationMs)

	var accel float64
	if n >= 2 {
		prevSpeed := perSecond(pose.Distance(prevCenter, pose.HipCenter(history[n-2])), frameDurationMs)
		accel = (speed - prevSpeed) / frameDurationMs * 1000
	}

	var agility float64
	if n >= 3 {
		agility = math.Min(100, float64(directionChanges(history))*20)
	}

	return Movement{
		Speed:        speed,
		Acceleration: accel,
		Distance:     step,
		Agility:      agility,
	}
}

// directionChanges counts reversals of left-hip travel across the newest
// history entries.
func directionChanges(history []pose.Skeleton) int {
	n := len(history)
	stop := max(2, n-agilityLookback)
	changes := 0
	for i := n - 1; i >= stop; i-- {
		d1 := pose.Displacement(history[i-1].LeftHip, history[i].LeftHip)
		d2 := pose.Displacement(history[i-2].LeftHip, history[i-1].LeftHip)
		if r2.Dot(d1, d2) < 0 {
			changes++
		}
	}
	return changes
}
