package biomech

import (
	"math"

	"github.com/okian/crease/internal/domain/pose"
)

const (
	coverGroundPx    = 50
	coverGroundBonus = 30
)

// Fielding is the reaction scorecard for a fielding attempt.
//
// Efficiency and Score are capped at 100 but have no lower bound: a reaction
// time near zero or negative drives them far outside [0,100].
type Fielding struct {
	ReactionTime  float64 `json:"reactionTime"`
	MovementSpeed float64 `json:"movementSpeed"`
	Efficiency    float64 `json:"efficiency"`
	Score         float64 `json:"score"`
}

// FieldingReaction scores a fielder's response from the trigger and response
// timestamps (ms) and the frames captured in between. Each frame is taken to
// last DefaultFrameDurationMs regardless of the capture rate.
func FieldingReaction(skeletons []pose.Skeleton, triggerMs, responseMs float64) Fielding {
	reaction := responseMs - triggerMs
	if len(skeletons) < 2 {
		return Fielding{ReactionTime: reaction}
	}

	covered := pose.Distance(
		pose.HipCenter(skeletons[0]),
		pose.HipCenter(skeletons[len(skeletons)-1]),
	)
	totalMs := float64(len(skeletons)) * DefaultFrameDurationMs
	speed := covered / totalMs * 1000

	efficiency := math.Min(100, (1000/reaction)*10+speed*0.5)

	bonus := 0.0
	if covered > coverGroundPx {
		bonus = coverGroundBonus
	}

	return Fielding{
		ReactionTime:  reaction,
		MovementSpeed: speed,
		Efficiency:    efficiency,
		Score:         math.Min(100, efficiency*0.7+bonus),
	}
}
