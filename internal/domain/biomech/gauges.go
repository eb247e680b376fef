package biomech

import "math"

// Gauges are the four whole-number dashboard dials shown next to a live
// analysis.
type Gauges struct {
	Speed     int `json:"speed"`
	Power     int `json:"power"`
	Accuracy  int `json:"accuracy"`
	Technique int `json:"technique"`
}

// BattingGauges maps a batting scorecard onto the dashboard dials.
func BattingGauges(a BattingAnalysis) Gauges {
	return Gauges{
		Speed:     round(a.BackLiftAngle / 1.8),
		Power:     round(a.FollowThroughScore),
		Accuracy:  round(a.StanceScore),
		Technique: round(a.OverallTechnique),
	}
}

// BowlingGauges maps a bowling scorecard onto the dashboard dials.
func BowlingGauges(a BowlingAnalysis) Gauges {
	return Gauges{
		Speed:     round(a.EstimatedBallSpeed * 0.7),
		Power:     round(a.ArmSpeed / 2),
		Accuracy:  round(a.FollowThroughScore),
		Technique: round(a.ReleaseAngle / 180 * 100),
	}
}

// round rounds halves toward positive infinity. Non-finite input maps to 0.
func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
