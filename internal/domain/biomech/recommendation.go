// Package biomech derives cricket technique scorecards from skeleton poses.
//
// Every function here is pure: all state arrives as arguments and each call
// builds a fresh result. No input is validated; degenerate poses produce NaN
// scores rather than errors.
package biomech

// DefaultFrameDurationMs is the frame period at 60 fps.
const DefaultFrameDurationMs = 16.67

// Kind is the severity of a coaching recommendation.
type Kind string

const (
	// Info praises good form.
	Info Kind = "info"
	// Warning asks for a correction.
	Warning Kind = "warning"
)

// Recommendation is one coaching message.
type Recommendation struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

func info(text string) Recommendation    { return Recommendation{Kind: Info, Text: text} }
func warning(text string) Recommendation { return Recommendation{Kind: Warning, Text: text} }

// perSecond scales a per-frame pixel displacement to pixels per second.
func perSecond(px, frameDurationMs float64) float64 {
	return px / frameDurationMs * 1000
}
