// Package scoring selects and runs the biomechanics analyzer for a frame and
// reduces the result to a scorecard with a single rankable headline.
package scoring

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/okian/crease/internal/domain/biomech"
	"github.com/okian/crease/internal/domain/pose"
)

// Mode names an analyzer.
type Mode string

const (
	Batting  Mode = "batting"
	Bowling  Mode = "bowling"
	Movement Mode = "movement"
	Fielding Mode = "fielding"
	Shot     Mode = "shot"
)

// Modes lists every supported mode in a stable order.
func Modes() []Mode { return []Mode{Batting, Bowling, Movement, Fielding, Shot} }

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithFrameDuration sets the frame period used for per-second speeds.
func WithFrameDuration(ms float64) Option {
	return func(e *Engine) {
		if ms > 0 && !math.IsInf(ms, 0) {
			e.frameDurationMs = ms
		}
	}
}

// Input carries one frame and whatever context the chosen analyzer needs.
type Input struct {
	FrameID    string
	SessionID  string
	PlayerID   string
	Mode       Mode
	Current    pose.Skeleton
	Previous   pose.Optional
	History    []pose.Skeleton // oldest first, excluding Current
	BatContact bool
	TriggerMs  float64
	ResponseMs float64
}

// ShotResult pairs the stroke label with its power estimate.
type ShotResult struct {
	Type  biomech.ShotType `json:"type"`
	Power float64          `json:"power"`
}

// Scorecard is the outcome of scoring one frame. Exactly one of the analysis
// pointers is set, matching Mode.
type Scorecard struct {
	FrameID   string                   `json:"frame_id,omitempty"`
	SessionID string                   `json:"session_id,omitempty"`
	PlayerID  string                   `json:"player_id,omitempty"`
	Mode      Mode                     `json:"mode"`
	Headline  float64                  `json:"headline"`
	Batting   *biomech.BattingAnalysis `json:"batting,omitempty"`
	Bowling   *biomech.BowlingAnalysis `json:"bowling,omitempty"`
	Movement  *biomech.Movement        `json:"movement,omitempty"`
	Fielding  *biomech.Fielding        `json:"fielding,omitempty"`
	Shot      *ShotResult              `json:"shot,omitempty"`
	Gauges    *biomech.Gauges          `json:"gauges,omitempty"`
}

// Recommendations returns the coaching messages, if the mode produces any.
func (c Scorecard) Recommendations() []biomech.Recommendation {
	switch {
	case c.Batting != nil:
		return c.Batting.Recommendations
	case c.Bowling != nil:
		return c.Bowling.Recommendations
	default:
		return nil
	}
}

// Scorer computes a scorecard from an input.
type Scorer interface {
	// Score computes a scorecard, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Scorecard, error)
}

// Engine implements Scorer on top of the biomech analyzers.
type Engine struct {
	frameDurationMs float64
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{frameDurationMs: biomech.DefaultFrameDurationMs}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FrameDuration returns the configured frame period in milliseconds.
func (e *Engine) FrameDuration() float64 { return e.frameDurationMs }

// Score runs the analyzer for in.Mode. The analyzers themselves never fail;
// ErrDegeneratePose is returned when they produced a non-finite number.
func (e *Engine) Score(ctx context.Context, in Input) (Scorecard, error) {
	if err := ctx.Err(); err != nil {
		return Scorecard{}, fmt.Errorf("context cancelled: %w", err)
	}

	card := Scorecard{
		FrameID:   in.FrameID,
		SessionID: in.SessionID,
		PlayerID:  in.PlayerID,
		Mode:      in.Mode,
	}

	switch in.Mode {
	case Batting:
		a := biomech.AnalyzeBatting(in.Current, in.Previous)
		g := biomech.BattingGauges(a)
		card.Batting, card.Gauges, card.Headline = &a, &g, a.OverallTechnique
	case Bowling:
		a := biomech.AnalyzeBowling(in.Current, in.Previous, e.frameDurationMs)
		g := biomech.BowlingGauges(a)
		card.Bowling, card.Gauges, card.Headline = &a, &g, a.EstimatedBallSpeed
	case Movement:
		m := biomech.MovementMetrics(in.Current, in.History, e.frameDurationMs)
		card.Movement, card.Headline = &m, m.Agility
	case Fielding:
		seq := make([]pose.Skeleton, 0, len(in.History)+1)
		seq = append(seq, in.History...)
		seq = append(seq, in.Current)
		f := biomech.FieldingReaction(seq, in.TriggerMs, in.ResponseMs)
		card.Fielding, card.Headline = &f, f.Score
	case Shot:
		res := ShotResult{Type: biomech.DetectShotType(in.Current)}
		if prev, ok := in.Previous.Get(); ok {
			res.Power = biomech.ShotPower(in.Current, prev, in.BatContact)
		}
		card.Shot, card.Headline = &res, res.Power
	default:
		return Scorecard{}, fmt.Errorf("%w: %q", ErrUnknownMode, in.Mode)
	}

	if !finiteFloats(reflect.ValueOf(card)) {
		return Scorecard{}, ErrDegeneratePose
	}
	return card, nil
}

// finiteFloats walks v and reports whether every float it holds is finite.
func finiteFloats(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Pointer:
		return v.IsNil() || finiteFloats(v.Elem())
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !finiteFloats(v.Field(i)) {
				return false
			}
		}
	}
	return true
}
