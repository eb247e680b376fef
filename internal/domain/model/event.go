// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
)

// Frame is one pose sample submitted for asynchronous analysis. Previous and
// History are snapshots of the session window taken when the frame was
// accepted, so workers never read shared session state.
type Frame struct {
	FrameID    string // unique id for idempotency
	SessionID  string // capture session the frame belongs to
	PlayerID   string // subject being ranked
	Mode       scoring.Mode
	Skeleton   pose.Skeleton
	Previous   pose.Optional
	History    []pose.Skeleton // oldest first, excluding Skeleton
	BatContact bool
	TriggerMs  float64
	ResponseMs float64
	TS         time.Time // capture timestamp
}

// Input converts the frame into a scoring request.
func (f Frame) Input() scoring.Input {
	return scoring.Input{
		FrameID:    f.FrameID,
		SessionID:  f.SessionID,
		PlayerID:   f.PlayerID,
		Mode:       f.Mode,
		Current:    f.Skeleton,
		Previous:   f.Previous,
		History:    f.History,
		BatContact: f.BatContact,
		TriggerMs:  f.TriggerMs,
		ResponseMs: f.ResponseMs,
	}
}

// PlayerScore is a headline offered to a mode's leaderboard.
type PlayerScore struct {
	PlayerID  string
	Mode      scoring.Mode
	Score     float64
	FrameID   string
	SessionID string
}

// Score builds the leaderboard offer for a scorecard.
func Score(card scoring.Scorecard) PlayerScore {
	return PlayerScore{
		PlayerID:  card.PlayerID,
		Mode:      card.Mode,
		Score:     card.Headline,
		FrameID:   card.FrameID,
		SessionID: card.SessionID,
	}
}
