// Package posegen drives a running crease service with synthetic pose
// frames and checks that the leaderboards it builds are consistent.
package posegen

import (
	"time"

	"github.com/okian/crease/internal/domain/pose"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL    string         // Base URL of the service
	Players    int            // Number of synthetic players
	Frames     int            // Frames per player session
	Modes      []scoring.Mode // Modes to cycle players through
	TopN       int            // Number of leaderboard entries to fetch per mode
	Workers    int            // Number of concurrent sessions in flight
	Width      float64        // Camera frame width in pixels
	Height     float64        // Camera frame height in pixels
	Seed       uint64         // Seed for the jitter generator
	Timeout    time.Duration  // HTTP request timeout
	Settle     time.Duration  // How long to wait for the queue to drain
	OutputFile string         // Where to save generated frames, empty to skip
	Verbose    bool           // Enable verbose logging
}

// FrameRequest is the body of POST /frames.
type FrameRequest struct {
	FrameID    string        `json:"frame_id"`
	SessionID  string        `json:"session_id"`
	PlayerID   string        `json:"player_id"`
	Mode       scoring.Mode  `json:"mode"`
	Skeleton   pose.Skeleton `json:"skeleton"`
	BatContact bool          `json:"bat_contact,omitempty"`
	TriggerMs  float64       `json:"trigger_ms,omitempty"`
	ResponseMs float64       `json:"response_ms,omitempty"`
	TS         string        `json:"ts"`
}

// Session is one player's ordered run of frames.
type Session struct {
	ID       string
	PlayerID string
	Mode     scoring.Mode
	Frames   []FrameRequest
}

// AckResponse is the response from frame submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Entry is a leaderboard row as served by the API.
type Entry = types.Entry

// Stats holds run statistics.
type Stats struct {
	Sessions           int
	FramesGenerated    int
	FramesSubmitted    int
	FramesAccepted     int
	FramesDuplicate    int
	FramesRejected     int // backpressure
	FramesFailed       int
	RanksRetrieved     int
	LeaderboardEntries map[scoring.Mode]int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
