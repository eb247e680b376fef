// Package repository keeps per-mode leaderboards of players' best headline
// scores.
package repository

import "context"

// Record is a candidate best score together with the frame that produced it.
type Record struct {
	PlayerID  string
	Score     float64
	FrameID   string
	SessionID string
}

// Entry represents a leaderboard row.
type Entry struct {
	Rank      int
	PlayerID  string
	Score     float64
	FrameID   string
	SessionID string
}

// Store provides read/write access to the ranking state.
type Store interface {
	// UpdateBest keeps rec if it beats the player's current best.
	// Returns true if the store changed.
	UpdateBest(ctx context.Context, rec Record) (bool, error)

	// Rank returns the current rank and score for a player.
	// Returns ErrNotFound if the player is unknown.
	Rank(ctx context.Context, playerID string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of players ranked.
	Count(ctx context.Context) int
}
