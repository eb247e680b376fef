// Package types contains the response shapes shared by the service and the API.
package types

// Entry is one ranked player on a mode's leaderboard.
type Entry struct {
	Rank      int     `json:"rank"`
	PlayerID  string  `json:"player_id"`
	Mode      string  `json:"mode"`
	Score     float64 `json:"score"`
	FrameID   string  `json:"frame_id,omitempty"`
	SessionID string  `json:"session_id,omitempty"`
}

// Stats summarises the pipeline for the /stats endpoint.
type Stats struct {
	QueueLen       int            `json:"queue_len"`
	QueueCap       int            `json:"queue_cap"`
	Workers        int            `json:"workers"`
	Accepted       int64          `json:"accepted"`  // frames queued since Start
	Processed      int64          `json:"processed"` // frames the workers finished, failures included
	DedupeSize     int64          `json:"dedupe_size"`
	ActiveSessions int            `json:"active_sessions"`
	Players        map[string]int `json:"players"`
}
