// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory frame queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps how many frame ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// FrameDurationMs is the capture period used to turn per-frame
	// displacements into per-second speeds.
	FrameDurationMs float64 `koanf:"frame_duration_ms"`

	// HistoryWindow is how many recent skeletons each session keeps.
	HistoryWindow int `koanf:"history_window"`

	// MaxSessions caps the number of live capture sessions.
	MaxSessions int `koanf:"max_sessions"`

	// HistoryDBPath is the SQLite file for saved analyses. Empty disables it.
	HistoryDBPath string `koanf:"history_db_path"`

	// HistoryLimit is the default page size of GET /history.
	HistoryLimit int `koanf:"history_limit"`

	// HistoryRetention keeps at most this many analyses per player and mode.
	// Zero keeps everything.
	HistoryRetention int `koanf:"history_retention"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		FrameDurationMs:     16.67,
		HistoryWindow:       30,
		MaxSessions:         10_000,
		HistoryDBPath:       "crease.db",
		HistoryLimit:        10,
		HistoryRetention:    0,
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 0:
		return fmt.Errorf("%w: worker_count must not be negative, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case !(c.FrameDurationMs > 0):
		return fmt.Errorf("%w: frame_duration_ms must be positive, got %v", ErrInvalidConfig, c.FrameDurationMs)
	case c.HistoryWindow < 1:
		return fmt.Errorf("%w: history_window must be positive, got %d", ErrInvalidConfig, c.HistoryWindow)
	case c.HistoryLimit < 1:
		return fmt.Errorf("%w: history_limit must be positive, got %d", ErrInvalidConfig, c.HistoryLimit)
	case c.HistoryRetention < 0:
		return fmt.Errorf("%w: history_retention must not be negative, got %d", ErrInvalidConfig, c.HistoryRetention)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
