package posegen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
)

const (
	directoryPermission = 0o750
	drainPollInterval   = 200 * time.Millisecond
	// the pipeline must read idle this many polls in a row
	drainQuietPolls = 3
)

// Run executes a complete load run: health check, generate, submit, wait
// for the queue to drain and verify the leaderboards.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("posegen")
	stats := &Stats{StartTime: time.Now()}
	modes := cfg.Modes
	if len(modes) == 0 {
		modes = scoring.Modes()
	}

	log.Info(ctx, "starting crease load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("frames", cfg.Frames),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
	)

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	sessions := NewGenerator(cfg.Width, cfg.Height, cfg.Seed).Sessions(cfg.Players, cfg.Frames, modes)
	stats.Sessions = len(sessions)
	for _, s := range sessions {
		stats.FramesGenerated += len(s.Frames)
	}

	submitSessions(ctx, cfg, sessions, stats)

	if err := waitForDrain(ctx, cfg); err != nil {
		return stats, fmt.Errorf("waiting for queue to drain: %w", err)
	}

	if err := verifyBoards(ctx, cfg, modes, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := saveSessions(cfg.OutputFile, sessions); err != nil {
			log.Warn(ctx, "failed to save frames to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func checkServiceHealth(ctx context.Context, cfg *Config) error {
	resp, err := newClient(cfg.BaseURL, cfg.Timeout).do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	// the service answers with its Prometheus exposition
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// waitForDrain polls /stats until every accepted frame has been processed
// for several polls in a row, or Settle elapses.
func waitForDrain(ctx context.Context, cfg *Config) error {
	c := newClient(cfg.BaseURL, cfg.Timeout)
	ctx, cancel := context.WithTimeout(ctx, cfg.Settle)
	defer cancel()

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	quiet := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			st, err := c.stats(ctx)
			if err != nil {
				return err
			}
			// frames can be off the queue but still in a worker's hands
			if st.QueueLen > 0 || st.Processed < st.Accepted {
				quiet = 0
				continue
			}
			if quiet++; quiet >= drainQuietPolls {
				return nil
			}
		}
	}
}

func saveSessions(filename string, sessions []Session) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sessions); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, framesPerSecond float64
	if stats.FramesSubmitted > 0 {
		acceptRate = float64(stats.FramesAccepted) / float64(stats.FramesSubmitted) * 100
	}
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.FramesSubmitted) / stats.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("sessions", stats.Sessions),
		logger.Int("frames_generated", stats.FramesGenerated),
		logger.Int("frames_submitted", stats.FramesSubmitted),
		logger.Int("frames_accepted", stats.FramesAccepted),
		logger.Int("frames_duplicate", stats.FramesDuplicate),
		logger.Int("frames_rejected", stats.FramesRejected),
		logger.Int("frames_failed", stats.FramesFailed),
		logger.Int("ranks_retrieved", stats.RanksRetrieved),
		logger.Duration("duration", stats.Duration),
		logger.Float64("accept_rate", acceptRate),
		logger.Float64("frames_per_second", framesPerSecond),
	}
	for mode, n := range stats.LeaderboardEntries {
		fields = append(fields, logger.Int("board_"+string(mode), n))
	}
	logger.Named("posegen").Info(ctx, "final statistics", fields...)
}
