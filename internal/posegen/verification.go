package posegen

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/pkg/logger"
)

// ErrInconsistent is returned when a leaderboard contradicts itself or the
// rank endpoint.
var ErrInconsistent = errors.New("leaderboard inconsistent")

// checkOrder verifies a leaderboard prefix is sorted best first and carries
// competition ranks: ties share a rank and the next score skips past them.
func checkOrder(entries []Entry) error {
	for i, e := range entries {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("%w: first entry has rank %d", ErrInconsistent, e.Rank)
			}
			continue
		}
		prev := entries[i-1]
		switch {
		case e.Score > prev.Score:
			return fmt.Errorf("%w: entry %d scores %.3f above entry %d at %.3f", ErrInconsistent, i, e.Score, i-1, prev.Score)
		case e.Score == prev.Score && e.Rank != prev.Rank:
			return fmt.Errorf("%w: tied entries %d and %d have ranks %d and %d", ErrInconsistent, i-1, i, prev.Rank, e.Rank)
		case e.Score < prev.Score && e.Rank != i+1:
			return fmt.Errorf("%w: entry %d should have rank %d, got %d", ErrInconsistent, i, i+1, e.Rank)
		}
	}
	return nil
}

// verifyBoards fetches every mode's leaderboard, checks its order and
// cross-checks each listed player against GET /rank.
func verifyBoards(ctx context.Context, cfg *Config, modes []scoring.Mode, stats *Stats) error {
	log := logger.Named("posegen")
	c := newClient(cfg.BaseURL, cfg.Timeout)
	stats.LeaderboardEntries = make(map[scoring.Mode]int, len(modes))

	var errs []error
	for _, mode := range modes {
		top, err := c.leaderboard(ctx, mode, cfg.TopN)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s leaderboard: %w", mode, err))
			continue
		}
		stats.LeaderboardEntries[mode] = len(top)
		if err := checkOrder(top); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mode, err))
			continue
		}

		for _, e := range top {
			r, err := c.rank(ctx, mode, e.PlayerID)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s rank %s: %w", mode, e.PlayerID, err))
				continue
			}
			stats.RanksRetrieved++
			if r.Rank != e.Rank || r.Score != e.Score {
				errs = append(errs, fmt.Errorf("%w: %s %s listed at #%d (%.3f) but ranked #%d (%.3f)",
					ErrInconsistent, mode, e.PlayerID, e.Rank, e.Score, r.Rank, r.Score))
			}
		}

		if cfg.Verbose && len(top) > 0 {
			log.Info(ctx, "leaderboard leader",
				logger.String("mode", string(mode)),
				logger.String("player_id", top[0].PlayerID),
				logger.Float64("score", top[0].Score),
			)
		}
	}
	return errors.Join(errs...)
}
