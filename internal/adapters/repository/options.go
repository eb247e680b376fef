package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *TreapStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithBoard names the leaderboard in metrics and logs, usually after the
// analysis mode it ranks.
func WithBoard(name string) Option {
	return func(s *TreapStore) {
		if name != "" {
			s.board = name
		}
	}
}

// WithSeed fixes the treap priority sequence, for reproducible tests.
func WithSeed(seed uint64) Option {
	return func(s *TreapStore) {
		s.seed = seed
	}
}
