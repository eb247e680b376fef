package history

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithRetention keeps at most n entries per player and mode. Zero keeps all.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.retention = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
