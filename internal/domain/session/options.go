package session

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithWindow sets how many skeletons are kept per session.
func WithWindow(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.window = n
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero or negative
// disables eviction.
func WithMaxSessions(n int) Option {
	return func(t *Tracker) {
		t.maxSessions = n
	}
}
