package api

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the limit accepted by list endpoints.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithHistoryLimit sets the page size of GET /history when no limit is given.
func WithHistoryLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}
