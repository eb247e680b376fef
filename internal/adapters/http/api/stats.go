package api

import (
	"net/http"
)

// HandleStats handles GET /stats.
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Stats(r.Context()))
}
