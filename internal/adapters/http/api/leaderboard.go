package api

import (
	"net/http"
)

// HandleGetLeaderboard handles GET /leaderboard?mode=M&limit=N.
func (s *Server) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	n, err := limitParam(r, s.maxLimit, s.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := s.deps.TopN(r.Context(), mode, n)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
