package api

import (
	"net/http"
)

// HandleGetRank handles GET /rank/{player_id}?mode=M.
func (s *Server) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	mode, err := modeParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entry, err := s.deps.Rank(r.Context(), mode, r.PathValue("player_id"))
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
