package api

import (
	"net/http"

	"github.com/okian/crease/internal/domain/scoring"
)

// HandleGetHistory handles GET /history/{player_id}?mode=M&limit=N. Without
// a mode every mode is listed.
func (s *Server) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	var mode scoring.Mode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		m, err := scoring.ParseMode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		mode = m
	}
	n, err := limitParam(r, s.historyLimit, s.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := s.deps.History(r.Context(), r.PathValue("player_id"), mode, n)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
