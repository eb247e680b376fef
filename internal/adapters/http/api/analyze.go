package api

import (
	"net/http"
)

// HandleAnalyze handles POST /analyze: stateless scoring of one frame with
// whatever context the caller supplies.
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	card, err := s.deps.Analyze(r.Context(), in)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
