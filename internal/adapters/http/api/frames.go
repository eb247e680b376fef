package api

import (
	"net/http"
	"time"
)

// HandlePostFrame handles POST /frames.
func (s *Server) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	var req frameRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	f, err := req.frame(time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if s.deps.SeenAndRecord(r.Context(), f.FrameID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	if err := s.deps.Submit(r.Context(), f); err != nil {
		// forget the id so the client can retry
		s.deps.Unrecord(r.Context(), f.FrameID)
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleResetSession handles DELETE /sessions/{session_id}.
func (s *Server) HandleResetSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_session"
	id := r.PathValue("session_id")
	if !s.deps.ResetSession(r.Context(), id) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
