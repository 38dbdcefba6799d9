package handler

import (
	"net/http"

	"github.com/council-xenith/internal/application/admin"
)

// SessionHandler exchanges a Google ID token for an admin JWT.
type SessionHandler struct {
	svc admin.Service
}

func NewSessionHandler(svc admin.Service) *SessionHandler { return &SessionHandler{svc: svc} }

type sessionResponse struct {
	Success bool `json:"success"`
	*admin.Session
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req admin.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.svc.SignIn(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, Session: sess})
}
