package handler

import (
	"net/http"

	"github.com/council-xenith/internal/application/xenith"
	"github.com/council-xenith/internal/domain"
)

// XenithHandler serves the three-level key flow.
type XenithHandler struct {
	svc xenith.Service
}

func NewXenithHandler(svc xenith.Service) *XenithHandler { return &XenithHandler{svc: svc} }

type registerResponse struct {
	Success  bool `json:"success"`
	Existing bool `json:"existing"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
}

type confirmResponse struct {
	Success  bool   `json:"success"`
	Key      string `json:"key"`
	Existing bool   `json:"existing"`
}

// Register starts level 1: it mails a passcode to the applicant.
func (h *XenithHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req xenith.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	existing, err := h.svc.StartLevel1(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{Success: true, Existing: existing})
}

// Verify starts level 2 or 3 from the key of the previous level.
func (h *XenithHandler) Verify(level domain.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req xenith.VerifyRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		email, err := h.svc.StartLevel(r.Context(), level, req)
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, verifyResponse{Success: true, Email: email})
	}
}

// Confirm checks the passcode and returns the level key.
func (h *XenithHandler) Confirm(level domain.Level) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req xenith.ConfirmRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		issued, err := h.svc.ConfirmLevel(r.Context(), level, req)
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, confirmResponse{Success: true, Key: issued.Key, Existing: issued.Existing})
	}
}
