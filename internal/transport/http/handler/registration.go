package handler

import (
	"net/http"

	"github.com/council-xenith/internal/application/registration"
	"github.com/council-xenith/internal/domain"
	"github.com/go-chi/chi/v5"
)

// RegistrationHandler serves the public form endpoints.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

type submitResponse struct {
	Success      bool   `json:"success"`
	SubmissionID string `json:"submissionId"`
}

func (h *RegistrationHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.PublicTemplate(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *RegistrationHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req registration.UnlockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Unlock(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Success: true, SubmissionID: sub.SubmissionID})
}
