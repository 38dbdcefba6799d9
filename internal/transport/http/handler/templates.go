package handler

import (
	"net/http"

	"github.com/council-xenith/internal/application/registration"
	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// TemplateHandler serves admin template and submission management.
type TemplateHandler struct {
	svc registration.Service
}

func NewTemplateHandler(svc registration.Service) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.ListTemplates(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, templates)
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in domain.TemplateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.svc.CreateTemplate(r.Context(), claims.Email, in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTemplate(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.TemplateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.svc.UpdateTemplate(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (h *TemplateHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeJSON(w, http.StatusBadRequest, ErrorEnvelope{
			Error:       "validation failed",
			FieldErrors: map[string]string{"active": "active is a required field"},
		})
		return
	}
	if err := h.svc.SetActive(r.Context(), chi.URLParam(r, "slug"), *req.Active); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "template updated"})
}

func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTemplate(r.Context(), chi.URLParam(r, "slug")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "template deleted"})
}

func (h *TemplateHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit, cursor := pageParams(r)
	subs, next, err := h.svc.ListSubmissions(r.Context(), chi.URLParam(r, "slug"), limit, cursor)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Success: true, Data: subs, NextCursor: next})
}

func (h *TemplateHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSubmission(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "submission deleted"})
}
