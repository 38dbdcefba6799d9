package handler

import (
	"net/http"

	"github.com/council-xenith/internal/application/notification"
	"github.com/council-xenith/internal/domain"
	"github.com/council-xenith/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.ListActive(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateNotificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.svc.Create(r.Context(), claims.Email, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, n)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "notification deleted"})
}
