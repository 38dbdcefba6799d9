package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/council-xenith/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ParticipantReader is the read side of the Xenith progression store.
type ParticipantReader interface {
	Participant(ctx context.Context, email string) (*domain.Participant, error)
	Participants(ctx context.Context, limit int32, cursor string) ([]domain.Participant, string, error)
}

// ParticipantHandler lets admins inspect Xenith progress.
type ParticipantHandler struct {
	reader ParticipantReader
}

func NewParticipantHandler(reader ParticipantReader) *ParticipantHandler {
	return &ParticipantHandler{reader: reader}
}

func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor := pageParams(r)
	ps, next, err := h.reader.Participants(r.Context(), limit, cursor)
	if err != nil {
		httpError(w, r, err)
		return
	}
	if ps == nil {
		ps = []domain.Participant{}
	}
	writeJSON(w, http.StatusOK, PageEnvelope{Success: true, Data: ps, NextCursor: next})
}

func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	p, err := h.reader.Participant(r.Context(), email)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}
