package handler

import (
	"errors"
	"net/http"

	"github.com/council-xenith/internal/application/media"
	"github.com/council-xenith/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// MediaHandler handles admin image uploads.
type MediaHandler struct {
	svc media.Service
}

func NewMediaHandler(svc media.Service) *MediaHandler { return &MediaHandler{svc: svc} }

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(media.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	uploaded, err := h.svc.Upload(r.Context(), media.UploadInput{
		Reader:     f,
		Filename:   header.Filename,
		Size:       header.Size,
		UploadedBy: claims.Email,
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, uploaded)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "media deleted"})
}
