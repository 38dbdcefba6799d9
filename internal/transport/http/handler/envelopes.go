package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/council-xenith/internal/domain"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope is returned for every failed request.
type ErrorEnvelope struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// DataEnvelope wraps a single resource or list.
type DataEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// PageEnvelope wraps one page of a cursor-paginated list.
type PageEnvelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}

func writeData(w http.ResponseWriter, status int, v interface{}) {
	writeJSON(w, status, DataEnvelope{Success: true, Data: v})
}

// httpError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a generic 500.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorEnvelope{Error: ve.Message, FieldErrors: ve.Fields})
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrPrerequisiteNotMet):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"err", err,
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body is empty")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pageParams reads ?limit= and ?cursor=. A missing or malformed limit is 0,
// which services replace with their default.
func pageParams(r *http.Request) (int32, string) {
	q := r.URL.Query()
	n, _ := strconv.ParseInt(q.Get("limit"), 10, 32)
	return int32(n), q.Get("cursor")
}
