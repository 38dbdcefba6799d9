package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/council-xenith/internal/application/xenith"
	"github.com/council-xenith/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// withURLParam injects a chi URL param into the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestXenithRegister_OK(t *testing.T) {
	svc := &mockXenithSvc{}
	h := NewXenithHandler(svc)
	req := xenith.RegisterRequest{TeamName: "Byte", Email: "a@iitp.ac.in", Name: "Asha"}
	svc.On("StartLevel1", mock.Anything, req).Return(false, nil)

	body, _ := json.Marshal(req)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/xenith/level1/register", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"existing":false}`, rr.Body.String())
}

func TestXenithRegister_InvalidBody(t *testing.T) {
	svc := &mockXenithSvc{}
	h := NewXenithHandler(svc)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("not-json")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "StartLevel1", mock.Anything, mock.Anything)
}

func TestXenithRegister_ValidationError(t *testing.T) {
	svc := &mockXenithSvc{}
	h := NewXenithHandler(svc)
	svc.On("StartLevel1", mock.Anything, mock.Anything).
		Return(false, domain.NewValidationError(map[string]string{"email": "Only @iitp.ac.in email addresses are allowed"}))

	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"x@gmail.com"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t,
		`{"success":false,"error":"validation failed","fieldErrors":{"email":"Only @iitp.ac.in email addresses are allowed"}}`,
		rr.Body.String())
}

func TestXenithVerify_PassesLevel(t *testing.T) {
	svc := &mockXenithSvc{}
	h := NewXenithHandler(svc)
	svc.On("StartLevel", mock.Anything, domain.Level3, xenith.VerifyRequest{PriorLevelKey: "XEN-2-ABC123"}).
		Return("a@iitp.ac.in", nil)

	rr := httptest.NewRecorder()
	h.Verify(domain.Level3)(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"priorLevelKey":"XEN-2-ABC123"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"email":"a@iitp.ac.in"}`, rr.Body.String())
}

func TestXenithConfirm_ReturnsKey(t *testing.T) {
	svc := &mockXenithSvc{}
	h := NewXenithHandler(svc)
	svc.On("ConfirmLevel", mock.Anything, domain.Level1, xenith.ConfirmRequest{Email: "a@iitp.ac.in", OTP: "123456"}).
		Return(domain.IssuedKey{Key: "XEN-1-AB12CD", Existing: true}, nil)

	rr := httptest.NewRecorder()
	h.Confirm(domain.Level1)(rr, httptest.NewRequest(http.MethodPost, "/",
		bytes.NewBufferString(`{"email":"a@iitp.ac.in","otp":"123456"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"key":"XEN-1-AB12CD","existing":true}`, rr.Body.String())
}

func TestXenithConfirm_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"otp missing", fmt.Errorf("OTP not found or expired: %w", domain.ErrNotFound), http.StatusNotFound},
		{"otp wrong", fmt.Errorf("invalid OTP: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{"prior level missing", fmt.Errorf("level 1 key missing: %w", domain.ErrPrerequisiteNotMet), http.StatusBadRequest},
		{"key conflict", fmt.Errorf("key collision: %w", domain.ErrConflict), http.StatusConflict},
		{"dependency", errors.New("dial tcp: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockXenithSvc{}
			h := NewXenithHandler(svc)
			svc.On("ConfirmLevel", mock.Anything, domain.Level2, mock.Anything).Return(domain.IssuedKey{}, tc.err)

			rr := httptest.NewRecorder()
			h.Confirm(domain.Level2)(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@iitp.ac.in","otp":"1"}`)))

			assert.Equal(t, tc.code, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, false, body["success"])
			if tc.code == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["error"])
			}
		})
	}
}
