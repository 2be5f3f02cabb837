package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vigilance-driver/vigilance-go/internal/model"
	"github.com/vigilance-driver/vigilance-go/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"invalid input", service.ErrPasswordTooShort, http.StatusBadRequest, `{"error":"invalid request"}`},
		{"email taken", service.ErrEmailTaken, http.StatusConflict, `{"error":"email already registered"}`},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"invalid email or password"}`},
		{"wrapped credentials", fmt.Errorf("login: %w", service.ErrInvalidCredentials), http.StatusUnauthorized, `{"error":"invalid email or password"}`},
		{"internal", errors.New("dial tcp 10.0.0.5:3306: connection refused"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/login", nil)

			writeServiceError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{"valid", `{"email":"a@x.com","password":"secret1"}`, true, http.StatusOK},
		{"unknown fields ignored", `{"email":"a@x.com","password":"secret1","remember":true}`, true, http.StatusOK},
		{"malformed", `{"email":`, false, http.StatusBadRequest},
		{"wrong type", `{"email":["a@x.com"]}`, false, http.StatusBadRequest},
		{"trailing text", `{"email":"a@x.com","password":"secret1"} not-json`, false, http.StatusBadRequest},
		{"second object", `{"email":"a@x.com","password":"secret1"}{"x":`, false, http.StatusBadRequest},
		{"trailing newline", `{"email":"a@x.com","password":"secret1"}` + "\n", true, http.StatusOK},
		{"too large", `{"email":"` + strings.Repeat("a", maxAuthBodyBytes) + `"}`, false, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/signup", strings.NewReader(tt.body))

			var dst model.SignupRequest
			ok := decodeBody(rec, req, &dst)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if ok {
				assert.Equal(t, "a@x.com", dst.Email)
				assert.Equal(t, "secret1", dst.Password)
			}
		})
	}
}

func TestSessionHandlerRequiresAuthContext(t *testing.T) {
	h := NewSessionHandler(nil)

	rec := httptest.NewRecorder()
	h.HandleSave(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
