package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"partner-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestAdminAuth(t *testing.T) {
	auth := NewAdminAuth("scooby", logger.NewNop())
	handler := auth.Middleware(okHandler())

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer shaggy", http.StatusUnauthorized},
		{"wrong scheme", "Basic scooby", http.StatusUnauthorized},
		{"extra parts", "Bearer scooby doo", http.StatusUnauthorized},
		{"correct", "Bearer scooby", http.StatusTeapot},
		{"case insensitive scheme", "bearer scooby", http.StatusTeapot},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/partners", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"code":"unauthorized","message":"missing or invalid admin credentials"}`, rec.Body.String())
			}
		})
	}
}

func TestAdminAuthEmptySecretRejectsAll(t *testing.T) {
	handler := NewAdminAuth("  ", logger.NewNop()).Middleware(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/admin/partners", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	handler := NewCORS([]string{"https://portal.example"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/partners/1234", nil)
	req.Header.Set("Origin", "https://portal.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://portal.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/partners/1234", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/requests", nil)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
