package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"partner-portal/pkg/logger"
)

// AdminAuth gates admin routes behind one shared secret sent as a bearer
// token. Every call is checked on its own; there are no sessions.
type AdminAuth struct {
	secret []byte
	log    logger.Logger
}

func NewAdminAuth(secret string, log logger.Logger) *AdminAuth {
	return &AdminAuth{
		secret: []byte(strings.TrimSpace(secret)),
		log:    log,
	}
}

func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || !a.matches(token) {
			a.log.Warn("auth.admin: rejected", "method", r.Method, "path", r.URL.Path, "has_header", r.Header.Get("Authorization") != "")
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) matches(token string) bool {
	if len(a.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), a.secret) == 1
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin credentials")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
