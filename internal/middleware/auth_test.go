package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := AuthMiddleware("token", ok)

	tests := []struct {
		name   string
		path   string
		cookie string
		code   int
	}{
		{"login page is public", "/login", "", http.StatusTeapot},
		{"static is public", "/static/app.js", "", http.StatusTeapot},
		{"api without session", "/api/frames", "", http.StatusUnauthorized},
		{"page without session", "/charts/speed", "", http.StatusSeeOther},
		{"wrong session", "/api/frames", "other", http.StatusUnauthorized},
		{"valid session", "/api/frames", "token", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
