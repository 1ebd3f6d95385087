package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// SessionCookie holds the server's session token once logged in.
const SessionCookie = "session"

// AuthMiddleware lets through the login page, static assets and requests carrying the session cookie.
func AuthMiddleware(session string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" ||
			r.URL.Path == "/auth/login" ||
			strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(SessionCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(session)) != 1 {
			if strings.HasPrefix(r.URL.Path, "/api/") ||
				r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
