package middleware

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/stockroom/internal/auth"
	"github.com/JonMunkholm/stockroom/internal/logging"
)

// RequireLogin rejects requests without a valid session cookie.
//
// Page requests are redirected to /login; /api/ requests get a 401 JSON
// body. On success the session email is stored on the request context,
// where logging.FromContext and import run records pick it up.
func RequireLogin(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.FromRequest(r)
			if err != nil {
				logging.FromContext(r.Context()).Debug("auth: no valid session",
					"path", r.URL.Path,
					"method", r.Method,
				)
				if strings.HasPrefix(r.URL.Path, "/api/") {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error":"invalid session","code":"AUTH002"}`))
					return
				}
				sessions.ClearCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := logging.ContextWithUser(r.Context(), claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
