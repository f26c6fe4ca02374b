package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/ghuser/crochestock/pkg/httpx"
	"github.com/ghuser/crochestock/pkg/logger"
)

// Authenticate is a chi middleware that resolves the acting user. A session
// cookie carrying a user_id wins; otherwise fallbackUserID (when non-empty)
// is attached as an anonymous identity. It never rejects a request; pair it
// with RequireAuth on routes that need an identity.
func Authenticate(store sessions.Store, fallbackUserID string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(ctx, "invalid session cookie", "error", err)
			}
			if userID, ok := sessionUser(session); ok {
				ctx = logger.AddAttrs(ctx, "user_id", userID)
				next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
				return
			}

			if fallbackUserID != "" {
				ctx = logger.AddAttrs(ctx, "user_id", fallbackUserID, "anonymous", true)
				ctx = WithFallbackUserID(ctx, fallbackUserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns 401 Unauthorized unless Authenticate attached an identity.
//
// After this middleware, handlers can safely call auth.UserIDFromCtx(r.Context()).
func RequireAuth(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := UserIDFromCtx(r.Context()); err != nil {
				log.WarnContext(r.Context(), "unauthenticated request", "path", r.URL.Path)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
