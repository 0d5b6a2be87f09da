package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/lendingdesk/pkg/httpx"
	"github.com/ghuser/lendingdesk/pkg/logger"
)

const (
	sessionName      = "lendingdesk_session"
	sessionUserIDKey = "user_id"
	sessionRoleKey   = "role"

	// Identity headers set by a trusted gateway in front of the API.
	HeaderUserID = httpx.HeaderUserID
	HeaderRole   = httpx.HeaderUserRole
)

// Options tunes RequireAuth.
type Options struct {
	// TrustHeaders accepts X-User-ID / X-User-Role when no session cookie is
	// present. Enable only behind a gateway that strips client-supplied values.
	TrustHeaders bool
}

// RequireAuth is a chi middleware that resolves the caller from the session
// cookie (or trusted identity headers) and injects it into the request context.
// Returns 401 Unauthorized if no valid user_id can be found.
//
// After this middleware, handlers can safely call auth.PrincipalFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr, role := "", ""

			if _, err := r.Cookie(sessionName); err == nil {
				session, err := store.Get(r, sessionName)
				if err != nil {
					log.WarnContext(r.Context(), "invalid session cookie", "error", err)
					httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
					return
				}
				userIDStr, _ = session.Values[sessionUserIDKey].(string)
				role, _ = session.Values[sessionRoleKey].(string)
			} else if opts.TrustHeaders {
				userIDStr = r.Header.Get(HeaderUserID)
				role = r.Header.Get(HeaderRole)
			}

			if userIDStr == "" {
				log.WarnContext(r.Context(), "request without user_id")
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid user_id", "user_id", userIDStr, "error", err)
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid session data"})
				return
			}

			p := Principal{UserID: userID, Role: ParseRole(role)}
			ctx := logger.WithAttrs(r.Context(), "user_id", p.UserID.String(), "role", string(p.Role))
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// RequireAdmin rejects callers without the admin role with 403. It must run
// after RequireAuth.
func RequireAdmin(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := PrincipalFromCtx(r.Context())
			if err != nil {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			if !p.IsAdmin() {
				log.WarnContext(r.Context(), "admin endpoint denied")
				httpx.JSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
