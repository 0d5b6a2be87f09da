package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/logger"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// newTestLogger creates a logger that discards output.
func newTestLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

// requestWithSession builds an *http.Request that carries a session cookie
// holding the given values.
func requestWithSession(t *testing.T, store sessions.Store, values map[string]string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/me/borrows", nil)

	session, err := store.Get(r, sessionName)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	for k, v := range values {
		session.Values[k] = v
	}
	if err := session.Save(r, w); err != nil {
		t.Fatalf("save session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me/borrows", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func capture(got *Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = PrincipalFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func mustNotCall(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
}

func TestRequireAuth_ValidSession(t *testing.T) {
	store := newTestStore()
	userID := uuid.New()

	var got Principal
	r := requestWithSession(t, store, map[string]string{sessionUserIDKey: userID.String(), sessionRoleKey: "admin"})
	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger(), Options{})(capture(&got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != userID || got.Role != RoleAdmin {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestRequireAuth_MissingCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/me/borrows", nil)
	r.Header.Set(HeaderUserID, uuid.NewString())
	w := httptest.NewRecorder()
	RequireAuth(newTestStore(), newTestLogger(), Options{})(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when headers are not trusted, got %d", w.Code)
	}
}

func TestRequireAuth_TrustedHeaders(t *testing.T) {
	userID := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/api/me/borrows", nil)
	r.Header.Set(HeaderUserID, userID.String())

	var got Principal
	w := httptest.NewRecorder()
	RequireAuth(newTestStore(), newTestLogger(), Options{TrustHeaders: true})(capture(&got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got.UserID != userID || got.Role != RoleUser {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestRequireAuth_SessionMissingUserID(t *testing.T) {
	store := newTestStore()
	r := requestWithSession(t, store, map[string]string{sessionRoleKey: "admin"})
	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger(), Options{})(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_InvalidUserIDInSession(t *testing.T) {
	store := newTestStore()
	r := requestWithSession(t, store, map[string]string{sessionUserIDKey: "not-a-valid-uuid"})
	w := httptest.NewRecorder()
	RequireAuth(store, newTestLogger(), Options{})(mustNotCall(t)).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want int
	}{
		{"admin passes", RoleAdmin, http.StatusOK},
		{"user forbidden", RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			r := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
			r = r.WithContext(WithPrincipal(r.Context(), Principal{UserID: uuid.New(), Role: tt.role}))
			w := httptest.NewRecorder()
			RequireAdmin(newTestLogger())(next).ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/admin/reports", nil)
		w := httptest.NewRecorder()
		RequireAdmin(newTestLogger())(mustNotCall(t)).ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
