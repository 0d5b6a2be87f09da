package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const principalKey contextKey = "principal"

// Role separates borrowers from staff who run the lending desk.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored role string to a Role. Anything unknown is a plain user.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller may use the admin endpoints.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// ErrPrincipalNotFound is returned when no caller identity exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrPrincipalNotFound = errors.New("caller identity not found in context")

// PrincipalFromCtx extracts the authenticated caller from the request context.
func PrincipalFromCtx(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

// UserIDFromCtx extracts the authenticated user ID from the request context.
// Returns uuid.Nil and ErrPrincipalNotFound for unauthenticated requests.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	p, err := PrincipalFromCtx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return p.UserID, nil
}

// WithPrincipal returns a new context with the given caller attached.
// Used by authentication middleware after validating the session.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
