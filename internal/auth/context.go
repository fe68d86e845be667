package auth

import (
	"context"
	"time"
)

// SecurityContext is the caller's identity for the lifetime of one request.
// The gate creates a fresh value per request and nothing else writes it.
type SecurityContext struct {
	PrincipalID string
	Username    string
	Role        Role
	ExpiresAt   time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (sc *SecurityContext) IsAdmin() bool {
	return sc != nil && sc.Role == RoleAdmin
}

type securityContextKey struct{}

// WithSecurityContext returns a copy of ctx carrying a copy of sc.
func WithSecurityContext(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// FromContext returns the request's SecurityContext, or nil when the
// request is anonymous. Each call returns its own copy.
func FromContext(ctx context.Context) *SecurityContext {
	sc, ok := ctx.Value(securityContextKey{}).(SecurityContext)
	if !ok {
		return nil
	}
	return &sc
}

// RequireContext is FromContext for callers that cannot proceed anonymously.
func RequireContext(ctx context.Context) (*SecurityContext, error) {
	sc := FromContext(ctx)
	if sc == nil {
		return nil, ErrAuthenticationRequired
	}
	return sc, nil
}
