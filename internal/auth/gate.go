package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// PrincipalStore looks principals up by ID. Implementations must be safe
// for concurrent use and must not mutate shared state on lookup.
type PrincipalStore interface {
	GetByID(ctx context.Context, id string) (*User, error)
}

// Outcome labels an authentication attempt for metrics.
type Outcome string

// Gate and login outcomes.
const (
	OutcomeAuthenticated     Outcome = "authenticated"
	OutcomeAnonymous         Outcome = "anonymous"
	OutcomeMalformedToken    Outcome = "malformed_token"
	OutcomePrincipalNotFound Outcome = "principal_not_found"
	OutcomeLookupFailed      Outcome = "lookup_failed"
	OutcomeInvalidToken      Outcome = "invalid_token"
	OutcomeLoginSucceeded    Outcome = "login_succeeded"
	OutcomeLoginFailed       Outcome = "login_failed"
)

// Observer receives authentication outcomes. It must not block.
type Observer interface {
	ObserveAuth(outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveAuth(Outcome) {}

// Gate establishes the caller's SecurityContext once per request.
//
// It never rejects a request. Every failure (missing header, garbage token,
// unknown subject, bad signature, expiry) yields an anonymous request, and
// endpoints that need an identity reject it themselves.
type Gate struct {
	tokens     *TokenService
	principals PrincipalStore
	logger     *slog.Logger
	observer   Observer
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithObserver reports every outcome to o.
func WithObserver(o Observer) GateOption {
	return func(g *Gate) {
		if o != nil {
			g.observer = o
		}
	}
}

// NewGate creates a Gate.
func NewGate(tokens *TokenService, principals PrincipalStore, logger *slog.Logger, opts ...GateOption) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		tokens:     tokens,
		principals: principals,
		logger:     logger,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate resolves a raw Authorization header value to a
// SecurityContext. It returns nil for anonymous.
func (g *Gate) Authenticate(ctx context.Context, header string) *SecurityContext {
	token, ok := bearerToken(header)
	if !ok {
		g.observer.ObserveAuth(OutcomeAnonymous)
		return nil
	}

	subject, err := g.tokens.ExtractSubject(token)
	if err != nil {
		g.reject(ctx, OutcomeMalformedToken, "")
		return nil
	}

	principal, err := g.principals.GetByID(ctx, subject)
	if err != nil {
		outcome := OutcomePrincipalNotFound
		if !errors.Is(err, ErrPrincipalNotFound) {
			outcome = OutcomeLookupFailed
			g.logger.WarnContext(ctx, "principal lookup failed", "error", err)
		}
		g.reject(ctx, outcome, subject)
		return nil
	}

	claims, err := g.tokens.Validate(token, principal.ID)
	if err != nil {
		g.reject(ctx, OutcomeInvalidToken, subject)
		return nil
	}

	g.observer.ObserveAuth(OutcomeAuthenticated)
	return &SecurityContext{
		PrincipalID: principal.ID,
		Username:    principal.Username,
		Role:        principal.Role,
		ExpiresAt:   claims.ExpiresAt.Time,
	}
}

// Middleware attaches the SecurityContext, if any, to the request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if sc != nil {
			r = r.WithContext(WithSecurityContext(r.Context(), *sc))
		}
		next.ServeHTTP(w, r)
	})
}

// reject records a failed attempt. Token material is never logged.
func (g *Gate) reject(ctx context.Context, outcome Outcome, subject string) {
	g.observer.ObserveAuth(outcome)
	g.logger.DebugContext(ctx, "request continues anonymous",
		"reason", string(outcome),
		"subject", subject,
	)
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// case-insensitive.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
