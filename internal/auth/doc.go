// Package auth provides stateless authentication and ownership
// authorisation for jobtrack.
//
// The pieces, leaf first:
//   - TokenService signs and verifies HS256 access tokens (golang-jwt/jwt/v5).
//     Tokens carry only sub, iat, exp and jti; nothing is stored server-side,
//     so expiry is the only way a token dies.
//   - Gate runs once per request. It turns an Authorization header into a
//     SecurityContext, re-reading the principal's role from the store, or
//     leaves the request anonymous. It never rejects.
//   - Authorize and OwnerScope are pure decisions over a SecurityContext:
//     admins may act on anything, users only on what they own.
//   - Authenticator handles registration and login with Argon2id hashes.
//
// Failure is split across two layers. Parsing and validation errors
// (ErrMalformedToken, ErrInvalidToken, ErrPrincipalNotFound) are swallowed
// by the gate. Only ErrAuthenticationRequired and ErrAccessDenied reach
// callers, and neither says why a token was refused.
package auth
