package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nerrad567/jobtrack-core/internal/audit"
	"github.com/nerrad567/jobtrack-core/internal/auth"
)

// loginRequest is the request body for POST /auth/login. Username may also
// be an email address.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// userResponse is the public view of a user.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
}

// handleRegister creates a user account. The role is always "user".
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.Registration
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.authenticator.Register(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.recorder.Record(r.Context(), audit.AuditLog{
		Action:     audit.ActionRegister,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.ID,
	})
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// handleLogin verifies credentials and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeValidationError(w, "username and password are required")
		return
	}

	result, err := s.authenticator.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.recorder.Record(r.Context(), audit.AuditLog{
				Action:     audit.ActionLoginFailed,
				EntityType: audit.EntityUser,
				Details:    map[string]any{"remote_addr": r.RemoteAddr},
			})
			writeUnauthorized(w, "invalid username/email or password")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	s.recorder.Record(r.Context(), audit.AuditLog{
		Action:     audit.ActionLogin,
		EntityType: audit.EntityUser,
		EntityID:   result.User.ID,
		UserID:     result.User.ID,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(result.Claims.ExpiresAt.Sub(result.Claims.IssuedAt.Time).Seconds()),
	})
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sc := auth.FromContext(r.Context())

	user, err := s.users.GetByID(r.Context(), sc.PrincipalID)
	if err != nil {
		if errors.Is(err, auth.ErrPrincipalNotFound) {
			writeUnauthorized(w, "authentication required")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       string(user.Role),
		"expires_at": sc.ExpiresAt,
	})
}
