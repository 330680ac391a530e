package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pupped/storefront/internal/auth"
	"github.com/pupped/storefront/internal/services"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	CheckRateLimit(ctx context.Context, ipAddress string) (services.RateLimitResult, error)
	VerifyPassword(ctx context.Context, ipAddress, password string) (bool, error)
	RejectPassword(ctx context.Context, ipAddress string) error
	RecordLogout(ipAddress string)
}

// SessionStore issues and clears the admin session cookie
type SessionStore interface {
	Save(w http.ResponseWriter, s auth.Session) error
	Destroy(w http.ResponseWriter)
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	service  AuthServiceInterface
	sessions SessionStore
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, sessions SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Password string `json:"password"`
}

// loginBody is the decoded login request. Password keeps its JSON type so a
// present non-string value can be told apart from a malformed body.
type loginBody struct {
	Password any `json:"password"`
}

// suppliedValue reports whether a decoded JSON value counts as supplied:
// null, false, 0 and "" do not.
func suppliedValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// SuccessResponse is the body of operations that return no resource
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Login handles POST /api/auth/login.
// The rate limit is checked before the body is read; only a compared
// password is recorded as an attempt.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ipAddress := pkghttp.ExtractClientIP(r)

	limit, err := h.service.CheckRateLimit(r.Context(), ipAddress)
	if err != nil {
		h.logger.Error("rate limit check failed", slog.String("ip_address", ipAddress), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if !limit.Allowed {
		pkghttp.WriteTooManyRequests(w, "Too many login attempts. Please try again later.")
		return
	}

	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request")
		return
	}
	if !suppliedValue(body.Password) {
		pkghttp.WriteBadRequest(w, "Password is required")
		return
	}

	var ok bool
	if password, isString := body.Password.(string); isString {
		ok, err = h.service.VerifyPassword(r.Context(), ipAddress, password)
	} else {
		err = h.service.RejectPassword(r.Context(), ipAddress)
	}
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if !ok {
		// remaining was read before this failure was recorded
		pkghttp.WriteInvalidCredentials(w, "Invalid password", limit.RemainingAttempts-1)
		return
	}

	if err := h.sessions.Save(w, auth.Session{IsAdmin: true}); err != nil {
		h.logger.Error("failed to save session", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	h.service.RecordLogout(pkghttp.ExtractClientIP(r))
	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
