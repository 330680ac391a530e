package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"

	"github.com/pupped/storefront/internal/auth"
	pkglogger "github.com/pupped/storefront/pkg/logger"
)

// LoginRateLimiter is the part of RateLimitService the login flow needs
type LoginRateLimiter interface {
	CheckRateLimit(ctx context.Context, ipAddress string) (RateLimitResult, error)
	RecordLoginAttempt(ctx context.Context, ipAddress string, success bool) error
}

// AuthService checks the shared admin password and keeps the attempt log
type AuthService struct {
	passwordDigest [sha256.Size]byte
	limiter        LoginRateLimiter
	timing         *auth.TimingDelay
	logger         *slog.Logger
	auditLogger    *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(adminPassword string, limiter LoginRateLimiter, timing *auth.TimingDelay, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		passwordDigest: sha256.Sum256([]byte(adminPassword)),
		limiter:        limiter,
		timing:         timing,
		logger:         logger,
		auditLogger:    auditLogger,
	}
}

// CheckRateLimit reports whether ipAddress may attempt a login
func (s *AuthService) CheckRateLimit(ctx context.Context, ipAddress string) (RateLimitResult, error) {
	result, err := s.limiter.CheckRateLimit(ctx, ipAddress)
	if err != nil {
		return RateLimitResult{}, err
	}

	if !result.Allowed {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginBlocked,
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "rate_limit_exceeded",
		})
	}

	return result, nil
}

// VerifyPassword compares password to the admin password and records the
// outcome for ipAddress. A recording failure is returned as an error and no
// verdict is given.
func (s *AuthService) VerifyPassword(ctx context.Context, ipAddress, password string) (bool, error) {
	digest := sha256.Sum256([]byte(password))
	ok := subtle.ConstantTimeCompare(digest[:], s.passwordDigest[:]) == 1

	reason := ""
	if !ok {
		reason = "invalid_password"
	}
	if err := s.recordOutcome(ctx, ipAddress, ok, reason); err != nil {
		return false, err
	}
	return ok, nil
}

// RejectPassword records a failed login for a password that cannot match,
// such as a non-string JSON value.
func (s *AuthService) RejectPassword(ctx context.Context, ipAddress string) error {
	return s.recordOutcome(ctx, ipAddress, false, "malformed_password")
}

func (s *AuthService) recordOutcome(ctx context.Context, ipAddress string, ok bool, reason string) error {
	if err := s.limiter.RecordLoginAttempt(ctx, ipAddress, ok); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("ip_address", ipAddress),
			slog.Any("error", err))
		return err
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     pkglogger.EventAdminLogin,
		IPAddress:     ipAddress,
		Success:       ok,
		FailureReason: reason,
	})

	s.timing.Wait(ctx, ok)

	return nil
}

// RecordLogout writes the logout to the audit log
func (s *AuthService) RecordLogout(ipAddress string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: pkglogger.EventAdminLogout,
		IPAddress: ipAddress,
		Success:   true,
	})
}
