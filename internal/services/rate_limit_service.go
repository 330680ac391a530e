package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pupped/storefront/internal/models"
)

// LoginAttemptRepository defines the storage the limiter reads and appends to
type LoginAttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error
	GetFailedAttemptCountByIP(ctx context.Context, ipAddress string, since time.Time) (int, error)
}

// RateLimitConfig holds configuration for rate limiting behavior
type RateLimitConfig struct {
	MaxFailedAttempts int
	LookbackWindow    time.Duration
}

// RateLimitResult is the limiter's verdict for one IP
type RateLimitResult struct {
	Allowed           bool
	RemainingAttempts int
}

// RateLimitService caps failed admin logins per client IP over a sliding
// window derived from the login_attempts log.
type RateLimitService struct {
	repo   LoginAttemptRepository
	config RateLimitConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewRateLimitService creates a new RateLimitService
func NewRateLimitService(repo LoginAttemptRepository, config RateLimitConfig, logger *slog.Logger) *RateLimitService {
	return &RateLimitService{
		repo:   repo,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// CheckRateLimit counts failed attempts from ipAddress since now minus the
// lookback window. It never writes.
func (s *RateLimitService) CheckRateLimit(ctx context.Context, ipAddress string) (RateLimitResult, error) {
	since := s.now().Add(-s.config.LookbackWindow)

	failed, err := s.repo.GetFailedAttemptCountByIP(ctx, ipAddress, since)
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to count login attempts: %w", err)
	}

	remaining := s.config.MaxFailedAttempts - failed
	if remaining < 0 {
		remaining = 0
	}

	result := RateLimitResult{
		Allowed:           failed < s.config.MaxFailedAttempts,
		RemainingAttempts: remaining,
	}

	if !result.Allowed {
		s.logger.Warn("IP rate limited",
			slog.String("ip_address", ipAddress),
			slog.Int("failed_attempts", failed))
	}

	return result, nil
}

// RecordLoginAttempt appends the outcome of a login attempt
func (s *RateLimitService) RecordLoginAttempt(ctx context.Context, ipAddress string, success bool) error {
	attempt := &models.LoginAttempt{
		IPAddress: ipAddress,
		Success:   success,
		CreatedAt: s.now(),
	}

	if err := s.repo.RecordAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}
