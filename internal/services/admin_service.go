package services

import (
	"context"
	"log/slog"

	"github.com/pupped/storefront/internal/models"
)

// ActiveProductCounter is the subset of ProductRepository needed by AdminService.
type ActiveProductCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// SubmissionCounter is the subset of SubmissionRepository needed by AdminService.
type SubmissionCounter interface {
	CountByStatus(ctx context.Context, status string) (int, error)
}

// AdminService aggregates data for the admin dashboard.
type AdminService struct {
	products    ActiveProductCounter
	submissions SubmissionCounter
	logger      *slog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(products ActiveProductCounter, submissions SubmissionCounter, logger *slog.Logger) *AdminService {
	return &AdminService{
		products:    products,
		submissions: submissions,
		logger:      logger,
	}
}

// GetDashboardStats returns the active product count and the number of
// inquiries nobody has answered yet.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	active, err := s.products.CountActive(ctx)
	if err != nil {
		s.logger.Error("dashboard: failed to count active products", slog.Any("error", err))
		return nil, err
	}

	pending, err := s.submissions.CountByStatus(ctx, models.SubmissionStatusNew)
	if err != nil {
		s.logger.Error("dashboard: failed to count new submissions", slog.Any("error", err))
		return nil, err
	}

	return &models.DashboardStats{
		ActiveProducts: active,
		NewSubmissions: pending,
	}, nil
}
