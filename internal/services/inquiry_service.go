package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pupped/storefront/internal/models"
	pkglogger "github.com/pupped/storefront/pkg/logger"
)

// SubmissionRepository defines the interface for inquiry persistence
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.ContactSubmission) (*models.ContactSubmission, error)
	List(ctx context.Context) ([]*models.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error)
}

// ProductLookup resolves the product an inquiry is about
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// minContactValueLength applies to the contact value once markup is removed
const minContactValueLength = 2

// ContactInput is a validated contact form submission
type ContactInput struct {
	ProductID    string
	ContactType  string
	ContactValue string
	Message      string
}

// InquiryService turns contact form submissions into stored inquiries and
// notifies the shop owner.
type InquiryService struct {
	repo     SubmissionRepository
	products ProductLookup
	email    EmailService
	policy   *bluemonday.Policy
	logger   *slog.Logger
}

func NewInquiryService(repo SubmissionRepository, products ProductLookup, email EmailService, logger *slog.Logger) *InquiryService {
	return &InquiryService{
		repo:     repo,
		products: products,
		email:    email,
		policy:   bluemonday.StrictPolicy(),
		logger:   logger,
	}
}

// NormalizeContactValue trims the value and gives instagram handles exactly
// one leading "@".
func NormalizeContactValue(contactType, value string) string {
	value = strings.TrimSpace(value)
	if contactType == models.ContactTypeInstagram {
		value = "@" + strings.TrimPrefix(value, "@")
	}
	return value
}

// Submit stores an inquiry for an active product. The owner e-mail is best
// effort: a send failure is logged and the inquiry is still returned.
func (s *InquiryService) Submit(ctx context.Context, in ContactInput) (*models.ContactSubmission, error) {
	rawValue := s.stripMarkup(in.ContactValue)
	if utf8.RuneCountInString(rawValue) < minContactValueLength {
		return nil, fmt.Errorf("%w: contact value must be at least %d characters", models.ErrBadRequest, minContactValueLength)
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: product is not available", models.ErrNotFound)
	}

	contactValue := NormalizeContactValue(in.ContactType, rawValue)

	var message *string
	if m := s.stripMarkup(in.Message); m != "" {
		message = &m
	}

	submission, err := s.repo.Create(ctx, &models.ContactSubmission{
		ProductID:    in.ProductID,
		ContactType:  in.ContactType,
		ContactValue: contactValue,
		Message:      message,
	})
	if err != nil {
		return nil, err
	}
	submission.ProductTitle = product.Title

	s.logger.Info("inquiry received",
		slog.String("submission_id", submission.ID),
		slog.String("product_id", product.ID),
		slog.String("contact", pkglogger.MaskContact(contactValue)))

	notification := InquiryNotification{
		ProductTitle: product.Title,
		ContactType:  in.ContactType,
		ContactValue: contactValue,
	}
	if message != nil {
		notification.Message = *message
	}

	if err := s.email.SendInquiryNotification(ctx, notification); err != nil {
		s.logger.Error("failed to send inquiry notification",
			slog.String("submission_id", submission.ID),
			slog.Any("error", err))
	}

	return submission, nil
}

// List returns every inquiry newest first
func (s *InquiryService) List(ctx context.Context) ([]*models.ContactSubmission, error) {
	return s.repo.List(ctx)
}

// UpdateStatus moves an inquiry through new, contacted and closed
func (s *InquiryService) UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error) {
	switch status {
	case models.SubmissionStatusNew, models.SubmissionStatusContacted, models.SubmissionStatusClosed:
	default:
		return nil, fmt.Errorf("%w: invalid status %q", models.ErrBadRequest, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *InquiryService) stripMarkup(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
