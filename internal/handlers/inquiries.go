package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pupped/storefront/internal/models"
	"github.com/pupped/storefront/internal/services"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

// InquiryServiceInterface defines the contact-to-inquire operations the handlers need
type InquiryServiceInterface interface {
	Submit(ctx context.Context, in services.ContactInput) (*models.ContactSubmission, error)
	List(ctx context.Context) ([]*models.ContactSubmission, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error)
}

// InquiryHandler handles contact submissions
type InquiryHandler struct {
	service InquiryServiceInterface
	logger  *slog.Logger
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(service InquiryServiceInterface, logger *slog.Logger) *InquiryHandler {
	return &InquiryHandler{service: service, logger: logger}
}

// ContactRequest is the body of POST /api/contact
type ContactRequest struct {
	ProductID    string `json:"productId" validate:"required,uuid"`
	ContactType  string `json:"contactType" validate:"required,oneof=instagram whatsapp"`
	ContactValue string `json:"contactValue" validate:"required,min=2,max=100"`
	Message      string `json:"message" validate:"max=1000"`
}

// UpdateStatusRequest is the body of PATCH /api/submissions/{id}
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted closed"`
}

// ContactResponse is returned once an inquiry is stored
type ContactResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// Submit handles POST /api/contact
func (h *InquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	submission, err := h.service.Submit(r.Context(), services.ContactInput{
		ProductID:    req.ProductID,
		ContactType:  req.ContactType,
		ContactValue: req.ContactValue,
		Message:      req.Message,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, ContactResponse{Success: true, ID: submission.ID})
}

// List handles GET /admin/submissions
func (h *InquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Submission not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, submissions)
}

// UpdateStatus handles PATCH /api/submissions/{id}
func (h *InquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	submission, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, h.logger, err, "Submission not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, submission)
}
