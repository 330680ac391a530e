package handlers

import (
	"context"
	"net/http"

	"github.com/pupped/storefront/internal/auth"
	"github.com/pupped/storefront/internal/models"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

// AdminServiceInterface defines the dashboard service contract.
type AdminServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

// AdminHandler serves the admin landing views. Everything it serves sits
// behind the auth gate except the login entry.
type AdminHandler struct {
	service  AdminServiceInterface
	sessions auth.SessionChecker
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminServiceInterface, sessions auth.SessionChecker) *AdminHandler {
	return &AdminHandler{service: service, sessions: sessions}
}

// LoginPageResponse tells the client where to post the password
type LoginPageResponse struct {
	LoginEndpoint string `json:"loginEndpoint"`
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to retrieve dashboard stats")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}

// LoginPage handles GET /admin/login. An existing admin session goes
// straight to the dashboard.
func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.sessions.IsAuthenticated(r) {
		http.Redirect(w, r, auth.AdminPathPrefix, http.StatusFound)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, LoginPageResponse{LoginEndpoint: "/api/auth/login"})
}
