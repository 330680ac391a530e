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

// ProductServiceInterface defines the catalog operations the handlers need
type ProductServiceInterface interface {
	List(ctx context.Context) ([]*models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, in services.CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, productID string, upload services.ImageUpload) (*models.ProductImage, error)
	DeleteImage(ctx context.Context, id string) error
}

// ProductHandler handles catalog and product image requests
type ProductHandler struct {
	service ProductServiceInterface
	logger  *slog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service ProductServiceInterface, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// CreateProductRequest is the body of POST /api/products
type CreateProductRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       string  `json:"price" validate:"required,price"`
	Sizes       []int64 `json:"sizes" validate:"required,min=1,dive,gt=0"`
	IsActive    *bool   `json:"isActive"`
	ArticleID   *string `json:"articleId" validate:"omitempty,uuid"`
}

// UpdateProductRequest is the body of PUT /api/products/{id}; absent fields are left alone
type UpdateProductRequest struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,min=1"`
	Price       *string `json:"price" validate:"omitnil,price"`
	Sizes       []int64 `json:"sizes" validate:"omitempty,min=1,dive,gt=0"`
	IsActive    *bool   `json:"isActive"`
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.service.Create(r.Context(), services.CreateProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Sizes:       req.Sizes,
		IsActive:    isActive,
		ArticleID:   req.ArticleID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	product, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &models.ProductUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Sizes:       req.Sizes,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// UploadImage handles POST /api/upload (multipart: file, productId)
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer cleanup()

	productID := r.FormValue("productId")
	if productID == "" {
		pkghttp.WriteBadRequest(w, "Product ID is required")
		return
	}

	upload, closeFile, err := formImage(r, "file")
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer closeFile()
	if upload == nil {
		pkghttp.WriteBadRequest(w, "No file provided")
		return
	}

	image, err := h.service.AddImage(r.Context(), productID, *upload)
	if err != nil {
		writeServiceError(w, h.logger, err, "Product not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, image)
}

// DeleteImage handles DELETE /api/images/{id}
func (h *ProductHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteImage(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err, "Image not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
