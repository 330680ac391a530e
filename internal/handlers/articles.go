package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pupped/storefront/internal/models"
	"github.com/pupped/storefront/internal/services"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

// ArticleServiceInterface defines the history article operations the handlers need
type ArticleServiceInterface interface {
	List(ctx context.Context, publishedOnly bool) ([]*models.Article, error)
	Get(ctx context.Context, idOrSlug string) (*models.Article, error)
	Create(ctx context.Context, in services.CreateArticleInput) (*models.Article, error)
	Update(ctx context.Context, id string, in services.UpdateArticleInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	UploadInlineImage(ctx context.Context, upload services.ImageUpload) (*models.Image, error)
}

// ArticleHandler handles history article requests
type ArticleHandler struct {
	service ArticleServiceInterface
	logger  *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(service ArticleServiceInterface, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{service: service, logger: logger}
}

// articleForm is the validated text part of an article multipart body
type articleForm struct {
	Title *string `validate:"omitnil,min=1,max=200"`
	Slug  *string `validate:"omitnil,max=200,slug"`
	Body  *string `validate:"omitnil,min=1"`
}

// ImageURLResponse is the body returned for an inline article image
type ImageURLResponse struct {
	URL string `json:"url"`
}

// List handles GET /api/articles (?published=true limits to published)
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published") == "true"

	articles, err := h.service.List(r.Context(), publishedOnly)
	if err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, articles)
}

// Get handles GET /api/articles/{id}; the parameter may be an id or a slug
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, article)
}

// Create handles POST /api/articles (multipart: title, slug, body, published, coverImage)
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer cleanup()

	form := readArticleForm(r)
	if form.Title == nil || form.Body == nil {
		pkghttp.WriteBadRequest(w, "Title and body are required")
		return
	}
	if err := ValidateRequest(form); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	cover, closeFile, err := formImage(r, "coverImage")
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer closeFile()

	in := services.CreateArticleInput{
		Title:      *form.Title,
		Body:       *form.Body,
		Published:  r.FormValue("published") == "true",
		CoverImage: cover,
	}
	if form.Slug != nil {
		in.Slug = *form.Slug
	}

	article, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, article)
}

// Update handles PUT /api/articles/{id}. Only fields present in the form change;
// removeCoverImage=true drops the cover, a new coverImage replaces it.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer cleanup()

	form := readArticleForm(r)
	if err := ValidateRequest(form); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	cover, closeFile, err := formImage(r, "coverImage")
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer closeFile()

	in := services.UpdateArticleInput{
		Fields: models.ArticleUpdate{
			Title: form.Title,
			Slug:  form.Slug,
			Body:  form.Body,
		},
		CoverImage:       cover,
		RemoveCoverImage: r.FormValue("removeCoverImage") == "true",
	}
	if published := formValue(r, "published"); published != nil {
		p := *published == "true"
		in.Fields.Published = &p
	}

	article, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err, "Article not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// UploadImage handles POST /api/articles/images (multipart: image)
func (h *ArticleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	cleanup, err := parseMultipart(w, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer cleanup()

	upload, closeFile, err := formImage(r, "image")
	if err != nil {
		writeServiceError(w, h.logger, err, "")
		return
	}
	defer closeFile()
	if upload == nil {
		pkghttp.WriteBadRequest(w, "No image provided")
		return
	}

	image, err := h.service.UploadInlineImage(r.Context(), *upload)
	if err != nil {
		writeServiceError(w, h.logger, err, "Image not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, ImageURLResponse{URL: image.URL})
}

func readArticleForm(r *http.Request) articleForm {
	form := articleForm{
		Title: formValue(r, "title"),
		Slug:  formValue(r, "slug"),
		Body:  formValue(r, "body"),
	}
	if form.Title != nil {
		t := strings.TrimSpace(*form.Title)
		form.Title = &t
	}
	// an empty slug means "derive from the title"
	if form.Slug != nil && strings.TrimSpace(*form.Slug) == "" {
		form.Slug = nil
	}
	return form
}
