package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pupped/storefront/internal/models"
)

// ArticleRepository defines the interface for article persistence
type ArticleRepository interface {
	List(ctx context.Context, publishedOnly bool) ([]*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	Update(ctx context.Context, id string, upd *models.ArticleUpdate, coverImageID *string) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	GetImage(ctx context.Context, id string) (*models.Image, error)
	CreateImage(ctx context.Context, img *models.Image) (*models.Image, error)
	DeleteImage(ctx context.Context, id string) error
}

// CreateArticleInput holds validated article fields
type CreateArticleInput struct {
	Title      string
	Slug       string
	Body       string
	Published  bool
	CoverImage *ImageUpload
}

// UpdateArticleInput holds a partial article update
type UpdateArticleInput struct {
	Fields           models.ArticleUpdate
	CoverImage       *ImageUpload
	RemoveCoverImage bool
}

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
	slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// GenerateSlug derives a URL slug from an article title
func GenerateSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ValidSlug reports whether slug only holds lowercase letters, digits and hyphens
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

type ArticleService struct {
	repo    ArticleRepository
	storage ImageStore
	policy  *bluemonday.Policy
	logger  *slog.Logger
}

func NewArticleService(repo ArticleRepository, storage ImageStore, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		repo:    repo,
		storage: storage,
		policy:  bluemonday.UGCPolicy(),
		logger:  logger,
	}
}

// List returns articles newest first with their cover images
func (s *ArticleService) List(ctx context.Context, publishedOnly bool) ([]*models.Article, error) {
	articles, err := s.repo.List(ctx, publishedOnly)
	if err != nil {
		return nil, err
	}

	for _, a := range articles {
		if err := s.attachCover(ctx, a); err != nil {
			return nil, err
		}
	}
	return articles, nil
}

// Get looks an article up by id, then by slug
func (s *ArticleService) Get(ctx context.Context, idOrSlug string) (*models.Article, error) {
	article, err := s.repo.GetByID(ctx, idOrSlug)
	if errors.Is(err, models.ErrNotFound) {
		article, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachCover(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Create stores a new article. An empty slug is derived from the title.
func (s *ArticleService) Create(ctx context.Context, in CreateArticleInput) (*models.Article, error) {
	slug := in.Slug
	if slug == "" {
		slug = GenerateSlug(in.Title)
	}
	if !ValidSlug(slug) {
		return nil, fmt.Errorf("%w: invalid slug %q", models.ErrBadRequest, slug)
	}

	var coverID *string
	if in.CoverImage != nil {
		img, err := s.storeImage(ctx, *in.CoverImage)
		if err != nil {
			return nil, err
		}
		coverID = &img.ID
	}

	article, err := s.repo.Create(ctx, &models.Article{
		Title:        in.Title,
		Slug:         slug,
		Body:         s.policy.Sanitize(in.Body),
		Published:    in.Published,
		CoverImageID: coverID,
	})
	if err != nil {
		if coverID != nil {
			s.removeImage(ctx, *coverID)
		}
		return nil, err
	}

	if err := s.attachCover(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article created", slog.String("article_id", article.ID), slog.String("slug", article.Slug))
	return article, nil
}

// Update applies a partial update. A new cover replaces the old one; the
// old blob and row are removed.
func (s *ArticleService) Update(ctx context.Context, id string, in UpdateArticleInput) (*models.Article, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := in.Fields
	if fields.Body != nil {
		body := s.policy.Sanitize(*fields.Body)
		fields.Body = &body
	}

	coverID := current.CoverImageID
	if (in.RemoveCoverImage || in.CoverImage != nil) && current.CoverImageID != nil {
		s.removeImage(ctx, *current.CoverImageID)
		coverID = nil
	}

	if in.CoverImage != nil {
		img, err := s.storeImage(ctx, *in.CoverImage)
		if err != nil {
			return nil, err
		}
		coverID = &img.ID
	}

	article, err := s.repo.Update(ctx, id, &fields, coverID)
	if err != nil {
		return nil, err
	}

	if err := s.attachCover(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes the cover image (blob and row) and then the article
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if article.CoverImageID != nil {
		s.removeImage(ctx, *article.CoverImageID)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("article deleted", slog.String("article_id", id))
	return nil
}

// UploadInlineImage stores an image referenced from an article body
func (s *ArticleService) UploadInlineImage(ctx context.Context, upload ImageUpload) (*models.Image, error) {
	return s.storeImage(ctx, upload)
}

func (s *ArticleService) storeImage(ctx context.Context, upload ImageUpload) (*models.Image, error) {
	obj, err := s.storage.Upload(ctx, ArticleImagePrefix, upload)
	if err != nil {
		return nil, err
	}

	img, err := s.repo.CreateImage(ctx, &models.Image{
		R2Key:        obj.Key,
		OriginalName: obj.OriginalName,
		MimeType:     obj.MimeType,
		Size:         obj.Size,
	})
	if err != nil {
		s.storage.DeleteQuietly(ctx, obj.Key)
		return nil, err
	}

	img.URL = s.storage.URL(img.R2Key)
	return img, nil
}

func (s *ArticleService) removeImage(ctx context.Context, imageID string) {
	img, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("failed to load image", slog.String("image_id", imageID), slog.Any("error", err))
		}
		return
	}

	s.storage.DeleteQuietly(ctx, img.R2Key)

	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		s.logger.Error("failed to delete image row", slog.String("image_id", imageID), slog.Any("error", err))
	}
}

func (s *ArticleService) attachCover(ctx context.Context, a *models.Article) error {
	if a.CoverImageID == nil {
		return nil
	}

	img, err := s.repo.GetImage(ctx, *a.CoverImageID)
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	img.URL = s.storage.URL(img.R2Key)
	a.CoverImage = img
	return nil
}
