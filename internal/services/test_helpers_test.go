package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pupped/storefront/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockLoginAttemptRepository keeps attempts in memory and honours the since cutoff
type MockLoginAttemptRepository struct {
	mu        sync.Mutex
	Attempts  []models.LoginAttempt
	RecordErr error
	CountErr  error
}

func (m *MockLoginAttemptRepository) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt.ID = uuid.New().String()
	m.Attempts = append(m.Attempts, *attempt)
	return nil
}

func (m *MockLoginAttemptRepository) GetFailedAttemptCountByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, a := range m.Attempts {
		if a.IPAddress == ipAddress && !a.Success && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// MockProductRepository implements ProductRepository for testing
type MockProductRepository struct {
	ListFunc        func(ctx context.Context) ([]*models.Product, error)
	GetByIDFunc     func(ctx context.Context, id string) (*models.Product, error)
	CreateFunc      func(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateFunc      func(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error)
	DeleteFunc      func(ctx context.Context, id string) error
	CountActiveFunc func(ctx context.Context) (int, error)
	ListImagesFunc  func(ctx context.Context, productIDs []string) ([]*models.ProductImage, error)
	GetImageFunc    func(ctx context.Context, id string) (*models.ProductImage, error)
	CreateImageFunc func(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error)
	DeleteImageFunc func(ctx context.Context, id string) error
}

func (m *MockProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Product{}, nil
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, product)
	}
	return nil, errStorage
}

func (m *MockProductRepository) Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return nil, errStorage
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockProductRepository) CountActive(ctx context.Context) (int, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx)
	}
	return 0, nil
}

func (m *MockProductRepository) ListImages(ctx context.Context, productIDs []string) ([]*models.ProductImage, error) {
	if m.ListImagesFunc != nil {
		return m.ListImagesFunc(ctx, productIDs)
	}
	return []*models.ProductImage{}, nil
}

func (m *MockProductRepository) GetImage(ctx context.Context, id string) (*models.ProductImage, error) {
	if m.GetImageFunc != nil {
		return m.GetImageFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductRepository) CreateImage(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error) {
	if m.CreateImageFunc != nil {
		return m.CreateImageFunc(ctx, img)
	}
	return nil, errStorage
}

func (m *MockProductRepository) DeleteImage(ctx context.Context, id string) error {
	if m.DeleteImageFunc != nil {
		return m.DeleteImageFunc(ctx, id)
	}
	return nil
}

// MockArticleRepository is an in-memory ArticleRepository
type MockArticleRepository struct {
	Articles  map[string]*models.Article
	Images    map[string]*models.Image
	CreateErr error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
		Images:   make(map[string]*models.Image),
	}
}

func (m *MockArticleRepository) List(ctx context.Context, publishedOnly bool) ([]*models.Article, error) {
	out := make([]*models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		if publishedOnly && !a.Published {
			continue
		}
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	a, ok := m.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	for _, a := range m.Articles {
		if a.Slug == slug {
			c := *a
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	for _, a := range m.Articles {
		if a.Slug == article.Slug {
			return nil, models.ErrConflict
		}
	}
	c := *article
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.Articles[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, id string, upd *models.ArticleUpdate, coverImageID *string) (*models.Article, error) {
	a, ok := m.Articles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Slug != nil {
		a.Slug = *upd.Slug
	}
	if upd.Body != nil {
		a.Body = *upd.Body
	}
	if upd.Published != nil {
		a.Published = *upd.Published
	}
	a.CoverImageID = coverImageID
	a.UpdatedAt = time.Now()
	c := *a
	return &c, nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.Articles[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) GetImage(ctx context.Context, id string) (*models.Image, error) {
	img, ok := m.Images[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *img
	return &c, nil
}

func (m *MockArticleRepository) CreateImage(ctx context.Context, img *models.Image) (*models.Image, error) {
	c := *img
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now()
	m.Images[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MockArticleRepository) DeleteImage(ctx context.Context, id string) error {
	delete(m.Images, id)
	for _, a := range m.Articles {
		if a.CoverImageID != nil && *a.CoverImageID == id {
			a.CoverImageID = nil
		}
	}
	return nil
}

// MockImageStore records uploads and deletes
type MockImageStore struct {
	Uploaded  []string
	Deleted   []string
	UploadErr error
}

func (m *MockImageStore) Upload(ctx context.Context, prefix string, img ImageUpload) (*StoredObject, error) {
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}
	if err := ValidateImage(img.MimeType, img.Size); err != nil {
		return nil, err
	}
	key := prefix + "/" + uuid.New().String() + "." + extensionOf(img.OriginalName)
	m.Uploaded = append(m.Uploaded, key)
	return &StoredObject{Key: key, OriginalName: img.OriginalName, MimeType: img.MimeType, Size: img.Size}, nil
}

func (m *MockImageStore) DeleteQuietly(ctx context.Context, key string) {
	m.Deleted = append(m.Deleted, key)
}

func (m *MockImageStore) URL(key string) string {
	return "https://cdn.test/" + key
}

// MockSubmissionRepository implements SubmissionRepository and SubmissionCounter
type MockSubmissionRepository struct {
	Created           []*models.ContactSubmission
	CreateErr         error
	UpdateStatusFunc  func(ctx context.Context, id, status string) (*models.ContactSubmission, error)
	CountByStatusFunc func(ctx context.Context, status string) (int, error)
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s *models.ContactSubmission) (*models.ContactSubmission, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	c := *s
	c.ID = uuid.New().String()
	c.Status = models.SubmissionStatusNew
	c.CreatedAt = time.Now()
	m.Created = append(m.Created, &c)
	out := c
	return &out, nil
}

func (m *MockSubmissionRepository) List(ctx context.Context) ([]*models.ContactSubmission, error) {
	return m.Created, nil
}

func (m *MockSubmissionRepository) UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

// MockEmailService records notifications
type MockEmailService struct {
	Sent    []InquiryNotification
	SendErr error
}

func (m *MockEmailService) SendInquiryNotification(ctx context.Context, n InquiryNotification) error {
	m.Sent = append(m.Sent, n)
	return m.SendErr
}

var errStorage = errors.New("connection refused")
