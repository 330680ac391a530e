package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pupped/storefront/internal/models"
	"github.com/pupped/storefront/internal/services"
	pkghttp "github.com/pupped/storefront/pkg/http"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newJSONRequest creates an HTTP request with a JSON body
func newJSONRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartFile is one file part of a multipart test body
type multipartFile struct {
	Field    string
	Name     string
	MimeType string
	Content  []byte
}

// newMultipartRequest builds a multipart/form-data request
func newMultipartRequest(t *testing.T, method, url string, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		h.Set("Content-Type", f.MimeType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// withURLParam attaches a chi route parameter to the request
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// assertJSONResponse checks the status and decodes the JSON body into target
func assertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "Failed to decode response JSON")
	}
}

// assertErrorResponse checks that the response is a JSON error with the given code
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

// MockAuthService implements handlers.AuthServiceInterface
type MockAuthService struct {
	CheckRateLimitFunc func(ctx context.Context, ipAddress string) (services.RateLimitResult, error)
	VerifyPasswordFunc func(ctx context.Context, ipAddress, password string) (bool, error)
	RejectPasswordFunc func(ctx context.Context, ipAddress string) error
	LogoutIPs          []string
	VerifyCalls        int
	RejectCalls        int
}

func (m *MockAuthService) CheckRateLimit(ctx context.Context, ipAddress string) (services.RateLimitResult, error) {
	if m.CheckRateLimitFunc != nil {
		return m.CheckRateLimitFunc(ctx, ipAddress)
	}
	return services.RateLimitResult{Allowed: true, RemainingAttempts: 5}, nil
}

func (m *MockAuthService) VerifyPassword(ctx context.Context, ipAddress, password string) (bool, error) {
	m.VerifyCalls++
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(ctx, ipAddress, password)
	}
	return false, nil
}

func (m *MockAuthService) RejectPassword(ctx context.Context, ipAddress string) error {
	m.RejectCalls++
	if m.RejectPasswordFunc != nil {
		return m.RejectPasswordFunc(ctx, ipAddress)
	}
	return nil
}

func (m *MockAuthService) RecordLogout(ipAddress string) {
	m.LogoutIPs = append(m.LogoutIPs, ipAddress)
}

// memoryAttempts is an in-memory login attempt store
type memoryAttempts struct {
	mu       sync.Mutex
	attempts []models.LoginAttempt
}

func (m *memoryAttempts) RecordAttempt(ctx context.Context, attempt *models.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *memoryAttempts) GetFailedAttemptCountByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.attempts {
		if a.IPAddress == ipAddress && !a.Success && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryAttempts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attempts)
}

// MockProductService implements handlers.ProductServiceInterface
type MockProductService struct {
	ListFunc        func(ctx context.Context) ([]*models.Product, error)
	GetFunc         func(ctx context.Context, id string) (*models.Product, error)
	CreateFunc      func(ctx context.Context, in services.CreateProductInput) (*models.Product, error)
	UpdateFunc      func(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error)
	DeleteFunc      func(ctx context.Context, id string) error
	AddImageFunc    func(ctx context.Context, productID string, upload services.ImageUpload) (*models.ProductImage, error)
	DeleteImageFunc func(ctx context.Context, id string) error
}

func (m *MockProductService) List(ctx context.Context) ([]*models.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Product{}, nil
}

func (m *MockProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductService) Create(ctx context.Context, in services.CreateProductInput) (*models.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &models.Product{ID: "p1", Title: in.Title}, nil
}

func (m *MockProductService) Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockProductService) AddImage(ctx context.Context, productID string, upload services.ImageUpload) (*models.ProductImage, error) {
	if m.AddImageFunc != nil {
		return m.AddImageFunc(ctx, productID, upload)
	}
	return &models.ProductImage{ID: "i1", ProductID: productID}, nil
}

func (m *MockProductService) DeleteImage(ctx context.Context, id string) error {
	if m.DeleteImageFunc != nil {
		return m.DeleteImageFunc(ctx, id)
	}
	return nil
}

// MockArticleService implements handlers.ArticleServiceInterface
type MockArticleService struct {
	ListFunc        func(ctx context.Context, publishedOnly bool) ([]*models.Article, error)
	GetFunc         func(ctx context.Context, idOrSlug string) (*models.Article, error)
	CreateFunc      func(ctx context.Context, in services.CreateArticleInput) (*models.Article, error)
	UpdateFunc      func(ctx context.Context, id string, in services.UpdateArticleInput) (*models.Article, error)
	DeleteFunc      func(ctx context.Context, id string) error
	UploadImageFunc func(ctx context.Context, upload services.ImageUpload) (*models.Image, error)
}

func (m *MockArticleService) List(ctx context.Context, publishedOnly bool) ([]*models.Article, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, publishedOnly)
	}
	return []*models.Article{}, nil
}

func (m *MockArticleService) Get(ctx context.Context, idOrSlug string) (*models.Article, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, idOrSlug)
	}
	return nil, models.ErrNotFound
}

func (m *MockArticleService) Create(ctx context.Context, in services.CreateArticleInput) (*models.Article, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return &models.Article{ID: "a1", Title: in.Title, Slug: in.Slug}, nil
}

func (m *MockArticleService) Update(ctx context.Context, id string, in services.UpdateArticleInput) (*models.Article, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, in)
	}
	return nil, models.ErrNotFound
}

func (m *MockArticleService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockArticleService) UploadInlineImage(ctx context.Context, upload services.ImageUpload) (*models.Image, error) {
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, upload)
	}
	return &models.Image{ID: "img1", URL: "https://cdn.test/articles/img1.jpg"}, nil
}

// MockInquiryService implements handlers.InquiryServiceInterface
type MockInquiryService struct {
	SubmitFunc       func(ctx context.Context, in services.ContactInput) (*models.ContactSubmission, error)
	ListFunc         func(ctx context.Context) ([]*models.ContactSubmission, error)
	UpdateStatusFunc func(ctx context.Context, id, status string) (*models.ContactSubmission, error)
}

func (m *MockInquiryService) Submit(ctx context.Context, in services.ContactInput) (*models.ContactSubmission, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, in)
	}
	return &models.ContactSubmission{ID: "s1", ProductID: in.ProductID}, nil
}

func (m *MockInquiryService) List(ctx context.Context) ([]*models.ContactSubmission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.ContactSubmission{}, nil
}

func (m *MockInquiryService) UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

// MockAdminService implements handlers.AdminServiceInterface
type MockAdminService struct {
	Stats *models.DashboardStats
	Err   error
}

func (m *MockAdminService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	return m.Stats, m.Err
}

// staticSessions reports a fixed authentication state
type staticSessions bool

func (s staticSessions) IsAuthenticated(*http.Request) bool { return bool(s) }
