package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/pupped/storefront/internal/models"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	List(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	ListImages(ctx context.Context, productIDs []string) ([]*models.ProductImage, error)
	GetImage(ctx context.Context, id string) (*models.ProductImage, error)
	CreateImage(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error)
	DeleteImage(ctx context.Context, id string) error
}

// ImageStore stores image blobs and resolves their public URLs
type ImageStore interface {
	Upload(ctx context.Context, prefix string, img ImageUpload) (*StoredObject, error)
	DeleteQuietly(ctx context.Context, key string)
	URL(key string) string
}

// CreateProductInput holds validated product fields
type CreateProductInput struct {
	Title       string
	Description string
	Price       string
	Sizes       []int64
	IsActive    bool
	ArticleID   *string
}

type ProductService struct {
	repo    ProductRepository
	storage ImageStore
	logger  *slog.Logger
}

func NewProductService(repo ProductRepository, storage ImageStore, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		storage: storage,
		logger:  logger,
	}
}

// NormalizePrice parses a price and renders it with two decimals
func NormalizePrice(price string) (string, error) {
	d, err := decimal.NewFromString(price)
	if err != nil || d.IsNegative() {
		return "", fmt.Errorf("%w: invalid price %q", models.ErrBadRequest, price)
	}
	return d.StringFixed(2), nil
}

// List returns every product newest first, each with its ordered images
func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, products...); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	price, err := NormalizePrice(in.Price)
	if err != nil {
		return nil, err
	}

	sizes := in.Sizes
	if sizes == nil {
		sizes = []int64{}
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       price,
		Sizes:       sizes,
		IsActive:    in.IsActive,
		ArticleID:   in.ArticleID,
	})
	if err != nil {
		return nil, err
	}

	product.Images = []*models.ProductImage{}
	s.logger.Info("product created", slog.String("product_id", product.ID))
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error) {
	if upd.Price != nil {
		price, err := NormalizePrice(*upd.Price)
		if err != nil {
			return nil, err
		}
		upd.Price = &price
	}

	product, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	if err := s.attachImages(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes every image blob of the product, then the product row.
// Blob failures are logged and do not stop the delete.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	images, err := s.repo.ListImages(ctx, []string{id})
	if err != nil {
		return err
	}

	for _, img := range images {
		s.storage.DeleteQuietly(ctx, img.R2Key)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("product_id", id), slog.Int("images", len(images)))
	return nil
}

// AddImage uploads a blob and appends it to the product's gallery
func (s *ProductService) AddImage(ctx context.Context, productID string, upload ImageUpload) (*models.ProductImage, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	obj, err := s.storage.Upload(ctx, ProductImagePrefix, upload)
	if err != nil {
		return nil, err
	}

	img, err := s.repo.CreateImage(ctx, &models.ProductImage{
		ProductID:    productID,
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

// DeleteImage removes the blob (best effort) and then the image row
func (s *ProductService) DeleteImage(ctx context.Context, id string) error {
	img, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return err
	}

	s.storage.DeleteQuietly(ctx, img.R2Key)

	if err := s.repo.DeleteImage(ctx, id); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return nil
}

func (s *ProductService) attachImages(ctx context.Context, products ...*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]string, len(products))
	byID := make(map[string]*models.Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Images = []*models.ProductImage{}
	}

	images, err := s.repo.ListImages(ctx, ids)
	if err != nil {
		return err
	}

	for _, img := range images {
		img.URL = s.storage.URL(img.R2Key)
		if p, ok := byID[img.ProductID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return nil
}
