package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/pupped/storefront/internal/database"
	"github.com/pupped/storefront/internal/models"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const productColumns = `id, title, description, price::text, sizes, is_active, article_id, created_at, updated_at`

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var product models.Product
	var articleID *string

	err := scanner.Scan(
		&product.ID, &product.Title, &product.Description, &product.Price,
		pq.Array(&product.Sizes), &product.IsActive, &articleID,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if product.Sizes == nil {
		product.Sizes = []int64{}
	}
	product.ArticleID = articleID

	return &product, nil
}

func scanProductRows(rows pgx.Rows) ([]*models.Product, error) {
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// List returns every product, newest first
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanProductRows(rows)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProductRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (title, description, price, sizes, is_active, article_id)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		pq.Array(product.Sizes),
		product.IsActive,
		product.ArticleID,
	))
}

// Update applies the non-nil fields of upd and bumps updated_at
func (r *ProductRepository) Update(ctx context.Context, id string, upd *models.ProductUpdate) (*models.Product, error) {
	query := `
		UPDATE products SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			price       = COALESCE($4::numeric, price),
			sizes       = COALESCE($5, sizes),
			is_active   = COALESCE($6, is_active),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	return scanProductRow(r.pool.QueryRow(ctx, query,
		id,
		upd.Title,
		upd.Description,
		upd.Price,
		pq.Array(upd.Sizes),
		upd.IsActive,
	))
}

// Delete removes a product; its images and inquiries go with it (ON DELETE CASCADE)
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active = true`).Scan(&count)
	return count, err
}

const productImageColumns = `id, product_id, r2_key, original_name, mime_type, size, sort_order, created_at`

func scanProductImageRow(scanner rowScanner) (*models.ProductImage, error) {
	var img models.ProductImage
	err := scanner.Scan(
		&img.ID, &img.ProductID, &img.R2Key, &img.OriginalName,
		&img.MimeType, &img.Size, &img.SortOrder, &img.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &img, nil
}

// ListImages returns the images of the given products ordered by sort_order
func (r *ProductRepository) ListImages(ctx context.Context, productIDs []string) ([]*models.ProductImage, error) {
	if len(productIDs) == 0 {
		return []*models.ProductImage{}, nil
	}

	query := `
		SELECT ` + productImageColumns + `
		FROM product_images
		WHERE product_id = ANY($1::uuid[])
		ORDER BY sort_order ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	images := make([]*models.ProductImage, 0)
	for rows.Next() {
		img, err := scanProductImageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return images, nil
}

func (r *ProductRepository) GetImage(ctx context.Context, id string) (*models.ProductImage, error) {
	query := `SELECT ` + productImageColumns + ` FROM product_images WHERE id = $1`
	return scanProductImageRow(r.pool.QueryRow(ctx, query, id))
}

// CreateImage appends an image after the product's current last image
func (r *ProductRepository) CreateImage(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error) {
	query := `
		INSERT INTO product_images (product_id, r2_key, original_name, mime_type, size, sort_order)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(sort_order) FROM product_images WHERE product_id = $1), -1) + 1)
		RETURNING ` + productImageColumns

	return scanProductImageRow(r.pool.QueryRow(ctx, query,
		img.ProductID, img.R2Key, img.OriginalName, img.MimeType, img.Size,
	))
}

func (r *ProductRepository) DeleteImage(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
