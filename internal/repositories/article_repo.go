package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pupped/storefront/internal/database"
	"github.com/pupped/storefront/internal/models"
)

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(db *database.DB) *ArticleRepository {
	return &ArticleRepository{pool: db.Pool}
}

const articleColumns = `id, title, slug, cover_image_id, body, published, created_at, updated_at`

func scanArticleRow(scanner rowScanner) (*models.Article, error) {
	var article models.Article
	var coverImageID *string

	err := scanner.Scan(
		&article.ID, &article.Title, &article.Slug, &coverImageID,
		&article.Body, &article.Published, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	article.CoverImageID = coverImageID
	return &article, nil
}

func scanArticleRows(rows pgx.Rows) ([]*models.Article, error) {
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		article, err := scanArticleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return articles, nil
}

// List returns articles newest first, optionally only the published ones
func (r *ArticleRepository) List(ctx context.Context, publishedOnly bool) ([]*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	if publishedOnly {
		query += ` WHERE published = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return scanArticleRows(rows)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticleRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = $1`
	return scanArticleRow(r.pool.QueryRow(ctx, query, slug))
}

func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	query := `
		INSERT INTO articles (title, slug, body, published, cover_image_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + articleColumns

	return scanArticleRow(r.pool.QueryRow(ctx, query,
		article.Title, article.Slug, article.Body, article.Published, article.CoverImageID,
	))
}

// Update applies the non-nil fields of upd. coverImageID is always written,
// so callers pass the current value to keep it.
func (r *ArticleRepository) Update(ctx context.Context, id string, upd *models.ArticleUpdate, coverImageID *string) (*models.Article, error) {
	query := `
		UPDATE articles SET
			title          = COALESCE($2, title),
			slug           = COALESCE($3, slug),
			body           = COALESCE($4, body),
			published      = COALESCE($5, published),
			cover_image_id = $6,
			updated_at     = NOW()
		WHERE id = $1
		RETURNING ` + articleColumns

	return scanArticleRow(r.pool.QueryRow(ctx, query,
		id, upd.Title, upd.Slug, upd.Body, upd.Published, coverImageID,
	))
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const imageColumns = `id, r2_key, original_name, mime_type, size, created_at`

func scanImageRow(scanner rowScanner) (*models.Image, error) {
	var img models.Image
	err := scanner.Scan(&img.ID, &img.R2Key, &img.OriginalName, &img.MimeType, &img.Size, &img.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &img, nil
}

func (r *ArticleRepository) GetImage(ctx context.Context, id string) (*models.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`
	return scanImageRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ArticleRepository) CreateImage(ctx context.Context, img *models.Image) (*models.Image, error) {
	query := `
		INSERT INTO images (r2_key, original_name, mime_type, size)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + imageColumns

	return scanImageRow(r.pool.QueryRow(ctx, query, img.R2Key, img.OriginalName, img.MimeType, img.Size))
}

func (r *ArticleRepository) DeleteImage(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	return database.MapPostgresError(err)
}
