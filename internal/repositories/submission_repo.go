package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pupped/storefront/internal/database"
	"github.com/pupped/storefront/internal/models"
)

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{pool: db.Pool}
}

const submissionColumns = `id, product_id, contact_type, contact_value, message, status, created_at`

func scanSubmissionRow(scanner rowScanner, extra ...interface{}) (*models.ContactSubmission, error) {
	var s models.ContactSubmission
	dest := []interface{}{
		&s.ID, &s.ProductID, &s.ContactType, &s.ContactValue, &s.Message, &s.Status, &s.CreatedAt,
	}
	if err := scanner.Scan(append(dest, extra...)...); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &s, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s *models.ContactSubmission) (*models.ContactSubmission, error) {
	query := `
		INSERT INTO contact_submissions (product_id, contact_type, contact_value, message)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + submissionColumns

	return scanSubmissionRow(r.pool.QueryRow(ctx, query, s.ProductID, s.ContactType, s.ContactValue, s.Message))
}

// List returns every inquiry newest first, joined with its product title
func (r *SubmissionRepository) List(ctx context.Context) ([]*models.ContactSubmission, error) {
	query := `
		SELECT s.id, s.product_id, s.contact_type, s.contact_value, s.message, s.status, s.created_at, p.title
		FROM contact_submissions s
		JOIN products p ON p.id = s.product_id
		ORDER BY s.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	submissions := make([]*models.ContactSubmission, 0)
	for rows.Next() {
		var title string
		s, err := scanSubmissionRow(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		s.ProductTitle = title
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id, status string) (*models.ContactSubmission, error) {
	query := `
		UPDATE contact_submissions SET status = $2
		WHERE id = $1
		RETURNING ` + submissionColumns

	return scanSubmissionRow(r.pool.QueryRow(ctx, query, id, status))
}

func (r *SubmissionRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_submissions WHERE status = $1`, status).Scan(&count)
	return count, err
}
