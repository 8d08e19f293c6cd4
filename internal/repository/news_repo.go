package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/siamt-api/internal/database"
	"github.com/siamt-api/internal/models"
)

// newsRepo is the concrete implementation of NewsRepository
type newsRepo struct {
	db *database.DB
}

// NewNewsRepo creates a new news repository
func NewNewsRepo(db *database.DB) NewsRepository {
	return &newsRepo{db: db}
}

// Create inserts a news row. CreatedAt is filled from the database default.
func (r *newsRepo) Create(ctx context.Context, news *models.News) error {
	query := `
		INSERT INTO news (id, title, description, author, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query,
		news.ID, news.Title, news.Description, news.Author, news.Image,
	).Scan(&news.CreatedAt)
}

// List returns all news, newest first
func (r *newsRepo) List(ctx context.Context) ([]*models.News, error) {
	query := `
		SELECT id, title, description, author, image, created_at
		FROM news ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make([]*models.News, 0)
	for rows.Next() {
		var n models.News
		if err := rows.Scan(&n.ID, &n.Title, &n.Description, &n.Author, &n.Image, &n.CreatedAt); err != nil {
			return nil, err
		}
		all = append(all, &n)
	}
	return all, rows.Err()
}

// GetByID retrieves a news row by ID, returning nil when absent
func (r *newsRepo) GetByID(ctx context.Context, id string) (*models.News, error) {
	query := `
		SELECT id, title, description, author, image, created_at
		FROM news WHERE id = $1
	`

	var n models.News
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Description, &n.Author, &n.Image, &n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Delete removes a news row and reports whether it existed
func (r *newsRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM news WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FileNames returns every stored image name referenced by a news row
func (r *newsRepo) FileNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.db, "SELECT image FROM news")
}

func queryStrings(ctx context.Context, db *database.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
