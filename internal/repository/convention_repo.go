package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/siamt-api/internal/database"
	"github.com/siamt-api/internal/models"
)

// conventionRepo is the concrete implementation of ConventionRepository
type conventionRepo struct {
	db *database.DB
}

// NewConventionRepo creates a new convention repository
func NewConventionRepo(db *database.DB) ConventionRepository {
	return &conventionRepo{db: db}
}

// Create inserts a convention row
func (r *conventionRepo) Create(ctx context.Context, c *models.Convention) error {
	query := `
		INSERT INTO conventions (id, title, year, file)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Title, c.Year, c.File)
	return err
}

// List returns all conventions ordered by year, most recent first
func (r *conventionRepo) List(ctx context.Context) ([]*models.Convention, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, year, file FROM conventions ORDER BY year DESC, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	all := make([]*models.Convention, 0)
	for rows.Next() {
		var c models.Convention
		if err := rows.Scan(&c.ID, &c.Title, &c.Year, &c.File); err != nil {
			return nil, err
		}
		all = append(all, &c)
	}
	return all, rows.Err()
}

// GetByID retrieves a convention by ID, returning nil when absent
func (r *conventionRepo) GetByID(ctx context.Context, id string) (*models.Convention, error) {
	var c models.Convention
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, year, file FROM conventions WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Year, &c.File)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a convention row and reports whether it existed
func (r *conventionRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM conventions WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FileNames returns every stored document name referenced by a convention
func (r *conventionRepo) FileNames(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, r.db, "SELECT file FROM conventions")
}
