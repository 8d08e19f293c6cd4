package repository

import (
	"context"

	"github.com/siamt-api/internal/database"
	"github.com/siamt-api/internal/models"
)

// NewsRepository defines the interface for news metadata operations
type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	List(ctx context.Context) ([]*models.News, error)
	GetByID(ctx context.Context, id string) (*models.News, error)
	Delete(ctx context.Context, id string) (bool, error)
	FileNames(ctx context.Context) ([]string, error)
}

// ConventionRepository defines the interface for convention metadata operations
type ConventionRepository interface {
	Create(ctx context.Context, convention *models.Convention) error
	List(ctx context.Context) ([]*models.Convention, error)
	GetByID(ctx context.Context, id string) (*models.Convention, error)
	Delete(ctx context.Context, id string) (bool, error)
	FileNames(ctx context.Context) ([]string, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	News       NewsRepository
	Convention ConventionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		News:       NewNewsRepo(db),
		Convention: NewConventionRepo(db),
	}
}
