package service

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/config"
	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/repository"
	"github.com/siamt-api/internal/storage"
	"github.com/siamt-api/internal/validation"
)

// FileStore is the storage directory the pipelines write to and read from
type FileStore interface {
	EnsureDir() error
	Create(now time.Time, original string, data []byte) (string, error)
	Open(name string) (*os.File, os.FileInfo, error)
	Remove(name string) error
	List() ([]storage.FileInfo, error)
}

// Stores holds the file store of each variant. The variants never share a
// directory, so the news static mount cannot reach convention documents.
type Stores struct {
	News       FileStore
	Convention FileStore
}

// NewsService defines the interface for news operations
type NewsService interface {
	Create(ctx context.Context, form models.NewsForm, file *models.FileUpload) (*models.News, error)
	List(ctx context.Context) ([]*models.News, error)
	Get(ctx context.Context, id string) (*models.News, error)
	Delete(ctx context.Context, id string) error
}

// ConventionService defines the interface for convention operations
type ConventionService interface {
	Create(ctx context.Context, form models.ConventionForm, file *models.FileUpload) (*models.Convention, error)
	List(ctx context.Context) ([]*models.Convention, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, fileName string) (*Download, error)
}

// SweepService defines the interface for the orphan file sweeper
type SweepService interface {
	Start(ctx context.Context)
	Stop()
	SweepOnce(ctx context.Context) (*SweepResult, error)
}

// Download is an open stored file ready to be streamed. Caller must close it.
type Download struct {
	io.ReadSeekCloser
	FileName    string // name presented to the client
	Size        int64
	ContentType string
	ModTime     time.Time
}

// Services holds all service interfaces
type Services struct {
	News       NewsService
	Convention ConventionService
	Sweeper    SweepService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, stores Stores, cfg *config.Config, log zerolog.Logger) *Services {
	v := validation.NewValidator()
	base := cfg.Server.PublicBaseURL

	return &Services{
		News:       newNewsService(repos.News, stores.News, v, joinURL(base, cfg.Storage.StaticPrefix), log),
		Convention: newConventionService(repos.Convention, stores.Convention, v, joinURL(base, ConventionDownloadPath), log),
		Sweeper:    newSweepService(repos, stores, cfg.Sweep, log),
	}
}

// ConventionDownloadPath is the route prefix that serves convention files
const ConventionDownloadPath = "/conventions/download"
