package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/storage"
	"github.com/siamt-api/internal/validation"
)

// Variant names used in logs and metric labels
const (
	VariantNews       = "news"
	VariantConvention = "convention"
)

// pipeline holds what the news and convention services share: the file
// store, the URL base for decorated records, and the variant name.
type pipeline struct {
	variant string
	store   FileStore
	urlBase string
	log     zerolog.Logger
}

// storeFile writes the upload under a generated name and returns that name
func (p *pipeline) storeFile(file *models.FileUpload) (string, error) {
	now := time.Now()

	if err := p.store.EnsureDir(); err != nil {
		return "", &StorageError{Op: "prepare directory", Err: err}
	}

	name, err := p.store.Create(now, file.Name, file.Data)
	if err != nil {
		return "", &StorageError{Op: "write", Err: err}
	}

	artifactUploadBytes.WithLabelValues(p.variant).Observe(float64(file.Size()))
	p.log.Info().
		Str("file", name).
		Int("size_bytes", file.Size()).
		Msg("File stored")
	return name, nil
}

// recordInserted finishes an upload once the metadata row exists
func (p *pipeline) recordInserted(id, name string) {
	artifactsUploadedTotal.WithLabelValues(p.variant).Inc()
	p.log.Info().Str("id", id).Str("file", name).Msg("Artifact created")
}

// insertFailed logs the file left behind by a failed insert
func (p *pipeline) insertFailed(name string, err error) error {
	p.log.Error().
		Err(err).
		Str("orphaned_file", name).
		Msg("Metadata insert failed after file write; file left for the sweeper")
	return &PersistenceError{Op: "insert", Err: err}
}

// removeFile deletes a stored file. Failures are logged and never returned
// so that the metadata row can always be deleted.
func (p *pipeline) removeFile(id, name string) {
	err := p.store.Remove(name)
	switch {
	case err == nil:
		p.log.Info().Str("id", id).Str("file", name).Msg("File removed")
	case errors.Is(err, fs.ErrNotExist):
		p.log.Info().Str("id", id).Str("file", name).Msg("File already absent")
	default:
		p.log.Warn().Err(err).Str("id", id).Str("file", name).Msg("Failed to remove file")
	}
}

// recordDeleted finishes a deletion
func (p *pipeline) recordDeleted(id string) {
	artifactsDeletedTotal.WithLabelValues(p.variant).Inc()
	p.log.Info().Str("id", id).Msg("Artifact deleted")
}

// fileURL joins the variant URL base with a stored file name
func (p *pipeline) fileURL(name string) string {
	return p.urlBase + "/" + url.PathEscape(name)
}

func newID() string {
	return uuid.NewString()
}

func parseID(raw string) (string, error) {
	id, err := validation.ParseID(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return id, nil
}

func validationError(errs validation.Errors) error {
	return fmt.Errorf("%w: %w", ErrValidation, errs)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// compile-time check that the local store satisfies FileStore
var _ FileStore = (*storage.Local)(nil)

// deleteTimeout bounds the metadata calls of a delete that lost its client
const deleteTimeout = 10 * time.Second

// detach keeps a delete running after the request context is cancelled once
// the file is gone, so the row is not left pointing at nothing.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), deleteTimeout)
}
