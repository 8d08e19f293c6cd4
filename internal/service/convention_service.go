package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/repository"
	"github.com/siamt-api/internal/storage"
	"github.com/siamt-api/internal/validation"
)

// conventionService is the concrete implementation of ConventionService
type conventionService struct {
	repo      repository.ConventionRepository
	validator *validation.Validator
	pipeline
}

func newConventionService(repo repository.ConventionRepository, store FileStore, v *validation.Validator, urlBase string, log zerolog.Logger) *conventionService {
	return &conventionService{
		repo:      repo,
		validator: v,
		pipeline: pipeline{
			variant: VariantConvention,
			store:   store,
			urlBase: urlBase,
			log:     log.With().Str("service", "convention").Logger(),
		},
	}
}

// Create validates the form, writes the document and inserts the row
func (s *conventionService) Create(ctx context.Context, form models.ConventionForm, file *models.FileUpload) (*models.Convention, error) {
	if errs := s.validator.ValidateConvention(&form); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if file == nil {
		return nil, ErrMissingFile
	}

	name, err := s.storeFile(file)
	if err != nil {
		return nil, err
	}

	convention := &models.Convention{
		ID:    newID(),
		Title: form.Title,
		Year:  form.Year,
		File:  name,
	}
	if err := s.repo.Create(ctx, convention); err != nil {
		return nil, s.insertFailed(name, err)
	}

	s.recordInserted(convention.ID, name)
	s.decorate(convention)
	return convention, nil
}

// List returns all conventions by year descending, each with a download URL
func (s *conventionService) List(ctx context.Context) ([]*models.Convention, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	for _, c := range all {
		s.decorate(c)
	}
	return all, nil
}

// Delete removes the document (best effort) and then the row
func (s *conventionService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	convention, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "get", Err: err}
	}
	if convention == nil {
		return ErrNotFound
	}

	s.removeFile(id, convention.File)

	ctx, cancel := detach(ctx)
	defer cancel()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if !deleted {
		return ErrNotFound
	}

	s.recordDeleted(id)
	return nil
}

// Download opens a stored document for streaming. The requested name is
// sanitized before it touches the filesystem because it arrives from the
// client as a path segment.
func (s *conventionService) Download(ctx context.Context, fileName string) (*Download, error) {
	name := storage.SanitizeFileName(fileName)
	if name == "" {
		return nil, ErrInvalidFileName
	}

	f, info, err := s.store.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, &StorageError{Op: "open", Err: err}
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, &StorageError{Op: "detect content type", Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, &StorageError{Op: "rewind", Err: err}
	}

	s.log.Debug().Str("file", name).Str("content_type", mtype.String()).Msg("Serving download")

	return &Download{
		ReadSeekCloser: f,
		FileName:       storage.OriginalName(name),
		Size:           info.Size(),
		ContentType:    mtype.String(),
		ModTime:        info.ModTime(),
	}, nil
}

func (s *conventionService) decorate(c *models.Convention) {
	c.DownloadURL = s.fileURL(c.File)
}
