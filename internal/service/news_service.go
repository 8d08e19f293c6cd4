package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/repository"
	"github.com/siamt-api/internal/validation"
)

// newsService is the concrete implementation of NewsService
type newsService struct {
	repo      repository.NewsRepository
	validator *validation.Validator
	pipeline
}

func newNewsService(repo repository.NewsRepository, store FileStore, v *validation.Validator, urlBase string, log zerolog.Logger) *newsService {
	return &newsService{
		repo:      repo,
		validator: v,
		pipeline: pipeline{
			variant: VariantNews,
			store:   store,
			urlBase: urlBase,
			log:     log.With().Str("service", "news").Logger(),
		},
	}
}

// Create validates the form, writes the image and inserts the news row
func (s *newsService) Create(ctx context.Context, form models.NewsForm, file *models.FileUpload) (*models.News, error) {
	if errs := s.validator.ValidateNews(&form); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if file == nil {
		return nil, ErrMissingFile
	}

	name, err := s.storeFile(file)
	if err != nil {
		return nil, err
	}

	news := &models.News{
		ID:          newID(),
		Title:       form.Title,
		Description: form.Description,
		Author:      form.Author,
		Image:       name,
	}
	if err := s.repo.Create(ctx, news); err != nil {
		return nil, s.insertFailed(name, err)
	}

	s.recordInserted(news.ID, name)
	s.decorate(news)
	return news, nil
}

// List returns all news, newest first, each with its image URL
func (s *newsService) List(ctx context.Context) ([]*models.News, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	for _, n := range all {
		s.decorate(n)
	}
	return all, nil
}

// Get returns one news item by id
func (s *newsService) Get(ctx context.Context, rawID string) (*models.News, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	if news == nil {
		return nil, ErrNotFound
	}
	s.decorate(news)
	return news, nil
}

// Delete removes the image (best effort) and then the news row
func (s *newsService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "get", Err: err}
	}
	if news == nil {
		return ErrNotFound
	}

	s.removeFile(id, news.Image)

	ctx, cancel := detach(ctx)
	defer cancel()

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if !deleted {
		// Removed concurrently between lookup and delete
		return ErrNotFound
	}

	s.recordDeleted(id)
	return nil
}

func (s *newsService) decorate(n *models.News) {
	n.ImageURL = s.fileURL(n.Image)
}
