package mocks

import (
	"context"
	"sync"

	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/service"
)

// MockNewsService is a mock implementation of NewsService
type MockNewsService struct {
	CreateFunc func(ctx context.Context, form models.NewsForm, file *models.FileUpload) (*models.News, error)
	ListFunc   func(ctx context.Context) ([]*models.News, error)
	GetFunc    func(ctx context.Context, id string) (*models.News, error)
	DeleteFunc func(ctx context.Context, id string) error

	mu         sync.Mutex
	Forms      []models.NewsForm
	DeletedIDs []string
}

// Verify interface compliance
var _ service.NewsService = (*MockNewsService)(nil)

func NewMockNewsService() *MockNewsService {
	return &MockNewsService{}
}

func (m *MockNewsService) Create(ctx context.Context, form models.NewsForm, file *models.FileUpload) (*models.News, error) {
	m.mu.Lock()
	m.Forms = append(m.Forms, form)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, form, file)
	}
	return &models.News{ID: "mock-id", Title: form.Title, Description: form.Description, Author: form.Author}, nil
}

func (m *MockNewsService) List(ctx context.Context) ([]*models.News, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.News{}, nil
}

func (m *MockNewsService) Get(ctx context.Context, id string) (*models.News, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *MockNewsService) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeletedIDs = append(m.DeletedIDs, id)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockConventionService is a mock implementation of ConventionService
type MockConventionService struct {
	CreateFunc   func(ctx context.Context, form models.ConventionForm, file *models.FileUpload) (*models.Convention, error)
	ListFunc     func(ctx context.Context) ([]*models.Convention, error)
	DeleteFunc   func(ctx context.Context, id string) error
	DownloadFunc func(ctx context.Context, fileName string) (*service.Download, error)

	mu    sync.Mutex
	Forms []models.ConventionForm
	// Requested holds the raw file names passed to Download
	Requested []string
}

// Verify interface compliance
var _ service.ConventionService = (*MockConventionService)(nil)

func NewMockConventionService() *MockConventionService {
	return &MockConventionService{}
}

func (m *MockConventionService) Create(ctx context.Context, form models.ConventionForm, file *models.FileUpload) (*models.Convention, error) {
	m.mu.Lock()
	m.Forms = append(m.Forms, form)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, form, file)
	}
	return &models.Convention{ID: "mock-id", Title: form.Title, Year: form.Year}, nil
}

func (m *MockConventionService) List(ctx context.Context) ([]*models.Convention, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.Convention{}, nil
}

func (m *MockConventionService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockConventionService) Download(ctx context.Context, fileName string) (*service.Download, error) {
	m.mu.Lock()
	m.Requested = append(m.Requested, fileName)
	m.mu.Unlock()
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, fileName)
	}
	return nil, service.ErrNotFound
}

// MockSweepService is a mock implementation of SweepService
type MockSweepService struct {
	Result   *service.SweepResult
	Err      error
	Started  bool
	Stopped  bool
	RunCount int
}

// Verify interface compliance
var _ service.SweepService = (*MockSweepService)(nil)

func NewMockSweepService() *MockSweepService {
	return &MockSweepService{Result: &service.SweepResult{Removed: []string{}}}
}

func (m *MockSweepService) Start(ctx context.Context) {
	m.Started = true
}

func (m *MockSweepService) Stop() {
	m.Stopped = true
}

func (m *MockSweepService) SweepOnce(ctx context.Context) (*service.SweepResult, error) {
	m.RunCount++
	return m.Result, m.Err
}
