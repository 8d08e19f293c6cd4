package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/siamt-api/internal/models"
	"github.com/siamt-api/internal/repository"
)

// MockNewsRepository is an in-memory implementation of NewsRepository
type MockNewsRepository struct {
	mu          sync.Mutex
	News        map[string]*models.News
	InsertError error
	ListError   error
	GetError    error
	DeleteError error
	clock       time.Time
}

// Verify interface compliance
var _ repository.NewsRepository = (*MockNewsRepository)(nil)

func NewMockNewsRepository() *MockNewsRepository {
	return &MockNewsRepository{
		News:  make(map[string]*models.News),
		clock: time.Date(2024, 10, 21, 20, 0, 0, 0, time.UTC),
	}
}

func (m *MockNewsRepository) Create(ctx context.Context, news *models.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	// Strictly increasing timestamps keep ordering deterministic in tests
	m.clock = m.clock.Add(time.Second)
	news.CreatedAt = m.clock
	stored := *news
	m.News[news.ID] = &stored
	return nil
}

func (m *MockNewsRepository) List(ctx context.Context) ([]*models.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	all := make([]*models.News, 0, len(m.News))
	for _, n := range m.News {
		cp := *n
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

func (m *MockNewsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	n, ok := m.News[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (m *MockNewsRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	_, ok := m.News[id]
	delete(m.News, id)
	return ok, nil
}

func (m *MockNewsRepository) FileNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	names := make([]string, 0, len(m.News))
	for _, n := range m.News {
		names = append(names, n.Image)
	}
	return names, nil
}

// MockConventionRepository is an in-memory implementation of ConventionRepository
type MockConventionRepository struct {
	mu          sync.Mutex
	Conventions map[string]*models.Convention
	InsertError error
	ListError   error
	GetError    error
	DeleteError error
}

// Verify interface compliance
var _ repository.ConventionRepository = (*MockConventionRepository)(nil)

func NewMockConventionRepository() *MockConventionRepository {
	return &MockConventionRepository{
		Conventions: make(map[string]*models.Convention),
	}
}

func (m *MockConventionRepository) Create(ctx context.Context, c *models.Convention) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertError != nil {
		return m.InsertError
	}
	stored := *c
	m.Conventions[c.ID] = &stored
	return nil
}

func (m *MockConventionRepository) List(ctx context.Context) ([]*models.Convention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	all := make([]*models.Convention, 0, len(m.Conventions))
	for _, c := range m.Conventions {
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Year != all[j].Year {
			return all[i].Year > all[j].Year
		}
		return all[i].Title < all[j].Title
	})
	return all, nil
}

func (m *MockConventionRepository) GetByID(ctx context.Context, id string) (*models.Convention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	c, ok := m.Conventions[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockConventionRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	_, ok := m.Conventions[id]
	delete(m.Conventions, id)
	return ok, nil
}

func (m *MockConventionRepository) FileNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	names := make([]string, 0, len(m.Conventions))
	for _, c := range m.Conventions {
		names = append(names, c.File)
	}
	return names, nil
}
