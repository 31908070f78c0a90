package articles

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	articles  map[uuid.UUID]*Article
	slugIndex map[string]uuid.UUID
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory article repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		articles:  make(map[uuid.UUID]*Article),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied article.
func (m *MemoryRepository) Create(_ context.Context, record *Article) (*Article, error) {
	if record == nil {
		return nil, ErrArticleRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.slugIndex[record.Slug]; exists {
		return nil, ErrSlugExists
	}
	copied := cloneArticle(record)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	if _, exists := m.articles[copied.ID]; exists {
		return nil, ErrSlugExists
	}
	m.articles[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return cloneArticle(copied), nil
}

// GetByID retrieves an article by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.articles[id]
	if !ok {
		return nil, notFound(id.String())
	}
	return cloneArticle(rec), nil
}

// GetBySlug retrieves an article by slug.
func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, notFound(slug)
	}
	return cloneArticle(m.articles[id]), nil
}

// List returns all articles ordered by creation time.
func (m *MemoryRepository) List(_ context.Context) ([]*Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Article, 0, len(m.articles))
	for _, rec := range m.articles {
		out = append(out, cloneArticle(rec))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes the article and with it the workflow state.
func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.articles[id]
	if !ok {
		return notFound(id.String())
	}
	delete(m.slugIndex, rec.Slug)
	delete(m.articles, id)
	return nil
}

// GetState returns the workflow projection of the article.
func (m *MemoryRepository) GetState(_ context.Context, id uuid.UUID) (*domain.ArticleWorkflowState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.articles[id]
	if !ok {
		return nil, notFound(id.String())
	}
	return rec.WorkflowState(), nil
}

// CompareAndSetStage swaps the stage when it still equals expected and the
// article is unlocked.
func (m *MemoryRepository) CompareAndSetStage(_ context.Context, id uuid.UUID, expected, next domain.Stage, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.articles[id]
	if !ok {
		return false, notFound(id.String())
	}
	if rec.Locked || domain.NormalizeStage(string(rec.Stage)) != expected {
		return false, nil
	}
	rec.Stage = next
	rec.Status = StatusForStage(next)
	rec.StageUpdatedAt = at
	rec.UpdatedAt = at
	return true, nil
}

// SetLocked updates the lock flag.
func (m *MemoryRepository) SetLocked(_ context.Context, id uuid.UUID, locked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.articles[id]
	if !ok {
		return notFound(id.String())
	}
	rec.Locked = locked
	return nil
}

// ListStates returns the workflow projection of every article.
func (m *MemoryRepository) ListStates(ctx context.Context) ([]domain.ArticleWorkflowState, error) {
	records, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ArticleWorkflowState, 0, len(records))
	for _, rec := range records {
		out = append(out, *rec.WorkflowState())
	}
	return out, nil
}
