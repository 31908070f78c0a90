package comments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/identity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrBodyRequired indicates an empty comment body.
	ErrBodyRequired = errors.New("comments: body is required")
	// ErrArticleRequired indicates a comment without an article id.
	ErrArticleRequired = errors.New("comments: article id is required")
	// ErrAuthorRequired indicates a comment without a resolvable author.
	ErrAuthorRequired = errors.New("comments: author is required")
)

// Store keeps internal workflow comments. Comments are independent of the
// article's stage and lock.
type Store interface {
	Add(ctx context.Context, comment domain.InternalComment) (*domain.InternalComment, error)
	List(ctx context.Context, articleID uuid.UUID) ([]domain.InternalComment, error)
}

// Service validates and stamps comments before storing them.
type Service struct {
	store Store
	now   func() time.Time
	newID func() uuid.UUID
}

// ServiceOption configures the comment service.
type ServiceOption func(*Service)

// WithClock overrides the clock used to stamp comments.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewService constructs a comment service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add records a comment authored by actor.
func (s *Service) Add(ctx context.Context, articleID uuid.UUID, author domain.Actor, body string) (*domain.InternalComment, error) {
	comment, _, err := s.AddWithKey(ctx, articleID, author, body, "")
	return comment, err
}

// AddWithKey records a comment whose id is derived from the article, the
// author and a client supplied key. Repeating a key returns the stored
// comment and created=false. A blank key behaves like Add.
func (s *Service) AddWithKey(ctx context.Context, articleID uuid.UUID, author domain.Actor, body string, key string) (*domain.InternalComment, bool, error) {
	if articleID == uuid.Nil {
		return nil, false, ErrArticleRequired
	}
	if strings.TrimSpace(author.ID) == "" || !author.Role.IsValid() {
		return nil, false, ErrAuthorRequired
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, false, ErrBodyRequired
	}

	id := s.newID()
	if key = strings.TrimSpace(key); key != "" {
		id = identity.CommentUUID(articleID, author.ID, key)
		existing, err := s.store.List(ctx, articleID)
		if err != nil {
			return nil, false, err
		}
		for i := range existing {
			if existing[i].ID == id {
				return &existing[i], false, nil
			}
		}
	}

	comment, err := s.store.Add(ctx, domain.InternalComment{
		ID:        id,
		ArticleID: articleID,
		Author:    author,
		Body:      body,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, false, err
	}
	return comment, true, nil
}

// List returns the article's comments oldest first.
func (s *Service) List(ctx context.Context, articleID uuid.UUID) ([]domain.InternalComment, error) {
	return s.store.List(ctx, articleID)
}

// MemoryStore keeps comments in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	comments map[uuid.UUID][]domain.InternalComment
}

// NewMemoryStore constructs an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[uuid.UUID][]domain.InternalComment)}
}

func (m *MemoryStore) Add(_ context.Context, comment domain.InternalComment) (*domain.InternalComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[comment.ArticleID] = append(m.comments[comment.ArticleID], comment)
	copied := comment
	return &copied, nil
}

func (m *MemoryStore) List(_ context.Context, articleID uuid.UUID) ([]domain.InternalComment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.comments[articleID]
	out := make([]domain.InternalComment, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// BunStore persists comments in the workflow_comments table.
type BunStore struct {
	db *bun.DB
}

// NewBunStore constructs a Bun-backed comment store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// CreateSchema creates the workflow_comments table when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*commentModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("comments: create table: %w", err)
	}
	return nil
}

func (s *BunStore) Add(ctx context.Context, comment domain.InternalComment) (*domain.InternalComment, error) {
	model := commentModel{
		ID:          comment.ID,
		ArticleID:   comment.ArticleID,
		AuthorID:    comment.Author.ID,
		AuthorRole:  string(comment.Author.Role),
		AuthorName:  comment.Author.Name,
		AuthorEmail: comment.Author.Email,
		Body:        comment.Body,
		CreatedAt:   comment.CreatedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, fmt.Errorf("comments: insert: %w", err)
	}
	out := model.toComment()
	return &out, nil
}

func (s *BunStore) List(ctx context.Context, articleID uuid.UUID) ([]domain.InternalComment, error) {
	var models []commentModel
	if err := s.db.NewSelect().
		Model(&models).
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("comments: list: %w", err)
	}
	out := make([]domain.InternalComment, len(models))
	for i := range models {
		out[i] = models[i].toComment()
	}
	return out, nil
}

type commentModel struct {
	bun.BaseModel `bun:"table:workflow_comments,alias:wc"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	ArticleID   uuid.UUID `bun:"article_id,type:uuid,notnull"`
	AuthorID    string    `bun:"author_id"`
	AuthorRole  string    `bun:"author_role"`
	AuthorName  string    `bun:"author_name"`
	AuthorEmail string    `bun:"author_email"`
	Body        string    `bun:"body,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (m commentModel) toComment() domain.InternalComment {
	return domain.InternalComment{
		ID:        m.ID,
		ArticleID: m.ArticleID,
		Author: domain.Actor{
			ID:    m.AuthorID,
			Role:  domain.Role(m.AuthorRole),
			Name:  m.AuthorName,
			Email: m.AuthorEmail,
		},
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
