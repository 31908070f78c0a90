package articles

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/identity"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// ActionCreate labels the audit event written when an article is created.
const ActionCreate = "create"

// Service exposes article management use-cases. Workflow changes go through
// the workflow engine, never through this service.
type Service interface {
	Create(ctx context.Context, req CreateArticleRequest) (*Article, error)
	Get(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context) ([]*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateArticleRequest captures the information required to create an article.
// Slug defaults to the normalized title when blank.
type CreateArticleRequest struct {
	Title     string
	Slug      string
	CreatedBy domain.Actor
}

var (
	ErrTitleRequired = errors.New("articles: title is required")
	ErrSlugInvalid   = errors.New("articles: slug contains invalid characters")
)

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithAuditLog records a creation event for every new article.
func WithAuditLog(log interfaces.AuditLog) ServiceOption {
	return func(s *service) {
		s.audit = log
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	articles Repository
	audit    interfaces.AuditLog
	now      func() time.Time
	newID    func() uuid.UUID
	logger   interfaces.Logger
}

// NewService constructs an article service.
func NewService(articles Repository, opts ...ServiceOption) Service {
	s := &service{
		articles: articles,
		now:      time.Now,
		newID:    uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new article with its workflow state materialized as
// Draft and unlocked.
func (s *service) Create(ctx context.Context, req CreateArticleRequest) (*Article, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	source := strings.TrimSpace(req.Slug)
	if source == "" {
		source = title
	}
	normalized, err := slug.Normalize(source)
	if err != nil || normalized == "" || !slug.IsValid(normalized) {
		return nil, ErrSlugInvalid
	}

	now := s.now()
	record := &Article{
		ID:             identity.ArticleUUID(normalized),
		Slug:           normalized,
		Title:          title,
		Status:         StatusForStage(domain.StageDraft),
		Stage:          domain.StageDraft,
		StageUpdatedAt: now,
		Locked:         false,
		CreatedBy:      req.CreatedBy.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.articles.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		event := domain.WorkflowEvent{
			ID:        s.newID(),
			ArticleID: created.ID,
			Action:    ActionCreate,
			ToStage:   domain.StagePtr(domain.StageDraft),
			Actor:     req.CreatedBy,
			Accepted:  true,
			At:        now,
		}
		if err := s.audit.Append(ctx, event); err != nil {
			s.logger.Error("articles.create.audit_failed", "article_id", created.ID, "error", err)
		}
	}

	s.logger.Info("articles.created", "article_id", created.ID, "slug", created.Slug)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, value string) (*Article, error) {
	return s.articles.GetBySlug(ctx, strings.TrimSpace(value))
}

func (s *service) List(ctx context.Context) ([]*Article, error) {
	return s.articles.List(ctx)
}

// Delete removes the article. Its audit history is kept.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("articles.deleted", "article_id", id)
	return nil
}
