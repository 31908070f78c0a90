package articles

import (
	"context"
	"errors"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrSlugExists indicates another article already uses the slug.
	ErrSlugExists = errors.New("articles: slug already exists")
	// ErrArticleRequired indicates a nil article was supplied.
	ErrArticleRequired = errors.New("articles: article required")
)

// Repository persists articles and implements the workflow ArticleStore.
type Repository interface {
	interfaces.ArticleStore

	Create(ctx context.Context, record *Article) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	List(ctx context.Context) ([]*Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListStates(ctx context.Context) ([]domain.ArticleWorkflowState, error)
}

func notFound(key string) error {
	return &interfaces.NotFoundError{Resource: "article", Key: key}
}
