package articles

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists articles with go-repository-bun and performs the
// workflow compare-and-set with a conditional UPDATE.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Article]
	now  func() time.Time
}

var _ Repository = (*BunRepository)(nil)

// NewArticleRepository builds the generic repository for articles keyed by slug.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord: func() *Article { return &Article{} },
		GetID: func(a *Article) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Article, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(a *Article) string {
			return a.Slug
		},
	})
}

// NewBunRepository constructs a Bun-backed article repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:   db,
		repo: NewArticleRepository(db),
		now:  time.Now,
	}
}

// CreateSchema creates the articles table when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*Article)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("articles: create table: %w", err)
	}
	return nil
}

func (r *BunRepository) Create(ctx context.Context, record *Article) (*Article, error) {
	if record == nil {
		return nil, ErrArticleRequired
	}
	if _, err := r.repo.GetByIdentifier(ctx, record.Slug); err == nil {
		return nil, ErrSlugExists
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, record.Slug)
	}
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, record.Slug)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return result, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*Article, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, slug)
	}
	return result, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Article, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.created_at ASC").OrderExpr("?TableAlias.slug ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "")
	}
	return records, nil
}

// Delete removes the article row and with it the workflow state.
func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	if err := r.repo.Delete(ctx, &Article{ID: id}); err != nil {
		return mapRepositoryError(err, id.String())
	}
	return nil
}

func (r *BunRepository) GetState(ctx context.Context, id uuid.UUID) (*domain.ArticleWorkflowState, error) {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.WorkflowState(), nil
}

// CompareAndSetStage updates the stage only when the row still holds the
// expected stage and is unlocked. A blank stage column counts as Draft. A
// zero row count means a lost race, a lock or a missing article; the latter
// is reported as not found.
func (r *BunRepository) CompareAndSetStage(ctx context.Context, id uuid.UUID, expected, next domain.Stage, at time.Time) (bool, error) {
	query := r.db.NewUpdate().
		Table("articles").
		Set("stage = ?", next).
		Set("status = ?", StatusForStage(next)).
		Set("stage_updated_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("locked = ?", false)
	if expected == domain.StageDraft {
		query = query.Where("(stage = ? OR stage = '' OR stage IS NULL)", expected)
	} else {
		query = query.Where("stage = ?", expected)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("articles: compare and set stage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("articles: compare and set stage: %w", err)
	}
	if affected == 1 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *BunRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	res, err := r.db.NewUpdate().
		Table("articles").
		Set("locked = ?", locked).
		Set("updated_at = ?", r.now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("articles: set locked: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("articles: set locked: %w", err)
	}
	if affected == 0 {
		return notFound(id.String())
	}
	return nil
}

func (r *BunRepository) ListStates(ctx context.Context) ([]domain.ArticleWorkflowState, error) {
	var records []Article
	if err := r.db.NewSelect().
		Model(&records).
		Column("id", "stage", "stage_updated_at", "locked").
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("articles: list states: %w", err)
	}
	out := make([]domain.ArticleWorkflowState, 0, len(records))
	for i := range records {
		out = append(out, *records[i].WorkflowState())
	}
	return out, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return notFound(key)
	}
	return fmt.Errorf("article repository error: %w", err)
}
