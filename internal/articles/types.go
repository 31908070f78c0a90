package articles

import (
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Publication statuses kept alongside the workflow stage.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// Article is the persisted article record. The workflow columns are written
// only through the workflow engine.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID             uuid.UUID    `bun:",pk,type:uuid"             json:"id"`
	Slug           string       `bun:"slug,notnull,unique"       json:"slug"`
	Title          string       `bun:"title,notnull"             json:"title"`
	Status         string       `bun:"status,notnull"            json:"status"`
	Stage          domain.Stage `bun:"stage,notnull"             json:"stage"`
	StageUpdatedAt time.Time    `bun:"stage_updated_at,notnull"  json:"stage_updated_at"`
	Locked         bool         `bun:"locked,notnull"            json:"locked"`
	CreatedBy      string       `bun:"created_by"                json:"created_by,omitempty"`
	CreatedAt      time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// WorkflowState projects the workflow columns of the article.
func (a *Article) WorkflowState() *domain.ArticleWorkflowState {
	if a == nil {
		return nil
	}
	return &domain.ArticleWorkflowState{
		ArticleID:      a.ID,
		Stage:          domain.NormalizeStage(string(a.Stage)),
		StageUpdatedAt: a.StageUpdatedAt,
		Locked:         a.Locked,
	}
}

// StatusForStage derives the publication status implied by a stage.
func StatusForStage(stage domain.Stage) string {
	switch stage {
	case domain.StagePublished:
		return StatusPublished
	case domain.StageScheduled:
		return StatusScheduled
	default:
		return StatusDraft
	}
}

func cloneArticle(src *Article) *Article {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
