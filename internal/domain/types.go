package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor is the caller requesting a workflow change.
type Actor struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ArticleWorkflowState is the per-article workflow record.
type ArticleWorkflowState struct {
	ArticleID      uuid.UUID `json:"article_id"`
	Stage          Stage     `json:"stage"`
	StageUpdatedAt time.Time `json:"stage_updated_at"`
	Locked         bool      `json:"locked"`
}

// WorkflowEvent is an immutable audit record of a workflow request.
type WorkflowEvent struct {
	ID        uuid.UUID `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	Action    string    `json:"action"`
	FromStage Stage     `json:"from_stage,omitempty"`
	ToStage   *Stage    `json:"to_stage"`
	Actor     Actor     `json:"actor"`
	Accepted  bool      `json:"accepted"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// InternalComment is a free-text note attached to an article's workflow.
type InternalComment struct {
	ID        uuid.UUID `json:"id"`
	ArticleID uuid.UUID `json:"article_id"`
	Author    Actor     `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// StagePtr returns a pointer to a copy of the stage.
func StagePtr(stage Stage) *Stage {
	return &stage
}
