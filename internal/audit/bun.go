package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunLog persists workflow events in the workflow_events table.
type BunLog struct {
	db *bun.DB
}

var _ interfaces.AuditLog = (*BunLog)(nil)

// NewBunLog constructs a Bun-backed audit log.
func NewBunLog(db *bun.DB) *BunLog {
	return &BunLog{db: db}
}

// CreateSchema creates the workflow_events table and its article index.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().Model((*eventModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("audit: create table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*eventModel)(nil)).
		Index("workflow_events_article_idx").
		Column("article_id", "seq").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("audit: create index: %w", err)
	}
	return nil
}

// Append inserts the event. Rows are never updated afterwards.
func (l *BunLog) Append(ctx context.Context, event domain.WorkflowEvent) error {
	if l.db == nil {
		return errors.New("audit: bun log requires a database")
	}
	model := modelFromEvent(event)
	if _, err := l.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return fmt.Errorf("audit: append event: %w", err)
	}
	return nil
}

// List returns up to limit events for the article, newest first. A
// non-positive limit returns every event.
func (l *BunLog) List(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error) {
	if l.db == nil {
		return nil, errors.New("audit: bun log requires a database")
	}
	var models []eventModel
	query := l.db.NewSelect().
		Model(&models).
		Where("article_id = ?", articleID).
		Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("audit: list events: %w", err)
	}
	out := make([]domain.WorkflowEvent, len(models))
	for i := range models {
		out[i] = models[i].toEvent()
	}
	return out, nil
}

type eventModel struct {
	bun.BaseModel `bun:"table:workflow_events,alias:we"`

	Seq        int64     `bun:"seq,pk,autoincrement"`
	EventID    uuid.UUID `bun:"event_id,type:uuid,notnull,unique"`
	ArticleID  uuid.UUID `bun:"article_id,type:uuid,notnull"`
	Action     string    `bun:"action,notnull"`
	FromStage  string    `bun:"from_stage"`
	ToStage    *string   `bun:"to_stage"`
	ActorID    string    `bun:"actor_id"`
	ActorRole  string    `bun:"actor_role"`
	ActorName  string    `bun:"actor_name"`
	ActorEmail string    `bun:"actor_email"`
	Accepted   bool      `bun:"accepted,notnull"`
	Reason     string    `bun:"reason"`
	At         time.Time `bun:"at,notnull"`
}

func modelFromEvent(event domain.WorkflowEvent) eventModel {
	model := eventModel{
		EventID:    event.ID,
		ArticleID:  event.ArticleID,
		Action:     event.Action,
		FromStage:  string(event.FromStage),
		ActorID:    event.Actor.ID,
		ActorRole:  string(event.Actor.Role),
		ActorName:  event.Actor.Name,
		ActorEmail: event.Actor.Email,
		Accepted:   event.Accepted,
		Reason:     event.Reason,
		At:         event.At.UTC(),
	}
	if event.ToStage != nil {
		to := string(*event.ToStage)
		model.ToStage = &to
	}
	return model
}

func (m eventModel) toEvent() domain.WorkflowEvent {
	event := domain.WorkflowEvent{
		ID:        m.EventID,
		ArticleID: m.ArticleID,
		Action:    m.Action,
		FromStage: domain.Stage(m.FromStage),
		Actor: domain.Actor{
			ID:    m.ActorID,
			Role:  domain.Role(m.ActorRole),
			Name:  m.ActorName,
			Email: m.ActorEmail,
		},
		Accepted: m.Accepted,
		Reason:   m.Reason,
		At:       m.At,
	}
	if m.ToStage != nil {
		event.ToStage = domain.StagePtr(domain.Stage(*m.ToStage))
	}
	return event
}
