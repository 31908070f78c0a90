package newsroom

import (
	"context"
	"net/http"

	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/comments"
	"github.com/goliatone/go-newsroom/internal/di"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/google/uuid"
)

// Stage exports the workflow stage type.
type Stage = domain.Stage

// Role exports the newsroom role type.
type Role = domain.Role

// Actor exports the caller identity carried into workflow operations.
type Actor = domain.Actor

// ArticleWorkflowState exports the per-article workflow record.
type ArticleWorkflowState = domain.ArticleWorkflowState

// WorkflowEvent exports the audit event DTO.
type WorkflowEvent = domain.WorkflowEvent

// TransitionResult exports the transition outcome.
type TransitionResult = workflow.TransitionResult

// Reason exports the workflow failure kind.
type Reason = workflow.Reason

// Rule exports a single transition rule.
type Rule = workflow.Rule

// ArticleService exports the article service contract.
type ArticleService = articles.Service

// CreateArticleRequest exports the article creation request.
type CreateArticleRequest = articles.CreateArticleRequest

// CommentService exports the internal comment service.
type CommentService = *comments.Service

// Workflow failure kinds.
const (
	ReasonNotFound          = workflow.ReasonNotFound
	ReasonUnknownAction     = workflow.ReasonUnknownAction
	ReasonUnauthorized      = workflow.ReasonUnauthorized
	ReasonForbidden         = workflow.ReasonForbidden
	ReasonLocked            = workflow.ReasonLocked
	ReasonInvalidTransition = workflow.ReasonInvalidTransition
	ReasonStoreUnavailable  = workflow.ReasonStoreUnavailable
	ReasonAuditFailure      = workflow.ReasonAuditFailure
)

// Sentinel workflow errors, matched with errors.Is.
var (
	ErrNotFound          = workflow.ErrNotFound
	ErrUnknownAction     = workflow.ErrUnknownAction
	ErrUnauthorized      = workflow.ErrUnauthorized
	ErrForbidden         = workflow.ErrForbidden
	ErrLocked            = workflow.ErrLocked
	ErrInvalidTransition = workflow.ErrInvalidTransition
	ErrStoreUnavailable  = workflow.ErrStoreUnavailable
	ErrAuditFailure      = workflow.ErrAuditFailure
)

// ReasonOf returns the workflow failure kind carried by err, or "".
func ReasonOf(err error) Reason {
	return workflow.ReasonOf(err)
}

// Module represents the top level newsroom runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a newsroom module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases connections opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Articles returns the configured article service.
func (m *Module) Articles() ArticleService {
	return m.container.ArticleService()
}

// Comments returns the comment service, nil when comments are disabled.
func (m *Module) Comments() CommentService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CommentService()
}

// RequestTransition applies action to the article on behalf of actor.
func (m *Module) RequestTransition(ctx context.Context, articleID uuid.UUID, action string, actor *Actor) (*TransitionResult, error) {
	return m.container.Engine().RequestTransition(ctx, articleID, action, actor)
}

// SetLocked changes the article lock flag. Only admin and founder may do so.
func (m *Module) SetLocked(ctx context.Context, articleID uuid.UUID, locked bool, actor *Actor) (*ArticleWorkflowState, error) {
	return m.container.Engine().SetLocked(ctx, articleID, locked, actor)
}

// GetState returns the current workflow state of the article.
func (m *Module) GetState(ctx context.Context, articleID uuid.UUID) (*ArticleWorkflowState, error) {
	return m.container.Engine().GetState(ctx, articleID)
}

// ListEvents returns the article's audit events, newest first.
func (m *Module) ListEvents(ctx context.Context, articleID uuid.UUID, limit int) ([]WorkflowEvent, error) {
	return m.container.Engine().ListEvents(ctx, articleID, limit)
}

// AvailableActions lists the rules the actor could apply to the article now.
func (m *Module) AvailableActions(ctx context.Context, articleID uuid.UUID, actor *Actor, view string) ([]Rule, error) {
	return m.container.Engine().AvailableActions(ctx, articleID, actor, view)
}

// Reconcile reports articles whose stage has no matching accepted audit event.
func (m *Module) Reconcile(ctx context.Context) (*workflow.ReconcileReport, error) {
	return m.container.Reconciler().Run(ctx)
}

// HTTPHandler returns the admin API handler.
func (m *Module) HTTPHandler() (http.Handler, error) {
	return m.container.HTTPHandler()
}
