package workflowcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const requestTransitionMessageType = "newsroom.workflow.transition"

// Engine is the subset of the workflow engine the command handlers drive.
type Engine interface {
	RequestTransition(ctx context.Context, articleID uuid.UUID, action string, actor *domain.Actor) (*workflow.TransitionResult, error)
	SetLocked(ctx context.Context, articleID uuid.UUID, locked bool, actor *domain.Actor) (*domain.ArticleWorkflowState, error)
}

// RequestTransitionCommand asks the engine to apply a named action. Action
// and role checks belong to the engine so that rejections are audited.
type RequestTransitionCommand struct {
	ArticleID uuid.UUID `json:"article_id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	ActorName string    `json:"actor_name,omitempty"`
}

// Type implements command.Message.
func (RequestTransitionCommand) Type() string { return requestTransitionMessageType }

// Validate ensures the command payload is well-formed.
func (m RequestTransitionCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ArticleID, validation.By(requireUUID)),
		validation.Field(&m.Action, validation.Length(0, 64)),
		validation.Field(&m.ActorID, validation.Length(0, 128)),
	)
}

// Actor builds the workflow actor carried by the command. Unknown or blank
// roles are passed through so the engine can reject them as Unauthorized.
func (m RequestTransitionCommand) Actor() *domain.Actor {
	return actorFrom(m.ActorID, m.ActorRole, m.ActorName)
}

// LogFields implements commands.FieldsMessage.
func (m RequestTransitionCommand) LogFields() map[string]any {
	return map[string]any{
		"article_id": m.ArticleID.String(),
		"action":     strings.TrimSpace(m.Action),
		"actor_id":   strings.TrimSpace(m.ActorID),
		"actor_role": strings.TrimSpace(m.ActorRole),
	}
}

// TransitionHandler executes RequestTransitionCommand messages.
type TransitionHandler struct {
	engine Engine
	logger interfaces.Logger
	inner  *commands.Handler[RequestTransitionCommand]
}

// NewTransitionHandler constructs a handler bound to the engine.
func NewTransitionHandler(engine Engine, logger interfaces.Logger, opts ...commands.HandlerOption[RequestTransitionCommand]) *TransitionHandler {
	h := &TransitionHandler{
		engine: engine,
		logger: commands.EnsureLogger(logger),
	}
	exec := func(ctx context.Context, msg RequestTransitionCommand) error {
		_, err := h.transition(ctx, msg)
		return err
	}

	handlerOpts := []commands.HandlerOption[RequestTransitionCommand]{
		commands.WithLogger[RequestTransitionCommand](h.logger),
		commands.WithOperation[RequestTransitionCommand]("workflow.transition"),
	}
	handlerOpts = append(handlerOpts, opts...)
	h.inner = commands.NewHandler[RequestTransitionCommand](exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[RequestTransitionCommand].
func (h *TransitionHandler) Execute(ctx context.Context, msg RequestTransitionCommand) error {
	return h.inner.Execute(ctx, msg)
}

// Transition runs the command and returns the engine result. Rejections
// return the result alongside the error.
func (h *TransitionHandler) Transition(ctx context.Context, msg RequestTransitionCommand) (*workflow.TransitionResult, error) {
	return commands.Run(ctx, h.inner, msg, h.transition)
}

func (h *TransitionHandler) transition(ctx context.Context, msg RequestTransitionCommand) (*workflow.TransitionResult, error) {
	result, err := h.engine.RequestTransition(ctx, msg.ArticleID, strings.TrimSpace(msg.Action), msg.Actor())
	if err != nil {
		return result, err
	}
	logging.WithArticle(h.logger, msg.ArticleID.String(), msg.ActorID).
		Info("workflow.command.transition.accepted", "action", msg.Action, "stage", result.NewStage)
	return result, nil
}

// CLIHandler exposes the handler to CLI integrations.
func (h *TransitionHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for workflow transitions.
func (h *TransitionHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"workflow", "transition"},
		Group:       "workflow",
		Description: "Request a workflow transition for an article",
	}
}

func requireUUID(value any) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("newsroom.workflow.article_id_required", "article_id is required")
	}
	return nil
}

func actorFrom(id, role, name string) *domain.Actor {
	actor := &domain.Actor{
		ID:   strings.TrimSpace(id),
		Role: domain.Role(strings.TrimSpace(role)),
		Name: strings.TrimSpace(name),
	}
	if parsed, ok := domain.ParseRole(role); ok {
		actor.Role = parsed
	}
	return actor
}
