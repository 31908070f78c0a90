package workflowcmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const setLockMessageType = "newsroom.workflow.lock"

// SetLockCommand locks or unlocks an article's workflow.
type SetLockCommand struct {
	ArticleID uuid.UUID `json:"article_id"`
	Locked    bool      `json:"locked"`
	ActorID   string    `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	ActorName string    `json:"actor_name,omitempty"`
}

// Type implements command.Message.
func (SetLockCommand) Type() string { return setLockMessageType }

// Validate ensures the command payload is well-formed.
func (m SetLockCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ArticleID, validation.By(requireUUID)),
		validation.Field(&m.ActorID, validation.Length(0, 128)),
	)
}

// LogFields implements commands.FieldsMessage.
func (m SetLockCommand) LogFields() map[string]any {
	return map[string]any{
		"article_id": m.ArticleID.String(),
		"locked":     m.Locked,
		"actor_id":   strings.TrimSpace(m.ActorID),
		"actor_role": strings.TrimSpace(m.ActorRole),
	}
}

// LockHandler executes SetLockCommand messages.
type LockHandler struct {
	engine Engine
	logger interfaces.Logger
	inner  *commands.Handler[SetLockCommand]
}

// NewLockHandler constructs a handler bound to the engine.
func NewLockHandler(engine Engine, logger interfaces.Logger, opts ...commands.HandlerOption[SetLockCommand]) *LockHandler {
	h := &LockHandler{
		engine: engine,
		logger: commands.EnsureLogger(logger),
	}
	exec := func(ctx context.Context, msg SetLockCommand) error {
		_, err := h.setLocked(ctx, msg)
		return err
	}

	handlerOpts := []commands.HandlerOption[SetLockCommand]{
		commands.WithLogger[SetLockCommand](h.logger),
		commands.WithOperation[SetLockCommand]("workflow.lock"),
	}
	handlerOpts = append(handlerOpts, opts...)
	h.inner = commands.NewHandler[SetLockCommand](exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[SetLockCommand].
func (h *LockHandler) Execute(ctx context.Context, msg SetLockCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SetLocked runs the command and returns the resulting workflow state.
func (h *LockHandler) SetLocked(ctx context.Context, msg SetLockCommand) (*domain.ArticleWorkflowState, error) {
	return commands.Run(ctx, h.inner, msg, h.setLocked)
}

func (h *LockHandler) setLocked(ctx context.Context, msg SetLockCommand) (*domain.ArticleWorkflowState, error) {
	state, err := h.engine.SetLocked(ctx, msg.ArticleID, msg.Locked, actorFrom(msg.ActorID, msg.ActorRole, msg.ActorName))
	if err != nil {
		return nil, err
	}
	logging.WithArticle(h.logger, msg.ArticleID.String(), msg.ActorID).
		Info("workflow.command.lock.changed", "locked", state.Locked)
	return state, nil
}

// CLIHandler exposes the handler to CLI integrations.
func (h *LockHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for lock changes.
func (h *LockHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"workflow", "lock"},
		Group:       "workflow",
		Description: "Lock or unlock an article's workflow",
	}
}
