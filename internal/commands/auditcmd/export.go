package auditcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const exportAuditMessageType = "newsroom.audit.export"

// EventLister exposes the newest-first event listing of the workflow engine.
type EventLister interface {
	ListEvents(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error)
}

// ExportAuditCommand writes an article's audit trail as JSON lines, newest first.
type ExportAuditCommand struct {
	ArticleID  uuid.UUID `json:"article_id"`
	MaxRecords *int      `json:"max_records,omitempty"`
}

// Type implements command.Message.
func (ExportAuditCommand) Type() string { return exportAuditMessageType }

// Validate ensures the command payload is well-formed.
func (m ExportAuditCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ArticleID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return validation.NewError("newsroom.audit.export.article_required", "article_id is required")
			}
			return nil
		})),
		validation.Field(&m.MaxRecords, validation.By(func(value any) error {
			if m.MaxRecords == nil {
				return nil
			}
			if *m.MaxRecords < 0 {
				return validation.NewError("newsroom.audit.export.max_records_invalid", "max_records must be zero or positive")
			}
			return nil
		})),
	)
}

// ExportAuditHandler streams audit events to a writer.
type ExportAuditHandler struct {
	events EventLister
	out    io.Writer
	logger interfaces.Logger
	inner  *commands.Handler[ExportAuditCommand]
}

// NewExportAuditHandler constructs a handler writing to out.
func NewExportAuditHandler(events EventLister, out io.Writer, logger interfaces.Logger, opts ...commands.HandlerOption[ExportAuditCommand]) *ExportAuditHandler {
	h := &ExportAuditHandler{
		events: events,
		out:    out,
		logger: commands.EnsureLogger(logger),
	}
	handlerOpts := []commands.HandlerOption[ExportAuditCommand]{
		commands.WithLogger[ExportAuditCommand](h.logger),
		commands.WithOperation[ExportAuditCommand]("audit.export"),
	}
	handlerOpts = append(handlerOpts, opts...)
	h.inner = commands.NewHandler[ExportAuditCommand](h.export, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[ExportAuditCommand].
func (h *ExportAuditHandler) Execute(ctx context.Context, msg ExportAuditCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *ExportAuditHandler) export(ctx context.Context, msg ExportAuditCommand) error {
	limit := 0
	if msg.MaxRecords != nil {
		limit = *msg.MaxRecords
	}
	events, err := h.events.ListEvents(ctx, msg.ArticleID, limit)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(h.out)
	for idx := range events {
		if err := encoder.Encode(events[idx]); err != nil {
			return fmt.Errorf("encode event %d: %w", idx, err)
		}
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "audit.export",
		"article_id": msg.ArticleID.String(),
		"exported":   len(events),
	}).Info("audit.command.export.completed")
	return nil
}

// CLIHandler satisfies command.CLICommand by returning the handler.
func (h *ExportAuditHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for audit export.
func (h *ExportAuditHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"audit", "export"},
		Group:       "audit",
		Description: "Export an article's workflow events as JSON lines",
	}
}
