package auditcmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-newsroom/internal/commands"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
)

const reconcileMessageType = "newsroom.audit.reconcile"

// Reconciler runs a drift check between article stages and the audit log.
type Reconciler interface {
	Run(ctx context.Context) (*workflow.ReconcileReport, error)
}

// ReconcileObserver receives the outcome of every reconciliation run.
type ReconcileObserver interface {
	ObserveReconcile(drifts int, err error)
}

// ReconcileCommand triggers a reconciliation pass. It carries no payload.
type ReconcileCommand struct{}

// Type implements command.Message.
func (ReconcileCommand) Type() string { return reconcileMessageType }

// Validate satisfies command.Message.
func (ReconcileCommand) Validate() error {
	return validation.ValidateStruct(&ReconcileCommand{})
}

type reconcileHandlerConfig struct {
	cronConfig  command.HandlerConfig
	observer    ReconcileObserver
	handlerOpts []commands.HandlerOption[ReconcileCommand]
}

// ReconcileHandlerOption customises the reconcile handler.
type ReconcileHandlerOption func(*reconcileHandlerConfig)

// ReconcileWithCronExpression overrides the cron expression for the handler.
func ReconcileWithCronExpression(expression string) ReconcileHandlerOption {
	return func(cfg *reconcileHandlerConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// ReconcileWithTimeout overrides the default execution timeout.
func ReconcileWithTimeout(timeout time.Duration) ReconcileHandlerOption {
	return ReconcileWithHandlerOptions(commands.WithTimeout[ReconcileCommand](timeout))
}

// ReconcileWithObserver reports run outcomes, typically to metrics.
func ReconcileWithObserver(observer ReconcileObserver) ReconcileHandlerOption {
	return func(cfg *reconcileHandlerConfig) {
		cfg.observer = observer
	}
}

// ReconcileWithHandlerOptions forwards options to the shared command handler,
// such as commands.WithTelemetry.
func ReconcileWithHandlerOptions(opts ...commands.HandlerOption[ReconcileCommand]) ReconcileHandlerOption {
	return func(cfg *reconcileHandlerConfig) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// ReconcileHandler runs the reconciler and logs any drift found.
type ReconcileHandler struct {
	reconciler Reconciler
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	observer   ReconcileObserver
	inner      *commands.Handler[ReconcileCommand]
}

// NewReconcileHandler constructs a reconcile handler.
func NewReconcileHandler(reconciler Reconciler, logger interfaces.Logger, opts ...ReconcileHandlerOption) *ReconcileHandler {
	cfg := reconcileHandlerConfig{
		cronConfig: command.HandlerConfig{
			Expression: "@every 15m",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	h := &ReconcileHandler{
		reconciler: reconciler,
		logger:     commands.EnsureLogger(logger),
		cronConfig: cfg.cronConfig,
		observer:   cfg.observer,
	}
	exec := func(ctx context.Context, msg ReconcileCommand) error {
		_, err := h.reconcile(ctx, msg)
		return err
	}

	handlerOpts := []commands.HandlerOption[ReconcileCommand]{
		commands.WithLogger[ReconcileCommand](h.logger),
		commands.WithOperation[ReconcileCommand]("audit.reconcile"),
	}
	handlerOpts = append(handlerOpts, cfg.handlerOpts...)
	h.inner = commands.NewHandler[ReconcileCommand](exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[ReconcileCommand].
func (h *ReconcileHandler) Execute(ctx context.Context, msg ReconcileCommand) error {
	return h.inner.Execute(ctx, msg)
}

// Reconcile runs the command and returns the report.
func (h *ReconcileHandler) Reconcile(ctx context.Context, msg ReconcileCommand) (*workflow.ReconcileReport, error) {
	return commands.Run(ctx, h.inner, msg, h.reconcile)
}

func (h *ReconcileHandler) reconcile(ctx context.Context, _ ReconcileCommand) (*workflow.ReconcileReport, error) {
	report, err := h.reconciler.Run(ctx)
	drifts := 0
	if report != nil {
		drifts = len(report.Drifts)
	}
	if h.observer != nil {
		h.observer.ObserveReconcile(drifts, err)
	}
	if err != nil {
		return report, err
	}

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "audit.reconcile",
		"checked":   report.Checked,
		"drifts":    drifts,
	})
	if drifts > 0 {
		logger.Warn("audit.command.reconcile.drift_detected")
	} else {
		logger.Info("audit.command.reconcile.completed")
	}
	return report, nil
}

// CronHandler satisfies command.CronCommand by binding execution to a cron runner.
func (h *ReconcileHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), ReconcileCommand{})
	}
}

// CronOptions satisfies command.CronCommand by returning the configured cron metadata.
func (h *ReconcileHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the reconcile handler to CLI integrations.
func (h *ReconcileHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for reconciliation.
func (h *ReconcileHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"audit", "reconcile"},
		Group:       "audit",
		Description: "Report articles whose stage is not backed by an audit event",
	}
}
