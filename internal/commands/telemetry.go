package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
)

// TelemetryStatus captures the result category for command execution.
type TelemetryStatus string

const (
	// TelemetryStatusSuccess indicates the command completed without errors.
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusFailed indicates the command execution returned an error.
	TelemetryStatusFailed TelemetryStatus = "failed"
	// TelemetryStatusContextError indicates execution failed due to context cancellation or deadline.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a command execution outcome provided to telemetry callbacks.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs command outcomes with their duration. Failures that
// carry a go-errors category add the category and text code; caller-side
// rejections such as a locked article or a missing role log at warn level.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if info.Fields != nil {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			var categorized *goerrors.Error
			if !errors.As(info.Error, &categorized) {
				entry.Error("command.execute.failed", append(args, "error", info.Error)...)
				return
			}
			args = append(args,
				"category", string(categorized.Category),
				"text_code", categorized.TextCode,
				"error", info.Error,
			)
			if isRejection(categorized.Category) {
				entry.Warn("command.execute.rejected", args...)
				return
			}
			entry.Error("command.execute.failed", args...)
		}
	}
}

func isRejection(category goerrors.Category) bool {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryNotFound,
		goerrors.CategoryAuth, goerrors.CategoryAuthz, goerrors.CategoryConflict:
		return true
	default:
		return false
	}
}
