package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-newsroom/internal/articles"
	"github.com/goliatone/go-newsroom/internal/comments"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error    string                     `json:"error"`
	Message  string                     `json:"message,omitempty"`
	Reason   workflow.Reason            `json:"reason,omitempty"`
	TextCode string                     `json:"text_code,omitempty"`
	Result   *workflow.TransitionResult `json:"result,omitempty"`
}

var reasonStatus = map[workflow.Reason]int{
	workflow.ReasonNotFound:          http.StatusNotFound,
	workflow.ReasonUnknownAction:     http.StatusBadRequest,
	workflow.ReasonUnauthorized:      http.StatusUnauthorized,
	workflow.ReasonForbidden:         http.StatusForbidden,
	workflow.ReasonLocked:            http.StatusLocked,
	workflow.ReasonInvalidTransition: http.StatusConflict,
	workflow.ReasonStoreUnavailable:  http.StatusServiceUnavailable,
	workflow.ReasonAuditFailure:      http.StatusInternalServerError,
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if reason := workflow.ReasonOf(err); reason != "" {
		return reasonStatus[reason], errorResponse{
			Error:    errorCode(reason),
			Message:  err.Error(),
			Reason:   reason,
			TextCode: reason.TextCode(),
		}
	}

	var notFound *interfaces.NotFoundError
	if errors.As(err, &notFound) || errors.Is(err, interfaces.ErrNotFound) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, articles.ErrSlugExists) {
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	}

	if errors.Is(err, comments.ErrAuthorRequired) {
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()}
	}

	if errors.Is(err, articles.ErrTitleRequired) ||
		errors.Is(err, articles.ErrSlugInvalid) ||
		errors.Is(err, comments.ErrBodyRequired) ||
		errors.Is(err, comments.ErrArticleRequired) ||
		goerrors.IsCategory(err, goerrors.CategoryValidation) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func errorCode(reason workflow.Reason) string {
	switch reason {
	case workflow.ReasonNotFound:
		return "not_found"
	case workflow.ReasonUnknownAction:
		return "unknown_action"
	case workflow.ReasonUnauthorized:
		return "unauthorized"
	case workflow.ReasonForbidden:
		return "forbidden"
	case workflow.ReasonLocked:
		return "locked"
	case workflow.ReasonInvalidTransition:
		return "invalid_transition"
	case workflow.ReasonStoreUnavailable:
		return "service_unavailable"
	default:
		return "audit_failure"
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseIntQuery(value string, defaultValue int) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(trimmed)
}
