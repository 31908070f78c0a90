package workflow

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Reason names the kind of a workflow failure. It is what callers persist in
// audit events and what the gateway maps to status codes.
type Reason string

const (
	ReasonNotFound          Reason = "NotFound"
	ReasonUnknownAction     Reason = "UnknownAction"
	ReasonUnauthorized      Reason = "Unauthorized"
	ReasonForbidden         Reason = "Forbidden"
	ReasonLocked            Reason = "Locked"
	ReasonInvalidTransition Reason = "InvalidTransition"
	ReasonStoreUnavailable  Reason = "StoreUnavailable"
	ReasonAuditFailure      Reason = "AuditFailure"
)

var (
	// ErrNotFound indicates the article has no workflow state.
	ErrNotFound = errors.New("workflow: article not found")
	// ErrUnknownAction indicates the action is not part of the rule table.
	ErrUnknownAction = errors.New("workflow: unknown action")
	// ErrUnauthorized indicates the caller carries no resolvable role.
	ErrUnauthorized = errors.New("workflow: actor role unresolved")
	// ErrForbidden indicates the caller's role is below the required minimum.
	ErrForbidden = errors.New("workflow: actor role below minimum")
	// ErrLocked indicates the article workflow is locked.
	ErrLocked = errors.New("workflow: article workflow locked")
	// ErrInvalidTransition indicates the current stage is not a legal source for the action.
	ErrInvalidTransition = errors.New("workflow: transition not allowed from current stage")
	// ErrStoreUnavailable indicates the article store call failed.
	ErrStoreUnavailable = errors.New("workflow: article store unavailable")
	// ErrAuditFailure indicates the audit log append failed.
	ErrAuditFailure = errors.New("workflow: audit append failed")
)

type reasonSpec struct {
	sentinel error
	category goerrors.Category
	textCode string
}

var reasonSpecs = map[Reason]reasonSpec{
	ReasonNotFound:          {ErrNotFound, goerrors.CategoryNotFound, "WORKFLOW_NOT_FOUND"},
	ReasonUnknownAction:     {ErrUnknownAction, goerrors.CategoryBadInput, "WORKFLOW_UNKNOWN_ACTION"},
	ReasonUnauthorized:      {ErrUnauthorized, goerrors.CategoryAuth, "WORKFLOW_UNAUTHORIZED"},
	ReasonForbidden:         {ErrForbidden, goerrors.CategoryAuthz, "WORKFLOW_FORBIDDEN"},
	ReasonLocked:            {ErrLocked, goerrors.CategoryConflict, "WORKFLOW_LOCKED"},
	ReasonInvalidTransition: {ErrInvalidTransition, goerrors.CategoryConflict, "WORKFLOW_INVALID_TRANSITION"},
	ReasonStoreUnavailable:  {ErrStoreUnavailable, goerrors.CategoryExternal, "WORKFLOW_STORE_UNAVAILABLE"},
	ReasonAuditFailure:      {ErrAuditFailure, goerrors.CategoryInternal, "WORKFLOW_AUDIT_FAILURE"},
}

// reasonOrder fixes the lookup order used by ReasonOf. AuditFailure comes
// first because it may wrap a rejection that could not be recorded.
var reasonOrder = []Reason{
	ReasonAuditFailure,
	ReasonStoreUnavailable,
	ReasonNotFound,
	ReasonUnknownAction,
	ReasonUnauthorized,
	ReasonForbidden,
	ReasonLocked,
	ReasonInvalidTransition,
}

// TextCode returns the machine readable code attached to errors of this kind.
func (r Reason) TextCode() string {
	return reasonSpecs[r].textCode
}

// newError builds a categorised error for the reason. The returned error
// matches the reason sentinel and, when present, the cause via errors.Is.
func newError(reason Reason, message string, cause error) *goerrors.Error {
	spec, ok := reasonSpecs[reason]
	if !ok {
		spec = reasonSpecs[ReasonStoreUnavailable]
	}
	err := goerrors.New(message, spec.category).WithTextCode(spec.textCode)
	if cause != nil {
		err.Source = fmt.Errorf("%w: %w", spec.sentinel, cause)
	} else {
		err.Source = spec.sentinel
	}
	return err
}

// ReasonOf extracts the workflow failure kind from err. It returns an empty
// reason for nil or foreign errors.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	for _, reason := range reasonOrder {
		if errors.Is(err, reasonSpecs[reason].sentinel) {
			return reason
		}
	}
	return ""
}

// IsRejection reports whether err is a precondition or input rejection, as
// opposed to an infrastructure failure.
func IsRejection(err error) bool {
	switch ReasonOf(err) {
	case ReasonStoreUnavailable, ReasonAuditFailure, "":
		return false
	default:
		return true
	}
}
