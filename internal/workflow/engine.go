package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

const (
	outcomeAccepted = "accepted"
)

// TransitionResult is the outcome of RequestTransition. It is always
// returned, including alongside an error.
type TransitionResult struct {
	ArticleID uuid.UUID             `json:"article_id"`
	Action    string                `json:"action"`
	Accepted  bool                  `json:"accepted"`
	FromStage domain.Stage          `json:"from_stage,omitempty"`
	NewStage  domain.Stage          `json:"new_stage,omitempty"`
	Reason    Reason                `json:"reason,omitempty"`
	Event     *domain.WorkflowEvent `json:"event,omitempty"`
}

// Engine validates and applies workflow transitions. It is the only writer
// of article stages and lock flags.
type Engine struct {
	store    interfaces.ArticleStore
	audit    interfaces.AuditLog
	rules    *RuleSet
	locks    *articleLocks
	now      func() time.Time
	newID    func() uuid.UUID
	logger   interfaces.Logger
	observer interfaces.TransitionObserver

	defaultLimit int
	maxLimit     int
}

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the clock used for transition timestamps (primarily for testing).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithIDGenerator overrides the audit event id generator.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithRules replaces the canonical rule table.
func WithRules(rules *RuleSet) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers a transition observer.
func WithObserver(observer interfaces.TransitionObserver) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithEventLimits sets the default and maximum page size for ListEvents.
func WithEventLimits(defaultLimit, max int) Option {
	return func(e *Engine) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if max > 0 {
			e.maxLimit = max
		}
		if e.defaultLimit > e.maxLimit {
			e.defaultLimit = e.maxLimit
		}
	}
}

// NewEngine constructs an engine over the supplied store and audit log.
func NewEngine(store interfaces.ArticleStore, audit interfaces.AuditLog, opts ...Option) *Engine {
	engine := &Engine{
		store:        store,
		audit:        audit,
		rules:        DefaultRules(),
		locks:        newArticleLocks(),
		now:          time.Now,
		newID:        uuid.New,
		logger:       logging.NoOp(),
		defaultLimit: defaultEventLimit,
		maxLimit:     maxEventLimit,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Rules exposes the active rule table.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// RequestTransition validates the action against the article's current stage
// and the actor's role and applies it. Every call appends exactly one audit
// event. When the returned error is non-nil the result is not accepted and
// Reason names the failure kind.
func (e *Engine) RequestTransition(ctx context.Context, articleID uuid.UUID, action string, actor *domain.Actor) (*TransitionResult, error) {
	started := e.now()
	release := e.locks.lock(articleID)
	defer release()

	event := e.newEvent(articleID, action, actor)
	result := &TransitionResult{ArticleID: articleID, Action: action}

	finish := func(err error) (*TransitionResult, error) {
		e.observeTransition(action, result, err, started)
		return result, err
	}

	state, err := e.loadState(ctx, articleID)
	if err != nil {
		return finish(e.reject(ctx, result, event, err))
	}
	result.FromStage = state.Stage
	event.FromStage = state.Stage

	rule, ok := e.rules.Lookup(action)
	if !ok {
		return finish(e.reject(ctx, result, event, newError(ReasonUnknownAction, fmt.Sprintf("unknown action %q", action), nil)))
	}
	if err := requireRole(actor); err != nil {
		return finish(e.reject(ctx, result, event, err))
	}

	if state.Locked {
		return finish(e.reject(ctx, result, event, newError(ReasonLocked, "article workflow is locked", nil)))
	}
	if !rule.Allows(state.Stage) {
		return finish(e.reject(ctx, result, event, newError(ReasonInvalidTransition, fmt.Sprintf("%s not allowed from %s", action, state.Stage), nil)))
	}
	if !actor.Role.Satisfies(rule.MinRole) {
		return finish(e.reject(ctx, result, event, newError(ReasonForbidden, fmt.Sprintf("%s requires role %s", action, rule.MinRole), nil)))
	}

	at := e.now()
	if at.Before(state.StageUpdatedAt) {
		at = state.StageUpdatedAt
	}

	swapped, err := e.store.CompareAndSetStage(ctx, articleID, state.Stage, rule.To, at)
	if err != nil {
		return finish(e.reject(ctx, result, event, e.storeError(articleID, err)))
	}
	if !swapped {
		return finish(e.reject(ctx, result, event, e.swapMissed(ctx, articleID)))
	}

	event.ToStage = domain.StagePtr(rule.To)
	event.Accepted = true
	event.At = at
	result.NewStage = rule.To

	if err := e.audit.Append(ctx, event); err != nil {
		// The stage write already happened; the reconciler surfaces the gap.
		result.Reason = ReasonAuditFailure
		e.logger.Error("workflow.audit.append_failed",
			"article_id", articleID, "action", action, "to_stage", rule.To, "error", err)
		return finish(newError(ReasonAuditFailure, "transition applied but audit append failed", err))
	}

	result.Accepted = true
	result.Event = &event
	e.logger.Info("workflow.transition.accepted",
		"article_id", articleID, "action", action, "from_stage", state.Stage, "to_stage", rule.To, "actor_id", event.Actor.ID)
	return finish(nil)
}

// SetLocked toggles the article lock. Only admin and founder may call it.
// Repeating the current value succeeds and is audited again.
func (e *Engine) SetLocked(ctx context.Context, articleID uuid.UUID, locked bool, actor *domain.Actor) (*domain.ArticleWorkflowState, error) {
	release := e.locks.lock(articleID)
	defer release()

	action := ActionUnlock
	if locked {
		action = ActionLock
	}
	event := e.newEvent(articleID, action, actor)
	result := &TransitionResult{ArticleID: articleID, Action: action}

	state, err := e.loadState(ctx, articleID)
	if err != nil {
		return nil, e.observeLock(locked, e.reject(ctx, result, event, err))
	}
	event.FromStage = state.Stage

	if err := requireRole(actor); err != nil {
		return nil, e.observeLock(locked, e.reject(ctx, result, event, err))
	}
	if !actor.Role.Satisfies(domain.RoleAdmin) {
		return nil, e.observeLock(locked, e.reject(ctx, result, event, newError(ReasonForbidden, "lock changes require role admin", nil)))
	}

	if err := e.store.SetLocked(ctx, articleID, locked); err != nil {
		return nil, e.observeLock(locked, e.reject(ctx, result, event, e.storeError(articleID, err)))
	}

	event.Accepted = true
	event.ToStage = domain.StagePtr(state.Stage)
	if err := e.audit.Append(ctx, event); err != nil {
		e.logger.Error("workflow.audit.append_failed",
			"article_id", articleID, "action", action, "error", err)
		return nil, e.observeLock(locked, newError(ReasonAuditFailure, "lock applied but audit append failed", err))
	}

	e.logger.Info("workflow.lock.changed", "article_id", articleID, "locked", locked, "actor_id", event.Actor.ID)
	e.observeLock(locked, nil)

	updated := *state
	updated.Locked = locked
	return &updated, nil
}

// GetState returns the workflow state of an article.
func (e *Engine) GetState(ctx context.Context, articleID uuid.UUID) (*domain.ArticleWorkflowState, error) {
	return e.loadState(ctx, articleID)
}

// ListEvents returns the most recent audit events for the article, newest
// first. Non-positive limits use the default page size; larger ones are
// capped.
func (e *Engine) ListEvents(ctx context.Context, articleID uuid.UUID, limit int) ([]domain.WorkflowEvent, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	events, err := e.audit.List(ctx, articleID, limit)
	if err != nil {
		return nil, newError(ReasonAuditFailure, "list audit events", err)
	}
	return events, nil
}

// AvailableActions lists the rules of the named view the actor could apply
// to the article right now. A locked article has none.
func (e *Engine) AvailableActions(ctx context.Context, articleID uuid.UUID, actor *domain.Actor, view string) ([]Rule, error) {
	if err := requireRole(actor); err != nil {
		return nil, err
	}
	state, err := e.loadState(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if state.Locked {
		return []Rule{}, nil
	}

	out := make([]Rule, 0)
	for _, rule := range e.rules.View(view) {
		if rule.Allows(state.Stage) && actor.Role.Satisfies(rule.MinRole) {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (e *Engine) loadState(ctx context.Context, articleID uuid.UUID) (*domain.ArticleWorkflowState, error) {
	if articleID == uuid.Nil {
		return nil, newError(ReasonNotFound, "article id required", nil)
	}
	state, err := e.store.GetState(ctx, articleID)
	if err != nil {
		return nil, e.storeError(articleID, err)
	}
	if state == nil {
		return nil, newError(ReasonNotFound, fmt.Sprintf("article %s not found", articleID), nil)
	}
	return state, nil
}

// swapMissed explains a failed compare-and-set. Another writer either moved
// the stage or locked the article after the state was read.
func (e *Engine) swapMissed(ctx context.Context, articleID uuid.UUID) error {
	current, err := e.loadState(ctx, articleID)
	if err != nil {
		return err
	}
	if current.Locked {
		return newError(ReasonLocked, "article workflow was locked concurrently", nil)
	}
	return newError(ReasonInvalidTransition, fmt.Sprintf("stage of %s changed concurrently", articleID), nil)
}

func (e *Engine) storeError(articleID uuid.UUID, err error) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return newError(ReasonNotFound, fmt.Sprintf("article %s not found", articleID), err)
	}
	return newError(ReasonStoreUnavailable, "article store call failed", err)
}

// reject records a refused request and returns the error to report. When the
// audit append itself fails, the rejection is reported as AuditFailure.
func (e *Engine) reject(ctx context.Context, result *TransitionResult, event domain.WorkflowEvent, cause error) error {
	reason := ReasonOf(cause)
	if reason == "" {
		reason = ReasonStoreUnavailable
	}
	result.Accepted = false
	result.Reason = reason

	event.Accepted = false
	event.ToStage = nil
	event.Reason = string(reason)

	logger := logging.WithFields(e.logger, map[string]any{
		"article_id": event.ArticleID.String(),
		"action":     event.Action,
		"reason":     string(reason),
	})

	if err := e.audit.Append(ctx, event); err != nil {
		result.Reason = ReasonAuditFailure
		logger.Error("workflow.audit.append_failed", "error", err)
		return newError(ReasonAuditFailure, fmt.Sprintf("rejection %s could not be recorded", reason), errors.Join(err, cause))
	}

	result.Event = &event
	logger.Warn("workflow.transition.rejected", "actor_id", event.Actor.ID, "error", cause)
	return cause
}

func (e *Engine) newEvent(articleID uuid.UUID, action string, actor *domain.Actor) domain.WorkflowEvent {
	event := domain.WorkflowEvent{
		ID:        e.newID(),
		ArticleID: articleID,
		Action:    action,
		At:        e.now(),
	}
	if actor != nil {
		event.Actor = *actor
	}
	return event
}

func (e *Engine) observeTransition(action string, result *TransitionResult, err error, started time.Time) {
	if e.observer == nil {
		return
	}
	outcome := outcomeAccepted
	if err != nil {
		outcome = string(result.Reason)
	}
	e.observer.ObserveTransition(action, outcome, e.now().Sub(started))
}

func (e *Engine) observeLock(locked bool, err error) error {
	if e.observer != nil {
		outcome := outcomeAccepted
		if err != nil {
			outcome = string(ReasonOf(err))
		}
		e.observer.ObserveLock(locked, outcome)
	}
	return err
}

func requireRole(actor *domain.Actor) error {
	if actor == nil {
		return newError(ReasonUnauthorized, "actor required", nil)
	}
	if !actor.Role.IsValid() {
		return newError(ReasonUnauthorized, fmt.Sprintf("actor role %q is not recognised", actor.Role), nil)
	}
	return nil
}
