package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/runtimeconfig"
)

// Workflow actions understood by the engine.
const (
	ActionToReview       = "toReview"
	ActionToLegal        = "toLegal"
	ActionApprove        = "approve"
	ActionFounderApprove = "founderApprove"
	ActionSchedule       = "schedule"
	ActionPublish        = "publish"
	ActionRevert         = "revert"

	// ActionLock and ActionUnlock label audit events written by SetLocked.
	ActionLock   = "lock"
	ActionUnlock = "unlock"
)

// View names accepted by AvailableActions.
const (
	ViewFull   = "full"
	ViewSimple = "simple"
)

var simpleViewActions = []string{ActionToReview, ActionToLegal, ActionApprove, ActionPublish}

var (
	// ErrActionRequired indicates a transition config lacks an action name.
	ErrActionRequired = errors.New("workflow: transition action required")
	// ErrRuleStageUnknown indicates a transition references a stage outside the enum.
	ErrRuleStageUnknown = errors.New("workflow: transition references unknown stage")
	// ErrRuleSourceRequired indicates a transition declares no source stages.
	ErrRuleSourceRequired = errors.New("workflow: transition requires at least one source stage")
	// ErrRuleRoleUnknown indicates a transition references an unknown minimum role.
	ErrRuleRoleUnknown = errors.New("workflow: transition references unknown role")
	// ErrDuplicateAction indicates the same action was declared twice.
	ErrDuplicateAction = errors.New("workflow: duplicate transition action")
	// ErrReservedAction indicates a transition tried to reuse a lock action name.
	ErrReservedAction = errors.New("workflow: transition action is reserved")
)

// Rule is one row of the transition table.
type Rule struct {
	Action      string         `json:"action"`
	From        []domain.Stage `json:"from"`
	To          domain.Stage   `json:"to"`
	MinRole     domain.Role    `json:"min_role"`
	Description string         `json:"description,omitempty"`
}

// Allows reports whether stage is one of the rule's source stages.
func (r Rule) Allows(stage domain.Stage) bool {
	for _, from := range r.From {
		if from == stage {
			return true
		}
	}
	return false
}

// RuleSet is an immutable, ordered transition table keyed by action.
type RuleSet struct {
	ordered []Rule
	byName  map[string]Rule
}

// Lookup returns the rule for the action. Matching is exact.
func (s *RuleSet) Lookup(action string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	rule, ok := s.byName[action]
	return rule, ok
}

// Rules returns a copy of the rules in declaration order.
func (s *RuleSet) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, 0, len(s.ordered))
	for _, rule := range s.ordered {
		out = append(out, cloneRule(rule))
	}
	return out
}

// View returns the rules exposed by the named view. The simple view is the
// four-step toReview/toLegal/approve/publish subset; anything else is the
// full table.
func (s *RuleSet) View(name string) []Rule {
	if !strings.EqualFold(strings.TrimSpace(name), ViewSimple) {
		return s.Rules()
	}
	out := make([]Rule, 0, len(simpleViewActions))
	for _, action := range simpleViewActions {
		if rule, ok := s.Lookup(action); ok {
			out = append(out, cloneRule(rule))
		}
	}
	return out
}

// DefaultRules returns the canonical newsroom transition table.
func DefaultRules() *RuleSet {
	nonPublished := make([]domain.Stage, 0, len(domain.Stages()))
	for _, stage := range domain.Stages() {
		if stage != domain.StagePublished {
			nonPublished = append(nonPublished, stage)
		}
	}

	set, err := newRuleSet([]Rule{
		{Action: ActionToReview, From: []domain.Stage{domain.StageDraft}, To: domain.StageCopyEdit, MinRole: domain.RoleEditor, Description: "Send draft to copy edit"},
		{Action: ActionToLegal, From: []domain.Stage{domain.StageCopyEdit}, To: domain.StageLegalReview, MinRole: domain.RoleEditor, Description: "Send to legal review"},
		{Action: ActionApprove, From: []domain.Stage{domain.StageLegalReview}, To: domain.StageEditorApproval, MinRole: domain.RoleAdmin, Description: "Editorial approval"},
		{Action: ActionFounderApprove, From: []domain.Stage{domain.StageEditorApproval}, To: domain.StageFounderApproval, MinRole: domain.RoleFounder, Description: "Founder sign-off"},
		{Action: ActionSchedule, From: []domain.Stage{domain.StageFounderApproval}, To: domain.StageScheduled, MinRole: domain.RoleAdmin, Description: "Schedule for publication"},
		{Action: ActionPublish, From: []domain.Stage{domain.StageScheduled, domain.StageFounderApproval}, To: domain.StagePublished, MinRole: domain.RoleAdmin, Description: "Publish"},
		{Action: ActionRevert, From: nonPublished, To: domain.StageDraft, MinRole: domain.RoleAdmin, Description: "Send back to draft"},
	})
	if err != nil {
		panic(err)
	}
	return set
}

// CompileRules converts configuration-driven transitions into a rule set.
// An empty configuration yields DefaultRules.
func CompileRules(configs []runtimeconfig.WorkflowTransitionConfig) (*RuleSet, error) {
	if len(configs) == 0 {
		return DefaultRules(), nil
	}

	rules := make([]Rule, 0, len(configs))
	for idx, cfg := range configs {
		rule, err := compileRule(cfg)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", idx, err)
		}
		rules = append(rules, rule)
	}
	return newRuleSet(rules)
}

func compileRule(cfg runtimeconfig.WorkflowTransitionConfig) (Rule, error) {
	action := strings.TrimSpace(cfg.Action)
	if action == "" {
		return Rule{}, ErrActionRequired
	}
	if len(cfg.From) == 0 {
		return Rule{}, fmt.Errorf("%w: %s", ErrRuleSourceRequired, action)
	}

	from := make([]domain.Stage, 0, len(cfg.From))
	for _, raw := range cfg.From {
		if strings.TrimSpace(raw) == "*" {
			for _, stage := range domain.Stages() {
				if stage != domain.StagePublished {
					from = append(from, stage)
				}
			}
			continue
		}
		stage, ok := parseRuleStage(raw)
		if !ok {
			return Rule{}, fmt.Errorf("%w: %q", ErrRuleStageUnknown, raw)
		}
		from = append(from, stage)
	}

	to, ok := parseRuleStage(cfg.To)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrRuleStageUnknown, cfg.To)
	}

	role, ok := domain.ParseRole(cfg.MinRole)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrRuleRoleUnknown, cfg.MinRole)
	}

	return Rule{
		Action:      action,
		From:        dedupeStages(from),
		To:          to,
		MinRole:     role,
		Description: strings.TrimSpace(cfg.Description),
	}, nil
}

func newRuleSet(rules []Rule) (*RuleSet, error) {
	set := &RuleSet{
		ordered: make([]Rule, 0, len(rules)),
		byName:  make(map[string]Rule, len(rules)),
	}
	for _, rule := range rules {
		if rule.Action == ActionLock || rule.Action == ActionUnlock {
			return nil, fmt.Errorf("%w: %s", ErrReservedAction, rule.Action)
		}
		if _, exists := set.byName[rule.Action]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAction, rule.Action)
		}
		set.byName[rule.Action] = rule
		set.ordered = append(set.ordered, rule)
	}
	return set, nil
}

// parseRuleStage is stricter than domain.ParseStage: blank is not a stage.
func parseRuleStage(raw string) (domain.Stage, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	return domain.ParseStage(raw)
}

func dedupeStages(stages []domain.Stage) []domain.Stage {
	seen := make(map[domain.Stage]struct{}, len(stages))
	out := make([]domain.Stage, 0, len(stages))
	for _, stage := range stages {
		if _, ok := seen[stage]; ok {
			continue
		}
		seen[stage] = struct{}{}
		out = append(out, stage)
	}
	return out
}

func cloneRule(rule Rule) Rule {
	from := make([]domain.Stage, len(rule.From))
	copy(from, rule.From)
	rule.From = from
	return rule
}
