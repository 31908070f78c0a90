package domain

import "strings"

// Stage is a named point in the editorial workflow graph.
type Stage string

const (
	StageDraft           Stage = "Draft"
	StageCopyEdit        Stage = "CopyEdit"
	StageLegalReview     Stage = "LegalReview"
	StageEditorApproval  Stage = "EditorApproval"
	StageFounderApproval Stage = "FounderApproval"
	StageScheduled       Stage = "Scheduled"
	StagePublished       Stage = "Published"
)

var stageOrder = []Stage{
	StageDraft,
	StageCopyEdit,
	StageLegalReview,
	StageEditorApproval,
	StageFounderApproval,
	StageScheduled,
	StagePublished,
}

// Stages returns every workflow stage in typical progression order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// IsValid reports whether the stage is one of the enumerated values.
func (s Stage) IsValid() bool {
	for _, candidate := range stageOrder {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage resolves a stage name case-insensitively. Blank input maps to
// Draft so rows persisted before a stage existed still resolve.
func ParseStage(input string) (Stage, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return StageDraft, true
	}
	for _, candidate := range stageOrder {
		if strings.EqualFold(trimmed, string(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// NormalizeStage coerces arbitrary stage strings into a known stage, falling
// back to Draft for blank or unknown values.
func NormalizeStage(input string) Stage {
	if stage, ok := ParseStage(input); ok {
		return stage
	}
	return StageDraft
}
