// Package prompts holds the model instructions for each generation stage and the
// builders that assemble them with contract text and user guidance.
package prompts

import (
	"errors"
	"slices"
)

// ErrInvalidStage indicates an unknown generation stage.
var ErrInvalidStage = errors.New("stage must be classify, mirror, redline, negotiation, or action_items")

// Stage identifies one model call in the contract workflow.
type Stage string

// Generation stages.
const (
	StageClassify    Stage = "classify"
	StageMirror      Stage = "mirror"
	StageRedline     Stage = "redline"
	StageNegotiation Stage = "negotiation"
	StageActionItems Stage = "action_items"
)

var stages = []Stage{
	StageClassify,
	StageMirror,
	StageRedline,
	StageNegotiation,
	StageActionItems,
}

// ArtifactStages are the three generation stages that each produce one output document,
// in output order.
var ArtifactStages = []Stage{StageMirror, StageRedline, StageNegotiation}

// Stages returns the list of valid stages.
func Stages() []Stage {
	return stages
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
