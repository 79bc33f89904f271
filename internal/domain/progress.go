package domain

import "fmt"

// Stage identifies one phase of the generation pipeline. Stages only move
// forward; a stage may iterate internally (once per section) before advancing.
type Stage string

const (
	StageOutline    Stage = "outline"
	StageResearch   Stage = "research"
	StageScript     Stage = "script"
	StageCombining  Stage = "combining"
	StageFinalizing Stage = "finalizing"
)

var stageOrder = map[Stage]int{
	StageOutline:    0,
	StageResearch:   1,
	StageScript:     2,
	StageCombining:  3,
	StageFinalizing: 4,
}

// StageTracker enforces the fixed stage progression. Advancing is the only way
// a pipeline moves between stages; skipping or moving backwards is rejected.
type StageTracker struct {
	current Stage
	started bool
}

// NewStageTracker returns a tracker positioned before the first stage.
func NewStageTracker() *StageTracker {
	return &StageTracker{}
}

// Current returns the active stage, or "" before the first Advance.
func (t *StageTracker) Current() Stage {
	return t.current
}

// Advance moves the tracker to next. The first call must target StageOutline;
// every later call must target the immediate successor of the current stage.
func (t *StageTracker) Advance(next Stage) error {
	order, ok := stageOrder[next]
	if !ok {
		return fmt.Errorf("unknown stage %q", next)
	}
	if !t.started {
		if next != StageOutline {
			return fmt.Errorf("pipeline must start at %q, got %q", StageOutline, next)
		}
		t.started = true
		t.current = next
		return nil
	}
	if order != stageOrder[t.current]+1 {
		return fmt.Errorf("illegal stage transition %q -> %q", t.current, next)
	}
	t.current = next
	return nil
}

// GenerationProgress is the unit emitted to observers after every unit of
// pipeline work. It is a transient event, never persisted as an entity itself,
// though the persistence sink may snapshot it.
type GenerationProgress struct {
	Stage          Stage       `json:"stage"`
	Step           string      `json:"step"`
	Progress       int         `json:"progress"`
	CurrentSection string      `json:"currentSection,omitempty"`
	Result         interface{} `json:"result,omitempty"`
	Error          string      `json:"error,omitempty"`
}
