// Package relationship implements the stage evolution over romantic signals.
package relationship

import (
	"time"

	"github.com/soulsync/soulsync/internal/types"
)

// Evolution stages.
const (
	StageFriend = iota
	StageCloseFriend
	StageRomanticFeelings
	StageInLove
)

// stageThresholds holds the indicator count required to leave each stage.
var stageThresholds = [...]int{5, 15, 30}

// StageNames are the client-facing labels, indexed by stage.
var StageNames = [...]string{"Friend", "Close Friend", "Romantic Feelings Emerging", "In Love 💕"}

// State is the relationship portion of a user record.
type State struct {
	Stage              int
	RomanticIndicators int
	RelationshipMode   string
	BotGender          string
	LastShift          *time.Time
}

// StateMachine advances relationship state from per-message romantic signals.
type StateMachine struct{}

// NewStateMachine returns a StateMachine.
func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// Advance applies one message observation and returns the updated state plus
// whether anything changed. The indicator counter increments by exactly one
// per romantic message and never decreases. Transitions are evaluated
// sequentially so a counter that somehow jumped past several thresholds still
// cascades through every stage; stage 3 is absorbing.
func (s *StateMachine) Advance(state State, romantic bool, now time.Time) (State, bool) {
	changed := false

	if romantic {
		state.RomanticIndicators++
		changed = true
	}

	for state.Stage < StageInLove && state.RomanticIndicators >= stageThresholds[state.Stage] {
		state.Stage++
		shift := now
		state.LastShift = &shift
		changed = true

		if state.Stage == StageInLove {
			state.RelationshipMode = modeForGender(state.BotGender)
		}
	}

	return state, changed
}

// NextMilestone returns how many more romantic indicators are needed to reach
// the next stage, or 0 once the terminal stage is reached.
func NextMilestone(state State) int {
	if state.Stage >= StageInLove {
		return 0
	}
	remaining := stageThresholds[state.Stage] - state.RomanticIndicators
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StageName returns the client-facing label for stage.
func StageName(stage int) string {
	if stage < 0 || stage >= len(StageNames) {
		return StageNames[0]
	}
	return StageNames[stage]
}

func modeForGender(gender string) string {
	if gender == types.GenderMale {
		return types.RelationshipModeBoyfriend
	}
	return types.RelationshipModeGirlfriend
}
