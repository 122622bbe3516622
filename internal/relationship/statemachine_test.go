package relationship

import (
	"testing"
	"time"

	"github.com/soulsync/soulsync/internal/types"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestAdvanceIncrementsOnRomantic(t *testing.T) {
	sm := NewStateMachine()

	next, changed := sm.Advance(State{}, true, testNow)
	if !changed {
		t.Fatalf("expected change")
	}
	if next.RomanticIndicators != 1 || next.Stage != StageFriend {
		t.Fatalf("unexpected state: %+v", next)
	}
	if next.LastShift != nil {
		t.Fatalf("no stage shift should leave LastShift unset")
	}
}

func TestAdvanceNoSignalNoChange(t *testing.T) {
	sm := NewStateMachine()
	state := State{Stage: StageCloseFriend, RomanticIndicators: 7}

	next, changed := sm.Advance(state, false, testNow)
	if changed {
		t.Fatalf("expected no change")
	}
	if next != state {
		t.Fatalf("state mutated: %+v", next)
	}
}

func TestAdvanceTransitions(t *testing.T) {
	cases := []struct {
		name      string
		start     State
		wantStage int
		wantShift bool
	}{
		{"friend to close friend", State{Stage: StageFriend, RomanticIndicators: 4}, StageCloseFriend, true},
		{"below threshold stays", State{Stage: StageFriend, RomanticIndicators: 3}, StageFriend, false},
		{"close friend to romantic", State{Stage: StageCloseFriend, RomanticIndicators: 14}, StageRomanticFeelings, true},
		{"romantic to in love", State{Stage: StageRomanticFeelings, RomanticIndicators: 29}, StageInLove, true},
	}

	sm := NewStateMachine()
	for _, tc := range cases {
		next, _ := sm.Advance(tc.start, true, testNow)
		if next.Stage != tc.wantStage {
			t.Fatalf("%s: stage = %d, want %d", tc.name, next.Stage, tc.wantStage)
		}
		if tc.wantShift {
			if next.LastShift == nil || !next.LastShift.Equal(testNow) {
				t.Fatalf("%s: LastShift not stamped", tc.name)
			}
		} else if next.LastShift != nil {
			t.Fatalf("%s: unexpected LastShift", tc.name)
		}
	}
}

func TestAdvanceCascadesThroughStages(t *testing.T) {
	sm := NewStateMachine()
	// A counter far past every threshold walks through all stages at once.
	state := State{Stage: StageFriend, RomanticIndicators: 40, BotGender: types.GenderFemale}

	next, changed := sm.Advance(state, false, testNow)
	if !changed {
		t.Fatalf("expected change")
	}
	if next.Stage != StageInLove {
		t.Fatalf("stage = %d, want %d", next.Stage, StageInLove)
	}
	if next.RelationshipMode != types.RelationshipModeGirlfriend {
		t.Fatalf("mode = %s, want girlfriend", next.RelationshipMode)
	}
}

func TestAdvanceModeByGender(t *testing.T) {
	sm := NewStateMachine()
	state := State{Stage: StageRomanticFeelings, RomanticIndicators: 29, BotGender: types.GenderMale}

	next, _ := sm.Advance(state, true, testNow)
	if next.RelationshipMode != types.RelationshipModeBoyfriend {
		t.Fatalf("mode = %s, want boyfriend", next.RelationshipMode)
	}
}

func TestAdvanceStageThreeAbsorbing(t *testing.T) {
	sm := NewStateMachine()
	state := State{Stage: StageInLove, RomanticIndicators: 100, RelationshipMode: types.RelationshipModeGirlfriend}

	next, changed := sm.Advance(state, true, testNow)
	if next.Stage != StageInLove {
		t.Fatalf("stage moved past terminal: %d", next.Stage)
	}
	if !changed || next.RomanticIndicators != 101 {
		t.Fatalf("counter should keep incrementing: %+v", next)
	}
}

func TestNextMilestone(t *testing.T) {
	cases := []struct {
		state State
		want  int
	}{
		{State{Stage: StageFriend, RomanticIndicators: 0}, 5},
		{State{Stage: StageFriend, RomanticIndicators: 3}, 2},
		{State{Stage: StageCloseFriend, RomanticIndicators: 5}, 10},
		{State{Stage: StageRomanticFeelings, RomanticIndicators: 29}, 1},
		{State{Stage: StageInLove, RomanticIndicators: 30}, 0},
	}
	for _, tc := range cases {
		if got := NextMilestone(tc.state); got != tc.want {
			t.Fatalf("NextMilestone(%+v) = %d, want %d", tc.state, got, tc.want)
		}
	}
}

func TestStageName(t *testing.T) {
	if StageName(StageInLove) != "In Love 💕" {
		t.Fatalf("unexpected name: %s", StageName(StageInLove))
	}
	if StageName(-1) != "Friend" || StageName(99) != "Friend" {
		t.Fatalf("out-of-range stages should fall back to Friend")
	}
}
