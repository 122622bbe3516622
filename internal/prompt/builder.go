// Package prompt assembles the system prompt sent to the completion service.
// Assembly is deterministic: identical inputs yield byte-identical output.
package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/soulsync/soulsync/internal/emotion"
	"github.com/soulsync/soulsync/internal/relationship"
	"github.com/soulsync/soulsync/internal/types"
)

const maxMemoryLines = 3

// Input carries everything the assembler needs.
type Input struct {
	User       *types.User
	Emotion    emotion.Label
	Style      emotion.Style
	Memories   []types.Memory
	TodayDiary *types.DiarySummary
}

// Builder renders system prompts.
type Builder struct{}

// NewBuilder returns a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the full system prompt for one chat turn.
func (b *Builder) Build(in Input) (string, error) {
	if in.User == nil {
		return "", fmt.Errorf("user is required")
	}

	data := struct {
		BotName           string
		BotAge            int
		GenderNoun        string
		GenderBehavior    string
		RelationshipBlock string
		PersonalityBlock  string
		EmotionalBlock    string
		StyleBlock        string
		MemoryBlock       string
	}{
		BotName:           in.User.BotName,
		BotAge:            in.User.BotAge,
		GenderNoun:        genderNoun(in.User.BotGender),
		GenderBehavior:    genderBehaviorLine(in.User.BotGender),
		RelationshipBlock: relationshipBlock(in.User.RelationshipStage, in.User.RelationshipMode),
		PersonalityBlock:  personalityBlocks[in.User.Personality],
		EmotionalBlock:    emotionalBlocks[in.Emotion],
		StyleBlock:        styleBlock(in.Style),
		MemoryBlock:       memoryBlock(in.Memories, in.TodayDiary),
	}

	var buf bytes.Buffer
	if err := systemPromptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), nil
}

func relationshipBlock(stage int, mode string) string {
	if stage >= relationship.StageInLove {
		return fmt.Sprintf(`RELATIONSHIP MODE: You are their %s. Be affectionate, caring, and express romantic feelings. You can be flirty and intimate. You're in love with them.`, mode)
	}
	if stage < 0 || stage >= len(relationshipBlocks) {
		stage = relationship.StageFriend
	}
	return relationshipBlocks[stage]
}

// styleBlock picks at most one note with precedence brief > expressive > emphatic.
func styleBlock(style emotion.Style) string {
	switch {
	case style.Brief:
		return styleBrief
	case style.Expressive:
		return styleExpressive
	case style.Emphatic:
		return styleEmphatic
	default:
		return ""
	}
}

func memoryBlock(memories []types.Memory, diary *types.DiarySummary) string {
	if len(memories) == 0 && diary == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("PAST MEMORIES CONTEXT:\n")
	if diary != nil {
		sb.WriteString("Today's summary: ")
		sb.WriteString(diary.Summary)
		sb.WriteString("\n")
	}
	if len(memories) > 0 {
		sb.WriteString("Important things to remember about this user:\n")
		for i, mem := range memories {
			if i == maxMemoryLines {
				break
			}
			sb.WriteString("- ")
			sb.WriteString(mem.Title)
			sb.WriteString(": ")
			sb.WriteString(mem.Content)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func genderNoun(gender string) string {
	if noun, ok := genderNouns[gender]; ok {
		return noun
	}
	return genderNouns[types.GenderFemale]
}

func genderBehaviorLine(gender string) string {
	if line, ok := genderBehavior[gender]; ok {
		return line
	}
	return genderBehavior[types.GenderFemale]
}
