// Package diary generates per-day conversation summaries.
package diary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/types"
)

// minDailyMessages gates generation: fewer messages is not worth a summary.
const minDailyMessages = 5

const summaryInstruction = `Create a daily summary from this conversation. Return JSON with: summary (1-2 sentences), keyPoints (array of 3-5), emotions (array), memories (array of things to remember)`

const rewriteInstruction = `Write a short emotional summary of the user's day.
Use 2-3 sentences maximum.
Be warm, caring, human-like, supportive.
Use sweet emojis like 🤍✨☺️`

// dailySummary is the structured output of the summary call.
type dailySummary struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
	Emotions  []string `json:"emotions"`
	Memories  []string `json:"memories"`
}

// ChatStore is the chat-history surface this service needs.
type ChatStore interface {
	CountForDay(ctx context.Context, userID string, day time.Time) (int, error)
	GetForDay(ctx context.Context, userID string, day time.Time) ([]types.ChatMessage, error)
}

// DiaryStore persists summaries.
type DiaryStore interface {
	Get(ctx context.Context, userID, date, diaryType string) (*types.DiarySummary, error)
	GetByDate(ctx context.Context, userID, date string) (*types.DiarySummary, error)
	Create(ctx context.Context, diary *types.DiarySummary) error
	UpdateSummary(ctx context.Context, id int, summary string, updatedAt time.Time) error
}

// Service generates and rewrites diary summaries.
type Service struct {
	completer models.Completer
	chats     ChatStore
	diaries   DiaryStore
	nowFunc   func() time.Time

	summarySchema map[string]any
}

// NewService returns a diary Service.
func NewService(completer models.Completer, chats ChatStore, diaries DiaryStore) *Service {
	schema, err := models.SchemaFor[dailySummary]()
	if err != nil {
		slog.Warn("failed to build summary schema", "error", err)
	}
	return &Service{
		completer:     completer,
		chats:         chats,
		diaries:       diaries,
		nowFunc:       time.Now,
		summarySchema: schema,
	}
}

// GenerateDaily produces today's daily summary for userID. It is idempotent:
// an existing summary is returned unchanged. Generation is skipped (nil, nil)
// when fewer than five messages exist for the day.
func (s *Service) GenerateDaily(ctx context.Context, userID string) (*types.DiarySummary, error) {
	now := s.nowFunc()
	date := now.Format("2006-01-02")

	existing, err := s.diaries.Get(ctx, userID, date, types.DiaryTypeDaily)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	count, err := s.chats.CountForDay(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if count < minDailyMessages {
		return nil, nil
	}

	chats, err := s.chats.GetForDay(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, models.CompletionRequest{
		System:      summaryInstruction,
		Turns:       []models.Turn{{Role: "user", Content: conversationText(chats)}},
		Temperature: 0.6,
		MaxTokens:   300,
		SchemaName:  "daily_summary",
		Schema:      s.summarySchema,
	})
	if err != nil {
		return nil, fmt.Errorf("summary call failed: %w", err)
	}

	summary := parseSummary(raw)
	record := &types.DiarySummary{
		UserID:            userID,
		Date:              date,
		Type:              types.DiaryTypeDaily,
		Summary:           summary.Summary,
		KeyPoints:         summary.KeyPoints,
		Emotions:          summary.Emotions,
		Memories:          summary.Memories,
		ConversationCount: count,
	}
	if record.Summary == "" {
		record.Summary = "Had good conversations"
	}

	if err := s.diaries.Create(ctx, record); err != nil {
		// A racing writer may have created today's summary first; the unique
		// index guarantees at most one, so re-read and return that.
		if existing, getErr := s.diaries.Get(ctx, userID, date, types.DiaryTypeDaily); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return record, nil
}

// Rewrite re-summarizes an existing day's diary into a few warm sentences
// and stores the result. Returns the new summary text, or "" when no diary
// exists for date.
func (s *Service) Rewrite(ctx context.Context, userID, date string) (string, error) {
	diary, err := s.diaries.GetByDate(ctx, userID, date)
	if err != nil {
		return "", err
	}
	if diary == nil {
		return "", nil
	}

	source := diary.Summary
	if len(diary.KeyPoints) > 0 {
		source += "\n" + strings.Join(diary.KeyPoints, "\n")
	}

	summary, err := s.completer.Complete(ctx, models.CompletionRequest{
		System:      rewriteInstruction,
		Turns:       []models.Turn{{Role: "user", Content: source}},
		Temperature: 0.7,
		MaxTokens:   80,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite call failed: %w", err)
	}

	if err := s.diaries.UpdateSummary(ctx, diary.ID, summary, s.nowFunc()); err != nil {
		return "", err
	}
	return summary, nil
}

// conversationText renders one day of chat into the summarizer's input.
func conversationText(chats []types.ChatMessage) string {
	var sb strings.Builder
	for _, chat := range chats {
		if chat.From == types.SenderUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Bot: ")
		}
		sb.WriteString(chat.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// parseSummary decodes the summary JSON, falling back to treating the whole
// reply as the summary text when the model ignores the schema.
func parseSummary(raw string) dailySummary {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		var out dailySummary
		if err := json.Unmarshal([]byte(clean[start:end+1]), &out); err == nil {
			return out
		}
	}
	return dailySummary{Summary: clean}
}
