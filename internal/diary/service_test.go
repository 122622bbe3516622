package diary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/types"
)

type fakeChatStore struct {
	count    int
	messages []types.ChatMessage
}

func (f *fakeChatStore) CountForDay(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.count, nil
}

func (f *fakeChatStore) GetForDay(_ context.Context, _ string, _ time.Time) ([]types.ChatMessage, error) {
	return f.messages, nil
}

type fakeDiaryStore struct {
	existing  *types.DiarySummary
	created   []*types.DiarySummary
	createErr error
	updatedID int
	updated   string
}

func (f *fakeDiaryStore) Get(_ context.Context, _, _, _ string) (*types.DiarySummary, error) {
	return f.existing, nil
}

func (f *fakeDiaryStore) GetByDate(_ context.Context, _, _ string) (*types.DiarySummary, error) {
	return f.existing, nil
}

func (f *fakeDiaryStore) Create(_ context.Context, diary *types.DiarySummary) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, diary)
	return nil
}

func (f *fakeDiaryStore) UpdateSummary(_ context.Context, id int, summary string, _ time.Time) error {
	f.updatedID = id
	f.updated = summary
	return nil
}

type fakeCompleter struct {
	reply    string
	err      error
	requests []models.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req models.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)
}

func TestGenerateDailyIdempotent(t *testing.T) {
	existing := &types.DiarySummary{ID: 7, Summary: "already there"}
	completer := &fakeCompleter{reply: "should not be called"}
	svc := NewService(completer, &fakeChatStore{count: 10}, &fakeDiaryStore{existing: existing})
	svc.nowFunc = fixedNow

	got, err := svc.GenerateDaily(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != existing {
		t.Fatalf("existing summary should be returned unchanged")
	}
	if len(completer.requests) != 0 {
		t.Fatalf("no completion call may happen when a summary exists")
	}
}

func TestGenerateDailySkipsQuietDays(t *testing.T) {
	completer := &fakeCompleter{reply: "{}"}
	diaries := &fakeDiaryStore{}
	svc := NewService(completer, &fakeChatStore{count: 4}, diaries)
	svc.nowFunc = fixedNow

	got, err := svc.GenerateDaily(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != nil {
		t.Fatalf("fewer than five messages must skip generation")
	}
	if len(diaries.created) != 0 {
		t.Fatalf("nothing may be stored on skip")
	}
}

func TestGenerateDailyStoresSummary(t *testing.T) {
	completer := &fakeCompleter{reply: `{"summary":"A lovely day","keyPoints":["talked about work"],"emotions":["happy"],"memories":["likes ramen"]}`}
	diaries := &fakeDiaryStore{}
	chats := &fakeChatStore{
		count: 6,
		messages: []types.ChatMessage{
			{From: types.SenderUser, Message: "hi"},
			{From: "aria", Message: "hey!"},
		},
	}
	svc := NewService(completer, chats, diaries)
	svc.nowFunc = fixedNow

	got, err := svc.GenerateDaily(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Summary != "A lovely day" {
		t.Fatalf("unexpected summary: %s", got.Summary)
	}
	if got.Date != "2026-03-14" || got.Type != types.DiaryTypeDaily {
		t.Fatalf("unexpected key fields: %+v", got)
	}
	if got.ConversationCount != 6 {
		t.Fatalf("conversation count = %d, want 6", got.ConversationCount)
	}
	if len(diaries.created) != 1 {
		t.Fatalf("summary not stored")
	}

	req := completer.requests[0]
	if req.Temperature != 0.6 || req.MaxTokens != 300 {
		t.Fatalf("unexpected sampling params: temp=%v max=%d", req.Temperature, req.MaxTokens)
	}
	if !strings.Contains(req.Turns[0].Content, "User: hi") || !strings.Contains(req.Turns[0].Content, "Bot: hey!") {
		t.Fatalf("conversation text malformed:\n%s", req.Turns[0].Content)
	}
}

func TestGenerateDailyRawTextFallback(t *testing.T) {
	completer := &fakeCompleter{reply: "We talked about life and music."}
	diaries := &fakeDiaryStore{}
	svc := NewService(completer, &fakeChatStore{count: 5}, diaries)
	svc.nowFunc = fixedNow

	got, err := svc.GenerateDaily(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Summary != "We talked about life and music." {
		t.Fatalf("raw reply should become the summary, got %q", got.Summary)
	}
}

func TestGenerateDailyUpstreamFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("boom")}
	diaries := &fakeDiaryStore{}
	svc := NewService(completer, &fakeChatStore{count: 9}, diaries)
	svc.nowFunc = fixedNow

	if _, err := svc.GenerateDaily(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error")
	}
	if len(diaries.created) != 0 {
		t.Fatalf("nothing may be stored on failure")
	}
}

func TestRewrite(t *testing.T) {
	diaries := &fakeDiaryStore{existing: &types.DiarySummary{
		ID:        3,
		Summary:   "Busy day at work",
		KeyPoints: []string{"deadline stress"},
	}}
	completer := &fakeCompleter{reply: "You pushed through a tough day 🤍"}
	svc := NewService(completer, &fakeChatStore{}, diaries)
	svc.nowFunc = fixedNow

	got, err := svc.Rewrite(context.Background(), "u1", "2026-03-13")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "You pushed through a tough day 🤍" {
		t.Fatalf("unexpected summary: %s", got)
	}
	if diaries.updatedID != 3 || diaries.updated != got {
		t.Fatalf("stored summary not updated: %+v", diaries)
	}

	req := completer.requests[0]
	if req.Temperature != 0.7 || req.MaxTokens != 80 {
		t.Fatalf("unexpected sampling params: temp=%v max=%d", req.Temperature, req.MaxTokens)
	}
	if !strings.Contains(req.Turns[0].Content, "deadline stress") {
		t.Fatalf("key points should feed the rewrite")
	}
}

func TestRewriteMissingDiary(t *testing.T) {
	svc := NewService(&fakeCompleter{}, &fakeChatStore{}, &fakeDiaryStore{})
	svc.nowFunc = fixedNow

	got, err := svc.Rewrite(context.Background(), "u1", "2026-03-13")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Fatalf("missing diary should yield empty summary")
	}
}
