// Package chat orchestrates one conversational turn end to end.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/soulsync/soulsync/internal/apperr"
	"github.com/soulsync/soulsync/internal/background"
	"github.com/soulsync/soulsync/internal/emotion"
	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/prompt"
	"github.com/soulsync/soulsync/internal/relationship"
	"github.com/soulsync/soulsync/internal/types"
)

const (
	replyTemperature = 0.85
	replyMaxTokens   = 200
)

// UserStore is the user persistence surface this service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*types.User, error)
	UpdateRelationship(ctx context.Context, id string, stage, indicators int, mode string, lastShift *time.Time) error
}

// ChatStore persists and reads chat turns.
type ChatStore interface {
	Add(ctx context.Context, msg *types.ChatMessage) error
	GetRecent(ctx context.Context, userID string, limit int) ([]types.ChatMessage, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]types.ChatMessage, error)
}

// ContextProvider supplies memories and today's diary for the prompt.
type ContextProvider interface {
	RelevantContext(ctx context.Context, userID string) ([]types.Memory, *types.DiarySummary, error)
}

// Extractor mines a message for durable memories.
type Extractor interface {
	ExtractFromMessage(ctx context.Context, userID, message string) error
}

// DiaryGenerator produces the daily summary.
type DiaryGenerator interface {
	GenerateDaily(ctx context.Context, userID string) (*types.DiarySummary, error)
}

// TaskQueue accepts fire-and-forget work.
type TaskQueue interface {
	Submit(task background.Task)
}

// Result is the outcome of one send-message turn.
type Result struct {
	Reply          string        `json:"reply"`
	EmotionalState emotion.Label `json:"emotionalState"`
	Stage          int           `json:"relationshipStage"`
	StageChanged   bool          `json:"stageChanged"`
}

// Status is the relationship snapshot returned to clients.
type Status struct {
	CurrentStage       string     `json:"currentStage"`
	StageNumber        int        `json:"stageNumber"`
	RelationshipMode   string     `json:"relationshipMode"`
	RomanticIndicators int        `json:"romanticIndicators"`
	LastShift          *time.Time `json:"lastShift,omitempty"`
	NextMilestone      int        `json:"nextMilestone"`
}

// Service runs the send-message pipeline.
type Service struct {
	users        UserStore
	chats        ChatStore
	memories     ContextProvider
	extractor    Extractor
	diary        DiaryGenerator
	completer    models.Completer
	tasks        TaskQueue
	builder      *prompt.Builder
	machine      *relationship.StateMachine
	historyLimit int
	nowFunc      func() time.Time
}

// NewService wires the send-message pipeline together.
func NewService(users UserStore, chats ChatStore, memories ContextProvider, extractor Extractor, diary DiaryGenerator, completer models.Completer, tasks TaskQueue, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 6
	}
	return &Service{
		users:        users,
		chats:        chats,
		memories:     memories,
		extractor:    extractor,
		diary:        diary,
		completer:    completer,
		tasks:        tasks,
		builder:      prompt.NewBuilder(),
		machine:      relationship.NewStateMachine(),
		historyLimit: historyLimit,
		nowFunc:      time.Now,
	}
}

// SendMessage runs one conversational turn: classify the message, advance the
// relationship, assemble the prompt, call the completion service, persist both
// turns, and queue memory extraction plus the daily diary. No chat message is
// persisted when the completion call fails.
func (s *Service) SendMessage(ctx context.Context, userID, message string) (*Result, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.New(apperr.KindBadRequest, "message is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	history, err := s.chats.GetRecent(ctx, userID, s.historyLimit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load chat history", err)
	}

	label := emotion.Classify(message)
	style := emotion.ClassifyStyle(message)
	romantic := emotion.DetectRomanticSignal(message)

	state := relationship.State{
		Stage:              user.RelationshipStage,
		RomanticIndicators: user.RomanticIndicators,
		RelationshipMode:   user.RelationshipMode,
		BotGender:          user.BotGender,
		LastShift:          user.LastRelationshipShift,
	}
	next, changed := s.machine.Advance(state, romantic, s.nowFunc())
	stageChanged := next.Stage != state.Stage
	if changed {
		if err := s.users.UpdateRelationship(ctx, userID, next.Stage, next.RomanticIndicators, next.RelationshipMode, next.LastShift); err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "failed to update relationship", err)
		}
		user.RelationshipStage = next.Stage
		user.RomanticIndicators = next.RomanticIndicators
		user.RelationshipMode = next.RelationshipMode
		user.LastRelationshipShift = next.LastShift
	}

	memories, todayDiary, err := s.memories.RelevantContext(ctx, userID)
	if err != nil {
		// Context enrichment is best-effort; the turn proceeds without it.
		slog.Warn("failed to load memory context", "user_id", userID, "error", err)
		memories, todayDiary = nil, nil
	}

	system, err := s.builder.Build(prompt.Input{
		User:       user,
		Emotion:    label,
		Style:      style,
		Memories:   memories,
		TodayDiary: todayDiary,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "failed to build prompt", err)
	}

	turns := make([]models.Turn, 0, len(history)+1)
	for _, msg := range history {
		role := "assistant"
		if msg.From == types.SenderUser {
			role = "user"
		}
		turns = append(turns, models.Turn{Role: role, Content: msg.Message})
	}
	turns = append(turns, models.Turn{Role: "user", Content: message})

	reply, err := s.completer.Complete(ctx, models.CompletionRequest{
		System:      system,
		Turns:       turns,
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "completion service unavailable", err)
	}

	if err := s.chats.Add(ctx, &types.ChatMessage{UserID: userID, From: types.SenderUser, Message: message}); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to save message", err)
	}
	if err := s.chats.Add(ctx, &types.ChatMessage{UserID: userID, From: strings.ToLower(user.BotName), Message: reply}); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to save reply", err)
	}

	s.tasks.Submit(background.Task{
		Name: "memory-extraction",
		Run: func(taskCtx context.Context) error {
			return s.extractor.ExtractFromMessage(taskCtx, userID, message)
		},
	})
	s.tasks.Submit(background.Task{
		Name: "daily-diary",
		Run: func(taskCtx context.Context) error {
			_, err := s.diary.GenerateDaily(taskCtx, userID)
			return err
		},
	})

	return &Result{
		Reply:          reply,
		EmotionalState: label,
		Stage:          user.RelationshipStage,
		StageChanged:   stageChanged,
	}, nil
}

// RelationshipStatus reports the user's current stage and progress.
func (s *Service) RelationshipStatus(ctx context.Context, userID string) (*Status, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load user", err)
	}
	if user == nil {
		return nil, apperr.New(apperr.KindNotFound, "user not found")
	}

	state := relationship.State{
		Stage:              user.RelationshipStage,
		RomanticIndicators: user.RomanticIndicators,
	}
	return &Status{
		CurrentStage:       relationship.StageName(user.RelationshipStage),
		StageNumber:        user.RelationshipStage,
		RelationshipMode:   user.RelationshipMode,
		RomanticIndicators: user.RomanticIndicators,
		LastShift:          user.LastRelationshipShift,
		NextMilestone:      relationship.NextMilestone(state),
	}, nil
}

// History returns the stored conversation, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]types.ChatMessage, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	msgs, err := s.chats.GetHistory(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to load chat history", err)
	}
	return msgs, nil
}

// Save appends one chat message verbatim, the client-driven save path.
func (s *Service) Save(ctx context.Context, userID, from, message, image string) (*types.ChatMessage, error) {
	if userID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	if strings.TrimSpace(message) == "" && image == "" {
		return nil, apperr.New(apperr.KindBadRequest, "message is required")
	}
	if from == "" {
		from = types.SenderUser
	}
	msg := &types.ChatMessage{UserID: userID, From: from, Message: message, Image: image}
	if err := s.chats.Add(ctx, msg); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "failed to save message", err)
	}
	return msg, nil
}
