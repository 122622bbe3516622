// Package memory extracts durable facts from conversation and retrieves them
// for prompt context.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/soulsync/soulsync/internal/models"
	"github.com/soulsync/soulsync/internal/types"
)

const (
	importanceThreshold = 6
	relevantImportance  = 5
	semanticTopK        = 10

	importanceInstruction = "Rate if this user message contains important personal information to remember (1-10). Respond with just a number."
	extractionInstruction = "Extract the key information from this message that should be remembered. Return JSON with: title, content, tags (array)"
)

// MemoryStore is the persistence surface this service needs.
type MemoryStore interface {
	Add(ctx context.Context, mem *types.Memory) error
	GetRelevant(ctx context.Context, userID string, minImportance, limit int) ([]types.Memory, error)
	Search(ctx context.Context, userID, query string) ([]types.Memory, error)
	SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int) ([]types.Memory, error)
}

// DiaryStore provides today's summary for prompt context.
type DiaryStore interface {
	Get(ctx context.Context, userID, date, diaryType string) (*types.DiarySummary, error)
}

// Service ties extraction and retrieval together.
type Service struct {
	completer models.Completer
	embedder  Embedder
	memories  MemoryStore
	diaries   DiaryStore
	limit     int
	nowFunc   func() time.Time

	extractionSchema map[string]any
}

// NewService returns a memory Service. embedder may be nil, which disables
// semantic search.
func NewService(completer models.Completer, embedder Embedder, memories MemoryStore, diaries DiaryStore, limit int) *Service {
	schema, err := models.SchemaFor[extracted]()
	if err != nil {
		// Reflection over a fixed struct; failure would be a programming error.
		slog.Warn("failed to build extraction schema", "error", err)
	}
	if limit <= 0 {
		limit = 5
	}
	return &Service{
		completer:        completer,
		embedder:         embedder,
		memories:         memories,
		diaries:          diaries,
		limit:            limit,
		nowFunc:          time.Now,
		extractionSchema: schema,
	}
}

// RelevantContext returns the memories and today's diary used to enrich the
// system prompt: up to limit memories with importance >= 5, most recently
// referenced first.
func (s *Service) RelevantContext(ctx context.Context, userID string) ([]types.Memory, *types.DiarySummary, error) {
	memories, err := s.memories.GetRelevant(ctx, userID, relevantImportance, s.limit)
	if err != nil {
		return nil, nil, err
	}

	today := s.nowFunc().Format("2006-01-02")
	diary, err := s.diaries.Get(ctx, userID, today, types.DiaryTypeDaily)
	if err != nil {
		return memories, nil, err
	}
	return memories, diary, nil
}

// ExtractFromMessage rates a message's importance and, when it scores >= 6,
// extracts and stores a memory. Intended to run as a background task; the
// caller discards errors.
func (s *Service) ExtractFromMessage(ctx context.Context, userID, message string) error {
	rating, err := s.completer.Complete(ctx, models.CompletionRequest{
		System:      importanceInstruction,
		Turns:       []models.Turn{{Role: "user", Content: message}},
		Temperature: 0.3,
		MaxTokens:   10,
	})
	if err != nil {
		return fmt.Errorf("importance call failed: %w", err)
	}

	importance := parseImportance(rating)
	if importance < importanceThreshold {
		return nil
	}

	raw, err := s.completer.Complete(ctx, models.CompletionRequest{
		System:      extractionInstruction,
		Turns:       []models.Turn{{Role: "user", Content: message}},
		Temperature: 0.5,
		MaxTokens:   200,
		SchemaName:  "memory_extraction",
		Schema:      s.extractionSchema,
	})
	if err != nil {
		return fmt.Errorf("extraction call failed: %w", err)
	}

	out, err := parseExtracted(raw)
	if err != nil {
		return err
	}

	now := s.nowFunc()
	mem := &types.Memory{
		UserID:         userID,
		Type:           types.MemoryTypeFact,
		Title:          out.Title,
		Content:        out.Content,
		Tags:           out.Tags,
		Importance:     importance,
		FirstMentioned: now,
		LastMentioned:  now,
		Frequency:      1,
	}
	if mem.Title == "" {
		mem.Title = truncate(message, 50)
	}
	if mem.Content == "" {
		mem.Content = message
	}

	if s.embedder != nil {
		embedding, err := s.embedder.EmbedDocument(ctx, mem.Content)
		if err != nil {
			slog.Debug("failed to embed memory, storing without vector", "error", err)
		} else {
			mem.Embedding = embedding
		}
	}

	if err := s.memories.Add(ctx, mem); err != nil {
		return fmt.Errorf("failed to store memory: %w", err)
	}
	return nil
}

// Search matches memories by keyword, semantically re-ranked when an
// embedder is configured.
func (s *Service) Search(ctx context.Context, userID, query string) ([]types.Memory, error) {
	keyword, err := s.memories.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	if s.embedder == nil {
		return keyword, nil
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.Debug("failed to embed search query, keyword results only", "error", err)
		return keyword, nil
	}

	semantic, err := s.memories.SearchSimilar(ctx, userID, embedding, semanticTopK)
	if err != nil {
		slog.Debug("semantic search failed, keyword results only", "error", err)
		return keyword, nil
	}

	return mergeResults(semantic, keyword), nil
}

// mergeResults keeps semantic ordering first, then keyword-only hits.
func mergeResults(semantic, keyword []types.Memory) []types.Memory {
	seen := make(map[int]bool, len(semantic))
	merged := make([]types.Memory, 0, len(semantic)+len(keyword))
	for _, mem := range semantic {
		seen[mem.ID] = true
		merged = append(merged, mem)
	}
	for _, mem := range keyword {
		if !seen[mem.ID] {
			merged = append(merged, mem)
		}
	}
	return merged
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
