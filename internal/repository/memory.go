package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/soulsync/soulsync/internal/types"
)

type memoryModel struct {
	ID             int `gorm:"primaryKey"`
	UserID         string
	Type           string
	Title          string
	Content        string
	Context        string
	Importance     int
	Tags           json.RawMessage `gorm:"type:jsonb"`
	Related        json.RawMessage `gorm:"type:jsonb"`
	FirstMentioned time.Time
	LastMentioned  time.Time
	Frequency      int
	// Embedding stores a vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (memoryModel) TableName() string {
	return "memories"
}

// MemoryRepo accesses memory data.
type MemoryRepo struct {
	db *gorm.DB
}

// NewMemoryRepo returns a MemoryRepo.
func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// Add inserts a memory record.
func (r *MemoryRepo) Add(ctx context.Context, mem *types.Memory) error {
	record, err := memoryToModel(mem)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	mem.ID = record.ID
	return nil
}

// GetAll returns a user's memories, most important and most recently
// referenced first.
func (r *MemoryRepo) GetAll(ctx context.Context, userID string, limit int) ([]types.Memory, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("importance DESC, last_mentioned DESC").
		Limit(limit))
}

// GetImportant returns memories at or above minImportance, most recently
// referenced first.
func (r *MemoryRepo) GetImportant(ctx context.Context, userID string, minImportance, limit int) ([]types.Memory, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("user_id = ? AND importance >= ?", userID, minImportance).
		Order("last_mentioned DESC, importance DESC").
		Limit(limit))
}

// GetRelevant returns prompt-context memories: importance at or above
// minImportance, most recently referenced first.
func (r *MemoryRepo) GetRelevant(ctx context.Context, userID string, minImportance, limit int) ([]types.Memory, error) {
	return r.find(ctx, r.db.WithContext(ctx).
		Where("user_id = ? AND importance >= ?", userID, minImportance).
		Order("last_mentioned DESC").
		Limit(limit))
}

// GetByTag returns memories carrying the given tag.
func (r *MemoryRepo) GetByTag(ctx context.Context, userID, tag string) ([]types.Memory, error) {
	tagJSON, err := json.Marshal([]string{tag})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag: %w", err)
	}
	return r.find(ctx, r.db.WithContext(ctx).
		Where("user_id = ? AND tags @> ?", userID, string(tagJSON)).
		Order("last_mentioned DESC"))
}

// Search matches query against title, content, and tags.
func (r *MemoryRepo) Search(ctx context.Context, userID, query string) ([]types.Memory, error) {
	pattern := "%" + query + "%"
	return r.find(ctx, r.db.WithContext(ctx).
		Where("user_id = ? AND (title ILIKE ? OR content ILIKE ? OR tags::text ILIKE ?)", userID, pattern, pattern, pattern).
		Order("importance DESC, last_mentioned DESC"))
}

// SearchSimilar ranks a user's embedded memories by cosine similarity.
func (r *MemoryRepo) SearchSimilar(ctx context.Context, userID string, embedding []float32, topK int) ([]types.Memory, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	query := `
		SELECT *
		FROM memories
		WHERE user_id = $2
		  AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $3`

	var records []memoryModel
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), userID, topK).
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}

	results := make([]types.Memory, 0, len(records))
	for _, record := range records {
		results = append(results, memoryFromModel(record))
	}
	return results, nil
}

// Delete removes a memory owned by userID. Returns the removed record, or
// (nil, nil) when absent.
func (r *MemoryRepo) Delete(ctx context.Context, userID string, id int) (*types.Memory, error) {
	var record memoryModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load memory: %w", err)
	}

	if err := r.db.WithContext(ctx).Delete(&memoryModel{}, record.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to delete memory: %w", err)
	}
	mem := memoryFromModel(record)
	return &mem, nil
}

func (r *MemoryRepo) find(ctx context.Context, query *gorm.DB) ([]types.Memory, error) {
	var records []memoryModel
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}

	results := make([]types.Memory, 0, len(records))
	for _, record := range records {
		results = append(results, memoryFromModel(record))
	}
	return results, nil
}

func memoryToModel(mem *types.Memory) (memoryModel, error) {
	tags, err := marshalJSON(mem.Tags)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode memory tags: %w", err)
	}
	related, err := marshalJSON(mem.Related)
	if err != nil {
		return memoryModel{}, fmt.Errorf("failed to encode related memories: %w", err)
	}

	var vector *pgvector.Vector
	if len(mem.Embedding) > 0 {
		v := pgvector.NewVector(mem.Embedding)
		vector = &v
	}

	return memoryModel{
		ID:             mem.ID,
		UserID:         mem.UserID,
		Type:           mem.Type,
		Title:          mem.Title,
		Content:        mem.Content,
		Context:        mem.Context,
		Importance:     mem.Importance,
		Tags:           tags,
		Related:        related,
		FirstMentioned: mem.FirstMentioned,
		LastMentioned:  mem.LastMentioned,
		Frequency:      mem.Frequency,
		Embedding:      vector,
	}, nil
}

func memoryFromModel(record memoryModel) types.Memory {
	var tags []string
	var related []string
	_ = unmarshalJSON(record.Tags, &tags)
	_ = unmarshalJSON(record.Related, &related)
	return types.Memory{
		ID:             record.ID,
		UserID:         record.UserID,
		Type:           record.Type,
		Title:          record.Title,
		Content:        record.Content,
		Context:        record.Context,
		Importance:     record.Importance,
		Tags:           tags,
		Related:        related,
		FirstMentioned: record.FirstMentioned,
		LastMentioned:  record.LastMentioned,
		Frequency:      record.Frequency,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
