package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/soulsync/soulsync/internal/types"
)

type diaryModel struct {
	ID                int `gorm:"primaryKey"`
	UserID            string `gorm:"uniqueIndex:idx_diary_user_date_type"`
	Date              string `gorm:"uniqueIndex:idx_diary_user_date_type"`
	Type              string `gorm:"uniqueIndex:idx_diary_user_date_type"`
	Summary           string
	KeyPoints         json.RawMessage `gorm:"type:jsonb"`
	Emotions          json.RawMessage `gorm:"type:jsonb"`
	Memories          json.RawMessage `gorm:"type:jsonb"`
	WeekNumber        int
	MonthNumber       int
	ConversationCount int
	LastUpdated       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (diaryModel) TableName() string {
	return "diary_summaries"
}

// DiaryRepo accesses diary summaries.
type DiaryRepo struct {
	db *gorm.DB
}

// NewDiaryRepo returns a DiaryRepo.
func NewDiaryRepo(db *gorm.DB) *DiaryRepo {
	return &DiaryRepo{db: db}
}

// Create inserts a summary. The unique (user, date, type) index makes daily
// generation idempotent under racing writers.
func (r *DiaryRepo) Create(ctx context.Context, diary *types.DiarySummary) error {
	record, err := diaryToModel(diary)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert diary summary: %w", err)
	}
	diary.ID = record.ID
	return nil
}

// Get fetches one summary by (user, date, type); returns (nil, nil) when absent.
func (r *DiaryRepo) Get(ctx context.Context, userID, date, diaryType string) (*types.DiarySummary, error) {
	var record diaryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND type = ?", userID, date, diaryType).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diary summary: %w", err)
	}
	diary := diaryFromModel(record)
	return &diary, nil
}

// GetByDate fetches any summary for (user, date); returns (nil, nil) when absent.
func (r *DiaryRepo) GetByDate(ctx context.Context, userID, date string) (*types.DiarySummary, error) {
	var record diaryModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diary summary: %w", err)
	}
	diary := diaryFromModel(record)
	return &diary, nil
}

// GetRange returns summaries created within [start, end], newest first.
func (r *DiaryRepo) GetRange(ctx context.Context, userID string, start, end time.Time) ([]types.DiarySummary, error) {
	var records []diaryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query diary summaries: %w", err)
	}

	results := make([]types.DiarySummary, 0, len(records))
	for _, record := range records {
		results = append(results, diaryFromModel(record))
	}
	return results, nil
}

// UpdateSummary rewrites the summary text of an existing record.
func (r *DiaryRepo) UpdateSummary(ctx context.Context, id int, summary string, updatedAt time.Time) error {
	updates := map[string]any{
		"summary":      summary,
		"last_updated": updatedAt,
	}
	if err := r.db.WithContext(ctx).Model(&diaryModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update diary summary: %w", err)
	}
	return nil
}

func diaryToModel(diary *types.DiarySummary) (diaryModel, error) {
	keyPoints, err := marshalJSON(diary.KeyPoints)
	if err != nil {
		return diaryModel{}, fmt.Errorf("failed to encode key points: %w", err)
	}
	emotions, err := marshalJSON(diary.Emotions)
	if err != nil {
		return diaryModel{}, fmt.Errorf("failed to encode emotions: %w", err)
	}
	memories, err := marshalJSON(diary.Memories)
	if err != nil {
		return diaryModel{}, fmt.Errorf("failed to encode memories: %w", err)
	}

	return diaryModel{
		ID:                diary.ID,
		UserID:            diary.UserID,
		Date:              diary.Date,
		Type:              diary.Type,
		Summary:           diary.Summary,
		KeyPoints:         keyPoints,
		Emotions:          emotions,
		Memories:          memories,
		WeekNumber:        diary.WeekNumber,
		MonthNumber:       diary.MonthNumber,
		ConversationCount: diary.ConversationCount,
		LastUpdated:       diary.LastUpdated,
	}, nil
}

func diaryFromModel(record diaryModel) types.DiarySummary {
	var keyPoints []string
	var emotions []string
	var memories []string
	_ = unmarshalJSON(record.KeyPoints, &keyPoints)
	_ = unmarshalJSON(record.Emotions, &emotions)
	_ = unmarshalJSON(record.Memories, &memories)
	return types.DiarySummary{
		ID:                record.ID,
		UserID:            record.UserID,
		Date:              record.Date,
		Type:              record.Type,
		Summary:           record.Summary,
		KeyPoints:         keyPoints,
		Emotions:          emotions,
		Memories:          memories,
		WeekNumber:        record.WeekNumber,
		MonthNumber:       record.MonthNumber,
		ConversationCount: record.ConversationCount,
		LastUpdated:       record.LastUpdated,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}
