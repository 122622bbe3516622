package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/soulsync/soulsync/internal/types"
)

type chatMessageModel struct {
	ID        int `gorm:"primaryKey"`
	UserID    string
	From      string `gorm:"column:sender"`
	Message   string
	Image     string
	CreatedAt time.Time
}

func (chatMessageModel) TableName() string {
	return "chat_messages"
}

// ChatRepo accesses the append-only chat history.
type ChatRepo struct {
	db *gorm.DB
}

// NewChatRepo returns a ChatRepo.
func NewChatRepo(db *gorm.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// Add appends one message.
func (r *ChatRepo) Add(ctx context.Context, msg *types.ChatMessage) error {
	record := chatMessageModel{
		UserID:    msg.UserID,
		From:      msg.From,
		Message:   msg.Message,
		Image:     msg.Image,
		CreatedAt: msg.CreatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	msg.ID = record.ID
	msg.CreatedAt = record.CreatedAt
	return nil
}

// GetRecent returns the newest messages for a user, oldest first.
func (r *ChatRepo) GetRecent(ctx context.Context, userID string, limit int) ([]types.ChatMessage, error) {
	var records []chatMessageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}

	results := make([]types.ChatMessage, 0, len(records))
	for _, record := range records {
		results = append(results, chatMessageFromModel(record))
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// GetHistory returns up to limit messages in chronological order.
func (r *ChatRepo) GetHistory(ctx context.Context, userID string, limit int) ([]types.ChatMessage, error) {
	var records []chatMessageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}

	results := make([]types.ChatMessage, 0, len(records))
	for _, record := range records {
		results = append(results, chatMessageFromModel(record))
	}
	return results, nil
}

// CountForDay counts a user's messages within the calendar day containing day.
func (r *ChatRepo) CountForDay(ctx context.Context, userID string, day time.Time) (int, error) {
	start, end := dayBounds(day)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&chatMessageModel{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return int(count), nil
}

// GetForDay returns a user's messages for one calendar day, oldest first.
func (r *ChatRepo) GetForDay(ctx context.Context, userID string, day time.Time) ([]types.ChatMessage, error) {
	start, end := dayBounds(day)
	var records []chatMessageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query day's chat messages: %w", err)
	}

	results := make([]types.ChatMessage, 0, len(records))
	for _, record := range records {
		results = append(results, chatMessageFromModel(record))
	}
	return results, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func chatMessageFromModel(record chatMessageModel) types.ChatMessage {
	return types.ChatMessage{
		ID:        record.ID,
		UserID:    record.UserID,
		From:      record.From,
		Message:   record.Message,
		Image:     record.Image,
		CreatedAt: record.CreatedAt,
	}
}
