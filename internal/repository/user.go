package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/soulsync/soulsync/internal/types"
)

type userModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string

	Age      int
	Language string

	BotName          string
	BotAge           int
	BotGender        string
	RelationshipMode string

	RelationshipStage     int
	RomanticIndicators    int
	LastRelationshipShift *time.Time

	Personality string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string {
	return "users"
}

// UserRepo provides access to the users table.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo returns a UserRepo.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *types.User) error {
	record := userToModel(user)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by id; returns (nil, nil) when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*types.User, error) {
	var record userModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	user := userFromModel(record)
	return &user, nil
}

// GetByEmail fetches a user by email; returns (nil, nil) when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	var record userModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	user := userFromModel(record)
	return &user, nil
}

// EmailTaken reports whether another account already uses email.
func (r *UserRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&userModel{}).Where("email = ?", email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Save overwrites the stored record with user.
func (r *UserRepo) Save(ctx context.Context, user *types.User) error {
	record := userToModel(user)
	if err := r.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// UpdateRelationship persists only the relationship evolution fields.
func (r *UserRepo) UpdateRelationship(ctx context.Context, id string, stage, indicators int, mode string, lastShift *time.Time) error {
	updates := map[string]any{
		"relationship_stage":      stage,
		"romantic_indicators":     indicators,
		"relationship_mode":       mode,
		"last_relationship_shift": lastShift,
	}
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update relationship state: %w", err)
	}
	return nil
}

// SetPersonality updates the personality mode.
func (r *UserRepo) SetPersonality(ctx context.Context, id, mode string) error {
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Update("personality", mode).Error; err != nil {
		return fmt.Errorf("failed to set personality: %w", err)
	}
	return nil
}

// SetRelationshipMode updates the relationship mode.
func (r *UserRepo) SetRelationshipMode(ctx context.Context, id, mode string) error {
	if err := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Update("relationship_mode", mode).Error; err != nil {
		return fmt.Errorf("failed to set relationship mode: %w", err)
	}
	return nil
}

func userToModel(user *types.User) userModel {
	return userModel{
		ID:                    user.ID,
		Name:                  user.Name,
		Email:                 user.Email,
		PasswordHash:          user.PasswordHash,
		Age:                   user.Age,
		Language:              user.Language,
		BotName:               user.BotName,
		BotAge:                user.BotAge,
		BotGender:             user.BotGender,
		RelationshipMode:      user.RelationshipMode,
		RelationshipStage:     user.RelationshipStage,
		RomanticIndicators:    user.RomanticIndicators,
		LastRelationshipShift: user.LastRelationshipShift,
		Personality:           user.Personality,
		CreatedAt:             user.CreatedAt,
		UpdatedAt:             user.UpdatedAt,
	}
}

func userFromModel(record userModel) types.User {
	return types.User{
		ID:                    record.ID,
		Name:                  record.Name,
		Email:                 record.Email,
		PasswordHash:          record.PasswordHash,
		Age:                   record.Age,
		Language:              record.Language,
		BotName:               record.BotName,
		BotAge:                record.BotAge,
		BotGender:             record.BotGender,
		RelationshipMode:      record.RelationshipMode,
		RelationshipStage:     record.RelationshipStage,
		RomanticIndicators:    record.RomanticIndicators,
		LastRelationshipShift: record.LastRelationshipShift,
		Personality:           record.Personality,
		CreatedAt:             record.CreatedAt,
		UpdatedAt:             record.UpdatedAt,
	}
}
