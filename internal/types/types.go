// Package types holds the persisted domain records shared across services.
package types

import "time"

// Personality modes the bot can adopt.
const (
	PersonalityCaring   = "caring"
	PersonalityPlayful  = "playful"
	PersonalityRomantic = "romantic"
	PersonalityDeep     = "deep"
)

// Relationship modes presented to the user.
const (
	RelationshipModeFriend     = "friend"
	RelationshipModeGirlfriend = "girlfriend"
	RelationshipModeBoyfriend  = "boyfriend"
)

// Bot gender values.
const (
	GenderMale      = "male"
	GenderFemale    = "female"
	GenderNonBinary = "non-binary"
)

// Memory type values.
const (
	MemoryTypeFact         = "fact"
	MemoryTypePreference   = "preference"
	MemoryTypeEvent        = "event"
	MemoryTypeEmotion      = "emotion"
	MemoryTypeConversation = "conversation"
)

// Diary summary types.
const (
	DiaryTypeDaily   = "daily"
	DiaryTypeWeekly  = "weekly"
	DiaryTypeMonthly = "monthly"
	DiaryTypeMemory  = "memory"
)

// SenderUser tags chat messages written by the human side.
const SenderUser = "user"

// User is an account plus its bot persona and relationship state.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	Age      int    `json:"age,omitempty"`
	Language string `json:"language"`

	BotName          string `json:"bot_name"`
	BotAge           int    `json:"bot_age"`
	BotGender        string `json:"bot_gender"`
	RelationshipMode string `json:"relationship_mode"`

	// RelationshipStage is 0=friend, 1=close friend, 2=romantic feelings
	// emerging, 3=in love. It never decreases.
	RelationshipStage     int        `json:"relationship_stage"`
	RomanticIndicators    int        `json:"romantic_indicators"`
	LastRelationshipShift *time.Time `json:"last_relationship_shift,omitempty"`

	Personality string `json:"personality"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one append-only chat turn. From is "user" or the bot name.
type ChatMessage struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	Message   string    `json:"message"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory is a durable fact extracted from conversation.
type Memory struct {
	ID             int       `json:"id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Context        string    `json:"context,omitempty"`
	Importance     int       `json:"importance"`
	Tags           []string  `json:"tags"`
	FirstMentioned time.Time `json:"first_mentioned"`
	LastMentioned  time.Time `json:"last_mentioned"`
	Frequency      int       `json:"frequency"`
	Related        []string  `json:"related,omitempty"`
	Embedding      []float32 `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DiarySummary is a generated digest of one period of conversation.
// Date is YYYY-MM-DD; at most one daily summary exists per (user, date).
type DiarySummary struct {
	ID                int        `json:"id"`
	UserID            string     `json:"user_id"`
	Date              string     `json:"date"`
	Type              string     `json:"type"`
	Summary           string     `json:"summary"`
	KeyPoints         []string   `json:"key_points"`
	Emotions          []string   `json:"emotions"`
	Memories          []string   `json:"memories"`
	WeekNumber        int        `json:"week_number,omitempty"`
	MonthNumber       int        `json:"month_number,omitempty"`
	ConversationCount int        `json:"conversation_count"`
	LastUpdated       *time.Time `json:"last_updated,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ValidPersonality reports whether mode is a known personality mode.
func ValidPersonality(mode string) bool {
	switch mode {
	case PersonalityCaring, PersonalityPlayful, PersonalityRomantic, PersonalityDeep:
		return true
	}
	return false
}

// ValidRelationshipMode reports whether mode is a known relationship mode.
func ValidRelationshipMode(mode string) bool {
	switch mode {
	case RelationshipModeFriend, RelationshipModeGirlfriend, RelationshipModeBoyfriend:
		return true
	}
	return false
}

// ValidGender reports whether gender is a supported bot gender.
func ValidGender(gender string) bool {
	switch gender {
	case GenderMale, GenderFemale, GenderNonBinary:
		return true
	}
	return false
}

// ValidMemoryType reports whether t is a known memory type.
func ValidMemoryType(t string) bool {
	switch t {
	case MemoryTypeFact, MemoryTypePreference, MemoryTypeEvent, MemoryTypeEmotion, MemoryTypeConversation:
		return true
	}
	return false
}
