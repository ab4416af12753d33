package database

import (
	"encoding/json"
	"time"
)

type Recommendation struct {
	ID        int64           `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	SkinTone  string          `json:"skin_tone" db:"skin_tone"`
	Undertone string          `json:"undertone" db:"undertone"`
	Payload   json.RawMessage `json:"recommendations" db:"recommendations"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type WardrobeItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ItemType  string    `json:"type" db:"item_type"`
	Color     string    `json:"color" db:"color"`
	Style     string    `json:"style" db:"style"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Feedback struct {
	ID               int64     `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	RecommendationID *int64    `json:"recommendation_id,omitempty" db:"recommendation_id"`
	Liked            bool      `json:"liked" db:"liked"`
	Comment          string    `json:"comment" db:"comment"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Preferences summarizes the most recent feedback of a user.
type Preferences struct {
	LikedPercentage float64 `json:"liked_percentage"`
	TotalFeedback   int     `json:"total_feedback"`
}
