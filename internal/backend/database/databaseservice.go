package database

import (
	"database/sql"
	"errors"
)

var ErrUnknownRecommendation = errors.New("unknown recommendation")

type DatabaseService interface {
	CreateDatabase() (*sql.DB, error)
	DoesDatabaseExist() bool
	Close() error

	SaveRecommendation(rec *Recommendation) (int64, error)
	// GetRecommendations returns the newest recommendations for a user.
	// A limit of zero or less returns all of them.
	GetRecommendations(userID string, limit int) ([]*Recommendation, error)

	AddWardrobeItem(item *WardrobeItem) (int64, error)
	GetWardrobe(userID string) ([]*WardrobeItem, error)

	// SaveFeedback rejects feedback that names a recommendation id that was
	// never stored with ErrUnknownRecommendation.
	SaveFeedback(feedback *Feedback) (int64, error)
	GetUserPreferences(userID string) (*Preferences, error)
}
