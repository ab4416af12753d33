package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	preferenceWindow = 20
	// fixed width so that lexical order matches chronological order
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		skin_tone TEXT,
		undertone TEXT,
		recommendations TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wardrobe (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		item_type TEXT,
		color TEXT,
		style TEXT,
		image_url TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		recommendation_id INTEGER,
		liked BOOLEAN,
		comment TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_wardrobe_user ON wardrobe(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id)`,
}

// SQLDatabase implements DatabaseService on top of any registered SQLite driver.
type SQLDatabase struct {
	db               *sql.DB
	driver           string
	connectionString string
	now              func() time.Time
}

func openSQLDatabase(driver, connectionString string) (*SQLDatabase, error) {
	db, err := sql.Open(driver, connectionString)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer and every ":memory:" connection is a
	// separate database, so all access goes through one connection.
	db.SetMaxOpenConns(1)

	return &SQLDatabase{
		db:               db,
		driver:           driver,
		connectionString: connectionString,
		now:              time.Now,
	}, nil
}

func (s *SQLDatabase) CreateDatabase() (*sql.DB, error) {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return s.db, nil
}

func (s *SQLDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLDatabase) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *SQLDatabase) SaveRecommendation(rec *Recommendation) (int64, error) {
	if rec.UserID == "" {
		return 0, errors.New("user id is required")
	}
	res, err := s.db.Exec(
		"INSERT INTO recommendations (user_id, skin_tone, undertone, recommendations, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.UserID, rec.SkinTone, rec.Undertone, string(rec.Payload), s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("failed to save recommendation: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLDatabase) GetRecommendations(userID string, limit int) ([]*Recommendation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, skin_tone, undertone, recommendations, created_at
		FROM recommendations WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	recs := []*Recommendation{}
	for rows.Next() {
		var rec Recommendation
		var skinTone, undertone, payload sql.NullString
		var created string
		if err := rows.Scan(&rec.ID, &rec.UserID, &skinTone, &undertone, &payload, &created); err != nil {
			return nil, err
		}
		rec.SkinTone = skinTone.String
		rec.Undertone = undertone.String
		if payload.Valid && payload.String != "" {
			rec.Payload = []byte(payload.String)
		}
		if rec.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

func (s *SQLDatabase) AddWardrobeItem(item *WardrobeItem) (int64, error) {
	if item.UserID == "" {
		return 0, errors.New("user id is required")
	}
	res, err := s.db.Exec(
		"INSERT INTO wardrobe (user_id, item_type, color, style, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		item.UserID, item.ItemType, item.Color, item.Style, item.ImageURL, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("failed to add wardrobe item: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLDatabase) GetWardrobe(userID string) ([]*WardrobeItem, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, item_type, color, style, image_url, created_at
		FROM wardrobe WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	items := []*WardrobeItem{}
	for rows.Next() {
		var item WardrobeItem
		var itemType, color, style, imageURL sql.NullString
		var created string
		if err := rows.Scan(&item.ID, &item.UserID, &itemType, &color, &style, &imageURL, &created); err != nil {
			return nil, err
		}
		item.ItemType = itemType.String
		item.Color = color.String
		item.Style = style.String
		item.ImageURL = imageURL.String
		if item.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *SQLDatabase) SaveFeedback(feedback *Feedback) (int64, error) {
	if feedback.UserID == "" {
		return 0, errors.New("user id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var recommendationID any
	if feedback.RecommendationID != nil {
		var exists int
		err := tx.QueryRow("SELECT 1 FROM recommendations WHERE id = ?", *feedback.RecommendationID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownRecommendation, *feedback.RecommendationID)
		}
		if err != nil {
			return 0, err
		}
		recommendationID = *feedback.RecommendationID
	}

	res, err := tx.Exec(
		"INSERT INTO feedback (user_id, recommendation_id, liked, comment, created_at) VALUES (?, ?, ?, ?, ?)",
		feedback.UserID, recommendationID, feedback.Liked, feedback.Comment, s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("failed to save feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func (s *SQLDatabase) GetUserPreferences(userID string) (*Preferences, error) {
	rows, err := s.db.Query(
		"SELECT liked FROM feedback WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		userID, preferenceWindow)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	prefs := &Preferences{}
	liked := 0
	for rows.Next() {
		var l sql.NullBool
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		prefs.TotalFeedback++
		if l.Bool {
			liked++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if prefs.TotalFeedback > 0 {
		prefs.LikedPercentage = float64(liked) / float64(prefs.TotalFeedback) * 100
	}
	return prefs, nil
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, nil
}
