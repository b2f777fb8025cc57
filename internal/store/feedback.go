package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"goodwatch/internal/catalog"
	"goodwatch/internal/services"
)

// Feedback is a viewer's verdict on one set of recommendations.
type Feedback struct {
	ID              int64           `json:"id"`
	SessionID       string          `json:"session_id"`
	Mood            string          `json:"user_mood"`
	WasHelpful      bool            `json:"was_helpful"`
	Text            string          `json:"feedback_text,omitempty"`
	Recommendations []catalog.Movie `json:"recommendations"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RecordFeedback appends a feedback row and returns its id.
func (s *Store) RecordFeedback(ctx context.Context, fb Feedback) (int64, error) {
	fb.SessionID = strings.TrimSpace(fb.SessionID)
	if fb.SessionID == "" {
		return 0, services.Wrap(services.ErrValidation, "store", "record feedback", "session id must not be empty", nil)
	}
	recs := fb.Recommendations
	if recs == nil {
		recs = []catalog.Movie{}
	}
	encoded, err := json.Marshal(recs)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "store", "record feedback", "encode recommendations", err)
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO feedback (session_id, user_mood, was_helpful, feedback_text, recommendations, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		fb.SessionID, strings.TrimSpace(fb.Mood), boolToInt(fb.WasHelpful),
		nullableString(strings.TrimSpace(fb.Text)), string(encoded), s.timestamp(),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "store", "record feedback", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "store", "record feedback", "read id", err)
	}
	return id, nil
}

// ListFeedback returns the newest feedback rows first.
func (s *Store) ListFeedback(ctx context.Context, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_mood, was_helpful, feedback_text, recommendations, created_at
         FROM feedback ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list feedback", "", err)
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var (
			fb      Feedback
			helpful int
			text    sql.NullString
			recs    sql.NullString
			created string
		)
		if err := rows.Scan(&fb.ID, &fb.SessionID, &fb.Mood, &helpful, &text, &recs, &created); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "list feedback", "scan row", err)
		}
		fb.WasHelpful = helpful != 0
		fb.Text = text.String
		if recs.Valid && recs.String != "" {
			_ = json.Unmarshal([]byte(recs.String), &fb.Recommendations)
		}
		if ts, err := parseTimeString(created); err == nil {
			fb.CreatedAt = ts
		}
		items = append(items, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list feedback", "iterate rows", err)
	}
	return items, nil
}
