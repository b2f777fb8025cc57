package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/services"
)

// WatchedEntry is one "already watched" mark recorded for a session.
type WatchedEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Title     string    `json:"movie_title"`
	Year      int       `json:"movie_year,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordWatched appends a watched mark. Repeated marks for the same movie are
// kept as separate rows.
func (s *Store) RecordWatched(ctx context.Context, sessionID, title string, year int) (int64, error) {
	sessionID = strings.TrimSpace(sessionID)
	title = strings.TrimSpace(title)
	if sessionID == "" {
		return 0, services.Wrap(services.ErrValidation, "store", "record watched", "session id must not be empty", nil)
	}
	if title == "" {
		return 0, services.Wrap(services.ErrValidation, "store", "record watched", "movie title must not be empty", nil)
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO watched_movies (session_id, movie_title, movie_year, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, title, nullableInt(int64(year)), s.timestamp(),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "store", "record watched", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "store", "record watched", "read id", err)
	}
	return id, nil
}

// ListWatched returns a session's watched marks in the order they were made.
func (s *Store) ListWatched(ctx context.Context, sessionID string) ([]WatchedEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, movie_title, movie_year, created_at
         FROM watched_movies WHERE session_id = ? ORDER BY id`,
		strings.TrimSpace(sessionID),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list watched", "", err)
	}
	defer rows.Close()

	var entries []WatchedEntry
	for rows.Next() {
		var (
			entry   WatchedEntry
			year    sql.NullInt64
			created string
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Title, &year, &created); err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "list watched", "scan row", err)
		}
		entry.Year = int(year.Int64)
		if ts, err := parseTimeString(created); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "list watched", "iterate rows", err)
	}
	return entries, nil
}

// WatchedExclusions builds the exclusion set for a session's history.
func (s *Store) WatchedExclusions(ctx context.Context, sessionID string) (*catalog.Exclusions, error) {
	excl := catalog.NewExclusions()
	if strings.TrimSpace(sessionID) == "" {
		return excl, nil
	}
	entries, err := s.ListWatched(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		excl.Add(entry.Title, entry.Year)
	}
	return excl, nil
}
