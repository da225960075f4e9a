package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/rmp/internal/models"
)

// HistoryRepository records tracks as they become current in the player.
type HistoryRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db, now: time.Now}
}

// Record appends track to the history.
func (r *HistoryRepository) Record(track models.Track) error {
	query := `
		INSERT INTO play_history (track_id, title, subreddit, media_id, url, played_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, track.ID, track.Title, track.Subreddit, track.MediaID, track.URL, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *HistoryRepository) Recent(limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT id, track_id, title, subreddit, media_id, url, played_at
		FROM play_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.TrackID, &e.Title, &e.Subreddit, &e.MediaID, &e.URL, &e.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes all history entries.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM play_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
