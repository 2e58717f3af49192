package repository

import (
	"fmt"

	"rocketlearn/internal/database"
	"rocketlearn/internal/models"
)

// CompletionRepository is the append-only log of completion events.
// Progress counters on the user are derived state; the log is the
// record of what actually happened.
type CompletionRepository struct {
	db *database.DB
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *database.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Record appends a completion event.
func (r *CompletionRepository) Record(event models.CompletionEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO completions (id, user_id, activity_id, kind, xp_earned, score, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, event.ID, event.UserID, event.ActivityID, event.Kind, event.XPEarned, event.Score, event.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	return nil
}

// RecentForUser returns the newest completion events for a user.
func (r *CompletionRepository) RecentForUser(userID string, limit int) ([]models.CompletionEvent, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, activity_id, kind, xp_earned, score, completed_at
		FROM completions
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var events []models.CompletionEvent
	for rows.Next() {
		var e models.CompletionEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActivityID, &e.Kind, &e.XPEarned, &e.Score, &e.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountForUser returns how many activities of a kind the user has completed.
func (r *CompletionRepository) CountForUser(userID, kind string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM completions
		WHERE user_id = ? AND kind = ?
	`, userID, kind).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}
