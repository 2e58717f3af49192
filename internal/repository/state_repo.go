package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"rocketlearn/internal/database"
	"rocketlearn/internal/models"
)

// stateRowID is the fixed id of the single session-state row. The
// session namespace holds at most one record and is replaced in full
// on every write.
const stateRowID = 1

// StateRepository persists the session namespace: the full user
// document plus the authenticated flag. Replace-on-write only: the
// store computes the complete new state first, then persists it in
// one call. Nothing merges at this layer.
type StateRepository struct {
	db *database.DB
}

// NewStateRepository creates a new session-state repository
func NewStateRepository(db *database.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Save replaces the persisted session state.
func (r *StateRepository) Save(state models.SessionState) error {
	doc, err := json.Marshal(state.User)
	if err != nil {
		return fmt.Errorf("failed to encode user document: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE session_state
		SET user_doc = ?, authenticated = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(doc), state.Authenticated, stateRowID)
	if err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO session_state (id, user_doc, authenticated)
		VALUES (?, ?, ?)
	`, stateRowID, string(doc), state.Authenticated)
	if err != nil {
		return fmt.Errorf("failed to insert session state: %w", err)
	}
	return nil
}

// Load reads the persisted session state. Returns nil when no prior
// session exists.
func (r *StateRepository) Load() (*models.SessionState, error) {
	var doc string
	var authenticated bool
	err := r.db.QueryRow(`
		SELECT user_doc, authenticated
		FROM session_state
		WHERE id = ?
	`, stateRowID).Scan(&doc, &authenticated)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}

	state := &models.SessionState{Authenticated: authenticated}
	if doc != "" && doc != "null" {
		state.User = &models.User{}
		if err := json.Unmarshal([]byte(doc), state.User); err != nil {
			return nil, fmt.Errorf("failed to decode user document: %w", err)
		}
	}
	return state, nil
}

// Clear removes the persisted session state entirely.
func (r *StateRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM session_state WHERE id = ?", stateRowID); err != nil {
		return fmt.Errorf("failed to clear session state: %w", err)
	}
	return nil
}
