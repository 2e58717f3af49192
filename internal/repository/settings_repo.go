package repository

import (
	"database/sql"
	"fmt"

	"rocketlearn/internal/database"
	"rocketlearn/internal/models"
)

const settingsRowID = 1

// SettingsRepository persists the preferences namespace (language and
// theme). Independent of the session namespace: logging out does not
// touch it.
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load reads the persisted settings, falling back to defaults when
// nothing has been saved yet.
func (r *SettingsRepository) Load() (models.AppSettings, error) {
	var s models.AppSettings
	err := r.db.QueryRow(`
		SELECT language, theme
		FROM app_settings
		WHERE id = ?
	`, settingsRowID).Scan(&s.Language, &s.Theme)

	if err == sql.ErrNoRows {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Save replaces the persisted settings.
func (r *SettingsRepository) Save(s models.AppSettings) error {
	result, err := r.db.Exec(`
		UPDATE app_settings
		SET language = ?, theme = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, s.Language, s.Theme, settingsRowID)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO app_settings (id, language, theme)
		VALUES (?, ?, ?)
	`, settingsRowID, s.Language, s.Theme)
	if err != nil {
		return fmt.Errorf("failed to insert settings: %w", err)
	}
	return nil
}
