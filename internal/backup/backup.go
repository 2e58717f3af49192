// Package backup exports and imports the local database as a single
// JSON document, for moving an installation between machines or
// database engines.
package backup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"rocketlearn/internal/database"
)

// Data is the on-disk backup document.
type Data struct {
	Version      int       `json:"version"`
	ExportedAt   time.Time `json:"exported_at"`
	DatabaseType string    `json:"database_type"`

	SessionState *SessionStateBackup `json:"session_state,omitempty"`
	Settings     *SettingsBackup     `json:"settings,omitempty"`
	Completions  []CompletionBackup  `json:"completions"`
}

// SessionStateBackup mirrors the session_state row.
type SessionStateBackup struct {
	UserDoc       string    `json:"user_doc"`
	Authenticated bool      `json:"authenticated"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SettingsBackup mirrors the app_settings row.
type SettingsBackup struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

// CompletionBackup mirrors one completions row.
type CompletionBackup struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ActivityID  string    `json:"activity_id"`
	Kind        string    `json:"kind"`
	XPEarned    int       `json:"xp_earned"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// Service reads and writes backup documents.
type Service struct {
	db *database.DB
}

// NewService creates a backup service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Export writes the full database to outputPath as JSON.
func (s *Service) Export(outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	defer f.Close()
	return s.ExportToWriter(f)
}

// ExportToWriter writes the backup document to w.
func (s *Service) ExportToWriter(w io.Writer) error {
	data := Data{
		Version:      1,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
		Completions:  []CompletionBackup{},
	}

	if err := s.exportSessionState(&data); err != nil {
		return err
	}
	if err := s.exportSettings(&data); err != nil {
		return err
	}
	if err := s.exportCompletions(&data); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

// Import loads a backup document from inputPath. Existing rows are
// replaced; completions are appended, skipping duplicate ids.
func (s *Service) Import(inputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening backup file: %w", err)
	}
	defer f.Close()
	return s.ImportFromReader(f)
}

// ImportFromReader loads a backup document from r.
func (s *Service) ImportFromReader(r io.Reader) error {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("decoding backup: %w", err)
	}
	if data.Version != 1 {
		return fmt.Errorf("unsupported backup version %d", data.Version)
	}

	if data.SessionState != nil {
		if err := s.importSessionState(data.SessionState); err != nil {
			return err
		}
	}
	if data.Settings != nil {
		if err := s.importSettings(data.Settings); err != nil {
			return err
		}
	}
	return s.importCompletions(data.Completions)
}

func (s *Service) exportSessionState(data *Data) error {
	row := s.db.QueryRow(`SELECT user_doc, authenticated, updated_at FROM session_state WHERE id = 1`)

	var state SessionStateBackup
	err := row.Scan(&state.UserDoc, &state.Authenticated, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("exporting session state: %w", err)
	}
	data.SessionState = &state
	return nil
}

func (s *Service) exportSettings(data *Data) error {
	row := s.db.QueryRow(`SELECT language, theme FROM app_settings WHERE id = 1`)

	var settings SettingsBackup
	err := row.Scan(&settings.Language, &settings.Theme)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("exporting settings: %w", err)
	}
	data.Settings = &settings
	return nil
}

func (s *Service) exportCompletions(data *Data) error {
	rows, err := s.db.Query(`SELECT id, user_id, activity_id, kind, xp_earned, score, completed_at
		FROM completions ORDER BY completed_at`)
	if err != nil {
		return fmt.Errorf("exporting completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CompletionBackup
		if err := rows.Scan(&c.ID, &c.UserID, &c.ActivityID, &c.Kind, &c.XPEarned, &c.Score, &c.CompletedAt); err != nil {
			return fmt.Errorf("scanning completion: %w", err)
		}
		data.Completions = append(data.Completions, c)
	}
	return rows.Err()
}

func (s *Service) importSessionState(state *SessionStateBackup) error {
	res, err := s.db.Exec(`UPDATE session_state SET user_doc = ?, authenticated = ?, updated_at = ? WHERE id = 1`,
		state.UserDoc, state.Authenticated, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("importing session state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.Exec(`INSERT INTO session_state (id, user_doc, authenticated, updated_at) VALUES (1, ?, ?, ?)`,
			state.UserDoc, state.Authenticated, state.UpdatedAt)
		if err != nil {
			return fmt.Errorf("importing session state: %w", err)
		}
	}
	return nil
}

func (s *Service) importSettings(settings *SettingsBackup) error {
	res, err := s.db.Exec(`UPDATE app_settings SET language = ?, theme = ? WHERE id = 1`,
		settings.Language, settings.Theme)
	if err != nil {
		return fmt.Errorf("importing settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err = s.db.Exec(`INSERT INTO app_settings (id, language, theme) VALUES (1, ?, ?)`,
			settings.Language, settings.Theme)
		if err != nil {
			return fmt.Errorf("importing settings: %w", err)
		}
	}
	return nil
}

func (s *Service) importCompletions(completions []CompletionBackup) error {
	for _, c := range completions {
		var exists int
		err := s.db.QueryRow(`SELECT COUNT(1) FROM completions WHERE id = ?`, c.ID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking completion %s: %w", c.ID, err)
		}
		if exists > 0 {
			continue
		}
		_, err = s.db.Exec(`INSERT INTO completions (id, user_id, activity_id, kind, xp_earned, score, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.UserID, c.ActivityID, c.Kind, c.XPEarned, c.Score, c.CompletedAt)
		if err != nil {
			return fmt.Errorf("importing completion %s: %w", c.ID, err)
		}
	}
	return nil
}
