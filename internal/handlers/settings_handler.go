package handlers

import (
	"net/http"

	"rocketlearn/internal/models"
)

// SettingsStore loads and saves app-wide settings.
type SettingsStore interface {
	Load() (models.AppSettings, error)
	Save(s models.AppSettings) error
}

// SettingsHandler serves the app settings namespace.
type SettingsHandler struct {
	settings SettingsStore
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the current settings, falling back to defaults.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load settings", "Loading settings failed", err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Put replaces the settings wholesale.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req models.AppSettings
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	if req.Theme != "light" && req.Theme != "dark" {
		respondWithError(w, http.StatusBadRequest, "Theme must be light or dark", "", nil)
		return
	}
	if req.Language == "" {
		req.Language = models.DefaultSettings().Language
	}

	if err := h.settings.Save(req); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save settings", "Saving settings failed", err)
		return
	}
	respondJSON(w, http.StatusOK, req)
}
