package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rocketlearn/internal/models"
	"rocketlearn/internal/progress"
)

// ActivityLog provides read access to the completion event log.
type ActivityLog interface {
	RecentForUser(userID string, limit int) ([]models.CompletionEvent, error)
	CountForUser(userID, kind string) (int, error)
}

// ActivityHandler serves the signed-in learner's completion history.
type ActivityHandler struct {
	log ActivityLog
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(log ActivityLog) *ActivityHandler {
	return &ActivityHandler{log: log}
}

type activityEvent struct {
	ID          string    `json:"id"`
	ActivityID  string    `json:"activityId"`
	Kind        string    `json:"kind"`
	XPEarned    int       `json:"xpEarned"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Recent returns the newest completion events for the current user,
// with lifetime per-kind totals from the event log.
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated", "", nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100", "", nil)
			return
		}
		limit = n
	}

	events, err := h.log.RecentForUser(user.ID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activity", "Activity query failed", err)
		return
	}
	games, err := h.log.CountForUser(user.ID, string(progress.KindGame))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activity", "Activity count failed", err)
		return
	}
	stories, err := h.log.CountForUser(user.ID, string(progress.KindStory))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load activity", "Activity count failed", err)
		return
	}

	out := make([]activityEvent, len(events))
	for i, e := range events {
		out[i] = activityEvent{
			ID:          e.ID,
			ActivityID:  e.ActivityID,
			Kind:        e.Kind,
			XPEarned:    e.XPEarned,
			Score:       e.Score,
			CompletedAt: e.CompletedAt,
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": out,
		"totals": map[string]int{
			"games":   games,
			"stories": stories,
		},
	})
}
