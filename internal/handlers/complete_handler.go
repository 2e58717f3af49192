package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"rocketlearn/internal/leaderboard"
	"rocketlearn/internal/models"
	"rocketlearn/internal/progress"
	"rocketlearn/internal/session"
)

// CompletionRecorder appends completion events to the audit log.
type CompletionRecorder interface {
	Record(event models.CompletionEvent) error
}

// CompleteHandler processes activity completions: it awards XP,
// recomputes the level, advances the streak and records the event.
type CompleteHandler struct {
	catalog     Catalog
	store       *session.Store
	completions CompletionRecorder
	board       *leaderboard.Board
}

// NewCompleteHandler creates a new completion handler
func NewCompleteHandler(catalog Catalog, store *session.Store, completions CompletionRecorder, board *leaderboard.Board) *CompleteHandler {
	return &CompleteHandler{
		catalog:     catalog,
		store:       store,
		completions: completions,
		board:       board,
	}
}

// Complete handles POST /api/complete.
func (h *CompleteHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
		return
	}

	var req struct {
		ActivityID string `json:"activityId"`
		Kind       string `json:"kind"`
		BonusXP    int    `json:"bonusXP"`
		Score      int    `json:"score"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	kind := progress.ActivityKind(req.Kind)
	if !kind.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown activity kind", "", nil)
		return
	}

	xpReward, requiredTier, err := h.lookupActivity(r, kind, req.ActivityID)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Completion lookup failed", err)
		return
	}
	if requiredTier == nil {
		respondWithError(w, http.StatusNotFound, "Activity not found", "", nil)
		return
	}

	// Access is re-checked on completion: a lapsed subscription must
	// not keep earning XP from content it can no longer open.
	if !progress.CanAccess(user.EffectiveTier(), *requiredTier) {
		respondLocked(w, string(*requiredTier))
		return
	}

	before := models.NewProgress()
	if user.Progress != nil {
		before = *user.Progress
	}

	now := time.Now().UTC()
	after := progress.ApplyCompletion(before, kind, xpReward+req.BonusXP, now)
	h.store.ApplyProgress(after)

	event := models.CompletionEvent{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ActivityID:  req.ActivityID,
		Kind:        string(kind),
		XPEarned:    after.TotalXP - before.TotalXP,
		Score:       req.Score,
		CompletedAt: now,
	}
	if err := h.completions.Record(event); err != nil {
		// The progress update already landed; the audit row is
		// best-effort.
		log.Printf("Recording completion %s failed: %v", event.ID, err)
	}

	if err := h.board.Update(r.Context(), user.ID, user.Name, after.TotalXP); err != nil {
		log.Printf("Leaderboard update for %s failed: %v", user.ID, err)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"progress":  after,
		"xpEarned":  event.XPEarned,
		"leveledUp": progress.LeveledUp(before, after),
	})
}

// lookupActivity resolves an activity's XP reward and required tier.
// A nil tier means the activity does not exist.
func (h *CompleteHandler) lookupActivity(r *http.Request, kind progress.ActivityKind, id string) (int, *models.Tier, error) {
	switch kind {
	case progress.KindGame:
		game, err := h.catalog.GameByID(r.Context(), id)
		if err != nil || game == nil {
			return 0, nil, err
		}
		return game.XPReward, &game.Subscription, nil
	default:
		story, err := h.catalog.StoryByID(r.Context(), id)
		if err != nil || story == nil {
			return 0, nil, err
		}
		return story.XPReward, &story.Subscription, nil
	}
}
