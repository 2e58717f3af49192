package handlers

import (
	"net/http"
	"strconv"

	"rocketlearn/internal/leaderboard"
	"rocketlearn/internal/session"
)

// LeaderboardHandler serves the XP leaderboard.
type LeaderboardHandler struct {
	board *leaderboard.Board
	store *session.Store
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(board *leaderboard.Board, store *session.Store) *LeaderboardHandler {
	return &LeaderboardHandler{board: board, store: store}
}

// Top returns the highest-XP learners. An unconfigured board returns
// an empty list rather than an error. When a learner is signed in,
// the response includes their own position on the board.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100", "", nil)
			return
		}
		limit = n
	}

	entries, err := h.board.Top(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard", "Leaderboard read failed", err)
		return
	}

	response := map[string]interface{}{
		"entries": entries,
		"enabled": h.board.Enabled(),
	}
	if user := h.store.CurrentUser(); user != nil {
		rank, err := h.board.Rank(r.Context(), user.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard", "Leaderboard rank read failed", err)
			return
		}
		response["myRank"] = rank
	}
	respondJSON(w, http.StatusOK, response)
}
