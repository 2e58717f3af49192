package handlers

import (
	"context"
	"net/http"

	"rocketlearn/internal/models"
	"rocketlearn/internal/progress"
)

// Catalog is the slice of the user directory the content endpoints
// need.
type Catalog interface {
	Games(ctx context.Context) ([]models.Game, error)
	GameByID(ctx context.Context, id string) (*models.Game, error)
	Stories(ctx context.Context) ([]models.Story, error)
	StoryByID(ctx context.Context, id string) (*models.Story, error)
	Achievements(ctx context.Context) ([]models.Achievement, error)
	Plans(ctx context.Context) ([]models.SubscriptionPlan, error)
}

// ContentHandler serves the games, stories, achievements and plans
// catalogs, applying subscription gating for the active user.
type ContentHandler struct {
	catalog Catalog
}

// NewContentHandler creates a new content handler
func NewContentHandler(catalog Catalog) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

type gameListItem struct {
	models.Game
	Locked bool `json:"locked"`
}

type storyListItem struct {
	models.Story
	Locked bool `json:"locked"`
}

type achievementListItem struct {
	models.Achievement
	Unlocked bool `json:"unlocked"`
}

// ListGames returns the full games catalog. Entries above the viewer's
// tier are included but flagged locked, so the client can show them
// with an upsell.
func (h *ContentHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	games, err := h.catalog.Games(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Listing games failed", err)
		return
	}

	items := make([]gameListItem, len(games))
	for i, g := range games {
		items[i] = gameListItem{
			Game:   g,
			Locked: !progress.CanAccess(user.EffectiveTier(), g.Subscription),
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"games": items})
}

// GetGame returns one game, denying access when the viewer's tier is
// below the game's.
func (h *ContentHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	game, err := h.catalog.GameByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Fetching game failed", err)
		return
	}
	if game == nil {
		respondWithError(w, http.StatusNotFound, "Game not found", "", nil)
		return
	}
	if !progress.CanAccess(user.EffectiveTier(), game.Subscription) {
		respondLocked(w, string(game.Subscription))
		return
	}
	respondJSON(w, http.StatusOK, game)
}

// ListStories returns the stories catalog with locked flags.
func (h *ContentHandler) ListStories(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	stories, err := h.catalog.Stories(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Listing stories failed", err)
		return
	}

	items := make([]storyListItem, len(stories))
	for i, s := range stories {
		// Chapter text stays out of list responses; locked stories
		// must not leak content.
		s.Chapters = nil
		items[i] = storyListItem{
			Story:  s,
			Locked: !progress.CanAccess(user.EffectiveTier(), s.Subscription),
		}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"stories": items})
}

// GetStory returns one story with chapters, gated by tier.
func (h *ContentHandler) GetStory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	story, err := h.catalog.StoryByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Fetching story failed", err)
		return
	}
	if story == nil {
		respondWithError(w, http.StatusNotFound, "Story not found", "", nil)
		return
	}
	if !progress.CanAccess(user.EffectiveTier(), story.Subscription) {
		respondLocked(w, string(story.Subscription))
		return
	}
	respondJSON(w, http.StatusOK, story)
}

// ListAchievements returns the achievements catalog, marking the ones
// the active user has already earned.
func (h *ContentHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	achievements, err := h.catalog.Achievements(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Listing achievements failed", err)
		return
	}

	items := make([]achievementListItem, len(achievements))
	for i, a := range achievements {
		unlocked := user.Progress != nil && user.Progress.HasAchievement(a.ID)
		items[i] = achievementListItem{Achievement: a, Unlocked: unlocked}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"achievements": items})
}

// ListPlans returns the subscription plans catalog. No gating: the
// pricing page is how users find out what to upgrade to.
func (h *ContentHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.catalog.Plans(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Catalog unavailable", "Listing plans failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
}
