package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rocketlearn/internal/leaderboard"
	"rocketlearn/internal/models"
	"rocketlearn/internal/session"
)

type fakeActivityLog struct {
	events    []models.CompletionEvent
	lastLimit int
}

func (l *fakeActivityLog) RecentForUser(userID string, limit int) ([]models.CompletionEvent, error) {
	l.lastLimit = limit
	var out []models.CompletionEvent
	for _, e := range l.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeActivityLog) CountForUser(userID, kind string) (int, error) {
	count := 0
	for _, e := range l.events {
		if e.UserID == userID && e.Kind == kind {
			count++
		}
	}
	return count, nil
}

func TestActivityRecent(t *testing.T) {
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	log := &fakeActivityLog{events: []models.CompletionEvent{
		{ID: "evt_1", UserID: "user_2", ActivityID: "game_1", Kind: "game", XPEarned: 100, CompletedAt: when},
		{ID: "evt_2", UserID: "user_2", ActivityID: "story_1", Kind: "story", XPEarned: 80, CompletedAt: when},
		{ID: "evt_3", UserID: "user_9", ActivityID: "game_1", Kind: "game", XPEarned: 100, CompletedAt: when},
	}}
	h := NewActivityHandler(log)

	req := withUser(httptest.NewRequest("GET", "/api/me/activity", nil), freeChild())
	rec := httptest.NewRecorder()
	h.Recent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Events []struct {
			ID         string `json:"id"`
			ActivityID string `json:"activityId"`
			Kind       string `json:"kind"`
			XPEarned   int    `json:"xpEarned"`
		} `json:"events"`
		Totals map[string]int `json:"totals"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Events) != 2 {
		t.Fatalf("events = %d, want 2 (other users' events must be excluded)", len(resp.Events))
	}
	if resp.Events[0].ID != "evt_1" || resp.Events[0].XPEarned != 100 {
		t.Errorf("first event = %+v", resp.Events[0])
	}
	if resp.Totals["games"] != 1 || resp.Totals["stories"] != 1 {
		t.Errorf("totals = %v, want games:1 stories:1", resp.Totals)
	}
	if log.lastLimit != 20 {
		t.Errorf("default limit = %d, want 20", log.lastLimit)
	}
}

func TestActivityRecentLimit(t *testing.T) {
	log := &fakeActivityLog{}
	h := NewActivityHandler(log)

	req := withUser(httptest.NewRequest("GET", "/api/me/activity?limit=5", nil), freeChild())
	rec := httptest.NewRecorder()
	h.Recent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if log.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", log.lastLimit)
	}

	req = withUser(httptest.NewRequest("GET", "/api/me/activity?limit=500", nil), freeChild())
	rec = httptest.NewRecorder()
	h.Recent(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for out-of-range limit", rec.Code)
	}
}

func TestActivityRecentUnauthenticated(t *testing.T) {
	h := NewActivityHandler(&fakeActivityLog{})

	rec := httptest.NewRecorder()
	h.Recent(rec, httptest.NewRequest("GET", "/api/me/activity", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLeaderboardIncludesOwnRank(t *testing.T) {
	store, err := session.NewStore(&fakeUsers{users: []models.User{*freeChild()}}, &fakeState{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	board := leaderboard.New("")
	h := NewLeaderboardHandler(board, store)

	// Signed out: no own-rank field
	rec := httptest.NewRecorder()
	h.Top(rec, httptest.NewRequest("GET", "/api/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := resp["myRank"]; ok {
		t.Error("signed-out response must not include myRank")
	}

	// Signed in: own rank present (0 while off the board)
	if err := store.SwitchUser(context.Background(), "user_2"); err != nil {
		t.Fatalf("SwitchUser() error = %v", err)
	}
	rec = httptest.NewRecorder()
	h.Top(rec, httptest.NewRequest("GET", "/api/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp = nil
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	raw, ok := resp["myRank"]
	if !ok {
		t.Fatal("signed-in response must include myRank")
	}
	var rank int
	if err := json.Unmarshal(raw, &rank); err != nil {
		t.Fatalf("decode myRank: %v", err)
	}
	if rank != 0 {
		t.Errorf("myRank = %d, want 0 off the board", rank)
	}
}
