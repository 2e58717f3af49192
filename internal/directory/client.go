// Package directory is the client for the static fixture documents:
// the user directory and the content catalogs. Each document is a
// whole JSON file fetched over HTTP from a fixed path, with no
// pagination and no auth. Lookups are read-only; nothing here ever
// writes.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rocketlearn/internal/models"
)

// Client fetches fixture documents from a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// delay simulates network latency on every fetch, standing in for
	// the real service the fixtures mock. Zero in tests.
	delay time.Duration
}

// NewClient creates a directory client for the given base URL.
func NewClient(baseURL string, delay time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		delay:      delay,
	}
}

// fetch GETs and decodes one whole document into out.
func (c *Client) fetch(ctx context.Context, doc string, out interface{}) error {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+doc, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", doc, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", doc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: unexpected status %d", doc, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", doc, err)
	}
	return nil
}

// Users returns every record in the user directory.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var doc struct {
		Users []models.User `json:"users"`
	}
	if err := c.fetch(ctx, "users.json", &doc); err != nil {
		return nil, err
	}
	return doc.Users, nil
}

// UserByEmail looks a user up by email. Returns nil when no record
// matches; absence is a value here, not an error.
func (c *Client) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		// child records may lack an email; never match on blank
		return nil, nil
	}
	users, err := c.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return users[i].Clone(), nil
		}
	}
	return nil, nil
}

// UserByID looks a user up by id. Returns nil when no record matches.
func (c *Client) UserByID(ctx context.Context, id string) (*models.User, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return users[i].Clone(), nil
		}
	}
	return nil, nil
}

// Games returns the games catalog.
func (c *Client) Games(ctx context.Context) ([]models.Game, error) {
	var doc struct {
		Games []models.Game `json:"games"`
	}
	if err := c.fetch(ctx, "games.json", &doc); err != nil {
		return nil, err
	}
	return doc.Games, nil
}

// GameByID looks a game up by id. Returns nil when no entry matches.
func (c *Client) GameByID(ctx context.Context, id string) (*models.Game, error) {
	games, err := c.Games(ctx)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].ID == id {
			return &games[i], nil
		}
	}
	return nil, nil
}

// Stories returns the stories catalog.
func (c *Client) Stories(ctx context.Context) ([]models.Story, error) {
	var doc struct {
		Stories []models.Story `json:"stories"`
	}
	if err := c.fetch(ctx, "stories.json", &doc); err != nil {
		return nil, err
	}
	return doc.Stories, nil
}

// StoryByID looks a story up by id. Returns nil when no entry matches.
func (c *Client) StoryByID(ctx context.Context, id string) (*models.Story, error) {
	stories, err := c.Stories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stories {
		if stories[i].ID == id {
			return &stories[i], nil
		}
	}
	return nil, nil
}

// Achievements returns the achievement catalog.
func (c *Client) Achievements(ctx context.Context) ([]models.Achievement, error) {
	var doc struct {
		Achievements []models.Achievement `json:"achievements"`
	}
	if err := c.fetch(ctx, "achievements.json", &doc); err != nil {
		return nil, err
	}
	return doc.Achievements, nil
}

// Plans returns the subscription plan catalog.
func (c *Client) Plans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var doc struct {
		Plans []models.SubscriptionPlan `json:"plans"`
	}
	if err := c.fetch(ctx, "plans.json", &doc); err != nil {
		return nil, err
	}
	return doc.Plans, nil
}
