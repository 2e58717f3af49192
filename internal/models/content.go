package models

// Game is a playable learning activity from the games catalog.
// Catalog entries are read-only reference data.
type Game struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	Description   string   `json:"description"`
	XPReward      int      `json:"xpReward"`
	EstimatedTime string   `json:"estimatedTime"`
	AgeRange      string   `json:"ageRange"`
	Languages     []string `json:"languages"`
	Subscription  Tier     `json:"subscription"`
}

// Story is a readable story from the stories catalog.
type Story struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Category      string         `json:"category"`
	Difficulty    string         `json:"difficulty"`
	Description   string         `json:"description"`
	XPReward      int            `json:"xpReward"`
	EstimatedTime string         `json:"estimatedTime"`
	AgeRange      string         `json:"ageRange"`
	Languages     []string       `json:"languages"`
	Moral         string         `json:"moral"`
	Chapters      []StoryChapter `json:"chapters"`
	Subscription  Tier           `json:"subscription"`
}

// StoryChapter is a single chapter with per-language text.
type StoryChapter struct {
	ID      int               `json:"id"`
	Title   string            `json:"title"`
	Content map[string]string `json:"content"`
}

// Achievement is a catalog entry matched against a user's unlocked set.
type Achievement struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Icon        string                 `json:"icon"`
	XPReward    int                    `json:"xpReward"`
	Requirement AchievementRequirement `json:"requirement"`
}

// AchievementRequirement describes how an achievement is earned.
type AchievementRequirement struct {
	Type     string `json:"type"`
	Count    int    `json:"count,omitempty"`
	Category string `json:"category,omitempty"`
}

// SubscriptionPlan is a pricing-page entry from the plans catalog.
type SubscriptionPlan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Currency     string   `json:"currency"`
	BillingCycle string   `json:"billingCycle"`
	Description  string   `json:"description"`
	Features     []string `json:"features"`
	Limitations  []string `json:"limitations"`
	Popular      bool     `json:"popular"`
}
