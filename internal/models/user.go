package models

import "time"

// Role distinguishes parent/guardian accounts from child accounts.
// Fixed at creation, never changes.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Tier is a subscription level gating content access.
// Tiers are totally ordered: free < standard < premium.
type Tier string

const (
	TierFree     Tier = "free"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ParseTier normalizes a subscription string. Absent or unknown
// values are treated as free.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierStandard:
		return TierStandard
	case TierPremium:
		return TierPremium
	default:
		return TierFree
	}
}

// Rank returns the tier's position in the total order:
// free=0, standard=1, premium=2.
func (t Tier) Rank() int {
	switch t {
	case TierStandard:
		return 1
	case TierPremium:
		return 2
	default:
		return 0
	}
}

// User represents either a parent account or a child account.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email,omitempty"`
	Name         string        `json:"name"`
	Role         Role          `json:"role"`
	Subscription Tier          `json:"subscription,omitempty"`
	Children     []string      `json:"children,omitempty"`
	ParentID     string        `json:"parentId,omitempty"`
	Age          int           `json:"age,omitempty"`
	Preferences  *Preferences  `json:"preferences,omitempty"`
	Progress     *UserProgress `json:"progress,omitempty"`
	CreatedAt    time.Time     `json:"createdAt,omitempty"`

	// PasswordHash is kept in the persisted session document for the
	// day real credential verification replaces the stubbed login.
	// Never present in the fixture directory.
	PasswordHash string `json:"passwordHash,omitempty"`
}

// IsChild reports whether the user is a child account.
func (u *User) IsChild() bool {
	return u.Role == RoleChild
}

// EffectiveTier returns the user's subscription with absent treated as free.
func (u *User) EffectiveTier() Tier {
	return ParseTier(string(u.Subscription))
}

// Clone returns a deep copy of the user so callers can hold a snapshot
// without aliasing the store's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Children != nil {
		c.Children = append([]string(nil), u.Children...)
	}
	if u.Preferences != nil {
		p := *u.Preferences
		if u.Preferences.FavoriteSubjects != nil {
			p.FavoriteSubjects = append([]string(nil), u.Preferences.FavoriteSubjects...)
		}
		c.Preferences = &p
	}
	if u.Progress != nil {
		pr := u.Progress.Clone()
		c.Progress = &pr
	}
	return &c
}

// Preferences holds a user's language, difficulty and topic settings.
// Mutable only by the user themself.
type Preferences struct {
	Language         string   `json:"language"`
	Difficulty       string   `json:"difficulty"`
	FavoriteSubjects []string `json:"favoriteSubjects"`
}

// DefaultPreferences are assigned to child accounts at registration.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Language:         "english",
		Difficulty:       "beginner",
		FavoriteSubjects: []string{},
	}
}
