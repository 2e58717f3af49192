package models

import "time"

// UserProgress is the gamification ledger for a child account,
// owned exclusively by its User.
type UserProgress struct {
	TotalXP        int       `json:"totalXP"`
	Level          int       `json:"level"`
	GamesCompleted int       `json:"gamesCompleted"`
	StoriesRead    int       `json:"storiesRead"`
	StreakDays     int       `json:"streakDays"`
	Achievements   []string  `json:"achievements"`
	LastActivity   time.Time `json:"lastActivity,omitempty"`
}

// NewProgress returns the zero-initialized ledger assigned at registration.
func NewProgress() UserProgress {
	return UserProgress{
		Level:        1,
		Achievements: []string{},
	}
}

// Clone returns a copy with its own achievements slice.
func (p UserProgress) Clone() UserProgress {
	c := p
	if p.Achievements != nil {
		c.Achievements = append([]string(nil), p.Achievements...)
	}
	return c
}

// HasAchievement reports whether the achievement id has been unlocked.
// The achievements set is insertion-only; there is no removal path.
func (p UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// CompletionEvent records a finished game or story. Events are
// append-only; progress counters are derived from them but never
// decremented.
type CompletionEvent struct {
	ID          string
	UserID      string
	ActivityID  string
	Kind        string
	XPEarned    int
	Score       int
	CompletedAt time.Time
}
