// Package progress implements the progress and access-control rules:
// XP accumulation, level derivation, completion accounting and
// subscription-tier content gating. Everything here is a pure function
// over values supplied by the caller; persistence is the caller's job.
package progress

import (
	"time"

	"rocketlearn/internal/models"
)

// XPPerLevel is the amount of XP spanned by one level.
const XPPerLevel = 1000

// ActivityKind identifies which counter a completion event bumps.
type ActivityKind string

const (
	KindGame  ActivityKind = "game"
	KindStory ActivityKind = "story"
)

// Valid reports whether the kind is one of game/story.
func (k ActivityKind) Valid() bool {
	return k == KindGame || k == KindStory
}

// LevelForXP derives the level from total XP: floor(totalXP/1000) + 1.
// Level is never stored independently of a recompute after an XP change.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// XPIntoLevel returns how far into the current level the total XP sits.
func XPIntoLevel(totalXP int) int {
	if totalXP < 0 {
		return 0
	}
	return totalXP % XPPerLevel
}

// XPForNextLevel returns the XP still needed to reach the next level.
func XPForNextLevel(totalXP int) int {
	return XPPerLevel - XPIntoLevel(totalXP)
}

// CanAccess reports whether a subscription tier permits access to
// content at the given tier. Free content is accessible to every tier,
// standard requires standard or premium, premium requires premium.
func CanAccess(user, content models.Tier) bool {
	return user.Rank() >= content.Rank()
}

// ApplyCompletion returns the progress record after completing an
// activity. xpEarned is the content's reward plus any in-activity bonus
// the caller computed; negative values award nothing so the ledger
// never decreases. Exactly one of gamesCompleted/storiesRead is
// incremented depending on kind; all other fields carry over.
//
// There is no separate level-up event: crossing a multiple of 1000 XP
// changes the level as a side effect of the formula. Callers that want
// to celebrate a level-up diff the level before and after (LeveledUp).
func ApplyCompletion(p models.UserProgress, kind ActivityKind, xpEarned int, at time.Time) models.UserProgress {
	if xpEarned < 0 {
		xpEarned = 0
	}

	next := p.Clone()
	next.TotalXP = p.TotalXP + xpEarned
	next.Level = LevelForXP(next.TotalXP)
	next.StreakDays = NextStreak(p, at)
	next.LastActivity = at

	switch kind {
	case KindGame:
		next.GamesCompleted = p.GamesCompleted + 1
	case KindStory:
		next.StoriesRead = p.StoriesRead + 1
	}

	return next
}

// LeveledUp reports whether a completion crossed a level boundary.
func LeveledUp(before, after models.UserProgress) bool {
	return after.Level > before.Level
}

// NextStreak returns the consecutive-day counter after activity at the
// given time: same calendar day keeps the streak, the following day
// extends it, anything else starts over at 1.
func NextStreak(p models.UserProgress, at time.Time) int {
	if p.LastActivity.IsZero() {
		return 1
	}
	last := dayOf(p.LastActivity)
	today := dayOf(at)

	switch today.Sub(last) {
	case 0:
		if p.StreakDays == 0 {
			return 1
		}
		return p.StreakDays
	case 24 * time.Hour:
		return p.StreakDays + 1
	default:
		return 1
	}
}

// StreakExpired reports whether a streak should be reset because the
// last activity is older than one full calendar day.
func StreakExpired(p models.UserProgress, now time.Time) bool {
	if p.StreakDays == 0 || p.LastActivity.IsZero() {
		return false
	}
	return dayOf(now).Sub(dayOf(p.LastActivity)) > 24*time.Hour
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
