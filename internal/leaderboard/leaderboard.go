// Package leaderboard ranks learners by total XP using a Redis sorted
// set. The board is a cache over the user directory: it can be rebuilt
// from scratch at any time, and the whole package degrades to a no-op
// when Redis is not configured.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rocketlearn/internal/models"
	"rocketlearn/internal/progress"
)

const (
	keyXP    = "leaderboard:xp"
	keyNames = "leaderboard:names"

	boardTTL = 48 * time.Hour
)

// Entry is one row of the ranked board.
type Entry struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	TotalXP int    `json:"totalXP"`
	Level   int    `json:"level"`
}

// Board wraps the Redis client. A nil Board (or one built from an
// empty address) accepts every call and returns empty results, so
// callers never branch on whether Redis is available.
type Board struct {
	client *redis.Client
}

// New connects to Redis at addr. An empty addr returns a disabled
// board.
func New(addr string) *Board {
	if addr == "" {
		return &Board{}
	}
	return &Board{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Enabled reports whether the board is backed by a live client.
func (b *Board) Enabled() bool {
	return b != nil && b.client != nil
}

// Ping verifies the Redis connection.
func (b *Board) Ping(ctx context.Context) error {
	if !b.Enabled() {
		return nil
	}
	return b.client.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (b *Board) Close() error {
	if !b.Enabled() {
		return nil
	}
	return b.client.Close()
}

// Update records a learner's current XP. Scores only move forward in
// practice because XP never decreases, so a plain ZADD is enough.
func (b *Board) Update(ctx context.Context, userID, name string, totalXP int) error {
	if !b.Enabled() || userID == "" {
		return nil
	}

	pipe := b.client.Pipeline()
	pipe.ZAdd(ctx, keyXP, redis.Z{Score: float64(totalXP), Member: userID})
	pipe.HSet(ctx, keyNames, userID, name)
	pipe.Expire(ctx, keyXP, boardTTL)
	pipe.Expire(ctx, keyNames, boardTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("updating leaderboard: %w", err)
	}
	return nil
}

// Top returns the highest-XP learners, best first. Ranks are 1-based.
func (b *Board) Top(ctx context.Context, limit int) ([]Entry, error) {
	if !b.Enabled() {
		return []Entry{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	scores, err := b.client.ZRevRangeWithScores(ctx, keyXP, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	if len(scores) == 0 {
		return []Entry{}, nil
	}

	ids := make([]string, len(scores))
	for i, z := range scores {
		ids[i] = z.Member.(string)
	}
	names, err := b.client.HMGet(ctx, keyNames, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard names: %w", err)
	}

	entries := make([]Entry, len(scores))
	for i, z := range scores {
		xp := int(z.Score)
		entry := Entry{
			Rank:    i + 1,
			UserID:  ids[i],
			TotalXP: xp,
			Level:   progress.LevelForXP(xp),
		}
		if name, ok := names[i].(string); ok {
			entry.Name = name
		}
		entries[i] = entry
	}
	return entries, nil
}

// Rank returns a learner's 1-based position, or 0 when the learner is
// not on the board.
func (b *Board) Rank(ctx context.Context, userID string) (int, error) {
	if !b.Enabled() {
		return 0, nil
	}

	rank, err := b.client.ZRevRank(ctx, keyXP, userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading leaderboard rank: %w", err)
	}
	return int(rank) + 1, nil
}

// Rebuild replaces the whole board with the given users. Users without
// progress are skipped.
func (b *Board) Rebuild(ctx context.Context, users []models.User) error {
	if !b.Enabled() {
		return nil
	}

	members := make([]redis.Z, 0, len(users))
	names := make(map[string]interface{}, len(users))
	for i := range users {
		u := &users[i]
		if u.Progress == nil {
			continue
		}
		members = append(members, redis.Z{
			Score:  float64(u.Progress.TotalXP),
			Member: u.ID,
		})
		names[u.ID] = u.Name
	}

	pipe := b.client.TxPipeline()
	pipe.Del(ctx, keyXP, keyNames)
	if len(members) > 0 {
		pipe.ZAdd(ctx, keyXP, members...)
		pipe.HSet(ctx, keyNames, names)
		pipe.Expire(ctx, keyXP, boardTTL)
		pipe.Expire(ctx, keyNames, boardTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuilding leaderboard: %w", err)
	}
	return nil
}
