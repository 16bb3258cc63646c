package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/connect4-ai/internal/domain"
	"github.com/redis/go-redis/v9"
)

// CachedMove is a search result stored for a position.
type CachedMove struct {
	Column int   `json:"column"`
	Score  int64 `json:"score"`
}

// MoveCache remembers search results per board, side to move and search depth.
// Search is deterministic, so a hit is always the move the search would pick.
type MoveCache struct {
	cache *RedisCache
	ttl   time.Duration
}

func NewMoveCache(cache *RedisCache, ttl time.Duration) *MoveCache {
	return &MoveCache{cache: cache, ttl: ttl}
}

func moveKey(board domain.Board, player domain.PlayerID, depth int) string {
	return fmt.Sprintf("move:%d:%d:%s", player, depth, board.Key())
}

// Get reports found=false on a miss.
func (m *MoveCache) Get(ctx context.Context, board domain.Board, player domain.PlayerID, depth int) (CachedMove, bool, error) {
	var move CachedMove
	raw, err := m.cache.Get(ctx, moveKey(board, player, depth))
	if errors.Is(err, redis.Nil) {
		return move, false, nil
	}
	if err != nil {
		return move, false, fmt.Errorf("failed to read cached move: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &move); err != nil {
		return move, false, fmt.Errorf("failed to decode cached move: %w", err)
	}
	return move, true, nil
}

func (m *MoveCache) Put(ctx context.Context, board domain.Board, player domain.PlayerID, depth int, move CachedMove) error {
	data, err := json.Marshal(move)
	if err != nil {
		return fmt.Errorf("failed to encode cached move: %w", err)
	}
	if err := m.cache.Set(ctx, moveKey(board, player, depth), data, m.ttl); err != nil {
		return fmt.Errorf("failed to cache move: %w", err)
	}
	return nil
}
