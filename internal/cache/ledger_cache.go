package cache

import (
	"context"
	"encoding/json"
	"time"

	dom "github.com/SixTanDev/BTG/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyFunds   = "funds:list"
	keyHistory = "history:"
)

// LedgerCache caches the fund catalog and per-user transaction history
// in Redis. History entries are invalidated after every committed
// ledger operation.
type LedgerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLedgerCache returns a new LedgerCache.
func NewLedgerCache(rdb *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{rdb: rdb, ttl: ttl}
}

// GetFunds returns the cached catalog or nil on miss.
func (c *LedgerCache) GetFunds(ctx context.Context) ([]dom.Fund, error) {
	b, err := c.rdb.Get(ctx, keyFunds).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Fund
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetFunds stores the catalog.
func (c *LedgerCache) SetFunds(ctx context.Context, list []dom.Fund) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyFunds, b, c.ttl).Err()
}

// GetHistory returns the cached history for the user or nil on miss.
func (c *LedgerCache) GetHistory(ctx context.Context, userID string) ([]dom.Transaction, error) {
	b, err := c.rdb.Get(ctx, keyHistory+userID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Transaction
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetHistory stores the history for the user.
func (c *LedgerCache) SetHistory(ctx context.Context, userID string, list []dom.Transaction) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyHistory+userID, b, c.ttl).Err()
}

// InvalidateHistory removes the user's cached history after a write.
func (c *LedgerCache) InvalidateHistory(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, keyHistory+userID).Err()
}
