// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"expense_backend/internal/feature/expense/domain/entity"
	"expense_backend/internal/feature/expense/usecase"
)

// CachingExpenseRepository decorates an ExpenseRepository with a per-owner
// Redis cache of the expense listing. Listings are stored under the owner's
// current generation; writes go straight to the inner repository and then
// bump the generation, so a listing read before the write can never be
// served after it.
type CachingExpenseRepository struct {
	inner     usecase.ExpenseRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ExpenseRepository = (*CachingExpenseRepository)(nil)

// NewCachingExpenseRepository decorates an ExpenseRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "expenses".
// A nil rdb disables caching entirely.
func NewCachingExpenseRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ExpenseRepository, namespace string) *CachingExpenseRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "expenses"
	}
	return &CachingExpenseRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create stores the expense and moves the owner to a new cache generation.
func (c *CachingExpenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	if err := c.inner.Create(ctx, e); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	// The row is already committed, so a failed invalidation is logged rather
	// than returned; the stale entry expires after ttl.
	if err := c.rdb.Incr(ctx, c.generationKey(e.UserID)).Err(); err != nil {
		slog.Warn("failed to invalidate expense cache", "error", err, "user_id", e.UserID)
	}
	return nil
}

// ListByOwner returns the owner's expenses, checking the cache first.
func (c *CachingExpenseRepository) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Expense, error) {
	if c.rdb == nil {
		return c.inner.ListByOwner(ctx, ownerID)
	}

	// 1) Resolve the generation before touching the database
	gen, err := c.rdb.Get(ctx, c.generationKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen = 0
	} else if err != nil {
		slog.Warn("expense cache unavailable", "error", err, "user_id", ownerID)
		return c.inner.ListByOwner(ctx, ownerID)
	}
	key := c.cacheKey(ownerID, gen)

	// 2) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Expense
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 3) Fallback to database
	out, err := c.inner.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []entity.Expense{}
	}

	// 4) Store in cache (best effort). A Create that committed meanwhile has
	// already moved the owner past gen, so this entry is never read.
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

func (c *CachingExpenseRepository) generationKey(ownerID uint) string {
	return fmt.Sprintf("%s:gen:user:%d", c.namespace, ownerID)
}

func (c *CachingExpenseRepository) cacheKey(ownerID uint, gen int64) string {
	return fmt.Sprintf("%s:user:%d:%d", c.namespace, ownerID, gen)
}
