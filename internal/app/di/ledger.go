package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	expenseadapters "expense_backend/internal/feature/expense/adapters"
	"expense_backend/internal/feature/expense/usecase"
	"expense_backend/internal/platform/cache"
)

// NewExpenseRepository creates an ExpenseRepository implementation.
// If Redis is available, the listing is cached in front of the database.
// Otherwise, reads go straight to the database.
func NewExpenseRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.ExpenseRepository {
	repo := expenseadapters.NewExpenseRepository(db)
	if rdb != nil {
		return cache.NewCachingExpenseRepository(rdb, ttl, repo, "expenses")
	}
	return repo
}
