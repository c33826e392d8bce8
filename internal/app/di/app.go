package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"expense_backend/internal/app/router"
	assistanthandler "expense_backend/internal/feature/assistant/transport/handler"
	assistantusecase "expense_backend/internal/feature/assistant/usecase"
	authadapters "expense_backend/internal/feature/auth/adapters"
	authentity "expense_backend/internal/feature/auth/domain/entity"
	authhandler "expense_backend/internal/feature/auth/transport/handler"
	authusecase "expense_backend/internal/feature/auth/usecase"
	expenseadapters "expense_backend/internal/feature/expense/adapters"
	expensehandler "expense_backend/internal/feature/expense/transport/handler"
	expenseusecase "expense_backend/internal/feature/expense/usecase"
	"expense_backend/internal/platform/db"
)

// Deps holds the infrastructure the HTTP engine is assembled from.
// Redis may be nil; OCR may be nil.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration

	Tokens   authusecase.TokenService
	Policy   authusecase.TokenPolicy
	Verifier authusecase.IdentityVerifier

	Extractor assistantusecase.ReceiptExtractor
	Chat      assistantusecase.ChatModel
	OCR       assistantusecase.TextDetector

	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewEngine wires repositories, usecases and handlers into a gin.Engine.
func NewEngine(d Deps) *gin.Engine {
	// Repository
	userRepo := authadapters.NewUserRepository(d.DB)
	expenseRepo := NewExpenseRepository(d.DB, d.Redis, d.CacheTTL)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, d.Tokens, d.Verifier, d.Policy)
	expenseUC := expenseusecase.NewExpenseUsecase(expenseRepo)
	assistantUC := assistantusecase.NewAssistantUsecase(d.Extractor, d.Chat, d.OCR, expenseUC)

	// Handler
	handlers := router.Handlers{
		Auth:      authhandler.NewAuthHandler(authUC),
		Expense:   expensehandler.NewExpenseHandler(expenseUC),
		Assistant: assistanthandler.NewAssistantHandler(assistantUC),
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, d.DB)
		},
	}

	return router.NewRouter(handlers, authUC, router.Options{
		CORSAllowedOrigins: d.CORSAllowedOrigins,
		Logger:             d.Logger,
	})
}

// Models lists the persistent models migrated at startup.
func Models() []any {
	return []any{&authentity.User{}, &expenseadapters.ExpenseModel{}}
}
