// Package router はHTTPルーティングを組み立てます。
package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	assistanthandler "expense_backend/internal/feature/assistant/transport/handler"
	authhandler "expense_backend/internal/feature/auth/transport/handler"
	expensehandler "expense_backend/internal/feature/expense/transport/handler"
	"expense_backend/internal/platform/http/handler"
	"expense_backend/internal/platform/http/middleware"
	jwtmw "expense_backend/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Auth      *authhandler.AuthHandler
	Expense   *expensehandler.ExpenseHandler
	Assistant *assistanthandler.AssistantHandler
	// Ready はnilの場合 /readyz を登録しません。
	Ready handler.Pinger
}

// Options はルーター全体の動作を指定します。
type Options struct {
	// CORSAllowedOrigins が空の場合CORSミドルウェアは適用しません。
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter はルートとミドルウェアを登録したgin.Engineを返します。
func NewRouter(h Handlers, authenticator jwtmw.Authenticator, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))

	// スマホアプリからの呼び出しには不要。Web クライアント向けにのみ有効化する
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSAllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders: []string{middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	if h.Ready != nil {
		r.GET("/readyz", handler.Ready(h.Ready))
	}
	// 新規ユーザー登録（トークン発行）
	r.POST("/register", h.Auth.Register)
	// パスワードグラント（フォーム）
	r.POST("/token", h.Auth.Token)
	// Google（Firebase）IDトークンでのログイン
	r.POST("/google-login", h.Auth.GoogleLogin)

	// 認証必須のルート
	// → Authorization: Bearer <token> が必要
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(authenticator))
	{
		auth.POST("/save-expense", h.Expense.SaveExpense)
		auth.GET("/expenses", h.Expense.ListExpenses)
		auth.POST("/chat", h.Assistant.Chat)
		auth.POST("/analyze-receipt", h.Assistant.AnalyzeReceipt)
	}

	return r
}
