// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense_backend/internal/api"
	"expense_backend/internal/feature/auth/usecase"
	"expense_backend/internal/platform/http/middleware"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は新規ユーザーを登録し、短期トークンを返します。
	Register(ctx context.Context, email, password string) (string, error)
	// Login はメールアドレスとパスワードを検証し、長期トークンを返します。
	Login(ctx context.Context, email, password string) (string, error)
	// ExternalLogin は外部IDトークンでログインし、長期トークンを返します。
	ExternalLogin(ctx context.Context, idToken string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - パスワードが72バイトを超える場合は400を返却
// - メール重複時は409を返却
// - 成功時は短期トークン付きで200を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	token, err := h.auth.Register(c.Request.Context(), string(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrPasswordTooLong) {
			slog.Warn("register rejected", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Password must be at most 72 bytes"})
			return
		}
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			slog.Warn("register rejected", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
			return
		}
		slog.Error("register failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	slog.Info("user registered", "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
	c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: api.TokenTypeBearer})
}

// Token はフォーム形式（username/password）のパスワードログインを処理します。
// - 認証失敗時はユーザーの存在有無にかかわらず同じ401を返却
// - 成功時は長期トークン付きで200を返却
func (h *AuthHandler) Token(c *gin.Context) {
	var form api.TokenForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("token validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	token, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、実際のエラーを公開しない
			slog.Warn("login failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Incorrect username or password"})
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: api.TokenTypeBearer})
}

// GoogleLogin はFirebase IDトークンによるログインを処理します。
// 失敗の原因はログにのみ出力し、クライアントには一律の401を返します。
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req api.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("google login validation failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	token, err := h.auth.ExternalLogin(c.Request.Context(), req.Token)
	if err != nil {
		slog.Warn("google login failed", "error", err, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Google Authentication Failed"})
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: api.TokenTypeBearer})
}
