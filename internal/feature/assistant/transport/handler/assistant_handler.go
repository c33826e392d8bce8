// Package handler はassistantフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense_backend/internal/api"
	"expense_backend/internal/feature/assistant/domain/entity"
	"expense_backend/internal/feature/assistant/usecase"
	expentity "expense_backend/internal/feature/expense/domain/entity"
	"expense_backend/internal/platform/http/middleware"
	jwtmw "expense_backend/internal/platform/jwt"
)

// failedMessage はAI処理の失敗時に原因を問わず返すメッセージです。
const failedMessage = "Failed"

// AssistantUsecase はレシート解析とチャットのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AssistantUsecase interface {
	AnalyzeReceipt(ctx context.Context, ownerID uint, data []byte) (*expentity.Expense, error)
	Chat(ctx context.Context, ownerID uint, message string, history []entity.ChatTurn) (string, error)
}

// AssistantHandler はレシート解析とチャットのHTTPリクエストを処理します。
type AssistantHandler struct {
	uc AssistantUsecase
}

// NewAssistantHandler はAssistantHandlerの新しいインスタンスを生成します。
func NewAssistantHandler(uc AssistantUsecase) *AssistantHandler {
	return &AssistantHandler{uc: uc}
}

// AnalyzeReceipt はレシート画像を解析して支出として記録します。
//
// エンドポイント: POST /analyze-receipt
// Content-Type: multipart/form-data
// フィールド: file（画像ファイル、最大10MB）
func (h *AssistantHandler) AnalyzeReceipt(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		slog.Warn("receipt file missing", "error", err, "user_id", p.UserID, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("failed to open receipt file", "error", err, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: failedMessage})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close receipt file", "error", err, "request_id", middleware.RequestIDFrom(c))
		}
	}()

	// 上限+1バイトまで読み、サイズ超過はusecaseで判定する
	data, err := io.ReadAll(io.LimitReader(f, usecase.MaxImageSize+1))
	if err != nil {
		slog.Error("failed to read receipt file", "error", err, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: failedMessage})
		return
	}

	e, err := h.uc.AnalyzeReceipt(c.Request.Context(), p.UserID, data)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidImage) {
			slog.Warn("receipt rejected", "error", err, "user_id", p.UserID, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		} else {
			slog.Error("receipt analysis failed", "error", err, "user_id", p.UserID, "request_id", middleware.RequestIDFrom(c))
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: failedMessage})
		return
	}

	c.JSON(http.StatusOK, api.ReceiptResponse{
		Id:       e.ID,
		Merchant: e.Merchant,
		Amount:   e.Amount,
		Date:     e.Date,
		Category: e.Category,
	})
}

// Chat はユーザーの支出履歴を根拠にAIの応答を返します。
//
// エンドポイント: POST /chat
// Content-Type: application/json
func (h *AssistantHandler) Chat(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("chat validation failed", "error", err, "user_id", p.UserID, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	history := make([]entity.ChatTurn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, entity.ChatTurn{Text: t.Text, FromUser: t.IsUser})
	}

	reply, err := h.uc.Chat(c.Request.Context(), p.UserID, req.Message, history)
	if err != nil {
		slog.Error("chat failed", "error", err, "user_id", p.UserID, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: failedMessage})
		return
	}

	c.JSON(http.StatusOK, api.ChatResponse{Reply: reply})
}
