// Package handler はexpenseフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"expense_backend/internal/api"
	"expense_backend/internal/feature/expense/domain/entity"
	"expense_backend/internal/platform/http/middleware"
	jwtmw "expense_backend/internal/platform/jwt"
)

// ExpenseUsecase は支出台帳のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ExpenseUsecase interface {
	Record(ctx context.Context, ownerID uint, in entity.NewExpense) (*entity.Expense, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]entity.Expense, error)
}

// ExpenseHandler は支出のHTTPリクエストを処理します。
// どの操作も認証済みユーザー自身の台帳だけを対象にします。
type ExpenseHandler struct {
	uc ExpenseUsecase
}

// NewExpenseHandler はExpenseHandlerの新しいインスタンスを生成します。
func NewExpenseHandler(uc ExpenseUsecase) *ExpenseHandler {
	return &ExpenseHandler{uc: uc}
}

// SaveExpense は支出を1件記録します。
//
// エンドポイント例:
// POST /save-expense {"merchant":"Cafe","amount":4.5,"date":"01 02 2026","category":"Food"}
func (h *ExpenseHandler) SaveExpense(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	var req api.SaveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("save expense validation failed", "error", err, "user_id", p.UserID, "remote_addr", c.ClientIP(), "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	e, err := h.uc.Record(c.Request.Context(), p.UserID, entity.NewExpense{
		Merchant: *req.Merchant,
		Amount:   *req.Amount,
		Date:     *req.Date,
		Category: *req.Category,
		Type:     req.Type,
	})
	if err != nil {
		slog.Error("save expense failed", "error", err, "user_id", p.UserID, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, api.SaveExpenseResponse{Status: "saved", Id: e.ID})
}

// ListExpenses は認証済みユーザーの支出を新しい順に返します。
//
// エンドポイント例:
// GET /expenses
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	p, ok := jwtmw.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	expenses, err := h.uc.ListForOwner(c.Request.Context(), p.UserID)
	if err != nil {
		slog.Error("list expenses failed", "error", err, "user_id", p.UserID, "request_id", middleware.RequestIDFrom(c))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]api.ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, api.ExpenseResponse{
			Id:       e.ID,
			Merchant: e.Merchant,
			Amount:   e.Amount,
			Date:     e.Date,
			Category: e.Category,
			Type:     e.Type,
			UserId:   e.UserID,
		})
	}
	c.JSON(http.StatusOK, out)
}
