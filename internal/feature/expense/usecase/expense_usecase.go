// Package usecase は支出台帳のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"expense_backend/internal/feature/expense/domain/entity"
)

// ExpenseRepository は支出データの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ExpenseRepository interface {
	// Create は支出を追加し、採番されたIDをeに設定します。
	Create(ctx context.Context, e *entity.Expense) error
	// ListByOwner は指定ユーザーの支出をID降順で返します。
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Expense, error)
}

// expenseUsecase は支出台帳のユースケースです。
type expenseUsecase struct {
	repo ExpenseRepository
}

// NewExpenseUsecase はexpenseUsecaseの新しいインスタンスを生成します。
func NewExpenseUsecase(repo ExpenseRepository) *expenseUsecase {
	return &expenseUsecase{repo: repo}
}

// Record は所有者に紐づく支出を1件記録します。
// typeが空の場合はDebitを設定します。日付・金額・カテゴリは検証しません。
func (u *expenseUsecase) Record(ctx context.Context, ownerID uint, in entity.NewExpense) (*entity.Expense, error) {
	if ownerID == 0 {
		return nil, ErrNoOwner
	}
	e := &entity.Expense{
		UserID:   ownerID,
		Merchant: in.Merchant,
		Amount:   in.Amount,
		Date:     in.Date,
		Category: in.Category,
		Type:     in.Type,
	}
	if e.Type == "" {
		e.Type = entity.DefaultType
	}
	if err := u.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return e, nil
}

// ListForOwner は所有者の支出を新しい順に返します。該当がない場合は空スライスを返します。
func (u *expenseUsecase) ListForOwner(ctx context.Context, ownerID uint) ([]entity.Expense, error) {
	if ownerID == 0 {
		return nil, ErrNoOwner
	}
	out, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if out == nil {
		out = []entity.Expense{}
	}
	return out, nil
}
