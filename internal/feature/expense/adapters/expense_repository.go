// Package adapters はexpenseフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	authentity "expense_backend/internal/feature/auth/domain/entity"
	"expense_backend/internal/feature/expense/domain/entity"
	"expense_backend/internal/feature/expense/usecase"
)

type expenseRepository struct {
	db *gorm.DB
}

var _ usecase.ExpenseRepository = (*expenseRepository)(nil)

func NewExpenseRepository(db *gorm.DB) *expenseRepository {
	return &expenseRepository{db: db}
}

// ExpenseModel is the row layout of the expense table.
type ExpenseModel struct {
	ID       uint             `gorm:"primaryKey"`
	UserID   uint             `gorm:"not null;index"`
	Owner    *authentity.User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Merchant string           `gorm:"size:255;index"`
	Amount   float64          `gorm:"not null"`
	Date     string           `gorm:"size:64"`
	Category string           `gorm:"size:64"`
	Type     string           `gorm:"size:32;not null"`
}

func (ExpenseModel) TableName() string {
	return "expense"
}

func toModel(e *entity.Expense) ExpenseModel {
	return ExpenseModel{
		UserID:   e.UserID,
		Merchant: e.Merchant,
		Amount:   e.Amount,
		Date:     e.Date,
		Category: e.Category,
		Type:     e.Type,
	}
}

func toEntity(m ExpenseModel) entity.Expense {
	return entity.Expense{
		ID:       m.ID,
		UserID:   m.UserID,
		Merchant: m.Merchant,
		Amount:   m.Amount,
		Date:     m.Date,
		Category: m.Category,
		Type:     m.Type,
	}
}

func (r *expenseRepository) Create(ctx context.Context, e *entity.Expense) error {
	if e == nil {
		return errors.New("expense is nil")
	}
	m := toModel(e)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	return nil
}

func (r *expenseRepository) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Expense, error) {
	var rows []ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Expense, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
