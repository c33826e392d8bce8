// Package entity defines the domain models for the expense feature.
package entity

// DefaultType is applied when an expense is recorded without a type.
const DefaultType = "Debit"

// Expense is a single spending record owned by exactly one user.
type Expense struct {
	ID       uint    // Auto-assigned, increases with insertion order
	UserID   uint    // Owner; never changes after creation
	Merchant string  // Free-form merchant name
	Amount   float64 // No currency rounding is applied
	Date     string  // Free-form, e.g. "05 01 2026"
	Category string  // Free-form, e.g. "Food"
	Type     string  // "Debit" unless the client says otherwise
}

// NewExpense carries the caller-supplied fields of an expense to record.
type NewExpense struct {
	Merchant string
	Amount   float64
	Date     string
	Category string
	Type     string
}
