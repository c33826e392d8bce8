// Package api はHTTP APIのリクエスト/レスポンスのスキーマ型を定義します。
package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// TokenTypeBearer はTokenResponse.TokenTypeの固定値です。
const TokenTypeBearer = "bearer"

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TokenResponse defines model for TokenResponse.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest defines model for RegisterRequest.
type RegisterRequest struct {
	Email    openapi_types.Email `json:"email" binding:"required"`
	Password string              `json:"password" binding:"required"`
}

// GoogleLoginRequest defines model for GoogleLoginRequest.
type GoogleLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// TokenForm defines the form body of the password grant endpoint.
type TokenForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// SaveExpenseRequest defines model for SaveExpenseRequest.
// Fields are pointers so that a missing field is rejected while an empty
// string is stored as given.
type SaveExpenseRequest struct {
	Merchant *string  `json:"merchant" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
	Date     *string  `json:"date" binding:"required"`
	Category *string  `json:"category" binding:"required"`
	Type     string   `json:"type"`
}

// SaveExpenseResponse defines model for SaveExpenseResponse.
type SaveExpenseResponse struct {
	Status string `json:"status"`
	Id     uint   `json:"id"`
}

// ExpenseResponse defines model for ExpenseResponse.
type ExpenseResponse struct {
	Id       uint    `json:"id"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Type     string  `json:"type"`
	UserId   uint    `json:"user_id"`
}

// ChatTurn defines model for ChatTurn.
type ChatTurn struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// ChatRequest defines model for ChatRequest.
type ChatRequest struct {
	Message string     `json:"message" binding:"required"`
	History []ChatTurn `json:"history"`
}

// ChatResponse defines model for ChatResponse.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ReceiptResponse defines model for ReceiptResponse.
type ReceiptResponse struct {
	Id       uint    `json:"id"`
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status string `json:"status"`
}
