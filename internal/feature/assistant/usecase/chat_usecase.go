package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"expense_backend/internal/feature/assistant/domain/entity"
	expentity "expense_backend/internal/feature/expense/domain/entity"
)

const (
	// spendingHeader は支出履歴コンテキストの先頭行です。
	spendingHeader = "Here is my recent spending history:\n"

	// assistantInstruction はモデルへの最初のユーザーターンに置く指示です。
	assistantInstruction = `You are a smart financial assistant.
1. Use the 'Database' below to answer questions about spending.
2. If the user asks a follow-up question (like 'and who was the merchant?'), refer to the previous chat history.
3. Be concise and friendly
`

	// Acknowledgement は指示に対するモデル側の応答ターンです。
	Acknowledgement = "Understood. I will answer based on your spending history."
)

// chatUsecase はユーザー自身の支出履歴を根拠にAIチャットの応答を返します。
// 会話の状態はサーバーに保持しません。
type chatUsecase struct {
	model  ChatModel
	ledger ExpenseLedger
}

// NewChatUsecase はchatUsecaseの新しいインスタンスを生成します。
func NewChatUsecase(model ChatModel, ledger ExpenseLedger) *chatUsecase {
	return &chatUsecase{model: model, ledger: ledger}
}

// Chat はmessageへの応答を返します。失敗はErrChatFailedでラップして返します。
func (u *chatUsecase) Chat(ctx context.Context, ownerID uint, message string, history []entity.ChatTurn) (string, error) {
	expenses, err := u.ledger.ListForOwner(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, err)
	}

	reply, failure := u.model.Reply(ctx, BuildConversation(expenses, history), message).Unwrap()
	if failure != nil {
		return "", fmt.Errorf("%w: %w", ErrChatFailed, failure)
	}
	return reply, nil
}

// BuildConversation はモデルに送る履歴を組み立てます。
// 指示と支出履歴のユーザーターン、了承のモデルターン、クライアントの履歴の順です。
func BuildConversation(expenses []expentity.Expense, history []entity.ChatTurn) []entity.Message {
	msgs := make([]entity.Message, 0, len(history)+2)
	msgs = append(msgs,
		entity.Message{Role: entity.RoleUser, Text: assistantInstruction + SpendingContext(expenses)},
		entity.Message{Role: entity.RoleModel, Text: Acknowledgement},
	)
	for _, h := range history {
		role := entity.RoleModel
		if h.FromUser {
			role = entity.RoleUser
		}
		msgs = append(msgs, entity.Message{Role: role, Text: h.Text})
	}
	return msgs
}

// SpendingContext は支出を1行ずつ並べたコンテキスト文字列を返します。
func SpendingContext(expenses []expentity.Expense) string {
	var b strings.Builder
	b.WriteString(spendingHeader)
	for _, e := range expenses {
		fmt.Fprintf(&b, "- %s: %s cost %s (%s)\n", e.Date, e.Merchant, formatAmount(e.Amount), e.Category)
	}
	return b.String()
}

// formatAmount は整数値でも小数点以下を1桁残します（例: 12 -> "12.0"）。
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
