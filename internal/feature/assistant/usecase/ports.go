// Package usecase はレシート解析とAIチャットのビジネスロジックを実装します。
package usecase

import (
	"context"

	"expense_backend/internal/feature/assistant/domain/entity"
	expentity "expense_backend/internal/feature/expense/domain/entity"
	"expense_backend/internal/platform/external"
)

// ReceiptExtractor は画像とプロンプトからJSONテキストを生成する外部AIです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, img entity.ReceiptImage, prompt string) external.Result[string]
}

// ChatModel は会話履歴に続く応答を生成する外部AIです。
type ChatModel interface {
	Reply(ctx context.Context, history []entity.Message, message string) external.Result[string]
}

// TextDetector は画像中の文字をOCRで読み取ります。レシート解析の補助に使われ、省略可能です。
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) external.Result[string]
}

// ExpenseLedger は支出台帳のうち、本フィーチャーが使う操作です。
type ExpenseLedger interface {
	Record(ctx context.Context, ownerID uint, in expentity.NewExpense) (*expentity.Expense, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]expentity.Expense, error)
}
