package usecase

// assistantUsecase はレシート解析とチャットをまとめたユースケースです。
type assistantUsecase struct {
	*receiptUsecase
	*chatUsecase
}

// NewAssistantUsecase はassistantUsecaseの新しいインスタンスを生成します。
// ocrはnilでも構いません。
func NewAssistantUsecase(extractor ReceiptExtractor, model ChatModel, ocr TextDetector, ledger ExpenseLedger) *assistantUsecase {
	return &assistantUsecase{
		receiptUsecase: NewReceiptUsecase(extractor, ocr, ledger),
		chatUsecase:    NewChatUsecase(model, ledger),
	}
}
