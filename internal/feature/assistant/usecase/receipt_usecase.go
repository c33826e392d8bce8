package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"expense_backend/internal/feature/assistant/domain/entity"
	expentity "expense_backend/internal/feature/expense/domain/entity"
)

const (
	// MaxImageSize はレシート画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024

	// ReceiptPrompt はレシート画像から項目を抽出させるプロンプトです。
	ReceiptPrompt = `Analyze this receipt. Return ONLY a raw JSON object (no markdown, no backticks).
Extract these fields:
- merchant (string): Store name
- date (string): DD MM YYYY format
- amount (string): Total amount (just number, no currency symbol)
- category (string): Choose from [Food, Travel, Entertainment, Grocery, Shopping, Bills, Other]`

	ocrHintHeader = "\nText recognized on the receipt by OCR (may be incomplete):\n"
)

// receiptUsecase はレシート画像を解析し、結果を支出として記録します。
type receiptUsecase struct {
	extractor ReceiptExtractor
	ocr       TextDetector
	ledger    ExpenseLedger
}

// NewReceiptUsecase はreceiptUsecaseの新しいインスタンスを生成します。
// ocrがnilの場合、OCRによる補助は行いません。
func NewReceiptUsecase(extractor ReceiptExtractor, ocr TextDetector, ledger ExpenseLedger) *receiptUsecase {
	return &receiptUsecase{extractor: extractor, ocr: ocr, ledger: ledger}
}

// AnalyzeReceipt は画像から支出項目を抽出し、typeをDebitとして記録します。
// 失敗はすべてErrExtractionFailedでラップして返します。
func (u *receiptUsecase) AnalyzeReceipt(ctx context.Context, ownerID uint, data []byte) (*expentity.Expense, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	prompt := ReceiptPrompt + u.ocrHint(ctx, img.Data)

	text, failure := u.extractor.ExtractReceipt(ctx, img, prompt).Unwrap()
	if failure != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, failure)
	}

	fields, err := ParseReceiptFields(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	e, err := u.ledger.Record(ctx, ownerID, expentity.NewExpense{
		Merchant: fields.Merchant,
		Amount:   fields.Amount,
		Date:     fields.Date,
		Category: fields.Category,
		Type:     expentity.DefaultType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return e, nil
}

// ocrHint はOCR結果をプロンプトに付け加える文字列を返します。OCRの失敗は無視します。
func (u *receiptUsecase) ocrHint(ctx context.Context, data []byte) string {
	if u.ocr == nil {
		return ""
	}
	text, failure := u.ocr.DetectText(ctx, data).Unwrap()
	if failure != nil {
		slog.Warn("receipt ocr skipped", "error", failure)
		return ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return ocrHintHeader + text
}

// decodeImage はサイズと内容から画像であることを確認します。
func decodeImage(data []byte) (entity.ReceiptImage, error) {
	if len(data) == 0 {
		return entity.ReceiptImage{}, fmt.Errorf("%w: image data is empty", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return entity.ReceiptImage{}, fmt.Errorf("%w: image size exceeds maximum of %d bytes", ErrInvalidImage, MaxImageSize)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return entity.ReceiptImage{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, mimeType)
	}
	return entity.ReceiptImage{Data: data, MIMEType: mimeType}, nil
}

// receiptPayload はモデル出力のJSONです。amountは数値と文字列の両方を受け付けます。
type receiptPayload struct {
	Merchant *string        `json:"merchant"`
	Date     *string        `json:"date"`
	Amount   flexibleAmount `json:"amount"`
	Category *string        `json:"category"`
}

type flexibleAmount struct {
	value float64
	set   bool
}

func (a *flexibleAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("amount %q is not a number", s)
		}
		a.value, a.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &a.value); err != nil {
		return err
	}
	a.set = true
	return nil
}

// ParseReceiptFields はモデル出力からMarkdownのコードフェンスを除去し、項目を取り出します。
// いずれかの項目が欠けている場合はエラーを返します。
func ParseReceiptFields(text string) (entity.ReceiptFields, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return entity.ReceiptFields{}, errors.New("model returned an empty response")
	}

	var p receiptPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return entity.ReceiptFields{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	var missing []string
	if p.Merchant == nil {
		missing = append(missing, "merchant")
	}
	if p.Date == nil {
		missing = append(missing, "date")
	}
	if !p.Amount.set {
		missing = append(missing, "amount")
	}
	if p.Category == nil {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return entity.ReceiptFields{}, fmt.Errorf("model response is missing %s", strings.Join(missing, ", "))
	}

	return entity.ReceiptFields{
		Merchant: *p.Merchant,
		Date:     *p.Date,
		Amount:   p.Amount.value,
		Category: *p.Category,
	}, nil
}
