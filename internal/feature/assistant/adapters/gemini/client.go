// Package gemini はGoogle Gemini APIを使用したレシート解析・チャットクライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"expense_backend/internal/feature/assistant/domain/entity"
	"expense_backend/internal/feature/assistant/usecase"
	"expense_backend/internal/platform/external"
	"expense_backend/internal/shared/ratelimiter"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// jsonMIMEType はレシート解析でモデルに要求する出力形式です。
	jsonMIMEType = "application/json"
)

// Config はClientの接続設定です。
type Config struct {
	// APIKey が空の場合、環境変数（GOOGLE_GENAI_USE_VERTEXAI 等）とADCを使用します。
	APIKey string
	Model  string
	// BaseURL はエンドポイントを差し替える場合に指定します。
	BaseURL string
	// HTTPClient はアウトバウンド通信に使うクライアントです。nilの場合はSDKの既定値です。
	HTTPClient *http.Client
	// Limiter はAPI呼び出しの頻度を制限します。nilの場合は制限しません。
	Limiter ratelimiter.RateLimiterInterface
}

// Client はGemini APIを使用してレシート解析とチャット応答を生成します。
type Client struct {
	client  *genai.Client
	model   string
	limiter ratelimiter.RateLimiterInterface
}

// ClientがReceiptExtractorとChatModelを実装していることをコンパイル時に検証します。
var (
	_ usecase.ReceiptExtractor = (*Client)(nil)
	_ usecase.ChatModel        = (*Client)(nil)
)

// NewClient はClientの新しいインスタンスを生成します。
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" || cfg.BaseURL != "" || cfg.HTTPClient != nil {
		cc = &genai.ClientConfig{
			APIKey:      cfg.APIKey,
			HTTPClient:  cfg.HTTPClient,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		}
		if cfg.APIKey != "" {
			cc.Backend = genai.BackendGeminiAPI
		}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model, limiter: cfg.Limiter}, nil
}

// ExtractReceipt は画像とプロンプトを送り、JSON形式の応答テキストを返します。
func (g *Client) ExtractReceipt(ctx context.Context, img entity.ReceiptImage, prompt string) external.Result[string] {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}
	return g.generate(ctx, contents, &genai.GenerateContentConfig{ResponseMIMEType: jsonMIMEType})
}

// Reply は履歴に続けてmessageを送り、モデルの応答を返します。
func (g *Client) Reply(ctx context.Context, history []entity.Message, message string) external.Result[string] {
	contents := ToContents(history)
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))
	return g.generate(ctx, contents, nil)
}

func (g *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) external.Result[string] {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return external.Fail[string](external.KindUnavailable, fmt.Errorf("rate limit wait aborted: %w", err))
		}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return external.Fail[string](classify(err), fmt.Errorf("gemini API request failed: %w", err))
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return external.Fail[string](external.KindRejected, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return external.Fail[string](external.KindInvalidResponse, errors.New("gemini returned no text"))
	}
	return external.OK(text)
}

// ToContents は会話履歴をgenaiのContentに変換します。
func ToContents(history []entity.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == entity.RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Text, role))
	}
	return out
}

// classify はAPIエラーのステータスコードから失敗の種類を判定します。
func classify(err error) external.FailureKind {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return kindForStatus(apiErrPtr.Code)
	}
	return external.KindUnavailable
}

func kindForStatus(code int) external.FailureKind {
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return external.KindRejected
	}
	return external.KindUnavailable
}
