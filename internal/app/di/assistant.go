package di

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"expense_backend/internal/feature/assistant/adapters/gemini"
	"expense_backend/internal/feature/assistant/adapters/vision"
	"expense_backend/internal/feature/assistant/domain/entity"
	"expense_backend/internal/feature/assistant/usecase"
	"expense_backend/internal/platform/external"
	infrahttp "expense_backend/internal/platform/http"
	"expense_backend/internal/shared/ratelimiter"
)

var errModelUnavailable = errors.New("generative model is not configured")

// unavailableModel answers every request with an unavailable failure.
type unavailableModel struct {
	cause error
}

func (m unavailableModel) ExtractReceipt(ctx context.Context, img entity.ReceiptImage, prompt string) external.Result[string] {
	return external.Fail[string](external.KindUnavailable, errors.Join(errModelUnavailable, m.cause))
}

func (m unavailableModel) Reply(ctx context.Context, history []entity.Message, message string) external.Result[string] {
	return external.Fail[string](external.KindUnavailable, errors.Join(errModelUnavailable, m.cause))
}

// AssistantConfig selects the AI backends.
type AssistantConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	GeminiRPM    int // 0 = unlimited
	OCREnabled   bool
	HTTPTimeout  time.Duration // 0 = no client-side timeout
}

// AssistantBackends bundles the collaborators of the assistant usecase.
// OCR is nil when text detection is disabled.
type AssistantBackends struct {
	Extractor usecase.ReceiptExtractor
	Chat      usecase.ChatModel
	OCR       usecase.TextDetector

	closers []io.Closer
}

// Close releases the underlying API clients.
func (b *AssistantBackends) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewAssistantBackends creates the Gemini client and, when enabled, the
// Cloud Vision text detector. A client that fails to initialise is replaced
// by one that reports every call as unavailable.
func NewAssistantBackends(ctx context.Context, cfg AssistantConfig) *AssistantBackends {
	b := &AssistantBackends{}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		HTTPClient: infrahttp.NewHTTPClient(cfg.HTTPTimeout),
		Limiter:    ratelimiter.NewRateLimiter(cfg.GeminiRPM, time.Minute),
	})
	if err != nil {
		slog.Error("gemini unavailable; AI endpoints will fail", "error", err)
		m := unavailableModel{cause: err}
		b.Extractor, b.Chat = m, m
	} else {
		b.Extractor, b.Chat = client, client
	}

	if cfg.OCREnabled {
		detector, err := vision.NewTextDetector(ctx)
		if err != nil {
			slog.Warn("cloud vision unavailable; receipt OCR hint disabled", "error", err)
		} else {
			b.OCR = detector
			b.closers = append(b.closers, detector)
		}
	}
	return b
}
