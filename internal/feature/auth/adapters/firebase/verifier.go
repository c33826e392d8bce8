// Package firebase はFirebase AuthenticationのIDトークン検証を提供します。
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"expense_backend/internal/feature/auth/usecase"
	"expense_backend/internal/platform/external"
)

// tokenVerifier はauth.Clientのうち、本パッケージが使うメソッドだけを切り出したものです。
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier はFirebase IDトークンを検証し、検証済みのメールアドレスを返します。
type Verifier struct {
	client tokenVerifier
}

var _ usecase.IdentityVerifier = (*Verifier)(nil)

// NewVerifier はサービスアカウントJSONからFirebaseアプリを初期化します。
func NewVerifier(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*Verifier, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := fb.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}
	return &Verifier{client: client}, nil
}

// Verify はIDトークンを1回だけ検証します。リトライは行いません。
func (v *Verifier) Verify(ctx context.Context, idToken string) external.Result[string] {
	if strings.TrimSpace(idToken) == "" {
		return external.Fail[string](external.KindRejected, errors.New("empty id token"))
	}

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenInvalid(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenRevoked(err) {
			return external.Fail[string](external.KindRejected, err)
		}
		return external.Fail[string](external.KindUnavailable, err)
	}

	email, _ := tok.Claims["email"].(string)
	if email == "" {
		return external.Fail[string](external.KindInvalidResponse, errors.New("id token has no email claim"))
	}
	return external.OK(email)
}
