package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expense_backend/internal/feature/auth/domain/entity"
	"expense_backend/internal/platform/external"
)

const (
	// DefaultAccessTokenTTL は対話的ログイン（/register）で発行するトークンの有効期間です。
	DefaultAccessTokenTTL = 15 * time.Minute
	// DefaultLongLivedTokenTTL はモバイルクライアント向けの長期トークンの有効期間です。
	DefaultLongLivedTokenTTL = 500 * time.Hour
)

// TokenService はセッショントークンの発行と検証を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenService interface {
	// Issue はemailをsubjectとする署名済みトークンを発行します。
	Issue(email string, ttl time.Duration) (string, error)
	// Subject は署名と有効期限を検証し、トークンのsubjectを返します。
	Subject(token string) (string, error)
}

// IdentityVerifier は外部IDプロバイダーのトークンを検証し、検証済みのメールアドレスを返します。
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) external.Result[string]
}

// TokenPolicy selects the lifetime of issued tokens per login path.
type TokenPolicy struct {
	// Short is used by interactive registration.
	Short time.Duration
	// Long is used by external-identity and password-grant logins.
	Long time.Duration
}

// DefaultTokenPolicy returns the 15 minute / 500 hour policy.
func DefaultTokenPolicy() TokenPolicy {
	return TokenPolicy{Short: DefaultAccessTokenTTL, Long: DefaultLongLivedTokenTTL}
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	creds    *CredentialStore
	tokens   TokenService
	verifier IdentityVerifier
	policy   TokenPolicy
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
// policyのゼロ値のフィールドにはデフォルト値を使用します。
func NewAuthUsecase(users UserRepository, tokens TokenService, verifier IdentityVerifier, policy TokenPolicy) *authUsecase {
	if policy.Short <= 0 {
		policy.Short = DefaultAccessTokenTTL
	}
	if policy.Long <= 0 {
		policy.Long = DefaultLongLivedTokenTTL
	}
	return &authUsecase{
		creds:    NewCredentialStore(users),
		tokens:   tokens,
		verifier: verifier,
		policy:   policy,
	}
}

// Register は新規ユーザーを登録し、短期トークンを返します。
func (u *authUsecase) Register(ctx context.Context, email, password string) (string, error) {
	user, err := u.creds.Register(ctx, email, password)
	if err != nil {
		return "", err
	}
	return u.issue(user.Email, u.policy.Short)
}

// Login はメールアドレスとパスワードを検証し、長期トークンを返します。
// ユーザーが存在しない場合もbcrypt比較を1回実行し、応答時間からの列挙を防ぎます。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.creds.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	// userがnilの場合もVerifyPasswordはダミーハッシュと比較してfalseを返す
	if !u.creds.VerifyPassword(user, password) {
		return "", ErrInvalidCredentials
	}
	return u.issue(user.Email, u.policy.Long)
}

// ExternalLogin は外部IDトークンでログインします。未登録のメールアドレスの場合は
// パスワードなしのユーザーを自動作成します。どのステップの失敗も
// ErrIdentityVerificationFailedにまとめて返します。
func (u *authUsecase) ExternalLogin(ctx context.Context, idToken string) (string, error) {
	email, failure := u.verifier.Verify(ctx, idToken).Unwrap()
	if failure != nil {
		return "", fmt.Errorf("%w: %w", ErrIdentityVerificationFailed, failure)
	}

	user, err := u.creds.ProvisionExternal(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%w: provision user: %w", ErrIdentityVerificationFailed, err)
	}

	token, err := u.issue(user.Email, u.policy.Long)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIdentityVerificationFailed, err)
	}
	slog.Info("external identity login", "user_id", user.ID)
	return token, nil
}

// Authenticate validates a bearer token and resolves its subject to a user.
// It returns ErrInvalidToken for any signature, format or expiry problem and
// ErrUnknownIdentity when the subject no longer exists.
func (u *authUsecase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	email, err := u.tokens.Subject(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	user, err := u.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnknownIdentity
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}

func (u *authUsecase) issue(email string, ttl time.Duration) (string, error) {
	token, err := u.tokens.Issue(email, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
