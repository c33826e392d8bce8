// Package jwtmw はセッショントークン（HS256署名のJWT）の発行・検証と、
// それを使うGin認証ミドルウェアを提供します。
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret はトークン署名鍵を保持する環境変数名です。
const EnvKeyJWTSecret = "JWT_SECRET"

var (
	// ErrEmptySecret は署名鍵が空の場合に返されます。
	ErrEmptySecret = errors.New("jwt secret must not be empty")
	// ErrNonPositiveTTL は有効期間が0以下の場合に返されます。
	ErrNonPositiveTTL = errors.New("token ttl must be positive")
	// ErrMissingSubject はトークンにsubjectが含まれない場合に返されます。
	ErrMissingSubject = errors.New("token has no subject")
)

// Option はTokenServiceの設定を変更します。
type Option func(*TokenService)

// WithClock は現在時刻の取得関数を差し替えます。有効期限の境界テストで使用します。
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// TokenService はemailをsubjectとするトークンを発行・検証します。
// トークンはサーバー側に保存されません。
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService は署名鍵を使うTokenServiceを生成します。
func NewTokenService(secret string, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &TokenService{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue は {sub: email, exp: now+ttl, iat: now} を署名したトークンを返します。
func (s *TokenService) Issue(email string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrNonPositiveTTL
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Subject は署名・アルゴリズム・有効期限を検証し、subjectを返します。
// exp と同じ時刻以降は期限切れとして扱います。
func (s *TokenService) Subject(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
