package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"expense_backend/internal/feature/auth/domain/entity"
)

// dummyHash is compared against when no real hash is available so that every
// password check costs one bcrypt comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化し、採番されたIDをuserに設定します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// CredentialStore persists user identities and checks passwords against them.
type CredentialStore struct {
	users UserRepository
	cost  int
}

// NewCredentialStore creates a CredentialStore hashing with bcrypt.DefaultCost.
func NewCredentialStore(users UserRepository) *CredentialStore {
	return &CredentialStore{users: users, cost: bcrypt.DefaultCost}
}

// Register hashes rawPassword and persists a new user.
// It returns ErrEmailAlreadyExists when the email is taken; the existing
// user's credential is left untouched. Passwords over 72 bytes yield
// ErrPasswordTooLong.
func (s *CredentialStore) Register(ctx context.Context, email, rawPassword string) (*entity.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(rawPassword), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Email: email, HashedPassword: string(hashed)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyPassword reports whether rawPassword matches the user's stored hash.
// Externally authenticated users never match.
func (s *CredentialStore) VerifyPassword(user *entity.User, rawPassword string) bool {
	if user == nil || user.IsExternal() {
		// 比較時間を揃えるためダミーハッシュと比較する
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(rawPassword))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(rawPassword)) == nil
}

// FindByEmail returns the user with the given email or ErrUserNotFound.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.users.FindByEmail(ctx, email)
}

// ProvisionExternal returns the user for a verified external email, creating
// it with ExternalCredential on first sight.
func (s *CredentialStore) ProvisionExternal(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user = &entity.User{Email: email, HashedPassword: entity.ExternalCredential}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// 並行リクエストが先に作成した場合はそのユーザーを使う
			return s.users.FindByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}
