// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"errors"
	"log/slog"

	"expense_backend/internal/feature/auth/adapters/firebase"
	"expense_backend/internal/feature/auth/usecase"
	"expense_backend/internal/platform/external"
)

// errVerifierUnavailable is the cause reported when the identity provider
// could not be initialised at startup.
var errVerifierUnavailable = errors.New("identity verifier is not configured")

// unavailableVerifier fails every verification. It stands in for Firebase
// when the service account cannot be loaded, so /google-login answers 401
// instead of the server refusing to start.
type unavailableVerifier struct {
	cause error
}

func (v unavailableVerifier) Verify(ctx context.Context, idToken string) external.Result[string] {
	return external.Fail[string](external.KindUnavailable, errors.Join(errVerifierUnavailable, v.cause))
}

// NewIdentityVerifier creates the Firebase-backed IdentityVerifier.
// If initialisation fails, it logs the cause and returns a verifier that
// rejects every token.
func NewIdentityVerifier(ctx context.Context, credentialsFile string) usecase.IdentityVerifier {
	v, err := firebase.NewVerifier(ctx, credentialsFile)
	if err != nil {
		slog.Error("firebase unavailable; external login disabled", "credentials_file", credentialsFile, "error", err)
		return unavailableVerifier{cause: err}
	}
	return v
}
