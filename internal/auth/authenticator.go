package auth

import (
	"context"

	"github.com/mmynk/tillpoint/internal/models"
)

// Authenticator verifies operator credentials. Implementations can be swapped
// (password, PIN, badge) without touching the service layer.
type Authenticator interface {
	// Register creates an operator account with the given login code and role.
	Register(ctx context.Context, code, displayName, role, credential string) (*models.User, error)

	// Authenticate returns the operator when credential matches.
	Authenticate(ctx context.Context, code, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's rules.
	ValidateCredential(credential string) error
}
