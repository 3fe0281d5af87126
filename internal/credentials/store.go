package credentials

import (
	"context"
	"errors"

	"unipathway-admin-auth/internal/models"
)

// ErrInvalidCredentials is the single failure every store returns when no
// account matches. Unknown email and wrong password are deliberately
// indistinguishable so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Store resolves an email/password pair to an admin account. Implementations
// must return either a matched account or ErrInvalidCredentials with no
// partial-match leakage; any backend failure may surface as a distinct error
// but must never reveal which field was wrong.
type Store interface {
	Authenticate(ctx context.Context, email, password string) (models.AdminAccount, error)
}
