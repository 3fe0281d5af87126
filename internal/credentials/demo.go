package credentials

import (
	"context"
	"crypto/subtle"
	"time"

	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/permission"
)

// demoAccount pairs a plaintext password with its account record.
//
// DEMO ONLY: plaintext comparison is acceptable solely because these are
// fixed demo credentials shipped in source. Production deployments must use
// the Scylla-backed store, which verifies argon2id hashes.
type demoAccount struct {
	password string
	account  models.AdminAccount
}

// DemoStore is the built-in fixed account list used for local development
// and demos. Lookup is an exact match on both email and password.
type DemoStore struct {
	accounts []demoAccount
}

// NewDemoStore returns the platform's five demo administrator accounts.
func NewDemoStore() *DemoStore {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id int, email, password, role, name string) demoAccount {
		return demoAccount{
			password: password,
			account: models.AdminAccount{
				AdminID:   id,
				Email:     email,
				Name:      name,
				Role:      role,
				IsActive:  true,
				CreatedAt: created,
			},
		}
	}

	return &DemoStore{accounts: []demoAccount{
		mk(1, "admin@yourunipathway.com", "admin123", string(permission.RoleSuperAdmin), "Super Admin"),
		mk(2, "manager@yourunipathway.com", "manager123", string(permission.RoleAdmin), "Platform Manager"),
		mk(3, "content@yourunipathway.com", "content123", string(permission.RoleAdmin), "Content Manager"),
		mk(4, "analytics@yourunipathway.com", "analytics123", string(permission.RoleAdmin), "Analytics Manager"),
		mk(5, "support@yourunipathway.com", "support123", string(permission.RoleAdmin), "Support Manager"),
	}}
}

// Authenticate scans the full list regardless of where a match occurs so the
// timing of a miss does not depend on which field was wrong.
func (s *DemoStore) Authenticate(_ context.Context, email, password string) (models.AdminAccount, error) {
	var matched *models.AdminAccount
	for i := range s.accounts {
		emailOK := subtle.ConstantTimeCompare([]byte(s.accounts[i].account.Email), []byte(email)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(s.accounts[i].password), []byte(password)) == 1
		if emailOK && passOK {
			matched = &s.accounts[i].account
		}
	}
	if matched == nil {
		return models.AdminAccount{}, ErrInvalidCredentials
	}
	return *matched, nil
}
