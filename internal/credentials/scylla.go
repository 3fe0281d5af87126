package credentials

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"unipathway-admin-auth/internal/hashing"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/repository/scylla"
	"unipathway-admin-auth/internal/util"
)

// ScyllaStore authenticates against admin accounts stored in ScyllaDB
// with argon2id password hashes. Every failure collapses into
// ErrInvalidCredentials so callers cannot tell which part was wrong.
type ScyllaStore struct {
	repo   *scylla.AdminRepository
	hasher *hashing.Hasher
}

func NewScyllaStore(repo *scylla.AdminRepository, hasher *hashing.Hasher) *ScyllaStore {
	return &ScyllaStore{repo: repo, hasher: hasher}
}

func (s *ScyllaStore) Authenticate(ctx context.Context, email, password string) (models.AdminAccount, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, scylla.ErrAccountNotFound) {
			util.Error("Admin lookup failed", zap.Error(err))
		}
		return models.AdminAccount{}, ErrInvalidCredentials
	}

	if !account.IsActive {
		return models.AdminAccount{}, ErrInvalidCredentials
	}

	match, err := s.hasher.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		util.Error("Password verification failed", zap.Error(err))
		return models.AdminAccount{}, ErrInvalidCredentials
	}
	if !match {
		return models.AdminAccount{}, ErrInvalidCredentials
	}

	return *account, nil
}
