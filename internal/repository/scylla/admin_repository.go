package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/util"
)

var ErrAccountNotFound = errors.New("admin account not found")

// AdminRepository persists admin accounts in ScyllaDB. Email lookups go
// through the email_to_admin table since admin_accounts is keyed by id.
type AdminRepository struct {
	client *ScyllaClient
}

func NewAdminRepository(client *ScyllaClient) *AdminRepository {
	return &AdminRepository{client: client}
}

func (r *AdminRepository) Create(ctx context.Context, account *models.AdminAccount) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	err := r.client.Prepared.CreateAccount.Bind(
		account.AdminID, account.Email, account.Name, account.Role,
		account.PasswordHash, account.IsActive, account.CreatedBy, account.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	err = r.client.Prepared.CreateEmailToAccount.Bind(
		account.Email, account.AdminID, account.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to create email mapping: %w", err)
	}

	util.Info("Admin account created",
		zap.Int("admin_id", account.AdminID),
		zap.String("role", account.Role))
	return nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	var adminID int
	err := r.client.Prepared.GetAccountByEmail.Bind(email).WithContext(ctx).Scan(&adminID)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up admin by email: %w", err)
	}

	return r.GetByID(ctx, adminID)
}

func (r *AdminRepository) GetByID(ctx context.Context, adminID int) (*models.AdminAccount, error) {
	var account models.AdminAccount
	err := r.client.Prepared.GetAccountByID.Bind(adminID).WithContext(ctx).Scan(
		&account.AdminID, &account.Email, &account.Name, &account.Role,
		&account.PasswordHash, &account.IsActive, &account.CreatedBy, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get admin account: %w", err)
	}

	return &account, nil
}

func (r *AdminRepository) UpdateStatus(ctx context.Context, adminID int, isActive bool) error {
	err := r.client.Prepared.UpdateAccountStatus.Bind(isActive, adminID).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to update admin status: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, adminID int, passwordHash string) error {
	err := r.client.Prepared.UpdateAccountPassword.Bind(passwordHash, adminID).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}
