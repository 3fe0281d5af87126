package models

import (
	"time"
)

// AdminAccount is a back-office administrator credential record. The
// production store keeps only the argon2id PasswordHash; plaintext passwords
// exist solely inside the demo account list.
type AdminAccount struct {
	AdminID      int       `db:"admin_id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedBy    string    `db:"created_by" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
