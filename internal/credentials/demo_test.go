package credentials

import (
	"context"
	"errors"
	"testing"
)

func TestDemoAccountsAuthenticate(t *testing.T) {
	store := NewDemoStore()
	ctx := context.Background()

	cases := []struct {
		email    string
		password string
		id       int
		role     string
		name     string
	}{
		{"admin@yourunipathway.com", "admin123", 1, "super_admin", "Super Admin"},
		{"manager@yourunipathway.com", "manager123", 2, "admin", "Platform Manager"},
		{"content@yourunipathway.com", "content123", 3, "admin", "Content Manager"},
		{"analytics@yourunipathway.com", "analytics123", 4, "admin", "Analytics Manager"},
		{"support@yourunipathway.com", "support123", 5, "admin", "Support Manager"},
	}
	for _, tc := range cases {
		account, err := store.Authenticate(ctx, tc.email, tc.password)
		if err != nil {
			t.Errorf("%s: %v", tc.email, err)
			continue
		}
		if account.AdminID != tc.id || account.Role != tc.role || account.Name != tc.name {
			t.Errorf("%s: got %+v", tc.email, account)
		}
		if !account.IsActive {
			t.Errorf("%s: demo accounts are active", tc.email)
		}
	}
}

func TestDemoAuthenticateFailures(t *testing.T) {
	store := NewDemoStore()
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "manager@yourunipathway.com", "nope"},
		{"unknown email", "nobody@yourunipathway.com", "manager123"},
		{"credentials from different accounts", "manager@yourunipathway.com", "content123"},
		{"empty credentials", "", ""},
		// Matching is exact; no case folding
		{"uppercased email", "MANAGER@yourunipathway.com", "manager123"},
	}
	for _, tc := range cases {
		_, err := store.Authenticate(ctx, tc.email, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: got %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}
