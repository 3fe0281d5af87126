package authority

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"unipathway-admin-auth/internal/client"
	"unipathway-admin-auth/internal/credentials"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/permission"
	redisrepo "unipathway-admin-auth/internal/repository/redis"
)

const testTTL = 24 * time.Hour

func newTestAuthority(t *testing.T) (*Authority, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}

	rc := client.NewRedisClientFromAddr(mr.Addr())
	cache := redisrepo.NewSessionCache(rc, "adminAuth", nil)
	auth := NewAuthority(cache, credentials.NewDemoStore(), permission.DefaultTable(), nil, testTTL)

	return auth, mr, func() {
		_ = rc.Close()
		mr.Close()
	}
}

// seedSession writes a session JSON straight into the store, bypassing
// Login, so tests control loginTime exactly.
func seedSession(t *testing.T, mr *miniredis.Miniredis, token string, loginTime time.Time) {
	t.Helper()

	payload, err := json.Marshal(&models.AdminSession{
		AdminID:   2,
		Email:     "manager@yourunipathway.com",
		Role:      "admin",
		Name:      "Platform Manager",
		LoginTime: loginTime,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := mr.Set("adminAuth:"+token, string(payload)); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestLoginRestoreRoundTrip(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	session, err := auth.Login(ctx, "manager@yourunipathway.com", "manager123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatal("login must issue a token")
	}
	if session.LoginTime.IsZero() {
		t.Fatal("login must stamp loginTime")
	}

	restored, err := auth.Restore(ctx, session.Token)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored == nil {
		t.Fatal("expected a restored session")
	}
	if restored.AdminID != 2 || restored.Email != "manager@yourunipathway.com" ||
		restored.Role != "admin" || restored.Name != "Platform Manager" {
		t.Errorf("restored session mismatch: %+v", restored)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	_, badPassword := auth.Login(ctx, "manager@yourunipathway.com", "wrong", "10.0.0.1")
	_, unknownEmail := auth.Login(ctx, "nobody@yourunipathway.com", "manager123", "10.0.0.1")

	if !errors.Is(badPassword, credentials.ErrInvalidCredentials) {
		t.Errorf("bad password: got %v", badPassword)
	}
	if !errors.Is(unknownEmail, credentials.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", unknownEmail)
	}
	// Both failures must be indistinguishable
	if badPassword.Error() != unknownEmail.Error() {
		t.Errorf("failure messages differ: %q vs %q", badPassword, unknownEmail)
	}
}

func TestRestoreUnknownToken(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	for _, token := range []string{"", "never-issued"} {
		session, err := auth.Restore(ctx, token)
		if err != nil {
			t.Fatalf("restore %q: %v", token, err)
		}
		if session != nil {
			t.Errorf("restore %q: expected nil session", token)
		}
	}
}

func TestRestoreEnforcesLoginAnchoredExpiry(t *testing.T) {
	auth, mr, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	// Just past the 24h window: rejected and removed
	seedSession(t, mr, "expired", time.Now().UTC().Add(-testTTL-time.Second))
	session, err := auth.Restore(ctx, "expired")
	if err != nil {
		t.Fatalf("restore expired: %v", err)
	}
	if session != nil {
		t.Fatal("session past its TTL must not restore")
	}
	if mr.Exists("adminAuth:expired") {
		t.Error("expired entry should have been removed")
	}

	// Just inside the window: restores
	seedSession(t, mr, "fresh", time.Now().UTC().Add(-testTTL+time.Minute))
	session, err = auth.Restore(ctx, "fresh")
	if err != nil {
		t.Fatalf("restore fresh: %v", err)
	}
	if session == nil {
		t.Fatal("session inside its TTL must restore")
	}
}

func TestRestoreDiscardsCorruptEntry(t *testing.T) {
	auth, mr, done := newTestAuthority(t)
	defer done()

	if err := mr.Set("adminAuth:bad", "definitely not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	session, err := auth.Restore(context.Background(), "bad")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if session != nil {
		t.Fatal("corrupt entry must resolve to logged out")
	}
	if mr.Exists("adminAuth:bad") {
		t.Error("corrupt entry should have been removed")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	session, err := auth.Login(ctx, "admin@yourunipathway.com", "admin123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.Logout(ctx, session.Token, "10.0.0.1"); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := auth.Logout(ctx, session.Token, "10.0.0.1"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := auth.Logout(ctx, "", "10.0.0.1"); err != nil {
		t.Fatalf("logout without token: %v", err)
	}

	restored, err := auth.Restore(ctx, session.Token)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != nil {
		t.Error("session must be gone after logout")
	}
}

func TestUpdateActivity(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	session, err := auth.Login(ctx, "content@yourunipathway.com", "content123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	updated, err := auth.UpdateActivity(ctx, session.Token)
	if err != nil {
		t.Fatalf("update activity: %v", err)
	}
	if updated == nil || updated.LastActivity.IsZero() {
		t.Fatal("activity update must stamp lastActivity")
	}
	if !updated.LoginTime.Equal(session.LoginTime) {
		t.Error("activity update must not move loginTime")
	}

	// Without a live session it is a no-op
	noop, err := auth.UpdateActivity(ctx, "never-issued")
	if err != nil {
		t.Fatalf("no-op activity: %v", err)
	}
	if noop != nil {
		t.Error("activity without a session must be a no-op")
	}
}

func TestPredicatesWithoutSession(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()

	if auth.HasPermission(nil, permission.PermViewDashboard) {
		t.Error("nil session must hold no permission")
	}
	if auth.HasAnyPermission(nil, permission.PermViewDashboard, permission.PermExportData) {
		t.Error("nil session must fail any-check")
	}
	if auth.HasAllPermissions(nil) {
		t.Error("nil session must fail even an empty all-check")
	}
	if auth.Authorize(nil, nil, false) != permission.Forbidden {
		t.Error("nil session must be forbidden")
	}
	if auth.Permissions(nil) != nil {
		t.Error("nil session has no permission list")
	}
}

func TestPredicatesWithSession(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()
	ctx := context.Background()

	super, err := auth.Login(ctx, "admin@yourunipathway.com", "admin123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login super: %v", err)
	}
	manager, err := auth.Login(ctx, "manager@yourunipathway.com", "manager123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login manager: %v", err)
	}

	if !auth.HasPermission(super, permission.PermManageBackup) {
		t.Error("super admin session must pass every check")
	}
	if !auth.HasPermission(manager, permission.PermViewDashboard) {
		t.Error("manager should hold view_dashboard")
	}
	if auth.HasPermission(manager, permission.PermManageUsers) {
		t.Error("manager must not hold manage_users")
	}
	if auth.Authorize(manager, []permission.Permission{permission.PermViewDashboard}, true) != permission.Authorized {
		t.Error("manager should be authorized for the dashboard")
	}
	if auth.Authorize(manager, []permission.Permission{permission.PermViewLogs}, false) != permission.Forbidden {
		t.Error("manager must be forbidden from logs")
	}
}

func TestReady(t *testing.T) {
	auth, _, done := newTestAuthority(t)
	defer done()

	if auth.Ready() {
		t.Error("authority must not be ready before Init")
	}
	if err := auth.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !auth.Ready() {
		t.Error("authority must be ready after Init")
	}
}
