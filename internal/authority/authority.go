package authority

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unipathway-admin-auth/internal/audit"
	"unipathway-admin-auth/internal/credentials"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/permission"
	redisrepo "unipathway-admin-auth/internal/repository/redis"
	"unipathway-admin-auth/internal/util"
)

// Authority is the session and permission authority for the admin
// back office. It owns the full session lifecycle (login, restore,
// activity, logout) and answers every permission question through the
// static role table.
//
// Failure posture is fail closed: any storage error or malformed state
// resolves to "not logged in", never to a partially trusted session.
type Authority struct {
	sessions *redisrepo.SessionCache
	creds    credentials.Store
	table    *permission.Table
	audit    *audit.Recorder
	ttl      time.Duration
	now      func() time.Time
	ready    atomic.Bool
}

// Option tweaks an Authority. Used by tests to control the clock.
type Option func(*Authority)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) { a.now = now }
}

// NewAuthority wires the authority. The audit recorder may be nil; auth
// operations never depend on audit sinks.
func NewAuthority(
	sessions *redisrepo.SessionCache,
	creds credentials.Store,
	table *permission.Table,
	recorder *audit.Recorder,
	sessionTTL time.Duration,
	opts ...Option,
) *Authority {
	a := &Authority{
		sessions: sessions,
		creds:    creds,
		table:    table,
		audit:    recorder,
		ttl:      sessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init verifies the session store is reachable and marks the authority
// ready. Until Init succeeds every session question answers "logged out".
func (a *Authority) Init(ctx context.Context) error {
	if err := a.sessions.HealthCheck(ctx); err != nil {
		return fmt.Errorf("session store unavailable: %w", err)
	}
	a.ready.Store(true)
	util.Info("Session authority initialized",
		zap.Duration("session_ttl", a.ttl))
	return nil
}

// Ready reports whether Init has completed.
func (a *Authority) Ready() bool {
	return a.ready.Load()
}

// Close marks the authority not ready. The underlying clients are owned
// and closed by the factory.
func (a *Authority) Close() {
	a.ready.Store(false)
}

// Login authenticates the credentials and creates a fresh session with a
// new token. Every authentication failure is reported as
// credentials.ErrInvalidCredentials with no detail about which part of
// the credentials was wrong.
func (a *Authority) Login(ctx context.Context, email, password, ipAddress string) (*models.AdminSession, error) {
	email = util.NormalizeEmail(email)

	account, err := a.creds.Authenticate(ctx, email, password)
	if err != nil {
		a.record(ctx, models.EventLoginFailure, nil, ipAddress, email)
		return nil, credentials.ErrInvalidCredentials
	}

	session := &models.AdminSession{
		AdminID:   account.AdminID,
		Email:     account.Email,
		Role:      account.Role,
		Name:      account.Name,
		LoginTime: a.now().UTC(),
		Token:     uuid.New().String(),
	}

	if err := a.sessions.Save(ctx, session, a.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	a.record(ctx, models.EventLoginSuccess, session, ipAddress, "")
	util.Info("Admin logged in",
		zap.Int("admin_id", session.AdminID),
		zap.String("role", session.Role))

	return session, nil
}

// Restore returns the live session for a token, or (nil, nil) when there
// is none. Expiry is anchored to login time and enforced here: an expired
// entry is removed and treated as absent. Corrupt entries are handled the
// same way by the cache layer.
func (a *Authority) Restore(ctx context.Context, token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, nil
	}

	session, err := a.sessions.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if session.ExpiredAt(a.now(), a.ttl) {
		if err := a.sessions.Delete(ctx, token); err != nil {
			util.Warn("Failed to remove expired session", zap.Error(err))
		}
		a.record(ctx, models.EventSessionExpired, session, "", "")
		return nil, nil
	}

	return session, nil
}

// UpdateActivity stamps the session's last-activity time and re-persists
// it. The entry keeps its remaining lifetime: activity never extends
// expiry past loginTime+TTL. Without a live session this is a no-op.
func (a *Authority) UpdateActivity(ctx context.Context, token string) (*models.AdminSession, error) {
	session, err := a.Restore(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}

	now := a.now().UTC()
	session.LastActivity = now

	remaining := session.ExpiresAt(a.ttl).Sub(now)
	if err := a.sessions.Save(ctx, session, remaining); err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}

	return session, nil
}

// Logout removes the session for a token. Logging out an already absent
// session succeeds; the result state is the same.
func (a *Authority) Logout(ctx context.Context, token, ipAddress string) error {
	if token == "" {
		return nil
	}

	session, err := a.sessions.Load(ctx, token)
	if err != nil {
		util.Warn("Session read failed during logout", zap.Error(err))
	}

	if err := a.sessions.Delete(ctx, token); err != nil {
		return err
	}

	a.record(ctx, models.EventLogout, session, ipAddress, "")
	return nil
}

// HasPermission answers the single-permission question for a session.
// A nil session holds no permissions at all.
func (a *Authority) HasPermission(session *models.AdminSession, perm permission.Permission) bool {
	if session == nil {
		return false
	}
	return a.table.HasPermission(permission.Role(session.Role), perm)
}

// HasAnyPermission reports whether the session holds at least one of the
// given permissions.
func (a *Authority) HasAnyPermission(session *models.AdminSession, perms ...permission.Permission) bool {
	if session == nil {
		return false
	}
	return a.table.HasAnyPermission(permission.Role(session.Role), perms)
}

// HasAllPermissions reports whether the session holds every one of the
// given permissions.
func (a *Authority) HasAllPermissions(session *models.AdminSession, perms ...permission.Permission) bool {
	if session == nil {
		return false
	}
	return a.table.HasAllPermissions(permission.Role(session.Role), perms)
}

// Authorize evaluates an access requirement against a session. A nil
// session is Forbidden; middleware distinguishes "not logged in" before
// it gets here.
func (a *Authority) Authorize(session *models.AdminSession, required []permission.Permission, requireAll bool) permission.Decision {
	if session == nil {
		return permission.Forbidden
	}
	return a.table.Authorize(permission.Role(session.Role), required, requireAll)
}

// Permissions lists the effective permission set for a session's role.
func (a *Authority) Permissions(session *models.AdminSession) []permission.Permission {
	if session == nil {
		return nil
	}
	return a.table.Permissions(permission.Role(session.Role))
}

// record emits an audit event without blocking the auth operation.
func (a *Authority) record(ctx context.Context, eventType string, session *models.AdminSession, ipAddress, details string) {
	if a.audit == nil {
		return
	}
	go a.audit.Record(ctx, eventType, session, ipAddress, details)
}
