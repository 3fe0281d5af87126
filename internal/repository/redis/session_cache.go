package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"unipathway-admin-auth/internal/client"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/util"
)

const opTimeout = 5 * time.Second

// Cipher optionally encrypts session payloads at rest. The KMS-backed
// encryption manager satisfies it; a nil Cipher stores plain JSON.
type Cipher interface {
	EncryptString(ctx context.Context, plaintext string) (string, error)
	DecryptString(ctx context.Context, ciphertext string) (string, error)
}

// SessionCache persists admin sessions in Redis, one JSON value per token
// under a fixed key prefix. The writer always serializes the full session;
// the reader treats a missing key as no session and deletes malformed
// entries instead of surfacing them.
type SessionCache struct {
	client *client.RedisClient
	prefix string
	cipher Cipher
}

func NewSessionCache(rc *client.RedisClient, keyPrefix string, cipher Cipher) *SessionCache {
	return &SessionCache{client: rc, prefix: keyPrefix, cipher: cipher}
}

func (c *SessionCache) key(token string) string {
	return c.prefix + ":" + token
}

// Save writes the full session under its token with the given TTL.
func (c *SessionCache) Save(ctx context.Context, session *models.AdminSession, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	value := string(payload)
	if c.cipher != nil {
		if value, err = c.cipher.EncryptString(ctx, value); err != nil {
			return fmt.Errorf("failed to encrypt session payload: %w", err)
		}
	}

	if err := c.client.Set(ctx, c.key(session.Token), value, ttl); err != nil {
		util.Error("Failed to persist admin session",
			zap.String("token", session.Token),
			zap.Error(err))
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Load reads the session stored under token. A missing entry returns
// (nil, nil). A malformed or undecryptable entry is deleted and reported as
// no session; storage corruption never escapes to the caller as a session.
func (c *SessionCache) Load(ctx context.Context, token string) (*models.AdminSession, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, c.key(token))
	if err != nil {
		var notFound *client.KeyNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if c.cipher != nil {
		if value, err = c.cipher.DecryptString(ctx, value); err != nil {
			util.Warn("Discarding undecryptable admin session",
				zap.String("token", token),
				zap.Error(err))
			_ = c.client.Del(ctx, c.key(token))
			return nil, nil
		}
	}

	var session models.AdminSession
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		util.Warn("Discarding corrupt admin session entry",
			zap.String("token", token),
			zap.Error(err))
		_ = c.client.Del(ctx, c.key(token))
		return nil, nil
	}

	session.Token = token
	return &session, nil
}

// Delete removes the session entry. Deleting an absent entry is not an
// error; logout must be idempotent.
func (c *SessionCache) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(token)); err != nil {
		util.Error("Failed to delete admin session",
			zap.String("token", token),
			zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// HealthCheck pings the underlying client.
func (c *SessionCache) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}
