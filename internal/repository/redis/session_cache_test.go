package redis

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"unipathway-admin-auth/internal/client"
	"unipathway-admin-auth/internal/models"
)

func newTestCache(t *testing.T, cipher Cipher) (*SessionCache, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}

	rc := client.NewRedisClientFromAddr(mr.Addr())
	cache := NewSessionCache(rc, "adminAuth", cipher)

	return cache, mr, func() {
		_ = rc.Close()
		mr.Close()
	}
}

func testSession(token string) *models.AdminSession {
	return &models.AdminSession{
		AdminID:   2,
		Email:     "manager@yourunipathway.com",
		Role:      "admin",
		Name:      "Platform Manager",
		LoginTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Token:     token,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cache, _, done := newTestCache(t, nil)
	defer done()
	ctx := context.Background()

	sess := testSession("tok-1")
	if err := cache.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := cache.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected a session")
	}
	if got.AdminID != sess.AdminID || got.Email != sess.Email || got.Role != sess.Role || got.Name != sess.Name {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if !got.LoginTime.Equal(sess.LoginTime) {
		t.Errorf("login time mismatch: got %v, want %v", got.LoginTime, sess.LoginTime)
	}
	if got.Token != "tok-1" {
		t.Errorf("token not re-attached: got %q", got.Token)
	}
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	cache, _, done := newTestCache(t, nil)
	defer done()

	got, err := cache.Load(context.Background(), "absent")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil session, got %+v", got)
	}
}

func TestCorruptEntryIsDeleted(t *testing.T) {
	cache, mr, done := newTestCache(t, nil)
	defer done()
	ctx := context.Background()

	if err := mr.Set("adminAuth:bad", "{not valid json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := cache.Load(ctx, "bad")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt entry must read as no session, got %+v", got)
	}
	if mr.Exists("adminAuth:bad") {
		t.Error("corrupt entry should have been deleted")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	cache, _, done := newTestCache(t, nil)
	defer done()
	ctx := context.Background()

	if err := cache.Save(ctx, testSession("tok-2"), time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cache.Delete(ctx, "tok-2"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := cache.Delete(ctx, "tok-2"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

// base64Cipher is a stand-in for the KMS envelope cipher.
type base64Cipher struct{}

func (base64Cipher) EncryptString(_ context.Context, plaintext string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
}

func (base64Cipher) DecryptString(_ context.Context, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(raw), nil
}

func TestCipherRoundTrip(t *testing.T) {
	cache, mr, done := newTestCache(t, base64Cipher{})
	defer done()
	ctx := context.Background()

	sess := testSession("tok-3")
	if err := cache.Save(ctx, sess, time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The stored value must not be the plain JSON
	raw, err := mr.Get("adminAuth:tok-3")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw[0] == '{' {
		t.Error("stored payload looks unencrypted")
	}

	got, err := cache.Load(ctx, "tok-3")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.Email != sess.Email {
		t.Fatalf("cipher round trip failed: %+v", got)
	}
}

func TestUndecryptableEntryIsDeleted(t *testing.T) {
	cache, mr, done := newTestCache(t, base64Cipher{})
	defer done()

	if err := mr.Set("adminAuth:tok-4", "!!! not base64 !!!"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := cache.Load(context.Background(), "tok-4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("undecryptable entry must read as no session, got %+v", got)
	}
	if mr.Exists("adminAuth:tok-4") {
		t.Error("undecryptable entry should have been deleted")
	}
}
