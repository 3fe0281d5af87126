package encryption

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"unipathway-admin-auth/internal/config"
)

func newLocalManager() *EncryptionManager {
	// KMS disabled: DEKs are generated locally
	return NewEncryptionManager(&config.Config{}, nil)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	em := newLocalManager()
	ctx := context.Background()

	plaintext := `{"id":2,"email":"manager@yourunipathway.com","role":"admin"}`

	envelope, err := em.EncryptString(ctx, plaintext)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if envelope == plaintext {
		t.Fatal("envelope must not equal the plaintext")
	}

	got, err := em.DecryptString(ctx, envelope)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != plaintext {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestDecryptSurvivesCacheClear(t *testing.T) {
	em := newLocalManager()
	ctx := context.Background()

	envelope, err := em.EncryptString(ctx, "session payload")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// The local DEK is recoverable from the envelope itself
	em.ClearCache()

	got, err := em.DecryptString(ctx, envelope)
	if err != nil {
		t.Fatalf("decrypt after cache clear: %v", err)
	}
	if got != "session payload" {
		t.Errorf("got %q", got)
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	em := newLocalManager()
	ctx := context.Background()

	cases := []string{
		"",
		"not an envelope",
		`{"encrypted_value":"!!!","encrypted_dek":"!!!","key_id":"x","version":"v1"}`,
	}
	for _, envelope := range cases {
		if _, err := em.DecryptString(ctx, envelope); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("envelope %q: got %v, want ErrDecryptionFailed", envelope, err)
		}
	}
}

func TestTamperedCiphertextFails(t *testing.T) {
	em := newLocalManager()
	ctx := context.Background()

	envelope, err := em.EncryptString(ctx, "session payload")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	var parsed EncryptedData
	if err := json.Unmarshal([]byte(envelope), &parsed); err != nil {
		t.Fatalf("parse envelope: %v", err)
	}
	prefix := "AAAA"
	if parsed.EncryptedValue[:4] == prefix {
		prefix = "BBBB"
	}
	parsed.EncryptedValue = prefix + parsed.EncryptedValue[4:]

	tampered, err := json.Marshal(&parsed)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if _, err := em.DecryptString(ctx, string(tampered)); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("tampered ciphertext: got %v, want ErrDecryptionFailed", err)
	}
}
