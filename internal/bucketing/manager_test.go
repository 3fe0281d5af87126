package bucketing

import (
	"testing"
	"time"

	"unipathway-admin-auth/internal/config"
)

func newTestManager() *BucketingManager {
	return NewBucketingManager(&config.Config{
		Bucketing: config.BucketingConfig{
			AdminBuckets: 16,
			EventBuckets: 64,
		},
	})
}

func TestBucketsAreStableAndInRange(t *testing.T) {
	bm := newTestManager()

	for adminID := 1; adminID <= 100; adminID++ {
		first := bm.GetAdminBucket(adminID)
		if first < 0 || first >= 16 {
			t.Fatalf("admin bucket out of range: %d", first)
		}
		if second := bm.GetAdminBucket(adminID); second != first {
			t.Fatalf("admin bucket not stable for %d: %d vs %d", adminID, first, second)
		}
	}

	key := "manager@yourunipathway.com"
	first := bm.GetEventBucket(key)
	if first < 0 || first >= 64 {
		t.Fatalf("event bucket out of range: %d", first)
	}
	if second := bm.GetEventBucket(key); second != first {
		t.Fatalf("event bucket not stable: %d vs %d", first, second)
	}
}

func TestZeroBucketsDegradeToZero(t *testing.T) {
	bm := NewBucketingManager(&config.Config{})

	if got := bm.GetAdminBucket(42); got != 0 {
		t.Errorf("admin bucket: got %d, want 0", got)
	}
	if got := bm.GetEventBucket("anything"); got != 0 {
		t.Errorf("event bucket: got %d, want 0", got)
	}
}

func TestDateBucketIsUTCDay(t *testing.T) {
	bm := newTestManager()

	est := time.FixedZone("EST", -5*3600)
	// 23:30 EST is already the next UTC day
	at := time.Date(2025, 3, 1, 23, 30, 0, 0, est)
	if got := bm.GetDateBucket(at); got != "2025-03-02" {
		t.Errorf("date bucket: got %q, want 2025-03-02", got)
	}
}
