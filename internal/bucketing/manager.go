package bucketing

import (
	"hash"
	"strconv"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"unipathway-admin-auth/internal/config"
)

// BucketingManager assigns stable partition buckets to admins and audit
// events. ClickHouse rows and Kafka message keys use these buckets so one
// noisy admin cannot skew a single partition.
type BucketingManager struct {
	adminBuckets int
	eventBuckets int
	hasherPool   sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		adminBuckets: cfg.Bucketing.AdminBuckets,
		eventBuckets: cfg.Bucketing.EventBuckets,
	}

	// Pool of hash states to avoid per-event allocation.
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

func (bm *BucketingManager) hash(s string) uint64 {
	h := bm.hasherPool.Get().(hash.Hash64)
	h.Reset()
	_, _ = h.Write([]byte(s))
	v := h.Sum64()
	bm.hasherPool.Put(h)
	return v
}

// GetAdminBucket returns a consistent bucket for an admin id
// (0 to adminBuckets-1).
func (bm *BucketingManager) GetAdminBucket(adminID int) int {
	if bm.adminBuckets <= 0 {
		return 0
	}
	return int(bm.hash(strconv.Itoa(adminID)) % uint64(bm.adminBuckets))
}

// GetEventBucket returns a consistent bucket for an event key, typically
// the admin email (0 to eventBuckets-1).
func (bm *BucketingManager) GetEventBucket(key string) int {
	if bm.eventBuckets <= 0 {
		return 0
	}
	return int(bm.hash(key) % uint64(bm.eventBuckets))
}

// GetDateBucket returns the YYYY-MM-DD partition label for an event time.
func (bm *BucketingManager) GetDateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
