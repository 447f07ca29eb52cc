package executor

import (
	"strconv"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
)

// permanentTimestampMs is the sentinel startTimeMs value meaning "never
// expires".
const permanentTimestampMs int64 = 0

// History is a key->timestamp store used for both the demotion and removal
// histories. Entries expire on their own per-item TTL (backed by ttlcache)
// unless marked permanent, in which case the sweeper must never evict them
// regardless of age.
type History struct {
	retention time.Duration

	mu        sync.Mutex
	cache     *ttlcache.Cache
	permanent map[int]struct{}
}

// NewHistory creates a History with the given retention window.
func NewHistory(retention time.Duration) *History {
	cache := ttlcache.NewCache()
	cache.SkipTTLExtensionOnHit(true)
	cache.SetTTL(retention)

	return &History{
		retention: retention,
		cache:     cache,
		permanent: map[int]struct{}{},
	}
}

func brokerKey(brokerID int) string {
	return strconv.Itoa(brokerID)
}

// NoteStart records that brokerID just began a demotion/removal, stamping
// the current time unless the broker is already marked permanent (in which
// case the sentinel is left untouched).
func (h *History) NoteStart(brokerID int, nowMs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, permanent := h.permanent[brokerID]; permanent {
		return
	}

	_ = h.cache.SetWithTTL(brokerKey(brokerID), nowMs, h.retention)
}

// MarkPermanent overwrites the given brokers with the permanent sentinel;
// the sweeper will never remove them afterwards.
func (h *History) MarkPermanent(brokerIDs []int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, brokerID := range brokerIDs {
		h.permanent[brokerID] = struct{}{}
		_ = h.cache.SetWithTTL(brokerKey(brokerID), permanentTimestampMs, ttlcache.ItemNotExpire)
	}
}

// Drop removes the given brokers from the history entirely.
func (h *History) Drop(brokerIDs []int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, brokerID := range brokerIDs {
		delete(h.permanent, brokerID)
		_ = h.cache.Remove(brokerKey(brokerID))
	}
}

// Snapshot returns the set of brokers currently present in the history,
// regardless of how close to expiry they are.
func (h *History) Snapshot() map[int]int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := map[int]int64{}
	for _, key := range h.cache.GetKeys() {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		v, err := h.cache.Get(key)
		if err != nil {
			continue
		}
		out[id] = v.(int64)
	}
	return out
}

// Sweep removes entries older than the retention window, except permanent
// ones, recomputing age against nowMs rather than wall-clock time. ttlcache
// expires non-permanent entries on its own; the executor never calls Sweep,
// so this pass runs only when a caller invokes it.
func (h *History) Sweep(nowMs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, key := range h.cache.GetKeys() {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if _, permanent := h.permanent[id]; permanent {
			continue
		}

		v, err := h.cache.Get(key)
		if err != nil {
			// Already expired by ttlcache's own timer.
			continue
		}

		startTimeMs := v.(int64)
		if nowMs-startTimeMs > h.retention.Milliseconds() {
			_ = h.cache.Remove(key)
		}
	}
}

// Close releases the underlying cache's background goroutine.
func (h *History) Close() error {
	return h.cache.Close()
}
