// Package replay implements the replay guard (spec §4.8): per-provider
// (provider_id, request_id) uniqueness within a TTL window, with a
// pluggable backing store.
//
// Grounded on internal/gossip/quorum.go: a mutex-guarded map of observations
// with per-entry timestamps, a background pruning loop, and a TTL cutoff
// computed at lookup time. checkAndSet plays the role of quorum.Record,
// but is atomic set-if-absent rather than merge-if-present.
package replay

import (
	"time"

	"go.uber.org/zap"
)

// Store is the backing contract for replay detection: an atomic
// set-if-absent with a TTL, matching a distributed KV's SET NX EX
// semantics.
type Store interface {
	// CheckAndSet returns true iff key has not been observed within ttl of
	// now, and records it as observed until now+ttl. It must be atomic.
	CheckAndSet(key string, now time.Time, ttl time.Duration) (bool, error)
}

// KeyPrefix is prepended to every provider/request pair to form the store
// key, matching the distributed-store key format from spec §4.8.
const KeyPrefix = "scbe-replay:"

// Key formats the canonical replay-guard key for (providerID, requestID).
func Key(providerID, requestID string) string {
	return KeyPrefix + providerID + "::" + requestID
}

// Guard wraps a Store with the canonical key format and default TTL.
type Guard struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

// NewGuard returns a Guard backed by store with the given TTL. log may be
// nil, in which case a no-op logger is used.
func NewGuard(store Store, ttl time.Duration, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{store: store, ttl: ttl, log: log}
}

// CheckAndSet returns true iff (providerID, requestID) has not been
// observed within the guard's TTL, atomically recording it as observed.
// It fails closed: if the backing store reports an error, this returns
// false (reject) and logs a warning, exactly as spec §4.8 requires for a
// synchronous call against an asynchronous-only store.
func (g *Guard) CheckAndSet(providerID, requestID string, now time.Time) bool {
	ok, err := g.store.CheckAndSet(Key(providerID, requestID), now, g.ttl)
	if err != nil {
		g.log.Warn("replay: store error, failing closed",
			zap.String("provider", providerID), zap.String("request", requestID), zap.Error(err))
		return false
	}
	return ok
}
