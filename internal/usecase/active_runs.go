package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ActiveRunRegistry is an advisory guard against duplicate concurrent
// submissions of the same content by the same user. It is not a
// correctness-critical lock; the request-handling layer owns it and must
// release in a deferred path regardless of success, failure, or cancellation.
type ActiveRunRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewActiveRunRegistry creates an empty registry.
func NewActiveRunRegistry() *ActiveRunRegistry {
	return &ActiveRunRegistry{active: make(map[string]struct{})}
}

// Fingerprint derives the registry key for a (user, content) pair.
func Fingerprint(userID, content string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + content))
	return hex.EncodeToString(sum[:16])
}

// Acquire claims the fingerprint. Returns false when a run for it is already
// in flight.
func (r *ActiveRunRegistry) Acquire(fingerprint string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.active[fingerprint]; exists {
		return false
	}
	r.active[fingerprint] = struct{}{}
	return true
}

// Release frees the fingerprint. Safe to call for a fingerprint that was
// never acquired.
func (r *ActiveRunRegistry) Release(fingerprint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, fingerprint)
}
