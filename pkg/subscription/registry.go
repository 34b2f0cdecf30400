package subscription

import (
	"errors"
	"sync"
	"time"
	"weak"
)

// Limits for deliveries held for ids that are not registered yet.
const (
	DefaultPendingTTL = 5 * time.Second
	maxPending        = 64
)

// Registry errors.
var (
	ErrDuplicateSubscriptionID = errors.New("duplicate subscription id")
	ErrNotFound                = errors.New("subscription not found")
)

// Registry maps subscription ids to the sessions that own them.
type Registry[T any] struct {
	mu sync.RWMutex

	// Entries by subscription id
	entries map[string]weak.Pointer[T]

	// Deliveries waiting for Insert, by subscription id
	pending    map[string][]pendingDelivery[T]
	pendingTTL time.Duration
	now        func() time.Time
}

type pendingDelivery[T any] struct {
	fn      func(*T)
	expires time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries:    make(map[string]weak.Pointer[T]),
		pending:    make(map[string][]pendingDelivery[T]),
		pendingTTL: DefaultPendingTTL,
		now:        time.Now,
	}
}

// SetPendingTTL sets how long Defer holds a delivery for an unknown id.
func (r *Registry[T]) SetPendingTTL(ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pendingTTL = ttl
}

// Insert registers id for target. It fails with ErrDuplicateSubscriptionID
// if id is already registered, even for the same target.
func (r *Registry[T]) Insert(id string, target *T) error {
	if target == nil {
		return errors.New("subscription: nil target")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return ErrDuplicateSubscriptionID
	}

	// Held deliveries run before the id becomes resolvable so they stay
	// ahead of anything that arrives later.
	now := r.now()
	for _, d := range r.pending[id] {
		if now.Before(d.expires) {
			d.fn(target)
		}
	}
	delete(r.pending, id)

	r.entries[id] = weak.Make(target)
	return nil
}

// Defer runs fn with the target of id. If id is registered fn runs now and
// Defer returns true. Otherwise fn is held and runs inside a later Insert
// of id, unless the pending TTL passes first. fn must not call back into
// the registry. Defer returns false if fn was dropped because too many ids
// are pending.
func (r *Registry[T]) Defer(id string, fn func(*T)) bool {
	r.mu.Lock()
	if ptr, exists := r.entries[id]; exists {
		if target := ptr.Value(); target != nil {
			r.mu.Unlock()
			fn(target)
			return true
		}
	}
	defer r.mu.Unlock()

	now := r.now()
	r.prunePending(now)
	if _, waiting := r.pending[id]; !waiting && len(r.pending) >= maxPending {
		return false
	}
	r.pending[id] = append(r.pending[id], pendingDelivery[T]{fn: fn, expires: now.Add(r.pendingTTL)})
	return true
}

// Pending returns the number of ids with held deliveries.
func (r *Registry[T]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prunePending(r.now())
	return len(r.pending)
}

func (r *Registry[T]) prunePending(now time.Time) {
	for id, ds := range r.pending {
		if !now.Before(ds[len(ds)-1].expires) {
			delete(r.pending, id)
		}
	}
}

// Remove unregisters id. Removing an unknown id is a no-op.
func (r *Registry[T]) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Resolve returns the target registered for id.
func (r *Registry[T]) Resolve(id string) (*T, error) {
	r.mu.RLock()
	ptr, exists := r.entries[id]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrNotFound
	}
	target := ptr.Value()
	if target == nil {
		// Owner was collected without tearing down; drop the stale entry.
		r.mu.Lock()
		if cur, ok := r.entries[id]; ok && cur == ptr {
			delete(r.entries, id)
		}
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	return target, nil
}

// Count returns the number of registered ids.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
