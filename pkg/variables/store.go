package variables

import "sync"

// Pair is a single variable update.
type Pair struct {
	Name  string
	Value string
}

// Batch is an ordered list of updates applied as one unit.
// When a name appears more than once, the last occurrence wins.
type Batch []Pair

// Set appends an update to the batch.
func (b *Batch) Set(name, value string) {
	*b = append(*b, Pair{Name: name, Value: value})
}

// Map returns the batch folded into a map, last writer wins.
func (b Batch) Map() map[string]string {
	m := make(map[string]string, len(b))
	for _, p := range b {
		m[p.Name] = p.Value
	}
	return m
}

// Store is a thread-safe mapping of variable names to values.
// The zero value is ready to use.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value of name, or "" if it was never set.
func (s *Store) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// ApplyBatch applies all updates in b while holding the write lock, so
// concurrent readers see either none or all of them.
func (s *Store) ApplyBatch(b Batch) {
	if len(b) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values == nil {
		s.values = make(map[string]string, len(b))
	}
	for _, p := range b {
		s.values[p.Name] = p.Value
	}
}

// SnapshotFields returns the values of names, in order, as of a single
// instant.
func (s *Store) SnapshotFields(names ...string) []string {
	out := make([]string, len(names))

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, name := range names {
		out[i] = s.values[name]
	}
	return out
}
