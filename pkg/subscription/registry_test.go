package subscription

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"
)

type target struct {
	name string
}

func TestRegistryInsertResolve(t *testing.T) {
	r := NewRegistry[target]()
	a := &target{name: "a"}

	if err := r.Insert("uuid:1", a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := r.Resolve("uuid:1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != a {
		t.Errorf("Resolve = %p, want %p", got, a)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry[target]()
	a := &target{name: "a"}
	b := &target{name: "b"}

	if err := r.Insert("uuid:1", a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := r.Insert("uuid:1", b); !errors.Is(err, ErrDuplicateSubscriptionID) {
		t.Errorf("second Insert error = %v, want ErrDuplicateSubscriptionID", err)
	}

	// First registration must still win.
	got, _ := r.Resolve("uuid:1")
	if got != a {
		t.Errorf("Resolve after duplicate = %q, want a", got.name)
	}
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	r := NewRegistry[target]()
	a := &target{}

	_ = r.Insert("uuid:1", a)
	r.Remove("uuid:1")
	r.Remove("uuid:1")
	r.Remove("never-registered")

	if _, err := r.Resolve("uuid:1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve after Remove error = %v, want ErrNotFound", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistryNilTarget(t *testing.T) {
	r := NewRegistry[target]()
	if err := r.Insert("uuid:1", nil); err == nil {
		t.Error("Insert(nil) should fail")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry[target]()
	owners := make([]*target, 8)
	for i := range owners {
		owners[i] = &target{name: fmt.Sprint(i)}
	}

	var wg sync.WaitGroup
	for i, owner := range owners {
		wg.Add(1)
		go func(i int, owner *target) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := fmt.Sprintf("uuid:%d-%d", i, j)
				if err := r.Insert(id, owner); err != nil {
					t.Errorf("Insert(%s) failed: %v", id, err)
					return
				}
				got, err := r.Resolve(id)
				if err != nil || got != owner {
					t.Errorf("Resolve(%s) = %v, %v", id, got, err)
					return
				}
				r.Remove(id)
			}
		}(i, owner)
	}
	wg.Wait()

	if r.Count() != 0 {
		t.Errorf("Count() = %d after concurrent insert/remove, want 0", r.Count())
	}
}

func TestRegistryDeferRunsOnInsert(t *testing.T) {
	r := NewRegistry[target]()
	a := &target{name: "a"}

	var got []string
	record := func(tgt *target) { got = append(got, tgt.name) }

	if !r.Defer("uuid:1", record) {
		t.Fatal("Defer dropped the delivery")
	}
	if len(got) != 0 {
		t.Fatalf("delivery ran before Insert: %v", got)
	}
	if r.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", r.Pending())
	}

	if err := r.Insert("uuid:1", a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("deliveries = %v, want [a]", got)
	}
	if r.Pending() != 0 {
		t.Errorf("Pending() = %d after Insert, want 0", r.Pending())
	}

	// Registered ids are delivered immediately.
	r.Defer("uuid:1", record)
	if len(got) != 2 {
		t.Errorf("deliveries = %v, want two", got)
	}
	runtime.KeepAlive(a)
}

func TestRegistryDeferExpires(t *testing.T) {
	r := NewRegistry[target]()
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.SetPendingTTL(time.Second)

	ran := false
	r.Defer("uuid:1", func(*target) { ran = true })

	now = now.Add(2 * time.Second)
	if err := r.Insert("uuid:1", &target{}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if ran {
		t.Error("expired delivery ran on Insert")
	}
}

func TestRegistryDeferLimit(t *testing.T) {
	r := NewRegistry[target]()
	for i := 0; i < maxPending; i++ {
		if !r.Defer(fmt.Sprintf("uuid:%d", i), func(*target) {}) {
			t.Fatalf("Defer(%d) dropped below the limit", i)
		}
	}
	if r.Defer("uuid:overflow", func(*target) {}) {
		t.Error("Defer past the limit should drop the delivery")
	}
	// Another delivery for an id that is already waiting is accepted.
	if !r.Defer("uuid:0", func(*target) {}) {
		t.Error("Defer for a waiting id should be accepted")
	}
}
