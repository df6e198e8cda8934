// Package keyedset provides a container that owns a collection of values and
// issues small, type-tagged keys for them.
//
// A KeyedSet[T] behaves like a map whose keys are minted by the set itself:
// every Insert returns a fresh Key[T] that identifies the stored value for as
// long as the set exists. Identities are assigned from a monotonically
// increasing counter and are never reused, so a key that has been removed can
// never silently resolve to a later, unrelated value. Keys are plain
// comparable values and can be used as map keys by callers that need to
// attach their own state to entries.
//
// The type parameter on Key is a compile-time tag only: a Key[Blob] cannot be
// presented to a KeyedSet[Food]. It does not identify which set instance
// minted the key — keys from two different sets of the same element type are
// indistinguishable and must not be mixed.
//
// A KeyedSet is not safe for concurrent use; guard it externally if it is
// shared between goroutines.
package keyedset

import (
	"fmt"
	"math"
	"reflect"
)

// Key is an opaque reference to a value owned by a KeyedSet[T].
//
// The zero Key is valid to use but is only ever issued as the first key of a
// set. Keys compare equal iff their identities are equal.
type Key[T any] struct {
	id uint64
}

// Compare returns -1, 0 or 1 depending on whether k was issued before, is, or
// was issued after other. Issue order is the only order keys have.
func (k Key[T]) Compare(other Key[T]) int {
	switch {
	case k.id < other.id:
		return -1
	case k.id > other.id:
		return 1
	}
	return 0
}

// String renders the key for debugging, e.g. "sim.Blob#42".
func (k Key[T]) String() string {
	return fmt.Sprintf("%s#%d", reflect.TypeFor[T](), k.id)
}

// KeyedSet owns a set of values of type T, each addressable by the Key[T]
// minted when it was inserted. The backing table is unordered.
type KeyedSet[T any] struct {
	items map[Key[T]]*T
	next  uint64
}

// New returns an empty KeyedSet.
func New[T any]() *KeyedSet[T] {
	return &KeyedSet[T]{items: make(map[Key[T]]*T)}
}

// Insert stores value in the set and returns its key. The key is minted from
// a counter that only counts up; identities of removed values are retired,
// never reissued.
//
// The counter is 64 bits wide and its final value is reserved, so Insert
// panics after math.MaxUint64-1 lifetime inserts. At one insert per
// nanosecond that is roughly 584 years, so the panic is a documented
// impossibility rather than a reachable state.
func (s *KeyedSet[T]) Insert(value T) Key[T] {
	if s.next == math.MaxUint64 {
		panic("keyedset: identity space exhausted")
	}
	if s.items == nil {
		s.items = make(map[Key[T]]*T)
	}
	k := Key[T]{id: s.next}
	s.next++
	s.items[k] = &value
	return k
}

// Get returns a pointer to the value stored under k, or (nil, false) if k is
// not live in this set. Mutations through the pointer are visible to later
// lookups; the pointer stays valid until the value is removed.
//
// A key that was never issued, was already removed, or was minted by a
// different set is an ordinary miss, never a panic.
func (s *KeyedSet[T]) Get(k Key[T]) (*T, bool) {
	v, ok := s.items[k]
	return v, ok
}

// Remove detaches the value stored under k and returns it. The second result
// reports whether k was live; a miss returns the zero value. The identity is
// retired permanently: no later Insert will ever mint k again.
func (s *KeyedSet[T]) Remove(k Key[T]) (T, bool) {
	v, ok := s.items[k]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.items, k)
	return *v, true
}

// Len returns the number of live values.
func (s *KeyedSet[T]) Len() int {
	return len(s.items)
}
