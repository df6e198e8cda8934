package keyedset

import "iter"

// All returns an iterator over every live (key, value) pair. Order is
// unspecified and may change between calls. Each call returns a fresh view:
// the sequence is restartable and reflects the set's contents at the time it
// is ranged over.
//
// Removing the current entry during iteration is allowed; inserting during
// iteration may or may not yield the new entry.
func (s *KeyedSet[T]) All() iter.Seq2[Key[T], *T] {
	return func(yield func(Key[T], *T) bool) {
		for k, v := range s.items {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Keys returns an iterator over every live key, in unspecified order.
func (s *KeyedSet[T]) Keys() iter.Seq[Key[T]] {
	return func(yield func(Key[T]) bool) {
		for k := range s.items {
			if !yield(k) {
				return
			}
		}
	}
}

// Values returns an iterator over pointers to every live value, in
// unspecified order.
func (s *KeyedSet[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}
