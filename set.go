// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openhash

import "iter"

// Set is an unordered set of keys. It shares the probing, tombstone and
// rehash behavior of Map but stores no values. Sets support membership only:
// there is no Remove.
//
// A Set is NOT goroutine-safe.
type Set[K comparable] struct {
	t *table[K, struct{}]
}

// NewSet constructs a new Set with the specified initial capacity, which must
// be positive. Options are shared with Map, using struct{} as the value type.
func NewSet[K comparable](initialCapacity int, options ...Option[K, struct{}]) (*Set[K], error) {
	t, err := newTable(initialCapacity, options)
	if err != nil {
		return nil, err
	}
	return &Set[K]{t: t}, nil
}

// Add inserts key into the set, returning true if it was not already
// present. Adding a present key is a noop.
func (s *Set[K]) Add(key K) bool {
	return s.t.put(key, struct{}{})
}

// Find reports whether key is in the set.
func (s *Set[K]) Find(key K) bool {
	_, ok := s.t.find(&key)
	return ok
}

// All returns an iterator over the keys in the set in slot order.
func (s *Set[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		s.t.all(func(k K, _ struct{}) bool {
			return yield(k)
		})
	}
}

// Copy returns an independent copy of the set with the same capacity and
// options. Copy panics if the set has been closed.
func (s *Set[K]) Copy() *Set[K] {
	c := s.t.cloneEmpty()
	s.t.copyInto(c)
	return &Set[K]{t: c}
}

// Clear empties the set, retaining its capacity.
func (s *Set[K]) Clear() {
	s.t.destroyAll()
}

// Close releases the slot array back to the set's allocator. It is invalid to
// use a Set after it has been closed, though Close itself is idempotent.
func (s *Set[K]) Close() {
	s.t.close()
}

// Len returns the number of keys in the set.
func (s *Set[K]) Len() int {
	return s.t.used
}

// Capacity returns the number of slots in the set.
func (s *Set[K]) Capacity() int {
	return int(s.t.capacity)
}
