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

// Package openhash provides a hash map and a hash set built on open
// addressing with linear probing. See
// https://en.wikipedia.org/wiki/Open_addressing.
//
// # Tables
//
// Both Map and Set store entries directly in a single slot array. A key's
// home slot is its fingerprint: hash(key) modulo the capacity. On a
// collision the entry is placed in the next free slot, wrapping around at the
// end of the array, so looking up a key scans forward from its home slot
// until it finds the key or an empty slot.
//
// Every slot is empty, deleted or full. Removing an entry cannot mark its slot
// empty, as that would cut the probe sequence of any key that was placed
// beyond it; the slot becomes a deleted tombstone instead. Lookups scan past
// tombstones. Inserts of new keys reuse the first tombstone on their probe
// path.
//
// Once full slots plus tombstones reach 3/4 of the capacity the table is
// rehashed: every live entry is reinserted into a fresh slot array and all
// tombstones are dropped. The capacity doubles on a rehash unless tombstones
// account for at least a third of the slots, in which case the table is
// rebuilt at its current size. Capacity never shrinks.
//
// # Hashing
//
// The default hash is djb2 over the key's bytes: the bytes of a string key,
// and the in-memory representation of any other key. The latter is only
// correct for fixed-width keys without pointers or padding; WithHash supplies
// a hash for anything else, and New rejects such key types without one.
// XXH3Hasher is available for keys where djb2 distributes poorly.
//
// Keys hashed over their bytes are also compared over their bytes, whichever
// Hasher is in use. A NaN key therefore finds itself, and 0 and -0 are
// different keys.
//
// # Ownership
//
// A table owns its keys and values. Keys are stored by value. Values pass
// through an Ownership strategy: by default they are stored as-is, but an
// Ownership can copy values on the way in and destroy them on the way out,
// which lets a Map hold owning handles to nested Maps and Sets (see
// MapOwnership) without leaking or sharing them.
package openhash

import (
	"iter"

	"github.com/cockroachdb/errors"
)

// Map is an unordered map from keys to values with Put, Get, Find, Remove and
// iteration operations.
//
// A Map is NOT goroutine-safe. A rehash replaces the whole slot array, so
// concurrent users must serialize all access to a Map.
type Map[K comparable, V any] struct {
	t *table[K, V]
}

// New constructs a new Map with the specified initial capacity, which must be
// positive.
func New[K comparable, V any](initialCapacity int, options ...Option[K, V]) (*Map[K, V], error) {
	t, err := newTable(initialCapacity, options)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{t: t}, nil
}

// Close destroys every value in the map and releases the slot array back to
// its configured allocator. Close is never called implicitly, but it is only
// required when values need destroying or the allocator manages memory
// manually. It is invalid to use a Map after it has been closed, though Close
// itself is idempotent.
func (m *Map[K, V]) Close() {
	m.t.close()
}

// Put inserts an entry into the map. If an entry with the same key already
// exists its value is destroyed and replaced; the key is left untouched and
// Len does not change.
func (m *Map[K, V]) Put(key K, value V) {
	m.t.put(key, value)
}

// Get retrieves the value stored for key. It returns an error matching
// ErrKeyNotFound if the key is not present. For values with a non-trivial
// Ownership the returned value is still owned by the map.
func (m *Map[K, V]) Get(key K) (V, error) {
	v := m.t.get(key)
	if v == nil {
		var zero V
		return zero, errors.WithStack(ErrKeyNotFound)
	}
	return *v, nil
}

// Find reports whether key is present in the map.
func (m *Map[K, V]) Find(key K) bool {
	_, ok := m.t.find(&key)
	return ok
}

// Remove deletes the entry for key, destroying its value. It returns false
// and does nothing if the key is not present.
func (m *Map[K, V]) Remove(key K) bool {
	return m.t.remove(key)
}

// Keys returns an iterator over the keys in the map in slot order. The order
// is unrelated to insertion order and changes across rehashes.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		m.t.all(func(k K, _ V) bool {
			return yield(k)
		})
	}
}

// Values returns an iterator over the values in the map in slot order.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		m.t.all(func(_ K, v V) bool {
			return yield(v)
		})
	}
}

// All returns an iterator over the entries in the map in slot order. The
// map can be mutated during iteration, though there is no guarantee that the
// mutations will be visible to the iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return m.t.all
}

// Copy returns an independent deep copy of the map with the same capacity
// and options. Every entry is Put into the copy, so values are copied through
// the map's Ownership. Copy panics if the map has been closed.
func (m *Map[K, V]) Copy() *Map[K, V] {
	c := m.t.cloneEmpty()
	m.t.copyInto(c)
	return &Map[K, V]{t: c}
}

// Clear destroys every value and empties the map, retaining its capacity.
func (m *Map[K, V]) Clear() {
	m.t.destroyAll()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.t.used
}

// Capacity returns the number of slots in the map.
func (m *Map[K, V]) Capacity() int {
	return int(m.t.capacity)
}
