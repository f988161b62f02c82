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

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const (
	// The table grows once live entries plus tombstones reach
	// capacity*maxLoadNum/maxLoadDen.
	maxLoadNum = 3
	maxLoadDen = 4

	ctrlEmpty   ctrl = 0
	ctrlDeleted ctrl = 1
	ctrlFull    ctrl = 2
)

// Each slot in the table is in one of three states:
//
//	  empty: never occupied since the slot array was allocated
//	deleted: occupied, then removed (a tombstone)
//	   full: holds a live key and value
//
// Empty is the zero value so that a freshly allocated slot array is empty.
type ctrl uint8

func (c ctrl) String() string {
	switch c {
	case ctrlEmpty:
		return "empty"
	case ctrlDeleted:
		return "deleted"
	case ctrlFull:
		return "full"
	default:
		return fmt.Sprintf("ctrl(%d)", uint8(c))
	}
}

// Slot holds a key, a value and the slot state.
type Slot[K comparable, V any] struct {
	key   K
	value V
	ctrl  ctrl
}

// table is the linear-probing algorithm shared by Map and Set. A Set is a
// table[K, struct{}].
//
// For every full slot holding key k, scanning forward from hash(k)%capacity
// reaches that slot before reaching an empty slot. Tombstones keep this
// invariant intact for the keys that were probed past them, which is why
// removal cannot simply empty a slot. Tombstones are only reclaimed by
// insertions that land on them and by rehash.
type table[K comparable, V any] struct {
	hash      Hasher[K]
	equal     func(a, b *K) bool
	allocator Allocator[K, V]
	owner     Ownership[V]
	logger    *zap.Logger
	slots     []Slot[K, V]
	// capacity is len(slots), kept as a uint64 for the modulo in fingerprint.
	capacity uint64
	// The number of full slots.
	used int
	// The number of tombstones.
	deleted int
}

func newTable[K comparable, V any](capacity int, options []Option[K, V]) (*table[K, V], error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrZeroCapacity, "capacity %d", capacity)
	}
	t := &table[K, V]{}
	for _, op := range options {
		op.apply(t)
	}
	if t.hash == nil {
		if kt := reflect.TypeOf((*K)(nil)).Elem(); !isStringKey[K]() && !isByteKey(kt) {
			return nil, errors.Wrapf(ErrUnsupportedKey, "key type %s", kt)
		}
		t.hash = DJB2Hasher[K]()
	}
	t.equal = keyEqual[K]()
	if t.allocator == nil {
		t.allocator = defaultAllocator[K, V]{}
	}
	if t.owner == nil {
		t.owner = flatOwnership[V]{}
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	t.slots = t.allocator.Alloc(capacity)
	t.capacity = uint64(capacity)
	t.checkInvariants()
	return t, nil
}

// cloneEmpty returns a table with the same configuration and capacity as t
// but no entries.
func (t *table[K, V]) cloneEmpty() *table[K, V] {
	if t.slots == nil {
		panic(errors.AssertionFailedf("copy of a closed table"))
	}
	c := &table[K, V]{
		hash:      t.hash,
		equal:     t.equal,
		allocator: t.allocator,
		owner:     t.owner,
		logger:    t.logger,
		capacity:  t.capacity,
	}
	c.slots = c.allocator.Alloc(int(c.capacity))
	return c
}

func (t *table[K, V]) fingerprint(key *K) uint64 {
	return t.hash(key) % t.capacity
}

// growthThreshold returns the number of full slots plus tombstones at which
// a table of the given capacity must be rehashed. It is always less than
// capacity, so a table below the threshold has at least one empty slot and
// every probe terminates.
func growthThreshold(capacity uint64) int {
	return int(capacity * maxLoadNum / maxLoadDen)
}

// find probes for key. If key is present it returns its slot index and true.
// Otherwise it returns the index at which key should be inserted, which is
// the first tombstone on the probe path if there is one and the terminating
// empty slot otherwise, and false.
func (t *table[K, V]) find(key *K) (uint64, bool) {
	seq := makeProbeSeq(t.fingerprint(key), t.capacity)
	target, haveTarget := uint64(0), false
	for ; seq.index < t.capacity; seq = seq.next() {
		s := &t.slots[seq.offset]
		switch s.ctrl {
		case ctrlEmpty:
			if !haveTarget {
				target = seq.offset
			}
			return target, false
		case ctrlDeleted:
			if !haveTarget {
				target, haveTarget = seq.offset, true
			}
		default:
			if t.equal(&s.key, key) {
				return seq.offset, true
			}
		}
	}
	if haveTarget {
		// Unreachable while the table stays below its growth threshold, but
		// a tombstone is still a valid insertion point.
		return target, false
	}
	panic(errors.AssertionFailedf("probe for %v exhausted a full table\n%s", *key, t.debugString()))
}

// get returns a pointer to the value stored for key, or nil.
func (t *table[K, V]) get(key K) *V {
	i, ok := t.find(&key)
	if !ok {
		return nil
	}
	return &t.slots[i].value
}

// put inserts key and a copy of value, or replaces the value of an existing
// entry for key, destroying the old value. It returns true if the key was
// inserted.
func (t *table[K, V]) put(key K, value V) bool {
	i, ok := t.find(&key)
	s := &t.slots[i]
	if ok {
		// Copy before destroying: value may be the handle stored here.
		nv := t.owner.Copy(value)
		t.owner.Destroy(s.value)
		s.value = nv
		t.checkInvariants()
		return false
	}

	consumedEmpty := s.ctrl == ctrlEmpty
	if !consumedEmpty {
		t.deleted--
	}
	s.key = key
	s.value = t.owner.Copy(value)
	s.ctrl = ctrlFull
	t.used++

	// Reusing a tombstone leaves used+deleted unchanged, so only consuming
	// an empty slot can push the table over its threshold.
	if consumedEmpty && t.used+t.deleted >= growthThreshold(t.capacity) {
		t.rehash()
	}
	t.checkInvariants()
	return true
}

// uncheckedPut inserts an entry known not to be in the table into the first
// non-full slot of its probe sequence. The value is moved, not copied. Used
// by resize on a slot array that has no tombstones.
func (t *table[K, V]) uncheckedPut(key K, value V) {
	seq := makeProbeSeq(t.fingerprint(&key), t.capacity)
	for ; seq.index < t.capacity; seq = seq.next() {
		s := &t.slots[seq.offset]
		if s.ctrl != ctrlFull {
			s.key = key
			s.value = value
			s.ctrl = ctrlFull
			return
		}
	}
	panic(errors.AssertionFailedf("no room to reinsert %v\n%s", key, t.debugString()))
}

// remove deletes the entry for key, leaving a tombstone in its slot. It is a
// noop to remove a non-existent key.
func (t *table[K, V]) remove(key K) bool {
	i, ok := t.find(&key)
	if !ok {
		return false
	}
	s := &t.slots[i]
	t.owner.Destroy(s.value)
	*s = Slot[K, V]{ctrl: ctrlDeleted}
	t.used--
	t.deleted++
	t.checkInvariants()
	return true
}

// rehash rebuilds the table without tombstones. The capacity doubles unless
// tombstones occupy at least a third of the table, in which case dropping
// them reclaims enough room at the current capacity.
func (t *table[K, V]) rehash() {
	newCapacity := t.capacity
	if t.deleted == 0 || uint64(t.deleted) < t.capacity/3 {
		newCapacity *= 2
	}
	for t.used >= growthThreshold(newCapacity) {
		newCapacity *= 2
	}
	t.resize(newCapacity)
}

// resize allocates a slot array of newCapacity and uncheckedPuts every live
// entry into it, recomputing each probe position. Tombstones are dropped.
func (t *table[K, V]) resize(newCapacity uint64) {
	if ce := t.logger.Check(zap.DebugLevel, "rehashing table"); ce != nil {
		ce.Write(
			zap.Uint64("oldCapacity", t.capacity),
			zap.Uint64("newCapacity", newCapacity),
			zap.Int("used", t.used),
			zap.Int("deleted", t.deleted),
		)
	}

	oldSlots := t.slots
	t.slots = t.allocator.Alloc(int(newCapacity))
	t.capacity = newCapacity
	t.deleted = 0
	for i := range oldSlots {
		if s := &oldSlots[i]; s.ctrl == ctrlFull {
			t.uncheckedPut(s.key, s.value)
		}
	}
	t.allocator.Free(oldSlots)
}

// all calls yield for every full slot in slot order, stopping when yield
// returns false. It walks the slot array current at the time of the call, so
// a rehash during iteration does not disturb it.
func (t *table[K, V]) all(yield func(key K, value V) bool) {
	slots := t.slots
	for i := range slots {
		if s := &slots[i]; s.ctrl == ctrlFull {
			if !yield(s.key, s.value) {
				return
			}
		}
	}
}

// copyInto puts every live entry of t into dst, which copies the values
// through dst's ownership strategy.
func (t *table[K, V]) copyInto(dst *table[K, V]) {
	t.all(func(k K, v V) bool {
		dst.put(k, v)
		return true
	})
}

// destroyAll destroys every live value and resets the slot array to empty.
func (t *table[K, V]) destroyAll() {
	for i := range t.slots {
		s := &t.slots[i]
		if s.ctrl == ctrlFull {
			t.owner.Destroy(s.value)
		}
		*s = Slot[K, V]{}
	}
	t.used = 0
	t.deleted = 0
}

// close destroys every live value and releases the slot array. It is
// idempotent.
func (t *table[K, V]) close() {
	if t.slots == nil {
		return
	}
	t.destroyAll()
	t.allocator.Free(t.slots)
	t.slots = nil
	t.capacity = 0
}

func (t *table[K, V]) checkInvariants() {
	if invariants {
		var used, deleted, empty int
		for i := range t.slots {
			s := &t.slots[i]
			switch s.ctrl {
			case ctrlEmpty:
				empty++
			case ctrlDeleted:
				deleted++
			case ctrlFull:
				// For every full slot, verify probing for its key lands on it.
				if j, ok := t.find(&s.key); !ok || j != uint64(i) {
					panic(fmt.Sprintf("invariant failed: slot(%d): %v not found [fingerprint=%d]\n%s",
						i, s.key, t.fingerprint(&s.key), t.debugString()))
				}
				used++
			default:
				panic(fmt.Sprintf("invariant failed: slot(%d): unexpected %s", i, s.ctrl))
			}
		}
		if used != t.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, t.used, t.debugString()))
		}
		if deleted != t.deleted {
			panic(fmt.Sprintf("invariant failed: found %d deleted slots, but deleted count is %d\n%s",
				deleted, t.deleted, t.debugString()))
		}
		if len(t.slots) > 0 && empty == 0 {
			panic(fmt.Sprintf("invariant failed: no empty slots\n%s", t.debugString()))
		}
	}
}

func (t *table[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  deleted=%d\n", t.capacity, t.used, t.deleted)
	for i := range t.slots {
		switch s := &t.slots[i]; s.ctrl {
		case ctrlFull:
			fmt.Fprintf(&buf, "  %4d: %v [fingerprint=%d]\n", i, s.key, t.fingerprint(&s.key))
		default:
			fmt.Fprintf(&buf, "  %4d: %s\n", i, s.ctrl)
		}
	}
	return buf.String()
}

// probeSeq maintains the state for a linear probe sequence starting at a
// key's fingerprint and wrapping around at capacity. index counts the slots
// visited so far; a sequence that has visited capacity slots has seen the
// whole table.
type probeSeq struct {
	capacity uint64
	offset   uint64
	index    uint64
}

func makeProbeSeq(fingerprint, capacity uint64) probeSeq {
	return probeSeq{
		capacity: capacity,
		offset:   fingerprint,
		index:    0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	s.offset++
	if s.offset == s.capacity {
		s.offset = 0
	}
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("capacity=%d offset=%d index=%d", s.capacity, s.offset, s.index)
}
