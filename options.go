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

import "go.uber.org/zap"

// Option configures a Map[K,V] or, with V = struct{}, a Set[K] while it is
// being created.
type Option[K comparable, V any] interface {
	apply(t *table[K, V])
}

type hashOption[K comparable, V any] struct {
	hash Hasher[K]
}

func (op hashOption[K, V]) apply(t *table[K, V]) {
	t.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a Map[K,V].
// The default is DJB2Hasher.
func WithHash[K comparable, V any](hash Hasher[K]) Option[K, V] {
	return hashOption[K, V]{hash}
}

// Allocator specifies an interface for allocating and releasing the slot
// arrays used by a Map. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory and requires that slots be
// freed then Map.Close must be called in order to ensure Free is called.
type Allocator[K comparable, V any] interface {
	// Alloc should return a slice equivalent to make([]Slot[K,V], n). The
	// slots must be zeroed: a zero Slot is empty.
	Alloc(n int) []Slot[K, V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc.
	Free(v []Slot[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) Alloc(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) Free(v []Slot[K, V]) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(t *table[K, V]) {
	t.allocator = op.allocator
}

// WithAllocator is an option for specify the Allocator to use for a Map[K,V].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) Option[K, V] {
	return allocatorOption[K, V]{allocator}
}

type ownershipOption[K comparable, V any] struct {
	owner Ownership[V]
}

func (op ownershipOption[K, V]) apply(t *table[K, V]) {
	t.owner = op.owner
}

// WithOwnership is an option to specify how a Map[K,V] copies values in and
// destroys them on overwrite, removal and Close. Without it values are
// treated as flat data: assigned on the way in and dropped on the way out.
func WithOwnership[K comparable, V any](owner Ownership[V]) Option[K, V] {
	return ownershipOption[K, V]{owner}
}

type loggerOption[K comparable, V any] struct {
	logger *zap.Logger
}

func (op loggerOption[K, V]) apply(t *table[K, V]) {
	t.logger = op.logger
}

// WithLogger is an option to specify the logger that receives rehash events
// at debug level. The default discards everything.
func WithLogger[K comparable, V any](logger *zap.Logger) Option[K, V] {
	return loggerOption[K, V]{logger}
}
