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

// Ownership describes how a table takes ownership of values. Copy is called
// whenever a value crosses into the table (Put, Copy) and the result is what
// the table stores. Destroy is called exactly once for every stored value
// when it leaves the table: on overwrite, Remove, Clear and Close.
type Ownership[V any] interface {
	Copy(v V) V
	Destroy(v V)
}

type flatOwnership[V any] struct{}

func (flatOwnership[V]) Copy(v V) V { return v }

func (flatOwnership[V]) Destroy(V) {}

// OwnershipFuncs adapts a pair of functions to the Ownership interface. A nil
// CopyFn stores values as-is and a nil DestroyFn drops them.
type OwnershipFuncs[V any] struct {
	CopyFn    func(v V) V
	DestroyFn func(v V)
}

// Copy implements Ownership.
func (o OwnershipFuncs[V]) Copy(v V) V {
	if o.CopyFn == nil {
		return v
	}
	return o.CopyFn(v)
}

// Destroy implements Ownership.
func (o OwnershipFuncs[V]) Destroy(v V) {
	if o.DestroyFn != nil {
		o.DestroyFn(v)
	}
}

// BytesOwnership returns an Ownership for []byte values which duplicates
// every value on the way in, so callers may reuse their buffers.
func BytesOwnership() Ownership[[]byte] {
	return OwnershipFuncs[[]byte]{CopyFn: Duplicate}
}

type mapOwnership[K comparable, V any] struct{}

func (mapOwnership[K, V]) Copy(m *Map[K, V]) *Map[K, V] {
	if m == nil {
		return nil
	}
	return m.Copy()
}

func (mapOwnership[K, V]) Destroy(m *Map[K, V]) {
	if m != nil {
		m.Close()
	}
}

// MapOwnership returns an Ownership for values that are owning handles to
// nested maps. Storing a map stores a deep copy of it, and removing it closes
// that copy. The caller keeps ownership of the map it passed to Put.
func MapOwnership[K comparable, V any]() Ownership[*Map[K, V]] {
	return mapOwnership[K, V]{}
}

type setOwnership[K comparable] struct{}

func (setOwnership[K]) Copy(s *Set[K]) *Set[K] {
	if s == nil {
		return nil
	}
	return s.Copy()
}

func (setOwnership[K]) Destroy(s *Set[K]) {
	if s != nil {
		s.Close()
	}
}

// SetOwnership is the Set counterpart of MapOwnership.
func SetOwnership[K comparable]() Ownership[*Set[K]] {
	return setOwnership[K]{}
}
