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
	"bytes"
	"reflect"
	"unsafe"

	"github.com/zeebo/xxh3"
)

const djb2Seed = 5381

// DJB2 returns the djb2-style hash of b: starting from 5381, each byte is
// added to the accumulator shifted left by 5. It is fast and deterministic
// but makes no attempt to resist collisions; the probing layer resolves them.
func DJB2(b []byte) uint64 {
	h := uint64(djb2Seed)
	for _, c := range b {
		h = (h << 5) + uint64(c)
	}
	return h
}

func djb2String(s string) uint64 {
	h := uint64(djb2Seed)
	for i := 0; i < len(s); i++ {
		h = (h << 5) + uint64(s[i])
	}
	return h
}

// fingerprint returns the home slot of key bytes b in a table of the given
// capacity. Capacity must be non-zero. A table built with the default hasher
// places every non-string key at fingerprint(keyBytes(&key), capacity).
func fingerprint(b []byte, capacity uint64) uint64 {
	return DJB2(b) % capacity
}

// Duplicate returns a freshly allocated copy of b. A nil b duplicates to nil.
func Duplicate(b []byte) []byte {
	if b == nil {
		return nil
	}
	d := make([]byte, len(b))
	copy(d, b)
	return d
}

// Hasher computes the hash of a key. Equal keys must hash equally; the table
// reduces the result modulo its capacity.
type Hasher[K comparable] func(key *K) uint64

// DJB2Hasher returns the default Hasher. String keys are hashed over their
// bytes. Every other key type is hashed over its in-memory representation, so
// keys must be fixed-width values without pointers or padding (integers,
// floats, arrays and structs of those, and the like). New rejects other key
// types unless a Hasher is supplied with WithHash.
func DJB2Hasher[K comparable]() Hasher[K] {
	if isStringKey[K]() {
		return func(key *K) uint64 {
			return djb2String(*(*string)(unsafe.Pointer(key)))
		}
	}
	return func(key *K) uint64 {
		return DJB2(keyBytes(key))
	}
}

// XXH3Hasher returns a Hasher that views keys the same way as DJB2Hasher but
// hashes them with XXH3, which distributes sequential keys far better.
func XXH3Hasher[K comparable]() Hasher[K] {
	if isStringKey[K]() {
		return func(key *K) uint64 {
			return xxh3.HashString(*(*string)(unsafe.Pointer(key)))
		}
	}
	return func(key *K) uint64 {
		return xxh3.Hash(keyBytes(key))
	}
}

// keyEqual returns the equality used to match keys in a table. Keys with a
// plain byte representation compare byte-exactly over their width, which
// agrees with hashing those same bytes: a NaN key matches itself and 0 and
// -0 are distinct keys. Every other key type compares with ==.
func keyEqual[K comparable]() func(a, b *K) bool {
	if isByteKey(reflect.TypeOf((*K)(nil)).Elem()) {
		return func(a, b *K) bool {
			return bytes.Equal(keyBytes(a), keyBytes(b))
		}
	}
	return func(a, b *K) bool {
		return *a == *b
	}
}

// isByteKey reports whether values of type t are fully described by their
// in-memory bytes: no pointers, no padding.
func isByteKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return isByteKey(t.Elem())
	case reflect.Struct:
		var size uintptr
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !isByteKey(f.Type) {
				return false
			}
			size += f.Type.Size()
		}
		// Padding bytes have unspecified contents.
		return size == t.Size()
	default:
		return false
	}
}

// isStringKey reports whether K is a string type, including named ones.
func isStringKey[K comparable]() bool {
	return reflect.TypeOf((*K)(nil)).Elem().Kind() == reflect.String
}

// keyBytes aliases the memory of *key as a byte slice of the key's width.
func keyBytes[K comparable](key *K) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(key)), unsafe.Sizeof(*key))
}
