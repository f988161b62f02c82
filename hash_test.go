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
	"encoding/binary"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestDJB2(t *testing.T) {
	testCases := []struct {
		in       []byte
		expected uint64
	}{
		{nil, 5381},
		{[]byte("a"), 5381<<5 + 'a'},
		{[]byte("ab"), (5381<<5+'a')<<5 + 'b'},
		// Bytes are unsigned.
		{[]byte{0xff}, 5381<<5 + 0xff},
	}
	for _, c := range testCases {
		t.Run(string(c.in), func(t *testing.T) {
			require.Equal(t, c.expected, DJB2(c.in))
			require.Equal(t, c.expected, djb2String(string(c.in)))
		})
	}
}

func TestFingerprint(t *testing.T) {
	require.EqualValues(t, 172289%10, fingerprint([]byte("a"), 10))
	for capacity := uint64(1); capacity < 64; capacity++ {
		for _, s := range []string{"", "x", "hello", strings.Repeat("z", 100)} {
			fp := fingerprint([]byte(s), capacity)
			require.Less(t, fp, capacity)
			// Deterministic and a function of the content only.
			require.Equal(t, fp, fingerprint([]byte(strings.Clone(s)), capacity))
		}
	}
}

func TestDuplicate(t *testing.T) {
	require.Nil(t, Duplicate(nil))

	src := []byte{1, 2, 3, 4}
	dst := Duplicate(src)
	require.Equal(t, src, dst)
	dst[0] = 9
	require.EqualValues(t, 1, src[0])

	empty := Duplicate([]byte{})
	require.NotNil(t, empty)
	require.Len(t, empty, 0)
}

func TestDJB2Hasher(t *testing.T) {
	var b [4]byte
	binary.NativeEndian.PutUint32(b[:], 1)
	k := int32(1)
	require.Equal(t, DJB2(b[:]), DJB2Hasher[int32]()(&k))

	type pair [2]uint16
	p := pair{1, 2}
	q := pair{1, 2}
	h := DJB2Hasher[pair]()
	require.Equal(t, h(&p), h(&q))

	// String keys hash their contents, not their headers.
	s1 := "hello"
	s2 := strings.Clone(s1)
	hs := DJB2Hasher[string]()
	require.Equal(t, DJB2([]byte("hello")), hs(&s1))
	require.Equal(t, hs(&s1), hs(&s2))

	type name string
	n1 := name("hello")
	n2 := name(strings.Clone("hello"))
	hn := DJB2Hasher[name]()
	require.Equal(t, hs(&s1), hn(&n1))
	require.Equal(t, hn(&n1), hn(&n2))
}

func TestXXH3Hasher(t *testing.T) {
	s := "hello"
	require.Equal(t, xxh3.HashString(s), XXH3Hasher[string]()(&s))

	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 42)
	k := uint64(42)
	require.Equal(t, xxh3.Hash(b[:]), XXH3Hasher[uint64]()(&k))
}

func TestTableFingerprint(t *testing.T) {
	m := newMap[uint32, int](t, 7)
	for k := uint32(0); k < 100; k++ {
		require.Equal(t, fingerprint(keyBytes(&k), 7), m.t.fingerprint(&k))
	}
}

func TestIsByteKey(t *testing.T) {
	type plain struct {
		a uint32
		b float32
	}
	type padded struct {
		a uint8
		b uint64
	}
	type withString struct {
		a uint64
		s string
	}
	testCases := []struct {
		v        any
		expected bool
	}{
		{int64(0), true},
		{float64(0), true},
		{complex64(0), true},
		{[4]uint16{}, true},
		{plain{}, true},
		{[2]plain{}, true},
		{padded{}, false},
		{withString{}, false},
		{"", false},
		{new(int), false},
		{[1]*int{}, false},
	}
	for _, c := range testCases {
		t.Run(fmt.Sprintf("%T", c.v), func(t *testing.T) {
			require.Equal(t, c.expected, isByteKey(reflect.TypeOf(c.v)))
		})
	}
}
