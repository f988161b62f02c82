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

import "github.com/cockroachdb/errors"

var (
	// ErrZeroCapacity is returned by New and NewSet when the initial capacity
	// is not positive.
	ErrZeroCapacity = errors.New("openhash: initial capacity must be positive")

	// ErrUnsupportedKey is returned by New and NewSet when the key type cannot
	// be hashed over its bytes and no Hasher was supplied with WithHash.
	ErrUnsupportedKey = errors.New("openhash: key type needs a custom hasher")

	// ErrKeyNotFound is returned by Map.Get when the key is not present.
	ErrKeyNotFound = errors.New("openhash: key not found")
)
