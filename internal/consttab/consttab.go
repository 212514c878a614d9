// Copyright 2025 EngFlow Inc. All rights reserved.
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

// Package consttab is the small "constant table" referenced by the
// preprocessor token's value_handle: every character, integer, or floating
// constant that is turned into a PPToken is stored here, and the
// compressed PPToken only carries the resulting index. Unlike the string
// interner, entries are not deduplicated -- constants are cheap to store and
// rarely repeat in a way worth detecting.
package consttab

import (
	"errors"

	"github.com/go-clex/clex/internal/token"
)

// ErrCapacityExhausted is returned once the configured maximum entry count
// is reached.
var ErrCapacityExhausted = errors.New("constant table: capacity exhausted")

// Handle addresses one entry.
type Handle uint32

// Table is an append-only store of token.Value payloads for IntConstant,
// FloatConstant, and CharConstant kinds.
type Table struct {
	entries []token.Value
	max     int
}

// New creates a Table that can hold at most max entries.
func New(max int) *Table {
	return &Table{max: max}
}

// Put stores v, returning its handle.
func (t *Table) Put(v token.Value) (Handle, error) {
	if len(t.entries) >= t.max {
		return 0, ErrCapacityExhausted
	}
	t.entries = append(t.entries, v)
	return Handle(len(t.entries) - 1), nil
}

// Get returns the value previously stored at h.
func (t *Table) Get(h Handle) token.Value {
	return t.entries[h]
}
