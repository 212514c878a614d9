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

// Package intern implements the string interner described in the design: an
// append-only set of (bytes, length, hash) triples addressed by a stable
// integer handle, with FNV-1a hash pre-filtering before a byte-compare
// confirms equality. Storage lives in a byte buffer allocated once, at its
// full capacity, by New, so that handles and the byte slices they resolve
// to never move.
package intern

import "errors"

// ErrCapacityExhausted is returned by Add once either bound (byte buffer
// size or entry count) configured at construction is reached.
var ErrCapacityExhausted = errors.New("string interner: capacity exhausted")

// Handle is a stable identifier for an interned byte string. Two calls to
// Add with identical byte sequences always return the same Handle.
type Handle uint32

// entry is the compact offset/length record described in the design --
// (offset, length) into the shared byte arena, plus the precomputed hash
// used to pre-filter lookups before falling back to a byte compare.
type entry struct {
	offset uint32
	length uint32
	hash   uint32
}

// Interner is the append-only string set. It is not safe for concurrent use;
// the core is single-threaded by design (see the concurrency model).
type Interner struct {
	buf      []byte
	maxBytes int
	entries  []entry
	maxCount int
}

// New creates an Interner backed by a byte arena of capacity maxBytes that
// may hold at most maxCount distinct strings.
func New(maxBytes, maxCount int) *Interner {
	return &Interner{
		buf:      make([]byte, 0, maxBytes),
		maxBytes: maxBytes,
		maxCount: maxCount,
	}
}

// fnv1a is the length-bounded hash used for interning. DJB2 is used
// separately by the keyword recognizer (package keyword); the two need not
// agree, since each is confirmed by a byte compare on any hash collision.
func fnv1a(b []byte) uint32 {
	const offsetBasis = 2166136261
	const prime = 16777619
	h := uint32(offsetBasis)
	for _, c := range b {
		h ^= uint32(c)
		h *= prime
	}
	return h
}

// Add interns b, returning its handle. If an identical byte sequence was
// already interned, the existing handle is returned and existed is true.
func (in *Interner) Add(b []byte) (h Handle, existed bool, err error) {
	hash := fnv1a(b)
	for i := range in.entries {
		e := &in.entries[i]
		if e.hash != hash || int(e.length) != len(b) {
			continue
		}
		if string(in.buf[e.offset:e.offset+e.length]) == string(b) {
			return Handle(i), true, nil
		}
	}
	if len(in.entries) >= in.maxCount || len(in.buf)+len(b) > in.maxBytes {
		return 0, false, ErrCapacityExhausted
	}
	offset := len(in.buf)
	in.buf = append(in.buf, b...)
	in.entries = append(in.entries, entry{
		offset: uint32(offset),
		length: uint32(len(b)),
		hash:   hash,
	})
	return Handle(len(in.entries) - 1), false, nil
}

// AddString is a convenience wrapper around Add for Go string inputs.
func (in *Interner) AddString(s string) (Handle, bool, error) {
	return in.Add([]byte(s))
}

// Bytes returns the interned bytes for h. The returned slice aliases the
// interner's internal arena and must not be mutated.
func (in *Interner) Bytes(h Handle) []byte {
	e := in.entries[h]
	return in.buf[e.offset : e.offset+e.length]
}

// String returns the interned bytes for h as a string (a copy).
func (in *Interner) String(h Handle) string {
	return string(in.Bytes(h))
}

// Lookup returns the handle for b without interning it, reporting ok=false
// if b has never been added.
func (in *Interner) Lookup(b []byte) (Handle, bool) {
	hash := fnv1a(b)
	for i := range in.entries {
		e := &in.entries[i]
		if e.hash != hash || int(e.length) != len(b) {
			continue
		}
		if string(in.buf[e.offset:e.offset+e.length]) == string(b) {
			return Handle(i), true
		}
	}
	return 0, false
}

// Len reports how many distinct strings have been interned.
func (in *Interner) Len() int { return len(in.entries) }
