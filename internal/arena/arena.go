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

// Package arena implements the three allocator flavours the design calls
// for: a byte-oriented linear (bump) allocator with mark/reset and a
// same-block realloc fast path, a block (pool) allocator for fixed-size
// fixed-alignment blocks with an index-based freelist, and a small typed
// bump arena used by the expansion engine for its ParamContext graph (whose
// back-pointers must stay valid for the lifetime of one root expansion and
// are then discarded wholesale).
//
// Every allocator exposes the same capability trio -- AllocateAligned,
// Reallocate, Deallocate -- so callers can depend on the Allocator interface
// alone and treat the choice of flavour as a deployment decision.
package arena

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// ErrOutOfMemory is returned by any allocator once its bound is reached.
// Every allocation in this package can fail; callers must check the error
// rather than assume success.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Allocator is the capability abstraction clients depend on. Deallocate is a
// no-op for allocators that only support bulk reclamation (Linear); Block
// threads a freed slice back onto its freelist.
type Allocator interface {
	AllocateAligned(size, align int) ([]byte, error)
	Reallocate(buf []byte, newSize int) ([]byte, error)
	Deallocate(buf []byte)
}

func alignUp[T constraints.Integer](n, align T) T {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// Linear is a bump allocator over a fixed-size backing buffer. Reset
// reclaims every allocation made since the corresponding Mark in one step;
// Deallocate is a no-op, matching the design ("the linear allocator's
// deallocate is a no-op").
type Linear struct {
	buf    []byte
	offset int
	last   []byte // most recent allocation, for the Reallocate fast path
}

// NewLinear creates a Linear allocator with the given byte capacity.
func NewLinear(capacity int) *Linear {
	return &Linear{buf: make([]byte, capacity)}
}

// AllocateAligned carves size bytes, aligned to align, off the bump
// pointer.
func (l *Linear) AllocateAligned(size, align int) ([]byte, error) {
	start := alignUp(l.offset, align)
	if start+size > len(l.buf) {
		return nil, ErrOutOfMemory
	}
	b := l.buf[start : start+size : start+size]
	l.offset = start + size
	l.last = b
	return b, nil
}

// Reallocate grows buf to newSize. If buf is the most recently returned
// allocation (detected by pointer identity, not contents), the bump pointer
// is simply extended in place; otherwise a fresh block is allocated and the
// old contents copied over.
func (l *Linear) Reallocate(buf []byte, newSize int) ([]byte, error) {
	if len(buf) > 0 && len(l.last) > 0 && &buf[0] == &l.last[0] {
		base := l.offset - len(buf)
		if base+newSize > len(l.buf) {
			return nil, ErrOutOfMemory
		}
		grown := l.buf[base : base+newSize : base+newSize]
		l.offset = base + newSize
		l.last = grown
		return grown, nil
	}
	out, err := l.AllocateAligned(newSize, 1)
	if err != nil {
		return nil, err
	}
	copy(out, buf)
	return out, nil
}

// Deallocate is a no-op: the linear allocator only reclaims in bulk, via
// Reset.
func (l *Linear) Deallocate([]byte) {}

// Mark captures the current bump offset so a later Reset can roll back to
// it.
type Mark int

// Mark returns the current allocator position.
func (l *Linear) Mark() Mark { return Mark(l.offset) }

// Reset rolls the bump pointer back to m, reclaiming everything allocated
// since.
func (l *Linear) Reset(m Mark) {
	l.offset = int(m)
	l.last = nil
}

// ResetAll reclaims the entire arena, as if freshly constructed.
func (l *Linear) ResetAll() { l.Reset(0) }

// Block serves fixed-size blocks from a growable backing store, recycling
// freed blocks via an index-based freelist (the GC-safe equivalent of the
// source's intrusive pointer-threaded freelist: Go slices cannot have
// C-style pointers stitched through their own freed bytes, so the freelist
// here is a stack of indices rather than a linked list threaded through the
// blocks themselves).
type Block struct {
	size    int
	storage [][]byte
	free    []int
}

// NewBlock creates a Block allocator for fixed-size blocks of blockSize
// bytes, with underlying storage pre-sized for capacityBlocks.
func NewBlock(blockSize, capacityBlocks int) *Block {
	return &Block{size: blockSize, storage: make([][]byte, 0, capacityBlocks)}
}

// AllocateAligned ignores align (blocks are always whole-block aligned) and
// requires size <= the configured block size.
func (b *Block) AllocateAligned(size, _ int) ([]byte, error) {
	if size > b.size {
		return nil, ErrOutOfMemory
	}
	if n := len(b.free); n > 0 {
		idx := b.free[n-1]
		b.free = b.free[:n-1]
		blk := b.storage[idx]
		clear(blk)
		return blk, nil
	}
	blk := make([]byte, b.size)
	b.storage = append(b.storage, blk)
	return blk, nil
}

// Reallocate for Block is only meaningful within the fixed block size; a
// request that still fits returns buf unchanged, otherwise it fails (the
// block allocator does not support growing past its block size).
func (b *Block) Reallocate(buf []byte, newSize int) ([]byte, error) {
	if newSize <= b.size {
		return buf[:newSize:b.size], nil
	}
	return nil, ErrOutOfMemory
}

// Deallocate threads blk back onto the freelist by locating its backing
// block.
func (b *Block) Deallocate(blk []byte) {
	if len(blk) == 0 {
		return
	}
	for i, s := range b.storage {
		if len(s) > 0 && &s[0] == &blk[0] {
			b.free = append(b.free, i)
			return
		}
	}
}

// Typed is a bump arena over a preallocated, never-reallocated slice of T,
// used where returned pointers must stay valid across further allocations
// (the expansion engine's ParamContext graph, whose nodes hold
// non-owning back-references to earlier nodes). Because the backing slice
// is sized once at construction and never grown, a *T handed out by New
// remains valid until the next Reset/ResetAll.
type Typed[T any] struct {
	items []T
	next  int
}

// NewTyped creates a Typed arena with room for exactly capacity values.
func NewTyped[T any](capacity int) *Typed[T] {
	return &Typed[T]{items: make([]T, capacity)}
}

// New stores v in the next free slot and returns a stable pointer to it.
func (p *Typed[T]) New(v T) (*T, error) {
	if p.next >= len(p.items) {
		return nil, ErrOutOfMemory
	}
	p.items[p.next] = v
	ptr := &p.items[p.next]
	p.next++
	return ptr, nil
}

// Mark returns the current allocation count, for a later Reset.
func (p *Typed[T]) Mark() int { return p.next }

// Reset reclaims every value allocated since mark, zeroing the slots so
// stale back-references cannot be read from freed memory.
func (p *Typed[T]) Reset(mark int) {
	var zero T
	for i := mark; i < p.next; i++ {
		p.items[i] = zero
	}
	p.next = mark
}

// ResetAll reclaims the entire arena.
func (p *Typed[T]) ResetAll() { p.Reset(0) }

// Len reports how many values are currently live.
func (p *Typed[T]) Len() int { return p.next }

// NewSlice carves a contiguous run of n slots off the arena and returns it
// as a slice, for callers that need a variable-length array of T with the
// same stable-pointer guarantee as New (e.g. a function-like macro's
// per-invocation parameter-iterator array).
func (p *Typed[T]) NewSlice(n int) ([]T, error) {
	if p.next+n > len(p.items) {
		return nil, ErrOutOfMemory
	}
	s := p.items[p.next : p.next+n : p.next+n]
	p.next += n
	return s, nil
}
