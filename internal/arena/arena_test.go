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

package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearAllocateAndExhaust(t *testing.T) {
	l := NewLinear(8)
	b, err := l.AllocateAligned(4, 1)
	require.NoError(t, err)
	assert.Len(t, b, 4)

	_, err = l.AllocateAligned(5, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestLinearReallocateSameBlockFastPath(t *testing.T) {
	l := NewLinear(64)
	b, err := l.AllocateAligned(2, 1)
	require.NoError(t, err)
	b[0], b[1] = 'a', 'b'

	grown, err := l.Reallocate(b, 4)
	require.NoError(t, err)
	require.Len(t, grown, 4)
	assert.Equal(t, byte('a'), grown[0])
	assert.Equal(t, byte('b'), grown[1])

	// A second allocation is not the "last" allocation anymore, so
	// reallocating the first one now must copy instead of growing in
	// place.
	other, err := l.AllocateAligned(1, 1)
	require.NoError(t, err)
	_ = other
	grown2, err := l.Reallocate(b, 6)
	require.NoError(t, err)
	assert.Equal(t, byte('a'), grown2[0])
}

func TestLinearMarkReset(t *testing.T) {
	l := NewLinear(16)
	_, err := l.AllocateAligned(8, 1)
	require.NoError(t, err)
	m := l.Mark()
	_, err = l.AllocateAligned(8, 1)
	require.NoError(t, err)

	_, err = l.AllocateAligned(1, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	l.Reset(m)
	_, err = l.AllocateAligned(8, 1)
	assert.NoError(t, err)
}

func TestBlockRecyclesFreedSlots(t *testing.T) {
	b := NewBlock(16, 2)
	a1, err := b.AllocateAligned(16, 1)
	require.NoError(t, err)
	a2, err := b.AllocateAligned(16, 1)
	require.NoError(t, err)
	assert.NotSame(t, &a1[0], &a2[0])

	b.Deallocate(a1)
	a3, err := b.AllocateAligned(16, 1)
	require.NoError(t, err)
	assert.Same(t, &a1[0], &a3[0])
}

func TestBlockRejectsOversizeRequest(t *testing.T) {
	b := NewBlock(8, 1)
	_, err := b.AllocateAligned(9, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestTypedStablePointersAcrossFurtherAllocations(t *testing.T) {
	type node struct {
		v      int
		parent *node
	}
	ar := NewTyped[node](4)
	root, err := ar.New(node{v: 1})
	require.NoError(t, err)

	child, err := ar.New(node{v: 2, parent: root})
	require.NoError(t, err)

	assert.Equal(t, 1, child.parent.v)
	assert.Equal(t, 2, ar.Len())
}

func TestTypedResetZeroesReclaimedSlots(t *testing.T) {
	ar := NewTyped[int](4)
	_, err := ar.New(10)
	require.NoError(t, err)
	mark := ar.Mark()
	_, err = ar.New(20)
	require.NoError(t, err)

	ar.Reset(mark)
	assert.Equal(t, 0, ar.items[mark])
	v, err := ar.New(30)
	require.NoError(t, err)
	assert.Equal(t, 30, *v)
	assert.Equal(t, 2, ar.Len())
}

func TestTypedNewSliceCarvesContiguousRun(t *testing.T) {
	ar := NewTyped[int](4)
	s, err := ar.NewSlice(3)
	require.NoError(t, err)
	require.Len(t, s, 3)
	s[0], s[1], s[2] = 1, 2, 3

	_, err = ar.NewSlice(2)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	one, err := ar.NewSlice(1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
