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

package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(r *Reader) string {
	var out []byte
	for r.Current() != EOF {
		out = append(out, r.Current())
		r.Advance()
	}
	return string(out)
}

func TestCRLFNormalization(t *testing.T) {
	r := OpenBytes("t", []byte("a\r\nb\rc\n"))
	assert.Equal(t, "a\nb\nc\n", drain(r))
}

func TestLookaheadAndPositionTracking(t *testing.T) {
	r := OpenBytes("t", []byte("ab\ncd"))
	assert.Equal(t, byte('a'), r.Current())
	assert.Equal(t, byte('b'), r.Lookahead())
	assert.Equal(t, 1, r.Position().Line)
	assert.Equal(t, 1, r.Position().Column)

	r.Advance() // consume 'a'
	r.Advance() // consume 'b'
	assert.Equal(t, byte('\n'), r.Current())
	r.Advance() // consume '\n'
	assert.Equal(t, 2, r.Position().Line)
	assert.Equal(t, 1, r.Position().Column)
	assert.Equal(t, byte('c'), r.Current())
}

func TestSpliceIfBackslashNewlineJoinsLines(t *testing.T) {
	r := OpenBytes("t", []byte("ab\\\ncd"))
	assert.Equal(t, byte('a'), r.Current())
	r.Advance()
	spliced, err := r.SpliceIfBackslashNewline()
	assert.False(t, spliced)
	assert.NoError(t, err)
	r.Advance() // consume 'b'

	spliced, err = r.SpliceIfBackslashNewline()
	require.NoError(t, err)
	assert.True(t, spliced)
	assert.Equal(t, byte('c'), r.Current())
}

func TestSpliceIfBackslashNewlineRejectsStrayBackslash(t *testing.T) {
	r := OpenBytes("t", []byte("\\x"))
	_, err := r.SpliceIfBackslashNewline()
	assert.ErrorIs(t, err, ErrSpliceUnexpectedChar)
}

func TestEOFSentinel(t *testing.T) {
	r := OpenBytes("t", []byte(""))
	assert.Equal(t, EOF, r.Current())
	assert.Equal(t, EOF, r.Lookahead())
	r.Advance() // must not panic past EOF
	assert.Equal(t, EOF, r.Current())
}
