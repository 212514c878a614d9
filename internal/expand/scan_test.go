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

package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/token"
)

// sliceKind lets a test drive ScanArgumentsWithPuller over a hand-written
// sequence of token kinds without a real ppstore.
func sliceKind(kinds []token.Kind) Puller {
	i := 0
	return func() (token.Kind, int, error) {
		if i >= len(kinds) {
			return 0, 0, diag.ErrUnterminatedInvoke
		}
		k := kinds[i]
		idx := i
		i++
		return k, idx, nil
	}
}

func TestScanArgumentsSplitsOnTopLevelComma(t *testing.T) {
	// "1, 2)" with '(' already consumed.
	kinds := []token.Kind{token.IntConstant, token.Comma, token.IntConstant, token.RParen}
	out := make([]TokenIterator, 2)
	require.NoError(t, ScanArgumentsWithPuller(sliceKind(kinds), out))
	assert.Equal(t, TokenIterator{Start: 0, Cur: 0, End: 1}, out[0])
	assert.Equal(t, TokenIterator{Start: 2, Cur: 2, End: 3}, out[1])
}

func TestScanArgumentsTreatsNestedParensAsOpaque(t *testing.T) {
	// "a, (b,c))" -- inner comma must not split the second argument.
	kinds := []token.Kind{
		token.Identifier, token.Comma,
		token.LParen, token.Identifier, token.Comma, token.Identifier, token.RParen,
		token.RParen,
	}
	out := make([]TokenIterator, 2)
	require.NoError(t, ScanArgumentsWithPuller(sliceKind(kinds), out))
	assert.Equal(t, 0, out[0].Start)
	assert.Equal(t, 2, out[1].Start)
	assert.Equal(t, 7, out[1].End)
}

func TestScanArgumentsReportsTooManyArguments(t *testing.T) {
	kinds := []token.Kind{token.IntConstant, token.Comma, token.IntConstant, token.RParen}
	out := make([]TokenIterator, 1)
	err := ScanArgumentsWithPuller(sliceKind(kinds), out)
	assert.ErrorIs(t, err, diag.ErrArgumentCount)
}

func TestScanArgumentsReportsTooFewArguments(t *testing.T) {
	kinds := []token.Kind{token.IntConstant, token.RParen}
	out := make([]TokenIterator, 2)
	err := ScanArgumentsWithPuller(sliceKind(kinds), out)
	assert.ErrorIs(t, err, diag.ErrArgumentCount)
}

func TestNestedPullerReportsUnterminatedInvoke(t *testing.T) {
	it := TokenIterator{Start: 0, Cur: 0, End: 1}
	toks := []token.PPToken{{Kind: token.IntConstant}}
	pull := NestedPuller(func(i int) token.PPToken { return toks[i] }, &it)
	out := make([]TokenIterator, 2)
	err := ScanArgumentsWithPuller(pull, out)
	assert.ErrorIs(t, err, diag.ErrUnterminatedInvoke)
}
