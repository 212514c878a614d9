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
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/token"
)

// Puller yields the next token's kind and its index in the shared ppstore
// buffer. A nested invocation (arguments already sitting inside some
// enclosing replacement list) pulls directly from that list's
// TokenIterator; a root-level invocation pulls from the live tokenizer,
// appending each token to the store as it is produced, so that the very
// same scanning logic addresses both.
type Puller func() (kind token.Kind, storeIndex int, err error)

// ScanArgumentsWithPuller implements prepareMacroParamTokens's splitting
// rule: the opening '(' has already been consumed by the caller, so depth
// starts at 1; a ',' at depth 1 ends one argument and starts the next; a
// ')' that brings depth to 0 ends the last argument and the call. Nested
// parentheses (depth > 1) are opaque to comma-splitting, so "F(a, (b,c))"
// is two arguments, not three.
//
// out must have length equal to the macro's declared parameter count;
// ScanArgumentsWithPuller fills it in place and returns an error rather
// than allocating, so callers can supply an arena-backed slice.
func ScanArgumentsWithPuller(pull Puller, out []TokenIterator) error {
	paramCount := len(out)
	depth := 1
	paramIdx := 0
	startIdx := -1

	for {
		kind, idx, err := pull()
		if err != nil {
			return err
		}
		if startIdx == -1 {
			startIdx = idx
		}
		switch kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				if paramIdx >= paramCount {
					return diag.ErrArgumentCount
				}
				out[paramIdx] = TokenIterator{Start: startIdx, Cur: startIdx, End: idx}
				paramIdx++
				if paramIdx != paramCount {
					return diag.ErrArgumentCount
				}
				return nil
			}
		case token.Comma:
			if depth == 1 {
				if paramIdx >= paramCount {
					return diag.ErrArgumentCount
				}
				out[paramIdx] = TokenIterator{Start: startIdx, Cur: startIdx, End: idx}
				paramIdx++
				startIdx = -1
			}
		}
	}
}

// NestedPuller returns a Puller that reads tokens already resident in the
// shared store, advancing it. Exhausting it (depth never returning to 0)
// reports an unterminated invocation, matching a macro body that ends
// mid-argument-list.
func NestedPuller(at func(int) token.PPToken, it *TokenIterator) Puller {
	return func() (token.Kind, int, error) {
		if it.Cur >= it.End {
			return 0, 0, diag.ErrUnterminatedInvoke
		}
		idx := it.Cur
		it.Cur++
		return at(idx).Kind, idx, nil
	}
}
