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

package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-clex/clex/internal/token"
)

func TestLookup(t *testing.T) {
	testCases := []struct {
		lexeme string
		kind   token.Kind
		ok     bool
	}{
		{"if", token.KeywordIf, true},
		{"while", token.KeywordWhile, true},
		{"_Atomic", token.KeywordAtomic, true},
		{"__constexpr", token.KeywordConstexpr, true},
		{"iffy", token.Invalid, false},
		{"", token.Invalid, false},
		{"IF", token.Invalid, false},
	}
	for _, tc := range testCases {
		t.Run(tc.lexeme, func(t *testing.T) {
			kind, ok := Lookup(tc.lexeme)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.kind, kind)
			}
		})
	}
}
