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

package consttab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-clex/clex/internal/token"
)

func TestPutGetRoundTripsWithoutDeduplication(t *testing.T) {
	tab := New(4)
	h1, err := tab.Put(token.IntConst(7))
	require.NoError(t, err)
	h2, err := tab.Put(token.IntConst(7))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "constants are not deduplicated")
	assert.Equal(t, token.IntConst(7), tab.Get(h1))
	assert.Equal(t, token.IntConst(7), tab.Get(h2))
}

func TestPutRespectsCapacity(t *testing.T) {
	tab := New(1)
	_, err := tab.Put(token.IntConst(1))
	require.NoError(t, err)
	_, err = tab.Put(token.IntConst(2))
	assert.ErrorIs(t, err, ErrCapacityExhausted)
}
