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

package lexer

import "github.com/go-clex/clex/internal/arena"

// scratch accumulates one lexeme's bytes in an arena.Linear, growing by
// doubling through the arena's same-block Reallocate fast path. begin()
// resets the whole arena, so only one lexeme's scratch space is ever live
// at a time -- matching the design's scratchpad, which is reset at the end
// of each tokenizer excursion.
type scratch struct {
	a   *arena.Linear
	cur []byte
	n   int
}

func newScratch(a *arena.Linear) *scratch {
	return &scratch{a: a}
}

func (s *scratch) begin() {
	s.a.ResetAll()
	s.cur = nil
	s.n = 0
}

func (s *scratch) appendByte(b byte) error {
	if s.cur == nil {
		buf, err := s.a.AllocateAligned(64, 1)
		if err != nil {
			return err
		}
		s.cur = buf
	} else if s.n == len(s.cur) {
		grown, err := s.a.Reallocate(s.cur, len(s.cur)*2)
		if err != nil {
			return err
		}
		s.cur = grown
	}
	s.cur[s.n] = b
	s.n++
	return nil
}

func (s *scratch) bytes() []byte { return s.cur[:s.n] }
