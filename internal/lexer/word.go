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

import (
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/keyword"
	"github.com/go-clex/clex/internal/token"
)

// lexWord reads a maximal [A-Za-z_$][A-Za-z0-9_$]* run. In ModeTopLevel it
// is classified as a keyword or interned as an IDENTIFIER; in
// ModeMacroBody it is additionally checked against the active formal
// parameter list before either of those, producing PP_PARAM.
func (lx *Lexer) lexWord(pos token.Position) (token.Token, error) {
	lx.scratch.begin()
	for isIdentCont(lx.r.Current()) {
		if err := lx.scratch.appendByte(lx.r.Current()); err != nil {
			return token.Token{}, lx.errorf(pos, diag.ErrLexemeTooLong, "")
		}
		if err := lx.advance(); err != nil {
			return token.Token{}, err
		}
	}
	lexeme := string(lx.scratch.bytes())

	if lx.mode == ModeMacroBody {
		for i, p := range lx.params {
			if p == lexeme {
				return token.Token{Kind: token.PPParam, Pos: pos, Value: token.ParamOrdinal(i)}, nil
			}
		}
	}

	if kind, ok := keyword.Lookup(lexeme); ok {
		return token.Token{Kind: kind, Pos: pos, Value: token.Simple{}}, nil
	}

	h, _, err := lx.names.AddString(lexeme)
	if err != nil {
		return token.Token{}, lx.errorf(pos, err, "identifier")
	}
	return token.Token{Kind: token.Identifier, Pos: pos, Value: token.StringHandle(h)}, nil
}
