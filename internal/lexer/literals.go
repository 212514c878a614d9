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
	"github.com/go-clex/clex/internal/source"
	"github.com/go-clex/clex/internal/token"
)

// lexString reads a string literal and, per the design, any further
// string literals separated only by whitespace or comments -- concatenated
// into one decoded payload before interning.
func (lx *Lexer) lexString(pos token.Position) (token.Token, error) {
	lx.scratch.begin()
	for {
		if err := lx.consumeQuotedBody('"', pos); err != nil {
			return token.Token{}, err
		}
		// Look past whitespace/comments for another opening quote, so
		// "abc" "def" concatenates into one literal.
		crossed, _, err := lx.skipSpaceAndComments()
		if err != nil {
			return token.Token{}, err
		}
		lx.newlinePending = crossed
		if lx.r.Current() != '"' {
			break
		}
	}
	h, _, err := lx.names.Add(lx.scratch.bytes())
	if err != nil {
		return token.Token{}, lx.errorf(pos, err, "string literal")
	}
	return token.Token{Kind: token.StringLiteral, Pos: pos, Value: token.StringHandle(h)}, nil
}

// lexChar reads a character constant, folding each decoded byte into a
// 32-bit accumulator (supporting multi-character constants, matching the
// source).
func (lx *Lexer) lexChar(pos token.Position) (token.Token, error) {
	lx.r.Advance() // opening '\''
	var acc int32
	any := false
	for lx.r.Current() != '\'' {
		if lx.r.Current() == source.EOF || lx.r.Current() == '\n' {
			return token.Token{}, lx.errorf(pos, diag.ErrUnterminatedLiteral, "character constant")
		}
		b, err := lx.consumeLiteralByte(pos)
		if err != nil {
			return token.Token{}, err
		}
		acc = (acc << 8) | int32(b)
		any = true
	}
	lx.r.Advance() // closing '\''
	if !any {
		return token.Token{}, lx.errorf(pos, diag.ErrUnterminatedLiteral, "empty character constant")
	}
	return token.Token{Kind: token.CharConstant, Pos: pos, Value: token.CharConst(acc)}, nil
}

// consumeQuotedBody consumes an opening quote, the body (decoding
// escapes into the scratchpad), and the matching closing quote.
func (lx *Lexer) consumeQuotedBody(quote byte, pos token.Position) error {
	lx.r.Advance() // opening quote
	for lx.r.Current() != quote {
		if lx.r.Current() == source.EOF || lx.r.Current() == '\n' {
			return lx.errorf(pos, diag.ErrUnterminatedLiteral, "string literal")
		}
		b, err := lx.consumeLiteralByte(pos)
		if err != nil {
			return err
		}
		if err := lx.scratch.appendByte(b); err != nil {
			return lx.errorf(pos, diag.ErrLexemeTooLong, "")
		}
	}
	lx.r.Advance() // closing quote
	return nil
}

// consumeLiteralByte decodes one source byte or escape sequence, returning
// the single decoded byte it contributes.
func (lx *Lexer) consumeLiteralByte(pos token.Position) (byte, error) {
	if lx.r.Current() != '\\' {
		b := lx.r.Current()
		lx.r.Advance()
		return b, nil
	}
	lx.r.Advance() // backslash
	c := lx.r.Current()
	switch c {
	case '\\':
		lx.r.Advance()
		return '\\', nil
	case '\'':
		lx.r.Advance()
		return '\'', nil
	case '"':
		lx.r.Advance()
		return '"', nil
	case '?':
		lx.r.Advance()
		return '?', nil
	case 'a':
		lx.r.Advance()
		return '\a', nil
	case 'b':
		lx.r.Advance()
		return '\b', nil
	case 'f':
		lx.r.Advance()
		return '\f', nil
	case 'n':
		lx.r.Advance()
		return '\n', nil
	case 'r':
		lx.r.Advance()
		return '\r', nil
	case 't':
		lx.r.Advance()
		return '\t', nil
	case 'v':
		lx.r.Advance()
		return '\v', nil
	case 'e':
		lx.r.Advance()
		return 0x1b, nil
	case 'x':
		lx.r.Advance()
		if !isHexDigit(lx.r.Current()) {
			return 0, lx.errorf(pos, diag.ErrInvalidEscape, "\\x with no hex digits")
		}
		var v int
		for isHexDigit(lx.r.Current()) {
			d, _ := digitValue(lx.r.Current())
			v = v*16 + d
			lx.r.Advance()
		}
		return byte(v), nil
	default:
		if c >= '0' && c <= '7' {
			v := 0
			for n := 0; n < 3 && lx.r.Current() >= '0' && lx.r.Current() <= '7'; n++ {
				v = v*8 + int(lx.r.Current()-'0')
				lx.r.Advance()
			}
			return byte(v), nil
		}
		return 0, lx.errorf(pos, diag.ErrInvalidEscape, string(c))
	}
}
