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

// Package lexer turns a normalized byte stream (package source) into raw
// tokens. It runs in one of two modes: top-level lexing, where a newline is
// whitespace, or macro-body capture, where a physical newline ends the
// stream and a formal-parameter-shaped identifier becomes a PP_PARAM
// instead of an IDENTIFIER. Everything the lexer allocates per-lexeme
// (identifier text, decoded string-literal bytes, a pp-number's digits)
// is scratch: built up in a small arena-backed buffer and either interned
// or parsed before the arena is reset for the next lexeme.
package lexer

import (
	"github.com/go-clex/clex/internal/arena"
	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/source"
	"github.com/go-clex/clex/internal/token"
)

// scratchCapacity bounds any single lexeme (identifier, string/char literal
// payload, or preprocessing number) the scratchpad can accumulate.
const scratchCapacity = 8192

// Mode selects how the lexer treats a physical newline and how it
// classifies identifiers.
type Mode int

const (
	// ModeTopLevel is ordinary lexing: newlines are whitespace, and every
	// identifier-shaped lexeme is either a keyword or an IDENTIFIER.
	ModeTopLevel Mode = iota
	// ModeMacroBody is entered by the directive dispatcher while
	// capturing a #define replacement list: a physical newline ends the
	// stream (Next returns an EOF token without consuming it), and an
	// identifier matching one of the active formal parameters becomes a
	// PP_PARAM token instead.
	ModeMacroBody
)

// Lexer is the Tokenizer of the design: it owns no resources the caller
// doesn't also need (the interner, constants table, and diagnostic sink are
// shared with the rest of the pipeline), only the reader it consumes from
// and its own scratchpad.
type Lexer struct {
	r      *source.Reader
	names  *intern.Interner
	consts *consttab.Table
	sink   *diag.Sink

	mode   Mode
	params []string

	scratch   *scratch
	fileStart bool
	lineStart bool
	// newlinePending records a newline consumed outside Next's own
	// whitespace skip (by a directive or by string concatenation), so the
	// next token is still seen as the first of its line.
	newlinePending bool
}

// New creates a Lexer reading from r, interning identifiers and string
// payloads into names and constants into consts. Diagnostics are reported
// to sink.
func New(r *source.Reader, names *intern.Interner, consts *consttab.Table, sink *diag.Sink) *Lexer {
	return &Lexer{
		r:         r,
		names:     names,
		consts:    consts,
		sink:      sink,
		scratch:   newScratch(arena.NewLinear(scratchCapacity)),
		fileStart: true,
	}
}

// EnterMacroBody switches the lexer into ModeMacroBody with the given
// ordered formal-parameter names (their index is the PP_PARAM ordinal).
func (lx *Lexer) EnterMacroBody(params []string) {
	lx.mode = ModeMacroBody
	lx.params = params
}

// ExitMacroBody returns the lexer to ModeTopLevel.
func (lx *Lexer) ExitMacroBody() {
	lx.mode = ModeTopLevel
	lx.params = nil
}

// AtLineStart reports whether the most recently returned token was the
// first token of its logical line -- the signal the directive dispatcher
// uses to decide whether a '#' introduces a directive.
func (lx *Lexer) AtLineStart() bool { return lx.lineStart }

// ConsumeNewline advances past a physical newline the lexer stopped at in
// ModeMacroBody without consuming (so a #define capture loop can tell
// "replacement list ended" from "file ended").
func (lx *Lexer) ConsumeNewline() {
	if lx.r.Current() == '\n' {
		lx.r.Advance()
		lx.newlinePending = true
	}
}

// InternedString resolves a StringHandle value (as stored on an
// Identifier or StringLiteral token) back to its text.
func (lx *Lexer) InternedString(h uint32) string {
	return lx.names.String(intern.Handle(h))
}

// ImmediatelyFollowedByLParen reports whether the byte right after the
// most recently returned token is '(', with no intervening whitespace --
// the rule the directive dispatcher uses to tell a function-like #define
// from an object-like one.
func (lx *Lexer) ImmediatelyFollowedByLParen() bool {
	return lx.r.Current() == '('
}

// SkipRawLine discards raw reader bytes up to (and including) the next
// physical newline, without backslash-newline splicing -- used by the
// directive dispatcher's directive-skip policy, which deliberately does
// not observe continuations.
func (lx *Lexer) SkipRawLine() {
	for lx.r.Current() != '\n' && lx.r.Current() != source.EOF {
		lx.r.Advance()
	}
	if lx.r.Current() == '\n' {
		lx.r.Advance()
		lx.newlinePending = true
	}
}

func (lx *Lexer) pos() token.Position {
	p := lx.r.Position()
	return token.Position{Line: p.Line, Column: p.Column, LineStart: p.LineStart}
}

func (lx *Lexer) errorf(pos token.Position, cause error, detail string) error {
	d := diag.New(lx.r.FileName(), pos, cause, detail)
	lx.sink.Report(d)
	return d
}

// advance consumes the current byte and splices away any backslash-newline
// that immediately follows, the same way skipSpaceAndComments does between
// tokens -- matching the original's consumeLexableChar, called at every
// lexable character boundary so a continuation can land inside an
// identifier, a number, or a multi-character operator, not just between
// them.
func (lx *Lexer) advance() error {
	lx.r.Advance()
	if _, err := lx.r.SpliceIfBackslashNewline(); err != nil {
		return lx.errorf(lx.pos(), diag.ErrUnexpectedChar, "stray backslash")
	}
	return nil
}

// Next returns the next raw token. In ModeMacroBody, reaching an
// unconsumed physical newline yields an EOF token; the caller
// distinguishes this from real end-of-file by checking Reader state itself
// if it needs to.
func (lx *Lexer) Next() (token.Token, error) {
	crossedNewline, hitBodyEnd, err := lx.skipSpaceAndComments()
	atStart := crossedNewline || lx.fileStart || lx.newlinePending
	lx.fileStart = false
	lx.newlinePending = false
	if err != nil {
		lx.lineStart = atStart
		return token.Token{}, err
	}
	pos := lx.pos()
	if hitBodyEnd {
		lx.lineStart = atStart
		return token.Token{Kind: token.EOF, Pos: pos, Value: token.Simple{}}, nil
	}
	c := lx.r.Current()
	if c == source.EOF {
		lx.lineStart = atStart
		return token.Token{Kind: token.EOF, Pos: pos, Value: token.Simple{}}, nil
	}

	lx.lineStart = atStart

	switch {
	case isIdentStart(c):
		return lx.lexWord(pos)
	case c == '0':
		return lx.lexNumber(pos)
	case isDigit(c):
		return lx.lexNumber(pos)
	case c == '.' && isDigit(lx.r.Lookahead()):
		return lx.lexNumber(pos)
	case c == '"':
		return lx.lexString(pos)
	case c == '\'':
		return lx.lexChar(pos)
	default:
		return lx.lexOperator(pos)
	}
}

// skipSpaceAndComments advances past horizontal whitespace, newlines
// (ModeTopLevel only), backslash-newline splices, and both comment forms.
// It reports whether a newline was crossed (crossedNewline) and, in
// ModeMacroBody, whether an unconsumed physical newline ended the scan
// (hitBodyEnd).
func (lx *Lexer) skipSpaceAndComments() (crossedNewline, hitBodyEnd bool, err error) {
	for {
		c := lx.r.Current()
		switch {
		case c == '\n':
			if lx.mode == ModeMacroBody {
				return crossedNewline, true, nil
			}
			lx.r.Advance()
			crossedNewline = true
			// Forward progress past the line the error-handled latch is
			// guarding -- matches the source's error_handled flag, cleared
			// once lexing reaches the next line.
			lx.sink.ClearLatch()
		case c == ' ' || c == '\t' || c == '\v' || c == '\f':
			lx.r.Advance()
		case c == '\\':
			spliced, serr := lx.r.SpliceIfBackslashNewline()
			if serr != nil {
				return crossedNewline, false, lx.errorf(lx.pos(), diag.ErrUnexpectedChar, "stray backslash")
			}
			if !spliced {
				return crossedNewline, false, nil
			}
		case c == '/' && lx.r.Lookahead() == '/':
			lx.r.Advance()
			lx.r.Advance()
			for lx.r.Current() != '\n' && lx.r.Current() != source.EOF {
				lx.r.Advance()
			}
		case c == '/' && lx.r.Lookahead() == '*':
			startPos := lx.pos()
			lx.r.Advance()
			lx.r.Advance()
			closed := false
			for lx.r.Current() != source.EOF {
				if lx.r.Current() == '*' && lx.r.Lookahead() == '/' {
					lx.r.Advance()
					lx.r.Advance()
					closed = true
					break
				}
				if lx.r.Current() == '\n' {
					crossedNewline = true
				}
				lx.r.Advance()
			}
			if !closed {
				return crossedNewline, false, lx.errorf(startPos, diag.ErrUnterminatedComment, "")
			}
		default:
			return crossedNewline, false, nil
		}
	}
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// lexOperator dispatches the punctuator/operator alphabet. Each case reads
// the current byte, looks one or two bytes ahead, and advances accordingly
// -- the "read prefix, look, optionally consume, optionally consume again"
// shape the design calls for, rather than one large regular-expression
// table.
func (lx *Lexer) lexOperator(pos token.Position) (token.Token, error) {
	simple := func(k token.Kind, n int) (token.Token, error) {
		for i := 0; i < n; i++ {
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
		}
		return token.Token{Kind: k, Pos: pos, Value: token.Simple{}}, nil
	}

	c := lx.r.Current()
	l := lx.r.Lookahead()
	switch c {
	case '(':
		return simple(token.LParen, 1)
	case ')':
		return simple(token.RParen, 1)
	case '{':
		return simple(token.LBrace, 1)
	case '}':
		return simple(token.RBrace, 1)
	case '[':
		return simple(token.LBracket, 1)
	case ']':
		return simple(token.RBracket, 1)
	case ',':
		return simple(token.Comma, 1)
	case ';':
		return simple(token.Semicolon, 1)
	case '?':
		return simple(token.QuestionMark, 1)
	case '~':
		return simple(token.Tilde, 1)
	case '#':
		return simple(token.Hash, 1)
	case '.':
		if l == '.' {
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if lx.r.Current() == '.' && lx.r.Lookahead() == '.' {
				return simple(token.Ellipsis, 2)
			}
			// Two dots not forming an ellipsis: treat the first as a
			// stray Dot and let the next Next() call re-examine the
			// second; matches the "small state machine" shape without
			// inventing a two-dot token kind.
			return token.Token{Kind: token.Dot, Pos: pos, Value: token.Simple{}}, nil
		}
		return simple(token.Dot, 1)
	case ':':
		return simple(token.Colon, 1)
	case '+':
		if l == '+' {
			return simple(token.Increment, 2)
		}
		if l == '=' {
			return simple(token.PlusAssign, 2)
		}
		return simple(token.Plus, 1)
	case '-':
		if l == '-' {
			return simple(token.Decrement, 2)
		}
		if l == '=' {
			return simple(token.MinusAssign, 2)
		}
		if l == '>' {
			return simple(token.Arrow, 2)
		}
		return simple(token.Minus, 1)
	case '*':
		if l == '=' {
			return simple(token.StarAssign, 2)
		}
		return simple(token.Star, 1)
	case '/':
		if l == '=' {
			return simple(token.SlashAssign, 2)
		}
		return simple(token.Slash, 1)
	case '%':
		if l == '=' {
			return simple(token.PercentAssign, 2)
		}
		return simple(token.Percent, 1)
	case '&':
		if l == '&' {
			return simple(token.LogicalAnd, 2)
		}
		if l == '=' {
			return simple(token.AmpAssign, 2)
		}
		return simple(token.Ampersand, 1)
	case '|':
		if l == '|' {
			return simple(token.LogicalOr, 2)
		}
		if l == '=' {
			return simple(token.PipeAssign, 2)
		}
		return simple(token.Pipe, 1)
	case '^':
		if l == '=' {
			return simple(token.CaretAssign, 2)
		}
		return simple(token.Caret, 1)
	case '!':
		if l == '=' {
			return simple(token.NotEqual, 2)
		}
		return simple(token.Bang, 1)
	case '=':
		if l == '=' {
			return simple(token.Equal, 2)
		}
		return simple(token.Assign, 1)
	case '<':
		if l == '<' {
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if lx.r.Current() == '=' {
				if err := lx.advance(); err != nil {
					return token.Token{}, err
				}
				return token.Token{Kind: token.ShlAssign, Pos: pos, Value: token.Simple{}}, nil
			}
			return token.Token{Kind: token.Shl, Pos: pos, Value: token.Simple{}}, nil
		}
		if l == '=' {
			return simple(token.LessEqual, 2)
		}
		return simple(token.Less, 1)
	case '>':
		if l == '>' {
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if lx.r.Current() == '=' {
				if err := lx.advance(); err != nil {
					return token.Token{}, err
				}
				return token.Token{Kind: token.ShrAssign, Pos: pos, Value: token.Simple{}}, nil
			}
			return token.Token{Kind: token.Shr, Pos: pos, Value: token.Simple{}}, nil
		}
		if l == '=' {
			return simple(token.GreaterEqual, 2)
		}
		return simple(token.Greater, 1)
	default:
		lx.r.Advance()
		return token.Token{}, lx.errorf(pos, diag.ErrUnexpectedChar, string(c))
	}
}
