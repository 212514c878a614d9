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

// Package directive recognizes a '#' at the start of a logical line and
// dispatches on the directive name. Only #define has real semantics here;
// every other recognized directive (#include, #undef, #if and friends,
// #error) is skipped to the end of its physical line with no effect, per
// the design's Non-goals. An unrecognized name, or a '#' that does not
// appear at the start of a line, is a lexing error.
package directive

import (
	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/lexer"
	"github.com/go-clex/clex/internal/ppstore"
	"github.com/go-clex/clex/internal/token"
)

// skippedDirectives lists every directive name recognized but given no
// semantics, matching the table in the design.
var skippedDirectives = map[string]bool{
	"include": true,
	"undef":   true,
	"if":      true,
	"ifdef":   true,
	"ifndef":  true,
	"elsif":   true,
	"else":    true,
	"endif":   true,
	"error":   true,
}

// maxMacroNameLength bounds a #define name, matching the design's "copies
// the name into a local buffer (up to 255 bytes)".
const maxMacroNameLength = 255

// Dispatcher owns the #define capture logic; it consults and mutates the
// shared lexer and preprocessor store, and reports diagnostics to sink.
type Dispatcher struct {
	lx     *lexer.Lexer
	store  *ppstore.Store
	consts *consttab.Table
	sink   *diag.Sink
	file   string
}

// New creates a Dispatcher operating over lx and store.
func New(lx *lexer.Lexer, store *ppstore.Store, consts *consttab.Table, sink *diag.Sink, file string) *Dispatcher {
	return &Dispatcher{lx: lx, store: store, consts: consts, sink: sink, file: file}
}

func (d *Dispatcher) errorf(pos token.Position, cause error, detail string) error {
	e := diag.New(d.file, pos, cause, detail)
	d.sink.Report(e)
	return e
}

// Dispatch is called once the caller has consumed a Hash token that was at
// the start of its logical line. It reads the directive name and handles
// it, returning once the physical line has been fully consumed (whether
// by #define capture or by skipping).
func (d *Dispatcher) Dispatch(hashPos token.Position) error {
	nameTok, err := d.lx.Next()
	if err != nil {
		return err
	}
	if nameTok.Kind != token.Identifier {
		d.skipToEndOfLine()
		return d.errorf(hashPos, diag.ErrUnknownDirective, "")
	}
	name := d.identifierText(nameTok)

	switch {
	case name == "define":
		return d.captureDefine(hashPos)
	case skippedDirectives[name]:
		d.skipToEndOfLine()
		return nil
	default:
		d.skipToEndOfLine()
		return d.errorf(hashPos, diag.ErrUnknownDirective, name)
	}
}

// identifierText resolves an already-produced Identifier token's lexeme.
// Directive names and macro names are always freshly lexed at top level
// (never inside a macro body), so the lexer's shared interner is the right
// place to resolve the handle.
func (d *Dispatcher) identifierText(t token.Token) string {
	h, ok := t.Value.(token.StringHandle)
	if !ok {
		return ""
	}
	return d.lx.InternedString(uint32(h))
}

// skipToEndOfLine discards raw bytes up to and including the next
// physical newline. Backslash-newline continuations are deliberately not
// observed here -- skip mode never splices, matching the design.
func (d *Dispatcher) skipToEndOfLine() {
	d.lx.SkipRawLine()
}

// captureDefine implements §4.5 of the design: name, optional parameter
// list, then replacement-list capture up to the physical newline.
func (d *Dispatcher) captureDefine(hashPos token.Position) error {
	nameTok, err := d.lx.Next()
	if err != nil {
		return err
	}
	if nameTok.Kind != token.Identifier {
		d.skipToEndOfLine()
		return d.errorf(hashPos, diag.ErrMalformedDefine, "missing macro name")
	}
	macroName := d.identifierText(nameTok)
	if len(macroName) > maxMacroNameLength {
		d.skipToEndOfLine()
		return d.errorf(hashPos, diag.ErrMalformedDefine, "macro name too long")
	}

	functionLike, params, err := d.maybeParseParamList()
	if err != nil {
		d.skipToEndOfLine()
		return err
	}

	d.lx.EnterMacroBody(params)
	start := d.store.Len()
	count := 0
	for {
		t, err := d.lx.Next()
		if err != nil {
			d.lx.ExitMacroBody()
			return err
		}
		if t.Kind == token.EOF {
			break
		}
		pp, convErr := ppstore.ToPPToken(d.consts, t)
		if convErr != nil {
			d.lx.ExitMacroBody()
			return d.errorf(t.Pos, convErr, "replacement list")
		}
		if _, appendErr := d.store.AppendToken(pp); appendErr != nil {
			d.lx.ExitMacroBody()
			return d.errorf(t.Pos, appendErr, "replacement list")
		}
		count++
	}
	d.lx.ExitMacroBody()
	d.lx.ConsumeNewline()

	nameHandle, _, err := d.store.NameHandle([]byte(macroName))
	if err != nil {
		return d.errorf(hashPos, err, "macro table")
	}
	var flags uint8
	if functionLike {
		flags |= ppstore.FlagFunctionLike
	}
	if existed := d.store.IsDefined(nameHandle); existed {
		d.sink.Report(diag.NewWarning(d.file, hashPos, diag.ErrMacroRedefinition, macroName))
	}
	if err := d.store.DefineMacro(nameHandle, start, count, uint8(len(params)), flags); err != nil {
		return d.errorf(hashPos, err, "macro table")
	}
	return nil
}

// maybeParseParamList recognizes the function-like form: '(' with no
// intervening whitespace after the macro name. The lexer's AtLineStart
// tracking cannot tell us about intra-token whitespace, so the dispatcher
// peeks at the raw reader byte directly, matching the design's "no
// whitespace before '(' " rule.
func (d *Dispatcher) maybeParseParamList() (functionLike bool, params []string, err error) {
	if !d.lx.ImmediatelyFollowedByLParen() {
		return false, nil, nil
	}
	// Consume the '(' itself as a token.
	if _, err := d.lx.Next(); err != nil {
		return false, nil, err
	}
	seen := make(map[string]bool)
	for {
		t, err := d.lx.Next()
		if err != nil {
			return false, nil, err
		}
		if t.Kind == token.RParen {
			break
		}
		if t.Kind != token.Identifier {
			return false, nil, d.errorf(t.Pos, diag.ErrMalformedDefine, "expected parameter name")
		}
		name := d.identifierText(t)
		if seen[name] {
			return false, nil, d.errorf(t.Pos, diag.ErrMalformedDefine, "duplicate parameter "+name)
		}
		seen[name] = true
		params = append(params, name)

		sep, err := d.lx.Next()
		if err != nil {
			return false, nil, err
		}
		if sep.Kind == token.RParen {
			break
		}
		if sep.Kind != token.Comma {
			return false, nil, d.errorf(sep.Pos, diag.ErrMalformedDefine, "expected ',' or ')'")
		}
	}
	return true, params, nil
}
