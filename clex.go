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

// Package clex is the Token Source: the public entry point that drives the
// source reader, the tokenizer, the directive dispatcher, and the macro
// expansion engine as one pull-based token stream. A caller sees neither
// raw punctuation-level directive handling nor the expansion context
// stack -- Next always returns the next fully-macro-expanded token, or an
// EOF token once the file (and any expansion in flight) is exhausted.
package clex

import (
	"strings"

	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/directive"
	"github.com/go-clex/clex/internal/expand"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/lexer"
	"github.com/go-clex/clex/internal/ppstore"
	"github.com/go-clex/clex/internal/source"
	"github.com/go-clex/clex/internal/token"
)

// Capacity defaults, matching the scale of the design's fixed-size tables
// (PreprocessorToken buffer, identifier/string intern table): generous
// enough for a single translation unit, bounded so a pathological input
// fails with a capacity diagnostic rather than growing without limit.
const (
	defaultInternBytes = 4 << 20
	defaultInternCount = 1 << 16
	defaultConstCount  = 1 << 16
	defaultPPTokens    = 1 << 16
)

// Lexer is the combined Source Reader + Tokenizer + Preprocessor Macro
// Expansion Engine described by the design, exposed as a single pull-based
// token stream.
type Lexer struct {
	reader *source.Reader
	names  *intern.Interner
	consts *consttab.Table
	sink   *diag.Sink

	tok  *lexer.Lexer
	store *ppstore.Store
	disp *directive.Dispatcher
	eng  *expand.Engine

	expanding    bool
	lastMacroPos token.Position
	pending      *token.Token // one-token pushback, see nextRaw
}

// nextRaw returns a pending pushed-back token if one is waiting (left by a
// function-like macro name that turned out not to be followed by '('),
// otherwise the tokenizer's next raw token.
func (lx *Lexer) nextRaw() (token.Token, error) {
	if lx.pending != nil {
		t := *lx.pending
		lx.pending = nil
		return t, nil
	}
	return lx.tok.Next()
}

// Option configures a Lexer at Open time, applied in the order given -- so
// that repeated -D/-U command-line flags are seeded in the order the user
// wrote them, which matters when a later flag redefines or undefines an
// earlier one.
type Option func(*Lexer) error

// WithDefine seeds a macro definition as if it had appeared in a "#define
// spec" line, where spec is either "NAME", "NAME=VALUE", or
// "NAME(params)=VALUE" -- the -D command-line convention. "NAME" alone
// defines NAME to the single token 1, matching common preprocessor
// practice.
func WithDefine(spec string) Option {
	return func(lx *Lexer) error { return lx.seedDefine(spec) }
}

// WithUndef seeds an unconditional #undef of name, applied at Open time
// (the -U command-line convention). Undefining a name that was never
// defined is not an error.
func WithUndef(name string) Option {
	return func(lx *Lexer) error {
		if h, ok := lx.names.Lookup([]byte(name)); ok {
			lx.store.Undef(h)
		}
		return nil
	}
}

// Open opens path and prepares a Lexer to read fully macro-expanded tokens
// from it, applying opts (command-line -D/-U seeding) before the first
// token is produced.
func Open(path string, opts ...Option) (*Lexer, error) {
	r, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	return newLexer(r, opts)
}

// OpenBytes adapts an in-memory buffer, as Open does for a file -- used by
// tests and by embedders that already hold the source in memory.
func OpenBytes(name string, data []byte, opts ...Option) (*Lexer, error) {
	return newLexer(source.OpenBytes(name, data), opts)
}

func newLexer(r *source.Reader, opts []Option) (*Lexer, error) {
	names := intern.New(defaultInternBytes, defaultInternCount)
	consts := consttab.New(defaultConstCount)
	sink := &diag.Sink{}
	store := ppstore.New(defaultPPTokens, names)

	lx := &Lexer{
		reader: r,
		names:  names,
		consts: consts,
		sink:   sink,
		tok:    lexer.New(r, names, consts, sink),
		store:  store,
		eng:    expand.New(store),
	}
	lx.disp = directive.New(lx.tok, store, consts, sink, r.FileName())

	for _, opt := range opts {
		if err := opt(lx); err != nil {
			return nil, err
		}
	}
	return lx, nil
}

// Close releases the underlying file.
func (lx *Lexer) Close() error { return lx.reader.Close() }

// Diagnostics returns every diagnostic reported so far.
func (lx *Lexer) Diagnostics() *diag.Sink { return lx.sink }

// Names returns the shared identifier/string interner, so a caller (the
// -dump-tokens CLI mode, for instance) can resolve a token's handle back
// to text without duplicating the interner.
func (lx *Lexer) Names() *intern.Interner { return lx.names }

// Consts returns the shared constants table, the IntConstant/FloatConstant
// /CharConstant counterpart to Names.
func (lx *Lexer) Consts() *consttab.Table { return lx.consts }

func (lx *Lexer) errorf(pos token.Position, cause error, detail string) error {
	d := diag.New(lx.reader.FileName(), pos, cause, detail)
	lx.sink.Report(d)
	return d
}

// Next returns the next fully macro-expanded token. At true end of file
// (with no expansion in flight) it returns a token.EOF token and a nil
// error; callers should stop calling Next once they observe token.EOF.
func (lx *Lexer) Next() (token.PPToken, error) {
	for {
		if lx.expanding {
			pp, ok, err := lx.eng.Next()
			if err != nil {
				return token.PPToken{}, lx.errorf(lx.lastMacroPos, err, "")
			}
			if ok {
				if pp.Kind == token.PPNumber {
					// Replacement lists keep numbers as raw pp-numbers; run
					// the lexeme through a top-level tokenizer so the caller
					// always sees a parsed IntConstant or FloatConstant.
					text := lx.names.String(intern.Handle(pp.Handle))
					nl := lexer.New(source.OpenBytes(lx.reader.FileName(), []byte(text)), lx.names, lx.consts, &diag.Sink{})
					t, err := nl.Next()
					if err != nil {
						return token.PPToken{}, lx.errorf(pp.Pos, diag.ErrMalformedNumber, text)
					}
					t.Pos = pp.Pos
					if pp, err = ppstore.ToPPToken(lx.consts, t); err != nil {
						return token.PPToken{}, lx.errorf(t.Pos, err, "")
					}
				}
				return pp, nil
			}
			lx.eng.ResetAll()
			lx.expanding = false
			continue
		}

		t, err := lx.nextRaw()
		if err != nil {
			return token.PPToken{}, err
		}
		if t.Kind == token.EOF {
			return token.PPToken{Kind: token.EOF, Pos: t.Pos}, nil
		}
		if t.Kind == token.Hash {
			if !lx.tok.AtLineStart() {
				return token.PPToken{}, lx.errorf(t.Pos, diag.ErrDirectiveNotAtLineStart, "")
			}
			if err := lx.disp.Dispatch(t.Pos); err != nil {
				return token.PPToken{}, err
			}
			continue
		}
		if t.Kind == token.Identifier {
			name, ok := t.Value.(token.StringHandle)
			if ok {
				if m, defined := lx.store.Lookup(intern.Handle(name)); defined {
					lx.lastMacroPos = t.Pos
					invoked, err := lx.beginExpansion(m)
					if err != nil {
						return token.PPToken{}, err
					}
					if invoked {
						lx.expanding = true
						continue
					}
					// Not actually invoked (function-like name with no
					// following '('): t is a plain identifier token,
					// handled below like any other.
				}
			}
		}

		pp, err := ppstore.ToPPToken(lx.consts, t)
		if err != nil {
			return token.PPToken{}, lx.errorf(t.Pos, err, "")
		}
		return pp, nil
	}
}

// beginExpansion starts a root expansion of m, reporting invoked=false
// (with no error) if m is function-like but the next raw token is not
// '(' -- per the design, a function-like macro name not followed by a
// call is just an identifier, not an invocation. The rejected token is
// stashed via lx.pending so the caller sees it on the next nextRaw call.
func (lx *Lexer) beginExpansion(m ppstore.MacroRecord) (invoked bool, err error) {
	if !m.IsFunctionLike() {
		lx.eng.BeginObjectLike(m)
		return true, nil
	}

	open, err := lx.nextRaw()
	if err != nil {
		return false, err
	}
	if open.Kind != token.LParen {
		lx.pending = &open
		return false, nil
	}

	if m.ParamCount == 0 {
		closeTok, err := lx.nextRaw()
		if err != nil {
			return true, err
		}
		if closeTok.Kind != token.RParen {
			return true, lx.errorf(closeTok.Pos, diag.ErrArgumentCount, "expected ')'")
		}
		lx.eng.BeginObjectLike(m)
		return true, nil
	}

	out, err := lx.eng.NewArgIterators(int(m.ParamCount))
	if err != nil {
		return true, lx.errorf(open.Pos, err, "")
	}
	if err := expand.ScanArgumentsWithPuller(lx.rootPuller(), out); err != nil {
		return true, lx.errorf(open.Pos, err, "")
	}
	if err := lx.eng.BeginFunctionLike(m, out); err != nil {
		return true, lx.errorf(open.Pos, err, "")
	}
	return true, nil
}

// rootPuller materializes raw tokenizer output into the shared store one
// token at a time, handing each appended token's kind and store index to
// ScanArgumentsWithPuller -- the root-level counterpart to
// expand.NestedPuller, which instead reads tokens already resident in the
// store from an enclosing replacement list.
func (lx *Lexer) rootPuller() expand.Puller {
	return func() (token.Kind, int, error) {
		t, err := lx.tok.Next()
		if err != nil {
			return 0, 0, err
		}
		if t.Kind == token.EOF {
			return 0, 0, diag.ErrUnterminatedInvoke
		}
		pp, err := ppstore.ToPPToken(lx.consts, t)
		if err != nil {
			return 0, 0, err
		}
		idx, err := lx.store.AppendToken(pp)
		if err != nil {
			return 0, 0, err
		}
		return t.Kind, idx, nil
	}
}

// seedDefine parses the -D convention (NAME, NAME=VALUE, or
// NAME(params)=VALUE) into a synthetic "#define ..." line and feeds it
// through the same capture logic as a #define encountered in the file, so
// command-line macros and source macros are indistinguishable once
// defined.
func (lx *Lexer) seedDefine(spec string) error {
	line := spec
	if eq := strings.IndexByte(spec, '='); eq >= 0 {
		line = spec[:eq] + " " + spec[eq+1:]
	} else {
		line = spec + " 1"
	}
	src := source.OpenBytes("<command-line>", []byte("#define "+line+"\n"))
	tl := lexer.New(src, lx.names, lx.consts, lx.sink)
	hashTok, err := tl.Next()
	if err != nil {
		return err
	}
	if hashTok.Kind != token.Hash {
		return lx.errorf(hashTok.Pos, diag.ErrMalformedDefine, spec)
	}
	d := directive.New(tl, lx.store, lx.consts, lx.sink, "<command-line>")
	return d.Dispatch(hashTok.Pos)
}
