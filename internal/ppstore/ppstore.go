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

// Package ppstore holds the process-global, append-only replacement-list
// buffer and the macro table that indexes into it. Every captured
// #define body is appended once and never copied again: a TokenIterator
// (package expand) addresses a sub-range of this single buffer by
// (start, cur, end) indices, so "restarting" an iterator is just pushing a
// fresh value-copy of the same indices rather than re-scanning or
// re-allocating the template.
package ppstore

import (
	"errors"

	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/token"
)

// ErrCapacityExhausted is returned once the replacement-list buffer's
// configured bound is reached.
var ErrCapacityExhausted = errors.New("preprocessor store: capacity exhausted")

// ErrUnknownMacro names the condition of a macro that is not defined. No
// function in this package returns it: Lookup, IsDefined and Undef report
// a missing name through their boolean results instead.
var ErrUnknownMacro = errors.New("preprocessor store: unknown macro")

// Flag bits for MacroRecord.Flags.
const (
	// FlagFunctionLike marks a macro defined with a parameter list,
	// e.g. "#define F(x) ...", as opposed to an object-like macro.
	FlagFunctionLike uint8 = 1 << iota
	// FlagVariadic marks a function-like macro whose final parameter is
	// "...".
	FlagVariadic
)

// MacroRecord is the compact macro table entry: a (start, length) range
// into the shared PPToken buffer for the replacement list, plus the
// parameter count and flag bits. It deliberately does not hold the macro
// name -- the table is keyed by the name's intern handle instead.
type MacroRecord struct {
	ReplacementStart  uint16
	ReplacementLength uint16
	ParamCount        uint8
	Flags             uint8
}

// IsFunctionLike reports whether m was defined with a parameter list.
func (m MacroRecord) IsFunctionLike() bool { return m.Flags&FlagFunctionLike != 0 }

// IsVariadic reports whether m's final parameter is "...".
func (m MacroRecord) IsVariadic() bool { return m.Flags&FlagVariadic != 0 }

// Store owns the shared replacement-list buffer and the macro table that
// indexes into it, plus the interner used to resolve macro names to
// handles.
type Store struct {
	tokens    []token.PPToken
	maxTokens int

	macros map[intern.Handle]MacroRecord
	names  *intern.Interner
}

// New creates a Store whose replacement-list buffer can hold at most
// maxTokens PPTokens. names is the interner used for macro identifiers (and
// typically shared with the tokenizer's identifier interner).
func New(maxTokens int, names *intern.Interner) *Store {
	return &Store{
		maxTokens: maxTokens,
		macros:    make(map[intern.Handle]MacroRecord),
		names:     names,
	}
}

// AppendToken appends one PPToken to the shared buffer and returns its
// index. Root-level macro invocations must materialize their argument
// tokens here before an expand.TokenIterator can address them; tokens
// already captured as part of a replacement list are appended exactly
// once, at #define time.
func (s *Store) AppendToken(t token.PPToken) (int, error) {
	if len(s.tokens) >= s.maxTokens {
		return 0, ErrCapacityExhausted
	}
	s.tokens = append(s.tokens, t)
	return len(s.tokens) - 1, nil
}

// TokenAt returns the token previously appended at index i.
func (s *Store) TokenAt(i int) token.PPToken { return s.tokens[i] }

// Len reports how many tokens are currently stored.
func (s *Store) Len() int { return len(s.tokens) }

// DefineMacro records repl (already appended via AppendToken, forming a
// contiguous range) as name's replacement list, overwriting any prior
// definition. The caller is responsible for the "is this redefinition
// compatible" diagnostic policy. DefineMacro fails, with
// ErrCapacityExhausted, only when [start, start+length) does not lie within
// the tokens appended so far.
func (s *Store) DefineMacro(name intern.Handle, start, length int, paramCount uint8, flags uint8) error {
	if start < 0 || length < 0 || start+length > len(s.tokens) {
		return ErrCapacityExhausted
	}
	s.macros[name] = MacroRecord{
		ReplacementStart:  uint16(start),
		ReplacementLength: uint16(length),
		ParamCount:        paramCount,
		Flags:             flags,
	}
	return nil
}

// Lookup returns name's current macro definition, if any.
func (s *Store) Lookup(name intern.Handle) (MacroRecord, bool) {
	m, ok := s.macros[name]
	return m, ok
}

// IsDefined is a convenience wrapper around Lookup for callers that only
// need the boolean (the #define capture, when deciding whether to warn about
// a redefinition).
func (s *Store) IsDefined(name intern.Handle) bool {
	_, ok := s.macros[name]
	return ok
}

// Undef removes name's definition. It is not an error to undefine a name
// that was never defined (matching #undef's documented behavior of being a
// no-op in that case), so removed reports whether a definition was
// actually removed.
func (s *Store) Undef(name intern.Handle) (removed bool) {
	if _, ok := s.macros[name]; !ok {
		return false
	}
	delete(s.macros, name)
	return true
}

// Replacement returns the token range backing m's replacement list as a
// slice view over the shared buffer. The returned slice aliases Store's
// internal storage and must not be mutated or retained past further
// AppendToken calls, which may grow the backing array.
func (s *Store) Replacement(m MacroRecord) []token.PPToken {
	start := int(m.ReplacementStart)
	end := start + int(m.ReplacementLength)
	return s.tokens[start:end]
}

// NameHandle interns name and returns its handle, for use as a macro table
// key.
func (s *Store) NameHandle(name []byte) (intern.Handle, bool, error) {
	return s.names.Add(name)
}

// ToPPToken compresses a raw token.Token into its PPToken form, routing an
// immediate constant payload through consts to obtain a stable handle.
// Both #define replacement-list capture and the top-level driver (for
// tokens that reach it without ever entering a macro body) share this
// conversion, so a constant is always addressed the same way regardless of
// which path produced it.
func ToPPToken(consts *consttab.Table, t token.Token) (token.PPToken, error) {
	pp := token.PPToken{Kind: t.Kind, Pos: t.Pos}
	switch v := t.Value.(type) {
	case token.StringHandle:
		pp.Handle = uint32(v)
	case token.ParamOrdinal:
		pp.Handle = uint32(v)
	case token.IntConst, token.FloatConst, token.CharConst:
		h, err := consts.Put(v)
		if err != nil {
			return token.PPToken{}, err
		}
		pp.Handle = uint32(h)
	}
	return pp, nil
}
