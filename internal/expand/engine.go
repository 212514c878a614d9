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
	"github.com/go-clex/clex/internal/arena"
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/ppstore"
	"github.com/go-clex/clex/internal/token"
)

// MaxDepth bounds the expansion context stack, matching the design's fixed
// 1024-entry EXPANSION_STACK_SIZE. Self-recursive macros are not detected
// by name; a macro that re-invokes itself simply runs the stack out and
// fails with ErrStackOverflow, which is the design's documented behavior
// for that Open Question.
const MaxDepth = 1024

// maxIteratorsPerRoot bounds how many argument TokenIterators in total (one
// per declared parameter of each function-like invocation, at any nesting
// depth) one root expansion can allocate before its arena is reset.
const maxIteratorsPerRoot = 4096

// Result classifies what Step produced.
type Result int

const (
	// ResultToken means Step produced a real output token (returned
	// alongside the Result).
	ResultToken Result = iota
	// ResultContinue means Step made internal progress (pushed or popped
	// a context) without producing a token; the caller should call Step
	// again immediately.
	ResultContinue
	// ResultDone means the root-level iterator (stack depth 0) is
	// exhausted: this expansion episode is over. The caller should
	// resume pulling raw tokens from the tokenizer, not call Step again
	// until a new root expansion has been Begin'd. This is distinct from
	// the tokenizer's own end-of-file: it only ever means "this one
	// macro invocation finished producing tokens."
	ResultDone
)

type frame struct {
	it    TokenIterator
	param *ParamContext
}

// Engine runs one macro expansion at a time (rescanning, recursively, as
// deep as MaxDepth allows) and can be reused across many independent root
// expansions via ResetAll.
type Engine struct {
	store *ppstore.Store

	frames [MaxDepth]frame
	depth  int

	params *arena.Typed[ParamContext]
	iters  *arena.Typed[TokenIterator]
}

// New creates an Engine reading macro definitions and replacement lists
// from store.
func New(store *ppstore.Store) *Engine {
	return &Engine{
		store:  store,
		params: arena.NewTyped[ParamContext](MaxDepth),
		iters:  arena.NewTyped[TokenIterator](maxIteratorsPerRoot),
	}
}

// ResetAll reclaims every ParamContext and argument-iterator array
// allocated since the engine was created or last reset, matching the
// design's "expansion allocator reset wholesale when the root expansion
// completes". It is safe -- and expected -- to call this once Step has
// returned ResultDone, before the next root expansion begins.
func (e *Engine) ResetAll() {
	e.params.ResetAll()
	e.iters.ResetAll()
	e.depth = 0
}

// Begin starts a new root expansion: iter ranges over the macro's own
// replacement list (or, for a function-like macro, the same, with param
// bound to the scanned argument iterators). param is nil for an
// object-like macro or a function-like macro with zero parameters.
func (e *Engine) Begin(iter TokenIterator, param *ParamContext) {
	e.depth = 0
	e.frames[0] = frame{it: iter, param: param}
}

// BeginObjectLike starts a root expansion of an object-like macro (or a
// function-like macro with zero parameters, once its empty "()" has
// already been consumed by the caller).
func (e *Engine) BeginObjectLike(m ppstore.MacroRecord) {
	e.Begin(e.replacementIter(m), nil)
}

// NewArgIterators carves an arena-backed slice of n TokenIterators for the
// caller to fill (via ScanArgumentsWithPuller) while scanning a root-level
// function-like invocation's argument list against the live tokenizer,
// rather than against an already-buffered replacement list.
func (e *Engine) NewArgIterators(n int) ([]TokenIterator, error) {
	return e.iters.NewSlice(n)
}

// BeginFunctionLike starts a root expansion of a function-like macro whose
// argument list has already been scanned into args (one TokenIterator per
// declared parameter, in order).
func (e *Engine) BeginFunctionLike(m ppstore.MacroRecord, args []TokenIterator) error {
	pc, err := e.params.New(ParamContext{Parent: nil, Iterators: args})
	if err != nil {
		return err
	}
	e.Begin(e.replacementIter(m), pc)
	return nil
}

func (e *Engine) push(iter TokenIterator, param *ParamContext) error {
	if e.depth+1 >= MaxDepth {
		return diag.ErrStackOverflow
	}
	e.depth++
	e.frames[e.depth] = frame{it: iter, param: param}
	return nil
}

// replacementIter builds the TokenIterator over m's captured replacement
// list, scoped to the shared store's current layout.
func (e *Engine) replacementIter(m ppstore.MacroRecord) TokenIterator {
	start := int(m.ReplacementStart)
	return TokenIterator{Start: start, Cur: start, End: start + int(m.ReplacementLength)}
}

// Step advances the expansion state machine by exactly one decision,
// mirroring source/cpp.c's expand(): read the current frame's next token;
// if it is a plain token, yield it; if it is a PP_PARAM, push the bound
// argument's iterator and continue; if it names a macro, push that
// macro's replacement list (scanning a nested argument list first, if
// function-like) and continue; if the current frame is exhausted, pop
// (or, at depth 0, report done).
func (e *Engine) Step() (token.PPToken, Result, error) {
	f := &e.frames[e.depth]
	if f.it.Done() {
		if e.depth == 0 {
			return token.PPToken{}, ResultDone, nil
		}
		e.depth--
		return token.PPToken{}, ResultContinue, nil
	}

	idx := f.it.Cur
	f.it.Cur++
	tok := e.store.TokenAt(idx)

	switch tok.Kind {
	case token.PPParam:
		ord := int(tok.Handle)
		if f.param == nil || ord >= len(f.param.Iterators) {
			return token.PPToken{}, 0, diag.ErrArgumentCount
		}
		if err := e.push(f.param.Iterators[ord], f.param.Parent); err != nil {
			return token.PPToken{}, 0, err
		}
		return token.PPToken{}, ResultContinue, nil

	case token.Identifier:
		name := intern.Handle(tok.Handle)
		m, ok := e.store.Lookup(name)
		if !ok {
			return tok, ResultToken, nil
		}
		if !m.IsFunctionLike() {
			if err := e.push(e.replacementIter(m), nil); err != nil {
				return token.PPToken{}, 0, err
			}
			return token.PPToken{}, ResultContinue, nil
		}
		return token.PPToken{}, ResultContinue, e.beginFunctionLike(f, m)

	default:
		return tok, ResultToken, nil
	}
}

// beginFunctionLike requires and consumes a '(' in the current frame,
// scans the argument list (if any parameters are declared), binds it into
// a fresh ParamContext, and pushes the macro's replacement list.
func (e *Engine) beginFunctionLike(f *frame, m ppstore.MacroRecord) error {
	if f.it.Done() || e.store.TokenAt(f.it.Cur).Kind != token.LParen {
		return diag.ErrUnterminatedInvoke
	}
	f.it.Cur++ // consume '('

	if m.ParamCount == 0 {
		if f.it.Done() || e.store.TokenAt(f.it.Cur).Kind != token.RParen {
			return diag.ErrArgumentCount
		}
		f.it.Cur++
		return e.push(e.replacementIter(m), nil)
	}

	out, err := e.iters.NewSlice(int(m.ParamCount))
	if err != nil {
		return err
	}
	pull := NestedPuller(e.store.TokenAt, &f.it)
	if err := ScanArgumentsWithPuller(pull, out); err != nil {
		return err
	}
	pc, err := e.params.New(ParamContext{Parent: f.param, Iterators: out})
	if err != nil {
		return err
	}
	return e.push(e.replacementIter(m), pc)
}

// Next drives Step until it yields a real token, ResultDone, or an error,
// sparing the caller from handling ResultContinue itself.
func (e *Engine) Next() (token.PPToken, bool, error) {
	for {
		tok, res, err := e.Step()
		if err != nil {
			return token.PPToken{}, false, err
		}
		switch res {
		case ResultToken:
			return tok, true, nil
		case ResultDone:
			return token.PPToken{}, false, nil
		case ResultContinue:
			continue
		}
	}
}
