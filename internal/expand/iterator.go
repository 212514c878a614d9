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

// Package expand implements the macro expansion engine: a fixed-depth
// context stack of TokenIterators over the shared ppstore buffer, each
// optionally bound to a ParamContext for resolving PP_PARAM references.
// The design this follows (source/cpp.c's expand/pushContext/popContext)
// never grows its stack or its parameter-context arena at runtime; both
// are sized once, at construction, and reset wholesale when a root
// expansion finishes.
package expand

// TokenIterator addresses a contiguous sub-range [Start, End) of the shared
// ppstore token buffer. Cur is the iterator's current read position; the
// iterator is exhausted once Cur reaches End. Pushing the same (Start, End)
// pair again with Cur reset to Start is how a macro's replacement list is
// "restarted" for a subsequent invocation -- no re-scan or copy required.
type TokenIterator struct {
	Start, Cur, End int
}

// Done reports whether it has no more tokens to yield.
func (it TokenIterator) Done() bool { return it.Cur >= it.End }

// ParamContext binds a function-like macro invocation's scanned argument
// iterators to the formal parameters of the macro being expanded, plus a
// non-owning back-reference to the enclosing invocation's own ParamContext
// (nil at root). A PP_PARAM token found while rescanning one argument's
// tokens must resolve against the *enclosing* context, not the one the
// argument belongs to -- hence Parent, rather than flattening everything
// into one map up front.
//
// ParamContext nodes are allocated from the engine's arena and never
// individually freed; every node born during one root expansion is
// reclaimed in a single ResetAll once that root expansion completes, which
// is what makes holding a raw Parent pointer safe despite Go having no
// manual lifetime tracking.
type ParamContext struct {
	Parent    *ParamContext
	Iterators []TokenIterator
}
