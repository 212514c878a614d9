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

// Package tokprint renders tokens in the one-line-per-token diagnostic
// form the design's reference implementation produces, for the -dump-tokens
// CLI mode: a position, a kind name, and whatever payload the kind carries
// (resolved through the shared interner and constants table rather than
// printed as a bare handle).
package tokprint

import (
	"fmt"
	"io"

	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/token"
)

// Printer formats tokens, resolving handles against the shared interner
// and constants table.
type Printer struct {
	Names  *intern.Interner
	Consts *consttab.Table
}

// New creates a Printer over names and consts.
func New(names *intern.Interner, consts *consttab.Table) *Printer {
	return &Printer{Names: names, Consts: consts}
}

// Fprint writes one line describing tok to w.
func (p *Printer) Fprint(w io.Writer, tok token.PPToken) error {
	pos := fmt.Sprintf("line:%d, column:%d", tok.Pos.Line, tok.Pos.Column)
	switch tok.Kind {
	case token.Identifier:
		name := p.Names.String(intern.Handle(tok.Handle))
		_, err := fmt.Fprintf(w, "%s, type: %s, id:%d, name: %q\n", pos, tok.Kind, tok.Handle, name)
		return err
	case token.StringLiteral, token.PPNumber:
		s := p.Names.String(intern.Handle(tok.Handle))
		_, err := fmt.Fprintf(w, "%s, type: %s, id:%d, value: %q\n", pos, tok.Kind, tok.Handle, s)
		return err
	case token.PPParam:
		_, err := fmt.Fprintf(w, "%s, type: %s, param:%d\n", pos, tok.Kind, tok.Handle)
		return err
	case token.IntConstant:
		v, _ := p.Consts.Get(consttab.Handle(tok.Handle)).(token.IntConst)
		_, err := fmt.Fprintf(w, "%s, type: %s, value: %d\n", pos, tok.Kind, v)
		return err
	case token.FloatConstant:
		v, _ := p.Consts.Get(consttab.Handle(tok.Handle)).(token.FloatConst)
		_, err := fmt.Fprintf(w, "%s, type: %s, value: %f\n", pos, tok.Kind, v.Value)
		return err
	case token.CharConstant:
		v, _ := p.Consts.Get(consttab.Handle(tok.Handle)).(token.CharConst)
		_, err := fmt.Fprintf(w, "%s, type: %s, value: %d\n", pos, tok.Kind, v)
		return err
	default:
		_, err := fmt.Fprintf(w, "%s, type: %s\n", pos, tok.Kind)
		return err
	}
}
