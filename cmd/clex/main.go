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

// Command clex drives the Token Source over a single file, optionally
// seeding macro definitions from the command line, and either dumps every
// produced token or just reports whether the file lexes cleanly.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/token"
	"github.com/go-clex/clex/internal/tokprint"

	"github.com/go-clex/clex"
)

func main() {
	var opts []clex.Option
	flag.Func("D", "define NAME, NAME=VALUE, or NAME(params)=VALUE (repeatable)", func(v string) error {
		opts = append(opts, clex.WithDefine(v))
		return nil
	})
	flag.Func("U", "undefine NAME (repeatable)", func(v string) error {
		opts = append(opts, clex.WithUndef(v))
		return nil
	})
	dump := flag.Bool("dump-tokens", false, "print every produced token instead of just checking for errors")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("clex requires exactly one source file argument")
	}
	path := flag.Arg(0)

	lx, err := clex.Open(path, opts...)
	if err != nil {
		log.Fatalf("clex: %v", err)
	}
	defer lx.Close()

	errorPrefix := color.New(color.FgRed, color.Bold).Sprint("error:")
	warnPrefix := color.New(color.FgYellow, color.Bold).Sprint("warning:")

	printer := tokprint.New(lx.Names(), lx.Consts())
	failed := run(lx, *dump, printer)

	for _, d := range lx.Diagnostics().All() {
		prefix := errorPrefix
		if d.Sev == diag.Warning {
			prefix = warnPrefix
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", prefix, d.Error())
	}
	if n := lx.Diagnostics().Suppressed(); n > 0 {
		fmt.Fprintf(os.Stderr, "%s %d further diagnostic(s) suppressed\n", warnPrefix, n)
	}
	if failed || lx.Diagnostics().HasFatal() {
		os.Exit(1)
	}
}

// run drains every token, optionally printing each one, and reports
// whether an error terminated the run early. Only a non-diagnostic error
// is printed here; a *diag.Error has already gone to the sink and
// surfaces in main's diagnostic loop.
func run(lx *clex.Lexer, dump bool, printer *tokprint.Printer) bool {
	for {
		tok, err := lx.Next()
		if err != nil {
			var de *diag.Error
			if errors.As(err, &de) {
				return true
			}
			fmt.Fprintln(os.Stderr, err)
			return true
		}
		if tok.Kind == token.EOF {
			return false
		}
		if dump {
			printer.Fprint(os.Stdout, tok)
		}
	}
}
