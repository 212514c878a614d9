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

// Package keyword recognizes C reserved words. A maximal identifier-shaped
// lexeme is hashed with DJB2 and compared against a small table of
// precomputed keyword hashes; only on a hash hit does the recognizer fall
// back to a byte compare, mirroring the way the source's keyword table
// (keyword_hashes.h) was generated offline and confirmed at runtime by
// strcmp. The string interner (package intern) uses a different hash
// (FNV-1a) for the unrelated job of identifier/literal interning -- the two
// hash functions coexisting, one per concern, is intentional and matches
// the source.
package keyword

import "github.com/go-clex/clex/internal/token"

// djb2 is the classic Bernstein hash: hash = hash*33 ^ c, seeded at 5381.
func djb2(s string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) ^ uint32(s[i])
	}
	return h
}

type tableEntry struct {
	hash uint32
	name string
	kind token.Kind
}

var table []tableEntry

func register(name string, kind token.Kind) {
	table = append(table, tableEntry{hash: djb2(name), name: name, kind: kind})
}

func init() {
	register("auto", token.KeywordAuto)
	register("break", token.KeywordBreak)
	register("case", token.KeywordCase)
	register("char", token.KeywordChar)
	register("const", token.KeywordConst)
	register("continue", token.KeywordContinue)
	register("default", token.KeywordDefault)
	register("do", token.KeywordDo)
	register("double", token.KeywordDouble)
	register("else", token.KeywordElse)
	register("enum", token.KeywordEnum)
	register("extern", token.KeywordExtern)
	register("float", token.KeywordFloat)
	register("for", token.KeywordFor)
	register("goto", token.KeywordGoto)
	register("if", token.KeywordIf)
	register("int", token.KeywordInt)
	register("long", token.KeywordLong)
	register("register", token.KeywordRegister)
	register("return", token.KeywordReturn)
	register("short", token.KeywordShort)
	register("signed", token.KeywordSigned)
	register("sizeof", token.KeywordSizeof)
	register("static", token.KeywordStatic)
	register("struct", token.KeywordStruct)
	register("switch", token.KeywordSwitch)
	register("typedef", token.KeywordTypedef)
	register("union", token.KeywordUnion)
	register("unsigned", token.KeywordUnsigned)
	register("void", token.KeywordVoid)
	register("volatile", token.KeywordVolatile)
	register("while", token.KeywordWhile)
	register("inline", token.KeywordInline)
	register("restrict", token.KeywordRestrict)
	register("_Bool", token.KeywordBool)
	register("_Complex", token.KeywordComplex)
	register("_Imaginary", token.KeywordImaginary)
	register("_Alignas", token.KeywordAlignas)
	register("_Alignof", token.KeywordAlignof)
	register("_Atomic", token.KeywordAtomic)
	register("_Generic", token.KeywordGeneric)
	register("_Noreturn", token.KeywordNoreturn)
	register("_Static_assert", token.KeywordStaticAssert)
	register("_Thread_local", token.KeywordThreadLocal)
	register("__constexpr", token.KeywordConstexpr)
}

// Lookup reports whether lexeme names a reserved word, and if so its kind.
func Lookup(lexeme string) (token.Kind, bool) {
	h := djb2(lexeme)
	for _, e := range table {
		if e.hash == h && e.name == lexeme {
			return e.kind, true
		}
	}
	return token.Invalid, false
}
