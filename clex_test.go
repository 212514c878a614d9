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

package clex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-clex/clex/internal/consttab"
	"github.com/go-clex/clex/internal/intern"
	"github.com/go-clex/clex/internal/token"
)

func allTokens(t *testing.T, lx *Lexer) []token.PPToken {
	t.Helper()
	var out []token.PPToken
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

func intValue(t *testing.T, lx *Lexer, tok token.PPToken) token.IntConst {
	t.Helper()
	v, ok := lx.Consts().Get(consttab.Handle(tok.Handle)).(token.IntConst)
	require.True(t, ok)
	return v
}

func TestObjectLikeMacroExpandsEndToEnd(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#define FOO 1 + 2\nFOO;"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	// 1, +, 2, ;, EOF
	require.Len(t, toks, 5)
	assert.Equal(t, token.IntConstant, toks[0].Kind)
	assert.Equal(t, token.IntConst(1), intValue(t, lx, toks[0]))
	assert.Equal(t, token.Plus, toks[1].Kind)
	assert.Equal(t, token.IntConst(2), intValue(t, lx, toks[2]))
	assert.Equal(t, token.Semicolon, toks[3].Kind)
	assert.Equal(t, token.EOF, toks[4].Kind)
}

func TestFunctionLikeMacroExpandsEndToEnd(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#define ADD(a, b) a + b\nADD(1, 2);"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	require.Len(t, toks, 5)
	assert.Equal(t, token.IntConst(1), intValue(t, lx, toks[0]))
	assert.Equal(t, token.Plus, toks[1].Kind)
	assert.Equal(t, token.IntConst(2), intValue(t, lx, toks[2]))
	assert.Equal(t, token.Semicolon, toks[3].Kind)
}

func TestFunctionLikeMacroNameWithoutParenIsPlainIdentifier(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#define F(x) x\nF ;"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Identifier, toks[0].Kind)
	assert.Equal(t, "F", lx.Names().String(intern.Handle(toks[0].Handle)))
	assert.Equal(t, token.Semicolon, toks[1].Kind)
}

func TestNestedParenthesesInArgumentAreNotSplitAsCommas(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#define ADD(a, b) a + b\nADD((1, 2), 3);"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	// (, 1, ,, 2, ), +, 3, ;, EOF
	require.Len(t, toks, 9)
	assert.Equal(t, token.LParen, toks[0].Kind)
	assert.Equal(t, token.IntConst(1), intValue(t, lx, toks[1]))
	assert.Equal(t, token.Comma, toks[2].Kind)
	assert.Equal(t, token.IntConst(2), intValue(t, lx, toks[3]))
	assert.Equal(t, token.RParen, toks[4].Kind)
	assert.Equal(t, token.Plus, toks[5].Kind)
	assert.Equal(t, token.IntConst(3), intValue(t, lx, toks[6]))
}

func TestWithDefineSeedsNameOnly(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("FOO"), WithDefine("FOO"))
	require.NoError(t, err)
	tok, err := lx.Next()
	require.NoError(t, err)
	require.Equal(t, token.IntConstant, tok.Kind)
	assert.Equal(t, token.IntConst(1), intValue(t, lx, tok))
}

func TestWithDefineSeedsNameEqualsValue(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("BAR"), WithDefine("BAR=42"))
	require.NoError(t, err)
	tok, err := lx.Next()
	require.NoError(t, err)
	require.Equal(t, token.IntConstant, tok.Kind)
	assert.Equal(t, token.IntConst(42), intValue(t, lx, tok))
}

func TestWithDefineSeedsFunctionLikeMacro(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("TWICE(5)"), WithDefine("TWICE(x)=x+x"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	require.Len(t, toks, 4) // 5, +, 5, EOF
	assert.Equal(t, token.IntConst(5), intValue(t, lx, toks[0]))
	assert.Equal(t, token.Plus, toks[1].Kind)
	assert.Equal(t, token.IntConst(5), intValue(t, lx, toks[2]))
}

func TestWithUndefRemovesCommandLineDefinition(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("FOO"), WithDefine("FOO=1"), WithUndef("FOO"))
	require.NoError(t, err)
	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, token.Identifier, tok.Kind)
}

func TestOptionsAppliedInOrder(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("FOO"), WithDefine("FOO=1"), WithDefine("FOO=2"))
	require.NoError(t, err)
	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, token.IntConst(2), intValue(t, lx, tok))
}

func TestDirectiveOtherThanDefineIsSkipped(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#include <stdio.h>\nx;"))
	require.NoError(t, err)
	toks := allTokens(t, lx)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Identifier, toks[0].Kind)
}

func TestEOFAtEndOfFile(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte(""))
	require.NoError(t, err)
	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Kind)
	// Calling Next again past EOF keeps returning EOF, not erroring.
	tok, err = lx.Next()
	require.NoError(t, err)
	assert.Equal(t, token.EOF, tok.Kind)
}

func TestMacroRedefinitionReportsWarningDiagnostic(t *testing.T) {
	lx, err := OpenBytes("t.c", []byte("#define FOO 1\n#define FOO 2\nFOO;"))
	require.NoError(t, err)
	_ = allTokens(t, lx)
	assert.False(t, lx.Diagnostics().HasFatal())
	assert.NotEmpty(t, lx.Diagnostics().All())
}
