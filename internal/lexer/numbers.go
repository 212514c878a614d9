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

package lexer

import (
	"github.com/go-clex/clex/internal/diag"
	"github.com/go-clex/clex/internal/token"
)

// pow10Squares holds 10^(2^i) for i in [0,7], the precomputed table the
// square-and-multiply evaluator below combines: any exponent in [-127,127]
// is the sum of at most seven of these, chosen by the bits of the
// exponent's absolute value.
var pow10Squares = [8]float64{1e1, 1e2, 1e4, 1e8, 1e16, 1e32, 1e64, 1e128}

// pow10 computes 10^k for k in [-127, 127] using at most seven multiplies,
// by consulting pow10Squares bit-by-bit rather than multiplying by 10
// repeatedly.
func pow10(k int) float64 {
	neg := k < 0
	if neg {
		k = -k
	}
	result := 1.0
	for i := 0; k > 0 && i < len(pow10Squares); i++ {
		if k&1 == 1 {
			result *= pow10Squares[i]
		}
		k >>= 1
	}
	if neg {
		return 1 / result
	}
	return result
}

// lexNumber reads a maximal preprocessing-number lexeme (a digit, or '.'
// followed by a digit, continuing through alphanumerics, periods, and
// signed e/E exponents) and, outside macro-body capture, parses it into a
// concrete IntConstant or FloatConstant.
func (lx *Lexer) lexNumber(pos token.Position) (token.Token, error) {
	lx.scratch.begin()
	for {
		c := lx.r.Current()
		signedExp := (c == 'e' || c == 'E') && (lx.r.Lookahead() == '+' || lx.r.Lookahead() == '-')
		if !signedExp && (isDigit(c) || isIdentStart(c) || c == '.') {
			if err := lx.scratch.appendByte(c); err != nil {
				return token.Token{}, lx.errorf(pos, diag.ErrLexemeTooLong, "")
			}
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			continue
		}
		if signedExp {
			if err := lx.scratch.appendByte(c); err != nil {
				return token.Token{}, lx.errorf(pos, diag.ErrLexemeTooLong, "")
			}
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			if err := lx.scratch.appendByte(lx.r.Current()); err != nil {
				return token.Token{}, lx.errorf(pos, diag.ErrLexemeTooLong, "")
			}
			if err := lx.advance(); err != nil {
				return token.Token{}, err
			}
			continue
		}
		break
	}
	lexeme := string(lx.scratch.bytes())

	if lx.mode == ModeMacroBody {
		h, _, err := lx.names.AddString(lexeme)
		if err != nil {
			return token.Token{}, lx.errorf(pos, err, "preprocessing number")
		}
		return token.Token{Kind: token.PPNumber, Pos: pos, Value: token.StringHandle(h)}, nil
	}

	kind, value, err := parseNumericLexeme(lexeme)
	if err != nil {
		return token.Token{}, lx.errorf(pos, diag.ErrMalformedNumber, lexeme)
	}
	if kind == token.IntConstant {
		return token.Token{Kind: kind, Pos: pos, Value: value}, nil
	}
	return token.Token{Kind: kind, Pos: pos, Value: value}, nil
}

// parseNumericLexeme applies the secondary numeric parse described in the
// design to a captured preprocessing-number lexeme.
func parseNumericLexeme(lexeme string) (token.Kind, token.Value, error) {
	if lexeme == "0" {
		return token.IntConstant, token.IntConst(0), nil
	}
	if len(lexeme) > 1 && lexeme[0] == '0' && (lexeme[1] == 'x' || lexeme[1] == 'X') {
		return parseIntWithBase(lexeme[2:], 16)
	}
	if len(lexeme) > 1 && lexeme[0] == '0' && (lexeme[1] == 'b' || lexeme[1] == 'B') {
		return parseIntWithBase(lexeme[2:], 2)
	}
	if len(lexeme) > 1 && lexeme[0] == '0' && lexeme[1] >= '0' && lexeme[1] <= '7' {
		return parseIntWithBase(lexeme[1:], 8)
	}
	return parseDecimalOrFloat(lexeme)
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isIntSuffix(c byte) bool {
	return c == 'u' || c == 'U' || c == 'l' || c == 'L'
}

func parseIntWithBase(digits string, base uint64) (token.Kind, token.Value, error) {
	var v uint64
	i := 0
	for i < len(digits) && !isIntSuffix(digits[i]) {
		d, ok := digitValue(digits[i])
		if !ok || uint64(d) >= base {
			return token.Invalid, nil, diag.ErrMalformedNumber
		}
		v = v*base + uint64(d)
		i++
	}
	if err := validateIntSuffix(digits[i:]); err != nil {
		return token.Invalid, nil, err
	}
	return token.IntConstant, token.IntConst(v), nil
}

// validateIntSuffix checks that suffix is some permutation of one u/U and
// one-or-two l/L, as the design requires, without that permutation
// affecting the stored value (IntConst carries no signedness or width).
func validateIntSuffix(suffix string) error {
	var uCount, lCount int
	for i := 0; i < len(suffix); i++ {
		switch suffix[i] {
		case 'u', 'U':
			uCount++
		case 'l', 'L':
			lCount++
		default:
			return diag.ErrMalformedNumber
		}
	}
	if uCount > 1 || lCount > 2 {
		return diag.ErrMalformedNumber
	}
	return nil
}

func parseDecimalOrFloat(lexeme string) (token.Kind, token.Value, error) {
	i := 0
	mantissa := 0.0
	for i < len(lexeme) && isDigit(lexeme[i]) {
		mantissa = mantissa*10 + float64(lexeme[i]-'0')
		i++
	}
	isFloat := false
	fracDigits := 0
	if i < len(lexeme) && lexeme[i] == '.' {
		isFloat = true
		i++
		for i < len(lexeme) && isDigit(lexeme[i]) {
			mantissa = mantissa*10 + float64(lexeme[i]-'0')
			fracDigits++
			i++
		}
	}
	exp := 0
	if i < len(lexeme) && (lexeme[i] == 'e' || lexeme[i] == 'E') {
		isFloat = true
		i++
		sign := 1
		if i < len(lexeme) && (lexeme[i] == '+' || lexeme[i] == '-') {
			if lexeme[i] == '-' {
				sign = -1
			}
			i++
		}
		if i >= len(lexeme) || !isDigit(lexeme[i]) {
			return token.Invalid, nil, diag.ErrMalformedNumber
		}
		for i < len(lexeme) && isDigit(lexeme[i]) {
			exp = exp*10 + int(lexeme[i]-'0')
			i++
		}
		exp *= sign
	}
	isFloat32 := false
	if i < len(lexeme) && (lexeme[i] == 'f' || lexeme[i] == 'F') {
		isFloat = true
		isFloat32 = true
		i++
	}
	if !isFloat {
		if i < len(lexeme) {
			if err := validateIntSuffix(lexeme[i:]); err != nil {
				return token.Invalid, nil, err
			}
		}
		return token.IntConstant, token.IntConst(uint64(mantissa)), nil
	}
	if i != len(lexeme) {
		return token.Invalid, nil, diag.ErrMalformedNumber
	}
	value := mantissa * pow10(exp-fracDigits)
	return token.FloatConstant, token.FloatConst{Value: value, IsFloat32: isFloat32}, nil
}
