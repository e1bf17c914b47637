// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package pylang

import (
	"strings"
	"unicode"

	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

// TokenKind distinguishes the kinds of token produced by the lexer.
type TokenKind uint8

const (
	// EndOfFile signals the end of the token stream.
	EndOfFile TokenKind = iota
	// Newline terminates a logical line.
	Newline
	// Indent opens a new indentation block.
	Indent
	// Dedent closes an indentation block.
	Dedent
	// Ident is an identifier or keyword.
	Ident
	// Num is a numeric literal.
	Num
	// Str is a string literal (Text holds the decoded value).
	Str
	// Operator is any operator or punctuation token.
	Operator
)

// Token associates a piece of information with a given range of characters in
// the file being scanned.
type Token struct {
	Kind TokenKind
	Span source.Span
	// Text of this token.  For string literals this is the decoded value,
	// for everything else the original text.
	Text string
	// Raw indicates an r-prefixed string literal.
	Raw bool
}

// Multi-character operators, longest first so that maximal munch applies.
var operators = []string{
	"**=", "//=", "<<=", ">>=", "...",
	"->", "**", "//", "<<", ">>", "<=", ">=", "==", "!=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ":=",
	"+", "-", "*", "/", "%", "<", ">", "=", "(", ")", "[", "]",
	"{", "}", ",", ":", ".", ";", "@", "&", "|", "^", "~",
}

// Lex tokenises a given source file, producing a token stream terminated by
// an EndOfFile token.  Logical lines are delimited by Newline tokens, with
// indentation changes reported as Indent / Dedent pairs.  Newlines occurring
// inside brackets are suppressed, as are blank and comment-only lines.
func Lex(srcfile *source.File) ([]Token, *source.SyntaxError) {
	lexer := &lexer{srcfile: srcfile, text: srcfile.Contents(), indents: []int{0}}
	return lexer.lex()
}

type lexer struct {
	srcfile *source.File
	text    []rune
	index   int
	// Stack of open indentation levels.
	indents []int
	// Number of currently open brackets.
	depth  int
	tokens []Token
}

func (p *lexer) lex() ([]Token, *source.SyntaxError) {
	atLineStart := true
	//
	for p.index < len(p.text) {
		if atLineStart && p.depth == 0 {
			begun, err := p.lexIndentation()
			if err != nil {
				return nil, err
			}
			// Blank and comment-only lines leave us at the start of the next
			// line.
			atLineStart = !begun
			//
			continue
		}
		//
		c := p.text[p.index]
		//
		switch {
		case c == '\n':
			if p.depth == 0 {
				p.push(Newline, p.index, p.index+1)
				atLineStart = true
			}
			//
			p.index++
		case c == ' ' || c == '\t' || c == '\r':
			p.index++
		case c == '\\' && p.lookahead(1) == '\n':
			p.index += 2
		case c == '#':
			p.skipComment()
		case isIdentStart(c):
			if err := p.lexWord(); err != nil {
				return nil, err
			}
		case unicode.IsDigit(c):
			p.lexNumber()
		case c == '"' || c == '\'':
			if err := p.lexString(p.index, false); err != nil {
				return nil, err
			}
		default:
			if err := p.lexOperator(); err != nil {
				return nil, err
			}
		}
	}
	// Terminate a final line lacking its newline.
	if !atLineStart || p.depth > 0 {
		p.push(Newline, p.index, p.index)
	}
	// Close any open blocks.
	for len(p.indents) > 1 {
		p.indents = p.indents[:len(p.indents)-1]
		p.push(Dedent, p.index, p.index)
	}
	//
	p.push(EndOfFile, p.index, p.index)
	//
	return p.tokens, nil
}

// lexIndentation measures the indentation of the line beginning at the
// current index, skipping blank and comment-only lines outright, and emits
// whatever Indent / Dedent tokens the measurement implies.  The boolean
// result indicates whether a line with actual content begins here.
func (p *lexer) lexIndentation() (bool, *source.SyntaxError) {
	start := p.index
	width := 0
	//
	for p.index < len(p.text) {
		switch p.text[p.index] {
		case ' ':
			width++
		case '\t':
			width += 8 - (width % 8)
		default:
			goto measured
		}
		//
		p.index++
	}
	//
measured:
	// Blank and comment-only lines carry no indentation information.
	if p.index == len(p.text) || p.text[p.index] == '\n' || p.text[p.index] == '\r' || p.text[p.index] == '#' {
		p.skipComment()
		//
		if p.index < len(p.text) {
			p.index++
		}
		//
		return false, nil
	}
	//
	top := p.indents[len(p.indents)-1]
	//
	switch {
	case width > top:
		p.indents = append(p.indents, width)
		p.push(Indent, start, p.index)
	case width < top:
		for len(p.indents) > 1 && p.indents[len(p.indents)-1] > width {
			p.indents = p.indents[:len(p.indents)-1]
			p.push(Dedent, start, p.index)
		}
		//
		if p.indents[len(p.indents)-1] != width {
			span := source.NewSpan(start, p.index)
			return false, p.srcfile.SyntaxError(span, "unindent does not match any outer indentation level")
		}
	}
	//
	return true, nil
}

// lexWord scans an identifier, or a prefixed string literal when the
// identifier turns out to be a string prefix directly followed by a quote.
func (p *lexer) lexWord() *source.SyntaxError {
	start := p.index
	//
	for p.index < len(p.text) && isIdentPart(p.text[p.index]) {
		p.index++
	}
	//
	word := string(p.text[start:p.index])
	// String prefixes (r"...", f'...', etc) fold into the literal.
	if p.index < len(p.text) && (p.text[p.index] == '"' || p.text[p.index] == '\'') && isStringPrefix(word) {
		raw := strings.ContainsAny(word, "rR")
		return p.lexString(start, raw)
	}
	//
	p.push(Ident, start, p.index)
	//
	return nil
}

func (p *lexer) lexNumber() {
	start := p.index
	//
	for p.index < len(p.text) && (unicode.IsDigit(p.text[p.index]) || p.text[p.index] == '_') {
		p.index++
	}
	// Fraction
	if p.index < len(p.text) && p.text[p.index] == '.' {
		p.index++
		//
		for p.index < len(p.text) && unicode.IsDigit(p.text[p.index]) {
			p.index++
		}
	}
	// Exponent
	if p.index < len(p.text) && (p.text[p.index] == 'e' || p.text[p.index] == 'E') {
		p.index++
		//
		if p.index < len(p.text) && (p.text[p.index] == '+' || p.text[p.index] == '-') {
			p.index++
		}
		//
		for p.index < len(p.text) && unicode.IsDigit(p.text[p.index]) {
			p.index++
		}
	}
	//
	p.push(Num, start, p.index)
}

// lexString scans a string literal beginning at the current index, which must
// be a quote character.  The token span starts at the given start (covering
// any prefix), whilst escape processing is applied unless raw is set.
func (p *lexer) lexString(start int, raw bool) *source.SyntaxError {
	quote := p.text[p.index]
	triple := p.lookahead(1) == quote && p.lookahead(2) == quote
	//
	if triple {
		p.index += 3
	} else {
		p.index++
	}
	//
	var builder strings.Builder
	//
	for p.index < len(p.text) {
		c := p.text[p.index]
		//
		switch {
		case !raw && c == '\\' && p.index+1 < len(p.text):
			builder.WriteRune(unescape(p.text[p.index+1]))
			p.index += 2
			continue
		case raw && c == '\\' && p.index+1 < len(p.text):
			builder.WriteRune(c)
			builder.WriteRune(p.text[p.index+1])
			p.index += 2
			continue
		case c == quote && !triple:
			p.index++
			p.pushString(start, builder.String(), raw)
			//
			return nil
		case c == quote && triple && p.lookahead(1) == quote && p.lookahead(2) == quote:
			p.index += 3
			p.pushString(start, builder.String(), raw)
			//
			return nil
		case c == '\n' && !triple:
			span := source.NewSpan(start, p.index)
			return p.srcfile.SyntaxError(span, "unterminated string literal")
		}
		//
		builder.WriteRune(c)
		p.index++
	}
	//
	span := source.NewSpan(start, p.index)
	//
	return p.srcfile.SyntaxError(span, "unterminated string literal")
}

func (p *lexer) lexOperator() *source.SyntaxError {
	rest := string(p.text[p.index:min(p.index+3, len(p.text))])
	//
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			start := p.index
			p.index += len(op)
			//
			switch op {
			case "(", "[", "{":
				p.depth++
			case ")", "]", "}":
				p.depth--
			}
			//
			p.push(Operator, start, p.index)
			//
			return nil
		}
	}
	//
	span := source.NewSpan(p.index, p.index+1)
	//
	return p.srcfile.SyntaxError(span, "unexpected character")
}

func (p *lexer) skipComment() {
	for p.index < len(p.text) && p.text[p.index] != '\n' {
		p.index++
	}
}

func (p *lexer) lookahead(n int) rune {
	if p.index+n < len(p.text) {
		return p.text[p.index+n]
	}
	//
	return 0
}

func (p *lexer) push(kind TokenKind, start int, end int) {
	span := source.NewSpan(start, end)
	p.tokens = append(p.tokens, Token{kind, span, string(p.text[start:end]), false})
}

func (p *lexer) pushString(start int, value string, raw bool) {
	span := source.NewSpan(start, p.index)
	p.tokens = append(p.tokens, Token{Str, span, value, raw})
}

func isIdentStart(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isStringPrefix(word string) bool {
	if len(word) > 2 {
		return false
	}
	//
	for _, c := range word {
		if !strings.ContainsRune("rRbBfFuU", c) {
			return false
		}
	}
	//
	return true
}

func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}
