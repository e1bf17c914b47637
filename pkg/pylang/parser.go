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
	"fmt"

	"github.com/w-martin/pandas-column-linter/pkg/util/source"
)

// Parse a given source file into a module, or return a syntax error if the
// file is malformed.  Only the first error encountered is reported and no
// partial tree is exposed.
func Parse(srcfile *source.File) (*Module, *source.SyntaxError) {
	tokens, err := Lex(srcfile)
	if err != nil {
		return nil, err
	}
	//
	parser := &parser{srcfile: srcfile, tokens: tokens}
	//
	body, err := parser.parseStatements(EndOfFile)
	if err != nil {
		return nil, err
	}
	//
	return &Module{srcfile, body}, nil
}

// Parser represents a parser in the process of parsing a given token stream
// into a module.
type parser struct {
	srcfile *source.File
	tokens  []Token
	index   int
}

func (p *parser) peek() Token {
	return p.tokens[p.index]
}

func (p *parser) next() Token {
	tok := p.tokens[p.index]
	// The final EndOfFile token is never consumed.
	if p.index+1 < len(p.tokens) {
		p.index++
	}
	//
	return tok
}

// matchOp consumes the next token provided it is a given operator.
func (p *parser) matchOp(text string) bool {
	if tok := p.peek(); tok.Kind == Operator && tok.Text == text {
		p.next()
		return true
	}
	//
	return false
}

// matchKeyword consumes the next token provided it is a given word.
func (p *parser) matchKeyword(word string) bool {
	if tok := p.peek(); tok.Kind == Ident && tok.Text == word {
		p.next()
		return true
	}
	//
	return false
}

func (p *parser) isOp(text string) bool {
	tok := p.peek()
	return tok.Kind == Operator && tok.Text == text
}

func (p *parser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.Kind == Ident && tok.Text == word
}

func (p *parser) expectOp(text string) *source.SyntaxError {
	if !p.matchOp(text) {
		return p.errorf("expected '%s'", text)
	}
	//
	return nil
}

func (p *parser) expect(kind TokenKind, what string) (Token, *source.SyntaxError) {
	if tok := p.peek(); tok.Kind == kind {
		return p.next(), nil
	}
	//
	return Token{}, p.errorf("expected %s", what)
}

func (p *parser) errorf(format string, args ...any) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.peek().Span, fmt.Sprintf(format, args...))
}

func (p *parser) spanFrom(start int) source.Span {
	end := start
	//
	if p.index > 0 {
		end = p.tokens[p.index-1].Span.End()
	}
	//
	return source.NewSpan(start, max(start, end))
}

// ============================================================================
// Statements
// ============================================================================

// parseStatements parses a run of statements terminated by a given token
// kind (EndOfFile at the top level, Dedent within a block).
func (p *parser) parseStatements(terminator TokenKind) ([]Stmt, *source.SyntaxError) {
	var body []Stmt
	//
	for p.peek().Kind != terminator && p.peek().Kind != EndOfFile {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		//
		body = append(body, stmts...)
	}
	//
	if p.peek().Kind == terminator {
		p.next()
	}
	//
	return body, nil
}

// parseStatement parses a single logical statement, which can give rise to
// several statement nodes (e.g. "a = b = e", or simple statements separated
// by semicolons).
func (p *parser) parseStatement() ([]Stmt, *source.SyntaxError) {
	tok := p.peek()
	//
	if tok.Kind == Operator && tok.Text == "@" {
		// Decorators are parsed, then discarded.
		p.next()
		//
		if _, err := p.parseExpression(); err != nil {
			return nil, err
		}
		//
		if _, err := p.expect(Newline, "end of line"); err != nil {
			return nil, err
		}
		//
		return p.parseStatement()
	}
	//
	if tok.Kind == Ident {
		switch tok.Text {
		case "def":
			return p.parseFunctionDef()
		case "class":
			return p.parseClassDef()
		case "if":
			return p.parseIf()
		case "while":
			return p.parseWhile()
		case "for":
			return p.parseFor()
		case "import":
			return p.parseImport()
		case "from":
			return p.parseFromImport()
		}
	}
	//
	return p.parseSimpleLine()
}

// parseSimpleLine parses one or more simple statements separated by
// semicolons and terminated by a newline.
func (p *parser) parseSimpleLine() ([]Stmt, *source.SyntaxError) {
	var body []Stmt
	//
	for {
		stmts, err := p.parseSimpleStatement()
		if err != nil {
			return nil, err
		}
		//
		body = append(body, stmts...)
		//
		if !p.matchOp(";") {
			break
		}
		// Permit a trailing semicolon.
		if p.peek().Kind == Newline {
			break
		}
	}
	//
	if _, err := p.expect(Newline, "end of line"); err != nil {
		return nil, err
	}
	//
	return body, nil
}

func (p *parser) parseSimpleStatement() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	switch {
	case p.isKeyword("pass"):
		p.next()
		return []Stmt{&Pass{node{p.spanFrom(start)}}}, nil
	case p.isKeyword("return"):
		p.next()
		//
		var value Expr
		//
		if p.peek().Kind != Newline && !p.isOp(";") {
			var err *source.SyntaxError
			//
			if value, err = p.parseExpressionList(); err != nil {
				return nil, err
			}
		}
		//
		return []Stmt{&Return{node{p.spanFrom(start)}, value}}, nil
	case p.isKeyword("del"):
		p.next()
		//
		targets, err := p.parseExpressions()
		if err != nil {
			return nil, err
		}
		//
		return []Stmt{&Del{node{p.spanFrom(start)}, targets}}, nil
	}
	// Assignment or expression statement.
	target, err := p.parseExpressionList()
	//
	if err != nil {
		return nil, err
	}
	//
	if p.isOp(":") {
		return p.parseAnnAssign(start, target)
	}
	//
	if op, ok := p.augmentedOp(); ok {
		value, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		//
		return []Stmt{&AugAssign{node{p.spanFrom(start)}, target, op, value}}, nil
	}
	// Chained assignment gives one statement per target.
	exprs := []Expr{target}
	//
	for p.matchOp("=") {
		expr, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		//
		exprs = append(exprs, expr)
	}
	//
	if len(exprs) == 1 {
		return []Stmt{&ExprStmt{node{p.spanFrom(start)}, target}}, nil
	}
	//
	span := p.spanFrom(start)
	value := exprs[len(exprs)-1]
	stmts := make([]Stmt, len(exprs)-1)
	//
	for i, t := range exprs[:len(exprs)-1] {
		stmts[i] = &Assign{node{span}, t, value}
	}
	//
	return stmts, nil
}

func (p *parser) parseAnnAssign(start int, target Expr) ([]Stmt, *source.SyntaxError) {
	name, ok := target.(*Name)
	if !ok {
		return nil, p.errorf("illegal annotated assignment target")
	}
	//
	p.next() // ':'
	//
	annotation, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	var value Expr
	//
	if p.matchOp("=") {
		if value, err = p.parseExpressionList(); err != nil {
			return nil, err
		}
	}
	//
	return []Stmt{&AnnAssign{node{p.spanFrom(start)}, name, annotation, value}}, nil
}

// augmentedOp consumes an augmented-assignment operator, returning the
// underlying operation.
func (p *parser) augmentedOp() (string, bool) {
	tok := p.peek()
	//
	if tok.Kind == Operator && len(tok.Text) >= 2 && tok.Text[len(tok.Text)-1] == '=' {
		switch tok.Text {
		case "==", "!=", "<=", ">=", ":=":
			return "", false
		}
		//
		p.next()
		//
		return tok.Text[:len(tok.Text)-1], true
	}
	//
	return "", false
}

func (p *parser) parseImport() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // import
	//
	var stmts []Stmt
	//
	for {
		module, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		//
		alias := ""
		//
		if p.matchKeyword("as") {
			tok, err := p.expect(Ident, "import alias")
			if err != nil {
				return nil, err
			}
			//
			alias = tok.Text
		}
		//
		stmts = append(stmts, &Import{node{p.spanFrom(start)}, module, alias})
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if _, err := p.expect(Newline, "end of line"); err != nil {
		return nil, err
	}
	//
	return stmts, nil
}

func (p *parser) parseFromImport() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // from
	// Relative imports are accepted, though the leading dots are not
	// resolved.
	dots := ""
	//
	for p.matchOp(".") {
		dots += "."
	}
	//
	module := dots
	//
	if p.peek().Kind == Ident {
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		//
		module += name
	}
	//
	if !p.matchKeyword("import") {
		return nil, p.errorf("expected 'import'")
	}
	//
	var names []ImportedName
	//
	parenthesised := p.matchOp("(")
	//
	for {
		nameStart := p.peek().Span.Start()
		//
		if p.matchOp("*") {
			names = append(names, ImportedName{node{p.spanFrom(nameStart)}, "*", ""})
		} else {
			tok, err := p.expect(Ident, "imported name")
			if err != nil {
				return nil, err
			}
			//
			alias := ""
			//
			if p.matchKeyword("as") {
				atok, err := p.expect(Ident, "import alias")
				if err != nil {
					return nil, err
				}
				//
				alias = atok.Text
			}
			//
			names = append(names, ImportedName{node{p.spanFrom(nameStart)}, tok.Text, alias})
		}
		//
		if !p.matchOp(",") {
			break
		}
		// Permit a trailing comma within parentheses.
		if parenthesised && p.isOp(")") {
			break
		}
	}
	//
	if parenthesised {
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	//
	if _, err := p.expect(Newline, "end of line"); err != nil {
		return nil, err
	}
	//
	return []Stmt{&FromImport{node{p.spanFrom(start)}, module, names}}, nil
}

func (p *parser) parseDottedName() (string, *source.SyntaxError) {
	tok, err := p.expect(Ident, "name")
	if err != nil {
		return "", err
	}
	//
	name := tok.Text
	//
	for p.matchOp(".") {
		tok, err := p.expect(Ident, "name")
		if err != nil {
			return "", err
		}
		//
		name += "." + tok.Text
	}
	//
	return name, nil
}

func (p *parser) parseFunctionDef() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // def
	//
	name, err := p.expect(Ident, "function name")
	if err != nil {
		return nil, err
	}
	//
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	//
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	//
	var returns Expr
	//
	if p.matchOp("->") {
		if returns, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	//
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	//
	return []Stmt{&FunctionDef{node{p.spanFrom(start)}, name.Text, params, returns, body}}, nil
}

func (p *parser) parseParameters() ([]*Param, *source.SyntaxError) {
	var params []*Param
	//
	for !p.isOp(")") {
		start := p.peek().Span.Start()
		stars := ""
		//
		if p.matchOp("**") {
			stars = "**"
		} else if p.matchOp("*") {
			stars = "*"
			// A bare star is the keyword-only marker.
			if p.isOp(",") || p.isOp(")") {
				if !p.matchOp(",") {
					break
				}
				//
				continue
			}
		}
		//
		tok, err := p.expect(Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		//
		param := &Param{node: node{}, Name: stars + tok.Text}
		//
		if p.matchOp(":") {
			if param.Annotation, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
		//
		if p.matchOp("=") {
			if param.Default, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
		//
		param.span = p.spanFrom(start)
		params = append(params, param)
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	//
	return params, nil
}

func (p *parser) parseClassDef() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // class
	//
	name, err := p.expect(Ident, "class name")
	if err != nil {
		return nil, err
	}
	//
	var (
		bases  []Expr
		kwargs []Kwarg
	)
	//
	if p.matchOp("(") {
		for !p.isOp(")") {
			argStart := p.peek().Span.Start()
			// Keyword arguments in the class header.
			if p.peek().Kind == Ident && p.lookaheadOp(1, "=") {
				key := p.next()
				p.next() // '='
				//
				value, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				//
				kwargs = append(kwargs, Kwarg{node{p.spanFrom(argStart)}, key.Text, value})
			} else {
				base, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				//
				bases = append(bases, base)
			}
			//
			if !p.matchOp(",") {
				break
			}
		}
		//
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	//
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	//
	return []Stmt{&ClassDef{node{p.spanFrom(start)}, name.Text, bases, kwargs, body}}, nil
}

func (p *parser) parseIf() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // if (or elif)
	//
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	//
	var orelse []Stmt
	//
	if p.isKeyword("elif") {
		if orelse, err = p.parseIf(); err != nil {
			return nil, err
		}
	} else if p.matchKeyword("else") {
		if orelse, err = p.parseSuite(); err != nil {
			return nil, err
		}
	}
	//
	return []Stmt{&If{node{p.spanFrom(start)}, cond, body, orelse}}, nil
}

func (p *parser) parseWhile() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // while
	//
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	//
	return []Stmt{&While{node{p.spanFrom(start)}, cond, body}}, nil
}

func (p *parser) parseFor() ([]Stmt, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // for
	// Loop targets sit below comparison level, else "in" would be consumed
	// as an operator.
	targetStart := p.peek().Span.Start()
	//
	targets := []Expr{}
	//
	for {
		target, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		//
		targets = append(targets, target)
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	var target Expr = targets[0]
	//
	if len(targets) > 1 {
		target = &Tuple{node{p.spanFrom(targetStart)}, targets}
	}
	//
	if !p.matchKeyword("in") {
		return nil, p.errorf("expected 'in'")
	}
	//
	iter, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	//
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	//
	return []Stmt{&For{node{p.spanFrom(start)}, target, iter, body}}, nil
}

// parseSuite parses a statement block, which is either inline ("def f(): ...")
// or an indented block on the following lines.
func (p *parser) parseSuite() ([]Stmt, *source.SyntaxError) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	// Inline suite
	if p.peek().Kind != Newline {
		return p.parseSimpleLine()
	}
	//
	p.next() // newline
	//
	if _, err := p.expect(Indent, "indented block"); err != nil {
		return nil, err
	}
	//
	return p.parseStatements(Dedent)
}

// ============================================================================
// Expressions
// ============================================================================

// parseExpressionList parses one or more comma-separated expressions,
// yielding a tuple when more than one is present.
func (p *parser) parseExpressionList() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	exprs, err := p.parseExpressions()
	if err != nil {
		return nil, err
	}
	//
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	//
	return &Tuple{node{p.spanFrom(start)}, exprs}, nil
}

func (p *parser) parseExpressions() ([]Expr, *source.SyntaxError) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	exprs := []Expr{expr}
	//
	for p.matchOp(",") {
		// A trailing comma yields a one-element tuple.
		if tok := p.peek(); tok.Kind == Newline || (tok.Kind == Operator && (tok.Text == "=" || tok.Text == ")" || tok.Text == "]" || tok.Text == "}")) {
			break
		}
		//
		if expr, err = p.parseExpression(); err != nil {
			return nil, err
		}
		//
		exprs = append(exprs, expr)
	}
	//
	return exprs, nil
}

func (p *parser) parseExpression() (Expr, *source.SyntaxError) {
	if p.isKeyword("lambda") {
		return p.parseLambda()
	}
	//
	return p.parseOr()
}

func (p *parser) parseLambda() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // lambda
	// Lambda parameters are consumed without being recorded.
	for p.peek().Kind == Ident {
		p.next()
		//
		if p.matchOp("=") {
			if _, err := p.parseExpression(); err != nil {
				return nil, err
			}
		}
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	//
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	//
	return &Lambda{node{p.spanFrom(start)}, body}, nil
}

func (p *parser) parseOr() (Expr, *source.SyntaxError) {
	return p.parseBinaryKeyword(p.parseAnd, "or")
}

func (p *parser) parseAnd() (Expr, *source.SyntaxError) {
	return p.parseBinaryKeyword(p.parseNot, "and")
}

func (p *parser) parseNot() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	if p.matchKeyword("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		//
		return &UnaryOp{node{p.spanFrom(start)}, "not", operand}, nil
	}
	//
	return p.parseComparison()
}

func (p *parser) parseBinaryKeyword(operand func() (Expr, *source.SyntaxError), word string) (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	left, err := operand()
	if err != nil {
		return nil, err
	}
	//
	for p.matchKeyword(word) {
		right, err := operand()
		if err != nil {
			return nil, err
		}
		//
		left = &BinOp{node{p.spanFrom(start)}, left, word, right}
	}
	//
	return left, nil
}

func (p *parser) parseComparison() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	left, err := p.parseBitOr()
	if err != nil {
		return nil, err
	}
	//
	for {
		op, ok := p.comparisonOp()
		if !ok {
			return left, nil
		}
		//
		right, err := p.parseBitOr()
		if err != nil {
			return nil, err
		}
		//
		left = &BinOp{node{p.spanFrom(start)}, left, op, right}
	}
}

func (p *parser) comparisonOp() (string, bool) {
	tok := p.peek()
	//
	if tok.Kind == Operator {
		switch tok.Text {
		case "==", "!=", "<", ">", "<=", ">=":
			p.next()
			return tok.Text, true
		}
	}
	//
	if tok.Kind == Ident {
		switch tok.Text {
		case "in":
			p.next()
			return "in", true
		case "is":
			p.next()
			//
			if p.matchKeyword("not") {
				return "is not", true
			}
			//
			return "is", true
		case "not":
			if p.lookaheadKeyword(1, "in") {
				p.next()
				p.next()
				//
				return "not in", true
			}
		}
	}
	//
	return "", false
}

func (p *parser) parseBitOr() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseBitXor, "|")
}

func (p *parser) parseBitXor() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseBitAnd, "^")
}

func (p *parser) parseBitAnd() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseShift, "&")
}

func (p *parser) parseShift() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseArith, "<<", ">>")
}

func (p *parser) parseArith() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseTerm, "+", "-")
}

func (p *parser) parseTerm() (Expr, *source.SyntaxError) {
	return p.parseBinaryOps(p.parseUnary, "*", "/", "//", "%")
}

func (p *parser) parseBinaryOps(operand func() (Expr, *source.SyntaxError), ops ...string) (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	left, err := operand()
	if err != nil {
		return nil, err
	}
	//
	for {
		matched := ""
		//
		for _, op := range ops {
			if p.isOp(op) {
				matched = op
				break
			}
		}
		//
		if matched == "" {
			return left, nil
		}
		//
		p.next()
		//
		right, err := operand()
		if err != nil {
			return nil, err
		}
		//
		left = &BinOp{node{p.spanFrom(start)}, left, matched, right}
	}
}

func (p *parser) parseUnary() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	for _, op := range []string{"+", "-", "~"} {
		if p.isOp(op) {
			p.next()
			//
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			//
			return &UnaryOp{node{p.spanFrom(start)}, op, operand}, nil
		}
	}
	//
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	//
	if p.matchOp("**") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		//
		return &BinOp{node{p.spanFrom(start)}, left, "**", right}, nil
	}
	//
	return left, nil
}

func (p *parser) parsePostfix() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	//
	for {
		switch {
		case p.matchOp("."):
			tok, err := p.expect(Ident, "attribute name")
			if err != nil {
				return nil, err
			}
			//
			expr = &Attribute{node{p.spanFrom(start)}, expr, tok.Text}
		case p.matchOp("("):
			args, kwargs, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			//
			expr = &Call{node{p.spanFrom(start)}, expr, args, kwargs}
		case p.matchOp("["):
			index, err := p.parseSubscriptIndex()
			if err != nil {
				return nil, err
			}
			//
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			//
			expr = &Subscript{node{p.spanFrom(start)}, expr, index}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArguments() ([]Expr, []Kwarg, *source.SyntaxError) {
	var (
		args   []Expr
		kwargs []Kwarg
	)
	//
	for !p.isOp(")") {
		start := p.peek().Span.Start()
		//
		switch {
		case p.matchOp("**"):
			value, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			//
			kwargs = append(kwargs, Kwarg{node{p.spanFrom(start)}, "", value})
		case p.matchOp("*"):
			value, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			//
			args = append(args, &Starred{node{p.spanFrom(start)}, value})
		case p.peek().Kind == Ident && p.lookaheadOp(1, "="):
			key := p.next()
			p.next() // '='
			//
			value, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			//
			kwargs = append(kwargs, Kwarg{node{p.spanFrom(start)}, key.Text, value})
		default:
			value, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			//
			args = append(args, value)
		}
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if err := p.expectOp(")"); err != nil {
		return nil, nil, err
	}
	//
	return args, kwargs, nil
}

func (p *parser) parseSubscriptIndex() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	//
	var (
		lower Expr
		err   *source.SyntaxError
	)
	//
	if !p.isOp(":") {
		if lower, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	// Plain index
	if !p.isOp(":") {
		return lower, nil
	}
	// Slice
	p.next()
	//
	slice := &Slice{node{}, lower, nil, nil}
	//
	if !p.isOp("]") && !p.isOp(":") {
		if slice.Upper, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	//
	if p.matchOp(":") && !p.isOp("]") {
		if slice.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	//
	slice.span = p.spanFrom(start)
	//
	return slice, nil
}

func (p *parser) parseAtom() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	tok := p.peek()
	//
	switch tok.Kind {
	case Ident:
		p.next()
		//
		switch tok.Text {
		case "True":
			return &Bool{node{p.spanFrom(start)}, true}, nil
		case "False":
			return &Bool{node{p.spanFrom(start)}, false}, nil
		case "None":
			return &None{node{p.spanFrom(start)}}, nil
		case "lambda":
			p.index--
			return p.parseLambda()
		}
		//
		return &Name{node{p.spanFrom(start)}, tok.Text}, nil
	case Num:
		p.next()
		return &Number{node{p.spanFrom(start)}, tok.Text}, nil
	case Str:
		p.next()
		return &String{node{p.spanFrom(start)}, tok.Text, tok.Raw}, nil
	case Operator:
		switch tok.Text {
		case "...":
			p.next()
			return &Ellipsis{node{p.spanFrom(start)}}, nil
		case "(":
			return p.parseParenthesised()
		case "[":
			return p.parseListLiteral()
		case "{":
			return p.parseDictLiteral()
		}
	}
	//
	return nil, p.errorf("unexpected token")
}

func (p *parser) parseParenthesised() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // '('
	// Empty tuple
	if p.matchOp(")") {
		return &Tuple{node{p.spanFrom(start)}, nil}, nil
	}
	//
	exprs, err := p.parseExpressions()
	if err != nil {
		return nil, err
	}
	//
	trailing := p.matchOp(",")
	//
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	//
	if len(exprs) == 1 && !trailing {
		return exprs[0], nil
	}
	//
	return &Tuple{node{p.spanFrom(start)}, exprs}, nil
}

func (p *parser) parseListLiteral() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // '['
	//
	var elements []Expr
	//
	for !p.isOp("]") {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		//
		elements = append(elements, expr)
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	//
	return &List{node{p.spanFrom(start)}, elements}, nil
}

// parseDictLiteral parses a braced literal.  Set literals are accepted and
// yield a list node, since the analyzer treats both as element sequences.
func (p *parser) parseDictLiteral() (Expr, *source.SyntaxError) {
	start := p.peek().Span.Start()
	p.next() // '{'
	//
	var (
		keys     []Expr
		values   []Expr
		elements []Expr
	)
	//
	for !p.isOp("}") {
		key, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		//
		if p.matchOp(":") {
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			//
			keys = append(keys, key)
			values = append(values, value)
		} else {
			elements = append(elements, key)
		}
		//
		if !p.matchOp(",") {
			break
		}
	}
	//
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	//
	if len(elements) > 0 {
		return &List{node{p.spanFrom(start)}, elements}, nil
	}
	//
	return &Dict{node{p.spanFrom(start)}, keys, values}, nil
}

func (p *parser) lookaheadOp(n int, text string) bool {
	if p.index+n < len(p.tokens) {
		tok := p.tokens[p.index+n]
		return tok.Kind == Operator && tok.Text == text
	}
	//
	return false
}

func (p *parser) lookaheadKeyword(n int, word string) bool {
	if p.index+n < len(p.tokens) {
		tok := p.tokens[p.index+n]
		return tok.Kind == Ident && tok.Text == word
	}
	//
	return false
}
