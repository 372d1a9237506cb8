package parser

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/lexer"
)

// parseExpr is the Pratt climbing loop: parse one prefix expression,
// then keep folding in infix operators whose precedence exceeds
// minPrec.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	prefix, ok := p.prefixFns[p.curTok.Kind]
	if !ok {
		p.errorf(diag.KindExpectedOperand, p.curTok.Span, "expected an expression, found %s", p.curTok.Kind)
		span := p.curTok.Span
		p.next()
		return ast.NewIdent("", span)
	}
	left := prefix()

	for minPrec < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peekTok.Kind]
		if !ok {
			return left
		}
		p.next()
		left = infix(left)
	}
	return left
}

// parseIdentPath parses a bare identifier, `super`, `package`, or
// `Self` as the start of a path, folding in any `::segment` that
// follows. A single-segment result is still a PathExpr; the lowerer
// resolves it the same way regardless of length.
func (p *Parser) parseIdentPath() ast.Expr {
	start := p.curTok.Span
	segments := []*ast.Ident{p.parseRawIdent()}
	for p.curIs(lexer.COLONCOLON) {
		p.next()
		segments = append(segments, p.parseRawIdent())
	}
	span := mergeSpan(start, p.curTok.Span)

	if !p.noStructLiteral && p.curIs(lexer.LBRACE) {
		return p.parseStructLiteralExpr(ast.NewNamedTypeExpr(segments, span), start)
	}
	return ast.NewPathExpr(segments, span)
}

// parseStructLiteralExpr parses `Type { field: value, ... }` once the
// type name and `{` have been seen. noStructLiteral suppresses this
// form while parsing an `if`/`while` condition, where a bare `{`
// instead opens the branch body (spec's grammar leaves this ambiguity
// to the parser, as it does in every language with this shape of
// struct literal).
func (p *Parser) parseStructLiteralExpr(typ ast.TypeExpr, start diag.Span) ast.Expr {
	p.next() // `{`
	var fields []*ast.StructLiteralField
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		name := p.parseRawIdent()
		p.expect(lexer.COLON)
		value := p.parseExpr(precLowest)
		fields = append(fields, &ast.StructLiteralField{Name: name, Value: value})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	end := p.curTok.Span
	p.expect(lexer.RBRACE)
	return ast.NewStructLiteralExpr(typ, fields, mergeSpan(start, end))
}

// parseConditionExpr parses an `if`/`while` condition with bare `{`
// treated as the start of the branch body rather than a struct
// literal.
func (p *Parser) parseConditionExpr() ast.Expr {
	prev := p.noStructLiteral
	p.noStructLiteral = true
	expr := p.parseExpr(precLowest)
	p.noStructLiteral = prev
	return expr
}

// parsePathBaseExpr parses `<TypeExpr>::segment::...`.
func (p *Parser) parsePathBaseExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `<`
	base := p.parseTypeExpr()
	p.expect(lexer.GT)
	p.expect(lexer.COLONCOLON)

	segments := []*ast.Ident{p.parseRawIdent()}
	for p.curIs(lexer.COLONCOLON) {
		p.next()
		segments = append(segments, p.parseRawIdent())
	}
	return ast.NewPathBaseExpr(base, segments, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	start := p.curTok.Span
	op := p.curTok.Raw
	p.next()
	operand := p.parseExpr(precPrefix)
	return ast.NewUnaryExpr(op, operand, mergeSpan(start, operand.Span()))
}

func (p *Parser) parseDerefExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `*`
	operand := p.parseExpr(precPrefix)
	return ast.NewDerefExpr(operand, mergeSpan(start, operand.Span()))
}

func (p *Parser) parseRefExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `&`
	mutable := false
	if p.curIs(lexer.KwMut) {
		mutable = true
		p.next()
	}
	operand := p.parseExpr(precPrefix)
	return ast.NewRefExpr(mutable, operand, mergeSpan(start, operand.Span()))
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.next() // `(`
	expr := p.withStructLiteralsAllowed(func() ast.Expr { return p.parseExpr(precLowest) })
	p.expect(lexer.RPAREN)
	return expr
}

// withStructLiteralsAllowed lifts the `if`/`while` condition's struct
// literal suppression for a sub-expression enclosed in its own
// brackets, where the ambiguity with a following block body cannot
// arise: `if f(P{x:1}) { ... }` must still parse `P{x:1}` as a struct
// literal.
func (p *Parser) withStructLiteralsAllowed(parse func() ast.Expr) ast.Expr {
	prev := p.noStructLiteral
	p.noStructLiteral = false
	expr := parse()
	p.noStructLiteral = prev
	return expr
}

// parseBlockAsExpr allows a bare `{ ... }` in expression position,
// e.g. as the value of a `let`.
func (p *Parser) parseBlockAsExpr() ast.Expr {
	return p.parseBlockExpr()
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `if`
	cond := p.parseConditionExpr()
	then := p.parseBlockExpr()

	var els *ast.BlockExpr
	end := then.Span()
	if p.curIs(lexer.KwElse) {
		p.next()
		if p.curIs(lexer.KwIf) {
			innerSpan := p.curTok.Span
			inner := p.parseIfExpr()
			els = ast.NewBlockExpr(nil, inner, mergeSpan(innerSpan, inner.Span()))
		} else {
			els = p.parseBlockExpr()
		}
		end = els.Span()
	}
	return ast.NewIfExpr(cond, then, els, mergeSpan(start, end))
}

func (p *Parser) parseSizeofExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `sizeof`
	typ := p.parseTypeExpr()
	return ast.NewSizeofExpr(typ, mergeSpan(start, typ.Span()))
}

func (p *Parser) parseAlignofExpr() ast.Expr {
	start := p.curTok.Span
	p.next() // `alignof`
	typ := p.parseTypeExpr()
	return ast.NewAlignofExpr(typ, mergeSpan(start, typ.Span()))
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	op := p.curTok.Raw
	prec := precedences[p.curTok.Kind]
	p.next()
	right := p.parseExpr(prec)
	return ast.NewBinaryExpr(op, left, right, mergeSpan(left.Span(), right.Span()))
}

func (p *Parser) parseAssignExpr(target ast.Expr) ast.Expr {
	p.next() // `=`
	value := p.parseExpr(precAssign - 1)
	return ast.NewAssignExpr(target, value, mergeSpan(target.Span(), value.Span()))
}

func (p *Parser) parseAsExpr(value ast.Expr) ast.Expr {
	p.next() // `as`
	typ := p.parseTypeExpr()
	return ast.NewAsExpr(value, typ, mergeSpan(value.Span(), typ.Span()))
}

func (p *Parser) parseCallExpr(callee ast.Expr) ast.Expr {
	p.next() // `(`
	args := p.parseArgList()
	end := p.curTok.Span
	p.expect(lexer.RPAREN)
	return ast.NewCallExpr(callee, args, mergeSpan(callee.Span(), end))
}

func (p *Parser) parseArgList() []ast.Expr {
	var args []ast.Expr
	p.withStructLiteralsAllowed(func() ast.Expr {
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			args = append(args, p.parseExpr(precLowest))
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		return nil
	})
	return args
}

func (p *Parser) parseIndexExpr(base ast.Expr) ast.Expr {
	p.next() // `[`
	index := p.withStructLiteralsAllowed(func() ast.Expr { return p.parseExpr(precLowest) })
	end := p.curTok.Span
	p.expect(lexer.RBRACKET)
	return ast.NewIndexExpr(base, index, mergeSpan(base.Span(), end))
}

// parseMemberExpr parses `.field`, `.0` (tuple index), or
// `.method(args...)`.
func (p *Parser) parseMemberExpr(base ast.Expr) ast.Expr {
	p.next() // `.`

	if p.curIs(lexer.INT) {
		text, _ := splitNumberSuffix(p.curTok.Raw, false)
		index := 0
		for _, ch := range text {
			index = index*10 + int(ch-'0')
		}
		span := p.curTok.Span
		p.next()
		return ast.NewTupleMemberExpr(base, index, mergeSpan(base.Span(), span))
	}

	name := p.parseRawIdent()
	if p.curIs(lexer.LPAREN) {
		p.next() // `(`
		args := p.parseArgList()
		end := p.curTok.Span
		p.expect(lexer.RPAREN)
		return ast.NewMethodCallExpr(base, name, args, mergeSpan(base.Span(), end))
	}
	return ast.NewMemberExpr(base, name, mergeSpan(base.Span(), name.Span()))
}

// parseBlockExpr parses `{ stmt; stmt; tail? }`. A trailing expression
// with no terminating `;` is the block's tail value; every other
// statement ends at `;`.
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.curTok.Span
	p.expect(lexer.LBRACE)

	var stmts []ast.Stmt
	var tail ast.Expr

	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		stmt, isTail := p.parseStmt()
		if isTail {
			tail = stmt.(*ast.ExprStmt).Expr
			break
		}
		stmts = append(stmts, stmt)
	}

	end := p.curTok.Span
	p.expect(lexer.RBRACE)
	return ast.NewBlockExpr(stmts, tail, mergeSpan(start, end))
}
