package parser

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/lexer"
)

// parseStmt parses one statement inside a block. The second return
// value reports whether this is actually the block's tail expression
// (an expression statement with no terminating `;`, found at the
// close of the block) — parseBlockExpr special-cases that to build the
// block's Tail instead of appending to Stmts.
func (p *Parser) parseStmt() (ast.Stmt, bool) {
	switch p.curTok.Kind {
	case lexer.KwLet:
		return p.parseLetStmt(), false
	case lexer.KwReturn:
		return p.parseReturnStmt(), false
	case lexer.KwBreak:
		span := p.curTok.Span
		p.next()
		p.expectSemi()
		return ast.NewBreakStmt(span), false
	case lexer.KwContinue:
		span := p.curTok.Span
		p.next()
		p.expectSemi()
		return ast.NewContinueStmt(span), false
	case lexer.KwWhile:
		return p.parseWhileStmt(), false
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLetStmt() ast.Stmt {
	start := p.curTok.Span
	p.next() // `let`
	mutable := false
	if p.curIs(lexer.KwMut) {
		mutable = true
		p.next()
	}
	name := p.parseRawIdent()

	var typ ast.TypeExpr
	if p.curIs(lexer.COLON) {
		p.next()
		typ = p.parseTypeExpr()
	}

	var value ast.Expr
	if p.curIs(lexer.EQ) {
		p.next()
		value = p.parseExpr(precLowest)
	}

	end := p.curTok.Span
	p.expectSemi()
	return ast.NewLetStmt(mutable, name, typ, value, mergeSpan(start, end))
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.curTok.Span
	p.next() // `return`
	var value ast.Expr
	if !p.curIs(lexer.SEMI) {
		value = p.parseExpr(precLowest)
	}
	end := p.curTok.Span
	p.expectSemi()
	return ast.NewReturnStmt(value, mergeSpan(start, end))
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.curTok.Span
	p.next() // `while`
	cond := p.parseConditionExpr()
	body := p.parseBlockExpr()
	return ast.NewWhileStmt(cond, body, mergeSpan(start, body.Span()))
}

// parseExprStmt parses an expression used as a statement, and decides
// whether it is actually the enclosing block's tail value: a bare
// expression followed directly by `}` with no `;`.
func (p *Parser) parseExprStmt() (ast.Stmt, bool) {
	start := p.curTok.Span
	expr := p.parseExpr(precLowest)

	if p.curIs(lexer.SEMI) {
		end := p.curTok.Span
		p.next()
		return ast.NewExprStmt(expr, mergeSpan(start, end)), false
	}
	if p.curIs(lexer.RBRACE) {
		return ast.NewExprStmt(expr, expr.Span()), true
	}
	// A block-terminated expression (`if`, `while`, a bare `{ }`) used
	// as a statement needs no trailing `;`.
	return ast.NewExprStmt(expr, expr.Span()), false
}
