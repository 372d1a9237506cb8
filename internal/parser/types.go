package parser

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/lexer"
)

// parseTypeExpr parses a type annotation: a named path, `Self`, a
// pointer, an array/slice, or a tuple.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.curTok.Kind {
	case lexer.STAR:
		return p.parsePointerTypeExpr()
	case lexer.LBRACKET:
		return p.parseArrayTypeExpr()
	case lexer.LPAREN:
		return p.parseTupleTypeExpr()
	case lexer.KwSelfType:
		span := p.curTok.Span
		p.next()
		return ast.NewSelfTypeExpr(span)
	case lexer.IDENT, lexer.KwPackage, lexer.KwSuper:
		return p.parseNamedTypeExpr()
	default:
		p.errorf(diag.KindExpectedType, p.curTok.Span, "expected a type, found %s", p.curTok.Kind)
		span := p.curTok.Span
		p.next()
		return ast.NewNamedTypeExpr(nil, span)
	}
}

func (p *Parser) parseNamedTypeExpr() ast.TypeExpr {
	start := p.curTok.Span
	segments := p.parseIdentSegments()
	return ast.NewNamedTypeExpr(segments, mergeSpan(start, p.curTok.Span))
}

// parsePointerTypeExpr parses `*T` or `*mut T`.
func (p *Parser) parsePointerTypeExpr() ast.TypeExpr {
	start := p.curTok.Span
	p.next() // `*`
	mutable := false
	if p.curIs(lexer.KwMut) {
		mutable = true
		p.next()
	}
	pointee := p.parseTypeExpr()
	return ast.NewPointerTypeExpr(mutable, pointee, mergeSpan(start, pointee.Span()))
}

// parseArrayTypeExpr parses `[T; N]` or `[T]`.
func (p *Parser) parseArrayTypeExpr() ast.TypeExpr {
	start := p.curTok.Span
	p.next() // `[`
	item := p.parseTypeExpr()

	var length ast.Expr
	if p.curIs(lexer.SEMI) {
		p.next()
		length = p.parseExpr(precLowest)
	}
	end := p.curTok.Span
	p.expect(lexer.RBRACKET)
	return ast.NewArrayTypeExpr(item, length, mergeSpan(start, end))
}

// parseTupleTypeExpr parses `(A, B, C)`.
func (p *Parser) parseTupleTypeExpr() ast.TypeExpr {
	start := p.curTok.Span
	p.next() // `(`
	var items []ast.TypeExpr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		items = append(items, p.parseTypeExpr())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	end := p.curTok.Span
	p.expect(lexer.RPAREN)
	return ast.NewTupleTypeExpr(items, mergeSpan(start, end))
}
