package parser

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/lexer"
)

// parseModDecl parses `module a::b;`.
func (p *Parser) parseModDecl() *ast.ModDecl {
	start := p.curTok.Span
	p.next() // `module`
	path := p.parseIdentSegments()
	p.expectSemi()
	return ast.NewModDecl(path, mergeSpan(start, p.curTok.Span))
}

// parseUseDecl parses `use a::b::c;`, `use a::b::*;`, or `use a::b as n;`.
func (p *Parser) parseUseDecl() *ast.UseDecl {
	start := p.curTok.Span
	p.next() // `use`

	var path []*ast.Ident
	glob := false
	for {
		if p.curIs(lexer.STAR) {
			p.next()
			glob = true
			break
		}
		path = append(path, p.parseRawIdent())
		if p.curIs(lexer.COLONCOLON) {
			p.next()
			continue
		}
		break
	}

	var alias *ast.Ident
	if !glob && p.curIs(lexer.IDENT) && p.curTok.Raw == "as" {
		p.next()
		alias = p.parseRawIdent()
	}

	p.expectSemi()
	return ast.NewUseDecl(path, alias, glob, mergeSpan(start, p.curTok.Span))
}

// parseIdentSegments parses `a::b::c` as a bare segment list, used by
// `module` declarations which never admit `super`/`Self`/`<T>`.
func (p *Parser) parseIdentSegments() []*ast.Ident {
	segments := []*ast.Ident{p.parseRawIdent()}
	for p.curIs(lexer.COLONCOLON) {
		p.next()
		segments = append(segments, p.parseRawIdent())
	}
	return segments
}

// parseDecl dispatches a top-level or implement-body declaration.
func (p *Parser) parseDecl() ast.Decl {
	switch p.curTok.Kind {
	case lexer.KwStruct:
		return p.parseStructDecl()
	case lexer.KwImplement:
		return p.parseImplDecl()
	case lexer.KwFunction, lexer.KwExternal:
		return p.parseFnDecl()
	case lexer.KwLet:
		return p.parseLetDecl()
	default:
		p.errorf(diag.KindExpectedStatement, p.curTok.Span, "expected a declaration, found %s", p.curTok.Kind)
		p.next()
		return nil
	}
}

// parseStructDecl parses `struct Name { field: Type; ... }` or the
// opaque form `struct Name;`.
func (p *Parser) parseStructDecl() ast.Decl {
	start := p.curTok.Span
	p.next() // `struct`
	name := p.parseRawIdent()

	if p.curIs(lexer.SEMI) {
		p.next()
		return ast.NewOpaqueStructDecl(name, mergeSpan(start, name.Span()))
	}

	p.expect(lexer.LBRACE)
	var fields []*ast.StructField
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fieldStart := p.curTok.Span
		fieldName := p.parseRawIdent()
		p.expect(lexer.COLON)
		fieldType := p.parseTypeExpr()
		fields = append(fields, ast.NewStructField(fieldName, fieldType, mergeSpan(fieldStart, fieldType.Span())))
		p.expect(lexer.SEMI)
	}
	end := p.curTok.Span
	p.expect(lexer.RBRACE)
	return ast.NewStructDecl(name, fields, mergeSpan(start, end))
}

// parseImplDecl parses `implement Target { function ... }`.
func (p *Parser) parseImplDecl() ast.Decl {
	start := p.curTok.Span
	p.next() // `implement`
	target := p.parseTypeExpr()
	p.expect(lexer.LBRACE)

	var methods []*ast.FnDecl
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if fn, ok := p.parseFnDecl().(*ast.FnDecl); ok {
			methods = append(methods, fn)
		}
	}
	end := p.curTok.Span
	p.expect(lexer.RBRACE)
	return ast.NewImplDecl(target, methods, mergeSpan(start, end))
}

// parseFnDecl parses `[external] function name(params...) [-> Type] [{ body }]`.
func (p *Parser) parseFnDecl() ast.Decl {
	start := p.curTok.Span
	external := false
	if p.curIs(lexer.KwExternal) {
		external = true
		p.next()
	}
	p.expect(lexer.KwFunction)
	name := p.parseRawIdent()

	p.expect(lexer.LPAREN)
	var params []*ast.Param
	variadic := false
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.KwVariadic) {
			p.next()
			variadic = true
			break
		}
		pStart := p.curTok.Span
		pName := p.parseRawIdent()
		p.expect(lexer.COLON)
		pType := p.parseTypeExpr()
		params = append(params, ast.NewParam(pName, pType, mergeSpan(pStart, pType.Span())))
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)

	var ret ast.TypeExpr
	if p.curIs(lexer.ARROW) {
		p.next()
		ret = p.parseTypeExpr()
	}

	var body *ast.BlockExpr
	end := p.curTok.Span
	if external {
		p.expectSemi()
	} else {
		body = p.parseBlockExpr()
		end = body.Span()
	}

	return ast.NewFnDecl(name, params, variadic, ret, external, body, mergeSpan(start, end))
}

// parseLetDecl parses a global `let name: Type = value;`.
func (p *Parser) parseLetDecl() ast.Decl {
	start := p.curTok.Span
	p.next() // `let`
	name := p.parseRawIdent()

	var typ ast.TypeExpr
	if p.curIs(lexer.COLON) {
		p.next()
		typ = p.parseTypeExpr()
	} else {
		p.errorf(diag.KindMustSpecifyTypeForGlobal, start, "global `let` requires an explicit type")
	}

	var value ast.Expr
	if p.curIs(lexer.EQ) {
		p.next()
		value = p.parseExpr(precLowest)
	}

	end := p.curTok.Span
	p.expectSemi()
	return ast.NewLetDecl(name, typ, value, mergeSpan(start, end))
}
