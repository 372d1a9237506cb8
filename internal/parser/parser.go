// Package parser turns a korvus source file into an *ast.File via a
// hand-written Pratt parser (spec §6 "source -> AST"), grounded on the
// teacher's own parser.go: a curTok/peekTok lookahead window, and
// prefix/infix parselet tables keyed by token kind instead of a
// generated grammar.
package parser

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

const (
	precLowest = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precCast
	precPrefix
	precPostfix
)

var precedences = map[lexer.Kind]int{
	lexer.EQ:         precAssign,
	lexer.PIPEPIPE:   precOr,
	lexer.AMPAMP:     precAnd,
	lexer.EQEQ:       precEquality,
	lexer.NEQ:        precEquality,
	lexer.LT:         precComparison,
	lexer.LE:         precComparison,
	lexer.GT:         precComparison,
	lexer.GE:         precComparison,
	lexer.PLUS:       precSum,
	lexer.MINUS:      precSum,
	lexer.STAR:       precProduct,
	lexer.SLASH:      precProduct,
	lexer.PERCENT:    precProduct,
	lexer.KwAs:       precCast,
	lexer.LPAREN:     precPostfix,
	lexer.LBRACKET:   precPostfix,
	lexer.DOT:        precPostfix,
	lexer.COLONCOLON: precPostfix,
}

// Parser implements the Pratt-style recursive descent parser. curTok
// always reflects the token under examination; peekTok mirrors the
// next one. Both are mutated only by next(). Errors is an append-only
// accumulator: callers consult Errors() after ParseFile rather than
// aborting on the first one, so a single bad token does not hide every
// other mistake in the file.
type Parser struct {
	lx       *lexer.Lexer
	filename string

	curTok  lexer.Token
	peekTok lexer.Token

	errors []*diag.Error

	prefixFns map[lexer.Kind]prefixParseFn
	infixFns  map[lexer.Kind]infixParseFn

	// noStructLiteral suppresses `Name { ... }` parsing as a struct
	// literal while parsing an `if`/`while` condition, where the `{`
	// instead opens the branch body.
	noStructLiteral bool
}

// New creates a parser over source, attributing every span to
// filename.
func New(filename, source string) *Parser {
	p := &Parser{
		lx:        lexer.New(filename, source),
		filename:  filename,
		prefixFns: make(map[lexer.Kind]prefixParseFn),
		infixFns:  make(map[lexer.Kind]infixParseFn),
	}

	p.registerPrefix(lexer.IDENT, p.parseIdentPath)
	p.registerPrefix(lexer.KwSuper, p.parseIdentPath)
	p.registerPrefix(lexer.KwPackage, p.parseIdentPath)
	p.registerPrefix(lexer.KwSelfType, p.parseIdentPath)
	p.registerPrefix(lexer.INT, p.parseIntegerLit)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLit)
	p.registerPrefix(lexer.STRING, p.parseStringLit)
	p.registerPrefix(lexer.KwTrue, p.parseBoolLit)
	p.registerPrefix(lexer.KwFalse, p.parseBoolLit)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpr)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpr)
	p.registerPrefix(lexer.STAR, p.parseDerefExpr)
	p.registerPrefix(lexer.AMP, p.parseRefExpr)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(lexer.LBRACE, p.parseBlockAsExpr)
	p.registerPrefix(lexer.KwIf, p.parseIfExpr)
	p.registerPrefix(lexer.KwSizeof, p.parseSizeofExpr)
	p.registerPrefix(lexer.KwAlignof, p.parseAlignofExpr)
	p.registerPrefix(lexer.LT, p.parsePathBaseExpr)

	p.registerInfix(lexer.PLUS, p.parseBinaryExpr)
	p.registerInfix(lexer.MINUS, p.parseBinaryExpr)
	p.registerInfix(lexer.STAR, p.parseBinaryExpr)
	p.registerInfix(lexer.SLASH, p.parseBinaryExpr)
	p.registerInfix(lexer.PERCENT, p.parseBinaryExpr)
	p.registerInfix(lexer.AMPAMP, p.parseBinaryExpr)
	p.registerInfix(lexer.PIPEPIPE, p.parseBinaryExpr)
	p.registerInfix(lexer.EQEQ, p.parseBinaryExpr)
	p.registerInfix(lexer.NEQ, p.parseBinaryExpr)
	p.registerInfix(lexer.LT, p.parseBinaryExpr)
	p.registerInfix(lexer.LE, p.parseBinaryExpr)
	p.registerInfix(lexer.GT, p.parseBinaryExpr)
	p.registerInfix(lexer.GE, p.parseBinaryExpr)
	p.registerInfix(lexer.EQ, p.parseAssignExpr)
	p.registerInfix(lexer.KwAs, p.parseAsExpr)
	p.registerInfix(lexer.LPAREN, p.parseCallExpr)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpr)
	p.registerInfix(lexer.DOT, p.parseMemberExpr)

	p.next()
	p.next()
	return p
}

func (p *Parser) registerPrefix(k lexer.Kind, fn prefixParseFn) { p.prefixFns[k] = fn }
func (p *Parser) registerInfix(k lexer.Kind, fn infixParseFn)   { p.infixFns[k] = fn }

// Errors returns every diagnostic accumulated during parsing, in the
// order encountered.
func (p *Parser) Errors() []*diag.Error { return p.errors }

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.Next()
}

func (p *Parser) curIs(k lexer.Kind) bool  { return p.curTok.Kind == k }
func (p *Parser) peekIs(k lexer.Kind) bool { return p.peekTok.Kind == k }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekTok.Kind]; ok {
		return prec
	}
	return precLowest
}

// expect advances past curTok if it has kind k, else records
// EXPECTED_TOKEN and leaves curTok in place so the caller's recovery
// (usually bailing out of the current declaration) sees consistent
// state.
func (p *Parser) expect(k lexer.Kind) bool {
	if p.curIs(k) {
		p.next()
		return true
	}
	p.errorf(diag.KindExpectedToken, p.curTok.Span, "expected %s, found %s", k, p.curTok.Kind)
	return false
}

func (p *Parser) errorf(kind diag.Kind, span diag.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, diag.New(kind, span, format, args...))
}

func mergeSpan(a, b diag.Span) diag.Span {
	if !a.IsValid() {
		return b
	}
	if !b.IsValid() {
		return a
	}
	return diag.Span{Filename: a.Filename, Line: a.Line, Column: a.Column, Start: a.Start, End: b.End}
}

// ParseFile parses a whole compilation unit: an optional package
// declaration, any number of `module`/`use` declarations, then the
// remaining top-level declarations (spec §4.4 "outline pass" consumes
// exactly this shape).
func (p *Parser) ParseFile() *ast.File {
	start := p.curTok.Span

	var pkg *ast.PackageDecl
	if p.curIs(lexer.KwPackage) {
		pkgStart := p.curTok.Span
		p.next()
		name := p.parseRawIdent()
		p.expectSemi()
		pkg = ast.NewPackageDecl(name, mergeSpan(pkgStart, name.Span()))
	}

	var mods []*ast.ModDecl
	var uses []*ast.UseDecl
	var decls []ast.Decl

	for !p.curIs(lexer.EOF) {
		switch {
		case p.curIs(lexer.KwModule):
			mods = append(mods, p.parseModDecl())
		case p.curIs(lexer.KwUse):
			uses = append(uses, p.parseUseDecl())
		default:
			if d := p.parseDecl(); d != nil {
				decls = append(decls, d)
			}
		}
	}

	return ast.NewFile(pkg, mods, uses, decls, mergeSpan(start, p.curTok.Span))
}

func (p *Parser) expectSemi() {
	p.expect(lexer.SEMI)
}

// parseRawIdent consumes an ordinary name. It also accepts the
// `super`/`package`/`Self` keywords, since path segments reuse this
// helper and those keywords double as path segment names there (spec
// §4.2); callers that truly need a plain binder name (a field, a
// parameter) get the same leniency, which is harmless since those
// keywords are never meaningful there anyway.
func (p *Parser) parseRawIdent() *ast.Ident {
	switch p.curTok.Kind {
	case lexer.IDENT, lexer.KwSuper, lexer.KwPackage, lexer.KwSelfType:
	default:
		p.errorf(diag.KindExpectedIdentifier, p.curTok.Span, "expected identifier, found %s", p.curTok.Kind)
		return ast.NewIdent("", p.curTok.Span)
	}
	id := ast.NewIdent(p.curTok.Raw, p.curTok.Span)
	p.next()
	return id
}
