package parser

import (
	"unicode"

	"github.com/korvus-lang/korvus/internal/ast"
)

// splitNumberSuffix separates the digits the lexer scanned from a
// trailing type suffix (`10i32` -> "10", "i32"); the lexer deliberately
// leaves this to the parser since only a surface-syntax concern, never
// the scanner's, needs to know where a number ends and a suffix
// begins (spec's literal grammar has no suffix keywords the lexer
// would need to recognise on its own).
func splitNumberSuffix(raw string, isFloat bool) (text, suffix string) {
	i := 0
	for i < len(raw) && (unicode.IsDigit(rune(raw[i])) || raw[i] == '.') {
		i++
	}
	return raw[:i], raw[i:]
}

func (p *Parser) parseIntegerLit() ast.Expr {
	span := p.curTok.Span
	text, suffix := splitNumberSuffix(p.curTok.Raw, false)
	p.next()
	return ast.NewIntegerLit(text, suffix, span)
}

func (p *Parser) parseFloatLit() ast.Expr {
	span := p.curTok.Span
	text, suffix := splitNumberSuffix(p.curTok.Raw, true)
	p.next()
	return ast.NewFloatLit(text, suffix, span)
}

func (p *Parser) parseStringLit() ast.Expr {
	span := p.curTok.Span
	value := p.curTok.Value
	p.next()
	return ast.NewStringLit(value, span)
}

func (p *Parser) parseBoolLit() ast.Expr {
	span := p.curTok.Span
	value := p.curTok.Raw == "true"
	p.next()
	return ast.NewBoolLit(value, span)
}
