package parser_test

import (
	"testing"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/parser"
	"github.com/stretchr/testify/require"
)

func parseFile(t *testing.T, src string) *ast.File {
	t.Helper()
	p := parser.New("test.kv", src)
	file := p.ParseFile()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return file
}

func TestParsesModuleUseAndStruct(t *testing.T) {
	file := parseFile(t, `
		module a::b;
		use std::mem::*;

		struct Node {
			next: *mut Node;
			value: i32;
		}
	`)

	require.Len(t, file.Mods, 1)
	require.Equal(t, []string{"a", "b"}, identNames(file.Mods[0].Path))
	require.Len(t, file.Uses, 1)
	require.True(t, file.Uses[0].Glob)

	require.Len(t, file.Decls, 1)
	sd, ok := file.Decls[0].(*ast.StructDecl)
	require.True(t, ok)
	require.Equal(t, "Node", sd.Name.Name)
	require.Len(t, sd.Fields, 2)
	require.Equal(t, "next", sd.Fields[0].Name.Name)
	require.Equal(t, "value", sd.Fields[1].Name.Name)
}

func TestParsesOpaqueStruct(t *testing.T) {
	file := parseFile(t, `struct Opaque;`)
	_, ok := file.Decls[0].(*ast.OpaqueStructDecl)
	require.True(t, ok)
}

func TestParsesFunctionWithBodyAndTailExpr(t *testing.T) {
	file := parseFile(t, `
		function add(a: i32, b: i32) -> i32 {
			let sum: i32 = a + b;
			sum
		}
	`)

	fn, ok := file.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.Body)
	require.Len(t, fn.Body.Stmts, 1)
	require.NotNil(t, fn.Body.Tail)

	tail, ok := fn.Body.Tail.(*ast.PathExpr)
	require.True(t, ok)
	require.Equal(t, []string{"sum"}, identNames(tail.Segments))
}

func TestParsesExternalFunctionDecl(t *testing.T) {
	file := parseFile(t, `external function puts(s: *u8) -> i32;`)
	fn, ok := file.Decls[0].(*ast.FnDecl)
	require.True(t, ok)
	require.True(t, fn.External)
	require.Nil(t, fn.Body)
}

func TestBinaryPrecedence(t *testing.T) {
	file := parseFile(t, `
		function f() -> i32 {
			1 + 2 * 3
		}
	`)
	fn := file.Decls[0].(*ast.FnDecl)
	tail := fn.Body.Tail.(*ast.BinaryExpr)
	require.Equal(t, "+", tail.Op)

	rhs, ok := tail.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, "*", rhs.Op)
}

func TestStructLiteralAfterIdent(t *testing.T) {
	file := parseFile(t, `
		function f() -> P {
			P{x: 0, y: 1}
		}
	`)
	fn := file.Decls[0].(*ast.FnDecl)
	lit, ok := fn.Body.Tail.(*ast.StructLiteralExpr)
	require.True(t, ok)
	require.Len(t, lit.Fields, 2)
	require.Equal(t, "x", lit.Fields[0].Name.Name)
	require.Equal(t, "y", lit.Fields[1].Name.Name)
}

// TestStructLiteralAmbiguityInCondition is the scenario the
// noStructLiteral flag exists for: a bare path used as an if
// condition must not swallow the branch's opening brace as the start
// of a struct literal.
func TestStructLiteralAmbiguityInCondition(t *testing.T) {
	file := parseFile(t, `
		function f(flag: bool) -> i32 {
			if flag {
				1
			} else {
				0
			}
		}
	`)
	fn := file.Decls[0].(*ast.FnDecl)
	ifExpr, ok := fn.Body.Tail.(*ast.IfExpr)
	require.True(t, ok)

	_, isPath := ifExpr.Cond.(*ast.PathExpr)
	require.True(t, isPath, "condition should remain a bare path, not a struct literal")
	require.NotNil(t, ifExpr.Then)
	require.NotNil(t, ifExpr.Else)
}

// TestStructLiteralAllowedInsideConditionCall confirms the suppression
// lifts again inside a call's parentheses, where the ambiguity with a
// following block cannot occur.
func TestStructLiteralAllowedInsideConditionCall(t *testing.T) {
	file := parseFile(t, `
		function f(p: P) -> bool {
			if matches(P{x: 1, y: 2}) {
				true
			} else {
				false
			}
		}
	`)
	fn := file.Decls[0].(*ast.FnDecl)
	ifExpr := fn.Body.Tail.(*ast.IfExpr)

	call, ok := ifExpr.Cond.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 1)

	_, isLit := call.Args[0].(*ast.StructLiteralExpr)
	require.True(t, isLit, "struct literal inside call args of a condition must still parse as a literal")
}

func TestParsesWhileLoop(t *testing.T) {
	file := parseFile(t, `
		function f() {
			let mut i: i32 = 0;
			while i {
				i = i - 1;
			}
		}
	`)
	fn := file.Decls[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Stmts, 2)

	ws, ok := fn.Body.Stmts[1].(*ast.WhileStmt)
	require.True(t, ok)
	_, isPath := ws.Cond.(*ast.PathExpr)
	require.True(t, isPath)
}

func TestParsesImplDecl(t *testing.T) {
	file := parseFile(t, `
		implement P {
			function set(self: *mut Self, v: i32) {
				self.x = v;
			}
		}
	`)
	impl, ok := file.Decls[0].(*ast.ImplDecl)
	require.True(t, ok)
	require.Len(t, impl.Methods, 1)
	require.Equal(t, "set", impl.Methods[0].Name.Name)
}

func TestParserRecordsErrorsWithoutAborting(t *testing.T) {
	p := parser.New("bad.kv", `struct ; function g() -> i32 { 1 }`)
	file := p.ParseFile()
	require.NotEmpty(t, p.Errors())
	require.Len(t, file.Decls, 2, "parser should recover and still parse the following declaration")
}

func identNames(idents []*ast.Ident) []string {
	names := make([]string, len(idents))
	for i, id := range idents {
		names[i] = id.Name
	}
	return names
}
