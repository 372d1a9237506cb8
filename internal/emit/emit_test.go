package emit_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/emit"
	"github.com/korvus-lang/korvus/internal/lower"
	"github.com/korvus-lang/korvus/internal/parser"
	"github.com/korvus-lang/korvus/internal/target"
	"github.com/korvus-lang/korvus/internal/types"
	"github.com/stretchr/testify/require"
)

type mapLocator map[string]string

func (m mapLocator) Load(path types.SimplePath) (source, filename string, err error) {
	src, ok := m[path.String()]
	if !ok {
		return "", "", fmt.Errorf("no source registered for module %q", path.String())
	}
	return src, path.String() + ".kv", nil
}

func parseFile(filename, source string) (*ast.File, []*diag.Error) {
	p := parser.New(filename, source)
	file := p.ParseFile()
	return file, p.Errors()
}

// generate runs the full outline/fill/lower/emit pipeline over a
// single-file package, the same way cmd/korvusc will, and returns the
// emitted LLVM IR text.
func generate(t *testing.T, source string) string {
	t.Helper()
	tgt := target.Default64()
	c := elaborate.NewGlobalContext(tgt, "test")
	_, err := c.CompilePackage(mapLocator{"": source}, parseFile)
	require.Nil(t, err)

	lc := lower.NewContext(c)
	lc.LowerDeclaredTypes()
	require.Nil(t, lc.FoldGlobals())
	require.Nil(t, lc.LowerFunctions())

	out, genErr := emit.Generate(lc.Unit, c.Types, tgt.Triple)
	require.NoError(t, genErr)
	return out
}

func TestEmitHeaderCarriesTripleAndNoDatalayout(t *testing.T) {
	ir := generate(t, `
		function answer() -> i32 {
			42
		}
	`)
	require.Contains(t, ir, `target triple = "x86_64-unknown-linux-gnu"`)
	require.NotContains(t, ir, "target datalayout")
}

func TestEmitFunctionReturnsConstant(t *testing.T) {
	ir := generate(t, `
		function answer() -> i32 {
			40 + 2
		}
	`)
	require.Contains(t, ir, "define i32 @test.answer()")
	require.Contains(t, ir, "ret i32")
}

func TestEmitIfExpressionEmitsPhi(t *testing.T) {
	ir := generate(t, `
		function pick(flag: bool) -> i32 {
			if flag {
				1
			} else {
				2
			}
		}
	`)
	require.Contains(t, ir, "= phi i32 [")
	require.Contains(t, ir, "br i1")
}

func TestEmitWhileLoopEmitsConditionalAndUnconditionalBranches(t *testing.T) {
	ir := generate(t, `
		function countdown(n: i32) {
			while n > 0 {
				if n == 1 {
					break;
				}
				continue;
			}
		}
	`)
	require.Contains(t, ir, "br i1")
	require.Contains(t, ir, "br label %")
}

func TestEmitStructDeclaresNamedType(t *testing.T) {
	ir := generate(t, `
		struct Point {
			x: i32;
			y: i32;
		}

		function origin() -> Point {
			Point { x: 0, y: 0 }
		}
	`)
	require.Contains(t, ir, "%struct.test.Point = type { i32, i32 }")
	require.True(t, strings.Contains(ir, "getelementptr") || strings.Contains(ir, "insertvalue"),
		"expected struct member construction to use getelementptr or insertvalue")
}

func TestEmitMethodCallLowersToDirectCall(t *testing.T) {
	ir := generate(t, `
		struct Counter {
			value: i32;
		}

		implement Counter {
			function get(self: *Counter) -> i32 {
				self.value
			}
		}

		function use_it(c: *mut Counter) -> i32 {
			c.get()
		}
	`)
	require.Contains(t, ir, "define i32 @test.Counter.get(")
	require.Contains(t, ir, "call i32 @test.Counter.get(")
}

func TestEmitGlobalConstantFoldsToLiteral(t *testing.T) {
	ir := generate(t, `
		let base: i32 = 10;
		let doubled: i32 = base * 2;

		function main() -> i32 {
			0
		}
	`)
	require.Contains(t, ir, "@test.doubled = constant i32 20")
}

func TestEmitExternalFunctionDeclaresVariadicPrototype(t *testing.T) {
	ir := generate(t, `
		external function printf(fmt: *i8, ...) -> i32;

		function main() -> i32 {
			0
		}
	`)
	require.Contains(t, ir, "declare i32 @printf(i8*, ...)")
}
