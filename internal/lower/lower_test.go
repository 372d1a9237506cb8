package lower_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/ir"
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

// compileAndLower runs the full outline/fill/lower pipeline over a
// single-file package, the same way cmd/korvusc will: elaborate first,
// then fold globals and lower functions into one compilation unit.
func compileAndLower(t *testing.T, source string) *ir.CompilationUnit {
	t.Helper()
	c := elaborate.NewGlobalContext(target.Default64(), "test")
	_, err := c.CompilePackage(mapLocator{"": source}, parseFile)
	require.Nil(t, err)

	lc := lower.NewContext(c)
	lc.LowerDeclaredTypes()
	require.Nil(t, lc.FoldGlobals())
	require.Nil(t, lc.LowerFunctions())
	return lc.Unit
}

func findFunction(t *testing.T, unit *ir.CompilationUnit, name string) *ir.Function {
	t.Helper()
	for _, f := range unit.Functions {
		if f.Name == name {
			return f.Fn
		}
	}
	t.Fatalf("no defined function named %q, have %v", name, unit.Functions)
	return nil
}

func TestLowerReturnsTailExpressionImplicitly(t *testing.T) {
	unit := compileAndLower(t, `
		function answer() -> i32 {
			40 + 2
		}
	`)
	fn := findFunction(t, unit, "::test::answer")
	ret, ok := fn.Entry().Terminator.(*ir.Return)
	require.True(t, ok, "expected entry block to end in a return, got %#v", fn.Entry().Terminator)
	require.NotNil(t, ret.Value)
}

func TestLowerIfExpressionBuildsPhiWhenBothArmsLive(t *testing.T) {
	unit := compileAndLower(t, `
		function pick(flag: bool) -> i32 {
			if flag {
				1
			} else {
				2
			}
		}
	`)
	fn := findFunction(t, unit, "::test::pick")

	var merge *ir.BasicBlock
	for _, b := range fn.Blocks {
		if len(b.Phis) > 0 {
			merge = b
		}
	}
	require.NotNil(t, merge, "expected a merge block with a phi")
	require.Len(t, merge.Phis, 1)
	require.Len(t, merge.Phis[0].Incoming, 2)
}

func TestLowerIfExpressionSkipsPhiWhenOneArmDiverges(t *testing.T) {
	unit := compileAndLower(t, `
		function pick(flag: bool) -> i32 {
			if flag {
				return 1;
			}
			2
		}
	`)
	fn := findFunction(t, unit, "::test::pick")
	for _, b := range fn.Blocks {
		require.Empty(t, b.Phis, "no arm should need a phi when the other diverges")
	}
}

func TestLowerWhileLoopWiresBreakAndContinueToHeaderAndEnd(t *testing.T) {
	unit := compileAndLower(t, `
		function countdown(n: i32) {
			while n > 0 {
				if n == 1 {
					break;
				}
				continue;
			}
		}
	`)
	fn := findFunction(t, unit, "::test::countdown")

	var branchTargets []string
	for _, b := range fn.Blocks {
		if br, ok := b.Terminator.(*ir.Branch); ok {
			branchTargets = append(branchTargets, br.Target.Label)
		}
	}
	require.NotEmpty(t, branchTargets)

	var toHeader, toEnd bool
	for _, label := range branchTargets {
		toHeader = toHeader || strings.HasPrefix(label, "loop.header")
		toEnd = toEnd || strings.HasPrefix(label, "loop.end")
	}
	require.True(t, toHeader, "expected a branch to the loop header, got %v", branchTargets)
	require.True(t, toEnd, "expected `break` to branch to the loop end, got %v", branchTargets)
}

func TestLowerMethodCallBindsSelfAsFirstArgument(t *testing.T) {
	unit := compileAndLower(t, `
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
	fn := findFunction(t, unit, "::test::use_it")

	var call *ir.Call
	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if c, ok := instr.(*ir.Call); ok {
				call = c
			}
		}
	}
	require.NotNil(t, call, "expected a Call instruction")
	require.Len(t, call.Args, 1, "self should be the method's only argument here")
}

func TestLowerGlobalConstantFoldsArithmetic(t *testing.T) {
	unit := compileAndLower(t, `
		let base: i32 = 10;
		let doubled: i32 = base * 2;

		function main() -> i32 {
			0
		}
	`)
	var doubled *ir.DefinedGlobal
	for _, g := range unit.Globals {
		if g.Name == "::test::doubled" {
			doubled = g
		}
	}
	require.NotNil(t, doubled)
	want := &ir.Constant{Typ: types.I32, Value: int64(20)}
	if diff := cmp.Diff(want, doubled.Init); diff != "" {
		t.Errorf("folded global's structural shape mismatch (-want +got):\n%s", diff)
	}
}

func TestLowerGlobalRejectsSelfReference(t *testing.T) {
	c := elaborate.NewGlobalContext(target.Default64(), "test")
	_, err := c.CompilePackage(mapLocator{"": `
		let loopy: i32 = loopy + 1;
		function main() -> i32 { 0 }
	`}, parseFile)
	require.Nil(t, err)

	lc := lower.NewContext(c)
	foldErr := lc.FoldGlobals()
	require.NotNil(t, foldErr)
	require.Equal(t, diag.KindUnsupportedConstantExpression, foldErr.Kind)
}

func TestLowerStructLiteralRejectsMissingMember(t *testing.T) {
	c := elaborate.NewGlobalContext(target.Default64(), "test")
	_, err := c.CompilePackage(mapLocator{"": `
		struct Point {
			x: i32;
			y: i32;
		}

		function origin() -> Point {
			Point { x: 0 }
		}
	`}, parseFile)
	require.Nil(t, err)

	lc := lower.NewContext(c)
	require.Nil(t, lc.FoldGlobals())
	lowerErr := lc.LowerFunctions()
	require.NotNil(t, lowerErr)
	require.Equal(t, diag.KindMissingStructMembers, lowerErr.Kind)
}
