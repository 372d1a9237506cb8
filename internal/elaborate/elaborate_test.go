package elaborate_test

import (
	"fmt"
	"testing"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/parser"
	"github.com/korvus-lang/korvus/internal/target"
	"github.com/korvus-lang/korvus/internal/types"
	"github.com/stretchr/testify/require"
)

// mapLocator is an in-memory FileLocator keyed by a module path's
// "::"-joined string, with "" naming the package root file.
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

func compile(t *testing.T, root string, rest map[string]string) (*elaborate.GlobalContext, []*elaborate.ParsedFile, *diag.Error) {
	t.Helper()
	locator := mapLocator{}
	for k, v := range rest {
		locator[k] = v
	}
	locator[""] = root

	c := elaborate.NewGlobalContext(target.Default64(), "test")
	parsed, err := c.CompilePackage(locator, parseFile)
	return c, parsed, err
}

func TestOutlineFillStructAndImpl(t *testing.T) {
	c, parsed, err := compile(t, `
		struct Point {
			x: i32;
			y: i32;
		}

		implement Point {
			function sum(self: *Point) -> i32 {
				0
			}
		}

		function main() -> i32 {
			0
		}
	`, nil)
	require.Nil(t, err)
	require.Len(t, parsed, 1)

	sym, ok := c.Names.Find(c.PackageRoot, "Point")
	require.True(t, ok)
	require.Equal(t, types.SymbolType, sym.Kind)
	require.False(t, sym.Declared)

	repr := c.Types.Repr(sym.Type)
	structRepr, ok := repr.(types.StructureRepr)
	require.True(t, ok)
	require.Len(t, structRepr.Members, 2)
	require.Equal(t, "x", structRepr.Members[0].Name)
	require.Equal(t, types.I32, structRepr.Members[0].Type)

	size, serr := c.Types.Size(sym.Type)
	require.NoError(t, serr)
	require.Equal(t, uint64(8), size)

	_, foundFn := c.Names.Find(c.PackageRoot, "main")
	require.True(t, foundFn)

	foundMethod := false
	for key := range c.Functions() {
		if key == "::test::Point::sum" {
			foundMethod = true
		}
	}
	require.True(t, foundMethod, "expected a filled signature for Point::sum, got %v", c.Functions())
}

func TestImplBeforeStructInSameFile(t *testing.T) {
	_, _, err := compile(t, `
		implement Box {
			function get(self: *Box) -> i32 {
				0
			}
		}

		struct Box {
			value: i32;
		}
	`, nil)
	require.Nil(t, err, "an implement block preceding its struct in source order must still resolve")
}

func TestGlobalLetMustSpecifyType(t *testing.T) {
	_, _, err := compile(t, `
		let count = 0;
	`, nil)
	require.NotNil(t, err)
	require.Equal(t, diag.KindMustSpecifyTypeForGlobal, err.Kind)
}

func TestDuplicateTopLevelNameConflicts(t *testing.T) {
	_, _, err := compile(t, `
		struct Thing {
			x: i32;
		}

		function Thing() -> i32 {
			0
		}
	`, nil)
	require.NotNil(t, err)
	require.Equal(t, diag.KindGlobalSymbolConflict, err.Kind)
}

func TestGlobImportResolvesNestedModule(t *testing.T) {
	_, _, err := compile(t, `
		module helpers;
		use helpers::*;

		function main() -> i32 {
			0
		}
	`, map[string]string{
		"helpers": `
			struct Helper {
				tag: i32;
			}
		`,
	})
	require.Nil(t, err)
}

func TestArrayTypeWithIntegerLiteralLength(t *testing.T) {
	c, _, err := compile(t, `
		struct Buffer {
			data: [u8; 16];
		}
	`, nil)
	require.Nil(t, err)

	sym, ok := c.Names.Find(c.PackageRoot, "Buffer")
	require.True(t, ok)
	size, serr := c.Types.Size(sym.Type)
	require.NoError(t, serr)
	require.Equal(t, uint64(16), size)
}

func TestArrayTypeWithNonLiteralLengthIsRejected(t *testing.T) {
	_, _, err := compile(t, `
		let width: i32 = 4;

		struct Buffer {
			data: [u8; width];
		}
	`, nil)
	require.NotNil(t, err)
	require.Equal(t, diag.KindNonConstantArrayLength, err.Kind)
}

func TestRecursiveStructDetected(t *testing.T) {
	_, _, err := compile(t, `
		struct Node {
			next: Node;
		}
	`, nil)
	require.NotNil(t, err)
	require.Equal(t, diag.KindRecursiveTypeDefinition, err.Kind)
}

func TestPointerToSelfIsNotRecursive(t *testing.T) {
	_, _, err := compile(t, `
		struct Node {
			next: *mut Node;
		}
	`, nil)
	require.Nil(t, err, "a pointer member breaks the recursion, the struct is well-formed")
}
