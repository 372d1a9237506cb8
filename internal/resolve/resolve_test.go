package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/resolve"
	"github.com/korvus-lang/korvus/internal/types"
)

func ident(name string) *ast.Ident {
	return ast.NewIdent(name, diag.Span{})
}

func newFixture(t *testing.T) (*resolve.Context, types.NamespaceHandle) {
	t.Helper()
	names := types.NewNamespaceRegistry()
	reg := types.NewTypeRegistry(names)

	pkgPath := types.AbsolutePath{Simple: types.SimplePath{Segments: []string{"pkg"}}}
	pkgRoot := names.Create(pkgPath)

	widget := reg.CreateNamedType(pkgPath.Child("Widget"))
	require.NoError(t, names.Define(pkgRoot, "Widget", types.TypeSymbol(widget)))

	return &resolve.Context{Names: names, Reg: reg, PackageRoot: pkgRoot}, pkgRoot
}

func TestResolvesOrdinaryName(t *testing.T) {
	ctx, pkgRoot := newFixture(t)

	sym, err := ctx.Resolve(pkgRoot, []*ast.Ident{ident("Widget")}, diag.Span{})
	require.Nil(t, err)
	require.Equal(t, types.SymbolType, sym.Kind)
}

func TestUndefinedSymbol(t *testing.T) {
	ctx, pkgRoot := newFixture(t)

	_, err := ctx.Resolve(pkgRoot, []*ast.Ident{ident("Nope")}, diag.Span{})
	require.NotNil(t, err)
	require.Equal(t, diag.KindUndefinedSymbol, err.Kind)
}

func TestSuperAtPackageRootFails(t *testing.T) {
	ctx, pkgRoot := newFixture(t)

	_, err := ctx.Resolve(pkgRoot, []*ast.Ident{ident("super"), ident("Widget")}, diag.Span{})
	require.NotNil(t, err)
	require.Equal(t, diag.KindInvalidSuper, err.Kind)
}

func TestSelfOutsideImplementFails(t *testing.T) {
	ctx, pkgRoot := newFixture(t)

	_, err := ctx.Resolve(pkgRoot, []*ast.Ident{ident("Self")}, diag.Span{})
	require.NotNil(t, err)
	require.Equal(t, diag.KindNoSelfType, err.Kind)
}

func TestAmbiguousGlobImport(t *testing.T) {
	names := types.NewNamespaceRegistry()
	reg := types.NewTypeRegistry(names)

	aPath := types.AbsolutePath{Simple: types.SimplePath{Segments: []string{"a"}}}
	bPath := types.AbsolutePath{Simple: types.SimplePath{Segments: []string{"b"}}}
	aNs := names.Create(aPath)
	bNs := names.Create(bPath)

	wa := reg.CreateNamedType(aPath.Child("Thing"))
	wb := reg.CreateNamedType(bPath.Child("Thing"))
	require.NoError(t, names.Define(aNs, "Thing", types.TypeSymbol(wa)))
	require.NoError(t, names.Define(bNs, "Thing", types.TypeSymbol(wb)))

	userPath := types.AbsolutePath{Simple: types.SimplePath{Segments: []string{"user"}}}
	userNs := names.Create(userPath)
	names.AddGlobImport(userNs, aNs)
	names.AddGlobImport(userNs, bNs)

	ctx := &resolve.Context{Names: names, Reg: reg, PackageRoot: userNs}
	_, err := ctx.Resolve(userNs, []*ast.Ident{ident("Thing")}, diag.Span{})
	require.NotNil(t, err)
	require.Equal(t, diag.KindAmbiguousSymbol, err.Kind)
}
