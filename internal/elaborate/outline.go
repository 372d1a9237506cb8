package elaborate

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/types"
)

// outlineFile installs every declared (possibly unresolved) symbol and
// type handle from one file's top-level declarations and `use`
// statements (spec §4.4 "outline pass"). Module-file discovery itself
// happens in CompilePackage, which calls this once per queued file.
func (c *GlobalContext) outlineFile(file *ast.File) *diag.Error {
	for _, use := range file.Uses {
		if err := c.outlineUse(use); err != nil {
			return err
		}
	}

	// Structs are outlined before everything else in the file so an
	// `implement` block preceding its target struct in source order
	// still finds a declared type symbol to resolve against.
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.StructDecl:
			if err := c.outlineStruct(d.Name, d.Span()); err != nil {
				return err
			}
		case *ast.OpaqueStructDecl:
			if err := c.outlineStruct(d.Name, d.Span()); err != nil {
				return err
			}
		}
	}
	for _, decl := range file.Decls {
		switch decl.(type) {
		case *ast.StructDecl, *ast.OpaqueStructDecl:
			continue
		}
		if err := c.outlineDecl(decl); err != nil {
			return err
		}
	}
	return nil
}

// outlineUse records `use p as n;` as an Alias symbol, and
// `use p::*;` as a glob-import against the current namespace, by
// resolving p's namespace immediately (spec §4.4 step 4).
func (c *GlobalContext) outlineUse(use *ast.UseDecl) *diag.Error {
	if use.Glob {
		ns, err := c.Resolver().ResolveNamespace(c.currentModule, use.Path, use.Span())
		if err != nil {
			return err
		}
		c.Names.AddGlobImport(c.currentModule, ns)
		return nil
	}

	name := use.Alias
	if name == nil {
		name = use.Path[len(use.Path)-1]
	}
	target := pathOf(use.Path)
	if err := c.Names.Define(c.currentModule, name.Name, types.AliasSymbol(target)); err != nil {
		return diag.New(diag.KindGlobalSymbolConflict, use.Span(), "%s", err.Error())
	}
	return nil
}

// pathOf converts a sequence of path segments into the AbsolutePath
// used as an alias's resolution target — relative to the module tree,
// since `use` paths are always module-tree paths (spec §4.2's
// base-type paths only ever arise from `<T>::...` syntax, never from a
// plain `use`).
func pathOf(segments []*ast.Ident) types.AbsolutePath {
	simple := types.SimplePath{}
	for _, seg := range segments {
		simple = simple.Child(seg.Name)
	}
	return types.AbsolutePath{Simple: simple}
}

// outlineDecl installs one top-level declaration's declared symbol.
// Struct declarations are outlined separately, before this is called
// (see outlineFile), so an implement block always finds its target.
func (c *GlobalContext) outlineDecl(decl ast.Decl) *diag.Error {
	switch d := decl.(type) {
	case *ast.ImplDecl:
		return c.outlineImpl(d)
	case *ast.FnDecl:
		return c.defineValue(d.Name, d.Span())
	case *ast.LetDecl:
		return c.defineValue(d.Name, d.Span())
	default:
		return diag.New(diag.KindExpectedStatement, decl.Span(), "unrecognized top-level declaration")
	}
}

// outlineStruct creates an Unresolved type handle for a struct
// declaration — covering both the opaque and ordinary forms, which
// are outlined identically and only diverge in the fill pass (spec
// §4.4 step 3).
func (c *GlobalContext) outlineStruct(name *ast.Ident, span diag.Span) *diag.Error {
	path := c.Names.Path(c.currentModule).Child(name.Name)
	handle := c.Types.CreateNamedType(path)
	if err := c.Names.Define(c.currentModule, name.Name, types.DeclaredTypeSymbol(handle)); err != nil {
		return diag.New(diag.KindGlobalSymbolConflict, span, "%s", err.Error())
	}
	c.declaredTypes = append(c.declaredTypes, handle)
	return nil
}

// outlineImpl resolves the implement block's target type — already
// outlined as a declared symbol regardless of source order, since
// outlineFile outlines every struct before any implement block — and
// outlines each method as a value symbol in the target's own
// namespace.
func (c *GlobalContext) outlineImpl(d *ast.ImplDecl) *diag.Error {
	target, err := c.resolveImplTarget(d.Target)
	if err != nil {
		return err
	}
	targetNS := c.Types.Namespace(target)
	for _, method := range d.Methods {
		if derr := c.defineValue(method.Name, method.Span(), targetNS); derr != nil {
			return derr
		}
	}
	return nil
}

// resolveImplTarget resolves an implement block's target type. Unlike
// resolveTypeExpr, this never reaches `Self` — an implement block is
// exactly where Self becomes defined, not where it can be used.
func (c *GlobalContext) resolveImplTarget(expr ast.TypeExpr) (types.Handle, *diag.Error) {
	named, ok := expr.(*ast.NamedTypeExpr)
	if !ok {
		return 0, diag.New(diag.KindNotAType, expr.Span(), "implement target must be a named type")
	}
	sym, err := c.Resolver().Resolve(c.currentModule, named.Segments, named.Span())
	if err != nil {
		return 0, err
	}
	if sym.Kind != types.SymbolType {
		return 0, diag.New(diag.KindNotAType, named.Span(), "implement target does not name a type")
	}
	return sym.Type, nil
}

// defineValue installs a declared (unresolved) value symbol for a
// function or global `let`, in ns if given, else the current module.
func (c *GlobalContext) defineValue(name *ast.Ident, span diag.Span, ns ...types.NamespaceHandle) *diag.Error {
	target := c.currentModule
	if len(ns) > 0 {
		target = ns[0]
	}
	if err := c.Names.Define(target, name.Name, types.DeclaredValueSymbol()); err != nil {
		return diag.New(diag.KindGlobalSymbolConflict, span, "%s", err.Error())
	}
	return nil
}
