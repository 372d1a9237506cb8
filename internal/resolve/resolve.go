// Package resolve maps a syntactic path (`a::b::c`, `Self::m`,
// `<T>::m`) to a Symbol (spec §4.2). It is purely a namespace walk: it
// never installs anything, only looks things up through
// types.NamespaceRegistry and types.TypeRegistry.
package resolve

import (
	"strings"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/types"
)

// Context carries the registries and ambient state a path resolution
// needs: the current self-type (set while inside an `implement` block
// or a struct body, per spec §4.2's `Self` rule) and the package root
// namespace (the target of a bare `package`/`crate` segment).
type Context struct {
	Names       *types.NamespaceRegistry
	Reg         *types.TypeRegistry
	PackageRoot types.NamespaceHandle
	SelfType    *types.Handle
}

const maxAliasChain = 64

// Resolve walks segments starting from current, returning the symbol
// the full path names or a span-bearing diagnostic. span is used for
// every error raised against the path as a whole (spec errors carry
// the path's own span, not a sub-segment's).
func (c *Context) Resolve(current types.NamespaceHandle, segments []*ast.Ident, span diag.Span) (types.Symbol, *diag.Error) {
	if len(segments) == 0 {
		panic("resolve: empty path")
	}

	container := current
	for _, seg := range segments[:len(segments)-1] {
		ns, err := c.step(container, seg, span)
		if err != nil {
			return types.Symbol{}, err
		}
		container = ns
	}

	return c.resolveFinal(container, segments[len(segments)-1], span)
}

// ResolveNamespace walks every segment of a path as a module/type step
// (spec §4.4's glob-import and `module` path handling need the
// namespace a path names, not a final symbol inside it). An empty
// path resolves to current itself.
func (c *Context) ResolveNamespace(current types.NamespaceHandle, segments []*ast.Ident, span diag.Span) (types.NamespaceHandle, *diag.Error) {
	container := current
	for _, seg := range segments {
		ns, err := c.step(container, seg, span)
		if err != nil {
			return 0, err
		}
		container = ns
	}
	return container, nil
}

// step interprets one non-final path segment, producing the namespace
// the next segment resolves against.
func (c *Context) step(container types.NamespaceHandle, seg *ast.Ident, span diag.Span) (types.NamespaceHandle, *diag.Error) {
	switch seg.Name {
	case "package", "crate":
		return c.PackageRoot, nil
	case "super":
		return c.superOf(container, span)
	case "Self":
		if c.SelfType == nil {
			return 0, diag.New(diag.KindNoSelfType, span, "`Self` used outside an implement block or struct body")
		}
		return c.Reg.Namespace(*c.SelfType), nil
	default:
		sym, err := c.lookupName(container, seg.Name, span)
		if err != nil {
			return 0, err
		}
		return c.namespaceOf(sym, seg.Name, span)
	}
}

// resolveFinal interprets the last path segment, returning a Symbol
// rather than descending into another namespace.
func (c *Context) resolveFinal(container types.NamespaceHandle, seg *ast.Ident, span diag.Span) (types.Symbol, *diag.Error) {
	switch seg.Name {
	case "package", "crate":
		return types.ModuleSymbol(c.PackageRoot), nil
	case "super":
		super, err := c.superOf(container, span)
		if err != nil {
			return types.Symbol{}, err
		}
		return types.ModuleSymbol(super), nil
	case "Self":
		if c.SelfType == nil {
			return types.Symbol{}, diag.New(diag.KindNoSelfType, span, "`Self` used outside an implement block or struct body")
		}
		return types.TypeSymbol(*c.SelfType), nil
	default:
		return c.lookupName(container, seg.Name, span)
	}
}

func (c *Context) superOf(container types.NamespaceHandle, span diag.Span) (types.NamespaceHandle, *diag.Error) {
	if container == c.PackageRoot {
		return 0, diag.New(diag.KindInvalidSuper, span, "`super` has no parent module at the package root")
	}
	path := c.Names.Path(container)
	parent, ok := path.Simple.Parent()
	if !ok || path.BaseType != nil {
		return 0, diag.New(diag.KindInvalidSuper, span, "`super` has no parent module at the package root")
	}
	parentPath := types.AbsolutePath{Simple: parent}
	ns, ok := c.findNamespaceByPath(parentPath)
	if !ok {
		return 0, diag.New(diag.KindInvalidSuper, span, "`super` has no parent module at the package root")
	}
	return ns, nil
}

// findNamespaceByPath linearly scans every namespace the registry
// owns for one whose path matches target. Module nesting is shallow
// (spec's module tree is a handful of levels deep at most), so this
// avoids keeping a second path -> handle index in sync with Create.
func (c *Context) findNamespaceByPath(target types.AbsolutePath) (types.NamespaceHandle, bool) {
	for h := types.Root; int(h) < c.Names.Count(); h++ {
		if pathsEqual(c.Names.Namespace(h).Path(), target) {
			return h, true
		}
	}
	return 0, false
}

func pathsEqual(a, b types.AbsolutePath) bool {
	return a.String() == b.String()
}

// namespaceOf returns the namespace a symbol contributes to path
// resolution: a Module symbol names its namespace directly, a Type
// symbol names its associated namespace, and an Alias is followed
// first. Anything else (a Value) cannot be descended into further.
func (c *Context) namespaceOf(sym types.Symbol, name string, span diag.Span) (types.NamespaceHandle, *diag.Error) {
	sym, err := c.followAlias(sym, span)
	if err != nil {
		return 0, err
	}
	switch sym.Kind {
	case types.SymbolModule:
		return sym.Module, nil
	case types.SymbolType:
		return c.Reg.Namespace(sym.Type), nil
	default:
		return 0, diag.New(diag.KindUndefinedSymbol, span, "%q does not name a module or type", name)
	}
}

// followAlias transparently chases Alias symbols to the value they
// target. Aliases target already-resolved paths (spec §4.2), so no
// cycle guard beyond a generous bound is needed; the bound only
// protects against a future authoring bug introducing one.
func (c *Context) followAlias(sym types.Symbol, span diag.Span) (types.Symbol, *diag.Error) {
	for i := 0; sym.Kind == types.SymbolAlias; i++ {
		if i >= maxAliasChain {
			return types.Symbol{}, diag.New(diag.KindUndefinedSymbol, span, "alias chain too long")
		}
		target := sym.AliasTarget
		ns, ok := c.findNamespaceByPath(types.AbsolutePath{BaseType: target.BaseType, Simple: mustParent(target)})
		if !ok {
			return types.Symbol{}, diag.New(diag.KindUndefinedSymbol, span, "alias target %s not found", target)
		}
		name, ok := target.Simple.TailName()
		if !ok {
			return types.Symbol{}, diag.New(diag.KindUndefinedSymbol, span, "alias target %s names no symbol", target)
		}
		found, ok := c.Names.Find(ns, name)
		if !ok {
			return types.Symbol{}, diag.New(diag.KindUndefinedSymbol, span, "alias target %s not found", target)
		}
		sym = found
	}
	return sym, nil
}

func mustParent(p types.AbsolutePath) types.SimplePath {
	parent, _ := p.Simple.Parent()
	return parent
}

// lookupName implements the identifier-segment rule: an ordinary
// lookup in ns, falling back to a deterministic walk of ns's
// glob-imports when the name is not found directly. Two glob-imports
// exposing the same name is AmbiguousSymbol, listing every candidate
// path (spec §4.2).
func (c *Context) lookupName(ns types.NamespaceHandle, name string, span diag.Span) (types.Symbol, *diag.Error) {
	if sym, ok := c.Names.Find(ns, name); ok {
		return c.followAlias(sym, span)
	}

	var candidates []string
	var found types.Symbol
	var foundAny bool
	for _, imported := range c.Names.Namespace(ns).GlobImports() {
		sym, ok := c.Names.Find(imported, name)
		if !ok {
			continue
		}
		candidates = append(candidates, c.Names.Path(imported).Child(name).String())
		found, foundAny = sym, true
	}

	switch {
	case len(candidates) > 1:
		return types.Symbol{}, diag.New(diag.KindAmbiguousSymbol, span,
			"%q is ambiguous between %s", name, strings.Join(candidates, ", "))
	case foundAny:
		return c.followAlias(found, span)
	default:
		return types.Symbol{}, diag.New(diag.KindUndefinedSymbol, span,
			"undefined symbol %q in namespace %s", name, c.Names.Path(ns))
	}
}
