// Package elaborate implements the two-pass outline/fill elaborator
// (spec §4.4): a global context threading the type and namespace
// registries through an outline pass (install declared-but-unresolved
// symbols and type handles for everything in every file) followed by
// a fill pass (complete struct layouts, function signatures, global
// types) that must observe every file's outline before it runs.
package elaborate

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/resolve"
	"github.com/korvus-lang/korvus/internal/target"
	"github.com/korvus-lang/korvus/internal/types"
)

// FileLocator maps a module path to the source it should be parsed
// from, mirroring the external file locator spec §4.4 describes: the
// elaborator discovers `module a::b;` declarations and asks the
// locator to turn that path into source text, rather than walking the
// filesystem itself.
type FileLocator interface {
	Load(path types.SimplePath) (source, filename string, err error)
}

// ParsedFile pairs a parsed compilation unit with the namespace its
// top-level declarations were outlined into.
type ParsedFile struct {
	File    *ast.File
	Module  types.NamespaceHandle
	Locator types.SimplePath
}

// GlobalContext is the single owned object threaded through the
// elaborator, resolver, and (later) lowerer: construct with target
// info, outline, fill, lower per function, drop (spec "Global mutable
// state").
type GlobalContext struct {
	Target      target.Info
	Types       *types.TypeRegistry
	Names       *types.NamespaceRegistry
	PackageRoot types.NamespaceHandle

	resolver *resolve.Context

	currentModule   types.NamespaceHandle
	currentSelfType *types.Handle

	functions     map[string]*FnSignature
	globals       map[string]*GlobalSignature
	declaredTypes []types.Handle
}

// NewGlobalContext creates a context with a fresh package root
// namespace named packageName, hung off the reserved root namespace.
func NewGlobalContext(t target.Info, packageName string) *GlobalContext {
	names := types.NewNamespaceRegistry()
	reg := types.NewTypeRegistry(names)
	packageRoot := names.Create(types.AbsolutePath{Simple: types.SimplePath{}.Child(packageName)})

	c := &GlobalContext{
		Target:      t,
		Types:       reg,
		Names:       names,
		PackageRoot: packageRoot,
		functions:   make(map[string]*FnSignature),
		globals:     make(map[string]*GlobalSignature),
	}
	c.resolver = &resolve.Context{Names: names, Reg: reg, PackageRoot: packageRoot}
	c.currentModule = packageRoot
	return c
}

// CurrentModule returns the namespace the elaborator is currently
// outlining or filling declarations into.
func (c *GlobalContext) CurrentModule() types.NamespaceHandle { return c.currentModule }

// CurrentSelfType returns the type `Self` refers to, or nil outside a
// struct body or implement block.
func (c *GlobalContext) CurrentSelfType() *types.Handle { return c.currentSelfType }

// Resolver returns the path resolver wired to this context's
// registries, current module, and current Self type — shared with the
// (future) lowerer so both stages see the same ambient state.
func (c *GlobalContext) Resolver() *resolve.Context {
	c.resolver.SelfType = c.currentSelfType
	return c.resolver
}

// DeclaredTypes returns every struct handle outlined anywhere in the
// package, ordinary and opaque alike, in outline order — the lowerer
// needs this list to know which aggregate layouts the emitter must
// declare, since the type registry itself has no way to enumerate its
// own named entries.
func (c *GlobalContext) DeclaredTypes() []types.Handle {
	return c.declaredTypes
}

func (c *GlobalContext) enterModule(ns types.NamespaceHandle) (restore func()) {
	prev := c.currentModule
	c.currentModule = ns
	return func() { c.currentModule = prev }
}

func (c *GlobalContext) enterSelfType(h types.Handle) (restore func()) {
	prev := c.currentSelfType
	c.currentSelfType = &h
	return func() { c.currentSelfType = prev }
}

// CompilePackage drives the whole elaboration pipeline for one
// package: breadth-first discovery and outlining of every module file
// reachable from the package root (spec §4.4's "outline pass... queue
// additional module-files"), then a single fill pass over everything
// discovered, then post-fill finalisation (pointer-sized integers,
// then size/alignment computation). The *current module* pointer is
// restored around each file exactly as spec §4.4 describes.
func (c *GlobalContext) CompilePackage(locator FileLocator, parseFile func(filename, source string) (*ast.File, []*diag.Error)) ([]*ParsedFile, *diag.Error) {
	type job struct {
		namespace types.NamespaceHandle
		path      types.SimplePath
	}

	queue := []job{{namespace: c.PackageRoot, path: types.SimplePath{}}}
	visited := make(map[string]bool)
	var parsed []*ParsedFile

	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]

		key := j.path.String()
		if visited[key] {
			continue
		}
		visited[key] = true

		source, filename, err := locator.Load(j.path)
		if err != nil {
			return nil, diag.New(diag.KindSourceOpen, diag.Span{}, "loading module %s: %v", j.path, err)
		}

		file, errs := parseFile(filename, source)
		if len(errs) > 0 {
			return nil, errs[0]
		}

		restore := c.enterModule(j.namespace)
		if derr := c.outlineFile(file); derr != nil {
			restore()
			return nil, derr
		}
		restore()

		parsed = append(parsed, &ParsedFile{File: file, Module: j.namespace, Locator: j.path})

		for _, mod := range file.Mods {
			childNS, derr := c.declareModulePath(j.namespace, mod.Path)
			if derr != nil {
				return nil, derr
			}
			childPath := j.path
			for _, seg := range mod.Path {
				childPath = childPath.Child(seg.Name)
			}
			queue = append(queue, job{namespace: childNS, path: childPath})
		}
	}

	for _, pf := range parsed {
		restore := c.enterModule(pf.Module)
		derr := c.fillFile(pf.File)
		restore()
		if derr != nil {
			return nil, derr
		}
	}

	c.Types.ResolvePointerSizedIntegers(c.Target)
	if err := c.Types.CalculateProperties(c.Target); err != nil {
		if rerr, ok := err.(*types.RecursiveTypeDefinitionError); ok {
			return nil, diag.New(diag.KindRecursiveTypeDefinition, diag.Span{}, "%s", rerr.Error())
		}
		return nil, diag.New(diag.KindRecursiveTypeDefinition, diag.Span{}, "%s", err.Error())
	}

	return parsed, nil
}

// declareModulePath installs (or reuses) a chain of nested module
// namespaces under parent for a `module a::b;` declaration, returning
// the namespace of the final segment — the one the queued file's
// top-level declarations will be outlined into.
func (c *GlobalContext) declareModulePath(parent types.NamespaceHandle, segments []*ast.Ident) (types.NamespaceHandle, *diag.Error) {
	current := parent
	for _, seg := range segments {
		if sym, ok := c.Names.Find(current, seg.Name); ok {
			if sym.Kind != types.SymbolModule {
				return 0, diag.New(diag.KindGlobalSymbolConflict, seg.Span(),
					"%q is already defined and is not a module", seg.Name)
			}
			current = sym.Module
			continue
		}
		path := c.Names.Path(current).Child(seg.Name)
		child := c.Names.Create(path)
		if err := c.Names.Define(current, seg.Name, types.ModuleSymbol(child)); err != nil {
			return 0, diag.New(diag.KindGlobalSymbolConflict, seg.Span(), "%s", err.Error())
		}
		current = child
	}
	return current, nil
}
