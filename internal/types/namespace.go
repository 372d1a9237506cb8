package types

import "fmt"

// NamespaceHandle is the stable identity of a namespace (spec §3
// "Namespace handle").
type NamespaceHandle int

// Root is the reserved root namespace; every package root is a child
// of it.
const Root NamespaceHandle = 0

// SymbolKind tags what a Symbol refers to.
type SymbolKind int

const (
	SymbolAlias SymbolKind = iota
	SymbolModule
	SymbolType
	SymbolValue
)

// Symbol is a namespace entry (spec §3 "Symbol").
type Symbol struct {
	Kind SymbolKind

	AliasTarget AbsolutePath  // SymbolAlias
	Module      NamespaceHandle // SymbolModule
	Type        Handle        // SymbolType
	Value       interface{}   // SymbolValue — the function's or global's types.Handle, set by the fill pass

	// Declared marks an outline-phase forward declaration: a Type
	// symbol whose handle is still UnresolvedRepr, or a Value symbol
	// with no value attached yet. Only a Declared entry may be
	// completed in place by a later Define call without raising
	// GlobalSymbolConflict (spec §3).
	Declared bool
}

// AliasSymbol builds a Symbol for `use p as n;`.
func AliasSymbol(target AbsolutePath) Symbol {
	return Symbol{Kind: SymbolAlias, AliasTarget: target}
}

// ModuleSymbol builds a Symbol naming a nested module.
func ModuleSymbol(ns NamespaceHandle) Symbol {
	return Symbol{Kind: SymbolModule, Module: ns}
}

// DeclaredTypeSymbol builds an outline-phase forward declaration for a
// struct: Type points at a freshly created UnresolvedRepr handle.
func DeclaredTypeSymbol(handle Handle) Symbol {
	return Symbol{Kind: SymbolType, Type: handle, Declared: true}
}

// TypeSymbol builds a completed Symbol naming a resolved type.
func TypeSymbol(handle Handle) Symbol {
	return Symbol{Kind: SymbolType, Type: handle}
}

// DeclaredValueSymbol builds an outline-phase forward declaration for
// a function or global `let`, with no value attached yet.
func DeclaredValueSymbol() Symbol {
	return Symbol{Kind: SymbolValue, Declared: true}
}

// ValueSymbol builds a completed Symbol naming a function or global
// `let`.
func ValueSymbol(value interface{}) Symbol {
	return Symbol{Kind: SymbolValue, Value: value}
}

// unresolved reports whether this symbol is still a bare declaration.
// Only such entries may be completed in place without a
// GlobalSymbolConflict (spec §3 "Defining a symbol... is allowed only
// when the prior entry was a declaration").
func (s Symbol) unresolved() bool {
	return s.Declared
}

// Namespace is a binding scope owned by a module or a type (spec §3).
type Namespace struct {
	path        AbsolutePath
	symbols     map[string]Symbol
	globImports []NamespaceHandle
}

func newNamespace(path AbsolutePath) *Namespace {
	return &Namespace{path: path, symbols: make(map[string]Symbol)}
}

// Path returns the namespace's absolute path.
func (n *Namespace) Path() AbsolutePath { return n.path }

// Find looks up name directly in this namespace, without walking glob
// imports or parents.
func (n *Namespace) Find(name string) (Symbol, bool) {
	sym, ok := n.symbols[name]
	return sym, ok
}

// GlobImports returns the glob-imported namespaces in declaration
// order.
func (n *Namespace) GlobImports() []NamespaceHandle {
	return n.globImports
}

// NamespaceRegistry interns namespaces and mediates symbol definition
// conflicts (spec §4.1 "Namespace registry").
type NamespaceRegistry struct {
	namespaces []*Namespace
}

// NewNamespaceRegistry creates a registry containing only the root
// namespace.
func NewNamespaceRegistry() *NamespaceRegistry {
	r := &NamespaceRegistry{}
	r.namespaces = append(r.namespaces, newNamespace(AtRoot()))
	return r
}

// Create installs a fresh, empty namespace at path and returns its
// handle.
func (r *NamespaceRegistry) Create(path AbsolutePath) NamespaceHandle {
	handle := NamespaceHandle(len(r.namespaces))
	r.namespaces = append(r.namespaces, newNamespace(path))
	return handle
}

func (r *NamespaceRegistry) ns(handle NamespaceHandle) *Namespace {
	return r.namespaces[handle]
}

// Namespace returns the namespace behind a handle.
func (r *NamespaceRegistry) Namespace(handle NamespaceHandle) *Namespace {
	return r.ns(handle)
}

// Count returns the number of namespaces currently interned,
// including the root.
func (r *NamespaceRegistry) Count() int {
	return len(r.namespaces)
}

// Path returns the absolute path of a namespace.
func (r *NamespaceRegistry) Path(handle NamespaceHandle) AbsolutePath {
	return r.ns(handle).path
}

// Define installs name -> symbol in ns. It succeeds unconditionally if
// no entry with that name exists yet; if one does, it succeeds only
// when the prior entry is an unresolved declaration that the new
// symbol completes (spec invariant 2: namespace uniqueness).
func (r *NamespaceRegistry) Define(ns NamespaceHandle, name string, symbol Symbol) error {
	namespace := r.ns(ns)
	prior, exists := namespace.symbols[name]
	if exists && !prior.unresolved() {
		return &ConflictError{Namespace: namespace.path, Name: name}
	}
	namespace.symbols[name] = symbol
	return nil
}

// Find looks up name directly within ns (no glob-import or parent
// walk; that is the resolver's job).
func (r *NamespaceRegistry) Find(ns NamespaceHandle, name string) (Symbol, bool) {
	return r.ns(ns).Find(name)
}

// AddGlobImport records `use path::*;` against ns, once path has
// already been resolved to the namespace it names.
func (r *NamespaceRegistry) AddGlobImport(ns NamespaceHandle, imported NamespaceHandle) {
	namespace := r.ns(ns)
	namespace.globImports = append(namespace.globImports, imported)
}

// ConflictError is GlobalSymbolConflict: name is already bound in
// Namespace by something other than an unresolved declaration.
type ConflictError struct {
	Namespace AbsolutePath
	Name      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("symbol %q already defined in namespace %s", e.Name, e.Namespace)
}
