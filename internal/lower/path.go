package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// lowerPathExpr resolves a multi-segment (or scope-miss single-segment)
// path against the current module, naming a function or a global
// `let` (spec §4.5's Path case, beyond the local-scope fast path
// already tried by the caller).
func (lc *LocalContext) lowerPathExpr(e *ast.PathExpr) (Value, *diag.Error) {
	container, err := lc.ctx.Resolver().ResolveNamespace(lc.ctx.CurrentModule(), e.Segments[:len(e.Segments)-1], e.Span())
	if err != nil {
		return Value{}, err
	}
	last := e.Segments[len(e.Segments)-1]
	sym, err := lc.ctx.Resolver().Resolve(lc.ctx.CurrentModule(), e.Segments, e.Span())
	if err != nil {
		return Value{}, err
	}
	return lc.valueFromSymbol(sym, container, last.Name, e.Span())
}

// lowerPathBaseExpr resolves `<T>::member`-style associated paths: the
// base type's own namespace stands in for the usual "current module"
// starting point (spec §4.2 "base-type path").
func (lc *LocalContext) lowerPathBaseExpr(e *ast.PathBaseExpr) (Value, *diag.Error) {
	base, err := lc.ctx.ResolveTypeExpr(e.Base)
	if err != nil {
		return Value{}, err
	}
	container := lc.ctx.Types.Namespace(base)
	for _, seg := range e.Segments[:len(e.Segments)-1] {
		sym, ok := lc.ctx.Names.Find(container, seg.Name)
		if !ok {
			return Value{}, diag.New(diag.KindUndefinedSymbol, e.Span(), "undefined symbol %q", seg.Name)
		}
		next, nerr := lc.namespaceOfSymbol(sym, seg.Span())
		if nerr != nil {
			return Value{}, nerr
		}
		container = next
	}
	last := e.Segments[len(e.Segments)-1]
	sym, ok := lc.ctx.Names.Find(container, last.Name)
	if !ok {
		return Value{}, diag.New(diag.KindUndefinedSymbol, e.Span(), "undefined symbol %q", last.Name)
	}
	return lc.valueFromSymbol(sym, container, last.Name, e.Span())
}

// namespaceOfSymbol descends into the namespace a Module or Type symbol
// contributes, a scaled-down copy of resolve.Context's unexported
// namespaceOf for the rarer base-type path chain.
func (lc *LocalContext) namespaceOfSymbol(sym types.Symbol, span diag.Span) (types.NamespaceHandle, *diag.Error) {
	switch sym.Kind {
	case types.SymbolModule:
		return sym.Module, nil
	case types.SymbolType:
		return lc.ctx.Types.Namespace(sym.Type), nil
	default:
		return 0, diag.New(diag.KindUndefinedSymbol, span, "path segment does not name a module or type")
	}
}

// valueFromSymbol turns a resolved Value symbol into a GlobalRef
// operand. A function or global `let`'s Value field holds its type
// handle (the fill pass never has an IR value to store); the lowerer
// is what first gives that name an address, by its fully qualified
// path (spec §4.4/§4.5 boundary).
func (lc *LocalContext) valueFromSymbol(sym types.Symbol, container types.NamespaceHandle, name string, span diag.Span) (Value, *diag.Error) {
	if sym.Kind != types.SymbolValue {
		return Value{}, diag.New(diag.KindUndefinedSymbol, span, "%q does not name a value", name)
	}
	handle, _ := sym.Value.(types.Handle)
	qualified := lc.ctx.Names.Path(container).Child(name).String()
	return Rvalue(&ir.GlobalRef{Name: qualified, Typ: handle}, handle), nil
}
