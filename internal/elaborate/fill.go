package elaborate

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/types"
)

// FnSignature is the fill pass's output for one function or method: a
// resolved parameter/return type list paired with the still-unlowered
// body, ready for the lowerer (spec §4.5) to consume once the whole
// package has been filled.
type FnSignature struct {
	Type   types.Handle // the interned function type
	Params []types.Handle
	Return types.Handle // types.Void if the function declares no return type
	Self   *types.Handle
	Decl   *ast.FnDecl
}

// Functions accumulates every function/method signature the fill pass
// built, keyed by the fully-qualified path string of its declaring
// namespace + name, for the lowerer to pick up afterwards.
func (c *GlobalContext) Functions() map[string]*FnSignature {
	return c.functions
}

// fillFile completes every declaration in one file, now that every
// file's outline (including this one's) has already run (spec §4.4
// "fill pass... must observe every file's outline").
func (c *GlobalContext) fillFile(file *ast.File) *diag.Error {
	for _, decl := range file.Decls {
		if err := c.fillDecl(decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *GlobalContext) fillDecl(decl ast.Decl) *diag.Error {
	switch d := decl.(type) {
	case *ast.StructDecl:
		return c.fillStruct(d)
	case *ast.OpaqueStructDecl:
		return c.fillOpaqueStruct(d)
	case *ast.ImplDecl:
		return c.fillImpl(d)
	case *ast.FnDecl:
		_, err := c.fillFn(d, c.currentModule, nil)
		return err
	case *ast.LetDecl:
		return c.fillLet(d)
	default:
		return nil
	}
}

// fillStruct resolves every member's type and installs the completed
// StructureRepr over the handle outline created (spec §4.4 step 1): a
// member may reference a not-yet-filled struct through a pointer,
// since pointers never need their pointee's size.
func (c *GlobalContext) fillStruct(d *ast.StructDecl) *diag.Error {
	handle, err := c.lookupOwnType(d.Name, d.Span())
	if err != nil {
		return err
	}

	restore := c.enterSelfType(handle)
	defer restore()

	members := make([]types.Member, len(d.Fields))
	for i, field := range d.Fields {
		memberType, ferr := c.resolveTypeExpr(field.Type)
		if ferr != nil {
			return ferr
		}
		members[i] = types.Member{Name: field.Name.Name, Type: memberType}
	}

	c.Types.UpdateRepr(handle, types.StructureRepr{Name: d.Name.Name, Members: members})
	return nil
}

func (c *GlobalContext) fillOpaqueStruct(d *ast.OpaqueStructDecl) *diag.Error {
	handle, err := c.lookupOwnType(d.Name, d.Span())
	if err != nil {
		return err
	}
	c.Types.UpdateRepr(handle, types.OpaqueStructureRepr{Name: d.Name.Name})
	return nil
}

// lookupOwnType finds the type handle outline installed for name in
// the current module — it must be the Declared symbol from the
// outline pass, since the fill pass only ever completes it once (spec
// §4.4 "type elaboration transitions Unresolved -> Resolved exactly
// once").
func (c *GlobalContext) lookupOwnType(name *ast.Ident, span diag.Span) (types.Handle, *diag.Error) {
	sym, ok := c.Names.Find(c.currentModule, name.Name)
	if !ok || sym.Kind != types.SymbolType {
		return 0, diag.New(diag.KindGlobalSymbolConflict, span, "%q was not outlined as a type", name.Name)
	}
	return sym.Type, nil
}

// fillImpl builds each method's signature with Self bound to the
// implement block's target type.
func (c *GlobalContext) fillImpl(d *ast.ImplDecl) *diag.Error {
	target, err := c.resolveImplTarget(d.Target)
	if err != nil {
		return err
	}
	targetNS := c.Types.Namespace(target)

	restore := c.enterSelfType(target)
	defer restore()

	for _, method := range d.Methods {
		selfType := target
		if _, ferr := c.fillFn(method, targetNS, &selfType); ferr != nil {
			return ferr
		}
	}
	return nil
}

// fillFn builds a function's signature, interns its function type, and
// installs the completed Value symbol over the Declared placeholder
// the outline pass left (spec §4.4 step 2). selfType is non-nil for a
// method, whose implicit receiver is not itself a declared parameter.
func (c *GlobalContext) fillFn(d *ast.FnDecl, ns types.NamespaceHandle, selfType *types.Handle) (*FnSignature, *diag.Error) {
	params := make([]types.Handle, len(d.Params))
	for i, p := range d.Params {
		h, err := c.resolveTypeExpr(p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = h
	}

	ret := types.Void
	if d.ReturnType != nil {
		h, err := c.resolveTypeExpr(d.ReturnType)
		if err != nil {
			return nil, err
		}
		ret = h
	}

	fnType := c.Types.InternFunction(types.FunctionSignature{
		ReturnType:     ret,
		ParameterTypes: params,
		Variadic:       d.IsVariadic,
	})

	if err := c.Names.Define(ns, d.Name.Name, types.ValueSymbol(fnType)); err != nil {
		return nil, diag.New(diag.KindGlobalSymbolConflict, d.Span(), "%s", err.Error())
	}

	sig := &FnSignature{Type: fnType, Params: params, Return: ret, Self: selfType, Decl: d}
	c.functions[c.qualifiedName(ns, d.Name.Name)] = sig
	return sig, nil
}

// GlobalSignature is the fill pass's output for one package-level
// `let`: its declared type, the namespace it was defined into, and the
// still-unfolded declaration, ready for the lowerer to constant-fold
// once the whole package has been filled.
type GlobalSignature struct {
	Type      types.Handle
	Namespace types.NamespaceHandle
	Decl      *ast.LetDecl
}

// Globals accumulates every package-level `let` the fill pass built,
// keyed by the fully-qualified path string of its declaring namespace
// + name, for the lowerer to constant-fold afterwards.
func (c *GlobalContext) Globals() map[string]*GlobalSignature {
	return c.globals
}

// fillLet determines a global's declared type — required, never
// inferred (spec §4.4 step 3, MustSpecifyTypeForGlobal) — and installs
// the completed Value symbol. The lowerer evaluates the initializer as
// a constant later; the fill pass only needs the type.
func (c *GlobalContext) fillLet(d *ast.LetDecl) *diag.Error {
	if d.Type == nil {
		return diag.New(diag.KindMustSpecifyTypeForGlobal, d.Span(), "global `let %s` requires an explicit type", d.Name.Name)
	}
	h, err := c.resolveTypeExpr(d.Type)
	if err != nil {
		return err
	}
	if derr := c.Names.Define(c.currentModule, d.Name.Name, types.ValueSymbol(h)); derr != nil {
		return diag.New(diag.KindGlobalSymbolConflict, d.Span(), "%s", derr.Error())
	}
	c.globals[c.qualifiedName(c.currentModule, d.Name.Name)] = &GlobalSignature{
		Type: h, Namespace: c.currentModule, Decl: d,
	}
	return nil
}

func (c *GlobalContext) qualifiedName(ns types.NamespaceHandle, name string) string {
	return c.Names.Path(ns).Child(name).String()
}
