package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/convert"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// emitCall appends Call and produces the caller-visible result (spec
// §4.5: void yields no result register, never seals the block with
// Unreachable and yields Value::Never, anything else allocates a
// fresh result register).
func (lc *LocalContext) emitCall(callee ir.Operand, ret types.Handle, args []ir.Operand) (Value, *diag.Error) {
	switch ret {
	case types.Void:
		lc.current.AppendInstruction(&ir.Call{Callee: callee, Args: args})
		return VoidValue(), nil
	case types.Never:
		lc.current.AppendInstruction(&ir.Call{Callee: callee, Args: args})
		lc.current.Seal(&ir.Unreachable{})
		return NeverValue(), nil
	default:
		result := lc.Fn.NewRegister(ret, "")
		lc.current.AppendInstruction(&ir.Call{Result: result, Callee: callee, Args: args})
		return Rvalue(result, ret), nil
	}
}

// lowerArgs checks and lowers a call's argument list against declared
// against a signature's parameter types: an exact count for a
// non-variadic call, at-least for a variadic one, with the variadic
// excess passed through untyped (spec §4.5 "variadic excess is passed
// through as an rvalue with no declared type").
func (lc *LocalContext) lowerArgs(params []types.Handle, variadic bool, args []ast.Expr, span diag.Span) ([]ir.Operand, *diag.Error) {
	if len(args) < len(params) || (!variadic && len(args) != len(params)) {
		return nil, diag.New(diag.KindWrongArgumentCount, span, "expected %d arguments, found %d", len(params), len(args))
	}
	ops := make([]ir.Operand, 0, len(args))
	for i, a := range args {
		if i < len(params) {
			pt := params[i]
			v, err := lc.lowerExpr(a, &pt)
			if err != nil {
				return nil, err
			}
			op, err := lc.enforceType(v, pt, false, a.Span())
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			continue
		}
		v, err := lc.lowerExpr(a, nil)
		if err != nil {
			return nil, err
		}
		op, err := lc.coerceToRvalue(v, a.Span())
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// lowerCallExpr lowers an ordinary call: the callee may be any
// function-typed value, named or computed (spec §4.5).
func (lc *LocalContext) lowerCallExpr(e *ast.CallExpr) (Value, *diag.Error) {
	calleeVal, err := lc.lowerExpr(e.Callee, nil)
	if err != nil {
		return Value{}, err
	}
	calleeOp, err := lc.coerceToRvalue(calleeVal, e.Callee.Span())
	if err != nil {
		return Value{}, err
	}
	repr, ok := lc.ctx.Types.Repr(calleeOp.Type()).(types.FunctionRepr)
	if !ok {
		return Value{}, diag.New(diag.KindIncompatibleTypes, e.Span(), "expression is not callable")
	}
	args, err := lc.lowerArgs(repr.Signature.ParameterTypes, repr.Signature.Variadic, e.Args, e.Span())
	if err != nil {
		return Value{}, err
	}
	return lc.emitCall(calleeOp, repr.Signature.ReturnType, args)
}

// coerceSelf binds a method's receiver to its signature's implicit
// self parameter, always a pointer to the implementing type (spec's
// method-call lowering chooses `*mut Self` as the uniform receiver
// shape; see DESIGN.md).
func (lc *LocalContext) coerceSelf(recv Value, selfType types.Handle, span diag.Span) (ir.Operand, *diag.Error) {
	ptr, pointee, sem, err := lc.addressOfValue(recv, span)
	if err != nil {
		return nil, err
	}
	if pointee != selfType {
		return nil, diag.New(diag.KindIncompatibleTypes, span,
			"cannot call method on %s: expected %s", lc.ctx.Types.Path(pointee), lc.ctx.Types.Path(selfType))
	}
	selfPtrType := lc.ctx.Types.InternPointer(selfType, types.Mutable)
	op := retype(ptr, lc.ctx.Types.InternPointer(pointee, sem))
	conv := convert.Implicit(lc.ctx.Types, op.Type(), selfPtrType, sem == types.Mutable)
	if conv == nil {
		return nil, diag.New(diag.KindCannotMutateValue, span, "method requires a mutable receiver")
	}
	return lc.applyConversion(op, conv, selfPtrType), nil
}

// lowerMethodCallExpr looks the method up in the receiver type's own
// namespace (spec §4.5 "method call... type_namespace(typeof(x))"),
// binds the receiver as the implicit first argument, then lowers like
// an ordinary call.
func (lc *LocalContext) lowerMethodCallExpr(e *ast.MethodCallExpr) (Value, *diag.Error) {
	recv, err := lc.lowerExpr(e.Receiver, nil)
	if err != nil {
		return Value{}, err
	}
	baseType := recv.Type()
	if ptrRepr, ok := lc.ctx.Types.Repr(baseType).(types.PointerRepr); ok {
		baseType = ptrRepr.Pointee
	}
	ns := lc.ctx.Types.Namespace(baseType)
	sym, ok := lc.ctx.Names.Find(ns, e.Method.Name)
	if !ok || sym.Kind != types.SymbolValue {
		return Value{}, diag.New(diag.KindNoSuchMethod, e.Span(), "no method %q on %s", e.Method.Name, lc.ctx.Types.Path(baseType))
	}
	fnHandle, _ := sym.Value.(types.Handle)
	repr, ok := lc.ctx.Types.Repr(fnHandle).(types.FunctionRepr)
	if !ok {
		return Value{}, diag.New(diag.KindNoSuchMethod, e.Span(), "%q is not callable as a method", e.Method.Name)
	}
	selfOp, err := lc.coerceSelf(recv, baseType, e.Receiver.Span())
	if err != nil {
		return Value{}, err
	}
	args, err := lc.lowerArgs(repr.Signature.ParameterTypes, repr.Signature.Variadic, e.Args, e.Span())
	if err != nil {
		return Value{}, err
	}
	name := lc.ctx.Names.Path(ns).Child(e.Method.Name).String()
	callee := ir.Operand(&ir.GlobalRef{Name: name, Typ: fnHandle})
	return lc.emitCall(callee, repr.Signature.ReturnType, append([]ir.Operand{selfOp}, args...))
}
