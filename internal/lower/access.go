package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// addressOf lowers base and reduces it to an address: an Indirect
// value's own pointer, a pointer-typed rvalue's pointee, or — for any
// other rvalue — a fresh stack slot holding a spilled copy, so member
// and index access always has something to compute a
// GetElementPointer from (spec §4.5 "member/index access is
// Indirect-only... auto-deref one pointer level").
func (lc *LocalContext) addressOf(base ast.Expr) (ir.Operand, types.Handle, types.PointerSemantics, *diag.Error) {
	v, err := lc.lowerExpr(base, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	return lc.addressOfValue(v, base.Span())
}

func (lc *LocalContext) addressOfValue(v Value, span diag.Span) (ir.Operand, types.Handle, types.PointerSemantics, *diag.Error) {
	switch v.kind {
	case kindIndirect:
		if ptrRepr, ok := lc.ctx.Types.Repr(v.typ).(types.PointerRepr); ok {
			loaded, err := lc.coerceToRvalue(v, span)
			if err != nil {
				return nil, 0, 0, err
			}
			return loaded, ptrRepr.Pointee, ptrRepr.Semantics.Normalized(), nil
		}
		return v.operand, v.typ, v.semantics, nil

	case kindRvalue:
		if ptrRepr, ok := lc.ctx.Types.Repr(v.typ).(types.PointerRepr); ok {
			return v.operand, ptrRepr.Pointee, ptrRepr.Semantics.Normalized(), nil
		}
		return lc.spillToStack(v.operand, v.typ), v.typ, types.Mutable, nil

	default:
		return nil, 0, 0, diag.New(diag.KindExpectedLValue, span, "expression has no address")
	}
}

// spillToStack copies a bare rvalue (e.g. the result of a call
// returning a struct by value) onto the stack, so a subsequent member
// or index access has an address to take a GetElementPointer from.
func (lc *LocalContext) spillToStack(op ir.Operand, typ types.Handle) ir.Operand {
	slot := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(typ, types.Mutable), "")
	lc.current.AppendInstruction(&ir.StackAllocate{Result: slot, Allocated: typ})
	lc.current.AppendInstruction(&ir.Store{Pointer: slot, Value: op})
	return slot
}

func i32Const(n int) ir.Operand { return &ir.Constant{Typ: types.I32, Value: int64(n)} }

// lowerMemberExpr computes `base.field`'s address with a
// GetElementPointer into the named struct member, yielding an Indirect
// value carrying the base's pointer semantics (spec §4.5).
func (lc *LocalContext) lowerMemberExpr(e *ast.MemberExpr) (Value, *diag.Error) {
	ptr, pointee, sem, err := lc.addressOf(e.Base)
	if err != nil {
		return Value{}, err
	}
	repr, ok := lc.ctx.Types.Repr(pointee).(types.StructureRepr)
	if !ok {
		return Value{}, diag.New(diag.KindInvalidMemberAccess, e.Span(),
			"%s has no member %q", lc.ctx.Types.Path(pointee), e.Field.Name)
	}
	idx, memberType := -1, types.Handle(0)
	for i, m := range repr.Members {
		if m.Name == e.Field.Name {
			idx, memberType = i, m.Type
			break
		}
	}
	if idx < 0 {
		return Value{}, diag.New(diag.KindInvalidMemberAccess, e.Span(),
			"%s has no member %q", repr.Name, e.Field.Name)
	}
	result := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(memberType, sem), "")
	lc.current.AppendInstruction(&ir.GetElementPointer{
		Result: result, Base: ptr,
		Indices: []ir.Operand{i32Const(0), i32Const(idx)},
	})
	return Indirect(result, memberType, sem), nil
}

// lowerTupleMemberExpr is lowerMemberExpr's tuple-index twin (`base.0`).
func (lc *LocalContext) lowerTupleMemberExpr(e *ast.TupleMemberExpr) (Value, *diag.Error) {
	ptr, pointee, sem, err := lc.addressOf(e.Base)
	if err != nil {
		return Value{}, err
	}
	repr, ok := lc.ctx.Types.Repr(pointee).(types.TupleRepr)
	if !ok || e.Index < 0 || e.Index >= len(repr.Items) {
		return Value{}, diag.New(diag.KindInvalidMemberAccess, e.Span(),
			"%s has no member .%d", lc.ctx.Types.Path(pointee), e.Index)
	}
	memberType := repr.Items[e.Index]
	result := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(memberType, sem), "")
	lc.current.AppendInstruction(&ir.GetElementPointer{
		Result: result, Base: ptr,
		Indices: []ir.Operand{i32Const(0), i32Const(e.Index)},
	})
	return Indirect(result, memberType, sem), nil
}

// lowerIndexExpr computes `base[index]`'s address: a sized array
// subscripts with a leading zero index (`[i32 0, idx]`, matching the
// member case's shape since a sized array is a value in place), an
// unsized slice subscripts directly (`[idx]`), both per spec §4.5.
func (lc *LocalContext) lowerIndexExpr(e *ast.IndexExpr) (Value, *diag.Error) {
	ptr, pointee, sem, err := lc.addressOf(e.Base)
	if err != nil {
		return Value{}, err
	}
	arr, ok := lc.ctx.Types.Repr(pointee).(types.ArrayRepr)
	if !ok {
		return Value{}, diag.New(diag.KindExpectedArray, e.Span(), "cannot index %s", lc.ctx.Types.Path(pointee))
	}
	usize := types.USize
	idxVal, err := lc.lowerExpr(e.Index, &usize)
	if err != nil {
		return Value{}, err
	}
	idxOp, err := lc.enforceType(idxVal, types.USize, false, e.Index.Span())
	if err != nil {
		return Value{}, err
	}
	indices := []ir.Operand{idxOp}
	if arr.Length != nil {
		indices = []ir.Operand{i32Const(0), idxOp}
	}
	result := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(arr.Item, sem), "")
	lc.current.AppendInstruction(&ir.GetElementPointer{Result: result, Base: ptr, Indices: indices})
	return Indirect(result, arr.Item, sem), nil
}

// lowerRefExpr takes `&base`/`&mut base`'s address (spec §4.5
// "Reference... yields Rvalue of pointer type"). A `&mut` through an
// immutable binding is CannotMutateValue; otherwise the resulting
// pointer's semantics is the normal (never-ImmutableSymbol) form of
// whatever addressOf found, or Mutable outright for an explicit `&mut`.
func (lc *LocalContext) lowerRefExpr(e *ast.RefExpr) (Value, *diag.Error) {
	ptr, pointee, sem, err := lc.addressOf(e.Operand)
	if err != nil {
		return Value{}, err
	}
	if e.Mutable && sem != types.Mutable {
		return Value{}, diag.New(diag.KindCannotMutateValue, e.Span(), "cannot take a mutable reference to an immutable binding")
	}
	finalSem := sem.Normalized()
	if e.Mutable {
		finalSem = types.Mutable
	}
	ptrType := lc.ctx.Types.InternPointer(pointee, finalSem)
	return Rvalue(retype(ptr, ptrType), ptrType), nil
}

// lowerDerefExpr dereferences `*ptr` (spec §4.5 "yields Indirect").
func (lc *LocalContext) lowerDerefExpr(e *ast.DerefExpr) (Value, *diag.Error) {
	v, err := lc.lowerExpr(e.Operand, nil)
	if err != nil {
		return Value{}, err
	}
	op, err := lc.coerceToRvalue(v, e.Span())
	if err != nil {
		return Value{}, err
	}
	ptrRepr, ok := lc.ctx.Types.Repr(op.Type()).(types.PointerRepr)
	if !ok {
		return Value{}, diag.New(diag.KindExpectedPointer, e.Span(), "cannot dereference a non-pointer value")
	}
	return Indirect(op, ptrRepr.Pointee, ptrRepr.Semantics.Normalized()), nil
}
