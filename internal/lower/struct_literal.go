package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// lowerStructLiteralExpr builds a struct value field-by-field: a
// stack slot is allocated, each declared member is matched against the
// literal's fields (order-independent, every member required, no
// extras), stored through a GetElementPointer, and the whole aggregate
// is finally loaded back as the literal's rvalue (spec §4.5 "struct
// literal").
func (lc *LocalContext) lowerStructLiteralExpr(e *ast.StructLiteralExpr, _ *types.Handle) (Value, *diag.Error) {
	typ, err := lc.ctx.ResolveTypeExpr(e.Type)
	if err != nil {
		return Value{}, err
	}
	repr, ok := lc.ctx.Types.Repr(typ).(types.StructureRepr)
	if !ok {
		return Value{}, diag.New(diag.KindInvalidMemberAccess, e.Span(), "%s is not a struct", lc.ctx.Types.Path(typ))
	}

	provided := make(map[string]ast.Expr, len(e.Fields))
	for _, f := range e.Fields {
		provided[f.Name.Name] = f.Value
	}

	slot := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(typ, types.Mutable), "")
	lc.current.AppendInstruction(&ir.StackAllocate{Result: slot, Allocated: typ})

	seen := make(map[string]bool, len(repr.Members))
	for i, m := range repr.Members {
		valueExpr, ok := provided[m.Name]
		if !ok {
			return Value{}, diag.New(diag.KindMissingStructMembers, e.Span(),
				"missing member %q in %s literal", m.Name, repr.Name)
		}
		seen[m.Name] = true

		memberType := m.Type
		v, verr := lc.lowerExpr(valueExpr, &memberType)
		if verr != nil {
			return Value{}, verr
		}
		op, cerr := lc.enforceType(v, memberType, false, valueExpr.Span())
		if cerr != nil {
			return Value{}, cerr
		}

		fieldPtr := lc.Fn.NewRegister(lc.ctx.Types.InternPointer(memberType, types.Mutable), "")
		lc.current.AppendInstruction(&ir.GetElementPointer{
			Result: fieldPtr, Base: slot,
			Indices: []ir.Operand{i32Const(0), i32Const(i)},
		})
		lc.current.AppendInstruction(&ir.Store{Pointer: fieldPtr, Value: op})
	}
	for name := range provided {
		if !seen[name] {
			return Value{}, diag.New(diag.KindExtraStructMembers, e.Span(),
				"unknown member %q in %s literal", name, repr.Name)
		}
	}

	result := lc.Fn.NewRegister(typ, "")
	lc.current.AppendInstruction(&ir.Load{Result: result, Pointer: slot})
	return Rvalue(result, typ), nil
}
