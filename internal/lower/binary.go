package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/convert"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// arithKindOf picks the signed/unsigned/float instruction variant for
// a resolved operand type (spec §4.6 "selected at emission time").
func (lc *LocalContext) arithKindOf(h types.Handle) ir.ArithKind {
	switch r := lc.ctx.Types.Repr(h).(type) {
	case types.IntegerRepr:
		if r.Signed {
			return ir.ArithSigned
		}
		return ir.ArithUnsigned
	case types.Float32Repr, types.Float64Repr:
		return ir.ArithFloat
	default:
		return ir.ArithUnsigned
	}
}

func isFloatType(lc *LocalContext, h types.Handle) bool {
	switch lc.ctx.Types.Repr(h).(type) {
	case types.Float32Repr, types.Float64Repr:
		return true
	default:
		return false
	}
}

// lowerBinaryExpr handles every ast.BinaryExpr.Op the grammar
// produces: the grammar has no bitwise or shift operators at all (see
// DESIGN.md), so arithmetic, comparison, and the short-circuiting
// logical operators are the whole space.
func (lc *LocalContext) lowerBinaryExpr(e *ast.BinaryExpr, expected *types.Handle) (Value, *diag.Error) {
	switch e.Op {
	case "&&":
		return lc.lowerLogicalAnd(e)
	case "||":
		return lc.lowerLogicalOr(e)
	}

	lhsVal, err := lc.lowerExpr(e.Left, expected)
	if err != nil {
		return Value{}, err
	}
	lhsOp, err := lc.coerceToRvalue(lhsVal, e.Left.Span())
	if err != nil {
		return Value{}, err
	}
	lhsType := lhsOp.Type()

	rhsVal, err := lc.lowerExpr(e.Right, &lhsType)
	if err != nil {
		return Value{}, err
	}
	rhsOp, err := lc.enforceType(rhsVal, lhsType, false, e.Right.Span())
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case "+", "-", "*", "/", "%":
		return lc.lowerArith(e, lhsOp, rhsOp, lhsType)
	case "==", "!=", "<", "<=", ">", ">=":
		return lc.lowerCompare(e, lhsOp, rhsOp)
	default:
		return Value{}, diag.New(diag.KindIncompatibleTypes, e.Span(), "unsupported operator %q", e.Op)
	}
}

func (lc *LocalContext) lowerArith(e *ast.BinaryExpr, lhs, rhs ir.Operand, typ types.Handle) (Value, *diag.Error) {
	if !isFloatType(lc, typ) {
		if _, ok := lc.ctx.Types.Repr(typ).(types.IntegerRepr); !ok {
			return Value{}, diag.New(diag.KindExpectedInteger, e.Span(), "arithmetic requires a numeric operand")
		}
	}
	kind := lc.arithKindOf(typ)
	op, ok := map[string]ir.ArithOp{"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpDiv, "%": ir.OpRem}[e.Op]
	if !ok {
		return Value{}, diag.New(diag.KindIncompatibleTypes, e.Span(), "unsupported operator %q", e.Op)
	}
	result := lc.Fn.NewRegister(typ, "")
	nsw := kind == ir.ArithSigned && (op == ir.OpAdd || op == ir.OpMul)
	nuw := kind == ir.ArithUnsigned && (op == ir.OpAdd || op == ir.OpMul)
	lc.current.AppendInstruction(&ir.BinaryArith{Result: result, Op: op, Kind: kind, Lhs: lhs, Rhs: rhs, NSW: nsw, NUW: nuw})
	return Rvalue(result, typ), nil
}

func (lc *LocalContext) lowerCompare(e *ast.BinaryExpr, lhs, rhs ir.Operand) (Value, *diag.Error) {
	op, ok := map[string]ir.CompareOp{
		"==": ir.CmpEq, "!=": ir.CmpNe, "<": ir.CmpLt, "<=": ir.CmpLe, ">": ir.CmpGt, ">=": ir.CmpGe,
	}[e.Op]
	if !ok {
		return Value{}, diag.New(diag.KindIncompatibleTypes, e.Span(), "unsupported operator %q", e.Op)
	}
	kind := lc.arithKindOf(lhs.Type())
	result := lc.Fn.NewRegister(types.Bool, "")
	lc.current.AppendInstruction(&ir.Compare{Result: result, Op: op, Kind: kind, Lhs: lhs, Rhs: rhs})
	return Rvalue(result, types.Bool), nil
}

// lowerUnaryExpr handles the grammar's two unary operators: arithmetic
// negation and boolean not. `&`/`*` are distinct AST nodes (RefExpr/
// DerefExpr), never UnaryExpr (see DESIGN.md).
func (lc *LocalContext) lowerUnaryExpr(e *ast.UnaryExpr) (Value, *diag.Error) {
	v, err := lc.lowerExpr(e.Operand, nil)
	if err != nil {
		return Value{}, err
	}
	op, err := lc.coerceToRvalue(v, e.Span())
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case "-":
		result := lc.Fn.NewRegister(op.Type(), "")
		lc.current.AppendInstruction(&ir.Negate{Result: result, Operand: op, Float: isFloatType(lc, op.Type())})
		return Rvalue(result, op.Type()), nil
	case "!":
		result := lc.Fn.NewRegister(types.Bool, "")
		lc.current.AppendInstruction(&ir.Bitwise{Result: result, Op: ir.OpNot, Lhs: op})
		return Rvalue(result, types.Bool), nil
	default:
		return Value{}, diag.New(diag.KindIncompatibleTypes, e.Span(), "unsupported unary operator %q", e.Op)
	}
}

// lowerAsExpr lowers an explicit cast through the full conversion
// lattice, including the narrowing/numeric conversions Implicit alone
// would reject (spec §4.3/§4.5 "as").
func (lc *LocalContext) lowerAsExpr(e *ast.AsExpr) (Value, *diag.Error) {
	to, err := lc.ctx.ResolveTypeExpr(e.Type)
	if err != nil {
		return Value{}, err
	}
	v, err := lc.lowerExpr(e.Value, nil)
	if err != nil {
		return Value{}, err
	}
	fromMutable := v.kind == kindIndirect && v.semantics == types.Mutable
	op, err := lc.coerceToRvalue(v, e.Span())
	if err != nil {
		return Value{}, err
	}
	if op.Type() == to {
		return Rvalue(op, to), nil
	}
	conv := convert.Explicit(lc.ctx.Types, op.Type(), to, fromMutable)
	if conv == nil {
		return Value{}, diag.New(diag.KindInconvertibleTypes, e.Span(),
			"cannot cast %s to %s", lc.ctx.Types.Path(op.Type()), lc.ctx.Types.Path(to))
	}
	return Rvalue(lc.applyConversion(op, conv, to), to), nil
}
