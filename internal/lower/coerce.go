package lower

import (
	"github.com/korvus-lang/korvus/internal/convert"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// coerceToRvalue reduces v to a plain operand, inserting a Load if v
// names a memory location (spec §4.5 "coerce_to_rvalue"). It is an
// error to call this with a Value carrying no usable result (void,
// never, break or continue).
func (lc *LocalContext) coerceToRvalue(v Value, span diag.Span) (ir.Operand, *diag.Error) {
	switch v.kind {
	case kindRvalue:
		return v.operand, nil
	case kindIndirect:
		result := lc.Fn.NewRegister(v.typ, "")
		lc.current.AppendInstruction(&ir.Load{Result: result, Pointer: v.operand})
		return result, nil
	default:
		return nil, diag.New(diag.KindIncompatibleTypes, span, "expression does not produce a usable value here")
	}
}

// intoMutableLvalue requires v to name a location that may be written
// through: only a Mutable indirect value qualifies. An Immutable or
// ImmutableSymbol one (the latter the address of an immutable `let`)
// is rejected with CannotMutateValue.
func (lc *LocalContext) intoMutableLvalue(v Value, span diag.Span) (ir.Operand, *diag.Error) {
	if v.kind != kindIndirect {
		return nil, diag.New(diag.KindExpectedLValue, span, "expression is not assignable")
	}
	if v.semantics != types.Mutable {
		return nil, diag.New(diag.KindCannotMutateValue, span, "cannot assign through an immutable binding")
	}
	return v.operand, nil
}

// retype produces an operand identical in value to op but statically
// typed as to — the bit-identical half of a Conversion with a nil
// Operation (spec §4.3 "a pure retag: the bits are unchanged, only the
// static type differs").
func retype(op ir.Operand, to types.Handle) ir.Operand {
	switch o := op.(type) {
	case *ir.Register:
		r := *o
		r.Typ = to
		return &r
	case *ir.Constant:
		c := *o
		c.Typ = to
		return &c
	case *ir.GlobalRef:
		g := *o
		g.Typ = to
		return &g
	default:
		return op
	}
}

// convertOpFor translates the conversion lattice's LLVM-mnemonic
// Operation enum to the IR model's own ConvertOp, the one place the two
// parallel enums (spec §4.3's and §4.6's) are bridged.
func convertOpFor(op convert.Operation) ir.ConvertOp {
	switch op {
	case convert.Truncate:
		return ir.ConvertTruncate
	case convert.ZeroExtend:
		return ir.ConvertZeroExtend
	case convert.SignExtend:
		return ir.ConvertSignExtend
	case convert.FloatTruncate:
		return ir.ConvertFPTruncate
	case convert.FloatExtend:
		return ir.ConvertFPExtend
	case convert.FloatToUnsigned:
		return ir.ConvertFPToUnsigned
	case convert.FloatToSigned:
		return ir.ConvertFPToSigned
	case convert.UnsignedToFloat:
		return ir.ConvertUnsignedToFP
	case convert.SignedToFloat:
		return ir.ConvertSignedToFP
	case convert.PointerToInteger:
		return ir.ConvertPtrToInt
	case convert.IntegerToPointer:
		return ir.ConvertIntToPtr
	case convert.BitwiseCast:
		return ir.ConvertBitcast
	default:
		return ir.ConvertNone
	}
}

// applyConversion emits whatever instruction conv.Operation calls for
// (none for a pure retag) and returns the resulting operand typed to.
func (lc *LocalContext) applyConversion(op ir.Operand, conv *convert.Conversion, to types.Handle) ir.Operand {
	if conv.Operation == nil {
		return retype(op, to)
	}
	result := lc.Fn.NewRegister(to, "")
	lc.current.AppendInstruction(&ir.Convert{Result: result, Op: convertOpFor(*conv.Operation), Operand: op, To: to})
	return result
}

// enforceType coerces v to an rvalue of exactly type expected, via the
// implicit conversion lattice (spec §4.5 "enforce_type"). fromMutable
// should be true when v was produced from a mutable binding's lvalue
// (needed only for the Mutable-pointer-narrowing case of the lattice).
func (lc *LocalContext) enforceType(v Value, expected types.Handle, fromMutable bool, span diag.Span) (ir.Operand, *diag.Error) {
	op, err := lc.coerceToRvalue(v, span)
	if err != nil {
		return nil, err
	}
	if op.Type() == expected {
		return op, nil
	}
	conv := convert.Implicit(lc.ctx.Types, op.Type(), expected, fromMutable)
	if conv == nil || !conv.ImplicitAllowed {
		return nil, diag.New(diag.KindIncompatibleTypes, span,
			"expected %s, found %s", lc.ctx.Types.Path(expected), lc.ctx.Types.Path(op.Type()))
	}
	return lc.applyConversion(op, conv, expected), nil
}
