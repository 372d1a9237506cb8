// Package convert implements the type conversion lattice (spec §4.3):
// two pure functions, Implicit and Explicit, that decide whether one
// type can stand in for another and, if so, what machine operation (if
// any) the lowerer must emit to make it so.
package convert

import (
	"github.com/korvus-lang/korvus/internal/types"
)

// Operation is a conversion that changes a value's bit pattern, named
// after its LLVM mnemonic (spec §4.3). A Conversion with a nil
// Operation is a pure retag: the bits are unchanged, only the static
// type differs (e.g. `*mut T` read through a `*T` binding).
type Operation int

const (
	Truncate Operation = iota
	ZeroExtend
	SignExtend
	FloatTruncate
	FloatExtend
	FloatToUnsigned
	FloatToSigned
	UnsignedToFloat
	SignedToFloat
	PointerToInteger
	IntegerToPointer
	BitwiseCast
)

func (op Operation) String() string {
	switch op {
	case Truncate:
		return "trunc"
	case ZeroExtend:
		return "zext"
	case SignExtend:
		return "sext"
	case FloatTruncate:
		return "fptrunc"
	case FloatExtend:
		return "fpext"
	case FloatToUnsigned:
		return "fptoui"
	case FloatToSigned:
		return "fptosi"
	case UnsignedToFloat:
		return "uitofp"
	case SignedToFloat:
		return "sitofp"
	case PointerToInteger:
		return "ptrtoint"
	case IntegerToPointer:
		return "inttoptr"
	case BitwiseCast:
		return "bitcast"
	default:
		return "?"
	}
}

// Conversion describes how to get a value of type `from` to stand in
// for type `to`: an optional machine Operation, plus whether the
// conversion may happen implicitly (spec §4.3).
type Conversion struct {
	Operation       *Operation
	ImplicitAllowed bool
}

func retag() *Conversion { return &Conversion{ImplicitAllowed: true} }

func op(o Operation, implicit bool) *Conversion {
	return &Conversion{Operation: &o, ImplicitAllowed: implicit}
}

// Implicit reports the conversion, if any, allowed to happen silently
// at an assignment, call argument, or return: value identity, `never`
// absorption, pointer semantics narrowing, and sized-to-unsized array
// decay. fromMutable describes the *lvalue* the source pointer came
// from, not the pointer's own semantics; it only matters when
// recursing into a `Mutable -> Mutable` pointer conversion, where the
// source binding itself must be mutable (spec §4.3 "never downgrade
// immutability").
func Implicit(reg *types.TypeRegistry, from, to types.Handle, fromMutable bool) *Conversion {
	if from == types.Never || from == to {
		return retag()
	}

	fromRepr, toRepr := reg.Repr(from), reg.Repr(to)

	if fp, ok := fromRepr.(types.PointerRepr); ok {
		if tp, ok := toRepr.(types.PointerRepr); ok {
			switch {
			case fp.Semantics.IsImmutableLike() && tp.Semantics.IsImmutableLike():
				return Implicit(reg, fp.Pointee, tp.Pointee, false)
			case fp.Semantics == types.Mutable && tp.Semantics.IsImmutableLike():
				return Implicit(reg, fp.Pointee, tp.Pointee, true)
			case fp.Semantics == types.Mutable && tp.Semantics == types.Mutable && fromMutable:
				return Implicit(reg, fp.Pointee, tp.Pointee, true)
			default:
				return nil
			}
		}
		return nil
	}

	if fa, ok := fromRepr.(types.ArrayRepr); ok {
		if ta, ok := toRepr.(types.ArrayRepr); ok {
			switch {
			case fa.Length != nil && ta.Length != nil:
				if *fa.Length != *ta.Length {
					return nil
				}
				return Implicit(reg, fa.Item, ta.Item, fromMutable)
			case ta.Length == nil:
				conv := Implicit(reg, fa.Item, ta.Item, fromMutable)
				if conv == nil {
					return nil
				}
				if fa.Length != nil {
					o := BitwiseCast
					conv.Operation = &o
				}
				return conv
			default:
				return nil
			}
		}
		return nil
	}

	return nil
}

// Explicit reports the conversion allowed at an `as` cast: every
// Implicit conversion, plus numeric width/signedness changes,
// float<->integer, pointer<->integer, and pointer<->function or
// function<->function bitcasts (spec §4.3). Pointer<->pointer is
// deliberately absent from that last group: an immutability upgrade
// like `*T -> *mut T` must stay rejected by both Implicit and Explicit
// (spec §8 scenario 6), so only Implicit's own semantics-narrowing
// recursion ever converts between two pointer types.
func Explicit(reg *types.TypeRegistry, from, to types.Handle, fromMutable bool) *Conversion {
	if conv := Implicit(reg, from, to, fromMutable); conv != nil {
		return conv
	}

	fromRepr, toRepr := reg.Repr(from), reg.Repr(to)

	fromInt, fromIsInt := fromRepr.(types.IntegerRepr)
	toInt, toIsInt := toRepr.(types.IntegerRepr)
	_, fromIsBool := fromRepr.(types.BooleanRepr)
	_, toIsFloat32 := toRepr.(types.Float32Repr)
	_, toIsFloat64 := toRepr.(types.Float64Repr)
	_, fromIsFloat32 := fromRepr.(types.Float32Repr)
	_, fromIsFloat64 := fromRepr.(types.Float64Repr)
	fromIsFloat := fromIsFloat32 || fromIsFloat64
	toIsFloat := toIsFloat32 || toIsFloat64
	_, fromIsPtr := fromRepr.(types.PointerRepr)
	_, toIsPtr := toRepr.(types.PointerRepr)
	_, fromIsFn := fromRepr.(types.FunctionRepr)
	_, toIsFn := toRepr.(types.FunctionRepr)

	switch {
	case fromIsInt && toIsInt:
		switch {
		case fromInt.SizeBytes > toInt.SizeBytes:
			return op(Truncate, false)
		case fromInt.SizeBytes < toInt.SizeBytes && fromInt.Signed:
			return op(SignExtend, false)
		case fromInt.SizeBytes < toInt.SizeBytes:
			return op(ZeroExtend, false)
		default:
			return retagExplicit()
		}
	case fromIsBool && toIsInt:
		return op(ZeroExtend, false)
	case fromIsFloat64 && toIsFloat32:
		return op(FloatTruncate, false)
	case fromIsFloat32 && toIsFloat64:
		return op(FloatExtend, false)
	case fromIsInt && toIsFloat:
		if fromInt.Signed {
			return op(SignedToFloat, false)
		}
		return op(UnsignedToFloat, false)
	case fromIsFloat && toIsInt:
		if toInt.Signed {
			return op(FloatToSigned, false)
		}
		return op(FloatToUnsigned, false)
	case fromIsBool && toIsFloat:
		return op(UnsignedToFloat, false)
	case (fromIsPtr || fromIsFn) && toIsInt:
		return op(PointerToInteger, false)
	case fromIsInt && (toIsPtr || toIsFn):
		return op(IntegerToPointer, false)
	case (fromIsPtr && toIsFn) || (fromIsFn && toIsPtr) || (fromIsFn && toIsFn):
		return op(BitwiseCast, false)
	default:
		return nil
	}
}

func retagExplicit() *Conversion { return &Conversion{ImplicitAllowed: false} }
