// Package types implements the interned type registry and namespace
// registry at the foundation of the compiler core (spec §4.1): every
// type and every namespace is given a small, stable, copyable handle,
// and structurally identical types are interned to the same handle.
package types

// Handle is an opaque, stable identity for an interned type. It is a
// small plain value, freely copied; the registry owns every type and
// a Handle is only ever a lookup key into it.
type Handle int

// Primitive handles are reserved at fixed indices so callers can refer
// to them as constants without a registry lookup.
const (
	Meta Handle = iota
	Never
	Void
	Bool
	I8
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	ISize
	USize
	F32
	F64

	numPrimitives
)

var primitiveNames = [numPrimitives]string{
	Meta: "<meta>", Never: "never", Void: "void", Bool: "bool",
	I8: "i8", U8: "u8", I16: "i16", U16: "u16",
	I32: "i32", U32: "u32", I64: "i64", U64: "u64",
	ISize: "isize", USize: "usize", F32: "f32", F64: "f64",
}

// primitiveRepr returns the starting representation for a primitive
// handle; ISize/USize start as PointerSizedInteger and are resolved to
// a concrete Integer once the target's pointer size is known (spec
// §4.1 "post-fill finalisation").
func primitiveRepr(h Handle) Repr {
	switch h {
	case Meta:
		return MetaRepr{}
	case Never:
		return NeverRepr{}
	case Void:
		return VoidRepr{}
	case Bool:
		return BooleanRepr{}
	case I8:
		return IntegerRepr{SizeBytes: 1, Signed: true}
	case U8:
		return IntegerRepr{SizeBytes: 1, Signed: false}
	case I16:
		return IntegerRepr{SizeBytes: 2, Signed: true}
	case U16:
		return IntegerRepr{SizeBytes: 2, Signed: false}
	case I32:
		return IntegerRepr{SizeBytes: 4, Signed: true}
	case U32:
		return IntegerRepr{SizeBytes: 4, Signed: false}
	case I64:
		return IntegerRepr{SizeBytes: 8, Signed: true}
	case U64:
		return IntegerRepr{SizeBytes: 8, Signed: false}
	case ISize:
		return PointerSizedIntegerRepr{Signed: true}
	case USize:
		return PointerSizedIntegerRepr{Signed: false}
	case F32:
		return Float32Repr{}
	case F64:
		return Float64Repr{}
	default:
		panic("types: not a primitive handle")
	}
}

// PrimitiveByName returns the handle for a builtin type name, e.g.
// "i32" or "bool", and false if name does not name a primitive.
func PrimitiveByName(name string) (Handle, bool) {
	for h, n := range primitiveNames {
		if n == name {
			return Handle(h), true
		}
	}
	return 0, false
}
