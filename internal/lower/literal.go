package lower

import (
	"strconv"

	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// defaultIntegerLiteral and defaultFloatLiteral are the types an
// unsuffixed literal takes when nothing in context demands another one
// (spec §4.5 "Literals... default i32-or-f64").
const (
	defaultIntegerLiteral = types.I32
	defaultFloatLiteral   = types.F64
)

// literalIntegerType and literalFloatType pick an integer or float
// literal's type: an explicit
// suffix wins outright, otherwise an integer (resp. float) expected
// type is honored, otherwise the default applies.
func (c *Context) literalIntegerType(suffix string, expected *types.Handle, span diag.Span) (types.Handle, *diag.Error) {
	if suffix != "" {
		h, ok := types.PrimitiveByName(suffix)
		if !ok {
			return 0, diag.New(diag.KindInvalidLiteralSuffix, span, "%q is not a valid integer suffix", suffix)
		}
		return h, nil
	}
	if expected != nil {
		if _, ok := c.Types.Repr(*expected).(types.IntegerRepr); ok {
			return *expected, nil
		}
	}
	return defaultIntegerLiteral, nil
}

func (c *Context) literalFloatType(suffix string, expected *types.Handle, span diag.Span) (types.Handle, *diag.Error) {
	if suffix != "" {
		h, ok := types.PrimitiveByName(suffix)
		if !ok {
			return 0, diag.New(diag.KindInvalidLiteralSuffix, span, "%q is not a valid float suffix", suffix)
		}
		return h, nil
	}
	if expected != nil {
		switch c.Types.Repr(*expected).(type) {
		case types.Float32Repr, types.Float64Repr:
			return *expected, nil
		}
	}
	return defaultFloatLiteral, nil
}

// wrapToWidth truncates n to the integer type's bit width and applies
// its signedness, matching ordinary two's-complement wraparound rather
// than rejecting an out-of-range literal (spec §4.5 "range-check via
// wrap/truncate").
func wrapToWidth(n uint64, repr types.IntegerRepr) int64 {
	bits := repr.SizeBytes * 8
	if bits >= 64 {
		return int64(n)
	}
	mask := (uint64(1) << bits) - 1
	n &= mask
	if repr.Signed && n&(uint64(1)<<(bits-1)) != 0 {
		return int64(n) - int64(mask) - 1
	}
	return int64(n)
}

func (c *Context) lowerIntegerLit(lit *ast.IntegerLit, expected *types.Handle) (Value, *diag.Error) {
	typ, err := c.literalIntegerType(lit.Suffix, expected, lit.Span())
	if err != nil {
		return Value{}, err
	}
	raw, perr := strconv.ParseUint(lit.Text, 0, 64)
	if perr != nil {
		raw = 0
	}
	repr, ok := c.Types.Repr(typ).(types.IntegerRepr)
	if !ok {
		return Value{}, diag.New(diag.KindExpectedInteger, lit.Span(), "integer literal suffix does not name an integer type")
	}
	return Rvalue(&ir.Constant{Typ: typ, Value: wrapToWidth(raw, repr)}, typ), nil
}

func (c *Context) lowerFloatLit(lit *ast.FloatLit, expected *types.Handle) (Value, *diag.Error) {
	typ, err := c.literalFloatType(lit.Suffix, expected, lit.Span())
	if err != nil {
		return Value{}, err
	}
	f, _ := strconv.ParseFloat(lit.Text, 64)
	return Rvalue(&ir.Constant{Typ: typ, Value: f}, typ), nil
}

func (c *Context) lowerBoolLit(lit *ast.BoolLit) Value {
	return Rvalue(&ir.Constant{Typ: types.Bool, Value: lit.Value}, types.Bool)
}

// lowerStringLit folds a string literal into an anonymous byte-array
// global and yields a pointer to it (spec §4.5 "string literal folding
// emits a fresh anonymous global... and yields its register").
func (c *Context) lowerStringLit(lit *ast.StringLit) Value {
	bytes := uint64(len(lit.Value))
	arrType := c.Types.InternArray(types.U8, &bytes)
	name := c.nextStringConstName(c.Unit.Package)
	c.Unit.AddGlobal(&ir.DefinedGlobal{
		Name: name,
		Type: arrType,
		Init: &ir.Constant{Typ: arrType, Value: []byte(lit.Value)},
	})
	ptrType := c.Types.InternPointer(arrType, types.Immutable)
	return Rvalue(&ir.GlobalRef{Name: name, Typ: ptrType}, ptrType)
}

// lowerSizeof/lowerAlignof yield usize constants computed from the
// completed type registry (spec §4.5 "sizeof T / alignof T yield a
// usize constant"). Both require CalculateProperties to have already
// run, which CompilePackage guarantees before any lowering begins.
func (c *Context) lowerSizeofExpr(e *ast.SizeofExpr) (Value, *diag.Error) {
	h, err := c.ResolveTypeExpr(e.Type)
	if err != nil {
		return Value{}, err
	}
	size, serr := c.Types.Size(h)
	if serr != nil {
		return Value{}, diag.New(diag.KindUnknownTypeSize, e.Span(), "%s", serr.Error())
	}
	return Rvalue(&ir.Constant{Typ: types.USize, Value: size}, types.USize), nil
}

func (c *Context) lowerAlignofExpr(e *ast.AlignofExpr) (Value, *diag.Error) {
	h, err := c.ResolveTypeExpr(e.Type)
	if err != nil {
		return Value{}, err
	}
	align, aerr := c.Types.Alignment(h)
	if aerr != nil {
		return Value{}, diag.New(diag.KindUnknownTypeAlignment, e.Span(), "%s", aerr.Error())
	}
	return Rvalue(&ir.Constant{Typ: types.USize, Value: align}, types.USize), nil
}
