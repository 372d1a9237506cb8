package convert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korvus-lang/korvus/internal/convert"
	"github.com/korvus-lang/korvus/internal/target"
	"github.com/korvus-lang/korvus/internal/types"
)

func newRegistry() *types.TypeRegistry {
	names := types.NewNamespaceRegistry()
	reg := types.NewTypeRegistry(names)
	reg.ResolvePointerSizedIntegers(target.Default64())
	return reg
}

func TestImplicitNumericWidening(t *testing.T) {
	reg := newRegistry()

	conv := convert.Implicit(reg, types.I32, types.I64, false)
	require.Nil(t, conv, "i32 -> i64 is not implicit; widths differ with no retag")
}

func TestExplicitConversionTable(t *testing.T) {
	reg := newRegistry()

	cases := []struct {
		name     string
		from, to types.Handle
		op       *convert.Operation
	}{
		{"i32->i64 sign-extends", types.I32, types.I64, opPtr(convert.SignExtend)},
		{"u32->i64 zero-extends", types.U32, types.I64, opPtr(convert.ZeroExtend)},
		{"i64->i32 truncates", types.I64, types.I32, opPtr(convert.Truncate)},
		{"f64->f32 float-truncates", types.F64, types.F32, opPtr(convert.FloatTruncate)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			conv := convert.Explicit(reg, c.from, c.to, false)
			require.NotNil(t, conv)
			require.NotNil(t, conv.Operation)
			require.Equal(t, *c.op, *conv.Operation)
			require.False(t, conv.ImplicitAllowed)
		})
	}
}

func TestNeverConvertsToAnything(t *testing.T) {
	reg := newRegistry()

	conv := convert.Implicit(reg, types.Never, types.Bool, false)
	require.NotNil(t, conv)
	require.Nil(t, conv.Operation)
	require.True(t, conv.ImplicitAllowed)
}

func TestPointerSemanticsNarrowing(t *testing.T) {
	reg := newRegistry()
	mutPtr := reg.InternPointer(types.I32, types.Mutable)
	immPtr := reg.InternPointer(types.I32, types.Immutable)

	require.NotNil(t, convert.Implicit(reg, mutPtr, immPtr, false), "*mut T -> *T narrows implicitly")
	require.Nil(t, convert.Implicit(reg, immPtr, mutPtr, false), "*T -> *mut T never narrows implicitly")
	require.Nil(t, convert.Explicit(reg, immPtr, mutPtr, false), "*T -> *mut T is rejected by explicit casts too")
}

func opPtr(o convert.Operation) *convert.Operation { return &o }
