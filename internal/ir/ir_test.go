package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
	"github.com/stretchr/testify/require"
)

func TestNewFunctionEntryBlockStartsUnreachable(t *testing.T) {
	fn := ir.NewFunction("main", nil, types.I32, false)
	require.Len(t, fn.Blocks, 1)
	require.True(t, fn.Entry().Sealed())
	_, ok := fn.Entry().Terminator.(*ir.Unreachable)
	require.True(t, ok)
}

func TestRegisterNumberingIsMonotonic(t *testing.T) {
	param := &ir.Register{ID: 0, Typ: types.I32}
	fn := ir.NewFunction("f", []*ir.Register{param}, types.I32, false)

	r1 := fn.NewRegister(types.I32, "a")
	r2 := fn.NewRegister(types.I32, "b")
	require.Equal(t, 1, r1.ID)
	require.Equal(t, 2, r2.ID)
}

func TestBlockLabelsAreUniqueAcrossReuse(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void, false)
	cond1 := fn.NewBlock("cond")
	cond2 := fn.NewBlock("cond")
	require.NotEqual(t, cond1.Label, cond2.Label)
}

func TestAppendInstructionPanicsOnSealedBlock(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void, false)
	block := fn.NewBlock("body")
	block.Seal(&ir.Return{})

	require.Panics(t, func() {
		block.AppendInstruction(&ir.Negate{Result: fn.NewRegister(types.I32, ""), Operand: &ir.Constant{Typ: types.I32, Value: int64(1)}})
	})
}

func TestSealTwicePanics(t *testing.T) {
	fn := ir.NewFunction("f", nil, types.Void, false)
	block := fn.NewBlock("body")
	block.Seal(&ir.Return{})

	require.Panics(t, func() {
		block.Seal(&ir.Unreachable{})
	})
}

func TestCompilationUnitAccumulatesEverySection(t *testing.T) {
	unit := ir.NewCompilationUnit("test")
	unit.AddDeclaredType(types.I32)
	unit.AddExternalFunction(&ir.ExternalFunction{Name: "puts", ParamTypes: []types.Handle{types.USize}, ReturnType: types.I32})
	unit.AddGlobal(&ir.DefinedGlobal{Name: "count", Type: types.I32, Mutable: true, Init: &ir.Constant{Typ: types.I32, Value: int64(0)}})

	fn := ir.NewFunction("main", nil, types.I32, false)
	fn.Entry().Terminator = nil
	fn.Entry().Seal(&ir.Return{Value: &ir.Constant{Typ: types.I32, Value: int64(0)}})
	unit.AddFunction(&ir.DefinedFunction{Name: "main", Fn: fn})

	require.Len(t, unit.DeclaredTypes, 1)
	require.Len(t, unit.ExternalFunctions, 1)
	require.Len(t, unit.Globals, 1)
	require.Len(t, unit.Functions, 1)
}

// TestBasicBlockStructuralSnapshot builds a tiny `a + b; return` body
// by hand and diffs the resulting block against a literal expected
// shape with go-cmp, the same structural-snapshot style
// SPEC_FULL.md's test tooling section calls for.
func TestBasicBlockStructuralSnapshot(t *testing.T) {
	a := &ir.Register{ID: 0, Name: "a", Typ: types.I32}
	b := &ir.Register{ID: 1, Name: "b", Typ: types.I32}
	fn := ir.NewFunction("add", []*ir.Register{a, b}, types.I32, false)

	entry := fn.Entry()
	entry.Terminator = nil
	sum := fn.NewRegister(types.I32, "sum")
	entry.AppendInstruction(&ir.BinaryArith{Result: sum, Op: ir.OpAdd, Kind: ir.ArithSigned, Lhs: a, Rhs: b, NSW: true})
	entry.Seal(&ir.Return{Value: sum})

	want := &ir.BasicBlock{
		Label: "entry0",
		Instructions: []ir.Instruction{
			&ir.BinaryArith{Result: sum, Op: ir.OpAdd, Kind: ir.ArithSigned, Lhs: a, Rhs: b, NSW: true},
		},
		Terminator: &ir.Return{Value: sum},
	}

	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("entry block structural shape mismatch (-want +got):\n%s", diff)
	}
}

func TestGetElementPointerOperandTypes(t *testing.T) {
	base := &ir.Register{ID: 0, Typ: types.USize}
	idx := &ir.Constant{Typ: types.I32, Value: int64(0)}
	gep := &ir.GetElementPointer{
		Result:  &ir.Register{ID: 1, Typ: types.USize},
		Base:    base,
		Indices: []ir.Operand{idx, idx},
	}
	require.Equal(t, types.USize, gep.Result.Type())
	require.Len(t, gep.Indices, 2)
}
