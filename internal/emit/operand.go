package emit

import (
	"fmt"

	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// regName names a register's LLVM local identifier. ir.Register.ID is
// already a stable, function-unique integer assigned by
// internal/lower's *ir.Function builder, so unlike the teacher's
// nextReg() counter the emitter never mints its own.
func regName(r *ir.Register) string {
	return fmt.Sprintf("%%r%d", r.ID)
}

// operand renders an ir.Operand's bare value text, with no type
// prefix.
func (g *Generator) operand(op ir.Operand) (string, error) {
	switch o := op.(type) {
	case *ir.Register:
		return regName(o), nil
	case *ir.Constant:
		return g.constantLiteral(o)
	case *ir.GlobalRef:
		return "@" + mangle(o.Name), nil
	default:
		return "", fmt.Errorf("emit: unhandled operand %T", op)
	}
}

// typedOperand renders "TYPE VALUE", the pairing almost every LLVM
// instruction operand uses.
func (g *Generator) typedOperand(op ir.Operand) (string, error) {
	t, err := g.llvmType(op.Type())
	if err != nil {
		return "", err
	}
	v, err := g.operand(op)
	if err != nil {
		return "", err
	}
	return t + " " + v, nil
}

// pointeeType resolves a pointer-typed operand's element type as LLVM
// text, needed by Load/Store/GetElementPointer, which carry the
// pointer as an operand but must state the pointee type explicitly —
// LLVM's typed-pointer instruction forms, matching the teacher's own
// non-opaque-pointer output.
func (g *Generator) pointeeType(ptr ir.Operand) (string, error) {
	repr, ok := g.reg.Repr(ptr.Type()).(types.PointerRepr)
	if !ok {
		return "", fmt.Errorf("emit: expected a pointer-typed operand, got %s", g.reg.Path(ptr.Type()))
	}
	return g.llvmType(repr.Pointee)
}
