package emit

import (
	"fmt"
	"strings"

	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// calleeSignature recovers a call target's return type, parameter
// types and variadic-ness from its operand type. internal/lower always
// types a callee operand (GlobalRef or Register alike) as a function
// handle (see lower/call.go's lowerCallExpr/lowerMethodCallExpr), so
// this type-switch never needs to fall back to anything looser.
func (g *Generator) calleeSignature(callee ir.Operand) (types.FunctionSignature, bool, error) {
	repr, ok := g.reg.Repr(callee.Type()).(types.FunctionRepr)
	if !ok {
		return types.FunctionSignature{}, false, fmt.Errorf("emit: call target %s is not function-typed", g.reg.Path(callee.Type()))
	}
	return repr.Signature, repr.Signature.Variadic, nil
}

// emitPhi writes a block-head φ-node. Printing these at all is original
// engineering: the teacher never emits `phi` (it lowers mutable locals
// to alloca/load/store instead), but internal/lower already produces
// real SSA φ-nodes that must be serialised somehow, so the syntax here
// follows plain LLVM IR rather than any teacher source.
func (g *Generator) emitPhi(phi *ir.Phi) error {
	t, err := g.llvmType(phi.Result.Typ)
	if err != nil {
		return err
	}
	pairs := make([]string, 0, len(phi.Incoming))
	for _, in := range phi.Incoming {
		v, err := g.operand(in.Value)
		if err != nil {
			return err
		}
		pairs = append(pairs, fmt.Sprintf("[ %s, %%%s ]", v, in.Block.Label))
	}
	g.line(fmt.Sprintf("%s = phi %s %s", regName(phi.Result), t, strings.Join(pairs, ", ")))
	return nil
}

func (g *Generator) emitTerminator(term ir.Terminator) error {
	switch t := term.(type) {
	case *ir.Return:
		if t.Value == nil {
			g.line("ret void")
			return nil
		}
		v, err := g.typedOperand(t.Value)
		if err != nil {
			return err
		}
		g.line("ret " + v)
		return nil
	case *ir.Branch:
		g.line("br label %" + t.Target.Label)
		return nil
	case *ir.ConditionalBranch:
		cond, err := g.typedOperand(t.Condition)
		if err != nil {
			return err
		}
		g.line(fmt.Sprintf("br %s, label %%%s, label %%%s", cond, t.True.Label, t.False.Label))
		return nil
	case *ir.Unreachable:
		g.line("unreachable")
		return nil
	default:
		return fmt.Errorf("emit: unhandled terminator %T", term)
	}
}

// emitFunction writes a complete function definition: signature line,
// then each block's label, φ-nodes, instructions and terminator in
// creation order (spec §5 "basic blocks are appended in creation order
// and this order is preserved"), matching the teacher's own
// define/body/closing-brace shape in codegen/llvm/function.go.
func (g *Generator) emitFunction(df *ir.DefinedFunction) error {
	fn := df.Fn
	ret, err := g.llvmType(fn.ReturnType)
	if err != nil {
		return err
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		t, err := g.llvmType(p.Typ)
		if err != nil {
			return err
		}
		params[i] = fmt.Sprintf("%s %s", t, regName(p))
	}
	if fn.Variadic {
		params = append(params, "...")
	}
	g.line(fmt.Sprintf("define %s @%s(%s) {", ret, mangle(df.Name), strings.Join(params, ", ")))

	for _, b := range fn.Blocks {
		g.line(b.Label + ":")
		for _, phi := range b.Phis {
			if err := g.emitPhi(phi); err != nil {
				return err
			}
		}
		for _, instr := range b.Instructions {
			if err := g.emitInstruction(instr); err != nil {
				return err
			}
		}
		if b.Terminator == nil {
			return fmt.Errorf("emit: block %q in function %q has no terminator", b.Label, fn.Name)
		}
		if err := g.emitTerminator(b.Terminator); err != nil {
			return err
		}
	}

	g.line("}")
	g.line("")
	return nil
}
