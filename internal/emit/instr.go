package emit

import (
	"fmt"
	"strings"

	"github.com/korvus-lang/korvus/internal/ir"
)

// emitInstruction writes one non-terminating instruction, dispatching
// on its concrete ir.Instruction type the same way the teacher's
// genExpr/genStatement switches dispatch on AST node type — here the
// switch is over an already-lowered SSA op instead.
func (g *Generator) emitInstruction(instr ir.Instruction) error {
	switch in := instr.(type) {
	case *ir.Negate:
		return g.emitNegate(in)
	case *ir.BinaryArith:
		return g.emitBinaryArith(in)
	case *ir.Bitwise:
		return g.emitBitwise(in)
	case *ir.Convert:
		return g.emitConvert(in)
	case *ir.ExtractValue:
		return g.emitExtractValue(in)
	case *ir.InsertValue:
		return g.emitInsertValue(in)
	case *ir.GetElementPointer:
		return g.emitGetElementPointer(in)
	case *ir.StackAllocate:
		return g.emitStackAllocate(in)
	case *ir.Load:
		return g.emitLoad(in)
	case *ir.Store:
		return g.emitStore(in)
	case *ir.Compare:
		return g.emitCompare(in)
	case *ir.Call:
		return g.emitCall(in)
	default:
		return fmt.Errorf("emit: unhandled instruction %T", instr)
	}
}

func (g *Generator) emitNegate(in *ir.Negate) error {
	t, err := g.llvmType(in.Result.Typ)
	if err != nil {
		return err
	}
	v, err := g.operand(in.Operand)
	if err != nil {
		return err
	}
	if in.Float {
		g.line(fmt.Sprintf("%s = fneg %s %s", regName(in.Result), t, v))
		return nil
	}
	// LLVM has no integer neg opcode; `0 - x` is the canonical form,
	// matching the teacher's own negation lowering in expr_operators.go.
	g.line(fmt.Sprintf("%s = sub %s 0, %s", regName(in.Result), t, v))
	return nil
}

// arithMnemonic names the LLVM opcode for op/kind, with the nsw/nuw
// flag text (spec §4.6's "restored from the original implementation's
// behaviour", noted on ir.BinaryArith) appended where it applies:
// only signed Add/Mul carry nsw, only unsigned Add/Mul carry nuw, per
// the flags already decided by the lowerer.
func arithMnemonic(in *ir.BinaryArith) (string, error) {
	var base string
	switch in.Op {
	case ir.OpAdd:
		base = "add"
	case ir.OpSub:
		base = "sub"
	case ir.OpMul:
		base = "mul"
	case ir.OpDiv:
		switch in.Kind {
		case ir.ArithSigned:
			return "sdiv", nil
		case ir.ArithUnsigned:
			return "udiv", nil
		case ir.ArithFloat:
			return "fdiv", nil
		}
		return "", fmt.Errorf("emit: unknown arith kind %d", in.Kind)
	case ir.OpRem:
		switch in.Kind {
		case ir.ArithSigned:
			return "srem", nil
		case ir.ArithUnsigned:
			return "urem", nil
		case ir.ArithFloat:
			return "frem", nil
		}
		return "", fmt.Errorf("emit: unknown arith kind %d", in.Kind)
	default:
		return "", fmt.Errorf("emit: unknown arith op %d", in.Op)
	}

	if in.Kind == ir.ArithFloat {
		return "f" + base, nil
	}
	mnemonic := base
	if in.NSW {
		mnemonic += " nsw"
	}
	if in.NUW {
		mnemonic += " nuw"
	}
	return mnemonic, nil
}

func (g *Generator) emitBinaryArith(in *ir.BinaryArith) error {
	mnemonic, err := arithMnemonic(in)
	if err != nil {
		return err
	}
	t, err := g.llvmType(in.Result.Typ)
	if err != nil {
		return err
	}
	lhs, err := g.operand(in.Lhs)
	if err != nil {
		return err
	}
	rhs, err := g.operand(in.Rhs)
	if err != nil {
		return err
	}
	// nsw/nuw sit between the opcode and the type, e.g. "add nsw i32".
	parts := strings.SplitN(mnemonic, " ", 2)
	if len(parts) == 1 {
		g.line(fmt.Sprintf("%s = %s %s %s, %s", regName(in.Result), parts[0], t, lhs, rhs))
	} else {
		g.line(fmt.Sprintf("%s = %s %s %s %s, %s", regName(in.Result), parts[0], parts[1], t, lhs, rhs))
	}
	return nil
}

func (g *Generator) emitBitwise(in *ir.Bitwise) error {
	t, err := g.llvmType(in.Result.Typ)
	if err != nil {
		return err
	}
	lhs, err := g.operand(in.Lhs)
	if err != nil {
		return err
	}

	if in.Op == ir.OpNot {
		// LLVM has no dedicated not opcode: `xor x, -1` is the
		// idiomatic bitwise complement, matching the teacher's own
		// unary-not lowering.
		g.line(fmt.Sprintf("%s = xor %s %s, -1", regName(in.Result), t, lhs))
		return nil
	}

	rhs, err := g.operand(in.Rhs)
	if err != nil {
		return err
	}
	var mnemonic string
	switch in.Op {
	case ir.OpAnd:
		mnemonic = "and"
	case ir.OpOr:
		mnemonic = "or"
	case ir.OpXor:
		mnemonic = "xor"
	case ir.OpShl:
		mnemonic = "shl"
	case ir.OpShr:
		if in.Arithmetic {
			mnemonic = "ashr"
		} else {
			mnemonic = "lshr"
		}
	default:
		return fmt.Errorf("emit: unknown bitwise op %d", in.Op)
	}
	g.line(fmt.Sprintf("%s = %s %s %s, %s", regName(in.Result), mnemonic, t, lhs, rhs))
	return nil
}

// convertMnemonic names the LLVM conversion opcode for op — every
// variant uses the uniform "OP FROMTYPE VAL to TOTYPE" syntax.
// ConvertNone reaching here is an internal-invariant violation: callers
// upstream must special-case a pure retag into not emitting a Convert
// at all (see ir.ConvertOp's doc comment).
func convertMnemonic(op ir.ConvertOp) (string, error) {
	switch op {
	case ir.ConvertTruncate:
		return "trunc", nil
	case ir.ConvertZeroExtend:
		return "zext", nil
	case ir.ConvertSignExtend:
		return "sext", nil
	case ir.ConvertFPTruncate:
		return "fptrunc", nil
	case ir.ConvertFPExtend:
		return "fpext", nil
	case ir.ConvertFPToUnsigned:
		return "fptoui", nil
	case ir.ConvertFPToSigned:
		return "fptosi", nil
	case ir.ConvertUnsignedToFP:
		return "uitofp", nil
	case ir.ConvertSignedToFP:
		return "sitofp", nil
	case ir.ConvertPtrToInt:
		return "ptrtoint", nil
	case ir.ConvertIntToPtr:
		return "inttoptr", nil
	case ir.ConvertBitcast:
		return "bitcast", nil
	case ir.ConvertNone:
		return "", fmt.Errorf("emit: ConvertNone reached the emitter (should have been elided upstream)")
	default:
		return "", fmt.Errorf("emit: unknown convert op %d", op)
	}
}

func (g *Generator) emitConvert(in *ir.Convert) error {
	mnemonic, err := convertMnemonic(in.Op)
	if err != nil {
		return err
	}
	from, err := g.llvmType(in.Operand.Type())
	if err != nil {
		return err
	}
	v, err := g.operand(in.Operand)
	if err != nil {
		return err
	}
	to, err := g.llvmType(in.To)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("%s = %s %s %s to %s", regName(in.Result), mnemonic, from, v, to))
	return nil
}

func (g *Generator) emitExtractValue(in *ir.ExtractValue) error {
	agg, err := g.typedOperand(in.Aggregate)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("%s = extractvalue %s, %d", regName(in.Result), agg, in.Index))
	return nil
}

func (g *Generator) emitInsertValue(in *ir.InsertValue) error {
	agg, err := g.typedOperand(in.Aggregate)
	if err != nil {
		return err
	}
	val, err := g.typedOperand(in.Value)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("%s = insertvalue %s, %s, %d", regName(in.Result), agg, val, in.Index))
	return nil
}

// emitGetElementPointer writes LLVM's typed-GEP form: the pointee type
// comes first, then the base pointer (typed), then each index
// (typed) in order (spec §4.5's member/subscript lowering).
func (g *Generator) emitGetElementPointer(in *ir.GetElementPointer) error {
	pointee, err := g.pointeeType(in.Base)
	if err != nil {
		return err
	}
	base, err := g.typedOperand(in.Base)
	if err != nil {
		return err
	}
	indices := make([]string, 0, len(in.Indices))
	for _, idx := range in.Indices {
		s, err := g.typedOperand(idx)
		if err != nil {
			return err
		}
		indices = append(indices, s)
	}
	g.line(fmt.Sprintf("%s = getelementptr %s, %s, %s", regName(in.Result), pointee, base, strings.Join(indices, ", ")))
	return nil
}

func (g *Generator) emitStackAllocate(in *ir.StackAllocate) error {
	t, err := g.llvmType(in.Allocated)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s = alloca %s", regName(in.Result), t)
	if align, err := g.reg.Alignment(in.Allocated); err == nil {
		line += fmt.Sprintf(", align %d", align)
	}
	g.line(line)
	return nil
}

func (g *Generator) emitLoad(in *ir.Load) error {
	pointee, err := g.pointeeType(in.Pointer)
	if err != nil {
		return err
	}
	ptr, err := g.typedOperand(in.Pointer)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("%s = load %s, %s", regName(in.Result), pointee, ptr))
	return nil
}

func (g *Generator) emitStore(in *ir.Store) error {
	val, err := g.typedOperand(in.Value)
	if err != nil {
		return err
	}
	ptr, err := g.typedOperand(in.Pointer)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("store %s, %s", val, ptr))
	return nil
}

// comparePredicate names icmp/fcmp's predicate mnemonic for op/kind.
// Integer equality/inequality need no sign (eq/ne); ordering predicates
// take an s/u prefix for integers and an "o" (ordered) prefix for
// floats, matching the teacher's own predicate tables in
// expr_operators.go.
func comparePredicate(op ir.CompareOp, kind ir.ArithKind) (instr, predicate string, err error) {
	if kind == ir.ArithFloat {
		instr = "fcmp"
		switch op {
		case ir.CmpEq:
			predicate = "oeq"
		case ir.CmpNe:
			predicate = "one"
		case ir.CmpLt:
			predicate = "olt"
		case ir.CmpLe:
			predicate = "ole"
		case ir.CmpGt:
			predicate = "ogt"
		case ir.CmpGe:
			predicate = "oge"
		default:
			return "", "", fmt.Errorf("emit: unknown compare op %d", op)
		}
		return instr, predicate, nil
	}

	instr = "icmp"
	switch op {
	case ir.CmpEq:
		predicate = "eq"
	case ir.CmpNe:
		predicate = "ne"
	case ir.CmpLt:
		predicate = signPrefix(kind) + "lt"
	case ir.CmpLe:
		predicate = signPrefix(kind) + "le"
	case ir.CmpGt:
		predicate = signPrefix(kind) + "gt"
	case ir.CmpGe:
		predicate = signPrefix(kind) + "ge"
	default:
		return "", "", fmt.Errorf("emit: unknown compare op %d", op)
	}
	return instr, predicate, nil
}

func signPrefix(kind ir.ArithKind) string {
	if kind == ir.ArithSigned {
		return "s"
	}
	return "u"
}

func (g *Generator) emitCompare(in *ir.Compare) error {
	instr, predicate, err := comparePredicate(in.Op, in.Kind)
	if err != nil {
		return err
	}
	t, err := g.llvmType(in.Lhs.Type())
	if err != nil {
		return err
	}
	lhs, err := g.operand(in.Lhs)
	if err != nil {
		return err
	}
	rhs, err := g.operand(in.Rhs)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("%s = %s %s %s %s, %s", regName(in.Result), instr, predicate, t, lhs, rhs))
	return nil
}

// emitCall prefers the teacher's simple direct-call syntax
// (`call RETTYPE @name(args)`), falling back to a full function-type
// prototype only when the callee is variadic — LLVM requires the
// complete signature there so it knows where the fixed arguments end.
func (g *Generator) emitCall(in *ir.Call) error {
	sig, variadic, err := g.calleeSignature(in.Callee)
	if err != nil {
		return err
	}

	args := make([]string, 0, len(in.Args))
	for _, a := range in.Args {
		s, err := g.typedOperand(a)
		if err != nil {
			return err
		}
		args = append(args, s)
	}

	callee, err := g.operand(in.Callee)
	if err != nil {
		return err
	}

	retType, err := g.llvmType(sig.ReturnType)
	if err != nil {
		return err
	}

	var call string
	if variadic {
		protoParams := make([]string, len(sig.ParameterTypes))
		for i, p := range sig.ParameterTypes {
			t, err := g.llvmType(p)
			if err != nil {
				return err
			}
			protoParams[i] = t
		}
		protoParams = append(protoParams, "...")
		call = fmt.Sprintf("call %s (%s) %s(%s)", retType, strings.Join(protoParams, ", "), callee, strings.Join(args, ", "))
	} else {
		call = fmt.Sprintf("call %s %s(%s)", retType, callee, strings.Join(args, ", "))
	}

	if in.Result == nil {
		g.line(call)
		return nil
	}
	g.line(fmt.Sprintf("%s = %s", regName(in.Result), call))
	return nil
}
