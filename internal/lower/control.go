package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// joinArm is one arm of an if/&&/|| join: the block it ended in (after
// lowering, which may have opened further blocks of its own) paired
// with its value, or nil if that arm diverged and contributes no
// incoming edge to the merge φ.
type joinArm struct {
	block *ir.BasicBlock
	value ir.Operand
}

// join builds the merge block for a set of arms and installs a φ-node
// over whichever arms didn't diverge (spec §4.5: both arms live -> a
// real φ of the two values; exactly one diverges -> the other arm's
// value continues with no merge at all; both diverge -> Value::Never
// and no block is reachable after).
func (lc *LocalContext) join(typ types.Handle, arms []joinArm, mergeLabel string) Value {
	var live []joinArm
	for _, a := range arms {
		if a.block != nil && !a.block.Sealed() {
			live = append(live, a)
		}
	}
	switch len(live) {
	case 0:
		return NeverValue()
	case 1:
		lc.current = live[0].block
		if typ == types.Void {
			return VoidValue()
		}
		return Rvalue(live[0].value, typ)
	default:
		merge := lc.Fn.NewBlock(mergeLabel)
		for _, a := range live {
			lc.current = a.block
			lc.branchTo(merge)
		}
		lc.current = merge
		if typ == types.Void {
			return VoidValue()
		}
		result := lc.Fn.NewRegister(typ, "")
		phi := &ir.Phi{Result: result}
		for _, a := range live {
			phi.Incoming = append(phi.Incoming, ir.PhiIncoming{Block: a.block, Value: a.value})
		}
		merge.AppendPhi(phi)
		return Rvalue(result, typ)
	}
}

// lowerIfExpr lowers `if cond { then } else { els }` (spec §4.5): the
// condition branches to fresh then/else blocks; each arm's value joins
// through a φ at a fresh merge block, or is passed straight through
// when the other arm diverges. A missing `else` is treated as an empty
// void block, matching a bodyless `if` statement.
func (lc *LocalContext) lowerIfExpr(e *ast.IfExpr, expected *types.Handle) (Value, *diag.Error) {
	condVal, err := lc.lowerExpr(e.Cond, nil)
	if err != nil {
		return Value{}, err
	}
	condOp, err := lc.enforceType(condVal, types.Bool, false, e.Cond.Span())
	if err != nil {
		return Value{}, err
	}

	thenBlock := lc.Fn.NewBlock("if.then")
	elseBlock := lc.Fn.NewBlock("if.else")
	lc.current.Seal(&ir.ConditionalBranch{Condition: condOp, True: thenBlock, False: elseBlock})

	lc.current = thenBlock
	thenVal, err := lc.lowerBlockExpr(e.Then, expected)
	if err != nil {
		return Value{}, err
	}
	thenEnd := lc.current

	lc.current = elseBlock
	var elseVal Value
	if e.Else != nil {
		elseVal, err = lc.lowerBlockExpr(e.Else, expected)
		if err != nil {
			return Value{}, err
		}
	} else {
		elseVal = VoidValue()
	}
	elseEnd := lc.current

	typ := types.Void
	switch {
	case thenVal.IsVoid() || elseVal.IsVoid():
		typ = types.Void
	case !thenVal.IsNever():
		typ = thenVal.Type()
	case !elseVal.IsNever():
		typ = elseVal.Type()
	default:
		typ = types.Never
	}

	arms := []joinArm{thenArm(thenVal, thenEnd), thenArm(elseVal, elseEnd)}
	return lc.join(typ, arms, "if.merge"), nil
}

func thenArm(v Value, block *ir.BasicBlock) joinArm {
	if v.IsNever() {
		return joinArm{}
	}
	if v.IsVoid() {
		return joinArm{block: block}
	}
	return joinArm{block: block, value: v.operand}
}

// lowerLogicalAnd lowers `lhs && rhs`: on a false lhs the expression
// short-circuits to false; otherwise rhs is evaluated and its value is
// the result (spec §4.5 "join with a φ of (false, rhs_value)").
func (lc *LocalContext) lowerLogicalAnd(e *ast.BinaryExpr) (Value, *diag.Error) {
	lhsVal, err := lc.lowerExpr(e.Left, nil)
	if err != nil {
		return Value{}, err
	}
	lhsOp, err := lc.enforceType(lhsVal, types.Bool, false, e.Left.Span())
	if err != nil {
		return Value{}, err
	}
	shortBlock := lc.current

	rhsBlock := lc.Fn.NewBlock("and.rhs")
	merge := lc.Fn.NewBlock("and.merge")
	lc.current.Seal(&ir.ConditionalBranch{Condition: lhsOp, True: rhsBlock, False: merge})

	lc.current = rhsBlock
	rhsVal, err := lc.lowerExpr(e.Right, nil)
	if err != nil {
		return Value{}, err
	}
	rhsOp, err := lc.enforceType(rhsVal, types.Bool, false, e.Right.Span())
	if err != nil {
		return Value{}, err
	}
	rhsEnd := lc.current
	lc.branchTo(merge)

	lc.current = merge
	result := lc.Fn.NewRegister(types.Bool, "")
	lc.current.AppendPhi(&ir.Phi{Result: result, Incoming: []ir.PhiIncoming{
		{Block: shortBlock, Value: &ir.Constant{Typ: types.Bool, Value: false}},
		{Block: rhsEnd, Value: rhsOp},
	}})
	return Rvalue(result, types.Bool), nil
}

// lowerLogicalOr is lowerLogicalAnd's dual: a true lhs short-circuits
// to true (spec §4.5 "join with a φ of (true, rhs_value)").
func (lc *LocalContext) lowerLogicalOr(e *ast.BinaryExpr) (Value, *diag.Error) {
	lhsVal, err := lc.lowerExpr(e.Left, nil)
	if err != nil {
		return Value{}, err
	}
	lhsOp, err := lc.enforceType(lhsVal, types.Bool, false, e.Left.Span())
	if err != nil {
		return Value{}, err
	}
	shortBlock := lc.current

	rhsBlock := lc.Fn.NewBlock("or.rhs")
	merge := lc.Fn.NewBlock("or.merge")
	lc.current.Seal(&ir.ConditionalBranch{Condition: lhsOp, True: merge, False: rhsBlock})

	lc.current = rhsBlock
	rhsVal, err := lc.lowerExpr(e.Right, nil)
	if err != nil {
		return Value{}, err
	}
	rhsOp, err := lc.enforceType(rhsVal, types.Bool, false, e.Right.Span())
	if err != nil {
		return Value{}, err
	}
	rhsEnd := lc.current
	lc.branchTo(merge)

	lc.current = merge
	result := lc.Fn.NewRegister(types.Bool, "")
	lc.current.AppendPhi(&ir.Phi{Result: result, Incoming: []ir.PhiIncoming{
		{Block: shortBlock, Value: &ir.Constant{Typ: types.Bool, Value: true}},
		{Block: rhsEnd, Value: rhsOp},
	}})
	return Rvalue(result, types.Bool), nil
}

// lowerWhileStmt lowers a loop into header/body/end blocks, pushing a
// break/continue target pair for the duration of the body (spec
// §4.5). Always typed void: korvus has no loop-as-expression form.
func (lc *LocalContext) lowerWhileStmt(s *ast.WhileStmt) (Value, *diag.Error) {
	header := lc.Fn.NewBlock("loop.header")
	body := lc.Fn.NewBlock("loop.body")
	end := lc.Fn.NewBlock("loop.end")

	lc.branchTo(header)

	lc.current = header
	condVal, err := lc.lowerExpr(s.Cond, nil)
	if err != nil {
		return Value{}, err
	}
	condOp, err := lc.enforceType(condVal, types.Bool, false, s.Cond.Span())
	if err != nil {
		return Value{}, err
	}
	lc.current.Seal(&ir.ConditionalBranch{Condition: condOp, True: body, False: end})

	lc.current = body
	lc.pushLoop(end, header)
	if _, err := lc.lowerBlockExpr(s.Body, nil); err != nil {
		lc.popLoop()
		return Value{}, err
	}
	lc.popLoop()
	lc.branchTo(header)

	lc.current = end
	return VoidValue(), nil
}

func (lc *LocalContext) lowerBreakStmt(s *ast.BreakStmt) (Value, *diag.Error) {
	target, ok := lc.innermostBreakTarget()
	if !ok {
		return Value{}, diag.New(diag.KindInvalidBreak, s.Span(), "`break` outside a loop")
	}
	lc.branchTo(target)
	return BreakValue(), nil
}

func (lc *LocalContext) lowerContinueStmt(s *ast.ContinueStmt) (Value, *diag.Error) {
	target, ok := lc.innermostContinueTarget()
	if !ok {
		return Value{}, diag.New(diag.KindInvalidContinue, s.Span(), "`continue` outside a loop")
	}
	lc.branchTo(target)
	return ContinueValue(), nil
}
