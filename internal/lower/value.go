// Package lower implements the expression/statement lowerer (spec
// §4.5): it walks a filled function body and produces the IR model
// (internal/ir) a later emitter serialises. It is grounded in the
// teacher's internal/mir lowering passes for the overall per-function
// driver shape, generalized to this language's simpler expression set
// and to φ-node value joins instead of the teacher's local-reassignment
// pattern (see DESIGN.md).
package lower

import (
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// valueKind discriminates the runtime-value variants an expression can
// lower to (spec §3 "Value").
type valueKind int

const (
	kindRvalue valueKind = iota
	kindIndirect
	kindVoid
	kindNever
	kindBreak
	kindContinue
)

// Value is the lowerer's working representation of an expression's
// result, richer than ir.Operand: besides an ordinary by-value result
// it tracks addressable locations (so assignment and `&`/`&mut` know
// what they're working with) and the three non-value control outcomes
// a statement-level expression can produce. There is no bound-method
// variant: a method call is its own AST node and is always lowered
// straight into a call, so a method value never needs representing on
// its own (see DESIGN.md).
type Value struct {
	kind      valueKind
	typ       types.Handle
	operand   ir.Operand // kindRvalue: the value itself; kindIndirect: the pointer
	semantics types.PointerSemantics
}

// Rvalue wraps an already-computed operand.
func Rvalue(op ir.Operand, typ types.Handle) Value {
	return Value{kind: kindRvalue, typ: typ, operand: op}
}

// Indirect wraps a pointer to pointee, carrying the pointer semantics
// the address was formed with (spec §4.5's Reference/Dereference/
// member-access cases all produce or consume this).
func Indirect(ptr ir.Operand, pointee types.Handle, sem types.PointerSemantics) Value {
	return Value{kind: kindIndirect, typ: pointee, operand: ptr, semantics: sem}
}

// VoidValue is the result of a void-typed expression: nothing to carry,
// but still a legal statement result.
func VoidValue() Value { return Value{kind: kindVoid, typ: types.Void} }

// NeverValue marks an expression whose block already ended in a
// terminator (return/break/continue/a call to a `never`-returning
// function): no further statement in the same block can run.
func NeverValue() Value { return Value{kind: kindNever, typ: types.Never} }

// BreakValue/ContinueValue are the typed results of `break`/`continue`
// themselves (spec §4.5: both are typed `never`, but the driver needs
// to tell them apart from an ordinary diverging call to avoid, e.g.,
// misreporting InvalidBreak at the statement that contains them).
func BreakValue() Value    { return Value{kind: kindBreak, typ: types.Never} }
func ContinueValue() Value { return Value{kind: kindContinue, typ: types.Never} }

// IsNever reports whether v represents control that never falls
// through to the following statement.
func (v Value) IsNever() bool {
	return v.kind == kindNever || v.kind == kindBreak || v.kind == kindContinue
}

// IsVoid reports whether v carries no usable result.
func (v Value) IsVoid() bool { return v.kind == kindVoid }

// IsIndirect reports whether v names an addressable location.
func (v Value) IsIndirect() bool { return v.kind == kindIndirect }

// Type returns the value's logical type (the pointee type for an
// Indirect value, not the pointer's own type).
func (v Value) Type() types.Handle { return v.typ }
