package lower

import (
	"fmt"

	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// Context is the package-wide lowering state: the filled elaborator
// context (registries, resolver, `Self` tracking) plus the
// compilation unit every lowered function and global is accumulated
// into. One Context lowers an entire package, function by function,
// after CompilePackage has returned successfully (spec §4.4's pass
// ordering: lowering only ever sees a fully filled package).
type Context struct {
	*elaborate.GlobalContext

	Unit *ir.CompilationUnit

	stringConstCount int
	foldedGlobals    map[string]ir.Operand
	foldingGlobals   map[string]bool
}

// NewContext wraps an already-filled elaborator context for lowering.
func NewContext(gc *elaborate.GlobalContext) *Context {
	return &Context{
		GlobalContext:  gc,
		Unit:           ir.NewCompilationUnit(""),
		foldedGlobals:  make(map[string]ir.Operand),
		foldingGlobals: make(map[string]bool),
	}
}

// nextStringConstName returns a fresh, stable anonymous-global name for
// a folded string literal, incorporating the package so two packages'
// anonymous constants never collide at link time (spec §4.5 "constant
// folding... emits a fresh anonymous global").
func (c *Context) nextStringConstName(pkg string) string {
	name := fmt.Sprintf(".const.%s.%d", pkg, c.stringConstCount)
	c.stringConstCount++
	return name
}

// LocalContext is the per-function lowering state (spec §4.5): the
// function being built, a stack of lexical scopes mapping name to
// Value (innermost first), and break/continue targets for the
// enclosing loop nest. The register/block counters the teacher keeps
// on the lowerer struct live on ir.Function itself here, since nothing
// outside lowering needs to observe them.
type LocalContext struct {
	ctx *Context

	Fn         *ir.Function
	current    *ir.BasicBlock
	returnType types.Handle
	selfType   *types.Handle

	scopes          []map[string]Value
	breakTargets    []*ir.BasicBlock
	continueTargets []*ir.BasicBlock
}

// newLocalContext starts lowering one function: fn's entry block is the
// initial current block, and its parameters are bound into the
// outermost scope.
func newLocalContext(ctx *Context, fn *ir.Function, returnType types.Handle, selfType *types.Handle) *LocalContext {
	lc := &LocalContext{
		ctx:        ctx,
		Fn:         fn,
		current:    fn.Entry(),
		returnType: returnType,
		selfType:   selfType,
	}
	lc.current.Terminator = nil // NewFunction seals entry with Unreachable; lowering replaces it
	lc.pushScope()
	return lc
}

func (lc *LocalContext) pushScope() {
	lc.scopes = append(lc.scopes, make(map[string]Value))
}

func (lc *LocalContext) popScope() {
	lc.scopes = lc.scopes[:len(lc.scopes)-1]
}

// define binds name to v in the innermost scope, shadowing any outer
// binding of the same name (spec §4.5 "let... insert into innermost
// scope").
func (lc *LocalContext) define(name string, v Value) {
	lc.scopes[len(lc.scopes)-1][name] = v
}

// lookup walks scopes from innermost to outermost (spec §4.5's Path
// case: "innermost-scope-wins shadowing").
func (lc *LocalContext) lookup(name string) (Value, bool) {
	for i := len(lc.scopes) - 1; i >= 0; i-- {
		if v, ok := lc.scopes[i][name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// dead reports whether the current block already has a terminator —
// the "dead" block state (spec §4.5): once true, lowering must stop
// appending to this block; any further source-level statement in it is
// unreachable and is simply not lowered.
func (lc *LocalContext) dead() bool {
	return lc.current.Sealed()
}

// startNewBlock opens a fresh block and makes it current, matching
// every control-flow lowering case's "start_new_block(label)" step
// (spec §4.5).
func (lc *LocalContext) startNewBlock(label string) *ir.BasicBlock {
	b := lc.Fn.NewBlock(label)
	lc.current = b
	return b
}

// branchTo seals the current block with an unconditional jump to
// target, unless it is already sealed (a diverging statement already
// ran in it, making the jump itself dead code).
func (lc *LocalContext) branchTo(target *ir.BasicBlock) {
	if lc.dead() {
		return
	}
	lc.current.Seal(&ir.Branch{Target: target})
}

func (lc *LocalContext) pushLoop(breakTarget, continueTarget *ir.BasicBlock) {
	lc.breakTargets = append(lc.breakTargets, breakTarget)
	lc.continueTargets = append(lc.continueTargets, continueTarget)
}

func (lc *LocalContext) popLoop() {
	lc.breakTargets = lc.breakTargets[:len(lc.breakTargets)-1]
	lc.continueTargets = lc.continueTargets[:len(lc.continueTargets)-1]
}

func (lc *LocalContext) innermostBreakTarget() (*ir.BasicBlock, bool) {
	if len(lc.breakTargets) == 0 {
		return nil, false
	}
	return lc.breakTargets[len(lc.breakTargets)-1], true
}

func (lc *LocalContext) innermostContinueTarget() (*ir.BasicBlock, bool) {
	if len(lc.continueTargets) == 0 {
		return nil, false
	}
	return lc.continueTargets[len(lc.continueTargets)-1], true
}
