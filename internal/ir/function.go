package ir

import (
	"fmt"

	"github.com/korvus-lang/korvus/internal/types"
)

// Function owns an ordered list of basic blocks, preserved in
// creation order into the emitted IR (spec §5 "basic blocks are
// appended in creation order and this order is preserved"). It also
// owns the monotonically increasing register and label counters the
// lowerer's per-function local context draws from (spec §4.5).
type Function struct {
	Name       string
	Params     []*Register
	ReturnType types.Handle
	Variadic   bool
	Blocks     []*BasicBlock

	nextRegister int
	nextLabel    int
}

// NewFunction creates an empty function and its entry block, already
// sealed with an Unreachable terminator (spec §4.5 "the initial
// terminator is Unreachable so that unfinished paths remain
// well-formed").
func NewFunction(name string, params []*Register, ret types.Handle, variadic bool) *Function {
	f := &Function{Name: name, Params: params, ReturnType: ret, Variadic: variadic}
	for _, p := range params {
		if p.ID >= f.nextRegister {
			f.nextRegister = p.ID + 1
		}
	}
	entry := f.NewBlock("entry")
	entry.Terminator = &Unreachable{}
	return f
}

// Entry returns the function's first block.
func (f *Function) Entry() *BasicBlock {
	return f.Blocks[0]
}

// NewRegister allocates a fresh SSA register of typ, optionally named
// for readability (spec §4.5 "monotonically increasing counters for
// anonymous SSA registers").
func (f *Function) NewRegister(typ types.Handle, name string) *Register {
	r := &Register{ID: f.nextRegister, Name: name, Typ: typ}
	f.nextRegister++
	return r
}

// NewBlock appends a fresh, terminator-less basic block and returns
// it. label is combined with a counter to guarantee uniqueness even
// when the lowerer reuses the same source-level label text (e.g.
// several `while` loops each wanting a block named "cond").
func (f *Function) NewBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: fmt.Sprintf("%s%d", label, f.nextLabel)}
	f.nextLabel++
	f.Blocks = append(f.Blocks, b)
	return b
}

// AppendInstruction adds instr to block's linear instruction list. It
// panics if block is already sealed — appending after a terminator has
// been set would silently reorder the emitted IR (spec §4.5's "sealed"
// state: "further appending requires starting a new block").
func (b *BasicBlock) AppendInstruction(instr Instruction) {
	if b.Sealed() {
		panic("ir: instruction appended to a sealed block")
	}
	b.Instructions = append(b.Instructions, instr)
}

// AppendPhi adds a φ-node to block's head.
func (b *BasicBlock) AppendPhi(phi *Phi) {
	b.Phis = append(b.Phis, phi)
}

// Seal installs term as block's terminator. It panics if block is
// already sealed; a block may only be finished once.
func (b *BasicBlock) Seal(term Terminator) {
	if b.Sealed() {
		panic("ir: block sealed twice")
	}
	b.Terminator = term
}
