package ir

import "github.com/korvus-lang/korvus/internal/types"

// ExternalGlobal is a forward declaration of a global defined in
// another compilation unit or by the host environment.
type ExternalGlobal struct {
	Name string
	Type types.Handle
}

// ExternalFunction is a forward declaration of a function defined
// elsewhere — including every `external function` declaration (spec
// §6 "External interfaces").
type ExternalFunction struct {
	Name       string
	ParamTypes []types.Handle
	ReturnType types.Handle
	Variadic   bool
}

// DefinedGlobal is a global variable this compilation unit owns.
// Mutable globals are zero/Init-initialised storage; immutable ones
// are true constants.
type DefinedGlobal struct {
	Name    string
	Type    types.Handle
	Mutable bool
	Init    Operand
}

// DefinedFunction pairs a function's emitted name with its lowered
// body.
type DefinedFunction struct {
	Name string
	Fn   *Function
}

// CompilationUnit is the lowerer's complete output for one package
// (spec §4.6 "a compilation unit owns: declared types; external
// globals; external functions; defined globals; defined functions").
// The (external) emitter is a pure function from a CompilationUnit to
// LLVM textual IR.
type CompilationUnit struct {
	Package string

	DeclaredTypes     []types.Handle
	ExternalGlobals   []*ExternalGlobal
	ExternalFunctions []*ExternalFunction
	Globals           []*DefinedGlobal
	Functions         []*DefinedFunction
}

// NewCompilationUnit creates an empty unit for pkg.
func NewCompilationUnit(pkg string) *CompilationUnit {
	return &CompilationUnit{Package: pkg}
}

// AddDeclaredType registers a named type as part of this unit's public
// surface, so the emitter knows to declare its aggregate layout.
func (u *CompilationUnit) AddDeclaredType(h types.Handle) {
	u.DeclaredTypes = append(u.DeclaredTypes, h)
}

// AddExternalGlobal records a forward declaration for a global defined
// elsewhere.
func (u *CompilationUnit) AddExternalGlobal(g *ExternalGlobal) {
	u.ExternalGlobals = append(u.ExternalGlobals, g)
}

// AddExternalFunction records a forward declaration for a function
// defined elsewhere.
func (u *CompilationUnit) AddExternalFunction(f *ExternalFunction) {
	u.ExternalFunctions = append(u.ExternalFunctions, f)
}

// AddGlobal records a global this unit defines.
func (u *CompilationUnit) AddGlobal(g *DefinedGlobal) {
	u.Globals = append(u.Globals, g)
}

// AddFunction records a function this unit defines.
func (u *CompilationUnit) AddFunction(f *DefinedFunction) {
	u.Functions = append(u.Functions, f)
}
