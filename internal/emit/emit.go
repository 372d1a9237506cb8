// Package emit is the (external) emitter spec §4.6 hands off to: a
// pure function from a lowered ir.CompilationUnit to LLVM textual IR,
// grounded on the teacher's two code generators
// (`malphas-lang/internal/codegen/llvm` and its MIR-driven sibling
// `.../mir2llvm`) — the buffered-line `emit`/`nextReg`-style writer,
// module-header shape, and struct/global declaration order all follow
// those generators. Unlike the teacher, this emitter walks an
// already-complete SSA form (registers, blocks and φ-nodes are fully
// assigned by internal/lower) rather than an AST, so there is no
// local-variable table, no type inference, and no register/label
// counters of its own to maintain: ir.Register.ID and
// ir.BasicBlock.Label are already stable and unique.
package emit

import (
	"fmt"
	"strings"

	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// Generator holds the one piece of state the serialization genuinely
// needs across a whole unit: which struct types have already had their
// body emitted, so a type reached from two different fields only gets
// declared once (mirrors the teacher's structTypes/enumTypes
// membership maps in LLVMGenerator).
type Generator struct {
	reg         *types.TypeRegistry
	b           strings.Builder
	declaredTyp map[types.Handle]bool
}

// NewGenerator creates an emitter backed by reg, the same type
// registry the elaborator and lowerer populated for this package.
func NewGenerator(reg *types.TypeRegistry) *Generator {
	return &Generator{reg: reg, declaredTyp: make(map[types.Handle]bool)}
}

// Generate serializes unit as a complete LLVM IR module targeting
// triple (spec §4.6's emitter contract). It is safe to call once per
// Generator.
func (g *Generator) Generate(unit *ir.CompilationUnit, triple string) (string, error) {
	g.emitHeader(unit.Package, triple)

	for _, h := range unit.DeclaredTypes {
		if err := g.emitDeclaredType(h); err != nil {
			return "", err
		}
	}
	if len(unit.DeclaredTypes) > 0 {
		g.line("")
	}

	for _, eg := range unit.ExternalGlobals {
		if err := g.emitExternalGlobal(eg); err != nil {
			return "", err
		}
	}
	for _, ef := range unit.ExternalFunctions {
		if err := g.emitExternalFunction(ef); err != nil {
			return "", err
		}
	}
	if len(unit.ExternalGlobals)+len(unit.ExternalFunctions) > 0 {
		g.line("")
	}

	for _, dg := range unit.Globals {
		if err := g.emitGlobal(dg); err != nil {
			return "", err
		}
	}
	if len(unit.Globals) > 0 {
		g.line("")
	}

	for _, df := range unit.Functions {
		if err := g.emitFunction(df); err != nil {
			return "", err
		}
	}

	return g.b.String(), nil
}

// Generate is the package-level convenience entry point cmd/korvusc
// calls: build a Generator and run it once.
func Generate(unit *ir.CompilationUnit, reg *types.TypeRegistry, triple string) (string, error) {
	return NewGenerator(reg).Generate(unit, triple)
}

func (g *Generator) line(s string) {
	g.b.WriteString(s)
	g.b.WriteString("\n")
}

// emitHeader writes the module preamble. The teacher's header also
// pins an explicit `target datalayout` string tuned for its GC
// runtime; this emitter has no runtime to match the layout of (spec's
// Non-goals exclude a standard library), so it leaves datalayout
// unset and lets the triple alone pick LLVM's default for the target,
// noted in DESIGN.md.
func (g *Generator) emitHeader(pkg, triple string) {
	g.line(fmt.Sprintf("; ModuleID = '%s'", pkg))
	g.line(fmt.Sprintf("source_filename = %q", pkg))
	g.line(fmt.Sprintf("target triple = %q", triple))
	g.line("")
}

func (g *Generator) emitExternalGlobal(eg *ir.ExternalGlobal) error {
	t, err := g.llvmType(eg.Type)
	if err != nil {
		return err
	}
	g.line(fmt.Sprintf("@%s = external global %s", mangle(eg.Name), t))
	return nil
}

func (g *Generator) emitExternalFunction(ef *ir.ExternalFunction) error {
	ret, err := g.llvmType(ef.ReturnType)
	if err != nil {
		return err
	}
	params := make([]string, 0, len(ef.ParamTypes))
	for _, pt := range ef.ParamTypes {
		t, err := g.llvmType(pt)
		if err != nil {
			return err
		}
		params = append(params, t)
	}
	if ef.Variadic {
		params = append(params, "...")
	}
	g.line(fmt.Sprintf("declare %s @%s(%s)", ret, mangle(ef.Name), strings.Join(params, ", ")))
	return nil
}

func (g *Generator) emitGlobal(dg *ir.DefinedGlobal) error {
	t, err := g.llvmType(dg.Type)
	if err != nil {
		return err
	}
	init, err := g.globalInitializer(dg.Init)
	if err != nil {
		return err
	}
	qualifier := "constant"
	if dg.Mutable {
		qualifier = "global"
	}
	line := fmt.Sprintf("@%s = %s %s %s", mangle(dg.Name), qualifier, t, init)
	if align, err := g.reg.Alignment(dg.Type); err == nil {
		line += fmt.Sprintf(", align %d", align)
	}
	g.line(line)
	return nil
}

// globalInitializer renders the value a DefinedGlobal.Init contributes
// at module scope: either a literal constant, or a reference to
// another global by name (spec §3's Value model lets a global's Init
// be a bare GlobalRef, e.g. a function-pointer global).
func (g *Generator) globalInitializer(op ir.Operand) (string, error) {
	switch v := op.(type) {
	case *ir.Constant:
		return g.constantLiteral(v)
	case *ir.GlobalRef:
		return "@" + mangle(v.Name), nil
	default:
		return "", fmt.Errorf("emit: unsupported global initializer %T", op)
	}
}

// mangle turns a `::`-separated absolute path (or an already-bare
// anonymous name like `.const.pkg.3`) into a valid, stable LLVM global
// identifier.
func mangle(name string) string {
	name = strings.TrimPrefix(name, "::")
	return strings.ReplaceAll(name, "::", ".")
}
