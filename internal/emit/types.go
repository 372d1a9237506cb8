package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// llvmType maps a type handle to its LLVM textual representation,
// following the same Repr-variant switch the rest of the core uses
// (spec §3's closed Repr sum; see types/repr.go) instead of the
// teacher's open-ended *types.Type walk over its own AST-derived type
// model.
func (g *Generator) llvmType(h types.Handle) (string, error) {
	switch r := g.reg.Repr(h).(type) {
	case types.VoidRepr:
		return "void", nil
	case types.NeverRepr:
		// A diverging expression's type never reaches a value
		// position the emitter has to materialise; the one place it
		// can appear is a function's declared return type, and LLVM
		// has no bottom type, so void is the closest fit.
		return "void", nil
	case types.BooleanRepr:
		return "i1", nil
	case types.IntegerRepr:
		return fmt.Sprintf("i%d", r.SizeBytes*8), nil
	case types.PointerSizedIntegerRepr:
		return "", fmt.Errorf("emit: isize/usize reached the emitter unresolved (TypeRegistry.ResolvePointerSizedIntegers did not run)")
	case types.Float32Repr:
		return "float", nil
	case types.Float64Repr:
		return "double", nil
	case types.PointerRepr:
		elem, err := g.llvmType(r.Pointee)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case types.ArrayRepr:
		if r.Length == nil {
			return "", fmt.Errorf("emit: unsized slice type %s has no direct LLVM representation (out of scope, see DESIGN.md)", g.reg.Path(h))
		}
		item, err := g.llvmType(r.Item)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d x %s]", *r.Length, item), nil
	case types.TupleRepr:
		parts := make([]string, len(r.Items))
		for i, it := range r.Items {
			p, err := g.llvmType(it)
			if err != nil {
				return "", err
			}
			parts[i] = p
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	case types.StructureRepr:
		return "%struct." + mangle(g.reg.Path(h).String()), nil
	case types.OpaqueStructureRepr:
		return "%struct." + mangle(g.reg.Path(h).String()), nil
	case types.FunctionRepr:
		return g.functionPointerType(r.Signature)
	default:
		return "", fmt.Errorf("emit: type %s has no LLVM representation (repr %T)", g.reg.Path(h), r)
	}
}

func (g *Generator) functionPointerType(sig types.FunctionSignature) (string, error) {
	ret, err := g.llvmType(sig.ReturnType)
	if err != nil {
		return "", err
	}
	params := make([]string, len(sig.ParameterTypes))
	for i, p := range sig.ParameterTypes {
		t, err := g.llvmType(p)
		if err != nil {
			return "", err
		}
		params[i] = t
	}
	args := strings.Join(params, ", ")
	if sig.Variadic {
		if args != "" {
			args += ", ..."
		} else {
			args = "..."
		}
	}
	return fmt.Sprintf("%s (%s)*", ret, args), nil
}

// emitDeclaredType writes one struct's LLVM type definition, or an
// opaque placeholder when its layout belongs to another compilation
// unit (spec's SUPPLEMENTED FEATURES "finish_package / external
// marking": `Registry.IsExternal` tells the emitter to reference
// rather than redefine a type a dependency package already owns).
func (g *Generator) emitDeclaredType(h types.Handle) error {
	if g.declaredTyp[h] {
		return nil
	}
	g.declaredTyp[h] = true

	name := mangle(g.reg.Path(h).String())
	switch r := g.reg.Repr(h).(type) {
	case types.OpaqueStructureRepr:
		g.line(fmt.Sprintf("%%struct.%s = type opaque", name))
		return nil
	case types.StructureRepr:
		if g.reg.IsExternal(h) {
			g.line(fmt.Sprintf("%%struct.%s = type opaque", name))
			return nil
		}
		fields := make([]string, 0, len(r.Members))
		for _, m := range r.Members {
			ft, err := g.llvmType(m.Type)
			if err != nil {
				return fmt.Errorf("emit: struct %s member %q: %w", name, m.Name, err)
			}
			fields = append(fields, ft)
		}
		if len(fields) == 0 {
			fields = []string{"i8"}
		}
		g.line(fmt.Sprintf("%%struct.%s = type { %s }", name, strings.Join(fields, ", ")))
		return nil
	default:
		return fmt.Errorf("emit: declared type %s has unexpected representation %T", name, r)
	}
}

// constantLiteral renders a compile-time constant's LLVM literal
// syntax. A string literal's folded byte array ([]byte, spec §4.5's
// "string literal folding") is the one aggregate constant this
// emitter ever has to print, since internal/lower's constant folding
// is itself scoped to scalars (see DESIGN.md); any other nil-backed
// constant is a zero/undef placeholder.
func (g *Generator) constantLiteral(c *ir.Constant) (string, error) {
	if bytes, ok := c.Value.([]byte); ok {
		return fmt.Sprintf("c\"%s\"", escapeBytes(bytes)), nil
	}
	switch g.reg.Repr(c.Typ).(type) {
	case types.BooleanRepr:
		if b, _ := c.Value.(bool); b {
			return "1", nil
		}
		return "0", nil
	case types.IntegerRepr:
		if c.Value == nil {
			return "0", nil
		}
		n, _ := c.Value.(int64)
		return strconv.FormatInt(n, 10), nil
	case types.Float32Repr, types.Float64Repr:
		f, _ := c.Value.(float64)
		return formatFloat(f), nil
	case types.PointerRepr:
		return "null", nil
	default:
		if c.Value == nil {
			return "zeroinitializer", nil
		}
		return "", fmt.Errorf("emit: constant of type %s has no LLVM literal form", g.reg.Path(c.Typ))
	}
}

// formatFloat renders f the way LLVM's assembler expects a
// float/double constant: decimal with a '.' or exponent present so it
// is never mistaken for an integer literal.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// escapeBytes renders raw bytes as an LLVM `c"..."` string body,
// matching the teacher's escapeStringForLLVM in
// codegen/mir2llvm/generator.go.
func escapeBytes(bs []byte) string {
	var sb strings.Builder
	for _, b := range bs {
		if b >= 32 && b < 127 && b != '"' && b != '\\' {
			sb.WriteByte(b)
		} else {
			sb.WriteString(fmt.Sprintf("\\%02X", b))
		}
	}
	return sb.String()
}
