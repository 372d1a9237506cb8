package elaborate

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/types"
)

// ResolveTypeExpr is resolveTypeExpr's exported form, shared with the
// lowerer: a `let` type annotation, an `as` cast target, and a
// `sizeof`/`alignof` operand all need the same named-type/Self/pointer/
// array/tuple resolution the fill pass uses.
func (c *GlobalContext) ResolveTypeExpr(expr ast.TypeExpr) (types.Handle, *diag.Error) {
	return c.resolveTypeExpr(expr)
}

// resolveTypeExpr turns a parsed type expression into a type handle,
// interning pointer/array/tuple shapes on demand (spec §4.4
// "fill pass... resolve member types"). A named path or `Self` is
// resolved through the path resolver; everything else recurses
// structurally.
func (c *GlobalContext) resolveTypeExpr(expr ast.TypeExpr) (types.Handle, *diag.Error) {
	switch t := expr.(type) {
	case *ast.NamedTypeExpr:
		// Primitives are reserved handles, never namespace symbols, so a
		// bare one-segment name is checked here first; nothing in the
		// namespace registry could ever produce "i32" as a symbol, so
		// this never shadows a user declaration.
		if len(t.Segments) == 1 {
			if h, ok := types.PrimitiveByName(t.Segments[0].Name); ok {
				return h, nil
			}
		}
		sym, err := c.Resolver().Resolve(c.currentModule, t.Segments, t.Span())
		if err != nil {
			return 0, err
		}
		if sym.Kind != types.SymbolType {
			return 0, diag.New(diag.KindNotAType, t.Span(), "path does not name a type")
		}
		return sym.Type, nil

	case *ast.SelfTypeExpr:
		if c.currentSelfType == nil {
			return 0, diag.New(diag.KindNoSelfType, t.Span(), "`Self` used outside an implement block or struct body")
		}
		return *c.currentSelfType, nil

	case *ast.PointerTypeExpr:
		pointee, err := c.resolveTypeExpr(t.Pointee)
		if err != nil {
			return 0, err
		}
		return c.Types.InternPointer(pointee, types.Normal(t.Mutable)), nil

	case *ast.ArrayTypeExpr:
		item, err := c.resolveTypeExpr(t.Item)
		if err != nil {
			return 0, err
		}
		if t.Length == nil {
			return c.Types.InternArray(item, nil), nil
		}
		length, lerr := c.evalConstArrayLength(t.Length)
		if lerr != nil {
			return 0, lerr
		}
		return c.Types.InternArray(item, &length), nil

	case *ast.TupleTypeExpr:
		items := make([]types.Handle, len(t.Items))
		for i, item := range t.Items {
			h, err := c.resolveTypeExpr(item)
			if err != nil {
				return 0, err
			}
			items[i] = h
		}
		return c.Types.InternTuple(items), nil

	default:
		return 0, diag.New(diag.KindNotAType, expr.Span(), "unrecognized type expression")
	}
}

// evalConstArrayLength evaluates `[T; N]`'s length position. Only a
// bare integer literal is accepted: sizeof/alignof would only be
// knowable once every type's layout is computed, but array lengths are
// evaluated during the fill pass, before CalculateProperties has run
// (spec §4.2's "array length constant-folding" — this package folds
// the literal case and diagnoses everything else rather than building
// out a general constant evaluator the fill pass can't yet support).
func (c *GlobalContext) evalConstArrayLength(expr ast.Expr) (uint64, *diag.Error) {
	lit, ok := expr.(*ast.IntegerLit)
	if !ok {
		return 0, diag.New(diag.KindNonConstantArrayLength, expr.Span(), "array length must be a constant integer literal")
	}
	return parseUintLiteral(lit.Text), nil
}

func parseUintLiteral(text string) uint64 {
	var n uint64
	for _, ch := range text {
		if ch < '0' || ch > '9' {
			continue
		}
		n = n*10 + uint64(ch-'0')
	}
	return n
}
