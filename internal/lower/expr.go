package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/types"
)

// lowerExpr dispatches over every expression variant the parser
// produces (spec §4.5). expected carries the type context a literal or
// `let`-less block tail should adapt to, or nil when there is none.
func (lc *LocalContext) lowerExpr(expr ast.Expr, expected *types.Handle) (Value, *diag.Error) {
	switch e := expr.(type) {
	case *ast.IntegerLit:
		return lc.ctx.lowerIntegerLit(e, expected)
	case *ast.FloatLit:
		return lc.ctx.lowerFloatLit(e, expected)
	case *ast.BoolLit:
		return lc.ctx.lowerBoolLit(e), nil
	case *ast.StringLit:
		return lc.ctx.lowerStringLit(e), nil
	case *ast.SizeofExpr:
		return lc.ctx.lowerSizeofExpr(e)
	case *ast.AlignofExpr:
		return lc.ctx.lowerAlignofExpr(e)

	case *ast.Ident:
		return lc.lowerName(e.Name, e.Span())
	case *ast.PathExpr:
		if len(e.Segments) == 1 {
			if v, ok := lc.lookup(e.Segments[0].Name); ok {
				return v, nil
			}
		}
		return lc.lowerPathExpr(e)
	case *ast.PathBaseExpr:
		return lc.lowerPathBaseExpr(e)

	case *ast.BinaryExpr:
		return lc.lowerBinaryExpr(e, expected)
	case *ast.UnaryExpr:
		return lc.lowerUnaryExpr(e)
	case *ast.AsExpr:
		return lc.lowerAsExpr(e)
	case *ast.AssignExpr:
		return lc.lowerAssignExpr(e)

	case *ast.RefExpr:
		return lc.lowerRefExpr(e)
	case *ast.DerefExpr:
		return lc.lowerDerefExpr(e)
	case *ast.MemberExpr:
		return lc.lowerMemberExpr(e)
	case *ast.TupleMemberExpr:
		return lc.lowerTupleMemberExpr(e)
	case *ast.IndexExpr:
		return lc.lowerIndexExpr(e)

	case *ast.CallExpr:
		return lc.lowerCallExpr(e)
	case *ast.MethodCallExpr:
		return lc.lowerMethodCallExpr(e)

	case *ast.StructLiteralExpr:
		return lc.lowerStructLiteralExpr(e, expected)

	case *ast.BlockExpr:
		return lc.lowerBlockExpr(e, expected)
	case *ast.IfExpr:
		return lc.lowerIfExpr(e, expected)
	case *ast.WhileStmt:
		return lc.lowerWhileStmt(e)
	case *ast.BreakStmt:
		return lc.lowerBreakStmt(e)
	case *ast.ContinueStmt:
		return lc.lowerContinueStmt(e)

	default:
		return Value{}, diag.New(diag.KindIncompatibleTypes, expr.Span(), "cannot lower expression of this form")
	}
}

// lowerName resolves a bare identifier: the lexical scope stack first
// (innermost wins), a single-segment path resolution otherwise.
func (lc *LocalContext) lowerName(name string, span diag.Span) (Value, *diag.Error) {
	if v, ok := lc.lookup(name); ok {
		return v, nil
	}
	return lc.lowerPathExpr(ast.NewPathExpr([]*ast.Ident{ast.NewIdent(name, span)}, span))
}
