package lower

import (
	"github.com/korvus-lang/korvus/internal/ast"
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// FoldGlobals evaluates every package-level `let` initializer to a
// constant operand and installs it as a DefinedGlobal (spec §4.5: a
// global's initializer is folded at compile time, never lowered into
// any function). Globals may reference one another in any declaration
// order, so each is folded on first use and memoized; a global whose
// initializer depends on itself, directly or transitively, is reported
// rather than looped over forever.
func (c *Context) FoldGlobals() *diag.Error {
	for name, g := range c.Globals() {
		if _, done := c.foldedGlobals[name]; done {
			continue
		}
		op, err := c.foldGlobalNamed(name, g)
		if err != nil {
			return err
		}
		c.Unit.AddGlobal(&ir.DefinedGlobal{Name: name, Type: g.Type, Init: op})
	}
	return nil
}

func (c *Context) foldGlobalNamed(name string, g *elaborate.GlobalSignature) (ir.Operand, *diag.Error) {
	if op, ok := c.foldedGlobals[name]; ok {
		return op, nil
	}
	if c.foldingGlobals[name] {
		return nil, diag.New(diag.KindUnsupportedConstantExpression, g.Decl.Span(),
			"global %q's initializer depends on itself", g.Decl.Name.Name)
	}
	c.foldingGlobals[name] = true
	defer delete(c.foldingGlobals, name)

	typ := g.Type
	op, err := c.foldConstant(g.Decl.Value, &typ, g.Namespace)
	if err != nil {
		return nil, err
	}
	c.foldedGlobals[name] = op
	return op, nil
}

// foldConstant evaluates expr without ever opening a function or
// block: every case here either defers to the ordinary literal-lowering
// helpers (which already produce a bare operand with no instructions)
// or computes its result directly over the underlying Go value, since
// there is no basic block to append arithmetic instructions to. ns is
// the namespace expr's own global was declared in, used to resolve a
// bare name to a sibling constant.
func (c *Context) foldConstant(expr ast.Expr, expected *types.Handle, ns types.NamespaceHandle) (ir.Operand, *diag.Error) {
	switch e := expr.(type) {
	case *ast.IntegerLit:
		v, err := c.lowerIntegerLit(e, expected)
		if err != nil {
			return nil, err
		}
		return v.operand, nil
	case *ast.FloatLit:
		v, err := c.lowerFloatLit(e, expected)
		if err != nil {
			return nil, err
		}
		return v.operand, nil
	case *ast.BoolLit:
		return c.lowerBoolLit(e).operand, nil
	case *ast.StringLit:
		return c.lowerStringLit(e).operand, nil
	case *ast.SizeofExpr:
		v, err := c.lowerSizeofExpr(e)
		if err != nil {
			return nil, err
		}
		return v.operand, nil
	case *ast.AlignofExpr:
		v, err := c.lowerAlignofExpr(e)
		if err != nil {
			return nil, err
		}
		return v.operand, nil

	case *ast.PathExpr:
		if len(e.Segments) != 1 {
			return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(),
				"only a bare name may refer to another constant global")
		}
		return c.foldGlobalReference(e.Segments[0].Name, ns, e.Span())

	case *ast.UnaryExpr:
		return c.foldUnary(e, ns)
	case *ast.BinaryExpr:
		return c.foldBinary(e, ns)
	case *ast.AsExpr:
		return c.foldAs(e, ns)

	default:
		return nil, diag.New(diag.KindUnsupportedConstantExpression, expr.Span(),
			"this expression cannot be evaluated as a constant")
	}
}

func (c *Context) foldGlobalReference(name string, ns types.NamespaceHandle, span diag.Span) (ir.Operand, *diag.Error) {
	sym, ok := c.Names.Find(ns, name)
	if !ok || sym.Kind != types.SymbolValue {
		return nil, diag.New(diag.KindNonConstantSymbol, span, "%q is not a constant", name)
	}
	qualified := c.Names.Path(ns).Child(name).String()
	g, ok := c.Globals()[qualified]
	if !ok {
		return nil, diag.New(diag.KindNonConstantSymbol, span,
			"%q is not a compile-time constant", name)
	}
	return c.foldGlobalNamed(qualified, g)
}

func constOf(op ir.Operand) (*ir.Constant, bool) {
	k, ok := op.(*ir.Constant)
	return k, ok
}

func (c *Context) foldUnary(e *ast.UnaryExpr, ns types.NamespaceHandle) (ir.Operand, *diag.Error) {
	op, err := c.foldConstant(e.Operand, nil, ns)
	if err != nil {
		return nil, err
	}
	k, ok := constOf(op)
	if !ok {
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "operand is not a constant value")
	}
	switch e.Op {
	case "-":
		switch repr := c.Types.Repr(k.Typ).(type) {
		case types.IntegerRepr:
			n, _ := k.Value.(int64)
			return &ir.Constant{Typ: k.Typ, Value: wrapToWidth(uint64(-n), repr)}, nil
		case types.Float32Repr:
			f, _ := k.Value.(float64)
			return &ir.Constant{Typ: k.Typ, Value: float64(-float32(f))}, nil
		case types.Float64Repr:
			f, _ := k.Value.(float64)
			return &ir.Constant{Typ: k.Typ, Value: -f}, nil
		default:
			return nil, diag.New(diag.KindExpectedInteger, e.Span(), "`-` requires a numeric constant")
		}
	case "!":
		b, _ := k.Value.(bool)
		return &ir.Constant{Typ: types.Bool, Value: !b}, nil
	default:
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "unsupported unary operator %q", e.Op)
	}
}

func (c *Context) foldBinary(e *ast.BinaryExpr, ns types.NamespaceHandle) (ir.Operand, *diag.Error) {
	lhsOp, err := c.foldConstant(e.Left, nil, ns)
	if err != nil {
		return nil, err
	}
	lhs, ok := constOf(lhsOp)
	if !ok {
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Left.Span(), "operand is not a constant value")
	}
	rhsOp, err := c.foldConstant(e.Right, &lhs.Typ, ns)
	if err != nil {
		return nil, err
	}
	rhs, ok := constOf(rhsOp)
	if !ok {
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Right.Span(), "operand is not a constant value")
	}
	if lhs.Typ != rhs.Typ {
		return nil, diag.New(diag.KindIncompatibleTypes, e.Span(), "operands of %q have different types", e.Op)
	}

	switch e.Op {
	case "&&", "||":
		l, _ := lhs.Value.(bool)
		r, _ := rhs.Value.(bool)
		if e.Op == "&&" {
			return &ir.Constant{Typ: types.Bool, Value: l && r}, nil
		}
		return &ir.Constant{Typ: types.Bool, Value: l || r}, nil
	case "==", "!=", "<", "<=", ">", ">=":
		return c.foldCompare(e, lhs, rhs)
	case "+", "-", "*", "/", "%":
		return c.foldArith(e, lhs, rhs)
	default:
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "unsupported operator %q", e.Op)
	}
}

func (c *Context) foldArith(e *ast.BinaryExpr, lhs, rhs *ir.Constant) (ir.Operand, *diag.Error) {
	switch repr := c.Types.Repr(lhs.Typ).(type) {
	case types.IntegerRepr:
		a, _ := lhs.Value.(int64)
		b, _ := rhs.Value.(int64)
		var r int64
		switch e.Op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			if b == 0 {
				return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "division by zero in constant expression")
			}
			r = a / b
		case "%":
			if b == 0 {
				return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "division by zero in constant expression")
			}
			r = a % b
		}
		return &ir.Constant{Typ: lhs.Typ, Value: wrapToWidth(uint64(r), repr)}, nil
	case types.Float32Repr, types.Float64Repr:
		a, _ := lhs.Value.(float64)
		b, _ := rhs.Value.(float64)
		var r float64
		switch e.Op {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			r = a / b
		case "%":
			return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "`%%` is not defined for floats")
		}
		if _, ok := repr.(types.Float32Repr); ok {
			r = float64(float32(r))
		}
		return &ir.Constant{Typ: lhs.Typ, Value: r}, nil
	default:
		return nil, diag.New(diag.KindExpectedInteger, e.Span(), "arithmetic requires a numeric constant")
	}
}

func (c *Context) foldCompare(e *ast.BinaryExpr, lhs, rhs *ir.Constant) (ir.Operand, *diag.Error) {
	var result bool
	switch repr := c.Types.Repr(lhs.Typ).(type) {
	case types.IntegerRepr:
		a, _ := lhs.Value.(int64)
		b, _ := rhs.Value.(int64)
		if repr.Signed {
			result = compareOrdered(e.Op, a, b)
		} else {
			result = compareOrdered(e.Op, uint64(a), uint64(b))
		}
	case types.Float32Repr, types.Float64Repr:
		a, _ := lhs.Value.(float64)
		b, _ := rhs.Value.(float64)
		result = compareOrdered(e.Op, a, b)
	case types.BooleanRepr:
		a, _ := lhs.Value.(bool)
		b, _ := rhs.Value.(bool)
		switch e.Op {
		case "==":
			result = a == b
		case "!=":
			result = a != b
		default:
			return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "%q does not order booleans", e.Op)
		}
	default:
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "operands cannot be compared as constants")
	}
	return &ir.Constant{Typ: types.Bool, Value: result}, nil
}

type ordered interface {
	~int64 | ~uint64 | ~float64
}

func compareOrdered[T ordered](op string, a, b T) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// foldAs handles the numeric/bool subset of `as` that Explicit
// conversion allows (spec §4.3), recomputing the target representation
// directly rather than emitting a Convert instruction.
func (c *Context) foldAs(e *ast.AsExpr, ns types.NamespaceHandle) (ir.Operand, *diag.Error) {
	to, err := c.ResolveTypeExpr(e.Type)
	if err != nil {
		return nil, err
	}
	op, err := c.foldConstant(e.Value, nil, ns)
	if err != nil {
		return nil, err
	}
	k, ok := constOf(op)
	if !ok {
		return nil, diag.New(diag.KindUnsupportedConstantExpression, e.Span(), "operand is not a constant value")
	}
	if k.Typ == to {
		return k, nil
	}

	fromRepr := c.Types.Repr(k.Typ)
	toRepr := c.Types.Repr(to)

	asFloat := func() (float64, bool) {
		switch r := fromRepr.(type) {
		case types.IntegerRepr:
			n, _ := k.Value.(int64)
			if r.Signed {
				return float64(n), true
			}
			return float64(uint64(n)), true
		case types.Float32Repr, types.Float64Repr:
			f, _ := k.Value.(float64)
			return f, true
		case types.BooleanRepr:
			b, _ := k.Value.(bool)
			if b {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}

	switch target := toRepr.(type) {
	case types.IntegerRepr:
		var raw uint64
		switch r := fromRepr.(type) {
		case types.IntegerRepr:
			n, _ := k.Value.(int64)
			raw = uint64(n)
			_ = r
		case types.Float32Repr, types.Float64Repr:
			f, _ := asFloat()
			raw = uint64(int64(f))
		case types.BooleanRepr:
			b, _ := k.Value.(bool)
			if b {
				raw = 1
			}
		default:
			return nil, diag.New(diag.KindInconvertibleTypes, e.Span(), "cannot cast to %s", c.Types.Path(to))
		}
		return &ir.Constant{Typ: to, Value: wrapToWidth(raw, target)}, nil
	case types.Float32Repr:
		f, ok := asFloat()
		if !ok {
			return nil, diag.New(diag.KindInconvertibleTypes, e.Span(), "cannot cast to %s", c.Types.Path(to))
		}
		return &ir.Constant{Typ: to, Value: float64(float32(f))}, nil
	case types.Float64Repr:
		f, ok := asFloat()
		if !ok {
			return nil, diag.New(diag.KindInconvertibleTypes, e.Span(), "cannot cast to %s", c.Types.Path(to))
		}
		return &ir.Constant{Typ: to, Value: f}, nil
	default:
		return nil, diag.New(diag.KindInconvertibleTypes, e.Span(), "cannot cast to %s in a constant expression", c.Types.Path(to))
	}
}
