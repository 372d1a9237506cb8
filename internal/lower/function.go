package lower

import (
	"github.com/korvus-lang/korvus/internal/diag"
	"github.com/korvus-lang/korvus/internal/elaborate"
	"github.com/korvus-lang/korvus/internal/ir"
	"github.com/korvus-lang/korvus/internal/types"
)

// LowerFunctions lowers every function and method the fill pass
// recorded (spec §4.5 "lower each function body once the whole
// package has been filled"): an `external function` becomes a forward
// declaration with no body, and everything else gets a complete
// ir.Function built from its signature and lowered block.
func (c *Context) LowerFunctions() *diag.Error {
	for name, sig := range c.Functions() {
		if sig.Decl.External {
			c.Unit.AddExternalFunction(&ir.ExternalFunction{
				Name:       name,
				ParamTypes: sig.Params,
				ReturnType: sig.Return,
				Variadic:   sig.Decl.IsVariadic,
			})
			continue
		}
		fn, err := c.lowerFunction(name, sig)
		if err != nil {
			return err
		}
		c.Unit.AddFunction(&ir.DefinedFunction{Name: name, Fn: fn})
	}
	return nil
}

// lowerFunction builds the register list (self, if this is a method,
// always typed `*mut Self` per the method-call lowering's receiver
// convention — see DESIGN.md — followed by the declared parameters),
// lowers the body, and closes it off with the tail expression's value
// as an implicit return, matching every other block-as-expression
// position in this language (spec §4.5: a function body is just a
// BlockExpr, and its tail is the function's result).
func (c *Context) lowerFunction(name string, sig *elaborate.FnSignature) (*ir.Function, *diag.Error) {
	var params []*ir.Register
	var selfType *types.Handle
	if sig.Self != nil {
		selfType = sig.Self
		params = append(params, &ir.Register{
			ID: 0, Name: "self", Typ: c.Types.InternPointer(*sig.Self, types.Mutable),
		})
	}
	for i, pt := range sig.Params {
		params = append(params, &ir.Register{
			ID:   len(params),
			Name: sig.Decl.Params[i].Name.Name,
			Typ:  pt,
		})
	}

	fn := ir.NewFunction(name, params, sig.Return, sig.Decl.IsVariadic)
	lc := newLocalContext(c, fn, sig.Return, selfType)
	for _, p := range params {
		lc.define(p.Name, Rvalue(p, p.Typ))
	}

	bodyVal, err := lc.lowerBlockExpr(sig.Decl.Body, &sig.Return)
	if err != nil {
		return nil, err
	}
	if !lc.dead() {
		if sig.Return == types.Void {
			lc.current.Seal(&ir.Return{})
		} else {
			op, cerr := lc.enforceType(bodyVal, sig.Return, false, sig.Decl.Body.Span())
			if cerr != nil {
				return nil, diag.New(diag.KindMissingReturnValue, sig.Decl.Body.Span(),
					"function %q does not return a value of type %s on every path", sig.Decl.Name.Name, c.Types.Path(sig.Return))
			}
			lc.current.Seal(&ir.Return{Value: op})
		}
	}
	return fn, nil
}
