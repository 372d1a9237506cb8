package lower

// LowerDeclaredTypes copies every struct handle the outline pass
// discovered into the compilation unit's public type list, so the
// (external) emitter knows every aggregate layout it must declare
// before any function or global referencing it is emitted.
func (c *Context) LowerDeclaredTypes() {
	for _, h := range c.DeclaredTypes() {
		c.Unit.AddDeclaredType(h)
	}
}
