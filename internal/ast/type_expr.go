package ast

import "github.com/korvus-lang/korvus/internal/diag"

// NamedTypeExpr is a path used in type position, e.g. `i32` or `a::Point`.
type NamedTypeExpr struct {
	Segments []*Ident
	span     diag.Span
}

func NewNamedTypeExpr(segments []*Ident, span diag.Span) *NamedTypeExpr {
	return &NamedTypeExpr{Segments: segments, span: span}
}
func (t *NamedTypeExpr) Span() diag.Span { return t.span }
func (*NamedTypeExpr) typeNode()         {}

// PointerTypeExpr is `*T` (immutable) or `*mut T` (mutable).
type PointerTypeExpr struct {
	Mutable bool
	Pointee TypeExpr
	span    diag.Span
}

func NewPointerTypeExpr(mutable bool, pointee TypeExpr, span diag.Span) *PointerTypeExpr {
	return &PointerTypeExpr{Mutable: mutable, Pointee: pointee, span: span}
}
func (t *PointerTypeExpr) Span() diag.Span { return t.span }
func (*PointerTypeExpr) typeNode()         {}

// ArrayTypeExpr is `[T; N]` (sized) or `[T]` (unsized/slice). Length is
// nil for the unsized form.
type ArrayTypeExpr struct {
	Item   TypeExpr
	Length Expr // nil means unsized
	span   diag.Span
}

func NewArrayTypeExpr(item TypeExpr, length Expr, span diag.Span) *ArrayTypeExpr {
	return &ArrayTypeExpr{Item: item, Length: length, span: span}
}
func (t *ArrayTypeExpr) Span() diag.Span { return t.span }
func (*ArrayTypeExpr) typeNode()         {}

// TupleTypeExpr is `(A, B, C)`.
type TupleTypeExpr struct {
	Items []TypeExpr
	span  diag.Span
}

func NewTupleTypeExpr(items []TypeExpr, span diag.Span) *TupleTypeExpr {
	return &TupleTypeExpr{Items: items, span: span}
}
func (t *TupleTypeExpr) Span() diag.Span { return t.span }
func (*TupleTypeExpr) typeNode()         {}

// SelfTypeExpr is the bare `Self` keyword used inside a struct body or
// an `implement` block.
type SelfTypeExpr struct{ span diag.Span }

func NewSelfTypeExpr(span diag.Span) *SelfTypeExpr { return &SelfTypeExpr{span: span} }
func (t *SelfTypeExpr) Span() diag.Span            { return t.span }
func (*SelfTypeExpr) typeNode()                    {}
