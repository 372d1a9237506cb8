// Package ast defines the node types produced by the (out of scope)
// parser and consumed by the elaborator and lowerer. Every node
// carries a Span so later stages can report errors against the
// original source text.
package ast

import "github.com/korvus-lang/korvus/internal/diag"

// Node is any AST node.
type Node interface {
	Span() diag.Span
}

// Decl is a top-level (or module-nested) declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a syntactic type annotation, not yet resolved to a
// types.Handle.
type TypeExpr interface {
	Node
	typeNode()
}

// Ident is a bare identifier.
type Ident struct {
	Name string
	span diag.Span
}

func NewIdent(name string, span diag.Span) *Ident { return &Ident{Name: name, span: span} }
func (i *Ident) Span() diag.Span                  { return i.span }
func (i *Ident) exprNode()                        {}

// File is one parsed compilation unit.
type File struct {
	Package *PackageDecl
	Mods    []*ModDecl
	Uses    []*UseDecl
	Decls   []Decl
	span    diag.Span
}

func NewFile(pkg *PackageDecl, mods []*ModDecl, uses []*UseDecl, decls []Decl, span diag.Span) *File {
	return &File{Package: pkg, Mods: mods, Uses: uses, Decls: decls, span: span}
}
func (f *File) Span() diag.Span { return f.span }

// PackageDecl names the root package of a file (only meaningful for
// the package's entry file; nested module files omit it).
type PackageDecl struct {
	Name *Ident
	span diag.Span
}

func NewPackageDecl(name *Ident, span diag.Span) *PackageDecl {
	return &PackageDecl{Name: name, span: span}
}
func (d *PackageDecl) Span() diag.Span { return d.span }

// ModDecl declares a nested module, e.g. `module a::b;`, whose body
// lives in another file the module locator resolves.
type ModDecl struct {
	Path []*Ident
	span diag.Span
}

func NewModDecl(path []*Ident, span diag.Span) *ModDecl { return &ModDecl{Path: path, span: span} }
func (d *ModDecl) Span() diag.Span                      { return d.span }
func (*ModDecl) declNode()                              {}

// UseDecl is `use a::b::c;` or `use a::b::* ;` (glob) or `use a::b as n;`.
type UseDecl struct {
	Path  []*Ident
	Alias *Ident // nil unless aliased
	Glob  bool
	span  diag.Span
}

func NewUseDecl(path []*Ident, alias *Ident, glob bool, span diag.Span) *UseDecl {
	return &UseDecl{Path: path, Alias: alias, Glob: glob, span: span}
}
func (d *UseDecl) Span() diag.Span { return d.span }
func (*UseDecl) declNode()         {}

// StructDecl is `struct Name { field: Type; ... }`.
type StructDecl struct {
	Name   *Ident
	Fields []*StructField
	span   diag.Span
}

func NewStructDecl(name *Ident, fields []*StructField, span diag.Span) *StructDecl {
	return &StructDecl{Name: name, Fields: fields, span: span}
}
func (d *StructDecl) Span() diag.Span { return d.span }
func (*StructDecl) declNode()         {}

type StructField struct {
	Name *Ident
	Type TypeExpr
	span diag.Span
}

func NewStructField(name *Ident, typ TypeExpr, span diag.Span) *StructField {
	return &StructField{Name: name, Type: typ, span: span}
}
func (f *StructField) Span() diag.Span { return f.span }

// OpaqueStructDecl is `struct Name;` with no body — an incomplete type.
type OpaqueStructDecl struct {
	Name *Ident
	span diag.Span
}

func NewOpaqueStructDecl(name *Ident, span diag.Span) *OpaqueStructDecl {
	return &OpaqueStructDecl{Name: name, span: span}
}
func (d *OpaqueStructDecl) Span() diag.Span { return d.span }
func (*OpaqueStructDecl) declNode()         {}

// ImplDecl is `implement TargetType { function ... }`.
type ImplDecl struct {
	Target  TypeExpr
	Methods []*FnDecl
	span    diag.Span
}

func NewImplDecl(target TypeExpr, methods []*FnDecl, span diag.Span) *ImplDecl {
	return &ImplDecl{Target: target, Methods: methods, span: span}
}
func (d *ImplDecl) Span() diag.Span { return d.span }
func (*ImplDecl) declNode()         {}

// Param is one function parameter.
type Param struct {
	Name *Ident
	Type TypeExpr
	span diag.Span
}

func NewParam(name *Ident, typ TypeExpr, span diag.Span) *Param {
	return &Param{Name: name, Type: typ, span: span}
}
func (p *Param) Span() diag.Span { return p.span }

// FnDecl is a function declaration, with or without a body (a body-less
// declaration is `external`).
type FnDecl struct {
	Name       *Ident
	Params     []*Param
	IsVariadic bool
	ReturnType TypeExpr // nil means void
	External   bool
	Body       *BlockExpr // nil when External
	span       diag.Span
}

func NewFnDecl(name *Ident, params []*Param, variadic bool, ret TypeExpr, external bool, body *BlockExpr, span diag.Span) *FnDecl {
	return &FnDecl{Name: name, Params: params, IsVariadic: variadic, ReturnType: ret, External: external, Body: body, span: span}
}
func (d *FnDecl) Span() diag.Span { return d.span }
func (*FnDecl) declNode()         {}

// LetDecl is a global `let name: Type = value;`.
type LetDecl struct {
	Name  *Ident
	Type  TypeExpr // required for globals (spec: MustSpecifyTypeForGlobal)
	Value Expr
	span  diag.Span
}

func NewLetDecl(name *Ident, typ TypeExpr, value Expr, span diag.Span) *LetDecl {
	return &LetDecl{Name: name, Type: typ, Value: value, span: span}
}
func (d *LetDecl) Span() diag.Span { return d.span }
func (*LetDecl) declNode()         {}

// BlockExpr is `{ stmt; stmt; tail? }`.
type BlockExpr struct {
	Stmts []Stmt
	Tail  Expr // nil if the block has no tail expression
	span  diag.Span
}

func NewBlockExpr(stmts []Stmt, tail Expr, span diag.Span) *BlockExpr {
	return &BlockExpr{Stmts: stmts, Tail: tail, span: span}
}
func (b *BlockExpr) Span() diag.Span { return b.span }
func (*BlockExpr) exprNode()         {}

// LetStmt is a local `let [mut] name[: Type] [= value];`.
type LetStmt struct {
	Mutable bool
	Name    *Ident
	Type    TypeExpr // may be nil if Value is present
	Value   Expr     // may be nil if Type is present
	span    diag.Span
}

func NewLetStmt(mutable bool, name *Ident, typ TypeExpr, value Expr, span diag.Span) *LetStmt {
	return &LetStmt{Mutable: mutable, Name: name, Type: typ, Value: value, span: span}
}
func (s *LetStmt) Span() diag.Span { return s.span }
func (*LetStmt) stmtNode()         {}

// ReturnStmt is `return [value];`.
type ReturnStmt struct {
	Value Expr // nil for a bare return
	span  diag.Span
}

func NewReturnStmt(value Expr, span diag.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}
func (s *ReturnStmt) Span() diag.Span { return s.span }
func (*ReturnStmt) stmtNode()         {}

// BreakStmt is `break;`.
type BreakStmt struct{ span diag.Span }

func NewBreakStmt(span diag.Span) *BreakStmt { return &BreakStmt{span: span} }
func (s *BreakStmt) Span() diag.Span         { return s.span }
func (*BreakStmt) stmtNode()                 {}
func (*BreakStmt) exprNode()                 {}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ span diag.Span }

func NewContinueStmt(span diag.Span) *ContinueStmt { return &ContinueStmt{span: span} }
func (s *ContinueStmt) Span() diag.Span            { return s.span }
func (*ContinueStmt) stmtNode()                    {}
func (*ContinueStmt) exprNode()                    {}

// WhileStmt is `while cond { body }`.
type WhileStmt struct {
	Cond Expr
	Body *BlockExpr
	span diag.Span
}

func NewWhileStmt(cond Expr, body *BlockExpr, span diag.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}
func (s *WhileStmt) Span() diag.Span { return s.span }
func (*WhileStmt) stmtNode()         {}
func (*WhileStmt) exprNode()         {}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Expr Expr
	span diag.Span
}

func NewExprStmt(expr Expr, span diag.Span) *ExprStmt { return &ExprStmt{Expr: expr, span: span} }
func (s *ExprStmt) Span() diag.Span                   { return s.span }
func (*ExprStmt) stmtNode()                           {}

// IfExpr is `if cond { then } [else { els }]` — an expression, since a
// taken branch can yield a value.
type IfExpr struct {
	Cond Expr
	Then *BlockExpr
	Else *BlockExpr // nil if no else clause; may itself wrap an IfExpr tail for else-if chains
	span diag.Span
}

func NewIfExpr(cond Expr, then, els *BlockExpr, span diag.Span) *IfExpr {
	return &IfExpr{Cond: cond, Then: then, Else: els, span: span}
}
func (e *IfExpr) Span() diag.Span { return e.span }
func (*IfExpr) exprNode()         {}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	span  diag.Span
}

func NewBinaryExpr(op string, left, right Expr, span diag.Span) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, span: span}
}
func (e *BinaryExpr) Span() diag.Span { return e.span }
func (*BinaryExpr) exprNode()         {}

// UnaryExpr is a prefix unary operator application (`-x`, `!x`).
type UnaryExpr struct {
	Op      string
	Operand Expr
	span    diag.Span
}

func NewUnaryExpr(op string, operand Expr, span diag.Span) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, span: span}
}
func (e *UnaryExpr) Span() diag.Span { return e.span }
func (*UnaryExpr) exprNode()         {}

// AssignExpr is `target = value`.
type AssignExpr struct {
	Target Expr
	Value  Expr
	span   diag.Span
}

func NewAssignExpr(target, value Expr, span diag.Span) *AssignExpr {
	return &AssignExpr{Target: target, Value: value, span: span}
}
func (e *AssignExpr) Span() diag.Span { return e.span }
func (*AssignExpr) exprNode()         {}

// RefExpr is `&x` (immutable reference).
type RefExpr struct {
	Mutable bool
	Operand Expr
	span    diag.Span
}

func NewRefExpr(mutable bool, operand Expr, span diag.Span) *RefExpr {
	return &RefExpr{Mutable: mutable, Operand: operand, span: span}
}
func (e *RefExpr) Span() diag.Span { return e.span }
func (*RefExpr) exprNode()         {}

// DerefExpr is `*p`.
type DerefExpr struct {
	Operand Expr
	span    diag.Span
}

func NewDerefExpr(operand Expr, span diag.Span) *DerefExpr {
	return &DerefExpr{Operand: operand, span: span}
}
func (e *DerefExpr) Span() diag.Span { return e.span }
func (*DerefExpr) exprNode()         {}

// MemberExpr is `base.field`.
type MemberExpr struct {
	Base  Expr
	Field *Ident
	span  diag.Span
}

func NewMemberExpr(base Expr, field *Ident, span diag.Span) *MemberExpr {
	return &MemberExpr{Base: base, Field: field, span: span}
}
func (e *MemberExpr) Span() diag.Span { return e.span }
func (*MemberExpr) exprNode()         {}

// TupleMemberExpr is `base.0`.
type TupleMemberExpr struct {
	Base  Expr
	Index int
	span  diag.Span
}

func NewTupleMemberExpr(base Expr, index int, span diag.Span) *TupleMemberExpr {
	return &TupleMemberExpr{Base: base, Index: index, span: span}
}
func (e *TupleMemberExpr) Span() diag.Span { return e.span }
func (*TupleMemberExpr) exprNode()         {}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Base  Expr
	Index Expr
	span  diag.Span
}

func NewIndexExpr(base, index Expr, span diag.Span) *IndexExpr {
	return &IndexExpr{Base: base, Index: index, span: span}
}
func (e *IndexExpr) Span() diag.Span { return e.span }
func (*IndexExpr) exprNode()         {}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	span   diag.Span
}

func NewCallExpr(callee Expr, args []Expr, span diag.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, span: span}
}
func (e *CallExpr) Span() diag.Span { return e.span }
func (*CallExpr) exprNode()         {}

// MethodCallExpr is `receiver.method(args...)`.
type MethodCallExpr struct {
	Receiver Expr
	Method   *Ident
	Args     []Expr
	span     diag.Span
}

func NewMethodCallExpr(receiver Expr, method *Ident, args []Expr, span diag.Span) *MethodCallExpr {
	return &MethodCallExpr{Receiver: receiver, Method: method, Args: args, span: span}
}
func (e *MethodCallExpr) Span() diag.Span { return e.span }
func (*MethodCallExpr) exprNode()         {}

// PathExpr is a syntactic path such as `a::b::c`, `super::f`,
// `package::g`, or `Self::m`. Segments are plain identifiers; a
// parenthesized type path (`<*T>::method`) is represented instead as
// PathBaseExpr.
type PathExpr struct {
	Segments []*Ident
	span     diag.Span
}

func NewPathExpr(segments []*Ident, span diag.Span) *PathExpr {
	return &PathExpr{Segments: segments, span: span}
}
func (e *PathExpr) Span() diag.Span { return e.span }
func (*PathExpr) exprNode()         {}

// PathBaseExpr is `<TypeExpr>::rest...`.
type PathBaseExpr struct {
	Base     TypeExpr
	Segments []*Ident
	span     diag.Span
}

func NewPathBaseExpr(base TypeExpr, segments []*Ident, span diag.Span) *PathBaseExpr {
	return &PathBaseExpr{Base: base, Segments: segments, span: span}
}
func (e *PathBaseExpr) Span() diag.Span { return e.span }
func (*PathBaseExpr) exprNode()         {}

// AsExpr is an explicit cast `value as Type`.
type AsExpr struct {
	Value Expr
	Type  TypeExpr
	span  diag.Span
}

func NewAsExpr(value Expr, typ TypeExpr, span diag.Span) *AsExpr {
	return &AsExpr{Value: value, Type: typ, span: span}
}
func (e *AsExpr) Span() diag.Span { return e.span }
func (*AsExpr) exprNode()         {}

// SizeofExpr is `sizeof T`.
type SizeofExpr struct {
	Type TypeExpr
	span diag.Span
}

func NewSizeofExpr(typ TypeExpr, span diag.Span) *SizeofExpr {
	return &SizeofExpr{Type: typ, span: span}
}
func (e *SizeofExpr) Span() diag.Span { return e.span }
func (*SizeofExpr) exprNode()         {}

// AlignofExpr is `alignof T`.
type AlignofExpr struct {
	Type TypeExpr
	span diag.Span
}

func NewAlignofExpr(typ TypeExpr, span diag.Span) *AlignofExpr {
	return &AlignofExpr{Type: typ, span: span}
}
func (e *AlignofExpr) Span() diag.Span { return e.span }
func (*AlignofExpr) exprNode()         {}

// StructLiteralExpr is `Type { field: value, ... }`.
type StructLiteralExpr struct {
	Type   TypeExpr
	Fields []*StructLiteralField
	span   diag.Span
}

type StructLiteralField struct {
	Name  *Ident
	Value Expr
}

func NewStructLiteralExpr(typ TypeExpr, fields []*StructLiteralField, span diag.Span) *StructLiteralExpr {
	return &StructLiteralExpr{Type: typ, Fields: fields, span: span}
}
func (e *StructLiteralExpr) Span() diag.Span { return e.span }
func (*StructLiteralExpr) exprNode()         {}

// IntegerLit is an integer literal with an optional type suffix, e.g. `10i32`.
type IntegerLit struct {
	Text   string
	Suffix string // "" if no suffix was written
	span   diag.Span
}

func NewIntegerLit(text, suffix string, span diag.Span) *IntegerLit {
	return &IntegerLit{Text: text, Suffix: suffix, span: span}
}
func (l *IntegerLit) Span() diag.Span { return l.span }
func (*IntegerLit) exprNode()         {}

// FloatLit is a floating-point literal with an optional suffix.
type FloatLit struct {
	Text   string
	Suffix string
	span   diag.Span
}

func NewFloatLit(text, suffix string, span diag.Span) *FloatLit {
	return &FloatLit{Text: text, Suffix: suffix, span: span}
}
func (l *FloatLit) Span() diag.Span { return l.span }
func (*FloatLit) exprNode()         {}

// StringLit is a string literal; Value is already escape-decoded.
type StringLit struct {
	Value string
	span  diag.Span
}

func NewStringLit(value string, span diag.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}
func (l *StringLit) Span() diag.Span { return l.span }
func (*StringLit) exprNode()         {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Value bool
	span  diag.Span
}

func NewBoolLit(value bool, span diag.Span) *BoolLit { return &BoolLit{Value: value, span: span} }
func (l *BoolLit) Span() diag.Span                   { return l.span }
func (*BoolLit) exprNode()                           {}
