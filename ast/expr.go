package ast

// Expr represents an expression.  All expression nodes implement the `Expr`
// interface.
type Expr interface {
	Node

	expr()
}

// ConstantKind is the type of a literal constant as decided by the lexer
// from its spelling and suffix.
type ConstantKind int

// Enumeration of constant kinds.
const (
	ConstBool ConstantKind = iota
	ConstChar
	ConstWideChar
	ConstInt
	ConstUnsignedInt
	ConstLong
	ConstUnsignedLong
	ConstLongLong
	ConstUnsignedLongLong
	ConstFloat
	ConstDouble
	ConstLongDouble
)

// Constant is a literal number or character.  Integer kinds use Int (unsigned
// values as their bit pattern) and floating kinds use Float.
type Constant struct {
	NodeBase

	Kind  ConstantKind
	Int   int64
	Float float64
}

// StringLiteral is a (possibly wide) string literal.  Value holds the
// characters without the terminating zero.
type StringLiteral struct {
	NodeBase

	Wide  bool
	Value string
}

// Identifier is a reference to an ordinary identifier.
type Identifier struct {
	NodeBase

	Name string
}

// GenericAssociation is one arm of a generic selection.  The type is nil for
// the `default` arm.
type GenericAssociation struct {
	Type *TypeName
	Expr Expr
}

// GenericSelection is a `_Generic` expression.
type GenericSelection struct {
	NodeBase

	Control      Expr
	Associations []*GenericAssociation
}

// CompoundLiteral is a `(T){ ... }` expression.
type CompoundLiteral struct {
	NodeBase

	Type *TypeName
	Init *Initializer
}

// ArraySubscript is an `a[i]` expression.
type ArraySubscript struct {
	NodeBase

	Array, Index Expr
}

// FunctionCall is an `f(args)` expression.
type FunctionCall struct {
	NodeBase

	Func Expr
	Args []Expr
}

// StructMember is an `s.m` or `p->m` expression.
type StructMember struct {
	NodeBase

	Struct   Expr
	Member   string
	Indirect bool
}

// UnaryOp is a unary operator.
type UnaryOp int

// Enumeration of unary operators.
const (
	OpPlus UnaryOp = iota
	OpNegate
	OpInvert
	OpLogicalNot
	OpAddress
	OpIndirection
	OpPreIncrement
	OpPreDecrement
	OpPostIncrement
	OpPostDecrement
	OpSizeof
	OpAlignof
)

// UnaryOperation is the application of a unary operator to an expression.
type UnaryOperation struct {
	NodeBase

	Op      UnaryOp
	Operand Expr
}

// TypeTrait is `sizeof` or `_Alignof` applied to a type name.  The operator is
// one of OpSizeof and OpAlignof.
type TypeTrait struct {
	NodeBase

	Op   UnaryOp
	Type *TypeName
}

// Cast is a `(T)expr` expression.
type Cast struct {
	NodeBase

	Type *TypeName
	Expr Expr
}

// BinaryOp is a binary operator.
type BinaryOp int

// Enumeration of binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShiftLeft
	OpShiftRight
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLogicalAnd
	OpLogicalOr
)

// BinaryOperation is the application of a binary operator.
type BinaryOperation struct {
	NodeBase

	Op       BinaryOp
	Lhs, Rhs Expr
}

// Conditional is an `a ? b : c` expression.
type Conditional struct {
	NodeBase

	Cond, Then, Else Expr
}

// Assignment is a simple (`=`) or compound (`+=`, ...) assignment.  The
// operator is only meaningful for compound assignments.
type Assignment struct {
	NodeBase

	Compound bool
	Op       BinaryOp

	Target, Value Expr
}

// Comma is a comma expression.
type Comma struct {
	NodeBase

	Exprs []Expr
}

// OffsetofStep is one step of the member designator of `__builtin_offsetof`:
// either a member name or an array index.
type OffsetofStep struct {
	Member string
	Index  Expr
}

// BuiltinOffsetof is a `__builtin_offsetof(T, designator)` expression.
type BuiltinOffsetof struct {
	NodeBase

	Type *TypeName
	Path []*OffsetofStep
}

func (*Constant) expr()         {}
func (*StringLiteral) expr()    {}
func (*Identifier) expr()       {}
func (*GenericSelection) expr() {}
func (*CompoundLiteral) expr()  {}
func (*ArraySubscript) expr()   {}
func (*FunctionCall) expr()     {}
func (*StructMember) expr()     {}
func (*UnaryOperation) expr()   {}
func (*TypeTrait) expr()        {}
func (*Cast) expr()             {}
func (*BinaryOperation) expr()  {}
func (*Conditional) expr()      {}
func (*Assignment) expr()       {}
func (*Comma) expr()            {}
func (*BuiltinOffsetof) expr()  {}
