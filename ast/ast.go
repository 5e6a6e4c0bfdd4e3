package ast

import (
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// Node is the parent interface for all syntax nodes.  The analyzer never
// modifies the syntactic structure of a node: it only fills in its derived
// properties.
type Node interface {
	// Span returns the source text spanned by the node.
	Span() *report.TextSpan

	// Props returns the derived properties of the node.
	Props() *Properties
}

// Category is the kind of entity a node was analyzed as.
type Category int

// Enumeration of node categories.
const (
	CategoryUnknown Category = iota
	CategoryExpression
	CategoryType
	CategoryDeclaration
	CategoryInitDeclarator
	CategoryStaticAssertion
	CategoryStatement
	CategoryFunctionDefinition
	CategoryTranslationUnit
)

// Properties are the attributes the analyzer attaches to a node.
type Properties struct {
	Category Category

	// Type is the type of an expression, the type named by a type name, or the
	// declared type of a declarator.
	Type typing.Type

	// LValue indicates that the expression designates an object.
	LValue bool

	// Bitfield indicates that the expression designates a bit-field member.
	Bitfield bool

	// Value is the cached value of a constant expression: enumerator values,
	// array lengths and bit-field widths.
	Value sem.ConstValue

	// Scoped is the identifier an identifier expression resolves to, or the
	// entity a declarator declares.
	Scoped sem.ScopedIdentifier

	// Literal is the registry entry of a string literal expression.
	Literal *sem.StringLiteral

	// Identifier is the declared name of a declarator: empty for abstract
	// declarators.
	Identifier string

	Storage           sem.StorageClass
	FunctionSpecifier sem.FunctionSpecifier
	Alignment         uint64
}

// NodeBase is the base struct for all nodes.
type NodeBase struct {
	span  *report.TextSpan
	props Properties
}

// NewNodeBase creates a node base spanning the given text.
func NewNodeBase(span *report.TextSpan) NodeBase {
	return NodeBase{span: span}
}

func (nb *NodeBase) Span() *report.TextSpan {
	return nb.span
}

func (nb *NodeBase) Props() *Properties {
	return &nb.props
}

// -----------------------------------------------------------------------------

// TranslationUnit is the root of a file: a list of declarations, static
// assertions and function definitions.
type TranslationUnit struct {
	NodeBase

	Items []Node
}

// FunctionDefinition is a function with a body.  The declaration list holds
// the parameter declarations of old-style definitions.
type FunctionDefinition struct {
	NodeBase

	Specifiers   []DeclSpecifier
	Declarator   Declarator
	Declarations []*Declaration
	Body         *CompoundStatement
}

// Statement represents a statement.  All statement nodes implement the
// `Statement` interface.
type Statement interface {
	Node

	statement()
}

// CompoundStatement is a block: a list of declarations, static assertions and
// statements.
type CompoundStatement struct {
	NodeBase

	Items []Node
}

func (*CompoundStatement) statement() {}

// ExpressionStatement is an expression evaluated for its side effects.  The
// expression is nil for the empty statement.
type ExpressionStatement struct {
	NodeBase

	Expr Expr
}

func (*ExpressionStatement) statement() {}

// ReturnStatement returns from the enclosing function.  The expression may be
// nil.
type ReturnStatement struct {
	NodeBase

	Expr Expr
}

func (*ReturnStatement) statement() {}
