package ast

import (
	"csem/sem"
	"csem/typing"
)

// DeclSpecifier is an element of a specifier list.  All specifier nodes
// implement the `DeclSpecifier` interface.
type DeclSpecifier interface {
	Node

	declSpecifier()
}

// TypeKeyword is a type-specifier keyword.
type TypeKeyword int

// Enumeration of type-specifier keywords.
const (
	KwVoid TypeKeyword = iota
	KwChar
	KwShort
	KwInt
	KwLong
	KwFloat
	KwDouble
	KwSigned
	KwUnsigned
	KwBool
	KwComplex
	KwAtomic
)

// TypeSpecifier is a type-specifier keyword.
type TypeSpecifier struct {
	NodeBase

	Keyword TypeKeyword
}

// StructSpecifier is a `struct` or `union` specifier.  A specifier with a body
// (Complete) defines the tag; one without references it.
type StructSpecifier struct {
	NodeBase

	Union    bool
	Tag      string
	Complete bool

	// Members holds *StructDeclaration and *StaticAssertion nodes.
	Members []Node
}

// StructDeclaration declares members of a structure.
type StructDeclaration struct {
	NodeBase

	Specifiers  []DeclSpecifier
	Declarators []*StructDeclarator
}

// StructDeclarator is a member declarator: the declarator is nil for unnamed
// bit-fields, and Width is non-nil for bit-fields.
type StructDeclarator struct {
	NodeBase

	Declarator Declarator
	Width      Expr
}

// EnumSpecifier is an `enum` specifier.
type EnumSpecifier struct {
	NodeBase

	Tag         string
	Complete    bool
	Enumerators []*EnumeratorDecl
}

// EnumeratorDecl is an enumerator: the value is nil if not given.
type EnumeratorDecl struct {
	NodeBase

	Name  string
	Value Expr
}

// TypedefName is a reference to a typedef name used as a type specifier.
type TypedefName struct {
	NodeBase

	Name string
}

// TypeQualifier is a type qualifier keyword.
type TypeQualifier struct {
	NodeBase

	Qualifier typing.Qualifiers
}

// StorageClassSpecifier is a storage-class keyword.
type StorageClassSpecifier struct {
	NodeBase

	Storage sem.StorageClass
}

// FunctionSpecifier is `inline` or `_Noreturn`.
type FunctionSpecifier struct {
	NodeBase

	Specifier sem.FunctionSpecifier
}

// AlignmentSpecifier is `_Alignas(expr)` or `_Alignas(T)`: exactly one of the
// fields is set.
type AlignmentSpecifier struct {
	NodeBase

	Expr Expr
	Type *TypeName
}

func (*TypeSpecifier) declSpecifier()         {}
func (*StructSpecifier) declSpecifier()       {}
func (*EnumSpecifier) declSpecifier()         {}
func (*TypedefName) declSpecifier()           {}
func (*TypeQualifier) declSpecifier()         {}
func (*StorageClassSpecifier) declSpecifier() {}
func (*FunctionSpecifier) declSpecifier()     {}
func (*AlignmentSpecifier) declSpecifier()    {}

// -----------------------------------------------------------------------------

// Declarator is a syntactic declarator.  All declarator nodes implement the
// `Declarator` interface.
type Declarator interface {
	Node

	declarator()
}

// IdentifierDeclarator is the innermost element of a declarator.  The name is
// empty for abstract declarators.
type IdentifierDeclarator struct {
	NodeBase

	Name string
}

// PointerDeclarator is a `*` with its qualifiers.
type PointerDeclarator struct {
	NodeBase

	Qualifiers []*TypeQualifier
	Declarator Declarator
}

// ArraySyntax is the shape of the brackets of an array declarator.
type ArraySyntax int

// Enumeration of array syntaxes.
const (
	ArrayUnbounded ArraySyntax = iota // []
	ArrayBounded                      // [expr] or [static expr]
	ArrayStar                         // [*]
)

// ArrayDeclarator is an array declarator.  Whether a bounded declarator
// denotes a constant length or a variable length array depends on its length
// expression.
type ArrayDeclarator struct {
	NodeBase

	Syntax     ArraySyntax
	Static     bool
	Qualifiers []*TypeQualifier
	Length     Expr
	Declarator Declarator
}

// FunctionDeclarator is a function declarator.  Old-style declarators list
// identifiers instead of parameter declarations.
type FunctionDeclarator struct {
	NodeBase

	Params         []*ParameterDeclaration
	IdentifierList bool
	Identifiers    []*IdentifierDeclarator
	Ellipsis       bool
	Declarator     Declarator
}

// ParameterDeclaration declares a function parameter.  The declarator may be
// nil.
type ParameterDeclaration struct {
	NodeBase

	Specifiers []DeclSpecifier
	Declarator Declarator
}

func (*IdentifierDeclarator) declarator() {}
func (*PointerDeclarator) declarator()    {}
func (*ArrayDeclarator) declarator()      {}
func (*FunctionDeclarator) declarator()   {}

// -----------------------------------------------------------------------------

// TypeName is a type in expression position: a specifier list and an abstract
// declarator (which may be nil).
type TypeName struct {
	NodeBase

	Specifiers []DeclSpecifier
	Declarator Declarator
}

// Declaration is a declaration with its init-declarators.
type Declaration struct {
	NodeBase

	Specifiers  []DeclSpecifier
	Declarators []*InitDeclarator
}

// InitDeclarator is a declarator with an optional initializer.
type InitDeclarator struct {
	NodeBase

	Declarator Declarator
	Init       *Initializer
}

// Initializer is either an expression or a braced list of entries.
type Initializer struct {
	NodeBase

	Expr Expr
	List []*InitializerEntry
}

// InitializerEntry is an element of a braced initializer.
type InitializerEntry struct {
	Designators []*Designator
	Init        *Initializer
}

// Designator is `.member` or `[index]`.
type Designator struct {
	NodeBase

	Member string
	Index  Expr
}

// StaticAssertion is a `_Static_assert(cond, "message")` declaration.
type StaticAssertion struct {
	NodeBase

	Cond    Expr
	Message *StringLiteral
}
