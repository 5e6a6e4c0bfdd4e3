package sem

import (
	"csem/report"
	"csem/typing"
)

// ScopedIdentifier is a named entity stored in a scope.  The set of
// implementations is closed: objects, functions, enumeration constants, type
// tags and type definitions.
type ScopedIdentifier interface {
	// Identifier returns the name of the entity.
	Identifier() string

	// DeclSpan returns the span of the declaration which introduced the entity.
	DeclSpan() *report.TextSpan

	// Kind returns a descriptive name of the identifier class for error
	// messages.
	Kind() string

	// Release runs the cleanup hook of the translator payload, if any.  It is
	// called when the identifier is removed from its scope.
	Release()

	scopedIdentifier()
}

// Payload is data attached to a scoped identifier by a later phase (eg. the
// LLVM value of a global).  The cleanup hook runs exactly once when the
// identifier is removed from its scope.
type Payload struct {
	Data    interface{}
	Cleanup func()
}

// IdentifierBase holds the state shared by all scoped identifiers.
type IdentifierBase struct {
	Name    string
	Span    *report.TextSpan
	Payload *Payload
}

func (ib *IdentifierBase) Identifier() string {
	return ib.Name
}

func (ib *IdentifierBase) DeclSpan() *report.TextSpan {
	return ib.Span
}

func (ib *IdentifierBase) Release() {
	if ib.Payload != nil && ib.Payload.Cleanup != nil {
		cleanup := ib.Payload.Cleanup
		ib.Payload.Cleanup = nil
		cleanup()
	}
}

// Attach attaches a payload to the identifier, releasing any previous one.
func (ib *IdentifierBase) Attach(data interface{}, cleanup func()) {
	ib.Release()
	ib.Payload = &Payload{Data: data, Cleanup: cleanup}
}

func (ib *IdentifierBase) scopedIdentifier() {}

// -----------------------------------------------------------------------------

// InitSlot is one scalar of a static initializer: the value stored at the
// given byte offset of the initialized object.
type InitSlot struct {
	Offset uint64
	Type   typing.Type
	Value  ConstValue

	// Bit-field slots store their value in the storage unit at Offset.
	Bitfield  bool
	BitOffset uint64
	Bitwidth  uint64

	// Literal is set (and Value is nil) for character arrays initialized by
	// a string literal.
	Literal *StringLiteral
}

// Object is a variable.
type Object struct {
	IdentifierBase

	// Symbol is the name the object is emitted under: the identifier itself
	// for file scope objects and a unique name for block scope statics.
	Symbol string

	Type    typing.Type
	Storage StorageClass

	// Alignment is the explicit alignment of the object: 0 if none.
	Alignment uint64

	Linkage Linkage

	// Defined indicates whether a definition (as opposed to a declaration)
	// of the object has been seen.
	Defined bool

	// Initialized indicates whether an initializer has been seen.  The
	// initializer of objects with static storage is flattened into slots;
	// slots not listed are zero.
	Initialized bool
	Initializer []InitSlot
}

func (o *Object) Kind() string {
	return "object"
}

// HasStaticStorage returns whether the object lives for the whole execution of
// the program (or thread).
func (o *Object) HasStaticStorage() bool {
	return o.Storage != StorageAuto && o.Storage != StorageRegister && (o.Storage != StorageNone || o.Linkage != LinkageNone)
}

// Function is a function.
type Function struct {
	IdentifierBase

	Type      *typing.FunctionType
	Storage   StorageClass
	Specifier FunctionSpecifier
	Linkage   Linkage
	Defined   bool
}

func (f *Function) Kind() string {
	return "function"
}

// EnumConstant is an enumerator.
type EnumConstant struct {
	IdentifierBase

	Type  typing.Type
	Value int64
}

func (ec *EnumConstant) Kind() string {
	return "enumeration constant"
}

// TypeTag is the tag of a structure, union or enumeration.  Its type is a
// *typing.StructType or a *typing.EnumType.
type TypeTag struct {
	IdentifierBase

	Type typing.Type
}

func (tt *TypeTag) Kind() string {
	return "type tag"
}

// TypeDefinition is a typedef name.
type TypeDefinition struct {
	IdentifierBase

	Type typing.Type

	// Alignment is the explicit alignment of the typedef: 0 if none.
	Alignment uint64
}

func (td *TypeDefinition) Kind() string {
	return "type definition"
}

// TypeOf returns the type of a scoped identifier.
func TypeOf(sid ScopedIdentifier) typing.Type {
	switch v := sid.(type) {
	case *Object:
		return v.Type
	case *Function:
		return v.Type
	case *EnumConstant:
		return v.Type
	case *TypeTag:
		return v.Type
	case *TypeDefinition:
		return v.Type
	default:
		return nil
	}
}
