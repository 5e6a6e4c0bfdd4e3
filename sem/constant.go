package sem

import (
	"fmt"

	"csem/typing"
)

// ConstValue is the value of a constant expression.  The set of implementations
// is closed: integers, floating-point numbers and symbolic addresses.
type ConstValue interface {
	Repr() string

	constValue()
}

// IntConst is an integer constant.  Unsigned values are stored as their two's
// complement bit pattern; the type of the expression decides the
// interpretation.
type IntConst struct {
	Value int64
}

func (ic IntConst) Repr() string {
	return fmt.Sprint(ic.Value)
}

func (IntConst) constValue() {}

// FloatConst is a floating-point constant.
type FloatConst struct {
	Value float64
}

func (fc FloatConst) Repr() string {
	return fmt.Sprint(fc.Value)
}

func (FloatConst) constValue() {}

// AddressBase is the kind of the base of a symbolic address.
type AddressBase int

// Enumeration of address bases.
const (
	// BaseIdentifier is a named object or function with static storage.
	BaseIdentifier AddressBase = iota

	// BaseStringLiteral is a registered string literal.
	BaseStringLiteral

	// BaseInteger is a raw integer cast to a pointer (or a pointer cast to an
	// integer), eg. `(char *)0x1000`.
	BaseInteger
)

// AddressConst is a symbolic address: a base plus a byte offset.
type AddressConst struct {
	Base AddressBase

	// Symbol is the name of an identifier base or the generated symbol of a
	// string literal base.
	Symbol string

	// Literal is the registry index of a string literal base.
	Literal int

	// Integral is the value of an integer base.
	Integral int64

	Offset int64
}

func (ac *AddressConst) Repr() string {
	var base string
	switch ac.Base {
	case BaseIdentifier, BaseStringLiteral:
		base = "&" + ac.Symbol
	default:
		base = fmt.Sprintf("(void *)%d", ac.Integral)
	}

	if ac.Offset == 0 {
		return base
	}

	return fmt.Sprintf("%s%+d", base, ac.Offset)
}

func (*AddressConst) constValue() {}

// WithOffset returns a copy of the address displaced by delta bytes.
func (ac *AddressConst) WithOffset(delta int64) *AddressConst {
	nac := *ac
	nac.Offset += delta
	return &nac
}

// -----------------------------------------------------------------------------

// StringLiteral is a string literal registered on the global context so that
// address constants may refer to it.
type StringLiteral struct {
	// Index is the position of the literal in the registry.
	Index int

	// Symbol is the generated name of the literal.
	Symbol string

	// Units holds the code units of the literal including the terminating
	// zero.
	Units []int64

	// CharType is the element type of the literal: char for plain literals,
	// `wchar_t` for wide ones.
	CharType typing.Type
}
