package typing

import "csem/report"

// Same returns whether two types are structurally identical: same kinds, same
// qualifications, same members and parameters.  Types are never compared by
// identity alone.
func Same(a, b Type) bool {
	return newAlgebra(nil, nil).same(a, b)
}

// Compatible returns whether two types are compatible in the sense of the C
// standard under the given type traits.
func Compatible(tr *Traits, a, b Type) bool {
	return newAlgebra(nil, tr).compatible(a, b)
}

// Composite constructs the composite type of two compatible types.  Any new
// type is allocated in the given bundle.  Calling Composite on incompatible
// types is a contract violation and results in an internal compiler error.
func Composite(bundle *Bundle, tr *Traits, a, b Type) Type {
	return newAlgebra(bundle, tr).composite(a, b)
}

// -----------------------------------------------------------------------------

// algebra holds the state of one type comparison: the traits used to resolve
// target-dependent types, the bundle composite types are allocated in and the
// stack of structure pairs assumed to be related while their members are being
// compared (required to terminate on self-referential structures).
type algebra struct {
	traits  *Traits
	bundle  *Bundle
	assumed []typePair
}

type typePair struct {
	a, b Type
}

func newAlgebra(bundle *Bundle, tr *Traits) *algebra {
	if tr == nil {
		tr = DefaultTraits()
	}

	return &algebra{traits: tr, bundle: bundle}
}

// assume pushes a pair of types onto the assumption stack.  It returns false if
// the pair is already assumed: the comparison is then cyclic and holds.
func (al *algebra) assume(a, b Type) bool {
	for _, pair := range al.assumed {
		if pair.a == a && pair.b == b {
			return false
		}
	}

	al.assumed = append(al.assumed, typePair{a, b})
	return true
}

// retract pops the last assumption.
func (al *algebra) retract() {
	al.assumed = al.assumed[:len(al.assumed)-1]
}

func (al *algebra) same(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a == b {
		return true
	}

	return a.same(al, b)
}

func (al *algebra) compatible(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}

	a, b = stripEmptyQualification(a), stripEmptyQualification(b)
	if a == b {
		return true
	}

	// Non-empty qualifications must match exactly.
	_, aqual := a.(*QualifiedType)
	_, bqual := b.(*QualifiedType)
	if aqual != bqual {
		return false
	}

	// An enumeration is compatible with its underlying integer type.
	if et, ok := a.(*EnumType); ok {
		if _, ok := b.(BasicType); ok {
			return al.compatible(et.UnderlyingType(al.traits), b)
		}
	} else if et, ok := b.(*EnumType); ok {
		if _, ok := a.(BasicType); ok {
			return al.compatible(a, et.UnderlyingType(al.traits))
		}
	}

	return a.compatible(al, b)
}

func (al *algebra) composite(a, b Type) Type {
	report.Assert(al.bundle != nil, "composite type requested without a type bundle")
	report.Assert(al.compatible(a, b), "composite of incompatible types `%s` and `%s`", repr(a), repr(b))

	a, b = stripEmptyQualification(a), stripEmptyQualification(b)
	if a == b {
		return a
	}

	// An enumeration and its underlying integer type: the first operand wins.
	_, aenum := a.(*EnumType)
	_, benum := b.(*EnumType)
	if aenum != benum {
		return a
	}

	return a.composite(al, b)
}

// stripEmptyQualification unwraps a qualified type with no qualifiers.
func stripEmptyQualification(typ Type) Type {
	if qt, ok := typ.(*QualifiedType); ok && qt.Qualification.Empty() {
		return qt.Base
	}

	return typ
}

func repr(typ Type) string {
	if typ == nil {
		return "<nil>"
	}

	return typ.Repr()
}
