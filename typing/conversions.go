package typing

// Unqualified strips the qualification wrapper of a type if any.
func Unqualified(typ Type) Type {
	if qt, ok := typ.(*QualifiedType); ok {
		return qt.Base
	}

	return typ
}

// QualificationOf returns the qualifiers of a type.
func QualificationOf(typ Type) Qualifiers {
	if qt, ok := typ.(*QualifiedType); ok {
		return qt.Qualification
	}

	return 0
}

// AsBasic returns the basic type underlying typ: enumerations yield their
// underlying integer type.
func AsBasic(tr *Traits, typ Type) (BasicType, bool) {
	switch v := Unqualified(typ).(type) {
	case BasicType:
		return v, true
	case *EnumType:
		return AsBasic(tr, v.UnderlyingType(tr))
	default:
		return 0, false
	}
}

// IsVoid returns whether the type is (a qualified) void.
func IsVoid(typ Type) bool {
	bt, ok := Unqualified(typ).(BasicType)
	return ok && bt == Void
}

// IsInteger returns whether the type is an integer type.  Enumerations are
// integer types.
func IsInteger(typ Type) bool {
	switch v := Unqualified(typ).(type) {
	case BasicType:
		return v.IsInteger()
	case *EnumType:
		return true
	default:
		return false
	}
}

// IsFloating returns whether the type is a real floating type.
func IsFloating(typ Type) bool {
	bt, ok := Unqualified(typ).(BasicType)
	return ok && bt.IsFloating()
}

// IsArithmetic returns whether the type is an arithmetic type.
func IsArithmetic(typ Type) bool {
	return IsInteger(typ) || IsFloating(typ)
}

// IsPointer returns whether the type is a pointer type.
func IsPointer(typ Type) bool {
	_, ok := Unqualified(typ).(*PointerType)
	return ok
}

// IsScalar returns whether the type is an arithmetic or pointer type.
func IsScalar(typ Type) bool {
	return IsArithmetic(typ) || IsPointer(typ)
}

// IsFunction returns whether the type is a function type.
func IsFunction(typ Type) bool {
	_, ok := Unqualified(typ).(*FunctionType)
	return ok
}

// IsArray returns whether the type is an array type.
func IsArray(typ Type) bool {
	_, ok := Unqualified(typ).(*ArrayType)
	return ok
}

// IsAggregate returns whether the type is an array, structure or union type.
func IsAggregate(typ Type) bool {
	switch Unqualified(typ).(type) {
	case *ArrayType, *StructType:
		return true
	default:
		return false
	}
}

// IsComplete returns whether the size of an object of the type is known (or
// computable at run time for variable length arrays).  Function types are
// never incomplete.
func IsComplete(typ Type) bool {
	switch v := Unqualified(typ).(type) {
	case BasicType:
		return v != Void
	case *ArrayType:
		return v.Boundary != Unbounded && IsComplete(v.Elem)
	case *StructType:
		return v.Complete
	case *EnumType:
		return v.Complete
	default:
		return true
	}
}

// IsVariablyModified returns whether the type contains a variable length array
// in its declarator chain.
func IsVariablyModified(typ Type) bool {
	switch v := Unqualified(typ).(type) {
	case *ArrayType:
		return v.IsVLA() || IsVariablyModified(v.Elem)
	case *PointerType:
		return IsVariablyModified(v.Referenced)
	case *FunctionType:
		return IsVariablyModified(v.Return)
	default:
		return false
	}
}

// AdjustParameter applies the parameter type adjustments: arrays become
// pointers to their element type carrying the array qualification and
// functions become pointers to functions.
func AdjustParameter(bundle *Bundle, typ Type) Type {
	switch v := Unqualified(typ).(type) {
	case *ArrayType:
		return bundle.NewQualified(bundle.NewPointer(v.Elem), v.Qualification)
	case *FunctionType:
		return bundle.NewPointer(typ)
	default:
		return typ
	}
}

// IntegerPromotion applies the integer promotions to an integer type.  Other
// types are returned unchanged.
func IntegerPromotion(tr *Traits, typ Type) Type {
	bt, ok := AsBasic(tr, typ)
	if !ok || !bt.IsInteger() {
		return typ
	}

	if bt.rank() >= Int.rank() {
		return bt
	}

	if tr.Sizes[bt] < tr.Sizes[Int] || (tr.Sizes[bt] == tr.Sizes[Int] && tr.IsSigned(bt)) {
		return Int
	}

	return UnsignedInt
}

// DefaultArgumentPromotion applies the default argument promotions: integer
// promotion, and float to double.
func DefaultArgumentPromotion(tr *Traits, typ Type) Type {
	if bt, ok := Unqualified(typ).(BasicType); ok && bt == Float {
		return Double
	}

	return IntegerPromotion(tr, typ)
}

// UsualArithmeticConversion returns the common real type of two arithmetic
// operands.
func UsualArithmeticConversion(tr *Traits, a, b Type) BasicType {
	abt, _ := AsBasic(tr, a)
	bbt, _ := AsBasic(tr, b)

	switch {
	case abt == LongDouble || bbt == LongDouble:
		return LongDouble
	case abt == Double || bbt == Double:
		return Double
	case abt == Float || bbt == Float:
		return Float
	}

	abt = IntegerPromotion(tr, abt).(BasicType)
	bbt = IntegerPromotion(tr, bbt).(BasicType)

	if abt == bbt {
		return abt
	}

	asigned, bsigned := tr.IsSigned(abt), tr.IsSigned(bbt)
	if asigned == bsigned {
		if abt.rank() >= bbt.rank() {
			return abt
		}

		return bbt
	}

	signed, unsigned := abt, bbt
	if !asigned {
		signed, unsigned = bbt, abt
	}

	switch {
	case unsigned.rank() >= signed.rank():
		return unsigned
	case tr.Sizes[signed] > tr.Sizes[unsigned]:
		return signed
	default:
		return signed.Unsigned()
	}
}
