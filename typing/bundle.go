package typing

// Bundle owns every non-basic type constructed during the analysis of one
// context.  It never deduplicates structurally: two calls with the same
// arguments yield two distinct types which compare as the same.  All types are
// released together by Free.
type Bundle struct {
	types []Type
}

// NewBundle creates a new, empty type bundle.
func NewBundle() *Bundle {
	return &Bundle{}
}

// Len returns the number of types owned by the bundle.
func (b *Bundle) Len() int {
	return len(b.types)
}

// Free releases every type owned by the bundle.  Types obtained from the bundle
// must not be used afterwards.
func (b *Bundle) Free() {
	for i := range b.types {
		b.types[i] = nil
	}

	b.types = nil
}

func (b *Bundle) own(typ Type) {
	b.types = append(b.types, typ)
}

// NewPointer creates a pointer to the referenced type.
func (b *Bundle) NewPointer(referenced Type) *PointerType {
	pt := &PointerType{Referenced: referenced}
	b.own(pt)
	return pt
}

// NewQualified qualifies a type.  Qualifying an already qualified type merges
// the qualifications into a single wrapper, and an empty qualification returns
// the base type unchanged.
func (b *Bundle) NewQualified(base Type, q Qualifiers) Type {
	if qt, ok := base.(*QualifiedType); ok {
		if qt.Qualification.Merge(q) == qt.Qualification {
			return qt
		}

		base, q = qt.Base, qt.Qualification.Merge(q)
	}

	if q.Empty() {
		return base
	}

	qt := &QualifiedType{Base: base, Qualification: q}
	b.own(qt)
	return qt
}

// NewUnboundedArray creates an array of unknown length: `T[]`.
func (b *Bundle) NewUnboundedArray(elem Type, q Qualifiers) *ArrayType {
	return b.newArray(elem, Unbounded, 0, nil, q)
}

// NewBoundedArray creates an array of constant length: `T[N]`.
func (b *Bundle) NewBoundedArray(elem Type, length uint64, q Qualifiers) *ArrayType {
	return b.newArray(elem, Bounded, length, nil, q)
}

// NewStaticArray creates a parameter array with a minimum length:
// `T[static N]`.
func (b *Bundle) NewStaticArray(elem Type, length uint64, q Qualifiers) *ArrayType {
	return b.newArray(elem, BoundedStatic, length, nil, q)
}

// NewVLA creates a variable length array.  A nil length expression denotes
// the unspecified length `[*]`.
func (b *Bundle) NewVLA(elem Type, length LengthExpr, q Qualifiers) *ArrayType {
	return b.newArray(elem, VLA, 0, length, q)
}

// NewStaticVLA creates a variable length parameter array with a minimum
// length: `T[static expr]`.
func (b *Bundle) NewStaticVLA(elem Type, length LengthExpr, q Qualifiers) *ArrayType {
	return b.newArray(elem, VLAStatic, 0, length, q)
}

func (b *Bundle) newArray(elem Type, boundary ArrayBoundary, length uint64, vlaLength LengthExpr, q Qualifiers) *ArrayType {
	at := &ArrayType{
		Elem:          elem,
		Boundary:      boundary,
		Length:        length,
		VLALength:     vlaLength,
		Qualification: q,
	}
	b.own(at)
	return at
}

// NewStruct creates an incomplete structure type.
func (b *Bundle) NewStruct(tag string) *StructType {
	st := &StructType{Tag: tag}
	b.own(st)
	return st
}

// NewUnion creates an incomplete union type.
func (b *Bundle) NewUnion(tag string) *StructType {
	st := &StructType{Tag: tag, Union: true}
	b.own(st)
	return st
}

// NewEnum creates an incomplete enumeration type.  A nil underlying type
// defers to the type traits.
func (b *Bundle) NewEnum(tag string, underlying Type) *EnumType {
	et := &EnumType{Tag: tag, Underlying: underlying}
	b.own(et)
	return et
}

// NewFunction creates a function type with no parameters.
func (b *Bundle) NewFunction(ret Type, mode FunctionMode) *FunctionType {
	ft := &FunctionType{Return: ret, Mode: mode}
	b.own(ft)
	return ft
}
