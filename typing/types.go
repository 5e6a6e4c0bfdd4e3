package typing

import (
	"fmt"
	"strings"

	"csem/report"
)

// Type is the parent interface for all C types.  The set of implementations is
// closed: basic types, pointers, arrays, structures and unions, enumerations,
// functions and qualified types.
type Type interface {
	// Repr returns a representative string of the type for purposes of error
	// reporting.
	Repr() string

	// same, compatible and composite are the internal, type-specific
	// implementations of Same, Compatible and Composite.  They should NEVER be
	// called directly except through an algebra.  They do not handle special
	// cases like qualification wrappers or enumerations compared against
	// integer types.
	same(al *algebra, other Type) bool
	compatible(al *algebra, other Type) bool
	composite(al *algebra, other Type) Type
}

// -----------------------------------------------------------------------------

// BasicType represents void and the arithmetic types.  It should be one of the
// enumerated basic types.
type BasicType int

// Enumeration of the basic types.
const (
	Void BasicType = iota
	Bool
	Char
	SignedChar
	UnsignedChar
	Short
	UnsignedShort
	Int
	UnsignedInt
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Float
	Double
	LongDouble

	// NumBasicTypes is the number of basic types: used to size per-type tables.
	NumBasicTypes
)

var basicTypeNames = [NumBasicTypes]string{
	"void",
	"_Bool",
	"char",
	"signed char",
	"unsigned char",
	"short",
	"unsigned short",
	"int",
	"unsigned int",
	"long",
	"unsigned long",
	"long long",
	"unsigned long long",
	"float",
	"double",
	"long double",
}

func (bt BasicType) Repr() string {
	if bt < 0 || bt >= NumBasicTypes {
		return fmt.Sprintf("<basic type %d>", int(bt))
	}

	return basicTypeNames[bt]
}

// IsInteger returns whether the basic type is an integer type (_Bool and the
// character types included).
func (bt BasicType) IsInteger() bool {
	return Bool <= bt && bt <= UnsignedLongLong
}

// IsFloating returns whether the basic type is a real floating type.
func (bt BasicType) IsFloating() bool {
	return Float <= bt && bt <= LongDouble
}

// rank is the integer conversion rank of the basic type.
func (bt BasicType) rank() int {
	switch bt {
	case Bool:
		return 0
	case Char, SignedChar, UnsignedChar:
		return 1
	case Short, UnsignedShort:
		return 2
	case Int, UnsignedInt:
		return 3
	case Long, UnsignedLong:
		return 4
	case LongLong, UnsignedLongLong:
		return 5
	default:
		return -1
	}
}

// Unsigned returns the unsigned counterpart of an integer type.
func (bt BasicType) Unsigned() BasicType {
	switch bt {
	case Char, SignedChar:
		return UnsignedChar
	case Short:
		return UnsignedShort
	case Int:
		return UnsignedInt
	case Long:
		return UnsignedLong
	case LongLong:
		return UnsignedLongLong
	default:
		return bt
	}
}

func (bt BasicType) same(al *algebra, other Type) bool {
	if obt, ok := other.(BasicType); ok {
		return bt == obt
	}

	return false
}

func (bt BasicType) compatible(al *algebra, other Type) bool {
	return bt.same(al, other)
}

func (bt BasicType) composite(al *algebra, other Type) Type {
	return bt
}

// -----------------------------------------------------------------------------

// Qualifiers is a set of type qualifiers.
type Qualifiers uint8

// Enumeration of the type qualifiers.
const (
	Const Qualifiers = 1 << iota
	Restrict
	Volatile
)

// Empty returns whether no qualifier is set.
func (q Qualifiers) Empty() bool {
	return q == 0
}

// Merge returns the union of the two qualifier sets.
func (q Qualifiers) Merge(other Qualifiers) Qualifiers {
	return q | other
}

// Has returns whether all the qualifiers in other are set in q.
func (q Qualifiers) Has(other Qualifiers) bool {
	return q&other == other
}

func (q Qualifiers) Repr() string {
	var names []string
	if q&Const != 0 {
		names = append(names, "const")
	}

	if q&Restrict != 0 {
		names = append(names, "restrict")
	}

	if q&Volatile != 0 {
		names = append(names, "volatile")
	}

	return strings.Join(names, " ")
}

// QualifiedType is a type with qualifiers.  A qualified type never wraps
// another qualified type: the type bundle merges nested qualifications.
type QualifiedType struct {
	Base          Type
	Qualification Qualifiers
}

func (qt *QualifiedType) Repr() string {
	return formatType(qt, "")
}

func (qt *QualifiedType) same(al *algebra, other Type) bool {
	if oqt, ok := other.(*QualifiedType); ok {
		return qt.Qualification == oqt.Qualification && al.same(qt.Base, oqt.Base)
	}

	return false
}

func (qt *QualifiedType) compatible(al *algebra, other Type) bool {
	if oqt, ok := other.(*QualifiedType); ok {
		return qt.Qualification == oqt.Qualification && al.compatible(qt.Base, oqt.Base)
	}

	return false
}

func (qt *QualifiedType) composite(al *algebra, other Type) Type {
	base := al.composite(qt.Base, Unqualified(other))
	return al.bundle.NewQualified(base, qt.Qualification)
}

// -----------------------------------------------------------------------------

// PointerType represents a pointer type.
type PointerType struct {
	Referenced Type
}

func (pt *PointerType) Repr() string {
	return formatType(pt, "")
}

func (pt *PointerType) same(al *algebra, other Type) bool {
	if opt, ok := other.(*PointerType); ok {
		return al.same(pt.Referenced, opt.Referenced)
	}

	return false
}

func (pt *PointerType) compatible(al *algebra, other Type) bool {
	if opt, ok := other.(*PointerType); ok {
		return al.compatible(pt.Referenced, opt.Referenced)
	}

	return false
}

func (pt *PointerType) composite(al *algebra, other Type) Type {
	opt := other.(*PointerType)
	if al.same(pt.Referenced, opt.Referenced) {
		return pt
	}

	return al.bundle.NewPointer(al.composite(pt.Referenced, opt.Referenced))
}

// -----------------------------------------------------------------------------

// ArrayBoundary is the kind of the length of an array type.
type ArrayBoundary int

// Enumeration of array boundaries.
const (
	Unbounded     ArrayBoundary = iota // []
	Bounded                            // [N]
	BoundedStatic                      // [static N]
	VLA                                // [expr] or [*]
	VLAStatic                          // [static expr]
)

// LengthExpr is the syntactic length expression of a variable length array.
type LengthExpr interface {
	Span() *report.TextSpan
}

// ArrayType represents an array type.  The qualification is only used by
// arrays declared as function parameters (eg. `int a[const 5]`).
type ArrayType struct {
	Elem     Type
	Boundary ArrayBoundary

	// Length is the number of elements of bounded arrays.
	Length uint64

	// VLALength is the length expression of variable length arrays.  It is nil
	// for the unspecified length `[*]`.
	VLALength LengthExpr

	Qualification Qualifiers
}

// HasConstantLength returns whether the array length is a known constant.
func (at *ArrayType) HasConstantLength() bool {
	return at.Boundary == Bounded || at.Boundary == BoundedStatic
}

// IsVLA returns whether the array is a variable length array.
func (at *ArrayType) IsVLA() bool {
	return at.Boundary == VLA || at.Boundary == VLAStatic
}

func (at *ArrayType) Repr() string {
	return formatType(at, "")
}

func (at *ArrayType) same(al *algebra, other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		if at.Boundary != oat.Boundary || at.Qualification != oat.Qualification {
			return false
		}

		switch at.Boundary {
		case Bounded, BoundedStatic:
			if at.Length != oat.Length {
				return false
			}
		case VLA, VLAStatic:
			if at.VLALength != oat.VLALength {
				return false
			}
		}

		return al.same(at.Elem, oat.Elem)
	}

	return false
}

func (at *ArrayType) compatible(al *algebra, other Type) bool {
	if oat, ok := other.(*ArrayType); ok {
		if at.HasConstantLength() && oat.HasConstantLength() && at.Length != oat.Length {
			return false
		}

		return al.compatible(at.Elem, oat.Elem)
	}

	return false
}

func (at *ArrayType) composite(al *algebra, other Type) Type {
	oat := other.(*ArrayType)
	elem := al.composite(at.Elem, oat.Elem)

	switch {
	case at.HasConstantLength():
		return al.bundle.newArray(elem, at.Boundary, at.Length, nil, at.Qualification)
	case oat.HasConstantLength():
		return al.bundle.newArray(elem, oat.Boundary, oat.Length, nil, at.Qualification)
	case at.IsVLA() && at.VLALength != nil:
		return al.bundle.newArray(elem, at.Boundary, 0, at.VLALength, at.Qualification)
	case oat.IsVLA():
		return al.bundle.newArray(elem, oat.Boundary, 0, oat.VLALength, at.Qualification)
	default:
		return al.bundle.newArray(elem, at.Boundary, 0, at.VLALength, at.Qualification)
	}
}

// -----------------------------------------------------------------------------

// StructField is a member of a structure or union.
type StructField struct {
	// Name is empty for anonymous members and unnamed bit-fields.
	Name string
	Type Type

	// Alignment is the explicit `_Alignas` alignment: 0 if none.
	Alignment uint64

	Bitfield bool
	Bitwidth uint64
}

// StructType represents a structure or union type.  Incomplete structures are
// completed in place when their definition is encountered so that every
// reference to the tag observes the completion.
type StructType struct {
	Union bool

	// Tag is empty for anonymous structures.
	Tag string

	Complete bool
	Fields   []*StructField
}

// AddField appends a regular member to the structure.
func (st *StructType) AddField(name string, typ Type, alignment uint64) *StructField {
	field := &StructField{Name: name, Type: typ, Alignment: alignment}
	st.Fields = append(st.Fields, field)
	return field
}

// AddBitfield appends a bit-field member to the structure.
func (st *StructType) AddBitfield(name string, typ Type, alignment, width uint64) *StructField {
	field := &StructField{Name: name, Type: typ, Alignment: alignment, Bitfield: true, Bitwidth: width}
	st.Fields = append(st.Fields, field)
	return field
}

// Field returns the directly declared member with the given name.
func (st *StructType) Field(name string) (*StructField, bool) {
	for _, field := range st.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return nil, false
}

// keyword returns `struct` or `union`.
func (st *StructType) keyword() string {
	if st.Union {
		return "union"
	}

	return "struct"
}

func (st *StructType) Repr() string {
	if st.Tag == "" {
		return st.keyword() + " <anonymous>"
	}

	return st.keyword() + " " + st.Tag
}

func (st *StructType) same(al *algebra, other Type) bool {
	ost, ok := other.(*StructType)
	if !ok {
		return false
	}

	if st == ost {
		return true
	}

	if st.Union != ost.Union || st.Tag != ost.Tag || st.Complete != ost.Complete || len(st.Fields) != len(ost.Fields) {
		return false
	}

	if !al.assume(st, ost) {
		return true
	}
	defer al.retract()

	for i, field := range st.Fields {
		ofield := ost.Fields[i]

		if field.Name != ofield.Name || field.Alignment != ofield.Alignment ||
			field.Bitfield != ofield.Bitfield || field.Bitwidth != ofield.Bitwidth {
			return false
		}

		if !al.same(field.Type, ofield.Type) {
			return false
		}
	}

	return true
}

func (st *StructType) compatible(al *algebra, other Type) bool {
	ost, ok := other.(*StructType)
	if !ok {
		return false
	}

	if st == ost {
		return true
	}

	if st.Union != ost.Union || st.Tag != ost.Tag {
		return false
	}

	// An incomplete structure is compatible with any structure of the same tag.
	if !st.Complete || !ost.Complete {
		return true
	}

	if len(st.Fields) != len(ost.Fields) {
		return false
	}

	if !al.assume(st, ost) {
		return true
	}
	defer al.retract()

	for i, field := range st.Fields {
		var ofield *StructField
		if st.Union && field.Name != "" {
			// Union members may appear in any order.
			ofield, _ = ost.Field(field.Name)
			if ofield == nil {
				return false
			}
		} else {
			ofield = ost.Fields[i]
		}

		if field.Name != ofield.Name || field.Bitfield != ofield.Bitfield || field.Bitwidth != ofield.Bitwidth {
			return false
		}

		if !al.compatible(field.Type, ofield.Type) {
			return false
		}
	}

	return true
}

func (st *StructType) composite(al *algebra, other Type) Type {
	if ost := other.(*StructType); !st.Complete && ost.Complete {
		return ost
	}

	return st
}

// -----------------------------------------------------------------------------

// Enumerator is a named constant of an enumeration.
type Enumerator struct {
	Name  string
	Value int64
}

// EnumType represents an enumeration type.
type EnumType struct {
	// Tag is empty for anonymous enumerations.
	Tag string

	Complete bool

	// Underlying is the integer type the enumeration is compatible with.  If it
	// is nil, the type traits decide.
	Underlying Type

	Enumerators []*Enumerator
}

// AddEnumerator appends an enumerator to the enumeration.
func (et *EnumType) AddEnumerator(name string, value int64) *Enumerator {
	enumerator := &Enumerator{Name: name, Value: value}
	et.Enumerators = append(et.Enumerators, enumerator)
	return enumerator
}

// UnderlyingType returns the integer type underlying the enumeration.
func (et *EnumType) UnderlyingType(tr *Traits) Type {
	if et.Underlying != nil {
		return et.Underlying
	}

	return tr.EnumUnderlying
}

func (et *EnumType) Repr() string {
	if et.Tag == "" {
		return "enum <anonymous>"
	}

	return "enum " + et.Tag
}

func (et *EnumType) same(al *algebra, other Type) bool {
	oet, ok := other.(*EnumType)
	if !ok {
		return false
	}

	if et == oet {
		return true
	}

	if et.Tag != oet.Tag || et.Complete != oet.Complete || !sameEnumerators(et, oet) {
		return false
	}

	return al.same(et.UnderlyingType(al.traits), oet.UnderlyingType(al.traits))
}

func (et *EnumType) compatible(al *algebra, other Type) bool {
	oet, ok := other.(*EnumType)
	if !ok {
		return false
	}

	if et == oet {
		return true
	}

	if et.Tag != oet.Tag {
		return false
	}

	if et.Complete && oet.Complete && !sameEnumerators(et, oet) {
		return false
	}

	return al.compatible(et.UnderlyingType(al.traits), oet.UnderlyingType(al.traits))
}

func (et *EnumType) composite(al *algebra, other Type) Type {
	if oet, ok := other.(*EnumType); ok && !et.Complete && oet.Complete {
		return oet
	}

	return et
}

func sameEnumerators(a, b *EnumType) bool {
	if len(a.Enumerators) != len(b.Enumerators) {
		return false
	}

	for i, e := range a.Enumerators {
		if e.Name != b.Enumerators[i].Name || e.Value != b.Enumerators[i].Value {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// FunctionMode is the way a function type declares its parameters.
type FunctionMode int

// Enumeration of function modes.
const (
	// ParameterList is a prototype: `int f(int x, char *y)`.
	ParameterList FunctionMode = iota

	// IdentifierList is an old-style declarator: `int f(x, y)`.
	IdentifierList

	// EmptyParameters is a declarator without parameters: `int f()`.
	EmptyParameters
)

// Parameter is a parameter of a function type.
type Parameter struct {
	// Name is empty for unnamed parameters.
	Name string

	// Type is the declared type.  Identifier list parameters have no type until
	// the declaration list of the function definition supplies one.
	Type Type

	// Adjusted is the declared type after array-to-pointer and
	// function-to-pointer adjustment.
	Adjusted Type

	Register bool
}

// FunctionType represents a function type.
type FunctionType struct {
	Return   Type
	Mode     FunctionMode
	Params   []*Parameter
	Ellipsis bool
}

// AddParameter appends a parameter to the function type.
func (ft *FunctionType) AddParameter(name string, typ, adjusted Type, register bool) *Parameter {
	param := &Parameter{Name: name, Type: typ, Adjusted: adjusted, Register: register}
	ft.Params = append(ft.Params, param)
	return param
}

// Param returns the parameter of the given name.
func (ft *FunctionType) Param(name string) (*Parameter, bool) {
	for _, param := range ft.Params {
		if param.Name == name {
			return param, true
		}
	}

	return nil, false
}

// Prototyped returns whether the function type carries a prototype.
func (ft *FunctionType) Prototyped() bool {
	return ft.Mode == ParameterList
}

func (ft *FunctionType) Repr() string {
	return formatType(ft, "")
}

func (ft *FunctionType) same(al *algebra, other Type) bool {
	oft, ok := other.(*FunctionType)
	if !ok {
		return false
	}

	if ft.Mode != oft.Mode || ft.Ellipsis != oft.Ellipsis || len(ft.Params) != len(oft.Params) {
		return false
	}

	for i, param := range ft.Params {
		oparam := oft.Params[i]

		if param.Name != oparam.Name || param.Register != oparam.Register {
			return false
		}

		if (param.Type == nil) != (oparam.Type == nil) {
			return false
		}

		if param.Type != nil && !al.same(param.Type, oparam.Type) {
			return false
		}
	}

	return al.same(ft.Return, oft.Return)
}

func (ft *FunctionType) compatible(al *algebra, other Type) bool {
	oft, ok := other.(*FunctionType)
	if !ok {
		return false
	}

	if !al.compatible(ft.Return, oft.Return) {
		return false
	}

	switch {
	case ft.Prototyped() && oft.Prototyped():
		if len(ft.Params) != len(oft.Params) || ft.Ellipsis != oft.Ellipsis {
			return false
		}

		for i, param := range ft.Params {
			if !al.compatible(Unqualified(param.Adjusted), Unqualified(oft.Params[i].Adjusted)) {
				return false
			}
		}

		return true
	case ft.Prototyped():
		return al.promotionStable(ft)
	case oft.Prototyped():
		return al.promotionStable(oft)
	default:
		return true
	}
}

// promotionStable returns whether a prototype may be compatible with a
// function type declared without one: it must not be variadic and no parameter
// type may be changed by the default argument promotions.
func (al *algebra) promotionStable(ft *FunctionType) bool {
	if ft.Ellipsis {
		return false
	}

	for _, param := range ft.Params {
		adjusted := Unqualified(param.Adjusted)
		if !al.compatible(DefaultArgumentPromotion(al.traits, adjusted), adjusted) {
			return false
		}
	}

	return true
}

func (ft *FunctionType) composite(al *algebra, other Type) Type {
	oft := other.(*FunctionType)

	switch {
	case ft.Prototyped() && oft.Prototyped():
		cft := al.bundle.NewFunction(al.composite(ft.Return, oft.Return), ParameterList)
		cft.Ellipsis = ft.Ellipsis

		for i, param := range ft.Params {
			ctype := al.composite(Unqualified(param.Adjusted), Unqualified(oft.Params[i].Adjusted))
			cft.AddParameter(param.Name, ctype, ctype, param.Register)
		}

		return cft
	case ft.Prototyped():
		return ft
	case oft.Prototyped():
		return oft
	default:
		if al.same(ft.Return, oft.Return) {
			return ft
		}

		cft := al.bundle.NewFunction(al.composite(ft.Return, oft.Return), ft.Mode)
		cft.Params = ft.Params
		return cft
	}
}

// -----------------------------------------------------------------------------

// formatType renders a type in C declarator syntax around the given inner
// declarator text.
func formatType(typ Type, decl string) string {
	switch v := typ.(type) {
	case *QualifiedType:
		if pt, ok := v.Base.(*PointerType); ok {
			return formatPointer(pt, v.Qualification, decl)
		}

		return v.Qualification.Repr() + " " + formatType(v.Base, decl)
	case *PointerType:
		return formatPointer(v, 0, decl)
	case *ArrayType:
		var parts []string
		if v.Boundary == BoundedStatic || v.Boundary == VLAStatic {
			parts = append(parts, "static")
		}

		if !v.Qualification.Empty() {
			parts = append(parts, v.Qualification.Repr())
		}

		switch v.Boundary {
		case Bounded, BoundedStatic:
			parts = append(parts, fmt.Sprint(v.Length))
		case VLA, VLAStatic:
			if v.VLALength == nil {
				parts = append(parts, "*")
			} else {
				parts = append(parts, "<vla>")
			}
		}

		return formatType(v.Elem, decl+"["+strings.Join(parts, " ")+"]")
	case *FunctionType:
		sb := strings.Builder{}
		sb.WriteString(decl)
		sb.WriteRune('(')

		for i, param := range v.Params {
			if i > 0 {
				sb.WriteString(", ")
			}

			if param.Type == nil {
				sb.WriteString(param.Name)
			} else {
				sb.WriteString(param.Type.Repr())
			}
		}

		if v.Ellipsis {
			if len(v.Params) > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString("...")
		} else if v.Mode == ParameterList && len(v.Params) == 0 {
			sb.WriteString("void")
		}

		sb.WriteRune(')')
		return formatType(v.Return, sb.String())
	default:
		if decl == "" {
			return typ.Repr()
		}

		return typ.Repr() + " " + decl
	}
}

// formatPointer renders a (possibly qualified) pointer declarator.
func formatPointer(pt *PointerType, q Qualifiers, decl string) string {
	inner := "*"
	if !q.Empty() {
		inner += q.Repr()
		if decl != "" {
			inner += " "
		}
	}
	inner += decl

	switch Unqualified(pt.Referenced).(type) {
	case *ArrayType, *FunctionType:
		inner = "(" + inner + ")"
	}

	return formatType(pt.Referenced, inner)
}
