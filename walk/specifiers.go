package walk

import (
	"math"

	"csem/ast"
	"csem/common"
	"csem/report"
	"csem/sem"
	"csem/typing"

	"fortio.org/safecast"
	"modernc.org/mathutil"
)

// declSpecs is a folded declaration specifier list.
type declSpecs struct {
	typ       typing.Type
	storage   sem.StorageClass
	specifier sem.FunctionSpecifier

	// alignment is the strictest `_Alignas` of the list: 0 if none.
	alignment uint64

	// tagDecl indicates that the type was given by a struct, union or enum
	// specifier: a declaration without declarators then declares the tag.
	tagDecl bool
}

// The type keywords are counted into a single integer: each keyword occupies
// its own bit range so that every valid multiset maps to a distinct sum.
const (
	countVoid     = 1 << 0
	countBool     = 1 << 2
	countChar     = 1 << 4
	countShort    = 1 << 6
	countInt      = 1 << 8
	countLong     = 1 << 10
	countFloat    = 1 << 12
	countDouble   = 1 << 14
	countSigned   = 1 << 17
	countUnsigned = 1 << 18
)

var keywordCounts = map[ast.TypeKeyword]int{
	ast.KwVoid:     countVoid,
	ast.KwBool:     countBool,
	ast.KwChar:     countChar,
	ast.KwShort:    countShort,
	ast.KwInt:      countInt,
	ast.KwLong:     countLong,
	ast.KwFloat:    countFloat,
	ast.KwDouble:   countDouble,
	ast.KwSigned:   countSigned,
	ast.KwUnsigned: countUnsigned,
}

var keywordNames = map[ast.TypeKeyword]string{
	ast.KwVoid:     "void",
	ast.KwBool:     "_Bool",
	ast.KwChar:     "char",
	ast.KwShort:    "short",
	ast.KwInt:      "int",
	ast.KwLong:     "long",
	ast.KwFloat:    "float",
	ast.KwDouble:   "double",
	ast.KwSigned:   "signed",
	ast.KwUnsigned: "unsigned",
	ast.KwComplex:  "_Complex",
	ast.KwAtomic:   "_Atomic",
}

// basicCombinations maps every valid keyword multiset to its basic type.
var basicCombinations = map[int]typing.BasicType{
	countVoid: typing.Void,
	countBool: typing.Bool,

	countChar:                 typing.Char,
	countSigned + countChar:   typing.SignedChar,
	countUnsigned + countChar: typing.UnsignedChar,

	countShort:                            typing.Short,
	countShort + countInt:                 typing.Short,
	countSigned + countShort:              typing.Short,
	countSigned + countShort + countInt:   typing.Short,
	countUnsigned + countShort:            typing.UnsignedShort,
	countUnsigned + countShort + countInt: typing.UnsignedShort,

	countInt:                 typing.Int,
	countSigned:              typing.Int,
	countSigned + countInt:   typing.Int,
	countUnsigned:            typing.UnsignedInt,
	countUnsigned + countInt: typing.UnsignedInt,

	countLong:                            typing.Long,
	countLong + countInt:                 typing.Long,
	countSigned + countLong:              typing.Long,
	countSigned + countLong + countInt:   typing.Long,
	countUnsigned + countLong:            typing.UnsignedLong,
	countUnsigned + countLong + countInt: typing.UnsignedLong,

	2 * countLong:                          typing.LongLong,
	2*countLong + countInt:                 typing.LongLong,
	countSigned + 2*countLong:              typing.LongLong,
	countSigned + 2*countLong + countInt:   typing.LongLong,
	countUnsigned + 2*countLong:            typing.UnsignedLongLong,
	countUnsigned + 2*countLong + countInt: typing.UnsignedLongLong,

	countFloat:              typing.Float,
	countDouble:             typing.Double,
	countLong + countDouble: typing.LongDouble,
}

// analyzeSpecifiers folds a declaration specifier list.  The list may be in
// any order.
func (w *Walker) analyzeSpecifiers(specs []ast.DeclSpecifier, span *report.TextSpan) (*declSpecs, error) {
	ds := &declSpecs{}

	var (
		counter int
		seen    = make(map[ast.TypeKeyword]int)
		named   typing.Type
		quals   typing.Qualifiers
	)

	for _, spec := range specs {
		switch v := spec.(type) {
		case *ast.TypeSpecifier:
			if v.Keyword == ast.KwComplex || v.Keyword == ast.KwAtomic {
				return nil, report.Raise(report.NotImplemented, v.Span(), "`%s` is not supported", keywordNames[v.Keyword])
			}

			if named != nil {
				return nil, report.Raise(report.MalformedArgument, v.Span(), "two or more data types in declaration specifiers")
			}

			seen[v.Keyword]++
			if v.Keyword == ast.KwLong && seen[v.Keyword] > 2 {
				return nil, report.Raise(report.MalformedArgument, v.Span(), "`long long long` is too long")
			} else if v.Keyword != ast.KwLong && seen[v.Keyword] > 1 {
				return nil, report.Raise(report.MalformedArgument, v.Span(), "duplicate `%s`", keywordNames[v.Keyword])
			}

			counter += keywordCounts[v.Keyword]
		case *ast.StructSpecifier, *ast.EnumSpecifier, *ast.TypedefName:
			if named != nil || counter != 0 {
				return nil, report.Raise(report.MalformedArgument, spec.Span(), "two or more data types in declaration specifiers")
			}

			typ, err := w.analyzeNamedSpecifier(spec)
			if err != nil {
				return nil, err
			}

			named = typ
			_, isTypedef := spec.(*ast.TypedefName)
			ds.tagDecl = !isTypedef
		case *ast.TypeQualifier:
			quals = w.mergeQualifier(quals, v)
		case *ast.StorageClassSpecifier:
			storage, ok := ds.storage.Merge(v.Storage)
			if !ok {
				return nil, report.Raise(report.MalformedArgument, v.Span(), "conflicting storage class specifiers `%s` and `%s`", ds.storage.Repr(), v.Storage.Repr())
			}

			ds.storage = storage
		case *ast.FunctionSpecifier:
			ds.specifier = ds.specifier.Merge(v.Specifier)
		case *ast.AlignmentSpecifier:
			align, err := w.analyzeAlignas(v)
			if err != nil {
				return nil, err
			}

			ds.alignment = mathutil.MaxUint64(ds.alignment, align)
		default:
			report.Assert(false, "unexpected declaration specifier %T", spec)
		}
	}

	if named != nil {
		ds.typ = named
	} else if bt, ok := basicCombinations[counter]; ok {
		ds.typ = bt
	} else if counter == 0 {
		return nil, report.Raise(report.MalformedArgument, span, "missing type specifier")
	} else {
		return nil, report.Raise(report.MalformedArgument, span, "invalid combination of type specifiers")
	}

	ds.typ = w.qualify(ds.typ, quals)
	return ds, nil
}

// mergeQualifier adds a qualifier to a set.  Repeating a qualifier is valid
// but worth a warning.
func (w *Walker) mergeQualifier(quals typing.Qualifiers, tq *ast.TypeQualifier) typing.Qualifiers {
	if quals.Has(tq.Qualifier) {
		w.diags.Warn(tq.Span(), "duplicate `%s`", tq.Qualifier.Repr())
	}

	return quals.Merge(tq.Qualifier)
}

// analyzeAlignas evaluates an alignment specifier.  `_Alignas(0)` has no
// effect.
func (w *Walker) analyzeAlignas(as *ast.AlignmentSpecifier) (uint64, error) {
	if as.Type != nil {
		typ, err := w.AnalyzeTypeName(as.Type)
		if err != nil {
			return 0, err
		}

		return w.alignOf(typ)
	}

	value, err := w.evaluateInteger(as.Expr, "alignment")
	if err != nil {
		return 0, err
	}

	align, err := safecast.Conv[uint64](value)
	if err != nil || (align != 0 && !common.IsPowerOfTwo(align)) {
		return 0, report.Raise(report.MalformedArgument, as.Span(), "requested alignment %d is not a positive power of two", value)
	}

	return align, nil
}

// qualify applies qualifiers to a type.  Qualifiers of an array type apply to
// its element type.
func (w *Walker) qualify(typ typing.Type, q typing.Qualifiers) typing.Type {
	if q.Empty() {
		return typ
	}

	if at, ok := typ.(*typing.ArrayType); ok {
		return w.rebuildArray(at, w.qualify(at.Elem, q))
	}

	return w.bundle().NewQualified(typ, q)
}

// rebuildArray creates an array type like at with a different element type.
func (w *Walker) rebuildArray(at *typing.ArrayType, elem typing.Type) *typing.ArrayType {
	b := w.bundle()
	switch at.Boundary {
	case typing.Bounded:
		return b.NewBoundedArray(elem, at.Length, at.Qualification)
	case typing.BoundedStatic:
		return b.NewStaticArray(elem, at.Length, at.Qualification)
	case typing.VLA:
		return b.NewVLA(elem, at.VLALength, at.Qualification)
	case typing.VLAStatic:
		return b.NewStaticVLA(elem, at.VLALength, at.Qualification)
	default:
		return b.NewUnboundedArray(elem, at.Qualification)
	}
}

// analyzeNamedSpecifier analyzes a struct, union, enum or typedef name
// specifier.
func (w *Walker) analyzeNamedSpecifier(spec ast.DeclSpecifier) (typing.Type, error) {
	switch v := spec.(type) {
	case *ast.StructSpecifier:
		return w.analyzeStructSpecifier(v)
	case *ast.EnumSpecifier:
		return w.analyzeEnumSpecifier(v)
	case *ast.TypedefName:
		sid, err := w.ctx.ResolveOrdinary(v.Name)
		if err != nil {
			return nil, report.WithSpan(err, v.Span())
		}

		switch td := sid.(type) {
		case *sem.TypeDefinition:
			v.Props().Scoped = td
			v.Props().Type = td.Type
			return td.Type, nil
		case *sem.TypeTag:
			v.Props().Scoped = td
			v.Props().Type = td.Type
			return td.Type, nil
		default:
			return nil, report.Raise(report.MalformedArgument, v.Span(), "`%s` is not a type name: it is declared as %s", v.Name, sid.Kind())
		}
	}

	report.Assert(false, "unexpected named specifier %T", spec)
	return nil, nil
}

// -----------------------------------------------------------------------------

// tagKeyword returns the keyword introducing a struct or union specifier.
func tagKeyword(union bool) string {
	if union {
		return "union"
	}

	return "struct"
}

// referenceTag resolves a tag specifier without a body.  A tag not visible yet
// is declared incomplete in the current scope.
func (w *Walker) referenceTag(name string, span *report.TextSpan, create func() typing.Type, matches func(typing.Type) bool) (typing.Type, error) {
	if tag, err := w.ctx.ResolveTag(name); err == nil {
		if !matches(tag.Type) {
			return nil, report.Raise(report.MalformedArgument, span, "`%s` defined as the wrong kind of tag: previously `%s`", name, tag.Type.Repr())
		}

		return tag.Type, nil
	}

	typ := create()
	if _, err := w.ctx.DefineTag(name, typ, span); err != nil {
		return nil, report.WithSpan(err, span)
	}

	return typ, nil
}

// analyzeStructSpecifier analyzes a struct or union specifier.  A definition
// completes the incomplete type declared under the same tag in the current
// scope (if any) in place so that earlier references see the completed type.
func (w *Walker) analyzeStructSpecifier(spec *ast.StructSpecifier) (typing.Type, error) {
	create := func() typing.Type {
		if spec.Union {
			return w.bundle().NewUnion(spec.Tag)
		}

		return w.bundle().NewStruct(spec.Tag)
	}

	matches := func(typ typing.Type) bool {
		st, ok := typ.(*typing.StructType)
		return ok && st.Union == spec.Union
	}

	if !spec.Complete {
		if spec.Tag == "" {
			return nil, report.Raise(report.MalformedArgument, spec.Span(), "anonymous %s without a member list", tagKeyword(spec.Union))
		}

		typ, err := w.referenceTag(spec.Tag, spec.Span(), create, matches)
		spec.Props().Type = typ
		return typ, err
	}

	var st *typing.StructType
	if spec.Tag != "" {
		if tag, ok := w.ctx.CurrentTag(spec.Tag); ok {
			if !matches(tag.Type) {
				return nil, report.Raise(report.MalformedArgument, spec.Span(), "`%s` defined as the wrong kind of tag: previously `%s`", spec.Tag, tag.Type.Repr())
			}

			st = tag.Type.(*typing.StructType)
			if st.Complete {
				return nil, report.Raise(report.MalformedArgument, spec.Span(), "redefinition of `%s`", st.Repr())
			}
		} else {
			st = create().(*typing.StructType)
			if _, err := w.ctx.DefineTag(spec.Tag, st, spec.Span()); err != nil {
				return nil, report.WithSpan(err, spec.Span())
			}
		}
	} else {
		st = create().(*typing.StructType)
	}

	if err := w.analyzeMembers(st, spec.Members); err != nil {
		st.Fields = nil
		return nil, err
	}

	if err := w.validateStruct(st, spec.Span()); err != nil {
		st.Fields = nil
		return nil, err
	}

	st.Complete = true
	spec.Props().Type = st
	spec.Props().Category = ast.CategoryType
	return st, nil
}

// analyzeMembers adds the fields of a member declaration list to a struct.
func (w *Walker) analyzeMembers(st *typing.StructType, members []ast.Node) error {
	for _, member := range members {
		switch v := member.(type) {
		case *ast.StaticAssertion:
			if err := w.analyzeStaticAssertion(v); err != nil {
				return err
			}
		case *ast.StructDeclaration:
			if err := w.analyzeStructDeclaration(st, v); err != nil {
				return err
			}
		default:
			report.Assert(false, "unexpected struct member %T", member)
		}
	}

	return nil
}

func (w *Walker) analyzeStructDeclaration(st *typing.StructType, sd *ast.StructDeclaration) error {
	ds, err := w.analyzeSpecifiers(sd.Specifiers, sd.Span())
	if err != nil {
		return err
	}

	if ds.storage != sem.StorageNone {
		return report.Raise(report.MalformedArgument, sd.Span(), "storage class `%s` in a member declaration", ds.storage.Repr())
	}

	if ds.specifier != sem.SpecNone {
		return report.Raise(report.MalformedArgument, sd.Span(), "`%s` in a member declaration", ds.specifier.Repr())
	}

	if len(sd.Declarators) == 0 {
		// an anonymous structure or union member
		if inner, ok := typing.Unqualified(ds.typ).(*typing.StructType); ok && inner.Tag == "" {
			st.AddField("", ds.typ, ds.alignment)
		}

		return nil
	}

	for _, decl := range sd.Declarators {
		name, typ := "", ds.typ
		if decl.Declarator != nil {
			if name, typ, err = w.AnalyzeDeclarator(ds.typ, decl.Declarator); err != nil {
				return err
			}
		}

		if decl.Width == nil {
			if name == "" {
				return report.Raise(report.MalformedArgument, decl.Span(), "member declaration without a name")
			}

			st.AddField(name, typ, ds.alignment)
		} else {
			width, err := w.analyzeBitwidth(decl.Width)
			if err != nil {
				return err
			}

			if ds.alignment != 0 {
				return report.Raise(report.MalformedArgument, decl.Span(), "alignment specified for bit-field `%s`", name)
			}

			st.AddBitfield(name, typ, 0, width)
		}

		decl.Props().Identifier = name
		decl.Props().Type = typ
	}

	return nil
}

// analyzeBitwidth evaluates the width of a bit-field.  The width is cached
// on the width expression.
func (w *Walker) analyzeBitwidth(expr ast.Expr) (uint64, error) {
	value, err := w.evaluateInteger(expr, "bit-field width")
	if err != nil {
		return 0, err
	}

	width, err := safecast.Conv[uint64](value)
	if err != nil {
		return 0, report.Raise(report.MalformedArgument, expr.Span(), "negative width %d in bit-field", value)
	}

	return width, nil
}

// -----------------------------------------------------------------------------

// analyzeEnumSpecifier analyzes an enum specifier.  Enumerators are defined
// as they are walked so that later values may refer to earlier ones.
func (w *Walker) analyzeEnumSpecifier(spec *ast.EnumSpecifier) (typing.Type, error) {
	create := func() typing.Type {
		return w.bundle().NewEnum(spec.Tag, nil)
	}

	matches := func(typ typing.Type) bool {
		_, ok := typ.(*typing.EnumType)
		return ok
	}

	if !spec.Complete {
		if spec.Tag == "" {
			return nil, report.Raise(report.MalformedArgument, spec.Span(), "anonymous enum without an enumerator list")
		}

		typ, err := w.referenceTag(spec.Tag, spec.Span(), create, matches)
		spec.Props().Type = typ
		return typ, err
	}

	var et *typing.EnumType
	if spec.Tag != "" {
		if tag, ok := w.ctx.CurrentTag(spec.Tag); ok {
			if !matches(tag.Type) {
				return nil, report.Raise(report.MalformedArgument, spec.Span(), "`%s` defined as the wrong kind of tag: previously `%s`", spec.Tag, tag.Type.Repr())
			}

			et = tag.Type.(*typing.EnumType)
			if et.Complete {
				return nil, report.Raise(report.MalformedArgument, spec.Span(), "redefinition of `%s`", et.Repr())
			}
		} else {
			et = create().(*typing.EnumType)
			if _, err := w.ctx.DefineTag(spec.Tag, et, spec.Span()); err != nil {
				return nil, report.WithSpan(err, spec.Span())
			}
		}
	} else {
		et = create().(*typing.EnumType)
	}

	if len(spec.Enumerators) == 0 {
		return nil, report.Raise(report.MalformedArgument, spec.Span(), "empty enumerator list")
	}

	constType := et.UnderlyingType(w.traits())
	constants := make([]*sem.EnumConstant, 0, len(spec.Enumerators))

	var next int64
	for _, decl := range spec.Enumerators {
		value := next
		if decl.Value != nil {
			var err error
			if value, err = w.evaluateInteger(decl.Value, "enumerator value"); err != nil {
				return nil, err
			}
		}

		ec, err := w.ctx.DefineConstant(decl.Name, value, constType, decl.Span())
		if err != nil {
			return nil, report.WithSpan(err, decl.Span())
		}

		et.AddEnumerator(decl.Name, value)
		constants = append(constants, ec)

		decl.Props().Scoped = ec
		decl.Props().Value = sem.IntConst{Value: value}
		next = value + 1
	}

	// enumerators which do not fit the default underlying type widen it
	if underlying := w.enumUnderlying(et); underlying != nil {
		et.Underlying = underlying
		for _, ec := range constants {
			ec.Type = underlying
		}
	}

	et.Complete = true
	spec.Props().Type = et
	spec.Props().Category = ast.CategoryType
	return et, nil
}

// enumUnderlying returns the underlying type an enumeration needs when its
// values do not fit the default one: nil otherwise.
func (w *Walker) enumUnderlying(et *typing.EnumType) typing.Type {
	tr := w.traits()
	lo, hi := int64(math.MaxInt64), int64(math.MinInt64)
	for _, e := range et.Enumerators {
		lo = mathutil.MinInt64(lo, e.Value)
		hi = mathutil.MaxInt64(hi, e.Value)
	}

	for _, bt := range []typing.BasicType{tr.EnumUnderlying, typing.UnsignedInt, typing.Long, typing.UnsignedLong, typing.LongLong} {
		if fitsInteger(tr, bt, lo) && fitsInteger(tr, bt, hi) {
			if bt == tr.EnumUnderlying {
				return nil
			}

			return bt
		}
	}

	return typing.UnsignedLongLong
}
