package typing

import (
	"testing"

	"csem/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prototype(b *Bundle, ret Type, ellipsis bool, params ...Type) *FunctionType {
	ft := b.NewFunction(ret, ParameterList)
	ft.Ellipsis = ellipsis

	for _, param := range params {
		ft.AddParameter("", param, AdjustParameter(b, param), false)
	}

	return ft
}

func TestQualificationIdempotence(t *testing.T) {
	b := NewBundle()
	defer b.Free()

	quals := []Qualifiers{0, Const, Volatile, Restrict, Const | Volatile, Const | Restrict | Volatile}
	bases := []Type{Int, b.NewPointer(Char), b.NewStruct("s")}

	for _, base := range bases {
		for _, q1 := range quals {
			for _, q2 := range quals {
				nested := b.NewQualified(b.NewQualified(base, q1), q2)
				merged := b.NewQualified(base, q1.Merge(q2))

				assert.True(t, Same(nested, merged), "%s vs %s", nested.Repr(), merged.Repr())

				if qt, ok := nested.(*QualifiedType); ok {
					_, nestedTwice := qt.Base.(*QualifiedType)
					assert.False(t, nestedTwice, "nested qualified wrapper in %s", nested.Repr())
				} else {
					assert.True(t, q1.Merge(q2).Empty())
				}
			}
		}
	}
}

func TestCompositeOfCompatibleFunctions(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	intArray := b.NewUnboundedArray(Int, 0)
	intArray5 := b.NewBoundedArray(Int, 5, 0)

	cases := []struct {
		name string
		a, b Type
	}{
		{"identical prototypes", prototype(b, Int, false, Int, Double), prototype(b, Int, false, Int, Double)},
		{"qualified parameters", prototype(b, Int, false, b.NewQualified(Int, Const)), prototype(b, Int, false, Int)},
		{"array parameters", prototype(b, Void, false, intArray), prototype(b, Void, false, intArray5)},
		{"pointer to array return", prototype(b, b.NewPointer(intArray), false), prototype(b, b.NewPointer(intArray5), false)},
		{"prototype and empty", prototype(b, Int, false, Int, b.NewPointer(Char)), b.NewFunction(Int, EmptyParameters)},
		{"empty and prototype", b.NewFunction(Int, EmptyParameters), prototype(b, Int, false, Long)},
		{"variadic prototypes", prototype(b, Int, true, b.NewPointer(Char)), prototype(b, Int, true, b.NewPointer(Char))},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.True(t, Compatible(tr, c.a, c.b))

			composite := Composite(b, tr, c.a, c.b)
			assert.True(t, Compatible(tr, composite, c.a))
			assert.True(t, Compatible(tr, composite, c.b))
		})
	}
}

func TestCompositeTakesKnownArrayLength(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	ret := Composite(b, tr, b.NewPointer(b.NewUnboundedArray(Int, 0)), b.NewPointer(b.NewBoundedArray(Int, 5, 0)))
	at := ret.(*PointerType).Referenced.(*ArrayType)
	assert.Equal(t, Bounded, at.Boundary)
	assert.EqualValues(t, 5, at.Length)
}

func TestCompositeSinglePrototypeUnchanged(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	proto := prototype(b, Int, false, Int)
	assert.Same(t, proto, Composite(b, tr, proto, b.NewFunction(Int, EmptyParameters)))
	assert.Same(t, proto, Composite(b, tr, b.NewFunction(Int, IdentifierList), proto))
}

func TestCompositeRewrapsFirstQualification(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	a := b.NewQualified(b.NewPointer(b.NewBoundedArray(Int, 3, 0)), Const)
	c := b.NewQualified(b.NewPointer(b.NewUnboundedArray(Int, 0)), Const)

	ret := Composite(b, tr, a, c)
	assert.Equal(t, Const, QualificationOf(ret))
	assert.True(t, Compatible(tr, ret, a))
}

func TestCompositeOfIncompatiblePanics(t *testing.T) {
	b := NewBundle()
	defer b.Free()

	defer func() {
		_, ok := recover().(*report.ICE)
		assert.True(t, ok)
	}()

	Composite(b, DefaultTraits(), Int, b.NewPointer(Int))
	t.Fatal("composite of incompatible types did not panic")
}

func TestFunctionCompatibility(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	unproto := b.NewFunction(Int, EmptyParameters)

	assert.False(t, Compatible(tr, prototype(b, Int, false, Int), prototype(b, Int, false, Int, Int)), "count")
	assert.False(t, Compatible(tr, prototype(b, Int, true, Int), prototype(b, Int, false, Int)), "ellipsis")
	assert.False(t, Compatible(tr, prototype(b, Int, false, Int), prototype(b, Long, false, Int)), "return")
	assert.False(t, Compatible(tr, prototype(b, Int, false, Int), prototype(b, Int, false, Long)), "parameter")

	// Unqualified adjusted parameter types are compared.
	assert.True(t, Compatible(tr, prototype(b, Int, false, b.NewBoundedArray(Char, 4, 0)), prototype(b, Int, false, b.NewPointer(Char))))
	assert.True(t, Compatible(tr, prototype(b, Int, false, b.NewQualified(Int, Volatile)), prototype(b, Int, false, Int)))

	// Parameters changed by default argument promotion break compatibility
	// with unprototyped declarations.
	assert.True(t, Compatible(tr, unproto, prototype(b, Int, false, Int, Double, b.NewPointer(Char))))
	assert.False(t, Compatible(tr, unproto, prototype(b, Int, false, Char)))
	assert.False(t, Compatible(tr, prototype(b, Int, false, Float), unproto))
	assert.False(t, Compatible(tr, unproto, prototype(b, Int, true, Int)))
	assert.True(t, Compatible(tr, unproto, b.NewFunction(Int, IdentifierList)))
}

func TestQualifiedCompatibility(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	assert.True(t, Compatible(tr, &QualifiedType{Base: Int}, Int))
	assert.True(t, Compatible(tr, Int, &QualifiedType{Base: Int}))
	assert.False(t, Compatible(tr, b.NewQualified(Int, Const), Int))
	assert.False(t, Compatible(tr, b.NewQualified(Int, Const), b.NewQualified(Int, Volatile)))
	assert.True(t, Compatible(tr, b.NewQualified(Int, Const|Volatile), b.NewQualified(b.NewQualified(Int, Volatile), Const)))

	assert.False(t, Compatible(tr, b.NewPointer(b.NewQualified(Char, Const)), b.NewPointer(Char)))
}

func TestEnumCompatibleWithUnderlying(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	et := b.NewEnum("color", nil)
	et.AddEnumerator("RED", 0)
	et.Complete = true

	assert.True(t, Compatible(tr, et, Int))
	assert.True(t, Compatible(tr, UnsignedInt, b.NewEnum("other", UnsignedInt)))
	assert.False(t, Compatible(tr, et, Long))
	assert.False(t, Same(et, Int))
}

func TestStructCompatibility(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	newList := func() *StructType {
		st := b.NewStruct("list")
		st.AddField("value", Int, 0)
		st.AddField("next", b.NewPointer(st), 0)
		st.Complete = true
		return st
	}

	l1, l2 := newList(), newList()
	assert.True(t, Same(l1, l2))
	assert.True(t, Compatible(tr, l1, l2))
	assert.True(t, Compatible(tr, l1, b.NewStruct("list")))
	assert.False(t, Compatible(tr, l1, b.NewStruct("other")))
	assert.False(t, Compatible(tr, l1, b.NewUnion("list")))

	u1 := b.NewUnion("u")
	u1.AddField("i", Int, 0)
	u1.AddField("f", Float, 0)
	u1.Complete = true

	u2 := b.NewUnion("u")
	u2.AddField("f", Float, 0)
	u2.AddField("i", Int, 0)
	u2.Complete = true

	assert.True(t, Compatible(tr, u1, u2))
	assert.False(t, Same(u1, u2))
}

func TestBundleNeverDeduplicates(t *testing.T) {
	b := NewBundle()

	p1, p2 := b.NewPointer(Int), b.NewPointer(Int)
	assert.NotSame(t, p1, p2)
	assert.True(t, Same(p1, p2))
	assert.Equal(t, 2, b.Len())

	b.Free()
	assert.Equal(t, 0, b.Len())
}

func TestRepr(t *testing.T) {
	b := NewBundle()
	defer b.Free()

	cases := []struct {
		typ  Type
		want string
	}{
		{UnsignedLongLong, "unsigned long long"},
		{b.NewPointer(b.NewQualified(Char, Const)), "const char *"},
		{b.NewQualified(b.NewPointer(Int), Const), "int *const"},
		{b.NewBoundedArray(b.NewPointer(Int), 4, 0), "int *[4]"},
		{b.NewPointer(b.NewBoundedArray(Int, 4, 0)), "int (*)[4]"},
		{prototype(b, Int, true, b.NewPointer(Char)), "int (char *, ...)"},
		{b.NewPointer(prototype(b, Void, false)), "void (*)(void)"},
		{b.NewStruct("s"), "struct s"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.typ.Repr())
	}
}
