package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntegerPromotion(t *testing.T) {
	tr := DefaultTraits()

	assert.Equal(t, Type(Int), IntegerPromotion(tr, Char))
	assert.Equal(t, Type(Int), IntegerPromotion(tr, UnsignedShort))
	assert.Equal(t, Type(Int), IntegerPromotion(tr, Bool))
	assert.Equal(t, Type(UnsignedInt), IntegerPromotion(tr, UnsignedInt))
	assert.Equal(t, Type(Long), IntegerPromotion(tr, Long))
	assert.Equal(t, Type(Float), IntegerPromotion(tr, Float))

	assert.Equal(t, Type(Double), DefaultArgumentPromotion(tr, Float))
	assert.Equal(t, Type(Double), DefaultArgumentPromotion(tr, Double))
}

func TestUsualArithmeticConversion(t *testing.T) {
	tr := DefaultTraits()

	cases := []struct {
		a, b, want BasicType
	}{
		{Char, Short, Int},
		{Int, UnsignedInt, UnsignedInt},
		{Long, UnsignedInt, Long},
		{LongLong, UnsignedLong, UnsignedLongLong},
		{UnsignedLongLong, Long, UnsignedLongLong},
		{Int, Float, Float},
		{Float, Double, Double},
		{LongDouble, Int, LongDouble},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, UsualArithmeticConversion(tr, c.a, c.b), "%s and %s", c.a.Repr(), c.b.Repr())
		assert.Equal(t, c.want, UsualArithmeticConversion(tr, c.b, c.a), "%s and %s", c.b.Repr(), c.a.Repr())
	}

	ilp32 := DefaultTraits()
	ilp32.Sizes[Long], ilp32.Sizes[UnsignedLong] = 4, 4
	assert.Equal(t, UnsignedLong, UsualArithmeticConversion(ilp32, Long, UnsignedInt))
}

func TestTypePredicates(t *testing.T) {
	b := NewBundle()
	defer b.Free()

	assert.True(t, IsComplete(b.NewBoundedArray(Int, 2, 0)))
	assert.False(t, IsComplete(b.NewUnboundedArray(Int, 0)))
	assert.False(t, IsComplete(Void))
	assert.False(t, IsComplete(b.NewStruct("s")))

	vla := b.NewVLA(Int, nil, 0)
	assert.True(t, IsVariablyModified(b.NewPointer(vla)))
	assert.False(t, IsVariablyModified(b.NewPointer(Int)))

	adjusted := AdjustParameter(b, b.NewBoundedArray(Char, 3, Const))
	assert.Equal(t, "char *const", adjusted.Repr())
	assert.True(t, IsPointer(AdjustParameter(b, b.NewFunction(Int, EmptyParameters))))
}
