package typing

import (
	"testing"

	"csem/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapResolver map[string]*StructType

func (mr mapResolver) ResolveStruct(st *StructType) (*StructType, error) {
	if resolved, ok := mr[st.Tag]; ok {
		return resolved, nil
	}

	return nil, report.Raise(report.NotFound, nil, "structure `%s` is not defined", st.Tag)
}

func TestStructLayout(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	// struct { char c; int i; short s; double d; }
	st := b.NewStruct("s")
	st.AddField("c", Char, 0)
	st.AddField("i", Int, 0)
	st.AddField("s", Short, 0)
	st.AddField("d", Double, 0)
	st.Complete = true

	layout, err := LayoutStruct(tr, nil, st)
	require.NoError(t, err)
	assert.EqualValues(t, 24, layout.Size)
	assert.EqualValues(t, 8, layout.Alignment)

	var offsets []uint64
	for _, fl := range layout.Fields {
		offsets = append(offsets, fl.Offset)
	}
	assert.Equal(t, []uint64{0, 4, 8, 16}, offsets)
}

func TestBitfieldLayout(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	// struct { int a : 3; int b : 30; int : 0; char c : 2; }
	st := b.NewStruct("bits")
	st.AddBitfield("a", Int, 0, 3)
	st.AddBitfield("b", Int, 0, 30)
	st.AddBitfield("", Int, 0, 0)
	st.AddBitfield("c", Char, 0, 2)
	st.Complete = true

	layout, err := LayoutStruct(tr, nil, st)
	require.NoError(t, err)

	assert.EqualValues(t, 0, layout.Fields[0].Offset)
	assert.EqualValues(t, 0, layout.Fields[0].BitOffset)
	assert.EqualValues(t, 4, layout.Fields[1].Offset)
	assert.EqualValues(t, 0, layout.Fields[1].BitOffset)
	assert.EqualValues(t, 8, layout.Fields[3].Offset)
	assert.EqualValues(t, 12, layout.Size)
}

func TestUnionAndFlexibleLayout(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	u := b.NewUnion("u")
	u.AddField("c", b.NewBoundedArray(Char, 5, 0), 0)
	u.AddField("i", Int, 0)
	u.Complete = true

	size, err := SizeOf(tr, nil, u)
	require.NoError(t, err)
	assert.EqualValues(t, 8, size)

	flex := b.NewStruct("flex")
	flex.AddField("n", Short, 0)
	flex.AddField("data", b.NewUnboundedArray(Long, 0), 0)
	flex.Complete = true

	size, err = SizeOf(tr, nil, flex)
	require.NoError(t, err)
	assert.EqualValues(t, 8, size)

	_, offset, err := FieldOffset(tr, nil, flex, "data")
	require.NoError(t, err)
	assert.EqualValues(t, 8, offset)
}

func TestExplicitAlignment(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	st := b.NewStruct("aligned")
	st.AddField("c", Char, 16)
	st.AddField("d", Char, 0)
	st.Complete = true

	align, err := AlignOf(tr, nil, st)
	require.NoError(t, err)
	assert.EqualValues(t, 16, align)

	size, err := SizeOf(tr, nil, st)
	require.NoError(t, err)
	assert.EqualValues(t, 16, size)
}

func TestAnonymousMemberOffset(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	inner := b.NewUnion("")
	inner.AddField("x", Int, 0)
	inner.AddField("y", Double, 0)
	inner.Complete = true

	outer := b.NewStruct("outer")
	outer.AddField("tag", Char, 0)
	outer.AddField("", inner, 0)
	outer.Complete = true

	field, offset, err := FieldOffset(tr, nil, outer, "y")
	require.NoError(t, err)
	assert.Equal(t, "y", field.Name)
	assert.EqualValues(t, 8, offset)

	_, _, err = FieldOffset(tr, nil, outer, "z")
	assert.True(t, report.IsKind(err, report.NotFound))
}

func TestSizeOfErrors(t *testing.T) {
	b := NewBundle()
	defer b.Free()
	tr := DefaultTraits()

	_, err := SizeOf(tr, nil, b.NewUnboundedArray(Int, 0))
	assert.True(t, report.IsKind(err, report.MalformedArgument))

	_, err = SizeOf(tr, nil, b.NewVLA(Int, nil, 0))
	assert.True(t, report.IsKind(err, report.NotConstant))

	_, err = SizeOf(tr, nil, b.NewFunction(Int, EmptyParameters))
	assert.True(t, report.IsKind(err, report.MalformedArgument))

	fwd := b.NewStruct("later")
	_, err = SizeOf(tr, mapResolver{}, fwd)
	assert.True(t, report.IsKind(err, report.NotFound))

	def := b.NewStruct("later")
	def.AddField("x", LongLong, 0)
	def.Complete = true

	size, err := SizeOf(tr, mapResolver{"later": def}, fwd)
	require.NoError(t, err)
	assert.EqualValues(t, 8, size)
}
