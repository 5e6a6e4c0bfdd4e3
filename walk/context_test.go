package walk

import (
	"testing"

	"csem/report"
	"csem/sem"
	"csem/typing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTentativeExternalMerge(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	decl, err := gc.DeclareExternal("v", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.False(t, decl.Defined)
	assert.Equal(t, []string{"v"}, gc.TentativeNames())

	def, err := gc.DefineExternal("v", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Same(t, decl, def)
	assert.True(t, def.Defined)

	_, ok := gc.Tentative("v")
	assert.False(t, ok)
	assert.Empty(t, gc.TentativeNames())
}

func TestStaticAfterExternal(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	_, err := gc.DeclareExternal("v", typing.Int, 0, nil)
	require.NoError(t, err)

	_, err = gc.DefineStatic("v", typing.Int, 0, nil)
	requireKind(t, report.MalformedArgument, err)
}

func TestExternalAfterStatic(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	st, err := gc.DefineStatic("v", typing.Int, 0, nil)
	require.NoError(t, err)

	// `extern` takes the linkage of the previous declaration
	ext, err := gc.DeclareExternal("v", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Same(t, st, ext)
	assert.Equal(t, sem.LinkageInternal, ext.Linkage)
	assert.Empty(t, gc.TentativeNames())

	_, err = gc.DefineExternal("v", typing.Int, 0, nil)
	requireKind(t, report.MalformedArgument, err)
}

func TestConflictingRedeclaration(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	_, err := gc.DeclareExternal("v", typing.Int, 0, nil)
	require.NoError(t, err)

	_, err = gc.DeclareExternal("v", typing.Long, 0, nil)
	requireKind(t, report.MalformedArgument, err)
}

func TestArrayRedeclarationComposite(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()
	b := gc.Bundle()

	_, err := gc.DeclareExternal("a", b.NewUnboundedArray(typing.Int, 0), 0, nil)
	require.NoError(t, err)

	obj, err := gc.DeclareExternal("a", b.NewBoundedArray(typing.Int, 4, 0), 0, nil)
	require.NoError(t, err)

	at, ok := obj.Type.(*typing.ArrayType)
	require.True(t, ok)
	assert.EqualValues(t, 4, at.Length)
}

func TestBlockExternShared(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	lc := NewLocalContext(gc)
	defer lc.Free()

	inner, err := lc.DeclareExternal("shared", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, gc.TentativeNames())

	// not visible at file scope until declared there
	_, err = gc.ResolveOrdinary("shared")
	requireKind(t, report.NotFound, err)

	outer, err := gc.DefineExternal("shared", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Same(t, inner, outer)
	assert.Empty(t, gc.TentativeNames())
}

func TestLocalShadowing(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	global, err := gc.DefineExternal("x", typing.Int, 0, nil)
	require.NoError(t, err)

	lc := NewLocalContext(gc)
	defer lc.Free()

	local, err := lc.DefineAuto("x", typing.Char, 0, nil)
	require.NoError(t, err)
	assert.Same(t, local, lookupObject(t, lc, "x"))

	lc.PushBlock()
	_, err = lc.DefineAuto("x", typing.Short, 0, nil)
	require.NoError(t, err)
	lc.PopBlock()

	assert.Same(t, local, lookupObject(t, lc, "x"))
	assert.Same(t, global, lookupObject(t, gc, "x"))

	_, err = lc.DefineAuto("x", typing.Int, 0, nil)
	requireKind(t, report.MalformedArgument, err)
}

func TestLocalStaticSymbols(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	lc := NewLocalContext(gc)
	defer lc.Free()

	a, err := lc.DefineStatic("count", typing.Int, 0, nil)
	require.NoError(t, err)

	lc.PushBlock()
	b, err := lc.DefineStatic("count", typing.Int, 0, nil)
	require.NoError(t, err)
	lc.PopBlock()

	assert.NotEqual(t, a.Symbol, b.Symbol)
	assert.True(t, a.HasStaticStorage())
	assert.Equal(t, sem.LinkageNone, a.Linkage)
	assert.Equal(t, []*sem.Object{a, b}, gc.LocalStatics())
}

func TestFunctionRedeclaration(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()
	b := gc.Bundle()

	// int f();
	old := b.NewFunction(typing.Int, typing.EmptyParameters)
	fn, err := gc.DeclareFunction("f", old, sem.StorageNone, sem.SpecNone, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, gc.TentativeNames())

	// int f(int);
	proto := b.NewFunction(typing.Int, typing.ParameterList)
	proto.AddParameter("", typing.Int, typing.Int, false)
	again, err := gc.DeclareFunction("f", proto, sem.StorageNone, sem.SpecInline, nil)
	require.NoError(t, err)
	assert.Same(t, fn, again)
	assert.True(t, fn.Type.Prototyped())
	assert.Equal(t, sem.SpecInline, fn.Specifier)

	// int f(char);
	bad := b.NewFunction(typing.Int, typing.ParameterList)
	bad.AddParameter("", typing.Char, typing.Char, false)
	_, err = gc.DeclareFunction("f", bad, sem.StorageNone, sem.SpecNone, nil)
	requireKind(t, report.MalformedArgument, err)

	_, err = gc.DefineFunction("f", proto, sem.SpecNone, nil)
	require.NoError(t, err)
	assert.Empty(t, gc.TentativeNames())

	_, err = gc.DefineFunction("f", proto, sem.SpecNone, nil)
	requireKind(t, report.MalformedArgument, err)
}

func TestStringLiteralRegistry(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	first := gc.RegisterStringLiteral([]int64{'h', 'i', 0}, typing.Char)
	second := gc.RegisterStringLiteral([]int64{'h', 'i', 0}, typing.Char)

	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, second.Index)
	assert.NotEqual(t, first.Symbol, second.Symbol)
	assert.Equal(t, []*sem.StringLiteral{first, second}, gc.Literals())
}

func TestBlockExternHidesFileScopeNames(t *testing.T) {
	gc := NewGlobalContext(nil, nil)
	defer gc.Free()

	_, err := gc.DefineType("x", typing.Char, 0, nil)
	require.NoError(t, err)
	_, err = gc.DefineConstant("k", 1, typing.Int, nil)
	require.NoError(t, err)
	_, err = gc.DeclareFunction("f", gc.Bundle().NewFunction(typing.Int, typing.EmptyParameters), sem.StorageNone, sem.SpecNone, nil)
	require.NoError(t, err)

	lc := NewLocalContext(gc)
	defer lc.Free()

	// extern int x; hides the typedef and refers to an external object
	obj, err := lc.DeclareExternal("x", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Same(t, obj, lookupObject(t, lc, "x"))
	assert.Equal(t, sem.LinkageExternal, obj.Linkage)

	_, err = lc.DeclareExternal("k", typing.Int, 0, nil)
	require.NoError(t, err)
	assert.Contains(t, gc.TentativeNames(), "x")
	assert.Contains(t, gc.TentativeNames(), "k")

	// the file scope bindings are unchanged
	sid, err := gc.ResolveOrdinary("x")
	require.NoError(t, err)
	assert.IsType(t, &sem.TypeDefinition{}, sid)

	// a function with linkage still conflicts
	_, err = lc.DeclareExternal("f", typing.Int, 0, nil)
	requireKind(t, report.MalformedArgument, err)
}
