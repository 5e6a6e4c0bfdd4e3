package walk

import (
	"testing"

	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slotValues returns the offset and integer value of every slot.
func slotValues(t *testing.T, slots []sem.InitSlot) [][2]int64 {
	t.Helper()

	var values [][2]int64
	for _, slot := range slots {
		ic, ok := slot.Value.(sem.IntConst)
		require.True(t, ok, "slot at %d is not an integer", slot.Offset)
		values = append(values, [2]int64{int64(slot.Offset), ic.Value})
	}

	return values
}

func TestArrayInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	// static int a[] = {1, 2, [4] = 5};
	init := listInit(exprInit(intConst(1)), exprInit(intConst(2)))
	init.List = append(init.List, designated([]*ast.Designator{{Index: intConst(4)}}, exprInit(intConst(5))))
	mustDeclare(t, w, declare(withStorage(sem.StorageStatic, kw(ast.KwInt)...), declarator(arrayOf(nil, named("a")), init)))

	obj := lookupObject(t, gc, "a")
	at, ok := obj.Type.(*typing.ArrayType)
	require.True(t, ok)
	assert.EqualValues(t, 5, at.Length)
	assert.True(t, obj.Initialized)
	assert.Equal(t, [][2]int64{{0, 1}, {4, 2}, {16, 5}}, slotValues(t, obj.Initializer))

	// int m[2][2] = {1, 2, 3, 4};
	flat := listInit(exprInit(intConst(1)), exprInit(intConst(2)), exprInit(intConst(3)), exprInit(intConst(4)))
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(arrayOf(intConst(2), arrayOf(intConst(2), named("m"))), flat)))
	assert.Equal(t, [][2]int64{{0, 1}, {4, 2}, {8, 3}, {12, 4}}, slotValues(t, lookupObject(t, gc, "m").Initializer))

	// int n[2][2] = {{1}, {3, 4}};
	nested := listInit(listInit(exprInit(intConst(1))), listInit(exprInit(intConst(3)), exprInit(intConst(4))))
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(arrayOf(intConst(2), arrayOf(intConst(2), named("n"))), nested)))
	assert.Equal(t, [][2]int64{{0, 1}, {8, 3}, {12, 4}}, slotValues(t, lookupObject(t, gc, "n").Initializer))

	// int o[3] = {1, [0] = 7};
	override := listInit(exprInit(intConst(1)))
	override.List = append(override.List, designated([]*ast.Designator{{Index: intConst(0)}}, exprInit(intConst(7))))
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(arrayOf(intConst(3), named("o")), override)))
	assert.Equal(t, [][2]int64{{0, 7}}, slotValues(t, lookupObject(t, gc, "o").Initializer))
}

func TestArrayInitializerErrors(t *testing.T) {
	w, _ := newTestWalker(t)

	cases := map[string]*ast.Declaration{
		// int e[2] = {1, 2, 3};
		"excess elements": declare(kw(ast.KwInt), declarator(arrayOf(intConst(2), named("e")),
			listInit(exprInit(intConst(1)), exprInit(intConst(2)), exprInit(intConst(3))))),
		// int d[2] = {[2] = 1};
		"index out of bounds": declare(kw(ast.KwInt), declarator(arrayOf(intConst(2), named("d")),
			&ast.Initializer{List: []*ast.InitializerEntry{designated([]*ast.Designator{{Index: intConst(2)}}, exprInit(intConst(1)))}})),
		// int x[2] = 1;
		"scalar for array": declare(kw(ast.KwInt), declarator(arrayOf(intConst(2), named("x")), exprInit(intConst(1)))),
		// char c[1] = "hi";
		"string too long": declare(kw(ast.KwChar), declarator(arrayOf(intConst(1), named("c")), exprInit(str("hi")))),
		// int i[] = "hi";
		"string for int array": declare(kw(ast.KwInt), declarator(arrayOf(nil, named("i")), exprInit(str("hi")))),
	}

	for name, decl := range cases {
		err := w.AnalyzeDeclaration(decl)
		assert.True(t, report.IsKind(err, report.MalformedArgument), "%s: %v", name, err)
	}
}

func TestStringInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	// char s[] = "hi";
	mustDeclare(t, w, declare(kw(ast.KwChar), declarator(arrayOf(nil, named("s")), exprInit(str("hi")))))

	obj := lookupObject(t, gc, "s")
	at, ok := obj.Type.(*typing.ArrayType)
	require.True(t, ok)
	assert.EqualValues(t, 3, at.Length)

	require.Len(t, obj.Initializer, 1)
	slot := obj.Initializer[0]
	require.NotNil(t, slot.Literal)
	assert.Equal(t, []int64{'h', 'i', 0}, slot.Literal.Units)

	// the terminating zero may be dropped: char exact[2] = {"hi"};
	mustDeclare(t, w, declare(kw(ast.KwChar), declarator(arrayOf(intConst(2), named("exact")), listInit(exprInit(str("hi"))))))
	assert.EqualValues(t, 2, lookupObject(t, gc, "exact").Type.(*typing.ArrayType).Length)

	// char words[2][4] = {"ab", "cde"};
	words := listInit(exprInit(str("ab")), exprInit(str("cde")))
	mustDeclare(t, w, declare(kw(ast.KwChar), declarator(arrayOf(intConst(4), arrayOf(intConst(2), named("words"))), words)))

	slots := lookupObject(t, gc, "words").Initializer
	require.Len(t, slots, 2)
	assert.EqualValues(t, 0, slots[0].Offset)
	assert.EqualValues(t, 4, slots[1].Offset)
}

func TestStructInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	// struct pt { char tag; int x; int y; };
	mustDeclare(t, w, declare([]ast.DeclSpecifier{structOf("pt",
		member(kw(ast.KwChar), named("tag"), nil),
		member(kw(ast.KwInt), named("x"), nil),
		member(kw(ast.KwInt), named("y"), nil),
	)}))
	structPt := func() []ast.DeclSpecifier { return []ast.DeclSpecifier{&ast.StructSpecifier{Tag: "pt"}} }

	// struct pt p = {.x = 3, 4, .tag = 'a'};
	init := &ast.Initializer{List: []*ast.InitializerEntry{
		designated([]*ast.Designator{{Member: "x"}}, exprInit(intConst(3))),
		{Init: exprInit(intConst(4))},
		designated([]*ast.Designator{{Member: "tag"}}, exprInit(&ast.Constant{Kind: ast.ConstChar, Int: 'a'})),
	}}
	mustDeclare(t, w, declare(structPt(), declarator(named("p"), init)))
	assert.Equal(t, [][2]int64{{0, 'a'}, {4, 3}, {8, 4}}, slotValues(t, lookupObject(t, gc, "p").Initializer))

	// struct pt ps[] = {1, 2, 3, {4}};
	elided := listInit(exprInit(intConst(1)), exprInit(intConst(2)), exprInit(intConst(3)), listInit(exprInit(intConst(4))))
	mustDeclare(t, w, declare(structPt(), declarator(arrayOf(nil, named("ps")), elided)))

	obj := lookupObject(t, gc, "ps")
	assert.EqualValues(t, 2, obj.Type.(*typing.ArrayType).Length)
	assert.Equal(t, [][2]int64{{0, 1}, {4, 2}, {8, 3}, {12, 4}}, slotValues(t, obj.Initializer))

	// struct pt bad = {.z = 1};
	bad := &ast.Initializer{List: []*ast.InitializerEntry{designated([]*ast.Designator{{Member: "z"}}, exprInit(intConst(1)))}}
	err := w.AnalyzeDeclaration(declare(structPt(), declarator(named("bad"), bad)))
	requireKind(t, report.NotFound, err)

	// struct pt many = {1, 2, 3, 4};
	many := listInit(exprInit(intConst(1)), exprInit(intConst(2)), exprInit(intConst(3)), exprInit(intConst(4)))
	err = w.AnalyzeDeclaration(declare(structPt(), declarator(named("many"), many)))
	requireKind(t, report.MalformedArgument, err)
}

func TestUnionInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	u := func() []ast.DeclSpecifier {
		return []ast.DeclSpecifier{&ast.StructSpecifier{Union: true, Tag: "u"}}
	}

	// union u { int i; char c; };
	mustDeclare(t, w, declare([]ast.DeclSpecifier{&ast.StructSpecifier{
		Union:    true,
		Tag:      "u",
		Complete: true,
		Members: []ast.Node{
			member(kw(ast.KwInt), named("i"), nil),
			member(kw(ast.KwChar), named("c"), nil),
		},
	}}))

	mustDeclare(t, w, declare(u(), declarator(named("first"), listInit(exprInit(intConst(7))))))
	assert.Equal(t, [][2]int64{{0, 7}}, slotValues(t, lookupObject(t, gc, "first").Initializer))

	// union u second = {.c = 'z'};
	second := &ast.Initializer{List: []*ast.InitializerEntry{
		designated([]*ast.Designator{{Member: "c"}}, exprInit(&ast.Constant{Kind: ast.ConstChar, Int: 'z'})),
	}}
	mustDeclare(t, w, declare(u(), declarator(named("second"), second)))

	slots := lookupObject(t, gc, "second").Initializer
	require.Len(t, slots, 1)
	assert.Equal(t, typing.Char, slots[0].Type)

	err := w.AnalyzeDeclaration(declare(u(), declarator(named("both"), listInit(exprInit(intConst(1)), exprInit(intConst(2))))))
	requireKind(t, report.MalformedArgument, err)
}

func TestBitfieldInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	// struct bf { unsigned a : 3; int b : 4; } v = {9, 15};
	bf := structOf("bf",
		member(kw(ast.KwUnsigned), named("a"), intConst(3)),
		member(kw(ast.KwInt), named("b"), intConst(4)),
	)
	mustDeclare(t, w, declare([]ast.DeclSpecifier{bf}, declarator(named("v"), listInit(exprInit(intConst(9)), exprInit(intConst(15))))))

	slots := lookupObject(t, gc, "v").Initializer
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Bitfield)
	assert.True(t, slots[1].Bitfield)
	assert.EqualValues(t, 3, slots[0].Bitwidth)
	assert.EqualValues(t, 4, slots[1].Bitwidth)
	assert.Less(t, slots[0].BitOffset, slots[1].BitOffset)

	// 9 wraps to 1 in three unsigned bits, 15 to -1 in four signed bits
	assert.Equal(t, sem.IntConst{Value: 1}, slots[0].Value)
	assert.Equal(t, sem.IntConst{Value: -1}, slots[1].Value)
}

func TestScalarInitializer(t *testing.T) {
	w, gc := newTestWalker(t)

	// int braced = {5};
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(named("braced"), listInit(exprInit(intConst(5))))))
	assert.Equal(t, [][2]int64{{0, 5}}, slotValues(t, lookupObject(t, gc, "braced").Initializer))

	// double d = 1;
	mustDeclare(t, w, declare(kw(ast.KwDouble), declarator(named("d"), exprInit(intConst(1)))))
	assert.Equal(t, sem.FloatConst{Value: 1}, lookupObject(t, gc, "d").Initializer[0].Value)

	// int *q = &braced;
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(pointerTo(named("q")), exprInit(unary(ast.OpAddress, ident("braced"))))))
	assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "braced"}, lookupObject(t, gc, "q").Initializer[0].Value)

	// int two = {1, 2};
	err := w.AnalyzeDeclaration(declare(kw(ast.KwInt), declarator(named("two"), listInit(exprInit(intConst(1)), exprInit(intConst(2))))))
	requireKind(t, report.MalformedArgument, err)

	// int copy = braced;
	err = w.AnalyzeDeclaration(declare(kw(ast.KwInt), declarator(named("copy"), exprInit(ident("braced")))))
	requireKind(t, report.NotConstant, err)

	// int braced = 6;
	err = w.AnalyzeDeclaration(declare(kw(ast.KwInt), declarator(named("braced"), exprInit(intConst(6)))))
	requireKind(t, report.MalformedArgument, err)

	// int *bad = 1.5;
	err = w.AnalyzeDeclaration(declare(kw(ast.KwInt), declarator(pointerTo(named("bad")), exprInit(floatConst(1.5)))))
	requireKind(t, report.MalformedArgument, err)
}

func TestAutomaticInitializer(t *testing.T) {
	_, gc := newTestWalker(t)

	lc := NewLocalContext(gc)
	defer lc.Free()
	w := NewWalker(lc)

	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(named("y"), exprInit(intConst(1)))))

	// int z = y; is fine for automatic storage
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(named("z"), exprInit(ident("y")))))

	obj := lookupObject(t, lc, "z")
	assert.True(t, obj.Initialized)
	assert.Empty(t, obj.Initializer)

	// static int s = y; is not
	err := w.AnalyzeDeclaration(declare(withStorage(sem.StorageStatic, kw(ast.KwInt)...), declarator(named("s"), exprInit(ident("y")))))
	requireKind(t, report.NotConstant, err)

	// extern int e = 1; in a block
	err = w.AnalyzeDeclaration(declare(withStorage(sem.StorageExtern, kw(ast.KwInt)...), declarator(named("e"), exprInit(intConst(1)))))
	requireKind(t, report.MalformedArgument, err)
}
