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

func TestIntegerArithmeticIdentity(t *testing.T) {
	w, _ := newTestWalker(t)

	for i := int64(-1000); i <= 1000; i++ {
		// i + i * 2 == i * 3
		lhs := binary(ast.OpAdd, intConst(i), binary(ast.OpMul, intConst(i), intConst(2)))
		rhs := binary(ast.OpMul, intConst(i), intConst(3))

		assert.Equal(t, evalInt(t, w, rhs), evalInt(t, w, lhs), "i = %d", i)
		assert.EqualValues(t, 1, evalInt(t, w, binary(ast.OpEqual,
			binary(ast.OpAdd, intConst(i), binary(ast.OpMul, intConst(i), intConst(2))),
			binary(ast.OpMul, intConst(i), intConst(3)),
		)), "i = %d", i)
	}
}

func TestAddressArithmetic(t *testing.T) {
	w, _ := newTestWalker(t)

	// static int x[10];
	mustDeclare(t, w, declare(withStorage(sem.StorageStatic, kw(ast.KwInt)...), declarator(arrayOf(intConst(10), named("x")), nil)))

	for i := int64(-20); i <= 20; i++ {
		// x + i steps over elements
		value, err := w.Evaluate(binary(ast.OpAdd, ident("x"), intConst(i)))
		require.NoError(t, err)
		assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "x", Offset: 4 * i}, value)

		// &x + i steps over whole arrays
		value, err = w.Evaluate(binary(ast.OpAdd, unary(ast.OpAddress, ident("x")), intConst(i)))
		require.NoError(t, err)
		assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "x", Offset: 40 * i}, value)
	}

	// &x[3] - &x[1]
	delta := binary(ast.OpSub,
		unary(ast.OpAddress, &ast.ArraySubscript{Array: ident("x"), Index: intConst(3)}),
		unary(ast.OpAddress, &ast.ArraySubscript{Array: ident("x"), Index: intConst(1)}),
	)
	assert.EqualValues(t, 2, evalInt(t, w, delta))

	// 2[x] is x[2]
	value, err := w.Evaluate(unary(ast.OpAddress, &ast.ArraySubscript{Array: intConst(2), Index: ident("x")}))
	require.NoError(t, err)
	assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "x", Offset: 8}, value)

	// &x[1] > &x[0]
	assert.EqualValues(t, 1, evalInt(t, w, binary(ast.OpGreater,
		unary(ast.OpAddress, &ast.ArraySubscript{Array: ident("x"), Index: intConst(1)}),
		ident("x"),
	)))
}

func TestIntegerAddressArithmetic(t *testing.T) {
	w, _ := newTestWalker(t)

	// int y; static int x[10];
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(named("y"), nil)))
	mustDeclare(t, w, declare(withStorage(sem.StorageStatic, kw(ast.KwInt)...), declarator(arrayOf(intConst(10), named("x")), nil)))

	long := typeName(kw(ast.KwLong), nil)
	addrOf := func(name string) ast.Expr {
		return cast(long, unary(ast.OpAddress, ident(name)))
	}
	element := func(i int64) ast.Expr {
		return cast(long, unary(ast.OpAddress, &ast.ArraySubscript{Array: ident("x"), Index: intConst(i)}))
	}

	addresses := []struct {
		name string
		expr ast.Expr
		want *sem.AddressConst
	}{
		{"add", binary(ast.OpAdd, addrOf("y"), intConst(4)), &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "y", Offset: 4}},
		{"add commuted", binary(ast.OpAdd, intConst(4), addrOf("y")), &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "y", Offset: 4}},
		{"subtract", binary(ast.OpSub, addrOf("y"), intConst(4)), &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "y", Offset: -4}},
		{"byte offsets", binary(ast.OpAdd, element(2), intConst(1)), &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "x", Offset: 9}},
		{"back to pointer", cast(typeName(kw(ast.KwInt), pointerTo(nil)), binary(ast.OpAdd, addrOf("y"), intConst(4))),
			&sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "y", Offset: 4}},
	}

	for _, tc := range addresses {
		value, err := w.Evaluate(tc.expr)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, value, tc.name)
	}

	integers := []struct {
		name string
		expr ast.Expr
		want int64
	}{
		{"difference in bytes", binary(ast.OpSub, element(3), element(1)), 8},
		{"equal", binary(ast.OpEqual, addrOf("y"), addrOf("y")), 1},
		{"not equal", binary(ast.OpNotEqual, binary(ast.OpAdd, addrOf("y"), intConst(4)), addrOf("y")), 1},
		{"ordered", binary(ast.OpGreater, element(1), element(0)), 1},
		{"not null", binary(ast.OpEqual, addrOf("y"), intConst(0)), 0},
	}

	for _, tc := range integers {
		assert.Equal(t, tc.want, evalInt(t, w, tc.expr), tc.name)
	}

	invalid := map[string]ast.Expr{
		"scaled":          binary(ast.OpMul, addrOf("y"), intConst(2)),
		"unrelated bases": binary(ast.OpSub, addrOf("y"), element(0)),
		"two addresses":   binary(ast.OpAdd, addrOf("y"), addrOf("y")),
	}

	for name, expr := range invalid {
		_, err := w.Evaluate(expr)
		assert.True(t, report.IsKind(err, report.NotConstant), "%s: %v", name, err)
	}
}

func TestLocalAddressIsNotConstant(t *testing.T) {
	_, gc := newTestWalker(t)

	lc := NewLocalContext(gc)
	defer lc.Free()

	local := NewWalker(lc)
	mustDeclare(t, local, declare(kw(ast.KwInt), declarator(named("y"), nil)))

	_, err := local.Evaluate(unary(ast.OpAddress, ident("y")))
	requireKind(t, report.NotConstant, err)

	// a block scope static has a fixed address
	mustDeclare(t, local, declare(withStorage(sem.StorageStatic, kw(ast.KwInt)...), declarator(named("s"), nil)))

	value, err := local.Evaluate(unary(ast.OpAddress, ident("s")))
	require.NoError(t, err)
	assert.Equal(t, sem.BaseIdentifier, value.(*sem.AddressConst).Base)
	assert.Equal(t, lookupObject(t, lc, "s").Symbol, value.(*sem.AddressConst).Symbol)
}

func TestIntegerEvaluation(t *testing.T) {
	w, _ := newTestWalker(t)
	uchar := typeName(kw(ast.KwUnsigned, ast.KwChar), nil)

	cases := []struct {
		name string
		expr ast.Expr
		want int64
	}{
		{"precedence", binary(ast.OpSub, intConst(10), binary(ast.OpDiv, intConst(7), intConst(2))), 7},
		{"truncating division", binary(ast.OpDiv, unary(ast.OpNegate, intConst(7)), intConst(2)), -3},
		{"remainder", binary(ast.OpMod, unary(ast.OpNegate, intConst(7)), intConst(2)), -1},
		{"shift", binary(ast.OpShiftLeft, intConst(1), intConst(10)), 1024},
		{"arithmetic shift", binary(ast.OpShiftRight, unary(ast.OpNegate, intConst(16)), intConst(2)), -4},
		{"char cast wraps", cast(typeName(kw(ast.KwChar), nil), intConst(300)), 44},
		{"unsigned char cast", cast(uchar, unary(ast.OpNegate, intConst(1))), 255},
		{"float truncation", cast(typeName(kw(ast.KwInt), nil), floatConst(3.9)), 3},
		{"negative float truncation", cast(typeName(kw(ast.KwInt), nil), floatConst(-3.9)), -3},
		{"bool cast", cast(typeName(kw(ast.KwBool), nil), intConst(42)), 1},
		{"logical not", unary(ast.OpLogicalNot, intConst(5)), 0},
		{"invert", unary(ast.OpInvert, intConst(0)), -1},
		{"unsigned comparison", binary(ast.OpLess, unary(ast.OpNegate, intConst(1)), &ast.Constant{Kind: ast.ConstUnsignedInt, Int: 1}), 0},
		{"untaken branch", &ast.Conditional{Cond: intConst(1), Then: intConst(2), Else: binary(ast.OpDiv, intConst(1), intConst(0))}, 2},
		{"short circuit and", binary(ast.OpLogicalAnd, intConst(0), binary(ast.OpDiv, intConst(1), intConst(0))), 0},
		{"short circuit or", binary(ast.OpLogicalOr, intConst(3), binary(ast.OpDiv, intConst(1), intConst(0))), 1},
		{"sizeof", &ast.TypeTrait{Op: ast.OpSizeof, Type: typeName(kw(ast.KwLong, ast.KwLong), nil)}, 8},
		{"alignof", &ast.TypeTrait{Op: ast.OpAlignof, Type: typeName(kw(ast.KwDouble), nil)}, 8},
		{"sizeof expression", unary(ast.OpSizeof, str("abc")), 4},
		{"pointer round trip", binary(ast.OpAdd,
			cast(typeName(kw(ast.KwLong), nil), cast(typeName(kw(ast.KwChar), pointerTo(nil)), intConst(0x1000))),
			intConst(1),
		), 0x1001},
		{"generic selection", &ast.GenericSelection{
			Control: floatConst(1),
			Associations: []*ast.GenericAssociation{
				{Type: typeName(kw(ast.KwInt), nil), Expr: intConst(10)},
				{Type: typeName(kw(ast.KwDouble), nil), Expr: intConst(20)},
				{Expr: intConst(30)},
			},
		}, 20},
		{"generic default", &ast.GenericSelection{
			Control: &ast.Constant{Kind: ast.ConstChar, Int: 'a'},
			Associations: []*ast.GenericAssociation{
				{Type: typeName(kw(ast.KwDouble), nil), Expr: intConst(20)},
				{Expr: intConst(30)},
			},
		}, 30},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, evalInt(t, w, tc.expr), tc.name)
	}
}

func TestFloatEvaluation(t *testing.T) {
	w, _ := newTestWalker(t)

	value, err := w.Evaluate(binary(ast.OpMul, floatConst(1.5), intConst(2)))
	require.NoError(t, err)
	assert.Equal(t, sem.FloatConst{Value: 3}, value)

	// float rounds to single precision
	value, err = w.Evaluate(cast(typeName(kw(ast.KwFloat), nil), floatConst(0.1)))
	require.NoError(t, err)
	assert.Equal(t, sem.FloatConst{Value: float64(float32(0.1))}, value)

	_, err = w.Evaluate(cast(typeName(kw(ast.KwChar), nil), floatConst(1e10)))
	requireKind(t, report.MalformedArgument, err)
}

func TestFloatToIntegerRange(t *testing.T) {
	w, _ := newTestWalker(t)
	uchar := typeName(kw(ast.KwUnsigned, ast.KwChar), nil)
	unsigned := typeName(kw(ast.KwUnsigned), nil)

	assert.EqualValues(t, 255, evalInt(t, w, cast(uchar, floatConst(255.9))))
	assert.EqualValues(t, 7, evalInt(t, w, cast(unsigned, floatConst(7.99))))

	// out of range values are rejected rather than wrapped
	rejected := map[string]ast.Expr{
		"unsigned char overflow": cast(uchar, floatConst(256)),
		"negative unsigned":      cast(unsigned, floatConst(-1)),
		"int overflow":           cast(typeName(kw(ast.KwInt), nil), floatConst(3e9)),
		"long long overflow":     cast(typeName(kw(ast.KwLong, ast.KwLong), nil), floatConst(1e20)),
	}

	for name, expr := range rejected {
		_, err := w.Evaluate(expr)
		assert.True(t, report.IsKind(err, report.MalformedArgument), "%s: %v", name, err)
	}
}

func TestNonConstantExpressions(t *testing.T) {
	w, _ := newTestWalker(t)
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(named("v"), nil)))

	cases := map[string]ast.Expr{
		"division by zero":  binary(ast.OpDiv, intConst(1), intConst(0)),
		"shift too far":     binary(ast.OpShiftLeft, intConst(1), intConst(40)),
		"negative shift":    binary(ast.OpShiftLeft, intConst(1), unary(ast.OpNegate, intConst(1))),
		"object value":      ident("v"),
		"assignment":        &ast.Assignment{Target: ident("v"), Value: intConst(1)},
		"increment":         unary(ast.OpPreIncrement, ident("v")),
		"comma":             &ast.Comma{Exprs: []ast.Expr{intConst(1), intConst(2)}},
		"truncated address": cast(typeName(kw(ast.KwShort), nil), unary(ast.OpAddress, ident("v"))),
	}

	for name, expr := range cases {
		_, err := w.Evaluate(expr)
		assert.True(t, report.IsKind(err, report.NotConstant), "%s: %v", name, err)
	}
}

func TestExpressionTyping(t *testing.T) {
	w, _ := newTestWalker(t)

	mustDeclare(t, w, declare(kw(ast.KwChar), declarator(named("c"), nil)))
	mustDeclare(t, w, declare(kw(ast.KwUnsigned), declarator(named("u"), nil)))
	mustDeclare(t, w, declare(kw(ast.KwLong), declarator(named("l"), nil)))
	mustDeclare(t, w, declare(kw(ast.KwInt), declarator(pointerTo(named("p")), nil)))
	mustDeclare(t, w, declare(qualified(typing.Const, kw(ast.KwInt)...), declarator(named("k"), nil)))

	types := []struct {
		name string
		expr ast.Expr
		want typing.Type
	}{
		{"promotion", binary(ast.OpAdd, ident("c"), ident("c")), typing.Int},
		{"usual conversion", binary(ast.OpAdd, ident("u"), ident("l")), typing.Long},
		{"comparison", binary(ast.OpLess, ident("p"), ident("p")), typing.Int},
		{"pointer difference", binary(ast.OpSub, ident("p"), ident("p")), typing.Long},
		{"sizeof", unary(ast.OpSizeof, ident("c")), typing.UnsignedLong},
		{"shift keeps left type", binary(ast.OpShiftLeft, ident("c"), ident("l")), typing.Int},
	}

	for _, tc := range types {
		require.NoError(t, w.AnalyzeExpr(tc.expr), tc.name)
		assert.Equal(t, tc.want, tc.expr.Props().Type, tc.name)
	}

	deref := unary(ast.OpIndirection, binary(ast.OpAdd, ident("p"), intConst(1)))
	require.NoError(t, w.AnalyzeExpr(deref))
	assert.True(t, deref.Props().LValue)
	assert.Equal(t, typing.Int, deref.Props().Type)

	invalid := map[string]ast.Expr{
		"assign to const":       &ast.Assignment{Target: ident("k"), Value: intConst(1)},
		"assign to rvalue":      &ast.Assignment{Target: intConst(1), Value: intConst(1)},
		"address of rvalue":     unary(ast.OpAddress, intConst(1)),
		"pointer plus pointer":  binary(ast.OpAdd, ident("p"), ident("p")),
		"dereference integer":   unary(ast.OpIndirection, ident("l")),
		"pointer from integer":  &ast.Assignment{Target: ident("p"), Value: ident("l")},
		"multiply pointer":      binary(ast.OpMul, ident("p"), intConst(2)),
		"undeclared identifier": unary(ast.OpSizeof, ident("fn")),
		"cast to array":         cast(typeName(kw(ast.KwInt), arrayOf(intConst(2), nil)), ident("l")),
		"subscript non-pointer": &ast.ArraySubscript{Array: ident("l"), Index: intConst(0)},
	}

	for name, expr := range invalid {
		err := w.AnalyzeExpr(expr)
		assert.Error(t, err, name)
	}

	// a null pointer constant converts to any pointer
	assign := &ast.Assignment{Target: ident("p"), Value: intConst(0)}
	require.NoError(t, w.AnalyzeExpr(assign))
}

func TestMemberAccess(t *testing.T) {
	w, _ := newTestWalker(t)

	// struct pt { char tag; int x, y; } origin;
	pt := structOf("pt",
		member(kw(ast.KwChar), named("tag"), nil),
		member(kw(ast.KwInt), named("x"), nil),
		member(kw(ast.KwInt), named("y"), nil),
	)
	mustDeclare(t, w, declare([]ast.DeclSpecifier{pt}, declarator(named("origin"), nil)))

	structPt := []ast.DeclSpecifier{&ast.StructSpecifier{Tag: "pt"}}
	assert.EqualValues(t, 12, evalInt(t, w, &ast.TypeTrait{Op: ast.OpSizeof, Type: typeName(structPt, nil)}))
	assert.EqualValues(t, 8, evalInt(t, w, &ast.BuiltinOffsetof{
		Type: typeName(structPt, nil),
		Path: []*ast.OffsetofStep{{Member: "y"}},
	}))

	value, err := w.Evaluate(unary(ast.OpAddress, &ast.StructMember{Struct: ident("origin"), Member: "y"}))
	require.NoError(t, err)
	assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "origin", Offset: 8}, value)

	// (&origin)->x
	value, err = w.Evaluate(unary(ast.OpAddress, &ast.StructMember{
		Struct:   unary(ast.OpAddress, ident("origin")),
		Member:   "x",
		Indirect: true,
	}))
	require.NoError(t, err)
	assert.Equal(t, &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: "origin", Offset: 4}, value)

	err = w.AnalyzeExpr(&ast.StructMember{Struct: ident("origin"), Member: "z"})
	requireKind(t, report.NotFound, err)
}

func TestStringLiteralAddress(t *testing.T) {
	w, gc := newTestWalker(t)

	// "hello" + 1
	value, err := w.Evaluate(binary(ast.OpAdd, str("hello"), intConst(1)))
	require.NoError(t, err)

	ac, ok := value.(*sem.AddressConst)
	require.True(t, ok)
	assert.Equal(t, sem.BaseStringLiteral, ac.Base)
	assert.EqualValues(t, 1, ac.Offset)

	require.Len(t, gc.Literals(), 1)
	lit := gc.Literals()[0]
	assert.Equal(t, lit.Symbol, ac.Symbol)
	assert.Equal(t, []int64{'h', 'e', 'l', 'l', 'o', 0}, lit.Units)

	// wide literals hold one unit per rune
	wide := &ast.StringLiteral{Wide: true, Value: "é"}
	require.NoError(t, w.AnalyzeExpr(wide))
	assert.Equal(t, []int64{0xe9, 0}, wide.Props().Literal.Units)
	assert.Equal(t, w.traits().WcharType, wide.Props().Literal.CharType)
}
