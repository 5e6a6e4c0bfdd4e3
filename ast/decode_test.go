package ast

import (
	"strings"
	"testing"

	"csem/report"
	"csem/sem"
	"csem/typing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// static const int table[2] = {1, [1] = 2};
const tableUnit = `{
	"kind": "translation_unit",
	"items": [{
		"kind": "declaration",
		"span": [0, 0, 0, 38],
		"specifiers": [
			{"kind": "storage_class", "storage": "static"},
			{"kind": "type_qualifier", "qualifier": "const"},
			{"kind": "type_specifier", "keyword": "int"}
		],
		"declarators": [{
			"kind": "init_declarator",
			"declarator": {
				"kind": "array_declarator",
				"syntax": "bounded",
				"length": {"kind": "constant", "type": "int", "value": 2},
				"declarator": {"kind": "identifier_declarator", "name": "table"}
			},
			"init": {
				"kind": "initializer",
				"list": [
					{"init": {"kind": "initializer", "expr": {"kind": "constant", "type": "int", "value": 1}}},
					{
						"designators": [{"index": {"kind": "constant", "type": "int", "value": 1}}],
						"init": {"kind": "initializer", "expr": {"kind": "constant", "type": "int", "value": 2}}
					}
				]
			}
		}]
	}]
}`

func TestDecodeDeclaration(t *testing.T) {
	tu, err := DecodeTranslationUnit(strings.NewReader(tableUnit))
	require.NoError(t, err)
	require.Len(t, tu.Items, 1)

	decl, ok := tu.Items[0].(*Declaration)
	require.True(t, ok)
	assert.Equal(t, &report.TextSpan{StartLine: 0, StartCol: 0, EndLine: 0, EndCol: 38}, decl.Span())

	require.Len(t, decl.Specifiers, 3)
	assert.Equal(t, sem.StorageStatic, decl.Specifiers[0].(*StorageClassSpecifier).Storage)
	assert.Equal(t, typing.Const, decl.Specifiers[1].(*TypeQualifier).Qualifier)
	assert.Equal(t, KwInt, decl.Specifiers[2].(*TypeSpecifier).Keyword)

	require.Len(t, decl.Declarators, 1)
	id := decl.Declarators[0]

	ad, ok := id.Declarator.(*ArrayDeclarator)
	require.True(t, ok)
	assert.Equal(t, ArrayBounded, ad.Syntax)
	assert.Equal(t, int64(2), ad.Length.(*Constant).Int)
	assert.Equal(t, "table", ad.Declarator.(*IdentifierDeclarator).Name)

	require.NotNil(t, id.Init)
	require.Len(t, id.Init.List, 2)
	assert.Empty(t, id.Init.List[0].Designators)
	require.Len(t, id.Init.List[1].Designators, 1)
	assert.Equal(t, int64(1), id.Init.List[1].Designators[0].Index.(*Constant).Int)
	assert.Equal(t, int64(2), id.Init.List[1].Init.Expr.(*Constant).Int)
}

// int add(a, b) int a; { return a + b; }
const oldStyleUnit = `{
	"kind": "translation_unit",
	"items": [{
		"kind": "function_definition",
		"specifiers": [{"kind": "type_specifier", "keyword": "int"}],
		"declarator": {
			"kind": "function_declarator",
			"identifier_list": true,
			"identifiers": ["a", "b"],
			"declarator": {"kind": "identifier_declarator", "name": "add"}
		},
		"declarations": [{
			"kind": "declaration",
			"specifiers": [{"kind": "type_specifier", "keyword": "int"}],
			"declarators": [{"kind": "init_declarator", "declarator": {"kind": "identifier_declarator", "name": "a"}}]
		}],
		"body": {
			"kind": "compound_statement",
			"items": [{
				"kind": "return_statement",
				"expr": {
					"kind": "binary_operation",
					"op": "+",
					"lhs": {"kind": "identifier", "name": "a"},
					"rhs": {"kind": "identifier", "name": "b"}
				}
			}]
		}
	}]
}`

func TestDecodeFunctionDefinition(t *testing.T) {
	tu, err := DecodeTranslationUnit(strings.NewReader(oldStyleUnit))
	require.NoError(t, err)
	require.Len(t, tu.Items, 1)

	fd, ok := tu.Items[0].(*FunctionDefinition)
	require.True(t, ok)

	fdecl, ok := fd.Declarator.(*FunctionDeclarator)
	require.True(t, ok)
	assert.True(t, fdecl.IdentifierList)
	require.Len(t, fdecl.Identifiers, 2)
	assert.Equal(t, "b", fdecl.Identifiers[1].Name)

	require.Len(t, fd.Declarations, 1)
	require.NotNil(t, fd.Body)
	require.Len(t, fd.Body.Items, 1)

	ret, ok := fd.Body.Items[0].(*ReturnStatement)
	require.True(t, ok)

	bo, ok := ret.Expr.(*BinaryOperation)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bo.Op)
	assert.Equal(t, "a", bo.Lhs.(*Identifier).Name)
}

func TestDecodeExpressions(t *testing.T) {
	expr, err := DecodeExpr([]byte(`{
		"kind": "assignment",
		"op": "<<=",
		"target": {"kind": "identifier", "name": "x"},
		"value": {"kind": "constant", "type": "unsigned long long", "value": 18446744073709551615}
	}`))
	require.NoError(t, err)

	a, ok := expr.(*Assignment)
	require.True(t, ok)
	assert.True(t, a.Compound)
	assert.Equal(t, OpShiftLeft, a.Op)

	c := a.Value.(*Constant)
	assert.Equal(t, ConstUnsignedLongLong, c.Kind)
	assert.Equal(t, int64(-1), c.Int)

	expr, err = DecodeExpr([]byte(`{
		"kind": "cast",
		"type": {
			"kind": "type_name",
			"specifiers": [{"kind": "type_specifier", "keyword": "char"}],
			"declarator": {"kind": "pointer_declarator"}
		},
		"expr": {"kind": "unary_operation", "op": "sizeof", "operand": {"kind": "string_literal", "value": "héllo", "wide": true}}
	}`))
	require.NoError(t, err)

	cast, ok := expr.(*Cast)
	require.True(t, ok)
	pd, ok := cast.Type.Declarator.(*PointerDeclarator)
	require.True(t, ok)
	assert.Nil(t, pd.Declarator)

	uo := cast.Expr.(*UnaryOperation)
	assert.Equal(t, OpSizeof, uo.Op)
	assert.True(t, uo.Operand.(*StringLiteral).Wide)
	assert.Equal(t, "héllo", uo.Operand.(*StringLiteral).Value)

	expr, err = DecodeExpr([]byte(`{
		"kind": "builtin_offsetof",
		"type": {"kind": "type_name", "specifiers": [{"kind": "typedef_name", "name": "point"}]},
		"path": [{"member": "coords"}, {"index": {"kind": "constant", "type": "int", "value": 1}}]
	}`))
	require.NoError(t, err)

	bo := expr.(*BuiltinOffsetof)
	require.Len(t, bo.Path, 2)
	assert.Equal(t, "coords", bo.Path[0].Member)
	assert.NotNil(t, bo.Path[1].Index)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"unknown kind":      `{"kind": "lambda"}`,
		"unknown operator":  `{"kind": "binary_operation", "op": "**", "lhs": null, "rhs": null}`,
		"malformed span":    `{"kind": "identifier", "name": "x", "span": [1, 2]}`,
		"not an expression": `{"kind": "type_specifier", "keyword": "int"}`,
		"bad constant":      `{"kind": "constant", "type": "int", "value": "twelve"}`,
		"invalid json":      `{"kind": `,
	}

	for name, data := range cases {
		_, err := DecodeExpr([]byte(data))
		assert.Error(t, err, name)
	}

	_, err := DecodeTranslationUnit(strings.NewReader(`{"kind": "identifier", "name": "x"}`))
	assert.Error(t, err)

	// the first error wins
	_, err = DecodeTranslationUnit(strings.NewReader(`{
		"kind": "translation_unit",
		"items": [{"kind": "storage_class", "storage": "mutable"}, {"kind": "mystery"}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutable")
}
