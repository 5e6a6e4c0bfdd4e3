package walk

import (
	"testing"

	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"

	"github.com/stretchr/testify/require"
)

// The helpers below build syntax trees the way the parser hands them over.

func newTestWalker(t *testing.T) (*Walker, *GlobalContext) {
	gc := NewGlobalContext(nil, nil)
	t.Cleanup(gc.Free)
	return NewWalker(gc), gc
}

func kw(keywords ...ast.TypeKeyword) []ast.DeclSpecifier {
	specs := make([]ast.DeclSpecifier, len(keywords))
	for i, k := range keywords {
		specs[i] = &ast.TypeSpecifier{Keyword: k}
	}

	return specs
}

func withStorage(sc sem.StorageClass, specs ...ast.DeclSpecifier) []ast.DeclSpecifier {
	return append([]ast.DeclSpecifier{&ast.StorageClassSpecifier{Storage: sc}}, specs...)
}

func qualified(q typing.Qualifiers, specs ...ast.DeclSpecifier) []ast.DeclSpecifier {
	return append([]ast.DeclSpecifier{&ast.TypeQualifier{Qualifier: q}}, specs...)
}

func named(name string) *ast.IdentifierDeclarator {
	return &ast.IdentifierDeclarator{Name: name}
}

func pointerTo(decl ast.Declarator) *ast.PointerDeclarator {
	return &ast.PointerDeclarator{Declarator: decl}
}

func arrayOf(length ast.Expr, decl ast.Declarator) *ast.ArrayDeclarator {
	if length == nil {
		return &ast.ArrayDeclarator{Syntax: ast.ArrayUnbounded, Declarator: decl}
	}

	return &ast.ArrayDeclarator{Syntax: ast.ArrayBounded, Length: length, Declarator: decl}
}

func functionOf(decl ast.Declarator, params ...*ast.ParameterDeclaration) *ast.FunctionDeclarator {
	return &ast.FunctionDeclarator{Params: params, Declarator: decl}
}

func param(specs []ast.DeclSpecifier, decl ast.Declarator) *ast.ParameterDeclaration {
	return &ast.ParameterDeclaration{Specifiers: specs, Declarator: decl}
}

func declare(specs []ast.DeclSpecifier, decls ...*ast.InitDeclarator) *ast.Declaration {
	return &ast.Declaration{Specifiers: specs, Declarators: decls}
}

func declarator(decl ast.Declarator, init *ast.Initializer) *ast.InitDeclarator {
	return &ast.InitDeclarator{Declarator: decl, Init: init}
}

func typeName(specs []ast.DeclSpecifier, decl ast.Declarator) *ast.TypeName {
	return &ast.TypeName{Specifiers: specs, Declarator: decl}
}

func structOf(tag string, members ...*ast.StructDeclaration) *ast.StructSpecifier {
	nodes := make([]ast.Node, len(members))
	for i, m := range members {
		nodes[i] = m
	}

	return &ast.StructSpecifier{Tag: tag, Complete: true, Members: nodes}
}

func member(specs []ast.DeclSpecifier, decl ast.Declarator, width ast.Expr) *ast.StructDeclaration {
	return &ast.StructDeclaration{
		Specifiers:  specs,
		Declarators: []*ast.StructDeclarator{{Declarator: decl, Width: width}},
	}
}

// -----------------------------------------------------------------------------

func exprInit(expr ast.Expr) *ast.Initializer {
	return &ast.Initializer{Expr: expr}
}

func listInit(inits ...*ast.Initializer) *ast.Initializer {
	entries := make([]*ast.InitializerEntry, len(inits))
	for i, init := range inits {
		entries[i] = &ast.InitializerEntry{Init: init}
	}

	return &ast.Initializer{List: entries}
}

func designated(designators []*ast.Designator, init *ast.Initializer) *ast.InitializerEntry {
	return &ast.InitializerEntry{Designators: designators, Init: init}
}

// -----------------------------------------------------------------------------

func intConst(v int64) *ast.Constant {
	return &ast.Constant{Kind: ast.ConstInt, Int: v}
}

func floatConst(v float64) *ast.Constant {
	return &ast.Constant{Kind: ast.ConstDouble, Float: v}
}

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func str(value string) *ast.StringLiteral {
	return &ast.StringLiteral{Value: value}
}

func binary(op ast.BinaryOp, lhs, rhs ast.Expr) *ast.BinaryOperation {
	return &ast.BinaryOperation{Op: op, Lhs: lhs, Rhs: rhs}
}

func unary(op ast.UnaryOp, operand ast.Expr) *ast.UnaryOperation {
	return &ast.UnaryOperation{Op: op, Operand: operand}
}

func cast(tn *ast.TypeName, expr ast.Expr) *ast.Cast {
	return &ast.Cast{Type: tn, Expr: expr}
}

// -----------------------------------------------------------------------------

// mustDeclare analyzes a declaration which is expected to succeed.
func mustDeclare(t *testing.T, w *Walker, decl *ast.Declaration) {
	t.Helper()
	require.NoError(t, w.AnalyzeDeclaration(decl))
}

// requireKind asserts that err is a compile error of the given kind.
func requireKind(t *testing.T, kind report.ErrorKind, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, report.IsKind(err, kind), "unexpected error: %v", err)
}

// evalInt evaluates an integer constant expression.
func evalInt(t *testing.T, w *Walker, expr ast.Expr) int64 {
	t.Helper()

	value, err := w.Evaluate(expr)
	require.NoError(t, err)

	ic, ok := value.(sem.IntConst)
	require.True(t, ok, "expected an integer constant, got %s", value.Repr())
	return ic.Value
}

func lookupObject(t *testing.T, ctx Context, name string) *sem.Object {
	t.Helper()

	sid, err := ctx.ResolveOrdinary(name)
	require.NoError(t, err)

	obj, ok := sid.(*sem.Object)
	require.True(t, ok, "`%s` is not an object", name)
	return obj
}
