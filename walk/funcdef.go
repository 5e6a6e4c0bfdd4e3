package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// AnalyzeFunctionDefinition defines a function, declares its parameters in a
// fresh local context and analyzes its body.  Errors inside the body are
// recorded per block item and do not fail the definition.
func (w *Walker) AnalyzeFunctionDefinition(fd *ast.FunctionDefinition) error {
	if w.local != nil {
		return report.Raise(report.MalformedArgument, fd.Span(), "function definition is not allowed here")
	}

	ds, err := w.analyzeSpecifiers(fd.Specifiers, fd.Span())
	if err != nil {
		return err
	}

	switch ds.storage {
	case sem.StorageNone, sem.StorageExtern, sem.StorageStatic:
	default:
		return report.Raise(report.MalformedArgument, fd.Span(), "invalid storage class `%s` for function definition", ds.storage.Repr())
	}

	if ds.alignment != 0 {
		return report.Raise(report.MalformedArgument, fd.Span(), "alignment specified for a function definition")
	}

	if _, ok := functionDeclarator(fd.Declarator); !ok {
		return report.Raise(report.MalformedArgument, fd.Span(), "function definition without a function declarator")
	}

	name, typ, err := w.AnalyzeDeclarator(ds.typ, fd.Declarator)
	if err != nil {
		return err
	}

	ft := typ.(*typing.FunctionType)
	if err := w.analyzeParameterDeclarations(ft, fd.Declarations); err != nil {
		return err
	}

	if ret := ft.Return; !typing.IsVoid(ret) && !typing.IsComplete(ret) {
		return report.Raise(report.MalformedArgument, fd.Span(), "return type `%s` is an incomplete type", ret.Repr())
	}

	for _, param := range ft.Params {
		if param.Name == "" {
			return report.Raise(report.MalformedArgument, fd.Span(), "parameter name omitted in definition of `%s`", name)
		}
	}

	var fn *sem.Function
	if ds.storage == sem.StorageStatic {
		fn, err = w.global.DefineStaticFunction(name, ft, ds.specifier, fd.Span())
	} else {
		fn, err = w.global.DefineFunction(name, ft, ds.specifier, fd.Span())
	}

	if err != nil {
		return err
	}

	props := fd.Props()
	props.Category = ast.CategoryFunctionDefinition
	props.Identifier = name
	props.Type = ft
	props.Storage = ds.storage
	props.FunctionSpecifier = ds.specifier
	props.Scoped = fn

	restore := w.enterFunction(fn)
	defer restore()

	for _, param := range ft.Params {
		define := w.local.DefineAuto
		if param.Register {
			define = w.local.DefineRegister
		}

		if _, err := define(param.Name, param.Adjusted, 0, fd.Span()); err != nil {
			return err
		}
	}

	if err := w.defineFunctionName(name, fd.Span()); err != nil {
		return err
	}

	// the body shares the block of the parameters
	w.analyzeBlockItems(fd.Body.Items)
	fd.Body.Props().Category = ast.CategoryStatement
	return nil
}

// functionDeclarator returns the declarator which derives the function type
// of a function definition: the one directly enclosing the identifier.
func functionDeclarator(decl ast.Declarator) (*ast.FunctionDeclarator, bool) {
	var parent ast.Declarator
	for decl != nil {
		switch v := decl.(type) {
		case *ast.IdentifierDeclarator:
			fd, ok := parent.(*ast.FunctionDeclarator)
			return fd, ok
		case *ast.PointerDeclarator:
			parent, decl = v, v.Declarator
		case *ast.ArrayDeclarator:
			parent, decl = v, v.Declarator
		case *ast.FunctionDeclarator:
			parent, decl = v, v.Declarator
		default:
			return nil, false
		}
	}

	return nil, false
}

// analyzeParameterDeclarations gives types to the parameters of an
// old-style definition from its declaration list.  Parameters left
// undeclared default to `int`.
func (w *Walker) analyzeParameterDeclarations(ft *typing.FunctionType, decls []*ast.Declaration) error {
	if ft.Mode != typing.IdentifierList {
		if len(decls) > 0 {
			return report.Raise(report.MalformedArgument, decls[0].Span(), "old-style parameter declarations in prototyped function definition")
		}

		return nil
	}

	for _, decl := range decls {
		ds, err := w.analyzeSpecifiers(decl.Specifiers, decl.Span())
		if err != nil {
			return err
		}

		if ds.storage != sem.StorageNone && ds.storage != sem.StorageRegister {
			return report.Raise(report.MalformedArgument, decl.Span(), "invalid storage class `%s` for parameter", ds.storage.Repr())
		}

		if ds.specifier != sem.SpecNone || ds.alignment != 0 {
			return report.Raise(report.MalformedArgument, decl.Span(), "parameter declaration may only contain type specifiers, qualifiers and `register`")
		}

		for _, id := range decl.Declarators {
			name, typ, err := w.AnalyzeDeclarator(ds.typ, id.Declarator)
			if err != nil {
				return report.WithSpan(err, id.Span())
			}

			param, ok := ft.Param(name)
			switch {
			case !ok:
				return report.Raise(report.MalformedArgument, id.Span(), "declaration for parameter `%s` but no such parameter", name)
			case param.Type != nil:
				return report.Raise(report.MalformedArgument, id.Span(), "redefinition of parameter `%s`", name)
			case id.Init != nil:
				return report.Raise(report.MalformedArgument, id.Span(), "parameter `%s` is initialized", name)
			case typing.IsVoid(typ):
				return report.Raise(report.MalformedArgument, id.Span(), "parameter `%s` declared void", name)
			}

			param.Type = typ
			param.Adjusted = typing.AdjustParameter(w.bundle(), typ)
			param.Register = ds.storage == sem.StorageRegister

			if !typing.IsComplete(param.Adjusted) {
				return report.Raise(report.MalformedArgument, id.Span(), "parameter `%s` has incomplete type `%s`", name, typ.Repr())
			}

			props := id.Props()
			props.Category = ast.CategoryInitDeclarator
			props.Identifier = name
			props.Type = typ
			props.Storage = ds.storage
		}

		decl.Props().Category = ast.CategoryDeclaration
	}

	for _, param := range ft.Params {
		if param.Type == nil {
			param.Type = typing.Int
			param.Adjusted = typing.Int
		}
	}

	return nil
}

// defineFunctionName defines the predefined identifier `__func__` of a
// function body: a static array of const char holding the function name.
func (w *Walker) defineFunctionName(name string, span *report.TextSpan) error {
	units := make([]int64, 0, len(name)+1)
	for _, b := range []byte(name) {
		units = append(units, int64(b))
	}

	lit := w.global.RegisterStringLiteral(append(units, 0), typing.Char)
	typ := w.bundle().NewBoundedArray(w.bundle().NewQualified(typing.Char, typing.Const), uint64(len(lit.Units)), 0)

	obj, err := w.local.DefineStatic("__func__", typ, 0, span)
	if err != nil {
		return err
	}

	obj.Initialized = true
	obj.Initializer = []sem.InitSlot{{Type: typ, Literal: lit}}
	return nil
}

// -----------------------------------------------------------------------------

// analyzeStatement analyzes a statement of a function body.
func (w *Walker) analyzeStatement(stmt ast.Statement) error {
	switch v := stmt.(type) {
	case *ast.CompoundStatement:
		popBlock := w.pushBlock()
		w.analyzeBlockItems(v.Items)
		popBlock()
	case *ast.ExpressionStatement:
		if v.Expr != nil {
			if err := w.AnalyzeExpr(v.Expr); err != nil {
				return err
			}
		}
	case *ast.ReturnStatement:
		if err := w.analyzeReturn(v); err != nil {
			return err
		}
	default:
		report.Assert(false, "unexpected statement %T", stmt)
	}

	stmt.Props().Category = ast.CategoryStatement
	return nil
}

func (w *Walker) analyzeReturn(rs *ast.ReturnStatement) error {
	if w.function == nil {
		return report.Raise(report.MalformedArgument, rs.Span(), "return statement outside of a function")
	}

	ret := w.function.Type.Return
	if rs.Expr == nil {
		if !typing.IsVoid(ret) {
			return report.Raise(report.MalformedArgument, rs.Span(), "`return` with no value in function returning `%s`", ret.Repr())
		}

		return nil
	}

	if err := w.AnalyzeExpr(rs.Expr); err != nil {
		return err
	}

	if typing.IsVoid(ret) {
		if !typing.IsVoid(rs.Expr.Props().Type) {
			return report.Raise(report.MalformedArgument, rs.Span(), "`return` with a value in function returning void")
		}

		return nil
	}

	return w.checkAssignable(ret, rs.Expr)
}

// analyzeBlockItems analyzes the declarations and statements of a block.  A
// failing item is recorded as a diagnostic and analysis continues with the
// next one.
func (w *Walker) analyzeBlockItems(items []ast.Node) {
	for _, item := range items {
		w.diags.Add(report.WithSpan(w.AnalyzeNode(item), item.Span()))
	}
}
