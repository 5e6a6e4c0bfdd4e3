package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// AnalyzeDeclarator wraps a base type by the derivations of a declarator and
// returns the declared name (empty for abstract declarators) and type.  A nil
// declarator declares nothing and yields the base type.
func (w *Walker) AnalyzeDeclarator(base typing.Type, decl ast.Declarator) (string, typing.Type, error) {
	typ := base
	name := ""

	for decl != nil {
		switch v := decl.(type) {
		case *ast.IdentifierDeclarator:
			name = v.Name
			decl = nil
			continue
		case *ast.PointerDeclarator:
			var quals typing.Qualifiers
			for _, q := range v.Qualifiers {
				quals = w.mergeQualifier(quals, q)
			}

			typ = w.bundle().NewQualified(w.bundle().NewPointer(typ), quals)
			decl = v.Declarator
		case *ast.ArrayDeclarator:
			at, err := w.analyzeArrayDeclarator(typ, v)
			if err != nil {
				return "", nil, err
			}

			typ = at
			decl = v.Declarator
		case *ast.FunctionDeclarator:
			ft, err := w.analyzeFunctionDeclarator(typ, v)
			if err != nil {
				return "", nil, err
			}

			typ = ft
			decl = v.Declarator
		default:
			report.Assert(false, "unexpected declarator %T", decl)
		}
	}

	return name, typ, nil
}

// analyzeArrayDeclarator derives an array type from its element type.
func (w *Walker) analyzeArrayDeclarator(elem typing.Type, ad *ast.ArrayDeclarator) (*typing.ArrayType, error) {
	if err := w.validateArrayElement(elem, ad.Span()); err != nil {
		return nil, err
	}

	var quals typing.Qualifiers
	for _, q := range ad.Qualifiers {
		quals = w.mergeQualifier(quals, q)
	}

	var at *typing.ArrayType
	switch ad.Syntax {
	case ast.ArrayUnbounded:
		if ad.Static {
			return nil, report.Raise(report.MalformedArgument, ad.Span(), "`static` array declarator without a length")
		}

		at = w.bundle().NewUnboundedArray(elem, quals)
	case ast.ArrayStar:
		if w.prototypeDepth == 0 {
			return nil, report.Raise(report.MalformedArgument, ad.Span(), "`[*]` is only allowed in function prototype scope")
		}

		at = w.bundle().NewVLA(elem, nil, quals)
	case ast.ArrayBounded:
		length, constant, err := w.analyzeArrayLength(ad.Length)
		if err != nil {
			return nil, err
		}

		switch {
		case constant && ad.Static:
			at = w.bundle().NewStaticArray(elem, length, quals)
		case constant:
			at = w.bundle().NewBoundedArray(elem, length, quals)
		case ad.Static:
			at = w.bundle().NewStaticVLA(elem, ad.Length, quals)
		default:
			at = w.bundle().NewVLA(elem, ad.Length, quals)
		}
	}

	ad.Props().Type = at
	return at, nil
}

// analyzeArrayLength analyzes the length expression of an array declarator.
// Lengths which are integer constant expressions are evaluated (and cached on
// the expression); other integral expressions make the array variable length.
func (w *Walker) analyzeArrayLength(expr ast.Expr) (uint64, bool, error) {
	if err := w.AnalyzeExpr(expr); err != nil {
		return 0, false, err
	}

	if !typing.IsInteger(expr.Props().Type) {
		return 0, false, report.Raise(report.MalformedArgument, expr.Span(), "size of array has non-integer type `%s`", expr.Props().Type.Repr())
	}

	value, err := w.Evaluate(expr)
	if err != nil {
		if report.IsKind(err, report.NotConstant) {
			return 0, false, nil
		}

		return 0, false, err
	}

	ic, ok := value.(sem.IntConst)
	if !ok {
		return 0, false, nil
	}

	length, err := w.toLength(expr, ic.Value)
	if err != nil {
		return 0, false, err
	}

	expr.Props().Value = ic
	return length, true, nil
}

// analyzeFunctionDeclarator derives a function type from its return type.
func (w *Walker) analyzeFunctionDeclarator(ret typing.Type, fd *ast.FunctionDeclarator) (*typing.FunctionType, error) {
	switch typing.Unqualified(ret).(type) {
	case *typing.ArrayType:
		return nil, report.Raise(report.MalformedArgument, fd.Span(), "function cannot return array type `%s`", ret.Repr())
	case *typing.FunctionType:
		return nil, report.Raise(report.MalformedArgument, fd.Span(), "function cannot return function type `%s`", ret.Repr())
	}

	if fd.IdentifierList {
		ft := w.bundle().NewFunction(ret, typing.IdentifierList)
		if len(fd.Identifiers) == 0 {
			ft.Mode = typing.EmptyParameters
		}

		for _, ident := range fd.Identifiers {
			if _, ok := ft.Param(ident.Name); ok {
				return nil, report.Raise(report.MalformedArgument, ident.Span(), "redefinition of parameter `%s`", ident.Name)
			}

			ft.AddParameter(ident.Name, nil, nil, false)
		}

		fd.Props().Type = ft
		return ft, nil
	}

	if len(fd.Params) == 0 && !fd.Ellipsis {
		ft := w.bundle().NewFunction(ret, typing.EmptyParameters)
		fd.Props().Type = ft
		return ft, nil
	}

	ft := w.bundle().NewFunction(ret, typing.ParameterList)
	ft.Ellipsis = fd.Ellipsis

	w.prototypeDepth++
	defer func() { w.prototypeDepth-- }()

	for i, pd := range fd.Params {
		name, typ, register, err := w.analyzeParameter(pd)
		if err != nil {
			return nil, err
		}

		if typing.IsVoid(typ) {
			if name != "" || i > 0 || len(fd.Params) > 1 || fd.Ellipsis || !typing.QualificationOf(typ).Empty() {
				return nil, report.Raise(report.MalformedArgument, pd.Span(), "`void` must be the only parameter and unnamed")
			}

			// `(void)`: a prototype without parameters
			break
		}

		adjusted := typing.AdjustParameter(w.bundle(), typ)
		if !typing.IsComplete(adjusted) {
			return nil, report.Raise(report.MalformedArgument, pd.Span(), "parameter `%s` has incomplete type `%s`", name, typ.Repr())
		}

		if name != "" {
			if _, ok := ft.Param(name); ok {
				return nil, report.Raise(report.MalformedArgument, pd.Span(), "redefinition of parameter `%s`", name)
			}
		}

		ft.AddParameter(name, typ, adjusted, register)
	}

	fd.Props().Type = ft
	return ft, nil
}

// analyzeParameter analyzes a parameter declaration of a prototype.
func (w *Walker) analyzeParameter(pd *ast.ParameterDeclaration) (string, typing.Type, bool, error) {
	ds, err := w.analyzeSpecifiers(pd.Specifiers, pd.Span())
	if err != nil {
		return "", nil, false, err
	}

	if ds.storage != sem.StorageNone && ds.storage != sem.StorageRegister {
		return "", nil, false, report.Raise(report.MalformedArgument, pd.Span(), "invalid storage class `%s` for parameter", ds.storage.Repr())
	}

	if ds.specifier != sem.SpecNone {
		return "", nil, false, report.Raise(report.MalformedArgument, pd.Span(), "`%s` on a parameter", ds.specifier.Repr())
	}

	if ds.alignment != 0 {
		return "", nil, false, report.Raise(report.MalformedArgument, pd.Span(), "alignment specified for a parameter")
	}

	name, typ, err := w.AnalyzeDeclarator(ds.typ, pd.Declarator)
	if err != nil {
		return "", nil, false, err
	}

	if err := w.validateParameterArray(typ, pd.Span()); err != nil {
		return "", nil, false, err
	}

	props := pd.Props()
	props.Identifier = name
	props.Type = typ
	props.Storage = ds.storage
	return name, typ, ds.storage == sem.StorageRegister, nil
}

// AnalyzeTypeName resolves a type name: a specifier-qualifier list and an
// abstract declarator.
func (w *Walker) AnalyzeTypeName(tn *ast.TypeName) (typing.Type, error) {
	if tn.Props().Type != nil {
		return tn.Props().Type, nil
	}

	ds, err := w.analyzeSpecifiers(tn.Specifiers, tn.Span())
	if err != nil {
		return nil, err
	}

	if ds.storage != sem.StorageNone || ds.specifier != sem.SpecNone || ds.alignment != 0 {
		return nil, report.Raise(report.MalformedArgument, tn.Span(), "type name may only contain type specifiers and qualifiers")
	}

	name, typ, err := w.AnalyzeDeclarator(ds.typ, tn.Declarator)
	if err != nil {
		return nil, err
	}

	if name != "" {
		return nil, report.Raise(report.MalformedArgument, tn.Span(), "type name declares identifier `%s`", name)
	}

	if err := w.validateArrayQualifiers(typ, tn.Span()); err != nil {
		return nil, err
	}

	tn.Props().Category = ast.CategoryType
	tn.Props().Type = typ
	return typ, nil
}
