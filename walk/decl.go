package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// AnalyzeDeclaration analyzes a declaration and declares each of its
// declarators in the current context.  The first failing declarator aborts
// the rest of the declaration.
func (w *Walker) AnalyzeDeclaration(decl *ast.Declaration) error {
	if spec, ok := forwardTagDeclaration(decl); ok {
		return w.declareTag(decl, spec)
	}

	ds, err := w.analyzeSpecifiers(decl.Specifiers, decl.Span())
	if err != nil {
		return err
	}

	props := decl.Props()
	props.Category = ast.CategoryDeclaration
	props.Type = ds.typ
	props.Storage = ds.storage
	props.FunctionSpecifier = ds.specifier
	props.Alignment = ds.alignment

	if len(decl.Declarators) == 0 {
		if !ds.tagDecl {
			return report.Raise(report.MalformedArgument, decl.Span(), "declaration does not declare anything")
		}

		return nil
	}

	for _, id := range decl.Declarators {
		if err := w.analyzeInitDeclarator(ds, id); err != nil {
			return report.WithSpan(err, id.Span())
		}
	}

	return nil
}

// forwardTagDeclaration returns the tag specifier of a declaration of the form
// `struct s;` or `union s;`.
func forwardTagDeclaration(decl *ast.Declaration) (*ast.StructSpecifier, bool) {
	if len(decl.Declarators) != 0 || len(decl.Specifiers) != 1 {
		return nil, false
	}

	spec, ok := decl.Specifiers[0].(*ast.StructSpecifier)
	return spec, ok && !spec.Complete && spec.Tag != ""
}

// declareTag declares a structure tag in the current scope.  An outer tag of
// the same name is hidden rather than referenced.
func (w *Walker) declareTag(decl *ast.Declaration, spec *ast.StructSpecifier) error {
	var typ typing.Type
	if tag, ok := w.ctx.CurrentTag(spec.Tag); ok {
		if st, ok := tag.Type.(*typing.StructType); !ok || st.Union != spec.Union {
			return report.Raise(report.MalformedArgument, spec.Span(), "`%s` defined as the wrong kind of tag: previously `%s`", spec.Tag, tag.Type.Repr())
		}

		typ = tag.Type
	} else {
		if spec.Union {
			typ = w.bundle().NewUnion(spec.Tag)
		} else {
			typ = w.bundle().NewStruct(spec.Tag)
		}

		if _, err := w.ctx.DefineTag(spec.Tag, typ, spec.Span()); err != nil {
			return report.WithSpan(err, spec.Span())
		}
	}

	spec.Props().Type = typ
	spec.Props().Category = ast.CategoryType

	props := decl.Props()
	props.Category = ast.CategoryDeclaration
	props.Type = typ
	return nil
}

// analyzeInitDeclarator declares a single declarator of a declaration and
// analyzes its initializer.
func (w *Walker) analyzeInitDeclarator(ds *declSpecs, id *ast.InitDeclarator) error {
	span := id.Span()

	name, typ, err := w.AnalyzeDeclarator(ds.typ, id.Declarator)
	if err != nil {
		return err
	}

	if name == "" {
		return report.Raise(report.MalformedArgument, span, "declarator declares no identifier")
	}

	if err := w.validateArrayQualifiers(typ, span); err != nil {
		return err
	}

	if err := w.AnalyzeType(typ, span); err != nil {
		return err
	}

	props := id.Props()
	props.Category = ast.CategoryInitDeclarator
	props.Identifier = name
	props.Type = typ
	props.Storage = ds.storage
	props.FunctionSpecifier = ds.specifier
	props.Alignment = ds.alignment

	if ds.storage == sem.StorageTypedef {
		if id.Init != nil {
			return report.Raise(report.MalformedArgument, span, "typedef `%s` is initialized", name)
		}

		if ds.specifier != sem.SpecNone {
			return report.Raise(report.MalformedArgument, span, "`%s` in typedef `%s`", ds.specifier.Repr(), name)
		}

		td, err := w.ctx.DefineType(name, typ, ds.alignment, span)
		if err != nil {
			return err
		}

		props.Scoped = td
		return nil
	}

	if ft, ok := typ.(*typing.FunctionType); ok {
		fn, err := w.declareFunction(name, ft, ds, id)
		if err != nil {
			return err
		}

		props.Scoped = fn
		return nil
	}

	if ds.specifier != sem.SpecNone {
		return report.Raise(report.MalformedArgument, span, "`%s` on a non-function `%s`", ds.specifier.Repr(), name)
	}

	if typing.IsVoid(typ) {
		return report.Raise(report.MalformedArgument, span, "variable `%s` declared void", name)
	}

	obj, err := w.declareObject(name, typ, ds, id)
	if err != nil {
		return err
	}

	props.Scoped = obj

	if id.Init != nil {
		if err := w.initializeObject(obj, id.Init); err != nil {
			return err
		}

		props.Type = obj.Type
	} else if w.local != nil && obj.Linkage == sem.LinkageNone && !typing.IsComplete(obj.Type) {
		return report.Raise(report.MalformedArgument, span, "storage size of `%s` isn't known", name)
	}

	return nil
}

// declareFunction declares a function from a declaration.
func (w *Walker) declareFunction(name string, ft *typing.FunctionType, ds *declSpecs, id *ast.InitDeclarator) (*sem.Function, error) {
	span := id.Span()

	if id.Init != nil {
		return nil, report.Raise(report.MalformedArgument, span, "function `%s` is initialized like a variable", name)
	}

	if ds.alignment != 0 {
		return nil, report.Raise(report.MalformedArgument, span, "alignment specified for function `%s`", name)
	}

	if ft.Mode == typing.IdentifierList {
		return nil, report.Raise(report.MalformedArgument, span, "parameter names (without types) in declaration of function `%s`", name)
	}

	return w.ctx.DeclareFunction(name, ft, ds.storage, ds.specifier, span)
}

// declareObject dispatches an object declaration to the context entry point
// of its storage class.
func (w *Walker) declareObject(name string, typ typing.Type, ds *declSpecs, id *ast.InitDeclarator) (*sem.Object, error) {
	span := id.Span()
	vm := typing.IsVariablyModified(typ)

	if w.local == nil {
		if vm {
			return nil, report.Raise(report.MalformedArgument, span, "variably modified `%s` at file scope", name)
		}

		gc := w.global
		switch ds.storage {
		case sem.StorageExtern:
			if id.Init != nil {
				return gc.DefineExternal(name, typ, ds.alignment, span)
			}

			return gc.DeclareExternal(name, typ, ds.alignment, span)
		case sem.StorageExternThreadLocal:
			if id.Init != nil {
				return gc.DefineExternalThreadLocal(name, typ, ds.alignment, span)
			}

			return gc.DeclareExternalThreadLocal(name, typ, ds.alignment, span)
		case sem.StorageNone:
			return gc.DefineExternal(name, typ, ds.alignment, span)
		case sem.StorageThreadLocal:
			return gc.DefineExternalThreadLocal(name, typ, ds.alignment, span)
		case sem.StorageStatic:
			return gc.DefineStatic(name, typ, ds.alignment, span)
		case sem.StorageStaticThreadLocal:
			return gc.DefineStaticThreadLocal(name, typ, ds.alignment, span)
		default:
			return nil, report.Raise(report.MalformedArgument, span, "file-scope declaration of `%s` specifies `%s`", name, ds.storage.Repr())
		}
	}

	lc := w.local
	switch ds.storage {
	case sem.StorageExtern, sem.StorageExternThreadLocal:
		if id.Init != nil {
			return nil, report.Raise(report.MalformedArgument, span, "`%s` has both `extern` and initializer", name)
		}

		if vm {
			return nil, report.Raise(report.MalformedArgument, span, "object `%s` with variably modified type must have no linkage", name)
		}

		if ds.storage == sem.StorageExternThreadLocal {
			return lc.DeclareExternalThreadLocal(name, typ, ds.alignment, span)
		}

		return lc.DeclareExternal(name, typ, ds.alignment, span)
	case sem.StorageStatic, sem.StorageStaticThreadLocal:
		if vm {
			return nil, report.Raise(report.MalformedArgument, span, "storage size of `%s` isn't constant", name)
		}

		if ds.storage == sem.StorageStaticThreadLocal {
			return lc.DefineStaticThreadLocal(name, typ, ds.alignment, span)
		}

		return lc.DefineStatic(name, typ, ds.alignment, span)
	case sem.StorageThreadLocal:
		return nil, report.Raise(report.MalformedArgument, span, "function-scope `%s` implicitly auto and declared `_Thread_local`", name)
	case sem.StorageRegister:
		return lc.DefineRegister(name, typ, ds.alignment, span)
	default:
		return lc.DefineAuto(name, typ, ds.alignment, span)
	}
}

// initializeObject analyzes the initializer of an object.  The initializer
// of an object with static storage is flattened onto the object.
func (w *Walker) initializeObject(obj *sem.Object, init *ast.Initializer) error {
	if obj.Initialized {
		return report.Raise(report.MalformedArgument, init.Span(), "redefinition of `%s`", obj.Name)
	}

	static := obj.HasStaticStorage()
	typ, slots, err := w.analyzeInitializer(obj.Type, init, static)
	if err != nil {
		return err
	}

	obj.Type = typ
	obj.Initialized = true
	if static {
		obj.Initializer = slots
	}

	return nil
}

// analyzeStaticAssertion evaluates a `_Static_assert`.
func (w *Walker) analyzeStaticAssertion(sa *ast.StaticAssertion) error {
	value, err := w.evaluateInteger(sa.Cond, "static assertion expression")
	if err != nil {
		return err
	}

	sa.Props().Category = ast.CategoryStaticAssertion

	if value == 0 {
		message := ""
		if sa.Message != nil {
			message = sa.Message.Value
		}

		return report.Raise(report.StaticAssertionFailed, sa.Span(), "static assertion failed: \"%s\"", message)
	}

	return nil
}
