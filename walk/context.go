package walk

import (
	"csem/report"
	"csem/scope"
	"csem/sem"
	"csem/typing"

	"modernc.org/mathutil"
)

// Context is the scope level the analyzer declares entities in and resolves
// identifiers through.  It is implemented by the global context (file scope)
// and by local contexts (block scope of a function body).
type Context interface {
	// Global returns the global context: the context itself at file scope.
	Global() *GlobalContext

	Bundle() *typing.Bundle
	Traits() *typing.Traits

	// ResolveOrdinary looks up an identifier in the ordinary namespace walking
	// outward from the current scope.  A miss is a `NotFound` error.
	ResolveOrdinary(name string) (sem.ScopedIdentifier, error)

	// ResolveTag looks up a tag walking outward from the current scope.
	ResolveTag(name string) (*sem.TypeTag, error)

	// CurrentOrdinary and CurrentTag look up a name in the innermost scope
	// only.
	CurrentOrdinary(name string) (sem.ScopedIdentifier, bool)
	CurrentTag(name string) (*sem.TypeTag, bool)

	DeclareExternal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error)
	DeclareExternalThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error)
	DefineStatic(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error)
	DefineStaticThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error)
	DefineConstant(name string, value int64, typ typing.Type, span *report.TextSpan) (*sem.EnumConstant, error)
	DefineTag(name string, typ typing.Type, span *report.TextSpan) (*sem.TypeTag, error)
	DefineType(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.TypeDefinition, error)
	DeclareFunction(name string, ft *typing.FunctionType, storage sem.StorageClass, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error)
}

// -----------------------------------------------------------------------------

// mergeObject composes a redeclaration of an object with the existing entity
// bound to the same name.
func mergeObject(gc *GlobalContext, sid sem.ScopedIdentifier, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) (*sem.Object, error) {
	obj, ok := sid.(*sem.Object)
	if !ok {
		return nil, report.Raise(report.MalformedArgument, span, "`%s` redeclared as a different kind of symbol: previously declared as %s", sid.Identifier(), sid.Kind())
	}

	if obj.Storage.IsThreadLocal() != threadLocal {
		if threadLocal {
			return nil, report.Raise(report.MalformedArgument, span, "thread-local declaration of `%s` follows non-thread-local declaration", obj.Name)
		}

		return nil, report.Raise(report.MalformedArgument, span, "non-thread-local declaration of `%s` follows thread-local declaration", obj.Name)
	}

	if !typing.Compatible(gc.traits, obj.Type, typ) {
		return nil, report.Raise(report.MalformedArgument, span, "conflicting types for `%s`: `%s` and `%s`", obj.Name, obj.Type.Repr(), typ.Repr())
	}

	obj.Type = typing.Composite(gc.bundle, gc.traits, obj.Type, typ)
	obj.Alignment = mathutil.MaxUint64(obj.Alignment, alignment)
	return obj, nil
}

// mergeFunction composes a redeclaration of a function with the existing
// entity bound to the same name.
func mergeFunction(gc *GlobalContext, sid sem.ScopedIdentifier, ft *typing.FunctionType, storage sem.StorageClass, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error) {
	fn, ok := sid.(*sem.Function)
	if !ok {
		return nil, report.Raise(report.MalformedArgument, span, "`%s` redeclared as a different kind of symbol: previously declared as %s", sid.Identifier(), sid.Kind())
	}

	if storage == sem.StorageStatic && fn.Linkage == sem.LinkageExternal {
		return nil, report.Raise(report.MalformedArgument, span, "static declaration of `%s` follows non-static declaration", fn.Name)
	}

	if !typing.Compatible(gc.traits, fn.Type, ft) {
		return nil, report.Raise(report.MalformedArgument, span, "conflicting types for `%s`: `%s` and `%s`", fn.Name, fn.Type.Repr(), ft.Repr())
	}

	fn.Type = typing.Composite(gc.bundle, gc.traits, fn.Type, ft).(*typing.FunctionType)
	fn.Specifier = fn.Specifier.Merge(spec)
	return fn, nil
}

// checkFunctionStorage validates the storage class of a function declaration.
func checkFunctionStorage(name string, storage sem.StorageClass, span *report.TextSpan) error {
	switch storage {
	case sem.StorageNone, sem.StorageExtern, sem.StorageStatic:
		return nil
	default:
		return report.Raise(report.MalformedArgument, span, "invalid storage class `%s` for function `%s`", storage.Repr(), name)
	}
}

// defineConstantIn binds an enumeration constant in a flat scope.
func defineConstantIn(fs *scope.FlatScope, sym *scope.Symbol, value int64, typ typing.Type, span *report.TextSpan) (*sem.EnumConstant, error) {
	if prev, ok := fs.Lookup(sym); ok {
		return nil, report.Raise(report.MalformedArgument, span, "redefinition of `%s`: previously declared as %s", sym.Name(), prev.Kind())
	}

	ec := &sem.EnumConstant{
		IdentifierBase: sem.IdentifierBase{Name: sym.Name(), Span: span},
		Type:           typ,
		Value:          value,
	}

	return ec, fs.Insert(sym, ec)
}

// defineTagIn binds a tag in a flat scope.  A tag already bound in the scope
// may be completed once: the completing type replaces the incomplete one.
func defineTagIn(fs *scope.FlatScope, sym *scope.Symbol, typ typing.Type, span *report.TextSpan) (*sem.TypeTag, error) {
	prev, ok := fs.Lookup(sym)
	if !ok {
		tag := &sem.TypeTag{
			IdentifierBase: sem.IdentifierBase{Name: sym.Name(), Span: span},
			Type:           typ,
		}

		return tag, fs.Insert(sym, tag)
	}

	tag := prev.(*sem.TypeTag)
	prevComplete, newComplete, sameKind := tagCompleteness(tag.Type, typ)
	if !sameKind {
		return nil, report.Raise(report.MalformedArgument, span, "`%s` defined as the wrong kind of tag: previously `%s`", sym.Name(), tag.Type.Repr())
	}

	if tag.Type == typ || !newComplete {
		return tag, nil
	}

	if prevComplete {
		return nil, report.Raise(report.MalformedArgument, span, "redefinition of `%s`", typ.Repr())
	}

	tag.Type = typ
	return tag, nil
}

// tagCompleteness returns whether two tagged types are complete and whether
// they are of the same kind of tag.
func tagCompleteness(prev, next typing.Type) (bool, bool, bool) {
	switch p := prev.(type) {
	case *typing.StructType:
		if n, ok := next.(*typing.StructType); ok && n.Union == p.Union {
			return p.Complete, n.Complete, true
		}
	case *typing.EnumType:
		if n, ok := next.(*typing.EnumType); ok {
			return p.Complete, n.Complete, true
		}
	}

	return false, false, false
}

// defineTypeIn binds a typedef name in a flat scope.  A typedef may be
// repeated with the same type.
func defineTypeIn(fs *scope.FlatScope, sym *scope.Symbol, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.TypeDefinition, error) {
	if prev, ok := fs.Lookup(sym); ok {
		td, ok := prev.(*sem.TypeDefinition)
		if !ok {
			return nil, report.Raise(report.MalformedArgument, span, "`%s` redeclared as a different kind of symbol: previously declared as %s", sym.Name(), prev.Kind())
		}

		if !typing.Same(td.Type, typ) {
			return nil, report.Raise(report.MalformedArgument, span, "conflicting types for typedef `%s`: `%s` and `%s`", sym.Name(), td.Type.Repr(), typ.Repr())
		}

		td.Alignment = mathutil.MaxUint64(td.Alignment, alignment)
		return td, nil
	}

	td := &sem.TypeDefinition{
		IdentifierBase: sem.IdentifierBase{Name: sym.Name(), Span: span},
		Type:           typ,
		Alignment:      alignment,
	}

	return td, fs.Insert(sym, td)
}

// objectStorage returns the storage class of an object declaration.
func objectStorage(base sem.StorageClass, threadLocal bool) sem.StorageClass {
	if !threadLocal {
		return base
	}

	switch base {
	case sem.StorageExtern:
		return sem.StorageExternThreadLocal
	case sem.StorageStatic:
		return sem.StorageStaticThreadLocal
	default:
		return sem.StorageThreadLocal
	}
}
