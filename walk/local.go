package walk

import (
	"csem/report"
	"csem/scope"
	"csem/sem"
	"csem/typing"
)

// LocalContext is the block scope of a function body.  It borrows the symbol
// table, the type bundle and the file scope of its global context.
type LocalContext struct {
	global *GlobalContext

	ordinary *scope.BlockScope
	tags     *scope.BlockScope
}

// NewLocalContext creates a local context whose root block is the outermost
// block of a function body.
func NewLocalContext(global *GlobalContext) *LocalContext {
	return &LocalContext{
		global:   global,
		ordinary: scope.NewBlockScope(nil),
		tags:     scope.NewBlockScope(nil),
	}
}

// Free releases every identifier declared in the local context.  Entities
// with linkage stay owned by the global context.
func (lc *LocalContext) Free() {
	lc.ordinary.Free()
	lc.tags.Free()
}

// PushBlock opens a nested block.
func (lc *LocalContext) PushBlock() {
	lc.ordinary.OpenBlock()
	lc.tags.OpenBlock()
}

// PopBlock closes the current block.
func (lc *LocalContext) PopBlock() {
	lc.ordinary.CloseBlock()
	lc.tags.CloseBlock()
}

func (lc *LocalContext) Global() *GlobalContext {
	return lc.global
}

func (lc *LocalContext) Bundle() *typing.Bundle {
	return lc.global.bundle
}

func (lc *LocalContext) Traits() *typing.Traits {
	return lc.global.traits
}

func (lc *LocalContext) ResolveOrdinary(name string) (sem.ScopedIdentifier, error) {
	if sym, ok := lc.global.symbols.Lookup(name); ok {
		if sid, ok := lc.ordinary.Lookup(sym); ok {
			return sid, nil
		}
	}

	return lc.global.ResolveOrdinary(name)
}

func (lc *LocalContext) ResolveTag(name string) (*sem.TypeTag, error) {
	if sym, ok := lc.global.symbols.Lookup(name); ok {
		if sid, ok := lc.tags.Lookup(sym); ok {
			return sid.(*sem.TypeTag), nil
		}
	}

	return lc.global.ResolveTag(name)
}

func (lc *LocalContext) CurrentOrdinary(name string) (sem.ScopedIdentifier, bool) {
	if sym, ok := lc.global.symbols.Lookup(name); ok {
		return lc.ordinary.Current().Lookup(sym)
	}

	return nil, false
}

func (lc *LocalContext) CurrentTag(name string) (*sem.TypeTag, bool) {
	if sym, ok := lc.global.symbols.Lookup(name); ok {
		if sid, ok := lc.tags.Current().Lookup(sym); ok {
			return sid.(*sem.TypeTag), true
		}
	}

	return nil, false
}

// -----------------------------------------------------------------------------

func (lc *LocalContext) DeclareExternal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.declareExternal(name, typ, alignment, false, span)
}

func (lc *LocalContext) DeclareExternalThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.declareExternal(name, typ, alignment, true, span)
}

// declareExternal declares a block scope `extern` object.  The object is the
// file scope entity of the same name: if none exists yet it is created and
// recorded as tentative on the global context.
func (lc *LocalContext) declareExternal(name string, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) (*sem.Object, error) {
	gc := lc.global
	sym := gc.symbols.Intern(name)

	if sid, ok := lc.ordinary.Current().Lookup(sym); ok {
		if obj, ok := sid.(*sem.Object); ok && obj.Linkage == sem.LinkageNone {
			return nil, report.Raise(report.MalformedArgument, span, "extern declaration of `%s` follows declaration with no linkage", name)
		}

		return mergeObject(gc, sid, typ, alignment, threadLocal, span)
	}

	var obj *sem.Object
	if sid, ok := gc.ordinary.Lookup(sym); ok && hasLinkage(sid) {
		var err error
		if obj, err = mergeObject(gc, sid, typ, alignment, threadLocal, span); err != nil {
			return nil, err
		}
	} else if sid, ok := gc.lookupTentative(sym); ok {
		var err error
		if obj, err = mergeObject(gc, sid, typ, alignment, threadLocal, span); err != nil {
			return nil, err
		}
	} else {
		obj = gc.newExternal(name, typ, alignment, threadLocal, span)
		gc.tentative.Put(sym, obj)
	}

	return obj, lc.ordinary.Link(sym, obj)
}

// hasLinkage returns whether a file scope identifier denotes an object or a
// function.  Typedef names and enumeration constants are hidden by block scope
// `extern` declarations instead.
func hasLinkage(sid sem.ScopedIdentifier) bool {
	switch v := sid.(type) {
	case *sem.Object:
		return v.Linkage != sem.LinkageNone
	case *sem.Function:
		return true
	default:
		return false
	}
}

func (lc *LocalContext) DefineStatic(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.defineLocal(name, typ, alignment, objectStorage(sem.StorageStatic, false), span)
}

func (lc *LocalContext) DefineStaticThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.defineLocal(name, typ, alignment, objectStorage(sem.StorageStatic, true), span)
}

// DefineAuto defines an object with automatic storage.
func (lc *LocalContext) DefineAuto(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.defineLocal(name, typ, alignment, sem.StorageAuto, span)
}

// DefineRegister defines an object with `register` storage: its address may
// not be taken.
func (lc *LocalContext) DefineRegister(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return lc.defineLocal(name, typ, alignment, sem.StorageRegister, span)
}

// defineLocal defines an object with no linkage in the current block.
func (lc *LocalContext) defineLocal(name string, typ typing.Type, alignment uint64, storage sem.StorageClass, span *report.TextSpan) (*sem.Object, error) {
	sym := lc.global.symbols.Intern(name)

	if prev, ok := lc.ordinary.Current().Lookup(sym); ok {
		return nil, report.Raise(report.MalformedArgument, span, "redefinition of `%s`: previously declared as %s", name, prev.Kind())
	}

	obj := &sem.Object{
		IdentifierBase: sem.IdentifierBase{Name: name, Span: span},
		Symbol:         name,
		Type:           typ,
		Storage:        storage,
		Alignment:      alignment,
		Linkage:        sem.LinkageNone,
		Defined:        true,
	}

	if obj.HasStaticStorage() {
		obj.Symbol = lc.global.newStaticSymbol(name)
		lc.global.localStatics = append(lc.global.localStatics, obj)
	}

	return obj, lc.ordinary.Insert(sym, obj)
}

func (lc *LocalContext) DefineConstant(name string, value int64, typ typing.Type, span *report.TextSpan) (*sem.EnumConstant, error) {
	return defineConstantIn(lc.ordinary.Current(), lc.global.symbols.Intern(name), value, typ, span)
}

func (lc *LocalContext) DefineTag(name string, typ typing.Type, span *report.TextSpan) (*sem.TypeTag, error) {
	return defineTagIn(lc.tags.Current(), lc.global.symbols.Intern(name), typ, span)
}

func (lc *LocalContext) DefineType(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.TypeDefinition, error) {
	return defineTypeIn(lc.ordinary.Current(), lc.global.symbols.Intern(name), typ, alignment, span)
}

// DeclareFunction declares a function in a block.  Block scope functions
// always refer to the file scope entity of the same name.
func (lc *LocalContext) DeclareFunction(name string, ft *typing.FunctionType, storage sem.StorageClass, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error) {
	if storage != sem.StorageNone && storage != sem.StorageExtern {
		return nil, report.Raise(report.MalformedArgument, span, "invalid storage class `%s` for block scope function `%s`", storage.Repr(), name)
	}

	gc := lc.global
	sym := gc.symbols.Intern(name)

	if sid, ok := lc.ordinary.Current().Lookup(sym); ok {
		return mergeFunction(gc, sid, ft, storage, spec, span)
	}

	var fn *sem.Function
	if sid, ok := gc.ordinary.Lookup(sym); ok {
		var err error
		if fn, err = mergeFunction(gc, sid, ft, storage, spec, span); err != nil {
			return nil, err
		}
	} else if sid, ok := gc.lookupTentative(sym); ok {
		var err error
		if fn, err = mergeFunction(gc, sid, ft, storage, spec, span); err != nil {
			return nil, err
		}
	} else {
		fn = &sem.Function{
			IdentifierBase: sem.IdentifierBase{Name: name, Span: span},
			Type:           ft,
			Storage:        storage,
			Specifier:      spec,
			Linkage:        sem.LinkageExternal,
		}

		gc.tentative.Put(sym, fn)
	}

	return fn, lc.ordinary.Link(sym, fn)
}
