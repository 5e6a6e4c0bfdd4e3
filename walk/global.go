package walk

import (
	"fmt"

	"csem/common"
	"csem/report"
	"csem/scope"
	"csem/sem"
	"csem/target"
	"csem/typing"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// GlobalContext is the file scope of a translation unit.  It owns the symbol
// table, the type bundle and the string literal registry for the whole unit:
// local contexts borrow them.
type GlobalContext struct {
	env     *target.Environment
	traits  *typing.Traits
	symbols *scope.SymbolTable
	bundle  *typing.Bundle

	ordinary *scope.FlatScope
	tags     *scope.FlatScope

	// tentative maps symbols to the external objects and functions declared
	// without a definition so far, in declaration order.
	tentative *linkedhashmap.Map

	literals     []*sem.StringLiteral
	localStatics []*sem.Object
}

// NewGlobalContext creates a new global context.  The traits default to those
// of the environment which defaults to the x86_64 System V target.
func NewGlobalContext(traits *typing.Traits, env *target.Environment) *GlobalContext {
	if env == nil {
		env = target.Default()
	}

	if traits == nil {
		traits = env.Traits
	}

	return &GlobalContext{
		env:       env,
		traits:    traits,
		symbols:   scope.NewSymbolTable(),
		bundle:    typing.NewBundle(),
		ordinary:  scope.NewFlatScope(nil),
		tags:      scope.NewFlatScope(nil),
		tentative: linkedhashmap.New(),
	}
}

// Free releases every scoped identifier and every type owned by the context.
func (gc *GlobalContext) Free() {
	gc.ordinary.Free()
	gc.tags.Free()
	gc.tentative.Clear()
	gc.bundle.Free()
	gc.literals = nil
	gc.localStatics = nil
}

func (gc *GlobalContext) Global() *GlobalContext {
	return gc
}

func (gc *GlobalContext) Bundle() *typing.Bundle {
	return gc.bundle
}

func (gc *GlobalContext) Traits() *typing.Traits {
	return gc.traits
}

// Environment returns the target environment of the context.
func (gc *GlobalContext) Environment() *target.Environment {
	return gc.env
}

// Symbols returns the symbol table of the translation unit.
func (gc *GlobalContext) Symbols() *scope.SymbolTable {
	return gc.symbols
}

// Ordinary returns the file scope ordinary namespace.
func (gc *GlobalContext) Ordinary() *scope.FlatScope {
	return gc.ordinary
}

// FileScope returns the identifiers bound in the file scope ordinary
// namespace in declaration order.
func (gc *GlobalContext) FileScope() []sem.ScopedIdentifier {
	var sids []sem.ScopedIdentifier
	gc.ordinary.Each(func(_ *scope.Symbol, sid sem.ScopedIdentifier) {
		sids = append(sids, sid)
	})

	return sids
}

// Literals returns the registered string literals in registration order.
func (gc *GlobalContext) Literals() []*sem.StringLiteral {
	return gc.literals
}

// LocalStatics returns the block scope objects with static storage defined so
// far.
func (gc *GlobalContext) LocalStatics() []*sem.Object {
	return gc.localStatics
}

// Tentative returns the pending tentative external record for a name.
func (gc *GlobalContext) Tentative(name string) (sem.ScopedIdentifier, bool) {
	sym, ok := gc.symbols.Lookup(name)
	if !ok {
		return nil, false
	}

	if sid, ok := gc.tentative.Get(sym); ok {
		return sid.(sem.ScopedIdentifier), true
	}

	return nil, false
}

// TentativeNames returns the names with pending tentative external records in
// declaration order.
func (gc *GlobalContext) TentativeNames() []string {
	var names []string
	gc.tentative.Each(func(key, _ interface{}) {
		names = append(names, key.(*scope.Symbol).Name())
	})

	return names
}

// RegisterStringLiteral adds a string literal to the registry.
func (gc *GlobalContext) RegisterStringLiteral(units []int64, charType typing.Type) *sem.StringLiteral {
	lit := &sem.StringLiteral{
		Index:    len(gc.literals),
		Symbol:   fmt.Sprintf("%s%d", common.StringLiteralPrefix, len(gc.literals)),
		Units:    units,
		CharType: charType,
	}

	gc.literals = append(gc.literals, lit)
	return lit
}

// -----------------------------------------------------------------------------

func (gc *GlobalContext) ResolveOrdinary(name string) (sem.ScopedIdentifier, error) {
	if sym, ok := gc.symbols.Lookup(name); ok {
		if sid, ok := gc.ordinary.Lookup(sym); ok {
			return sid, nil
		}
	}

	return nil, report.Raise(report.NotFound, nil, "undefined identifier `%s`", name)
}

func (gc *GlobalContext) ResolveTag(name string) (*sem.TypeTag, error) {
	if tag, ok := gc.CurrentTag(name); ok {
		return tag, nil
	}

	return nil, report.Raise(report.NotFound, nil, "undefined tag `%s`", name)
}

func (gc *GlobalContext) CurrentOrdinary(name string) (sem.ScopedIdentifier, bool) {
	if sym, ok := gc.symbols.Lookup(name); ok {
		return gc.ordinary.Lookup(sym)
	}

	return nil, false
}

func (gc *GlobalContext) CurrentTag(name string) (*sem.TypeTag, bool) {
	if sym, ok := gc.symbols.Lookup(name); ok {
		if sid, ok := gc.tags.Lookup(sym); ok {
			return sid.(*sem.TypeTag), true
		}
	}

	return nil, false
}

// lookupTentative returns the tentative record of a symbol.
func (gc *GlobalContext) lookupTentative(sym *scope.Symbol) (sem.ScopedIdentifier, bool) {
	if sid, ok := gc.tentative.Get(sym); ok {
		return sid.(sem.ScopedIdentifier), true
	}

	return nil, false
}

// -----------------------------------------------------------------------------

func (gc *GlobalContext) DeclareExternal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.declareExternal(name, typ, alignment, false, span)
}

func (gc *GlobalContext) DeclareExternalThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.declareExternal(name, typ, alignment, true, span)
}

// declareExternal declares an object with `extern` storage.  The declaration
// takes the linkage of any previous declaration and is recorded as tentative
// until a definition is seen.
func (gc *GlobalContext) declareExternal(name string, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) (*sem.Object, error) {
	sym := gc.symbols.Intern(name)

	if sid, ok := gc.ordinary.Lookup(sym); ok {
		obj, err := mergeObject(gc, sid, typ, alignment, threadLocal, span)
		if err != nil {
			return nil, err
		}

		if !obj.Defined {
			gc.tentative.Put(sym, obj)
		}

		return obj, nil
	}

	var obj *sem.Object
	if sid, ok := gc.lookupTentative(sym); ok {
		// declared in a block scope first
		var err error
		if obj, err = mergeObject(gc, sid, typ, alignment, threadLocal, span); err != nil {
			return nil, err
		}
	} else {
		obj = gc.newExternal(name, typ, alignment, threadLocal, span)
		gc.tentative.Put(sym, obj)
	}

	return obj, gc.ordinary.Insert(sym, obj)
}

func (gc *GlobalContext) newExternal(name string, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) *sem.Object {
	return &sem.Object{
		IdentifierBase: sem.IdentifierBase{Name: name, Span: span},
		Symbol:         name,
		Type:           typ,
		Storage:        objectStorage(sem.StorageExtern, threadLocal),
		Alignment:      alignment,
		Linkage:        sem.LinkageExternal,
	}
}

// DefineExternal defines an object with external linkage: a file scope object
// declared without a storage class.
func (gc *GlobalContext) DefineExternal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.defineExternal(name, typ, alignment, false, span)
}

// DefineExternalThreadLocal defines a thread-local object with external
// linkage.
func (gc *GlobalContext) DefineExternalThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.defineExternal(name, typ, alignment, true, span)
}

func (gc *GlobalContext) defineExternal(name string, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) (*sem.Object, error) {
	sym := gc.symbols.Intern(name)

	var obj *sem.Object
	if sid, ok := gc.ordinary.Lookup(sym); ok {
		var err error
		if obj, err = mergeObject(gc, sid, typ, alignment, threadLocal, span); err != nil {
			return nil, err
		}

		if obj.Linkage != sem.LinkageExternal {
			return nil, report.Raise(report.MalformedArgument, span, "non-static declaration of `%s` follows static declaration", name)
		}
	} else {
		if sid, ok := gc.lookupTentative(sym); ok {
			var err error
			if obj, err = mergeObject(gc, sid, typ, alignment, threadLocal, span); err != nil {
				return nil, err
			}
		} else {
			obj = gc.newExternal(name, typ, alignment, threadLocal, span)
		}

		if err := gc.ordinary.Insert(sym, obj); err != nil {
			return nil, err
		}
	}

	obj.Storage = objectStorage(sem.StorageNone, threadLocal)
	obj.Defined = true
	gc.tentative.Remove(sym)
	return obj, nil
}

func (gc *GlobalContext) DefineStatic(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.defineStatic(name, typ, alignment, false, span)
}

func (gc *GlobalContext) DefineStaticThreadLocal(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.Object, error) {
	return gc.defineStatic(name, typ, alignment, true, span)
}

// defineStatic defines an object with internal linkage.  A name with external
// linkage, or a pending external declaration, cannot become internal.
func (gc *GlobalContext) defineStatic(name string, typ typing.Type, alignment uint64, threadLocal bool, span *report.TextSpan) (*sem.Object, error) {
	sym := gc.symbols.Intern(name)

	if _, ok := gc.lookupTentative(sym); ok {
		return nil, report.Raise(report.MalformedArgument, span, "static declaration of `%s` follows non-static declaration", name)
	}

	if sid, ok := gc.ordinary.Lookup(sym); ok {
		obj, err := mergeObject(gc, sid, typ, alignment, threadLocal, span)
		if err != nil {
			return nil, err
		}

		if obj.Linkage != sem.LinkageInternal {
			return nil, report.Raise(report.MalformedArgument, span, "static declaration of `%s` follows non-static declaration", name)
		}

		obj.Defined = true
		return obj, nil
	}

	obj := &sem.Object{
		IdentifierBase: sem.IdentifierBase{Name: name, Span: span},
		Symbol:         name,
		Type:           typ,
		Storage:        objectStorage(sem.StorageStatic, threadLocal),
		Alignment:      alignment,
		Linkage:        sem.LinkageInternal,
		Defined:        true,
	}

	return obj, gc.ordinary.Insert(sym, obj)
}

func (gc *GlobalContext) DefineConstant(name string, value int64, typ typing.Type, span *report.TextSpan) (*sem.EnumConstant, error) {
	return defineConstantIn(gc.ordinary, gc.symbols.Intern(name), value, typ, span)
}

func (gc *GlobalContext) DefineTag(name string, typ typing.Type, span *report.TextSpan) (*sem.TypeTag, error) {
	return defineTagIn(gc.tags, gc.symbols.Intern(name), typ, span)
}

func (gc *GlobalContext) DefineType(name string, typ typing.Type, alignment uint64, span *report.TextSpan) (*sem.TypeDefinition, error) {
	return defineTypeIn(gc.ordinary, gc.symbols.Intern(name), typ, alignment, span)
}

// -----------------------------------------------------------------------------

func (gc *GlobalContext) DeclareFunction(name string, ft *typing.FunctionType, storage sem.StorageClass, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error) {
	return gc.declareFunction(name, ft, storage, spec, false, span)
}

// DefineFunction defines a function from a function definition without the
// `static` storage class.
func (gc *GlobalContext) DefineFunction(name string, ft *typing.FunctionType, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error) {
	return gc.declareFunction(name, ft, sem.StorageNone, spec, true, span)
}

// DefineStaticFunction defines a function with internal linkage.
func (gc *GlobalContext) DefineStaticFunction(name string, ft *typing.FunctionType, spec sem.FunctionSpecifier, span *report.TextSpan) (*sem.Function, error) {
	return gc.declareFunction(name, ft, sem.StorageStatic, spec, true, span)
}

func (gc *GlobalContext) declareFunction(name string, ft *typing.FunctionType, storage sem.StorageClass, spec sem.FunctionSpecifier, define bool, span *report.TextSpan) (*sem.Function, error) {
	if err := checkFunctionStorage(name, storage, span); err != nil {
		return nil, err
	}

	sym := gc.symbols.Intern(name)
	if storage == sem.StorageStatic {
		if _, ok := gc.lookupTentative(sym); ok {
			return nil, report.Raise(report.MalformedArgument, span, "static declaration of `%s` follows non-static declaration", name)
		}
	}

	var fn *sem.Function
	if sid, ok := gc.ordinary.Lookup(sym); ok {
		var err error
		if fn, err = mergeFunction(gc, sid, ft, storage, spec, span); err != nil {
			return nil, err
		}
	} else {
		if sid, ok := gc.lookupTentative(sym); ok {
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

			if storage == sem.StorageStatic {
				fn.Linkage = sem.LinkageInternal
			}
		}

		if err := gc.ordinary.Insert(sym, fn); err != nil {
			return nil, err
		}
	}

	if define {
		if fn.Defined {
			return nil, report.Raise(report.MalformedArgument, span, "redefinition of function `%s`", name)
		}

		fn.Defined = true
		fn.Span = span
		gc.tentative.Remove(sym)
	} else if !fn.Defined && fn.Linkage == sem.LinkageExternal {
		gc.tentative.Put(sym, fn)
	}

	return fn, nil
}

// newStaticSymbol returns a unique emitted name for a block scope static.
func (gc *GlobalContext) newStaticSymbol(name string) string {
	return fmt.Sprintf("%s.%d", name, len(gc.localStatics))
}
