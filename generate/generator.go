package generate

import (
	"csem/report"
	"csem/sem"
	"csem/typing"
	"csem/walk"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"modernc.org/mathutil"
)

// Generator is responsible for lowering the file scope of an analyzed
// translation unit into an LLVM module.  Objects with static storage become
// globals holding their constant initializers, functions become declarations
// and registered string literals become private constants.  Function bodies
// are never generated.
type Generator struct {
	// gc is the global context of the analyzed translation unit.
	gc *walk.GlobalContext

	// traits is the data model the module is laid out for.
	traits *typing.Traits

	// mod is the LLVM module being generated.
	mod *ir.Module

	// globals maps the symbols of every emitted global and function to their
	// LLVM values.  Address constants are resolved through it.
	globals map[string]constant.Constant

	// structTypes caches the LLVM types of structures and unions.
	structTypes map[*typing.StructType]types.Type

	// anonCounter numbers the type definitions of anonymous structures.
	anonCounter int

	// pending is the list of defined objects whose initializers are generated
	// once every global has been declared.
	pending []pendingObject
}

type pendingObject struct {
	obj  *sem.Object
	glob *ir.Global
}

// NewGenerator creates a new generator for the given global context.
func NewGenerator(gc *walk.GlobalContext, sourceName string) *Generator {
	mod := ir.NewModule()
	mod.SourceFilename = sourceName
	if env := gc.Environment(); env != nil {
		mod.TargetTriple = env.Triple
	}

	return &Generator{
		gc:          gc,
		traits:      gc.Traits(),
		mod:         mod,
		globals:     make(map[string]constant.Constant),
		structTypes: make(map[*typing.StructType]types.Type),
	}
}

// Module lowers a global context into a new LLVM module.
func Module(gc *walk.GlobalContext, sourceName string) (*ir.Module, error) {
	return NewGenerator(gc, sourceName).Generate()
}

// Generate runs the generation algorithm.  Every global is declared before any
// initializer is generated so that initializers may refer to objects declared
// after them.
func (g *Generator) Generate() (*ir.Module, error) {
	for _, lit := range g.gc.Literals() {
		if err := g.genLiteral(lit); err != nil {
			return nil, err
		}
	}

	for _, sid := range g.gc.FileScope() {
		if err := g.declare(sid); err != nil {
			return nil, err
		}
	}

	// external declarations made only in block scopes
	for _, name := range g.gc.TentativeNames() {
		if _, ok := g.globals[name]; ok {
			continue
		}

		if sid, ok := g.gc.Tentative(name); ok {
			if err := g.declare(sid); err != nil {
				return nil, err
			}
		}
	}

	for _, obj := range g.gc.LocalStatics() {
		if err := g.declareObject(obj); err != nil {
			return nil, err
		}
	}

	for _, po := range g.pending {
		if err := g.genInitializer(po.obj, po.glob); err != nil {
			return nil, report.WithSpan(err, po.obj.DeclSpan())
		}
	}

	return g.mod, nil
}

// declare declares the global value of a file scope identifier.  Enumeration
// constants, tags and typedefs have no storage and are skipped.
func (g *Generator) declare(sid sem.ScopedIdentifier) error {
	var err error
	switch v := sid.(type) {
	case *sem.Object:
		err = g.declareObject(v)
	case *sem.Function:
		err = g.declareFunc(v)
	}

	return report.WithSpan(err, sid.DeclSpan())
}

// declareObject creates the global of an object.  Definitions are queued for
// initializer generation; declarations are marked external.
func (g *Generator) declareObject(obj *sem.Object) error {
	llType, err := g.convType(obj.Type)
	if err != nil {
		return err
	}

	glob := g.mod.NewGlobal(obj.Symbol, llType)
	g.globals[obj.Symbol] = glob

	if obj.Storage.IsThreadLocal() {
		glob.TLSModel = enum.TLSModelGeneric
	}

	if align := g.alignment(obj); align > 0 {
		glob.Align = ir.Align(align)
	}

	// block scope statics have no linkage and are always definitions
	if !obj.Defined && obj.Linkage != sem.LinkageNone {
		glob.Linkage = enum.LinkageExternal
		return nil
	}

	if obj.Linkage != sem.LinkageExternal {
		glob.Linkage = enum.LinkageInternal
	}

	glob.Immutable = isConst(obj.Type)
	g.pending = append(g.pending, pendingObject{obj: obj, glob: glob})
	return nil
}

// alignment returns the alignment of an object: its natural alignment raised
// to its explicit alignment.
func (g *Generator) alignment(obj *sem.Object) uint64 {
	align, err := typing.AlignOf(g.traits, g, obj.Type)
	if err != nil {
		align = 0
	}

	return mathutil.MaxUint64(align, obj.Alignment)
}

// declareFunc declares a function.  Functions are only ever declared so their
// linkage is left external: `static` and `inline` are kept as attributes.
func (g *Generator) declareFunc(fn *sem.Function) error {
	llFuncType, err := g.convFuncType(fn.Type)
	if err != nil {
		return err
	}

	var params []*ir.Param
	var nextParam int
	for _, param := range fn.Type.Params {
		if param.Adjusted == nil {
			continue
		}

		params = append(params, ir.NewParam(param.Name, llFuncType.Params[nextParam]))
		nextParam++
	}

	llFunc := g.mod.NewFunc(fn.Name, llFuncType.RetType, params...)
	llFunc.Sig.Variadic = llFuncType.Variadic

	if fn.Specifier.IsInline() {
		llFunc.FuncAttrs = append(llFunc.FuncAttrs, enum.FuncAttrInlineHint)
	}

	if fn.Specifier.IsNoreturn() {
		llFunc.FuncAttrs = append(llFunc.FuncAttrs, enum.FuncAttrNoReturn)
	}

	g.globals[fn.Name] = llFunc
	return nil
}

// genLiteral emits a registered string literal as a private constant.
func (g *Generator) genLiteral(lit *sem.StringLiteral) error {
	init, err := g.literalArray(lit.CharType, lit.Units, uint64(len(lit.Units)))
	if err != nil {
		return err
	}

	glob := g.mod.NewGlobalDef(lit.Symbol, init)
	glob.Linkage = enum.LinkagePrivate
	glob.UnnamedAddr = enum.UnnamedAddrUnnamedAddr
	glob.Immutable = true

	g.globals[lit.Symbol] = glob
	return nil
}

// isConst returns whether an object type is const-qualified, looking through
// arrays to their element type.
func isConst(typ typing.Type) bool {
	for {
		if typing.QualificationOf(typ).Has(typing.Const) {
			return true
		}

		at, ok := typing.Unqualified(typ).(*typing.ArrayType)
		if !ok {
			return false
		}

		typ = at.Elem
	}
}
