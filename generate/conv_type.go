package generate

import (
	"fmt"

	"csem/report"
	"csem/typing"

	"github.com/llir/llvm/ir/types"
)

// convType converts a C object type into its LLVM type.  Data pointers are
// all lowered to `i8*`: the generator only ever needs them as the targets of
// address constants which are computed as byte offsets.
func (g *Generator) convType(typ typing.Type) (types.Type, error) {
	switch v := typing.Unqualified(typ).(type) {
	case typing.BasicType:
		return g.convBasicType(v), nil
	case *typing.PointerType:
		return types.I8Ptr, nil
	case *typing.ArrayType:
		elem, err := g.convType(v.Elem)
		if err != nil {
			return nil, err
		}

		// unbounded arrays only survive in external declarations
		return types.NewArray(v.Length, elem), nil
	case *typing.StructType:
		return g.convStructType(v)
	case *typing.EnumType:
		return g.convType(v.UnderlyingType(g.traits))
	case *typing.FunctionType:
		return g.convFuncType(v)
	}

	return nil, report.Raise(report.NotImplemented, nil, "unable to lower type `%s`", typ.Repr())
}

func (g *Generator) convBasicType(bt typing.BasicType) types.Type {
	switch bt {
	case typing.Void:
		return types.Void
	case typing.Float:
		return types.Float
	case typing.Double:
		return types.Double
	case typing.LongDouble:
		if g.traits.Sizes[bt] > 8 {
			return types.X86_FP80
		}

		return types.Double
	}

	// `_Bool` is stored as a full byte
	return types.NewInt(g.traits.Sizes[bt] * 8)
}

// convFuncType converts a function type.  Functions declared without a
// prototype take any arguments.
func (g *Generator) convFuncType(ft *typing.FunctionType) (*types.FuncType, error) {
	ret, err := g.convType(ft.Return)
	if err != nil {
		return nil, err
	}

	var params []types.Type
	for _, param := range ft.Params {
		// an identifier list without declarations has untyped parameters
		if param.Adjusted == nil {
			continue
		}

		pt, err := g.convType(param.Adjusted)
		if err != nil {
			return nil, err
		}

		params = append(params, pt)
	}

	llFuncType := types.NewFunc(ret, params...)
	llFuncType.Variadic = ft.Ellipsis || ft.Mode == typing.EmptyParameters
	return llFuncType, nil
}

// convStructType converts a structure into a named packed structure type
// with explicit padding.  Unions and structures containing bit-fields are
// lowered to byte arrays of their size.
func (g *Generator) convStructType(st *typing.StructType) (types.Type, error) {
	if llType, ok := g.structTypes[st]; ok {
		return llType, nil
	}

	name := g.structName(st)

	layout, err := typing.LayoutStruct(g.traits, g, st)
	if err != nil {
		if st.Complete {
			return nil, err
		}

		// structures never completed may still be declared
		opaque := g.mod.NewTypeDef(name, &types.StructType{Opaque: true})
		g.structTypes[st] = opaque
		return opaque, nil
	}

	if st.Union || hasBitfields(st) {
		llType := types.NewArray(layout.Size, types.I8)
		g.structTypes[st] = llType
		return llType, nil
	}

	var fields []types.Type
	var cursor uint64
	for _, fl := range layout.Fields {
		ft, err := g.convType(fl.Field.Type)
		if err != nil {
			return nil, err
		}

		if fl.Offset > cursor {
			fields = append(fields, padding(fl.Offset-cursor))
		}

		fields = append(fields, ft)
		cursor = fl.Offset + g.storeSize(ft)
	}

	if layout.Size > cursor {
		fields = append(fields, padding(layout.Size-cursor))
	}

	llStruct := types.NewStruct(fields...)
	llStruct.Packed = true

	llType := g.mod.NewTypeDef(name, llStruct)
	g.structTypes[st] = llType
	return llType, nil
}

// structName returns the type name of a structure: anonymous structures are
// numbered in order of appearance.
func (g *Generator) structName(st *typing.StructType) string {
	keyword := "struct"
	if st.Union {
		keyword = "union"
	}

	if st.Tag != "" {
		return keyword + "." + st.Tag
	}

	g.anonCounter++
	return fmt.Sprintf("%s.anon.%d", keyword, g.anonCounter)
}

// ResolveStruct resolves an incomplete structure to the definition visible
// under its tag at file scope.
func (g *Generator) ResolveStruct(st *typing.StructType) (*typing.StructType, error) {
	tag, err := g.gc.ResolveTag(st.Tag)
	if err != nil {
		return nil, err
	}

	if resolved, ok := tag.Type.(*typing.StructType); ok && resolved.Union == st.Union {
		return resolved, nil
	}

	return nil, report.Raise(report.NotFound, nil, "`%s` is not defined", st.Repr())
}

// storeSize returns the number of bytes an LLVM value of the given type
// occupies inside a packed structure.
func (g *Generator) storeSize(typ types.Type) uint64 {
	switch v := typ.(type) {
	case *types.IntType:
		return (v.BitSize + 7) / 8
	case *types.FloatType:
		switch v.Kind {
		case types.FloatKindHalf:
			return 2
		case types.FloatKindFloat:
			return 4
		case types.FloatKindX86_FP80:
			return 10
		case types.FloatKindFP128, types.FloatKindPPC_FP128:
			return 16
		default:
			return 8
		}
	case *types.PointerType:
		return g.traits.PointerSize
	case *types.ArrayType:
		return v.Len * g.storeSize(v.ElemType)
	case *types.StructType:
		var size uint64
		for _, field := range v.Fields {
			size += g.storeSize(field)
		}

		return size
	}

	return 0
}

func padding(n uint64) types.Type {
	return types.NewArray(n, types.I8)
}

func hasBitfields(st *typing.StructType) bool {
	for _, field := range st.Fields {
		if field.Bitfield {
			return true
		}
	}

	return false
}
