package generate

import (
	"csem/report"
	"csem/sem"
	"csem/typing"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// genInitializer generates the initializer of a defined object.  Objects
// without initializer slots are zero initialized.  Scalars take their value
// directly; aggregates are laid out as a packed image of their initialized
// scalars with zero padding in between.
func (g *Generator) genInitializer(obj *sem.Object, glob *ir.Global) error {
	slots := obj.Initializer
	if len(slots) == 0 {
		glob.Init = constant.NewZeroInitializer(glob.ContentType)
		return nil
	}

	if len(slots) == 1 && slots[0].Offset == 0 && !slots[0].Bitfield && typing.IsScalar(obj.Type) {
		init, err := g.genSlot(slots[0])
		if err != nil {
			return err
		}

		glob.Init = init
		return nil
	}

	size, err := typing.SizeOf(g.traits, g, obj.Type)
	if err != nil {
		return err
	}

	init, err := g.genImage(slots, size)
	if err != nil {
		return err
	}

	glob.ContentType = init.Type()
	glob.Typ = types.NewPointer(glob.ContentType)
	glob.Init = init
	return nil
}

// genImage builds the packed structure constant holding an initializer of the
// given size.  Bit-field storage units are assembled byte by byte.
func (g *Generator) genImage(slots []sem.InitSlot, size uint64) (constant.Constant, error) {
	pieces := treemap.NewWith(utils.UInt64Comparator)
	bits := make(map[uint64]byte)

	for _, slot := range slots {
		if slot.Bitfield {
			if err := storeBits(bits, slot); err != nil {
				return nil, err
			}

			continue
		}

		c, err := g.genSlot(slot)
		if err != nil {
			return nil, err
		}

		pieces.Put(slot.Offset, c)
	}

	for offset, b := range bits {
		pieces.Put(offset, constant.NewInt(types.I8, int64(int8(b))))
	}

	var fields []constant.Constant
	var cursor uint64
	it := pieces.Iterator()
	for it.Next() {
		offset, c := it.Key().(uint64), it.Value().(constant.Constant)

		// overlapped by a wider member of a union
		if offset < cursor {
			continue
		}

		if offset > cursor {
			fields = append(fields, constant.NewZeroInitializer(padding(offset-cursor)))
		}

		fields = append(fields, c)
		cursor = offset + g.storeSize(c.Type())
	}

	if size > cursor {
		fields = append(fields, constant.NewZeroInitializer(padding(size-cursor)))
	}

	fieldTypes := make([]types.Type, len(fields))
	for i, field := range fields {
		fieldTypes[i] = field.Type()
	}

	imageType := types.NewStruct(fieldTypes...)
	imageType.Packed = true
	return constant.NewStruct(imageType, fields...), nil
}

// storeBits merges the value of a bit-field slot into the bytes of its
// storage unit.  Units are stored least significant byte first.
func storeBits(bits map[uint64]byte, slot sem.InitSlot) error {
	ic, ok := slot.Value.(sem.IntConst)
	if !ok {
		return report.Raise(report.MalformedArgument, nil, "bit-field initializer `%s` is not an integer", slot.Value.Repr())
	}

	v := uint64(ic.Value)
	for i := uint64(0); i < slot.Bitwidth; i++ {
		pos := slot.BitOffset + i
		offset := slot.Offset + pos/8

		b := bits[offset]
		if v>>i&1 == 1 {
			b |= 1 << (pos % 8)
		}

		bits[offset] = b
	}

	return nil
}

// genSlot converts the value of a single initializer slot into a constant of
// the slot type.
func (g *Generator) genSlot(slot sem.InitSlot) (constant.Constant, error) {
	if slot.Literal != nil {
		at, ok := typing.Unqualified(slot.Type).(*typing.ArrayType)
		if !ok {
			return nil, report.Raise(report.MalformedArgument, nil, "string literal initializes non-array type `%s`", slot.Type.Repr())
		}

		return g.literalArray(at.Elem, slot.Literal.Units, at.Length)
	}

	llType, err := g.convType(slot.Type)
	if err != nil {
		return nil, err
	}

	switch v := slot.Value.(type) {
	case sem.IntConst:
		switch t := llType.(type) {
		case *types.IntType:
			return constant.NewInt(t, signExtend(v.Value, t.BitSize)), nil
		case *types.FloatType:
			return constant.NewFloat(t, float64(v.Value)), nil
		case *types.PointerType:
			if v.Value == 0 {
				return constant.NewNull(t), nil
			}

			return constant.NewIntToPtr(constant.NewInt(g.intptrType(), v.Value), t), nil
		}
	case sem.FloatConst:
		if t, ok := llType.(*types.FloatType); ok {
			return constant.NewFloat(t, v.Value), nil
		}
	case *sem.AddressConst:
		addr, err := g.genAddress(v)
		if err != nil {
			return nil, err
		}

		switch t := llType.(type) {
		case *types.PointerType:
			return addr, nil
		case *types.IntType:
			return constant.NewPtrToInt(addr, t), nil
		}
	}

	return nil, report.Raise(report.NotImplemented, nil, "unable to lower initializer of type `%s`", slot.Type.Repr())
}

// genAddress converts an address constant into an `i8*` constant expression.
func (g *Generator) genAddress(ac *sem.AddressConst) (constant.Constant, error) {
	if ac.Base == sem.BaseInteger {
		return constant.NewIntToPtr(constant.NewInt(g.intptrType(), ac.Integral+ac.Offset), types.I8Ptr), nil
	}

	glob, ok := g.globals[ac.Symbol]
	if !ok {
		return nil, report.Raise(report.NotFound, nil, "address of undeclared symbol `%s`", ac.Symbol)
	}

	var base constant.Constant = constant.NewBitCast(glob, types.I8Ptr)
	if ac.Offset == 0 {
		return base, nil
	}

	return constant.NewGetElementPtr(types.I8, base, constant.NewInt(g.intptrType(), ac.Offset)), nil
}

// literalArray builds the array constant holding the code units of a string
// literal truncated or zero extended to the given length.
func (g *Generator) literalArray(charType typing.Type, units []int64, length uint64) (constant.Constant, error) {
	llType, err := g.convType(charType)
	if err != nil {
		return nil, err
	}

	elem, ok := llType.(*types.IntType)
	if !ok {
		return nil, report.Raise(report.MalformedArgument, nil, "`%s` is not a character type", charType.Repr())
	}

	if elem.BitSize == 8 {
		buf := make([]byte, length)
		for i := range buf {
			if i < len(units) {
				buf[i] = byte(units[i])
			}
		}

		return constant.NewCharArray(buf), nil
	}

	elems := make([]constant.Constant, length)
	for i := range elems {
		var unit int64
		if i < len(units) {
			unit = units[i]
		}

		elems[i] = constant.NewInt(elem, signExtend(unit, elem.BitSize))
	}

	return constant.NewArray(types.NewArray(length, elem), elems...), nil
}

// intptrType is the integer type as wide as a pointer.
func (g *Generator) intptrType() *types.IntType {
	return types.NewInt(g.traits.PointerSize * 8)
}

func signExtend(v int64, bits uint64) int64 {
	if bits == 0 || bits >= 64 {
		return v
	}

	shift := 64 - bits
	return v << shift >> shift
}
