package typing

import (
	"csem/common"
	"csem/report"

	"modernc.org/mathutil"
)

// StructResolver looks up the complete definition of a structure or union
// declared incomplete at the point of use.  It returns a `NotFound` error if
// the structure has no visible definition.
type StructResolver interface {
	ResolveStruct(st *StructType) (*StructType, error)
}

// FieldLayout is the position of a structure member.
type FieldLayout struct {
	Field *StructField

	// Offset is the byte offset of the member or, for bit-fields, of the
	// storage unit containing the member.
	Offset uint64

	// BitOffset is the offset of a bit-field inside its storage unit.
	BitOffset uint64
}

// StructLayout is the memory layout of a complete structure or union.
type StructLayout struct {
	Size      uint64
	Alignment uint64
	Fields    []FieldLayout
}

// SizeOf computes the size in bytes of a complete object type.
func SizeOf(tr *Traits, res StructResolver, typ Type) (uint64, error) {
	switch v := Unqualified(typ).(type) {
	case BasicType:
		if v == Void {
			return 0, report.Raise(report.MalformedArgument, nil, "size of `void` is undefined")
		}

		return tr.Sizes[v], nil
	case *PointerType:
		return tr.PointerSize, nil
	case *ArrayType:
		switch {
		case v.Boundary == Unbounded:
			return 0, report.Raise(report.MalformedArgument, nil, "size of incomplete array type `%s` is undefined", v.Repr())
		case v.IsVLA():
			return 0, report.Raise(report.NotConstant, nil, "size of variable length array `%s` is not a constant", v.Repr())
		}

		elemSize, err := SizeOf(tr, res, v.Elem)
		if err != nil {
			return 0, err
		}

		return elemSize * v.Length, nil
	case *StructType:
		layout, err := LayoutStruct(tr, res, v)
		if err != nil {
			return 0, err
		}

		return layout.Size, nil
	case *EnumType:
		if !v.Complete {
			return 0, report.Raise(report.MalformedArgument, nil, "size of incomplete type `%s` is undefined", v.Repr())
		}

		return SizeOf(tr, res, v.UnderlyingType(tr))
	default:
		// *FunctionType
		return 0, report.Raise(report.MalformedArgument, nil, "size of function type `%s` is undefined", repr(typ))
	}
}

// AlignOf computes the alignment in bytes of an object type.
func AlignOf(tr *Traits, res StructResolver, typ Type) (uint64, error) {
	switch v := Unqualified(typ).(type) {
	case BasicType:
		if v == Void {
			return 0, report.Raise(report.MalformedArgument, nil, "alignment of `void` is undefined")
		}

		return tr.Alignments[v], nil
	case *PointerType:
		return tr.PointerAlignment, nil
	case *ArrayType:
		return AlignOf(tr, res, v.Elem)
	case *StructType:
		layout, err := LayoutStruct(tr, res, v)
		if err != nil {
			return 0, err
		}

		return layout.Alignment, nil
	case *EnumType:
		return AlignOf(tr, res, v.UnderlyingType(tr))
	default:
		return 0, report.Raise(report.MalformedArgument, nil, "alignment of function type `%s` is undefined", repr(typ))
	}
}

// completeStruct returns the complete definition of a structure, consulting
// the resolver if the structure itself is incomplete.
func completeStruct(res StructResolver, st *StructType) (*StructType, error) {
	if st.Complete {
		return st, nil
	}

	if res != nil && st.Tag != "" {
		resolved, err := res.ResolveStruct(st)
		if err != nil {
			return nil, err
		}

		if resolved.Complete {
			return resolved, nil
		}
	}

	return nil, report.Raise(report.MalformedArgument, nil, "`%s` is an incomplete type", st.Repr())
}

// LayoutStruct computes the layout of a structure or union.  Bit-fields are
// allocated in storage units of their declared type and never straddle a unit
// boundary; a zero-width bit-field closes the current unit.
func LayoutStruct(tr *Traits, res StructResolver, st *StructType) (*StructLayout, error) {
	st, err := completeStruct(res, st)
	if err != nil {
		return nil, err
	}

	layout := &StructLayout{Alignment: 1, Fields: make([]FieldLayout, len(st.Fields))}

	// bitPos is the first free bit of a structure.
	var bitPos uint64
	for i, field := range st.Fields {
		align, err := fieldAlignment(tr, res, field)
		if err != nil {
			return nil, err
		}

		fl := FieldLayout{Field: field}

		if field.Bitfield {
			unitSize, err := SizeOf(tr, res, field.Type)
			if err != nil {
				return nil, err
			}
			unitBits := unitSize * 8

			if st.Union {
				layout.Size = mathutil.MaxUint64(layout.Size, unitSize)
			} else if field.Bitwidth == 0 {
				bitPos = common.AlignUp(bitPos, unitBits)
			} else {
				if bitPos/unitBits != (bitPos+field.Bitwidth-1)/unitBits {
					bitPos = common.AlignUp(bitPos, unitBits)
				}

				fl.Offset = bitPos / unitBits * unitSize
				fl.BitOffset = bitPos - fl.Offset*8
				bitPos += field.Bitwidth
			}

			// Unnamed bit-fields do not affect the alignment of the structure.
			if field.Name != "" {
				layout.Alignment = mathutil.MaxUint64(layout.Alignment, align)
			}
		} else {
			layout.Alignment = mathutil.MaxUint64(layout.Alignment, align)

			var size uint64
			if at, ok := Unqualified(field.Type).(*ArrayType); !ok || at.Boundary != Unbounded {
				if size, err = SizeOf(tr, res, field.Type); err != nil {
					return nil, err
				}
			}

			if st.Union {
				layout.Size = mathutil.MaxUint64(layout.Size, size)
			} else {
				fl.Offset = common.AlignUp(common.AlignUp(bitPos, 8)/8, align)
				bitPos = (fl.Offset + size) * 8
			}
		}

		layout.Fields[i] = fl
	}

	if !st.Union {
		layout.Size = common.AlignUp(bitPos, 8) / 8
	}

	layout.Size = common.AlignUp(layout.Size, layout.Alignment)
	return layout, nil
}

// fieldAlignment is the natural alignment of a member raised to its explicit
// alignment.
func fieldAlignment(tr *Traits, res StructResolver, field *StructField) (uint64, error) {
	align, err := AlignOf(tr, res, field.Type)
	if err != nil {
		return 0, err
	}

	return mathutil.MaxUint64(align, field.Alignment), nil
}

// FieldOffset looks up a member by name, descending into anonymous members,
// and returns it along with its byte offset from the start of the structure.
func FieldOffset(tr *Traits, res StructResolver, st *StructType, name string) (*StructField, uint64, error) {
	layout, err := LayoutStruct(tr, res, st)
	if err != nil {
		return nil, 0, err
	}

	for _, fl := range layout.Fields {
		if fl.Field.Name == name {
			return fl.Field, fl.Offset, nil
		}

		if fl.Field.Name == "" && !fl.Field.Bitfield {
			if inner, ok := Unqualified(fl.Field.Type).(*StructType); ok {
				field, offset, err := FieldOffset(tr, res, inner, name)
				if err == nil {
					return field, fl.Offset + offset, nil
				} else if !report.IsKind(err, report.NotFound) {
					return nil, 0, err
				}
			}
		}
	}

	return nil, 0, report.Raise(report.NotFound, nil, "`%s` has no member named `%s`", st.Repr(), name)
}
