package walk

import (
	"sort"

	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// analyzeInitializer analyzes the initializer of an object of the given
// type.  It returns the type completed by the initializer (the length of an
// unbounded array) and, for objects with static storage, the flattened
// scalar slots of the initializer sorted by offset.
func (w *Walker) analyzeInitializer(typ typing.Type, init *ast.Initializer, static bool) (typing.Type, []sem.InitSlot, error) {
	switch {
	case typing.IsFunction(typ):
		return nil, nil, report.Raise(report.MalformedArgument, init.Span(), "function initialized like a variable")
	case typing.IsVariablyModified(typ):
		return nil, nil, report.Raise(report.MalformedArgument, init.Span(), "variable-sized object may not be initialized")
	case !typing.IsComplete(typ):
		if at, ok := typ.(*typing.ArrayType); !ok || !typing.IsComplete(at.Elem) {
			return nil, nil, report.Raise(report.MalformedArgument, init.Span(), "variable has initializer but incomplete type `%s`", typ.Repr())
		}
	}

	ib := &initBuilder{w: w, static: static, slotIndex: make(map[slotKey]int)}
	typ, err := ib.initialize(typ, init)
	if err != nil {
		return nil, nil, err
	}

	sort.SliceStable(ib.slots, func(i, j int) bool {
		a, b := ib.slots[i], ib.slots[j]
		return a.Offset < b.Offset || a.Offset == b.Offset && a.BitOffset < b.BitOffset
	})

	init.Props().Type = typ
	return typ, ib.slots, nil
}

// slotKey identifies the scalar a slot initializes.
type slotKey struct {
	offset, bitOffset uint64
}

// initBuilder walks a (possibly braced and designated) initializer against
// the type it initializes.  Aggregates initialized without braces take their
// members from the enclosing list (brace elision).
type initBuilder struct {
	w *Walker

	// static indicates that every scalar must be a constant and collected.
	static bool

	slots     []sem.InitSlot
	slotIndex map[slotKey]int
}

// initialize initializes an object of the given type from its initializer.
func (ib *initBuilder) initialize(typ typing.Type, init *ast.Initializer) (typing.Type, error) {
	switch v := typing.Unqualified(typ).(type) {
	case *typing.ArrayType:
		if sl, ok := stringInitializer(init); ok && ib.isStringTarget(v) {
			return ib.initString(v, sl, 0)
		}

		if init.Expr != nil {
			return nil, report.Raise(report.MalformedArgument, init.Span(), "array initializer must be an initializer list")
		}

		if v.Boundary == typing.Unbounded {
			next, count, err := ib.fillArray(v, 0, init.List, 0, true)
			if err != nil {
				return nil, err
			} else if next < len(init.List) {
				return nil, report.Raise(report.MalformedArgument, init.Span(), "excess elements in array initializer")
			}

			return ib.w.bundle().NewBoundedArray(v.Elem, count, v.Qualification), nil
		}
	case *typing.StructType:
		if init.Expr != nil {
			return typ, ib.initStructExpr(typ, init.Expr, 0)
		}
	}

	_, err := ib.element(typ, 0, []*ast.InitializerEntry{{Init: init}}, 0)
	return typ, err
}

// element initializes one element of an aggregate (or a whole object) from
// the entry at pos.  It returns the position of the next unused entry: an
// aggregate element initialized without braces consumes as many entries as
// it has scalars.
func (ib *initBuilder) element(typ typing.Type, offset uint64, entries []*ast.InitializerEntry, pos int) (int, error) {
	init := entries[pos].Init

	if init.Expr == nil {
		return pos + 1, ib.braced(typ, offset, init)
	}

	switch v := typing.Unqualified(typ).(type) {
	case *typing.ArrayType:
		if sl, ok := init.Expr.(*ast.StringLiteral); ok && ib.isStringTarget(v) {
			_, err := ib.initString(v, sl, offset)
			return pos + 1, err
		}
	case *typing.StructType:
		if err := ib.w.AnalyzeExpr(init.Expr); err != nil {
			return 0, err
		}

		if typing.Compatible(ib.w.traits(), v, ib.w.valueType(init.Expr)) {
			return pos + 1, ib.initStructExpr(typ, init.Expr, offset)
		}
	default:
		return pos + 1, ib.scalar(sem.InitSlot{Offset: offset, Type: typ}, init)
	}

	next, err := ib.fill(typ, offset, entries, pos, false)
	if err != nil {
		return 0, err
	} else if next == pos {
		return 0, report.Raise(report.MalformedArgument, init.Span(), "excess elements in initializer")
	}

	return next, nil
}

// braced initializes an object from a braced initializer list.
func (ib *initBuilder) braced(typ typing.Type, offset uint64, init *ast.Initializer) error {
	if !typing.IsAggregate(typ) {
		return ib.scalar(sem.InitSlot{Offset: offset, Type: typ}, init)
	}

	if at, ok := typing.Unqualified(typ).(*typing.ArrayType); ok {
		if sl, ok := stringInitializer(init); ok && ib.isStringTarget(at) {
			_, err := ib.initString(at, sl, offset)
			return err
		}
	}

	next, err := ib.fill(typ, offset, init.List, 0, true)
	if err != nil {
		return err
	} else if next < len(init.List) {
		return report.Raise(report.MalformedArgument, init.Span(), "excess elements in initializer")
	}

	return nil
}

// fill initializes an aggregate from entries starting at pos.  A braced fill
// owns the whole list and resolves designators; an elided fill stops at the
// first designator or once the aggregate is full.
func (ib *initBuilder) fill(typ typing.Type, offset uint64, entries []*ast.InitializerEntry, pos int, braced bool) (int, error) {
	switch v := typing.Unqualified(typ).(type) {
	case *typing.ArrayType:
		if v.Boundary == typing.Unbounded {
			return 0, report.Raise(report.MalformedArgument, nil, "initialization of flexible array member")
		}

		next, _, err := ib.fillArray(v, offset, entries, pos, braced)
		return next, err
	case *typing.StructType:
		return ib.fillStruct(v, offset, entries, pos, braced)
	default:
		report.Assert(false, "fill of non-aggregate type %s", typ.Repr())
		return 0, nil
	}
}

// fillArray initializes the elements of an array.  It also returns the number
// of elements initialized: one past the highest index.
func (ib *initBuilder) fillArray(at *typing.ArrayType, offset uint64, entries []*ast.InitializerEntry, pos int, braced bool) (int, uint64, error) {
	elemSize, err := ib.w.sizeOf(at.Elem)
	if err != nil {
		return 0, 0, err
	}

	bounded := at.Boundary != typing.Unbounded
	var index, count uint64

	for pos < len(entries) {
		entry := entries[pos]

		if len(entry.Designators) > 0 {
			if !braced {
				break
			}

			if index, err = ib.arrayIndex(at, entry.Designators[0]); err != nil {
				return 0, 0, err
			}

			if err := ib.designated(at.Elem, offset+index*elemSize, entry.Designators[1:], entry.Init); err != nil {
				return 0, 0, err
			}

			pos++
		} else {
			if bounded && index >= at.Length {
				if braced {
					return 0, 0, report.Raise(report.MalformedArgument, entry.Init.Span(), "excess elements in array initializer")
				}

				break
			}

			if pos, err = ib.element(at.Elem, offset+index*elemSize, entries, pos); err != nil {
				return 0, 0, err
			}
		}

		index++
		if index > count {
			count = index
		}
	}

	return pos, count, nil
}

// fillStruct initializes the members of a structure or union.  Unions take a
// single positional initializer for their first member.
func (ib *initBuilder) fillStruct(st *typing.StructType, offset uint64, entries []*ast.InitializerEntry, pos int, braced bool) (int, error) {
	layout, err := typing.LayoutStruct(ib.w.traits(), ib.w, st)
	if err != nil {
		return 0, err
	}

	fields := layout.Fields
	next := 0

	for pos < len(entries) {
		entry := entries[pos]

		if len(entry.Designators) > 0 {
			if !braced {
				break
			}

			d := entry.Designators[0]
			if d.Member == "" {
				return 0, report.Raise(report.MalformedArgument, d.Span(), "array index in non-array initializer")
			}

			i, ok := ib.w.memberIndex(layout, d.Member)
			if !ok {
				return 0, report.Raise(report.NotFound, d.Span(), "`%s` has no member named `%s`", st.Repr(), d.Member)
			}

			if err := ib.designated(st, offset, entry.Designators, entry.Init); err != nil {
				return 0, err
			}

			next = i + 1
			pos++
			continue
		}

		// unnamed bit-fields are padding
		for next < len(fields) && fields[next].Field.Bitfield && fields[next].Field.Name == "" {
			next++
		}

		if next >= len(fields) || st.Union && next > 0 {
			if braced {
				return 0, report.Raise(report.MalformedArgument, entry.Init.Span(), "excess elements in %s initializer", tagKeyword(st.Union))
			}

			break
		}

		fl := fields[next]
		if fl.Field.Bitfield {
			err = ib.scalar(bitfieldSlot(fl, offset), entry.Init)
			pos++
		} else {
			pos, err = ib.element(fl.Field.Type, offset+fl.Offset, entries, pos)
		}

		if err != nil {
			return 0, err
		}

		next++
	}

	return pos, nil
}

// designated initializes the subobject designated by a designator chain.
func (ib *initBuilder) designated(typ typing.Type, offset uint64, designators []*ast.Designator, init *ast.Initializer) error {
	if len(designators) == 0 {
		_, err := ib.element(typ, offset, []*ast.InitializerEntry{{Init: init}}, 0)
		return err
	}

	d := designators[0]
	switch v := typing.Unqualified(typ).(type) {
	case *typing.ArrayType:
		index, err := ib.arrayIndex(v, d)
		if err != nil {
			return err
		}

		elemSize, err := ib.w.sizeOf(v.Elem)
		if err != nil {
			return report.WithSpan(err, d.Span())
		}

		return ib.designated(v.Elem, offset+index*elemSize, designators[1:], init)
	case *typing.StructType:
		if d.Member == "" {
			return report.Raise(report.MalformedArgument, d.Span(), "array index in non-array initializer")
		}

		fl, err := ib.w.memberLayout(v, d.Member)
		if err != nil {
			return report.WithSpan(err, d.Span())
		}

		if fl.Field.Bitfield {
			if len(designators) > 1 {
				return report.Raise(report.MalformedArgument, d.Span(), "designator into bit-field `%s`", d.Member)
			}

			return ib.scalar(bitfieldSlot(fl, offset), init)
		}

		return ib.designated(fl.Field.Type, offset+fl.Offset, designators[1:], init)
	default:
		return report.Raise(report.MalformedArgument, d.Span(), "designator in initializer for scalar type `%s`", typ.Repr())
	}
}

// arrayIndex evaluates an array designator.
func (ib *initBuilder) arrayIndex(at *typing.ArrayType, d *ast.Designator) (uint64, error) {
	if d.Index == nil {
		return 0, report.Raise(report.MalformedArgument, d.Span(), "field name `%s` not in record or union initializer", d.Member)
	}

	value, err := ib.w.evaluateInteger(d.Index, "array index in initializer")
	if err != nil {
		return 0, err
	}

	if value < 0 || at.Boundary != typing.Unbounded && uint64(value) >= at.Length {
		return 0, report.Raise(report.MalformedArgument, d.Span(), "array index %d in initializer exceeds array bounds", value)
	}

	return uint64(value), nil
}

// scalar initializes a scalar (or bit-field) from an expression, possibly
// enclosed in braces.
func (ib *initBuilder) scalar(slot sem.InitSlot, init *ast.Initializer) error {
	if init.Expr == nil {
		switch len(init.List) {
		case 0:
			return nil
		case 1:
			if len(init.List[0].Designators) > 0 {
				return report.Raise(report.MalformedArgument, init.Span(), "designator in initializer for scalar type `%s`", slot.Type.Repr())
			}

			return ib.scalar(slot, init.List[0].Init)
		default:
			return report.Raise(report.MalformedArgument, init.Span(), "excess elements in scalar initializer")
		}
	}

	w := ib.w
	expr := init.Expr
	if err := w.AnalyzeExpr(expr); err != nil {
		return err
	}

	if err := w.checkAssignable(slot.Type, expr); err != nil {
		return err
	}

	if !ib.static {
		return nil
	}

	value, err := w.Evaluate(expr)
	if err != nil {
		if report.IsKind(err, report.NotConstant) {
			return report.Raise(report.NotConstant, expr.Span(), "initializer element is not constant")
		}

		return err
	}

	if value, err = w.convert(value, w.valueType(expr), slot.Type, expr.Span()); err != nil {
		return err
	}

	if ic, ok := value.(sem.IntConst); ok && slot.Bitfield {
		bt, _ := typing.AsBasic(w.traits(), slot.Type)
		value = sem.IntConst{Value: wrapBits(ic.Value, slot.Bitwidth, w.traits().IsSigned(bt))}
	}

	slot.Type = typing.Unqualified(slot.Type)
	slot.Value = value
	ib.add(slot)
	return nil
}

// initStructExpr initializes a structure from an expression of compatible
// type.  Such an expression is never constant.
func (ib *initBuilder) initStructExpr(typ typing.Type, expr ast.Expr, offset uint64) error {
	w := ib.w
	if err := w.AnalyzeExpr(expr); err != nil {
		return err
	}

	if err := w.checkAssignable(typ, expr); err != nil {
		return err
	}

	if ib.static {
		return report.Raise(report.NotConstant, expr.Span(), "initializer element is not constant")
	}

	return nil
}

// isStringTarget returns whether an array may be initialized by a string
// literal: its element is a character type or `wchar_t`.
func (ib *initBuilder) isStringTarget(at *typing.ArrayType) bool {
	bt, ok := typing.AsBasic(ib.w.traits(), at.Elem)
	if !ok {
		return false
	}

	switch bt {
	case typing.Char, typing.SignedChar, typing.UnsignedChar:
		return true
	default:
		return bt == ib.w.traits().WcharType
	}
}

// initString initializes a character array from a string literal.  The
// terminating zero is dropped when the array has exactly the length of the
// characters.
func (ib *initBuilder) initString(at *typing.ArrayType, sl *ast.StringLiteral, offset uint64) (typing.Type, error) {
	w := ib.w
	if err := w.AnalyzeExpr(sl); err != nil {
		return nil, err
	}

	lit := sl.Props().Literal
	elem, _ := typing.AsBasic(w.traits(), at.Elem)
	narrow := elem == typing.Char || elem == typing.SignedChar || elem == typing.UnsignedChar
	if sl.Wide && elem != w.traits().WcharType || !sl.Wide && !narrow {
		return nil, report.Raise(report.MalformedArgument, sl.Span(), "array of inappropriate type `%s` initialized from string constant", at.Repr())
	}

	n := uint64(len(lit.Units))
	var typ typing.Type = at
	if at.Boundary == typing.Unbounded {
		typ = w.bundle().NewBoundedArray(at.Elem, n, at.Qualification)
	} else if n-1 > at.Length {
		return nil, report.Raise(report.MalformedArgument, sl.Span(), "initializer-string for `%s` is too long", at.Repr())
	}

	if ib.static {
		ib.add(sem.InitSlot{Offset: offset, Type: typ, Literal: lit})
	}

	return typ, nil
}

// add records a slot.  A later initializer of the same scalar overrides an
// earlier one.
func (ib *initBuilder) add(slot sem.InitSlot) {
	key := slotKey{slot.Offset, slot.BitOffset}
	if i, ok := ib.slotIndex[key]; ok {
		ib.slots[i] = slot
		return
	}

	ib.slotIndex[key] = len(ib.slots)
	ib.slots = append(ib.slots, slot)
}

// -----------------------------------------------------------------------------

// stringInitializer returns the string literal of an initializer that is a
// string literal, optionally enclosed in braces.
func stringInitializer(init *ast.Initializer) (*ast.StringLiteral, bool) {
	if init.Expr != nil {
		sl, ok := init.Expr.(*ast.StringLiteral)
		return sl, ok
	}

	if len(init.List) == 1 && len(init.List[0].Designators) == 0 && init.List[0].Init.Expr != nil {
		sl, ok := init.List[0].Init.Expr.(*ast.StringLiteral)
		return sl, ok
	}

	return nil, false
}

func bitfieldSlot(fl typing.FieldLayout, offset uint64) sem.InitSlot {
	return sem.InitSlot{
		Offset:    offset + fl.Offset,
		Type:      fl.Field.Type,
		Bitfield:  true,
		BitOffset: fl.BitOffset,
		Bitwidth:  fl.Field.Bitwidth,
	}
}

// wrapBits reduces a value to the width of a bit-field.
func wrapBits(v int64, width uint64, signed bool) int64 {
	if width == 0 || width >= 64 {
		return v
	}

	shift := 64 - width
	if signed {
		return v << shift >> shift
	}

	return int64(uint64(v) << shift >> shift)
}

// memberLayout looks up a member by name, descending into anonymous members.
// The offset of the returned layout is relative to the start of st.
func (w *Walker) memberLayout(st *typing.StructType, name string) (typing.FieldLayout, error) {
	layout, err := typing.LayoutStruct(w.traits(), w, st)
	if err != nil {
		return typing.FieldLayout{}, err
	}

	for _, fl := range layout.Fields {
		if fl.Field.Name == name {
			return fl, nil
		}

		if inner, ok := anonymousMember(fl); ok {
			sub, err := w.memberLayout(inner, name)
			if err == nil {
				sub.Offset += fl.Offset
				return sub, nil
			} else if !report.IsKind(err, report.NotFound) {
				return typing.FieldLayout{}, err
			}
		}
	}

	return typing.FieldLayout{}, report.Raise(report.NotFound, nil, "`%s` has no member named `%s`", st.Repr(), name)
}

// memberIndex returns the index of the top-level field of a layout which
// holds the named member.
func (w *Walker) memberIndex(layout *typing.StructLayout, name string) (int, bool) {
	for i, fl := range layout.Fields {
		if fl.Field.Name == name {
			return i, true
		}

		if inner, ok := anonymousMember(fl); ok {
			if _, err := w.memberLayout(inner, name); err == nil {
				return i, true
			}
		}
	}

	return 0, false
}

func anonymousMember(fl typing.FieldLayout) (*typing.StructType, bool) {
	if fl.Field.Name != "" || fl.Field.Bitfield {
		return nil, false
	}

	st, ok := typing.Unqualified(fl.Field.Type).(*typing.StructType)
	return st, ok
}
