package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"
)

// AnalyzeExpr types an expression and its operands: it sets the type, the
// lvalue and bit-field flags and the resolved identifier of every node.
// Analyzing an expression twice is a no-op.
func (w *Walker) AnalyzeExpr(expr ast.Expr) error {
	props := expr.Props()
	if props.Category == ast.CategoryExpression {
		return nil
	}

	if err := w.analyzeExpr(expr); err != nil {
		return report.WithSpan(err, expr.Span())
	}

	props.Category = ast.CategoryExpression
	return nil
}

func (w *Walker) analyzeExpr(expr ast.Expr) error {
	props := expr.Props()

	switch v := expr.(type) {
	case *ast.Constant:
		props.Type = w.constantType(v.Kind)
	case *ast.StringLiteral:
		if props.Literal == nil {
			props.Literal = w.registerLiteral(v)
		}

		lit := props.Literal
		props.Type = w.bundle().NewBoundedArray(lit.CharType, uint64(len(lit.Units)), 0)
		props.LValue = true
	case *ast.Identifier:
		return w.analyzeIdentifier(v)
	case *ast.GenericSelection:
		return w.analyzeGenericSelection(v)
	case *ast.CompoundLiteral:
		typ, err := w.AnalyzeTypeName(v.Type)
		if err != nil {
			return err
		}

		if typing.IsFunction(typ) || typing.IsVariablyModified(typ) {
			return report.Raise(report.MalformedArgument, v.Span(), "compound literal has invalid type `%s`", typ.Repr())
		}

		typ, _, err = w.analyzeInitializer(typ, v.Init, w.local == nil)
		if err != nil {
			return err
		}

		props.Type = typ
		props.LValue = true
	case *ast.ArraySubscript:
		return w.analyzeSubscript(v)
	case *ast.FunctionCall:
		return w.analyzeCall(v)
	case *ast.StructMember:
		return w.analyzeMember(v)
	case *ast.UnaryOperation:
		return w.analyzeUnary(v)
	case *ast.TypeTrait:
		typ, err := w.AnalyzeTypeName(v.Type)
		if err != nil {
			return err
		}

		if err := w.checkSizeable(typ, v.Op, v.Span()); err != nil {
			return err
		}

		props.Type = w.traits().SizeType
	case *ast.Cast:
		return w.analyzeCast(v)
	case *ast.BinaryOperation:
		if err := w.AnalyzeExpr(v.Lhs); err != nil {
			return err
		}

		if err := w.AnalyzeExpr(v.Rhs); err != nil {
			return err
		}

		typ, err := w.binaryType(v.Op, v.Lhs, v.Rhs, v.Span())
		if err != nil {
			return err
		}

		props.Type = typ
	case *ast.Conditional:
		return w.analyzeConditional(v)
	case *ast.Assignment:
		return w.analyzeAssignment(v)
	case *ast.Comma:
		for _, e := range v.Exprs {
			if err := w.AnalyzeExpr(e); err != nil {
				return err
			}
		}

		props.Type = w.valueType(v.Exprs[len(v.Exprs)-1])
	case *ast.BuiltinOffsetof:
		if _, err := w.offsetOf(v); err != nil {
			return err
		}

		props.Type = w.traits().SizeType
	default:
		report.Assert(false, "unexpected expression %T", expr)
	}

	return nil
}

// constantType returns the type of a literal constant.
func (w *Walker) constantType(kind ast.ConstantKind) typing.Type {
	switch kind {
	case ast.ConstBool:
		return typing.Bool
	case ast.ConstChar, ast.ConstInt:
		return typing.Int
	case ast.ConstWideChar:
		return w.traits().WcharType
	case ast.ConstUnsignedInt:
		return typing.UnsignedInt
	case ast.ConstLong:
		return typing.Long
	case ast.ConstUnsignedLong:
		return typing.UnsignedLong
	case ast.ConstLongLong:
		return typing.LongLong
	case ast.ConstUnsignedLongLong:
		return typing.UnsignedLongLong
	case ast.ConstFloat:
		return typing.Float
	case ast.ConstDouble:
		return typing.Double
	default:
		return typing.LongDouble
	}
}

// registerLiteral registers a string literal on the global context.
func (w *Walker) registerLiteral(sl *ast.StringLiteral) *sem.StringLiteral {
	var units []int64
	var charType typing.Type = typing.Char

	if sl.Wide {
		charType = w.traits().WcharType
		for _, r := range sl.Value {
			units = append(units, int64(r))
		}
	} else {
		for _, b := range []byte(sl.Value) {
			units = append(units, int64(b))
		}
	}

	return w.global.RegisterStringLiteral(append(units, 0), charType)
}

func (w *Walker) analyzeIdentifier(id *ast.Identifier) error {
	sid, err := w.ctx.ResolveOrdinary(id.Name)
	if err != nil {
		return report.WithSpan(err, id.Span())
	}

	props := id.Props()
	props.Scoped = sid

	switch v := sid.(type) {
	case *sem.Object:
		props.Type = v.Type
		props.LValue = true
	case *sem.Function:
		props.Type = v.Type
	case *sem.EnumConstant:
		props.Type = v.Type
	default:
		return report.Raise(report.MalformedArgument, id.Span(), "unexpected type name `%s`: expected expression", id.Name)
	}

	return nil
}

// selectGeneric returns the association a generic selection selects.  The
// control and association types must have been analyzed.
func (w *Walker) selectGeneric(gs *ast.GenericSelection) (*ast.GenericAssociation, error) {
	control := w.valueType(gs.Control)

	var def *ast.GenericAssociation
	for _, assoc := range gs.Associations {
		if assoc.Type == nil {
			def = assoc
		} else if typing.Compatible(w.traits(), control, assoc.Type.Props().Type) {
			return assoc, nil
		}
	}

	if def == nil {
		return nil, report.Raise(report.MalformedArgument, gs.Span(), "controlling expression type `%s` not compatible with any generic association type", control.Repr())
	}

	return def, nil
}

func (w *Walker) analyzeGenericSelection(gs *ast.GenericSelection) error {
	if err := w.AnalyzeExpr(gs.Control); err != nil {
		return err
	}

	var types []typing.Type
	hasDefault := false
	for _, assoc := range gs.Associations {
		if assoc.Type == nil {
			if hasDefault {
				return report.Raise(report.MalformedArgument, gs.Span(), "duplicate `default` generic association")
			}

			hasDefault = true
		} else {
			typ, err := w.AnalyzeTypeName(assoc.Type)
			if err != nil {
				return err
			}

			if !typing.IsComplete(typ) || typing.IsFunction(typ) || typing.IsVariablyModified(typ) {
				return report.Raise(report.MalformedArgument, assoc.Type.Span(), "generic association has invalid type `%s`", typ.Repr())
			}

			for _, prev := range types {
				if typing.Compatible(w.traits(), prev, typ) {
					return report.Raise(report.MalformedArgument, assoc.Type.Span(), "generic association type `%s` is compatible with previous association type `%s`", typ.Repr(), prev.Repr())
				}
			}

			types = append(types, typ)
		}

		if err := w.AnalyzeExpr(assoc.Expr); err != nil {
			return err
		}
	}

	selected, err := w.selectGeneric(gs)
	if err != nil {
		return err
	}

	sprops := selected.Expr.Props()
	props := gs.Props()
	props.Type = sprops.Type
	props.LValue = sprops.LValue
	props.Bitfield = sprops.Bitfield
	return nil
}

func (w *Walker) analyzeSubscript(as *ast.ArraySubscript) error {
	if err := w.AnalyzeExpr(as.Array); err != nil {
		return err
	}

	if err := w.AnalyzeExpr(as.Index); err != nil {
		return err
	}

	at, it := w.valueType(as.Array), w.valueType(as.Index)

	var elem typing.Type
	if pointee, ok := pointeeOf(at); ok && typing.IsInteger(it) {
		elem = pointee
	} else if pointee, ok := pointeeOf(it); ok && typing.IsInteger(at) {
		elem = pointee
	} else {
		return report.Raise(report.MalformedArgument, as.Span(), "subscripted value is neither array nor pointer")
	}

	if typing.IsFunction(elem) || !typing.IsComplete(elem) {
		return report.Raise(report.MalformedArgument, as.Span(), "subscript of pointer to incomplete type `%s`", elem.Repr())
	}

	as.Props().Type = elem
	as.Props().LValue = true
	return nil
}

func (w *Walker) analyzeCall(fc *ast.FunctionCall) error {
	if err := w.AnalyzeExpr(fc.Func); err != nil {
		return err
	}

	for _, arg := range fc.Args {
		if err := w.AnalyzeExpr(arg); err != nil {
			return err
		}
	}

	pointee, _ := pointeeOf(w.valueType(fc.Func))
	ft, ok := pointee.(*typing.FunctionType)
	if !ok {
		return report.Raise(report.MalformedArgument, fc.Span(), "called object is not a function or function pointer")
	}

	if ft.Prototyped() {
		if len(fc.Args) < len(ft.Params) {
			return report.Raise(report.MalformedArgument, fc.Span(), "too few arguments to function: expected %d, got %d", len(ft.Params), len(fc.Args))
		} else if len(fc.Args) > len(ft.Params) && !ft.Ellipsis {
			return report.Raise(report.MalformedArgument, fc.Span(), "too many arguments to function: expected %d, got %d", len(ft.Params), len(fc.Args))
		}

		for i, param := range ft.Params {
			if err := w.checkAssignable(param.Adjusted, fc.Args[i]); err != nil {
				return err
			}
		}
	}

	ret := typing.Unqualified(ft.Return)
	if !typing.IsVoid(ret) && !typing.IsComplete(ret) {
		return report.Raise(report.MalformedArgument, fc.Span(), "calling function with incomplete return type `%s`", ret.Repr())
	}

	fc.Props().Type = ret
	return nil
}

func (w *Walker) analyzeMember(sm *ast.StructMember) error {
	if err := w.AnalyzeExpr(sm.Struct); err != nil {
		return err
	}

	base := sm.Struct.Props().Type
	if sm.Indirect {
		pointee, ok := pointeeOf(w.valueType(sm.Struct))
		if !ok {
			return report.Raise(report.MalformedArgument, sm.Span(), "invalid type argument of `->`: `%s`", base.Repr())
		}

		base = pointee
	}

	st, ok := typing.Unqualified(base).(*typing.StructType)
	if !ok {
		return report.Raise(report.MalformedArgument, sm.Span(), "request for member `%s` in something not a structure or union", sm.Member)
	}

	field, _, err := typing.FieldOffset(w.traits(), w, st, sm.Member)
	if err != nil {
		return report.WithSpan(err, sm.Span())
	}

	props := sm.Props()
	props.Type = w.qualify(field.Type, typing.QualificationOf(base))
	props.LValue = sm.Indirect || sm.Struct.Props().LValue
	props.Bitfield = field.Bitfield
	return nil
}

func (w *Walker) analyzeUnary(uo *ast.UnaryOperation) error {
	if err := w.AnalyzeExpr(uo.Operand); err != nil {
		return err
	}

	props := uo.Props()
	oprops := uo.Operand.Props()
	typ := w.valueType(uo.Operand)

	switch uo.Op {
	case ast.OpPlus, ast.OpNegate:
		if !typing.IsArithmetic(typ) {
			return report.Raise(report.MalformedArgument, uo.Span(), "wrong type argument to unary operator: `%s`", typ.Repr())
		}

		props.Type = typing.IntegerPromotion(w.traits(), typ)
	case ast.OpInvert:
		if !typing.IsInteger(typ) {
			return report.Raise(report.MalformedArgument, uo.Span(), "wrong type argument to bit-complement: `%s`", typ.Repr())
		}

		props.Type = typing.IntegerPromotion(w.traits(), typ)
	case ast.OpLogicalNot:
		if !typing.IsScalar(typ) {
			return report.Raise(report.MalformedArgument, uo.Span(), "wrong type argument to unary exclamation mark: `%s`", typ.Repr())
		}

		props.Type = typing.Int
	case ast.OpAddress:
		if !typing.IsFunction(oprops.Type) {
			if !oprops.LValue {
				return report.Raise(report.MalformedArgument, uo.Span(), "lvalue required as unary `&` operand")
			}

			if oprops.Bitfield {
				return report.Raise(report.MalformedArgument, uo.Span(), "cannot take address of bit-field")
			}

			if obj, ok := oprops.Scoped.(*sem.Object); ok && obj.Storage == sem.StorageRegister {
				if _, isIdent := uo.Operand.(*ast.Identifier); isIdent {
					return report.Raise(report.MalformedArgument, uo.Span(), "address of register variable `%s` requested", obj.Name)
				}
			}
		}

		props.Type = w.bundle().NewPointer(oprops.Type)
	case ast.OpIndirection:
		pointee, ok := pointeeOf(typ)
		if !ok {
			return report.Raise(report.MalformedArgument, uo.Span(), "invalid type argument of unary `*`: `%s`", typ.Repr())
		}

		props.Type = pointee
		props.LValue = !typing.IsFunction(pointee)
	case ast.OpPreIncrement, ast.OpPreDecrement, ast.OpPostIncrement, ast.OpPostDecrement:
		if err := w.checkModifiable(uo.Operand); err != nil {
			return err
		}

		if !typing.IsArithmetic(typ) && !typing.IsPointer(typ) {
			return report.Raise(report.MalformedArgument, uo.Span(), "wrong type argument to increment or decrement: `%s`", typ.Repr())
		}

		props.Type = typ
	case ast.OpSizeof, ast.OpAlignof:
		if oprops.Bitfield {
			return report.Raise(report.MalformedArgument, uo.Span(), "invalid application of `%s` to a bit-field", traitName(uo.Op))
		}

		if err := w.checkSizeable(oprops.Type, uo.Op, uo.Span()); err != nil {
			return err
		}

		props.Type = w.traits().SizeType
	}

	return nil
}

func traitName(op ast.UnaryOp) string {
	if op == ast.OpAlignof {
		return "_Alignof"
	}

	return "sizeof"
}

// checkSizeable checks the operand type of `sizeof` and `_Alignof`.
func (w *Walker) checkSizeable(typ typing.Type, op ast.UnaryOp, span *report.TextSpan) error {
	if typing.IsFunction(typ) {
		return report.Raise(report.MalformedArgument, span, "invalid application of `%s` to a function type", traitName(op))
	}

	if !typing.IsComplete(typ) {
		return report.Raise(report.MalformedArgument, span, "invalid application of `%s` to incomplete type `%s`", traitName(op), typ.Repr())
	}

	return nil
}

func (w *Walker) analyzeCast(c *ast.Cast) error {
	typ, err := w.AnalyzeTypeName(c.Type)
	if err != nil {
		return err
	}

	if err := w.AnalyzeExpr(c.Expr); err != nil {
		return err
	}

	target := typing.Unqualified(typ)
	if !typing.IsVoid(target) {
		src := w.valueType(c.Expr)

		switch {
		case !typing.IsScalar(target):
			return report.Raise(report.MalformedArgument, c.Span(), "conversion to non-scalar type `%s` requested", target.Repr())
		case !typing.IsScalar(src):
			return report.Raise(report.MalformedArgument, c.Span(), "conversion from non-scalar type `%s` requested", src.Repr())
		case typing.IsPointer(target) && typing.IsFloating(src), typing.IsFloating(target) && typing.IsPointer(src):
			return report.Raise(report.MalformedArgument, c.Span(), "invalid cast from `%s` to `%s`", src.Repr(), target.Repr())
		}
	}

	c.Props().Type = target
	return nil
}

// binaryType returns the result type of a binary operator applied to two
// analyzed operands.
func (w *Walker) binaryType(op ast.BinaryOp, lhs, rhs ast.Expr, span *report.TextSpan) (typing.Type, error) {
	tr := w.traits()
	lt, rt := w.valueType(lhs), w.valueType(rhs)
	lp, lok := pointeeOf(lt)
	rp, rok := pointeeOf(rt)

	invalid := func() (typing.Type, error) {
		return nil, report.Raise(report.MalformedArgument, span, "invalid operands to binary operator (have `%s` and `%s`)", lt.Repr(), rt.Repr())
	}

	switch op {
	case ast.OpMul, ast.OpDiv:
		if typing.IsArithmetic(lt) && typing.IsArithmetic(rt) {
			return typing.UsualArithmeticConversion(tr, lt, rt), nil
		}
	case ast.OpMod, ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor:
		if typing.IsInteger(lt) && typing.IsInteger(rt) {
			return typing.UsualArithmeticConversion(tr, lt, rt), nil
		}
	case ast.OpAdd:
		switch {
		case typing.IsArithmetic(lt) && typing.IsArithmetic(rt):
			return typing.UsualArithmeticConversion(tr, lt, rt), nil
		case lok && typing.IsInteger(rt):
			return lt, w.checkArithmeticPointee(lp, span)
		case rok && typing.IsInteger(lt):
			return rt, w.checkArithmeticPointee(rp, span)
		}
	case ast.OpSub:
		switch {
		case typing.IsArithmetic(lt) && typing.IsArithmetic(rt):
			return typing.UsualArithmeticConversion(tr, lt, rt), nil
		case lok && typing.IsInteger(rt):
			return lt, w.checkArithmeticPointee(lp, span)
		case lok && rok:
			if !typing.Compatible(tr, typing.Unqualified(lp), typing.Unqualified(rp)) {
				return nil, report.Raise(report.MalformedArgument, span, "subtraction of incompatible pointer types `%s` and `%s`", lt.Repr(), rt.Repr())
			}

			return tr.PtrdiffType, w.checkArithmeticPointee(lp, span)
		}
	case ast.OpShiftLeft, ast.OpShiftRight:
		if typing.IsInteger(lt) && typing.IsInteger(rt) {
			return typing.IntegerPromotion(tr, lt), nil
		}
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		if typing.IsArithmetic(lt) && typing.IsArithmetic(rt) {
			return typing.Int, nil
		}

		if lok && rok && typing.Compatible(tr, typing.Unqualified(lp), typing.Unqualified(rp)) {
			return typing.Int, nil
		}
	case ast.OpEqual, ast.OpNotEqual:
		switch {
		case typing.IsArithmetic(lt) && typing.IsArithmetic(rt):
			return typing.Int, nil
		case lok && rok:
			if typing.IsVoid(lp) || typing.IsVoid(rp) || typing.Compatible(tr, typing.Unqualified(lp), typing.Unqualified(rp)) {
				return typing.Int, nil
			}
		case lok && w.isNullPointerConstant(rhs), rok && w.isNullPointerConstant(lhs):
			return typing.Int, nil
		}
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		if typing.IsScalar(lt) && typing.IsScalar(rt) {
			return typing.Int, nil
		}
	}

	return invalid()
}

// checkArithmeticPointee checks that pointer arithmetic is possible on a
// pointee type.  Arithmetic on `void *` steps by one byte.
func (w *Walker) checkArithmeticPointee(pointee typing.Type, span *report.TextSpan) error {
	if typing.IsFunction(pointee) || (!typing.IsVoid(pointee) && !typing.IsComplete(pointee)) {
		return report.Raise(report.MalformedArgument, span, "arithmetic on a pointer to `%s`", pointee.Repr())
	}

	return nil
}

func (w *Walker) analyzeConditional(c *ast.Conditional) error {
	for _, e := range []ast.Expr{c.Cond, c.Then, c.Else} {
		if err := w.AnalyzeExpr(e); err != nil {
			return err
		}
	}

	if !typing.IsScalar(w.valueType(c.Cond)) {
		return report.Raise(report.MalformedArgument, c.Span(), "used `%s` where scalar is required", w.valueType(c.Cond).Repr())
	}

	typ, err := w.conditionalType(c)
	if err != nil {
		return err
	}

	c.Props().Type = typ
	return nil
}

// conditionalType returns the common type of the branches of a conditional.
func (w *Walker) conditionalType(c *ast.Conditional) (typing.Type, error) {
	tr := w.traits()
	tt, et := w.valueType(c.Then), w.valueType(c.Else)
	tp, tok := pointeeOf(tt)
	ep, eok := pointeeOf(et)

	switch {
	case typing.IsArithmetic(tt) && typing.IsArithmetic(et):
		return typing.UsualArithmeticConversion(tr, tt, et), nil
	case typing.IsVoid(tt) && typing.IsVoid(et):
		return typing.Void, nil
	case typing.IsAggregate(tt) && typing.Compatible(tr, tt, et):
		return tt, nil
	case tok && eok:
		quals := typing.QualificationOf(tp).Merge(typing.QualificationOf(ep))
		if typing.IsVoid(tp) || typing.IsVoid(ep) {
			return w.bundle().NewPointer(w.bundle().NewQualified(typing.Void, quals)), nil
		}

		utp, uep := typing.Unqualified(tp), typing.Unqualified(ep)
		if typing.Compatible(tr, utp, uep) {
			composite := typing.Composite(w.bundle(), tr, utp, uep)
			return w.bundle().NewPointer(w.qualify(composite, quals)), nil
		}
	case tok && w.isNullPointerConstant(c.Else):
		return tt, nil
	case eok && w.isNullPointerConstant(c.Then):
		return et, nil
	}

	return nil, report.Raise(report.MalformedArgument, c.Span(), "type mismatch in conditional expression (have `%s` and `%s`)", tt.Repr(), et.Repr())
}

func (w *Walker) analyzeAssignment(a *ast.Assignment) error {
	if err := w.AnalyzeExpr(a.Target); err != nil {
		return err
	}

	if err := w.AnalyzeExpr(a.Value); err != nil {
		return err
	}

	if err := w.checkModifiable(a.Target); err != nil {
		return err
	}

	if a.Compound {
		if _, err := w.binaryType(a.Op, a.Target, a.Value, a.Span()); err != nil {
			return err
		}
	} else if err := w.checkAssignable(a.Target.Props().Type, a.Value); err != nil {
		return err
	}

	a.Props().Type = typing.Unqualified(a.Target.Props().Type)
	return nil
}

// offsetOf analyzes a `__builtin_offsetof` and returns the offset it
// designates.
func (w *Walker) offsetOf(bo *ast.BuiltinOffsetof) (uint64, error) {
	typ, err := w.AnalyzeTypeName(bo.Type)
	if err != nil {
		return 0, err
	}

	if _, ok := typing.Unqualified(typ).(*typing.StructType); !ok {
		return 0, report.Raise(report.MalformedArgument, bo.Span(), "`offsetof` of non-structure type `%s`", typ.Repr())
	}

	var offset uint64
	for _, step := range bo.Path {
		if step.Member != "" {
			st, ok := typing.Unqualified(typ).(*typing.StructType)
			if !ok {
				return 0, report.Raise(report.MalformedArgument, bo.Span(), "request for member `%s` in something not a structure or union", step.Member)
			}

			field, fieldOffset, err := typing.FieldOffset(w.traits(), w, st, step.Member)
			if err != nil {
				return 0, report.WithSpan(err, bo.Span())
			}

			if field.Bitfield {
				return 0, report.Raise(report.MalformedArgument, bo.Span(), "attempt to take address of bit-field `%s`", step.Member)
			}

			offset += fieldOffset
			typ = field.Type
			continue
		}

		at, ok := typing.Unqualified(typ).(*typing.ArrayType)
		if !ok {
			return 0, report.Raise(report.MalformedArgument, bo.Span(), "subscripted value in `offsetof` is not an array")
		}

		index, err := w.evaluateInteger(step.Index, "array index")
		if err != nil {
			return 0, err
		}

		size, err := w.sizeOf(at.Elem)
		if err != nil {
			return 0, report.WithSpan(err, bo.Span())
		}

		offset += uint64(index) * size
		typ = at.Elem
	}

	return offset, nil
}

// -----------------------------------------------------------------------------

// valueType returns the type of an analyzed expression used as a value: the
// unqualified type with arrays and functions decayed to pointers.
func (w *Walker) valueType(expr ast.Expr) typing.Type {
	typ := typing.Unqualified(expr.Props().Type)

	switch v := typ.(type) {
	case *typing.ArrayType:
		return w.bundle().NewPointer(v.Elem)
	case *typing.FunctionType:
		return w.bundle().NewPointer(v)
	}

	return typ
}

// pointeeOf returns the referenced type of a pointer type.
func pointeeOf(typ typing.Type) (typing.Type, bool) {
	if pt, ok := typing.Unqualified(typ).(*typing.PointerType); ok {
		return pt.Referenced, true
	}

	return nil, false
}

// isNullPointerConstant returns whether an analyzed expression is an integer
// constant expression of value zero, possibly cast to `void *`.
func (w *Walker) isNullPointerConstant(expr ast.Expr) bool {
	if c, ok := expr.(*ast.Cast); ok {
		if pointee, ok := pointeeOf(c.Props().Type); ok && typing.IsVoid(pointee) && typing.QualificationOf(pointee).Empty() {
			return w.isNullPointerConstant(c.Expr)
		}
	}

	if !typing.IsInteger(expr.Props().Type) {
		return false
	}

	value, err := w.Evaluate(expr)
	if err != nil {
		return false
	}

	ic, ok := value.(sem.IntConst)
	return ok && ic.Value == 0
}

// checkModifiable checks that an analyzed expression is a modifiable lvalue.
func (w *Walker) checkModifiable(expr ast.Expr) error {
	props := expr.Props()

	switch {
	case !props.LValue:
		return report.Raise(report.MalformedArgument, expr.Span(), "lvalue required as left operand of assignment")
	case typing.IsArray(props.Type):
		return report.Raise(report.MalformedArgument, expr.Span(), "assignment to expression with array type")
	case typing.QualificationOf(props.Type).Has(typing.Const):
		return report.Raise(report.MalformedArgument, expr.Span(), "assignment of read-only location")
	case !typing.IsComplete(props.Type):
		return report.Raise(report.MalformedArgument, expr.Span(), "assignment to expression with incomplete type `%s`", props.Type.Repr())
	}

	return nil
}

// checkAssignable checks that an analyzed expression may be assigned to an
// object of the given type.
func (w *Walker) checkAssignable(target typing.Type, value ast.Expr) error {
	tr := w.traits()
	tt, vt := typing.Unqualified(target), w.valueType(value)

	switch {
	case typing.IsArithmetic(tt) && typing.IsArithmetic(vt):
		return nil
	case tt == typing.Bool && typing.IsPointer(vt):
		return nil
	case typing.IsAggregate(tt) && typing.Compatible(tr, tt, vt):
		return nil
	case typing.IsPointer(tt):
		tp, _ := pointeeOf(tt)
		if vp, ok := pointeeOf(vt); ok {
			if typing.IsVoid(tp) && !typing.IsFunction(vp) || typing.IsVoid(vp) && !typing.IsFunction(tp) {
				return nil
			}

			if typing.Compatible(tr, typing.Unqualified(tp), typing.Unqualified(vp)) {
				return nil
			}

			return report.Raise(report.MalformedArgument, value.Span(), "incompatible pointer types: `%s` and `%s`", target.Repr(), vt.Repr())
		}

		if w.isNullPointerConstant(value) {
			return nil
		}
	}

	return report.Raise(report.MalformedArgument, value.Span(), "incompatible types when assigning to type `%s` from type `%s`", target.Repr(), vt.Repr())
}
