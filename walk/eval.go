package walk

import (
	"csem/ast"
	"csem/report"
	"csem/sem"
	"csem/typing"

	"fortio.org/safecast"
)

// Evaluate computes the value of a constant expression: an integer, a
// floating-point number or a symbolic address.  The expression is analyzed
// first if needed.  Expressions which are not constant fail with a
// `NotConstant` error.
func (w *Walker) Evaluate(expr ast.Expr) (sem.ConstValue, error) {
	if err := w.AnalyzeExpr(expr); err != nil {
		return nil, err
	}

	value, err := w.evaluate(expr)
	if err != nil {
		return nil, report.WithSpan(err, expr.Span())
	}

	return value, nil
}

// evaluateInteger analyzes and evaluates an integer constant expression.  The
// value is cached on the expression.
func (w *Walker) evaluateInteger(expr ast.Expr, what string) (int64, error) {
	if ic, ok := expr.Props().Value.(sem.IntConst); ok {
		return ic.Value, nil
	}

	if err := w.AnalyzeExpr(expr); err != nil {
		return 0, err
	}

	if !typing.IsInteger(expr.Props().Type) {
		return 0, report.Raise(report.MalformedArgument, expr.Span(), "%s has non-integer type `%s`", what, expr.Props().Type.Repr())
	}

	value, err := w.Evaluate(expr)
	if err != nil {
		return 0, err
	}

	ic, ok := value.(sem.IntConst)
	if !ok {
		return 0, report.Raise(report.NotConstant, expr.Span(), "%s is not an integer constant expression", what)
	}

	expr.Props().Value = ic
	return ic.Value, nil
}

func notConstant(expr ast.Expr) error {
	return report.Raise(report.NotConstant, expr.Span(), "expression is not constant")
}

func (w *Walker) evaluate(expr ast.Expr) (sem.ConstValue, error) {
	props := expr.Props()

	switch v := expr.(type) {
	case *ast.Constant:
		if typing.IsFloating(props.Type) {
			return sem.FloatConst{Value: roundFloat(props.Type, v.Float)}, nil
		}

		bt, _ := typing.AsBasic(w.traits(), props.Type)
		return sem.IntConst{Value: wrapInt(w.traits(), bt, v.Int)}, nil
	case *ast.StringLiteral:
		return w.evaluateAddress(v)
	case *ast.Identifier:
		switch sid := props.Scoped.(type) {
		case *sem.EnumConstant:
			return sem.IntConst{Value: sid.Value}, nil
		case *sem.Function:
			return w.evaluateAddress(v)
		case *sem.Object:
			if typing.IsArray(sid.Type) {
				return w.evaluateAddress(v)
			}
		}

		return nil, report.Raise(report.NotConstant, v.Span(), "value of `%s` is not constant", v.Name)
	case *ast.GenericSelection:
		selected, err := w.selectGeneric(v)
		if err != nil {
			return nil, err
		}

		return w.evaluate(selected.Expr)
	case *ast.ArraySubscript, *ast.StructMember:
		// only arrays decay to a constant address: other values are loads
		if typing.IsArray(props.Type) {
			return w.evaluateAddress(expr)
		}
	case *ast.UnaryOperation:
		return w.evaluateUnary(v)
	case *ast.TypeTrait:
		return w.evaluateTrait(v.Type.Props().Type, v.Op, v.Span())
	case *ast.Cast:
		if typing.IsVoid(props.Type) {
			return nil, notConstant(expr)
		}

		value, err := w.evaluate(v.Expr)
		if err != nil {
			return nil, err
		}

		return w.convert(value, w.valueType(v.Expr), props.Type, v.Span())
	case *ast.BinaryOperation:
		return w.evaluateBinary(v)
	case *ast.Conditional:
		cond, err := w.evaluate(v.Cond)
		if err != nil {
			return nil, err
		}

		branch := v.Else
		if truth(cond) {
			branch = v.Then
		}

		value, err := w.evaluate(branch)
		if err != nil {
			return nil, err
		}

		return w.convert(value, w.valueType(branch), props.Type, v.Span())
	case *ast.BuiltinOffsetof:
		offset, err := w.offsetOf(v)
		if err != nil {
			return nil, err
		}

		return w.toIntConst(offset, v.Span())
	}

	return nil, notConstant(expr)
}

func (w *Walker) evaluateUnary(uo *ast.UnaryOperation) (sem.ConstValue, error) {
	tr := w.traits()
	props := uo.Props()

	switch uo.Op {
	case ast.OpAddress:
		return w.evaluateAddress(uo.Operand)
	case ast.OpIndirection:
		if typing.IsArray(props.Type) || typing.IsFunction(props.Type) {
			return w.evaluateAddress(uo)
		}

		return nil, notConstant(uo)
	case ast.OpSizeof, ast.OpAlignof:
		return w.evaluateTrait(uo.Operand.Props().Type, uo.Op, uo.Span())
	case ast.OpPreIncrement, ast.OpPreDecrement, ast.OpPostIncrement, ast.OpPostDecrement:
		return nil, notConstant(uo)
	}

	operand, err := w.evaluate(uo.Operand)
	if err != nil {
		return nil, err
	}

	if uo.Op == ast.OpLogicalNot {
		return boolConst(!truth(operand)), nil
	}

	value, err := w.convert(operand, w.valueType(uo.Operand), props.Type, uo.Span())
	if err != nil {
		return nil, err
	}

	bt, _ := typing.AsBasic(tr, props.Type)
	switch v := value.(type) {
	case sem.IntConst:
		switch uo.Op {
		case ast.OpNegate:
			return sem.IntConst{Value: wrapInt(tr, bt, -v.Value)}, nil
		case ast.OpInvert:
			return sem.IntConst{Value: wrapInt(tr, bt, ^v.Value)}, nil
		}
	case sem.FloatConst:
		if uo.Op == ast.OpNegate {
			return sem.FloatConst{Value: -v.Value}, nil
		}
	default:
		return nil, notConstant(uo)
	}

	return value, nil
}

// evaluateTrait computes `sizeof` or `_Alignof` of a type.
func (w *Walker) evaluateTrait(typ typing.Type, op ast.UnaryOp, span *report.TextSpan) (sem.ConstValue, error) {
	var n uint64
	var err error
	if op == ast.OpSizeof {
		n, err = w.sizeOf(typ)
	} else {
		n, err = w.alignOf(typ)
	}

	if err != nil {
		return nil, report.WithSpan(err, span)
	}

	return w.toIntConst(n, span)
}

func (w *Walker) toIntConst(n uint64, span *report.TextSpan) (sem.ConstValue, error) {
	value, err := safecast.Conv[int64](n)
	if err != nil {
		return nil, report.Raise(report.MalformedArgument, span, "constant %d is too large", n)
	}

	return sem.IntConst{Value: value}, nil
}

func (w *Walker) evaluateBinary(bo *ast.BinaryOperation) (sem.ConstValue, error) {
	tr := w.traits()

	lhs, err := w.evaluate(bo.Lhs)
	if err != nil {
		return nil, err
	}

	switch bo.Op {
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		lt := truth(lhs)
		if bo.Op == ast.OpLogicalAnd && !lt || bo.Op == ast.OpLogicalOr && lt {
			return boolConst(lt), nil
		}

		rhs, err := w.evaluate(bo.Rhs)
		if err != nil {
			return nil, err
		}

		return boolConst(truth(rhs)), nil
	}

	rhs, err := w.evaluate(bo.Rhs)
	if err != nil {
		return nil, err
	}

	lt, rt := w.valueType(bo.Lhs), w.valueType(bo.Rhs)
	lp, lok := pointeeOf(lt)
	rp, rok := pointeeOf(rt)

	switch {
	case (bo.Op == ast.OpAdd || bo.Op == ast.OpSub) && lok && !rok:
		return w.offsetAddress(lhs, rhs, lp, bo.Op == ast.OpSub, bo)
	case bo.Op == ast.OpAdd && rok && !lok:
		return w.offsetAddress(rhs, lhs, rp, false, bo)
	case bo.Op == ast.OpSub && lok && rok:
		la, lok := lhs.(*sem.AddressConst)
		ra, rok := rhs.(*sem.AddressConst)
		if !lok || !rok {
			return nil, notConstant(bo)
		}

		delta, ok := addressDelta(la, ra)
		if !ok {
			return nil, notConstant(bo)
		}

		scale, err := w.elementSize(lp, bo.Span())
		if err != nil {
			return nil, err
		} else if scale == 0 {
			return nil, notConstant(bo)
		}

		return sem.IntConst{Value: wrapInt(tr, tr.PtrdiffType, delta/int64(scale))}, nil
	case lok || rok:
		return w.compareAddresses(lhs, rhs, lt, rt, bo)
	}

	var common typing.Type
	switch bo.Op {
	case ast.OpShiftLeft, ast.OpShiftRight:
		common = bo.Props().Type
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual, ast.OpEqual, ast.OpNotEqual:
		common = typing.UsualArithmeticConversion(tr, lt, rt)
	default:
		common = bo.Props().Type
	}

	l, err := w.convert(lhs, lt, common, bo.Span())
	if err != nil {
		return nil, err
	}

	rtype := common
	if bo.Op == ast.OpShiftLeft || bo.Op == ast.OpShiftRight {
		rtype = typing.IntegerPromotion(tr, rt)
	}

	r, err := w.convert(rhs, rt, rtype, bo.Span())
	if err != nil {
		return nil, err
	}

	switch lv := l.(type) {
	case sem.IntConst:
		if rv, ok := r.(sem.IntConst); ok {
			return w.integerOp(bo, common, lv.Value, rtype, rv.Value)
		}
	case sem.FloatConst:
		rv, ok := r.(sem.FloatConst)
		if !ok {
			return nil, notConstant(bo)
		}

		return floatOp(bo, common, lv.Value, rv.Value)
	}

	return w.integerAddressOp(bo, l, r, common)
}

// integerAddressOp applies an operator to an address cast to an integer.  The
// address keeps its base: integers displace it by bytes and addresses with the
// same base may be subtracted or compared.
func (w *Walker) integerAddressOp(bo *ast.BinaryOperation, l, r sem.ConstValue, common typing.Type) (sem.ConstValue, error) {
	la, laddr := l.(*sem.AddressConst)
	ra, raddr := r.(*sem.AddressConst)
	li, lint := l.(sem.IntConst)
	ri, rint := r.(sem.IntConst)

	switch bo.Op {
	case ast.OpAdd:
		switch {
		case laddr && rint:
			return la.WithOffset(ri.Value), nil
		case lint && raddr:
			return ra.WithOffset(li.Value), nil
		}
	case ast.OpSub:
		switch {
		case laddr && rint:
			return la.WithOffset(-ri.Value), nil
		case laddr && raddr:
			if delta, ok := addressDelta(la, ra); ok {
				tr := w.traits()
				bt, _ := typing.AsBasic(tr, common)
				return sem.IntConst{Value: wrapInt(tr, bt, delta)}, nil
			}
		}
	case ast.OpEqual, ast.OpNotEqual, ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		return w.compareAddresses(l, r, common, common, bo)
	}

	return nil, notConstant(bo)
}

// integerOp applies an arithmetic, bitwise or comparison operator to two
// integers converted to the common type of the operation.
func (w *Walker) integerOp(bo *ast.BinaryOperation, common typing.Type, a int64, rtype typing.Type, b int64) (sem.ConstValue, error) {
	tr := w.traits()
	bt, _ := typing.AsBasic(tr, common)
	signed := tr.IsSigned(bt)
	ua, ub := uint64(a), uint64(b)

	var result int64
	switch bo.Op {
	case ast.OpAdd:
		result = a + b
	case ast.OpSub:
		result = a - b
	case ast.OpMul:
		result = a * b
	case ast.OpDiv, ast.OpMod:
		if b == 0 {
			return nil, report.Raise(report.NotConstant, bo.Span(), "division by zero")
		}

		switch {
		case bo.Op == ast.OpDiv && signed:
			result = a / b
		case bo.Op == ast.OpDiv:
			result = int64(ua / ub)
		case signed:
			result = a % b
		default:
			result = int64(ua % ub)
		}
	case ast.OpShiftLeft, ast.OpShiftRight:
		rbt, _ := typing.AsBasic(tr, rtype)
		if tr.IsSigned(rbt) && b < 0 || ub >= uint64(tr.Bits(bt)) {
			return nil, report.Raise(report.NotConstant, bo.Span(), "shift count %d is out of range", b)
		}

		switch {
		case bo.Op == ast.OpShiftLeft:
			result = a << ub
		case signed:
			result = a >> ub
		default:
			result = int64(ua >> ub)
		}
	case ast.OpBitAnd:
		result = a & b
	case ast.OpBitOr:
		result = a | b
	case ast.OpBitXor:
		result = a ^ b
	case ast.OpEqual:
		return boolConst(a == b), nil
	case ast.OpNotEqual:
		return boolConst(a != b), nil
	case ast.OpLess:
		if signed {
			return boolConst(a < b), nil
		}

		return boolConst(ua < ub), nil
	case ast.OpLessEqual:
		if signed {
			return boolConst(a <= b), nil
		}

		return boolConst(ua <= ub), nil
	case ast.OpGreater:
		if signed {
			return boolConst(a > b), nil
		}

		return boolConst(ua > ub), nil
	case ast.OpGreaterEqual:
		if signed {
			return boolConst(a >= b), nil
		}

		return boolConst(ua >= ub), nil
	default:
		return nil, notConstant(bo)
	}

	return sem.IntConst{Value: wrapInt(tr, bt, result)}, nil
}

// floatOp applies an arithmetic or comparison operator to two floating-point
// numbers.
func floatOp(bo *ast.BinaryOperation, common typing.Type, a, b float64) (sem.ConstValue, error) {
	var result float64
	switch bo.Op {
	case ast.OpAdd:
		result = a + b
	case ast.OpSub:
		result = a - b
	case ast.OpMul:
		result = a * b
	case ast.OpDiv:
		result = a / b
	case ast.OpEqual:
		return boolConst(a == b), nil
	case ast.OpNotEqual:
		return boolConst(a != b), nil
	case ast.OpLess:
		return boolConst(a < b), nil
	case ast.OpLessEqual:
		return boolConst(a <= b), nil
	case ast.OpGreater:
		return boolConst(a > b), nil
	case ast.OpGreaterEqual:
		return boolConst(a >= b), nil
	default:
		return nil, notConstant(bo)
	}

	return sem.FloatConst{Value: roundFloat(common, result)}, nil
}

// offsetAddress displaces an address by an integer number of elements.
func (w *Walker) offsetAddress(addr, index sem.ConstValue, pointee typing.Type, negate bool, bo *ast.BinaryOperation) (sem.ConstValue, error) {
	ac, ok := addr.(*sem.AddressConst)
	ic, iok := index.(sem.IntConst)
	if !ok || !iok {
		return nil, notConstant(bo)
	}

	scale, err := w.elementSize(pointee, bo.Span())
	if err != nil {
		return nil, err
	}

	delta := ic.Value * int64(scale)
	if negate {
		delta = -delta
	}

	return ac.WithOffset(delta), nil
}

// compareAddresses evaluates an equality or relational operator with pointer
// operands.
func (w *Walker) compareAddresses(lhs, rhs sem.ConstValue, lt, rt typing.Type, bo *ast.BinaryOperation) (sem.ConstValue, error) {
	la, err := w.toAddress(lhs, lt, bo)
	if err != nil {
		return nil, err
	}

	ra, err := w.toAddress(rhs, rt, bo)
	if err != nil {
		return nil, err
	}

	delta, ok := addressDelta(la, ra)
	if !ok {
		// a null pointer never compares equal to the address of an object
		if (isNullAddress(la) || isNullAddress(ra)) && (bo.Op == ast.OpEqual || bo.Op == ast.OpNotEqual) {
			return boolConst(bo.Op == ast.OpNotEqual), nil
		}

		return nil, notConstant(bo)
	}

	switch bo.Op {
	case ast.OpEqual:
		return boolConst(delta == 0), nil
	case ast.OpNotEqual:
		return boolConst(delta != 0), nil
	case ast.OpLess:
		return boolConst(delta < 0), nil
	case ast.OpLessEqual:
		return boolConst(delta <= 0), nil
	case ast.OpGreater:
		return boolConst(delta > 0), nil
	case ast.OpGreaterEqual:
		return boolConst(delta >= 0), nil
	default:
		return nil, notConstant(bo)
	}
}

func (w *Walker) toAddress(value sem.ConstValue, typ typing.Type, bo *ast.BinaryOperation) (*sem.AddressConst, error) {
	switch v := value.(type) {
	case *sem.AddressConst:
		return v, nil
	case sem.IntConst:
		if typing.IsInteger(typ) {
			return &sem.AddressConst{Base: sem.BaseInteger, Integral: v.Value}, nil
		}
	}

	return nil, notConstant(bo)
}

// addressDelta returns the byte distance between two addresses with the same
// base.
func addressDelta(a, b *sem.AddressConst) (int64, bool) {
	if a.Base != b.Base {
		return 0, false
	}

	switch a.Base {
	case sem.BaseInteger:
		return (a.Integral + a.Offset) - (b.Integral + b.Offset), true
	case sem.BaseStringLiteral:
		if a.Literal != b.Literal {
			return 0, false
		}
	default:
		if a.Symbol != b.Symbol {
			return 0, false
		}
	}

	return a.Offset - b.Offset, true
}

func isNullAddress(ac *sem.AddressConst) bool {
	return ac.Base == sem.BaseInteger && ac.Integral+ac.Offset == 0
}

// elementSize returns the step of pointer arithmetic: one for `void *`.
func (w *Walker) elementSize(pointee typing.Type, span *report.TextSpan) (uint64, error) {
	if typing.IsVoid(pointee) {
		return 1, nil
	}

	size, err := w.sizeOf(pointee)
	return size, report.WithSpan(err, span)
}

// -----------------------------------------------------------------------------

// evaluateAddress computes the address of an lvalue or function designator
// as a symbolic address.
func (w *Walker) evaluateAddress(expr ast.Expr) (*sem.AddressConst, error) {
	switch v := expr.(type) {
	case *ast.Identifier:
		switch sid := v.Props().Scoped.(type) {
		case *sem.Function:
			return &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: sid.Name}, nil
		case *sem.Object:
			if sid.HasStaticStorage() {
				return &sem.AddressConst{Base: sem.BaseIdentifier, Symbol: sid.Symbol}, nil
			}
		}

		return nil, report.Raise(report.NotConstant, v.Span(), "address of `%s` is not constant", v.Name)
	case *ast.StringLiteral:
		lit := v.Props().Literal
		return &sem.AddressConst{Base: sem.BaseStringLiteral, Symbol: lit.Symbol, Literal: lit.Index}, nil
	case *ast.GenericSelection:
		selected, err := w.selectGeneric(v)
		if err != nil {
			return nil, err
		}

		return w.evaluateAddress(selected.Expr)
	case *ast.ArraySubscript:
		ptr, index := v.Array, v.Index
		if !typing.IsPointer(w.valueType(ptr)) {
			ptr, index = index, ptr
		}

		base, err := w.evaluatePointer(ptr)
		if err != nil {
			return nil, err
		}

		n, err := w.evaluate(index)
		if err != nil {
			return nil, err
		}

		ic, ok := n.(sem.IntConst)
		if !ok {
			return nil, notConstant(index)
		}

		size, err := w.sizeOf(v.Props().Type)
		if err != nil {
			return nil, report.WithSpan(err, v.Span())
		}

		return base.WithOffset(ic.Value * int64(size)), nil
	case *ast.StructMember:
		var base *sem.AddressConst
		var err error
		if v.Indirect {
			base, err = w.evaluatePointer(v.Struct)
		} else {
			base, err = w.evaluateAddress(v.Struct)
		}

		if err != nil {
			return nil, err
		}

		stype := v.Struct.Props().Type
		if v.Indirect {
			stype, _ = pointeeOf(w.valueType(v.Struct))
		}

		st := typing.Unqualified(stype).(*typing.StructType)
		_, offset, err := typing.FieldOffset(w.traits(), w, st, v.Member)
		if err != nil {
			return nil, report.WithSpan(err, v.Span())
		}

		return base.WithOffset(int64(offset)), nil
	case *ast.UnaryOperation:
		if v.Op == ast.OpIndirection {
			return w.evaluatePointer(v.Operand)
		}
	}

	return nil, report.Raise(report.NotConstant, expr.Span(), "expression is not an address constant")
}

// evaluatePointer evaluates an expression of pointer type to an address.
func (w *Walker) evaluatePointer(expr ast.Expr) (*sem.AddressConst, error) {
	value, err := w.evaluate(expr)
	if err != nil {
		return nil, err
	}

	ac, ok := value.(*sem.AddressConst)
	if !ok {
		return nil, report.Raise(report.NotConstant, expr.Span(), "expression is not an address constant")
	}

	return ac, nil
}

// -----------------------------------------------------------------------------

// convert converts a constant to a scalar type.
func (w *Walker) convert(value sem.ConstValue, from, to typing.Type, span *report.TextSpan) (sem.ConstValue, error) {
	tr := w.traits()
	to = typing.Unqualified(to)

	switch {
	case typing.IsInteger(to):
		bt, _ := typing.AsBasic(tr, to)

		switch v := value.(type) {
		case sem.IntConst:
			return sem.IntConst{Value: wrapInt(tr, bt, v.Value)}, nil
		case sem.FloatConst:
			if bt == typing.Bool {
				return boolConst(v.Value != 0), nil
			}

			return w.truncateFloat(v.Value, bt, span)
		case *sem.AddressConst:
			switch {
			case v.Base == sem.BaseInteger:
				return sem.IntConst{Value: wrapInt(tr, bt, v.Integral+v.Offset)}, nil
			case bt == typing.Bool:
				return boolConst(true), nil
			case tr.Sizes[bt] >= tr.PointerSize:
				return v, nil
			}
		}
	case typing.IsFloating(to):
		switch v := value.(type) {
		case sem.IntConst:
			bt, _ := typing.AsBasic(tr, from)
			f := float64(v.Value)
			if !tr.IsSigned(bt) {
				f = float64(uint64(v.Value))
			}

			return sem.FloatConst{Value: roundFloat(to, f)}, nil
		case sem.FloatConst:
			return sem.FloatConst{Value: roundFloat(to, v.Value)}, nil
		}
	case typing.IsPointer(to):
		switch v := value.(type) {
		case sem.IntConst:
			return &sem.AddressConst{Base: sem.BaseInteger, Integral: v.Value}, nil
		case *sem.AddressConst:
			return v, nil
		}
	}

	return nil, report.Raise(report.NotConstant, span, "conversion to `%s` is not constant", to.Repr())
}

// truncateFloat converts a floating-point number to an integer type rounding
// toward zero.
func (w *Walker) truncateFloat(f float64, bt typing.BasicType, span *report.TextSpan) (sem.ConstValue, error) {
	tr := w.traits()

	var n int64
	var err error
	if tr.IsSigned(bt) {
		n, err = safecast.Truncate[int64](f)
	} else {
		var u uint64
		u, err = safecast.Truncate[uint64](f)
		n = int64(u)
	}

	if err != nil || wrapInt(tr, bt, n) != n {
		return nil, report.Raise(report.MalformedArgument, span, "floating constant %g is out of range of `%s`", f, bt.Repr())
	}

	return sem.IntConst{Value: n}, nil
}

// truth returns whether a constant compares unequal to zero.
func truth(value sem.ConstValue) bool {
	switch v := value.(type) {
	case sem.IntConst:
		return v.Value != 0
	case sem.FloatConst:
		return v.Value != 0
	case *sem.AddressConst:
		return !isNullAddress(v)
	default:
		return false
	}
}

func boolConst(b bool) sem.IntConst {
	if b {
		return sem.IntConst{Value: 1}
	}

	return sem.IntConst{Value: 0}
}

// wrapInt reduces an integer to the range of an integer type: signed types
// are sign extended and unsigned types zero extended from their width.
func wrapInt(tr *typing.Traits, bt typing.BasicType, v int64) int64 {
	if bt == typing.Bool {
		if v != 0 {
			return 1
		}

		return 0
	}

	bits := tr.Bits(bt)
	if bits == 0 || bits >= 64 {
		return v
	}

	shift := 64 - bits
	if tr.IsSigned(bt) {
		return v << shift >> shift
	}

	return int64(uint64(v) << shift >> shift)
}

// fitsInteger returns whether a value is representable in an integer type.
func fitsInteger(tr *typing.Traits, bt typing.BasicType, v int64) bool {
	bits := tr.Bits(bt)
	if tr.IsSigned(bt) {
		if bits >= 64 {
			return true
		}

		limit := int64(1) << (bits - 1)
		return -limit <= v && v < limit
	}

	if v < 0 {
		return false
	}

	return bits >= 64 || uint64(v) < uint64(1)<<bits
}

// roundFloat rounds a floating-point value to the precision of its type.
func roundFloat(typ typing.Type, f float64) float64 {
	if bt, ok := typing.Unqualified(typ).(typing.BasicType); ok && bt == typing.Float {
		return float64(float32(f))
	}

	return f
}
