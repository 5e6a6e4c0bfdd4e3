package walk

import (
	"csem/ast"
	"csem/report"
	"csem/typing"

	"fortio.org/safecast"
)

// AnalyzeType validates a type recursively: array element types, struct
// fields and bit-fields, enumeration underlying types and function
// signatures.  Types reached through pointers are validated once.
func (w *Walker) AnalyzeType(typ typing.Type, span *report.TextSpan) error {
	return w.analyzeType(typ, span, make(map[typing.Type]struct{}))
}

func (w *Walker) analyzeType(typ typing.Type, span *report.TextSpan, visited map[typing.Type]struct{}) error {
	if _, ok := typ.(typing.BasicType); !ok {
		if _, ok := visited[typ]; ok {
			return nil
		}

		visited[typ] = struct{}{}
	}

	switch v := typ.(type) {
	case typing.BasicType:
		return nil
	case *typing.QualifiedType:
		return w.analyzeType(v.Base, span, visited)
	case *typing.PointerType:
		return w.analyzeType(v.Referenced, span, visited)
	case *typing.ArrayType:
		if err := w.validateArrayElement(v.Elem, span); err != nil {
			return err
		}

		if !v.Qualification.Empty() || v.Boundary == typing.BoundedStatic || v.Boundary == typing.VLAStatic {
			return report.Raise(report.MalformedArgument, span, "type qualifiers or `static` in an array declarator outside of a function parameter")
		}

		if expr, ok := v.VLALength.(ast.Expr); ok && !typing.IsInteger(expr.Props().Type) {
			return report.Raise(report.MalformedArgument, span, "size of array has non-integer type")
		}

		return w.analyzeType(v.Elem, span, visited)
	case *typing.StructType:
		if !v.Complete {
			return nil
		}

		if err := w.validateStruct(v, span); err != nil {
			return err
		}

		for _, field := range v.Fields {
			if err := w.analyzeType(field.Type, span, visited); err != nil {
				return err
			}
		}

		return nil
	case *typing.EnumType:
		if bt, ok := typing.AsBasic(w.traits(), v); !ok || !bt.IsInteger() || bt == typing.Bool {
			return report.Raise(report.MalformedArgument, span, "underlying type of `%s` is not an integer type", v.Repr())
		}

		return nil
	case *typing.FunctionType:
		switch typing.Unqualified(v.Return).(type) {
		case *typing.ArrayType, *typing.FunctionType:
			return report.Raise(report.MalformedArgument, span, "function cannot return `%s`", v.Return.Repr())
		}

		if err := w.analyzeType(v.Return, span, visited); err != nil {
			return err
		}

		if v.Mode != typing.ParameterList {
			return nil
		}

		for _, param := range v.Params {
			if typing.IsVoid(param.Type) {
				return report.Raise(report.MalformedArgument, span, "`void` must be the only parameter and unnamed")
			}

			if !typing.IsComplete(param.Adjusted) {
				return report.Raise(report.MalformedArgument, span, "parameter `%s` has incomplete type `%s`", param.Name, param.Type.Repr())
			}

			if err := w.validateParameterArray(param.Type, span); err != nil {
				return err
			}
		}

		return nil
	default:
		report.Assert(false, "unexpected type %T", typ)
		return nil
	}
}

// validateArrayElement checks that a type may be the element type of an
// array.
func (w *Walker) validateArrayElement(elem typing.Type, span *report.TextSpan) error {
	if typing.IsFunction(elem) {
		return report.Raise(report.MalformedArgument, span, "array of functions `%s`", elem.Repr())
	}

	if !typing.IsComplete(elem) {
		return report.Raise(report.MalformedArgument, span, "array has incomplete element type `%s`", elem.Repr())
	}

	return nil
}

// validateArrayQualifiers checks that no array type derived by a declarator
// carries qualifiers or `static`: these are only legal at the outermost
// array of a parameter.
func (w *Walker) validateArrayQualifiers(typ typing.Type, span *report.TextSpan) error {
	for typ != nil {
		switch v := typ.(type) {
		case *typing.QualifiedType:
			typ = v.Base
		case *typing.PointerType:
			typ = v.Referenced
		case *typing.ArrayType:
			if !v.Qualification.Empty() || v.Boundary == typing.BoundedStatic || v.Boundary == typing.VLAStatic {
				return report.Raise(report.MalformedArgument, span, "type qualifiers or `static` in an array declarator outside of a function parameter")
			}

			typ = v.Elem
		case *typing.FunctionType:
			typ = v.Return
		default:
			return nil
		}
	}

	return nil
}

// validateParameterArray checks the array qualifiers of a parameter type: the
// outermost array may carry them.
func (w *Walker) validateParameterArray(typ typing.Type, span *report.TextSpan) error {
	if at, ok := typ.(*typing.ArrayType); ok {
		return w.validateArrayQualifiers(at.Elem, span)
	}

	return w.validateArrayQualifiers(typ, span)
}

// validateStruct checks the fields of a structure or union.
func (w *Walker) validateStruct(st *typing.StructType, span *report.TextSpan) error {
	for i, field := range st.Fields {
		if field.Bitfield {
			if err := w.validateBitfield(field, span); err != nil {
				return err
			}

			continue
		}

		if at, ok := typing.Unqualified(field.Type).(*typing.ArrayType); ok && at.Boundary == typing.Unbounded {
			switch {
			case st.Union:
				return report.Raise(report.MalformedArgument, span, "flexible array member `%s` in a union", field.Name)
			case i != len(st.Fields)-1:
				return report.Raise(report.MalformedArgument, span, "flexible array member `%s` is not at the end of the struct", field.Name)
			case i == 0:
				return report.Raise(report.MalformedArgument, span, "flexible array member `%s` in an otherwise empty struct", field.Name)
			}

			continue
		}

		switch {
		case typing.IsFunction(field.Type):
			return report.Raise(report.MalformedArgument, span, "field `%s` declared as a function", field.Name)
		case !typing.IsComplete(field.Type):
			return report.Raise(report.MalformedArgument, span, "field `%s` has incomplete type `%s`", field.Name, field.Type.Repr())
		case typing.IsVariablyModified(field.Type):
			return report.Raise(report.MalformedArgument, span, "field `%s` has variably modified type `%s`", field.Name, field.Type.Repr())
		}
	}

	return nil
}

// validateBitfield checks the type and width of a bit-field.
func (w *Walker) validateBitfield(field *typing.StructField, span *report.TextSpan) error {
	if !typing.QualificationOf(field.Type).Empty() {
		return report.Raise(report.MalformedArgument, span, "qualified bit-field `%s`", field.Name)
	}

	if field.Alignment != 0 {
		return report.Raise(report.MalformedArgument, span, "alignment specified for bit-field `%s`", field.Name)
	}

	bt, ok := typing.AsBasic(w.traits(), field.Type)
	if !ok || !bt.IsInteger() {
		return report.Raise(report.MalformedArgument, span, "bit-field `%s` has invalid type `%s`", field.Name, field.Type.Repr())
	}

	if field.Bitwidth > uint64(w.traits().Bits(bt)) {
		return report.Raise(report.MalformedArgument, span, "width of bit-field `%s` (%d bits) exceeds its type (%d bits)", field.Name, field.Bitwidth, w.traits().Bits(bt))
	}

	if field.Bitwidth == 0 && field.Name != "" {
		return report.Raise(report.MalformedArgument, span, "named bit-field `%s` has zero width", field.Name)
	}

	return nil
}

// toLength converts an evaluated array length.
func (w *Walker) toLength(expr ast.Expr, value int64) (uint64, error) {
	length, err := safecast.Conv[uint64](value)
	if err != nil {
		return 0, report.Raise(report.MalformedArgument, expr.Span(), "size of array is negative")
	}

	return length, nil
}
