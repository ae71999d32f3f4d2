package schema

import (
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Physical returns the primitive type and annotation a scalar kind is
// stored as. It reports false for kinds that are not scalars.
func Physical(k typemodel.Kind) (PrimitiveType, LogicalType, bool) {
	switch k {
	case typemodel.KindBool:
		return Boolean, None, true
	case typemodel.KindInt8:
		return Int32, Int8, true
	case typemodel.KindInt16:
		return Int32, Int16, true
	case typemodel.KindInt32:
		return Int32, None, true
	case typemodel.KindInt64:
		return Int64, None, true
	case typemodel.KindFloat32:
		return Float, None, true
	case typemodel.KindFloat64:
		return Double, None, true
	case typemodel.KindString:
		return Binary, String, true
	case typemodel.KindBytes:
		return Binary, None, true
	case typemodel.KindEnum:
		return Binary, Enum, true
	default:
		return 0, None, false
	}
}

// Compatible reports whether a primitive column can carry values of the
// scalar or enum kind k. The same table governs both directions.
//
// Integer columns accept wider targets unconditionally and narrower ones
// only when strict is false, except that a column annotated INT(8) or
// INT(16) already holds values of that width. An INT64 column takes every
// narrower integer when strict is false, not only int16, since writers use
// the same row to store int32 and int8 fields in INT64 columns.
func Compatible(prim PrimitiveType, logical LogicalType, k typemodel.Kind, strict bool) bool {
	switch prim {
	case Int64:
		switch k {
		case typemodel.KindInt64:
			return true
		case typemodel.KindInt32, typemodel.KindInt16, typemodel.KindInt8:
			return !strict
		}
	case Int32:
		switch k {
		case typemodel.KindInt32, typemodel.KindInt64:
			return true
		case typemodel.KindInt16:
			return !strict || logical == Int8 || logical == Int16
		case typemodel.KindInt8:
			return !strict || logical == Int8
		}
	case Float:
		return k == typemodel.KindFloat32 || k == typemodel.KindFloat64
	case Double:
		switch k {
		case typemodel.KindFloat64:
			return true
		case typemodel.KindFloat32:
			return !strict
		}
	case Boolean:
		return k == typemodel.KindBool
	case Binary:
		switch logical {
		case String:
			return k == typemodel.KindString
		case Enum:
			return k == typemodel.KindString || k == typemodel.KindEnum
		case None:
			return k == typemodel.KindBytes
		}
	}
	return false
}
