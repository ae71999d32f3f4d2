package typemodel

import (
	"strings"
)

// Kind identifies the shape of a Type.
type Kind int

const (
	KindBool Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindEnum
	KindRecord
	KindList
	KindMap
	// KindTypeParam is an unresolved type parameter. It can be declared so a
	// generic record can be described, but no schema can be built from it.
	KindTypeParam
)

var kindNames = [...]string{
	KindBool:      "bool",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindString:    "string",
	KindBytes:     "bytes",
	KindEnum:      "enum",
	KindRecord:    "record",
	KindList:      "list",
	KindMap:       "map",
	KindTypeParam: "typeparam",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsNumeric reports whether k is one of the integer or floating point kinds.
func (k Kind) IsNumeric() bool {
	return k >= KindInt8 && k <= KindFloat64
}

// IsScalar reports whether k maps to a single primitive column.
func (k Kind) IsScalar() bool {
	return k <= KindBytes
}

// Type describes the declared type of a field, a list element or a map
// key/value. Types are immutable; the package level scalar values may be
// shared freely.
type Type struct {
	kind     Kind
	nullable bool
	name     string
	enum     *Enum
	record   *Record
	elem     *Type
	key      *Type
}

// Unboxed scalar types. Fields of these types can never hold null.
var (
	Bool    = &Type{kind: KindBool}
	Int8    = &Type{kind: KindInt8}
	Int16   = &Type{kind: KindInt16}
	Int32   = &Type{kind: KindInt32}
	Int64   = &Type{kind: KindInt64}
	Float32 = &Type{kind: KindFloat32}
	Float64 = &Type{kind: KindFloat64}
)

// Reference scalar types. They are nullable unless the field is declared NotNull.
var (
	String = &Type{kind: KindString, nullable: true}
	Bytes  = &Type{kind: KindBytes, nullable: true}
)

// Boxed returns the nullable variant of an unboxed scalar type. Reference
// types are returned unchanged.
func Boxed(t *Type) *Type {
	if t.nullable {
		return t
	}
	c := *t
	c.nullable = true
	return &c
}

// EnumOf returns the type of fields holding a symbol of e.
func EnumOf(e *Enum) *Type {
	return &Type{kind: KindEnum, nullable: true, enum: e, name: e.Name()}
}

// RecordOf returns the type of fields holding a nested r value.
func RecordOf(r *Record) *Type {
	return &Type{kind: KindRecord, nullable: true, record: r, name: r.Name()}
}

// ListOf returns a collection type with the given element type. Use a boxed
// or reference element type when elements may be null.
func ListOf(elem *Type) *Type {
	return &Type{kind: KindList, nullable: true, elem: elem}
}

// MapOf returns a map type.
func MapOf(key, value *Type) *Type {
	return &Type{kind: KindMap, nullable: true, key: key, elem: value}
}

// TypeParam returns an unresolved type parameter named name.
func TypeParam(name string) *Type {
	return &Type{kind: KindTypeParam, nullable: true, name: name}
}

func (t *Type) Kind() Kind      { return t.kind }
func (t *Type) Nullable() bool  { return t.nullable }
func (t *Type) Enum() *Enum     { return t.enum }
func (t *Type) Record() *Record { return t.record }

// Elem returns the element type of a list or the value type of a map.
func (t *Type) Elem() *Type { return t.elem }

// Key returns the key type of a map.
func (t *Type) Key() *Type { return t.key }

// Equivalent reports whether a and b describe the same type, treating boxed
// and unboxed scalars as equal. Records and enums compare by identity.
func Equivalent(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindEnum:
		return a.enum == b.enum
	case KindRecord:
		return a.record == b.record
	case KindList:
		return Equivalent(a.elem, b.elem)
	case KindMap:
		return Equivalent(a.key, b.key) && Equivalent(a.elem, b.elem)
	case KindTypeParam:
		return a.name == b.name
	default:
		return true
	}
}

func (t *Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	switch t.kind {
	case KindEnum, KindRecord, KindTypeParam:
		sb.WriteString(t.name)
	case KindList:
		sb.WriteString("list<")
		t.elem.write(sb)
		sb.WriteString(">")
	case KindMap:
		sb.WriteString("map<")
		t.key.write(sb)
		sb.WriteString(", ")
		t.elem.write(sb)
		sb.WriteString(">")
	default:
		if t.nullable && t.kind != KindString && t.kind != KindBytes {
			sb.WriteString("*")
		}
		sb.WriteString(t.kind.String())
	}
}
