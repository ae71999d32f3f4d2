package typemodel

import (
	"github.com/ajitpratap0/recordcol/pkg/errors"
)

// FieldKind is the coarse category of a field or element type that decides
// how it is laid out in a column schema.
type FieldKind int

const (
	Scalar FieldKind = iota
	EnumKind
	Composite
	Collection
	MapKind
)

func (k FieldKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case EnumKind:
		return "enum"
	case Composite:
		return "composite"
	case Collection:
		return "collection"
	case MapKind:
		return "map"
	default:
		return "unknown"
	}
}

// Element describes a resolved type: the type of a field, or the element,
// key or value type of a collection or map. Elements nest for collections of
// collections and maps of collections.
type Element struct {
	Type     *Type
	Kind     FieldKind
	Nullable bool

	Record *Record
	Enum   *Enum

	// Elem is the element of a collection.
	Elem *Element
	// Key and Value describe a map.
	Key   *Element
	Value *Element
}

func (e *Element) IsCollection() bool { return e.Kind == Collection }
func (e *Element) IsMap() bool        { return e.Kind == MapKind }
func (e *Element) IsRecord() bool     { return e.Kind == Composite }

// Parameterize resolves t into an Element, descending into collection
// elements and map keys and values. It fails with an unsupported_type error
// when a type parameter appears anywhere in t or when a map key is not a
// scalar or enum.
func Parameterize(t *Type) (*Element, error) {
	return parameterize(t, t.Nullable())
}

func parameterize(t *Type, nullable bool) (*Element, error) {
	if t == nil {
		return nil, errors.New(errors.ErrorTypeUnsupportedType, "missing type")
	}
	el := &Element{Type: t, Nullable: nullable}
	switch t.kind {
	case KindTypeParam:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
			"type parameter %s is not resolved to a concrete type", t.name).
			WithDetail("type_param", t.name)
	case KindEnum:
		el.Kind = EnumKind
		el.Enum = t.enum
	case KindRecord:
		el.Kind = Composite
		el.Record = t.record
	case KindList:
		el.Kind = Collection
		elem, err := parameterize(t.elem, t.elem != nil && t.elem.Nullable())
		if err != nil {
			return nil, err
		}
		el.Elem = elem
	case KindMap:
		el.Kind = MapKind
		key, err := parameterize(t.key, false)
		if err != nil {
			return nil, err
		}
		if (key.Kind != Scalar && key.Kind != EnumKind) || key.Type.Kind() == KindBytes {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"map key type %s is not supported, keys must be comparable scalars or enums", t.key)
		}
		value, err := parameterize(t.elem, t.elem != nil && t.elem.Nullable())
		if err != nil {
			return nil, err
		}
		el.Key = key
		el.Value = value
	default:
		el.Kind = Scalar
	}
	return el, nil
}
