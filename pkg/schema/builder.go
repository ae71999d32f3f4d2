package schema

import (
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Builder derives column schemas from record types.
type Builder struct {
	opts BuildOptions
}

// NewBuilder returns a Builder using opts.
func NewBuilder(opts BuildOptions) *Builder {
	return &Builder{opts: opts}
}

// Options returns the options the builder was created with.
func (b *Builder) Options() BuildOptions { return b.opts }

// Build returns the schema of r. The message is named after the record and
// holds one node per field, in declaration order.
//
// Build fails with unsupported_type when a field type cannot be expressed
// under the configured list level, and with recursive_type when a record
// contains itself on any path.
func (b *Builder) Build(r *typemodel.Record) (*Schema, error) {
	visiting := make(map[*typemodel.Record]bool)
	fields, err := b.record(r.Name(), r, visiting)
	if err != nil {
		return nil, err
	}
	return &Schema{Name: r.Name(), Fields: fields}, nil
}

func (b *Builder) record(path string, r *typemodel.Record, visiting map[*typemodel.Record]bool) ([]*Node, error) {
	if visiting[r] {
		return nil, errors.Newf(errors.ErrorTypeRecursiveType,
			"record %s contains itself at %s", r.Name(), path).
			WithDetail("record", r.Name()).
			WithDetail("path", path)
	}
	visiting[r] = true
	defer delete(visiting, r)

	descs, err := r.Descriptors()
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(descs))
	for _, d := range descs {
		col := d.Column(b.opts.Naming)
		n, err := b.node(path+"."+col, col, d.Element, repetitionOf(d.Nullable), visiting)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (b *Builder) node(path, name string, el *typemodel.Element, rep Repetition, visiting map[*typemodel.Record]bool) (*Node, error) {
	switch el.Kind {
	case typemodel.Scalar, typemodel.EnumKind:
		prim, logical, ok := Physical(el.Type.Kind())
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"%s: type %s has no column representation", path, el.Type).
				WithDetail("path", path)
		}
		return NewPrimitive(name, rep, prim, logical), nil
	case typemodel.Composite:
		children, err := b.record(path, el.Record, visiting)
		if err != nil {
			return nil, err
		}
		return NewGroup(name, rep, None, children...), nil
	case typemodel.Collection:
		return b.list(path, name, el, rep, visiting)
	case typemodel.MapKind:
		return b.mapNode(path, name, el, rep, visiting)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
			"%s: unknown field kind %s", path, el.Kind).
			WithDetail("path", path)
	}
}

func (b *Builder) list(path, name string, el *typemodel.Element, rep Repetition, visiting map[*typemodel.Record]bool) (*Node, error) {
	switch b.opts.level() {
	case OneLevel:
		if el.Elem.IsCollection() {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"%s: nested collection %s cannot be written with one-level lists", path, el.Type).
				WithDetail("path", path)
		}
		return b.node(path, name, el.Elem, Repeated, visiting)
	case TwoLevel:
		elem, err := b.node(path+".element", "element", el.Elem, Repeated, visiting)
		if err != nil {
			return nil, err
		}
		// Readers take a repeated group holding a single "element" for the
		// middle group of a three-level list.
		if elem.Group && elem.Logical == None && len(elem.Children) == 1 && elem.Children[0].Name == "element" {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"%s: a record whose only column is \"element\" cannot be written with two-level lists", path).
				WithDetail("path", path)
		}
		return NewGroup(name, rep, List, elem), nil
	default:
		elem, err := b.node(path+".element", "element", el.Elem, repetitionOf(el.Elem.Nullable), visiting)
		if err != nil {
			return nil, err
		}
		return NewGroup(name, rep, List, NewGroup("list", Repeated, None, elem)), nil
	}
}

func (b *Builder) mapNode(path, name string, el *typemodel.Element, rep Repetition, visiting map[*typemodel.Record]bool) (*Node, error) {
	key, err := b.node(path+".key", "key", el.Key, Required, visiting)
	if err != nil {
		return nil, err
	}
	value, err := b.node(path+".value", "value", el.Value, repetitionOf(el.Value.Nullable), visiting)
	if err != nil {
		return nil, err
	}
	return NewGroup(name, rep, Map, NewGroup("key_value", Repeated, None, key, value)), nil
}
