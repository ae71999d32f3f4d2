package schema

import (
	"fmt"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Filter projects stored schemas onto record types for reading.
type Filter struct {
	opts FilterOptions
}

// NewFilter returns a Filter using opts.
func NewFilter(opts FilterOptions) *Filter {
	return &Filter{opts: opts}
}

// Options returns the options the filter was created with.
func (f *Filter) Options() FilterOptions { return f.opts }

// Project returns the subset of file that r reads. Columns keep the file's
// names, types and nesting, and appear in file order; only columns some
// field of r binds to are kept.
//
// Project fails with schema_mismatch when a field of r has no column and
// neither IgnoreUnknownFields nor AllowMissingFields is set, when a
// column's type is not compatible with its field, or when a non-null field
// binds to an OPTIONAL column. Columns r does not declare are left out.
func (f *Filter) Project(r *typemodel.Record, file *Schema) (*Schema, error) {
	fields, err := f.group(r.Name(), r, file.Fields)
	if err != nil {
		return nil, err
	}
	return &Schema{Name: file.Name, Fields: fields}, nil
}

func (f *Filter) group(path string, r *typemodel.Record, columns []*Node) ([]*Node, error) {
	descs, err := r.Descriptors()
	if err != nil {
		return nil, err
	}
	projected := make([]*Node, len(columns))
	for _, d := range descs {
		col := d.Column(f.opts.Naming)
		n, idx := lookup(columns, col)
		if n == nil {
			if f.opts.IgnoreUnknownFields || f.opts.AllowMissingFields {
				continue
			}
			return nil, mismatch(path+"."+col, "field %s.%s has no column %q", r.Name(), d.Name, col)
		}
		p, err := f.field(path+"."+col, n, d.Element)
		if err != nil {
			return nil, err
		}
		projected[idx] = p
	}

	out := make([]*Node, 0, len(descs))
	for _, p := range projected {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// field checks the repetition of n against el before matching its shape.
func (f *Filter) field(path string, n *Node, el *typemodel.Element) (*Node, error) {
	switch n.Repetition {
	case Optional:
		if !el.Nullable {
			return nil, mismatch(path, "non-null %s cannot read OPTIONAL column %s", el.Type, n.Name)
		}
	case Repeated:
		if !el.IsCollection() {
			return nil, mismatch(path, "%s cannot read REPEATED column %s", el.Type, n.Name)
		}
	}
	return f.value(path, n, el)
}

// value matches the shape of n against el, ignoring repetition.
func (f *Filter) value(path string, n *Node, el *typemodel.Element) (*Node, error) {
	switch el.Kind {
	case typemodel.Scalar, typemodel.EnumKind:
		if n.Group {
			return nil, mismatch(path, "%s cannot read %s column %s", el.Type, n.Kind(), n.Name)
		}
		if !Compatible(n.Type, n.Logical, el.Type.Kind(), f.opts.StrictNumericTypes) {
			return nil, mismatch(path, "%s cannot read column %s of type %s", el.Type, n.Name, describe(n))
		}
		return n, nil
	case typemodel.Composite:
		if !n.Group || n.Logical != None {
			return nil, mismatch(path, "record %s cannot read %s column %s", el.Record.Name(), n.Kind(), n.Name)
		}
		children, err := f.group(path, el.Record, n.Children)
		if err != nil {
			return nil, err
		}
		return NewGroup(n.Name, n.Repetition, n.Logical, children...), nil
	case typemodel.Collection:
		return f.list(path, n, el)
	case typemodel.MapKind:
		return f.mapNode(path, n, el)
	default:
		return nil, mismatch(path, "unknown field kind %s", el.Kind)
	}
}

func (f *Filter) list(path string, n *Node, el *typemodel.Element) (*Node, error) {
	elem, level, err := ListElement(n)
	if err != nil {
		return nil, mismatch(path, "%s cannot read column: %v", el.Type, err)
	}
	switch level {
	case OneLevel:
		if el.Elem.IsCollection() {
			return nil, mismatch(path, "nested collection %s cannot read one-level list %s", el.Type, n.Name)
		}
		return f.value(path, n, el.Elem)
	case TwoLevel:
		p, err := f.value(path+"."+elem.Name, elem, el.Elem)
		if err != nil {
			return nil, err
		}
		return NewGroup(n.Name, n.Repetition, n.Logical, p), nil
	default:
		p, err := f.field(path+"."+elem.Name, elem, el.Elem)
		if err != nil {
			return nil, err
		}
		mid := n.Children[0]
		return NewGroup(n.Name, n.Repetition, n.Logical, NewGroup(mid.Name, mid.Repetition, mid.Logical, p)), nil
	}
}

func (f *Filter) mapNode(path string, n *Node, el *typemodel.Element) (*Node, error) {
	key, value, err := MapEntry(n)
	if err != nil {
		return nil, mismatch(path, "%s cannot read column: %v", el.Type, err)
	}
	pk, err := f.field(path+".key", key, el.Key)
	if err != nil {
		return nil, err
	}
	pv, err := f.field(path+".value", value, el.Value)
	if err != nil {
		return nil, err
	}
	kv := n.Children[0]
	return NewGroup(n.Name, n.Repetition, n.Logical, NewGroup(kv.Name, kv.Repetition, kv.Logical, pk, pv)), nil
}

func describe(n *Node) string {
	if n.Logical == None {
		return n.Type.String()
	}
	return fmt.Sprintf("%s (%s)", n.Type, n.Logical)
}

func mismatch(path, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeSchemaMismatch, format, args...).WithDetail("path", path)
}
