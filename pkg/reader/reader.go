// Package reader builds converter trees that rebuild record values from
// column read events. Value problems only fail the record they occur in.
package reader

import (
	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Options configures tree building.
type Options struct {
	Naming             typemodel.Naming
	StrictNumericTypes bool
}

// Materializer reassembles records from the events its converters
// receive. It holds per-session state and is not safe for concurrent use.
type Materializer struct {
	record *typemodel.Record
	schema *schema.Schema
	root   *converter

	stack   []*frame
	current any
	err     error
}

// Root returns the converter of the message root.
func (m *Materializer) Root() columnio.GroupConverter { return m.root }

func (m *Materializer) Record() *typemodel.Record { return m.record }
func (m *Materializer) Schema() *schema.Schema    { return m.schema }

// Current returns the most recently completed record.
func (m *Materializer) Current() (any, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.current, nil
}

// fail records the first error of the current record.
func (m *Materializer) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

type builder struct {
	m     *Materializer
	opts  Options
	ctors map[*typemodel.Record]*typemodel.ConstructorHandle
}

// Build returns a materializer reading projected into values of r.
// projected is normally the output of schema.Filter.Project; every column
// in it must be declared by r. Build fails with schema_mismatch when a
// column does not fit its field and with construction when r or a nested
// record has no usable constructor.
func Build(projected *schema.Schema, r *typemodel.Record, opts Options) (*Materializer, error) {
	m := &Materializer{record: r, schema: projected}
	b := &builder{m: m, opts: opts, ctors: make(map[*typemodel.Record]*typemodel.ConstructorHandle)}
	root, err := b.record(r.Name(), r, projected.Fields)
	if err != nil {
		return nil, err
	}
	m.root = root
	return m, nil
}

func (b *builder) bind(r *typemodel.Record) (*typemodel.ConstructorHandle, error) {
	if h, ok := b.ctors[r]; ok {
		return h, nil
	}
	h, err := typemodel.Bind(r)
	if err != nil {
		return nil, err
	}
	b.ctors[r] = h
	return h, nil
}

func (b *builder) record(path string, r *typemodel.Record, columns []*schema.Node) (*converter, error) {
	h, err := b.bind(r)
	if err != nil {
		return nil, err
	}
	descs, err := r.Descriptors()
	if err != nil {
		return nil, err
	}
	byColumn := make(map[string]typemodel.FieldDescriptor, len(descs))
	for _, d := range descs {
		byColumn[d.Column(b.opts.Naming)] = d
	}

	c := b.newGroup(recordConverter, path)
	c.ctor = h
	c.arity = h.Arity()
	for i, n := range columns {
		d, ok := byColumn[n.Name]
		if !ok {
			return nil, mismatch(path+"."+n.Name, "column %s is not declared by %s", n.Name, r.Name())
		}
		child, repeated, err := b.slot(path+"."+n.Name, n, d.Element)
		if err != nil {
			return nil, err
		}
		c.addChild(i, child, d.Index, repeated)
	}
	return c, nil
}

// slot builds the converter of a column holding values of el. repeated
// reports a one-level list, whose element values arrive one by one.
func (b *builder) slot(path string, n *schema.Node, el *typemodel.Element) (*converter, bool, error) {
	if n.Repetition == schema.Optional && !el.Nullable {
		return nil, false, mismatch(path, "non-null %s cannot read OPTIONAL column %s", el.Type, n.Name)
	}
	if el.IsCollection() {
		elem, level, err := schema.ListElement(n)
		if err != nil {
			return nil, false, mismatch(path, "%s cannot read column: %v", el.Type, err)
		}
		if level == schema.OneLevel {
			if el.Elem.IsCollection() {
				return nil, false, mismatch(path, "nested collection %s cannot read one-level list %s", el.Type, n.Name)
			}
			c, err := b.value(path, n, el.Elem)
			return c, true, err
		}
		c, err := b.list(path, n, el, elem, level)
		return c, false, err
	}
	if n.Repetition == schema.Repeated {
		return nil, false, mismatch(path, "%s cannot read REPEATED column %s", el.Type, n.Name)
	}
	c, err := b.value(path, n, el)
	return c, false, err
}

// value builds the converter of n, ignoring its repetition.
func (b *builder) value(path string, n *schema.Node, el *typemodel.Element) (*converter, error) {
	switch el.Kind {
	case typemodel.Scalar, typemodel.EnumKind:
		if n.Group {
			return nil, mismatch(path, "%s cannot read %s column %s", el.Type, n.Kind(), n.Name)
		}
		if !schema.Compatible(n.Type, n.Logical, el.Type.Kind(), b.opts.StrictNumericTypes) {
			return nil, mismatch(path, "%s cannot read column %s of type %s", el.Type, n.Name, n.Type)
		}
		return &converter{
			kind:   primitiveConverter,
			m:      b.m,
			path:   path,
			prim:   n.Type,
			target: el.Type.Kind(),
			enum:   el.Enum,
		}, nil
	case typemodel.Composite:
		if !n.Group || n.Logical != schema.None {
			return nil, mismatch(path, "record %s cannot read %s column %s", el.Record.Name(), n.Kind(), n.Name)
		}
		return b.record(path, el.Record, n.Children)
	case typemodel.Collection:
		elem, level, err := schema.ListElement(n)
		if err != nil {
			return nil, mismatch(path, "%s cannot read column: %v", el.Type, err)
		}
		if level == schema.OneLevel {
			return nil, mismatch(path, "%s cannot read nested one-level list %s", el.Type, n.Name)
		}
		return b.list(path, n, el, elem, level)
	case typemodel.MapKind:
		return b.mapValue(path, n, el)
	default:
		return nil, mismatch(path, "unknown field kind %s", el.Kind)
	}
}

func (b *builder) list(path string, n *schema.Node, el *typemodel.Element, elem *schema.Node, level schema.ListLevel) (*converter, error) {
	lc := b.newGroup(listConverter, path)
	if level == schema.TwoLevel {
		ec, err := b.value(path+"."+elem.Name, elem, el.Elem)
		if err != nil {
			return nil, err
		}
		lc.addChild(0, ec, 0, false)
		return lc, nil
	}

	item := b.newGroup(itemConverter, path+"."+n.Children[0].Name)
	item.arity = 1
	ec, repeated, err := b.slot(path+"."+elem.Name, elem, el.Elem)
	if err != nil {
		return nil, err
	}
	item.addChild(0, ec, 0, repeated)
	lc.addChild(0, item, 0, false)
	return lc, nil
}

func (b *builder) mapValue(path string, n *schema.Node, el *typemodel.Element) (*converter, error) {
	key, value, err := schema.MapEntry(n)
	if err != nil {
		return nil, mismatch(path, "%s cannot read column: %v", el.Type, err)
	}
	kc, _, err := b.slot(path+"."+key.Name, key, el.Key)
	if err != nil {
		return nil, err
	}
	vc, repeated, err := b.slot(path+"."+value.Name, value, el.Value)
	if err != nil {
		return nil, err
	}
	entry := b.newGroup(entryConverter, path+"."+n.Children[0].Name)
	entry.arity = 2
	entry.addChild(0, kc, 0, false)
	entry.addChild(1, vc, 1, repeated)

	mc := b.newGroup(mapConverter, path)
	mc.addChild(0, entry, 0, false)
	return mc, nil
}

func (b *builder) newGroup(kind converterKind, path string) *converter {
	return &converter{kind: kind, m: b.m, path: path}
}

func mismatch(path, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeSchemaMismatch, format, args...).WithDetail("path", path)
}
