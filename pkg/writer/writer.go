// Package writer builds writer trees that walk record values and emit
// column write events. Trees are immutable and may be shared.
package writer

import (
	"fmt"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

// Options configures tree building.
type Options struct {
	// Level is the list level the schema was built with. Zero means
	// three-level.
	Level              schema.ListLevel
	Naming             typemodel.Naming
	StrictNumericTypes bool
}

// RecordWriter writes values of one record type.
type RecordWriter struct {
	record *typemodel.Record
	schema *schema.Schema
	root   *groupWriter
}

func (w *RecordWriter) Record() *typemodel.Record { return w.record }
func (w *RecordWriter) Schema() *schema.Schema    { return w.schema }

type kind int

const (
	scalarWriter kind = iota
	recordWriter
	listWriter
	mapWriter
)

// valueWriter writes one non-null value of a slot. The variant is fixed at
// build time.
type valueWriter struct {
	kind kind
	path string

	// scalar
	prim   schema.PrimitiveType
	source typemodel.Kind
	enum   *typemodel.Enum

	// record
	group *groupWriter

	// list: elem is written in slot (name, 0) of the repeated group; for
	// three-level lists the slot sits inside the middle group named mid.
	level        schema.ListLevel
	mid          string
	elemName     string
	elemRequired bool
	elem         *valueWriter

	// map
	entry         string
	key           *valueWriter
	keyName       string
	valueName     string
	valueRequired bool
	value         *valueWriter
}

type fieldWriter struct {
	name     string
	index    int
	required bool
	get      typemodel.Getter
	value    *valueWriter
}

type groupWriter struct {
	record *typemodel.Record
	fields []fieldWriter
}

type builder struct {
	opts Options
}

// Build binds the fields of r to the columns of s and returns the writer
// tree. Every field must bind to exactly one column by wire name, and
// every REQUIRED column must have a field. Build fails with
// schema_mismatch when a field type does not fit its column and with
// unsupported_type for types the list level cannot express.
func Build(r *typemodel.Record, s *schema.Schema, opts Options) (*RecordWriter, error) {
	if opts.Level == 0 {
		opts.Level = schema.ThreeLevel
	}
	b := &builder{opts: opts}
	root, err := b.group(r.Name(), r, s.Fields)
	if err != nil {
		return nil, err
	}
	return &RecordWriter{record: r, schema: s, root: root}, nil
}

func (b *builder) group(path string, r *typemodel.Record, columns []*schema.Node) (*groupWriter, error) {
	descs, err := r.Descriptors()
	if err != nil {
		return nil, err
	}
	byColumn := make(map[string]int, len(descs))
	for i, d := range descs {
		byColumn[d.Column(b.opts.Naming)] = i
	}

	g := &groupWriter{record: r, fields: make([]fieldWriter, 0, len(descs))}
	for idx, n := range columns {
		di, ok := byColumn[n.Name]
		if !ok {
			if n.Repetition == schema.Required {
				return nil, mismatch(path+"."+n.Name, "required column %s has no field in %s", n.Name, r.Name())
			}
			continue
		}
		delete(byColumn, n.Name)
		d := descs[di]
		vw, err := b.slot(path+"."+n.Name, n, d.Element)
		if err != nil {
			return nil, err
		}
		g.fields = append(g.fields, fieldWriter{
			name:     n.Name,
			index:    idx,
			required: n.Repetition == schema.Required,
			get:      d.Get,
			value:    vw,
		})
	}
	for _, d := range descs {
		col := d.Column(b.opts.Naming)
		if _, unbound := byColumn[col]; unbound {
			return nil, mismatch(path+"."+col, "field %s.%s has no column", r.Name(), d.Name)
		}
	}
	return g, nil
}

// slot builds the writer of a field, map key or map value column. Only
// one-level lists may occupy a REPEATED slot.
func (b *builder) slot(path string, n *schema.Node, el *typemodel.Element) (*valueWriter, error) {
	if n.Repetition == schema.Repeated && (!el.IsCollection() || b.opts.Level != schema.OneLevel) {
		return nil, mismatch(path, "%s cannot be written to REPEATED column %s", el.Type, n.Name)
	}
	return b.value(path, n, el)
}

// value builds the writer of n, which holds values of el.
func (b *builder) value(path string, n *schema.Node, el *typemodel.Element) (*valueWriter, error) {
	switch el.Kind {
	case typemodel.Scalar, typemodel.EnumKind:
		if n.Group {
			return nil, mismatch(path, "%s cannot be written to %s column %s", el.Type, n.Kind(), n.Name)
		}
		if !schema.Compatible(n.Type, n.Logical, el.Type.Kind(), b.opts.StrictNumericTypes) {
			return nil, mismatch(path, "%s cannot be written to %s column %s", el.Type, columnType(n), n.Name)
		}
		return &valueWriter{kind: scalarWriter, path: path, prim: n.Type, source: el.Type.Kind(), enum: el.Enum}, nil
	case typemodel.Composite:
		if !n.Group || n.Logical != schema.None {
			return nil, mismatch(path, "record %s cannot be written to %s column %s", el.Record.Name(), n.Kind(), n.Name)
		}
		g, err := b.group(path, el.Record, n.Children)
		if err != nil {
			return nil, err
		}
		return &valueWriter{kind: recordWriter, path: path, group: g}, nil
	case typemodel.Collection:
		return b.list(path, n, el)
	case typemodel.MapKind:
		return b.mapValue(path, n, el)
	default:
		return nil, mismatch(path, "unknown field kind %s", el.Kind)
	}
}

func (b *builder) list(path string, n *schema.Node, el *typemodel.Element) (*valueWriter, error) {
	lw := &valueWriter{kind: listWriter, path: path, level: b.opts.Level}
	switch b.opts.Level {
	case schema.OneLevel:
		if el.Elem.IsCollection() {
			return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
				"%s: nested collection %s cannot be written with one-level lists", path, el.Type).
				WithDetail("path", path)
		}
		if n.Repetition != schema.Repeated || n.IsList() {
			return nil, mismatch(path, "column %s is not a one-level list", n.Name)
		}
		// the repeated column carries the elements directly
		ew, err := b.value(path, n, el.Elem)
		if err != nil {
			return nil, err
		}
		lw.elem = ew
	case schema.TwoLevel:
		if !n.IsList() || len(n.Children) != 1 || n.Children[0].Repetition != schema.Repeated {
			return nil, mismatch(path, "column %s is not a two-level list", n.Name)
		}
		en := n.Children[0]
		ew, err := b.value(path+"."+en.Name, en, el.Elem)
		if err != nil {
			return nil, err
		}
		lw.elemName, lw.elem = en.Name, ew
	default:
		if !n.IsList() || len(n.Children) != 1 {
			return nil, mismatch(path, "column %s is not a three-level list", n.Name)
		}
		mid := n.Children[0]
		if !mid.Group || mid.Repetition != schema.Repeated || len(mid.Children) != 1 {
			return nil, mismatch(path, "column %s is not a three-level list", n.Name)
		}
		en := mid.Children[0]
		ew, err := b.slot(path+"."+en.Name, en, el.Elem)
		if err != nil {
			return nil, err
		}
		lw.mid, lw.elemName, lw.elem = mid.Name, en.Name, ew
		lw.elemRequired = en.Repetition == schema.Required
	}
	return lw, nil
}

func (b *builder) mapValue(path string, n *schema.Node, el *typemodel.Element) (*valueWriter, error) {
	key, value, err := schema.MapEntry(n)
	if err != nil {
		return nil, mismatch(path, "%s cannot be written: %v", el.Type, err)
	}
	kw, err := b.slot(path+"."+key.Name, key, el.Key)
	if err != nil {
		return nil, err
	}
	vw, err := b.slot(path+"."+value.Name, value, el.Value)
	if err != nil {
		return nil, err
	}
	return &valueWriter{
		kind:          mapWriter,
		path:          path,
		entry:         n.Children[0].Name,
		key:           kw,
		keyName:       key.Name,
		valueName:     value.Name,
		valueRequired: value.Repetition == schema.Required,
		value:         vw,
	}, nil
}

func columnType(n *schema.Node) string {
	if n.Logical == schema.None {
		return n.Type.String()
	}
	return fmt.Sprintf("%s (%s)", n.Type, n.Logical)
}

func mismatch(path, format string, args ...any) *errors.Error {
	return errors.Newf(errors.ErrorTypeSchemaMismatch, format, args...).WithDetail("path", path)
}
