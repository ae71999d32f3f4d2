package reader

import (
	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

type converterKind int

const (
	recordConverter converterKind = iota
	listConverter
	itemConverter
	mapConverter
	entryConverter
	primitiveConverter
)

// converter is a node of the read tree. Group kinds push a frame on Start
// and hand the finished value to the frame below on End; primitive kinds
// hand each value to the frame on top.
type converter struct {
	kind converterKind
	m    *Materializer
	path string
	// slot is the position of this converter in its parent.
	slot int

	// groups
	children []*converter
	argIndex []int
	repeated []bool
	arity    int
	ctor     *typemodel.ConstructorHandle

	// primitives
	prim     schema.PrimitiveType
	target   typemodel.Kind
	enum     *typemodel.Enum
	dict     []any
	dictErrs []error
}

var (
	_ columnio.GroupConverter     = (*converter)(nil)
	_ columnio.PrimitiveConverter = (*converter)(nil)
)

func (c *converter) addChild(pos int, child *converter, arg int, repeated bool) {
	child.slot = pos
	c.children = append(c.children, child)
	c.argIndex = append(c.argIndex, arg)
	c.repeated = append(c.repeated, repeated)
}

func (c *converter) IsPrimitive() bool { return c.kind == primitiveConverter }

func (c *converter) Child(i int) columnio.Converter { return c.children[i] }

// frame is the in-progress value of one group.
type frame struct {
	conv    *converter
	args    []any
	lists   [][]any
	items   []any
	entries map[any]any
}

func (c *converter) Start() {
	m := c.m
	if c == m.root {
		m.stack = m.stack[:0]
		m.current = nil
		m.err = nil
	}
	f := &frame{conv: c}
	switch c.kind {
	case recordConverter, itemConverter, entryConverter:
		f.args = make([]any, c.arity)
		f.lists = make([][]any, len(c.children))
	case listConverter:
		f.items = []any{}
	case mapConverter:
		f.entries = make(map[any]any)
	}
	m.stack = append(m.stack, f)
}

func (c *converter) End() {
	m := c.m
	f := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]

	var v any
	switch c.kind {
	case recordConverter:
		v = c.construct(f)
	case listConverter:
		v = f.items
	case mapConverter:
		v = f.entries
	case itemConverter, entryConverter:
		f.flushLists()
		if c.kind == entryConverter {
			m.top().entries[f.args[0]] = f.args[1]
			return
		}
		v = f.args[0]
	}

	if len(m.stack) == 0 {
		m.current = v
		return
	}
	m.deliver(c.slot, v)
}

func (c *converter) construct(f *frame) any {
	f.flushLists()
	if c.m.err != nil {
		return nil
	}
	inst, err := c.ctor.Construct(f.args)
	if err != nil {
		c.m.fail(errors.Wrap(err, errors.ErrorTypeConstruction, c.path).WithDetail("path", c.path))
		return nil
	}
	return inst
}

// flushLists moves one-level list accumulators into their arguments. A
// one-level list without elements reads as null.
func (f *frame) flushLists() {
	for slot, items := range f.lists {
		if items != nil {
			f.args[f.conv.argIndex[slot]] = items
		}
	}
}

func (m *Materializer) top() *frame { return m.stack[len(m.stack)-1] }

// deliver hands a finished value to the frame on top of the stack.
func (m *Materializer) deliver(slot int, v any) {
	f := m.top()
	switch f.conv.kind {
	case listConverter:
		f.items = append(f.items, v)
	case mapConverter:
		m.fail(errors.Newf(errors.ErrorTypeInternal, "%s: value delivered outside a map entry", f.conv.path))
	default:
		if f.conv.repeated[slot] {
			f.lists[slot] = append(f.lists[slot], v)
			return
		}
		f.args[f.conv.argIndex[slot]] = v
	}
}

func (c *converter) AddBoolean(v bool) {
	if c.target != typemodel.KindBool {
		c.unexpected("boolean")
		return
	}
	c.m.deliver(c.slot, v)
}

func (c *converter) AddInt(v int32) { c.addInteger(int64(v)) }

func (c *converter) AddLong(v int64) { c.addInteger(v) }

// addInteger narrows by truncation; the filter only admits narrowing when
// numeric checking is not strict.
func (c *converter) addInteger(v int64) {
	var out any
	switch c.target {
	case typemodel.KindInt64:
		out = v
	case typemodel.KindInt32:
		out = int32(v)
	case typemodel.KindInt16:
		out = int16(v)
	case typemodel.KindInt8:
		out = int8(v)
	default:
		c.unexpected("integer")
		return
	}
	c.m.deliver(c.slot, out)
}

func (c *converter) AddFloat(v float32) { c.addFloating(float64(v)) }

func (c *converter) AddDouble(v float64) { c.addFloating(v) }

func (c *converter) addFloating(v float64) {
	switch c.target {
	case typemodel.KindFloat64:
		c.m.deliver(c.slot, v)
	case typemodel.KindFloat32:
		c.m.deliver(c.slot, float32(v))
	default:
		c.unexpected("floating point")
	}
}

func (c *converter) AddBinary(v []byte) {
	out, err := c.decode(v)
	if err != nil {
		c.m.fail(err)
		return
	}
	c.m.deliver(c.slot, out)
}

func (c *converter) decode(v []byte) (any, error) {
	switch c.target {
	case typemodel.KindString:
		return string(v), nil
	case typemodel.KindBytes:
		return append([]byte(nil), v...), nil
	case typemodel.KindEnum:
		out, err := c.enum.Value(string(v))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValueConversion, c.path).WithDetail("path", c.path)
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeInternal, "%s: unexpected binary value for %s", c.path, c.target)
	}
}

func (c *converter) HasDictionarySupport() bool {
	return c.kind == primitiveConverter && c.prim == schema.Binary
}

// SetDictionary decodes every entry once. Entries that do not decode only
// fail the records that use them.
func (c *converter) SetDictionary(d columnio.Dictionary) {
	c.dict = make([]any, d.Len())
	c.dictErrs = make([]error, d.Len())
	for id := 0; id < d.Len(); id++ {
		c.dict[id], c.dictErrs[id] = c.decode(d.Binary(id))
	}
}

func (c *converter) AddValueFromDictionary(id int) {
	if id < 0 || id >= len(c.dict) {
		c.m.fail(errors.Newf(errors.ErrorTypeInternal, "%s: dictionary id %d out of range", c.path, id))
		return
	}
	if err := c.dictErrs[id]; err != nil {
		c.m.fail(err)
		return
	}
	c.m.deliver(c.slot, c.dict[id])
}

func (c *converter) unexpected(what string) {
	c.m.fail(errors.Newf(errors.ErrorTypeInternal, "%s: unexpected %s value for %s", c.path, what, c.target))
}
