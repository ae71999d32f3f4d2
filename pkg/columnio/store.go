package columnio

import (
	"fmt"
	"sync"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// Group holds the values of one group instance, per field position of its
// schema node. Primitive values are bool, int32, int64, float32, float64 or
// []byte; group values are *Group.
type Group struct {
	fields [][]any
}

// NewGroup returns an empty group with n fields.
func NewGroup(n int) *Group {
	return &Group{fields: make([][]any, n)}
}

func (g *Group) NumFields() int { return len(g.fields) }

// Values returns the values of field i, empty when the field is absent.
func (g *Group) Values(i int) []any { return g.fields[i] }

// Add appends a value to field i.
func (g *Group) Add(i int, v any) { g.fields[i] = append(g.fields[i], v) }

// Group returns the j-th value of field i as a group.
func (g *Group) Group(i, j int) *Group { return g.fields[i][j].(*Group) }

// MemoryStore is an in-memory column store. As a RecordConsumer it checks
// the event stream against its schema and keeps each completed record as
// a Group tree; Replay feeds stored records into converter trees.
type MemoryStore struct {
	mu      sync.RWMutex
	schema  *schema.Schema
	records []*Group

	// event state of the record being written
	stack  []*writeFrame
	broken bool
	err    error
}

type writeFrame struct {
	children []*schema.Node
	group    *Group
	field    int
	added    bool
}

// NewMemoryStore returns an empty store for records of s.
func NewMemoryStore(s *schema.Schema) *MemoryStore {
	return &MemoryStore{schema: s}
}

func (s *MemoryStore) Schema() *schema.Schema { return s.schema }

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns the stored records.
func (s *MemoryStore) Records() []*Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Group(nil), s.records...)
}

// Append stores a record built outside the event protocol.
func (s *MemoryStore) Append(g *Group) error {
	if g.NumFields() != len(s.schema.Fields) {
		return errors.Newf(errors.ErrorTypeValidation,
			"record has %d fields, schema %s has %d", g.NumFields(), s.schema.Name, len(s.schema.Fields))
	}
	s.mu.Lock()
	s.records = append(s.records, g)
	s.mu.Unlock()
	return nil
}

// Err returns the first invalid event seen. Records whose events were
// invalid are not stored.
func (s *MemoryStore) Err() error {
	return s.err
}

// Reset drops all records and the error state.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.stack = nil
	s.broken = false
	s.err = nil
}

func (s *MemoryStore) fail(format string, args ...any) {
	s.broken = true
	if s.err == nil {
		s.err = errors.Newf(errors.ErrorTypeValidation, "invalid write event: "+format, args...)
	}
}

func (s *MemoryStore) top() *writeFrame {
	if len(s.stack) == 0 {
		s.fail("event outside of a message")
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *MemoryStore) StartMessage() {
	s.broken = false
	s.stack = s.stack[:0]
	s.stack = append(s.stack, &writeFrame{
		children: s.schema.Fields,
		group:    NewGroup(len(s.schema.Fields)),
		field:    -1,
	})
}

func (s *MemoryStore) EndMessage() {
	if s.broken {
		return
	}
	if len(s.stack) != 1 {
		s.fail("message ended with %d open groups", len(s.stack)-1)
		return
	}
	f := s.stack[0]
	if f.field != -1 {
		s.fail("message ended inside field %s", f.children[f.field].Name)
		return
	}
	if !s.checkRequired(f) {
		return
	}
	s.stack = s.stack[:0]
	s.mu.Lock()
	s.records = append(s.records, f.group)
	s.mu.Unlock()
}

func (s *MemoryStore) StartField(name string, index int) {
	if s.broken {
		return
	}
	f := s.top()
	if f == nil {
		return
	}
	switch {
	case f.field != -1:
		s.fail("field %s started inside field %s", name, f.children[f.field].Name)
	case index < 0 || index >= len(f.children) || f.children[index].Name != name:
		s.fail("no field %s at position %d", name, index)
	case len(f.group.fields[index]) > 0:
		s.fail("field %s started twice", name)
	default:
		f.field = index
		f.added = false
	}
}

func (s *MemoryStore) EndField(name string, index int) {
	if s.broken {
		return
	}
	f := s.top()
	if f == nil {
		return
	}
	if f.field != index {
		s.fail("field %s ended but not started", name)
		return
	}
	if !f.added {
		s.fail("field %s is empty, absent values must omit the field", name)
		return
	}
	n := f.children[index]
	if n.Repetition != schema.Repeated && len(f.group.fields[index]) > 1 {
		s.fail("%s field %s has %d values", n.Repetition, name, len(f.group.fields[index]))
		return
	}
	f.field = -1
}

func (s *MemoryStore) StartGroup() {
	if s.broken {
		return
	}
	f, n := s.openField()
	if n == nil {
		return
	}
	if !n.Group {
		s.fail("group started in primitive field %s", n.Name)
		return
	}
	g := NewGroup(len(n.Children))
	f.group.Add(f.field, g)
	f.added = true
	s.stack = append(s.stack, &writeFrame{children: n.Children, group: g, field: -1})
}

func (s *MemoryStore) EndGroup() {
	if s.broken {
		return
	}
	if len(s.stack) < 2 {
		s.fail("group ended but not started")
		return
	}
	f := s.stack[len(s.stack)-1]
	if f.field != -1 {
		s.fail("group ended inside field %s", f.children[f.field].Name)
		return
	}
	if !s.checkRequired(f) {
		return
	}
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *MemoryStore) AddBoolean(v bool)   { s.add(v, schema.Boolean) }
func (s *MemoryStore) AddInteger(v int32)  { s.add(v, schema.Int32) }
func (s *MemoryStore) AddLong(v int64)     { s.add(v, schema.Int64) }
func (s *MemoryStore) AddFloat(v float32)  { s.add(v, schema.Float) }
func (s *MemoryStore) AddDouble(v float64) { s.add(v, schema.Double) }
func (s *MemoryStore) AddBinary(v []byte)  { s.add(append([]byte(nil), v...), schema.Binary) }

func (s *MemoryStore) add(v any, typ schema.PrimitiveType) {
	if s.broken {
		return
	}
	f, n := s.openField()
	if n == nil {
		return
	}
	if n.Group || n.Type != typ {
		s.fail("%s value added to %s column %s", typ, describeNode(n), n.Name)
		return
	}
	f.group.Add(f.field, v)
	f.added = true
}

func (s *MemoryStore) openField() (*writeFrame, *schema.Node) {
	f := s.top()
	if f == nil {
		return nil, nil
	}
	if f.field == -1 {
		s.fail("value outside of a field")
		return nil, nil
	}
	return f, f.children[f.field]
}

func (s *MemoryStore) checkRequired(f *writeFrame) bool {
	for i, n := range f.children {
		if n.Repetition == schema.Required && len(f.group.fields[i]) == 0 {
			s.fail("required field %s has no value", n.Name)
			return false
		}
	}
	return true
}

func describeNode(n *schema.Node) string {
	if n.Group {
		return n.Kind()
	}
	return fmt.Sprint(n.Type)
}
