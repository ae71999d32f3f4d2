// Package journal records write events so they can be stored and replayed.
package journal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// Op names a write event.
type Op string

const (
	OpStartMessage Op = "start_message"
	OpEndMessage   Op = "end_message"
	OpStartField   Op = "start_field"
	OpEndField     Op = "end_field"
	OpStartGroup   Op = "start_group"
	OpEndGroup     Op = "end_group"
	OpBoolean      Op = "boolean"
	OpInt32        Op = "int32"
	OpInt64        Op = "int64"
	OpFloat        Op = "float"
	OpDouble       Op = "double"
	OpBinary       Op = "binary"
)

// Event is one write event. Floating point values are kept as IEEE bits
// so that every value, NaN included, survives encoding.
type Event struct {
	Op    Op     `json:"op"`
	Name  string `json:"name,omitempty"`
	Index int    `json:"index,omitempty"`
	Bool  bool   `json:"bool,omitempty"`
	Int   int64  `json:"int,omitempty"`
	Bits  uint64 `json:"bits,omitempty"`
	Bytes []byte `json:"bytes,omitempty"`
}

func (e Event) String() string {
	switch e.Op {
	case OpStartField, OpEndField:
		return fmt.Sprintf("%s %s %d", e.Op, e.Name, e.Index)
	case OpBoolean:
		return fmt.Sprintf("%s %t", e.Op, e.Bool)
	case OpInt32, OpInt64:
		return fmt.Sprintf("%s %d", e.Op, e.Int)
	case OpFloat:
		return fmt.Sprintf("%s %v", e.Op, math.Float32frombits(uint32(e.Bits)))
	case OpDouble:
		return fmt.Sprintf("%s %v", e.Op, math.Float64frombits(e.Bits))
	case OpBinary:
		return fmt.Sprintf("%s %s", e.Op, strconv.Quote(string(e.Bytes)))
	default:
		return string(e.Op)
	}
}

// Journal is the schema of a record stream and the events of each record.
type Journal struct {
	Schema  *schema.Schema `json:"schema"`
	Records [][]Event      `json:"records"`
}

// Len returns the number of records.
func (j *Journal) Len() int { return len(j.Records) }

// Replay sends the events of every record to c.
func (j *Journal) Replay(c columnio.RecordConsumer) error {
	for i, events := range j.Records {
		for _, e := range events {
			if err := apply(c, e); err != nil {
				return err.WithDetail("record", i)
			}
		}
	}
	return nil
}

func apply(c columnio.RecordConsumer, e Event) *errors.Error {
	switch e.Op {
	case OpStartMessage:
		c.StartMessage()
	case OpEndMessage:
		c.EndMessage()
	case OpStartField:
		c.StartField(e.Name, e.Index)
	case OpEndField:
		c.EndField(e.Name, e.Index)
	case OpStartGroup:
		c.StartGroup()
	case OpEndGroup:
		c.EndGroup()
	case OpBoolean:
		c.AddBoolean(e.Bool)
	case OpInt32:
		if e.Int < math.MinInt32 || e.Int > math.MaxInt32 {
			return errors.Newf(errors.ErrorTypeFile, "int32 event holds %d", e.Int)
		}
		c.AddInteger(int32(e.Int))
	case OpInt64:
		c.AddLong(e.Int)
	case OpFloat:
		c.AddFloat(math.Float32frombits(uint32(e.Bits)))
	case OpDouble:
		c.AddDouble(math.Float64frombits(e.Bits))
	case OpBinary:
		c.AddBinary(e.Bytes)
	default:
		return errors.Newf(errors.ErrorTypeFile, "unknown journal event %q", e.Op)
	}
	return nil
}

// Recorder is a RecordConsumer appending events to a journal. Records are
// added when their message ends.
type Recorder struct {
	journal *Journal
	current []Event
}

var _ columnio.RecordConsumer = (*Recorder)(nil)

// NewRecorder returns a recorder for records of s.
func NewRecorder(s *schema.Schema) *Recorder {
	return &Recorder{journal: &Journal{Schema: s}}
}

// Journal returns the recorded journal.
func (r *Recorder) Journal() *Journal { return r.journal }

func (r *Recorder) add(e Event) { r.current = append(r.current, e) }

func (r *Recorder) StartMessage() {
	r.current = []Event{{Op: OpStartMessage}}
}

func (r *Recorder) EndMessage() {
	r.add(Event{Op: OpEndMessage})
	r.journal.Records = append(r.journal.Records, r.current)
	r.current = nil
}

func (r *Recorder) StartField(name string, index int) {
	r.add(Event{Op: OpStartField, Name: name, Index: index})
}

func (r *Recorder) EndField(name string, index int) {
	r.add(Event{Op: OpEndField, Name: name, Index: index})
}

func (r *Recorder) StartGroup()         { r.add(Event{Op: OpStartGroup}) }
func (r *Recorder) EndGroup()           { r.add(Event{Op: OpEndGroup}) }
func (r *Recorder) AddBoolean(v bool)   { r.add(Event{Op: OpBoolean, Bool: v}) }
func (r *Recorder) AddInteger(v int32)  { r.add(Event{Op: OpInt32, Int: int64(v)}) }
func (r *Recorder) AddLong(v int64)     { r.add(Event{Op: OpInt64, Int: v}) }
func (r *Recorder) AddFloat(v float32)  { r.add(Event{Op: OpFloat, Bits: uint64(math.Float32bits(v))}) }
func (r *Recorder) AddDouble(v float64) { r.add(Event{Op: OpDouble, Bits: math.Float64bits(v)}) }

func (r *Recorder) AddBinary(v []byte) {
	r.add(Event{Op: OpBinary, Bytes: append([]byte(nil), v...)})
}
