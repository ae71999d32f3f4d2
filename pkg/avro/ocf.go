package avro

import (
	"io"

	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// Container metadata keys holding the column schema and Avro namespace.
const (
	metaSchema    = "recordcol.schema"
	metaNamespace = "recordcol.namespace"
)

// SinkOptions configures a Sink.
type SinkOptions struct {
	// Codec is null, deflate or snappy.
	Codec     string
	Namespace string
}

// Sink is a RecordConsumer appending each completed record to an Avro
// object container. Events are checked against the column schema; records
// with invalid events are dropped and reported by Err.
type Sink struct {
	store   *columnio.MemoryStore
	mapping *Mapping
	ocf     *goavro.OCFWriter
	written int
	err     error
}

var _ columnio.RecordConsumer = (*Sink)(nil)

// NewSink writes the container header for s to w.
func NewSink(w io.Writer, s *schema.Schema, opts SinkOptions) (*Sink, error) {
	m, err := NewMapping(s, Options{Namespace: opts.Namespace})
	if err != nil {
		return nil, err
	}
	codec, err := goavro.NewCodec(m.JSON())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedType, "invalid avro schema for "+s.Name)
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	name := opts.Codec
	if name == "" {
		name = goavro.CompressionNullLabel
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: name,
		MetaData: map[string][]byte{
			metaSchema:    raw,
			metaNamespace: []byte(opts.Namespace),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to start avro container")
	}
	return &Sink{store: columnio.NewMemoryStore(s), mapping: m, ocf: ocf}, nil
}

// Mapping returns the Avro mapping of the sink schema.
func (k *Sink) Mapping() *Mapping { return k.mapping }

// Written returns the number of records appended.
func (k *Sink) Written() int { return k.written }

// Err returns the first error met while writing.
func (k *Sink) Err() error { return k.err }

func (k *Sink) fail(err error) {
	if k.err == nil {
		k.err = err
	}
}

func (k *Sink) StartMessage() { k.store.StartMessage() }

func (k *Sink) EndMessage() {
	k.store.EndMessage()
	if err := k.store.Err(); err != nil {
		k.fail(err)
	}
	records := k.store.Records()
	k.store.Reset()
	for _, g := range records {
		native, err := k.mapping.root.toRecord(g)
		if err != nil {
			k.fail(err)
			continue
		}
		if err := k.ocf.Append([]any{native}); err != nil {
			k.fail(errors.Wrap(err, errors.ErrorTypeFile, "failed to append avro record"))
			continue
		}
		k.written++
	}
}

func (k *Sink) StartField(name string, index int) { k.store.StartField(name, index) }
func (k *Sink) EndField(name string, index int)   { k.store.EndField(name, index) }
func (k *Sink) StartGroup()                       { k.store.StartGroup() }
func (k *Sink) EndGroup()                         { k.store.EndGroup() }
func (k *Sink) AddBoolean(v bool)                 { k.store.AddBoolean(v) }
func (k *Sink) AddInteger(v int32)                { k.store.AddInteger(v) }
func (k *Sink) AddLong(v int64)                   { k.store.AddLong(v) }
func (k *Sink) AddFloat(v float32)                { k.store.AddFloat(v) }
func (k *Sink) AddDouble(v float64)               { k.store.AddDouble(v) }
func (k *Sink) AddBinary(v []byte)                { k.store.AddBinary(v) }

// Load reads a container written by a Sink into a memory store, ready to
// be replayed into a converter tree.
func Load(r io.Reader) (*columnio.MemoryStore, error) {
	ocfr, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open avro container")
	}
	meta := ocfr.MetaData()
	raw, ok := meta[metaSchema]
	if !ok {
		return nil, errors.New(errors.ErrorTypeFile, "avro container carries no column schema")
	}
	s, err := schema.ParseJSON(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "invalid column schema in avro container")
	}
	m, err := NewMapping(s, Options{Namespace: string(meta[metaNamespace])})
	if err != nil {
		return nil, err
	}

	store := columnio.NewMemoryStore(s)
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read avro record")
		}
		g, err := m.root.fromRecord(datum)
		if err != nil {
			return nil, err
		}
		if err := store.Append(g); err != nil {
			return nil, err
		}
	}
	if err := ocfr.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read avro container")
	}
	return store, nil
}
