package avro_test

import (
	"bytes"
	"testing"

	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recordcol/internal/fixtures"
	"github.com/ajitpratap0/recordcol/pkg/avro"
	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/reader"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
	"github.com/ajitpratap0/recordcol/pkg/writer"
)

var levels = []schema.ListLevel{schema.OneLevel, schema.TwoLevel, schema.ThreeLevel}

func build(t *testing.T, r *typemodel.Record, level schema.ListLevel) (*schema.Schema, *writer.RecordWriter) {
	t.Helper()
	s, err := schema.NewBuilder(schema.BuildOptions{Level: level}).Build(r)
	require.NoError(t, err)
	w, err := writer.Build(r, s, writer.Options{Level: level})
	require.NoError(t, err)
	return s, w
}

// encode writes values of r to an Avro container and to a memory store.
func encode(t *testing.T, r *typemodel.Record, level schema.ListLevel, opts avro.SinkOptions, values ...any) ([]byte, *columnio.MemoryStore) {
	t.Helper()
	s, w := build(t, r, level)
	var buf bytes.Buffer
	sink, err := avro.NewSink(&buf, s, opts)
	require.NoError(t, err)
	store := columnio.NewMemoryStore(s)
	for _, v := range values {
		require.NoError(t, w.Write(sink, v))
		require.NoError(t, w.Write(store, v))
	}
	require.NoError(t, sink.Err())
	require.Equal(t, len(values), sink.Written())
	return buf.Bytes(), store
}

func TestRoundTrip(t *testing.T) {
	maybe := int64(-9)
	tests := []struct {
		name   string
		record *typemodel.Record
		values []any
	}{
		{"scalars", fixtures.ScalarsRecord, []any{
			fixtures.Scalars{Flag: true, Tiny: 3, Small: -300, Medium: 7, Large: 1 << 40,
				Single: 1.5, Double: 2.25, Text: "hi", Payload: []byte{0, 1}, Maybe: &maybe},
			fixtures.Scalars{Text: "empty"},
		}},
		{"parent", fixtures.ParentRecord, []any{
			fixtures.Parent{Name: "p", Child: &fixtures.Child{ID: "c", Value: 1}},
			fixtures.Parent{Name: "orphan"},
		}},
		{"pair", fixtures.PairRecord, []any{
			fixtures.Pair{First: &fixtures.Child{ID: "a"}, Second: &fixtures.Child{ID: "b", Value: 2}},
		}},
		{"list", fixtures.WithIDsRecord, []any{
			fixtures.WithIDs{Name: "x", IDs: []int32{1, 2, 3}},
			fixtures.WithIDs{Name: "none"},
		}},
		{"matrix", fixtures.MatrixRecord, []any{
			fixtures.Matrix{Name: "m", Rows: [][]int32{{1, 2}, {3}}},
		}},
		{"enum", fixtures.PaintRecord, []any{
			fixtures.Paint{Name: "sky", Color: fixtures.Blue},
		}},
		{"inventory", fixtures.InventoryRecord, []any{
			fixtures.Inventory{
				Name:  "shop",
				Stock: map[string]int32{"b": 2, "a": 1},
				Tags:  map[string][]string{"k": {"v1", "v2"}},
				Items: []fixtures.Child{{ID: "i1", Value: 1}, {ID: "i2", Value: 2}},
			},
		}},
	}
	for _, tt := range tests {
		for _, level := range levels {
			if tt.record == fixtures.MatrixRecord && level == schema.OneLevel {
				continue
			}
			t.Run(tt.name+"/"+level.String(), func(t *testing.T) {
				data, want := encode(t, tt.record, level, avro.SinkOptions{Namespace: "test.records"}, tt.values...)

				store, err := avro.Load(bytes.NewReader(data))
				require.NoError(t, err)
				require.True(t, store.Schema().Equal(want.Schema()))
				assert.Equal(t, want.Records(), store.Records())

				m, err := reader.Build(store.Schema(), tt.record, reader.Options{})
				require.NoError(t, err)
				var got []any
				require.NoError(t, store.Replay(store.Schema(), m.Root(), columnio.ReplayOptions{}, func() error {
					v, err := m.Current()
					if err != nil {
						return err
					}
					got = append(got, v)
					return nil
				}))
				assert.Equal(t, tt.values, got)
			})
		}
	}
}

func TestCodecs(t *testing.T) {
	for _, codec := range []string{"", goavro.CompressionNullLabel, goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel} {
		t.Run("codec "+codec, func(t *testing.T) {
			v := fixtures.Parent{Name: "p", Child: &fixtures.Child{ID: "c"}}
			data, want := encode(t, fixtures.ParentRecord, schema.ThreeLevel, avro.SinkOptions{Codec: codec}, v, v)
			store, err := avro.Load(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, want.Records(), store.Records())
		})
	}

	s, _ := build(t, fixtures.ParentRecord, schema.ThreeLevel)
	_, err := avro.NewSink(&bytes.Buffer{}, s, avro.SinkOptions{Codec: "lzma"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestMapping_JSON(t *testing.T) {
	s, _ := build(t, fixtures.InventoryRecord, schema.ThreeLevel)
	m, err := avro.NewMapping(s, avro.Options{Namespace: "shop"})
	require.NoError(t, err)
	assert.Same(t, s, m.Schema())

	codec, err := goavro.NewCodec(m.JSON())
	require.NoError(t, err)
	assert.Contains(t, codec.Schema(), `"name":"shop.Inventory"`)
	assert.Contains(t, m.JSON(), `"name":"Inventory_items_element"`)
	assert.Contains(t, m.JSON(), `"type":"map"`)
}

func TestMapping_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		field *schema.Node
	}{
		{"integer map key", schema.NewGroup("m", schema.Optional, schema.Map,
			schema.NewGroup("key_value", schema.Repeated, schema.None,
				schema.NewPrimitive("key", schema.Required, schema.Int32, schema.None),
				schema.NewPrimitive("value", schema.Optional, schema.Int32, schema.None)))},
		{"raw bytes map key", schema.NewGroup("m", schema.Optional, schema.Map,
			schema.NewGroup("key_value", schema.Repeated, schema.None,
				schema.NewPrimitive("key", schema.Required, schema.Binary, schema.None),
				schema.NewPrimitive("value", schema.Optional, schema.Int32, schema.None)))},
		{"malformed list", schema.NewGroup("l", schema.Optional, schema.List,
			schema.NewPrimitive("a", schema.Optional, schema.Int32, schema.None),
			schema.NewPrimitive("b", schema.Optional, schema.Int32, schema.None))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := avro.NewMapping(&schema.Schema{Name: "r", Fields: []*schema.Node{tt.field}}, avro.Options{})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))
		})
	}
}

func TestSink_InvalidRecord(t *testing.T) {
	s, w := build(t, fixtures.ChildRecord, schema.ThreeLevel)
	var buf bytes.Buffer
	sink, err := avro.NewSink(&buf, s, avro.SinkOptions{})
	require.NoError(t, err)

	sink.StartMessage()
	sink.StartField("value", 0)
	sink.AddInteger(1)
	sink.EndField("value", 0)
	sink.EndMessage()
	require.NoError(t, w.Write(sink, fixtures.Child{ID: "ok"}))

	assert.True(t, errors.IsType(sink.Err(), errors.ErrorTypeValidation))
	assert.Equal(t, 1, sink.Written())

	store, err := avro.Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestLoad_Invalid(t *testing.T) {
	_, err := avro.Load(bytes.NewReader([]byte("not avro")))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	// A container written without the column schema.
	codec, err := goavro.NewCodec(`{"type":"record","name":"r","fields":[{"name":"a","type":"int"}]}`)
	require.NoError(t, err)
	var buf bytes.Buffer
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{W: &buf, Codec: codec})
	require.NoError(t, err)
	require.NoError(t, ocf.Append([]any{map[string]any{"a": int32(1)}}))

	_, err = avro.Load(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	assert.Contains(t, err.Error(), "no column schema")
}
