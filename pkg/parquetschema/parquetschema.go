// Package parquetschema converts column schemas to and from Apache Parquet
// schemas, and reads and writes the schema of Parquet files.
package parquetschema

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	pqschema "github.com/apache/arrow-go/v18/parquet/schema"

	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

// noID leaves Parquet field ids unset.
const noID = -1

// ToParquet returns the Parquet form of s.
func ToParquet(s *schema.Schema) (*pqschema.Schema, error) {
	fields, err := toFields(s.Fields)
	if err != nil {
		return nil, err
	}
	root, err := pqschema.NewGroupNode(s.Name, parquet.Repetitions.Repeated, fields, noID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid message "+s.Name)
	}
	return pqschema.NewSchema(root), nil
}

func toFields(nodes []*schema.Node) (pqschema.FieldList, error) {
	fields := make(pqschema.FieldList, 0, len(nodes))
	for _, n := range nodes {
		f, err := toNode(n)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func toNode(n *schema.Node) (pqschema.Node, error) {
	rep := toRepetition(n.Repetition)
	if n.Group {
		children, err := toFields(n.Children)
		if err != nil {
			return nil, err
		}
		var node pqschema.Node
		switch n.Logical {
		case schema.List:
			node, err = pqschema.NewGroupNodeLogical(n.Name, rep, children, pqschema.ListLogicalType{}, noID)
		case schema.Map:
			node, err = pqschema.NewGroupNodeLogical(n.Name, rep, children, pqschema.MapLogicalType{}, noID)
		default:
			node, err = pqschema.NewGroupNode(n.Name, rep, children, noID)
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid group "+n.Name)
		}
		return node, nil
	}

	typ, ok := physicalTypes[n.Type]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType, "column %s has unknown type %s", n.Name, n.Type)
	}
	var (
		node pqschema.Node
		err  error
	)
	switch n.Logical {
	case schema.None:
		node, err = pqschema.NewPrimitiveNode(n.Name, rep, typ, noID, -1)
	case schema.String:
		node, err = pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.StringLogicalType{}, typ, -1, noID)
	case schema.Enum:
		node, err = pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.EnumLogicalType{}, typ, -1, noID)
	case schema.Int8:
		node, err = pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.NewIntLogicalType(8, true), typ, -1, noID)
	case schema.Int16:
		node, err = pqschema.NewPrimitiveNodeLogical(n.Name, rep, pqschema.NewIntLogicalType(16, true), typ, -1, noID)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType, "column %s has annotation %s on a primitive", n.Name, n.Logical)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid column "+n.Name)
	}
	return node, nil
}

var physicalTypes = map[schema.PrimitiveType]parquet.Type{
	schema.Boolean: parquet.Types.Boolean,
	schema.Int32:   parquet.Types.Int32,
	schema.Int64:   parquet.Types.Int64,
	schema.Float:   parquet.Types.Float,
	schema.Double:  parquet.Types.Double,
	schema.Binary:  parquet.Types.ByteArray,
}

func toRepetition(r schema.Repetition) parquet.Repetition {
	switch r {
	case schema.Required:
		return parquet.Repetitions.Required
	case schema.Repeated:
		return parquet.Repetitions.Repeated
	default:
		return parquet.Repetitions.Optional
	}
}

// FromParquet returns the column schema of ps. Physical types without a
// column representation fail with unsupported_type; logical annotations
// other than strings, enums, small integers, lists and maps are dropped.
// Legacy converted-type annotations are honored.
func FromParquet(ps *pqschema.Schema) (*schema.Schema, error) {
	root := ps.Root()
	fields, err := fromGroup(root, root.Name())
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Name: root.Name(), Fields: fields}, nil
}

func fromGroup(g *pqschema.GroupNode, path string) ([]*schema.Node, error) {
	nodes := make([]*schema.Node, 0, g.NumFields())
	for i := 0; i < g.NumFields(); i++ {
		n, err := fromNode(g.Field(i), path)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func fromNode(n pqschema.Node, parent string) (*schema.Node, error) {
	path := parent + "." + n.Name()
	rep, err := fromRepetition(n.RepetitionType(), path)
	if err != nil {
		return nil, err
	}
	lt, ct := n.LogicalType(), n.ConvertedType()
	if lt == nil {
		lt = pqschema.NoLogicalType{}
	}

	if g, ok := n.(*pqschema.GroupNode); ok {
		children, err := fromGroup(g, path)
		if err != nil {
			return nil, err
		}
		logical := schema.None
		switch {
		case lt.Equals(pqschema.ListLogicalType{}) || ct == pqschema.ConvertedTypes.List:
			logical = schema.List
		case lt.Equals(pqschema.MapLogicalType{}) || ct == pqschema.ConvertedTypes.Map || ct == pqschema.ConvertedTypes.MapKeyValue:
			logical = schema.Map
		}
		return schema.NewGroup(n.Name(), rep, logical, children...), nil
	}

	p := n.(*pqschema.PrimitiveNode)
	var typ schema.PrimitiveType
	found := false
	for t, pt := range physicalTypes {
		if pt == p.PhysicalType() {
			typ, found = t, true
			break
		}
	}
	if !found {
		return nil, errors.Newf(errors.ErrorTypeUnsupportedType,
			"%s: physical type %s has no column representation", path, p.PhysicalType()).
			WithDetail("path", path)
	}

	logical := schema.None
	switch {
	case typ == schema.Binary && (lt.Equals(pqschema.StringLogicalType{}) || ct == pqschema.ConvertedTypes.UTF8):
		logical = schema.String
	case typ == schema.Binary && (lt.Equals(pqschema.EnumLogicalType{}) || ct == pqschema.ConvertedTypes.Enum):
		logical = schema.Enum
	case typ == schema.Int32 && (lt.Equals(pqschema.NewIntLogicalType(8, true)) || ct == pqschema.ConvertedTypes.Int8):
		logical = schema.Int8
	case typ == schema.Int32 && (lt.Equals(pqschema.NewIntLogicalType(16, true)) || ct == pqschema.ConvertedTypes.Int16):
		logical = schema.Int16
	}
	return schema.NewPrimitive(n.Name(), rep, typ, logical), nil
}

func fromRepetition(r parquet.Repetition, path string) (schema.Repetition, error) {
	switch r {
	case parquet.Repetitions.Required:
		return schema.Required, nil
	case parquet.Repetitions.Optional:
		return schema.Optional, nil
	case parquet.Repetitions.Repeated:
		return schema.Repeated, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeUnsupportedType, "%s: unknown repetition %s", path, r).
			WithDetail("path", path)
	}
}

// ArrowSchema returns the Arrow schema Parquet readers derive from s.
func ArrowSchema(s *schema.Schema) (*arrow.Schema, error) {
	ps, err := ToParquet(s)
	if err != nil {
		return nil, err
	}
	as, err := pqarrow.FromParquet(ps, &pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnsupportedType, "no arrow form for "+s.Name)
	}
	return as, nil
}

// Codec maps a compression name to a Parquet codec. The empty name selects
// snappy.
func Codec(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "uncompressed", "none":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	default:
		return compress.Codecs.Uncompressed, errors.Newf(errors.ErrorTypeConfig, "unsupported parquet compression: %s", name)
	}
}

// WriteFile writes a Parquet file holding s and no rows.
func WriteFile(w io.Writer, s *schema.Schema, compression string) error {
	ps, err := ToParquet(s)
	if err != nil {
		return err
	}
	codec, err := Codec(compression)
	if err != nil {
		return err
	}
	props := parquet.NewWriterProperties(parquet.WithCompression(codec))
	fw := file.NewParquetWriter(w, ps.Root(), file.WithWriterProps(props))
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write parquet file")
	}
	return nil
}

// ReadFile returns the column schema and row count of a Parquet file.
func ReadFile(r parquet.ReaderAtSeeker) (*schema.Schema, int64, error) {
	fr, err := file.NewParquetReader(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrorTypeFile, "failed to open parquet file")
	}
	defer fr.Close()

	s, err := FromParquet(fr.MetaData().Schema)
	if err != nil {
		return nil, 0, err
	}
	return s, fr.NumRows(), nil
}
