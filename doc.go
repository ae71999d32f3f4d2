// Package recordcol maps typed records to hierarchical column schemas and
// back.
//
// A record type is declared once with its fields, their element types and
// accessors, and the constructor that rebuilds a value from field
// arguments. From that declaration recordcol derives:
//
//   - the column schema of the record (pkg/schema), with lists laid out at
//     one, two or three levels and maps as key/value groups
//   - a writer that walks a value and emits column events (pkg/writer)
//   - a converter tree that rebuilds values from the events of a projected
//     file schema (pkg/reader)
//
// # Quick Start
//
//	var PointRecord = typemodel.NewRecord("Point").
//	    Field("x", typemodel.Int32, typemodel.Get(func(p Point) int32 { return p.X })).
//	    Field("y", typemodel.Int32, typemodel.Get(func(p Point) int32 { return p.Y })).
//	    Canonical(func(args []any) (any, error) {
//	        return Point{X: typemodel.As[int32](args[0]), Y: typemodel.As[int32](args[1])}, nil
//	    })
//
//	eng, _ := engine.New(config.NewConfig())
//	ws, _ := eng.NewWriteSession(ctx, PointRecord)
//	store := columnio.NewMemoryStore(ws.Schema())
//	_ = ws.Write(ctx, store, Point{X: 1, Y: 2})
//
//	rs, _ := eng.NewReadSession(ctx, PointRecord, store.Schema())
//	_ = rs.Read(ctx, store, func(v any, err error) error { ... })
//
// # Key Packages
//
//	pkg/typemodel     - Record, enum and element type declarations
//	pkg/schema        - Schema builder, projection filter and schema registry
//	pkg/columnio      - Column event consumer, converter and in-memory store
//	pkg/writer        - Writer trees emitting column events
//	pkg/reader        - Converter trees and constructor binding
//	pkg/engine        - Sessions with logging, metrics and tracing
//	pkg/avro          - Avro object container sink and loader
//	pkg/journal       - Compressed event journals
//	pkg/parquetschema - Parquet schema conversion
//
// # Configuration
//
// The recordcol command reads a YAML file with ${VAR_NAME} substitution,
// RECORDCOL_* environment variables and flags, in increasing precedence.
package recordcol
