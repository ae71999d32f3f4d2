// Package fixtures holds record types shared by the package tests.
package fixtures

import (
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

type Color string

const (
	Red   Color = "RED"
	Green Color = "GREEN"
	Blue  Color = "BLUE"
)

var ColorEnum = typemodel.NewEnum("Color", Red, Green, Blue)

// Child is {id: String, value: int}.
type Child struct {
	ID    string
	Value int32
}

var ChildRecord = typemodel.NewRecord("Child").
	Field("id", typemodel.String, typemodel.Get(func(c Child) string { return c.ID })).
	Field("value", typemodel.Int32, typemodel.Get(func(c Child) int32 { return c.Value })).
	Canonical(func(args []any) (any, error) {
		return Child{ID: typemodel.As[string](args[0]), Value: typemodel.As[int32](args[1])}, nil
	})

// Parent is {name: String, child: Child}.
type Parent struct {
	Name  string
	Child *Child
}

var ParentRecord = typemodel.NewRecord("Parent").
	Field("name", typemodel.String, typemodel.Get(func(p Parent) string { return p.Name })).
	Field("child", typemodel.RecordOf(ChildRecord), typemodel.GetPtr(func(p Parent) *Child { return p.Child })).
	Canonical(func(args []any) (any, error) {
		return Parent{Name: typemodel.As[string](args[0]), Child: typemodel.AsPtr[Child](args[1])}, nil
	})

// WithIDs is {name: String, ids: List<Integer>}.
type WithIDs struct {
	Name string
	IDs  []int32
}

var WithIDsRecord = typemodel.NewRecord("WithIDs").
	Field("name", typemodel.String, typemodel.Get(func(w WithIDs) string { return w.Name })).
	Field("ids", typemodel.ListOf(typemodel.Boxed(typemodel.Int32)), typemodel.GetList(func(w WithIDs) []int32 { return w.IDs })).
	Canonical(func(args []any) (any, error) {
		return WithIDs{Name: typemodel.As[string](args[0]), IDs: typemodel.AsSlice[int32](args[1])}, nil
	})

// Matrix is {name: String, rows: List<List<Integer>>}.
type Matrix struct {
	Name string
	Rows [][]int32
}

var MatrixRecord = typemodel.NewRecord("Matrix").
	Field("name", typemodel.String, typemodel.Get(func(m Matrix) string { return m.Name })).
	Field("rows", typemodel.ListOf(typemodel.ListOf(typemodel.Boxed(typemodel.Int32))),
		func(inst any) any {
			m := inst.(Matrix)
			if m.Rows == nil {
				return nil
			}
			return typemodel.ValuesFunc(m.Rows, func(row []int32) any {
				if row == nil {
					return nil
				}
				return typemodel.Values(row)
			})
		}).
	Canonical(func(args []any) (any, error) {
		return Matrix{
			Name: typemodel.As[string](args[0]),
			Rows: typemodel.AsSliceFunc(args[1], typemodel.AsSlice[int32]),
		}, nil
	})

// Scalars exercises every scalar kind.
type Scalars struct {
	Flag    bool
	Tiny    int8
	Small   int16
	Medium  int32
	Large   int64
	Single  float32
	Double  float64
	Text    string
	Payload []byte
	Maybe   *int64
}

var ScalarsRecord = typemodel.NewRecord("Scalars").
	Field("flag", typemodel.Bool, typemodel.Get(func(s Scalars) bool { return s.Flag })).
	Field("tiny", typemodel.Int8, typemodel.Get(func(s Scalars) int8 { return s.Tiny })).
	Field("small", typemodel.Int16, typemodel.Get(func(s Scalars) int16 { return s.Small })).
	Field("medium", typemodel.Int32, typemodel.Get(func(s Scalars) int32 { return s.Medium })).
	Field("large", typemodel.Int64, typemodel.Get(func(s Scalars) int64 { return s.Large })).
	Field("single", typemodel.Float32, typemodel.Get(func(s Scalars) float32 { return s.Single })).
	Field("double", typemodel.Float64, typemodel.Get(func(s Scalars) float64 { return s.Double })).
	Field("text", typemodel.String, typemodel.Get(func(s Scalars) string { return s.Text }), typemodel.NotNull()).
	Field("payload", typemodel.Bytes, func(inst any) any {
		if p := inst.(Scalars).Payload; p != nil {
			return p
		}
		return nil
	}).
	Field("maybe", typemodel.Boxed(typemodel.Int64), typemodel.GetPtr(func(s Scalars) *int64 { return s.Maybe })).
	Canonical(func(args []any) (any, error) {
		return Scalars{
			Flag:    typemodel.As[bool](args[0]),
			Tiny:    typemodel.As[int8](args[1]),
			Small:   typemodel.As[int16](args[2]),
			Medium:  typemodel.As[int32](args[3]),
			Large:   typemodel.As[int64](args[4]),
			Single:  typemodel.As[float32](args[5]),
			Double:  typemodel.As[float64](args[6]),
			Text:    typemodel.As[string](args[7]),
			Payload: typemodel.As[[]byte](args[8]),
			Maybe:   typemodel.AsPtr[int64](args[9]),
		}, nil
	})

// Paint carries an enum field.
type Paint struct {
	Name  string
	Color Color
}

var PaintRecord = typemodel.NewRecord("Paint").
	Field("name", typemodel.String, typemodel.Get(func(p Paint) string { return p.Name })).
	Field("color", typemodel.EnumOf(ColorEnum), typemodel.Get(func(p Paint) Color { return p.Color }), typemodel.NotNull()).
	Canonical(func(args []any) (any, error) {
		return Paint{Name: typemodel.As[string](args[0]), Color: typemodel.As[Color](args[1])}, nil
	})

// PaintName reads only the name of a Paint, as a string-typed color.
type PaintName struct {
	Color string
}

var PaintNameRecord = typemodel.NewRecord("PaintName").
	Field("color", typemodel.String, typemodel.Get(func(p PaintName) string { return p.Color })).
	Canonical(func(args []any) (any, error) {
		return PaintName{Color: typemodel.As[string](args[0])}, nil
	})

// Inventory exercises maps and collections of records.
type Inventory struct {
	Name  string
	Stock map[string]int32
	Tags  map[string][]string
	Items []Child
}

var InventoryRecord = typemodel.NewRecord("Inventory").
	Field("name", typemodel.String, typemodel.Get(func(i Inventory) string { return i.Name })).
	Field("stock", typemodel.MapOf(typemodel.String, typemodel.Int32), typemodel.GetMap(func(i Inventory) map[string]int32 { return i.Stock })).
	Field("tags", typemodel.MapOf(typemodel.String, typemodel.ListOf(typemodel.String)),
		func(inst any) any {
			tags := inst.(Inventory).Tags
			if tags == nil {
				return nil
			}
			out := make(map[any]any, len(tags))
			for k, v := range tags {
				out[k] = typemodel.Values(v)
			}
			return out
		}).
	Field("items", typemodel.ListOf(typemodel.RecordOf(ChildRecord)), typemodel.GetList(func(i Inventory) []Child { return i.Items })).
	Canonical(func(args []any) (any, error) {
		tags := typemodel.AsMap[string, any](args[2])
		var typed map[string][]string
		if tags != nil {
			typed = make(map[string][]string, len(tags))
			for k, v := range tags {
				typed[k] = typemodel.AsSlice[string](v)
			}
		}
		return Inventory{
			Name:  typemodel.As[string](args[0]),
			Stock: typemodel.AsMap[string, int32](args[1]),
			Tags:  typed,
			Items: typemodel.AsSlice[Child](args[3]),
		}, nil
	})

// Node refers to itself.
type Node struct {
	ID   string
	Next *Node
}

var NodeRecord = func() *typemodel.Record {
	r := typemodel.NewRecord("Node")
	r.Field("id", typemodel.String, typemodel.Get(func(n Node) string { return n.ID })).
		Field("next", typemodel.RecordOf(r), typemodel.GetPtr(func(n Node) *Node { return n.Next }))
	return r
}()

// Left and Right refer to each other.
type Left struct{ Right *Right }
type Right struct{ Left *Left }

var LeftRecord, RightRecord = func() (*typemodel.Record, *typemodel.Record) {
	left := typemodel.NewRecord("Left")
	right := typemodel.NewRecord("Right")
	left.Field("right", typemodel.RecordOf(right), typemodel.GetPtr(func(l Left) *Right { return l.Right }))
	right.Field("left", typemodel.RecordOf(left), typemodel.GetPtr(func(r Right) *Left { return r.Left }))
	return left, right
}()

// Pair holds two fields of the same record type, which is not recursion.
type Pair struct {
	First  *Child
	Second *Child
}

var PairRecord = typemodel.NewRecord("Pair").
	Field("first", typemodel.RecordOf(ChildRecord), typemodel.GetPtr(func(p Pair) *Child { return p.First })).
	Field("second", typemodel.RecordOf(ChildRecord), typemodel.GetPtr(func(p Pair) *Child { return p.Second })).
	Canonical(func(args []any) (any, error) {
		return Pair{First: typemodel.AsPtr[Child](args[0]), Second: typemodel.AsPtr[Child](args[1])}, nil
	})

// GenericBox declares a field of an unresolved type parameter.
var GenericBoxRecord = typemodel.NewRecord("Box").
	Field("value", typemodel.TypeParam("T"), func(any) any { return nil })

// WideCounter is written with 32-bit hits.
type WideCounter struct {
	Hits  int32
	Total int64
}

var WideCounterRecord = typemodel.NewRecord("Counter").
	Field("hits", typemodel.Int32, typemodel.Get(func(c WideCounter) int32 { return c.Hits })).
	Field("total", typemodel.Int64, typemodel.Get(func(c WideCounter) int64 { return c.Total })).
	Canonical(func(args []any) (any, error) {
		return WideCounter{Hits: typemodel.As[int32](args[0]), Total: typemodel.As[int64](args[1])}, nil
	})

// Counter is read with narrowed integer types.
type Counter struct {
	Hits  int8
	Total int64
}

var NarrowCounterRecord = typemodel.NewRecord("Counter").
	Field("hits", typemodel.Int8, typemodel.Get(func(c Counter) int8 { return c.Hits })).
	Field("total", typemodel.Int64, typemodel.Get(func(c Counter) int64 { return c.Total })).
	Canonical(func(args []any) (any, error) {
		return Counter{Hits: typemodel.As[int8](args[0]), Total: typemodel.As[int64](args[1])}, nil
	})
