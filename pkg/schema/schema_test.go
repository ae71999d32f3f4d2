package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recordcol/internal/fixtures"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

func build(t *testing.T, r *typemodel.Record, level schema.ListLevel) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder(schema.BuildOptions{Level: level}).Build(r)
	require.NoError(t, err)
	return s
}

func TestBuild_ListLevels(t *testing.T) {
	tests := []struct {
		level schema.ListLevel
		want  string
	}{
		{schema.ThreeLevel, `message WithIDs {
  optional binary name (STRING);
  optional group ids (LIST) {
    repeated group list {
      optional int32 element;
    }
  }
}
`},
		{schema.TwoLevel, `message WithIDs {
  optional binary name (STRING);
  optional group ids (LIST) {
    repeated int32 element;
  }
}
`},
		{schema.OneLevel, `message WithIDs {
  optional binary name (STRING);
  repeated int32 ids;
}
`},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, fixtures.WithIDsRecord, tt.level).String())
		})
	}
}

func TestBuild_DefaultsToThreeLevel(t *testing.T) {
	s, err := schema.NewBuilder(schema.BuildOptions{}).Build(fixtures.WithIDsRecord)
	require.NoError(t, err)
	assert.True(t, s.Equal(build(t, fixtures.WithIDsRecord, schema.ThreeLevel)))
}

func TestBuild_Scalars(t *testing.T) {
	s := build(t, fixtures.ScalarsRecord, schema.ThreeLevel)
	assert.Equal(t, `message Scalars {
  required boolean flag;
  required int32 tiny (INT(8));
  required int32 small (INT(16));
  required int32 medium;
  required int64 large;
  required float single;
  required double double;
  required binary text (STRING);
  optional binary payload;
  optional int64 maybe;
}
`, s.String())
}

func TestBuild_NestedRecordsAndEnums(t *testing.T) {
	s := build(t, fixtures.ParentRecord, schema.ThreeLevel)
	child, _ := s.Field("child")
	require.NotNil(t, child)
	assert.Equal(t, "group", child.Kind())
	assert.Equal(t, schema.Optional, child.Repetition)
	require.Len(t, child.Children, 2)
	assert.Equal(t, "id", child.Children[0].Name)

	pair := build(t, fixtures.PairRecord, schema.ThreeLevel)
	assert.Len(t, pair.Fields, 2, "the same record twice is not recursion")

	paint := build(t, fixtures.PaintRecord, schema.ThreeLevel)
	color, _ := paint.Field("color")
	assert.Equal(t, schema.Required, color.Repetition)
	assert.Equal(t, schema.Binary, color.Type)
	assert.Equal(t, schema.Enum, color.Logical)
}

func TestBuild_Maps(t *testing.T) {
	s := build(t, fixtures.InventoryRecord, schema.ThreeLevel)
	assert.Equal(t, `message Inventory {
  optional binary name (STRING);
  optional group stock (MAP) {
    repeated group key_value {
      required binary key (STRING);
      required int32 value;
    }
  }
  optional group tags (MAP) {
    repeated group key_value {
      required binary key (STRING);
      optional group value (LIST) {
        repeated group list {
          optional binary element (STRING);
        }
      }
    }
  }
  optional group items (LIST) {
    repeated group list {
      optional group element {
        optional binary id (STRING);
        required int32 value;
      }
    }
  }
}
`, s.String())
}

func TestBuild_NestedCollections(t *testing.T) {
	two := build(t, fixtures.MatrixRecord, schema.TwoLevel)
	rows, _ := two.Field("rows")
	require.NotNil(t, rows)
	assert.Equal(t, `optional group rows (LIST) {
  repeated group element (LIST) {
    repeated int32 element;
  }
}
`, rows.String())

	_, err := schema.NewBuilder(schema.BuildOptions{Level: schema.OneLevel}).Build(fixtures.MatrixRecord)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))
}

func TestBuild_TwoLevelElementRecord(t *testing.T) {
	wrapped := typemodel.NewRecord("Wrapped").
		Field("element", typemodel.String, func(any) any { return nil })
	r := typemodel.NewRecord("Holder").
		Field("items", typemodel.ListOf(typemodel.RecordOf(wrapped)), func(any) any { return nil })

	_, err := schema.NewBuilder(schema.BuildOptions{Level: schema.TwoLevel}).Build(r)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))
	assert.Contains(t, err.Error(), "Holder.items")

	three := build(t, r, schema.ThreeLevel)
	items, _ := three.Field("items")
	require.NotNil(t, items)
	_, level, err := schema.ListElement(items)
	require.NoError(t, err)
	assert.Equal(t, schema.ThreeLevel, level)
}

func TestBuild_Failures(t *testing.T) {
	tests := []struct {
		name   string
		record *typemodel.Record
		want   errors.ErrorType
	}{
		{"self", fixtures.NodeRecord, errors.ErrorTypeRecursiveType},
		{"mutual", fixtures.LeftRecord, errors.ErrorTypeRecursiveType},
		{"type parameter", fixtures.GenericBoxRecord, errors.ErrorTypeUnsupportedType},
		{"bytes map key", typemodel.NewRecord("Blobs").
			Field("index", typemodel.MapOf(typemodel.Bytes, typemodel.String), func(any) any { return nil }),
			errors.ErrorTypeUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.NewBuilder(schema.DefaultBuildOptions()).Build(tt.record)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.TypeOf(err))
			assert.True(t, errors.IsBuildError(err))
		})
	}
}

func TestBuild_SnakeCase(t *testing.T) {
	r := typemodel.NewRecord("Event").
		Field("createdAt", typemodel.Int64, typemodel.Get(func(struct{}) int64 { return 0 })).
		Field("userID", typemodel.String, typemodel.Get(func(struct{}) string { return "" }), typemodel.Alias("uid"))
	s, err := schema.NewBuilder(schema.BuildOptions{Naming: typemodel.SnakeCase}).Build(r)
	require.NoError(t, err)
	assert.Equal(t, "created_at", s.Fields[0].Name)
	assert.Equal(t, "uid", s.Fields[1].Name)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name    string
		prim    schema.PrimitiveType
		logical schema.LogicalType
		kind    typemodel.Kind
		strict  bool
		want    bool
	}{
		{"int64 as int32", schema.Int64, schema.None, typemodel.KindInt32, false, true},
		{"int64 as int32 strict", schema.Int64, schema.None, typemodel.KindInt32, true, false},
		{"int64 as int16", schema.Int64, schema.None, typemodel.KindInt16, false, true},
		{"int64 as int8", schema.Int64, schema.None, typemodel.KindInt8, false, true},
		{"int64 as int8 strict", schema.Int64, schema.None, typemodel.KindInt8, true, false},
		{"int32 as int64 strict", schema.Int32, schema.None, typemodel.KindInt64, true, true},
		{"int32 as int8 strict", schema.Int32, schema.None, typemodel.KindInt8, true, false},
		{"int8 column as int8 strict", schema.Int32, schema.Int8, typemodel.KindInt8, true, true},
		{"int16 column as int8 strict", schema.Int32, schema.Int16, typemodel.KindInt8, true, false},
		{"float as double", schema.Float, schema.None, typemodel.KindFloat64, true, true},
		{"double as float", schema.Double, schema.None, typemodel.KindFloat32, false, true},
		{"double as float strict", schema.Double, schema.None, typemodel.KindFloat32, true, false},
		{"boolean as int32", schema.Boolean, schema.None, typemodel.KindInt32, false, false},
		{"string as string", schema.Binary, schema.String, typemodel.KindString, true, true},
		{"string as enum", schema.Binary, schema.String, typemodel.KindEnum, false, false},
		{"enum as string", schema.Binary, schema.Enum, typemodel.KindString, true, true},
		{"binary as bytes", schema.Binary, schema.None, typemodel.KindBytes, true, true},
		{"binary as string", schema.Binary, schema.None, typemodel.KindString, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schema.Compatible(tt.prim, tt.logical, tt.kind, tt.strict))
		})
	}
}

func TestListElement(t *testing.T) {
	three := schema.NewGroup("ids", schema.Optional, schema.List,
		schema.NewGroup("list", schema.Repeated, schema.None,
			schema.NewPrimitive("element", schema.Optional, schema.Int32, schema.None)))
	elem, level, err := schema.ListElement(three)
	require.NoError(t, err)
	assert.Equal(t, schema.ThreeLevel, level)
	assert.Equal(t, "element", elem.Name)

	legacy := []string{"array", "ids_tuple", "element"}
	for _, name := range legacy {
		t.Run(name, func(t *testing.T) {
			n := schema.NewGroup("ids", schema.Optional, schema.List,
				schema.NewGroup(name, schema.Repeated, schema.None,
					schema.NewPrimitive("id", schema.Optional, schema.Int32, schema.None)))
			elem, level, err := schema.ListElement(n)
			require.NoError(t, err)
			assert.Equal(t, schema.TwoLevel, level)
			assert.Equal(t, name, elem.Name)
		})
	}

	one := schema.NewPrimitive("ids", schema.Repeated, schema.Int32, schema.None)
	elem, level, err = schema.ListElement(one)
	require.NoError(t, err)
	assert.Equal(t, schema.OneLevel, level)
	assert.Same(t, one, elem)

	_, _, err = schema.ListElement(schema.NewPrimitive("ids", schema.Optional, schema.Int32, schema.None))
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
}

func TestParseOptions(t *testing.T) {
	level, err := schema.ParseListLevel("two")
	require.NoError(t, err)
	assert.Equal(t, schema.TwoLevel, level)

	level, err = schema.ParseListLevel("")
	require.NoError(t, err)
	assert.Equal(t, schema.ThreeLevel, level)

	_, err = schema.ParseListLevel("four")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	naming, err := schema.ParseNaming("snake_case")
	require.NoError(t, err)
	assert.Equal(t, typemodel.SnakeCase, naming)
}

func TestJSONRoundTrip(t *testing.T) {
	for _, r := range []*typemodel.Record{fixtures.InventoryRecord, fixtures.ScalarsRecord, fixtures.MatrixRecord} {
		for _, level := range []schema.ListLevel{schema.TwoLevel, schema.ThreeLevel} {
			t.Run(r.Name()+"/"+level.String(), func(t *testing.T) {
				s := build(t, r, level)
				data, err := s.MarshalJSON()
				require.NoError(t, err)

				parsed, err := schema.ParseJSON(data)
				require.NoError(t, err)
				assert.True(t, s.Equal(parsed), "got\n%s", parsed)
			})
		}
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `{"name":`},
		{"repetition", `{"name":"M","fields":[{"name":"a","repetition":"SOMETIMES","kind":"primitive","type":"int32"}]}`},
		{"type", `{"name":"M","fields":[{"name":"a","repetition":"REQUIRED","kind":"primitive","type":"int96"}]}`},
		{"empty group", `{"name":"M","fields":[{"name":"a","repetition":"REQUIRED","kind":"group"}]}`},
		{"kind", `{"name":"M","fields":[{"name":"a","repetition":"REQUIRED","kind":"union"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseJSON([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}
