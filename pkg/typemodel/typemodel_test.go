package typemodel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recordcol/internal/fixtures"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

func TestDescriptors_DeclarationOrderAndKinds(t *testing.T) {
	descs, err := fixtures.InventoryRecord.Descriptors()
	require.NoError(t, err)
	require.Len(t, descs, 4)

	assert.Equal(t, "name", descs[0].Name)
	assert.Equal(t, typemodel.Scalar, descs[0].Kind)
	assert.False(t, descs[0].NotNull)

	assert.Equal(t, typemodel.MapKind, descs[1].Kind)
	assert.Equal(t, typemodel.Scalar, descs[1].Key.Kind)
	assert.False(t, descs[1].Value.Nullable, "unboxed int32 values are not nullable")

	assert.Equal(t, typemodel.MapKind, descs[2].Kind)
	assert.True(t, descs[2].Value.IsCollection())
	assert.True(t, descs[2].Value.Elem.Nullable)

	assert.Equal(t, typemodel.Collection, descs[3].Kind)
	assert.True(t, descs[3].Elem.IsRecord())
	assert.Same(t, fixtures.ChildRecord, descs[3].Elem.Record)

	for i, d := range descs {
		assert.Equal(t, i, d.Index)
	}
}

func TestDescriptors_Nullability(t *testing.T) {
	descs, err := fixtures.ScalarsRecord.Descriptors()
	require.NoError(t, err)

	byName := map[string]typemodel.FieldDescriptor{}
	for _, d := range descs {
		byName[d.Name] = d
	}

	tests := []struct {
		field   string
		notNull bool
	}{
		{"flag", true},
		{"medium", true},
		{"double", true},
		{"text", true},
		{"payload", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.notNull, byName[tt.field].NotNull)
		})
	}
}

func TestDescriptors_AliasAndNaming(t *testing.T) {
	r := typemodel.NewRecord("Event").
		Field("createdAt", typemodel.Int64, typemodel.Get(func(e struct{}) int64 { return 0 })).
		Field("userID", typemodel.String, typemodel.Get(func(e struct{}) string { return "" }), typemodel.Alias("uid"))

	descs, err := r.Descriptors()
	require.NoError(t, err)

	assert.Equal(t, "createdAt", descs[0].WireName())
	assert.Equal(t, "created_at", descs[0].Column(typemodel.SnakeCase))
	assert.Equal(t, "uid", descs[1].WireName())
	assert.Equal(t, "uid", descs[1].Column(typemodel.SnakeCase))
}

func TestDescriptors_TypeParamRejected(t *testing.T) {
	_, err := fixtures.GenericBoxRecord.Descriptors()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))

	nested := typemodel.NewRecord("Nested").
		Field("values", typemodel.ListOf(typemodel.TypeParam("E")), func(any) any { return nil })
	_, err = nested.Descriptors()
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType))
}

func TestDescriptors_DuplicateColumn(t *testing.T) {
	r := typemodel.NewRecord("Dup").
		Field("a", typemodel.Int32, func(any) any { return int32(0) }).
		Field("b", typemodel.Int32, func(any) any { return int32(0) }, typemodel.Alias("a"))

	_, err := r.Descriptors()
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestParameterize_MapKeys(t *testing.T) {
	for _, key := range []*typemodel.Type{
		typemodel.RecordOf(fixtures.ChildRecord),
		typemodel.Bytes,
		typemodel.ListOf(typemodel.String),
	} {
		_, err := typemodel.Parameterize(typemodel.MapOf(key, typemodel.Int32))
		assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupportedType), "key %s", key)
	}

	el, err := typemodel.Parameterize(typemodel.MapOf(typemodel.EnumOf(fixtures.ColorEnum), typemodel.String))
	require.NoError(t, err)
	assert.Equal(t, typemodel.EnumKind, el.Key.Kind)
	assert.False(t, el.Key.Nullable)
}

func TestEquivalent(t *testing.T) {
	assert.True(t, typemodel.Equivalent(typemodel.Int32, typemodel.Boxed(typemodel.Int32)))
	assert.False(t, typemodel.Equivalent(typemodel.Int32, typemodel.Int64))
	assert.True(t, typemodel.Equivalent(
		typemodel.ListOf(typemodel.Int32),
		typemodel.ListOf(typemodel.Boxed(typemodel.Int32))))
	assert.False(t, typemodel.Equivalent(
		typemodel.RecordOf(fixtures.ChildRecord),
		typemodel.RecordOf(fixtures.ParentRecord)))
	assert.Equal(t, "map<string, list<*int32>>",
		typemodel.MapOf(typemodel.String, typemodel.ListOf(typemodel.Boxed(typemodel.Int32))).String())
}

func TestEnum(t *testing.T) {
	s, err := fixtures.ColorEnum.Symbol(fixtures.Green)
	require.NoError(t, err)
	assert.Equal(t, "GREEN", s)
	assert.Equal(t, 1, fixtures.ColorEnum.Ordinal("GREEN"))

	v, err := fixtures.ColorEnum.Value("BLUE")
	require.NoError(t, err)
	assert.Equal(t, fixtures.Blue, v)

	_, err = fixtures.ColorEnum.Value("PURPLE")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValueConversion))

	_, err = fixtures.ColorEnum.Symbol("RED")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValueConversion), "untyped strings are not Colors")
}

func TestBind(t *testing.T) {
	h, err := typemodel.Bind(fixtures.ChildRecord)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Arity())

	inst, err := h.Construct([]any{"a", int32(7)})
	require.NoError(t, err)
	assert.Equal(t, fixtures.Child{ID: "a", Value: 7}, inst)

	inst, err = h.Construct([]any{nil, nil})
	require.NoError(t, err)
	assert.Equal(t, fixtures.Child{}, inst)
}

func TestBind_ExplicitSignature(t *testing.T) {
	type point struct{ X, Y int32 }
	get := func(any) any { return int32(0) }
	build := func(args []any) (any, error) {
		return point{typemodel.As[int32](args[0]), typemodel.As[int32](args[1])}, nil
	}

	r := typemodel.NewRecord("Point").
		Field("x", typemodel.Int32, get).
		Field("y", typemodel.Int32, get).
		Constructor(build, typemodel.Int64, typemodel.Int64).
		Constructor(build, typemodel.Boxed(typemodel.Int32), typemodel.Int32)

	h, err := typemodel.Bind(r)
	require.NoError(t, err)
	inst, err := h.Construct([]any{int32(1), int32(2)})
	require.NoError(t, err)
	assert.Equal(t, point{1, 2}, inst)
}

func TestBind_Failures(t *testing.T) {
	get := func(any) any { return nil }

	none := typemodel.NewRecord("None").
		Field("x", typemodel.String, get).
		Constructor(func([]any) (any, error) { return nil, nil }, typemodel.Int32)
	_, err := typemodel.Bind(none)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))

	ambiguous := typemodel.NewRecord("Ambiguous").
		Field("x", typemodel.String, get).
		Canonical(func([]any) (any, error) { return nil, nil }).
		Constructor(func([]any) (any, error) { return nil, nil }, typemodel.String)
	_, err = typemodel.Bind(ambiguous)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestConstruct_WrapsFailures(t *testing.T) {
	boom := fmt.Errorf("boom")
	failing := typemodel.NewRecord("Failing").
		Field("x", typemodel.String, func(any) any { return nil }).
		Canonical(func([]any) (any, error) { return nil, boom })
	h, err := typemodel.Bind(failing)
	require.NoError(t, err)

	_, err = h.Construct([]any{"x"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
	assert.ErrorIs(t, err, boom)

	h, err = typemodel.Bind(fixtures.ChildRecord)
	require.NoError(t, err)
	_, err = h.Construct([]any{42, int32(1)})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction), "bad argument types panic inside the constructor")

	_, err = h.Construct([]any{"only one"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestAccessHelpers(t *testing.T) {
	get := typemodel.GetPtr(func(p fixtures.Parent) *fixtures.Child { return p.Child })
	assert.Nil(t, get(fixtures.Parent{}))
	assert.Equal(t, fixtures.Child{ID: "c"}, get(fixtures.Parent{Child: &fixtures.Child{ID: "c"}}))

	list := typemodel.GetList(func(w fixtures.WithIDs) []int32 { return w.IDs })
	assert.Nil(t, list(fixtures.WithIDs{}))
	assert.Equal(t, []any{}, list(fixtures.WithIDs{IDs: []int32{}}))
	assert.Equal(t, []any{int32(1), int32(2)}, list(fixtures.WithIDs{IDs: []int32{1, 2}}))

	assert.Equal(t, []int32{1, 0}, typemodel.AsSlice[int32]([]any{int32(1), nil}))
	assert.Equal(t, map[string]int32{"a": 1}, typemodel.AsMap[string, int32](map[any]any{"a": int32(1)}))
	assert.Nil(t, typemodel.AsPtr[int64](nil))
}

func TestFieldAfterSealPanics(t *testing.T) {
	r := typemodel.NewRecord("Sealed").Field("x", typemodel.Int32, func(any) any { return int32(0) })
	_, err := r.Descriptors()
	require.NoError(t, err)
	assert.Panics(t, func() { r.Field("y", typemodel.Int32, func(any) any { return int32(0) }) })
}
