package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/recordcol/internal/fixtures"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

func message(fields ...*schema.Node) *schema.Schema {
	return &schema.Schema{Name: "user", Fields: fields}
}

var (
	id       = schema.NewPrimitive("id", schema.Required, schema.Binary, schema.String)
	count32  = schema.NewPrimitive("count", schema.Optional, schema.Int32, schema.None)
	count64  = schema.NewPrimitive("count", schema.Optional, schema.Int64, schema.None)
	email    = schema.NewPrimitive("email", schema.Optional, schema.Binary, schema.String)
	age      = schema.NewPrimitive("age", schema.Required, schema.Int32, schema.None)
	tagText  = schema.NewPrimitive("tag", schema.Optional, schema.Binary, schema.String)
	tagInt   = schema.NewPrimitive("tag", schema.Optional, schema.Int32, schema.None)
	colorEnm = schema.NewPrimitive("color", schema.Optional, schema.Binary, schema.Enum)
	colorStr = schema.NewPrimitive("color", schema.Optional, schema.Binary, schema.String)
)

func TestCheckCompatibility(t *testing.T) {
	base := message(id, count32)
	tests := []struct {
		name     string
		next     *schema.Schema
		backward bool
		forward  bool
	}{
		{"add optional column", message(id, count32, email), true, true},
		{"add required column", message(id, count32, age), false, true},
		{"remove required column", message(count32), true, false},
		{"widen integer", message(id, count64), true, false},
		{"make required optional", message(schema.NewPrimitive("id", schema.Optional, schema.Binary, schema.String), count32), true, false},
		{"unchanged", message(id, count32), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := func(mode schema.CompatibilityMode, want bool) {
				err := schema.CheckCompatibility(base, tt.next, mode)
				if want {
					assert.NoError(t, err, mode)
					return
				}
				require.Error(t, err, mode)
				assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
			}
			check(schema.CompatibilityBackward, tt.backward)
			check(schema.CompatibilityForward, tt.forward)
			check(schema.CompatibilityFull, tt.backward && tt.forward)
			check(schema.CompatibilityNone, true)
		})
	}

	assert.NoError(t, schema.CanRead(message(colorStr), message(colorEnm)), "strings read enums")
	assert.Error(t, schema.CanRead(message(colorEnm), message(colorStr)))

	_, err := schema.ParseCompatibilityMode("sideways")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	mode, err := schema.ParseCompatibilityMode("full")
	require.NoError(t, err)
	assert.Equal(t, schema.CompatibilityFull, mode)
}

func TestCanRead_ListShapes(t *testing.T) {
	two := build(t, fixtures.WithIDsRecord, schema.TwoLevel)
	three := build(t, fixtures.WithIDsRecord, schema.ThreeLevel)
	assert.NoError(t, schema.CanRead(three, three))
	assert.Error(t, schema.CanRead(three, two), "list levels differ")
}

func TestDiff(t *testing.T) {
	old := build(t, fixtures.ParentRecord, schema.ThreeLevel)
	grown := &schema.Schema{Name: "Parent", Fields: []*schema.Node{
		schema.NewPrimitive("name", schema.Required, schema.Binary, schema.String),
		schema.NewGroup("child", schema.Optional, schema.None,
			schema.NewPrimitive("id", schema.Optional, schema.Binary, schema.String),
			schema.NewPrimitive("value", schema.Required, schema.Int64, schema.None)),
		email,
	}}

	var got []string
	for _, c := range schema.Diff(old, grown) {
		got = append(got, c.String())
	}
	assert.Equal(t, []string{
		"ADD_FIELD email: optional binary email (STRING);",
		"MODIFY_REPETITION name: OPTIONAL -> REQUIRED",
		"MODIFY_TYPE child.value: int32 -> int64",
	}, got)
	assert.Empty(t, schema.Diff(old, old))
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := schema.NewRegistry(zaptest.NewLogger(t), "")
	assert.Equal(t, schema.CompatibilityBackward, r.ModeOf("user"))

	var changes []int
	r.OnSchemaChange(func(subject string, old, new *schema.SchemaVersion) {
		changes = append(changes, old.Version, new.Version)
	})

	v1, err := r.RegisterSchema(ctx, "user", message(id, count32))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Len(t, v1.Fingerprint, 64)

	again, err := r.RegisterSchema(ctx, "user", message(id, count32))
	require.NoError(t, err)
	assert.Same(t, v1, again)

	v2, err := r.RegisterSchema(ctx, "user", message(id, count32, email))
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, []int{1, 2}, changes)

	_, err = r.RegisterSchema(ctx, "user", message(id, count32, email, age))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))

	r.SetCompatibilityMode("user", schema.CompatibilityNone)
	v3, err := r.RegisterSchema(ctx, "user", message(id, count32, email, age))
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)

	latest, err := r.GetLatestSchema("user")
	require.NoError(t, err)
	assert.Same(t, v3, latest)
	history, err := r.GetSchemaHistory("user")
	require.NoError(t, err)
	assert.Len(t, history, 3)

	diff, err := r.Changes("user", 1, 3)
	require.NoError(t, err)
	assert.Len(t, diff, 2)

	_, err = r.GetSchema("user", 4)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	_, err = r.GetLatestSchema("order")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Equal(t, []string{"user"}, r.Subjects())
}

func TestRegistry_BackwardTransitive(t *testing.T) {
	ctx := context.Background()
	versions := []*schema.Schema{message(id, tagText), message(id), message(id, tagInt)}

	latestOnly := schema.NewRegistry(nil, schema.CompatibilityBackward)
	transitive := schema.NewRegistry(nil, schema.CompatibilityBackwardTransitive)
	for i, s := range versions {
		_, err := latestOnly.RegisterSchema(ctx, "user", s)
		require.NoError(t, err)
		_, err = transitive.RegisterSchema(ctx, "user", s)
		if i < 2 {
			require.NoError(t, err)
		} else {
			assert.True(t, errors.IsType(err, errors.ErrorTypeSchemaMismatch))
		}
	}
}

func TestRegistry_ExportImport(t *testing.T) {
	ctx := context.Background()
	r := schema.NewRegistry(nil, schema.CompatibilityFull)
	_, err := r.RegisterSchema(ctx, "user", message(id, count32))
	require.NoError(t, err)
	r.SetCompatibilityMode("user", schema.CompatibilityForward)

	data, err := r.Export()
	require.NoError(t, err)

	restored := schema.NewRegistry(nil, schema.CompatibilityFull)
	require.NoError(t, restored.Import(data))
	v, err := restored.GetSchema("user", 1)
	require.NoError(t, err)
	assert.True(t, v.Schema.Equal(message(id, count32)))
	assert.Equal(t, schema.CompatibilityForward, restored.ModeOf("user"))

	again, err := restored.RegisterSchema(ctx, "user", message(id, count32))
	require.NoError(t, err)
	assert.Equal(t, 1, again.Version)

	err = restored.Import([]byte(`{"schemas":{"user":[{"version":2}]}}`))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	err = restored.Import([]byte(`not json`))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}
