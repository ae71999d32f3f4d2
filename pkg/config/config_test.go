package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/recordcol/pkg/compression"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	b, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultBuildOptions(), b)

	f, err := cfg.FilterOptions()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultFilterOptions(), f)

	c, err := cfg.CompressionConfig()
	require.NoError(t, err)
	assert.Equal(t, &compression.Config{Algorithm: compression.Snappy, Level: compression.Default}, c)
}

func TestParse(t *testing.T) {
	t.Setenv("RECORDCOL_TEST_LEVEL", "two")
	cfg, err := Parse([]byte(`
write:
  list_level: ${RECORDCOL_TEST_LEVEL}
  naming: snake_case
read:
  allow_missing_fields: true
  strict_numeric_types: true
journal:
  compression: zstd
  level: ${RECORDCOL_TEST_UNSET:-best}
`))
	require.NoError(t, err)

	w, err := cfg.WriterOptions()
	require.NoError(t, err)
	assert.Equal(t, schema.TwoLevel, w.Level)
	assert.Equal(t, typemodel.SnakeCase, w.Naming)

	f, err := cfg.FilterOptions()
	require.NoError(t, err)
	assert.True(t, f.IgnoreUnknownFields, "defaults survive partial files")
	assert.True(t, f.AllowMissingFields)

	r, err := cfg.ReaderOptions()
	require.NoError(t, err)
	assert.True(t, r.StrictNumericTypes)

	c, err := cfg.CompressionConfig()
	require.NoError(t, err)
	assert.Equal(t, compression.Zstd, c.Algorithm)
	assert.Equal(t, compression.Best, c.Level)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"list level", "write:\n  list_level: FOUR\n"},
		{"naming", "read:\n  naming: kebab\n"},
		{"journal compression", "journal:\n  compression: rar\n"},
		{"avro codec", "avro:\n  codec: bzip2\n"},
		{"parquet compression", "parquet:\n  compression: lzo\n"},
		{"schema compatibility", "schemas:\n  compatibility: SIDEWAYS\n"},
		{"syntax", "write: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recordcol.yaml")
	cfg := NewConfig()
	cfg.Write.ListLevel = "ONE"
	cfg.Avro.Codec = "deflate"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("RECORDCOL_TEST_SET", "x")
	os.Unsetenv("RECORDCOL_TEST_UNSET")
	assert.Equal(t, "a: x\nb: \nc: d", substituteEnvVars("a: ${RECORDCOL_TEST_SET}\nb: ${RECORDCOL_TEST_UNSET}\nc: ${RECORDCOL_TEST_UNSET:-d}"))
}
