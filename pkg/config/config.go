// Package config holds the settings of the recordcol engine and commands,
// read from YAML with ${VAR} and ${VAR:-default} substitution.
package config

import (
	"github.com/ajitpratap0/recordcol/pkg/compression"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/logger"
	"github.com/ajitpratap0/recordcol/pkg/observability"
	"github.com/ajitpratap0/recordcol/pkg/reader"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/writer"
)

// Config is the root configuration.
type Config struct {
	Write   WriteConfig                 `yaml:"write" json:"write"`
	Read    ReadConfig                  `yaml:"read" json:"read"`
	Journal JournalConfig               `yaml:"journal" json:"journal"`
	Avro    AvroConfig                  `yaml:"avro" json:"avro"`
	Parquet ParquetConfig               `yaml:"parquet" json:"parquet"`
	Schemas RegistryConfig              `yaml:"schemas" json:"schemas"`
	Logging logger.Config               `yaml:"logging" json:"logging"`
	Tracing observability.TracingConfig `yaml:"tracing" json:"tracing"`
	Metrics MetricsConfig               `yaml:"metrics" json:"metrics"`
}

// WriteConfig controls schema derivation and record writing.
type WriteConfig struct {
	// ListLevel is ONE, TWO or THREE.
	ListLevel          string `yaml:"list_level" json:"list_level"`
	Naming             string `yaml:"naming" json:"naming"`
	StrictNumericTypes bool   `yaml:"strict_numeric_types" json:"strict_numeric_types"`
}

// ReadConfig controls projection and record reading.
type ReadConfig struct {
	IgnoreUnknownFields bool   `yaml:"ignore_unknown_fields" json:"ignore_unknown_fields"`
	AllowMissingFields  bool   `yaml:"allow_missing_fields" json:"allow_missing_fields"`
	StrictNumericTypes  bool   `yaml:"strict_numeric_types" json:"strict_numeric_types"`
	Naming              string `yaml:"naming" json:"naming"`
	// Dictionary replays binary columns through dictionaries.
	Dictionary bool `yaml:"dictionary" json:"dictionary"`
}

// JournalConfig selects the block codec of event journals.
type JournalConfig struct {
	Compression string `yaml:"compression" json:"compression"`
	Level       string `yaml:"level" json:"level"`
}

// AvroConfig configures Avro container output.
type AvroConfig struct {
	// Codec is null, deflate or snappy.
	Codec string `yaml:"codec" json:"codec"`
	// Namespace is applied to the generated record names.
	Namespace string `yaml:"namespace" json:"namespace"`
}

// ParquetConfig configures Parquet schema files.
type ParquetConfig struct {
	// Compression is uncompressed, snappy, gzip or zstd.
	Compression string `yaml:"compression" json:"compression"`
}

// RegistryConfig configures the schema registry.
type RegistryConfig struct {
	// Path is the file the registry is kept in. Empty disables the
	// registry.
	Path string `yaml:"path" json:"path"`
	// Compatibility is NONE, BACKWARD, FORWARD, FULL or
	// BACKWARD_TRANSITIVE.
	Compatibility string `yaml:"compatibility" json:"compatibility"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Write: WriteConfig{ListLevel: schema.ThreeLevel.String(), Naming: "FIELD_NAME"},
		Read:  ReadConfig{IgnoreUnknownFields: true, Naming: "FIELD_NAME"},
		Journal: JournalConfig{
			Compression: string(compression.Snappy),
			Level:       compression.Default.String(),
		},
		Avro:    AvroConfig{Codec: "null"},
		Parquet: ParquetConfig{Compression: "snappy"},
		Schemas: RegistryConfig{Compatibility: string(schema.CompatibilityBackward)},
		Logging: logger.Config{Level: "info", Encoding: "console"},
		Tracing: observability.TracingConfig{ServiceName: "recordcol", SamplingRate: 1, Exporter: "stdout"},
	}
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if _, err := c.BuildOptions(); err != nil {
		return err
	}
	if _, err := c.FilterOptions(); err != nil {
		return err
	}
	if _, err := c.CompressionConfig(); err != nil {
		return err
	}
	if _, err := schema.ParseCompatibilityMode(c.Schemas.Compatibility); err != nil {
		return err
	}
	switch c.Avro.Codec {
	case "", "null", "deflate", "snappy":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported avro codec: %s", c.Avro.Codec)
	}
	switch c.Parquet.Compression {
	case "", "uncompressed", "snappy", "gzip", "zstd":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported parquet compression: %s", c.Parquet.Compression)
	}
	return nil
}

// BuildOptions returns the schema builder options.
func (c *Config) BuildOptions() (schema.BuildOptions, error) {
	level, err := schema.ParseListLevel(c.Write.ListLevel)
	if err != nil {
		return schema.BuildOptions{}, err
	}
	naming, err := schema.ParseNaming(c.Write.Naming)
	if err != nil {
		return schema.BuildOptions{}, err
	}
	return schema.BuildOptions{Level: level, Naming: naming}, nil
}

// WriterOptions returns the write tree options.
func (c *Config) WriterOptions() (writer.Options, error) {
	b, err := c.BuildOptions()
	if err != nil {
		return writer.Options{}, err
	}
	return writer.Options{Level: b.Level, Naming: b.Naming, StrictNumericTypes: c.Write.StrictNumericTypes}, nil
}

// FilterOptions returns the projection options.
func (c *Config) FilterOptions() (schema.FilterOptions, error) {
	naming, err := schema.ParseNaming(c.Read.Naming)
	if err != nil {
		return schema.FilterOptions{}, err
	}
	return schema.FilterOptions{
		IgnoreUnknownFields: c.Read.IgnoreUnknownFields,
		StrictNumericTypes:  c.Read.StrictNumericTypes,
		AllowMissingFields:  c.Read.AllowMissingFields,
		Naming:              naming,
	}, nil
}

// ReaderOptions returns the read tree options.
func (c *Config) ReaderOptions() (reader.Options, error) {
	f, err := c.FilterOptions()
	if err != nil {
		return reader.Options{}, err
	}
	return reader.Options{Naming: f.Naming, StrictNumericTypes: f.StrictNumericTypes}, nil
}

// CompressionConfig returns the journal codec settings.
func (c *Config) CompressionConfig() (*compression.Config, error) {
	algorithm, err := compression.ParseAlgorithm(c.Journal.Compression)
	if err != nil {
		return nil, err
	}
	level, err := compression.ParseLevel(c.Journal.Level)
	if err != nil {
		return nil, err
	}
	return &compression.Config{Algorithm: algorithm, Level: level}, nil
}
