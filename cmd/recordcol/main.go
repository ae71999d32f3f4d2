package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recordcol/internal/catalog"
	"github.com/ajitpratap0/recordcol/pkg/config"
	"github.com/ajitpratap0/recordcol/pkg/engine"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/logger"
	"github.com/ajitpratap0/recordcol/pkg/metrics"
	"github.com/ajitpratap0/recordcol/pkg/observability"
	"github.com/ajitpratap0/recordcol/pkg/schema"
)

var version = "0.1.0"

// app holds what every command needs once flags are parsed.
type app struct {
	cfg      *config.Config
	engine   *engine.Engine
	log      *zap.Logger
	registry *prometheus.Registry
	schemas  *schema.Registry
	shutdown observability.ShutdownFunc
}

// settings maps viper keys to the configuration fields they override.
var settings = map[string]func(*config.Config, string){
	"write.list_level":      func(c *config.Config, v string) { c.Write.ListLevel = v },
	"write.naming":          func(c *config.Config, v string) { c.Write.Naming = v },
	"read.naming":           func(c *config.Config, v string) { c.Read.Naming = v },
	"journal.compression":   func(c *config.Config, v string) { c.Journal.Compression = v },
	"schemas.path":          func(c *config.Config, v string) { c.Schemas.Path = v },
	"schemas.compatibility": func(c *config.Config, v string) { c.Schemas.Compatibility = v },
	"avro.codec":            func(c *config.Config, v string) { c.Avro.Codec = v },
	"parquet.compression":   func(c *config.Config, v string) { c.Parquet.Compression = v },
	"logging.level":         func(c *config.Config, v string) { c.Logging.Level = v },
}

// loadConfig reads the config file, if any, and applies the flag and
// RECORDCOL_* environment overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.NewConfig()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	for key, set := range settings {
		if v.IsSet(key) {
			set(cfg, v.GetString(key))
		}
	}
	if v.IsSet("read.strict_numeric_types") {
		cfg.Read.StrictNumericTypes = v.GetBool("read.strict_numeric_types")
		cfg.Write.StrictNumericTypes = cfg.Read.StrictNumericTypes
	}
	if v.IsSet("read.ignore_unknown_fields") {
		cfg.Read.IgnoreUnknownFields = v.GetBool("read.ignore_unknown_fields")
	}
	if v.IsSet("read.dictionary") {
		cfg.Read.Dictionary = v.GetBool("read.dictionary")
	}
	if v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = v.GetBool("metrics.enabled")
	}
	if v.IsSet("tracing.enabled") {
		cfg.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	return cfg, cfg.Validate()
}

func (a *app) start(v *viper.Viper) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	a.log = logger.Get().With(zap.String("component", "cli"))

	cfg.Tracing.ServiceVersion = version
	a.shutdown, err = observability.InitTracing(cfg.Tracing, os.Stderr)
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(logger.Get())}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		collector, err := metrics.NewCollector(a.registry)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithMetrics(collector))
	}
	if cfg.Schemas.Path != "" {
		if a.schemas, err = loadRegistry(cfg.Schemas); err != nil {
			return err
		}
		opts = append(opts, engine.WithRegistry(a.schemas))
	}
	a.engine, err = engine.New(cfg, opts...)
	return err
}

// loadRegistry reads the schema registry file, starting empty when it does
// not exist yet.
func loadRegistry(cfg config.RegistryConfig) (*schema.Registry, error) {
	mode, err := schema.ParseCompatibilityMode(cfg.Compatibility)
	if err != nil {
		return nil, err
	}
	r := schema.NewRegistry(logger.Get(), mode)
	data, err := os.ReadFile(cfg.Path)
	switch {
	case os.IsNotExist(err):
		return r, nil
	case err != nil:
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read schema registry")
	}
	if err := r.Import(data); err != nil {
		return nil, err
	}
	return r, nil
}

func (a *app) saveRegistry() error {
	data, err := a.schemas.Export()
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.cfg.Schemas.Path, data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write schema registry")
	}
	return nil
}

func (a *app) stop() {
	if a.schemas != nil {
		if err := a.saveRegistry(); err != nil {
			a.log.Error("failed to save schema registry", zap.Error(err))
		}
	}
	if a.registry != nil {
		a.logMetrics()
	}
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			a.log.Warn("failed to flush traces", zap.Error(err))
		}
	}
	_ = logger.Sync()
}

// logMetrics logs the counters collected during the command.
func (a *app) logMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.log.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			fields := []zap.Field{zap.String("metric", f.GetName()), zap.Float64("value", m.GetCounter().GetValue())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			a.log.Info("metric", fields...)
		}
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	v := viper.New()
	v.SetEnvPrefix("recordcol")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "recordcol",
		Short: "recordcol - map typed records to column schemas",
		Long: `recordcol derives column schemas from registered record types, writes
record values as column events to Avro containers, event journals and
Parquet schema files, and reads them back through projected converter trees.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.stop()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("list-level", "", "List structure: ONE, TWO or THREE")
	flags.String("naming", "", "Column naming: FIELD_NAME or SNAKE_CASE")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("strict-numeric-types", false, "Reject numeric columns that differ from the field type")
	flags.Bool("dictionary", false, "Replay binary columns through dictionaries")
	flags.Bool("ignore-unknown-fields", true, "Skip record fields the file has no column for")
	flags.Bool("enable-metrics", false, "Collect metrics and log them on exit")
	flags.Bool("enable-tracing", false, "Export traces to stderr")
	flags.String("schema-registry", "", "Schema registry file checked by every write")
	flags.String("compatibility", "", "Registry compatibility: NONE, BACKWARD, FORWARD, FULL or BACKWARD_TRANSITIVE")
	for key, flag := range map[string]string{
		"config":                     "config",
		"write.list_level":           "list-level",
		"write.naming":               "naming",
		"read.naming":                "naming",
		"logging.level":              "log-level",
		"read.strict_numeric_types":  "strict-numeric-types",
		"read.dictionary":            "dictionary",
		"read.ignore_unknown_fields": "ignore-unknown-fields",
		"metrics.enabled":            "enable-metrics",
		"tracing.enabled":            "enable-tracing",
		"schemas.path":               "schema-registry",
		"schemas.compatibility":      "compatibility",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "recordcol v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "records",
		Short: "List registered record types",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range catalog.List() {
				e, _ := catalog.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "  - %-14s %s\n", name, e.Description)
			}
		},
	})

	root.AddCommand(newSchemaCommand(a), newWriteCommand(a), newReadCommand(a), newJournalCommand(a))
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
