package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	pqschema "github.com/apache/arrow-go/v18/parquet/schema"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recordcol/internal/catalog"
	"github.com/ajitpratap0/recordcol/pkg/avro"
	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/journal"
	"github.com/ajitpratap0/recordcol/pkg/parquetschema"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
)

func lookupRecord(name string) (*typemodel.Record, error) {
	e, err := catalog.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Record, nil
}

// output opens path for writing, or returns stdout for an empty path.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create "+path)
	}
	return f, f.Close, nil
}

func newSchemaCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Derive the column schema of a record type",
	}

	var asJSON bool
	printCmd := &cobra.Command{
		Use:   "print RECORD",
		Short: "Print the column schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(cmd, args[0])
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprint(cmd.OutOrStdout(), s.String())
				return nil
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode schema")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	printCmd.Flags().BoolVar(&asJSON, "json", false, "Print the JSON form")

	var parquetOut string
	parquetCmd := &cobra.Command{
		Use:   "parquet RECORD",
		Short: "Print the Parquet schema, or write it to an empty Parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(cmd, args[0])
			if err != nil {
				return err
			}
			if parquetOut == "" {
				ps, err := parquetschema.ToParquet(s)
				if err != nil {
					return err
				}
				pqschema.PrintSchema(ps.Root(), cmd.OutOrStdout(), 2)
				return nil
			}
			w, closeFn, err := output(cmd, parquetOut)
			if err != nil {
				return err
			}
			if err := parquetschema.WriteFile(w, s, a.cfg.Parquet.Compression); err != nil {
				_ = closeFn()
				return err
			}
			a.log.Info("parquet schema written", zap.String("record", s.Name), zap.String("path", parquetOut))
			return closeFn()
		},
	}
	parquetCmd.Flags().StringVarP(&parquetOut, "output", "o", "", "Parquet file to write")

	var namespace string
	avroCmd := &cobra.Command{
		Use:   "avro RECORD",
		Short: "Print the Avro schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.schema(cmd, args[0])
			if err != nil {
				return err
			}
			if namespace == "" {
				namespace = a.cfg.Avro.Namespace
			}
			m, err := avro.NewMapping(s, avro.Options{Namespace: namespace})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.JSON())
			return nil
		},
	}
	avroCmd.Flags().StringVar(&namespace, "namespace", "", "Avro namespace of the generated records")

	registerCmd := &cobra.Command{
		Use:   "register RECORD",
		Short: "Register the schema in the schema registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.schemas == nil {
				return errors.New(errors.ErrorTypeConfig, "no schema registry configured, set --schema-registry")
			}
			s, err := a.schema(cmd, args[0])
			if err != nil {
				return err
			}
			v, err := a.schemas.RegisterSchema(cmd.Context(), s.Name, s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %d %s\n", s.Name, v.Version, v.Fingerprint)
			return nil
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history RECORD",
		Short: "Print the registered versions of a record type and their changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.schemas == nil {
				return errors.New(errors.ErrorTypeConfig, "no schema registry configured, set --schema-registry")
			}
			versions, err := a.schemas.GetSchemaHistory(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, v := range versions {
				fmt.Fprintf(out, "version %d %s (%s)\n", v.Version, v.Fingerprint, v.Compatibility)
				if i == 0 {
					continue
				}
				for _, c := range schema.Diff(versions[i-1].Schema, v.Schema) {
					fmt.Fprintf(out, "  %s\n", c)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(printCmd, parquetCmd, avroCmd, registerCmd, historyCmd)
	return cmd
}

func (a *app) schema(cmd *cobra.Command, name string) (*schema.Schema, error) {
	r, err := lookupRecord(name)
	if err != nil {
		return nil, err
	}
	return a.engine.Schema(cmd.Context(), r)
}

func newWriteCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the sample values of a record type",
	}

	var avroOut string
	avroCmd := &cobra.Command{
		Use:   "avro RECORD",
		Short: "Write samples to an Avro object container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, closeFn, err := output(cmd, avroOut)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			return a.writeSamples(cmd, args[0], func(s *schema.Schema) (columnio.RecordConsumer, func() error, error) {
				sink, err := avro.NewSink(w, s, avro.SinkOptions{Codec: a.cfg.Avro.Codec, Namespace: a.cfg.Avro.Namespace})
				if err != nil {
					return nil, nil, err
				}
				return sink, sink.Err, nil
			})
		},
	}
	avroCmd.Flags().StringVarP(&avroOut, "output", "o", "", "Container file to write")
	_ = avroCmd.MarkFlagRequired("output")

	var journalOut string
	journalCmd := &cobra.Command{
		Use:   "journal RECORD",
		Short: "Record the write events of the samples in a journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			compCfg, err := a.cfg.CompressionConfig()
			if err != nil {
				return err
			}
			codec, err := journal.NewCodec(compCfg)
			if err != nil {
				return err
			}
			w, closeFn, err := output(cmd, journalOut)
			if err != nil {
				return err
			}
			defer func() { _ = closeFn() }()
			return a.writeSamples(cmd, args[0], func(s *schema.Schema) (columnio.RecordConsumer, func() error, error) {
				rec := journal.NewRecorder(s)
				return rec, func() error { return codec.Encode(w, rec.Journal()) }, nil
			})
		},
	}
	journalCmd.Flags().StringVarP(&journalOut, "output", "o", "", "Journal file to write")
	_ = journalCmd.MarkFlagRequired("output")

	cmd.AddCommand(avroCmd, journalCmd)
	return cmd
}

// sinkFactory opens a consumer for s and the function finishing it.
type sinkFactory func(s *schema.Schema) (columnio.RecordConsumer, func() error, error)

func (a *app) writeSamples(cmd *cobra.Command, name string, open sinkFactory) error {
	e, err := catalog.Lookup(name)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	ws, err := a.engine.NewWriteSession(ctx, e.Record)
	if err != nil {
		return err
	}
	defer ws.Close()

	sink, finish, err := open(ws.Schema())
	if err != nil {
		return err
	}
	samples := e.Samples()
	if err := ws.WriteAll(ctx, sink, samples...); err != nil {
		return err
	}
	if err := finish(); err != nil {
		return err
	}
	a.log.Info("samples written", zap.String("record", name), zap.Int("records", len(samples)))
	return nil
}

func newReadCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read stored records as a registered record type",
	}

	var as string
	open := func(use, short string, load func(path string) (*columnio.MemoryStore, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " FILE",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := load(args[0])
				if err != nil {
					return err
				}
				return a.readStore(cmd, store, as)
			},
		}
	}

	avroCmd := open("avro", "Read an Avro object container", func(path string) (*columnio.MemoryStore, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open "+path)
		}
		defer f.Close()
		return avro.Load(f)
	})
	journalCmd := open("journal", "Replay a write event journal", func(path string) (*columnio.MemoryStore, error) {
		j, err := readJournal(path)
		if err != nil {
			return nil, err
		}
		store := columnio.NewMemoryStore(j.Schema)
		if err := j.Replay(store); err != nil {
			return nil, err
		}
		return store, store.Err()
	})

	parquetCmd := &cobra.Command{
		Use:   "parquet FILE",
		Short: "Project the schema of a Parquet file onto a record type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeFile, "failed to open "+args[0])
			}
			defer f.Close()
			file, rows, err := parquetschema.ReadFile(f)
			if err != nil {
				return err
			}
			r, err := lookupRecord(as)
			if err != nil {
				return err
			}
			projected, err := a.engine.Project(cmd.Context(), r, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rows: %d\n%s", rows, projected.String())
			return nil
		},
	}

	for _, c := range []*cobra.Command{avroCmd, journalCmd, parquetCmd} {
		c.Flags().StringVar(&as, "as", "", "Record type to read")
		_ = c.MarkFlagRequired("as")
	}
	cmd.AddCommand(avroCmd, journalCmd, parquetCmd)
	return cmd
}

// readStore prints every record of store read as the record type name, one
// JSON document per line. Unreadable records are logged and skipped.
func (a *app) readStore(cmd *cobra.Command, store *columnio.MemoryStore, name string) error {
	r, err := lookupRecord(name)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rs, err := a.engine.NewReadSession(ctx, r, store.Schema())
	if err != nil {
		return err
	}
	defer rs.Close()

	out := cmd.OutOrStdout()
	err = rs.Read(ctx, store, func(v any, err error) error {
		if err != nil {
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode record")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	})
	if err != nil {
		return err
	}
	if rs.Failed() > 0 {
		return errors.Newf(errors.ErrorTypeValueConversion, "%d of %d records could not be read",
			rs.Failed(), rs.Failed()+rs.Succeeded())
	}
	return nil
}

func readJournal(path string) (*journal.Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read "+path)
	}
	return journal.Decode(bytes.NewReader(data))
}

func newJournalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect write event journals",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump FILE",
		Short: "Print the schema and events of a journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := readJournal(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, j.Schema.String())
			for i, events := range j.Records {
				fmt.Fprintf(out, "record %d\n", i)
				for _, e := range events {
					fmt.Fprintf(out, "  %s\n", e)
				}
			}
			a.log.Debug("journal dumped", zap.String("path", args[0]), zap.Int("records", j.Len()))
			return nil
		},
	})
	return cmd
}
