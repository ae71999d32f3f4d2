// Package engine wires schema derivation, projection and the record trees
// to logging, metrics and tracing.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/recordcol/pkg/columnio"
	"github.com/ajitpratap0/recordcol/pkg/config"
	"github.com/ajitpratap0/recordcol/pkg/errors"
	"github.com/ajitpratap0/recordcol/pkg/logger"
	"github.com/ajitpratap0/recordcol/pkg/metrics"
	"github.com/ajitpratap0/recordcol/pkg/observability"
	"github.com/ajitpratap0/recordcol/pkg/reader"
	"github.com/ajitpratap0/recordcol/pkg/schema"
	"github.com/ajitpratap0/recordcol/pkg/typemodel"
	"github.com/ajitpratap0/recordcol/pkg/writer"
)

// Build stages reported to metrics and traces.
const (
	StageSchema    = "schema"
	StageWriter    = "writer"
	StageProject   = "project"
	StageConverter = "converter"
	StageRegister  = "register"
)

// Engine builds sessions from one configuration. It holds no per-session
// state and is safe for concurrent use.
type Engine struct {
	cfg     *config.Config
	builder *schema.Builder
	filter  *schema.Filter
	wopts   writer.Options
	ropts   reader.Options

	logger   *zap.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	registry *schema.Registry
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is logger.Get().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics reports sessions to c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithTracer sets the tracer. The default is the global engine tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithRegistry registers the schema of every write session in r, so a
// record type cannot drift from its earlier versions.
func WithRegistry(r *schema.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// New validates cfg and returns an engine for it. A nil cfg selects the
// defaults.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bopts, err := cfg.BuildOptions()
	if err != nil {
		return nil, err
	}
	fopts, err := cfg.FilterOptions()
	if err != nil {
		return nil, err
	}
	wopts, err := cfg.WriterOptions()
	if err != nil {
		return nil, err
	}
	ropts, err := cfg.ReaderOptions()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		builder: schema.NewBuilder(bopts),
		filter:  schema.NewFilter(fopts),
		wopts:   wopts,
		ropts:   ropts,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	if e.tracer == nil {
		e.tracer = observability.Tracer()
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// stage runs one build stage of record inside a span, timing it.
func (e *Engine) stage(ctx context.Context, name string, r *typemodel.Record, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, name+" build cancelled")
	}
	_, span := observability.StartSpan(ctx, e.tracer, name, r.Name())
	start := time.Now()
	err := fn()
	observability.EndSpan(span, err)
	if e.metrics != nil {
		e.metrics.ObserveBuild(name, start, err)
	}
	l := logger.WithContext(ctx, e.logger)
	if err != nil {
		l.Warn("build failed",
			zap.String("stage", name),
			zap.String("record", r.Name()),
			zap.String("error_type", string(errors.TypeOf(err))),
			zap.Error(err))
		return err
	}
	l.Debug("build completed",
		zap.String("stage", name),
		zap.String("record", r.Name()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Schema derives the column schema of r.
func (e *Engine) Schema(ctx context.Context, r *typemodel.Record) (*schema.Schema, error) {
	var s *schema.Schema
	err := e.stage(ctx, StageSchema, r, func() error {
		var err error
		s, err = e.builder.Build(r)
		return err
	})
	return s, err
}

// Project narrows file to the columns r reads.
func (e *Engine) Project(ctx context.Context, r *typemodel.Record, file *schema.Schema) (*schema.Schema, error) {
	var projected *schema.Schema
	err := e.stage(ctx, StageProject, r, func() error {
		var err error
		projected, err = e.filter.Project(r, file)
		return err
	})
	return projected, err
}

// session holds what write and read sessions share.
type session struct {
	id        string
	direction string
	record    *typemodel.Record
	logger    *zap.Logger
	metrics   *metrics.Collector
	done      func()
	ok        int
	failed    int
}

func (e *Engine) newSession(ctx context.Context, direction string, r *typemodel.Record) (context.Context, *session) {
	id := uuid.NewString()
	ctx = logger.ContextWithSession(ctx, id, r.Name())
	s := &session{
		id:        id,
		direction: direction,
		record:    r,
		logger:    logger.WithContext(ctx, e.logger).With(zap.String("direction", direction)),
		metrics:   e.metrics,
		done:      func() {},
	}
	if e.metrics != nil {
		s.done = e.metrics.SessionStarted(direction)
	}
	return ctx, s
}

// ID returns the session id carried in logs.
func (s *session) ID() string { return s.id }

// Succeeded returns the number of records mapped successfully.
func (s *session) Succeeded() int { return s.ok }

// Failed returns the number of records that failed.
func (s *session) Failed() int { return s.failed }

func (s *session) succeeded() {
	s.ok++
	if s.metrics == nil {
		return
	}
	if s.direction == metrics.Write {
		s.metrics.RecordWritten(s.record.Name())
	} else {
		s.metrics.RecordRead(s.record.Name())
	}
}

func (s *session) fail(err error) {
	s.failed++
	if s.metrics != nil {
		s.metrics.RecordFailed(s.direction, s.record.Name(), err)
	}
	s.logger.Warn("record failed",
		zap.Int("record_index", s.ok+s.failed-1),
		zap.String("error_type", string(errors.TypeOf(err))),
		zap.Error(err))
}

// Close ends the session.
func (s *session) Close() {
	s.done()
	s.done = func() {}
	s.logger.Debug("session closed", zap.Int("succeeded", s.ok), zap.Int("failed", s.failed))
}

// WriteSession writes values of one record type. It is not safe for
// concurrent use.
type WriteSession struct {
	*session
	schema *schema.Schema
	writer *writer.RecordWriter
}

// NewWriteSession derives the schema of r and builds its writer tree.
// With a registry the schema is first registered under the record name.
func (e *Engine) NewWriteSession(ctx context.Context, r *typemodel.Record) (*WriteSession, error) {
	s, err := e.Schema(ctx, r)
	if err != nil {
		return nil, err
	}
	if e.registry != nil {
		if err := e.stage(ctx, StageRegister, r, func() error {
			_, err := e.registry.RegisterSchema(ctx, r.Name(), s)
			return err
		}); err != nil {
			return nil, err
		}
	}
	var w *writer.RecordWriter
	if err := e.stage(ctx, StageWriter, r, func() error {
		var err error
		w, err = writer.Build(r, s, e.wopts)
		return err
	}); err != nil {
		return nil, err
	}
	_, sess := e.newSession(ctx, metrics.Write, r)
	return &WriteSession{session: sess, schema: s, writer: w}, nil
}

// Schema returns the schema the session writes.
func (ws *WriteSession) Schema() *schema.Schema { return ws.schema }

// Write emits the events of value to c. A failed value may leave a
// partial record in c.
func (ws *WriteSession) Write(ctx context.Context, c columnio.RecordConsumer, value any) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "write cancelled")
	}
	if err := ws.writer.Write(c, value); err != nil {
		ws.fail(err)
		return err
	}
	ws.succeeded()
	return nil
}

// WriteAll writes values in order, stopping at the first failure.
func (ws *WriteSession) WriteAll(ctx context.Context, c columnio.RecordConsumer, values ...any) error {
	for _, v := range values {
		if err := ws.Write(ctx, c, v); err != nil {
			return err
		}
	}
	return nil
}

// Source replays stored column records into a converter tree.
type Source interface {
	Schema() *schema.Schema
	Replay(requested *schema.Schema, root columnio.GroupConverter, opts columnio.ReplayOptions, each func() error) error
}

// ReadSession reads values of one record type from a projected schema. It
// is not safe for concurrent use.
type ReadSession struct {
	*session
	projected    *schema.Schema
	materializer *reader.Materializer
	dictionary   bool
}

// NewReadSession projects file onto r and builds the converter tree.
func (e *Engine) NewReadSession(ctx context.Context, r *typemodel.Record, file *schema.Schema) (*ReadSession, error) {
	projected, err := e.Project(ctx, r, file)
	if err != nil {
		return nil, err
	}
	var m *reader.Materializer
	if err := e.stage(ctx, StageConverter, r, func() error {
		var err error
		m, err = reader.Build(projected, r, e.ropts)
		return err
	}); err != nil {
		return nil, err
	}
	_, sess := e.newSession(ctx, metrics.Read, r)
	return &ReadSession{session: sess, projected: projected, materializer: m, dictionary: e.cfg.Read.Dictionary}, nil
}

// Schema returns the projected schema the session requests.
func (rs *ReadSession) Schema() *schema.Schema { return rs.projected }

// Root returns the converter tree to drive with read events.
func (rs *ReadSession) Root() columnio.GroupConverter { return rs.materializer.Root() }

// Current returns the record completed last, counting it.
func (rs *ReadSession) Current() (any, error) {
	v, err := rs.materializer.Current()
	if err != nil {
		rs.fail(err)
		return nil, err
	}
	rs.succeeded()
	return v, nil
}

// Read replays src and calls fn with each value, or with the error that
// made the record unreadable. Reading stops when fn returns an error or
// ctx is done.
func (rs *ReadSession) Read(ctx context.Context, src Source, fn func(value any, err error) error) error {
	return src.Replay(rs.projected, rs.Root(), columnio.ReplayOptions{Dictionary: rs.dictionary}, func() error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "read cancelled")
		}
		return fn(rs.Current())
	})
}

// ReadAll replays src and returns every value, stopping at the first
// record that cannot be read.
func (rs *ReadSession) ReadAll(ctx context.Context, src Source) ([]any, error) {
	var out []any
	err := rs.Read(ctx, src, func(v any, err error) error {
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}
