package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := StartSpan(context.Background(), tracer, "write", "Parent", attribute.Int("records", 2))
	EndSpan(span, nil)
	_, span = StartSpan(context.Background(), tracer, "read", "Parent")
	EndSpan(span, errors.New(errors.ErrorTypeSchemaMismatch, "column does not fit"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "recordcol.write", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("recordcol.record", "Parent"))

	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Contains(t, ended[1].Attributes(), attribute.String("recordcol.error_type", "schema_mismatch"))
}

func TestInitTracing(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitTracing(TracingConfig{Enabled: true, Exporter: "zipkin"}, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	var out bytes.Buffer
	shutdown, err = InitTracing(TracingConfig{Enabled: true, ServiceName: "recordcol", SamplingRate: 1}, &out)
	require.NoError(t, err)
	_, span := StartSpan(context.Background(), Tracer(), "schema", "Child")
	EndSpan(span, nil)
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, out.String(), "recordcol.schema")
}
