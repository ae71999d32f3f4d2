// Package metrics exposes Prometheus metrics for record mapping sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ajitpratap0/recordcol/pkg/errors"
)

const namespace = "recordcol"

// Direction labels.
const (
	Write = "write"
	Read  = "read"
)

// Collector holds the metrics of one engine.
type Collector struct {
	records        *prometheus.CounterVec
	recordFailures *prometheus.CounterVec
	buildLatency   *prometheus.HistogramVec
	buildFailures  *prometheus.CounterVec
	activeSessions *prometheus.GaugeVec
}

// NewCollector creates the metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records written or read successfully",
			},
			[]string{"direction", "record"},
		),
		recordFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_failures_total",
				Help:      "Records that could not be written or read, by error type",
			},
			[]string{"direction", "record", "error_type"},
		),
		buildLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Time spent deriving schemas and trees",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"stage"},
		),
		buildFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_failures_total",
				Help:      "Failed schema or tree builds, by error type",
			},
			[]string{"stage", "error_type"},
		),
		activeSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently writing or reading",
			},
			[]string{"direction"},
		),
	}
	if reg != nil {
		for _, m := range []prometheus.Collector{c.records, c.recordFailures, c.buildLatency, c.buildFailures, c.activeSessions} {
			if err := reg.Register(m); err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to register metrics")
			}
		}
	}
	return c, nil
}

// RecordWritten counts a record written successfully.
func (c *Collector) RecordWritten(record string) {
	c.records.WithLabelValues(Write, record).Inc()
}

// RecordRead counts a record read successfully.
func (c *Collector) RecordRead(record string) {
	c.records.WithLabelValues(Read, record).Inc()
}

// RecordFailed counts a record that failed with err.
func (c *Collector) RecordFailed(direction, record string, err error) {
	c.recordFailures.WithLabelValues(direction, record, string(errors.TypeOf(err))).Inc()
}

// ObserveBuild records the duration of a build stage started at start,
// counting it as failed when err is not nil.
func (c *Collector) ObserveBuild(stage string, start time.Time, err error) {
	c.buildLatency.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		c.buildFailures.WithLabelValues(stage, string(errors.TypeOf(err))).Inc()
	}
}

// SessionStarted tracks a session until the returned function is called.
func (c *Collector) SessionStarted(direction string) func() {
	g := c.activeSessions.WithLabelValues(direction)
	g.Inc()
	return g.Dec
}
