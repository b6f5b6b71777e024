package converter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pinyin_converter"

// Metrics holds the Prometheus metrics of one conversion run. Each
// instance owns its registry so runs and tests do not share counters.
type Metrics struct {
	registry *prometheus.Registry

	LinesTotal         prometheus.Counter
	EntriesTotal       prometheus.Counter
	FailuresTotal      *prometheus.CounterVec
	FallbacksTotal     prometheus.Counter
	SyllablesPerEntry  prometheus.Histogram
	SinkWritesTotal    *prometheus.CounterVec
	RunDurationSeconds prometheus.Gauge
}

// NewMetrics creates and registers all conversion metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		LinesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Dictionary lines converted",
		}),
		EntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "Dictionary entries converted",
		}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segmentation_failures_total",
			Help:      "Entries written with an empty syllable field",
		}, []string{"mode"}),
		FallbacksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "greedy_fallbacks_total",
			Help:      "Exact segmentations that fell back to the greedy result",
		}),
		SyllablesPerEntry: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "syllables_per_entry",
			Help:      "Number of syllables produced per segmented entry",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		SinkWritesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Records accepted by each sink",
		}, []string{"sink"}),
		RunDurationSeconds: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last conversion run",
		}),
	}
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
