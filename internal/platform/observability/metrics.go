package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lueurxax/websift/internal/core/domain"
)

const (
	labelStatus = "status"
	labelReason = "reason"
)

// Metrics holds the collectors of a single batch run. Each run gets its own
// registry so repeated runs in one process never share counters.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal     *prometheus.CounterVec
	DropsTotal         *prometheus.CounterVec
	BytesTotal         prometheus.Counter
	RunDurationSeconds prometheus.Gauge
	Workers            prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DocumentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "websift_documents_total",
			Help: "The total number of classified documents by status",
		}, []string{labelStatus}),

		DropsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "websift_drops_total",
			Help: "Total number of dropped documents by reason",
		}, []string{labelReason}),

		BytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "websift_bytes_total",
			Help: "UTF-8 bytes of classified document text",
		}),

		RunDurationSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "websift_run_duration_seconds",
			Help: "Wall-clock duration of the last batch run",
		}),

		Workers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "websift_workers",
			Help: "Number of classification workers used by the last run",
		}),
	}
}

// ObserveRun records a merged aggregate. It is called once per run.
func (m *Metrics) ObserveRun(agg domain.Aggregate, elapsed time.Duration, workers int) {
	m.DocumentsTotal.WithLabelValues(domain.StatusKeep).Add(float64(agg.Kept))
	m.DocumentsTotal.WithLabelValues(domain.StatusReject).Add(float64(agg.Dropped))

	for reason, n := range agg.Reasons {
		m.DropsTotal.WithLabelValues(string(reason)).Add(float64(n))
	}

	m.BytesTotal.Add(float64(agg.Bytes))
	m.RunDurationSeconds.Set(elapsed.Seconds())
	m.Workers.Set(float64(workers))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}

	return nil
}
