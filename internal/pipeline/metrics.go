package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Facility outcomes reported on edufin_facilities_processed_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics are the Prometheus collectors of the analysis pipeline. A nil
// *Metrics records nothing.
type Metrics struct {
	FacilitiesProcessed *prometheus.CounterVec
	ExtractDuration     *prometheus.HistogramVec
	RegistryEntries     prometheus.Gauge
	QueueDepth          prometheus.GaugeFunc
}

// NewMetrics creates the collectors and registers them with reg when reg
// is not nil. queueDepth may be nil.
func NewMetrics(reg prometheus.Registerer, queueDepth func() float64) *Metrics {
	m := &Metrics{
		FacilitiesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edufin_facilities_processed_total",
			Help: "Facilities analyzed, by outcome.",
		}, []string{"status"}),
		ExtractDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edufin_extract_duration_seconds",
			Help:    "Statement extraction latency by file format.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"format"}),
		RegistryEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "edufin_registry_entries",
			Help: "Distinct facility keys in the published registry index.",
		}),
	}
	collectors := []prometheus.Collector{m.FacilitiesProcessed, m.ExtractDuration, m.RegistryEntries}
	if queueDepth != nil {
		m.QueueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "edufin_job_queue_depth",
			Help: "Jobs waiting for a worker.",
		}, queueDepth)
		collectors = append(collectors, m.QueueDepth)
	}
	if reg != nil {
		reg.MustRegister(collectors...)
	}
	return m
}

func (m *Metrics) facilityDone(err error) {
	if m == nil {
		return
	}
	status := OutcomeOK
	if err != nil {
		status = OutcomeError
	}
	m.FacilitiesProcessed.WithLabelValues(status).Inc()
}

func (m *Metrics) extracted(format string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractDuration.WithLabelValues(format).Observe(d.Seconds())
}

// SetRegistryEntries reports the size of a newly published index.
func (m *Metrics) SetRegistryEntries(n int) {
	if m == nil {
		return
	}
	m.RegistryEntries.Set(float64(n))
}
