package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "walog"

// Metrics tracks the group-commit engine. A nil *Metrics records nothing.
type Metrics struct {
	Appends          *prometheus.CounterVec
	Batches          prometheus.Counter
	BatchSize        prometheus.Histogram
	SyncSeconds      prometheus.Histogram
	SyncFailures     prometheus.Counter
	ClosedRejections prometheus.Counter
}

// New creates the collectors and registers them on reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Append operations enqueued, by event type.",
		}, []string{"event"}),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Group-commit batches written.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Work items per group-commit batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		SyncSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_seconds",
			Help:      "Time spent writing, flushing and syncing one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_failures_total",
			Help:      "Batches whose write, flush or sync failed.",
		}),
		ClosedRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "closed_rejections_total",
			Help:      "Appends rejected because the log was closed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Appends, m.Batches, m.BatchSize, m.SyncSeconds, m.SyncFailures, m.ClosedRejections)
	}
	return m
}

func (m *Metrics) ObserveAppend(event string) {
	if m == nil {
		return
	}
	m.Appends.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveBatch(items int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Batches.Inc()
	m.BatchSize.Observe(float64(items))
	m.SyncSeconds.Observe(elapsed.Seconds())
	if err != nil {
		m.SyncFailures.Inc()
	}
}

func (m *Metrics) ObserveClosedRejection() {
	if m == nil {
		return
	}
	m.ClosedRejections.Inc()
}
