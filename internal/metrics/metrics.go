package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "yurcoin"

// Metrics captures draw and persistence health signals.
type Metrics struct {
	draws           *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
	journalFailures prometheus.Counter
}

// New registers the instruments on reg. A nil registerer leaves them
// unregistered, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		draws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_total",
			Help:      "Draw attempts by outcome.",
		}, []string{"outcome"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points credited to user balances.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_persist_failures_total",
			Help:      "Ledger snapshots that could not be written.",
		}),
		persistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_persist_duration_seconds",
			Help:      "Time spent writing a ledger snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		journalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_failures_total",
			Help:      "Accepted draws that could not be journaled.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.draws, m.pointsAwarded, m.persistFailures, m.persistDuration, m.journalFailures)
	}
	return m
}

// ObserveDraw counts one draw outcome.
func (m *Metrics) ObserveDraw(outcome string, points int64) {
	if m == nil {
		return
	}
	m.draws.WithLabelValues(outcome).Inc()
	if points > 0 {
		m.pointsAwarded.Add(float64(points))
	}
}

// ObservePersist records one snapshot write.
func (m *Metrics) ObservePersist(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(d.Seconds())
	if err != nil {
		m.persistFailures.Inc()
	}
}

// ObserveJournalFailure counts a draw that did not reach the journal.
func (m *Metrics) ObserveJournalFailure() {
	if m == nil {
		return
	}
	m.journalFailures.Inc()
}
