package bootstrap

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "blockbootstrap"

// Metrics counts resampling work. A nil *Metrics records nothing.
type Metrics struct {
	Samples         prometheus.Counter
	BlocksDrawn     prometheus.Counter
	RowsEmitted     prometheus.Counter
	TruncatedBlocks prometheus.Counter
	BlockRows       prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "samples_total",
			Help:      "Bootstrap samples produced.",
		}),
		BlocksDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blocks_drawn_total",
			Help:      "Blocks copied into bootstrap samples.",
		}),
		RowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_emitted_total",
			Help:      "Rows written into bootstrap samples.",
		}),
		TruncatedBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "truncated_blocks_total",
			Help:      "Blocks cut short to fit the target length.",
		}),
		BlockRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "block_rows",
			Help:      "Rows available in each drawn block.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Samples, m.BlocksDrawn, m.RowsEmitted, m.TruncatedBlocks, m.BlockRows)
	}
	return m
}

func (m *Metrics) observeBlock(available, taken int) {
	if m == nil {
		return
	}
	m.BlocksDrawn.Inc()
	m.BlockRows.Observe(float64(available))
	m.RowsEmitted.Add(float64(taken))
	if taken < available {
		m.TruncatedBlocks.Inc()
	}
}

func (m *Metrics) observeSample() {
	if m == nil {
		return
	}
	m.Samples.Inc()
}
