package shared

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "staking_ledger"
)

type PipelineMetrics struct {
	// Height of the chain as reported by the node
	chainHeight prometheus.Gauge

	// Last block persisted by the ingester
	lastIngestedBlock prometheus.Gauge

	// Duration of the last run of each phase in milliseconds
	phaseDuration *prometheus.GaugeVec

	// Failed pipeline runs
	failedRuns prometheus.Counter
}

var (
	Metrics = newPipelineMetrics(prometheus.DefaultRegisterer)
)

func newPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		chainHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "chain_height",
			Help:      "Height of the chain as reported by the node",
		}),
		lastIngestedBlock: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_ingested_block",
			Help:      "Last block persisted by the ingester",
		}),
		phaseDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "phase_duration_ms",
			Help:      "Duration of the last run of a pipeline phase in milliseconds",
		}, []string{"phase"}),
		failedRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failed_runs_total",
			Help:      "Number of failed pipeline runs",
		}),
	}
}

func (m *PipelineMetrics) UpdateIngest(chainHeight uint32, lastBlock uint32) {
	m.chainHeight.Set(float64(chainHeight))
	m.lastIngestedBlock.Set(float64(lastBlock))
}

func (m *PipelineMetrics) PhaseDone(phase string, durationMillis int64) {
	m.phaseDuration.WithLabelValues(phase).Set(float64(durationMillis))
}

func (m *PipelineMetrics) RunFailed() {
	m.failedRuns.Inc()
}
