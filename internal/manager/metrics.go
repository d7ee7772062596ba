package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	sequencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topohmm",
			Subsystem: "predict",
			Name:      "sequences_total",
			Help:      "Sequences decoded, by outcome",
		},
		[]string{"model", "outcome"},
	)

	residuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topohmm",
			Subsystem: "predict",
			Name:      "residues_total",
			Help:      "Residues decoded",
		},
		[]string{"model"},
	)

	predictDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "topohmm",
			Subsystem: "predict",
			Name:      "sequence_duration_seconds",
			Help:      "Time to decode one sequence",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"model"},
	)

	predictInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "topohmm",
			Subsystem: "predict",
			Name:      "inflight",
			Help:      "Requests holding a decoding slot",
		},
	)

	admissionRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topohmm",
			Subsystem: "predict",
			Name:      "admission_rejections_total",
			Help:      "Requests rejected by admission control",
		},
		[]string{"reason"},
	)

	modelLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topohmm",
			Subsystem: "model",
			Name:      "loads_total",
			Help:      "Model load attempts, by outcome",
		},
		[]string{"model", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(sequencesTotal, residuesTotal, predictDuration, predictInflight, admissionRejections, modelLoads)
}
