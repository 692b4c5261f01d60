package application

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "nssa_wallet"

var (
	lastSyncedBlockGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "sync",
		Name:      "last_synced_block",
		Help:      "Id of the last block whose effects are applied to the wallet.",
	})
	scannedBlocksCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sync",
		Name:      "scanned_blocks_total",
		Help:      "Number of blocks applied to the wallet.",
	})
	scannedOutputsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sync",
		Name:      "scanned_outputs_total",
		Help:      "Number of commitments and nullifiers tested for relevance.",
	})
	relevantOutputsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "sync",
		Name:      "relevant_outputs_total",
		Help:      "Number of outputs found to belong to owned accounts.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		lastSyncedBlockGauge,
		scannedBlocksCounter,
		scannedOutputsCounter,
		relevantOutputsCounter,
	)
}

func observeBlock(report *blockReport) {
	lastSyncedBlockGauge.Set(float64(report.blockId))
	scannedBlocksCounter.Inc()
	scannedOutputsCounter.Add(float64(report.scannedOutputs))
	relevantOutputsCounter.WithLabelValues("note").Add(float64(report.receivedNotes))
	relevantOutputsCounter.WithLabelValues("nullifier").Add(float64(report.spentNotes))
}
