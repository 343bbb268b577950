// Package metrics exposes Prometheus collectors for the ledger and its RPC surface.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

// Metrics implements ledger.Recorder and sqlstore.TxObserver.
type Metrics struct {
	reconcile     *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	transactions  *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reconcile: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_total",
			Help:      "Payment reconciliations by outcome.",
		}, []string{"outcome"}),
		confirmations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_confirmations_total",
			Help:      "Payment confirmations, split by administrative override.",
		}, []string{"forced"}),
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tx_total",
			Help:      "Finished database transactions by result.",
		}, []string{"result"}),
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
	}
}

// ReconcileOutcome counts one reconciliation.
func (m *Metrics) ReconcileOutcome(outcome string) {
	m.reconcile.WithLabelValues(outcome).Inc()
}

// PaymentConfirmed counts one confirmation.
func (m *Metrics) PaymentConfirmed(forced bool) {
	m.confirmations.WithLabelValues(strconv.FormatBool(forced)).Inc()
}

// TxFinished counts one committed or rolled back transaction.
func (m *Metrics) TxFinished(committed bool) {
	result := "rollback"
	if committed {
		result = "commit"
	}
	m.transactions.WithLabelValues(result).Inc()
}

// ObserveRPC records the latency of one RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	m.rpcDuration.WithLabelValues(procedure, code).Observe(elapsed.Seconds())
}
