package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReconcileOutcome("submitted")
	m.ReconcileOutcome("submitted")
	m.ReconcileOutcome("canceled")
	m.PaymentConfirmed(false)
	m.PaymentConfirmed(true)
	m.TxFinished(true)
	m.TxFinished(false)
	m.TxFinished(true)
	m.ObserveRPC("/splitledger.v1.LedgerService/ReconcilePayment", "ok", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconcile.WithLabelValues("submitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconcile.WithLabelValues("canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirmations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.confirmations.WithLabelValues("false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("rollback")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rpcDuration))
}
