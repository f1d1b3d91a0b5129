package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordHelpers(t *testing.T) {
	// Distinct namespace so the collectors do not collide with
	// DefaultMetrics in the shared registry.
	m := NewMetrics("gemchain_test")

	m.RecordRun("completed", 1.5)
	m.RecordRun("failed", 0.2)
	m.RecordEligible(7)
	m.RecordSuccessfulRunAt(time.Unix(1700000000, 0))
	m.RecordTokenProcessed("primary")
	m.RecordTokenProcessed("primary")
	m.RecordFetchFailure("secondary")
	m.RecordPersistFailure()
	m.RecordFallback(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.EligibleTokens))
	assert.Equal(t, float64(1700000000), testutil.ToFloat64(m.LastSuccessfulRun))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokensProcessed.WithLabelValues("primary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("secondary")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.FallbackTokens))
}

func TestMetrics_NilReceiverIsNoOp(t *testing.T) {
	var m *Metrics

	m.RecordRun("completed", 1.0)
	m.RecordEligible(1)
	m.RecordSuccessfulRunAt(time.Now())
	m.RecordTokenProcessed("primary")
	m.RecordFetchFailure("primary")
	m.RecordPersistFailure()
	m.RecordFallback(1)
}
