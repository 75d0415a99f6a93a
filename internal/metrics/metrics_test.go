package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artcava/XPoster/internal/metrics"
)

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveInvocation("valuation", 2*time.Second)
	m.ObserveGeneration("Valuation", "ready")
	m.ObserveGeneration("Valuation", "ready")
	m.ObserveTransmission("x", metrics.ResultSent)

	assert.InDelta(t, 1, testutil.ToFloat64(m.InvocationsTotal.WithLabelValues("valuation")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("Valuation", "ready")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TransmissionsTotal.WithLabelValues("x", "sent")), 0)

	expected := `
# HELP xposter_transmissions_total Transmission attempts by channel and result
# TYPE xposter_transmissions_total counter
xposter_transmissions_total{channel="x",result="sent"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "xposter_transmissions_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.InvocationDurationSeconds))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveInvocation("nosend", time.Millisecond)
		m.ObserveGeneration("NoSend", "rejected")
		m.ObserveTransmission("x", metrics.ResultFailed)
	})
}
