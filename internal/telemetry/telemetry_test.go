package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/easypost/internal/telemetry"
	"github.com/tournevent/easypost/pkg/easypost"
)

var _ easypost.Recorder = (*telemetry.Metrics)(nil)

func TestMetrics_RecordRequest(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("GET", "scan_forms/{id}", 200, 30*time.Millisecond)
	m.RecordRequest("GET", "scan_forms/{id}", 200, 10*time.Millisecond)
	m.RecordRequest("GET", "scan_forms/{id}", 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("GET", "scan_forms/{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("GET", "scan_forms/{id}", "0")))
}

func TestMetrics_RecordError(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())

	m.RecordError(easypost.CodeNotFound)
	m.RecordError(easypost.CodeNotFound)
	m.RecordError(easypost.CodeParseError)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.APIErrors.WithLabelValues(easypost.CodeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIErrors.WithLabelValues(easypost.CodeParseError)))
}

func TestMetrics_RecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.RecordOperation("quote", "easypost", "success", 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("quote", "easypost", "success")))
	count, err := testutil.GatherAndCount(reg, "easypost_bridge_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.NewMetrics(prometheus.NewRegistry())
		telemetry.NewMetrics(prometheus.NewRegistry())
	})
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := telemetry.NewLogger("debug", format)
		require.NoError(t, err)
		logger.Ctx(context.Background()).Debug("hello")
	}
}
