package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSampleComputesAvailabilityAndErrorRate(t *testing.T) {
	for i := 0; i < 98; i++ {
		ObserveRequest(200, 0.01)
	}
	ObserveRequest(500, 0.01)
	ObserveRequest(503, 0.01)

	Sample()

	assert.InDelta(t, 0.98, testutil.ToFloat64(SLOAvailability), 1e-9)
	assert.InDelta(t, 0.02, testutil.ToFloat64(SLOErrorRate), 1e-9)
}

func TestSampleApproximatesLatencyQuantiles(t *testing.T) {
	// 95 fast requests, 5 slow ones: p95 lands in the fast bucket, p99 in
	// the slow one.
	for i := 0; i < 95; i++ {
		ObserveRequest(200, 0.02)
	}
	for i := 0; i < 5; i++ {
		ObserveRequest(200, 0.9)
	}

	Sample()

	assert.InDelta(t, 0.025, testutil.ToFloat64(SLOLatencyP95), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(SLOLatencyP99), 1e-9)
}

func TestSampleWithoutTrafficKeepsGauges(t *testing.T) {
	ObserveRequest(200, 0.01)
	Sample()
	before := testutil.ToFloat64(SLOAvailability)

	// Empty window, gauges stay where they were.
	Sample()
	assert.Equal(t, before, testutil.ToFloat64(SLOAvailability))
}

func TestObserveRequestCountsOnlyServerErrors(t *testing.T) {
	ObserveRequest(404, 0.01)
	ObserveRequest(429, 0.01)
	ObserveRequest(200, 0.01)

	Sample()

	assert.InDelta(t, 1.0, testutil.ToFloat64(SLOAvailability), 1e-9)
	assert.InDelta(t, 0.0, testutil.ToFloat64(SLOErrorRate), 1e-9)
}
