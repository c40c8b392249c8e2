package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHarnessMetrics(t *testing.T) {
	t.Run("ExecuteDuration", func(t *testing.T) {
		ExecuteDuration.Observe(12.5)
		ExecuteDuration.Observe(13.1)

		// Histograms can't be read back with testutil; just verify
		// observation doesn't panic
		assert.NotPanics(t, func() {
			ExecuteDuration.Observe(14.2)
		})
	})

	t.Run("FramesProcessed", func(t *testing.T) {
		before := testutil.ToFloat64(FramesProcessed)
		FramesProcessed.Inc()
		FramesProcessed.Inc()
		assert.Equal(t, before+2, testutil.ToFloat64(FramesProcessed))
	})

	t.Run("FrameWriteFailures", func(t *testing.T) {
		before := testutil.ToFloat64(FrameWriteFailures)
		FrameWriteFailures.Inc()
		assert.Equal(t, before+1, testutil.ToFloat64(FrameWriteFailures))
	})

	t.Run("StreamFPS", func(t *testing.T) {
		StreamFPS.Set(31.9)
		assert.Equal(t, 31.9, testutil.ToFloat64(StreamFPS))
	})

	t.Run("DeviceMemoryUsedBytes", func(t *testing.T) {
		DeviceMemoryUsedBytes.Set(1 << 30)
		assert.Equal(t, float64(1<<30), testutil.ToFloat64(DeviceMemoryUsedBytes))
	})
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		ExecuteDuration,
		FramesProcessed,
		FramesPersisted,
		FrameWriteFailures,
		FramesSkipped,
		StreamFPS,
		DeviceMemoryUsedBytes,
	}

	for _, c := range collectors {
		// Registering an already-registered collector must not panic
		assert.NotPanics(t, func() {
			_ = prometheus.Register(c)
			prometheus.Unregister(c)
		})
	}
}
