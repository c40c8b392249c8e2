package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Compute timing
	ExecuteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sgm_execute_duration_ms",
		Help:    "Duration of one synchronized SGM compute invocation in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 15), // 0.25ms to ~4s
	})

	// Streaming mode
	FramesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgm_frames_processed_total",
		Help: "Total number of frames run through the matcher",
	})

	FramesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgm_frames_persisted_total",
		Help: "Total number of disparity maps written to disk",
	})

	FrameWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgm_frame_write_failures_total",
		Help: "Total number of disparity maps that failed to persist",
	})

	FramesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgm_frames_skipped_total",
		Help: "Total number of frames skipped due to validation failures",
	})

	StreamFPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sgm_stream_fps",
		Help: "Instantaneous throughput of the last processed frame in frames per second",
	})

	// Device
	DeviceMemoryUsedBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gpu_memory_used_bytes",
		Help: "Device memory currently in use in bytes",
	})
)
