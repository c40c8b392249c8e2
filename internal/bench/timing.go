package bench

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/openstereo/sgmbench/internal/frameio"
	"github.com/openstereo/sgmbench/internal/gpu"
	"github.com/openstereo/sgmbench/internal/metrics"
	"github.com/openstereo/sgmbench/internal/stereo"
)

// TimingOptions configures a single-pair timing run.
type TimingOptions struct {
	LeftFormat      string
	RightFormat     string
	StartIndex      int
	DisparitySize   int
	WarmupRuns      int
	MeasurementRuns int
}

func (o TimingOptions) validate() error {
	if o.WarmupRuns < 0 {
		return fmt.Errorf("warm-up run count must not be negative, got %d", o.WarmupRuns)
	}
	if o.MeasurementRuns <= 0 {
		return fmt.Errorf("measurement run count must be positive, got %d", o.MeasurementRuns)
	}
	return nil
}

// TimingResult holds the per-iteration durations of the measurement phase.
// Warm-up iterations are discarded before recording starts and never
// contribute to the mean.
type TimingResult struct {
	Config          stereo.Config
	WarmupRuns      int
	MeasurementRuns int
	Durations       []time.Duration
}

// MeanMilliseconds is the arithmetic mean over exactly the measurement
// durations.
func (r *TimingResult) MeanMilliseconds() float64 {
	samples := make([]float64, len(r.Durations))
	for i, d := range r.Durations {
		samples[i] = float64(d) / float64(time.Millisecond)
	}
	return stat.Mean(samples, nil)
}

// StdDevMilliseconds is the sample standard deviation of the measurement
// durations.
func (r *TimingResult) StdDevMilliseconds() float64 {
	if len(r.Durations) < 2 {
		return 0
	}
	samples := make([]float64, len(r.Durations))
	for i, d := range r.Durations {
		samples[i] = float64(d) / float64(time.Millisecond)
	}
	return stat.StdDev(samples, nil)
}

// TimingRunner drives the single-pair timing mode: upload once, then a
// fixed number of warm-up and measurement iterations with a device
// barrier before every clock stop.
type TimingRunner struct {
	Backend    gpu.Backend
	NewMatcher stereo.MatcherFactory
	Logger     *zap.Logger
}

func (r *TimingRunner) Run(opts TimingOptions) (*TimingResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	left, right, err := frameio.LoadPair(opts.LeftFormat, opts.RightFormat, opts.StartIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to read image pair %d (check start index and image paths): %w", opts.StartIndex, err)
	}

	cfg, err := stereo.ConfigForPair(left, right, opts.DisparitySize)
	if err != nil {
		return nil, err
	}

	matcher, err := r.NewMatcher(cfg)
	if err != nil {
		return nil, err
	}
	defer matcher.Close()

	srcBytes, err := cfg.SrcBytes()
	if err != nil {
		return nil, err
	}
	dstBytes, err := cfg.DstBytes()
	if err != nil {
		return nil, err
	}

	dLeft, err := r.Backend.Allocate(srcBytes)
	if err != nil {
		return nil, err
	}
	defer dLeft.Free()
	dRight, err := r.Backend.Allocate(srcBytes)
	if err != nil {
		return nil, err
	}
	defer dRight.Free()
	dOut, err := r.Backend.Allocate(dstBytes)
	if err != nil {
		return nil, err
	}
	defer dOut.Free()

	// Inputs go to the device exactly once, outside the timing loop, so
	// measured iterations see compute cost only.
	if err := dLeft.Upload(left.Bytes()); err != nil {
		return nil, err
	}
	if err := dRight.Upload(right.Bytes()); err != nil {
		return nil, err
	}

	metrics.DeviceMemoryUsedBytes.Set(float64(2*srcBytes + dstBytes))

	r.Logger.Info("starting performance measurement",
		zap.Int("warmup_runs", opts.WarmupRuns),
		zap.Int("measurement_runs", opts.MeasurementRuns),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("disparity_size", cfg.DisparitySize))

	result := &TimingResult{
		Config:          cfg,
		WarmupRuns:      opts.WarmupRuns,
		MeasurementRuns: opts.MeasurementRuns,
		Durations:       make([]time.Duration, 0, opts.MeasurementRuns),
	}

	for i := 0; i < opts.WarmupRuns+opts.MeasurementRuns; i++ {
		start := time.Now()

		if err := matcher.Execute(dLeft, dRight, dOut); err != nil {
			return nil, fmt.Errorf("compute failed on iteration %d: %w", i, err)
		}
		// The execute call returns before device work completes; the
		// measurement is meaningless without this barrier.
		if err := r.Backend.Synchronize(); err != nil {
			return nil, fmt.Errorf("device synchronization failed on iteration %d: %w", i, err)
		}

		elapsed := time.Since(start)

		if i >= opts.WarmupRuns {
			result.Durations = append(result.Durations, elapsed)
			metrics.ExecuteDuration.Observe(float64(elapsed) / float64(time.Millisecond))
		}
	}

	r.Logger.Info("measurement complete",
		zap.Int("runs", len(result.Durations)),
		zap.Float64("mean_ms", result.MeanMilliseconds()),
		zap.Float64("stddev_ms", result.StdDevMilliseconds()))

	return result, nil
}
