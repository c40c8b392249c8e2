package bench

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func timingFixtures(t *testing.T) (leftFormat, rightFormat string) {
	t.Helper()
	dir := t.TempDir()
	writeTestFrame(t, filepath.Join(dir, "left_0000.png"), 32, 16)
	writeTestFrame(t, filepath.Join(dir, "right_0000.png"), 32, 16)
	return filepath.Join(dir, "left_%04d.png"), filepath.Join(dir, "right_%04d.png")
}

func TestTimingRunner_Run(t *testing.T) {
	leftFormat, rightFormat := timingFixtures(t)
	factory := &fakeFactory{disparity: 5, delay: time.Millisecond}
	runner := &TimingRunner{
		Backend:    newHostBackend(t),
		NewMatcher: factory.new,
		Logger:     zap.NewNop(),
	}

	result, err := runner.Run(TimingOptions{
		LeftFormat:      leftFormat,
		RightFormat:     rightFormat,
		DisparitySize:   128,
		WarmupRuns:      3,
		MeasurementRuns: 5,
	})
	require.NoError(t, err)

	// Exactly the measurement iterations are recorded
	assert.Len(t, result.Durations, 5)
	assert.Equal(t, 3, result.WarmupRuns)
	assert.Equal(t, 5, result.MeasurementRuns)

	// Warm-up iterations still ran against the matcher
	require.Len(t, factory.created, 1)
	assert.Equal(t, 8, factory.created[0].executions)
	assert.True(t, factory.created[0].closed)

	// The mean is computable purely from the recorded durations
	var sum time.Duration
	for _, d := range result.Durations {
		assert.Greater(t, d, time.Duration(0))
		sum += d
	}
	want := float64(sum) / float64(time.Millisecond) / 5
	assert.InDelta(t, want, result.MeanMilliseconds(), 1e-9)

	assert.Equal(t, 32, result.Config.Width)
	assert.Equal(t, 16, result.Config.Height)
}

func TestTimingRunner_ZeroWarmup(t *testing.T) {
	leftFormat, rightFormat := timingFixtures(t)
	factory := &fakeFactory{disparity: 1}
	runner := &TimingRunner{
		Backend:    newHostBackend(t),
		NewMatcher: factory.new,
		Logger:     zap.NewNop(),
	}

	result, err := runner.Run(TimingOptions{
		LeftFormat:      leftFormat,
		RightFormat:     rightFormat,
		DisparitySize:   64,
		WarmupRuns:      0,
		MeasurementRuns: 2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Durations, 2)
	assert.Equal(t, 2, factory.created[0].executions)
}

func TestTimingRunner_Preconditions(t *testing.T) {
	leftFormat, rightFormat := timingFixtures(t)
	factory := &fakeFactory{}
	runner := &TimingRunner{
		Backend:    newHostBackend(t),
		NewMatcher: factory.new,
		Logger:     zap.NewNop(),
	}

	base := TimingOptions{
		LeftFormat:      leftFormat,
		RightFormat:     rightFormat,
		DisparitySize:   128,
		WarmupRuns:      1,
		MeasurementRuns: 1,
	}

	t.Run("missing image", func(t *testing.T) {
		opts := base
		opts.StartIndex = 99
		_, err := runner.Run(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "check start index and image paths")
	})

	t.Run("mismatched pair", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFrame(t, filepath.Join(dir, "left_0000.png"), 32, 16)
		writeTestFrame(t, filepath.Join(dir, "right_0000.png"), 16, 16)

		opts := base
		opts.LeftFormat = filepath.Join(dir, "left_%04d.png")
		opts.RightFormat = filepath.Join(dir, "right_%04d.png")
		_, err := runner.Run(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "same size")
	})

	t.Run("unsupported disparity size", func(t *testing.T) {
		opts := base
		opts.DisparitySize = 100
		_, err := runner.Run(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "64, 128 or 256")
	})

	t.Run("invalid run counts", func(t *testing.T) {
		opts := base
		opts.MeasurementRuns = 0
		_, err := runner.Run(opts)
		assert.Error(t, err)

		opts = base
		opts.WarmupRuns = -1
		_, err = runner.Run(opts)
		assert.Error(t, err)
	})

	// No matcher should ever have been constructed on a failed precondition
	assert.Empty(t, factory.created)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, EndOfStream, Classify(ErrEndOfStream))
	assert.Equal(t, Recoverable, Classify(&WriteError{Frame: 3, Path: "x"}))
	assert.Equal(t, Fatal, Classify(assert.AnError))

	t.Run("write error with cause", func(t *testing.T) {
		err := &WriteError{Frame: 1, Path: "p", Err: assert.AnError}
		assert.Equal(t, Recoverable, Classify(err))
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, "fatal", Fatal.String())
		assert.Equal(t, "end-of-stream", EndOfStream.String())
		assert.Equal(t, "recoverable", Recoverable.String())
	})
}
