package bench

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openstereo/sgmbench/internal/frameio"
	"github.com/openstereo/sgmbench/internal/gpu"
	"github.com/openstereo/sgmbench/internal/metrics"
	"github.com/openstereo/sgmbench/internal/stereo"
)

// MovieOptions configures a streaming run over a frame index range.
type MovieOptions struct {
	LeftFormat    string
	RightFormat   string
	OutputDir     string
	StartIndex    int
	TotalFrames   int
	DisparitySize int

	// SkipBadFrames makes a mid-stream validation failure (corrupt or
	// mismatched frame) skip that frame instead of aborting the run.
	// Off by default: a validation failure anywhere is fatal.
	SkipBadFrames bool
}

// MovieResult summarizes a streaming run.
type MovieResult struct {
	FramesProcessed int
	FramesPersisted int
	WriteFailures   int
	FramesSkipped   int
}

// MovieRunner drives the per-frame read/compute/write loop. Device
// buffers are allocated once from the first frame's geometry and reused
// in place; one compute invocation is in flight at a time.
type MovieRunner struct {
	Backend    gpu.Backend
	NewMatcher stereo.MatcherFactory
	Logger     *zap.Logger
}

// movieState carries the device resources across frames.
type movieState struct {
	cfg     stereo.Config
	matcher stereo.Matcher
	dLeft   gpu.Buffer
	dRight  gpu.Buffer
	dOut    gpu.Buffer
	hostOut []byte
}

func (s *movieState) release() {
	if s.dLeft != nil {
		_ = s.dLeft.Free()
	}
	if s.dRight != nil {
		_ = s.dRight.Free()
	}
	if s.dOut != nil {
		_ = s.dOut.Free()
	}
	if s.matcher != nil {
		_ = s.matcher.Close()
	}
}

func (r *MovieRunner) Run(opts MovieOptions) (*MovieResult, error) {
	// The disparity range is a startup precondition, checked before any
	// frame is touched so SkipBadFrames can never mask it.
	if s := opts.DisparitySize; s != 64 && s != 128 && s != 256 {
		return nil, fmt.Errorf("disparity size must be 64, 128 or 256, got %d", s)
	}

	result := &MovieResult{}
	state := &movieState{}
	defer state.release()

	for i := 0; i < opts.TotalFrames; i++ {
		frame := opts.StartIndex + i

		err := r.processFrame(opts, state, result, frame)
		if err == nil {
			continue
		}

		switch Classify(err) {
		case EndOfStream:
			r.Logger.Info("finished: no more frames to read", zap.Int("frame", frame))
			return result, nil
		case Recoverable:
			r.Logger.Error("failed to save disparity map, continuing",
				zap.Int("frame", frame), zap.Error(err))
			metrics.FrameWriteFailures.Inc()
			result.WriteFailures++
		default:
			if opts.SkipBadFrames && isValidation(err) {
				r.Logger.Warn("skipping bad frame", zap.Int("frame", frame), zap.Error(err))
				metrics.FramesSkipped.Inc()
				result.FramesSkipped++
				continue
			}
			return result, err
		}
	}

	return result, nil
}

// validationError marks a frame that loaded but failed the matcher's
// preconditions; it is the only fatal category SkipBadFrames downgrades.
type validationError struct {
	err error
}

func (e *validationError) Error() string { return e.err.Error() }
func (e *validationError) Unwrap() error { return e.err }

func isValidation(err error) bool {
	var ve *validationError
	return errors.As(err, &ve)
}

func (r *MovieRunner) processFrame(opts MovieOptions, state *movieState, result *MovieResult, frame int) error {
	left, right, err := frameio.LoadPair(opts.LeftFormat, opts.RightFormat, frame)
	if err != nil {
		var unsupported *frameio.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			// The frame exists but is not something the matcher accepts:
			// a validation failure, not an end-of-data signal.
			return &validationError{err: err}
		}
		return fmt.Errorf("%w: frame %d: %v", ErrEndOfStream, frame, err)
	}

	if state.matcher == nil {
		if err := r.initState(opts, state, left, right); err != nil {
			return err
		}
	} else if err := pairMatchesConfig(state.cfg, left, right); err != nil {
		return &validationError{err: fmt.Errorf("frame %d: %w", frame, err)}
	}

	if err := state.dLeft.Upload(left.Bytes()); err != nil {
		return err
	}
	if err := state.dRight.Upload(right.Bytes()); err != nil {
		return err
	}

	start := time.Now()
	if err := state.matcher.Execute(state.dLeft, state.dRight, state.dOut); err != nil {
		return fmt.Errorf("compute failed on frame %d: %w", frame, err)
	}
	if err := r.Backend.Synchronize(); err != nil {
		return fmt.Errorf("device synchronization failed on frame %d: %w", frame, err)
	}
	elapsed := time.Since(start)

	fps := 0.0
	if us := float64(elapsed) / float64(time.Microsecond); us > 0 {
		fps = 1e6 / us
	}

	result.FramesProcessed++
	metrics.FramesProcessed.Inc()
	metrics.ExecuteDuration.Observe(float64(elapsed) / float64(time.Millisecond))
	metrics.StreamFPS.Set(fps)

	if err := state.dOut.Download(state.hostOut); err != nil {
		return err
	}

	disp := stereo.DisparityFromBytes(state.hostOut)
	pix := stereo.EncodeDisparity16U(disp, state.matcher.InvalidDisparity())

	path := frameio.DisparityPath(opts.OutputDir, frame)
	if err := frameio.SaveGray16PNG(path, state.cfg.Width, state.cfg.Height, pix); err != nil {
		return &WriteError{Frame: frame, Path: path, Err: err}
	}

	result.FramesPersisted++
	metrics.FramesPersisted.Inc()
	r.Logger.Info("frame saved",
		zap.Int("frame", frame),
		zap.String("path", path),
		zap.Float64("fps", fps))

	return nil
}

// initState validates the first frame, creates the matcher, and allocates
// the device buffers every following frame reuses.
func (r *MovieRunner) initState(opts MovieOptions, state *movieState, left, right *frameio.Frame) error {
	cfg, err := stereo.ConfigForPair(left, right, opts.DisparitySize)
	if err != nil {
		return &validationError{err: err}
	}

	matcher, err := r.NewMatcher(cfg)
	if err != nil {
		return err
	}

	srcBytes, err := cfg.SrcBytes()
	if err != nil {
		matcher.Close()
		return err
	}
	dstBytes, err := cfg.DstBytes()
	if err != nil {
		matcher.Close()
		return err
	}

	state.cfg = cfg
	state.matcher = matcher

	if state.dLeft, err = r.Backend.Allocate(srcBytes); err != nil {
		return err
	}
	if state.dRight, err = r.Backend.Allocate(srcBytes); err != nil {
		return err
	}
	if state.dOut, err = r.Backend.Allocate(dstBytes); err != nil {
		return err
	}
	state.hostOut = make([]byte, dstBytes)

	metrics.DeviceMemoryUsedBytes.Set(float64(2*srcBytes + dstBytes))

	r.Logger.Info("streaming started",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("disparity_size", cfg.DisparitySize),
		zap.String("output_dir", opts.OutputDir))

	return nil
}

func pairMatchesConfig(cfg stereo.Config, left, right *frameio.Frame) error {
	if err := frameio.ValidatePair(left, right); err != nil {
		return err
	}
	if left.Width != cfg.Width || left.Height != cfg.Height {
		return fmt.Errorf("frame size %dx%d does not match stream geometry %dx%d",
			left.Width, left.Height, cfg.Width, cfg.Height)
	}
	if left.Depth != cfg.SrcDepth {
		return fmt.Errorf("frame depth %s does not match stream depth %s", left.Depth, cfg.SrcDepth)
	}
	return nil
}
