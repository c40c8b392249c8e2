package stereo

import (
	"fmt"

	"github.com/openstereo/sgmbench/internal/frameio"
	"github.com/openstereo/sgmbench/internal/gpu"
)

// Residency selects where the matcher's inputs and output live.
type Residency int

const (
	// HostToHost: the matcher copies host buffers itself.
	HostToHost Residency = iota
	// DeviceToDevice: inputs and output are device-resident buffers the
	// caller manages. The harness always runs this mode; uploads happen
	// explicitly and exactly where the benchmark protocol puts them.
	DeviceToDevice
)

func (r Residency) String() string {
	switch r {
	case HostToHost:
		return "host2host"
	case DeviceToDevice:
		return "cuda2cuda"
	default:
		return fmt.Sprintf("residency(%d)", int(r))
	}
}

// Config is the fixed configuration of one matcher instance, constructed
// once at startup and never mutated.
type Config struct {
	Width         int
	Height        int
	DisparitySize int
	SrcDepth      frameio.Depth
	DstDepth      frameio.Depth
	Residency     Residency
}

// Validate enforces the discrete parameter sets the external library
// supports.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", c.Width, c.Height)
	}
	if c.DisparitySize != 64 && c.DisparitySize != 128 && c.DisparitySize != 256 {
		return fmt.Errorf("disparity size must be 64, 128 or 256, got %d", c.DisparitySize)
	}
	if !c.SrcDepth.Supported() {
		return fmt.Errorf("input depth must be 8 or 16 bits, got %d", int(c.SrcDepth))
	}
	if c.DstDepth != frameio.Depth16 {
		return fmt.Errorf("output depth is fixed at 16 bits, got %d", int(c.DstDepth))
	}
	return nil
}

// SrcBytes returns the byte size of one input device buffer.
func (c Config) SrcBytes() (int, error) {
	return frameio.FrameBytes(c.Width, c.Height, c.SrcDepth)
}

// DstBytes returns the byte size of the output device buffer.
func (c Config) DstBytes() (int, error) {
	return frameio.FrameBytes(c.Width, c.Height, c.DstDepth)
}

// ConfigForPair derives a matcher configuration from a validated stereo
// pair. The output depth is fixed at 16 bits to preserve precision.
func ConfigForPair(left, right *frameio.Frame, disparitySize int) (Config, error) {
	if err := frameio.ValidatePair(left, right); err != nil {
		return Config{}, err
	}
	cfg := Config{
		Width:         left.Width,
		Height:        left.Height,
		DisparitySize: disparitySize,
		SrcDepth:      left.Depth,
		DstDepth:      frameio.Depth16,
		Residency:     DeviceToDevice,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Matcher is the capability interface over the external semi-global
// matching library. The harness assumes nothing about the backing vendor
// API beyond device-resident buffers and a completion barrier on the
// gpu.Backend that allocated them.
type Matcher interface {
	// Execute runs one matching pass: left and right hold the input
	// intensity images, out receives the disparity map. The call may
	// return before device work completes; time it only after a barrier.
	Execute(left, right, out gpu.Buffer) error

	// InvalidDisparity returns the sentinel value the library writes for
	// pixels with no valid disparity.
	InvalidDisparity() int16

	// Close releases the matcher's internal device state.
	Close() error
}

// MatcherFactory builds a Matcher for a fixed configuration. The drivers
// take a factory so tests can substitute a fake matcher.
type MatcherFactory func(Config) (Matcher, error)
