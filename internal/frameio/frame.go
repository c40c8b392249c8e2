package frameio

import (
	"fmt"
)

// Depth is a pixel bit depth. Only single-channel 8-bit and 16-bit frames
// are supported; the external matcher accepts nothing else.
type Depth int

const (
	Depth8  Depth = 8
	Depth16 Depth = 16
)

func (d Depth) Supported() bool {
	return d == Depth8 || d == Depth16
}

func (d Depth) BytesPerPixel() int {
	return int(d) / 8
}

func (d Depth) String() string {
	if !d.Supported() {
		return fmt.Sprintf("unsupported(%d-bit)", int(d))
	}
	return fmt.Sprintf("%d-bit grayscale", int(d))
}

// Frame is a single-channel intensity image. Pix holds the packed pixel
// bytes in the layout the compute device consumes: row-major,
// native (little-endian) byte order for 16-bit frames.
type Frame struct {
	Width  int
	Height int
	Depth  Depth
	Pix    []byte
}

// FrameBytes computes the byte size of a width×height frame at the given
// depth. Depths that are not byte-aligned multiples supported by the
// matcher are rejected rather than silently truncated.
func FrameBytes(width, height int, depth Depth) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if int(depth)%8 != 0 {
		return 0, fmt.Errorf("bit depth %d is not byte-aligned", int(depth))
	}
	if !depth.Supported() {
		return 0, fmt.Errorf("unsupported bit depth %d: must be 8 or 16", int(depth))
	}
	return width * height * depth.BytesPerPixel(), nil
}

// Bytes returns the packed pixel bytes of the frame.
func (f *Frame) Bytes() []byte {
	return f.Pix
}

// ByteSize returns the expected length of Pix.
func (f *Frame) ByteSize() (int, error) {
	return FrameBytes(f.Width, f.Height, f.Depth)
}

// ValidatePair checks the preconditions the matcher imposes on a stereo
// pair: identical dimensions, identical depth, and a supported depth.
// Violations are hard precondition failures for the caller.
func ValidatePair(left, right *Frame) error {
	if left == nil || right == nil {
		return fmt.Errorf("both images of a stereo pair must be present")
	}
	if left.Width != right.Width || left.Height != right.Height {
		return fmt.Errorf("input images must be the same size: left is %dx%d, right is %dx%d",
			left.Width, left.Height, right.Width, right.Height)
	}
	if left.Depth != right.Depth {
		return fmt.Errorf("input images must have the same bit depth: left is %s, right is %s",
			left.Depth, right.Depth)
	}
	if !left.Depth.Supported() {
		return fmt.Errorf("input image depth must be 8-bit or 16-bit grayscale, got %s", left.Depth)
	}
	return nil
}
