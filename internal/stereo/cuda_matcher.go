//go:build cuda
// +build cuda

package stereo

/*
#cgo CFLAGS: -I${SRCDIR}/../../csrc
#cgo LDFLAGS: -L${SRCDIR}/../../csrc -lsgm_c -lsgm -lcudart
#include "sgm_c.h"
*/
import "C"
import (
	"fmt"

	"github.com/openstereo/sgmbench/internal/gpu"
	"go.uber.org/zap"
)

// cudaMatcher binds the external libsgm library through the C shim in
// csrc/. All matching logic lives in the library; this type only owns the
// handle lifecycle and argument marshalling.
type cudaMatcher struct {
	handle  *C.sgm_handle
	cfg     Config
	invalid int16
	logger  *zap.Logger
}

// NewMatcherFactory returns a factory producing libsgm-backed matchers.
func NewMatcherFactory(logger *zap.Logger) MatcherFactory {
	return func(cfg Config) (Matcher, error) {
		return newCUDAMatcher(cfg, logger)
	}
}

func newCUDAMatcher(cfg Config, logger *zap.Logger) (*cudaMatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inout := C.SGM_INOUT_HOST2HOST
	if cfg.Residency == DeviceToDevice {
		inout = C.SGM_INOUT_CUDA2CUDA
	}

	handle := C.sgm_create(C.int(cfg.Width), C.int(cfg.Height), C.int(cfg.DisparitySize),
		C.int(cfg.SrcDepth), C.int(cfg.DstDepth), C.sgm_inout_type(inout))
	if handle == nil {
		return nil, fmt.Errorf("failed to create SGM matcher for %dx%d, disparity size %d",
			cfg.Width, cfg.Height, cfg.DisparitySize)
	}

	m := &cudaMatcher{
		handle:  handle,
		cfg:     cfg,
		invalid: int16(C.sgm_invalid_disparity(handle)),
		logger:  logger,
	}

	logger.Info("SGM matcher created",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("disparity_size", cfg.DisparitySize),
		zap.Int("src_depth", int(cfg.SrcDepth)),
		zap.String("residency", cfg.Residency.String()),
		zap.Int16("invalid_disparity", m.invalid))

	return m, nil
}

func (m *cudaMatcher) Execute(left, right, out gpu.Buffer) error {
	if m.handle == nil {
		return fmt.Errorf("matcher is closed")
	}

	srcBytes, err := m.cfg.SrcBytes()
	if err != nil {
		return err
	}
	dstBytes, err := m.cfg.DstBytes()
	if err != nil {
		return err
	}
	if left.Size() != srcBytes || right.Size() != srcBytes {
		return fmt.Errorf("input buffer size mismatch: want %d bytes, got left=%d right=%d",
			srcBytes, left.Size(), right.Size())
	}
	if out.Size() != dstBytes {
		return fmt.Errorf("output buffer size mismatch: want %d bytes, got %d", dstBytes, out.Size())
	}

	if rc := C.sgm_execute(m.handle, left.Handle(), right.Handle(), out.Handle()); rc != 0 {
		return fmt.Errorf("sgm_execute failed with code %d", int(rc))
	}
	return nil
}

func (m *cudaMatcher) InvalidDisparity() int16 {
	return m.invalid
}

func (m *cudaMatcher) Close() error {
	if m.handle == nil {
		return nil
	}
	C.sgm_destroy(m.handle)
	m.handle = nil
	return nil
}
