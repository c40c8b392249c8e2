//go:build cuda
// +build cuda

package gpu

import (
	"go.uber.org/zap"
)

// NewDeviceBackend creates an appropriate backend for the available hardware
func NewDeviceBackend(logger *zap.Logger) Backend {
	cudaBackend := NewCUDABackend(logger)
	if cudaBackend.IsAvailable() {
		logger.Info("using CUDA backend")
		return cudaBackend
	}

	// Fall back to host memory
	logger.Info("using host backend (no CUDA device available)")
	return NewHostBackend(logger)
}
