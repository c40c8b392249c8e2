//go:build !cuda
// +build !cuda

package gpu

import (
	"go.uber.org/zap"
)

// NewDeviceBackend creates an appropriate backend for the available hardware
// Without CUDA support, it will always return the host backend
func NewDeviceBackend(logger *zap.Logger) Backend {
	logger.Info("using host backend (compiled without CUDA support)")
	return NewHostBackend(logger)
}
