//go:build !cuda
// +build !cuda

package gpu

import "go.uber.org/zap"

// CUDABackend is a stub type when CUDA is not available
type CUDABackend struct {
	logger *zap.Logger
}

// Stub implementations to satisfy the Backend interface
func (c *CUDABackend) Allocate(byteSize int) (Buffer, error) {
	panic("CUDA backend not available")
}

func (c *CUDABackend) Synchronize() error {
	panic("CUDA backend not available")
}

func (c *CUDABackend) GetDeviceInfo() DeviceInfo {
	return DeviceInfo{Name: "CUDA not available"}
}

func (c *CUDABackend) IsAvailable() bool {
	return false
}

func (c *CUDABackend) Initialize() error {
	panic("CUDA backend not available")
}

func (c *CUDABackend) Cleanup() error {
	return nil
}
