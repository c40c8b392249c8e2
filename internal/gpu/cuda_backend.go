//go:build cuda
// +build cuda

package gpu

/*
#cgo LDFLAGS: -lcudart
#include <cuda_runtime.h>
#include <stdlib.h>
*/
import "C"
import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// CUDABackend implements Backend using the NVIDIA CUDA runtime
type CUDABackend struct {
	logger      *zap.Logger
	initialized bool
	deviceInfo  DeviceInfo
	available   bool
}

// NewCUDABackend creates a new CUDA backend instance
func NewCUDABackend(logger *zap.Logger) *CUDABackend {
	backend := &CUDABackend{
		logger: logger,
	}

	if err := backend.checkDevice(); err != nil {
		logger.Warn("CUDA device not available", zap.Error(err))
		backend.available = false
	} else {
		backend.available = true
	}

	return backend
}

// Initialize prepares the CUDA backend for use
func (c *CUDABackend) Initialize() error {
	if !c.available {
		return fmt.Errorf("CUDA device not available")
	}
	if c.initialized {
		return nil
	}

	c.logger.Debug("initializing CUDA backend")

	if result := C.cudaSetDevice(0); result != C.cudaSuccess {
		return fmt.Errorf("failed to select CUDA device: %v", cudaErrorString(result))
	}

	var prop C.struct_cudaDeviceProp
	if result := C.cudaGetDeviceProperties(&prop, 0); result != C.cudaSuccess {
		return fmt.Errorf("failed to get device properties: %v", cudaErrorString(result))
	}

	var free, total C.size_t
	if result := C.cudaMemGetInfo(&free, &total); result != C.cudaSuccess {
		return fmt.Errorf("failed to query device memory: %v", cudaErrorString(result))
	}

	c.deviceInfo = DeviceInfo{
		Name:              C.GoString(&prop.name[0]),
		TotalMemory:       int64(total),
		AvailableMemory:   int64(free),
		ComputeCapability: fmt.Sprintf("%d.%d", int(prop.major), int(prop.minor)),
		DriverVersion:     driverVersion(),
		CUDAVersion:       runtimeVersion(),
	}

	c.initialized = true
	c.logger.Info("CUDA backend initialized",
		zap.String("device", c.deviceInfo.Name),
		zap.String("compute_capability", c.deviceInfo.ComputeCapability),
		zap.Float64("total_memory_gb", float64(c.deviceInfo.TotalMemory)/(1<<30)))

	return nil
}

// Allocate creates a device-resident block of exactly byteSize bytes
func (c *CUDABackend) Allocate(byteSize int) (Buffer, error) {
	if !c.initialized {
		if err := c.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize CUDA backend: %w", err)
		}
	}
	if byteSize <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d: must be positive", byteSize)
	}

	var ptr unsafe.Pointer
	if result := C.cudaMalloc(&ptr, C.size_t(byteSize)); result != C.cudaSuccess {
		return nil, fmt.Errorf("cudaMalloc of %d bytes failed: %v", byteSize, cudaErrorString(result))
	}

	c.logger.Debug("allocated device buffer", zap.Int("bytes", byteSize))
	return &cudaBuffer{ptr: ptr, size: byteSize}, nil
}

// Synchronize issues a full device-completion barrier
func (c *CUDABackend) Synchronize() error {
	if result := C.cudaDeviceSynchronize(); result != C.cudaSuccess {
		return fmt.Errorf("cudaDeviceSynchronize failed: %v", cudaErrorString(result))
	}
	return nil
}

// GetDeviceInfo returns information about the CUDA device
func (c *CUDABackend) GetDeviceInfo() DeviceInfo {
	return c.deviceInfo
}

// IsAvailable checks if CUDA is available
func (c *CUDABackend) IsAvailable() bool {
	return c.available
}

// Cleanup releases CUDA resources
func (c *CUDABackend) Cleanup() error {
	if !c.initialized {
		return nil
	}

	c.logger.Debug("cleaning up CUDA backend")

	if result := C.cudaDeviceReset(); result != C.cudaSuccess {
		return fmt.Errorf("failed to reset CUDA device: %v", cudaErrorString(result))
	}

	c.initialized = false
	return nil
}

// checkDevice verifies CUDA device availability
func (c *CUDABackend) checkDevice() error {
	var count C.int
	if result := C.cudaGetDeviceCount(&count); result != C.cudaSuccess {
		return fmt.Errorf("CUDA device check failed: %v", cudaErrorString(result))
	}
	if count == 0 {
		return fmt.Errorf("no CUDA device found")
	}
	return nil
}

type cudaBuffer struct {
	ptr  unsafe.Pointer
	size int
}

func (b *cudaBuffer) Upload(host []byte) error {
	if b.ptr == nil {
		return fmt.Errorf("upload to freed buffer")
	}
	if len(host) != b.size {
		return fmt.Errorf("upload size mismatch: buffer is %d bytes, host data is %d bytes", b.size, len(host))
	}
	result := C.cudaMemcpy(b.ptr, unsafe.Pointer(&host[0]), C.size_t(b.size), C.cudaMemcpyHostToDevice)
	if result != C.cudaSuccess {
		return fmt.Errorf("host to device copy failed: %v", cudaErrorString(result))
	}
	return nil
}

func (b *cudaBuffer) Download(host []byte) error {
	if b.ptr == nil {
		return fmt.Errorf("download from freed buffer")
	}
	if len(host) != b.size {
		return fmt.Errorf("download size mismatch: buffer is %d bytes, host destination is %d bytes", b.size, len(host))
	}
	result := C.cudaMemcpy(unsafe.Pointer(&host[0]), b.ptr, C.size_t(b.size), C.cudaMemcpyDeviceToHost)
	if result != C.cudaSuccess {
		return fmt.Errorf("device to host copy failed: %v", cudaErrorString(result))
	}
	return nil
}

func (b *cudaBuffer) Size() int {
	return b.size
}

func (b *cudaBuffer) Handle() unsafe.Pointer {
	return b.ptr
}

func (b *cudaBuffer) Free() error {
	if b.ptr == nil {
		return nil
	}
	result := C.cudaFree(b.ptr)
	b.ptr = nil
	if result != C.cudaSuccess {
		return fmt.Errorf("cudaFree failed: %v", cudaErrorString(result))
	}
	return nil
}

// cudaErrorString converts a CUDA error code to a string
func cudaErrorString(err C.cudaError_t) string {
	return C.GoString(C.cudaGetErrorString(err))
}

// driverVersion gets the NVIDIA driver's CUDA API version
func driverVersion() string {
	var v C.int
	if result := C.cudaDriverGetVersion(&v); result != C.cudaSuccess {
		return "Unknown"
	}
	return fmt.Sprintf("%d.%d", int(v)/1000, (int(v)%100)/10)
}

// runtimeVersion gets the CUDA runtime version
func runtimeVersion() string {
	var v C.int
	if result := C.cudaRuntimeGetVersion(&v); result != C.cudaSuccess {
		return "Unknown"
	}
	return fmt.Sprintf("%d.%d", int(v)/1000, (int(v)%100)/10)
}
