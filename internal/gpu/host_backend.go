package gpu

import (
	"fmt"
	"runtime"
	"unsafe"

	"go.uber.org/zap"
)

// HostBackend implements Backend with host memory standing in for device
// memory. It preserves the full buffer lifecycle and barrier contract, so
// the drivers and their tests run unchanged on machines without a GPU.
// The external matcher cannot execute on it; the Manager reports it as a
// non-device backend.
type HostBackend struct {
	logger      *zap.Logger
	initialized bool
	allocated   int64
}

// NewHostBackend creates a new host backend instance
func NewHostBackend(logger *zap.Logger) *HostBackend {
	return &HostBackend{
		logger: logger,
	}
}

// Initialize prepares the host backend for use
func (h *HostBackend) Initialize() error {
	if h.initialized {
		return nil
	}
	h.initialized = true
	h.logger.Info("host backend initialized")
	return nil
}

// Cleanup releases any resources (none for the host backend)
func (h *HostBackend) Cleanup() error {
	h.initialized = false
	h.allocated = 0
	return nil
}

// IsAvailable checks if the backend is available (always true for host)
func (h *HostBackend) IsAvailable() bool {
	return true
}

// GetDeviceInfo returns device information for the host
func (h *HostBackend) GetDeviceInfo() DeviceInfo {
	return DeviceInfo{
		Name:              fmt.Sprintf("Host (%s)", runtime.GOARCH),
		TotalMemory:       totalSystemMemory(),
		AvailableMemory:   totalSystemMemory() - h.allocated,
		ComputeCapability: "N/A",
		DriverVersion:     runtime.Version(),
	}
}

// Allocate creates a host-memory block standing in for a device buffer
func (h *HostBackend) Allocate(byteSize int) (Buffer, error) {
	if !h.initialized {
		return nil, fmt.Errorf("host backend not initialized")
	}
	if byteSize <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d: must be positive", byteSize)
	}
	h.allocated += int64(byteSize)
	h.logger.Debug("allocated host buffer", zap.Int("bytes", byteSize))
	return &hostBuffer{backend: h, data: make([]byte, byteSize)}, nil
}

// Synchronize is a no-op: host "kernels" complete synchronously
func (h *HostBackend) Synchronize() error {
	if !h.initialized {
		return fmt.Errorf("host backend not initialized")
	}
	return nil
}

type hostBuffer struct {
	backend *HostBackend
	data    []byte
	freed   bool
}

func (b *hostBuffer) Upload(host []byte) error {
	if b.freed {
		return fmt.Errorf("upload to freed buffer")
	}
	if len(host) != len(b.data) {
		return fmt.Errorf("upload size mismatch: buffer is %d bytes, host data is %d bytes", len(b.data), len(host))
	}
	copy(b.data, host)
	return nil
}

func (b *hostBuffer) Download(host []byte) error {
	if b.freed {
		return fmt.Errorf("download from freed buffer")
	}
	if len(host) != len(b.data) {
		return fmt.Errorf("download size mismatch: buffer is %d bytes, host destination is %d bytes", len(b.data), len(host))
	}
	copy(host, b.data)
	return nil
}

func (b *hostBuffer) Size() int {
	return len(b.data)
}

func (b *hostBuffer) Handle() unsafe.Pointer {
	if b.freed || len(b.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&b.data[0])
}

func (b *hostBuffer) Free() error {
	if b.freed {
		return nil
	}
	b.freed = true
	b.backend.allocated -= int64(len(b.data))
	b.data = nil
	return nil
}

// totalSystemMemory returns total system memory in bytes
func totalSystemMemory() int64 {
	// Return a default value for now
	// In a real implementation, this would query system memory
	return 8 * 1024 * 1024 * 1024 // 8GB
}
