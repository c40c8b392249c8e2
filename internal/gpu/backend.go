package gpu

import "unsafe"

// DeviceInfo contains information about the compute device
type DeviceInfo struct {
	Name              string `json:"name"`
	TotalMemory       int64  `json:"totalMemory"`     // in bytes
	AvailableMemory   int64  `json:"availableMemory"` // in bytes
	ComputeCapability string `json:"computeCapability"`
	DriverVersion     string `json:"driverVersion"`
	CUDAVersion       string `json:"cudaVersion,omitempty"`
}

// Buffer is a fixed-size device-resident allocation used for zero-copy
// input/output binding to the compute pipeline. The size is immutable
// after creation and transfers must match it exactly.
type Buffer interface {
	// Upload copies exactly Size() bytes from host into the device block.
	// It is synchronous with respect to the calling goroutine.
	Upload(host []byte) error

	// Download copies exactly Size() bytes from the device block back to
	// host. The result is undefined with respect to in-flight kernels
	// unless the backend has been synchronized first.
	Download(host []byte) error

	// Size returns the byte size fixed at allocation time.
	Size() int

	// Handle returns the opaque device pointer handed to the external
	// compute call. Valid until Free.
	Handle() unsafe.Pointer

	// Free releases the device allocation. Calling Free twice is a no-op.
	Free() error
}

// Backend defines the interface for compute device backends.
// This interface allows for multiple implementations (CUDA, host fallback)
// and provides a consistent API for device buffer management and the
// completion barrier the benchmark protocol depends on.
//
// Implementation notes:
// - Allocation or transfer failure is reported, never retried; the harness
//   is meant to fail loudly on a misconfigured environment
// - Backends need not be safe for concurrent use; the harness is strictly
//   sequential with one compute invocation in flight
// - Resource cleanup is critical to prevent device memory leaks
type Backend interface {
	// Allocate creates a device-resident block of exactly byteSize bytes.
	Allocate(byteSize int) (Buffer, error)

	// Synchronize blocks until all previously issued device work has
	// finished. A timing measurement taken without this barrier is
	// invalid: asynchronous kernels would be mistimed as near-zero.
	Synchronize() error

	// GetDeviceInfo returns information about the device
	GetDeviceInfo() DeviceInfo

	// IsAvailable checks if the backend is usable without heavy
	// initialization; used by the Manager to select a backend
	IsAvailable() bool

	// Initialize prepares the backend for use. Should be called once
	// before the first allocation.
	Initialize() error

	// Cleanup releases any resources held by the backend. Must be called
	// when the backend is no longer needed.
	Cleanup() error
}
