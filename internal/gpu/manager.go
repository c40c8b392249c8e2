package gpu

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Manager handles backend selection and lifecycle
type Manager struct {
	backend Backend
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewManager creates a new manager and selects the best available backend.
// With requireDevice set, falling back to the host backend is an error:
// a benchmarking run against host memory would time nothing real, so a
// misconfigured environment fails loudly instead.
func NewManager(logger *zap.Logger, requireDevice bool) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		logger: logger,
	}

	backend := NewDeviceBackend(logger)
	if err := backend.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}
	m.backend = backend

	if requireDevice && !m.IsDeviceAvailable() {
		_ = backend.Cleanup()
		return nil, fmt.Errorf("no compute device available: this build or machine has no usable accelerator")
	}

	return m, nil
}

// GetBackend returns the current backend
func (m *Manager) GetBackend() Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backend
}

// Allocate creates a device buffer on the selected backend
func (m *Manager) Allocate(byteSize int) (Buffer, error) {
	backend := m.GetBackend()
	if backend == nil {
		return nil, fmt.Errorf("no backend available")
	}
	return backend.Allocate(byteSize)
}

// Synchronize issues a completion barrier on the selected backend
func (m *Manager) Synchronize() error {
	backend := m.GetBackend()
	if backend == nil {
		return fmt.Errorf("no backend available")
	}
	return backend.Synchronize()
}

// GetDeviceInfo returns device information from the current backend
func (m *Manager) GetDeviceInfo() DeviceInfo {
	backend := m.GetBackend()
	if backend == nil {
		return DeviceInfo{Name: "No backend available"}
	}
	return backend.GetDeviceInfo()
}

// IsDeviceAvailable returns true if a real device backend is active
func (m *Manager) IsDeviceAvailable() bool {
	backend := m.GetBackend()
	if backend == nil {
		return false
	}
	// Check if it's not the host fallback
	_, isHost := backend.(*HostBackend)
	return !isHost
}

// Cleanup releases resources held by the current backend
func (m *Manager) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		if err := m.backend.Cleanup(); err != nil {
			return err
		}
		m.backend = nil
	}
	return nil
}

// BackendType returns a string describing the current backend type
func (m *Manager) BackendType() string {
	backend := m.GetBackend()
	if backend == nil {
		return "none"
	}

	if _, isHost := backend.(*HostBackend); isHost {
		return "host"
	}
	if m.IsDeviceAvailable() {
		return "cuda"
	}

	return "unknown"
}
