package bench

import (
	"image"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openstereo/sgmbench/internal/gpu"
	"github.com/openstereo/sgmbench/internal/stereo"
)

const fakeInvalid = int16(-1)

// fakeMatcher fills the output buffer with a constant disparity, marking
// pixel 0 invalid so the sentinel path is exercised end to end.
type fakeMatcher struct {
	cfg        stereo.Config
	disparity  int16
	delay      time.Duration
	execErr    error
	executions int
	closed     bool
}

func (m *fakeMatcher) Execute(left, right, out gpu.Buffer) error {
	m.executions++
	if m.execErr != nil {
		return m.execErr
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	raw := make([]byte, out.Size())
	for i := 0; i < len(raw)/2; i++ {
		v := m.disparity
		if i == 0 {
			v = fakeInvalid
		}
		raw[2*i] = byte(uint16(v))
		raw[2*i+1] = byte(uint16(v) >> 8)
	}
	return out.Upload(raw)
}

func (m *fakeMatcher) InvalidDisparity() int16 {
	return fakeInvalid
}

func (m *fakeMatcher) Close() error {
	m.closed = true
	return nil
}

// fakeFactory records the matchers it hands out.
type fakeFactory struct {
	disparity int16
	delay     time.Duration
	created   []*fakeMatcher
}

func (f *fakeFactory) new(cfg stereo.Config) (stereo.Matcher, error) {
	m := &fakeMatcher{cfg: cfg, disparity: f.disparity, delay: f.delay}
	f.created = append(f.created, m)
	return m, nil
}

func newHostBackend(t *testing.T) *gpu.HostBackend {
	t.Helper()
	backend := gpu.NewHostBackend(zap.NewNop())
	require.NoError(t, backend.Initialize())
	t.Cleanup(func() { backend.Cleanup() })
	return backend
}

func writeTestFrame(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

// readGray16 loads a persisted disparity map back as uint16 pixels.
func readGray16(t *testing.T, path string) []uint16 {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	gray, ok := img.(*image.Gray16)
	require.True(t, ok, "expected 16-bit grayscale output, got %T", img)

	pix := make([]uint16, gray.Rect.Dx()*gray.Rect.Dy())
	for i := range pix {
		pix[i] = uint16(gray.Pix[2*i])<<8 | uint16(gray.Pix[2*i+1])
	}
	return pix
}
