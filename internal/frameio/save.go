package frameio

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// DisparityPath builds the output path for one frame's disparity map:
// <dir>/disparity_<4-digit-zero-padded-index>.png.
func DisparityPath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("disparity_%04d.png", index))
}

// SaveGray16PNG writes a 16-bit single-channel PNG. pix is row-major,
// length width*height.
func SaveGray16PNG(path string, width, height int, pix []uint16) error {
	if len(pix) != width*height {
		return fmt.Errorf("pixel buffer length %d does not match %dx%d", len(pix), width, height)
	}

	img := image.NewGray16(image.Rect(0, 0, width, height))
	for i, v := range pix {
		img.Pix[2*i] = byte(v >> 8)
		img.Pix[2*i+1] = byte(v)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
