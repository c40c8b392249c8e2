package frameio

import (
	"bufio"
	"fmt"
	"image"
	"os"

	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// UnsupportedFormatError reports an image that decoded successfully but is
// not an 8-bit or 16-bit single-channel grayscale image. It carries the
// actual format so the diagnostic can show expected vs actual.
type UnsupportedFormatError struct {
	Path   string
	Actual string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported image format: required 8-bit or 16-bit single-channel grayscale, got %s (hint: convert color images to grayscale first)",
		e.Path, e.Actual)
}

// Load reads a single-channel intensity image from path. PNG and TIFF are
// decoded through the registered image codecs; binary PGM (P5) is handled
// directly since no Go codec covers it.
func Load(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic, err := r.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if magic[0] == 'P' && magic[1] == '5' {
		return decodePGM(r, path)
	}

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fromImage(img, path)
}

// LoadPair loads the left/right images for one frame index. The format
// strings use printf-style index substitution, e.g. "left_%04d.png".
func LoadPair(leftFormat, rightFormat string, index int) (*Frame, *Frame, error) {
	left, err := Load(fmt.Sprintf(leftFormat, index))
	if err != nil {
		return nil, nil, err
	}
	right, err := Load(fmt.Sprintf(rightFormat, index))
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func fromImage(img image.Image, path string) (*Frame, error) {
	switch im := img.(type) {
	case *image.Gray:
		frame := &Frame{
			Width:  im.Rect.Dx(),
			Height: im.Rect.Dy(),
			Depth:  Depth8,
			Pix:    make([]byte, im.Rect.Dx()*im.Rect.Dy()),
		}
		for y := 0; y < frame.Height; y++ {
			row := im.Pix[y*im.Stride : y*im.Stride+frame.Width]
			copy(frame.Pix[y*frame.Width:], row)
		}
		return frame, nil
	case *image.Gray16:
		w, h := im.Rect.Dx(), im.Rect.Dy()
		frame := &Frame{
			Width:  w,
			Height: h,
			Depth:  Depth16,
			Pix:    make([]byte, w*h*2),
		}
		// image.Gray16 stores big-endian samples; the device expects
		// native little-endian order.
		for y := 0; y < h; y++ {
			src := im.Pix[y*im.Stride:]
			dst := frame.Pix[y*w*2:]
			for x := 0; x < w; x++ {
				dst[2*x] = src[2*x+1]
				dst[2*x+1] = src[2*x]
			}
		}
		return frame, nil
	default:
		return nil, &UnsupportedFormatError{Path: path, Actual: describeImage(img)}
	}
}

func describeImage(img image.Image) string {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		return "8-bit color (RGBA)"
	case *image.RGBA64, *image.NRGBA64:
		return "16-bit color (RGBA)"
	case *image.Paletted:
		return "paletted color"
	case *image.YCbCr:
		return "color (YCbCr)"
	default:
		return fmt.Sprintf("%T", img)
	}
}
