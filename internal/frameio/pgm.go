package frameio

import (
	"bufio"
	"fmt"
	"io"
)

// decodePGM reads a binary (P5) PGM image. Stereo datasets commonly ship
// rectified pairs as PGM, which no stdlib or x/image codec covers.
func decodePGM(r *bufio.Reader, path string) (*Frame, error) {
	magic, err := pgmToken(r)
	if err != nil || magic != "P5" {
		return nil, fmt.Errorf("%s: not a binary PGM image", path)
	}

	var width, height, maxval int
	for _, dst := range []*int{&width, &height, &maxval} {
		tok, err := pgmToken(r)
		if err != nil {
			return nil, fmt.Errorf("%s: short PGM header: %w", path, err)
		}
		if _, err := fmt.Sscanf(tok, "%d", dst); err != nil {
			return nil, fmt.Errorf("%s: bad PGM header field %q", path, tok)
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: bad PGM dimensions %dx%d", path, width, height)
	}
	if maxval <= 0 || maxval >= 1<<16 {
		return nil, fmt.Errorf("%s: bad PGM maxval %d", path, maxval)
	}

	if maxval < 256 {
		frame := &Frame{Width: width, Height: height, Depth: Depth8, Pix: make([]byte, width*height)}
		if _, err := io.ReadFull(r, frame.Pix); err != nil {
			return nil, fmt.Errorf("%s: short PGM pixel data: %w", path, err)
		}
		return frame, nil
	}

	// 16-bit PGM samples are big-endian on disk.
	raw := make([]byte, width*height*2)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("%s: short PGM pixel data: %w", path, err)
	}
	frame := &Frame{Width: width, Height: height, Depth: Depth16, Pix: make([]byte, len(raw))}
	for i := 0; i < len(raw); i += 2 {
		frame.Pix[i] = raw[i+1]
		frame.Pix[i+1] = raw[i]
	}
	return frame, nil
}

// pgmToken returns the next whitespace-delimited header token, skipping
// '#' comments.
func pgmToken(r *bufio.Reader) (string, error) {
	var tok []byte
	inComment := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			if len(tok) > 0 && err == io.EOF {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case inComment:
			if b == '\n' {
				inComment = false
			}
		case b == '#':
			inComment = true
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}
