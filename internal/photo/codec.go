package photo

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Codec abstracts image decode/resize/encode so tests can substitute a fake
// without real image bytes.
type Codec interface {
	// Normalize decodes raw image bytes, scales them down when either
	// dimension exceeds the given bounds, and re-encodes as JPEG at the
	// given quality.
	Normalize(raw []byte, maxWidth, maxHeight, quality int) ([]byte, error)
}

// JPEGCodec is the default codec built on disintegration/imaging.
type JPEGCodec struct{}

// Normalize implements Codec. When the image exceeds the bounding box, it is
// scaled so the longer dimension fits within maxWidth, preserving aspect
// ratio. Smaller images are never upscaled.
func (JPEGCodec) Normalize(raw []byte, maxWidth, maxHeight, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxWidth || bounds.Dy() > maxHeight {
		// Fit into a maxWidth square: caps the longer side at maxWidth
		// without upscaling images already inside it.
		img = imaging.Fit(img, maxWidth, maxWidth, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
