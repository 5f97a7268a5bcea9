// Package encode turns preview images into bytes. It is the output side of
// the debug tooling only; tile payload codecs live outside this module.
package encode

import (
	"fmt"
	"image"
)

// Encoder encodes an image into preview bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the preview format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality. Quality is
// ignored by lossless formats.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality), nil
	default:
		return nil, fmt.Errorf("unsupported preview format: %q (supported: png, webp)", format)
	}
}
