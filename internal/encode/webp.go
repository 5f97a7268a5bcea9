package encode

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/gen2brain/webp"
)

// WebPEncoder encodes previews as WebP via the pure-Go (wazero) codec, so
// the debug tooling builds without cgo or a system libwebp.
type WebPEncoder struct {
	Quality int
}

func newWebPEncoder(quality int) *WebPEncoder {
	if quality <= 0 {
		quality = 85
	}
	return &WebPEncoder{Quality: quality}
}

func (e *WebPEncoder) Encode(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("webp: empty image")
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: e.Quality}); err != nil {
		return nil, fmt.Errorf("webp: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *WebPEncoder) Format() string        { return "webp" }
func (e *WebPEncoder) FileExtension() string { return ".webp" }

// DecodeWebP decodes WebP image bytes.
func DecodeWebP(r io.Reader) (image.Image, error) {
	return webp.Decode(r)
}
