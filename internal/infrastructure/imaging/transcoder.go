package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

// Transcoder re-encodes uploaded images as bounded JPEG previews. The result
// is a data URI suitable for direct embedding in catalog payloads.
type Transcoder struct{}

func NewTranscoder() *Transcoder {
	return &Transcoder{}
}

// Transcode decodes raw, scales it down so its wider dimension does not
// exceed maxWidth (preserving aspect ratio, never upscaling), and re-encodes
// it as JPEG at the given quality.
func (t *Transcoder) Transcode(raw []byte, maxWidth, quality int) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidDesign, err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return "", domain.ErrInvalidDesign
	}

	if maxWidth > 0 && (width > maxWidth || height > maxWidth) {
		outW, outH := maxWidth, height*maxWidth/width
		if height > width {
			outW, outH = width*maxWidth/height, maxWidth
		}
		scaled := image.NewRGBA(image.Rect(0, 0, outW, outH))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		src = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode preview: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
