package analysis

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// maxEdge bounds the long edge of the image sent to the model.
	maxEdge = 800
	// jpegQuality bounds the re-encoded payload size.
	jpegQuality = 80
)

// NormalizeImage decodes an uploaded image, shrinks it so its long edge fits
// within maxEdge pixels and re-encodes it as JPEG. Returns the encoded bytes
// and their media type.
func NormalizeImage(data []byte) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
