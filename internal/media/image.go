// Package media stores recipe pictures. Submitted images arrive as base64
// data URIs; they are decoded, scaled down to the configured maximum side and
// re-encoded as JPEG before they reach a storage backend.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"

	"foodgram/internal/apperr"
)

const (
	jpegQuality = 85

	// Limits checked against the image header before any pixel is decoded.
	maxDecodeSide   = 16384
	maxDecodePixels = 40_000_000
)

func invalidImage() error {
	return apperr.Invalid("image", "image is not a valid base64-encoded picture")
}

// Decode parses a data URI of the form data:image/<type>;base64,<payload>.
func Decode(dataURI string) (image.Image, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(dataURI), ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, invalidImage()
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalidImage()
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil || !withinDecodeBudget(cfg.Width, cfg.Height) {
		return nil, invalidImage()
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, invalidImage()
	}
	return img, nil
}

func withinDecodeBudget(width, height int) bool {
	if width <= 0 || height <= 0 || width > maxDecodeSide || height > maxDecodeSide {
		return false
	}
	return width*height <= maxDecodePixels
}

// Prepare decodes dataURI and returns it as JPEG bytes whose longest side is
// at most maxSide pixels. A non-positive maxSide keeps the original size.
func Prepare(dataURI string, maxSide int) ([]byte, error) {
	img, err := Decode(dataURI)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if maxSide > 0 && (bounds.Dx() > maxSide || bounds.Dy() > maxSide) {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
