package analysis

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	// MaxDimension bounds the larger side of the normalized image.
	MaxDimension = 512

	jpegQuality = 80
)

// NormalizedImage is the size-bounded JPEG handed to the vision model.
type NormalizedImage struct {
	MIMEType   string
	Base64Data string
	Width      int
	Height     int
}

// DataURL encodes the image the way the vision request expects it.
func (n *NormalizedImage) DataURL() string {
	return "data:" + n.MIMEType + ";base64," + n.Base64Data
}

// Normalize decodes an untrusted image buffer, fits it within MaxDimension
// preserving aspect ratio, and re-encodes it as JPEG. Every decode or encode
// failure is the caller's fault (unusable image), never an internal error.
func Normalize(data []byte) (*NormalizedImage, *Error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, unsupportedFormat("unsupported image format", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	newWidth, newHeight := fitWithin(width, height, MaxDimension)

	if newWidth != width || newHeight != height {
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, unsupportedFormat("failed to re-encode image", err)
	}

	return &NormalizedImage{
		MIMEType:   "image/jpeg",
		Base64Data: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:      newWidth,
		Height:     newHeight,
	}, nil
}

// fitWithin computes target dimensions so the larger side is exactly max
// (or unchanged if already smaller). The short side floors on integer
// division, which keeps the result reproducible.
func fitWithin(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}

	var newWidth, newHeight int
	if width >= height {
		newWidth = max
		newHeight = height * max / width
	} else {
		newHeight = max
		newWidth = width * max / height
	}

	// A degenerate aspect ratio can floor to zero; a 1px side still encodes.
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	return newWidth, newHeight
}
