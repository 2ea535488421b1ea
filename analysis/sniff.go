package analysis

import "encoding/hex"

// Format is an image container type inferred from leading bytes.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatUnknown Format = "unknown"
)

// magicTable maps 4-byte hex prefixes to formats. Untabulated prefixes are
// FormatUnknown, which is not fatal: the decoder has the final say.
var magicTable = map[string]Format{
	"ffd8ffe0": FormatJPEG,
	"89504e47": FormatPNG,
	"47494638": FormatGIF,
}

// SniffFormat identifies an image format from its magic bytes. The declared
// content type is deliberately never consulted.
func SniffFormat(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}
	if f, ok := magicTable[hex.EncodeToString(data[:4])]; ok {
		return f
	}
	return FormatUnknown
}

// MIMEType returns the canonical content type for a sniffed format.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the file extension used when the upload is stored.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatGIF:
		return ".gif"
	default:
		return ".bin"
	}
}
