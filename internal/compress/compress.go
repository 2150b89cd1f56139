// Package compress shrinks uploaded documents before they hit storage
// and the storage quota. Images are downscaled and re-encoded as JPEG;
// the output is only used when it is actually smaller than the input.
package compress

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// MaxDimension caps the longer image side after resizing.
	MaxDimension = 1600

	// JPEGQuality is the fixed re-encode quality (0.65 on the 0-1 scale).
	JPEGQuality = 65

	// PDFThreshold is the size under which PDFs are passed through
	// untouched.
	PDFThreshold = 500 * 1024
)

// Result is the outcome of one compression attempt. Data always holds
// servable bytes: on any decode or encode problem the original input is
// returned unchanged.
type Result struct {
	Data       []byte
	MimeType   string
	Compressed bool
}

// CompressDocument dispatches on the declared MIME type. Unknown types
// pass through unchanged; the pipeline never grows a file.
func CompressDocument(data []byte, mimeType string) *Result {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return compressImage(data, mimeType)
	case mimeType == "application/pdf":
		return compressPDF(data)
	default:
		return &Result{Data: data, MimeType: mimeType}
	}
}

func compressImage(data []byte, mimeType string) *Result {
	original := &Result{Data: data, MimeType: mimeType}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		// Not decodable as an image; store as-is.
		return original
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Fit preserves aspect ratio and never upscales below MaxDimension.
	if width > MaxDimension || height > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return original
	}

	if buf.Len() >= len(data) {
		// Re-encoding did not help; never regress size.
		return original
	}

	return &Result{
		Data:       buf.Bytes(),
		MimeType:   "image/jpeg",
		Compressed: true,
	}
}

// compressPDF only applies the size heuristic: small files are returned
// identical, larger ones are byte-copied without re-encoding. Real PDF
// recompression (downsampling embedded images) is out of scope here.
func compressPDF(data []byte) *Result {
	if len(data) < PDFThreshold {
		return &Result{Data: data, MimeType: "application/pdf"}
	}

	out := make([]byte, len(data))
	copy(out, data)
	return &Result{Data: out, MimeType: "application/pdf"}
}
