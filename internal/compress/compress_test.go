package compress

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makePNG renders a noisy RGBA image so the PNG does not collapse to a
// few bytes and the JPEG re-encode has real work to do.
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x*y + 31) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressImageDownscalesLargeImages(t *testing.T) {
	t.Parallel()

	data := makePNG(t, 2400, 1200)

	result := CompressDocument(data, "image/png")

	require.True(t, result.Compressed)
	assert.Equal(t, "image/jpeg", result.MimeType)
	assert.Less(t, len(result.Data), len(data), "output must never be larger than input")

	img, err := imaging.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), MaxDimension)
	assert.LessOrEqual(t, bounds.Dy(), MaxDimension)

	// 2400x1200 fits to 1600x800: the aspect ratio survives.
	assert.Equal(t, 1600, bounds.Dx())
	assert.Equal(t, 800, bounds.Dy())
}

func TestCompressImageKeepsSmallDimensions(t *testing.T) {
	t.Parallel()

	data := makePNG(t, 400, 300)

	result := CompressDocument(data, "image/png")

	img, err := imaging.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx(), "images under the cap are never upscaled or resized")
	assert.Equal(t, 300, img.Bounds().Dy())
	assert.LessOrEqual(t, len(result.Data), len(data))
}

func TestCompressImageUndecodableFallsBack(t *testing.T) {
	t.Parallel()

	data := []byte("definitely not an image")

	result := CompressDocument(data, "image/png")

	assert.False(t, result.Compressed)
	assert.Equal(t, data, result.Data, "undecodable input is stored as-is")
	assert.Equal(t, "image/png", result.MimeType)
}

func TestCompressPDFSmallPassesThroughIdentical(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("%PDF-1.4 tiny "), 100) // well under the threshold

	result := CompressDocument(data, "application/pdf")

	assert.False(t, result.Compressed)
	assert.Equal(t, data, result.Data)
	assert.Equal(t, "application/pdf", result.MimeType)
}

func TestCompressPDFLargeNeverGrows(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("%PDF-1.4 bulk content "), 40000) // past the threshold

	result := CompressDocument(data, "application/pdf")

	assert.Equal(t, data, result.Data)
	assert.LessOrEqual(t, len(result.Data), len(data))
}

func TestCompressUnknownTypeUnchanged(t *testing.T) {
	t.Parallel()

	data := []byte("col1,col2\n1,2\n")

	result := CompressDocument(data, "text/csv")

	assert.False(t, result.Compressed)
	assert.Equal(t, data, result.Data)
	assert.Equal(t, "text/csv", result.MimeType)
}
