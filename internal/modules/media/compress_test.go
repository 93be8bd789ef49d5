package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCompressDownscalesLargeImages(t *testing.T) {
	input := encodeTestJPEG(t, 400, 200)

	out, err := Compress(input, CompressOptions{MaxSizeMB: 5, MaxWidthOrHeight: 100})
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestCompressKeepsSmallImagesAtSize(t *testing.T) {
	input := encodeTestJPEG(t, 60, 40)

	out, err := Compress(input, CompressOptions{MaxSizeMB: 5, MaxWidthOrHeight: 1920})
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Width)
	assert.Equal(t, 40, cfg.Height)
}

func TestCompressPreservesPNGFormat(t *testing.T) {
	input := encodeTestPNG(t, 30, 30)

	out, err := Compress(input, DefaultCompressOptions)
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestCompressRejectsCorruptInput(t *testing.T) {
	_, err := Compress([]byte("bu bir resim degil"), DefaultCompressOptions)
	assert.Error(t, err)
}
