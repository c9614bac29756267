package transform

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func loadPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestRemoveBackground(t *testing.T) {
	dir := t.TempDir()

	// solid red 4x4 image
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	imagePath := filepath.Join(dir, "img.png")
	savePNG(t, imagePath, src)

	// mask keeps the left half
	mask := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	maskPath := filepath.Join(dir, "mask.png")
	savePNG(t, maskPath, mask)

	outPath := filepath.Join(dir, "out.png")
	require.NoError(t, RemoveBackground(imagePath, maskPath, outPath))

	out := loadPNG(t, outPath)
	for y := 0; y < 4; y++ {
		left := color.NRGBAModel.Convert(out.At(0, y)).(color.NRGBA)
		right := color.NRGBAModel.Convert(out.At(3, y)).(color.NRGBA)

		assert.EqualValues(t, 255, left.A, "foreground pixel should stay opaque")
		assert.EqualValues(t, 255, left.R, "foreground pixel should keep its color")
		assert.EqualValues(t, 0, right.A, "background pixel should be transparent")
	}
}

func TestRemoveBackgroundSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "img.png")
	maskPath := filepath.Join(dir, "mask.png")
	savePNG(t, imagePath, image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	savePNG(t, maskPath, image.NewGray(image.Rect(0, 0, 2, 2)))

	err := RemoveBackground(imagePath, maskPath, filepath.Join(dir, "out.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestRemoveBackgroundMissingMask(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "img.png")
	savePNG(t, imagePath, image.NewNRGBA(image.Rect(0, 0, 2, 2)))

	err := RemoveBackground(imagePath, filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.png"))
	require.Error(t, err)
}
