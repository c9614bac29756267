package transform

import (
	"image"
	"image/color"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSuperimpose(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	outPath := filepath.Join(dir, "out.png")

	savePNG(t, fgPath, solid(5, 5, color.NRGBA{R: 255, A: 255}))
	savePNG(t, bgPath, solid(20, 10, color.NRGBA{B: 255, A: 255}))

	rng := rand.New(rand.NewSource(7))
	require.NoError(t, Superimpose(fgPath, bgPath, outPath, rng))

	out := loadPNG(t, outPath)
	bounds := out.Bounds()
	assert.Equal(t, 20, bounds.Dx(), "output keeps the background width")
	assert.Equal(t, 10, bounds.Dy(), "output keeps the background height")

	// the foreground covers a 6x3 region (0.3 of 20x10)
	fgPixels := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(out.At(x, y)).(color.NRGBA)
			if c.R > 200 && c.B < 50 {
				fgPixels++
			}
		}
	}
	assert.Equal(t, 6*3, fgPixels)
}

func TestSuperimposeDeterministic(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	savePNG(t, fgPath, solid(4, 4, color.NRGBA{G: 255, A: 255}))
	savePNG(t, bgPath, solid(30, 30, color.NRGBA{B: 255, A: 255}))

	outA := filepath.Join(dir, "a.png")
	outB := filepath.Join(dir, "b.png")
	require.NoError(t, Superimpose(fgPath, bgPath, outA, rand.New(rand.NewSource(42))))
	require.NoError(t, Superimpose(fgPath, bgPath, outB, rand.New(rand.NewSource(42))))

	a := loadPNG(t, outA)
	b := loadPNG(t, outB)
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between identically seeded runs", x, y)
			}
		}
	}
}

func TestSuperimposeTinyBackground(t *testing.T) {
	dir := t.TempDir()
	fgPath := filepath.Join(dir, "fg.png")
	bgPath := filepath.Join(dir, "bg.png")
	savePNG(t, fgPath, solid(4, 4, color.NRGBA{G: 255, A: 255}))
	savePNG(t, bgPath, solid(2, 2, color.NRGBA{B: 255, A: 255}))

	err := Superimpose(fgPath, bgPath, filepath.Join(dir, "out.png"), rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}
