package transform

import (
	"fmt"
	"image"
	"image/draw"
	"math/rand"

	xdraw "golang.org/x/image/draw"
)

// fgScale shrinks the foreground cutout relative to the background.
const fgScale = 0.3

// Superimpose scales a foreground cutout to fgScale of the background
// dimensions, places it at a position drawn from rng, and
// alpha-composites it onto the background, writing the result as PNG.
//
// The caller owns rng so a whole batch can be generated from one seed.
func Superimpose(fgPath, bgPath, outPath string, rng *rand.Rand) error {
	fg, err := loadImage(fgPath)
	if err != nil {
		return fmt.Errorf("load foreground %s: %w", fgPath, err)
	}
	bg, err := loadImage(bgPath)
	if err != nil {
		return fmt.Errorf("load background %s: %w", bgPath, err)
	}

	bgBounds := bg.Bounds()
	width := int(float64(bgBounds.Dx()) * fgScale)
	height := int(float64(bgBounds.Dy()) * fgScale)
	if width < 1 || height < 1 {
		return fmt.Errorf("background %s too small to place a foreground", bgPath)
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), fg, fg.Bounds(), xdraw.Over, nil)

	pos := image.Pt(rng.Intn(bgBounds.Dx()-width+1), rng.Intn(bgBounds.Dy()-height+1))

	canvas := image.NewNRGBA(image.Rect(0, 0, bgBounds.Dx(), bgBounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), bg, bgBounds.Min, draw.Src)
	draw.Draw(canvas, image.Rect(pos.X, pos.Y, pos.X+width, pos.Y+height), scaled, image.Point{}, draw.Over)

	return writePNG(outPath, canvas)
}
