// Package transform holds the per-file pixel transforms that feed the
// pipeline: background removal via a segmentation mask, and compositing
// a cutout onto a background. Their outputs are plain image files,
// poolable like any other.
package transform

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/ernyoke/imger/imgio"
	"github.com/ernyoke/imger/threshold"
)

// maskCutoff binarizes the grayscale mask; 128 on a 0-255 mask matches
// a 0.5 cutoff on a unit-range segmentation map.
const maskCutoff = 128

// RemoveBackground multiplies a binarized segmentation mask into an
// image and writes the result as a PNG with a transparent background.
// The mask must have the same dimensions as the image.
func RemoveBackground(imagePath, maskPath, outPath string) error {
	src, err := loadImage(imagePath)
	if err != nil {
		return fmt.Errorf("load image %s: %w", imagePath, err)
	}

	mask, err := imgio.ImreadGray(maskPath)
	if err != nil {
		return fmt.Errorf("load mask %s: %w", maskPath, err)
	}

	binary, err := threshold.Threshold(mask, maskCutoff, threshold.ThreshBinary)
	if err != nil {
		return fmt.Errorf("threshold mask %s: %w", maskPath, err)
	}

	out, err := applyMask(src, binary)
	if err != nil {
		return err
	}
	return writePNG(outPath, out)
}

// applyMask keeps the pixels where the binary mask is set and makes
// everything else fully transparent.
func applyMask(src image.Image, mask *image.Gray) (*image.NRGBA, error) {
	bounds := src.Bounds()
	if !bounds.Size().Eq(mask.Bounds().Size()) {
		return nil, fmt.Errorf("mask size %v does not match image size %v",
			mask.Bounds().Size(), bounds.Size())
	}

	out := image.NewNRGBA(bounds)
	maskMin := mask.Bounds().Min
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			m := mask.GrayAt(maskMin.X+x-bounds.Min.X, maskMin.Y+y-bounds.Min.Y)
			if m.Y == 0 {
				continue // stays zero: transparent
			}
			out.Set(x, y, src.At(x, y))
		}
	}
	return out, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
