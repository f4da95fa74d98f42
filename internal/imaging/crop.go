package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

// CropGray copies the region box of src into a new image anchored at (0,0).
// The box is clipped to the image first; cropping with the full image box
// yields an identical copy.
func CropGray(src *image.Gray, box geometry.BoundingBox) *image.Gray {
	b := src.Bounds()
	box = geometry.Clip(box, b.Dx(), b.Dy())
	dst := image.NewGray(image.Rect(0, 0, box.W, box.H))
	for y := 0; y < box.H; y++ {
		off := (box.Y+y)*src.Stride + box.X
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+box.W], src.Pix[off:off+box.W])
	}
	return dst
}

// CropPair crops the source page and its mask with the same box so they stay
// pixel-aligned.
func CropPair(src, mask *image.Gray, box geometry.BoundingBox) (*image.Gray, *image.Gray, error) {
	if src.Bounds().Size() != mask.Bounds().Size() {
		return nil, nil, fmt.Errorf("source %v and mask %v are not aligned",
			src.Bounds().Size(), mask.Bounds().Size())
	}
	return CropGray(src, box), CropGray(mask, box), nil
}

// Region extracts box from img for text recognition. The box is clipped to
// the image; an empty intersection is an error.
func Region(img image.Image, box geometry.BoundingBox) (image.Image, error) {
	b := img.Bounds()
	clipped := geometry.Clip(box, b.Dx(), b.Dy())
	if clipped.Empty() {
		return nil, fmt.Errorf("crop region %v outside image bounds %dx%d", box, b.Dx(), b.Dy())
	}
	r := image.Rect(clipped.X, clipped.Y, clipped.Right(), clipped.Bottom()).Add(b.Min)
	return imaging.Crop(img, r), nil
}
