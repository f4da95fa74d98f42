package layout

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/imaging"
)

// EdgeMargin is the distance in pixels from the page border within which a
// blob is treated as scan-bed noise.
const EdgeMargin = 1

// ErrNoContent is returned when every blob on a page touches the border.
var ErrNoContent = errors.New("no content detected")

// FilterEdgeContours splits contours into those clear of the border of a
// width×height page and those within margin pixels of it. Input order is
// preserved in both results.
func FilterEdgeContours(contours []geometry.Contour, width, height, margin int) (kept, rejected []geometry.Contour) {
	for _, c := range contours {
		if geometry.TouchesBorder(c.Box, width, height, margin) {
			rejected = append(rejected, c)
			continue
		}
		kept = append(kept, c)
	}
	return kept, rejected
}

// CropOptions controls CropToContent.
type CropOptions struct {
	// Margin is passed to FilterEdgeContours.
	Margin int
	// Fraction grows the content box by this share of the page size.
	Fraction float64
	// Expand applies Fraction; nil means geometry.Expand.
	Expand geometry.Expander
}

// Crop is a page cut down to its content.
type Crop struct {
	Source *image.Gray
	Mask   *image.Gray
	Width  int
	Height int
	// Origin is the crop's top-left corner in the uncropped page.
	Origin geometry.Point
	// Contours are the blobs clear of the border, rebased to the crop.
	Contours []geometry.Contour
	// Rejected are the border blobs, rebased to the crop as well.
	Rejected []geometry.Contour
}

// CropToContent removes border blobs, then crops source and mask to the
// expanded union box of what remains. Every contour, rejected ones included,
// is rebased by the crop origin. It returns ErrNoContent when nothing
// survives the border filter.
func CropToContent(src, mask *image.Gray, contours []geometry.Contour, opts CropOptions) (*Crop, error) {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()

	kept, rejected := FilterEdgeContours(contours, width, height, opts.Margin)
	if len(contours) == 0 {
		return nil, fmt.Errorf("%w: page has no ink blobs", ErrNoContent)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: all %d contours touch the page border", ErrNoContent, len(contours))
	}

	expand := opts.Expand
	if expand == nil {
		expand = geometry.Expand
	}
	union, _ := geometry.UnionBox(kept)
	box := geometry.Clip(expand(union, width, height, opts.Fraction, opts.Fraction), width, height)

	cropSrc, cropMask, err := imaging.CropPair(src, mask, box)
	if err != nil {
		return nil, err
	}

	return &Crop{
		Source:   cropSrc,
		Mask:     cropMask,
		Width:    box.W,
		Height:   box.H,
		Origin:   geometry.Point{X: box.X, Y: box.Y},
		Contours: rebase(kept, box.X, box.Y),
		Rejected: rebase(rejected, box.X, box.Y),
	}, nil
}

func rebase(contours []geometry.Contour, x, y int) []geometry.Contour {
	out := make([]geometry.Contour, len(contours))
	for i, c := range contours {
		out[i] = c.Translate(-x, -y)
	}
	return out
}
