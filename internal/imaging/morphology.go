package imaging

import (
	"fmt"
	"image"
)

// Kernel is a rectangular structuring element W pixels wide and H pixels tall,
// anchored at its centre (W/2, H/2).
type Kernel struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Validate reports an error when either side is not positive.
func (k Kernel) Validate() error {
	if k.W <= 0 || k.H <= 0 {
		return fmt.Errorf("kernel must be positive, got %dx%d", k.W, k.H)
	}
	return nil
}

// Dilate grows ink by k. Pixels outside the image do not contribute.
func Dilate(mask *image.Gray, k Kernel) *image.Gray {
	return rankFilter(mask, k, false)
}

// Erode shrinks ink by k. Pixels outside the image do not contribute, so ink
// touching the border is not eaten away from that side.
func Erode(mask *image.Gray, k Kernel) *image.Gray {
	return rankFilter(mask, k, true)
}

// Close dilates mask iterations times and then erodes it the same number of
// times, merging nearby glyphs into single blobs.
func Close(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	out := mask
	for i := 0; i < iterations; i++ {
		out = Dilate(out, k)
	}
	for i := 0; i < iterations; i++ {
		out = Erode(out, k)
	}
	return out
}

// Open erodes mask iterations times and then dilates it the same number of
// times, removing specks smaller than the kernel.
func Open(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	out := mask
	for i := 0; i < iterations; i++ {
		out = Erode(out, k)
	}
	for i := 0; i < iterations; i++ {
		out = Dilate(out, k)
	}
	return out
}

// CloseOpen runs Close for iterations and then Open for iterations/3.
func CloseOpen(mask *image.Gray, k Kernel, iterations int) *image.Gray {
	return Open(Close(mask, k, iterations), k, iterations/3)
}

// rankFilter applies a rectangular min (erode) or max (dilate) filter. The
// rectangle is separable, so it runs as a horizontal pass followed by a
// vertical pass, each counting ink with a prefix sum.
func rankFilter(mask *image.Gray, k Kernel, all bool) *image.Gray {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(image.Rect(0, 0, w, h))
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	col := make([]uint8, h)
	out := make([]uint8, h)
	sums := make([]int, maxInt(w, h)+1)

	for y := 0; y < h; y++ {
		filterLine(mask.Pix[y*mask.Stride:y*mask.Stride+w], tmp.Pix[y*tmp.Stride:y*tmp.Stride+w], sums, k.W, all)
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = tmp.Pix[y*tmp.Stride+x]
		}
		filterLine(col, out, sums, k.H, all)
		for y := 0; y < h; y++ {
			dst.Pix[y*dst.Stride+x] = out[y]
		}
	}
	return dst
}

// filterLine writes into out the 1-D rank filter of in over a window of size
// starting size/2 before each position.
func filterLine(in, out []uint8, sums []int, size int, all bool) {
	n := len(in)
	sums[0] = 0
	for i, v := range in {
		sums[i+1] = sums[i]
		if v != 0 {
			sums[i+1]++
		}
	}
	anchor := size / 2
	for i := 0; i < n; i++ {
		lo := maxInt(0, i-anchor)
		hi := minInt(n, i-anchor+size)
		ink := sums[hi] - sums[lo]
		hit := ink > 0
		if all {
			hit = ink == hi-lo
		}
		if hit {
			out[i] = 255
		} else {
			out[i] = 0
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
