package imaging

import "image"

// Binarize produces an inverted binary mask of src: a pixel becomes ink (255)
// when its intensity is at most threshold and background (0) otherwise.
//
// A threshold of 0 is the mode used for scans that are already binary, where
// only pure black counts as ink.
func Binarize(src *image.Gray, threshold uint8) *image.Gray {
	var lut [256]uint8
	for v := 0; v <= int(threshold); v++ {
		lut[v] = 255
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range row {
			out[x] = lut[v]
		}
	}
	return dst
}

// InkCount returns the number of non-zero pixels in mask.
func InkCount(mask *image.Gray) int {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	n := 0
	for y := 0; y < h; y++ {
		for _, v := range mask.Pix[y*mask.Stride : y*mask.Stride+w] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
