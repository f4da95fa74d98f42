package layout

import "github.com/ironsheep/registry-segmenter/internal/geometry"

// SplitContour breaks c into one rectangle per hanging-indent entry.
//
// The indent threshold is box.X + box.W*fraction. Walking the polygon in
// order, a point beyond the threshold marks the trace as indented; the next
// point back at or before it closes the current entry at that point's y and
// opens a new one there. Transitions that do not move below the current top
// close nothing. The last entry runs to the bottom of c. Every rectangle
// keeps the horizontal extent of c.
func SplitContour(c geometry.Contour, fraction float64) []geometry.Contour {
	box := c.Box
	threshold := float64(box.X) + float64(box.W)*fraction

	var out []geometry.Contour
	aligned := true
	top := box.Y
	for _, p := range c.Points {
		x := float64(p.X)
		if aligned {
			if x > threshold {
				aligned = false
			}
			continue
		}
		if x <= threshold {
			aligned = true
			if p.Y > top {
				out = append(out, geometry.RectContour(geometry.BoundingBox{X: box.X, Y: top, W: box.W, H: p.Y - top}))
				top = p.Y
			}
		}
	}
	return append(out, geometry.RectContour(geometry.BoundingBox{X: box.X, Y: top, W: box.W, H: box.Bottom() - top}))
}

// SplitIndents applies SplitContour to every contour of every column and
// returns new columns; the input is not modified.
func SplitIndents(columns []Column, fraction float64) []Column {
	out := make([]Column, len(columns))
	for i, col := range columns {
		split := col
		split.Contours = nil
		for _, c := range col.Contours {
			split.Contours = append(split.Contours, SplitContour(c, fraction)...)
		}
		out[i] = split
	}
	return out
}
