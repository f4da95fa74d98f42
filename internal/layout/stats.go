package layout

import (
	"math"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

// Spans returns the (left, right) horizontal extent of every contour.
func Spans(contours []geometry.Contour) [][2]float64 {
	out := make([][2]float64, len(contours))
	for i, c := range contours {
		out[i] = c.Box.Span()
	}
	return out
}

// flatStd is the population standard deviation of all coordinates of points
// taken together, as one flat list of 2×len(points) values.
func flatStd(points [][2]float64) float64 {
	n := float64(2 * len(points))
	if n == 0 {
		return 0
	}

	var sum float64
	for _, p := range points {
		sum += p[0] + p[1]
	}
	mean := sum / n

	var variance float64
	for _, p := range points {
		d0, d1 := p[0]-mean, p[1]-mean
		variance += d0*d0 + d1*d1
	}
	return math.Sqrt(variance / n)
}

func distance(a, b [2]float64) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}

func sqDistance(a, b [2]float64) float64 {
	d0, d1 := a[0]-b[0], a[1]-b[1]
	return d0*d0 + d1*d1
}
