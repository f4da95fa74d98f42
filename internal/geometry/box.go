package geometry

import (
	"fmt"
	"math"
)

// Point represents a 2D pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoundingBox is an axis-aligned rectangle in image pixel coordinates.
//
// W and H are never negative for boxes produced by this package.
type BoundingBox struct {
	X int `json:"x"` // Left edge
	Y int `json:"y"` // Top edge
	W int `json:"w"` // Width in pixels
	H int `json:"h"` // Height in pixels
}

// Right returns the x coordinate one past the right edge.
func (b BoundingBox) Right() int { return b.X + b.W }

// Bottom returns the y coordinate one past the bottom edge.
func (b BoundingBox) Bottom() int { return b.Y + b.H }

// Midpoint returns the box centre using integer division.
func (b BoundingBox) Midpoint() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Empty reports whether the box covers no pixels.
func (b BoundingBox) Empty() bool { return b.W <= 0 || b.H <= 0 }

// Span returns the horizontal extent pair (left, right) used for column clustering.
func (b BoundingBox) Span() [2]float64 {
	return [2]float64{float64(b.X), float64(b.X + b.W)}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", b.X, b.Y, b.W, b.H)
}

// BoundsOf returns the tightest box enclosing points, with inclusive extents.
// An empty slice yields the zero box.
func BoundsOf(points []Point) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return BoundingBox{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}
}

// Union combines two boxes into their enclosing box.
func Union(a, b BoundingBox) BoundingBox {
	x1 := minInt(a.X, b.X)
	y1 := minInt(a.Y, b.Y)
	x2 := maxInt(a.Right(), b.Right())
	y2 := maxInt(a.Bottom(), b.Bottom())
	return BoundingBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Expander grows a box by fractions of the enclosing image size. Expand and
// ExpandHalf both satisfy it.
type Expander func(box BoundingBox, imgW, imgH int, fx, fy float64) BoundingBox

// Expand grows box by fractions of the image size. The origin moves back by
// round(size*fraction/2) and the extent grows by round(size*fraction).
func Expand(box BoundingBox, imgW, imgH int, fx, fy float64) BoundingBox {
	return BoundingBox{
		X: box.X - roundInt(float64(imgW)*fx/2),
		Y: box.Y - roundInt(float64(imgH)*fy/2),
		W: box.W + roundInt(float64(imgW)*fx),
		H: box.H + roundInt(float64(imgH)*fy),
	}
}

// ExpandHalf grows box the way older single-indent layouts were tuned: both the
// origin shift and the extent growth use half the fraction.
func ExpandHalf(box BoundingBox, imgW, imgH int, fx, fy float64) BoundingBox {
	dx := roundInt(float64(imgW) * fx / 2)
	dy := roundInt(float64(imgH) * fy / 2)
	return BoundingBox{X: box.X - dx, Y: box.Y - dy, W: box.W + dx, H: box.H + dy}
}

// Shrink is the inverse of Expand for the same image size and fractions.
func Shrink(box BoundingBox, imgW, imgH int, fx, fy float64) BoundingBox {
	return BoundingBox{
		X: box.X + roundInt(float64(imgW)*fx/2),
		Y: box.Y + roundInt(float64(imgH)*fy/2),
		W: maxInt(0, box.W-roundInt(float64(imgW)*fx)),
		H: maxInt(0, box.H-roundInt(float64(imgH)*fy)),
	}
}

// Clip constrains box to the rectangle (0,0)-(w,h). A box lying entirely
// outside yields an empty box at the nearest edge.
func Clip(box BoundingBox, w, h int) BoundingBox {
	x1 := clamp(box.X, 0, w)
	y1 := clamp(box.Y, 0, h)
	x2 := clamp(box.Right(), 0, w)
	y2 := clamp(box.Bottom(), 0, h)
	return BoundingBox{X: x1, Y: y1, W: maxInt(0, x2-x1), H: maxInt(0, y2-y1)}
}

// TouchesBorder reports whether box lies within margin pixels of any edge of a
// w×h image.
func TouchesBorder(box BoundingBox, w, h, margin int) bool {
	return box.X <= margin || box.Y <= margin ||
		box.Right() >= w-margin || box.Bottom() >= h-margin
}

// roundInt rounds half away from zero.
func roundInt(v float64) int {
	return int(math.Round(v))
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
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
