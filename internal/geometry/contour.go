package geometry

// Contour is the polygon outline of one connected ink blob.
//
// Box is derived once from Points when the contour is created and kept in
// step by Translate. Contours built by RectContour carry an explicit box so
// split blocks keep the exact horizontal extent of their parent.
type Contour struct {
	Points []Point     `json:"points"`
	Box    BoundingBox `json:"box"`
}

// NewContour creates a contour that owns a copy of points.
func NewContour(points []Point) Contour {
	buf := make([]Point, len(points))
	copy(buf, points)
	return Contour{Points: buf, Box: BoundsOf(buf)}
}

// RectContour builds a rectangular contour for box. Corners are listed left
// edge first (top-left, bottom-left, bottom-right, top-right), the same
// orientation produced by border following.
func RectContour(box BoundingBox) Contour {
	x1, y1 := box.X, box.Y
	x2, y2 := box.Right(), box.Bottom()
	return Contour{
		Points: []Point{{x1, y1}, {x1, y2}, {x2, y2}, {x2, y1}},
		Box:    box,
	}
}

// Midpoint returns the centre of the contour's bounding box.
func (c Contour) Midpoint() Point { return c.Box.Midpoint() }

// Translate returns a copy of c shifted by (dx, dy). The receiver is not modified.
func (c Contour) Translate(dx, dy int) Contour {
	buf := make([]Point, len(c.Points))
	for i, p := range c.Points {
		buf[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	box := c.Box
	box.X += dx
	box.Y += dy
	return Contour{Points: buf, Box: box}
}

// UnionBox returns the box enclosing every contour in cs. ok is false when cs
// is empty.
func UnionBox(cs []Contour) (box BoundingBox, ok bool) {
	for i, c := range cs {
		if i == 0 {
			box = c.Box
			continue
		}
		box = Union(box, c.Box)
	}
	return box, len(cs) > 0
}
