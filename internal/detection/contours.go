package detection

import (
	"image"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

// Freeman chain directions, counter-clockwise in image space (Y down).
var chain = [8]geometry.Point{
	{X: 1, Y: 0},   // 0 E
	{X: 1, Y: -1},  // 1 NE
	{X: 0, Y: -1},  // 2 N
	{X: -1, Y: -1}, // 3 NW
	{X: -1, Y: 0},  // 4 W
	{X: -1, Y: 1},  // 5 SW
	{X: 0, Y: 1},   // 6 S
	{X: 1, Y: 1},   // 7 SE
}

// FindExternalContours returns the outer border of every ink component of
// mask that is not nested inside a hole of another component.
//
// Components are 8-connected; pixels outside the image count as background,
// so a component touching the edge is always external. Each border is traced
// counter-clockwise starting at the component's top-most, left-most pixel
// (going down its left side first) and only the vertices where the chain
// direction changes are kept. Contours are returned in raster order of their
// start pixels.
func FindExternalContours(mask *image.Gray) []geometry.Contour {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	m := &binaryMap{width: width, height: height, ink: make([]bool, width*height)}
	for y := 0; y < height; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+width]
		for x, v := range row {
			m.ink[y*width+x] = v != 0
		}
	}

	labels, starts := labelComponents(m)
	external := markExternal(m, labels, len(starts))

	contours := make([]geometry.Contour, 0, len(starts))
	for i, s := range starts {
		if !external[i+1] {
			continue
		}
		contours = append(contours, geometry.NewContour(simplify(traceBorder(m, s))))
	}
	return contours
}

// binaryMap is a flat, row-major view of a mask.
type binaryMap struct {
	width, height int
	ink           []bool
}

func (m *binaryMap) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.ink[y*m.width+x]
}

// labelComponents assigns a 1-based label to every 8-connected ink component
// and records the first pixel of each in raster order.
func labelComponents(m *binaryMap) ([]int32, []geometry.Point) {
	labels := make([]int32, len(m.ink))
	var starts []geometry.Point
	var stack []int

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			idx := y*m.width + x
			if !m.ink[idx] || labels[idx] != 0 {
				continue
			}
			starts = append(starts, geometry.Point{X: x, Y: y})
			label := int32(len(starts))
			labels[idx] = label
			stack = append(stack[:0], idx)

			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%m.width, cur/m.width

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if (dx == 0 && dy == 0) || !m.at(nx, ny) {
							continue
						}
						n := ny*m.width + nx
						if labels[n] == 0 {
							labels[n] = label
							stack = append(stack, n)
						}
					}
				}
			}
		}
	}
	return labels, starts
}

// markExternal flood-fills the background reachable from outside the image
// (4-connected, the dual of 8-connected ink) and reports, per label, whether
// the component borders it. external[0] is unused.
func markExternal(m *binaryMap, labels []int32, count int) []bool {
	external := make([]bool, count+1)
	outside := make([]bool, len(m.ink))
	var queue []int

	visit := func(x, y int) {
		idx := y*m.width + x
		if m.ink[idx] {
			external[labels[idx]] = true
			return
		}
		if !outside[idx] {
			outside[idx] = true
			queue = append(queue, idx)
		}
	}

	for x := 0; x < m.width; x++ {
		visit(x, 0)
		visit(x, m.height-1)
	}
	for y := 0; y < m.height; y++ {
		visit(0, y)
		visit(m.width-1, y)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cx, cy := cur%m.width, cur/m.width
		for _, d := range [4]geometry.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			nx, ny := cx+d.X, cy+d.Y
			if nx < 0 || ny < 0 || nx >= m.width || ny >= m.height {
				continue
			}
			visit(nx, ny)
		}
	}
	return external
}

// traceBorder follows the outer boundary of the component containing start,
// which must be its raster-first pixel. It stops on returning to start about
// to repeat the first move. An isolated pixel yields a single point.
func traceBorder(m *binaryMap, start geometry.Point) []geometry.Point {
	points := []geometry.Point{start}
	cur, dir := start, 7
	var second geometry.Point

	for step := 0; ; step++ {
		next, nextDir, ok := nextBorderPixel(m, cur, dir)
		if !ok {
			return points
		}
		if step == 0 {
			second = next
		} else if cur == start && next == second {
			break
		}
		points = append(points, next)
		cur, dir = next, nextDir
	}
	// The last point appended is start itself.
	return points[:len(points)-1]
}

// nextBorderPixel searches the 8 neighbours of p counter-clockwise, starting
// from the direction that keeps background on the outside of the trace.
func nextBorderPixel(m *binaryMap, p geometry.Point, dir int) (geometry.Point, int, bool) {
	if dir%2 == 0 {
		dir = (dir + 7) % 8
	} else {
		dir = (dir + 6) % 8
	}
	for i := 0; i < 8; i++ {
		d := (dir + i) % 8
		n := geometry.Point{X: p.X + chain[d].X, Y: p.Y + chain[d].Y}
		if m.at(n.X, n.Y) {
			return n, d, true
		}
	}
	return p, dir, false
}

// simplify keeps only the points where the chain changes direction, so
// straight runs collapse to their end points.
func simplify(points []geometry.Point) []geometry.Point {
	n := len(points)
	if n < 3 {
		return points
	}
	out := make([]geometry.Point, 0, n)
	for i, p := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		in := geometry.Point{X: p.X - prev.X, Y: p.Y - prev.Y}
		outDir := geometry.Point{X: next.X - p.X, Y: next.Y - p.Y}
		if i == 0 || in != outDir {
			out = append(out, p)
		}
	}
	return out
}
