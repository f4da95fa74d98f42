package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

// Line widths used by the debug renders.
const (
	ColumnLineWidth = 20
	BoxLineWidth    = 5
)

// Guide marks one column's horizontal footprint on a render.
type Guide struct {
	Left  int
	Right int
	Label string
}

// ParseColor parses a hex colour such as "#00ff00", "00ff00" or "#0f0".
func ParseColor(hex string) (color.Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return nil, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return c.Clamped(), nil
}

// Palette returns n well separated, fully opaque colours. The sequence is
// deterministic so renders of the same page are comparable across runs.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		hue := float64(i) * 360 / float64(maxInt(n, 1))
		out[i] = colorful.Hsv(hue, 0.75, 0.95).Clamped()
	}
	return out
}

// RenderClosed fills every polygon on a black w×h canvas.
func RenderClosed(w, h int, polygons [][]geometry.Point, fill color.Color) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	src := image.NewUniform(fill)

	for _, poly := range polygons {
		if len(poly) == 0 {
			continue
		}
		if len(poly) >= 3 {
			z := vector.NewRasterizer(w, h)
			z.MoveTo(float32(poly[0].X)+0.5, float32(poly[0].Y)+0.5)
			for _, p := range poly[1:] {
				z.LineTo(float32(p.X)+0.5, float32(p.Y)+0.5)
			}
			z.ClosePath()
			z.Draw(canvas, canvas.Bounds(), src, image.Point{})
		}
		// Outline as well, so thin blobs that enclose no area stay visible.
		for i := range poly {
			drawLine(canvas, poly[i], poly[(i+1)%len(poly)], fill)
		}
	}
	return canvas
}

// RenderColumnLines draws each guide's left and right bound as a vertical
// band over mask, labelled at the top.
func RenderColumnLines(mask *image.Gray, guides []Guide, colors []color.Color) *image.RGBA {
	canvas := clone.AsRGBA(mask)
	h := canvas.Bounds().Dy()
	for i, g := range guides {
		c := color.Color(color.White)
		if len(colors) > 0 {
			c = colors[i%len(colors)]
		}
		for _, x := range []int{g.Left, g.Right} {
			fillRect(canvas, image.Rect(x-ColumnLineWidth/2, 0, x+(ColumnLineWidth+1)/2, h), c)
		}
		if g.Label != "" {
			drawLabel(canvas, g.Left+ColumnLineWidth, 2, g.Label, c)
		}
	}
	return canvas
}

// RenderBoxes outlines each box over src and numbers them in order.
func RenderBoxes(src *image.Gray, boxes []geometry.BoundingBox, c color.Color) *image.RGBA {
	canvas := clone.AsRGBA(src)
	for i, b := range boxes {
		strokeRect(canvas, b, BoxLineWidth, c)
		drawLabel(canvas, b.X+BoxLineWidth, b.Y+BoxLineWidth, fmt.Sprint(i+1), c)
	}
	return canvas
}

// SaveDebug writes img to path. The encoder follows the extension; ".tiff"
// and ".tif" produce TIFF.
func SaveDebug(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save debug image: %w", err)
	}
	return nil
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect draws the outline of b with the given width centred on its edges.
func strokeRect(img *image.RGBA, b geometry.BoundingBox, width int, c color.Color) {
	lo, hi := width/2, (width+1)/2
	x1, y1, x2, y2 := b.X, b.Y, b.Right(), b.Bottom()
	fillRect(img, image.Rect(x1-lo, y1-lo, x2+hi, y1+hi), c)
	fillRect(img, image.Rect(x1-lo, y2-lo, x2+hi, y2+hi), c)
	fillRect(img, image.Rect(x1-lo, y1-lo, x1+hi, y2+hi), c)
	fillRect(img, image.Rect(x2-lo, y1-lo, x2+hi, y2+hi), c)
}

// drawLine is Bresenham's algorithm, clipped by SetRGBA's bounds check.
func drawLine(img *image.RGBA, a, b geometry.Point, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	dx, dy := absInt(b.X-a.X), -absInt(b.Y-a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		img.SetRGBA(x, y, rgba)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// drawLabel writes text with its top-left corner at (x, y) on a black plate.
func drawLabel(img *image.RGBA, x, y int, text string, c color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	fillRect(img, image.Rect(x-1, y-1, x+width+1, y+face.Height+1), color.Black)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
