package segment

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/registry-segmenter/internal/config"
	"github.com/ironsheep/registry-segmenter/internal/geometry"
	"github.com/ironsheep/registry-segmenter/internal/imaging"
	"github.com/ironsheep/registry-segmenter/internal/layout"
	"github.com/ironsheep/registry-segmenter/internal/log"
)

// Debug image suffixes, appended to the page's base name.
const (
	DebugClosed      = "closed"
	DebugColumnLines = "column_lines"
	DebugContoured   = "contoured"
)

// DebugPath returns where the debug image kind of page is written.
func DebugPath(dir, page, kind string) string {
	base := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
	return filepath.Join(dir, fmt.Sprintf("%s-%s.tiff", base, kind))
}

// debugWriter emits diagnostic renders. It is a no-op when debugging is off,
// and write failures are logged rather than failing the page.
type debugWriter struct {
	enabled bool
	dir     string
	page    string
	line    color.Color
}

func newDebugWriter(cfg config.Config, page string) *debugWriter {
	d := &debugWriter{enabled: cfg.Debug, dir: cfg.DebugDir, page: page}
	if !d.enabled {
		return d
	}
	c, err := imaging.ParseColor(cfg.LineColor)
	if err != nil {
		c = color.Gray{Y: 130}
	}
	d.line = c
	return d
}

func (d *debugWriter) closed(w, h int, contours []geometry.Contour) {
	if !d.enabled {
		return
	}
	polys := make([][]geometry.Point, len(contours))
	for i, c := range contours {
		polys[i] = c.Points
	}
	d.save(DebugClosed, imaging.RenderClosed(w, h, polys, d.line))
}

func (d *debugWriter) columnLines(mask *image.Gray, c *layout.Clustering) {
	if !d.enabled {
		return
	}
	guides := make([]imaging.Guide, len(c.Centers))
	for i, center := range c.Centers {
		guides[i] = imaging.Guide{
			Left:  int(center[0]),
			Right: int(center[1]),
			Label: fmt.Sprint(i),
		}
	}
	d.save(DebugColumnLines, imaging.RenderColumnLines(mask, guides, imaging.Palette(len(guides))))
}

func (d *debugWriter) contoured(src *image.Gray, regions []geometry.BoundingBox) {
	if !d.enabled {
		return
	}
	d.save(DebugContoured, imaging.RenderBoxes(src, regions, d.line))
}

func (d *debugWriter) save(kind string, img image.Image) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		log.Warnf("page %s: failed to create debug dir: %v", d.page, err)
		return
	}
	path := DebugPath(d.dir, d.page, kind)
	if err := imaging.SaveDebug(path, img); err != nil {
		log.Warnf("page %s: %v", d.page, err)
		return
	}
	log.Debugf("page %s: wrote %s", d.page, path)
}
