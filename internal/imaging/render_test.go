package imaging

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

var green = color.RGBA{G: 255, A: 255}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#00ff00", green, false},
		{"00ff00", green, false},
		{"#0f0", green, false},
		{"", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, color.RGBAModel.Convert(c))
		})
	}
}

func TestPalette(t *testing.T) {
	p := Palette(4)
	require.Len(t, p, 4)
	assert.NotEqual(t, p[0], p[1])
	assert.Equal(t, p, Palette(4), "palette is deterministic")
	assert.Empty(t, Palette(0))
}

func TestRenderClosed_FillsPolygon(t *testing.T) {
	square := []geometry.Point{{10, 10}, {10, 30}, {30, 30}, {30, 10}}
	canvas := RenderClosed(50, 50, [][]geometry.Point{square}, green)

	assert.Equal(t, green, canvas.RGBAAt(20, 20))
	assert.Equal(t, green, canvas.RGBAAt(10, 10), "outline is drawn")
	assert.Equal(t, color.RGBA{A: 255}, canvas.RGBAAt(40, 40))
}

func TestRenderClosed_DegeneratePolygon(t *testing.T) {
	line := []geometry.Point{{5, 5}, {15, 5}}
	canvas := RenderClosed(20, 20, [][]geometry.Point{line, nil}, green)
	assert.Equal(t, green, canvas.RGBAAt(10, 5))
}

func TestRenderColumnLines(t *testing.T) {
	mask := newGray(200, 100, 0)
	canvas := RenderColumnLines(mask, []Guide{{Left: 50, Right: 150, Label: "1"}}, []color.Color{green})

	assert.Equal(t, image.Rect(0, 0, 200, 100), canvas.Bounds())
	assert.Equal(t, green, canvas.RGBAAt(50, 90))
	assert.Equal(t, green, canvas.RGBAAt(150, 90))
	assert.Equal(t, green, canvas.RGBAAt(41, 90), "bands are centred on the bound")
	assert.Equal(t, color.RGBA{A: 255}, canvas.RGBAAt(100, 90))
}

func TestRenderBoxes(t *testing.T) {
	src := newGray(100, 100, 255)
	canvas := RenderBoxes(src, []geometry.BoundingBox{{X: 20, Y: 20, W: 40, H: 40}}, green)

	assert.Equal(t, green, canvas.RGBAAt(40, 20))
	assert.Equal(t, green, canvas.RGBAAt(60, 40))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, canvas.RGBAAt(90, 90))
}

func TestSaveDebug_TIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page-closed.tiff")
	require.NoError(t, SaveDebug(path, RenderClosed(10, 10, nil, green)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	back, err := LoadGray(path)
	require.NoError(t, err)
	assert.Equal(t, 10, back.Bounds().Dx())
}

func TestSaveDebug_UnknownExtension(t *testing.T) {
	err := SaveDebug(filepath.Join(t.TempDir(), "out.xyz"), RenderClosed(1, 1, nil, green))
	assert.Error(t, err)
}
