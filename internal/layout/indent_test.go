package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/registry-segmenter/internal/geometry"
)

func TestSplitContour_AlternatingIndent(t *testing.T) {
	c := geometry.Contour{
		Points: []geometry.Point{{10, 0}, {80, 10}, {10, 20}, {80, 30}},
		Box:    geometry.BoundingBox{X: 0, Y: 0, W: 100, H: 31},
	}

	blocks := SplitContour(c, 0.5)
	require.Len(t, blocks, 2)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 0, W: 100, H: 20}, blocks[0].Box)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 20, W: 100, H: 11}, blocks[1].Box)
}

func TestSplitContour_HangingIndentPolygon(t *testing.T) {
	// Two entries, each a flush first line followed by an indented line.
	c := geometry.NewContour([]geometry.Point{
		{0, 0}, {0, 9}, {20, 10}, {20, 19}, {0, 20}, {0, 29}, {20, 30}, {20, 39}, {199, 39}, {199, 0},
	})

	blocks := SplitContour(c, 0.05)
	require.Len(t, blocks, 2)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 0, W: 200, H: 20}, blocks[0].Box)
	assert.Equal(t, geometry.BoundingBox{X: 0, Y: 20, W: 200, H: 20}, blocks[1].Box)
	assert.Equal(t, c.Box.Bottom(), blocks[1].Box.Bottom())
}

func TestSplitContour_PlainRectangle(t *testing.T) {
	c := geometry.NewContour([]geometry.Point{{10, 20}, {10, 23}, {19, 23}, {19, 20}})
	blocks := SplitContour(c, 0.025)
	require.Len(t, blocks, 1)
	assert.Equal(t, c.Box, blocks[0].Box)
}

func TestSplitContour_ReturnAboveTopDoesNotSplit(t *testing.T) {
	// The trace wanders right and comes back left on the top edge.
	c := geometry.Contour{
		Points: []geometry.Point{{0, 5}, {0, 30}, {90, 30}, {90, 5}, {5, 5}},
		Box:    geometry.BoundingBox{X: 0, Y: 5, W: 91, H: 26},
	}
	blocks := SplitContour(c, 0.5)
	require.Len(t, blocks, 1)
	assert.Equal(t, c.Box, blocks[0].Box)
}

func TestSplitIndents(t *testing.T) {
	entry := geometry.Contour{
		Points: []geometry.Point{{10, 0}, {80, 10}, {10, 20}, {80, 30}},
		Box:    geometry.BoundingBox{X: 0, Y: 0, W: 100, H: 31},
	}
	plain := rect(0, 50, 100, 10)
	columns := []Column{
		{Cluster: 0, Left: 0, Right: 100, Contours: []geometry.Contour{entry, plain}},
		{Cluster: 1, Left: 300, Right: 400},
	}

	split := SplitIndents(columns, 0.5)
	require.Len(t, split, 2)
	require.Len(t, split[0].Contours, 3)
	assert.Equal(t, 50, split[0].Contours[2].Box.Y)
	assert.Empty(t, split[1].Contours)
	assert.Equal(t, 1, split[1].Cluster)

	assert.Len(t, columns[0].Contours, 2, "input columns are not modified")
}
