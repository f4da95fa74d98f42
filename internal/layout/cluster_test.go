package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroups() [][2]float64 {
	return [][2]float64{
		{50, 150}, {52, 148}, {49, 151}, {55, 140},
		{500, 600}, {502, 598}, {498, 605}, {510, 590},
	}
}

func TestKMeans_SeparatesGroups(t *testing.T) {
	points := twoGroups()
	c, err := KMeans(points, KMeansOptions{K: 2})
	require.NoError(t, err)

	require.Len(t, c.Labels, len(points))
	require.Len(t, c.Centers, 2)
	for i := 1; i < 4; i++ {
		assert.Equal(t, c.Labels[0], c.Labels[i])
		assert.Equal(t, c.Labels[4], c.Labels[4+i])
	}
	assert.NotEqual(t, c.Labels[0], c.Labels[4])

	left := c.Centers[c.Labels[0]]
	assert.InDelta(t, 51.5, left[0], 1e-9)
	assert.InDelta(t, 147.25, left[1], 1e-9)
}

func TestKMeans_Deterministic(t *testing.T) {
	points := [][2]float64{
		{10, 90}, {12, 95}, {300, 400}, {310, 390}, {150, 250}, {160, 240}, {11, 91}, {305, 398},
	}
	opts := KMeansOptions{K: 3, Seed: 42}
	a, err := KMeans(points, opts)
	require.NoError(t, err)
	b, err := KMeans(points, opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKMeans_TooFewContours(t *testing.T) {
	_, err := KMeans([][2]float64{{1, 2}}, KMeansOptions{K: 2})
	assert.ErrorIs(t, err, ErrTooFewContours)
}

func TestKMeans_InvalidK(t *testing.T) {
	_, err := KMeans(twoGroups(), KMeansOptions{K: 0})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooFewContours)
}

func TestKMeans_IdenticalPoints(t *testing.T) {
	points := [][2]float64{{5, 9}, {5, 9}, {5, 9}}
	c, err := KMeans(points, KMeansOptions{K: 2, Restarts: 1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Inertia)
	for _, center := range c.Centers {
		assert.False(t, math.IsNaN(center[0]) || math.IsNaN(center[1]))
	}
}

func TestKMeans_KEqualsN(t *testing.T) {
	points := [][2]float64{{0, 10}, {100, 110}, {200, 210}}
	c, err := KMeans(points, KMeansOptions{K: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Inertia)
	assert.ElementsMatch(t, []int{0, 1, 2}, c.Labels)
}

func TestFlatStd(t *testing.T) {
	assert.Equal(t, 0.0, flatStd(nil))
	assert.Equal(t, 0.0, flatStd([][2]float64{{7, 7}, {7, 7}}))
	// values 0, 10 -> mean 5, std 5
	assert.InDelta(t, 5.0, flatStd([][2]float64{{0, 10}}), 1e-12)
	// values 0, 2, 4, 6 -> population std sqrt(5)
	assert.InDelta(t, math.Sqrt(5), flatStd([][2]float64{{0, 2}, {4, 6}}), 1e-12)
}
