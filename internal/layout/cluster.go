package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrTooFewContours is returned when a page has fewer blobs than clusters.
var ErrTooFewContours = errors.New("fewer contours than clusters")

// Default k-means effort, matching the usual library defaults.
const (
	DefaultRestarts      = 10
	DefaultMaxIterations = 300
)

// KMeansOptions configures KMeans.
type KMeansOptions struct {
	K             int
	Seed          int64
	Restarts      int
	MaxIterations int
}

// Clustering is the result of KMeans.
type Clustering struct {
	// Labels holds the cluster index of each input point.
	Labels []int `json:"labels"`
	// Centers holds each cluster's (left, right) centre.
	Centers [][2]float64 `json:"centers"`
	// Inertia is the summed squared distance of points to their centre.
	Inertia float64 `json:"inertia"`
}

// KMeans partitions points into opts.K clusters.
//
// Every restart seeds with k-means++ and then runs Lloyd iterations until
// the assignment is stable or MaxIterations is reached; the restart with the
// lowest inertia wins. All randomness comes from Seed, so equal inputs give
// equal results.
func KMeans(points [][2]float64, opts KMeansOptions) (*Clustering, error) {
	if opts.K <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", opts.K)
	}
	if len(points) < opts.K {
		return nil, fmt.Errorf("%w: %d contours for %d clusters", ErrTooFewContours, len(points), opts.K)
	}
	restarts := opts.Restarts
	if restarts <= 0 {
		restarts = DefaultRestarts
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var best *Clustering
	for r := 0; r < restarts; r++ {
		c := lloyd(points, seedPlusPlus(points, opts.K, rng), maxIter)
		if best == nil || c.Inertia < best.Inertia {
			best = c
		}
	}
	return best, nil
}

// seedPlusPlus picks k initial centres, each new one drawn with probability
// proportional to its squared distance from the nearest centre so far.
func seedPlusPlus(points [][2]float64, k int, rng *rand.Rand) [][2]float64 {
	centers := make([][2]float64, 0, k)
	centers = append(centers, points[rng.Intn(len(points))])

	d2 := make([]float64, len(points))
	for i, p := range points {
		d2[i] = sqDistance(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}

		idx := rng.Intn(len(points))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range d2 {
				target -= d
				if target < 0 {
					idx = i
					break
				}
			}
		}

		centers = append(centers, points[idx])
		for i, p := range points {
			if d := sqDistance(p, points[idx]); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centers
}

// lloyd refines centers in place. A cluster that loses all its points keeps
// its previous centre.
func lloyd(points [][2]float64, centers [][2]float64, maxIter int) *Clustering {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}
	sums := make([][2]float64, len(centers))
	counts := make([]int, len(centers))

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			if l := nearest(p, centers); l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		for j := range sums {
			sums[j] = [2]float64{}
			counts[j] = 0
		}
		for i, p := range points {
			l := labels[i]
			sums[l][0] += p[0]
			sums[l][1] += p[1]
			counts[l]++
		}
		for j := range centers {
			if counts[j] > 0 {
				centers[j] = [2]float64{sums[j][0] / float64(counts[j]), sums[j][1] / float64(counts[j])}
			}
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDistance(p, centers[labels[i]])
	}
	return &Clustering{Labels: labels, Centers: centers, Inertia: inertia}
}

// nearest returns the index of the closest centre; ties go to the lower index.
func nearest(p [2]float64, centers [][2]float64) int {
	best, bestD := 0, math.Inf(1)
	for j, c := range centers {
		if d := sqDistance(p, c); d < bestD {
			best, bestD = j, d
		}
	}
	return best
}
