package gap

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	ErrNoVectors         = errors.New("no vectors to cluster")
	ErrInvalidK          = errors.New("invalid cluster count")
	ErrDimensionMismatch = errors.New("vectors have different dimensions")
	ErrEmptyFeatures     = errors.New("vectors have no features")
	ErrNonFinite         = errors.New("vector contains a non-finite value")
)

// Clusterer partitions vectors into k groups and returns the group index of
// each vector.
type Clusterer interface {
	Cluster(vectors [][]float64, k int) ([]int, error)
}

const defaultMaxIterations = 100

// KMeans is Lloyd's algorithm with Forgy initialisation and squared
// Euclidean distance. A zero Seed draws initial centroids from the process
// random source, so repeated runs may differ.
type KMeans struct {
	MaxIterations int
	Seed          uint64
}

func (km KMeans) Cluster(vectors [][]float64, k int) ([]int, error) {
	n := len(vectors)
	if n == 0 {
		return nil, ErrNoVectors
	}
	if k <= 0 || k > n {
		return nil, fmt.Errorf("%w: k=%d for %d vectors", ErrInvalidK, k, n)
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, ErrEmptyFeatures
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: vector %d", ErrNonFinite, i)
			}
		}
	}

	centroids := make([][]float64, k)
	for c, idx := range km.perm(n)[:k] {
		centroids[c] = append([]float64(nil), vectors[idx]...)
	}

	maxIter := km.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, v := range vectors {
			best := nearest(centroids, v)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		recompute(centroids, vectors, assign)
	}
	return assign, nil
}

func (km KMeans) perm(n int) []int {
	if km.Seed == 0 {
		return rand.Perm(n)
	}
	return rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15)).Perm(n)
}

// nearest returns the closest centroid; ties go to the lower index.
func nearest(centroids [][]float64, v []float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		d := squaredDistance(centroid, v)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// recompute moves each centroid to the mean of its members. A centroid with
// no members stays where it is.
func recompute(centroids, vectors [][]float64, assign []int) {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := assign[i]
		counts[c]++
		for j, x := range v {
			sums[c][j] += x
		}
	}
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}
