package gap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKMeansSeparatesGroups(t *testing.T) {
	vectors := [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}
	for seed := uint64(1); seed <= 20; seed++ {
		assign, err := KMeans{Seed: seed}.Cluster(vectors, 2)
		require.NoError(t, err)
		require.Len(t, assign, 6)

		assert.Equal(t, assign[0], assign[1], "seed %d", seed)
		assert.Equal(t, assign[0], assign[2], "seed %d", seed)
		assert.Equal(t, assign[3], assign[4], "seed %d", seed)
		assert.Equal(t, assign[3], assign[5], "seed %d", seed)
		assert.NotEqual(t, assign[0], assign[3], "seed %d", seed)
	}
}

func TestKMeansSeededIsReproducible(t *testing.T) {
	vectors := [][]float64{{1, 0, 1}, {0, 1, 1}, {1, 1, 0}, {0, 0, 1}, {1, 0, 0}}
	a, err := KMeans{Seed: 42}.Cluster(vectors, 3)
	require.NoError(t, err)
	b, err := KMeans{Seed: 42}.Cluster(vectors, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKMeansAssignmentsInRange(t *testing.T) {
	vectors := [][]float64{{1, 1}, {1, 1}, {1, 1}, {0, 0}}
	assign, err := KMeans{}.Cluster(vectors, 3)
	require.NoError(t, err)
	for _, c := range assign {
		assert.GreaterOrEqual(t, c, 0)
		assert.Less(t, c, 3)
	}
}

func TestKMeansSingleCluster(t *testing.T) {
	assign, err := KMeans{Seed: 3}.Cluster([][]float64{{0}, {5}, {9}}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, assign)
}

func TestKMeansRejectsDegenerateInput(t *testing.T) {
	km := KMeans{Seed: 1}
	cases := []struct {
		name    string
		vectors [][]float64
		k       int
		want    error
	}{
		{"no vectors", nil, 1, ErrNoVectors},
		{"k zero", [][]float64{{1}}, 0, ErrInvalidK},
		{"k too large", [][]float64{{1}}, 2, ErrInvalidK},
		{"empty features", [][]float64{{}, {}}, 1, ErrEmptyFeatures},
		{"ragged", [][]float64{{1, 0}, {1}}, 1, ErrDimensionMismatch},
		{"nan", [][]float64{{1}, {math.NaN()}}, 1, ErrNonFinite},
		{"inf", [][]float64{{math.Inf(1)}, {0}}, 1, ErrNonFinite},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := km.Cluster(tc.vectors, tc.k)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
