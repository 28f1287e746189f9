package search

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/resonet/ideastream/ai"
)

// kmeansAssign runs Lloyd's k-means over unit-norm vectors and returns
// the cluster label of every input vector. Assignment compares against
// normalized centroids by dot product, i.e. cosine similarity. With the
// same rng seed and inputs the labeling is deterministic.
func kmeansAssign(ctx context.Context, vectors [][]float32, k, maxIter int, rng *rand.Rand) ([]int, error) {
	if len(vectors) == 0 {
		return nil, nil
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid k")
	}
	if k > len(vectors) {
		k = len(vectors)
	}
	if maxIter <= 0 {
		maxIter = 10
	}

	dim := len(vectors[0])

	// Initialize centroids from k distinct input points
	centroids := make([][]float32, k)
	chosen := make(map[int]struct{}, k)
	for i := 0; i < k; i++ {
		for {
			idx := rng.Intn(len(vectors))
			if _, ok := chosen[idx]; ok {
				continue
			}
			chosen[idx] = struct{}{}
			centroids[i] = append([]float32(nil), vectors[idx]...)
			break
		}
	}

	assign := make([]int, len(vectors))
	centroidNorm := normalizeCentroids(centroids)
	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for i := range vectors {
			best := nearestCentroidIndex(vectors[i], centroidNorm)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids as the mean of their members
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := 0; i < k; i++ {
			sums[i] = make([]float64, dim)
		}
		for i := range vectors {
			c := assign[i]
			counts[c]++
			for d := 0; d < dim; d++ {
				sums[c][d] += float64(vectors[i][d])
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an empty cluster from a random point
				centroids[c] = append([]float32(nil), vectors[rng.Intn(len(vectors))]...)
				continue
			}
			for d := 0; d < dim; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
		centroidNorm = normalizeCentroids(centroids)
	}

	return assign, nil
}

func normalizeCentroids(centroids [][]float32) [][]float32 {
	result := make([][]float32, len(centroids))
	for i, centroid := range centroids {
		result[i] = ai.Normalize(centroid)
	}
	return result
}

// nearestCentroidIndex returns the index of the centroid with the
// highest dot product against v.
func nearestCentroidIndex(v []float32, centroids [][]float32) int {
	best := 0
	var bestScore float32
	for c, centroid := range centroids {
		var score float32
		for d := range centroid {
			score += v[d] * centroid[d]
		}
		if c == 0 || score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}
