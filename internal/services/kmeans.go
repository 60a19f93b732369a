package services

import (
	"math"
	"math/rand"
)

const (
	kmeansSeed     = 42
	kmeansInits    = 10
	kmeansMaxIters = 100
)

// kmeansPartition assigns each point to one of k clusters. It runs Lloyd's
// algorithm kmeansInits times from a fixed-seed source and keeps the
// assignment with the lowest inertia, so results are reproducible for the
// same input order.
func kmeansPartition(points [][]float32, k int) []int {
	n := len(points)
	if n == 0 || k <= 0 {
		return nil
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	bestInertia := math.Inf(1)
	var best []int
	for init := 0; init < kmeansInits; init++ {
		assignment, inertia := kmeansOnce(points, k, rng)
		if inertia < bestInertia {
			bestInertia = inertia
			best = assignment
		}
	}
	return best
}

func kmeansOnce(points [][]float32, k int, rng *rand.Rand) ([]int, float64) {
	n := len(points)
	dim := len(points[0])

	// Seed centroids from k distinct points.
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for j := 0; j < k; j++ {
		c := make([]float64, dim)
		for i, v := range points[perm[j]] {
			c[i] = float64(v)
		}
		centroids[j] = c
	}

	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}

	for iter := 0; iter < kmeansMaxIters; iter++ {
		changed := false
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignment[i] != nearest {
				assignment[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for j := range sums {
			sums[j] = make([]float64, dim)
		}
		for i, p := range points {
			j := assignment[i]
			counts[j]++
			for d, v := range p {
				sums[j][d] += float64(v)
			}
		}
		for j := range centroids {
			// An emptied cluster keeps its previous centroid.
			if counts[j] == 0 {
				continue
			}
			for d := range centroids[j] {
				centroids[j][d] = sums[j][d] / float64(counts[j])
			}
		}
	}

	var inertia float64
	for i, p := range points {
		inertia += sqDistance(p, centroids[assignment[i]])
	}
	return assignment, inertia
}

func nearestCentroid(p []float32, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for j, c := range centroids {
		if d := sqDistance(p, c); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best
}

func sqDistance(p []float32, c []float64) float64 {
	var sum float64
	for i, v := range p {
		d := float64(v) - c[i]
		sum += d * d
	}
	return sum
}
