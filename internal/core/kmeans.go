package core

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KMeansConfig holds the centroid clustering settings
type KMeansConfig struct {
	Seed          int64
	MaxIterations int
	// Runs is the number of independently seeded initializations; the run with
	// the lowest inertia wins
	Runs int
}

// DefaultKMeansConfig returns the default clustering settings
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		Seed:          42,
		MaxIterations: 300,
		Runs:          10,
	}
}

// Assigner partitions feature vectors into k groups with k-means
type Assigner struct {
	cfg KMeansConfig
}

// NewAssigner creates a new cluster assigner
func NewAssigner(cfg KMeansConfig) *Assigner {
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultKMeansConfig().MaxIterations
	}
	if cfg.Runs < 1 {
		cfg.Runs = 1
	}
	return &Assigner{cfg: cfg}
}

// Assign returns one cluster id in [0, k) per matrix row. Identical input,
// k and seed always produce identical labels.
func (a *Assigner) Assign(m *mat.Dense, k int) ([]int, error) {
	if m == nil || m.IsEmpty() {
		return nil, fmt.Errorf("%w: no rows to cluster", ErrEmptyInput)
	}
	n, _ := m.Dims()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k=%d with %d rows", ErrInvalidClusterCount, k, n)
	}

	rng := rand.New(rand.NewSource(a.cfg.Seed))

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < a.cfg.Runs; run++ {
		centroids := initCentroids(m, k, rng)
		labels, inertia := a.lloyd(m, centroids)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best, nil
}

// initCentroids picks k rows as starting centroids with k-means++ seeding
func initCentroids(m *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := m.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, m.RawRowView(rng.Intn(n)))

	minDist := make([]float64, n)
	for i := range minDist {
		minDist[i] = math.Inf(1)
	}

	for c := 1; c < k; c++ {
		last := centroids.RawRowView(c - 1)
		total := 0.0
		for i := 0; i < n; i++ {
			dist := floats.Distance(m.RawRowView(i), last, 2)
			if sq := dist * dist; sq < minDist[i] {
				minDist[i] = sq
			}
			total += minDist[i]
		}

		if total == 0 {
			// every point coincides with a chosen centroid
			centroids.SetRow(c, m.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		chosen := n - 1
		cum := 0.0
		for i := 0; i < n; i++ {
			cum += minDist[i]
			if cum > target {
				chosen = i
				break
			}
		}
		centroids.SetRow(c, m.RawRowView(chosen))
	}
	return centroids
}

// lloyd iterates assignment and centroid updates until labels are stable or
// the iteration cap is hit, returning labels and their inertia
func (a *Assigner) lloyd(m *mat.Dense, centroids *mat.Dense) ([]int, float64) {
	n, d := m.Dims()
	k, _ := centroids.Dims()

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	dists := make([]float64, n)
	sizes := make([]int, k)

	for iter := 0; iter < a.cfg.MaxIterations; iter++ {
		changed := false
		for c := range sizes {
			sizes[c] = 0
		}
		for i := 0; i < n; i++ {
			c, dist := nearest(m.RawRowView(i), centroids)
			if c != labels[i] {
				labels[i] = c
				changed = true
			}
			dists[i] = dist
			sizes[c]++
		}
		if !changed {
			break
		}

		relocateEmpty(m, centroids, labels, dists, sizes)

		sums := mat.NewDense(k, d, nil)
		for i := 0; i < n; i++ {
			floats.Add(sums.RawRowView(labels[i]), m.RawRowView(i))
		}
		for c := 0; c < k; c++ {
			if sizes[c] == 0 {
				continue
			}
			row := sums.RawRowView(c)
			floats.Scale(1/float64(sizes[c]), row)
			centroids.SetRow(c, row)
		}
	}

	inertia := 0.0
	for i := 0; i < n; i++ {
		dist := floats.Distance(m.RawRowView(i), centroids.RawRowView(labels[i]), 2)
		inertia += dist * dist
	}
	return labels, inertia
}

// nearest returns the closest centroid by Euclidean distance; ties go to the lowest index
func nearest(point []float64, centroids *mat.Dense) (int, float64) {
	k, _ := centroids.Dims()
	best, bestDist := 0, math.Inf(1)
	for c := 0; c < k; c++ {
		dist := floats.Distance(point, centroids.RawRowView(c), 2)
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist
}

// relocateEmpty moves the point farthest from its centroid into each empty
// cluster, taking only from clusters with more than one member
func relocateEmpty(m *mat.Dense, centroids *mat.Dense, labels []int, dists []float64, sizes []int) {
	for c := range sizes {
		if sizes[c] > 0 {
			continue
		}
		far := -1
		for i := range labels {
			if sizes[labels[i]] < 2 {
				continue
			}
			if far < 0 || dists[i] > dists[far] {
				far = i
			}
		}
		if far < 0 {
			return
		}
		sizes[labels[far]]--
		labels[far] = c
		sizes[c] = 1
		dists[far] = 0
		centroids.SetRow(c, m.RawRowView(far))
	}
}
