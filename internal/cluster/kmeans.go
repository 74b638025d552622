// Package cluster partitions a scaled feature matrix into k clusters by
// iterative centroid refinement (Lloyd's algorithm with k-means++ seeding).
package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"PacketPrism/internal/model"
)

// Config holds the clustering parameters. K is validated upstream as a
// configuration error; the engine itself only rejects inputs it cannot
// partition.
type Config struct {
	K             int
	Restarts      int
	MaxIterations int
	Tolerance     float64
}

// Result is the outcome of the best restart.
type Result struct {
	// Assignments[i] is the cluster id of points[i], in [0,K).
	Assignments []int
	Centroids   [][]float64
	Counts      []int
	Inertia     float64
	Iterations  int
	Converged   bool
}

// Run partitions points into cfg.K clusters. The random source drives
// centroid seeding; a fixed source and fixed input reproduce the exact same
// partition. Run fails with a clustering error when the input has fewer
// distinct points than requested clusters.
func Run(points [][]float64, cfg Config, rng *rand.Rand) (*Result, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to cluster", model.ErrClustering)
	}
	if distinct := countDistinct(points); distinct < cfg.K {
		return nil, fmt.Errorf("%w: %d clusters requested but only %d distinct feature vectors",
			model.ErrClustering, cfg.K, distinct)
	}

	var best *Result
	for attempt := 0; attempt < cfg.Restarts; attempt++ {
		res := runOnce(points, cfg, rng)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// runOnce performs one seeded clustering attempt.
func runOnce(points [][]float64, cfg Config, rng *rand.Rand) *Result {
	centroids := seedPlusPlus(points, cfg.K, rng)
	assignments := make([]int, len(points))
	counts := make([]int, cfg.K)

	res := &Result{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		res.Iterations = iter + 1

		changed := assign(points, centroids, assignments, counts)
		fixEmptyClusters(points, centroids, assignments, counts)

		movement := recompute(points, centroids, assignments, counts)

		if !changed || movement < cfg.Tolerance {
			res.Converged = true
			break
		}
	}

	// Final assignment against the settled centroids.
	assign(points, centroids, assignments, counts)
	fixEmptyClusters(points, centroids, assignments, counts)

	res.Assignments = assignments
	res.Centroids = centroids
	res.Counts = counts
	res.Inertia = inertia(points, centroids, assignments)
	return res
}

// seedPlusPlus picks k initial centroids with distance-weighted sampling:
// the first uniformly, each next with probability proportional to squared
// distance from the nearest chosen centroid.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centroids = append(centroids, cloneVec(first))

	minDist := make([]float64, len(points))
	for i, p := range points {
		minDist[i] = squaredDistance(p, first)
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range minDist {
			total += d
		}

		var next []float64
		if total == 0 {
			// All remaining points coincide with a centroid; fall back to a
			// uniform pick (the distinct-count guard ensures progress).
			next = points[rng.Intn(len(points))]
		} else {
			target := rng.Float64() * total
			idx := len(points) - 1
			for i, d := range minDist {
				target -= d
				if target <= 0 {
					idx = i
					break
				}
			}
			next = points[idx]
		}

		centroids = append(centroids, cloneVec(next))
		for i, p := range points {
			if d := squaredDistance(p, next); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centroids
}

// assign moves each point to its nearest centroid and reports whether any
// assignment changed.
func assign(points, centroids [][]float64, assignments []int, counts []int) bool {
	for i := range counts {
		counts[i] = 0
	}
	changed := false
	for i, p := range points {
		nearest, best := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := squaredDistance(p, centroid); d < best {
				best = d
				nearest = c
			}
		}
		if assignments[i] != nearest {
			assignments[i] = nearest
			changed = true
		}
		counts[nearest]++
	}
	return changed
}

// fixEmptyClusters reseeds any emptied cluster with the point farthest from
// its current centroid, so the partition always keeps k non-empty clusters.
func fixEmptyClusters(points, centroids [][]float64, assignments []int, counts []int) {
	for c, count := range counts {
		if count > 0 {
			continue
		}
		farthest, maxDist := -1, -1.0
		for i, p := range points {
			if counts[assignments[i]] <= 1 {
				continue
			}
			if d := squaredDistance(p, centroids[assignments[i]]); d > maxDist {
				maxDist = d
				farthest = i
			}
		}
		if farthest < 0 {
			continue
		}
		counts[assignments[farthest]]--
		assignments[farthest] = c
		counts[c] = 1
		copy(centroids[c], points[farthest])
	}
}

// recompute sets each centroid to the mean of its members and returns the
// largest centroid movement (Euclidean) of this step.
func recompute(points, centroids [][]float64, assignments []int, counts []int) float64 {
	dims := len(points[0])
	sums := make([][]float64, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, p := range points {
		s := sums[assignments[i]]
		for j, v := range p {
			s[j] += v
		}
	}

	maxMove := 0.0
	for c, s := range sums {
		if counts[c] == 0 {
			continue
		}
		move := 0.0
		for j := range s {
			mean := s[j] / float64(counts[c])
			d := mean - centroids[c][j]
			move += d * d
			centroids[c][j] = mean
		}
		if move = math.Sqrt(move); move > maxMove {
			maxMove = move
		}
	}
	return maxMove
}

// inertia is the total within-cluster squared distance of the partition.
func inertia(points, centroids [][]float64, assignments []int) float64 {
	total := 0.0
	for i, p := range points {
		total += squaredDistance(p, centroids[assignments[i]])
	}
	return total
}

// Distance returns the Euclidean distance between two vectors.
func Distance(a, b []float64) float64 {
	return math.Sqrt(squaredDistance(a, b))
}

func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for j := range a {
		d := a[j] - b[j]
		sum += d * d
	}
	return sum
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// countDistinct counts the number of distinct feature vectors.
func countDistinct(points [][]float64) int {
	seen := make(map[string]struct{}, len(points))
	var sb strings.Builder
	for _, p := range points {
		sb.Reset()
		for _, v := range p {
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			sb.WriteByte(',')
		}
		seen[sb.String()] = struct{}{}
	}
	return len(seen)
}
