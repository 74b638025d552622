// Package anomaly turns centroid distances into normalized per-packet
// anomaly scores and flags statistically small clusters.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"PacketPrism/internal/cluster"
	"PacketPrism/internal/model"
)

// Policy selects how raw distances are normalized into [0,1]. The source
// material was not uniform about this, so it is a run parameter rather than
// a constant.
type Policy string

const (
	// PolicyMinMax maps the minimum observed distance to 0 and the maximum
	// to 1, interpolating linearly.
	PolicyMinMax Policy = "minmax"
	// PolicyPercentile divides each distance by the configured percentile of
	// all distances and clamps to [0,1].
	PolicyPercentile Policy = "percentile"
)

// Config holds the scoring parameters.
type Config struct {
	// Threshold above which a packet counts as high-anomaly, in (0,1).
	Threshold float64
	// SmallClusterFraction: clusters with fewer than this fraction of all
	// records are flagged as small.
	SmallClusterFraction float64

	Policy     Policy
	Percentile float64 // used by PolicyPercentile
}

// Scores is the scorer's output for one run.
type Scores struct {
	// Values[i] is the normalized anomaly score of record i, in [0,1].
	Values []float64

	HighAnomalyCount int
	Threshold        float64

	// SmallClusters lists ids of clusters below the size fraction, ascending.
	SmallClusters []int
}

// Score computes normalized distance-to-centroid scores for every point and
// flags small clusters.
func Score(points [][]float64, res *cluster.Result, cfg Config) (*Scores, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points to score", model.ErrClustering)
	}

	distances := make([]float64, len(points))
	for i, p := range points {
		distances[i] = cluster.Distance(p, res.Centroids[res.Assignments[i]])
	}

	var values []float64
	switch cfg.Policy {
	case PolicyPercentile:
		values = normalizePercentile(distances, cfg.Percentile)
	default:
		values = normalizeMinMax(distances)
	}

	s := &Scores{
		Values:    values,
		Threshold: cfg.Threshold,
	}
	for _, v := range values {
		if v > cfg.Threshold {
			s.HighAnomalyCount++
		}
	}

	smallBelow := float64(len(points)) * cfg.SmallClusterFraction
	for id, count := range res.Counts {
		if float64(count) < smallBelow {
			s.SmallClusters = append(s.SmallClusters, id)
		}
	}

	return s, nil
}

// normalizeMinMax rescales distances linearly so the minimum maps to 0 and
// the maximum to 1. A degenerate run (all distances equal) scores all zeros.
func normalizeMinMax(distances []float64) []float64 {
	min, max := distances[0], distances[0]
	for _, d := range distances {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}

	values := make([]float64, len(distances))
	if max > min {
		for i, d := range distances {
			values[i] = (d - min) / (max - min)
		}
	}
	return values
}

// normalizePercentile divides each distance by the p-th percentile distance,
// clamped to [0,1]. A zero percentile cutoff scores all zeros.
func normalizePercentile(distances []float64, p float64) []float64 {
	cutoff := percentile(distances, p)
	values := make([]float64, len(distances))
	if cutoff <= 0 {
		return values
	}
	for i, d := range distances {
		v := d / cutoff
		if v > 1 {
			v = 1
		}
		values[i] = v
	}
	return values
}

// percentile returns the p-th percentile of data with linear interpolation.
func percentile(data []float64, p float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	index := (p / 100) * float64(len(sorted)-1)
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// Silhouette computes the mean silhouette coefficient of the partition, a
// separation-quality measure in [-1,1]. The second return is false when the
// metric is undefined for the given partition (fewer than two non-empty
// clusters, or any singleton-only configuration that degenerates).
func Silhouette(points [][]float64, assignments []int, k int) (float64, bool) {
	if k < 2 || len(points) < 3 {
		return 0, false
	}
	counts := make([]int, k)
	for _, a := range assignments {
		counts[a]++
	}
	nonEmpty := 0
	for _, c := range counts {
		if c > 0 {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return 0, false
	}

	total := 0.0
	for i, p := range points {
		own := assignments[i]
		if counts[own] <= 1 {
			// Singleton clusters contribute zero by convention.
			continue
		}

		// Mean distance to each cluster.
		sums := make([]float64, k)
		for j, q := range points {
			if i == j {
				continue
			}
			sums[assignments[j]] += cluster.Distance(p, q)
		}

		a := sums[own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if mean := sums[c] / float64(counts[c]); mean < b {
				b = mean
			}
		}

		if divisor := math.Max(a, b); divisor > 0 {
			total += (b - a) / divisor
		}
	}

	return total / float64(len(points)), true
}
