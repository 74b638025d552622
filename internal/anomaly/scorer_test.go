package anomaly

import (
	"math"
	"testing"

	"PacketPrism/internal/cluster"
)

// twoClusterResult builds a fixed partition: cluster 0 at the origin with
// three points, cluster 1 at (10,0) with one point.
func twoClusterResult() ([][]float64, *cluster.Result) {
	points := [][]float64{
		{0, 0}, {1, 0}, {2, 0}, {10, 0},
	}
	res := &cluster.Result{
		Assignments: []int{0, 0, 0, 1},
		Centroids:   [][]float64{{1, 0}, {10, 0}},
		Counts:      []int{3, 1},
	}
	return points, res
}

func TestScore_MinMaxRange(t *testing.T) {
	points, res := twoClusterResult()
	s, err := Score(points, res, Config{Threshold: 0.85, SmallClusterFraction: 0.05, Policy: PolicyMinMax})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if len(s.Values) != len(points) {
		t.Fatalf("Expected %d scores, got %d", len(points), len(s.Values))
	}
	for i, v := range s.Values {
		if v < 0 || v > 1 {
			t.Errorf("Score %d = %g, outside [0,1]", i, v)
		}
	}

	// Distances are 1,0,1,0: the middle point and the singleton sit on their
	// centroids and must score 0, the others 1.
	if s.Values[1] != 0 || s.Values[3] != 0 {
		t.Errorf("On-centroid points should score 0, got %v", s.Values)
	}
	if s.Values[0] != 1 || s.Values[2] != 1 {
		t.Errorf("Farthest points should score 1, got %v", s.Values)
	}
}

func TestScore_AllEqualDistances(t *testing.T) {
	points := [][]float64{{0, 1}, {0, -1}, {2, 1}, {2, -1}}
	res := &cluster.Result{
		Assignments: []int{0, 0, 1, 1},
		Centroids:   [][]float64{{0, 0}, {2, 0}},
		Counts:      []int{2, 2},
	}
	s, err := Score(points, res, Config{Threshold: 0.85, SmallClusterFraction: 0.05, Policy: PolicyMinMax})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	for i, v := range s.Values {
		if v != 0 {
			t.Errorf("Degenerate run should score all zeros, got score %d = %g", i, v)
		}
	}
	if s.HighAnomalyCount != 0 {
		t.Errorf("Expected no high-anomaly packets, got %d", s.HighAnomalyCount)
	}
}

func TestScore_HighAnomalyCount(t *testing.T) {
	points, res := twoClusterResult()
	s, err := Score(points, res, Config{Threshold: 0.5, SmallClusterFraction: 0.05, Policy: PolicyMinMax})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if s.HighAnomalyCount != 2 {
		t.Errorf("Expected 2 packets above 0.5, got %d", s.HighAnomalyCount)
	}
	if s.Threshold != 0.5 {
		t.Errorf("Threshold should be echoed back, got %g", s.Threshold)
	}
}

func TestScore_SmallClusterBoundary(t *testing.T) {
	// 20 points, fraction 0.05: the cutoff is exactly 1 point. A cluster of
	// size 1 is not small (not strictly below); size 0 would be.
	points := make([][]float64, 20)
	assignments := make([]int, 20)
	for i := range points {
		points[i] = []float64{float64(i), 0}
	}
	assignments[19] = 1
	res := &cluster.Result{
		Assignments: assignments,
		Centroids:   [][]float64{{9, 0}, {19, 0}},
		Counts:      []int{19, 1},
	}

	s, err := Score(points, res, Config{Threshold: 0.85, SmallClusterFraction: 0.05, Policy: PolicyMinMax})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(s.SmallClusters) != 0 {
		t.Errorf("Cluster exactly at the fraction must not be small, got %v", s.SmallClusters)
	}

	// Raising the fraction makes the singleton small.
	s, err = Score(points, res, Config{Threshold: 0.85, SmallClusterFraction: 0.10, Policy: PolicyMinMax})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(s.SmallClusters) != 1 || s.SmallClusters[0] != 1 {
		t.Errorf("Expected cluster 1 flagged as small, got %v", s.SmallClusters)
	}
}

func TestScore_PercentilePolicy(t *testing.T) {
	points, res := twoClusterResult()
	s, err := Score(points, res, Config{Threshold: 0.85, SmallClusterFraction: 0.05, Policy: PolicyPercentile, Percentile: 50})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	for i, v := range s.Values {
		if v < 0 || v > 1 {
			t.Errorf("Score %d = %g, outside [0,1]", i, v)
		}
	}
	// Distances 1,0,1,0: the median is 0.5, so the far points clamp to 1.
	if s.Values[0] != 1 || s.Values[2] != 1 {
		t.Errorf("Distances above the cutoff must clamp to 1, got %v", s.Values)
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	if got := percentile(data, 50); got != 3 {
		t.Errorf("Median = %g, want 3", got)
	}
	if got := percentile(data, 100); got != 5 {
		t.Errorf("100th percentile = %g, want 5", got)
	}
	if got := percentile(data, 25); got != 2 {
		t.Errorf("25th percentile = %g, want 2", got)
	}
}

func TestSilhouette_WellSeparated(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{100, 100}, {100, 101}, {101, 100},
	}
	assignments := []int{0, 0, 0, 1, 1, 1}

	sil, ok := Silhouette(points, assignments, 2)
	if !ok {
		t.Fatalf("Silhouette should be defined for two populated clusters")
	}
	if sil < 0.9 || sil > 1 {
		t.Errorf("Expected silhouette near 1 for well-separated clusters, got %g", sil)
	}
}

func TestSilhouette_Undefined(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}

	if _, ok := Silhouette(points, []int{0, 0, 0}, 1); ok {
		t.Errorf("Silhouette must be undefined for a single cluster")
	}
	if _, ok := Silhouette(points[:2], []int{0, 1}, 2); ok {
		t.Errorf("Silhouette must be undefined for fewer than 3 points")
	}
	if _, ok := Silhouette(points, []int{1, 1, 1}, 2); ok {
		t.Errorf("Silhouette must be undefined when only one cluster is populated")
	}
}

func TestSilhouette_Overlapping(t *testing.T) {
	// Interleaved points from a single distribution: the score should be
	// near zero, far from the well-separated regime.
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0.2, 0}, {0.3, 0}, {0.4, 0}, {0.5, 0},
	}
	assignments := []int{0, 1, 0, 1, 0, 1}

	sil, ok := Silhouette(points, assignments, 2)
	if !ok {
		t.Fatalf("Silhouette should be defined")
	}
	if math.Abs(sil) > 0.5 {
		t.Errorf("Interleaved clusters should score near 0, got %g", sil)
	}
}
