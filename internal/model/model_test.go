package model

import "testing"

func TestAnalysisResultClusters(t *testing.T) {
	res := &AnalysisResult{
		Records:       make([]PacketRecord, 5),
		Assignments:   []int{0, 1, 0, 1, 0},
		Centroids:     [][]float64{{1, 2}, {3, 4}},
		ClusterCounts: []int{3, 2},
		NumClusters:   2,
	}

	clusters := res.Clusters()
	if len(clusters) != 2 {
		t.Fatalf("Expected 2 clusters, got %d", len(clusters))
	}

	c0 := clusters[0]
	if c0.ID != 0 || len(c0.Members) != 3 {
		t.Fatalf("Cluster 0 wrong: %+v", c0)
	}
	for i, want := range []int{0, 2, 4} {
		if c0.Members[i] != want {
			t.Errorf("Cluster 0 member %d = %d, want %d (ascending order)", i, c0.Members[i], want)
		}
	}
	if clusters[1].Centroid[0] != 3 {
		t.Errorf("Cluster 1 centroid not carried through: %v", clusters[1].Centroid)
	}
}
