// Package report aggregates a finished analysis into a summary structure
// and renders it as text or JSON. It performs no computation of its own
// beyond counting and formatting.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"PacketPrism/internal/model"
)

// LabelCount is one entry of a top-N ranking (protocol label, address, ...).
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClusterDetail summarizes one cluster of the partition.
type ClusterDetail struct {
	ID              int          `json:"id"`
	Size            int          `json:"size"`
	Percentage      float64      `json:"percentage"`
	AvgPacketLength float64      `json:"avg_packet_length"`
	AvgAnomalyScore float64      `json:"avg_anomaly_score"`
	TopProtocols    []LabelCount `json:"top_protocols,omitempty"`
	TopSources      []LabelCount `json:"top_sources,omitempty"`
	TopDestinations []LabelCount `json:"top_destinations,omitempty"`
}

// AnomalyStatistics carries the run-level anomaly counters.
type AnomalyStatistics struct {
	HighAnomalyCount     int     `json:"high_anomaly_count"`
	HighAnomalyThreshold float64 `json:"high_anomaly_threshold"`
}

// Summary is the run-level summary object of the report.
type Summary struct {
	TotalPackets      int               `json:"total_packets"`
	NumClusters       int               `json:"num_clusters"`
	ClusterSizes      map[string]int    `json:"cluster_sizes"`
	AnomalyStatistics AnomalyStatistics `json:"anomaly_statistics"`
	SmallClusters     []string          `json:"small_clusters"`
	SkippedRows       int               `json:"skipped_rows"`
	SilhouetteScore   *float64          `json:"silhouette_score,omitempty"`
}

// PacketResult is the per-packet outcome.
type PacketResult struct {
	PacketNumber int     `json:"packet_number"`
	ClusterID    int     `json:"cluster_id"`
	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    bool    `json:"is_anomaly"`
}

// Report is the complete result of one analysis run, read-only once built.
type Report struct {
	RunID             string          `json:"run_id"`
	AnalysisTimestamp string          `json:"analysis_timestamp"`
	Summary           Summary         `json:"summary"`
	Clusters          []ClusterDetail `json:"clusters"`
	PacketResults     []PacketResult  `json:"packet_results"`
}

// Options controls optional report content.
type Options struct {
	// TopN limits the per-cluster protocol/address rankings; zero disables them.
	TopN int
}

// Build assembles the report from a finished analysis result.
func Build(res *model.AnalysisResult, opts Options) *Report {
	r := &Report{
		RunID:             uuid.NewString(),
		AnalysisTimestamp: time.Now().UTC().Format(time.RFC3339),
		Summary: Summary{
			TotalPackets: len(res.Records),
			NumClusters:  res.NumClusters,
			ClusterSizes: make(map[string]int, res.NumClusters),
			AnomalyStatistics: AnomalyStatistics{
				HighAnomalyCount:     res.HighAnomalyCount,
				HighAnomalyThreshold: res.AnomalyThreshold,
			},
			SmallClusters:   []string{},
			SkippedRows:     res.SkippedRows,
			SilhouetteScore: res.Silhouette,
		},
	}

	for id, count := range res.ClusterCounts {
		r.Summary.ClusterSizes[clusterKey(id)] = count
	}
	for _, id := range res.SmallClusters {
		r.Summary.SmallClusters = append(r.Summary.SmallClusters, clusterKey(id))
	}

	r.Clusters = buildClusterDetails(res, opts.TopN)

	r.PacketResults = make([]PacketResult, len(res.Records))
	for i, rec := range res.Records {
		score := res.AnomalyScores[i]
		r.PacketResults[i] = PacketResult{
			PacketNumber: rec.Number,
			ClusterID:    res.Assignments[i],
			AnomalyScore: score,
			IsAnomaly:    score > res.AnomalyThreshold,
		}
	}

	return r
}

func buildClusterDetails(res *model.AnalysisResult, topN int) []ClusterDetail {
	total := len(res.Records)
	clusters := res.Clusters()
	details := make([]ClusterDetail, len(clusters))

	for _, c := range clusters {
		length := 0
		score := 0.0
		protocols := make(map[string]int)
		sources := make(map[string]int)
		dests := make(map[string]int)
		for _, i := range c.Members {
			rec := res.Records[i]
			length += rec.Length
			score += res.AnomalyScores[i]
			protocols[rec.Protocol]++
			sources[rec.Source]++
			dests[rec.Destination]++
		}

		d := ClusterDetail{ID: c.ID, Size: len(c.Members)}
		if total > 0 {
			d.Percentage = float64(d.Size) / float64(total) * 100
		}
		if d.Size > 0 {
			d.AvgPacketLength = float64(length) / float64(d.Size)
			d.AvgAnomalyScore = score / float64(d.Size)
		}
		if topN > 0 {
			d.TopProtocols = topLabels(protocols, topN)
			d.TopSources = topLabels(sources, topN)
			d.TopDestinations = topLabels(dests, topN)
		}
		details[c.ID] = d
	}
	return details
}

// topLabels ranks label counts descending, ties broken by label for
// deterministic output.
func topLabels(counts map[string]int, n int) []LabelCount {
	ranked := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		ranked = append(ranked, LabelCount{Label: label, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Label < ranked[j].Label
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func clusterKey(id int) string {
	return fmt.Sprintf("cluster_%d", id)
}
