package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the report in a human-readable form, in the spirit of
// the console summary an analyst reads after a run.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== Packet Cluster Analysis ===\n")
	fmt.Fprintf(&sb, "Run:             %s (%s)\n", r.RunID, r.AnalysisTimestamp)
	fmt.Fprintf(&sb, "Total packets:   %d\n", r.Summary.TotalPackets)
	fmt.Fprintf(&sb, "Clusters:        %d\n", r.Summary.NumClusters)
	if r.Summary.SkippedRows > 0 {
		fmt.Fprintf(&sb, "Skipped rows:    %d\n", r.Summary.SkippedRows)
	}
	if r.Summary.SilhouetteScore != nil {
		fmt.Fprintf(&sb, "Silhouette:      %.3f\n", *r.Summary.SilhouetteScore)
	}

	fmt.Fprintf(&sb, "\nCluster distribution:\n")
	for _, c := range r.Clusters {
		fmt.Fprintf(&sb, "  Cluster %d: %d packets (%.1f%%), avg length %.1f bytes, avg score %.3f\n",
			c.ID, c.Size, c.Percentage, c.AvgPacketLength, c.AvgAnomalyScore)
		if len(c.TopProtocols) > 0 {
			parts := make([]string, len(c.TopProtocols))
			for i, p := range c.TopProtocols {
				parts[i] = fmt.Sprintf("%s (%d)", p.Label, p.Count)
			}
			fmt.Fprintf(&sb, "    top protocols: %s\n", strings.Join(parts, ", "))
		}
	}

	fmt.Fprintf(&sb, "\nAnomalies:\n")
	fmt.Fprintf(&sb, "  High-anomaly packets: %d (score > %.2f)\n",
		r.Summary.AnomalyStatistics.HighAnomalyCount,
		r.Summary.AnomalyStatistics.HighAnomalyThreshold)
	if len(r.Summary.SmallClusters) > 0 {
		fmt.Fprintf(&sb, "  Small clusters: %s\n", strings.Join(r.Summary.SmallClusters, ", "))
	} else {
		fmt.Fprintf(&sb, "  Small clusters: none\n")
	}

	top := topAnomalies(r.PacketResults, 5)
	if len(top) > 0 {
		fmt.Fprintf(&sb, "\nTop anomalous packets:\n")
		for _, p := range top {
			fmt.Fprintf(&sb, "  packet %d (cluster %d): score %.3f\n",
				p.PacketNumber, p.ClusterID, p.AnomalyScore)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// topAnomalies returns the n highest-scoring packets, descending, ties
// broken by packet number.
func topAnomalies(results []PacketResult, n int) []PacketResult {
	var flagged []PacketResult
	for _, p := range results {
		if p.IsAnomaly {
			flagged = append(flagged, p)
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].AnomalyScore != flagged[j].AnomalyScore {
			return flagged[i].AnomalyScore > flagged[j].AnomalyScore
		}
		return flagged[i].PacketNumber < flagged[j].PacketNumber
	})
	if len(flagged) > n {
		flagged = flagged[:n]
	}
	return flagged
}
