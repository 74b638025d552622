package model

// PacketRecord holds the metadata parsed from one row of a packet summary
// table. Records are immutable once created and owned by the pipeline run
// that produced them.
type PacketRecord struct {
	// Number is the capture sequence number ("No." column). When the input
	// omits it, the ingestor assigns the 1-based row ordinal.
	Number int

	// Time is the packet timestamp in seconds, either relative to the start
	// of the capture or since the epoch, as exported by the capture tool.
	Time float64

	Source      string
	Destination string
	Protocol    string
	Length      int
	Info        string

	// SrcPort and DstPort are zero when the input layout does not carry
	// port columns.
	SrcPort uint16
	DstPort uint16
}

// NumFeatures is the fixed dimensionality of every feature vector.
const NumFeatures = 15

// Feature vector dimension indices. The order is part of the data contract:
// vectors are compared component-wise across the whole run.
const (
	FeatLength = iota
	FeatProtocol
	FeatSrcLocal
	FeatDstLocal
	FeatTimeDelta
	FeatSrcPort
	FeatDstPort
	FeatSYN
	FeatFIN
	FeatRST
	FeatError
	FeatRetransmission
	FeatDNSQuery
	FeatMalformed
	FeatSizeBucket
)

// FeatureNames maps dimension indices to stable names, used in reports and
// diagnostics.
var FeatureNames = [NumFeatures]string{
	"length",
	"protocol_num",
	"src_local",
	"dst_local",
	"time_delta",
	"src_port",
	"dst_port",
	"is_syn",
	"is_fin",
	"is_rst",
	"has_error",
	"is_retransmission",
	"is_dns",
	"is_malformed",
	"size_bucket",
}

// Cluster is one cluster of the final partition.
type Cluster struct {
	ID       int
	Centroid []float64 // in scaled feature space
	Members  []int     // record indices, ascending
}

// AnalysisResult is the complete outcome of one pipeline run. It is built
// once, after the scorer finishes, and is read-only thereafter.
type AnalysisResult struct {
	Records []PacketRecord

	// Assignments[i] is the cluster id of Records[i].
	Assignments []int
	// AnomalyScores[i] is the normalized anomaly score of Records[i], in [0,1].
	AnomalyScores []float64

	Centroids     [][]float64
	ClusterCounts []int
	Inertia       float64

	NumClusters          int
	HighAnomalyCount     int
	AnomalyThreshold     float64
	SmallClusters        []int
	SmallClusterFraction float64

	// Silhouette is nil when the quality metric could not be computed.
	Silhouette *float64

	SkippedRows int
}

// Clusters materializes the partition as per-cluster views. Member indices
// are ascending because assignments are walked in record order.
func (r *AnalysisResult) Clusters() []Cluster {
	clusters := make([]Cluster, r.NumClusters)
	for id := range clusters {
		clusters[id] = Cluster{
			ID:       id,
			Centroid: r.Centroids[id],
			Members:  make([]int, 0, r.ClusterCounts[id]),
		}
	}
	for i, id := range r.Assignments {
		clusters[id].Members = append(clusters[id].Members, i)
	}
	return clusters
}
