// Package pipeline wires the analysis stages together: ingest → feature
// extraction → scaling → clustering → scoring. Each run owns its working
// data, so independent runs are safe to execute in parallel.
package pipeline

import (
	"io"
	"math/rand"
	"time"

	"PacketPrism/internal/anomaly"
	"PacketPrism/internal/cluster"
	"PacketPrism/internal/config"
	"PacketPrism/internal/feature"
	"PacketPrism/internal/ingest"
	"PacketPrism/internal/model"
)

// Pipeline runs the whole analysis for one configuration. Construction
// validates every parameter, so a misconfigured run fails before any data
// is read.
type Pipeline struct {
	cfg config.AnalysisConfig
}

// New validates cfg and returns a ready pipeline.
func New(cfg config.AnalysisConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg}, nil
}

// AnalyzeFile ingests the summary table at path and analyzes it.
func (p *Pipeline) AnalyzeFile(path string) (*model.AnalysisResult, error) {
	records, stats, err := ingest.ReadFile(path, ingest.Options{MinPackets: p.cfg.MinPackets})
	if err != nil {
		return nil, err
	}
	return p.analyze(records, stats)
}

// Analyze ingests the summary table from r and analyzes it.
func (p *Pipeline) Analyze(r io.Reader) (*model.AnalysisResult, error) {
	records, stats, err := ingest.Read(r, ingest.Options{MinPackets: p.cfg.MinPackets})
	if err != nil {
		return nil, err
	}
	return p.analyze(records, stats)
}

func (p *Pipeline) analyze(records []model.PacketRecord, stats ingest.Stats) (*model.AnalysisResult, error) {
	matrix := feature.Extract(records)
	scaled := feature.Standardize(matrix)

	clusterRes, err := cluster.Run(scaled, cluster.Config{
		K:             p.cfg.Clusters,
		Restarts:      p.cfg.Restarts,
		MaxIterations: p.cfg.MaxIterations,
		Tolerance:     p.cfg.Tolerance,
	}, p.newRand())
	if err != nil {
		return nil, err
	}

	scores, err := anomaly.Score(scaled, clusterRes, anomaly.Config{
		Threshold:            p.cfg.AnomalyThreshold,
		SmallClusterFraction: p.cfg.SmallClusterFraction,
		Policy:               anomaly.Policy(p.cfg.Normalization),
		Percentile:           p.cfg.NormalizationPercentile,
	})
	if err != nil {
		return nil, err
	}

	res := &model.AnalysisResult{
		Records:              records,
		Assignments:          clusterRes.Assignments,
		AnomalyScores:        scores.Values,
		Centroids:            clusterRes.Centroids,
		ClusterCounts:        clusterRes.Counts,
		Inertia:              clusterRes.Inertia,
		NumClusters:          p.cfg.Clusters,
		HighAnomalyCount:     scores.HighAnomalyCount,
		AnomalyThreshold:     scores.Threshold,
		SmallClusters:        scores.SmallClusters,
		SmallClusterFraction: p.cfg.SmallClusterFraction,
		SkippedRows:          stats.SkippedRows,
	}

	// The quality metric is best-effort; an undefined silhouette just
	// leaves the field unset.
	if sil, ok := anomaly.Silhouette(scaled, clusterRes.Assignments, p.cfg.Clusters); ok {
		res.Silhouette = &sil
	}

	return res, nil
}

// newRand builds the run's random source: seeded from config when given,
// otherwise from the clock.
func (p *Pipeline) newRand() *rand.Rand {
	seed := time.Now().UnixNano()
	if p.cfg.Seed != nil {
		seed = *p.cfg.Seed
	}
	return rand.New(rand.NewSource(seed))
}
