package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"PacketPrism/internal/model"
)

// Bounds for the requested cluster count.
const (
	MinClusters = 2
	MaxClusters = 20
)

// AnalysisConfig holds the tunable parameters of one analysis run.
type AnalysisConfig struct {
	Clusters             int     `yaml:"clusters"`
	MinPackets           int     `yaml:"min_packets"`
	AnomalyThreshold     float64 `yaml:"anomaly_threshold"`
	SmallClusterFraction float64 `yaml:"small_cluster_fraction"`

	// Normalization selects how raw centroid distances become anomaly
	// scores: "minmax" or "percentile".
	Normalization           string  `yaml:"normalization"`
	NormalizationPercentile float64 `yaml:"normalization_percentile"`

	Restarts      int     `yaml:"restarts"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`

	TopProtocols int `yaml:"top_protocols"`

	// Seed fixes the random source for reproducible cluster assignments.
	// Nil means a fresh seed per run.
	Seed *int64 `yaml:"seed,omitempty"`
}

// OutputConfig controls where and how the report is rendered.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" or "json"
	Path   string `yaml:"path"`   // empty means stdout
}

// APIConfig holds the settings for the HTTP analysis service.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
	API      APIConfig      `yaml:"api"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Clusters:                5,
			MinPackets:              50,
			AnomalyThreshold:        0.85,
			SmallClusterFraction:    0.05,
			Normalization:           "minmax",
			NormalizationPercentile: 95,
			Restarts:                10,
			MaxIterations:           300,
			Tolerance:               1e-4,
			TopProtocols:            3,
		},
		Output: OutputConfig{
			Format: "text",
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
	}
}

// LoadConfig reads the configuration from a YAML file, layered over the
// defaults, and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}

// Validate checks every analysis parameter before any data is processed.
func (c *AnalysisConfig) Validate() error {
	if c.Clusters < MinClusters || c.Clusters > MaxClusters {
		return fmt.Errorf("%w: clusters must be in [%d,%d], got %d",
			model.ErrConfiguration, MinClusters, MaxClusters, c.Clusters)
	}
	if c.MinPackets < 1 {
		return fmt.Errorf("%w: min_packets must be positive, got %d",
			model.ErrConfiguration, c.MinPackets)
	}
	if c.AnomalyThreshold <= 0 || c.AnomalyThreshold >= 1 {
		return fmt.Errorf("%w: anomaly_threshold must be in (0,1), got %g",
			model.ErrConfiguration, c.AnomalyThreshold)
	}
	if c.SmallClusterFraction <= 0 || c.SmallClusterFraction >= 1 {
		return fmt.Errorf("%w: small_cluster_fraction must be in (0,1), got %g",
			model.ErrConfiguration, c.SmallClusterFraction)
	}
	switch c.Normalization {
	case "minmax", "percentile":
	default:
		return fmt.Errorf("%w: normalization must be \"minmax\" or \"percentile\", got %q",
			model.ErrConfiguration, c.Normalization)
	}
	if c.NormalizationPercentile <= 0 || c.NormalizationPercentile > 100 {
		return fmt.Errorf("%w: normalization_percentile must be in (0,100], got %g",
			model.ErrConfiguration, c.NormalizationPercentile)
	}
	if c.Restarts < 1 {
		return fmt.Errorf("%w: restarts must be positive, got %d",
			model.ErrConfiguration, c.Restarts)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d",
			model.ErrConfiguration, c.MaxIterations)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must not be negative, got %g",
			model.ErrConfiguration, c.Tolerance)
	}
	if c.TopProtocols < 0 {
		return fmt.Errorf("%w: top_protocols must not be negative, got %d",
			model.ErrConfiguration, c.TopProtocols)
	}
	return nil
}

// Validate checks the output settings.
func (c *OutputConfig) Validate() error {
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("%w: format must be \"text\" or \"json\", got %q",
			model.ErrConfiguration, c.Format)
	}
}
