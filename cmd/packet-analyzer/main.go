package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"PacketPrism/internal/config"
	"PacketPrism/internal/model"
	"PacketPrism/internal/pipeline"
	"PacketPrism/internal/report"
)

const (
	exitRunner = 1
	exitConfig = 2
	exitOutput = 3
)

func main() {
	fs := flag.NewFlagSet("packet-analyzer", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: packet-analyzer [flags] <capture-summary.csv>\n\n")
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "path to a YAML configuration file")
	clusters := fs.Int("clusters", 0, "number of clusters (2-20)")
	minPackets := fs.Int("min-packets", 0, "minimum packets required for analysis")
	threshold := fs.Float64("anomaly-threshold", 0, "normalized score above which a packet is flagged")
	smallFraction := fs.Float64("small-cluster-fraction", 0, "cluster size fraction below which a cluster is suspicious")
	normalization := fs.String("normalization", "", "score normalization policy (minmax or percentile)")
	topProtocols := fs.Int("top-protocols", 0, "number of top labels to report per cluster")
	seed := fs.Int64("seed", 0, "random seed for reproducible runs")
	seedSet := false
	format := fs.String("format", "", "report format (json or text)")
	output := fs.String("output", "", "report destination path (default stdout)")
	fs.Parse(os.Args[1:])

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(exitConfig)
	}
	inputPath := fs.Arg(0)

	// 1. Load configuration, flags overriding file values
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Printf("Failed to load config: %v", err)
			os.Exit(exitConfig)
		}
		cfg = loaded
	}
	applyFlags(cfg, flagOverrides{
		clusters:      *clusters,
		minPackets:    *minPackets,
		threshold:     *threshold,
		smallFraction: *smallFraction,
		normalization: *normalization,
		topProtocols:  *topProtocols,
		format:        *format,
		output:        *output,
	})
	if seedSet {
		cfg.Analysis.Seed = seed
	}
	if err := cfg.Output.Validate(); err != nil {
		log.Printf("Invalid output configuration: %v", err)
		os.Exit(exitConfig)
	}

	// 2. Build the pipeline; parameter errors surface before any data is read
	pipe, err := pipeline.New(cfg.Analysis)
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(exitConfig)
	}

	// 3. Run the analysis
	log.Printf("Analyzing '%s'...", inputPath)
	result, err := pipe.AnalyzeFile(inputPath)
	if err != nil {
		log.Printf("Analysis failed: %v", err)
		if errors.Is(err, model.ErrConfiguration) {
			os.Exit(exitConfig)
		}
		os.Exit(exitRunner)
	}
	log.Printf("Analysis complete: %d packets, %d clusters, %d high-anomaly packets.",
		len(result.Records), result.NumClusters, result.HighAnomalyCount)

	// 4. Render the report
	rep := report.Build(result, report.Options{TopN: cfg.Analysis.TopProtocols})
	if err := writeReport(rep, cfg.Output); err != nil {
		log.Printf("Failed to write report: %v", err)
		os.Exit(exitOutput)
	}
}

type flagOverrides struct {
	clusters      int
	minPackets    int
	threshold     float64
	smallFraction float64
	normalization string
	topProtocols  int
	format        string
	output        string
}

func applyFlags(cfg *config.Config, o flagOverrides) {
	if o.clusters != 0 {
		cfg.Analysis.Clusters = o.clusters
	}
	if o.minPackets != 0 {
		cfg.Analysis.MinPackets = o.minPackets
	}
	if o.threshold != 0 {
		cfg.Analysis.AnomalyThreshold = o.threshold
	}
	if o.smallFraction != 0 {
		cfg.Analysis.SmallClusterFraction = o.smallFraction
	}
	if o.normalization != "" {
		cfg.Analysis.Normalization = o.normalization
	}
	if o.topProtocols != 0 {
		cfg.Analysis.TopProtocols = o.topProtocols
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.output != "" {
		cfg.Output.Path = o.output
	}
}

// writeReport renders to the configured destination. When a file destination
// cannot be opened the report still goes to stdout so the run is not lost,
// and the failure is reported afterwards.
func writeReport(rep *report.Report, out config.OutputConfig) error {
	render := func(w io.Writer) error {
		if out.Format == "text" {
			return rep.WriteText(w)
		}
		return rep.WriteJSON(w)
	}

	if out.Path == "" {
		return render(os.Stdout)
	}

	f, err := os.Create(out.Path)
	if err != nil {
		if renderErr := render(os.Stdout); renderErr != nil {
			return fmt.Errorf("%w: %v", model.ErrOutput, renderErr)
		}
		return fmt.Errorf("%w: open %s: %v", model.ErrOutput, out.Path, err)
	}
	defer f.Close()
	if err := render(f); err != nil {
		return fmt.Errorf("%w: %v", model.ErrOutput, err)
	}
	log.Printf("Report written to '%s'.", out.Path)
	return nil
}
