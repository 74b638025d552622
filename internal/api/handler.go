// Package api exposes the analysis pipeline over HTTP. A request carries a
// capture summary table in its body and tuning parameters as query values;
// the response is the full JSON report.
package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PacketPrism/internal/config"
	"PacketPrism/internal/model"
	"PacketPrism/internal/pipeline"
	"PacketPrism/internal/report"
)

// Handler serves analysis requests. The configuration acts as the base for
// every request; query parameters override it per call.
type Handler struct {
	cfg     *config.Config
	metrics *Metrics
}

// NewHandler builds a handler around cfg, registering its collectors with reg.
func NewHandler(cfg *config.Config, reg *prometheus.Registry) *Handler {
	return &Handler{cfg: cfg, metrics: NewMetrics(reg)}
}

// Router returns the service's route table.
func (h *Handler) Router(reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/analyze", h.analyzeHandler).Methods("POST")
	r.HandleFunc("/healthz", h.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

// analyzeHandler runs the pipeline over the CSV table in the request body.
func (h *Handler) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	runCfg, err := h.requestConfig(r)
	if err != nil {
		h.metrics.RequestsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, fmt.Sprintf("invalid parameters: %v", err), http.StatusBadRequest)
		return
	}

	pipe, err := pipeline.New(runCfg)
	if err != nil {
		h.metrics.RequestsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, fmt.Sprintf("invalid parameters: %v", err), http.StatusBadRequest)
		return
	}

	result, err := pipe.Analyze(r.Body)
	if err != nil {
		status := http.StatusInternalServerError
		label := "error"
		if errors.Is(err, model.ErrInput) || errors.Is(err, model.ErrInsufficientData) {
			status = http.StatusBadRequest
			label = "bad_request"
		}
		h.metrics.RequestsTotal.WithLabelValues(label).Inc()
		http.Error(w, fmt.Sprintf("analysis failed: %v", err), status)
		return
	}

	h.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	h.metrics.PacketsAnalyzed.Add(float64(len(result.Records)))
	h.metrics.AnomaliesFound.Add(float64(result.HighAnomalyCount))
	h.metrics.RequestsTotal.WithLabelValues("ok").Inc()

	rep := report.Build(result, report.Options{TopN: runCfg.TopProtocols})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := rep.WriteJSON(w); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (h *Handler) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// requestConfig copies the base analysis settings and applies the request's
// query overrides.
func (h *Handler) requestConfig(r *http.Request) (config.AnalysisConfig, error) {
	cfg := h.cfg.Analysis
	q := r.URL.Query()

	if v := q.Get("clusters"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("clusters: %v", err)
		}
		cfg.Clusters = n
	}
	if v := q.Get("min_packets"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("min_packets: %v", err)
		}
		cfg.MinPackets = n
	}
	if v := q.Get("anomaly_threshold"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("anomaly_threshold: %v", err)
		}
		cfg.AnomalyThreshold = f
	}
	if v := q.Get("small_cluster_fraction"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("small_cluster_fraction: %v", err)
		}
		cfg.SmallClusterFraction = f
	}
	if v := q.Get("normalization"); v != "" {
		cfg.Normalization = v
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("seed: %v", err)
		}
		cfg.Seed = &n
	}
	return cfg, nil
}
