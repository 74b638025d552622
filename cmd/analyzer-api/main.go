package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"PacketPrism/internal/api"
	"PacketPrism/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	listenAddr := flag.String("listen", "", "listen address, overrides the configuration")
	flag.Parse()

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.API.ListenAddr = *listenAddr
	}
	if err := cfg.Analysis.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize router
	registry := prometheus.NewRegistry()
	handler := api.NewHandler(cfg, registry)

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: handler.Router(registry),
	}

	go func() {
		log.Printf("Analysis API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
