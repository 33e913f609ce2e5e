package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bridgehub/config"
	"bridgehub/internal/advisory"
	"bridgehub/internal/api"
	"bridgehub/internal/correlator"
	"bridgehub/internal/escalator"
	"bridgehub/internal/graph"
	"bridgehub/internal/hub"
	"bridgehub/internal/logger"
	"bridgehub/internal/metrics"
	"bridgehub/internal/output/advisoryjson"
	"bridgehub/internal/output/advisoryredis"
	"bridgehub/internal/pipeline"
	"bridgehub/internal/pruner"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		if _, err := os.Stat(configArg); err == nil {
			return configArg
		}
		log.Printf("Warning: config file not found at %s, trying default locations", configArg)
	}

	if _, err := os.Stat("bridgehub.yml"); err == nil {
		return "bridgehub.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		path := filepath.Join(filepath.Dir(exePath), "bridgehub.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "bridgehub.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.Hub.Server.Host == "" {
		cfg.Hub.Server.Host = "0.0.0.0"
	}
	if cfg.Hub.Server.Port == 0 {
		cfg.Hub.Server.Port = 8000
	}
	if cfg.Hub.Server.APIKey == "" && !cfg.Hub.Server.Production {
		cfg.Hub.Server.APIKey = "dev-key-change-in-production"
	}

	if cfg.Hub.Correlation.EntityThreshold == 0 {
		cfg.Hub.Correlation.EntityThreshold = 2
	}
	if cfg.Hub.Correlation.TimeWindowSeconds == 0 {
		cfg.Hub.Correlation.TimeWindowSeconds = 300
	}

	if cfg.Hub.Escalation.CriticalThreshold == 0 {
		cfg.Hub.Escalation.CriticalThreshold = 4
	}
	if cfg.Hub.Escalation.HighThreshold == 0 {
		cfg.Hub.Escalation.HighThreshold = 3
	}
	if cfg.Hub.Escalation.MediumThreshold == 0 {
		cfg.Hub.Escalation.MediumThreshold = 2
	}

	if cfg.Hub.Graph.MaxAgeSeconds == 0 {
		cfg.Hub.Graph.MaxAgeSeconds = 3600
	}
	if cfg.Hub.Graph.PruneIntervalSeconds == 0 {
		cfg.Hub.Graph.PruneIntervalSeconds = 300
	}

	if cfg.Hub.Advisories.Max == 0 {
		cfg.Hub.Advisories.Max = 1000
	}
	if cfg.Hub.Advisories.Output.Mode == "" {
		cfg.Hub.Advisories.Output.Mode = "file"
	}
	if cfg.Hub.Advisories.Output.File.Path == "" {
		cfg.Hub.Advisories.Output.File.Path = "output/advisories.jsonl"
	}
	if cfg.Hub.Advisories.Output.Redis.Key == "" {
		cfg.Hub.Advisories.Output.Redis.Key = "hub_advisories"
	}

	if cfg.Hub.Logging.Level == "" {
		cfg.Hub.Logging.Level = "info"
	}
}

func main() {
	configArg := ""
	if len(os.Args) > 1 {
		configArg = os.Args[1]
	}
	configPath := findConfigFile(configArg)

	cfg := &config.Config{}
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Enabled: cfg.Hub.Logging.Enabled,
		Level:   cfg.Hub.Logging.Level,
		File:    cfg.Hub.Logging.File,
		Console: cfg.Hub.Logging.Console,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("BRIDGE Hub starting")
	logger.Infof("Config loaded from: %s", configPath)
	logger.Infof("Entity threshold: %d, time window: %ds",
		cfg.Hub.Correlation.EntityThreshold, cfg.Hub.Correlation.TimeWindowSeconds)
	logger.Infof("Escalation thresholds: MEDIUM=%d HIGH=%d CRITICAL=%d",
		cfg.Hub.Escalation.MediumThreshold, cfg.Hub.Escalation.HighThreshold, cfg.Hub.Escalation.CriticalThreshold)

	m := metrics.New()
	g := graph.New(nil)
	corr := correlator.New(correlator.Config{
		EntityThreshold: cfg.Hub.Correlation.EntityThreshold,
		TimeWindow:      time.Duration(cfg.Hub.Correlation.TimeWindowSeconds) * time.Second,
	})
	esc := escalator.New(escalator.Config{
		CriticalThreshold: cfg.Hub.Escalation.CriticalThreshold,
		HighThreshold:     cfg.Hub.Escalation.HighThreshold,
		MediumThreshold:   cfg.Hub.Escalation.MediumThreshold,
	}, nil)
	store := advisory.NewStore(cfg.Hub.Advisories.Max)

	var writers []pipeline.AdvisoryWriter
	switch cfg.Hub.Advisories.Output.Mode {
	case "file":
		w, err := advisoryjson.NewWriter(cfg.Hub.Advisories.Output.File.Path)
		if err != nil {
			logger.Errorf("Failed to create advisory file writer: %v", err)
			log.Fatalf("Failed to create advisory file writer: %v", err)
		}
		writers = append(writers, w)
		logger.Infof("Advisory output mode: file (%s)", cfg.Hub.Advisories.Output.File.Path)
	case "redis":
		p, err := advisoryredis.NewPublisher(advisoryredis.Config{
			Addr:     cfg.Hub.Advisories.Output.Redis.Addr,
			Password: cfg.Hub.Advisories.Output.Redis.Password,
			DB:       cfg.Hub.Advisories.Output.Redis.DB,
			Key:      cfg.Hub.Advisories.Output.Redis.Key,
			Timeout:  cfg.Hub.Advisories.Output.Redis.Timeout,
		})
		if err != nil {
			logger.Errorf("Failed to create advisory Redis publisher: %v", err)
			log.Fatalf("Failed to create advisory Redis publisher: %v", err)
		}
		writers = append(writers, p)
		logger.Infof("Advisory output mode: redis (%s, key=%s)",
			cfg.Hub.Advisories.Output.Redis.Addr, cfg.Hub.Advisories.Output.Redis.Key)
	case "none":
		logger.Infof("Advisory output disabled")
	}

	maxAge := time.Duration(cfg.Hub.Graph.MaxAgeSeconds) * time.Second
	ingest := pipeline.NewIngest(pipeline.Config{TierMemoryAge: maxAge}, g, corr, esc, store, m, writers, nil)
	state := hub.New(g, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr := pruner.New(g, time.Duration(cfg.Hub.Graph.PruneIntervalSeconds)*time.Second, maxAge,
		func() { ingest.SweepTierMemory() })
	go pr.Run(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Hub.Server.Host, cfg.Hub.Server.Port),
		Handler: api.New(api.Config{APIKey: cfg.Hub.Server.APIKey}, ingest, state, store, m).Handler(),
	}

	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server error: %v", err)
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error shutting down server: %v", err)
	}
	cancel()

	if err := ingest.Close(); err != nil {
		logger.Errorf("Error closing advisory writers: %v", err)
	}

	logger.Infof("BRIDGE Hub stopped")
}
