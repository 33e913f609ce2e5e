package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Hub.Server.Host = "0.0.0.0"
	cfg.Hub.Server.Port = 8000
	cfg.Hub.Server.APIKey = "secret"
	cfg.Hub.Correlation.EntityThreshold = 2
	cfg.Hub.Correlation.TimeWindowSeconds = 300
	cfg.Hub.Escalation.CriticalThreshold = 4
	cfg.Hub.Escalation.HighThreshold = 3
	cfg.Hub.Escalation.MediumThreshold = 2
	cfg.Hub.Graph.MaxAgeSeconds = 3600
	cfg.Hub.Graph.PruneIntervalSeconds = 300
	cfg.Hub.Advisories.Max = 1000
	cfg.Hub.Advisories.Output.Mode = "file"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Hub.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Hub.Server.Port = 70000 }},
		{"production without key", func(c *Config) { c.Hub.Server.Production = true; c.Hub.Server.APIKey = "" }},
		{"entity threshold below two", func(c *Config) { c.Hub.Correlation.EntityThreshold = 1 }},
		{"zero time window", func(c *Config) { c.Hub.Correlation.TimeWindowSeconds = 0 }},
		{"inverted escalation thresholds", func(c *Config) { c.Hub.Escalation.HighThreshold = 5 }},
		{"medium threshold below two", func(c *Config) {
			c.Hub.Escalation.MediumThreshold = 1
		}},
		{"short graph age", func(c *Config) { c.Hub.Graph.MaxAgeSeconds = 30 }},
		{"short prune interval", func(c *Config) { c.Hub.Graph.PruneIntervalSeconds = 5 }},
		{"zero advisories", func(c *Config) { c.Hub.Advisories.Max = 0 }},
		{"unknown output mode", func(c *Config) { c.Hub.Advisories.Output.Mode = "kafka" }},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridgehub.yml")
	raw := `hub:
  server:
    host: 127.0.0.1
    port: 9001
    api_key: file-key
  correlation:
    entity_threshold: 3
    time_window_seconds: 120
  advisories:
    max: 50
    output:
      mode: redis
      redis:
        addr: 127.0.0.1:6379
        key: advisories
`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Hub.Server.Port != 9001 || cfg.Hub.Server.APIKey != "file-key" {
		t.Fatalf("unexpected server config: %+v", cfg.Hub.Server)
	}
	if cfg.Hub.Correlation.EntityThreshold != 3 {
		t.Fatalf("unexpected correlation config: %+v", cfg.Hub.Correlation)
	}
	if cfg.Hub.Advisories.Output.Mode != "redis" || cfg.Hub.Advisories.Output.Redis.Key != "advisories" {
		t.Fatalf("unexpected output config: %+v", cfg.Hub.Advisories.Output)
	}
}

func TestApplyEnvOverridesFileValues(t *testing.T) {
	t.Setenv("ENTITY_THRESHOLD", "5")
	t.Setenv("TIME_WINDOW_SECONDS", "600")
	t.Setenv("HUB_API_KEY", "env-key")
	t.Setenv("HUB_ENV", "production")
	t.Setenv("MAX_ADVISORIES", "not-a-number")

	cfg := validConfig()
	cfg.ApplyEnv()

	if cfg.Hub.Correlation.EntityThreshold != 5 {
		t.Fatalf("expected env override of entity threshold, got %d", cfg.Hub.Correlation.EntityThreshold)
	}
	if cfg.Hub.Correlation.TimeWindowSeconds != 600 {
		t.Fatalf("expected env override of time window, got %d", cfg.Hub.Correlation.TimeWindowSeconds)
	}
	if cfg.Hub.Server.APIKey != "env-key" {
		t.Fatalf("expected env override of api key")
	}
	if !cfg.Hub.Server.Production {
		t.Fatalf("expected production mode from HUB_ENV")
	}
	if cfg.Hub.Advisories.Max != 1000 {
		t.Fatalf("malformed env int must be ignored, got %d", cfg.Hub.Advisories.Max)
	}
}
