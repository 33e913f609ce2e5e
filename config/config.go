package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Hub HubConfig `yaml:"hub"`
}

// HubConfig is the coordinator configuration.
type HubConfig struct {
	Server      ServerConfig      `yaml:"server"`
	Correlation CorrelationConfig `yaml:"correlation"`
	Escalation  EscalationConfig  `yaml:"escalation"`
	Graph       GraphConfig       `yaml:"graph"`
	Advisories  AdvisoriesConfig  `yaml:"advisories"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig controls the HTTP listener and authentication.
type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Production bool   `yaml:"production"`
}

// CorrelationConfig controls the temporal correlator.
type CorrelationConfig struct {
	EntityThreshold   int `yaml:"entity_threshold"`
	TimeWindowSeconds int `yaml:"time_window_seconds"`
}

// EscalationConfig controls severity tier thresholds.
type EscalationConfig struct {
	CriticalThreshold int `yaml:"critical_threshold"`
	HighThreshold     int `yaml:"high_threshold"`
	MediumThreshold   int `yaml:"medium_threshold"`
}

// GraphConfig controls graph aging.
type GraphConfig struct {
	MaxAgeSeconds        int `yaml:"max_age_seconds"`
	PruneIntervalSeconds int `yaml:"prune_interval_seconds"`
}

// AdvisoriesConfig controls the advisory store and outbound fan-out.
type AdvisoriesConfig struct {
	Max    int          `yaml:"max"`
	Output OutputConfig `yaml:"output"`
}

// OutputConfig selects the advisory sink.
type OutputConfig struct {
	Mode  string            `yaml:"mode"` // file|redis|none
	File  FileOutputConfig  `yaml:"file"`
	Redis RedisOutputConfig `yaml:"redis"`
}

// FileOutputConfig config for the local JSONL audit trail.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// RedisOutputConfig config for the Redis advisory publisher.
type RedisOutputConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the configuration.
// A set environment variable wins over the file; integer variables
// that do not parse are ignored.
func (c *Config) ApplyEnv() {
	envString(&c.Hub.Server.Host, "HUB_HOST")
	envInt(&c.Hub.Server.Port, "HUB_PORT")
	envString(&c.Hub.Server.APIKey, "HUB_API_KEY")
	if v := os.Getenv("HUB_ENV"); strings.EqualFold(v, "production") {
		c.Hub.Server.Production = true
	}

	envInt(&c.Hub.Correlation.EntityThreshold, "ENTITY_THRESHOLD")
	envInt(&c.Hub.Correlation.TimeWindowSeconds, "TIME_WINDOW_SECONDS")

	envInt(&c.Hub.Escalation.CriticalThreshold, "CRITICAL_THRESHOLD")
	envInt(&c.Hub.Escalation.HighThreshold, "HIGH_THRESHOLD")
	envInt(&c.Hub.Escalation.MediumThreshold, "MEDIUM_THRESHOLD")

	envInt(&c.Hub.Graph.MaxAgeSeconds, "MAX_GRAPH_AGE_SECONDS")
	envInt(&c.Hub.Graph.PruneIntervalSeconds, "PRUNE_INTERVAL_SECONDS")

	envInt(&c.Hub.Advisories.Max, "MAX_ADVISORIES")

	envString(&c.Hub.Logging.Level, "LOG_LEVEL")
}

// Validate rejects configurations the hub must not start with.
func (c *Config) Validate() error {
	s := c.Hub.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", s.Port)
	}
	if s.Production && s.APIKey == "" {
		return fmt.Errorf("api key is required in production mode")
	}

	corr := c.Hub.Correlation
	if corr.EntityThreshold < 2 {
		return fmt.Errorf("entity_threshold must be >= 2, got %d", corr.EntityThreshold)
	}
	if corr.TimeWindowSeconds < 1 {
		return fmt.Errorf("time_window_seconds must be >= 1, got %d", corr.TimeWindowSeconds)
	}

	esc := c.Hub.Escalation
	if esc.MediumThreshold < 2 {
		return fmt.Errorf("medium_threshold must be >= 2, got %d", esc.MediumThreshold)
	}
	if !(esc.MediumThreshold <= esc.HighThreshold && esc.HighThreshold <= esc.CriticalThreshold) {
		return fmt.Errorf("escalation thresholds must satisfy medium <= high <= critical, got %d/%d/%d",
			esc.MediumThreshold, esc.HighThreshold, esc.CriticalThreshold)
	}

	g := c.Hub.Graph
	if g.MaxAgeSeconds < 60 {
		return fmt.Errorf("graph max_age_seconds must be >= 60, got %d", g.MaxAgeSeconds)
	}
	if g.PruneIntervalSeconds < 10 {
		return fmt.Errorf("graph prune_interval_seconds must be >= 10, got %d", g.PruneIntervalSeconds)
	}

	if c.Hub.Advisories.Max < 1 {
		return fmt.Errorf("advisories max must be >= 1, got %d", c.Hub.Advisories.Max)
	}

	switch c.Hub.Advisories.Output.Mode {
	case "file", "redis", "none":
	default:
		return fmt.Errorf("unknown advisory output mode: %s", c.Hub.Advisories.Output.Mode)
	}

	return nil
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}
