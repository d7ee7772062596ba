package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the CLI and the service.
// Zero values mean "unspecified" and are replaced by Defaults or flags.
type Config struct {
	Addr             string   `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir        string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel     string   `json:"default_model" yaml:"default_model" toml:"default_model"`
	MaxConcurrent    int      `json:"max_concurrent" yaml:"max_concurrent" toml:"max_concurrent"`
	MaxQueueDepth    int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitMS        int      `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms"`
	Tolerance        float64  `json:"tolerance" yaml:"tolerance" toml:"tolerance"`
	Threads          int      `json:"threads" yaml:"threads" toml:"threads"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	MaxBodyBytes     int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeoutMS int      `json:"predict_timeout_ms" yaml:"predict_timeout_ms" toml:"predict_timeout_ms"`
	CORSEnabled      bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins      []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Defaults used when neither the file nor a flag sets a value.
const (
	DefaultAddr          = ":8080"
	DefaultModelsDir     = "~/models/topohmm"
	DefaultMaxConcurrent = 4
	DefaultMaxQueueDepth = 32
	DefaultMaxWaitMS     = 30000
	DefaultMaxBodyBytes  = 8 << 20
	DefaultLogLevel      = "info"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WithDefaults returns a copy with unset fields filled in. Env overrides
// (TOPOHMM_ADDR, TOPOHMM_LOG_LEVEL) apply only to fields the file left empty.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = envOr("TOPOHMM_ADDR", DefaultAddr)
	}
	if c.LogLevel == "" {
		c.LogLevel = envOr("TOPOHMM_LOG_LEVEL", DefaultLogLevel)
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.MaxQueueDepth == 0 {
		c.MaxQueueDepth = DefaultMaxQueueDepth
	}
	if c.MaxWaitMS == 0 {
		c.MaxWaitMS = DefaultMaxWaitMS
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch {
	case c.MaxConcurrent < 0:
		return fmt.Errorf("max_concurrent must be >= 0, got %d", c.MaxConcurrent)
	case c.MaxQueueDepth < 0:
		return fmt.Errorf("max_queue_depth must be >= 0, got %d", c.MaxQueueDepth)
	case c.MaxWaitMS < 0:
		return fmt.Errorf("max_wait_ms must be >= 0, got %d", c.MaxWaitMS)
	case c.Tolerance < 0 || c.Tolerance >= 1:
		return fmt.Errorf("tolerance must be in [0, 1), got %g", c.Tolerance)
	case c.Threads < 0:
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	case c.MaxBodyBytes < 0:
		return fmt.Errorf("max_body_bytes must be >= 0, got %d", c.MaxBodyBytes)
	case c.PredictTimeoutMS < 0:
		return fmt.Errorf("predict_timeout_ms must be >= 0, got %d", c.PredictTimeoutMS)
	}
	return nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
