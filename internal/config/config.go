// YAML config loader with CUE validation and .env overrides
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Archive configures the optional telemetry archive sinks.
type Archive struct {
	File             string `yaml:"file"`
	Stdout           bool   `yaml:"stdout"`
	GreptimeEndpoint string `yaml:"greptime_endpoint"`
	GreptimeDatabase string `yaml:"greptime_database"`
}

// ConsoleConfig is the root configuration for the operator console.
type ConsoleConfig struct {
	ServerURL    string  `yaml:"server_url"`
	WSURL        string  `yaml:"ws_url"`
	TrailMinutes int     `yaml:"trail_minutes"`
	Archive      Archive `yaml:"archive"`
}

// Load loads YAML config, validates it against a CUE schema, and
// applies environment overrides. A .env file next to the process is
// honored if present.
func Load(configPath, cueSchemaPath string) (*ConsoleConfig, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg ConsoleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server_url is required (config or ARGUS_SERVER_URL)")
	}
	return &cfg, nil
}

func applyEnv(cfg *ConsoleConfig) {
	if v := os.Getenv("ARGUS_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("ARGUS_WS_URL"); v != "" {
		cfg.WSURL = v
	}
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		cfg.Archive.GreptimeEndpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		cfg.Archive.GreptimeDatabase = v
	}
}

func applyDefaults(cfg *ConsoleConfig) {
	if cfg.TrailMinutes <= 0 {
		cfg.TrailMinutes = 10
	}
	if cfg.Archive.GreptimeDatabase == "" {
		cfg.Archive.GreptimeDatabase = "public"
	}
}
