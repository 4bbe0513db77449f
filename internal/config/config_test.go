package config

import (
	"os"
	"testing"
)

func TestLoadConfig_Valid(t *testing.T) {
	tmpFile := "test-console.yaml"
	defer os.Remove(tmpFile)
	yaml := `
server_url: "http://localhost:8000"
ws_url: "ws://localhost:8000/ws"
trail_minutes: 15
archive:
  stdout: true
  greptime_database: "fleet"
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile, "../../schemas/console.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("unexpected server_url: %q", cfg.ServerURL)
	}
	if cfg.TrailMinutes != 15 {
		t.Errorf("unexpected trail_minutes: %d", cfg.TrailMinutes)
	}
	if !cfg.Archive.Stdout || cfg.Archive.GreptimeDatabase != "fleet" {
		t.Errorf("unexpected archive config: %+v", cfg.Archive)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpFile := "test-console-defaults.yaml"
	defer os.Remove(tmpFile)
	yaml := `
server_url: "http://localhost:8000"
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(tmpFile, "../../schemas/console.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.TrailMinutes != 10 {
		t.Errorf("expected default trail_minutes 10, got %d", cfg.TrailMinutes)
	}
	if cfg.Archive.GreptimeDatabase != "public" {
		t.Errorf("expected default greptime_database public, got %q", cfg.Archive.GreptimeDatabase)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tmpFile := "test-console-env.yaml"
	defer os.Remove(tmpFile)
	yaml := `
server_url: "http://localhost:8000"
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	t.Setenv("ARGUS_SERVER_URL", "http://ops.example:9000")
	t.Setenv("GREPTIMEDB_ENDPOINT", "greptime.example:4001")

	cfg, err := Load(tmpFile, "../../schemas/console.cue")
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != "http://ops.example:9000" {
		t.Errorf("env override not applied: %q", cfg.ServerURL)
	}
	if cfg.Archive.GreptimeEndpoint != "greptime.example:4001" {
		t.Errorf("env override not applied: %q", cfg.Archive.GreptimeEndpoint)
	}
}

func TestLoadConfig_MissingServerURL(t *testing.T) {
	tmpFile := "test-console-missing.yaml"
	defer os.Remove(tmpFile)
	yaml := `
trail_minutes: 5
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	if _, err := Load(tmpFile, "../../schemas/console.cue"); err == nil {
		t.Fatal("expected error for missing server_url")
	}
}

func TestLoadConfig_SchemaViolation(t *testing.T) {
	tmpFile := "test-console-invalid.yaml"
	defer os.Remove(tmpFile)
	yaml := `
server_url: "http://localhost:8000"
trail_minutes: 0
`
	if err := os.WriteFile(tmpFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	if _, err := Load(tmpFile, "../../schemas/console.cue"); err == nil {
		t.Fatal("expected validation error for trail_minutes out of range")
	}
}
