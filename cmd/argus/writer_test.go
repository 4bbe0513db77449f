package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stygmatic/Argus/internal/archive"
	"github.com/stygmatic/Argus/internal/config"
)

func TestNewArchiveWriterNone(t *testing.T) {
	w, cleanup, err := newArchiveWriter(config.Archive{}, slog.Default())
	if err != nil {
		t.Fatalf("newArchiveWriter returned error: %v", err)
	}
	defer cleanup()
	if w != nil {
		t.Fatalf("expected nil writer without sinks, got %T", w)
	}
}

func TestNewArchiveWriterStdout(t *testing.T) {
	w, cleanup, err := newArchiveWriter(config.Archive{Stdout: true}, slog.Default())
	if err != nil {
		t.Fatalf("newArchiveWriter returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(archive.StdoutWriter); !ok {
		t.Fatalf("expected archive.StdoutWriter, got %T", w)
	}
}

func TestNewArchiveWriterMulti(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Archive{
		Stdout: true,
		File:   filepath.Join(dir, "telemetry.jsonl"),
	}
	w, cleanup, err := newArchiveWriter(cfg, slog.Default())
	if err != nil {
		t.Fatalf("newArchiveWriter returned error: %v", err)
	}
	defer cleanup()
	if _, ok := w.(*archive.MultiWriter); !ok {
		t.Fatalf("expected *archive.MultiWriter, got %T", w)
	}
}
