package main

import (
	"log/slog"

	"github.com/stygmatic/Argus/internal/archive"
	"github.com/stygmatic/Argus/internal/config"
)

// newArchiveWriter composes the configured telemetry sinks. It returns
// nil when no sink is configured; cleanup closes any opened resources.
func newArchiveWriter(cfg config.Archive, log *slog.Logger) (archive.Writer, func(), error) {
	var writers []archive.Writer
	cleanup := func() {}

	if cfg.Stdout {
		writers = append(writers, archive.StdoutWriter{})
	}
	if cfg.File != "" {
		fw, err := archive.NewFileWriter(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
	}
	if cfg.GreptimeEndpoint != "" {
		gw, err := archive.NewGreptimeWriter(cfg.GreptimeEndpoint, cfg.GreptimeDatabase, log)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}

	switch len(writers) {
	case 0:
		return nil, cleanup, nil
	case 1:
		w := writers[0]
		return w, closerFor(w), nil
	}
	mw := archive.NewMultiWriter(writers...)
	return mw, func() { _ = mw.Close() }, nil
}

func closerFor(w archive.Writer) func() {
	if c, ok := w.(interface{ Close() error }); ok {
		return func() { _ = c.Close() }
	}
	return func() {}
}
