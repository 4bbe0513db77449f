package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stygmatic/Argus/internal/api"
	"github.com/stygmatic/Argus/internal/config"
	"github.com/stygmatic/Argus/internal/logging"
	"github.com/stygmatic/Argus/internal/station"
)

var (
	recordConfigPath string
	recordSchemaPath string
	recordOutput     string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record fleet telemetry without the dashboard",
	Long:  "record connects to the fleet server headless and archives every robot update to the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(recordConfigPath, recordSchemaPath)
		if err != nil {
			return err
		}
		if recordOutput != "" {
			cfg.Archive.File = recordOutput
		}

		log := logging.New()
		writer, cleanup, err := newArchiveWriter(cfg.Archive, log)
		if err != nil {
			return err
		}
		if writer == nil {
			return fmt.Errorf("no archive sink configured; set --output or an archive section")
		}
		defer cleanup()

		st, err := station.New(station.Options{
			ServerURL: cfg.ServerURL,
			WSURL:     cfg.WSURL,
			Archive:   writer,
			Log:       log,
		}, api.NewClient(cfg.ServerURL))
		if err != nil {
			return err
		}

		st.Start()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		st.Stop()
		log.Info("recording stopped")
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordConfigPath, "config", "config/console.yaml", "Path to console configuration YAML")
	recordCmd.Flags().StringVar(&recordSchemaPath, "schema", "schemas/console.cue", "Path to CUE schema file")
	recordCmd.Flags().StringVar(&recordOutput, "output", "", "Path for the JSONL telemetry archive")
}
