package main

import (
	"github.com/spf13/cobra"

	"github.com/stygmatic/Argus/internal/api"
	"github.com/stygmatic/Argus/internal/config"
	"github.com/stygmatic/Argus/internal/console"
	"github.com/stygmatic/Argus/internal/logging"
	"github.com/stygmatic/Argus/internal/station"
)

var (
	consoleConfigPath string
	consoleSchemaPath string
	consoleLogFile    string
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the interactive operator console",
	Long:  "console connects to the fleet server and renders the live operator dashboard.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(consoleConfigPath, consoleSchemaPath)
		if err != nil {
			return err
		}

		// The TUI owns the terminal; logs go to a file.
		log, closer, err := logging.OpenFile(consoleLogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		writer, cleanup, err := newArchiveWriter(cfg.Archive, log)
		if err != nil {
			return err
		}
		defer cleanup()

		apiClient := api.NewClient(cfg.ServerURL)
		st, err := station.New(station.Options{
			ServerURL: cfg.ServerURL,
			WSURL:     cfg.WSURL,
			Archive:   writer,
			Log:       log,
		}, apiClient)
		if err != nil {
			return err
		}

		st.Start()
		defer st.Stop()

		c := console.New(st, apiClient, cfg.TrailMinutes)
		c.Wait()
		return nil
	},
}

func init() {
	consoleCmd.Flags().StringVar(&consoleConfigPath, "config", "config/console.yaml", "Path to console configuration YAML")
	consoleCmd.Flags().StringVar(&consoleSchemaPath, "schema", "schemas/console.cue", "Path to CUE schema file")
	consoleCmd.Flags().StringVar(&consoleLogFile, "log-file", "argus.log", "Path for console log output")
}
