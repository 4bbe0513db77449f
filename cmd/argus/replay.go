package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stygmatic/Argus/internal/archive"
	"github.com/stygmatic/Argus/internal/logging"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayEndpoint  string
	replayDatabase  string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an archived telemetry log",
	Long:  "replay feeds archived robot updates from a JSONL file back into GreptimeDB or STDOUT at adjustable speed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		var writer archive.Writer = archive.StdoutWriter{}
		if !replayPrintOnly && replayEndpoint != "" {
			gw, err := archive.NewGreptimeWriter(replayEndpoint, replayDatabase, logging.New())
			if err != nil {
				return err
			}
			writer = gw
		}
		return archive.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to archived telemetry JSONL file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to DB")
	replayCmd.Flags().StringVar(&replayEndpoint, "endpoint", "", "GreptimeDB endpoint for replayed rows")
	replayCmd.Flags().StringVar(&replayDatabase, "database", "public", "GreptimeDB database for replayed rows")
	replayCmd.MarkFlagRequired("input")
}
