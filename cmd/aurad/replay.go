package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/elitecommand/aura-session/internal/replay"
)

var (
	replayFixture string
	replayTrace   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded capture trace through the pipeline",
	Long: `Feeds a JSON fixture of recorded readings through the privacy
transform and the adaptation engine with a deterministic clock, then
prints the run summary. Nothing is stored or sent anywhere.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayFixture, "fixture", "", "path to fixture JSON (required)")
	replayCmd.Flags().BoolVar(&replayTrace, "trace", false, "print a line per reading")
	_ = replayCmd.MarkFlagRequired("fixture")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := replay.LoadFixture(replayFixture)
	if err != nil {
		return err
	}

	results, summary, err := replay.Replay(f, logger)
	if err != nil {
		return err
	}

	if replayTrace {
		for _, r := range results {
			line := fmt.Sprintf("[%03d] %s %s", r.Index, r.Timestamp.Format("15:04:05.000"), r.Action)
			if r.Reason != "" {
				line += " (" + r.Reason + ")"
			}
			fmt.Println(line)
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
