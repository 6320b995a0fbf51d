package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

// fetchTranscript retrieves the transcript for the given argument, with start times if --timestamps is set
func fetchTranscript(cmd *cobra.Command, app *internal.App, arg string) (string, error) {
	parsed := internal.Classify(arg)
	if !parsed.IsValid() {
		return "", parsed.Error
	}

	spinner := app.UI().NewSpinner("Fetching YouTube captions...")
	lines, err := app.TranscriptLines(cmd.Context(), parsed.NormalizedURL)
	spinner.Finish()
	if err != nil {
		return "", err
	}

	if timestamps, _ := cmd.Flags().GetBool("timestamps"); timestamps {
		return internal.FormatTimestampedTranscript(lines), nil
	}
	return internal.JoinTranscript(lines), nil
}

func addTranscriptFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("timestamps", "t", false, "Prefix each caption line with its start time")
}
