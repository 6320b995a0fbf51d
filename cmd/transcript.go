package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript [YouTube URL or ID]",
	Short: "Get the transcript of a YouTube video from its captions",
	Example: `  # Print the transcript
  clipmind transcript "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  clipmind transcript tAP1eZYEuKA --timestamps

  # Save transcript to a file named after the video title
  clipmind transcript tAP1eZYEuKA -o .

  # Save transcript to a specific file
  clipmind transcript tAP1eZYEuKA -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile == "" {
			transcript, err := fetchTranscript(cmd, app, args[0])
			if err != nil {
				return err
			}
			fmt.Println(transcript)
			return nil
		}

		// A directory gets a file named after the video
		if info, err := os.Stat(outputFile); err == nil && info.IsDir() {
			rec, err := app.Record(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			outputFile = filepath.Join(outputFile, internal.TranscriptFileName(rec.Title, rec.VideoID))
		}

		transcript, err := fetchTranscript(cmd, app, args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, []byte(transcript+"\n"), 0644); err != nil {
			return fmt.Errorf("writing transcript: %w", err)
		}
		app.UI().Printf("Transcript saved to %s\n", outputFile)
		return nil
	},
}

func init() {
	addTranscriptFlags(transcriptCmd)
	transcriptCmd.Flags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	rootCmd.AddCommand(transcriptCmd)
}
