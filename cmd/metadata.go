package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get the metadata record of a YouTube video",
	Example: `  # Print the metadata record (VideoId, Link, Title, ...)
  clipmind metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  clipmind metadata tAP1eZYEuKA

  # Full yt-dlp metadata, saved to a file
  clipmind metadata tAP1eZYEuKA --raw -o metadata.json

  # Format output as pretty JSON
  clipmind metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		var value any
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			value, err = app.Metadata(cmd.Context(), args[0])
		} else {
			value, err = app.Record(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(value, "", "  ")
		} else {
			jsonData, err = json.Marshal(value)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	metadataCmd.Flags().Bool("raw", false, "Print the full video metadata instead of the record")
	rootCmd.AddCommand(metadataCmd)
}
