package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

var availableCommands = []string{"summarize", "ideas", "metadata", "transcript", "cp", "serve", "mcp", "paths", "version", "help"}

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL, ID or playlist...]",
	Short: "Generate a bullet-point summary of YouTube videos",
	Example: `  # Generate summary from YouTube video
  clipmind summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  clipmind summarize tAP1eZYEuKA

  # Summarize every video of a playlist into a spreadsheet
  clipmind summarize "https://www.youtube.com/playlist?list=PL..." --xlsx summaries.xlsx

  # Summarize the links of a CSV file (column "Link") and print JSON records
  clipmind summarize --file links.csv --json

  # Use custom prompt
  clipmind summarize tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, args, internal.TaskSummarize)
	},
}

// addTaskFlags adds the flags shared by the generation commands
func addTaskFlags(cmd *cobra.Command) {
	internal.AddGenerationFlags(cmd)
	cmd.Flags().StringP("file", "f", "", "Read links from a .csv/.xlsx file (column \"Link\") or a text file (one per line)")
	cmd.Flags().String("xlsx", "", "Write the results to an .xlsx spreadsheet")
	cmd.Flags().Bool("json", false, "Print the processed records as JSON")
}

// collectLinks gathers links from the arguments and the --file flag
func collectLinks(cmd *cobra.Command, args []string) ([]string, error) {
	for _, arg := range args {
		parsed := internal.Classify(arg)
		if parsed.ContentType == internal.ContentTypeCommand {
			return nil, fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID: %s", arg, parsed.SuggestCorrection(availableCommands))
		}
		if !parsed.IsValid() {
			return nil, parsed.Error
		}
	}
	links := append([]string(nil), args...)

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		fileLinks, err := internal.ReadLinks(path, f)
		if err != nil {
			return nil, err
		}
		links = append(links, fileLinks...)
	}

	return links, nil
}

// runTask processes the given videos with task and prints or exports the results
func runTask(cmd *cobra.Command, args []string, task internal.Task) error {
	links, err := collectLinks(cmd, args)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return cmd.Help()
	}

	if err := internal.ValidateGenerationRequirements(cmd, config); err != nil {
		return err
	}

	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := internal.HandlePromptFlag(cmd, app, task); err != nil {
		return err
	}

	ctx := cmd.Context()
	links, err = app.ExpandLinks(ctx, links)
	if err != nil {
		return err
	}

	var (
		records  []internal.Record
		failures []internal.BatchFailure
	)
	if len(links) == 1 {
		rec, err := app.ProcessLink(ctx, links[0], task)
		if err != nil {
			return err
		}
		records = []internal.Record{rec}
	} else {
		fetched, fetchFailures := internal.SplitBatch(app.Records(ctx, links))
		processed, processFailures := internal.SplitBatch(app.ProcessBatch(ctx, fetched, task))
		records = processed
		failures = append(fetchFailures, processFailures...)
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" && len(records) > 0 {
		if err := writeXLSX(path, records); err != nil {
			return err
		}
		app.UI().Printf("Wrote %d result(s) to %s\n", len(records), path)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("converting records to JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printRecords(records)
	}

	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "Failed %s: %s\n", failureLabel(f), f.Message)
	}
	if len(records) == 0 {
		return errors.New("no video could be processed")
	}
	return nil
}

func failureLabel(f internal.BatchFailure) string {
	if f.VideoID != "" {
		return f.VideoID
	}
	return f.Link
}

func writeXLSX(path string, records []internal.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := internal.WriteResultsXLSX(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printRecords prints results, rendering markdown when stdout is a terminal
func printRecords(records []internal.Record) {
	for i, rec := range records {
		if len(records) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s (%s)\n", rec.DisplayTitle(), rec.Link)
		}

		if !internal.IsTerminal() {
			fmt.Println(rec.Results)
			continue
		}
		rendered, err := internal.RenderMarkdown(rec.Results)
		if err != nil {
			fmt.Println(rec.Results)
			continue
		}
		fmt.Print(rendered)
	}
}

func init() {
	addTaskFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
