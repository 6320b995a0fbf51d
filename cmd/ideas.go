package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

// ideasCmd represents the ideas command
var ideasCmd = &cobra.Command{
	Use:     "ideas [YouTube URL, ID or playlist...]",
	Aliases: []string{"ideate"},
	Short:   "Generate new video ideas inspired by YouTube videos",
	Example: `  # Three video ideas based on a video
  clipmind ideas tAP1eZYEuKA

  # Ideas for every link in a spreadsheet, exported to another spreadsheet
  clipmind ideas --file links.xlsx --xlsx ideas.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, args, internal.TaskIdeate)
	},
}

func init() {
	addTaskFlags(ideasCmd)
	rootCmd.AddCommand(ideasCmd)
}
