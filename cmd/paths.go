package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths and generation settings used by the application",
	Example: `  # Show all application paths
  clipmind paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Prompt templates: %s/prompts\n", config.ConfigDir)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Temp directory: %s\n", config.TempDir)
		fmt.Printf("Service log: %s\n", internal.ServiceLogPath(config))
		fmt.Printf("Provider: %s (model %s)\n", config.Provider, config.Model)
		fmt.Printf("Chunk size: %d tokens (%s encoding)\n", config.ChunkSize, config.Encoding)
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
