package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipmind [YouTube URL or ID]",
	Short: "Summarize YouTube videos and turn them into new video ideas",
	Long: `clipmind reads the captions of YouTube videos and asks a language model
for a concise bullet-point summary or for new video ideas.

Long transcripts are split into token-bounded parts that are processed in
order. Results can be printed, exported to a spreadsheet, or served over
HTTP and MCP.`,
	Example: `  # Summarize a YouTube video (default behavior)
  clipmind "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  clipmind tAP1eZYEuKA

  # Use a specific model
  clipmind "https://youtu.be/tAP1eZYEuKA" --model gpt-4o

  # Use Gemini instead of OpenAI
  clipmind tAP1eZYEuKA --provider gemini --model gemini-2.5-flash

  # Use a custom prompt for the summary
  clipmind tAP1eZYEuKA --prompt "tldr: {{.Transcript}}"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			if err := internal.LoadConfigFile(config, configFile); err != nil {
				return err
			}
		}
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		internal.InitServiceLogging(config)
		return nil
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, args, internal.TaskSummarize)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config = internal.InitConfig()

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	if err := internal.EnsureDefaultPrompts(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompts: %v\n", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")

		// Servers shut down gracefully once the context is cancelled
		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir); err != nil {
				fmt.Fprintf(os.Stderr, "Error cleaning up temporary files: %v\n", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(0)
	}()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

// newApp makes sure yt-dlp is available and builds the application
func newApp(cmd *cobra.Command, options ...internal.AppOption) (*internal.App, error) {
	if err := internal.EnsureYtDlp(cmd.Context()); err != nil {
		return nil, err
	}
	return internal.NewApp(config, options...)
}

func init() {
	addTaskFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress and status output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default is $XDG_CONFIG_HOME/clipmind/config.toml)")
}
