package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/clipmind/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the web client",
	Long: `Run an HTTP API exposing metadata lookup, summaries, video ideas,
transcript downloads and spreadsheet exports for single videos and batches.

Batch endpoints accept a .csv or .xlsx upload with a "Link" column and report
per-video failures without failing the whole batch.`,
	Example: `  # Serve on the configured address (default :8080)
  clipmind serve

  # Serve on another port and allow a different web origin
  clipmind serve --addr :9000 --cors-origin https://example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			config.ServerAddr = addr
		}
		if origins, _ := cmd.Flags().GetStringSlice("cors-origin"); len(origins) > 0 {
			config.CORSOrigins = origins
		}

		if err := internal.ValidateGenerationRequirements(cmd, config); err != nil {
			return err
		}

		config.LogEnabled = true
		internal.InitServiceLogging(config)

		app, err := newApp(cmd, internal.WithUI(internal.NewSilentUI()))
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Serving API on %s (log: %s)\n", config.ServerAddr, internal.ServiceLogPath(config))
		return internal.NewServer(app).ListenAndServe(cmd.Context(), config.ServerAddr)
	},
}

func init() {
	internal.AddGenerationFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin (repeatable)")
	// Per-task prompts come from config.toml when serving
	_ = serveCmd.Flags().MarkHidden("prompt")
	rootCmd.AddCommand(serveCmd)
}
