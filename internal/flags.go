package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AddGenerationFlags adds flags related to the generation backend
func AddGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for generation")
	cmd.Flags().String("provider", "", "Generation provider (openai or gemini)")
	cmd.Flags().Int("chunk-size", 0, "Token budget per generation call")
	cmd.Flags().StringP("prompt", "p", "", "Custom prompt template (string or file path)")
}

// HandlePromptFlag replaces the task's whole and chunk templates with the --prompt value
func HandlePromptFlag(cmd *cobra.Command, app *App, task Task) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}

	if prompt == "" {
		return nil
	}

	pm := app.prompts.
		WithOverride(task, PromptWhole, prompt).
		WithOverride(task, PromptChunk, prompt)
	app.SetPromptManager(pm)

	if IsLikelyFilePath(prompt) && FileExists(prompt) {
		app.ui.Verbose("Using custom prompt file: %s\n", prompt)
	} else {
		app.ui.Verbose("Using custom prompt string\n")
	}

	return nil
}

// HandleVerboseFlag processes the --verbose and --quiet flags to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		config.Verbose = true
	}

	if quietFlag := cmd.Flags().Lookup("quiet"); quietFlag != nil && quietFlag.Changed {
		quiet, _ := cmd.Flags().GetBool("quiet")
		config.Quiet = quiet
	}
	return nil
}

// ValidateGenerationRequirements applies generation flags to config and checks the backend settings
func ValidateGenerationRequirements(cmd *cobra.Command, config *Config) error {
	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		config.Provider = strings.ToLower(provider)
	}
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		config.Model = model
	}
	if size, _ := cmd.Flags().GetInt("chunk-size"); size != 0 {
		config.ChunkSize = size
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	apiKey := config.OpenAIAPIKey
	if config.Provider == ProviderGemini {
		apiKey = config.GeminiAPIKey
	}
	return ValidateAPIKey(config.Provider, config.BaseURL, apiKey)
}
