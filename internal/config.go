package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"github.com/spf13/viper"
)

const appName = "clipmind"

// Supported generation providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds application settings
type Config struct {
	// User configurable settings
	Provider          string
	Model             string
	BaseURL           string
	ChunkSize         int
	Encoding          string
	GenerationTimeout time.Duration
	RequestsPerMinute int
	Prompts           map[string]string
	ServerAddr        string
	CORSOrigins       []string
	Verbose           bool
	Quiet             bool
	LogEnabled        bool
	OpenAIAPIKey      string
	GeminiAPIKey      string

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml prompts/*.tmpl
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, filepath.FromSlash(embedFilename))

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompts writes the embedded prompt templates into the config directory
func EnsureDefaultPrompts(configDir string) error {
	for _, task := range Tasks {
		for _, kind := range PromptKinds {
			name := "prompts/" + promptFileName(task, kind)
			if err := ensureDefaultFile(configDir, name, "prompt template"); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnsureYtDlp installs yt-dlp if it is missing
func EnsureYtDlp(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("%w: installing yt-dlp: %w", ErrResource, err)
	}
	return nil
}

// InitConfig initializes Viper and loads configuration
func InitConfig() *Config {
	// A missing .env is the common case
	_ = godotenv.Load()

	configDir := filepath.Join(xdg.ConfigHome, appName)
	dataDir := filepath.Join(xdg.DataHome, appName)
	cacheDir := filepath.Join(xdg.CacheHome, appName)

	v := NewViper(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := ConfigFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir
	config.TempDir = filepath.Join(cacheDir, "tmp")

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// LoadConfigFile replaces the user settings of config with the ones read from path
func LoadConfigFile(config *Config, path string) error {
	v := NewViper(config.ConfigDir)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: reading config file %s: %w", ErrInvalidInput, path, err)
	}

	loaded := ConfigFromViper(v)
	loaded.ConfigDir = config.ConfigDir
	loaded.DataDir = config.DataDir
	loaded.CacheDir = config.CacheDir
	loaded.TempDir = config.TempDir
	*config = *loaded
	return nil
}

// NewViper returns a viper instance with defaults, search paths and env bindings
func NewViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("base_url", "")
	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("encoding", DefaultEncoding)
	v.SetDefault("generation_timeout", 2*time.Minute)
	v.SetDefault("requests_per_minute", 0)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log_enabled", false)
	for _, task := range Tasks {
		for _, kind := range PromptKinds {
			v.SetDefault("prompts."+promptKey(task, kind), "")
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")

	// CLIPMIND_SERVER_ADDR -> server.addr
	v.SetEnvPrefix("CLIPMIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", "CLIPMIND_OPENAI_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY", "CLIPMIND_GEMINI_API_KEY")

	return v
}

// ConfigFromViper reads the user configurable settings out of v
func ConfigFromViper(v *viper.Viper) *Config {
	prompts := make(map[string]string)
	for _, task := range Tasks {
		for _, kind := range PromptKinds {
			key := promptKey(task, kind)
			if s := v.GetString("prompts." + key); s != "" {
				prompts[key] = s
			}
		}
	}

	return &Config{
		Provider:          strings.ToLower(v.GetString("provider")),
		Model:             v.GetString("model"),
		BaseURL:           v.GetString("base_url"),
		ChunkSize:         v.GetInt("chunk_size"),
		Encoding:          v.GetString("encoding"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		RequestsPerMinute: v.GetInt("requests_per_minute"),
		Prompts:           prompts,
		ServerAddr:        v.GetString("server.addr"),
		CORSOrigins:       v.GetStringSlice("server.cors_origins"),
		Verbose:           v.GetBool("verbose"),
		Quiet:             v.GetBool("quiet"),
		LogEnabled:        v.GetBool("log_enabled"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		GeminiAPIKey:      v.GetString("gemini_api_key"),
	}
}

// Validate checks settings the core cannot run without
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidInput, c.ChunkSize)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("%w: generation_timeout must be positive", ErrInvalidInput)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests_per_minute cannot be negative", ErrInvalidInput)
	}
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown provider %q (supported: %s, %s)", ErrInvalidInput, c.Provider, ProviderOpenAI, ProviderGemini)
	}
	return ValidateModel(c.Provider, c.BaseURL, c.Model)
}
