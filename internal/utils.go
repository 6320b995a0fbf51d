package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	youTubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

var youTubeHosts = []string{"youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be"}

// CanonicalLink returns the watch URL of a video ID
func CanonicalLink(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// withScheme adds https:// to bare youtube links such as "youtu.be/abc"
func withScheme(arg string) string {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		return arg
	}
	for _, host := range youTubeHosts {
		if strings.HasPrefix(arg, host+"/") {
			return "https://" + arg
		}
	}
	return arg
}

// ParseArg normalizes YouTube video IDs and URLs, including playlists
func ParseArg(arg string) (string, string) {
	arg = withScheme(arg)
	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") {
		// Prefer the video over the playlist when a URL carries both
		videoID, err := getVideoID(arg)
		if err == nil {
			return arg, videoID
		}

		if strings.Contains(arg, "list=") {
			playlistID, err := getPlaylistID(arg)
			if err != nil {
				return arg, arg
			}
			return arg, playlistID
		}

		return arg, arg
	}

	if IsValidPlaylistID(arg) {
		return "https://www.youtube.com/playlist?list=" + arg, arg
	}

	return CanonicalLink(arg), arg
}

// VideoID extracts and validates the video ID of a link or bare ID
func VideoID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", fmt.Errorf("%w: no URL provided", ErrInvalidInput)
	}
	if IsValidYouTubeID(link) {
		return link, nil
	}
	id, err := getVideoID(withScheme(link))
	if err != nil {
		return "", fmt.Errorf("%w: invalid YouTube link: %w", ErrInvalidInput, err)
	}
	return id, nil
}

// VideoIDExtractor extracts video IDs from YouTube URLs
type VideoIDExtractor func(string) (string, error)

// Default implementation of video ID extraction
var getVideoID VideoIDExtractor = func(youtubeURL string) (string, error) {
	youtubeURL = strings.TrimSpace(youtubeURL)
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	if !slices.Contains(youTubeHosts, strings.ToLower(u.Host)) {
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if v := u.Query().Get("v"); v != "" {
		if !IsValidYouTubeID(v) {
			return "", fmt.Errorf("malformed video ID %q in %s", v, youtubeURL)
		}
		return v, nil
	}

	// Don't extract video IDs from playlist URLs
	if strings.Contains(u.Path, "/playlist") {
		return "", fmt.Errorf("this is a playlist URL, not a video URL: %s", youtubeURL)
	}

	// youtu.be/<id>, /shorts/<id>, /embed/<id>, /live/<id>
	parts := strings.Split(strings.TrimSuffix(u.Path, "/"), "/")
	if last := parts[len(parts)-1]; IsValidYouTubeID(last) {
		return last, nil
	}

	return "", fmt.Errorf("could not extract video ID from URL: %s", youtubeURL)
}

// CleanupTempDir purges files from a temporary directory
func CleanupTempDir(tempDir string) error {
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		return nil
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return fmt.Errorf("reading temp directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(tempDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove temporary file %s: %v\n", path, err)
		}
	}

	// It's okay if the directory itself stays behind
	if err := os.Remove(tempDir); err != nil {
		fmt.Fprintf(os.Stderr, "Note: could not remove temp directory %s: %v\n", tempDir, err)
	}

	return nil
}

// IsTerminal reports whether stdout is an interactive terminal
func IsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// getTerminalWidth gets terminal width with fallback
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}

	if width > 10 {
		return width - 4
	}

	return width
}

// RenderMarkdown renders markdown content with glamour
func RenderMarkdown(content string) (string, error) {
	width := getTerminalWidth()
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(termenv.EnvColorProfile()),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}

	renderedContent, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	return renderedContent, nil
}

// FileExists checks if a file exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !os.IsNotExist(err)
}

// SupportedOpenAIModels are the chat models accepted against the default OpenAI endpoint
var SupportedOpenAIModels = []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini", "gpt-4.1-nano", "o4-mini"}

// ValidateModel checks if the model is usable with the provider.
// Custom endpoints and Gemini accept any model name.
func ValidateModel(provider, baseURL, model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: model must not be empty", ErrInvalidInput)
	}
	if provider == ProviderGemini || baseURL != "" {
		return nil
	}
	if slices.Contains(SupportedOpenAIModels, model) {
		return nil
	}
	return fmt.Errorf("%w: unsupported model: %s (supported: %s)", ErrInvalidInput, model, strings.Join(SupportedOpenAIModels, ", "))
}

// EnsureDirs creates directories if needed
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if !FileExists(dir) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return youTubeIDPattern.MatchString(id)
}

// IsLikelyCommand checks if a string looks like it might be a mistyped command
func IsLikelyCommand(arg string) bool {
	return len(arg) <= 10 && !IsValidYouTubeID(arg) && !IsValidPlaylistID(arg)
}

// IsValidPlaylistID checks if a string looks like a valid YouTube playlist ID
func IsValidPlaylistID(id string) bool {
	playlistPrefixes := []string{"PL", "UU", "FL", "RD", "LP", "BP", "QL", "SV", "EL", "LL", "UC"}

	for _, prefix := range playlistPrefixes {
		if strings.HasPrefix(id, prefix) {
			if len(id) == 18 || len(id) == 34 || len(id) == 36 {
				return playlistPattern.MatchString(id)
			}
		}
	}

	// Music playlists
	if strings.HasPrefix(id, "OLAK5uy_") || strings.HasPrefix(id, "RDCLAK5uy_") {
		if len(id) == 40 || len(id) == 41 {
			return playlistPattern.MatchString(id)
		}
	}

	return false
}

// getPlaylistID extracts playlist ID from YouTube URLs
func getPlaylistID(youtubeURL string) (string, error) {
	youtubeURL = strings.TrimSpace(youtubeURL)
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}

	if !slices.Contains(youTubeHosts, strings.ToLower(u.Host)) || u.Host == "youtu.be" {
		return "", fmt.Errorf("not a YouTube URL: %s", youtubeURL)
	}

	if list := u.Query().Get("list"); list != "" {
		if IsValidPlaylistID(list) {
			return list, nil
		}
		return "", fmt.Errorf("invalid playlist ID format: %s", list)
	}

	return "", fmt.Errorf("could not extract playlist ID from URL: %s", youtubeURL)
}

// ValidateAPIKey checks that the key the provider needs is set
func ValidateAPIKey(provider, baseURL, apiKey string) error {
	if apiKey != "" {
		return nil
	}
	switch provider {
	case ProviderGemini:
		return fmt.Errorf("%w: Gemini API key is required - set it in config.toml or GEMINI_API_KEY environment variable", ErrInvalidInput)
	default:
		// Local OpenAI-compatible servers usually don't check keys
		if baseURL != "" {
			return nil
		}
		return fmt.Errorf("%w: OpenAI API key is required - set it in config.toml or OPENAI_API_KEY environment variable", ErrInvalidInput)
	}
}
