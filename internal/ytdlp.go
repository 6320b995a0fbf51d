package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/lrstanley/go-ytdlp"
)

// VideoMetadata contains YouTube video information
type VideoMetadata struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Channel     string         `json:"channel"`
	Uploader    string         `json:"uploader"`
	UploadDate  string         `json:"upload_date"`
	Duration    float64        `json:"duration"`
	Categories  []string       `json:"categories"`
	Tags        []string       `json:"tags"`
	Chapters    []VideoChapter `json:"chapters"`
	HasCaptions bool           `json:"has_captions"`
}

// VideoChapter represents a video chapter marker
type VideoChapter struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Title     string  `json:"title"`
}

// TranscriptLine is one timestamped caption line
type TranscriptLine struct {
	Start time.Duration `json:"start"`
	Text  string        `json:"text"`
}

// PlaylistInfo holds a playlist title and its video links in playlist order
type PlaylistInfo struct {
	Title     string
	VideoURLs []string
}

// VideoSource retrieves metadata and transcripts from the video platform
type VideoSource interface {
	Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error)
	Transcript(ctx context.Context, videoID string) ([]TranscriptLine, error)
	PlaylistVideoURLs(ctx context.Context, playlistURL string) (*PlaylistInfo, error)
}

// YouTube handles YouTube metadata and transcript operations through yt-dlp
type YouTube struct {
	tempDir string
	verbose bool
}

// NewYouTube creates a new YouTube client; subtitle downloads go to scoped dirs under tempDir
func NewYouTube(tempDir string, verbose bool) *YouTube {
	return &YouTube{
		tempDir: tempDir,
		verbose: verbose,
	}
}

func stderrOf(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return strings.TrimSpace(result.Stderr)
}

// Metadata fetches video details using go-ytdlp
func (yt *YouTube) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	if yt.verbose {
		fmt.Println("Extracting video metadata...")
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		if yt.verbose {
			fmt.Printf("Metadata extraction error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderrOf(result))
		}
		return nil, fmt.Errorf("%w: extracting video metadata: %w", ErrRetrieval, err)
	}

	// Raw map first for the subtitle listings
	var rawData map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &rawData); err != nil {
		return nil, fmt.Errorf("%w: parsing video metadata: %w", ErrRetrieval, err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &metadata); err != nil {
		return nil, fmt.Errorf("%w: parsing video metadata: %w", ErrRetrieval, err)
	}

	metadata.HasCaptions = extractSubtitleInfo(rawData)

	if yt.verbose {
		fmt.Println("Metadata extraction completed successfully")
		fmt.Printf("Title: %s\n", metadata.Title)
		fmt.Printf("Uploader: %s\n", metadata.Uploader)
		fmt.Printf("Upload date: %s\n", metadata.UploadDate)
		fmt.Printf("Has captions: %t\n", metadata.HasCaptions)
	}

	return &metadata, nil
}

// Transcript downloads English captions for a video and returns its timestamped lines.
// The subtitle files live in a temporary directory that is removed before returning.
func (yt *YouTube) Transcript(ctx context.Context, videoID string) ([]TranscriptLine, error) {
	if !IsValidYouTubeID(videoID) {
		return nil, fmt.Errorf("%w: malformed video ID %q", ErrInvalidInput, videoID)
	}

	if err := EnsureDirs(yt.tempDir); err != nil {
		return nil, fmt.Errorf("%w: creating temp directory: %w", ErrResource, err)
	}
	dir, err := os.MkdirTemp(yt.tempDir, "subs-"+videoID+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: creating subtitle directory: %w", ErrResource, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove %s: %v\n", dir, err)
		}
	}()

	if yt.verbose {
		fmt.Printf("Downloading subtitles for %s...\n", videoID)
	}

	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs("en,en-US,en-GB").
		ConvertSubs("srt").
		SkipDownload().
		Output(filepath.Join(dir, "%(id)s"))

	result, err := dl.Run(ctx, CanonicalLink(videoID))
	if err != nil {
		if yt.verbose {
			fmt.Printf("Subtitle download error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderrOf(result))
		}
		return nil, fmt.Errorf("%w: downloading subtitles for %s: %w", ErrRetrieval, videoID, err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.srt"))
	if err != nil || len(files) == 0 {
		return nil, fmt.Errorf("%w: no transcript available for %s", ErrRetrieval, videoID)
	}
	subsFile := pickSubtitleFile(files)

	if yt.verbose {
		fmt.Printf("Found %d subtitle file(s), using %s\n", len(files), filepath.Base(subsFile))
	}

	f, err := os.Open(subsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: opening subtitles: %w", ErrResource, err)
	}
	defer f.Close()

	lines, err := ParseSRT(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing subtitles for %s: %w", ErrRetrieval, videoID, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: transcript for %s is empty", ErrRetrieval, videoID)
	}

	return lines, nil
}

// PlaylistVideoURLs lists the videos of a playlist without resolving each one
func (yt *YouTube) PlaylistVideoURLs(ctx context.Context, playlistURL string) (*PlaylistInfo, error) {
	dl := ytdlp.New().
		FlatPlaylist().
		DumpSingleJSON().
		SkipDownload()

	result, err := dl.Run(ctx, playlistURL)
	if err != nil {
		if yt.verbose {
			fmt.Printf("Playlist extraction error: %v\n", err)
			fmt.Printf("Stderr: %s\n", stderrOf(result))
		}
		return nil, fmt.Errorf("%w: extracting playlist: %w", ErrRetrieval, err)
	}

	var playlist struct {
		Title   string `json:"title"`
		Entries []struct {
			ID string `json:"id"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &playlist); err != nil {
		return nil, fmt.Errorf("%w: parsing playlist: %w", ErrRetrieval, err)
	}

	info := &PlaylistInfo{Title: playlist.Title}
	for _, entry := range playlist.Entries {
		if IsValidYouTubeID(entry.ID) {
			info.VideoURLs = append(info.VideoURLs, CanonicalLink(entry.ID))
		}
	}
	return info, nil
}

// subtitleLangPreference ranks the downloaded tracks; regional tracks are often machine translated
var subtitleLangPreference = []string{".en.srt", ".en-US.srt", ".en-GB.srt"}

// pickSubtitleFile returns the preferred English track, or the first file by name
func pickSubtitleFile(files []string) string {
	for _, suffix := range subtitleLangPreference {
		for _, file := range files {
			if strings.HasSuffix(file, suffix) {
				return file
			}
		}
	}
	sorted := slices.Clone(files)
	slices.Sort(sorted)
	return sorted[0]
}

// ParseSRT reads SRT subtitles into ordered transcript lines, dropping rolled-up repeats
func ParseSRT(r io.Reader) ([]TranscriptLine, error) {
	subs, err := astisub.ReadFromSRT(r)
	if err != nil {
		return nil, err
	}

	lines := make([]TranscriptLine, 0, len(subs.Items))
	for _, item := range subs.Items {
		var parts []string
		for _, line := range item.Lines {
			for _, li := range line.Items {
				if t := strings.TrimSpace(li.Text); t != "" {
					parts = append(parts, t)
				}
			}
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, TranscriptLine{
			Start: item.StartAt,
			Text:  strings.Join(parts, " "),
		})
	}

	return removeDuplicates(lines), nil
}

// JoinTranscript concatenates transcript lines into the plain text used for generation
func JoinTranscript(lines []TranscriptLine) string {
	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		texts = append(texts, line.Text)
	}
	return strings.Join(texts, " ")
}

// FormatTimestampedTranscript renders one "[mm:ss] text" line per caption, with hours when needed
func FormatTimestampedTranscript(lines []TranscriptLine) string {
	var sb strings.Builder
	for _, line := range lines {
		total := int(line.Start / time.Second)
		h, m, s := total/3600, (total/60)%60, total%60
		if h > 0 {
			fmt.Fprintf(&sb, "[%d:%02d:%02d] %s\n", h, m, s, line.Text)
		} else {
			fmt.Fprintf(&sb, "[%02d:%02d] %s\n", m, s, line.Text)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// removeDuplicates collapses rolled-up captions. A line that extends the previous one
// replaces it, keeping the earlier start time; a line that repeats the previous one,
// or the end of it, is dropped. Every other line is kept.
func removeDuplicates(lines []TranscriptLine) []TranscriptLine {
	result := make([]TranscriptLine, 0, len(lines))

	for _, line := range lines {
		if n := len(result); n > 0 {
			prev := result[n-1].Text
			switch {
			case line.Text == prev || strings.HasSuffix(prev, " "+line.Text):
				continue
			case strings.HasPrefix(line.Text, prev+" "):
				result[n-1].Text = line.Text
				continue
			}
		}
		result = append(result, line)
	}

	return result
}

// extractSubtitleInfo extracts subtitle availability from yt-dlp JSON output
func extractSubtitleInfo(rawData map[string]any) bool {
	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true
	}

	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true
	}

	return false
}
