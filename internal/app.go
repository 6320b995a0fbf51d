package internal

import (
	"context"
	"fmt"
	"strings"
)

// App holds the application state and dependencies
type App struct {
	source     VideoSource
	generators GeneratorSource
	counter    TokenCounter
	prompts    *PromptManager
	aggregator *Aggregator
	config     *Config
	ui         UIManager
}

// AppOption customizes App creation
type AppOption func(*App)

// WithVideoSource sets a custom metadata and transcript source
func WithVideoSource(source VideoSource) AppOption {
	return func(a *App) {
		a.source = source
	}
}

// WithGenerator sets a custom generation backend
func WithGenerator(generators GeneratorSource) AppOption {
	return func(a *App) {
		a.generators = generators
	}
}

// WithTokenCounter replaces the tiktoken tokenizer
func WithTokenCounter(counter TokenCounter) AppOption {
	return func(a *App) {
		a.counter = counter
	}
}

// WithUI sets the console UI
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) (*App, error) {
	app := &App{
		config:  config,
		prompts: NewPromptManager(config.ConfigDir, config.Prompts),
	}

	for _, option := range options {
		option(app)
	}

	if app.ui == nil {
		app.ui = NewUIManager(config.Verbose, config.Quiet)
	}
	if app.source == nil {
		app.source = NewYouTube(config.TempDir, config.Verbose)
	}
	if app.generators == nil {
		app.generators = NewAIFromConfig(config, app.prompts)
	}
	if app.counter == nil {
		tokenizer, err := NewTokenizer(config.Encoding)
		if err != nil {
			return nil, err
		}
		app.counter = tokenizer
	}

	chunker, err := NewChunker(app.counter, config.ChunkSize)
	if err != nil {
		return nil, err
	}
	app.aggregator = NewAggregator(app.source, app.generators, chunker, app.ui)

	if ai, ok := app.generators.(*AI); ok {
		app.ui.Verbose("Generation model: %s (%s)\n", ai.Model(), config.Provider)
	}
	if tokenizer, ok := app.counter.(*Tokenizer); ok {
		app.ui.Verbose("Chunk size: %d tokens (%s encoding)\n", chunker.Size(), tokenizer.Encoding())
	}

	return app, nil
}

// Config returns the application configuration
func (app *App) Config() *Config {
	return app.config
}

// UI returns the console UI
func (app *App) UI() UIManager {
	return app.ui
}

// SetPromptManager swaps the prompt templates used by the built-in backend
func (app *App) SetPromptManager(pm *PromptManager) {
	app.prompts = pm
	if ai, ok := app.generators.(*AI); ok {
		ai.prompts = pm
	}
}

// Metadata fetches video metadata for a link or video ID
func (app *App) Metadata(ctx context.Context, link string) (*VideoMetadata, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return nil, err
	}
	return app.source.Metadata(ctx, CanonicalLink(videoID))
}

// Record builds an unprocessed record for a link
func (app *App) Record(ctx context.Context, link string) (Record, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return Record{Link: strings.TrimSpace(link)}, err
	}

	metadata, err := app.source.Metadata(ctx, CanonicalLink(videoID))
	if err != nil {
		return Record{VideoID: videoID, Link: CanonicalLink(videoID)}, withKind(err, ErrRetrieval)
	}

	return NewRecord(videoID, metadata), nil
}

// Records builds records for links in order, collecting per-link failures
func (app *App) Records(ctx context.Context, links []string) []BatchResult {
	results := make([]BatchResult, 0, len(links))
	bar := app.ui.NewProgressBar(len(links), "Fetching metadata")
	for i, link := range links {
		rec, err := app.Record(ctx, link)
		results = append(results, BatchResult{Record: rec, Err: err})
		bar.Set(i + 1)
	}
	bar.Finish()
	return results
}

// Process generates task output for one record
func (app *App) Process(ctx context.Context, rec Record, task Task) (Record, error) {
	return app.aggregator.Process(ctx, rec, task)
}

// ProcessBatch generates task output for each record independently
func (app *App) ProcessBatch(ctx context.Context, recs []Record, task Task) []BatchResult {
	return app.aggregator.ProcessBatch(ctx, recs, task)
}

// ProcessLink builds the record for a link and processes it, with a status spinner
func (app *App) ProcessLink(ctx context.Context, link string, task Task) (Record, error) {
	spinner := app.ui.NewSpinner("Fetching video metadata...")
	rec, err := app.Record(ctx, link)
	if err != nil {
		spinner.Finish()
		return rec, err
	}

	spinner.Describe(fmt.Sprintf("Generating %s for %s...", task, rec.DisplayTitle()))
	processed, err := app.Process(ctx, rec, task)
	spinner.Finish()
	return processed, err
}

// TranscriptLines fetches the timestamped transcript of a link
func (app *App) TranscriptLines(ctx context.Context, link string) ([]TranscriptLine, error) {
	videoID, err := VideoID(link)
	if err != nil {
		return nil, err
	}
	lines, err := app.source.Transcript(ctx, videoID)
	if err != nil {
		return nil, withKind(err, ErrRetrieval)
	}
	return lines, nil
}

// Transcript fetches the plain-text transcript of a link
func (app *App) Transcript(ctx context.Context, link string) (string, error) {
	lines, err := app.TranscriptLines(ctx, link)
	if err != nil {
		return "", err
	}
	return JoinTranscript(lines), nil
}

// TranscriptFile fetches a transcript together with the record naming its file
func (app *App) TranscriptFile(ctx context.Context, link string) (Record, string, error) {
	rec, err := app.Record(ctx, link)
	if err != nil {
		return rec, "", err
	}
	transcript, err := app.Transcript(ctx, rec.VideoID)
	if err != nil {
		return rec, "", err
	}
	return rec, transcript, nil
}

// ExpandLinks replaces playlist arguments with the links of their videos
func (app *App) ExpandLinks(ctx context.Context, args []string) ([]string, error) {
	var links []string
	for _, arg := range args {
		parsed := Classify(arg)
		if parsed.ContentType != ContentTypePlaylist {
			links = append(links, arg)
			continue
		}

		info, err := app.source.PlaylistVideoURLs(ctx, parsed.NormalizedURL)
		if err != nil {
			return nil, withKind(err, ErrRetrieval)
		}
		if len(info.VideoURLs) == 0 {
			return nil, fmt.Errorf("%w: no videos found in playlist %s", ErrRetrieval, parsed.ID)
		}
		app.ui.Printf("Found %d videos in playlist: %s\n", len(info.VideoURLs), info.Title)
		links = append(links, info.VideoURLs...)
	}
	return links, nil
}
