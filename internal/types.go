package internal

import (
	"fmt"
	"strings"
)

// ContentType represents the type of YouTube content
type ContentType int

const (
	ContentTypeUnknown ContentType = iota
	ContentTypeVideo
	ContentTypePlaylist
	ContentTypeCommand
)

// String returns a human-readable representation of the content type
func (ct ContentType) String() string {
	switch ct {
	case ContentTypeVideo:
		return "video"
	case ContentTypePlaylist:
		return "playlist"
	case ContentTypeCommand:
		return "command"
	default:
		return "unknown"
	}
}

// ParsedArg represents the result of parsing a command line argument
type ParsedArg struct {
	ContentType   ContentType
	OriginalInput string
	NormalizedURL string
	ID            string
	Error         error
}

// IsValid returns true if the parsed argument is valid and has no errors
func (p *ParsedArg) IsValid() bool {
	return p.Error == nil && p.ContentType != ContentTypeUnknown && p.ContentType != ContentTypeCommand
}

// String returns a formatted representation of the parsed argument
func (p *ParsedArg) String() string {
	if p.Error != nil {
		return fmt.Sprintf("ParsedArg{type=%s, input=%q, error=%v}", p.ContentType, p.OriginalInput, p.Error)
	}
	return fmt.Sprintf("ParsedArg{type=%s, id=%s, url=%s}", p.ContentType, p.ID, p.NormalizedURL)
}

// SuggestCorrection provides helpful suggestions for inputs that look like mistyped commands
func (p *ParsedArg) SuggestCorrection(availableCommands []string) string {
	if p.ContentType != ContentTypeCommand {
		return ""
	}

	input := strings.ToLower(p.OriginalInput)
	var suggestions []string
	for _, cmd := range availableCommands {
		if strings.Contains(cmd, input) || strings.Contains(input, cmd) {
			suggestions = append(suggestions, cmd)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Sprintf("did you mean: %s", strings.Join(suggestions, ", "))
	}

	return "use --help to see available commands"
}

// Classify parses a command line argument into a ParsedArg
func Classify(arg string) *ParsedArg {
	p := &ParsedArg{OriginalInput: arg}

	if IsLikelyCommand(arg) {
		p.ContentType = ContentTypeCommand
		p.Error = fmt.Errorf("%w: %q doesn't look like a YouTube URL or video ID", ErrInvalidInput, arg)
		return p
	}

	normalized, id := ParseArg(arg)
	p.NormalizedURL = normalized
	p.ID = id

	switch {
	case IsValidYouTubeID(id):
		p.ContentType = ContentTypeVideo
		p.NormalizedURL = CanonicalLink(id)
	case IsValidPlaylistID(id):
		p.ContentType = ContentTypePlaylist
	default:
		p.Error = fmt.Errorf("%w: could not find a video or playlist ID in %q", ErrInvalidInput, arg)
	}

	return p
}

// Task selects what the generation backend produces from a transcript
type Task int

const (
	TaskSummarize Task = iota + 1
	TaskIdeate
)

// Tasks lists every supported task in a stable order
var Tasks = []Task{TaskSummarize, TaskIdeate}

// String returns the canonical task name, which is also the prompt config key
func (t Task) String() string {
	switch t {
	case TaskSummarize:
		return "summarize"
	case TaskIdeate:
		return "ideate"
	default:
		return fmt.Sprintf("task(%d)", int(t))
	}
}

// ParseTask maps user and API spellings onto a Task
func ParseTask(name string) (Task, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "summarize", "summarise", "summary":
		return TaskSummarize, nil
	case "ideate", "ideas", "generate_ideas":
		return TaskIdeate, nil
	default:
		return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, name)
	}
}
