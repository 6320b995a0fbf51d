package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// runeCounter counts one token per character
var runeCounter = TokenCounterFunc(func(text string) int { return len([]rune(text)) })

type fakeSource struct {
	mu          sync.Mutex
	metadata    map[string]*VideoMetadata
	transcripts map[string][]TranscriptLine
	playlists   map[string]*PlaylistInfo
	calls       []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		metadata:    make(map[string]*VideoMetadata),
		transcripts: make(map[string][]TranscriptLine),
		playlists:   make(map[string]*PlaylistInfo),
	}
}

func (f *fakeSource) addVideo(id, title, transcript string) {
	f.metadata[id] = &VideoMetadata{
		ID:          id,
		Title:       title,
		Description: "About " + title,
		Uploader:    "Uploader " + id,
		UploadDate:  "20230115",
	}
	if transcript != "" {
		f.transcripts[id] = []TranscriptLine{{Text: transcript}}
	}
}

func (f *fakeSource) Metadata(_ context.Context, youtubeURL string) (*VideoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "metadata "+youtubeURL)

	id, err := VideoID(youtubeURL)
	if err != nil {
		return nil, err
	}
	md, ok := f.metadata[id]
	if !ok {
		return nil, fmt.Errorf("%w: video %s unavailable", ErrRetrieval, id)
	}
	return md, nil
}

func (f *fakeSource) Transcript(_ context.Context, videoID string) ([]TranscriptLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "transcript "+videoID)

	lines, ok := f.transcripts[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: no transcript available for %s", ErrRetrieval, videoID)
	}
	return lines, nil
}

func (f *fakeSource) PlaylistVideoURLs(_ context.Context, playlistURL string) (*PlaylistInfo, error) {
	for id, info := range f.playlists {
		if strings.Contains(playlistURL, id) {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: playlist not found", ErrRetrieval)
}

type generatorCall struct {
	task  Task
	video string
	kind  PromptKind
	text  string
	index int
	total int
}

// fakeGenerators answers "<task>:<kind>:<index>/<total>" and records every call
type fakeGenerators struct {
	mu     sync.Mutex
	calls  []generatorCall
	failOn func(call generatorCall) error
}

func (f *fakeGenerators) ForTask(task Task, rec Record) TaskGenerator {
	return &fakeGenerator{parent: f, task: task, rec: rec}
}

func (f *fakeGenerators) record(call generatorCall) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	failOn := f.failOn
	f.mu.Unlock()

	if failOn != nil {
		if err := failOn(call); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("[%s:%s:%d/%d]", call.task, call.kind, call.index, call.total), nil
}

type fakeGenerator struct {
	parent *fakeGenerators
	task   Task
	rec    Record
}

func (g *fakeGenerator) Whole(_ context.Context, transcript string) (string, error) {
	return g.parent.record(generatorCall{task: g.task, video: g.rec.VideoID, kind: PromptWhole, text: transcript, index: 1, total: 1})
}

func (g *fakeGenerator) Chunk(_ context.Context, chunk string, index, total int) (string, error) {
	return g.parent.record(generatorCall{task: g.task, video: g.rec.VideoID, kind: PromptChunk, text: chunk, index: index, total: total})
}

var errBackendDown = errors.New("backend down")

// fakeChat is a ChatClient returning a canned reply
type fakeChat struct {
	mu       sync.Mutex
	reply    string
	err      error
	systems  []string
	users    []string
	models   []string
	deadline bool
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, model, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models = append(f.models, model)
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	_, f.deadline = ctx.Deadline()
	return f.reply, f.err
}
