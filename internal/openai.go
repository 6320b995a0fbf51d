package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"
)

// ChatClient sends one system + user exchange to a generation backend
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model, system, user string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client; baseURL points it at any OpenAI-compatible server
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAIClient{client: &client}
}

// CreateChatCompletion implements the chat completion method
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model, system, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// TaskGenerator produces task output for a whole transcript or for one chunk of it
type TaskGenerator interface {
	Whole(ctx context.Context, transcript string) (string, error)
	Chunk(ctx context.Context, chunk string, index, total int) (string, error)
}

// GeneratorSource hands out a generator bound to a task and the record being processed
type GeneratorSource interface {
	ForTask(task Task, rec Record) TaskGenerator
}

// AI handles generation backend interactions for summaries and ideas
type AI struct {
	client     ChatClient
	prompts    *PromptManager
	model      string
	timeout    time.Duration
	limiter    *rate.Limiter
	verbose    bool
	provider   string
	apiKey     string
	baseURL    string
	clientOnce sync.Once
	clientErr  error
}

func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// NewAI creates a new AI processor around an existing client
func NewAI(client ChatClient, prompts *PromptManager, model string, timeout time.Duration, requestsPerMinute int, verbose bool) *AI {
	return &AI{
		client:  client,
		prompts: prompts,
		model:   model,
		timeout: timeout,
		limiter: newLimiter(requestsPerMinute),
		verbose: verbose,
	}
}

// NewAIFromConfig creates a new AI processor with lazy client initialization
func NewAIFromConfig(config *Config, prompts *PromptManager) *AI {
	ai := NewAI(nil, prompts, config.Model, config.GenerationTimeout, config.RequestsPerMinute, config.Verbose)
	ai.provider = config.Provider
	ai.baseURL = config.BaseURL
	ai.apiKey = config.OpenAIAPIKey
	if config.Provider == ProviderGemini {
		ai.apiKey = config.GeminiAPIKey
	}
	return ai
}

// ensureClient initializes the backend client if needed
func (ai *AI) ensureClient(ctx context.Context) error {
	ai.clientOnce.Do(func() {
		if ai.client != nil {
			return
		}
		if err := ValidateAPIKey(ai.provider, ai.baseURL, ai.apiKey); err != nil {
			ai.clientErr = err
			return
		}
		switch ai.provider {
		case ProviderGemini:
			client, err := NewGeminiClient(ctx, ai.apiKey)
			if err != nil {
				ai.clientErr = fmt.Errorf("%w: creating Gemini client: %w", ErrExternalService, err)
				return
			}
			ai.client = client
		default:
			ai.client = NewOpenAIClient(ai.apiKey, ai.baseURL)
		}
	})
	return ai.clientErr
}

// Model returns the backend model name
func (ai *AI) Model() string {
	return ai.model
}

// ForTask binds the task prompts to a record
func (ai *AI) ForTask(task Task, rec Record) TaskGenerator {
	return &taskGenerator{ai: ai, task: task, rec: rec}
}

// complete runs one paced, time-bounded backend call
func (ai *AI) complete(ctx context.Context, label, system, user string) (string, error) {
	if err := ai.ensureClient(ctx); err != nil {
		return "", err
	}

	if err := ai.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: waiting for rate limit: %w", ErrExternalService, err)
	}

	ctx, cancel := context.WithTimeout(ctx, ai.timeout)
	defer cancel()

	if ai.verbose {
		fmt.Printf("Requesting %s from %s\n", label, ai.model)
	}

	content, err := ai.client.CreateChatCompletion(ctx, ai.model, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExternalService, label, err)
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s: empty response from %s", ErrExternalService, label, ai.model)
	}

	return content, nil
}

type taskGenerator struct {
	ai   *AI
	task Task
	rec  Record
}

func (g *taskGenerator) data(transcript string, index, total int) PromptData {
	return PromptData{
		Title:       g.rec.Title,
		Uploader:    g.rec.Uploader,
		Description: g.rec.Description,
		Transcript:  transcript,
		Index:       index,
		Total:       total,
	}
}

func (g *taskGenerator) render(kind PromptKind, data PromptData) (string, string, error) {
	system, err := g.ai.prompts.Render(g.task, PromptSystem, data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	user, err := g.ai.prompts.Render(g.task, kind, data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return system, user, nil
}

// Whole generates output for a transcript that fits in one call
func (g *taskGenerator) Whole(ctx context.Context, transcript string) (string, error) {
	system, user, err := g.render(PromptWhole, g.data(transcript, 1, 1))
	if err != nil {
		return "", err
	}
	return g.ai.complete(ctx, g.task.String(), system, user)
}

// Chunk generates output for part index of total; index is 1-based
func (g *taskGenerator) Chunk(ctx context.Context, chunk string, index, total int) (string, error) {
	system, user, err := g.render(PromptChunk, g.data(chunk, index, total))
	if err != nil {
		return "", err
	}
	return g.ai.complete(ctx, fmt.Sprintf("%s part %d/%d", g.task, index, total), system, user)
}
