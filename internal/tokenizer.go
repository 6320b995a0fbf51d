package internal

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE encoding used by gpt-3.5/gpt-4 class models
const DefaultEncoding = "cl100k_base"

var offlineLoaderOnce sync.Once

// TokenCounter counts tokens in a text blob
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter
type TokenCounterFunc func(text string) int

func (f TokenCounterFunc) Count(text string) int { return f(text) }

// Tokenizer counts BPE tokens with a fixed tiktoken encoding.
// The BPE ranks are embedded, so counts never depend on network access.
type Tokenizer struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTokenizer loads the named encoding
func NewTokenizer(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	offlineLoaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer encoding %s: %w", encoding, err)
	}

	return &Tokenizer{encoding: encoding, enc: enc}, nil
}

// Count returns the number of tokens in text
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Encoding returns the encoding name
func (t *Tokenizer) Encoding() string {
	return t.encoding
}
