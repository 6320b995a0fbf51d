package internal

import (
	"fmt"
)

// DefaultChunkSize is the token budget of a single generation call
const DefaultChunkSize = 7000

// Chunker partitions a transcript into token-bounded slices
type Chunker struct {
	counter TokenCounter
	size    int
}

// NewChunker creates a chunker; size must be positive
func NewChunker(counter TokenCounter, size int) (*Chunker, error) {
	if counter == nil {
		return nil, fmt.Errorf("%w: chunker needs a token counter", ErrInvalidInput)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidInput, size)
	}
	return &Chunker{counter: counter, size: size}, nil
}

// Size returns the chunk size in tokens
func (c *Chunker) Size() int {
	return c.size
}

// Split returns the ordered chunks of text and their count.
//
// Text within the token budget comes back whole. Otherwise the count is
// ceil(n/size)+1 and the text is cut on character offsets, size characters
// per chunk, widened evenly when that many chunks would not reach the end.
// Joining the chunks always reproduces text; trailing chunks may be empty.
func (c *Chunker) Split(text string) ([]string, int) {
	n := c.counter.Count(text)
	if n <= c.size {
		return []string{text}, 1
	}

	count := (n+c.size-1)/c.size + 1

	runes := []rune(text)
	width := c.size
	if width*count < len(runes) {
		width = (len(runes) + count - 1) / count
	}

	chunks := make([]string, 0, count)
	for i := range count {
		start := min(i*width, len(runes))
		end := min(start+width, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, count
}
