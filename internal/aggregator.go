package internal

import (
	"context"
	"fmt"
	"strings"
)

// TranscriptSource fetches the timestamped transcript of a video
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string) ([]TranscriptLine, error)
}

// BatchResult is the outcome of one record in a batch
type BatchResult struct {
	Record Record
	Err    error
}

// BatchFailure describes a failed batch item for API and CLI reporting
type BatchFailure struct {
	Index   int    `json:"index"`
	VideoID string `json:"videoId"`
	Link    string `json:"link,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SplitBatch separates successful records from failures, keeping input order
func SplitBatch(results []BatchResult) ([]Record, []BatchFailure) {
	records := make([]Record, 0, len(results))
	var failures []BatchFailure
	for i, res := range results {
		if res.Err != nil {
			failures = append(failures, BatchFailure{
				Index:   i,
				VideoID: res.Record.VideoID,
				Link:    res.Record.Link,
				Kind:    ErrorKind(res.Err),
				Message: res.Err.Error(),
			})
			continue
		}
		records = append(records, res.Record)
	}
	return records, failures
}

// Aggregator turns a record's transcript into task output, chunk by chunk when it is too long
type Aggregator struct {
	transcripts TranscriptSource
	generators  GeneratorSource
	chunker     *Chunker
	ui          UIManager
}

// NewAggregator wires the transcript source, generation backend and chunker
func NewAggregator(transcripts TranscriptSource, generators GeneratorSource, chunker *Chunker, ui UIManager) *Aggregator {
	if ui == nil {
		ui = NewSilentUI()
	}
	return &Aggregator{
		transcripts: transcripts,
		generators:  generators,
		chunker:     chunker,
		ui:          ui,
	}
}

// withKind makes sure err carries one of the error kinds, defaulting to kind
func withKind(err error, kind error) error {
	if ErrorKind(err) != "internal" {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Process fetches the transcript of rec, generates the task output and returns the
// processed record. Chunk outputs are joined in ascending chunk order. On failure the
// input record is returned unchanged together with the error.
//
// Results is replaced, never appended to: resending an already processed record
// regenerates its output from scratch.
func (a *Aggregator) Process(ctx context.Context, rec Record, task Task) (Record, error) {
	if err := rec.Validate(); err != nil {
		return rec, err
	}

	logInfo(logAggregator, "processing %s (%s)", rec.VideoID, task)

	lines, err := a.transcripts.Transcript(ctx, rec.VideoID)
	if err != nil {
		logError(logAggregator, "transcript for %s: %v", rec.VideoID, err)
		return rec, withKind(err, ErrRetrieval)
	}

	transcript := JoinTranscript(lines)
	if strings.TrimSpace(transcript) == "" {
		return rec, fmt.Errorf("%w: transcript for %s is empty", ErrRetrieval, rec.VideoID)
	}

	chunks, count := a.chunker.Split(transcript)
	gen := a.generators.ForTask(task, rec)

	a.ui.Verbose("Transcript of %s split into %d chunk(s)\n", rec.VideoID, count)
	logDebug(logAggregator, "%s: %d chunk(s) of up to %d tokens", rec.VideoID, count, a.chunker.Size())

	var result string
	if count > 1 {
		bar := a.ui.NewProgressBar(count, fmt.Sprintf("Generating %s", task))
		var sb strings.Builder
		for i := 1; i <= count; i++ {
			out, err := gen.Chunk(ctx, chunks[i-1], i, count)
			if err != nil {
				bar.Finish()
				logError(logAggregator, "%s part %d/%d: %v", rec.VideoID, i, count, err)
				return rec, fmt.Errorf("generating part %d of %d for %s: %w", i, count, rec.VideoID, withKind(err, ErrExternalService))
			}
			sb.WriteString(out)
			bar.Set(i)
		}
		bar.Finish()
		result = sb.String()
	} else {
		out, err := gen.Whole(ctx, transcript)
		if err != nil {
			logError(logAggregator, "%s: %v", rec.VideoID, err)
			return rec, fmt.Errorf("generating %s for %s: %w", task, rec.VideoID, withKind(err, ErrExternalService))
		}
		result = out
	}

	processed := rec
	processed.Results = result
	processed.Processed = true

	logInfo(logAggregator, "processed %s (%d chars)", rec.VideoID, len(result))
	return processed, nil
}

// ProcessBatch processes records in order; a failed record does not affect the others
func (a *Aggregator) ProcessBatch(ctx context.Context, recs []Record, task Task) []BatchResult {
	results := make([]BatchResult, len(recs))
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			results[i] = BatchResult{Record: rec, Err: fmt.Errorf("%w: batch cancelled: %w", ErrExternalService, err)}
			continue
		}
		processed, err := a.Process(ctx, rec, task)
		results[i] = BatchResult{Record: processed, Err: err}
	}
	return results
}
