package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/models"
)

// chunkSeparator joins chunk summaries for the reduce call so the model
// can see section boundaries.
const chunkSeparator = "\n\n---\n\n"

// Summarizer produces one final summary per document via hierarchical
// map-then-reduce calls: each chunk is summarized independently, and the
// chunk summaries are synthesized into a final summary with one further
// call. A single-chunk document skips the reduce call entirely.
type Summarizer struct {
	client     Client
	log        logger.Logger
	maxWorkers int
}

// NewSummarizer creates a summarizer. maxWorkers <= 0 selects the default
// worker pool size.
func NewSummarizer(client Client, log logger.Logger, maxWorkers int) *Summarizer {
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}
	return &Summarizer{client: client, log: log, maxWorkers: maxWorkers}
}

// Summarize runs the map phase over the chunks of one document and, when
// more than one chunk exists, the reduce phase over the collected chunk
// summaries. The instruction string is passed unchanged to both phases.
// The reduce phase does not begin until every map call has returned or
// permanently failed, and chunk summaries enter it in sequence order.
func (s *Summarizer) Summarize(ctx context.Context, chunks []models.Chunk, instruction string) (*models.FinalSummary, error) {
	if len(chunks) == 0 {
		return nil, errors.New("no chunks to summarize")
	}
	document := chunks[0].Document

	// Single-chunk shortcut: the chunk summary is the final summary.
	if len(chunks) == 1 {
		s.log.Debug("Summarizing %s as a single chunk", document)
		summary, err := s.summarizeChunk(ctx, chunks[0], 1, instruction)
		if err != nil {
			return nil, err
		}
		return &models.FinalSummary{Document: document, Summary: summary, ChunkCount: 1}, nil
	}

	s.log.Info("Summarizing %s in %d chunks", document, len(chunks))

	summaries, err := s.mapPhase(ctx, chunks, instruction)
	if err != nil {
		return nil, err
	}

	final, err := s.reducePhase(ctx, summaries, instruction)
	if err != nil {
		return nil, err
	}

	return &models.FinalSummary{Document: document, Summary: final, ChunkCount: len(chunks)}, nil
}

// mapPhase summarizes every chunk, fanning out over a bounded worker pool.
// Results are reassembled by chunk sequence number, not completion order.
func (s *Summarizer) mapPhase(ctx context.Context, chunks []models.Chunk, instruction string) ([]string, error) {
	wp := NewWorkerPool(s.maxWorkers)
	summaries := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	type result struct {
		index int
		text  string
		err   error
	}
	results := make(chan result, len(chunks))

	spawned := 0
	for i, c := range chunks {
		if err := wp.Acquire(ctx); err != nil {
			// Context cancelled, stop spawning new workers
			break
		}
		spawned++
		go func(idx int, chunk models.Chunk) {
			defer wp.Release()
			text, err := s.summarizeChunk(ctx, chunk, len(chunks), instruction)
			results <- result{index: idx, text: text, err: err}
		}(i, c)
	}

	for range spawned {
		res := <-results
		summaries[res.index] = res.text
		errs[res.index] = res.err
	}
	close(results)

	if spawned < len(chunks) {
		return nil, ctx.Err()
	}

	// An auth failure outranks everything else: the whole batch must stop.
	// Otherwise report the first failing chunk.
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if IsAuthError(err) {
			return nil, err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return summaries, nil
}

// summarizeChunk issues one map-phase request with retries. The instruction
// travels inside the chunk prompt so map and reduce share the user's intent.
func (s *Summarizer) summarizeChunk(ctx context.Context, chunk models.Chunk, totalChunks int, instruction string) (string, error) {
	prompt := mapPrompt(chunk, totalChunks, instruction)

	s.log.Debug("Summarizing chunk %d/%d of %s (%d chars)", chunk.Sequence+1, totalChunks, chunk.Document, len(chunk.Text))

	summary, err := RateLimitedCall(ctx, estimateTokens(prompt), s.log, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &SummarizationError{Kind: ClassifyError(err), Chunk: chunk.Sequence, Err: err}
	}
	return summary, nil
}

// reducePhase synthesizes all chunk summaries into one final summary.
func (s *Summarizer) reducePhase(ctx context.Context, summaries []string, instruction string) (string, error) {
	s.log.Debug("Synthesizing %d chunk summaries", len(summaries))

	prompt := reducePrompt(summaries, instruction)
	final, err := RateLimitedCall(ctx, estimateTokens(prompt), s.log, func(ctx context.Context) (string, error) {
		return s.client.Complete(ctx, prompt)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &SummarizationError{Kind: ClassifyError(err), Chunk: -1, Err: err}
	}
	return final, nil
}

// mapPrompt builds the request for one chunk: the user's instruction, a
// part-of-N preamble for multi-chunk documents, and the chunk text.
func mapPrompt(chunk models.Chunk, totalChunks int, instruction string) string {
	var sb strings.Builder
	if totalChunks > 1 {
		fmt.Fprintf(&sb, "You are summarizing part %d of %d from a larger document.\n\n", chunk.Sequence+1, totalChunks)
	}
	if instruction != "" {
		sb.WriteString(instruction)
		sb.WriteString("\n\n")
	}
	lead := "Please summarize the following text:"
	if totalChunks > 1 {
		lead = "Please summarize this section of the document:"
	}
	fmt.Fprintf(&sb, "%s\n\n%s", lead, chunk.Text)
	return sb.String()
}

// reducePrompt builds the synthesis request from the ordered chunk
// summaries, restating the user's original instruction.
func reducePrompt(summaries []string, instruction string) string {
	combined := strings.Join(summaries, chunkSeparator)
	return fmt.Sprintf(
		"The following are summaries of consecutive sections of a document. "+
			"Synthesize them into a single, coherent, and comprehensive summary of the entire document, "+
			"maintaining a consistent tone and flow.\n\n"+
			"The original high-level instruction for the summary was: '%s'\n\n"+
			"--- Individual Section Summaries to Combine ---\n%s",
		instruction, combined)
}
