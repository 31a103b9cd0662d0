package models

import "time"

// TextSource identifies where a page's text came from.
type TextSource string

const (
	SourceNative TextSource = "native"
	SourceOCR    TextSource = "ocr"
)

// PageText is the text attributed to one page of a document, tagged with
// its source. Produced once per page per processing pass and consumed by
// the assembler.
type PageText struct {
	PageIndex int        `json:"page_index"`
	Source    TextSource `json:"source"`
	Text      string     `json:"text"`
}

// Chunk is a contiguous slice of a document's assembled text. Chunks
// concatenated in sequence order reconstruct the assembled text exactly.
type Chunk struct {
	Document string `json:"document"`
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
}

// FinalSummary is the ultimate output for one document: the single chunk
// summary when the document fit in one chunk, or the synthesis of all
// chunk summaries.
type FinalSummary struct {
	Document   string `json:"document"`
	Summary    string `json:"summary"`
	ChunkCount int    `json:"chunk_count"`
}

// ProcessingResult is the per-document outcome of a pipeline run: a final
// summary or a failure, never both.
type ProcessingResult struct {
	Document string        `json:"document"`
	Summary  *FinalSummary `json:"summary,omitempty"`
	Err      error         `json:"-"`
	ErrText  string        `json:"error,omitempty"`
	// Data holds the exact bytes that were summarized, so callers can
	// content-address the summary without re-reading a file that may have
	// changed since.
	Data PdfData `json:"-"`
}

// Failed reports whether the document ended in a failure.
func (r ProcessingResult) Failed() bool {
	return r.Err != nil
}

// ProgressEvent is emitted after each document completes, success or failure.
type ProgressEvent struct {
	Document  string `json:"document"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message,omitempty"`
}

// SummaryRecord is a persisted final summary.
type SummaryRecord struct {
	DocumentID  string    `json:"document_id"`
	Document    string    `json:"document"`
	Instruction string    `json:"instruction,omitempty"`
	Summary     string    `json:"summary"`
	ChunkCount  int       `json:"chunk_count"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type PdfData []byte

// SourceInfo contains information about where a single PDF came from.
type SourceInfo struct {
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
}
