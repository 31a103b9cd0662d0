// Package pipeline runs the document processing sequence: page selection,
// text extraction, assembly, chunking, and summarization, one document at
// a time with per-document failure isolation.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docfold/pdf-digest/internal/assemble"
	"github.com/docfold/pdf-digest/internal/chunk"
	"github.com/docfold/pdf-digest/internal/extract"
	"github.com/docfold/pdf-digest/internal/llm"
	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/internal/ocr"
	"github.com/docfold/pdf-digest/internal/pagerange"
	"github.com/docfold/pdf-digest/internal/pdf"
	"github.com/docfold/pdf-digest/models"
)

// Summarizer produces one final summary from a document's chunks.
type Summarizer interface {
	Summarize(ctx context.Context, chunks []models.Chunk, instruction string) (*models.FinalSummary, error)
}

// Options controls one batch run.
type Options struct {
	// Folder is scanned non-recursively for *.pdf files.
	Folder string
	// PageRange selects which pages receive OCR, e.g. "0,1,5-8". Ignored
	// when AllPages is set. Native text is always extracted for every page.
	PageRange string
	AllPages  bool

	OCREnabled  bool
	OCRLanguage string

	// Instruction is the user's high-level guidance for the summary.
	Instruction string

	// MaxChunkChars caps chunk size in runes. Zero means the default.
	MaxChunkChars int

	// Progress, when non-nil, receives an event after each document
	// completes, success or failure.
	Progress func(models.ProgressEvent)
}

// Orchestrator runs the pipeline over a folder of documents.
type Orchestrator struct {
	summarizer Summarizer
	engine     ocr.Engine
	log        logger.Logger

	// openProvider turns raw PDF bytes into a page text provider. Tests
	// substitute a fake.
	openProvider func(data models.PdfData) (extract.Provider, error)
}

// NewOrchestrator builds an orchestrator. The OCR engine may be nil when
// OCR will never be requested.
func NewOrchestrator(summarizer Summarizer, engine ocr.Engine, log logger.Logger) *Orchestrator {
	o := &Orchestrator{
		summarizer: summarizer,
		engine:     engine,
		log:        log,
	}
	o.openProvider = func(data models.PdfData) (extract.Provider, error) {
		doc, err := pdf.Open(data)
		if err != nil {
			return nil, err
		}
		return extract.NewDocumentProvider(doc, o.engine), nil
	}
	return o
}

// Run processes every PDF in opts.Folder in sorted name order. Each
// document yields exactly one ProcessingResult. An auth failure from the
// summarizer halts the batch; the unprocessed documents are reported as
// skipped so none is silently dropped. A cancelled context returns the
// results completed so far along with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, opts Options) ([]models.ProcessingResult, error) {
	files, err := listPDFs(opts.Folder)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", opts.Folder)
	}

	o.log.Info("Processing %d documents from %s", len(files), opts.Folder)

	results := make([]models.ProcessingResult, 0, len(files))
	for i, path := range files {
		name := filepath.Base(path)

		if err := ctx.Err(); err != nil {
			return results, err
		}

		summary, data, err := o.processDocument(ctx, path, opts)
		res := models.ProcessingResult{Document: name, Summary: summary, Err: err, Data: data}
		if err != nil {
			res.ErrText = err.Error()
			o.log.Error("Document %s failed: %v", name, err)
		}
		results = append(results, res)
		emitProgress(opts.Progress, name, i, len(files), err)

		if err != nil && llm.IsAuthError(err) {
			o.log.Error("Authentication failure, halting batch")
			for _, rest := range files[i+1:] {
				restName := filepath.Base(rest)
				skipErr := fmt.Errorf("skipped: batch halted by authentication failure")
				results = append(results, models.ProcessingResult{
					Document: restName,
					Err:      skipErr,
					ErrText:  skipErr.Error(),
				})
			}
			return results, err
		}
	}

	return results, nil
}

// ProcessData runs the pipeline stages over a single in-memory document.
// The folder and progress fields of opts are ignored.
func (o *Orchestrator) ProcessData(ctx context.Context, name string, data models.PdfData, opts Options) (*models.FinalSummary, error) {
	provider, err := o.openProvider(data)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return o.summarizeProvider(ctx, name, provider, opts)
}

func (o *Orchestrator) processDocument(ctx context.Context, path string, opts Options) (*models.FinalSummary, models.PdfData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	summary, err := o.ProcessData(ctx, filepath.Base(path), data, opts)
	return summary, data, err
}

func (o *Orchestrator) summarizeProvider(ctx context.Context, name string, provider extract.Provider, opts Options) (*models.FinalSummary, error) {
	pageCount := provider.PageCount()

	// Resolve the OCR page selection before any extraction or network
	// calls so a malformed range fails the document immediately.
	var ocrPages []int
	if opts.OCREnabled {
		var err error
		ocrPages, err = selectPages(opts, pageCount)
		if err != nil {
			return nil, err
		}
	}

	pages, err := o.collectPages(ctx, provider, ocrPages, opts.OCRLanguage)
	if err != nil {
		return nil, err
	}

	text := assemble.Build(pages)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document %s contains no extractable text", name)
	}

	maxChars := opts.MaxChunkChars
	if maxChars <= 0 {
		maxChars = chunk.DefaultMaxChars
	}
	chunks := chunk.Split(name, text, maxChars)

	o.log.Info("Summarizing %s: %d pages, %d chunks", name, pageCount, len(chunks))
	return o.summarizer.Summarize(ctx, chunks, opts.Instruction)
}

// collectPages extracts native text for every page and OCR text for the
// selected pages. A failed page contributes no text but does not fail the
// document.
func (o *Orchestrator) collectPages(ctx context.Context, provider extract.Provider, ocrPages []int, lang string) ([]models.PageText, error) {
	if lang == "" {
		lang = ocr.DefaultLanguage
	}

	ocrSet := make(map[int]bool, len(ocrPages))
	for _, p := range ocrPages {
		ocrSet[p] = true
	}

	var pages []models.PageText
	for i := 0; i < provider.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		native, err := provider.NativeText(ctx, i)
		if err != nil {
			o.log.Warn("Native extraction failed on page %d: %v", i, err)
			native = ""
		}
		pages = append(pages, models.PageText{PageIndex: i, Source: models.SourceNative, Text: native})

		if !ocrSet[i] {
			continue
		}
		ocrText, err := provider.OCRText(ctx, i, lang)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.log.Warn("OCR failed on page %d: %v", i, err)
			continue
		}
		pages = append(pages, models.PageText{PageIndex: i, Source: models.SourceOCR, Text: ocrText})
	}
	return pages, nil
}

func selectPages(opts Options, pageCount int) ([]int, error) {
	if opts.AllPages || strings.TrimSpace(opts.PageRange) == "" {
		return pagerange.All(pageCount), nil
	}
	return pagerange.Parse(opts.PageRange, pageCount)
}

func listPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", folder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			files = append(files, filepath.Join(folder, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func emitProgress(fn func(models.ProgressEvent), name string, index, total int, err error) {
	if fn == nil {
		return
	}
	ev := models.ProgressEvent{
		Document:  name,
		Index:     index,
		Total:     total,
		Succeeded: err == nil,
	}
	if err != nil {
		ev.Message = err.Error()
	}
	fn(ev)
}
