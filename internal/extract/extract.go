// Package extract supplies per-page text for the pipeline: native text from
// the PDF content stream and OCR text recovered from embedded images.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/docfold/pdf-digest/internal/ocr"
	"github.com/docfold/pdf-digest/models"
)

// ExtractionError reports a per-page extraction failure with its source.
type ExtractionError struct {
	Page   int
	Source models.TextSource
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed on page %d: %v", e.Source, e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Provider supplies native-extracted text and, when requested, OCR text
// for the pages of one document.
type Provider interface {
	PageCount() int
	NativeText(ctx context.Context, pageIndex int) (string, error)
	OCRText(ctx context.Context, pageIndex int, lang string) (string, error)
}

// PageSource is the document-side dependency of DocumentProvider,
// satisfied by pdf.Document.
type PageSource interface {
	PageCount() int
	NativeText(pageIndex int) (string, error)
	PageImages(pageIndex int) ([][]byte, error)
}

// DocumentProvider implements Provider over an open PDF and an OCR engine.
type DocumentProvider struct {
	doc    PageSource
	engine ocr.Engine
}

// NewDocumentProvider creates a provider for one document. engine may be
// nil when OCR is disabled; OCRText then fails.
func NewDocumentProvider(doc PageSource, engine ocr.Engine) *DocumentProvider {
	return &DocumentProvider{doc: doc, engine: engine}
}

// PageCount returns the document's page count.
func (p *DocumentProvider) PageCount() int {
	return p.doc.PageCount()
}

// NativeText returns the text drawn by the page's content stream.
func (p *DocumentProvider) NativeText(ctx context.Context, pageIndex int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := p.doc.NativeText(pageIndex)
	if err != nil {
		return "", &ExtractionError{Page: pageIndex, Source: models.SourceNative, Err: err}
	}
	return text, nil
}

// OCRText runs OCR over every image on the page and joins the recognized
// fragments. A page without images yields "".
func (p *DocumentProvider) OCRText(ctx context.Context, pageIndex int, lang string) (string, error) {
	if p.engine == nil {
		return "", &ExtractionError{Page: pageIndex, Source: models.SourceOCR, Err: fmt.Errorf("no OCR engine configured")}
	}

	images, err := p.doc.PageImages(pageIndex)
	if err != nil {
		return "", &ExtractionError{Page: pageIndex, Source: models.SourceOCR, Err: err}
	}

	var fragments []string
	for _, img := range images {
		text, err := p.engine.Recognize(ctx, img, lang)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", &ExtractionError{Page: pageIndex, Source: models.SourceOCR, Err: err}
		}
		if strings.TrimSpace(text) != "" {
			fragments = append(fragments, text)
		}
	}
	return strings.Join(fragments, "\n"), nil
}
