// Package pdf provides page-level access to PDF documents: page counts,
// native content-stream text, and embedded raster images for OCR.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docfold/pdf-digest/models"
)

// Document is an open PDF ready for per-page extraction.
type Document struct {
	ctx *model.Context
}

// Open parses and validates raw PDF bytes.
func Open(data models.PdfData) (*Document, error) {
	reader := bytes.NewReader(data)
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(reader, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return &Document{ctx: ctx}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// NativeText extracts the text drawn by a page's content stream.
// pageIndex is 0-based. A page with no text operators yields "".
func (d *Document) NativeText(pageIndex int) (string, error) {
	if pageIndex < 0 || pageIndex >= d.ctx.PageCount {
		return "", fmt.Errorf("page index %d out of range (0-%d)", pageIndex, d.ctx.PageCount-1)
	}
	r, err := pdfcpu.ExtractPageContent(d.ctx, pageIndex+1)
	if err != nil {
		return "", fmt.Errorf("failed to extract content of page %d: %w", pageIndex, err)
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content stream of page %d: %w", pageIndex, err)
	}
	return extractStreamText(data), nil
}

// PageImages returns the raw bytes of every image XObject drawn on a page.
// pageIndex is 0-based. Pages without images return an empty slice.
func (d *Document) PageImages(pageIndex int) ([][]byte, error) {
	if pageIndex < 0 || pageIndex >= d.ctx.PageCount {
		return nil, fmt.Errorf("page index %d out of range (0-%d)", pageIndex, d.ctx.PageCount-1)
	}
	imgs, err := pdfcpu.ExtractPageImages(d.ctx, pageIndex+1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images of page %d: %w", pageIndex, err)
	}

	var out [][]byte
	for _, img := range imgs {
		if img.Reader == nil {
			continue
		}
		data, err := io.ReadAll(img.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s on page %d: %w", img.Name, pageIndex, err)
		}
		if len(data) > 0 {
			out = append(out, data)
		}
	}
	return out, nil
}

// HasImages reports whether any page carries an image XObject. Useful for
// deciding whether OCR is worth attempting at all.
func (d *Document) HasImages() bool {
	for pageNr := 1; pageNr <= d.ctx.PageCount; pageNr++ {
		if len(pdfcpu.ImageObjNrs(d.ctx, pageNr)) > 0 {
			return true
		}
	}
	return false
}
