// Package assemble merges native and OCR page text into one linear text
// stream per document.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/docfold/pdf-digest/models"
)

// Build concatenates page text in ascending page order into a single
// document text. For a page with both native and OCR text, native text is
// emitted first, followed by OCR text behind a visible delimiter so
// provenance stays distinguishable. Page headers are 1-based for human
// readability. A page that yields no text from either source contributes
// nothing, not even a delimiter.
func Build(pages []models.PageText) string {
	native := make(map[int]string)
	ocr := make(map[int]string)
	indexSet := make(map[int]bool)

	for _, p := range pages {
		indexSet[p.PageIndex] = true
		switch p.Source {
		case models.SourceOCR:
			ocr[p.PageIndex] = p.Text
		default:
			native[p.PageIndex] = p.Text
		}
	}

	indices := make([]int, 0, len(indexSet))
	for i := range indexSet {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	var sb strings.Builder
	for _, idx := range indices {
		nativeText := native[idx]
		ocrText := ocr[idx]
		if strings.TrimSpace(nativeText) == "" && strings.TrimSpace(ocrText) == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n", idx+1)
		if strings.TrimSpace(nativeText) != "" {
			sb.WriteString(nativeText)
			sb.WriteString("\n")
		}
		if strings.TrimSpace(ocrText) != "" {
			fmt.Fprintf(&sb, "\n[Image Text Extracted via OCR on Page %d]\n", idx+1)
			sb.WriteString(ocrText)
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
