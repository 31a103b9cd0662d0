// Package documents retrieves PDF data from remote sources for the
// single-document summarization path.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/docfold/pdf-digest/models"
)

// DetectDocumentType determines the type of document from the raw data
// by checking magic bytes/headers. The pipeline only processes PDFs; the
// other types exist so rejections can name what was actually fetched.
func DetectDocumentType(data []byte) string {
	if len(data) == 0 {
		return "unknown"
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "pdf"
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("<!DOCTYPE html")) ||
		bytes.HasPrefix(trimmed, []byte("<!doctype html")) ||
		bytes.HasPrefix(trimmed, []byte("<html")) ||
		bytes.HasPrefix(trimmed, []byte("<HTML")) {
		return "html"
	}

	// ZIP: PK header
	if len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B &&
		(data[2] == 0x03 || data[2] == 0x05 || data[2] == 0x07) {
		return "zip"
	}

	if isLikelyText(data) {
		return "txt"
	}

	return "unknown"
}

// isLikelyText checks if the data is likely plain text (no binary content)
func isLikelyText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sampleSize := min(len(data), 512)
	sample := data[:sampleSize]

	if bytes.Contains(sample, []byte{0}) {
		return false
	}

	printable := 0
	for _, b := range sample {
		if (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' {
			printable++
		}
	}

	return float64(printable)/float64(len(sample)) > 0.9
}

// GetData retrieves PDF data from a source and verifies it actually is a
// PDF before handing it to the pipeline
func GetData(ctx context.Context, sourceInfo models.SourceInfo) (models.PdfData, error) {
	var data []byte
	var err error

	if sourceInfo.ZoteroID != "" {
		zoteroAPIKey := os.Getenv("ZOTERO_API_KEY")
		libraryID := os.Getenv("ZOTERO_LIBRARY_ID")
		data, err = GetFromZotero(ctx, sourceInfo.ZoteroID, zoteroAPIKey, libraryID)
		if err != nil {
			return nil, err
		}
	} else if sourceInfo.URL != "" {
		data, err = GetFromURL(ctx, sourceInfo.URL)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, errors.New("no document source provided")
	}

	if len(data) == 0 {
		return nil, errors.New("no data retrieved")
	}

	if docType := DetectDocumentType(data); docType != "pdf" {
		return nil, fmt.Errorf("retrieved document is %s, not pdf", docType)
	}

	return models.PdfData(data), nil
}

// GetFromURL fetches document data from a URL
func GetFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// GetFromZotero fetches an attachment from a Zotero library
func GetFromZotero(ctx context.Context, zoteroID string, apiKey string, libraryID string) ([]byte, error) {
	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))
	data, err := client.File(ctx, zoteroID)
	if err != nil {
		return nil, err
	}
	return data, nil
}
