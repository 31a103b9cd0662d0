package documents

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/docfold/pdf-digest/models"
)

func TestDetectDocumentType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{
			name:     "PDF document",
			data:     []byte("%PDF-1.4\nsome pdf content"),
			expected: "pdf",
		},
		{
			name:     "HTML with DOCTYPE",
			data:     []byte("<!DOCTYPE html><html><body>test</body></html>"),
			expected: "html",
		},
		{
			name:     "HTML with lowercase DOCTYPE",
			data:     []byte("<!doctype html><html><body>test</body></html>"),
			expected: "html",
		},
		{
			name:     "HTML with whitespace",
			data:     []byte("  \n  <!DOCTYPE html><html><body>test</body></html>"),
			expected: "html",
		},
		{
			name:     "ZIP file",
			data:     []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00},
			expected: "zip",
		},
		{
			name:     "Plain text",
			data:     []byte("This is just plain text content"),
			expected: "txt",
		},
		{
			name:     "Binary data",
			data:     []byte{0x00, 0x01, 0x02, 0xFF, 0xFE},
			expected: "unknown",
		},
		{
			name:     "Empty data",
			data:     []byte{},
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectDocumentType(tt.data)
			if result != tt.expected {
				t.Errorf("DetectDocumentType() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestIsLikelyText(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{
			name:     "Plain text",
			data:     []byte("This is plain text with spaces and punctuation!"),
			expected: true,
		},
		{
			name:     "Binary with null byte",
			data:     []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x00, 0x57},
			expected: false,
		},
		{
			name:     "Mostly binary data",
			data:     []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD},
			expected: false,
		},
		{
			name:     "Empty data",
			data:     []byte{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isLikelyText(tt.data)
			if result != tt.expected {
				t.Errorf("isLikelyText() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetDataFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4\nfake pdf body"))
	}))
	defer srv.Close()

	data, err := GetData(context.Background(), models.SourceInfo{URL: srv.URL})
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if DetectDocumentType(data) != "pdf" {
		t.Error("GetData returned non-PDF data")
	}
}

func TestGetDataRejectsNonPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>not a pdf</body></html>"))
	}))
	defer srv.Close()

	if _, err := GetData(context.Background(), models.SourceInfo{URL: srv.URL}); err == nil {
		t.Error("GetData accepted an HTML response")
	}
}

func TestGetDataRejectsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := GetData(context.Background(), models.SourceInfo{URL: srv.URL}); err == nil {
		t.Error("GetData accepted a 404 response")
	}
}

func TestGetDataNoSource(t *testing.T) {
	if _, err := GetData(context.Background(), models.SourceInfo{}); err == nil {
		t.Error("GetData accepted an empty source")
	}
}
