package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docfold/pdf-digest/internal/documents"
	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/internal/pipeline"
	"github.com/docfold/pdf-digest/internal/storage"
	"github.com/docfold/pdf-digest/models"
)

type PDFSummarizeQuery struct {
	ZoteroID      string `json:"zotero_id,omitempty"`
	URL           string `json:"url,omitempty"`
	RawData       []byte `json:"raw_data,omitempty"`
	PageRange     string `json:"page_range,omitempty"`
	AllPages      bool   `json:"all_pages,omitempty"`
	OCR           bool   `json:"ocr,omitempty"`
	OCRLanguage   string `json:"ocr_language,omitempty"`
	Instruction   string `json:"instruction,omitempty"`
	MaxChunkChars int    `json:"max_chunk_chars,omitempty"`
}

type PDFSummarizeResponse struct {
	DocumentID    string   `json:"document_id"`
	Document      string   `json:"document"`
	Summary       string   `json:"summary"`
	ChunkCount    int      `json:"chunk_count"`
	ResourcePaths []string `json:"resource_paths,omitempty"`
}

func PDFSummarizeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSummarizeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-digest.pdf-summarize",
		Description: "Summarize a single PDF from a URL, Zotero attachment, or raw bytes",
		InputSchema: inputschema,
	}
}

func PDFSummarizeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSummarizeQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *PDFSummarizeResponse, error) {
	sourceInfo := models.SourceInfo{ZoteroID: query.ZoteroID, URL: query.URL}

	var data models.PdfData
	var name string
	switch {
	case len(query.RawData) > 0:
		if docType := documents.DetectDocumentType(query.RawData); docType != "pdf" {
			return nil, nil, fmt.Errorf("raw data is %s, not pdf", docType)
		}
		data = models.PdfData(query.RawData)
		name = "document.pdf"
	case query.ZoteroID != "" || query.URL != "":
		var err error
		data, err = documents.GetData(ctx, sourceInfo)
		if err != nil {
			return nil, nil, err
		}
		name = sourceName(sourceInfo)
	default:
		return nil, nil, errors.New("one of zotero_id, url, or raw_data is required")
	}

	orchestrator, err := buildOrchestrator(log)
	if err != nil {
		return nil, nil, err
	}

	opts := pipeline.Options{
		PageRange:     query.PageRange,
		AllPages:      query.AllPages,
		OCREnabled:    query.OCR,
		OCRLanguage:   query.OCRLanguage,
		Instruction:   query.Instruction,
		MaxChunkChars: query.MaxChunkChars,
	}

	summary, err := orchestrator.ProcessData(ctx, name, data, opts)
	if err != nil {
		return nil, nil, err
	}

	docID := storage.DocumentID(&sourceInfo, data)
	record := &models.SummaryRecord{
		DocumentID:  docID,
		Document:    name,
		Instruction: query.Instruction,
		Summary:     summary.Summary,
		ChunkCount:  summary.ChunkCount,
	}
	if err := store.SaveSummary(ctx, record); err != nil {
		log.Warn("Failed to persist summary for %s: %v", name, err)
	}

	return nil, &PDFSummarizeResponse{
		DocumentID: docID,
		Document:   name,
		Summary:    summary.Summary,
		ChunkCount: summary.ChunkCount,
		ResourcePaths: []string{
			fmt.Sprintf("summary://%s", docID),
			fmt.Sprintf("summary://%s/text", docID),
		},
	}, nil
}

func sourceName(sourceInfo models.SourceInfo) string {
	if sourceInfo.ZoteroID != "" {
		return "zotero:" + sourceInfo.ZoteroID
	}
	return sourceInfo.URL
}
