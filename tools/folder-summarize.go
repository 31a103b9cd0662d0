package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/internal/pipeline"
	"github.com/docfold/pdf-digest/internal/storage"
	"github.com/docfold/pdf-digest/models"
)

// Setting keys for values remembered between runs.
const (
	settingDefaultInstruction = "default_instruction"
	settingDefaultOCRLanguage = "default_ocr_language"
)

type FolderSummarizeQuery struct {
	Folder        string `json:"folder"`
	PageRange     string `json:"page_range,omitempty"`
	AllPages      bool   `json:"all_pages,omitempty"`
	OCR           bool   `json:"ocr,omitempty"`
	OCRLanguage   string `json:"ocr_language,omitempty"`
	Instruction   string `json:"instruction,omitempty"`
	MaxChunkChars int    `json:"max_chunk_chars,omitempty"`
}

type DocumentResult struct {
	Document   string `json:"document"`
	DocumentID string `json:"document_id,omitempty"`
	Summary    string `json:"summary,omitempty"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

type FolderSummarizeResponse struct {
	Results   []DocumentResult `json:"results"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	// BatchError is set when the run stopped early, e.g. on bad credentials.
	BatchError string `json:"batch_error,omitempty"`
	// RecentFolders lists previously summarized folders, most recent first.
	RecentFolders []string `json:"recent_folders,omitempty"`
}

func FolderSummarizeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[FolderSummarizeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-digest.folder-summarize",
		Description: "Summarize every PDF in a folder, with optional OCR over a page selection",
		InputSchema: inputschema,
	}
}

func FolderSummarizeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query FolderSummarizeQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *FolderSummarizeResponse, error) {
	orchestrator, err := buildOrchestrator(log)
	if err != nil {
		return nil, nil, err
	}

	applyStoredDefaults(ctx, store, log, &query)

	opts := pipeline.Options{
		Folder:        query.Folder,
		PageRange:     query.PageRange,
		AllPages:      query.AllPages,
		OCREnabled:    query.OCR,
		OCRLanguage:   query.OCRLanguage,
		Instruction:   query.Instruction,
		MaxChunkChars: query.MaxChunkChars,
	}

	results, runErr := orchestrator.Run(ctx, opts)
	if runErr != nil && len(results) == 0 {
		return nil, nil, runErr
	}

	rememberSettings(ctx, store, log, query)

	response := &FolderSummarizeResponse{}
	if runErr != nil {
		response.BatchError = runErr.Error()
	}

	for _, res := range results {
		docResult := DocumentResult{Document: res.Document}
		if res.Failed() {
			docResult.Error = res.ErrText
			response.Failed++
		} else {
			docResult.Summary = res.Summary.Summary
			docResult.ChunkCount = res.Summary.ChunkCount
			docResult.DocumentID = persistSummary(ctx, store, log, query, res)
			response.Succeeded++
		}
		response.Results = append(response.Results, docResult)
	}

	folders, err := store.RecentFolders(ctx)
	if err != nil {
		log.Warn("Failed to list recent folders: %v", err)
	}
	response.RecentFolders = folders

	return nil, response, nil
}

// applyStoredDefaults fills query fields the caller omitted from the
// settings remembered from earlier runs.
func applyStoredDefaults(ctx context.Context, store storage.Store, log logger.Logger, query *FolderSummarizeQuery) {
	if query.Instruction == "" {
		value, err := store.GetSetting(ctx, settingDefaultInstruction)
		if err != nil {
			log.Warn("Failed to read stored instruction: %v", err)
		} else {
			query.Instruction = value
		}
	}
	if query.OCRLanguage == "" {
		value, err := store.GetSetting(ctx, settingDefaultOCRLanguage)
		if err != nil {
			log.Warn("Failed to read stored OCR language: %v", err)
		} else {
			query.OCRLanguage = value
		}
	}
}

// rememberSettings persists the values of this run as defaults for the
// next one, alongside the folder in the recent list.
func rememberSettings(ctx context.Context, store storage.Store, log logger.Logger, query FolderSummarizeQuery) {
	if err := store.AddRecentFolder(ctx, query.Folder); err != nil {
		log.Warn("Failed to record recent folder: %v", err)
	}
	if query.Instruction != "" {
		if err := store.SetSetting(ctx, settingDefaultInstruction, query.Instruction); err != nil {
			log.Warn("Failed to store instruction: %v", err)
		}
	}
	if query.OCRLanguage != "" {
		if err := store.SetSetting(ctx, settingDefaultOCRLanguage, query.OCRLanguage); err != nil {
			log.Warn("Failed to store OCR language: %v", err)
		}
	}
}

// persistSummary stores one successful summary keyed by a content hash of
// the bytes the pipeline processed. Persistence failures are logged, not
// fatal: the summary is still returned to the caller.
func persistSummary(ctx context.Context, store storage.Store, log logger.Logger, query FolderSummarizeQuery, res models.ProcessingResult) string {
	docID := storage.DocumentID(nil, res.Data)
	record := &models.SummaryRecord{
		DocumentID:  docID,
		Document:    res.Document,
		Instruction: query.Instruction,
		Summary:     res.Summary.Summary,
		ChunkCount:  res.Summary.ChunkCount,
	}
	if err := store.SaveSummary(ctx, record); err != nil {
		log.Warn("Failed to persist summary for %s: %v", res.Document, err)
		return ""
	}
	return docID
}
