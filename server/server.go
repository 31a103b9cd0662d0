package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/internal/storage"
	"github.com/docfold/pdf-digest/resources"
	"github.com/docfold/pdf-digest/tools"
)

func CreateServer(log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "pdf-digest", Version: "v0.0.1"}, nil)

	store, err := initializeStorage(log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}

	summaryResourceHandler := resources.NewSummaryResourceHandler(store)

	// Register tools with storage and logger dependencies
	mcp.AddTool(server, tools.FolderSummarizeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.FolderSummarizeQuery) (*mcp.CallToolResult, *tools.FolderSummarizeResponse, error) {
		return tools.FolderSummarizeToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.PDFSummarizeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSummarizeQuery) (*mcp.CallToolResult, *tools.PDFSummarizeResponse, error) {
		return tools.PDFSummarizeToolHandler(ctx, req, query, store, log)
	})

	// Template for a stored summary record
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "summary://{documentId}",
		Name:        "document-summary",
		Description: "Stored summary record with instruction and chunk count",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return summaryResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	// Template for the bare summary text
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "summary://{documentId}/text",
		Name:        "document-summary-text",
		Description: "Summary text without the record metadata",
		MIMEType:    "text/plain",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return summaryResourceHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}

// initializeStorage creates and initializes the storage backend
func initializeStorage(log logger.Logger) (storage.Store, error) {
	// Determine database path
	dbPath := os.Getenv("PDF_DIGEST_DB_PATH")
	if dbPath == "" {
		// Default to ~/.pdf-digest/pdf-digest.db
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".pdf-digest")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "pdf-digest.db")
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}

	return store, nil
}
