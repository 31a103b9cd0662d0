package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/server"
)

func main() {
	// Initialize logger with default configuration
	log, err := logger.NewLogger(logger.LogConfig{})
	if err != nil {
		// Fall back to stderr if logger initialization fails
		panic(err)
	}

	log.Info("Starting pdf-digest server")

	srv := server.CreateServer(log)
	err = srv.Run(context.Background(), &mcp.StdioTransport{})
	if err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
