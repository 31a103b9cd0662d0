package tools

import (
	"errors"
	"os"

	"github.com/docfold/pdf-digest/internal/llm"
	"github.com/docfold/pdf-digest/internal/logger"
	"github.com/docfold/pdf-digest/internal/ocr"
	"github.com/docfold/pdf-digest/internal/pipeline"
)

// buildOrchestrator assembles the pipeline for a tool invocation: OpenAI
// client from the environment, the shared summarizer, and a tesseract
// engine for OCR requests.
func buildOrchestrator(log logger.Logger) (*pipeline.Orchestrator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	client := llm.NewOpenAIClient(apiKey, "")
	summarizer := llm.NewSummarizer(client, log, 0)
	engine := ocr.NewTesseract()

	return pipeline.NewOrchestrator(summarizer, engine, log), nil
}
