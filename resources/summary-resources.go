package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docfold/pdf-digest/internal/storage"
)

// SummaryResourceHandler handles resource requests for stored summaries
type SummaryResourceHandler struct {
	store storage.Store
}

// NewSummaryResourceHandler creates a new summary resource handler
func NewSummaryResourceHandler(store storage.Store) *SummaryResourceHandler {
	return &SummaryResourceHandler{store: store}
}

// ListResources returns a list of available resources
func (h *SummaryResourceHandler) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	records, err := h.store.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	var resources []mcp.Resource
	for _, record := range records {
		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("summary://%s", record.DocumentID),
			Name:        fmt.Sprintf("%s (Summary)", record.Document),
			Description: fmt.Sprintf("Stored summary of %s", record.Document),
			MIMEType:    "application/json",
		})

		resources = append(resources, mcp.Resource{
			URI:         fmt.Sprintf("summary://%s/text", record.DocumentID),
			Name:        fmt.Sprintf("%s (Summary Text)", record.Document),
			Description: "Summary text without the record metadata",
			MIMEType:    "text/plain",
		})
	}

	return resources, nil
}

// ReadResource reads a specific resource by URI
func (h *SummaryResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	// Parse URI: summary://doc_id or summary://doc_id/text
	if !strings.HasPrefix(uri, "summary://") {
		return nil, fmt.Errorf("invalid URI scheme, expected summary://")
	}

	path := strings.TrimPrefix(uri, "summary://")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("invalid URI, missing document ID")
	}

	docID := parts[0]
	resourceType := ""
	if len(parts) > 1 {
		resourceType = parts[1]
	}

	record, err := h.store.GetSummary(ctx, docID)
	if err != nil {
		return nil, err
	}

	switch resourceType {
	case "":
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal summary: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	case "text":
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     record.Summary,
				},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}
}
