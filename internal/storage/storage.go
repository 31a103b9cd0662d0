package storage

import (
	"context"

	"github.com/docfold/pdf-digest/models"
)

// Store defines the interface for persisting summaries and user settings
type Store interface {
	// SaveSummary stores a final summary, replacing any previous summary
	// with the same document ID
	SaveSummary(ctx context.Context, record *models.SummaryRecord) error

	// GetSummary retrieves a summary by document ID
	GetSummary(ctx context.Context, docID string) (*models.SummaryRecord, error)

	// ListSummaries returns all stored summaries, most recent first
	ListSummaries(ctx context.Context) ([]models.SummaryRecord, error)

	// DeleteSummary removes a summary by document ID
	DeleteSummary(ctx context.Context, docID string) error

	// GetSetting retrieves a setting value; missing keys return ""
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting stores a setting value, replacing any previous value
	SetSetting(ctx context.Context, key, value string) error

	// AddRecentFolder records a folder as most recently used
	AddRecentFolder(ctx context.Context, path string) error

	// RecentFolders returns up to five folders, most recent first
	RecentFolders(ctx context.Context) ([]string, error)

	// Close closes the database connection
	Close() error
}
