package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/docfold/pdf-digest/models"
)

// recentFolderLimit caps how many recently used folders are retained.
const recentFolderLimit = 5

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		id TEXT PRIMARY KEY,
		document TEXT,
		instruction TEXT,
		summary TEXT,
		chunk_count INTEGER,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	);

	CREATE TABLE IF NOT EXISTS recent_folders (
		path TEXT PRIMARY KEY,
		used_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveSummary stores a final summary, replacing any previous summary with
// the same document ID
func (s *SQLiteStore) SaveSummary(ctx context.Context, record *models.SummaryRecord) error {
	if record.DocumentID == "" {
		return fmt.Errorf("summary record has no document ID")
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO summaries (id, document, instruction, summary, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.DocumentID, record.Document, record.Instruction, record.Summary, record.ChunkCount, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert summary: %w", err)
	}

	return nil
}

// GetSummary retrieves a summary by document ID
func (s *SQLiteStore) GetSummary(ctx context.Context, docID string) (*models.SummaryRecord, error) {
	var record models.SummaryRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document, instruction, summary, chunk_count, created_at
		FROM summaries
		WHERE id = ?
	`, docID).Scan(&record.DocumentID, &record.Document, &record.Instruction,
		&record.Summary, &record.ChunkCount, &record.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("summary not found: %s", docID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}

	return &record, nil
}

// ListSummaries returns all stored summaries, most recent first
func (s *SQLiteStore) ListSummaries(ctx context.Context) ([]models.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, instruction, summary, chunk_count, created_at
		FROM summaries
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var records []models.SummaryRecord
	for rows.Next() {
		var record models.SummaryRecord
		if err := rows.Scan(&record.DocumentID, &record.Document, &record.Instruction,
			&record.Summary, &record.ChunkCount, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summaries: %w", err)
	}

	return records, nil
}

// DeleteSummary removes a summary by document ID
func (s *SQLiteStore) DeleteSummary(ctx context.Context, docID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("summary not found: %s", docID)
	}

	return nil
}

// GetSetting retrieves a setting value; missing keys return ""
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a setting value, replacing any previous value
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// AddRecentFolder records a folder as most recently used and trims the
// list to the newest five entries
func (s *SQLiteStore) AddRecentFolder(ctx context.Context, path string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO recent_folders (path, used_at) VALUES (?, ?)
	`, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert recent folder: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM recent_folders WHERE path NOT IN (
			SELECT path FROM recent_folders ORDER BY used_at DESC LIMIT ?
		)
	`, recentFolderLimit)
	if err != nil {
		return fmt.Errorf("failed to trim recent folders: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RecentFolders returns up to five folders, most recent first
func (s *SQLiteStore) RecentFolders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM recent_folders ORDER BY used_at DESC LIMIT ?
	`, recentFolderLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent folders: %w", err)
	}
	defer rows.Close()

	var folders []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan recent folder: %w", err)
		}
		folders = append(folders, path)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent folders: %w", err)
	}

	return folders, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DocumentID derives a stable document ID from the source information,
// falling back to a content hash of the PDF bytes
func DocumentID(sourceInfo *models.SourceInfo, data models.PdfData) string {
	if sourceInfo != nil {
		if sourceInfo.ZoteroID != "" {
			return "zotero_" + sourceInfo.ZoteroID
		}
		if sourceInfo.URL != "" {
			sum := sha256.Sum256([]byte(sourceInfo.URL))
			return fmt.Sprintf("url_%x", sum[:8])
		}
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("pdf_%x", sum[:8])
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
