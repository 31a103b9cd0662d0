package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docfold/pdf-digest/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetSummary(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	record := &models.SummaryRecord{
		DocumentID:  "pdf_abc123",
		Document:    "paper.pdf",
		Instruction: "focus on methods",
		Summary:     "A summary of the paper.",
		ChunkCount:  3,
	}

	if err := store.SaveSummary(ctx, record); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	got, err := store.GetSummary(ctx, "pdf_abc123")
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	if got.Document != record.Document || got.Summary != record.Summary ||
		got.Instruction != record.Instruction || got.ChunkCount != record.ChunkCount {
		t.Errorf("Round trip mismatch: got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not populated")
	}
}

func TestSaveSummaryReplaces(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second"} {
		err := store.SaveSummary(ctx, &models.SummaryRecord{
			DocumentID: "pdf_dup",
			Document:   "doc.pdf",
			Summary:    text,
		})
		if err != nil {
			t.Fatalf("SaveSummary failed: %v", err)
		}
	}

	got, err := store.GetSummary(ctx, "pdf_dup")
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if got.Summary != "second" {
		t.Errorf("Summary = %q, want the replacement", got.Summary)
	}

	records, err := store.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("ListSummaries failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Got %d records after replace, want 1", len(records))
	}
}

func TestSaveSummaryRequiresID(t *testing.T) {
	store := testStore(t)
	err := store.SaveSummary(context.Background(), &models.SummaryRecord{Document: "doc.pdf"})
	if err == nil {
		t.Error("SaveSummary accepted a record without a document ID")
	}
}

func TestGetSummaryNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetSummary(context.Background(), "missing"); err == nil {
		t.Error("GetSummary succeeded for a missing ID")
	}
}

func TestDeleteSummary(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	record := &models.SummaryRecord{DocumentID: "pdf_del", Document: "doc.pdf", Summary: "s"}
	if err := store.SaveSummary(ctx, record); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	if err := store.DeleteSummary(ctx, "pdf_del"); err != nil {
		t.Fatalf("DeleteSummary failed: %v", err)
	}
	if _, err := store.GetSummary(ctx, "pdf_del"); err == nil {
		t.Error("Summary still present after delete")
	}
	if err := store.DeleteSummary(ctx, "pdf_del"); err == nil {
		t.Error("DeleteSummary succeeded for a missing ID")
	}
}

func TestSettings(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	value, err := store.GetSetting(ctx, "missing")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "" {
		t.Errorf("Missing setting = %q, want empty", value)
	}

	if err := store.SetSetting(ctx, "ocr_language", "deu"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := store.SetSetting(ctx, "ocr_language", "fra"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	value, err = store.GetSetting(ctx, "ocr_language")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "fra" {
		t.Errorf("Setting = %q, want fra", value)
	}
}

func TestRecentFolders(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if err := store.AddRecentFolder(ctx, fmt.Sprintf("/docs/folder%d", i)); err != nil {
			t.Fatalf("AddRecentFolder failed: %v", err)
		}
	}

	folders, err := store.RecentFolders(ctx)
	if err != nil {
		t.Fatalf("RecentFolders failed: %v", err)
	}

	if len(folders) != recentFolderLimit {
		t.Fatalf("Got %d folders, want %d", len(folders), recentFolderLimit)
	}
	if folders[0] != "/docs/folder6" {
		t.Errorf("Most recent folder = %s, want /docs/folder6", folders[0])
	}
	for _, f := range folders {
		if f == "/docs/folder0" || f == "/docs/folder1" {
			t.Errorf("Oldest folders should have been trimmed, found %s", f)
		}
	}
}

func TestAddRecentFolderMovesToFront(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, path := range []string{"/a", "/b", "/a"} {
		if err := store.AddRecentFolder(ctx, path); err != nil {
			t.Fatalf("AddRecentFolder failed: %v", err)
		}
	}

	folders, err := store.RecentFolders(ctx)
	if err != nil {
		t.Fatalf("RecentFolders failed: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("Got %d folders, want 2 (no duplicates)", len(folders))
	}
	if folders[0] != "/a" {
		t.Errorf("Re-added folder should be first, got %v", folders)
	}
}

func TestDocumentID(t *testing.T) {
	data := models.PdfData("%PDF-1.4 content")

	id := DocumentID(&models.SourceInfo{ZoteroID: "ABC123"}, data)
	if id != "zotero_ABC123" {
		t.Errorf("Zotero ID = %s", id)
	}

	id = DocumentID(&models.SourceInfo{URL: "https://example.com/a.pdf"}, data)
	if !strings.HasPrefix(id, "url_") {
		t.Errorf("URL ID = %s, want url_ prefix", id)
	}

	id = DocumentID(nil, data)
	if !strings.HasPrefix(id, "pdf_") {
		t.Errorf("Content ID = %s, want pdf_ prefix", id)
	}
	if id != DocumentID(nil, data) {
		t.Error("Content ID is not stable for identical bytes")
	}
	if id == DocumentID(nil, models.PdfData("other bytes")) {
		t.Error("Different content produced the same ID")
	}
}
