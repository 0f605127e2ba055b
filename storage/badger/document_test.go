package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

func testDocument(title, jurisdiction, practice string) *core.Document {
	doc := &core.Document{
		Title:    title,
		Summary:  "summary of " + title,
		Contents: "full text of " + title,
	}
	if jurisdiction != "" {
		doc.Jurisdiction = core.MustParsePath(jurisdiction)
	}
	if practice != "" {
		doc.PracticeArea = core.MustParsePath(practice)
	}
	return doc
}

func TestDocumentBasics(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := testDocument("Smith v. Jones", "united_states/texas", "litigation/commercial")
	added, err := repo.AddDocuments(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero content-based ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := repo.GetDocument(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Title != "Smith v. Jones" {
		t.Fatalf("Expected 'Smith v. Jones', got '%s'", retrieved.Title)
	}
	if retrieved.Jurisdiction.String() != "united_states/texas" {
		t.Fatalf("Unexpected jurisdiction: %s", retrieved.Jurisdiction.String())
	}
}

func TestDocumentContentBasedID(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	first := testDocument("Smith v. Jones", "united_states/texas", "")
	if _, err := repo.AddDocuments(ctx, first); err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Re-ingesting identical content must collapse onto the same ID.
	second := testDocument("Smith v. Jones", "united_states/ohio", "")
	if _, err := repo.AddDocuments(ctx, second); err != nil {
		t.Fatalf("Failed to re-add document: %v", err)
	}

	if first.Id != second.Id {
		t.Fatalf("Expected identical IDs, got %d and %d", first.Id, second.Id)
	}

	retrieved, err := repo.GetDocument(ctx, first.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Jurisdiction.String() != "united_states/ohio" {
		t.Fatalf("Expected re-ingestion to overwrite, got jurisdiction %s", retrieved.Jurisdiction.String())
	}

	// The old jurisdiction's index entries must be gone.
	agg, err := repo.AggregatePath(ctx, core.TaxonomyJurisdiction, core.MustParsePath("united_states/texas"))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if agg.Count != 0 {
		t.Fatalf("Expected stale index cleanup, found %d entries", agg.Count)
	}
}

func TestDocumentValidationRejected(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	doc := &core.Document{Title: "", Contents: "body"}
	if _, err := repo.AddDocuments(context.Background(), doc); !errors.Is(err, core.ErrInvalidDocument) {
		t.Fatalf("Expected ErrInvalidDocument, got %v", err)
	}
}

func TestDocumentUpdateAndDelete(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := testDocument("Roe v. Doe", "united_states/texas/austin", "litigation")
	if _, err := repo.AddDocuments(ctx, doc); err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Move the document to a different state; the path index must follow.
	doc.Jurisdiction = core.MustParsePath("united_states/ohio")
	if _, err := repo.UpdateDocuments(ctx, doc); err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	texas, err := repo.AggregatePath(ctx, core.TaxonomyJurisdiction, core.MustParsePath("united_states/texas"))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if texas.Count != 0 {
		t.Fatalf("Expected 0 documents under texas after move, got %d", texas.Count)
	}

	ohio, err := repo.AggregatePath(ctx, core.TaxonomyJurisdiction, core.MustParsePath("united_states/ohio"))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if ohio.Count != 1 {
		t.Fatalf("Expected 1 document under ohio, got %d", ohio.Count)
	}

	if err := repo.DeleteDocuments(ctx, doc.Id); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}
	if _, err := repo.GetDocument(ctx, doc.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteDocuments(ctx, doc.Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for repeated delete, got %v", err)
	}
}

func TestDocumentUpdateMissing(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	doc := testDocument("Nobody v. Nothing", "", "")
	doc.Id = 12345
	if _, err := repo.UpdateDocuments(context.Background(), doc); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDocumentDateRange(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	docs := []*core.Document{
		testDocument("Case 1", "united_states", ""),
		testDocument("Case 2", "united_states", ""),
		testDocument("Case 3", "united_states", ""),
	}
	docs[0].DecidedAt = now.Add(-48 * time.Hour)
	docs[1].DecidedAt = now.Add(-24 * time.Hour)
	docs[2].DecidedAt = now

	if _, err := repo.AddDocuments(ctx, docs...); err != nil {
		t.Fatalf("Failed to add documents: %v", err)
	}

	results, err := repo.GetDocumentsByDateRange(ctx, now.Add(-36*time.Hour), now.Add(-1*time.Hour))
	if err != nil {
		t.Fatalf("Failed to query date range: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 document in range, got %d", len(results))
	}
	if results[0].Title != "Case 2" {
		t.Fatalf("Expected 'Case 2', got '%s'", results[0].Title)
	}
}

func TestForEachDocument(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { repo.Close(); backend.Close() }()

	ctx := context.Background()

	docs := []*core.Document{
		testDocument("Case A", "united_states", ""),
		testDocument("Case B", "canada", ""),
	}
	if _, err := repo.AddDocuments(ctx, docs...); err != nil {
		t.Fatalf("Failed to add documents: %v", err)
	}

	count := 0
	err = repo.ForEachDocument(ctx, func(doc *core.Document) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("Iteration failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 documents, got %d", count)
	}

	// Errors from fn stop iteration.
	sentinel := errors.New("stop")
	err = repo.ForEachDocument(ctx, func(doc *core.Document) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Expected sentinel error, got %v", err)
	}
}
