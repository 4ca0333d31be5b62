package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/openrow/tabular/pkg/tabular/record"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertMintsUUID(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	doc := record.Document{"name": "ann"}
	uuid, err := db.Insert(ctx, "form1", doc)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if uuid == "" {
		t.Fatalf("Expected a minted uuid")
	}
	if doc[record.FieldUUID] != uuid {
		t.Errorf("Expected uuid stored on the document, got %v", doc[record.FieldUUID])
	}
	if doc[record.FieldSubmissionTime] == nil {
		t.Errorf("Expected a default submission time")
	}

	second, err := db.Insert(ctx, "form1", record.Document{"name": "bo"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if second == uuid {
		t.Errorf("UUIDs must be unique, got %q twice", uuid)
	}
}

func TestCountAndFetchScopedToForm(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, name := range []string{"a", "b"} {
		if _, err := db.Insert(ctx, "form1", record.Document{"name": name}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := db.Insert(ctx, "form2", record.Document{"name": "other"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	src := db.Submissions("form1")
	n, err := src.Count(ctx, "")
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v; want 2", n, err)
	}

	docs, err := src.Fetch(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(docs) != 2 || docs[0]["name"] != "a" || docs[1]["name"] != "b" {
		t.Errorf("Expected [a b] in insertion order, got %v", docs)
	}
}

func TestFetchWindowing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for _, name := range []string{"a", "b", "c", "d"} {
		if _, err := db.Insert(ctx, "form1", record.Document{"name": name}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	src := db.Submissions("form1")
	docs, err := src.Fetch(ctx, "", 1, 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(docs) != 2 || docs[0]["name"] != "b" || docs[1]["name"] != "c" {
		t.Errorf("Expected window [b c], got %v", docs)
	}
}

func TestFilterPredicates(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.Insert(ctx, "form1", record.Document{"name": "a", "region": "north"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if _, err := db.Insert(ctx, "form1", record.Document{"name": "b", "region": "south"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	src := db.Submissions("form1")
	n, err := src.Count(ctx, `{"region":"north"}`)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}

	docs, err := src.Fetch(ctx, `{"region":"north"}`, 0, 10)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(docs) != 1 || docs[0]["name"] != "a" {
		t.Errorf("Expected a, got %v", docs)
	}
}

func TestNestedRepeatsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	doc := record.Document{
		"respondent": "ann",
		"children": []any{
			map[string]any{"children/name": "bo", "children/age": 5},
		},
	}
	if _, err := db.Insert(ctx, "form1", doc); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	docs, err := db.Submissions("form1").Fetch(ctx, "", 0, 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	nested := record.NestedDocs(docs[0]["children"])
	if len(nested) != 1 || nested[0]["children/name"] != "bo" {
		t.Errorf("Expected nested occurrence to survive, got %v", docs[0]["children"])
	}
}
