package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return New(path), path
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	payload, _ := json.Marshal(map[string]any{"project_name": "Riverside"})
	rec := Record{ID: "project-1", Type: "Project", Name: "  Riverside  ", Code: "rst-01", Payload: payload}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := s.Get(ctx, "project-1")
	if !ok {
		t.Fatalf("record not found")
	}
	if got.Type != "project" {
		t.Fatalf("type must be normalized lowercase: %q", got.Type)
	}
	if got.Name != "Riverside" {
		t.Fatalf("name must be trimmed: %q", got.Name)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("created_at must be stamped")
	}
}

func TestStore_PutRejectsDuplicateCode(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "project", Name: "A", Code: "DUP-1"}); err != nil {
		t.Fatalf("first put: %v", err)
	}
	err := s.Put(ctx, Record{ID: "b", Type: "project", Name: "B", Code: "dup-1"})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode for case-insensitive clash, got %v", err)
	}
}

func TestStore_SameCodeDifferentTypeAllowed(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "project", Name: "A", Code: "X-1"}); err != nil {
		t.Fatalf("project put: %v", err)
	}
	if err := s.Put(ctx, Record{ID: "b", Type: "case", Name: "B", Code: "X-1"}); err != nil {
		t.Fatalf("same code under a different type must be allowed: %v", err)
	}
}

func TestStore_EmptyCodesNeverClash(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "project", Name: "A"}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := s.Put(ctx, Record{ID: "b", Type: "project", Name: "B"}); err != nil {
		t.Fatalf("empty codes must not count as duplicates: %v", err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "case", Name: "Smith v Jones", Code: "2026-001"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	reopened := New(path)
	got, ok := reopened.Get(ctx, "a")
	if !ok || got.Name != "Smith v Jones" {
		t.Fatalf("record lost across reopen: ok=%v rec=%+v", ok, got)
	}
}

func TestStore_SaveLeavesNoTempFile(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "project", Name: "X"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("records file missing after put: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var rows []Record
	if err := json.Unmarshal(b, &rows); err != nil {
		t.Fatalf("records file must be whole valid JSON: %v", err)
	}
}

func TestStore_ListFiltersByType(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	for _, r := range []Record{
		{ID: "p1", Type: "project", Name: "P1"},
		{ID: "p2", Type: "project", Name: "P2"},
		{ID: "c1", Type: "case", Name: "C1"},
	} {
		if err := s.Put(ctx, r); err != nil {
			t.Fatalf("put %s: %v", r.ID, err)
		}
	}

	if got := s.List(ctx, "project"); len(got) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(got))
	}
	if got := s.List(ctx, ""); len(got) != 3 {
		t.Fatalf("empty type must list everything, got %d", len(got))
	}
}

func TestStore_CodeExists(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, Record{ID: "a", Type: "project", Name: "A", Code: "RST-01"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := s.CodeExists(ctx, "project", "rst-01")
	if err != nil || !ok {
		t.Fatalf("expected code to exist: ok=%v err=%v", ok, err)
	}
	ok, err = s.CodeExists(ctx, "case", "rst-01")
	if err != nil || ok {
		t.Fatalf("code must be scoped to its type: ok=%v err=%v", ok, err)
	}
	ok, err = s.CodeExists(ctx, "project", "")
	if err != nil || ok {
		t.Fatalf("empty code never exists: ok=%v err=%v", ok, err)
	}
}

func TestStore_NilReceiverIsSafe(t *testing.T) {
	var s *Store
	if _, ok := s.Get(context.Background(), "x"); ok {
		t.Fatalf("nil store must report not found")
	}
	if err := s.Put(context.Background(), Record{ID: "x"}); err == nil {
		t.Fatalf("nil store put must error")
	}
	if s.List(context.Background(), "") != nil {
		t.Fatalf("nil store list must be nil")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("nil store close: %v", err)
	}
}
