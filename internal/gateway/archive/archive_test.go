package archive

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "project-1", []byte(`{"name":"x"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "project-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"name":"x"}` {
		t.Fatalf("snapshot mismatch: %s", got)
	}
	if _, err := s.Get(ctx, "project-404"); err == nil {
		t.Fatalf("missing snapshot must error")
	}
}

func TestMemoryStorePutRequiresID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), "  ", []byte("{}")); err == nil {
		t.Fatalf("blank record id must be rejected")
	}
}

func TestMemoryStoreSnapshotIsCopied(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	buf := []byte(`{"a":1}`)
	if err := s.Put(ctx, "case-1", buf); err != nil {
		t.Fatalf("put: %v", err)
	}
	buf[2] = 'z'
	got, err := s.Get(ctx, "case-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("stored snapshot aliased the caller's buffer: %s", got)
	}
}

func TestMemoryStoreListSorted(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"project-9", "case-2", "project-1"} {
		if err := s.Put(ctx, id, []byte("{}")); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	ids, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"case-2", "project-1", "project-9"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
