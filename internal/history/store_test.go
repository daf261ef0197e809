package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveFillsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	saved, err := s.Save(context.Background(), Entry{Assignor: "PT Alpha", Summary: "ok"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Fatal("ID not filled")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("timestamp not filled")
	}
}

func TestSaveThenGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := Entry{
		ID:              "fixed-id",
		CreatedAt:       time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		Assignor:        "PT Alpha",
		Address:         "Jl. Sudirman 1",
		Summary:         "Ringkasan analisis.",
		ClientSentiment: "Aman!",
		CandidateCount:  2,
		ResultJSON:      `{"outcome":"COMPLETE"}`,
	}
	if _, err := s.Save(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Get(context.Background(), "fixed-id")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("entry not found")
	}
	if got.Assignor != in.Assignor || got.Summary != in.Summary || got.ResultJSON != in.ResultJSON {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created_at = %s", got.CreatedAt)
	}
	if got.CandidateCount != 2 {
		t.Fatalf("candidate_count = %d", got.CandidateCount)
	}
}

func TestGetMissingEntry(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected not found")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Save(context.Background(), Entry{
			ID:        string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Assignor:  "PT Alpha",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.List(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].ID != "e" || entries[1].ID != "d" || entries[2].ID != "c" {
		t.Fatalf("order wrong: %s %s %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestSaveSameIDReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Save(ctx, Entry{ID: "x", Summary: "first"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, Entry{ID: "x", Summary: "second"}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get(ctx, "x")
	if err != nil || !ok {
		t.Fatalf("get: ok=%t err=%v", ok, err)
	}
	if got.Summary != "second" {
		t.Fatalf("summary = %q", got.Summary)
	}
	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Save(ctx, Entry{Assignor: "PT Alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("len = %d after clear", len(entries))
	}
}
