package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "goals.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := tempStore(t)
	for i, text := range []string{"ship v1", "hire two engineers", "double signups"} {
		obj, err := s.Append("freya", text, "")
		if err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
		if obj.ID != i+1 {
			t.Errorf("Append(%q).ID = %d, want %d", text, obj.ID, i+1)
		}
	}
}

func TestAppendThenReloadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Append("odin", "ship v1", "1. Structured Objective: ship v1"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := s.Append("odin", "grow revenue", ""); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reloaded.Count() != 2 {
		t.Fatalf("Count after reload = %d, want 2", reloaded.Count())
	}
	objs := reloaded.List(1, 10)
	last := objs[len(objs)-1]
	if last.RawText != "grow revenue" {
		t.Errorf("last RawText = %q, want %q", last.RawText, "grow revenue")
	}
	if last.ID != 2 {
		t.Errorf("last ID = %d, want 2", last.ID)
	}
	// Formatting skipped falls back to the raw text
	if last.FormattedText != "grow revenue" {
		t.Errorf("last FormattedText = %q, want raw text", last.FormattedText)
	}
}

func TestAppendRejectsEmptyText(t *testing.T) {
	s := tempStore(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := s.Append("loki", text, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Append(%q) error = %v, want *ValidationError", text, err)
		}
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0 after rejected appends", s.Count())
	}
}

func TestListPaginationBoundaries(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 7; i++ {
		if _, err := s.Append("thor", "objective", ""); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	for _, tc := range []struct {
		page, want int
	}{
		{1, 3}, {2, 3}, {3, 1}, {4, 0}, {99, 0},
	} {
		got := s.List(tc.page, 3)
		if len(got) != tc.want {
			t.Errorf("List(page=%d, 3) returned %d items, want %d", tc.page, len(got), tc.want)
		}
	}
}

func TestListIsIdempotent(t *testing.T) {
	s := tempStore(t)
	for i := 0; i < 5; i++ {
		s.Append("sif", "objective", "")
	}
	first := s.List(2, 2)
	second := s.List(2, 2)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("List(2, 2) not idempotent: %v vs %v", first, second)
	}
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "goals.json"), nil)
	if err != nil {
		t.Fatalf("Open on missing file: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goals.json")
	bad := []byte(`{"objectives": [{"id": 1,`)
	if err := os.WriteFile(path, bad, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path, nil)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Open error = %v, want *CorruptError", err)
	}

	// The bad file must survive untouched for the operator.
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("corrupt file vanished: %v", readErr)
	}
	if string(data) != string(bad) {
		t.Errorf("corrupt file was modified: %q", data)
	}
}

func TestConcurrentAppends(t *testing.T) {
	const n = 10
	path := filepath.Join(t.TempDir(), "goals.json")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Append("team", "concurrent objective", ""); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Count() != n {
		t.Fatalf("Count = %d, want %d", s.Count(), n)
	}
	seen := make(map[int]bool)
	for _, o := range s.List(1, n) {
		seen[o.ID] = true
	}
	for id := 1; id <= n; id++ {
		if !seen[id] {
			t.Errorf("id %d missing: ids are not contiguous", id)
		}
	}

	// No lost updates on disk either
	reloaded, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Count() != n {
		t.Errorf("persisted count = %d, want %d", reloaded.Count(), n)
	}
}

func TestBackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "goals.json")
	s, err := Open(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Append("freya", "first objective", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append("freya", "second objective", ""); err != nil {
		t.Fatal(err)
	}

	backups, err := filepath.Glob(path + ".backup-*")
	if err != nil || len(backups) == 0 {
		t.Fatalf("no backup files found (err=%v)", err)
	}

	// The backup holds the collection as it was before the second append.
	data, err := os.ReadFile(backups[len(backups)-1])
	if err != nil {
		t.Fatal(err)
	}
	var c collection
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("backup is not valid JSON: %v", err)
	}
	if len(c.Objectives) != 1 || c.Objectives[0].RawText != "first objective" {
		t.Errorf("backup contents = %+v, want the pre-second-append state", c.Objectives)
	}
}
