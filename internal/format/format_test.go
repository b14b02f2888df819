package format

import (
	"strings"
	"testing"
	"time"

	"github.com/jeanpaul/goalkeeper/internal/store"
)

func TestBulletize(t *testing.T) {
	for _, tc := range []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n ; ", ""},
		{"single clause", "ship v1", "• ship v1"},
		{"newlines", "ship v1\ngrow revenue", "• ship v1\n• grow revenue"},
		{"semicolons", "ship v1; grow revenue;hire", "• ship v1\n• grow revenue\n• hire"},
		{"mixed", "a; b\nc", "• a\n• b\n• c"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Bulletize(tc.in); got != tc.want {
				t.Errorf("Bulletize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func objectives(n int) []store.Objective {
	objs := make([]store.Objective, n)
	for i := range objs {
		objs[i] = store.Objective{
			ID:            i + 1,
			Author:        "freya",
			RawText:       "objective",
			FormattedText: "objective",
			CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return objs
}

func TestPaginateIndicator(t *testing.T) {
	objs := objectives(7)
	block := Paginate(objs[:3], 1, 3, 7)
	if !strings.Contains(block, "page 1 of 3") {
		t.Errorf("Paginate missing page indicator:\n%s", block)
	}
	if !strings.Contains(block, "#1") || !strings.Contains(block, "#3") {
		t.Errorf("Paginate missing objective ids:\n%s", block)
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	block := Paginate(nil, 4, 3, 7)
	if !strings.Contains(block, "out of range") {
		t.Errorf("Paginate past the last page should say so, got:\n%s", block)
	}
	if !strings.Contains(block, "of 3") {
		t.Errorf("out-of-range note should still show the page count:\n%s", block)
	}
}

func TestPaginateEmptyCollection(t *testing.T) {
	block := Paginate(nil, 1, 3, 0)
	if !strings.Contains(block, "No objectives yet") {
		t.Errorf("empty collection message missing:\n%s", block)
	}
}

func TestChunkSplitsLongBody(t *testing.T) {
	body := strings.Repeat("x", 5000)
	chunks := Chunk(body, 2000)
	if len(chunks) != 3 {
		t.Fatalf("Chunk produced %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 2000 {
			t.Errorf("chunk %d has %d runes, want <= 2000", i, len([]rune(c)))
		}
	}
	if strings.Join(chunks, "") != body {
		t.Error("concatenated chunks differ from the original body")
	}
}

func TestChunkShortBodyUntouched(t *testing.T) {
	chunks := Chunk("hello", 2000)
	if len(chunks) != 1 || chunks[0] != "hello" {
		t.Errorf("Chunk(short) = %v, want the body unchanged", chunks)
	}
}

func TestChunkPrefersNewlineBreaks(t *testing.T) {
	body := strings.Repeat("line\n", 10) // 50 runes
	chunks := Chunk(body, 12)
	for i, c := range chunks {
		if !strings.HasSuffix(c, "\n") {
			t.Errorf("chunk %d should end on a line boundary: %q", i, c)
		}
	}
	if strings.Join(chunks, "") != body {
		t.Error("concatenated chunks differ from the original body")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate(short) = %q, want unchanged", got)
	}
	got := Truncate(strings.Repeat("a", 50), 10)
	if len([]rune(got)) != 10 {
		t.Errorf("Truncate length = %d, want 10", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate should end with an ellipsis marker: %q", got)
	}
	// Deterministic
	if got2 := Truncate(strings.Repeat("a", 50), 10); got2 != got {
		t.Error("Truncate is not deterministic")
	}
}
