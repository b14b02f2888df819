// Package format shapes objective text for chat display. Everything here
// is pure: same input, same output, no I/O.
package format

import (
	"fmt"
	"strings"

	"github.com/jeanpaul/goalkeeper/internal/store"
)

// DefaultTransportLimit matches the Discord message size cap.
const DefaultTransportLimit = 2000

const ellipsis = "..."

// Bulletize splits text on newlines and semicolons and renders each
// clause as a bullet line. Empty input yields an empty string.
func Bulletize(text string) string {
	var lines []string
	for _, row := range strings.Split(text, "\n") {
		for _, clause := range strings.Split(row, ";") {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			lines = append(lines, "• "+clause)
		}
	}
	return strings.Join(lines, "\n")
}

// Paginate renders one page of objectives as a single display block with
// a "page X of Y" indicator. total is the full collection size, used to
// compute the page count and flag out-of-range requests.
func Paginate(objs []store.Objective, page, pageSize, total int) string {
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}
	if total == 0 {
		return "No objectives yet. Record one with set_objective."
	}

	pages := (total + pageSize - 1) / pageSize
	var b strings.Builder
	b.WriteString("📊 Team Objectives\n")

	if page > pages {
		fmt.Fprintf(&b, "Page %d is out of range (page %d of %d).", page, page, pages)
		return b.String()
	}

	for _, o := range objs {
		fmt.Fprintf(&b, "\n#%d — %s\n%s\n", o.ID, o.Author, Bulletize(o.FormattedText))
	}
	fmt.Fprintf(&b, "\npage %d of %d", page, pages)
	return b.String()
}

// Chunk splits text into pieces no longer than limit runes, preferring to
// break at a newline when one falls in the back half of the window. The
// concatenation of the chunks is always exactly the input.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultTransportLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

// Truncate cuts text to at most limit runes, marking the cut with an
// ellipsis. Used when a single message is required and chunking is not.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultTransportLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= len(ellipsis) {
		return string([]rune(ellipsis)[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
