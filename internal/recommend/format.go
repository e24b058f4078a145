// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// FormatTable writes recommendations as a human-readable table to w,
// followed by the summary.
func FormatTable(out types.SearchOutcome, w io.Writer) {
	if len(out.Recommendations) == 0 {
		fmt.Fprintln(w, "No related papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n", "Rank", "Title", "Authors", "Year", "Paper ID")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, r := range out.Recommendations {
		year := ""
		if r.Year != nil {
			year = fmt.Sprintf("%d", *r.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %s\n",
			i+1, truncate(r.Title, 60), formatAuthors(r.Authors), year, r.PaperID)
	}

	fmt.Fprintf(w, "\n%d recommendations", len(out.Recommendations))
	if out.SearchID != "" {
		fmt.Fprintf(w, " (saved as %s)", out.SearchID)
	}
	fmt.Fprintln(w)
	if out.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", out.Summary)
	}
}

// FormatJSON writes the outcome as indented JSON to w.
func FormatJSON(out types.SearchOutcome, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatAuthors(authors []types.Author) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0].Name, 20)
	default:
		return truncate(authors[0].Name, 14) + " et al."
	}
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
