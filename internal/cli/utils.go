// Package cli provides output helpers for the fandex command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/ranking"
	"github.com/hyperjump/fandex/internal/search"
	"github.com/hyperjump/fandex/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// WriteSearchResults writes one domain's search response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

// WriteMultiSearchResults writes a response covering several domains.
func WriteMultiSearchResults(w io.Writer, response *models.MultiSearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	for _, d := range models.Domains() {
		if resp, ok := response.Domains[d]; ok {
			fmt.Fprintf(w, "\n=== %s ===", strings.ToUpper(string(d)))
			writeSearchResultsText(w, resp)
		}
	}
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms", response.Total, response.QueryTime)
	if response.Total > len(response.Results) {
		fmt.Fprintf(w, " (showing %d)", len(response.Results))
	}
	fmt.Fprintf(w, " [%s", response.Strategy)
	if response.Fallback {
		fmt.Fprint(w, ", fell back to local")
	}
	fmt.Fprintln(w, "]")
	if response.CorrectedQuery != "" {
		fmt.Fprintf(w, "Showing results for %q\n", response.CorrectedQuery)
	}
	fmt.Fprintln(w)

	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	if len(response.Results) == 0 && len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | Match: %s\n", result.Rank, result.Score, result.MatchType)
	fmt.Fprintf(w, "ID: %s\n", result.Item.ItemID())
	fmt.Fprintf(w, "Title: %s\n", result.Item.ItemTitle())
	if q := result.Item.Quality(); q > 0 {
		fmt.Fprintf(w, "Rating: %.1f\n", q)
	}
	if len(result.MatchedFields) > 0 {
		fmt.Fprintf(w, "Matched: %s\n", strings.Join(result.MatchedFields, ", "))
	}
	if result.Reasoning != "" {
		fmt.Fprintf(w, "Why: %s\n", result.Reasoning)
	}
	if desc := description(result.Item); desc != "" {
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(desc, 200))
	}
	fmt.Fprintln(w)
}

// description returns the first description-kind field value of an item.
func description(item models.CatalogItem) string {
	for _, f := range item.SearchFields() {
		if f.Kind == models.FieldDescription && len(f.Values) > 0 {
			return f.Values[0]
		}
	}
	return ""
}

// WriteSuggestions writes autocomplete suggestions, one per line in text mode.
func WriteSuggestions(w io.Writer, suggestions []string, format OutputFormat) error {
	if format == OutputJSON {
		if suggestions == nil {
			suggestions = []string{}
		}
		return writeJSON(w, suggestions)
	}
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No suggestions")
		return nil
	}
	for _, s := range suggestions {
		fmt.Fprintln(w, s)
	}
	return nil
}

// WriteSimilar writes recommendations for an item.
func WriteSimilar(w io.Writer, recs []*search.Recommendation, format OutputFormat) error {
	if format == OutputJSON {
		if recs == nil {
			recs = []*search.Recommendation{}
		}
		return writeJSON(w, recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(w, "No similar items")
		return nil
	}
	for i, rec := range recs {
		fmt.Fprintf(w, "%2d. %s (%s) score %.2f\n", i+1, rec.Item.ItemTitle(), rec.Item.ItemID(), rec.Score)
	}
	return nil
}

// WriteExplain writes how an item's score was reached.
func WriteExplain(w io.Writer, title string, b *ranking.ScoreBreakdown) {
	fmt.Fprintf(w, "  %s: %.4f (%s)\n", title, b.FinalScore, b.MatchType)
	for _, f := range b.Fields {
		fmt.Fprintf(w, "    %-16s raw %.3f  weighted %.3f  %-8s via %q\n",
			f.Field, f.Raw, f.Score, f.MatchType, f.Variant)
	}
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// ParseFormat maps a --json flag to an output format.
func ParseFormat(jsonOut bool) OutputFormat {
	if jsonOut {
		return OutputJSON
	}
	return OutputText
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
