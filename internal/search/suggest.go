package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

const (
	defaultSuggestLimit = 10
	didYouMeanMinLength = 3
	didYouMeanMinSim    = 0.5
)

// Suggest returns autocomplete strings for a partial query: synonym terms
// containing it in table order, then titles of items rated at least the
// profile's suggest threshold containing it in catalog order. Entries are
// deduplicated by normalized form.
func (e *Engine) Suggest(partial string, items []models.CatalogItem, limit int) []string {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	p := keyword.Normalize(partial)
	if p == "" {
		return []string{}
	}

	out := make([]string, 0, limit)
	seen := make(map[string]bool)
	add := func(display, normalized string) bool {
		if seen[normalized] {
			return len(out) < limit
		}
		seen[normalized] = true
		out = append(out, display)
		return len(out) < limit
	}

	for _, term := range e.profile.Synonyms.Terms() {
		if strings.Contains(term, p) && !add(term, term) {
			return out
		}
	}
	minQuality := e.ranker.GetConfig().SuggestMinQuality
	for _, item := range items {
		if models.IsNil(item) || item.Quality() < minQuality {
			continue
		}
		title := keyword.Normalize(item.ItemTitle())
		if strings.Contains(title, p) && !add(item.ItemTitle(), title) {
			return out
		}
	}
	return out
}

// DidYouMean proposes up to n catalog titles close to a query that found
// nothing: subsequence matches ranked by fuzzysearch first, then titles
// within edit-distance similarity of the query or one of its word windows.
func DidYouMean(query string, items []models.CatalogItem, n int) []string {
	q := keyword.Normalize(query)
	if n <= 0 || utf8.RuneCountInString(q) < didYouMeanMinLength {
		return nil
	}

	var titles, normalized []string
	seen := make(map[string]bool)
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		norm := keyword.Normalize(item.ItemTitle())
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		titles = append(titles, item.ItemTitle())
		normalized = append(normalized, norm)
	}

	out := make([]string, 0, n)
	picked := make(map[int]bool)
	ranks := fuzzy.RankFindNormalizedFold(q, normalized)
	sort.Sort(ranks)
	for _, r := range ranks {
		if len(out) == n {
			return out
		}
		picked[r.OriginalIndex] = true
		out = append(out, titles[r.OriginalIndex])
	}

	type near struct {
		idx int
		sim float64
	}
	var nearby []near
	for i, norm := range normalized {
		if picked[i] {
			continue
		}
		if sim := bestSimilarity(q, norm); sim >= didYouMeanMinSim {
			nearby = append(nearby, near{i, sim})
		}
	}
	sort.SliceStable(nearby, func(a, b int) bool { return nearby[a].sim > nearby[b].sim })
	for _, c := range nearby {
		if len(out) == n {
			break
		}
		out = append(out, titles[c.idx])
	}
	return out
}

// bestSimilarity compares q with the whole title and with every run of the
// title's words as long as q.
func bestSimilarity(q, title string) float64 {
	best := keyword.Similarity(q, title)
	qWords := len(keyword.Tokenize(q))
	words := keyword.Tokenize(title)
	for i := 0; i+qWords <= len(words); i++ {
		if sim := keyword.Similarity(q, strings.Join(words[i:i+qWords], " ")); sim > best {
			best = sim
		}
	}
	return best
}
