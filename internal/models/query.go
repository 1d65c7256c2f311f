package models

import (
	"fmt"
	"slices"

	"github.com/hyperjump/fandex/internal/keyword"
)

// SearchQuery represents a search request with optional filters.
type SearchQuery struct {
	Query    string  `json:"query"`
	Domain   Domain  `json:"domain,omitempty"` // empty searches every domain
	Limit    int     `json:"limit,omitempty"`
	MinScore float64 `json:"min_score,omitempty"` // overrides the configured threshold when > 0
	Remote   bool    `json:"remote,omitempty"`    // request remote enhancement when configured
	Filters  Filters `json:"filters,omitempty"`
}

// Validate checks the query and clamps the limit into [1, maxLimit],
// using defaultLimit when unset. A blank query is valid.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	if q.Domain != "" {
		d, err := ParseDomain(string(q.Domain))
		if err != nil {
			return err
		}
		q.Domain = d
	}
	if q.MinScore < 0 || q.MinScore > 1 {
		return fmt.Errorf("min_score must be within [0, 1], got %v", q.MinScore)
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if maxLimit > 0 && q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q.Filters.Validate()
}

// Filters is a structured predicate applied to items before scoring.
// An item lacking the capability a set filter needs does not match.
type Filters struct {
	Genres     []string `json:"genres,omitempty"` // all must be present
	Tags       []string `json:"tags,omitempty"`   // all must be present
	Creator    string   `json:"creator,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	MinRating  float64  `json:"min_rating,omitempty"`
	YearFrom   int      `json:"year_from,omitempty"`
	YearTo     int      `json:"year_to,omitempty"`
}

// Validate rejects inverted ranges.
func (f Filters) Validate() error {
	if f.YearFrom > 0 && f.YearTo > 0 && f.YearFrom > f.YearTo {
		return fmt.Errorf("year_from %d is after year_to %d", f.YearFrom, f.YearTo)
	}
	return nil
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return len(f.Genres) == 0 && len(f.Tags) == 0 && f.Creator == "" && f.Difficulty == "" &&
		f.MinRating == 0 && f.YearFrom == 0 && f.YearTo == 0
}

// Match reports whether item satisfies every set filter. Text comparisons
// use normalized forms.
func (f Filters) Match(item CatalogItem) bool {
	if IsNil(item) {
		return false
	}
	if len(f.Genres) > 0 {
		g, ok := item.(HasGenres)
		if !ok || !containsAll(g.ItemGenres(), f.Genres) {
			return false
		}
	}
	if len(f.Tags) > 0 {
		t, ok := item.(HasTags)
		if !ok || !containsAll(t.ItemTags(), f.Tags) {
			return false
		}
	}
	if f.Creator != "" {
		c, ok := item.(HasCreators)
		if !ok || !containsAll(c.ItemCreators(), []string{f.Creator}) {
			return false
		}
	}
	if f.Difficulty != "" {
		d, ok := item.(HasDifficulty)
		if !ok || keyword.Normalize(d.ItemDifficulty()) != keyword.Normalize(f.Difficulty) {
			return false
		}
	}
	if f.MinRating > 0 && item.Quality() < f.MinRating {
		return false
	}
	if f.YearFrom > 0 || f.YearTo > 0 {
		y, ok := item.(HasYear)
		if !ok || y.ItemYear() == 0 {
			return false
		}
		if f.YearFrom > 0 && y.ItemYear() < f.YearFrom {
			return false
		}
		if f.YearTo > 0 && y.ItemYear() > f.YearTo {
			return false
		}
	}
	return true
}

// Apply returns the items that match, preserving order and skipping nil entries.
func (f Filters) Apply(items []CatalogItem) []CatalogItem {
	out := make([]CatalogItem, 0, len(items))
	for _, item := range items {
		if IsNil(item) {
			continue
		}
		if f.IsZero() || f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

func containsAll(have, want []string) bool {
	normalized := make([]string, len(have))
	for i, h := range have {
		normalized[i] = keyword.Normalize(h)
	}
	for _, w := range want {
		if !slices.Contains(normalized, keyword.Normalize(w)) {
			return false
		}
	}
	return true
}
