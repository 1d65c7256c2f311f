package search

import (
	"context"
	"errors"

	"github.com/hyperjump/fandex/internal/models"
)

var (
	// ErrRemoteDisabled is returned when no enhancer is configured.
	ErrRemoteDisabled = errors.New("remote enhancement disabled")
	// ErrRateLimited is returned when the remote call budget is spent.
	ErrRateLimited = errors.New("remote enhancement rate limited")
	// ErrEmptyRemoteResponse is returned when the enhancer answers with no usable results.
	ErrEmptyRemoteResponse = errors.New("empty remote response")
	// ErrItemNotFound is returned when an item id is not in the catalog.
	ErrItemNotFound = errors.New("item not found")
)

// ItemSummary is the compact view of an item sent to a remote enhancer.
type ItemSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Genres   []string `json:"genres,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Creators []string `json:"creators,omitempty"`
}

// RemoteResult is one item judged by the enhancer.
type RemoteResult struct {
	ItemID         string   `json:"itemId"`
	RelevanceScore float64  `json:"relevanceScore"`
	MatchedFields  []string `json:"matchedFields"`
	Reasoning      string   `json:"reasoning"`
}

// RemoteResponse is the enhancer payload.
type RemoteResponse struct {
	Results []RemoteResult `json:"results"`
}

// Enhancer scores a catalog summary against a query out of process.
type Enhancer interface {
	Name() string
	Enhance(ctx context.Context, query string, summaries []ItemSummary) (*RemoteResponse, error)
}

// Summarize builds the remote view of items, skipping nil entries.
func Summarize(items []models.CatalogItem) []ItemSummary {
	out := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		s := ItemSummary{ID: item.ItemID(), Title: item.ItemTitle()}
		if g, ok := item.(models.HasGenres); ok {
			s.Genres = g.ItemGenres()
		}
		if t, ok := item.(models.HasTags); ok {
			s.Tags = t.ItemTags()
		}
		if c, ok := item.(models.HasCreators); ok {
			s.Creators = c.ItemCreators()
		}
		out = append(out, s)
	}
	return out
}
