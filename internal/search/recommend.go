package search

import (
	"math"
	"sort"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/ranking"
)

const defaultRecommendLimit = 10

// Recommendation is an item similar to the seed, with its similarity score.
type Recommendation struct {
	Item  models.CatalogItem `json:"item"`
	Score float64            `json:"score"`
}

// Recommend returns up to limit items similar to item, most similar first.
// The item itself (by id) and nil entries are excluded, as are items that
// share nothing with it.
func (e *Engine) Recommend(item models.CatalogItem, items []models.CatalogItem, limit int) []*Recommendation {
	if models.IsNil(item) {
		return []*Recommendation{}
	}
	if limit <= 0 {
		limit = defaultRecommendLimit
	}
	cfg := e.ranker.GetConfig()
	seed := newTraits(item)

	recs := make([]*Recommendation, 0, len(items))
	for _, other := range items {
		if models.IsNil(other) || other.ItemID() == item.ItemID() {
			continue
		}
		if score := similarity(cfg, seed, newTraits(other)); score > 0 {
			recs = append(recs, &Recommendation{Item: other, Score: score})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// traits is the normalized view of an item's capabilities.
type traits struct {
	genres   map[string]bool
	tags     map[string]bool
	creators map[string]bool
	rating   float64
	year     int
}

func newTraits(item models.CatalogItem) traits {
	t := traits{rating: item.Quality()}
	if g, ok := item.(models.HasGenres); ok {
		t.genres = normalizedSet(g.ItemGenres())
	}
	if tg, ok := item.(models.HasTags); ok {
		t.tags = normalizedSet(tg.ItemTags())
	}
	if c, ok := item.(models.HasCreators); ok {
		t.creators = normalizedSet(c.ItemCreators())
	}
	if y, ok := item.(models.HasYear); ok {
		t.year = y.ItemYear()
	}
	return t
}

func similarity(cfg *ranking.RankingConfig, a, b traits) float64 {
	score := cfg.GenreWeight*float64(sharedCount(a.genres, b.genres)) +
		cfg.TagWeight*float64(sharedCount(a.tags, b.tags))
	if sharedCount(a.creators, b.creators) > 0 {
		score += cfg.CreatorWeight
	}
	if a.rating > 0 && b.rating > 0 {
		score += cfg.RatingWeight * decay(math.Abs(a.rating-b.rating), cfg.RatingSpan)
	}
	if a.year > 0 && b.year > 0 {
		score += cfg.RecencyWeight * decay(math.Abs(float64(a.year-b.year)), cfg.RecencySpan)
	}
	return score
}

// decay is 1 at distance 0, falling linearly to 0 at span.
func decay(distance, span float64) float64 {
	if span <= 0 {
		return 0
	}
	return math.Max(0, 1-distance/span)
}

func sharedCount(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

func normalizedSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if n := keyword.Normalize(v); n != "" {
			set[n] = true
		}
	}
	return set
}
