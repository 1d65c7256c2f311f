package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/fandex/internal/models"
)

// EmptyQueryMode selects what a blank query returns.
type EmptyQueryMode string

const (
	// EmptyQueryAll returns the catalog in its original order with a uniform top score.
	EmptyQueryAll EmptyQueryMode = "all"
	// EmptyQueryNone returns no results.
	EmptyQueryNone EmptyQueryMode = "none"
)

// ParseEmptyQueryMode parses "all" or "none". Unknown values map to EmptyQueryAll.
func ParseEmptyQueryMode(s string) EmptyQueryMode {
	if strings.EqualFold(strings.TrimSpace(s), string(EmptyQueryNone)) {
		return EmptyQueryNone
	}
	return EmptyQueryAll
}

// Ranker turns field scores into an ordered, capped result list.
type Ranker struct {
	config       *RankingConfig
	scorer       *FieldScorer
	emptyMode    EmptyQueryMode
	defaultLimit int
	maxLimit     int
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:       config,
		scorer:       NewFieldScorer(config),
		emptyMode:    EmptyQueryAll,
		defaultLimit: 20,
		maxLimit:     50,
	}
}

// WithEmptyQueryMode sets what a blank query returns.
func (r *Ranker) WithEmptyQueryMode(mode EmptyQueryMode) *Ranker {
	r.emptyMode = mode
	return r
}

// WithLimits sets the default and maximum result counts. Non-positive values are ignored.
func (r *Ranker) WithLimits(defaultLimit, maxLimit int) *Ranker {
	if defaultLimit > 0 {
		r.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		r.maxLimit = maxLimit
	}
	if r.defaultLimit > r.maxLimit {
		r.defaultLimit = r.maxLimit
	}
	return r
}

// ClampLimit maps a requested limit into [1, max], using the default when unset.
func (r *Ranker) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	return min(limit, r.maxLimit)
}

// RankOptions are per-call overrides.
type RankOptions struct {
	Limit    int
	MinScore float64 // the configured threshold applies when zero
}

func (r *Ranker) minScore(opts RankOptions) float64 {
	if opts.MinScore > 0 {
		return opts.MinScore
	}
	return r.config.MinScore
}

// Rank scores every item against q and returns the results above the
// threshold, best first, capped to the limit. Nil items are skipped.
func (r *Ranker) Rank(q *AnalyzedQuery, items []models.CatalogItem, opts RankOptions) []*models.SearchResult {
	results, _ := r.RankWithTotal(q, items, opts)
	return results
}

// RankWithTotal is Rank that also reports how many results cleared the
// threshold before the limit was applied.
func (r *Ranker) RankWithTotal(q *AnalyzedQuery, items []models.CatalogItem, opts RankOptions) ([]*models.SearchResult, int) {
	limit := r.ClampLimit(opts.Limit)
	if q.IsEmpty() {
		if r.emptyMode == EmptyQueryNone {
			return []*models.SearchResult{}, 0
		}
		return r.rankEmpty(items, limit), countItems(items)
	}
	return r.FinalizeWithTotal(r.ScoreAll(q, items), r.minScore(opts), limit)
}

func countItems(items []models.CatalogItem) int {
	n := 0
	for _, item := range items {
		if !models.IsNil(item) {
			n++
		}
	}
	return n
}

// ScoreAll scores every non-nil item in catalog order without filtering,
// sorting or capping. Items that match nothing get a zero score.
func (r *Ranker) ScoreAll(q *AnalyzedQuery, items []models.CatalogItem) []*models.SearchResult {
	results := make([]*models.SearchResult, 0, len(items))
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		breakdown := r.scorer.ScoreItem(q, item)
		results = append(results, &models.SearchResult{
			Item:          item,
			Score:         breakdown.FinalScore,
			MatchType:     breakdown.MatchType,
			MatchedFields: breakdown.MatchedFields,
		})
	}
	return results
}

// Finalize applies the threshold, sorts, caps and assigns ranks.
// results must be in catalog order for ties to resolve deterministically.
func (r *Ranker) Finalize(results []*models.SearchResult, minScore float64, limit int) []*models.SearchResult {
	results, _ = r.FinalizeWithTotal(results, minScore, limit)
	return results
}

// FinalizeWithTotal is Finalize that also returns the pre-cap count.
func (r *Ranker) FinalizeWithTotal(results []*models.SearchResult, minScore float64, limit int) ([]*models.SearchResult, int) {
	results = FilterByMinScore(results, minScore)
	total := len(results)
	SortResults(results)
	results = TopN(results, limit)
	AssignRanks(results)
	return results, total
}

func (r *Ranker) rankEmpty(items []models.CatalogItem, limit int) []*models.SearchResult {
	if r.emptyMode == EmptyQueryNone {
		return []*models.SearchResult{}
	}
	results := make([]*models.SearchResult, 0, min(len(items), limit))
	for _, item := range items {
		if models.IsNil(item) {
			continue
		}
		if len(results) == limit {
			break
		}
		results = append(results, &models.SearchResult{
			Item:      item,
			Score:     r.config.ExactScore,
			MatchType: models.MatchExact,
		})
	}
	AssignRanks(results)
	return results
}

// Explain returns the detailed scoring of a single item.
func (r *Ranker) Explain(q *AnalyzedQuery, item models.CatalogItem) *ScoreBreakdown {
	if models.IsNil(item) {
		return &ScoreBreakdown{}
	}
	return r.scorer.ScoreItem(q, item)
}

// GetConfig returns the ranking configuration.
func (r *Ranker) GetConfig() *RankingConfig {
	return r.config
}

// FilterByMinScore drops results scoring below minScore, preserving order.
func FilterByMinScore(results []*models.SearchResult, minScore float64) []*models.SearchResult {
	filtered := make([]*models.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Score > 0 && r.Score >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// SortResults orders by score descending, then item quality descending.
// The sort is stable, so remaining ties keep their incoming order.
func SortResults(results []*models.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.Quality() > results[j].Item.Quality()
	})
}

// TopN returns the top N results.
func TopN(results []*models.SearchResult, n int) []*models.SearchResult {
	if n < 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// AssignRanks numbers results from 1 in their current order.
func AssignRanks(results []*models.SearchResult) {
	for i := range results {
		results[i].Rank = i + 1
	}
}
