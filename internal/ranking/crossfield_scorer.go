package ranking

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

// CrossFieldScorer scores list fields such as genres, tags, studio or cast.
// Any hit yields a fixed score: the query names the item's category or
// people rather than the item itself.
type CrossFieldScorer struct {
	config *RankingConfig
	name   string
	score  float64
}

// NewTaxonomyScorer scores genres, tags, categories and extension fields.
func NewTaxonomyScorer(config *RankingConfig) *CrossFieldScorer {
	return &CrossFieldScorer{config: config, name: "taxonomy", score: config.TaxonomyScore}
}

// NewPeopleScorer scores authors, studios and cast.
func NewPeopleScorer(config *RankingConfig) *CrossFieldScorer {
	return &CrossFieldScorer{config: config, name: "people", score: config.PeopleScore}
}

// Name returns the scorer name.
func (s *CrossFieldScorer) Name() string {
	return s.name
}

// Score matches when an entry equals the query, contains it, or is named
// inside it as a whole word.
func (s *CrossFieldScorer) Score(term Variant, values []string) (float64, models.MatchType) {
	if term.Text == "" {
		return 0, models.MatchNone
	}
	queryLong := utf8.RuneCountInString(term.Text) >= s.config.MinContainLength
	for _, v := range values {
		if v == "" {
			continue
		}
		entryLong := utf8.RuneCountInString(v) >= s.config.MinContainLength
		if v == term.Text ||
			(queryLong && strings.Contains(v, term.Text)) ||
			(entryLong && keyword.ContainsTerm(term.Text, v)) {
			return s.score, models.MatchSemantic
		}
	}
	return 0, models.MatchNone
}
