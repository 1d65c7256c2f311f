package ranking

import (
	"unicode/utf8"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

// DescriptionScorer scores long free-text fields (synopsis, description).
// Only whole-word containment counts; descriptions are too long for the
// coverage ratio or edit distance to mean anything.
type DescriptionScorer struct {
	config *RankingConfig
}

// NewDescriptionScorer creates a new DescriptionScorer with the given config.
func NewDescriptionScorer(config *RankingConfig) *DescriptionScorer {
	return &DescriptionScorer{config: config}
}

// Name returns the scorer name.
func (s *DescriptionScorer) Name() string {
	return "description"
}

// Score returns the partial floor when any value contains the query.
func (s *DescriptionScorer) Score(term Variant, values []string) (float64, models.MatchType) {
	if utf8.RuneCountInString(term.Text) < s.config.MinContainLength {
		return 0, models.MatchNone
	}
	for _, v := range values {
		if keyword.ContainsTerm(v, term.Text) {
			return s.config.PartialFloor, models.MatchPartial
		}
	}
	return 0, models.MatchNone
}
