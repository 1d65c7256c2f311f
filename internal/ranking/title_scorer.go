package ranking

import (
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

// TitleScorer scores title and alternate-title fields. Rules are tried in
// priority order and the first that applies decides the value's score:
// exact equality, containment, then edit-distance proximity.
type TitleScorer struct {
	config *RankingConfig
}

// NewTitleScorer creates a new TitleScorer with the given config.
func NewTitleScorer(config *RankingConfig) *TitleScorer {
	return &TitleScorer{config: config}
}

// Name returns the scorer name.
func (s *TitleScorer) Name() string {
	return "title"
}

// Score returns the best score over all values.
func (s *TitleScorer) Score(term Variant, values []string) (float64, models.MatchType) {
	best, bestType := 0.0, models.MatchNone
	for _, v := range values {
		score, mt := s.scoreValue(term, v)
		if score > best || (score == best && mt > bestType) {
			best, bestType = score, mt
		}
	}
	return best, bestType
}

func (s *TitleScorer) scoreValue(term Variant, value string) (float64, models.MatchType) {
	if term.Text == "" || value == "" {
		return 0, models.MatchNone
	}
	if value == term.Text {
		return s.config.ExactScore, models.MatchExact
	}
	if score := s.scoreContainment(term, value); score > 0 {
		return score, models.MatchPartial
	}
	if score := s.scoreFuzzy(term, value); score > 0 {
		return score, models.MatchFuzzy
	}
	return 0, models.MatchNone
}

// scoreContainment scores the value containing the query (scaled by how much
// of the value the query covers), the query containing the value, and every
// query word appearing in the value in any order.
func (s *TitleScorer) scoreContainment(term Variant, value string) float64 {
	queryLen := float64(utf8.RuneCountInString(term.Text))
	valueLen := float64(utf8.RuneCountInString(value))

	score := 0.0
	switch {
	case strings.Contains(value, term.Text):
		score = max(s.config.PartialFloor, queryLen/valueLen)
	case int(valueLen) >= s.config.MinContainLength && strings.Contains(term.Text, value):
		score = max(s.config.PartialFloor, valueLen/queryLen) * s.config.ReverseContainFactor
	}

	if len(term.Tokens) > 1 && allTokensPresent(term.Tokens, keyword.Tokenize(value)) {
		score = max(score, s.config.AllWordsScore)
	}
	return score
}

// scoreFuzzy compares the query with the whole value and with every run of
// value words as long as the query, so "nruto" still finds "naruto shippuden".
func (s *TitleScorer) scoreFuzzy(term Variant, value string) float64 {
	if s.config.MaxFuzzyDistance <= 0 || utf8.RuneCountInString(term.Text) < s.config.MinFuzzyLength {
		return 0
	}

	best := 0.0
	check := func(candidate string) {
		if keyword.WithinDistance(term.Text, candidate, s.config.MaxFuzzyDistance) {
			best = max(best, keyword.Similarity(term.Text, candidate)*s.config.FuzzyFactor)
		}
	}

	check(value)
	words := keyword.Tokenize(value)
	n := len(term.Tokens)
	if n > 0 && n < len(words) {
		for i := 0; i+n <= len(words); i++ {
			check(strings.Join(words[i:i+n], " "))
		}
	}
	return best
}

// allTokensPresent reports whether every query token is one of the words.
func allTokensPresent(tokens, words []string) bool {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, t := range tokens {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
