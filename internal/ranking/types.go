// Package ranking scores catalog items against analyzed queries and orders
// the results.
package ranking

import (
	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
)

// QueryType represents the shape of a search query.
type QueryType int

const (
	// QueryTypeEmpty is a blank query (after normalization).
	QueryTypeEmpty QueryType = iota
	// QueryTypeSingleWord is a single word query.
	QueryTypeSingleWord
	// QueryTypeMultiWord is a multi-word query.
	QueryTypeMultiWord
)

// String returns a string representation of the query type.
func (q QueryType) String() string {
	switch q {
	case QueryTypeEmpty:
		return "empty"
	case QueryTypeSingleWord:
		return "single_word"
	case QueryTypeMultiWord:
		return "multi_word"
	default:
		return "unknown"
	}
}

// Variant is one normalized query string an item is matched against.
type Variant struct {
	Text   string
	Tokens []string
	// Synonym is set for variants produced by synonym expansion.
	Synonym bool
	// Literal is set for the uncorrected query, kept when typo correction
	// changed it so a title spelled exactly as typed still matches exactly.
	Literal bool
}

// NewVariant builds a variant from normalized text.
func NewVariant(text string, synonym bool) Variant {
	return Variant{Text: text, Tokens: keyword.Tokenize(text), Synonym: synonym}
}

// AnalyzedQuery holds the normalized, corrected and expanded form of a query.
type AnalyzedQuery struct {
	// Original is the query as typed.
	Original string
	// Normalized is Original after normalization.
	Normalized string
	// Corrected is Normalized after typo correction.
	Corrected   string
	Corrections []keyword.TypoCorrection
	// Variants starts with Corrected, followed by synonym expansions and,
	// when a correction was made, the literal Normalized text.
	Variants  []Variant
	QueryType QueryType
}

// IsEmpty reports whether the query is blank after normalization.
func (q *AnalyzedQuery) IsEmpty() bool {
	return q == nil || q.Normalized == ""
}

// Expansions returns the corrected query followed by its synonym expansions.
func (q *AnalyzedQuery) Expansions() []string {
	if q == nil {
		return nil
	}
	out := make([]string, 0, len(q.Variants))
	for _, v := range q.Variants {
		if !v.Literal {
			out = append(out, v.Text)
		}
	}
	return out
}

// FieldMatch is the best match of one field against one variant.
type FieldMatch struct {
	Field     string
	Kind      models.FieldKind
	Variant   string
	Raw       float64 // tier score before weighting
	Score     float64
	MatchType models.MatchType
}

// better reports whether m outranks other: higher score, then higher tier.
func (m FieldMatch) better(other FieldMatch) bool {
	if m.Score != other.Score {
		return m.Score > other.Score
	}
	return m.MatchType > other.MatchType
}

// Scorer scores normalized field values against one variant and reports the
// tier that produced the score. A zero score means no match.
type Scorer interface {
	Name() string
	Score(term Variant, values []string) (float64, models.MatchType)
}

// ScoreBreakdown provides detailed scoring information for one item.
type ScoreBreakdown struct {
	ItemID string
	// Best is the winning field match across all variants.
	Best FieldMatch
	// Fields holds the best match per matched field, in field order.
	Fields        []FieldMatch
	MatchedFields []string
	FinalScore    float64
	MatchType     models.MatchType
}
