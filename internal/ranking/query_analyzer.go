package ranking

import (
	"github.com/hyperjump/fandex/internal/keyword"
)

// QueryAnalyzer runs the query pipeline: normalize, correct typos, then
// expand synonyms. Both tables are optional and read-only, so one analyzer
// serves concurrent searches.
type QueryAnalyzer struct {
	typos    *keyword.TypoCorrector
	synonyms *keyword.SynonymTable
}

// NewQueryAnalyzer creates a QueryAnalyzer over the given tables. Either may be nil.
func NewQueryAnalyzer(typos *keyword.TypoCorrector, synonyms *keyword.SynonymTable) *QueryAnalyzer {
	return &QueryAnalyzer{typos: typos, synonyms: synonyms}
}

// Analyze parses a query string and returns an AnalyzedQuery.
func (qa *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	result := &AnalyzedQuery{
		Original:   query,
		Normalized: keyword.Normalize(query),
	}
	if result.Normalized == "" {
		result.QueryType = QueryTypeEmpty
		return result
	}

	correction := qa.typos.Correct(result.Normalized)
	result.Corrected = correction.CorrectedQuery
	result.Corrections = correction.Corrections

	for i, text := range qa.synonyms.Expand(result.Corrected) {
		result.Variants = append(result.Variants, NewVariant(text, i > 0))
	}
	if result.Corrected != result.Normalized {
		literal := NewVariant(result.Normalized, false)
		literal.Literal = true
		result.Variants = append(result.Variants, literal)
	}
	result.QueryType = classifyQuery(result.Variants[0].Tokens)
	return result
}

// Typos returns the analyzer's typo corrector, which may be nil.
func (qa *QueryAnalyzer) Typos() *keyword.TypoCorrector {
	return qa.typos
}

// Synonyms returns the analyzer's synonym table, which may be nil.
func (qa *QueryAnalyzer) Synonyms() *keyword.SynonymTable {
	return qa.synonyms
}

func classifyQuery(tokens []string) QueryType {
	switch len(tokens) {
	case 0:
		return QueryTypeEmpty
	case 1:
		return QueryTypeSingleWord
	default:
		return QueryTypeMultiWord
	}
}
