package models

import "fmt"

// MatchType is the rule tier that produced a result's winning score.
// Higher tiers take priority when scores tie.
type MatchType int

const (
	MatchNone MatchType = iota
	MatchSemantic
	MatchFuzzy
	MatchPartial
	MatchExact
)

// String returns the wire name of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPartial:
		return "partial"
	case MatchFuzzy:
		return "fuzzy"
	case MatchSemantic:
		return "semantic"
	default:
		return "none"
	}
}

// MarshalText encodes the match type by name so JSON carries "exact" rather than 4.
func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a match type name.
func (m *MatchType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "exact":
		*m = MatchExact
	case "partial":
		*m = MatchPartial
	case "fuzzy":
		*m = MatchFuzzy
	case "semantic":
		*m = MatchSemantic
	case "none", "":
		*m = MatchNone
	default:
		return fmt.Errorf("unknown match type %q", b)
	}
	return nil
}

// SearchResult is a single ranked hit.
type SearchResult struct {
	Item          CatalogItem `json:"item"`
	Score         float64     `json:"score"`
	MatchType     MatchType   `json:"match_type"`
	MatchedFields []string    `json:"matched_fields"`
	Rank          int         `json:"rank"`
	// Reasoning is set when a remote enhancer contributed to the score.
	Reasoning string `json:"reasoning,omitempty"`
}

// SearchResponse is the response for a search request against one domain.
type SearchResponse struct {
	Domain         Domain          `json:"domain"`
	Query          string          `json:"query"`
	CorrectedQuery string          `json:"corrected_query,omitempty"`
	Expansions     []string        `json:"expansions,omitempty"`
	Results        []*SearchResult `json:"results"`
	Total          int             `json:"total"`
	QueryTime      int64           `json:"query_time_ms"`
	// Strategy is "local" or "remote". Fallback is set when the remote
	// strategy was requested but the local ranking was served instead.
	Strategy string `json:"strategy"`
	Fallback bool   `json:"fallback,omitempty"`
	// Suggestions contains "Did you mean?" titles when the search found nothing.
	Suggestions []string `json:"suggestions,omitempty"`
}

// MultiSearchResponse groups per-domain responses for a cross-catalog search.
type MultiSearchResponse struct {
	Query     string                     `json:"query"`
	Domains   map[Domain]*SearchResponse `json:"domains"`
	QueryTime int64                      `json:"query_time_ms"`
}
