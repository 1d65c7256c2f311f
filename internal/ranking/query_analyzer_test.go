package ranking

import (
	"reflect"
	"testing"
)

func TestQueryAnalyzer_Analyze(t *testing.T) {
	qa := testAnalyzer(t)

	tests := []struct {
		name       string
		query      string
		normalized string
		corrected  string
		expansions []string
		queryType  QueryType
	}{
		{"blank", "  ", "", "", nil, QueryTypeEmpty},
		{"plain", "One Piece", "one piece", "one piece", []string{"one piece"}, QueryTypeMultiWord},
		{"typo", "Nuruto!", "nuruto", "naruto", []string{"naruto"}, QueryTypeSingleWord},
		{"synonym", "SNK", "snk", "snk", []string{"snk", "attack on titan", "aot", "進撃の巨人"}, QueryTypeSingleWord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := qa.Analyze(tt.query)
			if q.Original != tt.query {
				t.Errorf("Original = %q", q.Original)
			}
			if q.Normalized != tt.normalized {
				t.Errorf("Normalized = %q, want %q", q.Normalized, tt.normalized)
			}
			if q.Corrected != tt.corrected {
				t.Errorf("Corrected = %q, want %q", q.Corrected, tt.corrected)
			}
			if !reflect.DeepEqual(q.Expansions(), tt.expansions) && !(len(tt.expansions) == 0 && len(q.Expansions()) == 0) {
				t.Errorf("Expansions() = %v, want %v", q.Expansions(), tt.expansions)
			}
			if q.QueryType != tt.queryType {
				t.Errorf("QueryType = %v, want %v", q.QueryType, tt.queryType)
			}
		})
	}
}

func TestQueryAnalyzer_VariantFlags(t *testing.T) {
	q := testAnalyzer(t).Analyze("snk")
	if q.Variants[0].Synonym {
		t.Error("first variant is the typed query, not a synonym")
	}
	for _, v := range q.Variants[1:] {
		if !v.Synonym {
			t.Errorf("variant %q should be flagged as synonym", v.Text)
		}
	}
}

func TestQueryAnalyzer_KeepsLiteralAfterCorrection(t *testing.T) {
	q := testAnalyzer(t).Analyze("Nuruto")
	last := q.Variants[len(q.Variants)-1]
	if !last.Literal || last.Synonym || last.Text != "nuruto" {
		t.Errorf("last variant = %+v, want literal %q", last, "nuruto")
	}
	if !reflect.DeepEqual(q.Expansions(), []string{"naruto"}) {
		t.Errorf("Expansions() = %v, want [naruto]", q.Expansions())
	}

	q = testAnalyzer(t).Analyze("naruto")
	for _, v := range q.Variants {
		if v.Literal {
			t.Errorf("uncorrected query has literal variant %q", v.Text)
		}
	}
}

func TestQueryAnalyzer_NilTables(t *testing.T) {
	q := NewQueryAnalyzer(nil, nil).Analyze("Nuruto")
	if q.Corrected != "nuruto" || len(q.Variants) != 1 {
		t.Errorf("nil tables changed query: %+v", q)
	}
	if len(q.Corrections) != 0 {
		t.Errorf("unexpected corrections %v", q.Corrections)
	}
}
