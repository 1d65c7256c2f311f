package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/ranking"
	"github.com/hyperjump/fandex/internal/search"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Domain:         models.DomainAnime,
		Query:          "nuruto",
		CorrectedQuery: "naruto",
		QueryTime:      3,
		Total:          2,
		Strategy:       "local",
		Results: []*models.SearchResult{
			{
				Rank:          1,
				Score:         1.0,
				MatchType:     models.MatchExact,
				MatchedFields: []string{"title"},
				Item: &models.Anime{
					ID:       "1",
					Title:    "Naruto",
					Synopsis: strings.Repeat("ninja ", 60),
					Rating:   8.4,
				},
			},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded struct {
		Query          string `json:"query"`
		CorrectedQuery string `json:"corrected_query"`
		Results        []struct {
			Item      map[string]interface{} `json:"item"`
			MatchType string                 `json:"match_type"`
		} `json:"results"`
	}
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "nuruto" || decoded.CorrectedQuery != "naruto" {
		t.Errorf("decoded query=%q corrected=%q", decoded.Query, decoded.CorrectedQuery)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Item["id"] != "1" || decoded.Results[0].MatchType != "exact" {
		t.Errorf("decoded results: %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Found 2 results in 3ms (showing 1) [local]",
		`Showing results for "naruto"`,
		"Rank: 1 | Score: 1.0000 | Match: exact",
		"Title: Naruto",
		"Rating: 8.4",
		"Matched: title",
		"...",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_TextSuggestions(t *testing.T) {
	resp := &models.SearchResponse{Query: "narutp", Strategy: "remote", Fallback: true, Suggestions: []string{"Naruto"}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Did you mean: Naruto?") {
		t.Errorf("missing suggestions:\n%s", out)
	}
	if !strings.Contains(out, "fell back to local") {
		t.Errorf("missing fallback note:\n%s", out)
	}
}

func TestWriteMultiSearchResults_Text(t *testing.T) {
	multi := &models.MultiSearchResponse{
		Query: "naruto",
		Domains: map[models.Domain]*models.SearchResponse{
			models.DomainManga: {Strategy: "local"},
			models.DomainAnime: sampleResponse(),
		},
	}
	var buf bytes.Buffer
	if err := WriteMultiSearchResults(&buf, multi, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	anime, manga := strings.Index(out, "=== ANIME ==="), strings.Index(out, "=== MANGA ===")
	if anime < 0 || manga < 0 || anime > manga {
		t.Errorf("domains missing or out of order:\n%s", out)
	}
	if strings.Contains(out, "=== QUIZ ===") {
		t.Error("absent domain should not be printed")
	}
}

func TestWriteSuggestions(t *testing.T) {
	tests := []struct {
		name        string
		suggestions []string
		format      OutputFormat
		want        string
	}{
		{"text", []string{"attack on titan", "aot"}, OutputText, "attack on titan\naot\n"},
		{"text empty", nil, OutputText, "No suggestions\n"},
		{"json empty", nil, OutputJSON, "[]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSuggestions(&buf, tt.suggestions, tt.format); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteSimilar(t *testing.T) {
	recs := []*search.Recommendation{
		{Item: &models.Manga{ID: "m2", Title: "Vagabond"}, Score: 7.25},
	}
	var buf bytes.Buffer
	if err := WriteSimilar(&buf, recs, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != " 1. Vagabond (m2) score 7.25\n" {
		t.Errorf("got %q", got)
	}

	buf.Reset()
	if err := WriteSimilar(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("json empty: got %q", buf.String())
	}
}

func TestWriteExplain(t *testing.T) {
	b := &ranking.ScoreBreakdown{
		FinalScore: 0.81,
		MatchType:  models.MatchSemantic,
		Fields: []ranking.FieldMatch{
			{Field: "title", Raw: 0.9, Score: 0.81, MatchType: models.MatchSemantic, Variant: "attack on titan"},
		},
	}
	var buf bytes.Buffer
	WriteExplain(&buf, "Attack on Titan", b)
	out := buf.String()
	if !strings.Contains(out, "Attack on Titan: 0.8100 (semantic)") || !strings.Contains(out, `via "attack on titan"`) {
		t.Errorf("unexpected explain output:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(true) != OutputJSON || ParseFormat(false) != OutputText {
		t.Error("ParseFormat mismatch")
	}
}
