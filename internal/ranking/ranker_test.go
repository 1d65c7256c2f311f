package ranking

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/fandex/internal/models"
)

func anime(id, title string, rating float64) *models.Anime {
	return &models.Anime{ID: id, Title: title, Rating: rating}
}

func ids(results []*models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.ItemID()
	}
	return out
}

func TestRanker_TypoCorrectedScenario(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{
		anime("1", "Naruto", 8.5),
		anime("2", "One Piece", 8.8),
	}

	results := r.Rank(testAnalyzer(t).Analyze("nuruto"), catalog, RankOptions{})
	if len(results) != 1 {
		t.Fatalf("got %d results (%v), want only Naruto", len(results), ids(results))
	}
	if results[0].Item.ItemID() != "1" || results[0].MatchType != models.MatchExact {
		t.Errorf("top result = %s/%v, want Naruto/exact", results[0].Item.ItemTitle(), results[0].MatchType)
	}
	if results[0].Rank != 1 {
		t.Errorf("Rank = %d, want 1", results[0].Rank)
	}
}

func TestRanker_FuzzyWithoutTypoTable(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{anime("1", "Naruto", 8.5), anime("2", "One Piece", 8.8)}

	results := r.Rank(NewQueryAnalyzer(nil, nil).Analyze("nuruto"), catalog, RankOptions{})
	if len(results) != 1 || results[0].MatchType != models.MatchFuzzy {
		t.Fatalf("results = %v, want one fuzzy Naruto", ids(results))
	}
}

func TestRanker_ExactTitleFirst(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{
		anime("shippuden", "Naruto Shippuden", 9.0),
		anime("boruto", "Boruto", 7.0),
		anime("naruto", "NARUTO", 6.0),
	}

	results := r.Rank(NewQueryAnalyzer(nil, nil).Analyze("naruto"), catalog, RankOptions{})
	want := []string{"naruto", "shippuden", "boruto"}
	if fmt.Sprint(ids(results)) != fmt.Sprint(want) {
		t.Fatalf("order = %v, want %v", ids(results), want)
	}
	if results[0].MatchType != models.MatchExact {
		t.Errorf("first result type = %v, want exact", results[0].MatchType)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %v", i, results)
		}
	}
}

func TestRanker_SynonymScenario(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{
		anime("aot", "Attack on Titan", 9.0),
		anime("op", "One Piece", 8.8),
	}

	results := r.Rank(testAnalyzer(t).Analyze("snk"), catalog, RankOptions{})
	if len(results) != 1 || results[0].Item.ItemID() != "aot" {
		t.Fatalf("results = %v, want [aot]", ids(results))
	}
	if results[0].MatchType != models.MatchSemantic {
		t.Errorf("MatchType = %v, want semantic", results[0].MatchType)
	}
}

func TestRanker_StableTies(t *testing.T) {
	r := NewRanker(nil)
	mk := func(id string, rating float64) models.CatalogItem {
		return &models.Anime{ID: id, Title: "Series " + id, Genres: []string{"Action"}, Rating: rating}
	}
	catalog := []models.CatalogItem{mk("a", 7), mk("b", 9), mk("c", 7), mk("d", 8), mk("e", 7)}
	q := NewQueryAnalyzer(nil, nil).Analyze("action")

	want := "[b d a c e]"
	for i := 0; i < 20; i++ {
		if got := fmt.Sprint(ids(r.Rank(q, catalog, RankOptions{}))); got != want {
			t.Fatalf("run %d: order = %s, want %s", i, got, want)
		}
	}
}

func TestRanker_Cap(t *testing.T) {
	r := NewRanker(nil).WithLimits(10, 25)
	catalog := make([]models.CatalogItem, 30)
	for i := range catalog {
		catalog[i] = &models.Anime{ID: fmt.Sprint(i), Title: fmt.Sprintf("Gundam %d", i)}
	}
	q := NewQueryAnalyzer(nil, nil).Analyze("gundam")

	tests := []struct {
		limit int
		want  int
	}{
		{0, 10},
		{5, 5},
		{100, 25},
		{-1, 10},
	}
	for _, tt := range tests {
		if got := len(r.Rank(q, catalog, RankOptions{Limit: tt.limit})); got != tt.want {
			t.Errorf("limit %d: got %d results, want %d", tt.limit, got, tt.want)
		}
	}

	small := catalog[:3]
	if got := len(r.Rank(q, small, RankOptions{Limit: 25})); got != 3 {
		t.Errorf("results exceed catalog size: %d", got)
	}
}

func TestRanker_RankWithTotal(t *testing.T) {
	r := NewRanker(nil)
	catalog := make([]models.CatalogItem, 12)
	for i := range catalog {
		catalog[i] = &models.Anime{ID: fmt.Sprint(i), Title: fmt.Sprintf("Macross %d", i)}
	}
	catalog = append(catalog, anime("x", "Monster", 8.0))

	results, total := r.RankWithTotal(NewQueryAnalyzer(nil, nil).Analyze("macross"), catalog, RankOptions{Limit: 5})
	if len(results) != 5 {
		t.Errorf("got %d results, want 5", len(results))
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}

	_, total = r.RankWithTotal(NewQueryAnalyzer(nil, nil).Analyze(""), catalog, RankOptions{Limit: 5})
	if total != 13 {
		t.Errorf("empty query total = %d, want 13", total)
	}
}

func TestRanker_EmptyCatalog(t *testing.T) {
	r := NewRanker(nil)
	qa := testAnalyzer(t)
	for _, q := range []string{"", "naruto", "snk"} {
		if got := r.Rank(qa.Analyze(q), nil, RankOptions{}); len(got) != 0 {
			t.Errorf("Rank(%q) on empty catalog = %v", q, ids(got))
		}
	}
}

func TestRanker_EmptyQuery(t *testing.T) {
	catalog := []models.CatalogItem{anime("1", "A", 1), nil, anime("2", "B", 9), anime("3", "C", 5)}
	q := NewQueryAnalyzer(nil, nil).Analyze("   ")

	all := NewRanker(nil).Rank(q, catalog, RankOptions{Limit: 2})
	if fmt.Sprint(ids(all)) != "[1 2]" {
		t.Errorf("empty query (all) = %v, want catalog order truncated", ids(all))
	}
	for _, res := range all {
		if res.Score != 1.0 || res.MatchType != models.MatchExact {
			t.Errorf("empty query result %+v, want score 1 exact", res)
		}
	}

	none := NewRanker(nil).WithEmptyQueryMode(EmptyQueryNone).Rank(q, catalog, RankOptions{})
	if none == nil || len(none) != 0 {
		t.Errorf("empty query (none) = %v, want empty non-nil list", none)
	}
}

func TestRanker_MinScoreOverride(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{anime("1", "Naruto", 1), anime("2", "Naruto Shippuden", 9)}
	q := NewQueryAnalyzer(nil, nil).Analyze("naruto")

	if got := len(r.Rank(q, catalog, RankOptions{})); got != 2 {
		t.Errorf("default threshold kept %d, want 2", got)
	}
	if got := ids(r.Rank(q, catalog, RankOptions{MinScore: 0.95})); len(got) != 1 || got[0] != "1" {
		t.Errorf("min score 0.95 kept %v, want [1]", got)
	}
}

func TestRanker_NilItemsSkipped(t *testing.T) {
	r := NewRanker(nil)
	catalog := []models.CatalogItem{nil, anime("1", "Naruto", 1), nil}
	got := r.Rank(NewQueryAnalyzer(nil, nil).Analyze("naruto"), catalog, RankOptions{})
	if len(got) != 1 {
		t.Errorf("got %v", ids(got))
	}
	if b := r.Explain(nil, nil); b.FinalScore != 0 {
		t.Errorf("Explain(nil) = %+v", b)
	}
}

func TestRanker_TypedNilItemsSkipped(t *testing.T) {
	r := NewRanker(nil)
	var missing *models.Anime
	catalog := []models.CatalogItem{missing, anime("1", "Naruto", 1), (*models.Manga)(nil)}

	got := r.Rank(NewQueryAnalyzer(nil, nil).Analyze("naruto"), catalog, RankOptions{})
	if len(got) != 1 || got[0].Item.ItemID() != "1" {
		t.Errorf("search kept %v, want [1]", ids(got))
	}
	empty, total := r.RankWithTotal(NewQueryAnalyzer(nil, nil).Analyze(""), catalog, RankOptions{})
	if len(empty) != 1 || total != 1 {
		t.Errorf("empty query kept %v (total %d), want [1]", ids(empty), total)
	}
	if b := r.Explain(nil, missing); b.FinalScore != 0 {
		t.Errorf("Explain(typed nil) = %+v", b)
	}
}

func TestParseEmptyQueryMode(t *testing.T) {
	if ParseEmptyQueryMode("NONE") != EmptyQueryNone {
		t.Error("NONE should parse to EmptyQueryNone")
	}
	if ParseEmptyQueryMode("whatever") != EmptyQueryAll {
		t.Error("unknown mode should default to all")
	}
}

func TestRankingConfig_ApplyDefaults(t *testing.T) {
	cfg := &RankingConfig{TitleWeight: 2.0, MinScore: 0.5}
	cfg.ApplyDefaults()
	if cfg.TitleWeight != 2.0 || cfg.MinScore != 0.5 {
		t.Errorf("ApplyDefaults overwrote set values: %+v", cfg)
	}
	if cfg.AltTitleWeight != 0.95 || cfg.MaxFuzzyDistance != 2 || cfg.CreatorWeight != 4.0 {
		t.Errorf("ApplyDefaults left zero values: %+v", cfg)
	}
}

func TestRankingConfig_ExplicitZero(t *testing.T) {
	var cfg RankingConfig
	if err := yaml.Unmarshal([]byte("min_score: 0\nmax_fuzzy_distance: 0\ntitle_weight: 1.5\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyDefaults()
	if cfg.MinScore != 0 || cfg.MaxFuzzyDistance != 0 {
		t.Errorf("explicit zeros replaced: min_score=%v max_fuzzy_distance=%d", cfg.MinScore, cfg.MaxFuzzyDistance)
	}
	if cfg.TitleWeight != 1.5 || cfg.PartialFloor != 0.65 {
		t.Errorf("unexpected values: %+v", cfg)
	}

	r := NewRanker(&cfg)
	catalog := []models.CatalogItem{anime("1", "Naruto", 8.5), anime("2", "One Piece", 8.8)}
	if got := r.Rank(NewQueryAnalyzer(nil, nil).Analyze("nuruto"), catalog, RankOptions{}); len(got) != 0 {
		t.Errorf("fuzzy matching should be off, got %v", ids(got))
	}
}

func TestRankingConfig_MarshalSkipsUnsetZeros(t *testing.T) {
	cfg := RankingConfig{TitleWeight: 2}
	cfg.SetExplicit("min_score")
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := "title_weight: 2\nmin_score: 0\n"
	if string(out) != want {
		t.Errorf("Marshal() = %q, want %q", out, want)
	}

	var loaded RankingConfig
	if err := yaml.Unmarshal(out, &loaded); err != nil {
		t.Fatal(err)
	}
	loaded.ApplyDefaults()
	if loaded.MinScore != 0 || loaded.AltTitleWeight != 0.95 {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
}
