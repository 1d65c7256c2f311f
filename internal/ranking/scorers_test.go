package ranking

import (
	"math"
	"testing"

	"github.com/hyperjump/fandex/internal/models"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTitleScorer_Score(t *testing.T) {
	s := NewTitleScorer(DefaultRankingConfig())

	tests := []struct {
		name      string
		term      string
		values    []string
		wantScore float64
		wantType  models.MatchType
	}{
		{"exact", "naruto", []string{"naruto"}, 1.0, models.MatchExact},
		{"contained short query floored", "naruto", []string{"naruto shippuden"}, 0.65, models.MatchPartial},
		{"contained long query scaled", "one piece film", []string{"one piece film red"}, 14.0 / 18.0, models.MatchPartial},
		{"reverse containment", "naruto shippuden movie", []string{"naruto shippuden"}, 16.0 / 22.0 * 0.9, models.MatchPartial},
		{"all words any order", "titan attack", []string{"attack on titan"}, 0.7, models.MatchPartial},
		{"fuzzy whole value", "nruto", []string{"naruto"}, (1 - 1.0/6) * 0.6, models.MatchFuzzy},
		{"fuzzy word window", "nruto", []string{"naruto shippuden"}, (1 - 1.0/6) * 0.6, models.MatchFuzzy},
		{"short query no fuzzy", "nr", []string{"na"}, 0, models.MatchNone},
		{"short value no reverse", "xx go", []string{"go"}, 0, models.MatchNone},
		{"no match", "bleach", []string{"one piece"}, 0, models.MatchNone},
		{"best value wins", "aot", []string{"attack on titan", "aot"}, 1.0, models.MatchExact},
		{"no values", "naruto", nil, 0, models.MatchNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, mt := s.Score(NewVariant(tt.term, false), tt.values)
			if !approx(score, tt.wantScore) {
				t.Errorf("Score(%q, %v) = %f, want %f", tt.term, tt.values, score, tt.wantScore)
			}
			if mt != tt.wantType {
				t.Errorf("Score(%q, %v) type = %v, want %v", tt.term, tt.values, mt, tt.wantType)
			}
		})
	}
}

func TestTitleScorer_FuzzyBelowPartial(t *testing.T) {
	cfg := DefaultRankingConfig()
	s := NewTitleScorer(cfg)
	// A perfect fuzzy score can never beat the weakest containment.
	if cfg.FuzzyFactor >= cfg.PartialFloor {
		t.Fatalf("fuzzy factor %f should stay below partial floor %f", cfg.FuzzyFactor, cfg.PartialFloor)
	}
	fuzzy, _ := s.Score(NewVariant("bleeh", false), []string{"bleach"})
	partial, _ := s.Score(NewVariant("bleach", false), []string{"bleach brave souls"})
	if fuzzy >= partial {
		t.Errorf("fuzzy %f >= partial %f", fuzzy, partial)
	}
}

func TestDescriptionScorer_Score(t *testing.T) {
	s := NewDescriptionScorer(DefaultRankingConfig())
	values := []string{"humanity fights the titans behind giant walls"}

	tests := []struct {
		term string
		want float64
	}{
		{"titans", 0.65},
		{"giant walls", 0.65},
		{"tit", 0},
		{"an", 0},
		{"dragons", 0},
	}
	for _, tt := range tests {
		score, mt := s.Score(NewVariant(tt.term, false), values)
		if !approx(score, tt.want) {
			t.Errorf("Score(%q) = %f, want %f", tt.term, score, tt.want)
		}
		if score > 0 && mt != models.MatchPartial {
			t.Errorf("Score(%q) type = %v, want partial", tt.term, mt)
		}
	}
}

func TestCrossFieldScorer_Score(t *testing.T) {
	cfg := DefaultRankingConfig()
	taxonomy := NewTaxonomyScorer(cfg)
	people := NewPeopleScorer(cfg)
	genres := []string{"action", "dark fantasy"}

	tests := []struct {
		name   string
		scorer *CrossFieldScorer
		term   string
		values []string
		want   float64
	}{
		{"genre equal", taxonomy, "action", genres, 0.75},
		{"genre prefix", taxonomy, "act", genres, 0.75},
		{"genre named in query", taxonomy, "dark fantasy manga", genres, 0.75},
		{"short query", taxonomy, "ac", genres, 0},
		{"genre missing", taxonomy, "romance", genres, 0},
		{"entry not on word boundary", taxonomy, "reaction", genres, 0},
		{"studio", people, "mappa", []string{"mappa"}, 0.65},
		{"cast member", people, "yuki kaji", []string{"yuki kaji", "yui ishikawa"}, 0.65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, mt := tt.scorer.Score(NewVariant(tt.term, false), tt.values)
			if !approx(score, tt.want) {
				t.Errorf("Score(%q) = %f, want %f", tt.term, score, tt.want)
			}
			if score > 0 && mt != models.MatchSemantic {
				t.Errorf("Score(%q) type = %v, want semantic", tt.term, mt)
			}
		})
	}
	if taxonomy.Name() != "taxonomy" || people.Name() != "people" {
		t.Error("unexpected scorer names")
	}
}
