package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{"anime", DomainAnime, false},
		{"Manga", DomainManga, false},
		{" quiz ", DomainQuiz, false},
		{"movies", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDomain(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnknownDomain) {
			t.Errorf("ParseDomain(%q) error does not wrap ErrUnknownDomain", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewItem(t *testing.T) {
	for _, d := range Domains() {
		item, err := NewItem(d)
		if err != nil {
			t.Fatalf("NewItem(%q) error = %v", d, err)
		}
		data := []byte(`{"id":"x1","title":"Frieren","rating":9.1}`)
		if err := json.Unmarshal(data, item); err != nil {
			t.Fatalf("decode %s: %v", d, err)
		}
		if item.ItemID() != "x1" || item.ItemTitle() != "Frieren" || item.Quality() != 9.1 {
			t.Errorf("%s decoded to %+v", d, item)
		}
	}
	if _, err := NewItem("movies"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("NewItem(movies) error = %v", err)
	}
}

func TestAnime_SearchFields(t *testing.T) {
	a := &Anime{
		ID:            "aot",
		Title:         "Attack on Titan",
		TitleJapanese: "進撃の巨人",
		Genres:        []string{"Action"},
		Studio:        "Wit Studio",
		Extra:         map[string]string{"source": "manga", "season": "fall", "empty": " "},
	}
	fields := a.SearchFields()

	byName := map[string]Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}
	if f := byName["title"]; f.Kind != FieldTitle || len(f.Values) != 1 {
		t.Errorf("title field = %+v", f)
	}
	if f := byName["title_japanese"]; f.Kind != FieldAltTitle {
		t.Errorf("title_japanese kind = %v, want alt_title", f.Kind)
	}
	if f := byName["synopsis"]; len(f.Values) != 0 {
		t.Errorf("empty synopsis produced values %v", f.Values)
	}
	if f := byName["studio"]; f.Kind != FieldPeople {
		t.Errorf("studio kind = %v, want people", f.Kind)
	}

	// Extras come last, sorted by key, blank values dropped.
	last := fields[len(fields)-2:]
	if last[0].Name != "extra.season" || last[1].Name != "extra.source" {
		t.Errorf("extra fields = %+v", last)
	}
	if _, ok := byName["extra.empty"]; ok {
		t.Error("blank extra value should be dropped")
	}
}

func TestCapabilities(t *testing.T) {
	var (
		anime CatalogItem = &Anime{Studio: "MAPPA", Year: 2020}
		manga CatalogItem = &Manga{Author: "Oda"}
		quiz  CatalogItem = &Quiz{Category: "Anime", Difficulty: "easy"}
	)
	if _, ok := anime.(HasCast); !ok {
		t.Error("Anime should have cast")
	}
	if _, ok := manga.(HasCast); ok {
		t.Error("Manga should not have cast")
	}
	if _, ok := anime.(HasDifficulty); ok {
		t.Error("Anime should not have difficulty")
	}
	if d, ok := quiz.(HasDifficulty); !ok || d.ItemDifficulty() != "easy" {
		t.Error("Quiz should expose difficulty")
	}
	if c := manga.(HasCreators).ItemCreators(); len(c) != 1 || c[0] != "Oda" {
		t.Errorf("Manga creators = %v", c)
	}
	if g := quiz.(HasGenres).ItemGenres(); len(g) != 1 || g[0] != "Anime" {
		t.Errorf("Quiz genres = %v", g)
	}
	if c := (&Anime{}).ItemCreators(); len(c) != 0 {
		t.Errorf("empty studio should give no creators, got %v", c)
	}
}

func TestIsNil(t *testing.T) {
	var anime *Anime
	var quiz *Quiz
	tests := []struct {
		name string
		item CatalogItem
		want bool
	}{
		{"nil interface", nil, true},
		{"nil anime", anime, true},
		{"nil manga", (*Manga)(nil), true},
		{"nil quiz", quiz, true},
		{"anime", &Anime{ID: "1"}, false},
		{"zero manga", &Manga{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNil(tt.item); got != tt.want {
				t.Errorf("IsNil() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchType_Text(t *testing.T) {
	for _, m := range []MatchType{MatchNone, MatchSemantic, MatchFuzzy, MatchPartial, MatchExact} {
		b, err := m.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back MatchType
		if err := back.UnmarshalText(b); err != nil || back != m {
			t.Errorf("round trip of %v gave %v, %v", m, back, err)
		}
	}
	var m MatchType
	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown match type")
	}

	out, err := json.Marshal(&SearchResult{Item: &Anime{ID: "1", Title: "Naruto"}, Score: 1, MatchType: MatchExact})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["match_type"] != "exact" {
		t.Errorf("match_type encoded as %v, want \"exact\"", decoded["match_type"])
	}
}
