package keyword

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"blank", "   \t\n ", ""},
		{"lowercase and trim", "  Attack on Titan ", "attack on titan"},
		{"punctuation becomes space", "Naruto: Shippuden!!", "naruto shippuden"},
		{"collapse whitespace", "one    piece", "one piece"},
		{"latin diacritics", "Pokémon Café", "pokemon cafe"},
		{"fullwidth ascii", "ＮＡＲＵＴＯ", "naruto"},
		{"japanese preserved", "進撃の巨人", "進撃の巨人"},
		{"kana voicing kept", "ガンダム", "ガンダム"},
		{"cyrillic preserved", "Наруто", "наруто"},
		{"digits kept", "Mob Psycho 100", "mob psycho 100"},
		{"hyphen split", "Re:Zero - Starting Life", "re zero starting life"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Pokémon!", "ＮＡＲＵＴＯ", "  x  y ", "進撃の巨人 Season 2"} {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("one piece film red")
	want := []string{"one", "piece", "film", "red"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if len(Tokenize("")) != 0 {
		t.Error("Tokenize(\"\") should be empty")
	}
}

func TestContainsTerm(t *testing.T) {
	tests := []struct {
		text, term string
		want       bool
	}{
		{"a story about titans", "titans", true},
		{"a story about titans", "titan", false},
		{"naruto", "naruto", true},
		{"snke", "snk", false},
		{"進撃の巨人", "巨人", true},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := ContainsTerm(tt.text, tt.term); got != tt.want {
			t.Errorf("ContainsTerm(%q, %q) = %v, want %v", tt.text, tt.term, got, tt.want)
		}
	}
}
