package keyword

import (
	"os"
	"path/filepath"
	"testing"
)

const testLexicon = `
synonyms:
  attack on titan: [snk, aot]
  one piece: op
typos:
  nuruto: naruto
  bleech: bleach
`

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon([]byte(testLexicon))
	if err != nil {
		t.Fatalf("ParseLexicon() error = %v", err)
	}
	if len(lex.Synonyms) != 2 {
		t.Fatalf("got %d synonym groups, want 2", len(lex.Synonyms))
	}
	if lex.Synonyms[0].Canonical != "attack on titan" || lex.Synonyms[1].Canonical != "one piece" {
		t.Errorf("synonym order not preserved: %+v", lex.Synonyms)
	}
	if len(lex.Synonyms[1].Aliases) != 1 || lex.Synonyms[1].Aliases[0] != "op" {
		t.Errorf("scalar alias not parsed: %+v", lex.Synonyms[1])
	}
	if len(lex.Typos) != 2 || lex.Typos[0].Misspelling != "nuruto" || lex.Typos[1].Correction != "bleach" {
		t.Errorf("typos = %+v", lex.Typos)
	}
}

func TestParseLexicon_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"unknown section", "aliases:\n  a: b\n"},
		{"synonyms list", "synonyms:\n  - a\n"},
		{"typo to list", "typos:\n  nuruto: [naruto]\n"},
		{"bad yaml", "synonyms: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseLexicon([]byte(tt.doc)); err == nil {
				t.Errorf("ParseLexicon(%q) expected error", tt.doc)
			}
		})
	}
}

func TestParseLexicon_Empty(t *testing.T) {
	lex, err := ParseLexicon(nil)
	if err != nil {
		t.Fatalf("ParseLexicon(nil) error = %v", err)
	}
	if len(lex.Synonyms) != 0 || len(lex.Typos) != 0 {
		t.Errorf("empty document produced %+v", lex)
	}
}

func TestLoadLexiconFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anime.yaml")
	if err := os.WriteFile(path, []byte(testLexicon), 0644); err != nil {
		t.Fatal(err)
	}
	lex, err := LoadLexiconFile(path)
	if err != nil {
		t.Fatalf("LoadLexiconFile() error = %v", err)
	}
	if len(lex.Typos) != 2 {
		t.Errorf("got %d typos, want 2", len(lex.Typos))
	}

	if _, err := LoadLexiconFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLexicon_Build(t *testing.T) {
	lex, err := ParseLexicon([]byte(testLexicon))
	if err != nil {
		t.Fatal(err)
	}
	synonyms, typos, err := lex.Build(MatchToken)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := typos.CorrectQuery("nuruto"); got != "naruto" {
		t.Errorf("CorrectQuery(nuruto) = %q", got)
	}
	// Synonym terms are vocabulary: "aot" must not be fuzzed toward anything.
	if !typos.IsKnown("aot") {
		t.Error("synonym alias not registered as vocabulary")
	}
	if c, ok := synonyms.Canonical("op"); !ok || c != "one piece" {
		t.Errorf("Canonical(op) = %q, %v", c, ok)
	}
}

func TestLexicon_BuildCycle(t *testing.T) {
	lex := &Lexicon{Typos: []TypoEntry{
		{Misspelling: "abc", Correction: "abd"},
		{Misspelling: "abd", Correction: "abc"},
	}}
	if _, _, err := lex.Build(MatchToken); err == nil {
		t.Error("expected cycle error from Build")
	}
}

func TestLexicon_OverlayMergesSameTitle(t *testing.T) {
	base, err := ParseLexicon([]byte(testLexicon))
	if err != nil {
		t.Fatal(err)
	}
	override := &Lexicon{Synonyms: []SynonymGroup{{Canonical: "Attack on Titan", Aliases: []string{"shingeki", "aot"}}}}

	merged := base.Overlay(override)
	if len(merged.Synonyms) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(merged.Synonyms), merged.Synonyms)
	}
	synonyms, _, err := merged.Build(MatchToken)
	if err != nil {
		t.Fatal(err)
	}
	for _, alias := range []string{"shingeki", "snk", "aot"} {
		if c, ok := synonyms.Canonical(alias); !ok || c != "attack on titan" {
			t.Errorf("Canonical(%q) = %q, %v", alias, c, ok)
		}
	}
	if conflicts := synonyms.Conflicts(); len(conflicts) != 0 {
		t.Errorf("unexpected conflicts %+v", conflicts)
	}
	if len(base.Synonyms[0].Aliases) != 2 {
		t.Errorf("Overlay modified the base lexicon: %+v", base.Synonyms[0])
	}
}

func TestLexicon_Overlay(t *testing.T) {
	base, err := ParseLexicon([]byte(testLexicon))
	if err != nil {
		t.Fatal(err)
	}
	override := &Lexicon{
		Synonyms: []SynonymGroup{{Canonical: "army of two", Aliases: []string{"aot"}}},
		Typos:    []TypoEntry{{Misspelling: "nuruto", Correction: "boruto"}},
	}

	merged := base.Overlay(override)
	synonyms, typos, err := merged.Build(MatchToken)
	if err != nil {
		t.Fatal(err)
	}
	if got := typos.CorrectQuery("nuruto"); got != "boruto" {
		t.Errorf("overlay typo: got %q, want boruto", got)
	}
	if c, _ := synonyms.Canonical("aot"); c != "army of two" {
		t.Errorf("overlay synonym: Canonical(aot) = %q", c)
	}
	if base.Overlay(nil) != base {
		t.Error("Overlay(nil) should return the receiver")
	}
}
