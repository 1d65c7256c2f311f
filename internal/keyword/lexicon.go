package keyword

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon is the raw, ordered content of a synonym/typo table file:
//
//	synonyms:
//	  attack on titan: [snk, aot, shingeki no kyojin]
//	typos:
//	  nruto: naruto
//
// Mapping order is significant: it is the scan order for fuzzy typo
// correction and the precedence order for conflicting aliases.
type Lexicon struct {
	Synonyms []SynonymGroup
	Typos    []TypoEntry
}

// ParseLexicon decodes a lexicon document, preserving key order.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	lex := &Lexicon{}
	if len(doc.Content) == 0 {
		return lex, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("lexicon: expected a mapping at line %d", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		section, body := root.Content[i], root.Content[i+1]
		switch section.Value {
		case "synonyms":
			groups, err := parseSynonymSection(body)
			if err != nil {
				return nil, err
			}
			lex.Synonyms = append(lex.Synonyms, groups...)
		case "typos":
			entries, err := parseTypoSection(body)
			if err != nil {
				return nil, err
			}
			lex.Typos = append(lex.Typos, entries...)
		default:
			return nil, fmt.Errorf("lexicon: unknown section %q at line %d", section.Value, section.Line)
		}
	}
	return lex, nil
}

func parseSynonymSection(n *yaml.Node) ([]SynonymGroup, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("lexicon: synonyms must be a mapping (line %d)", n.Line)
	}
	groups := make([]SynonymGroup, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var aliases []string
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&aliases); err != nil {
				return nil, fmt.Errorf("lexicon: synonyms for %q: %w", key.Value, err)
			}
		case yaml.ScalarNode:
			aliases = []string{val.Value}
		default:
			return nil, fmt.Errorf("lexicon: synonyms for %q must be a list (line %d)", key.Value, val.Line)
		}
		groups = append(groups, SynonymGroup{Canonical: key.Value, Aliases: aliases})
	}
	return groups, nil
}

func parseTypoSection(n *yaml.Node) ([]TypoEntry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("lexicon: typos must be a mapping (line %d)", n.Line)
	}
	entries := make([]TypoEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("lexicon: typo %q must map to a string (line %d)", key.Value, val.Line)
		}
		entries = append(entries, TypoEntry{Misspelling: key.Value, Correction: val.Value})
	}
	return entries, nil
}

// LoadLexiconFile reads and parses a lexicon file.
func LoadLexiconFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lex, nil
}

// Overlay returns a lexicon whose entries from other take precedence over l.
// A synonym group in other with the same title as one in l keeps the
// aliases of both, other's first.
func (l *Lexicon) Overlay(other *Lexicon) *Lexicon {
	if other == nil {
		return l
	}
	synonyms := make([]SynonymGroup, 0, len(other.Synonyms)+len(l.Synonyms))
	byCanonical := make(map[string]int, len(other.Synonyms))
	for _, g := range other.Synonyms {
		key := Normalize(g.Canonical)
		if idx, ok := byCanonical[key]; ok {
			synonyms[idx].Aliases = append(synonyms[idx].Aliases, g.Aliases...)
			continue
		}
		byCanonical[key] = len(synonyms)
		synonyms = append(synonyms, SynonymGroup{Canonical: g.Canonical, Aliases: append([]string{}, g.Aliases...)})
	}
	for _, g := range l.Synonyms {
		if idx, ok := byCanonical[Normalize(g.Canonical)]; ok {
			synonyms[idx].Aliases = append(synonyms[idx].Aliases, g.Aliases...)
			continue
		}
		synonyms = append(synonyms, g)
	}
	return &Lexicon{
		Synonyms: synonyms,
		Typos:    append(append([]TypoEntry{}, other.Typos...), l.Typos...),
	}
}

// Build constructs the synonym table and typo corrector. Every synonym term is
// registered as vocabulary so abbreviations are never "corrected" away.
func (l *Lexicon) Build(mode MatchMode, typoOpts ...TypoOption) (*SynonymTable, *TypoCorrector, error) {
	synonyms := NewSynonymTable(l.Synonyms, WithMatchMode(mode))
	opts := append([]TypoOption{WithVocabulary(synonyms.Terms()...)}, typoOpts...)
	typos, err := NewTypoCorrector(l.Typos, opts...)
	if err != nil {
		return nil, nil, err
	}
	return synonyms, typos, nil
}
