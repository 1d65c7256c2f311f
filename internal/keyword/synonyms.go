package keyword

import (
	"strings"
	"unicode/utf8"
)

// MatchMode controls how synonym terms are located inside a query.
type MatchMode int

const (
	// MatchToken only matches terms on token boundaries ("snk" does not
	// match inside "snke"). Boundaries are not required next to scripts
	// written without spaces.
	MatchToken MatchMode = iota
	// MatchSubstring matches terms anywhere in the query, as a raw substring.
	MatchSubstring
)

// String returns the configuration name of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchSubstring:
		return "substring"
	default:
		return "token"
	}
}

// ParseMatchMode parses "token" or "substring". Unknown values map to MatchToken.
func ParseMatchMode(s string) MatchMode {
	if strings.EqualFold(strings.TrimSpace(s), "substring") {
		return MatchSubstring
	}
	return MatchToken
}

// SynonymGroup is a canonical term with its aliases (abbreviations,
// romanizations, native-script titles).
type SynonymGroup struct {
	Canonical string
	Aliases   []string
}

// Members returns the canonical term followed by its aliases.
func (g SynonymGroup) Members() []string {
	members := make([]string, 0, len(g.Aliases)+1)
	members = append(members, g.Canonical)
	return append(members, g.Aliases...)
}

// SynonymConflict describes an alias listed under more than one canonical term.
// The alias is kept only under FirstCanonical.
type SynonymConflict struct {
	Alias          string
	FirstCanonical string
	OtherCanonical string
}

// SynonymTable is an immutable, ordered set of synonym groups. Any member of a
// group expands to every other member, so a canonical term and its aliases
// resolve to the same expansion set.
type SynonymTable struct {
	groups    []SynonymGroup
	owner     map[string]int // member -> group index
	conflicts []SynonymConflict
	mode      MatchMode
}

// SynonymOption configures a SynonymTable.
type SynonymOption func(*SynonymTable)

// WithMatchMode sets how terms are located in queries.
func WithMatchMode(m MatchMode) SynonymOption {
	return func(t *SynonymTable) { t.mode = m }
}

// NewSynonymTable normalizes and indexes groups in the given order. Empty
// members are dropped; a member already owned by an earlier group is recorded
// as a conflict and skipped.
func NewSynonymTable(groups []SynonymGroup, opts ...SynonymOption) *SynonymTable {
	t := &SynonymTable{owner: make(map[string]int)}
	for _, opt := range opts {
		opt(t)
	}

	for _, g := range groups {
		canonical := Normalize(g.Canonical)
		if canonical == "" {
			continue
		}
		if idx, taken := t.owner[canonical]; taken {
			t.conflicts = append(t.conflicts, SynonymConflict{
				Alias:          canonical,
				FirstCanonical: t.groups[idx].Canonical,
				OtherCanonical: canonical,
			})
			continue
		}
		idx := len(t.groups)
		group := SynonymGroup{Canonical: canonical}
		t.owner[canonical] = idx
		for _, a := range g.Aliases {
			alias := Normalize(a)
			if alias == "" || alias == canonical {
				continue
			}
			if prev, taken := t.owner[alias]; taken {
				if prev != idx {
					t.conflicts = append(t.conflicts, SynonymConflict{
						Alias:          alias,
						FirstCanonical: t.groups[prev].Canonical,
						OtherCanonical: canonical,
					})
				}
				continue
			}
			t.owner[alias] = idx
			group.Aliases = append(group.Aliases, alias)
		}
		t.groups = append(t.groups, group)
	}
	return t
}

// Groups returns the normalized groups in table order.
func (t *SynonymTable) Groups() []SynonymGroup {
	if t == nil {
		return nil
	}
	return t.groups
}

// Conflicts returns aliases that appeared under more than one canonical term.
func (t *SynonymTable) Conflicts() []SynonymConflict {
	if t == nil {
		return nil
	}
	return t.conflicts
}

// Terms returns every canonical term and alias in table order.
func (t *SynonymTable) Terms() []string {
	if t == nil {
		return nil
	}
	terms := make([]string, 0, len(t.owner))
	for _, g := range t.groups {
		terms = append(terms, g.Members()...)
	}
	return terms
}

// Canonical returns the canonical term for any member, and whether it is known.
func (t *SynonymTable) Canonical(term string) (string, bool) {
	if t == nil {
		return "", false
	}
	idx, ok := t.owner[Normalize(term)]
	if !ok {
		return "", false
	}
	return t.groups[idx].Canonical, true
}

// Expand returns the normalized query followed by every variant produced by
// replacing a group member found in it with each other member of that group.
// The result has set semantics and a deterministic order.
func (t *SynonymTable) Expand(query string) []string {
	q := Normalize(query)
	variants := []string{q}
	if t == nil || q == "" {
		return variants
	}

	seen := map[string]struct{}{q: {}}
	add := func(v string) {
		v = strings.Join(strings.Fields(v), " ")
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	for _, g := range t.groups {
		members := g.Members()
		for _, found := range members {
			if !t.contains(q, found) {
				continue
			}
			for _, other := range members {
				if other == found {
					continue
				}
				add(t.replace(q, found, other))
			}
		}
	}
	return variants
}

func (t *SynonymTable) contains(q, term string) bool {
	if t.mode == MatchSubstring {
		return strings.Contains(q, term)
	}
	return len(boundaryMatches(q, term)) > 0
}

func (t *SynonymTable) replace(q, term, with string) string {
	if t.mode == MatchSubstring {
		return strings.ReplaceAll(q, term, with)
	}
	matches := boundaryMatches(q, term)
	var b strings.Builder
	last := 0
	for _, start := range matches {
		b.WriteString(q[last:start])
		b.WriteString(with)
		last = start + len(term)
	}
	b.WriteString(q[last:])
	return b.String()
}

// boundaryMatches returns the byte offsets of non-overlapping occurrences of
// term in q that start and end on a token boundary.
func boundaryMatches(q, term string) []int {
	if term == "" {
		return nil
	}
	var out []int
	offset := 0
	for offset <= len(q)-len(term) {
		i := strings.Index(q[offset:], term)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(term)
		if atBoundary(q, start, end, term) {
			out = append(out, start)
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(q[start:])
		offset = start + size
	}
	return out
}

func atBoundary(q string, start, end int, term string) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(q[:start])
		first, _ := utf8.DecodeRuneInString(term)
		if isWordRune(before) && !(isContinuousScript(before) || isContinuousScript(first)) {
			return false
		}
	}
	if end < len(q) {
		after, _ := utf8.DecodeRuneInString(q[end:])
		last, _ := utf8.DecodeLastRuneInString(term)
		if isWordRune(after) && !(isContinuousScript(after) || isContinuousScript(last)) {
			return false
		}
	}
	return true
}
