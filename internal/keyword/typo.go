package keyword

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypoCycle is returned when typo corrections form a loop (a -> b -> a).
	ErrTypoCycle = errors.New("typo table contains a correction cycle")
	// ErrTypoTarget is returned when a multi-word correction contains a word
	// that is itself listed as a misspelling.
	ErrTypoTarget = errors.New("typo correction contains a misspelled word")
)

// TypoEntry maps one known misspelling to its canonical spelling.
type TypoEntry struct {
	Misspelling string
	Correction  string
}

// TypoCorrection records a single token replacement made by Correct.
type TypoCorrection struct {
	Original  string // The token as typed (normalized)
	Corrected string // The replacement
	Distance  int    // 0 for an exact table hit, otherwise the edit distance to the matched key
}

// TypoResult contains the outcome of correcting a query.
type TypoResult struct {
	OriginalQuery  string
	CorrectedQuery string
	Corrections    []TypoCorrection
}

// HasCorrections reports whether any token was replaced.
func (r *TypoResult) HasCorrections() bool {
	return len(r.Corrections) > 0
}

// TypoCorrector replaces known misspellings with their canonical terms.
// It is immutable after construction and safe for concurrent use.
type TypoCorrector struct {
	entries     []TypoEntry         // scan order for the fuzzy step
	exact       map[string]string   // misspelling -> resolved correction
	known       map[string]struct{} // words that are never corrected
	maxDistance int
	minFuzzyLen int
}

// TypoOption is a functional option for configuring TypoCorrector.
type TypoOption func(*TypoCorrector)

// WithTypoMaxDistance sets the maximum edit distance for the fuzzy step.
func WithTypoMaxDistance(d int) TypoOption {
	return func(c *TypoCorrector) {
		if d >= 0 {
			c.maxDistance = d
		}
	}
}

// WithMinFuzzyLength sets the minimum token length (in runes) eligible for
// fuzzy correction. Shorter tokens are only corrected on an exact table hit.
func WithMinFuzzyLength(n int) TypoOption {
	return func(c *TypoCorrector) {
		if n > 0 {
			c.minFuzzyLen = n
		}
	}
}

// WithVocabulary marks additional words as valid so they are never rewritten
// by the fuzzy step. Multi-word terms contribute each of their words.
func WithVocabulary(terms ...string) TypoOption {
	return func(c *TypoCorrector) {
		for _, t := range terms {
			for _, w := range Tokenize(Normalize(t)) {
				c.known[w] = struct{}{}
			}
		}
	}
}

// NewTypoCorrector builds a corrector from entries in scan order. Keys and
// corrections are normalized, chains (a -> b, b -> c) are resolved to their
// final target, and a cycle is reported as ErrTypoCycle.
func NewTypoCorrector(entries []TypoEntry, opts ...TypoOption) (*TypoCorrector, error) {
	c := &TypoCorrector{
		exact:       make(map[string]string, len(entries)),
		known:       make(map[string]struct{}),
		maxDistance: 1,
		minFuzzyLen: 3,
	}

	raw := make(map[string]string, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		key := Normalize(e.Misspelling)
		target := Normalize(e.Correction)
		// Queries are corrected token by token, so multi-word keys can never match.
		if key == "" || target == "" || key == target || strings.Contains(key, " ") {
			continue
		}
		if _, dup := raw[key]; dup {
			continue
		}
		raw[key] = target
		order = append(order, key)
	}

	for _, key := range order {
		target, err := resolveTypoChain(key, raw)
		if err != nil {
			return nil, err
		}
		c.exact[key] = target
		c.entries = append(c.entries, TypoEntry{Misspelling: key, Correction: target})
		for _, w := range Tokenize(target) {
			if _, bad := raw[w]; bad {
				return nil, fmt.Errorf("%w: %q in %q", ErrTypoTarget, w, target)
			}
			c.known[w] = struct{}{}
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	// A word that is itself a misspelling key must stay correctable.
	for key := range c.exact {
		delete(c.known, key)
	}

	return c, nil
}

func resolveTypoChain(key string, raw map[string]string) (string, error) {
	seen := map[string]struct{}{key: {}}
	target := raw[key]
	for {
		next, ok := raw[target]
		if !ok {
			return target, nil
		}
		if _, loop := seen[target]; loop {
			return "", fmt.Errorf("%w: %q", ErrTypoCycle, key)
		}
		seen[target] = struct{}{}
		target = next
	}
}

// Len returns the number of table entries.
func (c *TypoCorrector) Len() int {
	return len(c.entries)
}

// Correct normalizes query and rewrites each token: an exact table hit is
// replaced by its correction, known words are kept, and remaining tokens are
// replaced by the correction of the first key within the maximum distance.
// Tokens with no match pass through. The result is idempotent.
func (c *TypoCorrector) Correct(query string) *TypoResult {
	normalized := Normalize(query)
	result := &TypoResult{OriginalQuery: normalized}
	if c == nil {
		result.CorrectedQuery = normalized
		return result
	}

	tokens := Tokenize(normalized)
	corrected := make([]string, 0, len(tokens))
	for _, token := range tokens {
		replacement, dist, ok := c.correctToken(token)
		if !ok {
			corrected = append(corrected, token)
			continue
		}
		corrected = append(corrected, replacement)
		result.Corrections = append(result.Corrections, TypoCorrection{
			Original:  token,
			Corrected: replacement,
			Distance:  dist,
		})
	}

	result.CorrectedQuery = strings.Join(corrected, " ")
	return result
}

// CorrectQuery returns only the corrected query string.
func (c *TypoCorrector) CorrectQuery(query string) string {
	return c.Correct(query).CorrectedQuery
}

func (c *TypoCorrector) correctToken(token string) (string, int, bool) {
	if target, ok := c.exact[token]; ok {
		return target, 0, true
	}
	if _, ok := c.known[token]; ok {
		return "", 0, false
	}
	if c.maxDistance == 0 || len([]rune(token)) < c.minFuzzyLen {
		return "", 0, false
	}
	for _, e := range c.entries {
		if WithinDistance(token, e.Misspelling, c.maxDistance) {
			return e.Correction, LevenshteinDistance(token, e.Misspelling), true
		}
	}
	return "", 0, false
}

// IsKnown reports whether word is protected from fuzzy correction.
func (c *TypoCorrector) IsKnown(word string) bool {
	_, ok := c.known[Normalize(word)]
	return ok
}
