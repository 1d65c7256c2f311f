package keyword

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// separators maps every rune that is not a letter, digit or combining mark to a space.
var separators = runes.Map(func(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
		return r
	}
	return ' '
})

// Normalize prepares text for matching: width folding, lowercasing, diacritic
// removal on Latin letters, and collapsing of everything that is not a letter
// or digit (in any script) into single spaces.
// Examples:
//   - "  Attack on Titan!! " -> "attack on titan"
//   - "Pokémon" -> "pokemon"
//   - "ＮＡＲＵＴＯ" -> "naruto"
//   - "進撃の巨人" -> "進撃の巨人"
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(width.Fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = stripLatinMarks(s)
	if mapped, _, err := transform.String(separators, s); err == nil {
		s = mapped
	}
	return strings.Join(strings.Fields(s), " ")
}

// stripLatinMarks removes combining marks that follow a Latin base letter.
// Marks on other scripts (e.g. the kana voicing marks) are kept.
func stripLatinMarks(s string) string {
	if isASCII(s) {
		return s
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	var base rune
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			if unicode.Is(unicode.Latin, base) {
				continue
			}
		} else {
			base = r
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// Tokenize splits normalized text on spaces.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// isContinuousScript reports whether r belongs to a script written without
// spaces between words, where token boundaries cannot be detected by spacing.
func isContinuousScript(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Thai)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ContainsTerm reports whether term occurs in text starting and ending on
// token boundaries. Both arguments are expected to be normalized.
func ContainsTerm(text, term string) bool {
	return len(boundaryMatches(text, term)) > 0
}
