// Package utils provides shared utilities for text, math, and logging.
package utils

import "unicode/utf8"

// Truncate returns s cut to maxLen runes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	clipped := Clip(s, maxLen)
	if len(clipped) == len(s) {
		return s
	}
	return clipped + "..."
}

// Clip returns the first maxLen runes of s. If maxLen is 0 or negative,
// returns s unchanged.
func Clip(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneLen is utf8.RuneCountInString, named for call-site readability.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
