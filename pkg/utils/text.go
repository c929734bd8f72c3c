// Package utils provides shared utilities for text, math, and logging.
package utils

import "strings"

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// persianReplacements unifies Arabic-script variants onto their Persian forms
// so that user input and catalog text compare equal.
var persianReplacements = strings.NewReplacer(
	"ك", "ک",
	"ي", "ی",
	"ؤ", "و",
	"أ", "ا",
	"ۀ", "ه",
	"ئ", "ی",
)

// NormalizeText trims whitespace and unifies Arabic/Persian character
// variants. ASCII text passes through unchanged apart from trimming.
func NormalizeText(s string) string {
	return persianReplacements.Replace(strings.TrimSpace(s))
}

// FoldForMatch normalizes text for case-insensitive substring comparison.
func FoldForMatch(s string) string {
	return strings.ToLower(NormalizeText(s))
}
