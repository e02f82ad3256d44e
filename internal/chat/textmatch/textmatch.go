// Package textmatch implements the substring heuristics shared by the
// question classifiers.
package textmatch

import "strings"

// Fold builds the lower-cased text every classifier scans.
func Fold(question, context string) string {
	return strings.ToLower(question + " " + context)
}

// First returns the first term contained in text, or "".
func First(text string, terms []string) string {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return term
		}
	}
	return ""
}

// Count returns how many distinct terms occur in text.
func Count(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			n++
		}
	}
	return n
}
