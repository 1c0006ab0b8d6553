// Package keywords implements the comedy keyword filter applied before persistence
package keywords

import (
	"strings"

	"micdrop/internal/core/textnorm"
)

// set is the curated comedy vocabulary; matching happens on folded text
// so casing, width, and accents never matter
var set = []string{
	"open mic",
	"open-mic",
	"openmic",
	"open mike",
	"comedy",
	"stand-up",
	"stand up",
	"standup",
	"improv",
	"comedian",
}

// Matches reports whether the combined title and description mention the comedy domain.
// Candidates that fail this check are never persisted
func Matches(title, description string) bool {
	text := textnorm.Fold(title + " " + description)
	if text == "" {
		return false
	}
	for _, kw := range set {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Terms returns a copy of the keyword set for adapters that build search queries from it
func Terms() []string {
	out := make([]string, len(set))
	copy(out, set)
	return out
}
