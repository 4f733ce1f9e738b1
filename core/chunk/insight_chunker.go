// Package chunk splits long bodies into overlapping word-bounded segments.
package chunk

import "strings"

const (
	// DefaultMaxChars is the per-chunk character budget.
	DefaultMaxChars = 1500

	// OverlapWords is how many trailing words of a closed chunk are
	// carried into the next one so no statement is cut mid-thought.
	OverlapWords = 50
)

// Split breaks text into chunks of at most maxChars characters, each
// after the first beginning with up to OverlapWords words of overlap
// from the previous chunk. Boundaries never split a word, so a single
// word longer than maxChars forms a chunk on its own; that is the only
// way a chunk can exceed the limit. Text already under budget is
// returned as a single element, verbatim; empty or all-whitespace input
// yields no chunks.
func Split(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= maxChars {
		return []string{text}
	}

	words := strings.Fields(text)
	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range words {
		testLen := currentLen + len(word) + 1
		if testLen > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			overlapStart := len(current) - OverlapWords
			if overlapStart < 0 {
				overlapStart = 0
			}
			current = append([]string(nil), current[overlapStart:]...)
			currentLen = 0
			for _, w := range current {
				currentLen += len(w) + 1
			}
			// The carried overlap must leave room for the word that
			// closed the previous chunk, or long words would push
			// every following chunk over the limit.
			for len(current) > 0 && currentLen+len(word)+1 > maxChars {
				currentLen -= len(current[0]) + 1
				current = current[1:]
			}
		}
		current = append(current, word)
		currentLen += len(word) + 1
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}
