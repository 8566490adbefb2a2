package annotate

import (
	"strings"
)

// paragraphSeparator is the unit boundary for chunking. Splitting on it and
// re-joining with it is lossless, which gives the segment round-trip
// guarantee without normalizing the document.
const paragraphSeparator = "\n\n"

// Split partitions text on paragraph boundaries into ordered segments of at
// most budget words each, where possible. A single paragraph longer than
// the budget is still placed whole in its own segment - no paragraph is
// ever split mid-unit. Join(Split(text, w)) == text for every text and w.
func Split(text string, budget int) []string {
	paragraphs := strings.Split(text, paragraphSeparator)

	var segments []string
	var current []string
	currentWords := 0

	for _, p := range paragraphs {
		words := len(strings.Fields(p))
		if len(current) > 0 && currentWords+words > budget {
			segments = append(segments, strings.Join(current, paragraphSeparator))
			current = current[:0]
			currentWords = 0
		}
		current = append(current, p)
		currentWords += words
	}

	segments = append(segments, strings.Join(current, paragraphSeparator))
	return segments
}

// Join reassembles segments in order with blank-line separators.
func Join(segments []string) string {
	return strings.Join(segments, paragraphSeparator)
}
