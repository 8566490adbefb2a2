package models

// Category is an editorial focus area a suggestion belongs to. The set is
// fixed; unknown values coming back from the model are coerced to
// CategoryClarity during parsing.
type Category string

const (
	CategoryClarity     Category = "clarity"
	CategoryConcision   Category = "concision"
	CategoryGrammar     Category = "grammar"
	CategoryTone        Category = "tone"
	CategoryTerminology Category = "terminology"
)

// AllCategories lists every valid category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryClarity,
		CategoryConcision,
		CategoryGrammar,
		CategoryTone,
		CategoryTerminology,
	}
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryClarity, CategoryConcision, CategoryGrammar, CategoryTone, CategoryTerminology:
		return true
	}
	return false
}

// NormalizeCategory maps a model-supplied mode string onto the fixed set,
// falling back to clarity for anything unrecognized.
func NormalizeCategory(s string) Category {
	c := Category(s)
	if ValidCategory(c) {
		return c
	}
	return CategoryClarity
}

// Suggestion is one proposed edit anchored to a byte range of the session
// document. At creation time Content[Start:End] == Original; the anchor is
// not maintained automatically as the document mutates elsewhere - stale
// suggestions are shifted or dropped by the suggestion set operations.
type Suggestion struct {
	ID          int      `json:"id"`
	Original    string   `json:"original"`
	Replacement string   `json:"replacement"`
	Reason      string   `json:"reason"`
	Category    Category `json:"category"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
}

// Overlaps reports whether the suggestion's anchor intersects the byte
// range [start, end).
func (s *Suggestion) Overlaps(start, end int) bool {
	return s.Start < end && s.End > start
}
