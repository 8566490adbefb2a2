package session

import (
	"fmt"
	"sort"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain"
	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
)

// acceptSuggestion splices the replacement into content and reconciles the
// remaining set: suggestions entirely before the edit keep their anchors,
// suggestions after it shift by the length delta, and suggestions
// overlapping the edited region are invalidated and dropped. Returns the
// new content and the surviving set.
func acceptSuggestion(content string, set []*models.Suggestion, id int) (string, []*models.Suggestion, error) {
	accepted := findSuggestion(set, id)
	if accepted == nil {
		return "", nil, &domain.NotFoundError{Message: fmt.Sprintf("suggestion %d not found", id)}
	}

	// A stale anchor means the document was edited since analysis; splicing
	// would corrupt it. Refuse instead.
	if accepted.End > len(content) || content[accepted.Start:accepted.End] != accepted.Original {
		return "", nil, &domain.ValidationError{
			Message: fmt.Sprintf("suggestion %d no longer matches the document; run analysis again", id),
		}
	}

	newContent := content[:accepted.Start] + accepted.Replacement + content[accepted.End:]
	delta := len(accepted.Replacement) - len(accepted.Original)

	remaining := make([]*models.Suggestion, 0, len(set)-1)
	for _, s := range set {
		if s.ID == id {
			continue
		}
		switch {
		case s.End <= accepted.Start:
			// Entirely before the edit, anchor unchanged.
			remaining = append(remaining, s)
		case s.Start >= accepted.End:
			s.Start += delta
			s.End += delta
			remaining = append(remaining, s)
		default:
			// Overlaps the edited region: the text it anchored to is gone.
		}
	}

	return newContent, remaining, nil
}

// dismissSuggestion removes the suggestion from the set without touching
// the document.
func dismissSuggestion(set []*models.Suggestion, id int) ([]*models.Suggestion, error) {
	if findSuggestion(set, id) == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("suggestion %d not found", id)}
	}

	remaining := make([]*models.Suggestion, 0, len(set)-1)
	for _, s := range set {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	return remaining, nil
}

// renderOrder returns the set sorted by start offset. Overlapping
// suggestions should not survive anchoring, but are handled defensively:
// of any overlapping pair only the earliest-starting one is kept, since
// both cannot be displayed.
func renderOrder(set []*models.Suggestion) []*models.Suggestion {
	ordered := make([]*models.Suggestion, len(set))
	copy(ordered, set)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].ID < ordered[j].ID
	})

	out := ordered[:0]
	lastEnd := -1
	for _, s := range ordered {
		if s.Start < lastEnd {
			continue
		}
		out = append(out, s)
		if s.End > lastEnd {
			lastEnd = s.End
		}
	}
	return out
}

func findSuggestion(set []*models.Suggestion, id int) *models.Suggestion {
	for _, s := range set {
		if s.ID == id {
			return s
		}
	}
	return nil
}
