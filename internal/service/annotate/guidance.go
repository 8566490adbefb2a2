package annotate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
)

// CategoryInfo describes one editorial focus area: its identifier, the
// label shown in the editor, and the guidance text injected into the
// analysis prompt when the category is active.
type CategoryInfo struct {
	ID       models.Category `yaml:"id" json:"id"`
	Label    string          `yaml:"label" json:"label"`
	Guidance string          `yaml:"guidance" json:"-"`
}

// Catalog is the fixed set of categories with their guidance text.
type Catalog struct {
	ordered []CategoryInfo
	byID    map[models.Category]CategoryInfo
}

// DefaultCatalog returns the built-in plain-language editorial categories.
func DefaultCatalog() *Catalog {
	return newCatalog([]CategoryInfo{
		{
			ID:       models.CategoryClarity,
			Label:    "Clarity",
			Guidance: "Flag sentences whose meaning a general reader would have to re-read to grasp. Prefer concrete subjects and active verbs. Untangle nested clauses.",
		},
		{
			ID:       models.CategoryConcision,
			Label:    "Concision",
			Guidance: "Flag filler phrases, redundant pairs, and throat-clearing openers. Propose the shortest wording that keeps the meaning.",
		},
		{
			ID:       models.CategoryGrammar,
			Label:    "Grammar",
			Guidance: "Flag agreement errors, dangling modifiers, tense shifts, and punctuation mistakes. Do not flag stylistic fragments used deliberately.",
		},
		{
			ID:       models.CategoryTone,
			Label:    "Tone",
			Guidance: "Flag wording that drifts from a plain, direct register: bureaucratic hedging, pomposity, or sudden informality.",
		},
		{
			ID:       models.CategoryTerminology,
			Label:    "Terminology",
			Guidance: "Flag jargon and inconsistent names for the same thing. Propose the plain term, or the one form the document already uses most.",
		},
	})
}

// LoadCatalog reads category overrides from a YAML file. Every entry must
// use one of the fixed category ids; entries may override label and
// guidance but cannot add new categories.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	var entries []CategoryInfo
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}

	catalog := DefaultCatalog()
	for _, entry := range entries {
		base, ok := catalog.byID[entry.ID]
		if !ok {
			return nil, fmt.Errorf("unknown category id %q in %s", entry.ID, path)
		}
		if entry.Label != "" {
			base.Label = entry.Label
		}
		if entry.Guidance != "" {
			base.Guidance = entry.Guidance
		}
		catalog.byID[entry.ID] = base
	}

	// Rebuild display order with overrides applied.
	for i, info := range catalog.ordered {
		catalog.ordered[i] = catalog.byID[info.ID]
	}
	return catalog, nil
}

func newCatalog(entries []CategoryInfo) *Catalog {
	byID := make(map[models.Category]CategoryInfo, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return &Catalog{ordered: entries, byID: byID}
}

// List returns all categories in display order.
func (c *Catalog) List() []CategoryInfo {
	out := make([]CategoryInfo, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Guidance returns the prompt guidance for a category, empty if unknown.
func (c *Catalog) Guidance(id models.Category) string {
	return c.byID[id].Guidance
}
