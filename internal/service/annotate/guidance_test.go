package annotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aaronpowner1970/words-of-plainness-editor/internal/domain/models"
)

func TestLoadCatalogOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	data := `- id: clarity
  label: Readability
  guidance: Custom clarity guidance.
- id: tone
  guidance: Custom tone guidance.
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if got := catalog.Guidance(models.CategoryClarity); got != "Custom clarity guidance." {
		t.Errorf("clarity guidance = %q", got)
	}
	if got := catalog.Guidance(models.CategoryTone); got != "Custom tone guidance." {
		t.Errorf("tone guidance = %q", got)
	}
	// Untouched categories keep their defaults.
	if got := catalog.Guidance(models.CategoryGrammar); got == "" {
		t.Error("grammar guidance lost")
	}

	list := catalog.List()
	if len(list) != len(models.AllCategories()) {
		t.Fatalf("len(List()) = %d, want %d", len(list), len(models.AllCategories()))
	}
	if list[0].ID != models.CategoryClarity || list[0].Label != "Readability" {
		t.Errorf("List()[0] = %+v", list[0])
	}
}

func TestLoadCatalogRejectsUnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	data := "- id: sparkle\n  label: Sparkle\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("LoadCatalog() error = nil, want unknown category error")
	}
}
