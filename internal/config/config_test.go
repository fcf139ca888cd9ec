package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func TestLoadCategories(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "categories.yaml", `
literature:
  description: Beat generation and adjacent writing
  mediatype: [texts]
  terms:
    - "naked lunch"
    - name: burroughs readings
      search_term: "william s burroughs reading"
      mediatype: [audio]
spoken_word:
  terms:
    - "ginsberg howl"
`)

	categories, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}

	lit := categories[0]
	if lit.Name != "literature" {
		t.Errorf("category order not preserved: first is %q", lit.Name)
	}

	if len(lit.Terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(lit.Terms))
	}

	if lit.Terms[0].Name != "naked lunch" || lit.Terms[0].Query != "" {
		t.Errorf("bare string term decoded wrong: %+v", lit.Terms[0])
	}

	custom := lit.Terms[1]
	if custom.Query != "william s burroughs reading" {
		t.Errorf("custom query not decoded: %+v", custom)
	}

	if len(custom.Mediatypes) != 1 || custom.Mediatypes[0] != "audio" {
		t.Errorf("mediatype override not decoded: %+v", custom)
	}

	// Category without a mediatype defaults to texts.
	if got := categories[1].Mediatypes; len(got) != 1 || got[0] != "texts" {
		t.Errorf("expected default mediatype [texts], got %v", got)
	}
}

func TestLoadCategoriesErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"term without name", "cat:\n  terms:\n    - search_term: only a query\n"},
		{"no terms", "cat:\n  description: empty\n"},
		{"not a mapping", "- just\n- a\n- list\n"},
		{"empty file", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "categories.yaml", tc.content)

			if _, err := LoadCategories(path); err == nil {
				t.Error("expected configuration error")
			}
		})
	}
}

func TestLoadFiltersDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "filters.yaml", "academic_patterns:\n  - dissertation\n")

	filters, err := LoadFilters(path)
	if err != nil {
		t.Fatalf("LoadFilters failed: %v", err)
	}

	if filters.MinConfidence != 60 {
		t.Errorf("expected default min_confidence 60, got %d", filters.MinConfidence)
	}

	if filters.MinDownloads != 10 || filters.MinFavorites != 1 {
		t.Errorf("unexpected engagement defaults: %+v", filters)
	}

	if filters.MinPages != 50 || filters.PageBonusThreshold != 200 || filters.PageBonusPoints != 10 {
		t.Errorf("unexpected page defaults: %+v", filters)
	}

	if len(filters.AcademicPatterns) != 1 || filters.AcademicPatterns[0] != "dissertation" {
		t.Errorf("academic patterns not loaded: %v", filters.AcademicPatterns)
	}
}

func TestLoadFiltersOverridesAndFormats(t *testing.T) {
	path := writeFile(t, t.TempDir(), "filters.yaml", `
min_confidence: 75
min_downloads: 100
page_count:
  min_pages: 30
trusted_publishers:
  - MIT Press
preferred_formats:
  texts: [PDF, EPUB]
  audio: [FLAC]
`)

	filters, err := LoadFilters(path)
	if err != nil {
		t.Fatalf("LoadFilters failed: %v", err)
	}

	if filters.MinConfidence != 75 || filters.MinDownloads != 100 {
		t.Errorf("overrides not applied: %+v", filters)
	}

	if filters.MinPages != 30 {
		t.Errorf("nested override not applied: %d", filters.MinPages)
	}

	if got := filters.PreferredFormats["texts"]; len(got) != 2 || got[0] != "PDF" {
		t.Errorf("preferred formats not loaded: %v", filters.PreferredFormats)
	}
}

func TestLoadFiltersMediatypeLimits(t *testing.T) {
	path := writeFile(t, t.TempDir(), "filters.yaml", `
mediatype_limits:
  movies: 10
  audio: 25
`)

	filters, err := LoadFilters(path)
	if err != nil {
		t.Fatalf("LoadFilters failed: %v", err)
	}

	if filters.MediatypeLimits["movies"] != 10 || filters.MediatypeLimits["audio"] != 25 {
		t.Errorf("mediatype limits not loaded: %v", filters.MediatypeLimits)
	}

	if _, ok := filters.MediatypeLimits["texts"]; ok {
		t.Errorf("unconfigured mediatype should have no limit: %v", filters.MediatypeLimits)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := Load(dir, ""); err == nil {
		t.Error("expected error when categories.yaml is missing")
	}

	writeFile(t, dir, "categories.yaml", "cat:\n  terms: [\"x\"]\n")

	// A missing filters file falls back to built-in defaults.
	_, filters, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load without filters.yaml failed: %v", err)
	}

	if filters.MinConfidence != 60 {
		t.Errorf("expected default min_confidence 60, got %d", filters.MinConfidence)
	}

	writeFile(t, dir, "filters.yaml", "min_confidence: 75\n")

	_, filters, err = Load(dir, "")
	if err != nil {
		t.Fatalf("expected full config to load, got: %v", err)
	}

	if filters.MinConfidence != 75 {
		t.Errorf("filters.yaml override not applied: %d", filters.MinConfidence)
	}
}
