// Package config loads the curator's category definitions and filter rules
// from YAML. All configuration errors are fatal and surfaced before any
// network call is made.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SearchTerm is one search within a category. In YAML a term is either a bare
// string (the name doubles as the query) or a mapping with overrides.
type SearchTerm struct {
	Name       string
	Query      string   // optional custom query text; empty means use Name
	Mediatypes []string // optional override of the category default
}

func (t *SearchTerm) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Name = value.Value
		return nil
	}

	var aux struct {
		Name       string   `yaml:"name"`
		SearchTerm string   `yaml:"search_term"`
		Mediatype  []string `yaml:"mediatype"`
	}

	if err := value.Decode(&aux); err != nil {
		return err
	}

	t.Name = aux.Name
	t.Query = aux.SearchTerm
	t.Mediatypes = aux.Mediatype

	return nil
}

// Category groups search terms under a shared default mediatype set.
type Category struct {
	Name        string
	Description string
	Mediatypes  []string
	Terms       []SearchTerm
}

type categoryYAML struct {
	Description string       `yaml:"description"`
	Mediatype   []string     `yaml:"mediatype"`
	Terms       []SearchTerm `yaml:"terms"`
}

// LoadCategories reads a categories file, preserving the file's category
// order so repeated runs process terms deterministically.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories config: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse categories config %s: %w", path, err)
	}

	if len(root.Content) == 0 {
		return nil, fmt.Errorf("categories config %s is empty", path)
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories config %s: expected a mapping of category names", path)
	}

	categories := make([]Category, 0, len(mapping.Content)/2)

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		name := mapping.Content[i].Value

		var raw categoryYAML
		if err := mapping.Content[i+1].Decode(&raw); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}

		cat := Category{
			Name:        name,
			Description: raw.Description,
			Mediatypes:  raw.Mediatype,
			Terms:       raw.Terms,
		}

		if len(cat.Mediatypes) == 0 {
			cat.Mediatypes = []string{"texts"}
		}

		if len(cat.Terms) == 0 {
			return nil, fmt.Errorf("category %q has no terms", name)
		}

		for j, term := range cat.Terms {
			if term.Name == "" {
				return nil, fmt.Errorf("category %q: term %d has no name", name, j+1)
			}
		}

		categories = append(categories, cat)
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("categories config %s defines no categories", path)
	}

	return categories, nil
}

// FilterConfig holds the scoring and filtering rule tables. It is loaded once
// at startup and treated as read-only afterwards.
type FilterConfig struct {
	MinConfidence      int
	MinDownloads       int
	MinFavorites       int
	MinPages           int
	PageBonusThreshold int
	PageBonusPoints    int
	AcademicPatterns   []string
	AcademicPenalty    int
	InterviewPatterns  []string
	InterviewPenalty   int
	LivePatterns       []string
	LivePenalty        int
	TrustedPublishers  []string
	PublisherBonus     int
	TrustedCollections []string
	CollectionBonus    int
	PreferredFormats   map[string][]string
	FormatBonus        int
	MediatypeLimits    map[string]int // 0 or absent means unlimited
}

// LoadFilters reads a filters file via viper, applying reference defaults for
// every threshold and penalty.
func LoadFilters(path string) (FilterConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("min_confidence", 60)
	v.SetDefault("min_downloads", 10)
	v.SetDefault("min_favorites", 1)
	v.SetDefault("page_count.min_pages", 50)
	v.SetDefault("page_count.bonus_threshold", 200)
	v.SetDefault("page_count.bonus_points", 10)
	v.SetDefault("academic_penalty", 40)
	v.SetDefault("interview_penalty", 50)
	v.SetDefault("live_recording_penalty", 30)
	v.SetDefault("publisher_bonus", 15)
	v.SetDefault("collection_bonus", 10)
	v.SetDefault("format_bonus", 5)

	// A missing filters file is not an error: every value has a default.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return FilterConfig{}, fmt.Errorf("read filters config: %w", err)
	}

	preferred := make(map[string][]string)
	for mediatype := range v.GetStringMap("preferred_formats") {
		preferred[mediatype] = v.GetStringSlice("preferred_formats." + mediatype)
	}

	limits := make(map[string]int)
	for mediatype := range v.GetStringMap("mediatype_limits") {
		limits[mediatype] = v.GetInt("mediatype_limits." + mediatype)
	}

	return FilterConfig{
		MinConfidence:      v.GetInt("min_confidence"),
		MinDownloads:       v.GetInt("min_downloads"),
		MinFavorites:       v.GetInt("min_favorites"),
		MinPages:           v.GetInt("page_count.min_pages"),
		PageBonusThreshold: v.GetInt("page_count.bonus_threshold"),
		PageBonusPoints:    v.GetInt("page_count.bonus_points"),
		AcademicPatterns:   v.GetStringSlice("academic_patterns"),
		AcademicPenalty:    v.GetInt("academic_penalty"),
		InterviewPatterns:  v.GetStringSlice("interview_patterns"),
		InterviewPenalty:   v.GetInt("interview_penalty"),
		LivePatterns:       v.GetStringSlice("live_recording_patterns"),
		LivePenalty:        v.GetInt("live_recording_penalty"),
		TrustedPublishers:  v.GetStringSlice("trusted_publishers"),
		PublisherBonus:     v.GetInt("publisher_bonus"),
		TrustedCollections: v.GetStringSlice("trusted_collections"),
		CollectionBonus:    v.GetInt("collection_bonus"),
		PreferredFormats:   preferred,
		FormatBonus:        v.GetInt("format_bonus"),
		MediatypeLimits:    limits,
	}, nil
}

// LoadCategoriesFromDir loads the categories file from a config directory.
// An alternate file may be given by name (relative to the directory) or by
// absolute path; empty means the default categories.yaml.
func LoadCategoriesFromDir(configDir, categoriesFile string) ([]Category, error) {
	path := filepath.Join(configDir, "categories.yaml")
	if categoriesFile != "" {
		if filepath.IsAbs(categoriesFile) {
			path = categoriesFile
		} else {
			path = filepath.Join(configDir, categoriesFile)
		}
	}

	return LoadCategories(path)
}

// Load reads both configuration files from a config directory.
func Load(configDir, categoriesFile string) ([]Category, FilterConfig, error) {
	categories, err := LoadCategoriesFromDir(configDir, categoriesFile)
	if err != nil {
		return nil, FilterConfig{}, err
	}

	filters, err := LoadFilters(filepath.Join(configDir, "filters.yaml"))
	if err != nil {
		return nil, FilterConfig{}, err
	}

	return categories, filters, nil
}
