package cmd

import (
	"context"
	"fmt"

	"github.com/pcannon/curio/internal/config"
	"github.com/pcannon/curio/internal/curator"
	"github.com/pcannon/curio/pkg/archive"
)

// pipelineParams collects the knobs the search and curate commands share.
type pipelineParams struct {
	category       string
	categoriesFile string
	maxResults     int
	workers        int
	metadata       bool
	minConfidence  int // >0 overrides the configured threshold
}

// runPipeline loads configuration, builds the API client, and runs the full
// pipeline for the selected categories. The loaded filters are returned so
// callers can apply the post-dedup mediatype caps.
func runPipeline(ctx context.Context, params pipelineParams) (curator.RunResult, config.FilterConfig, error) {
	categories, filters, err := config.Load(configDir, params.categoriesFile)
	if err != nil {
		return curator.RunResult{}, config.FilterConfig{}, err
	}

	if params.category != "" {
		categories = selectCategory(categories, params.category)
		if categories == nil {
			return curator.RunResult{}, config.FilterConfig{}, fmt.Errorf("unknown category: %s", params.category)
		}
	}

	if params.minConfidence > 0 {
		filters.MinConfidence = params.minConfidence
	}

	client := archive.New(archive.WithVerbose(verbose))

	result := curator.Run(ctx, client, categories, filters, curator.FetchOptions{
		MaxResults:    params.maxResults,
		Workers:       params.workers,
		FetchMetadata: params.metadata,
		Quiet:         quiet,
		Verbose:       verbose,
	})

	return result, filters, nil
}

func selectCategory(categories []config.Category, name string) []config.Category {
	for _, cat := range categories {
		if cat.Name == name {
			return []config.Category{cat}
		}
	}

	return nil
}
