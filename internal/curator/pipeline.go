package curator

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pcannon/curio/internal/config"
	"github.com/pcannon/curio/internal/dedup"
)

// RunResult is the outcome of one pipeline run: every fetched item, scored
// and flagged, plus the fetch diagnostics. Items below threshold are kept so
// diagnostic modes can report their scores; callers select with Included()
// and Deduplicate before persisting.
type RunResult struct {
	Items   []Item
	Summary FetchSummary
}

// Run executes the pipeline for the given categories: expand queries, fetch
// concurrently, score, and apply the engagement filter. Items are ordered by
// confidence score (descending, stable) within the run.
func Run(ctx context.Context, searcher Searcher, categories []config.Category, filters config.FilterConfig, opts FetchOptions) RunResult {
	var result RunResult

	for _, cat := range categories {
		specs := ExpandQueries(cat)

		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "🔍 %s: %d queries\n", cat.Name, len(specs))
		}

		items, summary := FetchItems(ctx, searcher, specs, opts)

		for i := range items {
			items[i].Confidence = Score(items[i], filters)
			items[i].Engaged, _ = MeetsEngagement(items[i], filters)
		}

		result.Items = append(result.Items, items...)
		result.Summary.Queries += summary.Queries
		result.Summary.Failed += summary.Failed
		result.Summary.Errors = append(result.Summary.Errors, summary.Errors...)
	}

	sort.SliceStable(result.Items, func(a, b int) bool {
		return result.Items[a].Confidence.Score > result.Items[b].Confidence.Score
	})

	return result
}

// Included returns the items that pass both filters.
func (r RunResult) Included() []Item {
	var out []Item

	for _, item := range r.Items {
		if item.Included() {
			out = append(out, item)
		}
	}

	return out
}

// Deduplicate collapses duplicate clusters within a batch, keeping one
// representative per cluster: the highest-scoring item, ties broken by more
// complete metadata, then by earliest encounter order. Output preserves the
// encounter order of the survivors.
func Deduplicate(items []Item) []Item {
	if len(items) <= 1 {
		return items
	}

	keys := make([]dedup.Key, len(items))
	for i, item := range items {
		keys[i] = item.dedupKey()
	}

	clusters := dedup.Cluster(keys)

	survivors := make([]int, 0, len(clusters))

	for _, cluster := range clusters {
		best := cluster[0]
		for _, idx := range cluster[1:] {
			if betterRepresentative(items[idx], idx, items[best], best) {
				best = idx
			}
		}

		survivors = append(survivors, best)
	}

	sort.Ints(survivors)

	out := make([]Item, 0, len(survivors))
	for _, idx := range survivors {
		out = append(out, items[idx])
	}

	return out
}

// ApplyMediatypeLimits caps how many items of each mediatype survive, keeping
// the highest-scoring ones (ties to earlier encounter order). A mediatype with
// no configured limit, or a limit of zero, is unlimited. Survivors keep their
// relative order.
func ApplyMediatypeLimits(items []Item, limits map[string]int) []Item {
	if len(limits) == 0 {
		return items
	}

	byType := make(map[string][]int)
	keep := make([]bool, len(items))

	for i, item := range items {
		if limit := limits[item.Mediatype]; limit > 0 {
			byType[item.Mediatype] = append(byType[item.Mediatype], i)
		} else {
			keep[i] = true
		}
	}

	for mediatype, idxs := range byType {
		limit := limits[mediatype]
		if len(idxs) <= limit {
			for _, i := range idxs {
				keep[i] = true
			}

			continue
		}

		ranked := append([]int(nil), idxs...)
		sort.SliceStable(ranked, func(a, b int) bool {
			return items[ranked[a]].Confidence.Score > items[ranked[b]].Confidence.Score
		})

		for _, i := range ranked[:limit] {
			keep[i] = true
		}
	}

	out := make([]Item, 0, len(items))

	for i, item := range items {
		if keep[i] {
			out = append(out, item)
		}
	}

	return out
}

// betterRepresentative reports whether item a (at encounter index ai) should
// represent a duplicate cluster over item b.
func betterRepresentative(a Item, ai int, b Item, bi int) bool {
	if a.Confidence.Score != b.Confidence.Score {
		return a.Confidence.Score > b.Confidence.Score
	}

	if ca, cb := completeness(a), completeness(b); ca != cb {
		return ca > cb
	}

	return ai < bi
}

// completeness counts the optional metadata fields an item carries; used only
// for duplicate tie-breaking.
func completeness(item Item) int {
	n := 0

	if item.Publisher != "" {
		n++
	}

	if item.PageCount > 0 {
		n++
	}

	return n
}
