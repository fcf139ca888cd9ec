package curator

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/sourcegraph/conc/pool"
)

// FetchOptions controls the fetch stage.
type FetchOptions struct {
	MaxResults    int  // per-query result bound, default 50
	Workers       int  // worker pool size, default 4, capped
	FetchMetadata bool // fetch per-item metadata for richer scoring signals
	Quiet         bool // suppress progress output
	Verbose       bool
}

// QueryError records one failed query.
type QueryError struct {
	Spec QuerySpec
	Err  error
}

func (qe QueryError) Error() string {
	return fmt.Sprintf("query %q (%s): %v", qe.Spec.Term, qe.Spec.Mediatype, qe.Err)
}

// FetchSummary reports how the fetch stage went. Failures are aggregated
// here instead of aborting the run.
type FetchSummary struct {
	Queries int
	Failed  int
	Errors  []QueryError
}

// FetchItems runs every query spec against the catalog using a bounded worker
// pool, then normalizes the results into items. Workers complete out of
// order, but items are regrouped by original query index so repeated runs
// over identical inputs produce identical ordering. A query that fails after
// retries contributes zero items and is reported in the summary.
func FetchItems(ctx context.Context, searcher Searcher, specs []QuerySpec, opts FetchOptions) ([]Item, FetchSummary) {
	summary := FetchSummary{Queries: len(specs)}

	if len(specs) == 0 {
		return nil, summary
	}

	rows := opts.MaxResults
	if rows <= 0 {
		rows = 50
	}

	p := newQueryPool(ctx, searcher, opts.Workers)
	p.start()

	go func() {
		for i, spec := range specs {
			p.submit(queryTask{Index: i, Spec: spec, Rows: rows})
		}

		p.wait()
	}()

	// Join barrier: collect every query's privately owned result.
	byIndex := make([]queryTaskResult, len(specs))
	filled := make([]bool, len(specs))

	for res := range p.results {
		byIndex[res.Index] = res
		filled[res.Index] = true
	}

	// Queries the pool never ran (context cancelled mid-run) are failures,
	// not empty successes.
	for i := range byIndex {
		if !filled[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}

			byIndex[i] = queryTaskResult{Index: i, Spec: specs[i], Err: err}
		}
	}

	var items []Item

	seen := make(map[string]bool)

	for _, res := range byIndex {
		if res.Err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, QueryError{Spec: res.Spec, Err: res.Err})

			fmt.Fprintf(os.Stderr, "⚠️  search failed for %q (%s): %v\n", res.Spec.Term, res.Spec.Mediatype, res.Err)

			continue
		}

		if opts.Verbose {
			fmt.Fprintf(os.Stderr, "query %q (%s): %d results\n", res.Spec.Term, res.Spec.Mediatype, len(res.Docs))
		}

		for _, doc := range res.Docs {
			if doc.Identifier == "" || seen[doc.Identifier] {
				continue
			}

			seen[doc.Identifier] = true

			item := newItem(doc, res.Spec)
			if !MatchesIntent(item, res.Spec.Term) {
				continue
			}

			items = append(items, item)
		}
	}

	if opts.FetchMetadata && len(items) > 0 {
		fetchMetadata(ctx, searcher, items, opts)
	}

	return items, summary
}

// fetchMetadata enriches items with page counts and file formats from the
// metadata endpoint. Individual failures leave the item with its search-time
// fields; they are never fatal.
func fetchMetadata(ctx context.Context, searcher Searcher, items []Item, opts FetchOptions) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	p := pool.New().WithMaxGoroutines(workers)

	// Each goroutine owns exactly one slice element, so no locking is needed.
	for i := range items {
		i := i

		p.Go(func() {
			meta, err := searcher.Metadata(ctx, items[i].Identifier)
			if err != nil || meta == nil {
				if err != nil && opts.Verbose {
					fmt.Fprintf(os.Stderr, "metadata fetch failed for %s: %v\n", items[i].Identifier, err)
				}

				return
			}

			if pageCount := meta.PageCount(); pageCount > 0 {
				items[i].PageCount = pageCount
			}

			items[i].Formats = mergeFormats(items[i].Formats, meta.Formats())
		})
	}

	p.Wait()
}

func mergeFormats(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))

	var out []string

	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if f == "" || seen[f] {
				continue
			}

			seen[f] = true

			out = append(out, f)
		}
	}

	sort.Strings(out)

	return out
}
