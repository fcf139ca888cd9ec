package curator

import (
	"context"
	"sync"

	"github.com/pcannon/curio/pkg/archive"
)

// Searcher is the slice of the archive client the fetch stage needs.
type Searcher interface {
	Search(ctx context.Context, query string, rows int) ([]archive.SearchDoc, error)
	Metadata(ctx context.Context, identifier string) (*archive.ItemMetadata, error)
}

// queryTask is one search query submitted to the pool. Index records the
// task's position in the original query order so results can be regrouped
// deterministically after the join.
type queryTask struct {
	Index int
	Spec  QuerySpec
	Rows  int
}

// queryTaskResult carries one query's outcome. A failed query holds its error
// and zero docs; it never aborts sibling queries.
type queryTaskResult struct {
	Index int
	Spec  QuerySpec
	Docs  []archive.SearchDoc
	Err   error
}

// queryPool is a bounded worker pool for search queries. Each worker owns its
// outputs until they are collected at the join barrier, so no shared state is
// written concurrently.
type queryPool struct {
	ctx        context.Context
	searcher   Searcher
	tasks      chan queryTask
	results    chan queryTaskResult
	wg         sync.WaitGroup
	numWorkers int
}

const maxWorkers = 16

func newQueryPool(ctx context.Context, searcher Searcher, numWorkers int) *queryPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	// Cap fan-out to avoid hammering the remote endpoint.
	if numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}

	return &queryPool{
		ctx:        ctx,
		searcher:   searcher,
		numWorkers: numWorkers,
		tasks:      make(chan queryTask, numWorkers*2),
		results:    make(chan queryTaskResult, numWorkers*2),
	}
}

func (p *queryPool) start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *queryPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}

			docs, err := p.searcher.Search(p.ctx, task.Spec.Query, task.Rows)
			p.results <- queryTaskResult{
				Index: task.Index,
				Spec:  task.Spec,
				Docs:  docs,
				Err:   err,
			}
		}
	}
}

func (p *queryPool) submit(task queryTask) {
	select {
	case p.tasks <- task:
	case <-p.ctx.Done():
	}
}

// wait signals that no more tasks will arrive and closes the results channel
// once all workers drain.
func (p *queryPool) wait() {
	close(p.tasks)
	p.wg.Wait()
	close(p.results)
}
