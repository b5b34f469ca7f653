//go:generate moq -out internal/mocks/link_source_moq.go -pkg mocks . LinkSource

package worker

import (
	"context"
)

type (
	// LinkSource returns the outgoing links of a page.
	// Fetching may differ e.g. HTTP, a cache in front of HTTP, a fixed graph in tests.
	LinkSource interface {
		Links(ctx context.Context, node string) ([]string, error)
	}

	Logger interface {
		Printf(format string, args ...interface{})
	}
)

// Result is what a worker hands back for one node.
// A failed fetch is a Result with Err set; the worker keeps running.
type Result struct {
	Node  string
	Links []string
	Err   error
}

// Worker fetches one node at a time on behalf of the scheduler.
type Worker struct {
	id         int
	linkSource LinkSource
	logger     Logger
}

func New(id int, linkSource LinkSource, logger Logger) *Worker {
	return &Worker{
		id:         id,
		linkSource: linkSource,
		logger:     logger,
	}
}

// Run serves nodes from in until in is closed or ctx is done.
// out is closed when Run returns, which is how the scheduler learns the worker is gone.
// A panicking link source ends the worker the same way.
func (w *Worker) Run(ctx context.Context, in <-chan string, out chan<- Result) {
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			w.logger.Printf("worker %d crashed: %v", w.id, r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case node, ok := <-in:
			if !ok {
				return
			}

			links, err := w.linkSource.Links(ctx, node)

			select {
			case out <- Result{Node: node, Links: links, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}
