//go:generate moq -out internal/mocks/link_source_moq.go -pkg mocks . LinkSource

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"wikiPathfinder/domain/model"
)

type (
	Logger interface {
		Printf(format string, args ...interface{})
	}

	// LinkSource returns the outgoing links of a page. It must honour ctx.
	LinkSource interface {
		Links(ctx context.Context, node string) ([]string, error)
	}
)

// MaxWorkers is the largest pool a scheduler accepts.
const MaxWorkers = 100

var (
	ErrInvalidSize   = fmt.Errorf("scheduler: size must be between 1 and %d", MaxWorkers)
	ErrNilLinkSource = errors.New("scheduler: link source is nil")
	ErrEmptyNode     = errors.New("scheduler: start and goal must not be empty")
)

// CompletedHook is called with every node whose links were fetched.
type CompletedHook func(ctx context.Context, node string, links []string)

func NoOpCompletedHook(ctx context.Context, node string, links []string) {}

// Config of a Scheduler. Zero limits mean unbounded.
type Config struct {
	Size         uint64 // Number of workers
	MaxQueueSize uint64 // Abort once both frontiers together hold more nodes than this
	MaxDepth     uint64 // Longest path, in hops, worth looking for
	MaxRetries   uint64 // Extra attempts for a node whose fetch failed

	// ShutdownTimeout bounds how long a finished search waits for its workers.
	// Workers still running after it are left behind. Zero waits forever.
	ShutdownTimeout time.Duration
}

// Scheduler runs breadth-first shortest path searches over a LinkSource
// with a pool of workers. A scheduler can run any number of searches, one
// pool is started per search.
type Scheduler struct {
	logger Logger
	cfg    Config

	linkSource LinkSource

	completionHook CompletedHook
}

// New creates a new Scheduler.
// CompletedHook is called when a worker is done with a node and is a non-blocking call.
func New(logger Logger, cfg Config, linkSource LinkSource, completionHook CompletedHook) (*Scheduler, error) {
	if cfg.Size == 0 || cfg.Size > MaxWorkers {
		return nil, ErrInvalidSize
	}
	if linkSource == nil {
		return nil, ErrNilLinkSource
	}
	if completionHook == nil {
		completionHook = NoOpCompletedHook
	}
	return &Scheduler{
		logger:         logger,
		cfg:            cfg,
		linkSource:     linkSource,
		completionHook: completionHook,
	}, nil
}

// Search looks for a shortest path from start to goal.
//
// Progress samples and dead worker indices are offered on sinks without ever
// blocking the search; see Sinks. Cancelling ctx aborts the search with
// model.ConsumerGone.
//
// When several shortest paths exist the one returned depends on which worker
// reports first, and can differ between runs. Its length never does.
func (s *Scheduler) Search(ctx context.Context, start, goal string, sinks Sinks) (model.SearchResult, error) {
	if start == "" || goal == "" {
		return model.SearchResult{}, ErrEmptyNode
	}
	if start == goal {
		return model.SearchResult{Outcome: model.Found, Path: []string{start}}, nil
	}

	sr := newSearch(s, ctx, start, goal, sinks)
	stop := sr.startWorkers()
	defer stop()

	return sr.run(), nil
}

// Search runs a single search with a throwaway scheduler.
func Search(ctx context.Context, start, goal string, workerCount, maxQueueSize uint64, linkSource LinkSource, sinks Sinks) (model.SearchResult, error) {
	s, err := New(log.New(io.Discard, "", 0), Config{Size: workerCount, MaxQueueSize: maxQueueSize}, linkSource, nil)
	if err != nil {
		return model.SearchResult{}, err
	}
	return s.Search(ctx, start, goal, sinks)
}
