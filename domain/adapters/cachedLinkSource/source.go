//go:generate moq -out internal/mocks/link_source_moq.go -pkg mocks . LinkSource

package cachedLinkSource

import (
	"context"
)

type (
	LinkSource interface {
		Links(ctx context.Context, node string) ([]string, error)
	}

	Store interface {
		Get(ctx context.Context, node string) ([]string, bool, error)
	}

	Logger interface {
		Printf(format string, args ...interface{})
	}
)

// Source answers from the store when it can and falls back to the wrapped source.
// Filling the store is left to the scheduler's completion hook.
type Source struct {
	next   LinkSource
	store  Store
	logger Logger
}

func New(next LinkSource, store Store, logger Logger) *Source {
	return &Source{
		next:   next,
		store:  store,
		logger: logger,
	}
}

func (s *Source) Links(ctx context.Context, node string) ([]string, error) {
	links, ok, err := s.store.Get(ctx, node)
	if err != nil {
		// a broken cache only costs a fetch
		s.logger.Printf("link cache read for %s failed: %s", node, err)
	}
	if ok && err == nil {
		return links, nil
	}
	return s.next.Links(ctx, node)
}
