package storeLinks

import (
	"context"
)

type (
	Store interface {
		Put(ctx context.Context, node string, links []string) error
	}

	Logger interface {
		Printf(format string, args ...interface{})
	}
)

// StoreHook saves the links of every page a search fetched.
type StoreHook struct {
	store  Store
	logger Logger
}

func New(store Store, logger Logger) *StoreHook {
	return &StoreHook{
		store:  store,
		logger: logger,
	}
}

// Store has the signature of scheduler.CompletedHook.
func (h *StoreHook) Store(ctx context.Context, node string, links []string) {
	if err := h.store.Put(ctx, node, links); err != nil {
		h.logger.Printf("Error storing links of %s: %s", node, err)
	}
}
