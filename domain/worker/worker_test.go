package worker_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiPathfinder/domain/worker"
	"wikiPathfinder/domain/worker/internal/mocks"
)

func startWorker(ctx context.Context, source worker.LinkSource) (chan string, chan worker.Result) {
	in := make(chan string, 1)
	out := make(chan worker.Result, 1)
	w := worker.New(0, source, log.New(io.Discard, "", 0))
	go w.Run(ctx, in, out)
	return in, out
}

func receive(t *testing.T, out <-chan worker.Result) (worker.Result, bool) {
	t.Helper()
	select {
	case res, ok := <-out:
		return res, ok
	case <-time.After(time.Second):
		t.Fatal("worker did not respond")
		return worker.Result{}, false
	}
}

func TestWorker_Run(t *testing.T) {
	t.Run("returns the links of a node", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		source := &mocks.LinkSourceMock{
			LinksFunc: func(ctx context.Context, node string) ([]string, error) {
				return []string{node + "/a", node + "/b"}, nil
			},
		}
		in, out := startWorker(ctx, source)

		in <- "root"
		res, ok := receive(t, out)
		require.True(t, ok)
		assert.NoError(t, res.Err)
		assert.Equal(t, "root", res.Node)
		assert.Equal(t, []string{"root/a", "root/b"}, res.Links)
	})
	t.Run("fetch error is a value and the worker keeps serving", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errFetch := errors.New("boom")
		source := &mocks.LinkSourceMock{
			LinksFunc: func(ctx context.Context, node string) ([]string, error) {
				if node == "broken" {
					return nil, errFetch
				}
				return []string{"x"}, nil
			},
		}
		in, out := startWorker(ctx, source)

		in <- "broken"
		res, ok := receive(t, out)
		require.True(t, ok)
		assert.ErrorIs(t, res.Err, errFetch)
		assert.Equal(t, "broken", res.Node)

		in <- "fine"
		res, ok = receive(t, out)
		require.True(t, ok)
		assert.NoError(t, res.Err)
		assert.Len(t, source.LinksCalls(), 2)
	})
	t.Run("closes its results when the requests close", func(t *testing.T) {
		source := &mocks.LinkSourceMock{}
		in, out := startWorker(context.Background(), source)

		close(in)
		_, ok := receive(t, out)
		assert.False(t, ok)
	})
	t.Run("closes its results when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		_, out := startWorker(ctx, &mocks.LinkSourceMock{})

		cancel()
		_, ok := receive(t, out)
		assert.False(t, ok)
	})
	t.Run("a panicking link source retires the worker", func(t *testing.T) {
		source := &mocks.LinkSourceMock{
			LinksFunc: func(ctx context.Context, node string) ([]string, error) {
				panic("parser exploded")
			},
		}
		in, out := startWorker(context.Background(), source)

		in <- "root"
		_, ok := receive(t, out)
		assert.False(t, ok)
	})
}
