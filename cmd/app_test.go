package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiPathfinder/domain/model"
	"wikiPathfinder/domain/scheduler"
)

// wiki maps article titles to the titles they link to.
var wiki = map[string][]string{
	"Start":    {"Alpha", "Beta"},
	"Alpha":    {"Gamma"},
	"Beta":     {"Gamma", "Start"},
	"Gamma":    {"Goal"},
	"Goal":     {},
	"Isolated": {},
}

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		links, ok := wiki[strings.TrimPrefix(r.URL.Path, "/wiki/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><div id="mw-content-text">`)
		for _, link := range links {
			fmt.Fprintf(w, `<a href="/wiki/%s">%s</a>`, link, link)
		}
		fmt.Fprint(w, `</div></body></html>`)
	}))
	t.Cleanup(server.Close)
	return server
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) output() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

type recordingPublisher struct {
	mu       sync.Mutex
	progress []model.Progress
	results  []model.SearchResult
}

func (p *recordingPublisher) Progress(_ context.Context, progress model.Progress) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = append(p.progress, progress)
	return nil
}

func (p *recordingPublisher) WorkerDied(context.Context, int) error { return nil }

func (p *recordingPublisher) Result(_ context.Context, res model.SearchResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, res)
	return nil
}

func testConfig(server *httptest.Server, from, to string) AppConfig {
	cfg := defaultConfig()
	cfg.From = server.URL + "/wiki/" + from
	cfg.To = server.URL + "/wiki/" + to
	cfg.ProgressInterval = 0
	cfg.Scheduler.Workers = 2
	cfg.Fetcher.Timeout = 5 * time.Second
	cfg.Fetcher.ArticlePrefix = server.URL + "/wiki/"
	cfg.Logger = &recordingLogger{}
	return cfg
}

func TestApp_Run(t *testing.T) {
	server := newWikiServer(t)

	t.Run("finds and prints the shortest path", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Goal")
		publisher := &recordingPublisher{}
		cfg.Publisher = publisher

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		res, err := app.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, model.Found, res.Outcome)
		assert.Equal(t, 3, res.Hops())
		assert.Equal(t, cfg.From, res.Path[0])
		assert.Equal(t, server.URL+"/wiki/Gamma", res.Path[2])
		assert.Equal(t, cfg.To, res.Path[3])

		out := cfg.Logger.(*recordingLogger).output()
		assert.Contains(t, out, "2 workers are used")
		assert.Contains(t, out, "Path (3 hops):")
		assert.Contains(t, out, "  "+server.URL+"/wiki/Gamma")

		publisher.mu.Lock()
		defer publisher.mu.Unlock()
		require.Len(t, publisher.results, 1)
		assert.Equal(t, model.Found, publisher.results[0].Outcome)
		assert.NotEmpty(t, publisher.progress)
	})

	t.Run("unreachable goal", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Isolated")

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		res, err := app.Run(context.Background())
		assert.ErrorIs(t, err, errNoPath)
		assert.Equal(t, model.NotFound, res.Outcome)
		assert.Equal(t, uint64(5), res.Processed)
		assert.Contains(t, cfg.Logger.(*recordingLogger).output(), "No path")
	})

	t.Run("missing article is rejected before searching", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Nowhere")

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		_, err = app.Run(context.Background())
		assert.ErrorIs(t, err, errUnreachableArticle)
		assert.NotContains(t, cfg.Logger.(*recordingLogger).output(), "workers are used")
	})

	t.Run("skip probe searches anyway", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Nowhere")
		cfg.SkipProbe = true

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		res, err := app.Run(context.Background())
		assert.ErrorIs(t, err, errNoPath)
		assert.Equal(t, model.NotFound, res.Outcome)
	})

	t.Run("cancelled search", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Goal")
		cfg.SkipProbe = true

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := app.Run(ctx)
		assert.ErrorIs(t, err, errNoPath)
		assert.Equal(t, model.Aborted, res.Outcome)
		assert.Equal(t, model.ConsumerGone, res.Reason)
	})

	t.Run("memory cache is filled with fetched links", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Goal")
		cfg.Cache.Backend = cacheMemory

		app, err := NewApp(cfg)
		require.NoError(t, err)
		defer app.Close()

		_, err = app.Run(context.Background())
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			links, ok, err := app.linkStore.Get(context.Background(), cfg.From)
			return err == nil && ok && len(links) == 2
		}, time.Second, 10*time.Millisecond)
	})
}

func TestNewApp(t *testing.T) {
	server := newWikiServer(t)

	t.Run("rejects an invalid pool size", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Goal")
		cfg.Scheduler.Workers = 0

		_, err := NewApp(cfg)
		assert.ErrorIs(t, err, scheduler.ErrInvalidSize)
	})

	t.Run("rejects an unknown cache backend", func(t *testing.T) {
		cfg := testConfig(server, "Start", "Goal")
		cfg.Cache.Backend = "disk"

		_, err := NewApp(cfg)
		assert.Error(t, err)
	})
}
