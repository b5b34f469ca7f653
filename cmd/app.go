package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"wikiPathfinder/domain/adapters/cachedLinkSource"
	"wikiPathfinder/domain/adapters/kafkaTelemetry"
	"wikiPathfinder/domain/adapters/namespaceFilter"
	"wikiPathfinder/domain/adapters/searchPrinter"
	"wikiPathfinder/domain/adapters/urlFetcherExtractor"
	storeLinks "wikiPathfinder/domain/hooks/storeLinks"
	"wikiPathfinder/domain/model"
	"wikiPathfinder/domain/scheduler"
	"wikiPathfinder/domain/store"
)

type (
	Logger interface {
		Printf(format string, args ...interface{})
	}

	LinkSource interface {
		Links(ctx context.Context, node string) ([]string, error)
	}

	Prober interface {
		IsReachableArticle(ctx context.Context, rawURL string) bool
	}

	// EventPublisher mirrors search telemetry somewhere outside the process.
	EventPublisher interface {
		Progress(ctx context.Context, progress model.Progress) error
		WorkerDied(ctx context.Context, worker int) error
		Result(ctx context.Context, res model.SearchResult) error
	}
)

var (
	errUnreachableArticle = errors.New("not a reachable article")
	errNoPath             = errors.New("no path found")
)

type noopPublisher struct{}

func (noopPublisher) Progress(context.Context, model.Progress) error   { return nil }
func (noopPublisher) WorkerDied(context.Context, int) error            { return nil }
func (noopPublisher) Result(context.Context, model.SearchResult) error { return nil }

type App struct {
	cfg    AppConfig
	logger Logger

	scheduler *scheduler.Scheduler
	prober    Prober
	printer   *searchPrinter.Printer
	publisher EventPublisher
	linkStore store.LinkStore

	closers []io.Closer
}

func NewApp(cfg AppConfig) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stdout, "", log.LstdFlags)
	}

	app := &App{
		cfg:       cfg,
		logger:    cfg.Logger,
		printer:   searchPrinter.New(cfg.Logger),
		publisher: cfg.Publisher,
		prober:    cfg.Prober,
	}

	fetcherExtractor := urlFetcherExtractor.NewHTTPFetcherExtractor(urlFetcherExtractor.Config{
		Timeout:           cfg.Fetcher.Timeout,
		RequestsPerSecond: cfg.Fetcher.RequestsPerSecond,
		ArticlePrefix:     cfg.Fetcher.ArticlePrefix,
		UserAgent:         cfg.Fetcher.UserAgent,
	}, namespaceFilter.New())

	linkSource := cfg.LinkSource
	if linkSource == nil {
		linkSource = fetcherExtractor
	}
	if app.prober == nil {
		app.prober = fetcherExtractor
	}

	completionHook := scheduler.NoOpCompletedHook
	switch cfg.Cache.Backend {
	case cacheMemory:
		app.linkStore = store.NewMemoryStore()
	case cacheRedis:
		redisStore := store.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.Prefix, cfg.Cache.TTL)
		app.closers = append(app.closers, redisStore)
		app.linkStore = redisStore
	}
	if app.linkStore != nil {
		linkSource = cachedLinkSource.New(linkSource, app.linkStore, cfg.Logger)
		completionHook = storeLinks.New(app.linkStore, cfg.Logger).Store
	}

	if app.publisher == nil {
		app.publisher = noopPublisher{}
		if cfg.Telemetry.KafkaBroker != "" {
			publisher := kafkaTelemetry.NewPublisher(cfg.Telemetry.KafkaBroker, cfg.Telemetry.KafkaTopic)
			app.closers = append(app.closers, publisher)
			app.publisher = publisher
			cfg.Logger.Printf("publishing telemetry of search %s to %s", publisher.SearchID(), cfg.Telemetry.KafkaTopic)
		}
	}

	sched, err := scheduler.New(cfg.Logger, scheduler.Config{
		Size:            cfg.Scheduler.Workers,
		MaxQueueSize:    cfg.Scheduler.MaxQueueSize,
		MaxDepth:        cfg.Scheduler.MaxDepth,
		MaxRetries:      cfg.Scheduler.MaxRetries,
		ShutdownTimeout: cfg.Scheduler.ShutdownTimeout,
	}, linkSource, completionHook)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.scheduler = sched

	return app, nil
}

// Run checks both pages, searches, and prints the outcome.
func (a *App) Run(ctx context.Context) (model.SearchResult, error) {
	if !a.cfg.SkipProbe {
		for _, page := range []string{a.cfg.From, a.cfg.To} {
			if !a.prober.IsReachableArticle(ctx, page) {
				return model.SearchResult{}, fmt.Errorf("%s: %w", page, errUnreachableArticle)
			}
		}
	}

	workers := int(a.cfg.Scheduler.Workers)
	progress := make(chan model.Progress, 16)
	deaths := make(chan int, workers)

	a.printer.Searching(a.cfg.From, a.cfg.To, workers)
	started := time.Now()

	var res model.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(progress)
		defer close(deaths)

		var err error
		res, err = a.scheduler.Search(gctx, a.cfg.From, a.cfg.To, scheduler.Sinks{Progress: progress, Deaths: deaths})
		return err
	})
	g.Go(func() error {
		a.observe(ctx, started, progress, deaths)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.SearchResult{}, err
	}

	a.printer.Result(res, model.Summary{
		From:    a.cfg.From,
		To:      a.cfg.To,
		Workers: workers,
		Elapsed: time.Since(started),
	})
	if err := a.publisher.Result(context.WithoutCancel(ctx), res); err != nil {
		a.logger.Printf("failed to publish result: %v", err)
	}

	if res.Outcome != model.Found {
		return res, errNoPath
	}
	return res, nil
}

// observe follows the telemetry of a search until the search closes both channels.
func (a *App) observe(ctx context.Context, started time.Time, progress <-chan model.Progress, deaths <-chan int) {
	var lastPrinted time.Time

	for progress != nil || deaths != nil {
		select {
		case p, ok := <-progress:
			if !ok {
				progress = nil
				continue
			}
			if time.Since(lastPrinted) < a.cfg.ProgressInterval {
				continue
			}
			lastPrinted = time.Now()
			a.printer.Progress(p, time.Since(started))
			if err := a.publisher.Progress(ctx, p); err != nil {
				a.logger.Printf("failed to publish progress: %v", err)
			}
		case i, ok := <-deaths:
			if !ok {
				deaths = nil
				continue
			}
			a.printer.WorkerDied(i)
			if err := a.publisher.WorkerDied(ctx, i); err != nil {
				a.logger.Printf("failed to publish worker death: %v", err)
			}
		}
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Printf("failed to close: %v", err)
		}
	}
}
