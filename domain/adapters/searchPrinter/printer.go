package searchPrinter

import (
	"time"

	"wikiPathfinder/domain/model"
)

type Logger interface {
	Printf(format string, args ...interface{})
}

// Printer renders a search as it goes: what is searched, live progress, and the outcome.
type Printer struct {
	logger Logger
}

func New(logger Logger) *Printer {
	return &Printer{logger: logger}
}

func (p *Printer) Searching(from, to string, workers int) {
	p.logger.Printf("From: %s", from)
	p.logger.Printf("To: %s", to)
	p.logger.Printf("%d %s used", workers, plural(workers, "worker is", "workers are"))
}

func (p *Printer) Progress(progress model.Progress, elapsed time.Duration) {
	perSecond := model.Summary{Elapsed: elapsed}.PerSecond(progress.Processed)
	p.logger.Printf("Pages processed: %d (%d per second) Pages in queue: %d Elapsed time: %.1fs",
		progress.Processed, perSecond, progress.Queued, elapsed.Seconds())
}

func (p *Printer) WorkerDied(worker int) {
	p.logger.Printf("Worker %d is dead", worker)
}

func (p *Printer) Result(res model.SearchResult, summary model.Summary) {
	p.logger.Printf("----------------------------------------------------")
	p.logger.Printf("From: %s", summary.From)
	p.logger.Printf("To: %s", summary.To)
	p.logger.Printf("%d %s used", summary.Workers, plural(summary.Workers, "worker was", "workers were"))
	if res.DeadWorkers > 0 {
		p.logger.Printf("%d of them died", res.DeadWorkers)
	}
	p.logger.Printf("Pages processed: %d (%d per second)", res.Processed, summary.PerSecond(res.Processed))
	p.logger.Printf("Elapsed time: %.3fs", summary.Elapsed.Seconds())

	switch res.Outcome {
	case model.Found:
		p.logger.Printf("Path (%d %s):", res.Hops(), plural(res.Hops(), "hop", "hops"))
		for _, node := range res.Path {
			p.logger.Printf("  %s", node)
		}
	case model.NotFound:
		p.logger.Printf("No path: every page reachable from the start was explored")
	case model.Aborted:
		p.logger.Printf("Search aborted: %s", res.Reason)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
