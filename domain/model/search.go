package model

import "time"

// Node identifies a page in the link graph, e.g. https://en.wikipedia.org/wiki/Go.
// Two nodes are the same page iff their strings are equal.
type Node = string

// Progress is a telemetry sample published while a search runs.
type Progress struct {
	Processed uint64 // fetches completed
	Queued    uint64 // nodes waiting in the current and next frontier
}

// Outcome of a search.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AbortReason explains why a search was Aborted.
type AbortReason int

const (
	NoAbort AbortReason = iota
	QueueOverflow
	ConsumerGone
	AllWorkersDead
	DepthLimit
)

func (r AbortReason) String() string {
	switch r {
	case NoAbort:
		return ""
	case QueueOverflow:
		return "queue overflow"
	case ConsumerGone:
		return "consumer gone"
	case AllWorkersDead:
		return "all workers dead"
	case DepthLimit:
		return "depth limit reached"
	default:
		return "unknown"
	}
}

// SearchResult is what a search ends with.
// Path is set only when Outcome is Found, Reason only when Outcome is Aborted.
type SearchResult struct {
	Outcome Outcome
	Reason  AbortReason
	Path    []Node

	Processed   uint64 // successful fetches
	Depth       int    // BFS level reached
	DeadWorkers int
}

// Hops is the number of edges in a found path, or -1.
func (r SearchResult) Hops() int {
	if r.Outcome != Found {
		return -1
	}
	return len(r.Path) - 1
}

// Summary is what the presentation layer shows once a search is over.
type Summary struct {
	From    Node
	To      Node
	Workers int
	Elapsed time.Duration
}

// PerSecond is the processed-per-second rate for a result.
func (s Summary) PerSecond(processed uint64) uint64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return uint64(float64(processed) / secs)
}
