package scheduler

import (
	"context"
	"reflect"
	"sync"
	"time"

	"wikiPathfinder/domain/frontier"
	"wikiPathfinder/domain/model"
	"wikiPathfinder/domain/worker"
)

type slotState int

const (
	idle slotState = iota
	processing
	dead // never leaves this state
)

// slot is the scheduler's view of one worker.
type slot struct {
	state slotState
	node  string // in-flight node, set iff processing

	in  chan string
	out chan worker.Result
}

// search holds the state of one Search call. Only the goroutine running
// Search touches it; workers see nothing but their own channels.
type search struct {
	*Scheduler

	ctx         context.Context
	start, goal string

	visited  map[string]string // node -> node that discovered it, start -> ""
	current  *frontier.Frontier
	next     *frontier.Frontier
	attempts map[string]uint64 // failed fetches per node

	slots       []slot
	deadWorkers int

	processed uint64
	depth     int

	telemetry telemetry
}

func newSearch(s *Scheduler, ctx context.Context, start, goal string, sinks Sinks) *search {
	sr := &search{
		Scheduler: s,
		ctx:       ctx,
		start:     start,
		goal:      goal,
		visited:   map[string]string{start: ""},
		current:   frontier.New(),
		next:      frontier.New(),
		attempts:  make(map[string]uint64),
		slots:     make([]slot, s.cfg.Size),
		telemetry: telemetry{sinks: sinks},
	}
	sr.current.PushBack(start)
	return sr
}

// startWorkers starts the pool and returns a func that stops it and waits for it,
// at most ShutdownTimeout.
func (sr *search) startWorkers() func() {
	ctx, cancel := context.WithCancel(sr.ctx)
	var wg sync.WaitGroup

	for i := range sr.slots {
		sr.slots[i] = slot{
			state: idle,
			in:    make(chan string, 1),
			out:   make(chan worker.Result, 1),
		}
		wg.Add(1)
		go func(w *worker.Worker, in <-chan string, out chan<- worker.Result) {
			defer wg.Done()
			w.Run(ctx, in, out)
		}(worker.New(i, sr.linkSource, sr.logger), sr.slots[i].in, sr.slots[i].out)
	}

	return func() {
		cancel()
		for i := range sr.slots {
			close(sr.slots[i].in)
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		if sr.cfg.ShutdownTimeout == 0 {
			<-done
			return
		}
		select {
		case <-done:
		case <-time.After(sr.cfg.ShutdownTimeout):
			sr.logger.Printf("workers still running %s after the search ended, leaving them behind", sr.cfg.ShutdownTimeout)
		}
	}
}

func (sr *search) run() model.SearchResult {
	defer sr.telemetry.flush()

	for {
		for !sr.current.Empty() || sr.anyProcessing() {
			if res, done := sr.step(); done {
				return res
			}
		}

		if res, done := sr.cancelled(); done {
			return res
		}
		if sr.next.Empty() {
			sr.logger.Printf("all %d reachable pages explored, %s is not among them", len(sr.visited), sr.goal)
			return sr.result(model.NotFound, model.NoAbort, nil)
		}
		// Nodes of the next level are depth+1 hops away, paths found from them depth+2.
		if sr.cfg.MaxDepth > 0 && uint64(sr.depth+2) > sr.cfg.MaxDepth {
			sr.logger.Printf("no path of at most %d hops", sr.cfg.MaxDepth)
			return sr.result(model.Aborted, model.DepthLimit, nil)
		}

		sr.current, sr.next = sr.next, sr.current
		sr.depth++
		sr.logger.Printf("depth %d: %d pages to fetch", sr.depth, sr.current.Len())
	}
}

// step dispatches what it can, then waits for one event and handles it.
func (sr *search) step() (model.SearchResult, bool) {
	if res, done := sr.cancelled(); done {
		return res, true
	}

	queued := uint64(sr.current.Len() + sr.next.Len())
	sr.telemetry.observe(model.Progress{Processed: sr.processed, Queued: queued})

	if sr.cfg.MaxQueueSize > 0 && queued > sr.cfg.MaxQueueSize {
		sr.logger.Printf("queue holds %d pages, more than the allowed %d", queued, sr.cfg.MaxQueueSize)
		return sr.result(model.Aborted, model.QueueOverflow, nil), true
	}

	sr.dispatch()

	if !sr.anyProcessing() {
		// dispatch leaves work behind only when no worker is left to take it.
		sr.logger.Printf("all %d workers died with %d pages left", len(sr.slots), sr.current.Len())
		return sr.result(model.Aborted, model.AllWorkersDead, nil), true
	}

	return sr.wait()
}

func (sr *search) dispatch() {
	for i := range sr.slots {
		if sr.current.Empty() {
			return
		}
		if sr.slots[i].state != idle {
			continue
		}

		node, _ := sr.current.PopFront()
		select {
		case sr.slots[i].in <- node:
			sr.slots[i].state = processing
			sr.slots[i].node = node
		default:
			// an idle worker always has room for one request, unless it is gone.
			sr.current.PushFront(node)
			sr.retire(i)
		}
	}
}

const (
	caseCancelled = -1 - iota
	caseProgress
	caseDeath
)

// wait blocks until a worker reports, a pending telemetry send is accepted, or ctx is done.
func (sr *search) wait() (model.SearchResult, bool) {
	cases := make([]reflect.SelectCase, 0, len(sr.slots)+3)
	owners := make([]int, 0, cap(cases))

	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(sr.ctx.Done())})
	owners = append(owners, caseCancelled)

	if sr.telemetry.progressPending() {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectSend,
			Chan: reflect.ValueOf(sr.telemetry.sinks.Progress),
			Send: reflect.ValueOf(sr.telemetry.sample),
		})
		owners = append(owners, caseProgress)
	}
	if sr.telemetry.deathPending() {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectSend,
			Chan: reflect.ValueOf(sr.telemetry.sinks.Deaths),
			Send: reflect.ValueOf(sr.telemetry.deaths[0]),
		})
		owners = append(owners, caseDeath)
	}

	for i := range sr.slots {
		if sr.slots[i].state == processing {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(sr.slots[i].out)})
			owners = append(owners, i)
		}
	}

	chosen, recv, ok := reflect.Select(cases)

	switch owner := owners[chosen]; owner {
	case caseCancelled:
		return sr.cancelled()
	case caseProgress:
		sr.telemetry.progressSent()
	case caseDeath:
		sr.telemetry.deathSent()
	default:
		if !ok {
			sr.retire(owner)
			return model.SearchResult{}, false
		}
		if path := sr.harvest(owner, recv.Interface().(worker.Result)); path != nil {
			return sr.result(model.Found, model.NoAbort, path), true
		}
	}
	return model.SearchResult{}, false
}

// harvest records a finished fetch and returns the path if it reached the goal.
func (sr *search) harvest(i int, res worker.Result) []string {
	node := sr.slots[i].node
	sr.slots[i].state = idle
	sr.slots[i].node = ""

	if res.Err != nil {
		sr.retry(node, res.Err)
		return nil
	}

	sr.processed++
	go sr.completionHook(context.WithoutCancel(sr.ctx), node, res.Links)

	for _, link := range res.Links {
		if link == sr.goal {
			return sr.pathThrough(node)
		}
		if _, seen := sr.visited[link]; seen {
			continue
		}
		sr.visited[link] = node
		sr.next.PushBack(link)
	}
	return nil
}

// retry puts a failed node back at the end of the current level, until its budget runs out.
func (sr *search) retry(node string, err error) {
	sr.attempts[node]++
	if sr.attempts[node] > sr.cfg.MaxRetries {
		sr.logger.Printf("skipping %s after %d failed fetches: %v", node, sr.attempts[node], err)
		return
	}
	sr.logger.Printf("fetch %s failed (attempt %d): %v", node, sr.attempts[node], err)
	sr.current.PushBack(node)
}

// retire marks a worker dead and hands its node to the front of the frontier.
func (sr *search) retire(i int) {
	if node := sr.slots[i].node; node != "" {
		sr.current.PushFront(node)
	}
	sr.slots[i].state = dead
	sr.slots[i].node = ""
	sr.deadWorkers++

	sr.logger.Printf("worker %d died", i)
	sr.telemetry.workerDied(i)
}

// cancelled ends the search once ctx is done. A cancelled search never reports NotFound,
// since failed fetches caused by the cancellation would make the graph look exhausted.
func (sr *search) cancelled() (model.SearchResult, bool) {
	if sr.ctx.Err() == nil {
		return model.SearchResult{}, false
	}
	sr.logger.Printf("search cancelled: %v", sr.ctx.Err())
	return sr.result(model.Aborted, model.ConsumerGone, nil), true
}

func (sr *search) anyProcessing() bool {
	for i := range sr.slots {
		if sr.slots[i].state == processing {
			return true
		}
	}
	return false
}

// pathThrough walks the parents of node back to start and appends the goal.
func (sr *search) pathThrough(node string) []string {
	path := []string{sr.goal}
	for cur := node; ; cur = sr.visited[cur] {
		path = append(path, cur)
		if cur == sr.start {
			break
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

func (sr *search) result(outcome model.Outcome, reason model.AbortReason, path []string) model.SearchResult {
	sr.telemetry.observe(model.Progress{Processed: sr.processed, Queued: uint64(sr.current.Len() + sr.next.Len())})
	return model.SearchResult{
		Outcome:     outcome,
		Reason:      reason,
		Path:        path,
		Processed:   sr.processed,
		Depth:       sr.depth,
		DeadWorkers: sr.deadWorkers,
	}
}
