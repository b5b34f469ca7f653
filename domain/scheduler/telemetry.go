package scheduler

import "wikiPathfinder/domain/model"

// Sinks receive telemetry from a running search. Either channel may be nil.
//
// The search never waits on a sink. A progress sample that cannot be delivered
// stays pending and is replaced by newer ones, so a slow reader sees fewer,
// fresher samples. Dead worker indices queue up and are each delivered once.
// Whatever is still undelivered when the search returns is dropped, so Deaths
// should be buffered for the pool size.
type Sinks struct {
	Progress chan<- model.Progress
	Deaths   chan<- int
}

type telemetry struct {
	sinks Sinks

	sent     bool
	lastSent model.Progress
	sample   model.Progress

	deaths []int
}

func (t *telemetry) observe(p model.Progress) {
	t.sample = p
}

// progressPending is true when the latest sample differs from what the reader has.
func (t *telemetry) progressPending() bool {
	if t.sinks.Progress == nil {
		return false
	}
	return !t.sent || t.sample != t.lastSent
}

func (t *telemetry) progressSent() {
	t.sent = true
	t.lastSent = t.sample
}

func (t *telemetry) workerDied(i int) {
	if t.sinks.Deaths == nil {
		return
	}
	t.deaths = append(t.deaths, i)
}

func (t *telemetry) deathPending() bool {
	return len(t.deaths) > 0
}

func (t *telemetry) deathSent() {
	t.deaths = t.deaths[1:]
}

// flush offers whatever is pending once more without waiting.
func (t *telemetry) flush() {
	if t.progressPending() {
		select {
		case t.sinks.Progress <- t.sample:
			t.progressSent()
		default:
		}
	}
	for t.deathPending() {
		select {
		case t.sinks.Deaths <- t.deaths[0]:
			t.deathSent()
		default:
			return
		}
	}
}
