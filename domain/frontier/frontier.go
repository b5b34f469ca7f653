// Package frontier holds the nodes waiting to be fetched at one BFS depth.
package frontier

import "wikiPathfinder/domain/adapters/FIFOqueue"

// Frontier is a deque of nodes. Fresh nodes join the back; nodes handed back by a
// failed worker jump to the front so lost work is retried before new work.
type Frontier struct {
	requeued []string // stack, top is the front of the frontier
	fifo     *FIFOqueue.FIFOQueue
}

func New() *Frontier {
	return &Frontier{fifo: FIFOqueue.New()}
}

func (f *Frontier) PushBack(node string) {
	f.fifo.Push(node)
}

func (f *Frontier) PushFront(node string) {
	f.requeued = append(f.requeued, node)
}

// PopFront returns false when the frontier is empty.
func (f *Frontier) PopFront() (string, bool) {
	if n := len(f.requeued); n > 0 {
		node := f.requeued[n-1]
		f.requeued = f.requeued[:n-1]
		return node, true
	}
	return f.fifo.Pop()
}

func (f *Frontier) Len() int {
	return len(f.requeued) + int(f.fifo.Len())
}

func (f *Frontier) Empty() bool {
	return f.Len() == 0
}
